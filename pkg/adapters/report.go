package adapters

import (
	"fmt"
	"maps"
	"time"

	"github.com/de-tools/social-atlas/pkg/models/api"
	"github.com/de-tools/social-atlas/pkg/models/domain"
)

func MapNetworkDomainToApi(n domain.Network) api.Network {
	return api.Network{ID: string(n), Name: n.DisplayName()}
}

func MapMetricDomainToApi(m domain.MetricDefinition) api.Metric {
	return api.Metric{
		ID:          m.ID,
		Label:       m.Label,
		Calculated:  m.Calculated,
		DependsOn:   m.DependsOn,
		Aggregation: m.Aggregation.String(),
	}
}

func MapProfileApiToDomain(p api.Profile) domain.Profile {
	return domain.Profile{ID: p.ID, Name: p.Name}
}

// MapReportRequestApiToDomain validates network names; dates and periods are
// validated by the generator.
func MapReportRequestApiToDomain(req api.ReportRequest) (domain.ReportConfig, error) {
	cfg := domain.ReportConfig{
		Period:            domain.Period(req.Period),
		StartDate:         req.StartDate,
		EndDate:           req.EndDate,
		ProfilesByNetwork: make(map[domain.Network][]domain.Profile),
		MetricsByNetwork:  make(map[domain.Network][]string),
	}

	for _, name := range req.Networks {
		network, err := domain.ParseNetwork(name)
		if err != nil {
			return domain.ReportConfig{}, err
		}
		cfg.Networks = append(cfg.Networks, network)
	}
	for name, profiles := range req.Profiles {
		network, err := domain.ParseNetwork(name)
		if err != nil {
			return domain.ReportConfig{}, fmt.Errorf("profiles: %w", err)
		}
		for _, p := range profiles {
			cfg.ProfilesByNetwork[network] = append(cfg.ProfilesByNetwork[network], MapProfileApiToDomain(p))
		}
	}
	for name, ids := range req.Metrics {
		network, err := domain.ParseNetwork(name)
		if err != nil {
			return domain.ReportConfig{}, fmt.Errorf("metrics: %w", err)
		}
		cfg.MetricsByNetwork[network] = ids
	}
	return cfg, nil
}

func MapSheetDomainToApi(s domain.Sheet) api.Sheet {
	res := api.Sheet{
		Name:    s.Name,
		Network: string(s.Network),
		Columns: make([]api.Column, 0, len(s.Columns)),
		Rows:    make([]map[string]any, 0, len(s.Rows)),
		Summary: make([]map[string]any, 0, len(s.SummaryRows)),
	}
	for _, c := range s.Columns {
		res.Columns = append(res.Columns, api.Column{Key: c.Key, Header: c.Header})
	}
	for _, r := range s.Rows {
		res.Rows = append(res.Rows, maps.Clone(map[string]any(r)))
	}
	for _, r := range s.SummaryRows {
		res.Summary = append(res.Summary, maps.Clone(map[string]any(r)))
	}
	return res
}

func MapReportDomainToApi(r *domain.Report) api.Report {
	res := api.Report{
		Period:      string(r.Period),
		StartDate:   r.Start.Format(time.DateOnly),
		EndDate:     r.End.Format(time.DateOnly),
		GeneratedAt: r.GeneratedAt,
		Sheets:      make([]api.Sheet, 0, len(r.Sheets)),
		Failures:    make([]api.Failure, 0, len(r.Failures)),
	}
	for _, s := range r.Sheets {
		res.Sheets = append(res.Sheets, MapSheetDomainToApi(s))
	}
	for _, f := range r.Failures {
		res.Failures = append(res.Failures, api.Failure{Network: string(f.Network), Error: f.Error})
	}
	return res
}
