// Package report runs the fetch, normalize, evaluate, aggregate and assemble
// pipeline for every requested network.
package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/de-tools/social-atlas/pkg/models/domain"
	"github.com/de-tools/social-atlas/pkg/services/aggregator"
	"github.com/de-tools/social-atlas/pkg/services/catalog"
	"github.com/de-tools/social-atlas/pkg/services/evaluator"
	"github.com/de-tools/social-atlas/pkg/services/normalizer"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

const CodeFetchFailed = "FETCH_FAILED"

var (
	ErrInvalidConfig = errors.New("invalid report config")
	ErrNoData        = errors.New("no data to export")
)

// Fetcher retrieves raw analytics for one network. Dates are YYYY-MM-DD.
type Fetcher interface {
	FetchAnalytics(ctx context.Context, network domain.Network, profileIDs, metricIDs []string, startDate, endDate string) (any, error)
}

// ProgressFunc is called once per network after it has been processed. err is
// non-nil when the network was skipped.
type ProgressFunc func(network domain.Network, err error)

type Generator struct {
	fetcher     Fetcher
	catalogs    *catalog.Registry
	normalizers *normalizer.Registry
	progress    ProgressFunc
	now         func() time.Time
}

type Option func(*Generator)

func WithProgress(fn ProgressFunc) Option {
	return func(g *Generator) {
		g.progress = fn
	}
}

func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		g.now = now
	}
}

func NewGenerator(fetcher Fetcher, catalogs *catalog.Registry, normalizers *normalizer.Registry, opts ...Option) *Generator {
	g := &Generator{
		fetcher:     fetcher,
		catalogs:    catalogs,
		normalizers: normalizers,
		progress:    func(domain.Network, error) {},
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

type request struct {
	period domain.Period
	start  time.Time
	end    time.Time
}

// GenerateReport fetches networks one after another. A network whose fetch
// fails is recorded in Report.Failures and skipped. When no sheet ends up with
// data rows the partially filled report is returned together with ErrNoData.
func (g *Generator) GenerateReport(ctx context.Context, cfg domain.ReportConfig) (*domain.Report, error) {
	req, err := g.validate(cfg)
	if err != nil {
		return nil, err
	}
	logger := zerolog.Ctx(ctx)

	report := &domain.Report{
		Period:      req.period,
		Start:       req.start,
		End:         req.end,
		GeneratedAt: g.now(),
	}
	namer := NewSheetNamer()

	for _, network := range lo.Uniq(cfg.Networks) {
		sheets, err := g.generateNetwork(ctx, cfg, req, network, namer)
		g.progress(network, err)
		if err != nil {
			logger.Warn().
				Err(err).
				Str("code", CodeFetchFailed).
				Str("network", string(network)).
				Msg("skipping network")
			report.Failures = append(report.Failures, domain.NetworkFailure{Network: network, Error: err.Error()})
			continue
		}
		report.Sheets = append(report.Sheets, sheets...)
	}

	if report.DataRowCount() == 0 {
		return report, ErrNoData
	}
	logger.Info().
		Int("sheets", len(report.Sheets)).
		Int("rows", report.DataRowCount()).
		Int("failures", len(report.Failures)).
		Msg("report generated")
	return report, nil
}

func (g *Generator) generateNetwork(ctx context.Context, cfg domain.ReportConfig, req request, network domain.Network, namer *SheetNamer) ([]domain.Sheet, error) {
	c, err := g.catalogs.Get(network)
	if err != nil {
		return nil, err
	}
	norm, err := g.normalizers.Get(network)
	if err != nil {
		return nil, err
	}

	selected := SelectedMetrics(c, cfg.MetricsByNetwork[network])
	profiles := cfg.ProfilesByNetwork[network]
	profileIDs := lo.Uniq(lo.Map(profiles, func(p domain.Profile, _ int) string { return p.ID }))
	baseMetrics := norm.RequiredBaseMetrics(selected)

	raw, err := g.fetcher.FetchAnalytics(ctx, network, profileIDs, baseMetrics,
		req.start.Format(time.DateOnly), req.end.Format(time.DateOnly))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s analytics: %w", network, err)
	}

	rows := norm.Normalize(ctx, raw, baseMetrics, profileIDs)
	rows = evaluator.EvaluateAll(ctx, rows, c, selected)
	rows = aggregator.New(c).Aggregate(ctx, rows, req.period, req.start, req.end)

	zerolog.Ctx(ctx).Debug().
		Str("network", string(network)).
		Int("rows", len(rows)).
		Msg("network processed")

	return NewAssembler(c, req.period, namer).Assemble(rows, Columns(c, selected), DefaultSheetKey(profiles)), nil
}

// SelectedMetrics defaults an empty selection to every metric of the catalog.
func SelectedMetrics(c *catalog.Catalog, selected []string) []string {
	if len(selected) > 0 {
		return lo.Uniq(selected)
	}
	return lo.Map(c.Metrics(), func(def domain.MetricDefinition, _ int) string { return def.ID })
}

func (g *Generator) validate(cfg domain.ReportConfig) (request, error) {
	if !cfg.Period.Valid() {
		return request{}, fmt.Errorf("%w: unknown period %q", ErrInvalidConfig, cfg.Period)
	}
	start, err := time.Parse(time.DateOnly, cfg.StartDate)
	if err != nil {
		return request{}, fmt.Errorf("%w: start date %q: %v", ErrInvalidConfig, cfg.StartDate, err)
	}
	end, err := time.Parse(time.DateOnly, cfg.EndDate)
	if err != nil {
		return request{}, fmt.Errorf("%w: end date %q: %v", ErrInvalidConfig, cfg.EndDate, err)
	}
	if start.After(end) {
		return request{}, fmt.Errorf("%w: start date %s is after end date %s", ErrInvalidConfig, cfg.StartDate, cfg.EndDate)
	}
	if len(cfg.Networks) == 0 {
		return request{}, fmt.Errorf("%w: no networks selected", ErrInvalidConfig)
	}

	for _, network := range cfg.Networks {
		c, err := g.catalogs.Get(network)
		if err != nil {
			return request{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		for _, id := range cfg.MetricsByNetwork[network] {
			if _, ok := c.Lookup(id); !ok {
				return request{}, fmt.Errorf("%w: unknown %s metric %q", ErrInvalidConfig, network, id)
			}
		}
		if len(cfg.ProfilesByNetwork[network]) == 0 {
			return request{}, fmt.Errorf("%w: no profiles configured for %s", ErrInvalidConfig, network)
		}
	}
	return request{period: cfg.Period, start: start, end: end}, nil
}
