package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/de-tools/social-atlas/pkg/adapters"
	"github.com/de-tools/social-atlas/pkg/models/api"
	"github.com/de-tools/social-atlas/pkg/models/domain"
	"github.com/de-tools/social-atlas/pkg/runtime/export"
	"github.com/de-tools/social-atlas/pkg/services/catalog"
	"github.com/de-tools/social-atlas/pkg/services/config"
	reportsvc "github.com/de-tools/social-atlas/pkg/services/report"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

type Generator interface {
	GenerateReport(ctx context.Context, cfg domain.ReportConfig) (*domain.Report, error)
}

type Handler struct {
	generator Generator
	catalogs  *catalog.Registry
	profiles  config.ProfileRegistry
	metrics   map[domain.Network][]string
}

// NewHandler wires the report endpoints. profiles and defaultMetrics are
// optional and fill in what a request leaves out.
func NewHandler(
	generator Generator,
	catalogs *catalog.Registry,
	profiles config.ProfileRegistry,
	defaultMetrics map[domain.Network][]string,
) *Handler {
	return &Handler{
		generator: generator,
		catalogs:  catalogs,
		profiles:  profiles,
		metrics:   defaultMetrics,
	}
}

func (h *Handler) ListNetworks(w http.ResponseWriter, r *http.Request) {
	response := make([]api.Network, 0)
	for _, n := range h.catalogs.Networks() {
		response = append(response, adapters.MapNetworkDomainToApi(n))
	}
	writeJSON(r.Context(), w, http.StatusOK, response)
}

func (h *Handler) ListMetrics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := chi.URLParam(r, "network")

	network, err := domain.ParseNetwork(name)
	if err != nil {
		writeError(ctx, w, http.StatusNotFound, err)
		return
	}
	c, err := h.catalogs.Get(network)
	if err != nil {
		writeError(ctx, w, http.StatusNotFound, err)
		return
	}

	response := make([]api.Metric, 0)
	for _, m := range c.Metrics() {
		response = append(response, adapters.MapMetricDomainToApi(m))
	}
	writeJSON(ctx, w, http.StatusOK, response)
}

func (h *Handler) GenerateReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	report, ok := h.generate(w, r)
	if !ok {
		return
	}
	writeJSON(ctx, w, http.StatusOK, adapters.MapReportDomainToApi(report))
}

func (h *Handler) ExportReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	report, ok := h.generate(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := export.WriteWorkbook(&buf, report); err != nil {
		logger.Error().Err(err).Msg("failed to render workbook")
		writeError(ctx, w, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName(report)))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		logger.Error().Err(err).Msg("failed to write workbook response")
	}
}

func (h *Handler) generate(w http.ResponseWriter, r *http.Request) (*domain.Report, bool) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	var req api.ReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(ctx, w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return nil, false
	}

	cfg, err := adapters.MapReportRequestApiToDomain(req)
	if err != nil {
		writeError(ctx, w, http.StatusBadRequest, err)
		return nil, false
	}
	if err := h.applyDefaults(ctx, &cfg); err != nil {
		writeError(ctx, w, http.StatusBadRequest, err)
		return nil, false
	}

	report, err := h.generator.GenerateReport(ctx, cfg)
	switch {
	case errors.Is(err, reportsvc.ErrInvalidConfig):
		writeError(ctx, w, http.StatusBadRequest, err)
		return nil, false
	case errors.Is(err, reportsvc.ErrNoData):
		writeError(ctx, w, http.StatusUnprocessableEntity, err)
		return nil, false
	case err != nil:
		logger.Error().Err(err).Msg("failed to generate report")
		writeError(ctx, w, http.StatusInternalServerError, err)
		return nil, false
	}
	return report, true
}

func (h *Handler) applyDefaults(ctx context.Context, cfg *domain.ReportConfig) error {
	for _, network := range cfg.Networks {
		if len(cfg.MetricsByNetwork[network]) == 0 && len(h.metrics[network]) > 0 {
			cfg.MetricsByNetwork[network] = h.metrics[network]
		}
		if len(cfg.ProfilesByNetwork[network]) > 0 || h.profiles == nil {
			continue
		}
		profiles, err := h.profiles.GetProfiles(ctx, network)
		if err != nil {
			return err
		}
		cfg.ProfilesByNetwork[network] = profiles
	}
	return nil
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zerolog.Ctx(ctx).Error().
			Err(err).
			Msg("failed to encode response")
	}
}

func writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	writeJSON(ctx, w, status, api.Error{Error: err.Error()})
}
