package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/de-tools/social-atlas/pkg/models/api"
	"github.com/de-tools/social-atlas/pkg/models/domain"
	"github.com/de-tools/social-atlas/pkg/runtime/export"
	"github.com/de-tools/social-atlas/pkg/services/catalog"
	reportsvc "github.com/de-tools/social-atlas/pkg/services/report"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type mockGenerator struct {
	mock.Mock
}

func (m *mockGenerator) GenerateReport(ctx context.Context, cfg domain.ReportConfig) (*domain.Report, error) {
	args := m.Called(ctx, cfg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Report), args.Error(1)
}

type mockProfiles struct {
	mock.Mock
}

func (m *mockProfiles) GetNetworks(ctx context.Context) ([]domain.Network, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Network), args.Error(1)
}

func (m *mockProfiles) GetProfiles(ctx context.Context, network domain.Network) ([]domain.Profile, error) {
	args := m.Called(ctx, network)
	return args.Get(0).([]domain.Profile), args.Error(1)
}

func newRouter(t *testing.T, h *Handler) chi.Router {
	t.Helper()
	r := chi.NewRouter()
	r.Get("/networks", h.ListNetworks)
	r.Get("/networks/{network}/metrics", h.ListMetrics)
	r.Post("/reports", h.GenerateReport)
	r.Post("/reports/xlsx", h.ExportReport)
	return r
}

func newCatalogs(t *testing.T) *catalog.Registry {
	t.Helper()
	catalogs, err := catalog.NewRegistry()
	require.NoError(t, err)
	return catalogs
}

func sampleReport() *domain.Report {
	row := domain.NewRow("2025-01", domain.NetworkFacebook, "1")
	row["impressions"] = 10.0
	total := domain.Row{"Date": "TOTAL", "Network": "Facebook", "profile_id": "1", "impressions": 10.0}
	return &domain.Report{
		Period: domain.PeriodMonthly,
		Start:  time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		End:    time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC),
		Sheets: []domain.Sheet{{
			Name:    "Facebook-Main Page",
			Network: domain.NetworkFacebook,
			Columns: []domain.Column{
				{Key: "Date", Header: "Date"},
				{Key: "Network", Header: "Network"},
				{Key: "profile_id", Header: "profile_id"},
				{Key: "impressions", Header: "Impressions"},
			},
			Rows:        []domain.Row{row},
			SummaryRows: []domain.Row{total},
		}},
		Failures: []domain.NetworkFailure{{Network: domain.NetworkTwitter, Error: "boom"}},
	}
}

func post(t *testing.T, router http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandler_ListNetworks(t *testing.T) {
	router := newRouter(t, NewHandler(new(mockGenerator), newCatalogs(t), nil, nil))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/networks", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var networks []api.Network
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&networks))
	require.Len(t, networks, len(domain.Networks()))
	assert.Equal(t, api.Network{ID: "facebook", Name: "Facebook"}, networks[0])
}

func TestHandler_ListMetrics(t *testing.T) {
	router := newRouter(t, NewHandler(new(mockGenerator), newCatalogs(t), nil, nil))

	tests := []struct {
		name       string
		path       string
		wantStatus int
	}{
		{"known network", "/networks/instagram/metrics", http.StatusOK},
		{"unknown network", "/networks/myspace/metrics", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/networks/instagram/metrics", nil))
	var metrics []api.Metric
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&metrics))

	byID := make(map[string]api.Metric, len(metrics))
	for _, m := range metrics {
		byID[m.ID] = m
	}
	require.Contains(t, byID, "engagement_rate_per_impression")
	assert.True(t, byID["engagement_rate_per_impression"].Calculated)
	assert.Equal(t, "sum", byID["impressions"].Aggregation)
}

func TestHandler_GenerateReport(t *testing.T) {
	generator := new(mockGenerator)
	profiles := new(mockProfiles)
	profiles.On("GetProfiles", mock.Anything, domain.NetworkFacebook).
		Return([]domain.Profile{{ID: "1", Name: "Main Page"}}, nil)

	generator.On("GenerateReport", mock.Anything, mock.MatchedBy(func(cfg domain.ReportConfig) bool {
		return cfg.Period == domain.PeriodMonthly &&
			len(cfg.ProfilesByNetwork[domain.NetworkFacebook]) == 1 &&
			assert.ObjectsAreEqual([]string{"impressions"}, cfg.MetricsByNetwork[domain.NetworkFacebook])
	})).Return(sampleReport(), nil)

	h := NewHandler(generator, newCatalogs(t), profiles, map[domain.Network][]string{
		domain.NetworkFacebook: {"impressions"},
	})
	rec := post(t, newRouter(t, h), "/reports", api.ReportRequest{
		Period:    "monthly",
		StartDate: "2025-01-01",
		EndDate:   "2025-01-31",
		Networks:  []string{"facebook"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var report api.Report
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&report))
	assert.Equal(t, "2025-01-01", report.StartDate)
	require.Len(t, report.Sheets, 1)
	assert.Equal(t, "Facebook-Main Page", report.Sheets[0].Name)
	assert.Equal(t, 10.0, report.Sheets[0].Rows[0]["impressions"])
	assert.Equal(t, "TOTAL", report.Sheets[0].Summary[0]["Date"])
	assert.Equal(t, []api.Failure{{Network: "twitter", Error: "boom"}}, report.Failures)

	generator.AssertExpectations(t)
	profiles.AssertExpectations(t)
}

func TestHandler_GenerateReport_Errors(t *testing.T) {
	valid := api.ReportRequest{
		Period:    "daily",
		StartDate: "2025-01-01",
		EndDate:   "2025-01-02",
		Networks:  []string{"twitter"},
		Profiles:  map[string][]api.Profile{"twitter": {{ID: "1"}}},
	}

	tests := []struct {
		name       string
		body       any
		genErr     error
		wantStatus int
	}{
		{"malformed body", "not an object", nil, http.StatusBadRequest},
		{"unknown network", api.ReportRequest{Networks: []string{"myspace"}}, nil, http.StatusBadRequest},
		{"invalid config", valid, reportsvc.ErrInvalidConfig, http.StatusBadRequest},
		{"no data", valid, reportsvc.ErrNoData, http.StatusUnprocessableEntity},
		{"unexpected", valid, errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			generator := new(mockGenerator)
			if tt.genErr != nil {
				generator.On("GenerateReport", mock.Anything, mock.Anything).Return(nil, tt.genErr)
			}
			rec := post(t, newRouter(t, NewHandler(generator, newCatalogs(t), nil, nil)), "/reports", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)

			var apiErr api.Error
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&apiErr))
			assert.NotEmpty(t, apiErr.Error)
		})
	}
}

func TestHandler_ExportReport(t *testing.T) {
	generator := new(mockGenerator)
	generator.On("GenerateReport", mock.Anything, mock.Anything).Return(sampleReport(), nil)

	rec := post(t, newRouter(t, NewHandler(generator, newCatalogs(t), nil, nil)), "/reports/xlsx", api.ReportRequest{
		Period:    "monthly",
		StartDate: "2025-01-01",
		EndDate:   "2025-01-31",
		Networks:  []string{"facebook"},
		Profiles:  map[string][]api.Profile{"facebook": {{ID: "1", Name: "Main Page"}}},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, export.ContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "social_report_monthly_20250101_20250131.xlsx")

	f, err := excelize.OpenReader(rec.Body)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Facebook-Main Page"}, f.GetSheetList())
}
