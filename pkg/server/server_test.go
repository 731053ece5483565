package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/de-tools/social-atlas/pkg/models/api"
	"github.com/de-tools/social-atlas/pkg/models/domain"
	"github.com/de-tools/social-atlas/pkg/services/catalog"
	"github.com/de-tools/social-atlas/pkg/services/normalizer"
	"github.com/de-tools/social-atlas/pkg/services/report"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) FetchAnalytics(
	ctx context.Context,
	network domain.Network,
	profileIDs, metricIDs []string,
	startDate, endDate string,
) (any, error) {
	args := m.Called(ctx, network, profileIDs, metricIDs, startDate, endDate)
	return args.Get(0), args.Error(1)
}

func TestWebAPI_Endpoints(t *testing.T) {
	logger := zerolog.New(zerolog.NewTestWriter(t))

	catalogs, err := catalog.NewRegistry()
	require.NoError(t, err)
	normalizers, err := normalizer.NewRegistry(catalogs, normalizer.DefaultFactories())
	require.NoError(t, err)

	fetcher := new(mockFetcher)
	generator := report.NewGenerator(fetcher, catalogs, normalizers,
		report.WithClock(func() time.Time { return time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC) }))

	webAPI := NewWebAPI(logger, Config{
		Addr:            ":8080",
		ShutdownTimeout: 10 * time.Second,
		Dependencies: Dependencies{
			Generator: generator,
			Catalogs:  catalogs,
		},
	})
	testServer := httptest.NewServer(webAPI.Handler())
	defer testServer.Close()

	reportRequest := api.ReportRequest{
		Period:    "monthly",
		StartDate: "2025-01-01",
		EndDate:   "2025-01-31",
		Networks:  []string{"linkedin"},
		Profiles:  map[string][]api.Profile{"linkedin": {{ID: "7", Name: "Company"}}},
		Metrics:   map[string][]string{"linkedin": {"impressions"}},
	}

	tests := []struct {
		name           string
		method         string
		path           string
		body           any
		setupMocks     func()
		expectedStatus int
		expected       interface{}
		parseResponse  func([]byte) (interface{}, error)
	}{
		{
			name:           "ListNetworks",
			method:         http.MethodGet,
			path:           "/api/v1/networks",
			setupMocks:     func() {},
			expectedStatus: http.StatusOK,
			expected: []api.Network{
				{ID: "facebook", Name: "Facebook"},
				{ID: "instagram", Name: "Instagram"},
				{ID: "linkedin", Name: "LinkedIn"},
				{ID: "twitter", Name: "Twitter"},
				{ID: "youtube", Name: "YouTube"},
				{ID: "tiktok", Name: "TikTok"},
				{ID: "threads", Name: "Threads"},
			},
			parseResponse: unmarshalResponse[[]api.Network](),
		},
		{
			name:           "ListMetrics_UnknownNetwork",
			method:         http.MethodGet,
			path:           "/api/v1/networks/myspace/metrics",
			setupMocks:     func() {},
			expectedStatus: http.StatusNotFound,
			expected:       api.Error{Error: "unknown network: myspace"},
			parseResponse:  unmarshalResponse[api.Error](),
		},
		{
			name:   "GenerateReport",
			method: http.MethodPost,
			path:   "/api/v1/reports",
			body:   reportRequest,
			setupMocks: func() {
				fetcher.On("FetchAnalytics", mock.Anything, domain.NetworkLinkedIn, []string{"7"}, []string{"impressions"}, "2025-01-01", "2025-01-31").
					Return(map[string]any{
						"data": []any{map[string]any{
							"customer_profile_id": "7",
							"data_points": []any{
								map[string]any{"end_time": "2025-01-01", "metrics": map[string]any{"impressions": 5.0}},
								map[string]any{"end_time": "2025-01-02", "metrics": map[string]any{"impressions": 6.0}},
							},
						}},
					}, nil).Once()
			},
			expectedStatus: http.StatusOK,
			expected: api.Report{
				Period:      "monthly",
				StartDate:   "2025-01-01",
				EndDate:     "2025-01-31",
				GeneratedAt: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
				Sheets: []api.Sheet{{
					Name:    "LinkedIn-Company",
					Network: "linkedin",
					Columns: []api.Column{
						{Key: "Date", Header: "Date"},
						{Key: "Network", Header: "Network"},
						{Key: "profile_id", Header: "profile_id"},
						{Key: "impressions", Header: "Impressions"},
					},
					Rows: []map[string]any{
						{"Date": "2025-01", "Network": "LinkedIn", "profile_id": "7", "impressions": 11.0},
					},
					Summary: []map[string]any{
						{"Date": "TOTAL", "Network": "LinkedIn", "profile_id": "7", "impressions": 11.0},
					},
				}},
				Failures: []api.Failure{},
			},
			parseResponse: unmarshalResponse[api.Report](),
		},
		{
			name:   "GenerateReport_NoData",
			method: http.MethodPost,
			path:   "/api/v1/reports",
			body:   reportRequest,
			setupMocks: func() {
				fetcher.On("FetchAnalytics", mock.Anything, domain.NetworkLinkedIn, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
					Return([]any{}, nil).Once()
			},
			expectedStatus: http.StatusUnprocessableEntity,
			expected:       api.Error{Error: "no data to export"},
			parseResponse:  unmarshalResponse[api.Error](),
		},
		{
			name:           "GenerateReport_InvalidPeriod",
			method:         http.MethodPost,
			path:           "/api/v1/reports",
			body:           api.ReportRequest{Period: "weekly", StartDate: "2025-01-01", EndDate: "2025-01-31", Networks: []string{"linkedin"}},
			setupMocks:     func() {},
			expectedStatus: http.StatusBadRequest,
			expected:       api.Error{Error: `invalid report config: unknown period "weekly"`},
			parseResponse:  unmarshalResponse[api.Error](),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.setupMocks()

			var body io.Reader
			if tc.body != nil {
				payload, err := json.Marshal(tc.body)
				require.NoError(t, err)
				body = bytes.NewReader(payload)
			}
			req, err := http.NewRequest(tc.method, testServer.URL+tc.path, body)
			require.NoError(t, err)

			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err, "Failed to send request")
			defer resp.Body.Close()

			assert.Equal(t, tc.expectedStatus, resp.StatusCode, "Status code mismatch")

			data, err := io.ReadAll(resp.Body)
			require.NoError(t, err, "Failed to read response body")

			actual, err := tc.parseResponse(data)
			require.NoError(t, err, "Failed to parse response")

			assert.Equal(t, tc.expected, actual)
		})
	}
}

func unmarshalResponse[T any]() func([]byte) (interface{}, error) {
	return func(data []byte) (interface{}, error) {
		var response T
		err := json.Unmarshal(data, &response)
		return response, err
	}
}
