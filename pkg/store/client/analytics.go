package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/de-tools/social-atlas/pkg/models/domain"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	defaultTimeoutSeconds  = 60
	defaultUserAgent       = "social-atlas/1.0"
	defaultRateLimitPerSec = 2
	defaultRateLimitBurst  = 2
	defaultMaxPages        = 100

	analyticsPath = "/analytics/profiles"
)

type Config struct {
	BaseURL         string
	Timeout         time.Duration
	UserAgent       string
	RateLimitPerSec int
	RateLimitBurst  int
	MaxPages        int
}

// FetchError wraps transport failures and non-2xx responses of the analytics API.
type FetchError struct {
	Network    domain.Network
	StatusCode int
	Body       string
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s analytics: status %d: %s", e.Network, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("fetch %s analytics: %v", e.Network, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

type analyticsRequest struct {
	Network string   `json:"network"`
	Filters []string `json:"filters"`
	Metrics []string `json:"metrics"`
	Page    int      `json:"page"`
	Cursor  string   `json:"cursor,omitempty"`
}

// AnalyticsClient talks to the credential-attaching analytics proxy.
type AnalyticsClient struct {
	config  Config
	client  *http.Client
	limiter *rate.Limiter
}

func NewAnalyticsClient(cfg Config) (*AnalyticsClient, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("analytics base url is required")
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeoutSeconds * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.RateLimitPerSec <= 0 {
		cfg.RateLimitPerSec = defaultRateLimitPerSec
	}
	if cfg.RateLimitBurst <= 0 {
		cfg.RateLimitBurst = defaultRateLimitBurst
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = defaultMaxPages
	}

	return &AnalyticsClient{
		config:  cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst),
	}, nil
}

// FetchAnalytics requests daily metrics for the given profiles. Paginated flat
// responses are concatenated into a single {"data": [...]} payload; any other
// shape is returned as decoded.
func (c *AnalyticsClient) FetchAnalytics(
	ctx context.Context,
	network domain.Network,
	profileIDs, metricIDs []string,
	startDate, endDate string,
) (any, error) {
	logger := zerolog.Ctx(ctx)

	req := analyticsRequest{
		Network: string(network),
		Filters: []string{
			fmt.Sprintf("customer_profile_id.eq(%s)", strings.Join(profileIDs, ", ")),
			fmt.Sprintf("reporting_period.in(%s...%s)", startDate, endDate),
		},
		Metrics: metricIDs,
		Page:    1,
	}

	var items []any
	for ; req.Page <= c.config.MaxPages; req.Page++ {
		payload, err := c.doRequest(ctx, network, req)
		if err != nil {
			return nil, err
		}

		page, ok := payload.(map[string]any)
		data, isFlat := page["data"].([]any)
		if !ok || !isFlat {
			if req.Page == 1 {
				return payload, nil
			}
			logger.Warn().
				Str("network", string(network)).
				Int("page", req.Page).
				Msg("stopping pagination on unexpected page shape")
			break
		}
		items = append(items, data...)

		cursor, more := nextPage(page, req.Page)
		if !more {
			break
		}
		req.Cursor = cursor
	}

	logger.Debug().
		Str("network", string(network)).
		Int("items", len(items)).
		Int("pages", req.Page).
		Msg("analytics fetched")

	if items == nil {
		items = []any{}
	}
	return map[string]any{"data": items}, nil
}

// nextPage reads {"paging": {"next_cursor": "...", "total_pages": n}}.
func nextPage(page map[string]any, current int) (string, bool) {
	p, ok := page["paging"].(map[string]any)
	if !ok {
		return "", false
	}
	if cursor, _ := p["next_cursor"].(string); cursor != "" {
		return cursor, true
	}
	total, ok := domain.ToFloat(p["total_pages"])
	return "", ok && int(total) > current
}

func (c *AnalyticsClient) doRequest(ctx context.Context, network domain.Network, body analyticsRequest) (any, error) {
	logger := zerolog.Ctx(ctx)

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &FetchError{Network: network, Err: err}
	}

	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode analytics request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+analyticsPath, bytes.NewReader(encoded))
	if err != nil {
		return nil, &FetchError{Network: network, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.config.UserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		logger.Warn().Err(err).Str("network", string(network)).Msg("analytics request failed")
		return nil, &FetchError{Network: network, Err: err}
	}
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close response body")
		}
	}(resp.Body)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Network: network, StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &FetchError{
			Network:    network,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(raw)),
			Err:        fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, &FetchError{Network: network, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return payload, nil
}
