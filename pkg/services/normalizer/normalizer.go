// Package normalizer turns raw per-network API responses into flat rows.
package normalizer

import (
	"context"

	"github.com/de-tools/social-atlas/pkg/models/domain"
	"github.com/de-tools/social-atlas/pkg/services/catalog"
	"github.com/rs/zerolog"
)

const CodeFormatUnrecognized = "FORMAT_UNRECOGNIZED"

// Normalizer is implemented once per network.
type Normalizer interface {
	Network() domain.Network
	// RequiredBaseMetrics returns the metrics to request from the API for a selection.
	RequiredBaseMetrics(selected []string) []string
	// Normalize flattens a raw response into rows holding the given metric ids.
	// Unrecognized responses yield no rows.
	Normalize(ctx context.Context, raw any, metricIDs []string, profileIDs []string) []domain.Row
}

type base struct {
	network domain.Network
	catalog *catalog.Catalog
}

func (b base) Network() domain.Network {
	return b.network
}

func (b base) RequiredBaseMetrics(selected []string) []string {
	return b.catalog.BaseMetrics(catalog.ResolveRequiredMetrics(selected, b.catalog))
}

func (b base) detect(ctx context.Context, raw any) (Payload, bool) {
	payload, err := Detect(raw)
	if err != nil {
		zerolog.Ctx(ctx).Warn().
			Err(err).
			Str("code", CodeFormatUnrecognized).
			Str("network", string(b.network)).
			Msg("ignoring response with unrecognized shape")
		return payload, false
	}
	zerolog.Ctx(ctx).Debug().
		Str("network", string(b.network)).
		Str("shape", payload.Shape.String()).
		Int("items", len(payload.Items)).
		Msg("response shape detected")
	return payload, true
}

func (b base) row(item map[string]any, date, profileID string, metricIDs []string) domain.Row {
	row := domain.NewRow(date, b.network, profileID)
	for _, id := range metricIDs {
		row[id] = extractMetric(item, id)
	}
	return row
}

func defaultProfile(profileIDs []string) string {
	if len(profileIDs) == 1 {
		return profileIDs[0]
	}
	return ""
}

// itemNormalizer maps every response item to exactly one row.
type itemNormalizer struct {
	base
}

func NewItemNormalizer(network domain.Network, c *catalog.Catalog) Normalizer {
	return &itemNormalizer{base{network: network, catalog: c}}
}

func (n *itemNormalizer) Normalize(ctx context.Context, raw any, metricIDs []string, profileIDs []string) []domain.Row {
	payload, ok := n.detect(ctx, raw)
	if !ok {
		return []domain.Row{}
	}

	fallback := defaultProfile(profileIDs)
	rows := make([]domain.Row, 0, len(payload.Items))
	for _, item := range payload.Items {
		rows = append(rows, n.row(item, extractDate(item), extractProfileID(item, fallback), metricIDs))
	}
	return rows
}

// genericNormalizer also understands items carrying a data_points array, each
// point becoming its own dated row.
type genericNormalizer struct {
	base
}

func NewGenericNormalizer(network domain.Network, c *catalog.Catalog) Normalizer {
	return &genericNormalizer{base{network: network, catalog: c}}
}

func (n *genericNormalizer) Normalize(ctx context.Context, raw any, metricIDs []string, profileIDs []string) []domain.Row {
	payload, ok := n.detect(ctx, raw)
	if !ok {
		return []domain.Row{}
	}

	fallback := defaultProfile(profileIDs)
	rows := make([]domain.Row, 0, len(payload.Items))
	for _, item := range payload.Items {
		profileID := extractProfileID(item, fallback)

		points, hasPoints := item["data_points"].([]any)
		if !hasPoints {
			rows = append(rows, n.row(item, extractDate(item), profileID, metricIDs))
			continue
		}
		for _, point := range objects(points) {
			rows = append(rows, n.row(point, extractDate(point), extractProfileID(point, profileID), metricIDs))
		}
	}
	return rows
}
