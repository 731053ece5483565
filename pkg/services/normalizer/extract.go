package normalizer

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/de-tools/social-atlas/pkg/models/domain"
)

const (
	reportingPeriodDimension = "reporting_period.by(day)"
	profileDimension         = "customer_profile_id"
	followersMetric          = "lifetime_snapshot.followers_count"
)

// extractMetric resolves one metric id from an item. Dotted ids look at
// metrics[parent][child], then metrics[id], then item[parent][child];
// plain ids look at metrics[id], then item[id].
func extractMetric(item map[string]any, id string) any {
	metrics, _ := item["metrics"].(map[string]any)

	if parent, child, dotted := strings.Cut(id, "."); dotted {
		if v, ok := nested(metrics, parent, child); ok {
			return toCell(v)
		}
		if v, ok := lookup(metrics, id); ok {
			return toCell(v)
		}
		if v, ok := nested(item, parent, child); ok {
			return toCell(v)
		}
		if id == followersMetric {
			return extractFollowers(item, metrics)
		}
		return nil
	}

	if v, ok := lookup(metrics, id); ok {
		return toCell(v)
	}
	if v, ok := lookup(item, id); ok {
		return toCell(v)
	}
	return nil
}

// extractFollowers covers endpoints that report the follower count without the
// lifetime_snapshot prefix.
func extractFollowers(item, metrics map[string]any) any {
	if v, ok := lookup(metrics, "followers_count"); ok {
		return toCell(v)
	}
	if v, ok := lookup(item, "followers_count"); ok {
		return toCell(v)
	}
	return nil
}

func extractDate(item map[string]any) string {
	if s := stringField(item, "end_time"); s != "" {
		return s
	}
	if dims, ok := item["dimensions"].(map[string]any); ok {
		if s := stringField(dims, reportingPeriodDimension); s != "" {
			return s
		}
	}
	return domain.UnknownDate
}

func extractProfileID(item map[string]any, fallback string) string {
	if dims, ok := item["dimensions"].(map[string]any); ok {
		if s := stringField(dims, profileDimension); s != "" {
			return s
		}
	}
	for _, key := range []string{profileDimension, "profile_id"} {
		if s := stringField(item, key); s != "" {
			return s
		}
	}
	return fallback
}

func lookup(m map[string]any, key string) (any, bool) {
	if m == nil {
		return nil, false
	}
	v, ok := m[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

func nested(m map[string]any, parent, child string) (any, bool) {
	p, ok := lookup(m, parent)
	if !ok {
		return nil, false
	}
	pm, ok := p.(map[string]any)
	if !ok {
		return nil, false
	}
	return lookup(pm, child)
}

func stringField(m map[string]any, key string) string {
	v, ok := lookup(m, key)
	if !ok {
		return ""
	}
	return strings.TrimSpace(domain.ToString(v))
}

// toCell turns a decoded JSON value into something a spreadsheet cell can hold.
func toCell(v any) any {
	switch typed := v.(type) {
	case nil:
		return nil
	case float64:
		return typed
	case json.Number:
		if f, err := typed.Float64(); err == nil {
			return f
		}
		return typed.String()
	case int:
		return float64(typed)
	case int64:
		return float64(typed)
	case string:
		return typed
	case bool:
		return fmt.Sprintf("%t", typed)
	default:
		encoded, err := json.Marshal(typed)
		if err != nil {
			return fmt.Sprintf("%v", typed)
		}
		return string(encoded)
	}
}
