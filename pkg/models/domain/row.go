package domain

import (
	"encoding/json"
	"fmt"
	"maps"
	"strconv"
	"strings"
)

const (
	ColumnDate      = "Date"
	ColumnNetwork   = "Network"
	ColumnProfileID = "profile_id"

	UnknownDate = "Unknown"
)

// Row is a single normalized record. Besides the reserved columns every key is a
// metric id mapped to a float64, a string (JSON-encoded objects included) or nil.
type Row map[string]any

func NewRow(date string, network Network, profileID string) Row {
	return Row{
		ColumnDate:      date,
		ColumnNetwork:   network.DisplayName(),
		ColumnProfileID: profileID,
	}
}

func IsReservedColumn(key string) bool {
	return key == ColumnDate || key == ColumnNetwork || key == ColumnProfileID
}

func (r Row) Clone() Row {
	return maps.Clone(r)
}

func (r Row) Date() string {
	s, _ := r[ColumnDate].(string)
	return s
}

func (r Row) Network() string {
	s, _ := r[ColumnNetwork].(string)
	return s
}

func (r Row) ProfileID() string {
	return ToString(r[ColumnProfileID])
}

// Number reads a metric as a float64. Missing and nil values read as zero;
// values that cannot be interpreted as numbers return an error.
func (r Row) Number(key string) (float64, error) {
	v, ok := r[key]
	if !ok || v == nil {
		return 0, nil
	}
	f, ok := ToFloat(v)
	if !ok {
		return 0, fmt.Errorf("metric %s: value %v (%T) is not numeric", key, v, v)
	}
	return f, nil
}

// MetricKeys returns the non-reserved keys of the row.
func (r Row) MetricKeys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		if !IsReservedColumn(k) {
			keys = append(keys, k)
		}
	}
	return keys
}

// ToFloat converts the numeric representations produced by JSON decoding.
// Strings are parsed leniently so that "12" coming from a CSV-ish endpoint still counts.
func ToFloat(v any) (float64, bool) {
	switch typed := v.(type) {
	case float64:
		return typed, true
	case float32:
		return float64(typed), true
	case int:
		return float64(typed), true
	case int64:
		return float64(typed), true
	case json.Number:
		f, err := typed.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(typed), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func ToString(v any) string {
	switch typed := v.(type) {
	case nil:
		return ""
	case string:
		return typed
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case int:
		return strconv.Itoa(typed)
	case int64:
		return strconv.FormatInt(typed, 10)
	case json.Number:
		return typed.String()
	default:
		return fmt.Sprintf("%v", typed)
	}
}
