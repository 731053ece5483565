// Package aggregator rolls normalized rows up into reporting periods.
package aggregator

import (
	"context"
	"math"
	"slices"
	"time"

	"github.com/de-tools/social-atlas/pkg/models/domain"
	"github.com/de-tools/social-atlas/pkg/services/catalog"
	"github.com/de-tools/social-atlas/pkg/services/evaluator"
	"github.com/rs/zerolog"
)

const CodeDateUnparsable = "DATE_UNPARSABLE"

// Aggregator buckets rows of a single network by period. The catalog is
// optional; without one every metric is summed except lifetime snapshots.
type Aggregator struct {
	catalog *catalog.Catalog
}

func New(c *catalog.Catalog) *Aggregator {
	return &Aggregator{catalog: c}
}

type groupKey struct {
	network   string
	profileID string
}

type group struct {
	groupKey
	columns    []string
	known      map[string]bool
	stringCols map[string]bool
	buckets    map[string]*bucket
}

type bucket struct {
	key    Key
	sums map[string]float64
	last map[string]any
	// rows counts the daily rows that landed in the bucket.
	rows int
}

type dated struct {
	row  domain.Row
	date time.Time
}

// Aggregate groups rows by (network, profile) and then by period. Daily
// periods return rows untouched. When rangeStart and rangeEnd are set, missing
// periods inside the range are filled with placeholder rows.
func (a *Aggregator) Aggregate(ctx context.Context, rows []domain.Row, period domain.Period, rangeStart, rangeEnd time.Time) []domain.Row {
	if period == domain.PeriodDaily || len(rows) == 0 {
		if rows == nil {
			return []domain.Row{}
		}
		return rows
	}
	logger := zerolog.Ctx(ctx)
	if !period.Valid() {
		logger.Warn().Str("period", string(period)).Msg("unknown period, rows left unaggregated")
		return rows
	}

	var order []*group
	groups := make(map[groupKey]*group)
	entries := make(map[*group][]dated)

	for _, row := range rows {
		date, err := ParseDate(row.Date())
		if err != nil {
			logger.Warn().
				Err(err).
				Str("code", CodeDateUnparsable).
				Str("network", row.Network()).
				Str("profile_id", row.ProfileID()).
				Msg("row dropped from aggregation")
			continue
		}
		gk := groupKey{network: row.Network(), profileID: row.ProfileID()}
		g, ok := groups[gk]
		if !ok {
			g = &group{
				groupKey:   gk,
				known:      make(map[string]bool),
				stringCols: make(map[string]bool),
				buckets:    make(map[string]*bucket),
			}
			groups[gk] = g
			order = append(order, g)
		}
		entries[g] = append(entries[g], dated{row: row, date: date})
	}

	out := make([]domain.Row, 0, len(rows))
	for _, g := range order {
		items := entries[g]
		slices.SortStableFunc(items, func(x, y dated) int { return x.date.Compare(y.date) })

		for _, item := range items {
			key, _ := KeyFor(period, item.date)
			b, ok := g.buckets[key.Value]
			if !ok {
				b = &bucket{
					key:  key,
					sums: make(map[string]float64),
					last: make(map[string]any),
				}
				g.buckets[key.Value] = b
			}
			a.accumulate(g, b, item.row)
		}

		if !rangeStart.IsZero() && !rangeEnd.IsZero() {
			keys, err := Keys(period, rangeStart, rangeEnd)
			if err == nil {
				for _, key := range keys {
					if _, ok := g.buckets[key.Value]; !ok {
						g.buckets[key.Value] = &bucket{key: key}
					}
				}
			}
		}

		buckets := make([]*bucket, 0, len(g.buckets))
		for _, b := range g.buckets {
			buckets = append(buckets, b)
		}
		slices.SortFunc(buckets, func(x, y *bucket) int { return compareKeys(period, x.key, y.key) })

		for _, b := range buckets {
			out = append(out, a.finalize(ctx, g, b))
		}
	}
	return out
}

func (a *Aggregator) accumulate(g *group, b *bucket, row domain.Row) {
	b.rows++
	for _, col := range sortedMetricKeys(row) {
		if !g.known[col] {
			g.known[col] = true
			g.columns = append(g.columns, col)
		}

		v := row[col]
		if v == nil {
			continue
		}
		if s, ok := v.(string); ok {
			g.stringCols[col] = true
			b.last[col] = s
			continue
		}
		f, ok := numeric(v)
		if !ok {
			b.last[col] = v
			continue
		}

		switch a.catalog.AggregationOf(col) {
		case domain.AggregateLast:
			b.last[col] = f
		case domain.AggregateAverage:
			b.sums[col] += f
		default:
			b.sums[col] += f
		}
	}
}

func (a *Aggregator) finalize(ctx context.Context, g *group, b *bucket) domain.Row {
	row := domain.Row{
		domain.ColumnDate:      b.key.Value,
		domain.ColumnNetwork:   g.network,
		domain.ColumnProfileID: g.profileID,
	}

	for _, col := range g.columns {
		if v, ok := b.last[col]; ok {
			row[col] = v
			continue
		}
		if g.stringCols[col] {
			row[col] = nil
			continue
		}
		switch a.catalog.AggregationOf(col) {
		case domain.AggregateLast:
			row[col] = nil
		case domain.AggregateAverage:
			sum, seen := b.sums[col]
			if !seen || b.rows == 0 {
				row[col] = nil
				continue
			}
			row[col] = math.Round(sum / float64(b.rows))
		default:
			row[col] = b.sums[col]
		}
	}

	if recompute := a.recomputable(g.columns); len(recompute) > 0 {
		row = evaluator.Evaluate(ctx, row, a.catalog, recompute)
	}
	return row
}

// recomputable lists the calculated columns whose direct dependencies are all
// present; ratios must be rebuilt from bucket totals rather than summed.
func (a *Aggregator) recomputable(columns []string) []string {
	if a.catalog == nil {
		return nil
	}
	present := make(map[string]bool, len(columns))
	for _, col := range columns {
		present[col] = true
	}

	var out []string
	for _, col := range columns {
		def, ok := a.catalog.Lookup(col)
		if !ok || !def.Calculated {
			continue
		}
		complete := true
		for _, dep := range def.DependsOn {
			if !present[dep] {
				complete = false
				break
			}
		}
		if complete {
			out = append(out, col)
		}
	}
	return out
}

func sortedMetricKeys(row domain.Row) []string {
	keys := row.MetricKeys()
	slices.Sort(keys)
	return keys
}

// numeric accepts numbers only; numeric-looking strings stay strings.
func numeric(v any) (float64, bool) {
	if _, ok := v.(string); ok {
		return 0, false
	}
	return domain.ToFloat(v)
}
