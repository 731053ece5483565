// Package evaluator attaches calculated metrics to normalized rows.
package evaluator

import (
	"context"
	"fmt"
	"math"

	"github.com/de-tools/social-atlas/pkg/models/domain"
	"github.com/de-tools/social-atlas/pkg/services/catalog"
	"github.com/rs/zerolog"
)

const CodeCalculationFailed = "CALCULATION_FAILED"

// CalculationError reports a calculated metric whose compute function failed.
type CalculationError struct {
	MetricID string
	Err      error
}

func (e *CalculationError) Error() string {
	return fmt.Sprintf("failed to calculate %s: %v", e.MetricID, e.Err)
}

func (e *CalculationError) Unwrap() error {
	return e.Err
}

// Evaluate returns a copy of row with every calculated metric required by
// selected attached. A failing metric is set to nil; the others are unaffected.
func Evaluate(ctx context.Context, row domain.Row, c *catalog.Catalog, selected []string) domain.Row {
	out := row.Clone()
	for _, id := range c.CalculationOrder(selected) {
		def, _ := c.Lookup(id)

		value, err := compute(def, out)
		if err != nil {
			zerolog.Ctx(ctx).Warn().
				Err(err).
				Str("code", CodeCalculationFailed).
				Str("metric", id).
				Str("date", out.Date()).
				Msg("calculated metric set to null")
			out[id] = nil
			continue
		}
		out[id] = value
	}
	return out
}

// EvaluateAll applies Evaluate to every row.
func EvaluateAll(ctx context.Context, rows []domain.Row, c *catalog.Catalog, selected []string) []domain.Row {
	if len(c.CalculationOrder(selected)) == 0 {
		return rows
	}
	out := make([]domain.Row, len(rows))
	for i, row := range rows {
		out[i] = Evaluate(ctx, row, c, selected)
	}
	return out
}

func compute(def domain.MetricDefinition, row domain.Row) (value float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &CalculationError{MetricID: def.ID, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	value, err = def.Compute(row)
	if err != nil {
		return 0, &CalculationError{MetricID: def.ID, Err: err}
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, nil
	}
	return value, nil
}
