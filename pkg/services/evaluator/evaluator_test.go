package evaluator

import (
	"context"
	"errors"
	"testing"

	"github.com/de-tools/social-atlas/pkg/models/domain"
	"github.com/de-tools/social-atlas/pkg/services/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func facebook(t *testing.T) *catalog.Catalog {
	t.Helper()
	r, err := catalog.NewRegistry()
	require.NoError(t, err)
	c, err := r.Get(domain.NetworkFacebook)
	require.NoError(t, err)
	return c
}

func TestEvaluate_ResolvesSecondOrderDependencies(t *testing.T) {
	c := facebook(t)
	row := domain.NewRow("2025-01-01", domain.NetworkFacebook, "1")
	row["reactions"] = 10.0
	row["comments_count"] = 5.0
	row["shares_count"] = 3.0
	row["post_link_clicks"] = 2.0
	row["post_content_clicks_other"] = nil
	row["impressions"] = 400.0

	got := Evaluate(context.Background(), row, c, []string{"engagement_rate_per_impression"})

	assert.Equal(t, 20.0, got["engagements"])
	assert.InDelta(t, 5.0, got["engagement_rate_per_impression"], 1e-9)
	assert.NotContains(t, row, "engagements", "input row must not be mutated")
}

func TestEvaluate_DivisionByZeroIsZero(t *testing.T) {
	c := facebook(t)
	row := domain.Row{"video_views": 10.0, "impressions": 0.0}

	got := Evaluate(context.Background(), row, c, []string{"video_view_rate"})
	assert.Equal(t, 0.0, got["video_view_rate"])
}

func TestEvaluate_IsolatesFailures(t *testing.T) {
	c, err := catalog.New(domain.NetworkInstagram,
		domain.MetricDefinition{ID: "a"},
		domain.MetricDefinition{ID: "b"},
		domain.MetricDefinition{
			ID: "panics", Calculated: true, DependsOn: []string{"a"},
			Compute: func(domain.Row) (float64, error) { panic("boom") },
		},
		domain.MetricDefinition{
			ID: "fails", Calculated: true, DependsOn: []string{"a"},
			Compute: func(domain.Row) (float64, error) { return 0, errors.New("bad input") },
		},
		domain.MetricDefinition{ID: "ratio", Ratio: &domain.Ratio{Numerator: "a", Denominator: "b", Scale: 1}},
	)
	require.NoError(t, err)

	row := domain.Row{domain.ColumnDate: "2025-01-01", "a": 6.0, "b": 3.0}
	got := Evaluate(context.Background(), row, c, []string{"panics", "fails", "ratio"})

	assert.Contains(t, got, "panics")
	assert.Nil(t, got["panics"])
	assert.Contains(t, got, "fails")
	assert.Nil(t, got["fails"])
	assert.Equal(t, 2.0, got["ratio"])
	assert.Equal(t, 6.0, got["a"])
}

func TestEvaluate_NonNumericInputBecomesNull(t *testing.T) {
	c := facebook(t)
	row := domain.Row{"video_views": `{"organic": 3}`, "impressions": 10.0, "reactions": 1.0}

	got := Evaluate(context.Background(), row, c, []string{"video_view_rate", "engagements"})
	assert.Nil(t, got["video_view_rate"])
	assert.Equal(t, 1.0, got["engagements"])
}

func TestEvaluateAll_NoCalculatedMetrics(t *testing.T) {
	c := facebook(t)
	rows := []domain.Row{{"impressions": 1.0}}

	got := EvaluateAll(context.Background(), rows, c, []string{"impressions"})
	assert.Equal(t, rows, got)
}
