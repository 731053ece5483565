package catalog

import (
	"errors"
	"math"
	"testing"

	"github.com/de-tools/social-atlas/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRegistry(t *testing.T) *Registry {
	t.Helper()
	r, err := NewRegistry()
	require.NoError(t, err)
	return r
}

func TestNewRegistry_BuildsEveryNetwork(t *testing.T) {
	r := newRegistry(t)

	assert.Equal(t, domain.Networks(), r.Networks())
	for _, n := range domain.Networks() {
		c, err := r.Get(n)
		require.NoError(t, err)
		assert.NotEmpty(t, c.Metrics(), n)
	}

	_, err := r.Get(domain.Network("myspace"))
	assert.True(t, errors.Is(err, ErrUnknownNetwork))
}

func TestResolveRequiredMetrics(t *testing.T) {
	r := newRegistry(t)
	fb, err := r.Get(domain.NetworkFacebook)
	require.NoError(t, err)

	t.Run("second order dependencies are included", func(t *testing.T) {
		got := ResolveRequiredMetrics([]string{"engagement_rate_per_impression"}, fb)

		assert.Equal(t, []string{
			"engagement_rate_per_impression",
			Engagements,
			Impressions,
			"reactions",
			"comments_count",
			"shares_count",
			"post_link_clicks",
			"post_content_clicks_other",
		}, got)
	})

	t.Run("idempotent and monotonic", func(t *testing.T) {
		inputs := [][]string{
			nil,
			{Impressions},
			{"engagement_rate_per_reach", "video_view_rate", FollowersCount},
			{"net_follower_change", "unknown_metric"},
		}
		for _, in := range inputs {
			once := ResolveRequiredMetrics(in, fb)
			twice := ResolveRequiredMetrics(once, fb)

			assert.Equal(t, once, twice)
			assert.Subset(t, once, in)
		}
	})

	t.Run("duplicates removed", func(t *testing.T) {
		got := ResolveRequiredMetrics([]string{Impressions, Impressions, "video_view_rate"}, fb)
		assert.Equal(t, []string{Impressions, "video_view_rate", VideoViews}, got)
	})

	t.Run("nil catalog returns selection", func(t *testing.T) {
		got := ResolveRequiredMetrics([]string{"a", "b", "a"}, nil)
		assert.Equal(t, []string{"a", "b"}, got)
	})
}

func TestCatalog_BaseMetricsAndCalculationOrder(t *testing.T) {
	r := newRegistry(t)
	ig, err := r.Get(domain.NetworkInstagram)
	require.NoError(t, err)

	required := ResolveRequiredMetrics([]string{"engagement_per_view", FollowersCount}, ig)

	base := ig.BaseMetrics(required)
	assert.NotContains(t, base, Engagements)
	assert.NotContains(t, base, "engagement_per_view")
	assert.Contains(t, base, VideoViews)
	assert.Contains(t, base, "saves")

	order := ig.CalculationOrder([]string{"engagement_per_view"})
	assert.Equal(t, []string{Engagements, "engagement_per_view"}, order)
}

func TestCatalog_AggregationPolicy(t *testing.T) {
	r := newRegistry(t)
	ig, err := r.Get(domain.NetworkInstagram)
	require.NoError(t, err)

	assert.Equal(t, domain.AggregateLast, ig.AggregationOf(FollowersCount))
	assert.Equal(t, domain.AggregateAverage, ig.AggregationOf(FollowingCount))
	assert.Equal(t, domain.AggregateSum, ig.AggregationOf(Impressions))
	assert.Equal(t, domain.AggregateLast, ig.AggregationOf("lifetime_snapshot.something_new"))
	assert.Equal(t, domain.AggregateSum, ig.AggregationOf("something_new"))

	var none *Catalog
	assert.Equal(t, domain.AggregateLast, none.AggregationOf(FollowersCount))
	assert.Equal(t, "x", none.Label("x"))
}

func TestRatioMetric_DivisionByZero(t *testing.T) {
	r := newRegistry(t)
	fb, err := r.Get(domain.NetworkFacebook)
	require.NoError(t, err)

	def, ok := fb.Lookup("engagement_rate_per_impression")
	require.True(t, ok)

	tests := []struct {
		name string
		row  domain.Row
		want float64
	}{
		{"zero denominator", domain.Row{Engagements: 12.0, Impressions: 0.0}, 0},
		{"missing denominator", domain.Row{Engagements: 12.0}, 0},
		{"nil denominator", domain.Row{Engagements: 12.0, Impressions: nil}, 0},
		{"regular", domain.Row{Engagements: 5.0, Impressions: 200.0}, 2.5},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := def.Compute(tc.row)
			require.NoError(t, err)
			assert.False(t, math.IsNaN(got) || math.IsInf(got, 0))
			assert.InDelta(t, tc.want, got, 1e-9)
		})
	}

	assert.Equal(t, 0.0, SafeDivide(1, 0))
}

func TestNew_Validation(t *testing.T) {
	noop := func(domain.Row) (float64, error) { return 0, nil }

	t.Run("cycle", func(t *testing.T) {
		_, err := New(domain.NetworkFacebook,
			domain.MetricDefinition{ID: "a", Calculated: true, DependsOn: []string{"b"}, Compute: noop},
			domain.MetricDefinition{ID: "b", Calculated: true, DependsOn: []string{"a"}, Compute: noop},
		)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "dependency cycle")
	})

	t.Run("unknown dependency", func(t *testing.T) {
		_, err := New(domain.NetworkFacebook,
			domain.MetricDefinition{ID: "a", Calculated: true, DependsOn: []string{"ghost"}, Compute: noop},
		)
		assert.Error(t, err)
	})

	t.Run("duplicate", func(t *testing.T) {
		_, err := New(domain.NetworkFacebook, base("a", "A"), base("a", "A"))
		assert.Error(t, err)
	})

	t.Run("calculated without compute", func(t *testing.T) {
		_, err := New(domain.NetworkFacebook, domain.MetricDefinition{ID: "a", Calculated: true})
		assert.Error(t, err)
	})

	t.Run("lookup returns copies", func(t *testing.T) {
		c, err := New(domain.NetworkFacebook, base("x", "X"), base("y", "Y"), sumOf("z", "Z", "x", "y"))
		require.NoError(t, err)

		def, _ := c.Lookup("z")
		def.DependsOn[0] = "mutated"

		again, _ := c.Lookup("z")
		assert.Equal(t, []string{"x", "y"}, again.DependsOn)
	})
}
