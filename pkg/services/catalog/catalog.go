// Package catalog holds the immutable per-network metric registry and the
// dependency resolution between calculated and base metrics.
package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/de-tools/social-atlas/pkg/models/domain"
	"github.com/samber/lo"
)

const snapshotPrefix = "lifetime_snapshot."

var ErrUnknownNetwork = errors.New("unknown network")

// Catalog is the metric vocabulary of one network. It is immutable once built.
type Catalog struct {
	network domain.Network
	defs    []domain.MetricDefinition
	byID    map[string]int
}

// New validates the definitions and returns a catalog. Calculated metrics must
// declare a compute function (or a ratio) and their dependency graph must be acyclic.
func New(network domain.Network, defs ...domain.MetricDefinition) (*Catalog, error) {
	c := &Catalog{
		network: network,
		defs:    make([]domain.MetricDefinition, 0, len(defs)),
		byID:    make(map[string]int, len(defs)),
	}

	for _, def := range defs {
		if def.ID == "" {
			return nil, fmt.Errorf("%s: metric id cannot be empty", network)
		}
		if _, exists := c.byID[def.ID]; exists {
			return nil, fmt.Errorf("%s: duplicate metric %q", network, def.ID)
		}
		if def.Label == "" {
			def.Label = def.ID
		}
		if def.Ratio != nil {
			def.Calculated = true
			if len(def.DependsOn) == 0 {
				def.DependsOn = []string{def.Ratio.Numerator, def.Ratio.Denominator}
			}
			if def.Compute == nil {
				def.Compute = ratioCompute(*def.Ratio)
			}
		}
		if def.Calculated && def.Compute == nil {
			return nil, fmt.Errorf("%s: calculated metric %q has no compute function", network, def.ID)
		}
		if !def.Calculated && len(def.DependsOn) > 0 {
			return nil, fmt.Errorf("%s: base metric %q cannot declare dependencies", network, def.ID)
		}
		if def.Aggregation == domain.AggregateSum && strings.HasPrefix(def.ID, snapshotPrefix) {
			def.Aggregation = domain.AggregateLast
		}
		def.DependsOn = append([]string(nil), def.DependsOn...)

		c.byID[def.ID] = len(c.defs)
		c.defs = append(c.defs, def)
	}

	for _, def := range c.defs {
		for _, dep := range def.DependsOn {
			if _, ok := c.byID[dep]; !ok {
				return nil, fmt.Errorf("%s: metric %q depends on unknown metric %q", network, def.ID, dep)
			}
		}
	}

	if err := c.checkAcyclic(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Catalog) checkAcyclic() error {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(c.defs))

	var visit func(id string, path []string) error
	visit = func(id string, path []string) error {
		switch state[id] {
		case visiting:
			return fmt.Errorf("%s: dependency cycle %s", c.network, strings.Join(append(path, id), " -> "))
		case done:
			return nil
		}
		state[id] = visiting
		for _, dep := range c.defs[c.byID[id]].DependsOn {
			if err := visit(dep, append(path, id)); err != nil {
				return err
			}
		}
		state[id] = done
		return nil
	}

	for _, def := range c.defs {
		if err := visit(def.ID, nil); err != nil {
			return err
		}
	}
	return nil
}

func (c *Catalog) Network() domain.Network {
	if c == nil {
		return ""
	}
	return c.network
}

// Metrics returns a copy of the definitions in declaration order.
func (c *Catalog) Metrics() []domain.MetricDefinition {
	if c == nil {
		return nil
	}
	out := make([]domain.MetricDefinition, len(c.defs))
	for i, def := range c.defs {
		def.DependsOn = append([]string(nil), def.DependsOn...)
		out[i] = def
	}
	return out
}

func (c *Catalog) Lookup(id string) (domain.MetricDefinition, bool) {
	if c == nil {
		return domain.MetricDefinition{}, false
	}
	idx, ok := c.byID[id]
	if !ok {
		return domain.MetricDefinition{}, false
	}
	def := c.defs[idx]
	def.DependsOn = append([]string(nil), def.DependsOn...)
	return def, true
}

func (c *Catalog) IsCalculated(id string) bool {
	def, ok := c.Lookup(id)
	return ok && def.Calculated
}

// Label falls back to the id for metrics the catalog does not know.
func (c *Catalog) Label(id string) string {
	if def, ok := c.Lookup(id); ok {
		return def.Label
	}
	return id
}

// AggregationOf reports the period aggregation policy of a metric. Unknown
// snapshot-style ids keep their last value, everything else is summed.
func (c *Catalog) AggregationOf(id string) domain.Aggregation {
	if def, ok := c.Lookup(id); ok {
		return def.Aggregation
	}
	if strings.HasPrefix(id, snapshotPrefix) {
		return domain.AggregateLast
	}
	return domain.AggregateSum
}

// RatioOf returns the ratio definition of a rate metric.
func (c *Catalog) RatioOf(id string) (domain.Ratio, bool) {
	def, ok := c.Lookup(id)
	if !ok || def.Ratio == nil {
		return domain.Ratio{}, false
	}
	return *def.Ratio, true
}

// BaseMetrics filters ids down to what has to be requested from the API.
func (c *Catalog) BaseMetrics(ids []string) []string {
	return lo.Filter(lo.Uniq(ids), func(id string, _ int) bool {
		return !c.IsCalculated(id)
	})
}

// CalculationOrder returns the calculated metrics among ids (and their calculated
// dependencies) so that every metric comes after the metrics it depends on.
func (c *Catalog) CalculationOrder(ids []string) []string {
	if c == nil {
		return nil
	}
	var order []string
	seen := make(map[string]bool)

	var visit func(id string)
	visit = func(id string) {
		if seen[id] {
			return
		}
		seen[id] = true
		def, ok := c.Lookup(id)
		if !ok || !def.Calculated {
			return
		}
		for _, dep := range def.DependsOn {
			visit(dep)
		}
		order = append(order, id)
	}

	for _, id := range ids {
		visit(id)
	}
	return order
}

// ResolveRequiredMetrics returns selected plus the transitive closure of its
// dependencies: selected ids first, dependencies appended in discovery order.
func ResolveRequiredMetrics(selected []string, c *Catalog) []string {
	out := make([]string, 0, len(selected))
	seen := make(map[string]bool, len(selected))

	add := func(id string) bool {
		if seen[id] {
			return false
		}
		seen[id] = true
		out = append(out, id)
		return true
	}
	for _, id := range selected {
		add(id)
	}

	for i := 0; i < len(out); i++ {
		def, ok := c.Lookup(out[i])
		if !ok {
			continue
		}
		for _, dep := range def.DependsOn {
			add(dep)
		}
	}
	return out
}

// SafeDivide returns 0 instead of NaN or Inf when the denominator is zero.
func SafeDivide(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0
	}
	return numerator / denominator
}

func ratioCompute(r domain.Ratio) domain.ComputeFunc {
	scale := r.Scale
	if scale == 0 {
		scale = 1
	}
	return func(row domain.Row) (float64, error) {
		num, err := row.Number(r.Numerator)
		if err != nil {
			return 0, err
		}
		den, err := row.Number(r.Denominator)
		if err != nil {
			return 0, err
		}
		return SafeDivide(num, den) * scale, nil
	}
}

func sumCompute(ids ...string) domain.ComputeFunc {
	return func(row domain.Row) (float64, error) {
		var total float64
		for _, id := range ids {
			v, err := row.Number(id)
			if err != nil {
				return 0, err
			}
			total += v
		}
		return total, nil
	}
}

func differenceCompute(minuend, subtrahend string) domain.ComputeFunc {
	return func(row domain.Row) (float64, error) {
		a, err := row.Number(minuend)
		if err != nil {
			return 0, err
		}
		b, err := row.Number(subtrahend)
		if err != nil {
			return 0, err
		}
		return a - b, nil
	}
}
