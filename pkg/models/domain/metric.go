package domain

type Aggregation int

const (
	// AggregateSum adds up per-day deltas.
	AggregateSum Aggregation = iota
	// AggregateLast keeps the chronologically last value of a cumulative counter.
	AggregateLast
	// AggregateAverage sums and divides by the number of observations, rounded to an integer.
	AggregateAverage
)

func (a Aggregation) String() string {
	switch a {
	case AggregateLast:
		return "last"
	case AggregateAverage:
		return "average"
	default:
		return "sum"
	}
}

// ComputeFunc derives a calculated metric from a row that already holds every dependency.
type ComputeFunc func(row Row) (float64, error)

// Ratio describes a rate metric so summary rows can recompute it from totals.
type Ratio struct {
	Numerator   string
	Denominator string
	Scale       float64
}

type MetricDefinition struct {
	ID          string
	Label       string
	Calculated  bool
	DependsOn   []string
	Aggregation Aggregation
	Ratio       *Ratio
	Compute     ComputeFunc
}
