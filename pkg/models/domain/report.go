package domain

import "time"

type Period string

const (
	PeriodDaily     Period = "daily"
	PeriodMonthly   Period = "monthly"
	PeriodQuarterly Period = "quarterly"
	PeriodYearly    Period = "yearly"
)

func (p Period) Valid() bool {
	switch p {
	case PeriodDaily, PeriodMonthly, PeriodQuarterly, PeriodYearly:
		return true
	}
	return false
}

// ReportConfig describes a single report generation request.
type ReportConfig struct {
	Period            Period
	StartDate         string // YYYY-MM-DD
	EndDate           string // YYYY-MM-DD
	Networks          []Network
	ProfilesByNetwork map[Network][]Profile
	MetricsByNetwork  map[Network][]string
}

// Column is an output column; Header is what the workbook shows.
type Column struct {
	Key    string
	Header string
}

type Sheet struct {
	Name        string
	Network     Network
	Columns     []Column
	Rows        []Row
	SummaryRows []Row
}

// AllRows returns data rows followed by summary rows.
func (s Sheet) AllRows() []Row {
	out := make([]Row, 0, len(s.Rows)+len(s.SummaryRows))
	out = append(out, s.Rows...)
	return append(out, s.SummaryRows...)
}

type NetworkFailure struct {
	Network Network
	Error   string
}

type Report struct {
	Period      Period
	Start       time.Time
	End         time.Time
	GeneratedAt time.Time
	Sheets      []Sheet
	Failures    []NetworkFailure
}

// SheetRows maps sheet names to their rows, summary rows included.
func (r *Report) SheetRows() map[string][]Row {
	out := make(map[string][]Row, len(r.Sheets))
	for _, s := range r.Sheets {
		out[s.Name] = s.AllRows()
	}
	return out
}

func (r *Report) DataRowCount() int {
	total := 0
	for _, s := range r.Sheets {
		total += len(s.Rows)
	}
	return total
}
