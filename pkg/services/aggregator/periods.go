package aggregator

import (
	"fmt"
	"strings"
	"time"

	"github.com/de-tools/social-atlas/pkg/models/domain"
)

// Fiscal years start on April 1: FY2025 runs from 2025-04-01 to 2026-03-31.
const fiscalYearStartMonth = time.April

// Key identifies a reporting period bucket.
type Key struct {
	Value      string
	FiscalYear int
	Quarter    int
	start      time.Time
}

// FiscalQuarterOf returns the fiscal quarter (1-4) and fiscal year of a date.
func FiscalQuarterOf(t time.Time) (quarter, fiscalYear int) {
	fiscalYear = t.Year()
	if t.Month() < fiscalYearStartMonth {
		fiscalYear--
	}
	offset := (int(t.Month()) - int(fiscalYearStartMonth) + 12) % 12
	return offset/3 + 1, fiscalYear
}

// KeyFor maps a date onto its bucket: "2025-04" (monthly), "FY2025-Q1"
// (quarterly) or "FY2025-2026" (yearly).
func KeyFor(period domain.Period, t time.Time) (Key, error) {
	quarter, fiscalYear := FiscalQuarterOf(t)
	switch period {
	case domain.PeriodMonthly:
		return Key{
			Value:      fmt.Sprintf("%04d-%02d", t.Year(), int(t.Month())),
			FiscalYear: fiscalYear,
			Quarter:    quarter,
			start:      time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC),
		}, nil
	case domain.PeriodQuarterly:
		return Key{
			Value:      fmt.Sprintf("FY%d-Q%d", fiscalYear, quarter),
			FiscalYear: fiscalYear,
			Quarter:    quarter,
			start:      time.Date(fiscalYear, fiscalYearStartMonth+time.Month(3*(quarter-1)), 1, 0, 0, 0, 0, time.UTC),
		}, nil
	case domain.PeriodYearly:
		return Key{
			Value:      fmt.Sprintf("FY%d-%d", fiscalYear, fiscalYear+1),
			FiscalYear: fiscalYear,
			start:      time.Date(fiscalYear, fiscalYearStartMonth, 1, 0, 0, 0, 0, time.UTC),
		}, nil
	default:
		return Key{}, fmt.Errorf("period %q has no buckets", period)
	}
}

func (k Key) next(period domain.Period) Key {
	var months int
	switch period {
	case domain.PeriodMonthly:
		months = 1
	case domain.PeriodQuarterly:
		months = 3
	default:
		months = 12
	}
	next, _ := KeyFor(period, k.start.AddDate(0, months, 0))
	return next
}

// Keys enumerates every bucket between two dates, both ends included.
func Keys(period domain.Period, from, to time.Time) ([]Key, error) {
	first, err := KeyFor(period, from)
	if err != nil {
		return nil, err
	}
	last, err := KeyFor(period, to)
	if err != nil {
		return nil, err
	}

	var keys []Key
	for k := first; !k.start.After(last.start); k = k.next(period) {
		keys = append(keys, k)
	}
	return keys, nil
}

// compareKeys orders quarters by fiscal year then quarter, years by fiscal
// year, and months by their zero-padded YYYY-MM value.
func compareKeys(period domain.Period, a, b Key) int {
	switch period {
	case domain.PeriodQuarterly:
		if a.FiscalYear != b.FiscalYear {
			return a.FiscalYear - b.FiscalYear
		}
		return a.Quarter - b.Quarter
	case domain.PeriodYearly:
		return a.FiscalYear - b.FiscalYear
	default:
		return strings.Compare(a.Value, b.Value)
	}
}

// ParseDate reads the calendar day of a row date. Timestamps such as
// "2025-01-02T08:00:00+0000" are truncated to their date part so that the
// upstream timezone never shifts a row into a neighbouring day.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if len(s) < len(time.DateOnly) {
		return time.Time{}, fmt.Errorf("unparsable date %q", s)
	}
	t, err := time.Parse(time.DateOnly, s[:len(time.DateOnly)])
	if err != nil {
		return time.Time{}, fmt.Errorf("unparsable date %q: %w", s, err)
	}
	return t, nil
}
