package report

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/de-tools/social-atlas/pkg/models/domain"
	"github.com/de-tools/social-atlas/pkg/services/catalog"
	"github.com/samber/lo"
)

const (
	maxSheetNameLength = 31
	invalidSheetChars  = `*?:/\[]`

	LabelTotal    = "TOTAL"
	LabelAverage  = "AVERAGE"
	LabelDailyAvg = "DAILY AVG"
)

// SheetKeyFunc names the sheet a row belongs to.
type SheetKeyFunc func(row domain.Row) string

// DefaultSheetKey names sheets "<Network>-<Profile name>", falling back to the
// profile id when the profile has no configured name.
func DefaultSheetKey(profiles []domain.Profile) SheetKeyFunc {
	names := make(map[string]string, len(profiles))
	for _, p := range profiles {
		if p.Name != "" {
			names[p.ID] = p.Name
		}
	}
	return func(row domain.Row) string {
		id := row.ProfileID()
		name, ok := names[id]
		if !ok {
			name = id
		}
		return row.Network() + "-" + name
	}
}

// SanitizeSheetName replaces characters spreadsheets reject and truncates the
// name to 31 characters.
func SanitizeSheetName(name string) string {
	name = strings.Map(func(r rune) rune {
		if strings.ContainsRune(invalidSheetChars, r) {
			return '_'
		}
		return r
	}, name)
	if name == "" {
		name = "Sheet"
	}
	return truncate(name, maxSheetNameLength)
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// SheetNamer hands out unique sheet names within one report.
type SheetNamer struct {
	used map[string]bool
}

func NewSheetNamer() *SheetNamer {
	return &SheetNamer{used: make(map[string]bool)}
}

func (n *SheetNamer) Name(key string) string {
	name := SanitizeSheetName(key)
	for i := 2; n.used[strings.ToLower(name)]; i++ {
		suffix := fmt.Sprintf(" (%d)", i)
		name = truncate(SanitizeSheetName(key), maxSheetNameLength-utf8.RuneCountInString(suffix)) + suffix
	}
	n.used[strings.ToLower(name)] = true
	return name
}

// Columns lists the output columns for a metric selection: the reserved
// columns first, then the selected metrics labelled from the catalog.
func Columns(c *catalog.Catalog, selected []string) []domain.Column {
	cols := []domain.Column{
		{Key: domain.ColumnDate, Header: domain.ColumnDate},
		{Key: domain.ColumnNetwork, Header: domain.ColumnNetwork},
		{Key: domain.ColumnProfileID, Header: domain.ColumnProfileID},
	}
	metrics := lo.Reject(lo.Uniq(selected), func(id string, _ int) bool {
		return domain.IsReservedColumn(id)
	})
	return append(cols, lo.Map(metrics, func(id string, _ int) domain.Column {
		return domain.Column{Key: id, Header: c.Label(id)}
	})...)
}

// Assembler splits the rows of one network into sheets with summary rows.
type Assembler struct {
	catalog *catalog.Catalog
	period  domain.Period
	namer   *SheetNamer
}

func NewAssembler(c *catalog.Catalog, period domain.Period, namer *SheetNamer) *Assembler {
	if namer == nil {
		namer = NewSheetNamer()
	}
	return &Assembler{catalog: c, period: period, namer: namer}
}

// Assemble groups rows by keyFn in first-seen order. Every sheet gets a TOTAL
// row, preceded by an AVERAGE row when it holds more than one data row.
func (a *Assembler) Assemble(rows []domain.Row, columns []domain.Column, keyFn SheetKeyFunc) []domain.Sheet {
	var keys []string
	grouped := make(map[string][]domain.Row)
	for _, row := range rows {
		key := keyFn(row)
		if _, ok := grouped[key]; !ok {
			keys = append(keys, key)
		}
		grouped[key] = append(grouped[key], row)
	}

	sheets := make([]domain.Sheet, 0, len(keys))
	for _, key := range keys {
		data := grouped[key]
		sheet := domain.Sheet{
			Name:    a.namer.Name(key),
			Network: a.catalog.Network(),
			Columns: columns,
			Rows:    data,
		}
		if len(data) > 1 {
			sheet.SummaryRows = append(sheet.SummaryRows, a.summary(data, columns, a.averageLabel(), true))
		}
		sheet.SummaryRows = append(sheet.SummaryRows, a.summary(data, columns, LabelTotal, false))
		sheets = append(sheets, sheet)
	}
	return sheets
}

func (a *Assembler) averageLabel() string {
	if a.period == domain.PeriodDaily {
		return LabelDailyAvg
	}
	return LabelAverage
}

func (a *Assembler) summary(rows []domain.Row, columns []domain.Column, label string, average bool) domain.Row {
	first := rows[0]
	out := domain.Row{
		domain.ColumnDate:      label,
		domain.ColumnNetwork:   first.Network(),
		domain.ColumnProfileID: first.ProfileID(),
	}

	for _, col := range columns {
		if domain.IsReservedColumn(col.Key) {
			continue
		}
		if ratio, ok := a.catalog.RatioOf(col.Key); ok {
			num, _ := columnSum(rows, ratio.Numerator)
			den, _ := columnSum(rows, ratio.Denominator)
			scale := ratio.Scale
			if scale == 0 {
				scale = 1
			}
			out[col.Key] = catalog.SafeDivide(num, den) * scale
			continue
		}

		sum, count := columnSum(rows, col.Key)
		switch {
		case count == 0:
			out[col.Key] = nil
		case average:
			out[col.Key] = sum / float64(count)
		default:
			out[col.Key] = sum
		}
	}
	return out
}

// columnSum adds up the numeric values of a column and counts them; strings
// and nil values are skipped.
func columnSum(rows []domain.Row, key string) (float64, int) {
	var sum float64
	var count int
	for _, row := range rows {
		v := row[key]
		if v == nil {
			continue
		}
		if _, isString := v.(string); isString {
			continue
		}
		f, ok := domain.ToFloat(v)
		if !ok {
			continue
		}
		sum += f
		count++
	}
	return sum, count
}
