// Package export writes reports as xlsx workbooks.
package export

import (
	"errors"
	"fmt"
	"io"

	"github.com/de-tools/social-atlas/pkg/models/domain"
	"github.com/xuri/excelize/v2"
)

const (
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	defaultSheet = "Sheet1"
	columnWidth  = 18
)

var ErrEmptyReport = errors.New("report has no sheets")

// FileName is the default workbook name of a report.
func FileName(report *domain.Report) string {
	return fmt.Sprintf("social_report_%s_%s_%s.xlsx",
		report.Period, report.Start.Format("20060102"), report.End.Format("20060102"))
}

// NewWorkbook renders one worksheet per report sheet. The profile_id column is
// left out; header and summary rows are bold and the header row is frozen.
func NewWorkbook(report *domain.Report) (*excelize.File, error) {
	if report == nil || len(report.Sheets) == 0 {
		return nil, ErrEmptyReport
	}

	f := excelize.NewFile()
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to create style: %w", err)
	}

	keepDefault := false
	for _, sheet := range report.Sheets {
		if sheet.Name == defaultSheet {
			keepDefault = true
		}
		if err := writeSheet(f, sheet, bold); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("failed to write sheet %s: %w", sheet.Name, err)
		}
	}
	if !keepDefault {
		if err := f.DeleteSheet(defaultSheet); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("failed to remove default sheet: %w", err)
		}
	}
	f.SetActiveSheet(0)
	return f, nil
}

func writeSheet(f *excelize.File, sheet domain.Sheet, bold int) error {
	if idx, err := f.GetSheetIndex(sheet.Name); err != nil || idx == -1 {
		if _, err := f.NewSheet(sheet.Name); err != nil {
			return err
		}
	}

	var columns []domain.Column
	for _, col := range sheet.Columns {
		if col.Key != domain.ColumnProfileID {
			columns = append(columns, col)
		}
	}
	if len(columns) == 0 {
		return nil
	}
	lastCol, err := excelize.ColumnNumberToName(len(columns))
	if err != nil {
		return err
	}

	for i, col := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet.Name, cell, col.Header); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(sheet.Name, "A1", lastCol+"1", bold); err != nil {
		return err
	}

	rowIdx := 2
	write := func(row domain.Row) error {
		for c, col := range columns {
			v := row[col.Key]
			if v == nil {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(c+1, rowIdx)
			if err := f.SetCellValue(sheet.Name, cell, v); err != nil {
				return err
			}
		}
		rowIdx++
		return nil
	}

	for _, row := range sheet.Rows {
		if err := write(row); err != nil {
			return err
		}
	}
	for _, row := range sheet.SummaryRows {
		start := rowIdx
		if err := write(row); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet.Name, fmt.Sprintf("A%d", start), fmt.Sprintf("%s%d", lastCol, start), bold); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(sheet.Name, "A", lastCol, columnWidth); err != nil {
		return err
	}
	return f.SetPanes(sheet.Name, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func WriteWorkbook(w io.Writer, report *domain.Report) error {
	f, err := NewWorkbook(report)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func SaveWorkbook(path string, report *domain.Report) error {
	f, err := NewWorkbook(report)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}
