package export

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"ibms/internal/services"
)

// ContentTypeXLSX is served with WriteXLSX output.
const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// WriteXLSX writes one sheet per report table, Summary first.
func WriteXLSX(w io.Writer, rep services.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	for i, t := range Tables(rep) {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", t.Name); err != nil {
				return fmt.Errorf("rename first sheet: %w", err)
			}
		} else if _, err := f.NewSheet(t.Name); err != nil {
			return fmt.Errorf("create sheet %s: %w", t.Name, err)
		}

		for r, row := range t.Values() {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				return err
			}
			values := xlsxRow(row)
			if err := f.SetSheetRow(t.Name, cell, &values); err != nil {
				return fmt.Errorf("write %s row %d: %w", t.Name, r+1, err)
			}
		}

		last, err := excelize.CoordinatesToCellName(len(t.Header), 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(t.Name, "A1", last, bold); err != nil {
			return fmt.Errorf("style %s header: %w", t.Name, err)
		}
	}
	f.SetActiveSheet(0)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// xlsxRow turns decimals into numbers so spreadsheet formulas work on them.
func xlsxRow(row []any) []any {
	out := make([]any, len(row))
	for i, v := range row {
		if d, ok := v.(decimal.Decimal); ok {
			out[i] = d.InexactFloat64()
			continue
		}
		out[i] = v
	}
	return out
}
