package workbook

import (
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/couchcryptid/school-accident-trends/internal/domain"
)

// Write saves tables as a workbook laid out by schema, one sheet per year.
// Tables flagged with MissingTimeColumn are written without the time column.
func Write(path string, schema *Schema, tables []domain.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	dims := schema.dimensionColumns()
	var keys []domain.DimensionKey
	for _, d := range domain.Dimensions() {
		if _, ok := dims[d.Key]; ok {
			keys = append(keys, d.Key)
		}
	}

	for i, t := range tables {
		sheet := strconv.Itoa(t.Year)
		idx, err := f.NewSheet(sheet)
		if err != nil {
			return fmt.Errorf("create sheet %s: %w", sheet, err)
		}
		if i == 0 {
			f.SetActiveSheet(idx)
		}

		header := []any{schema.Columns.Region, schema.Columns.Weekday}
		if !t.MissingTimeColumn {
			header = append(header, schema.Columns.Time)
		}
		for _, k := range keys {
			header = append(header, dims[k])
		}
		if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
			return fmt.Errorf("write header %s: %w", sheet, err)
		}

		for n, r := range t.Records {
			row := []any{r.Region, r.Weekday}
			if !t.MissingTimeColumn {
				row = append(row, r.Time)
			}
			for _, k := range keys {
				row = append(row, r.Values[k])
			}
			addr, err := excelize.CoordinatesToCellName(1, n+2)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(sheet, addr, &row); err != nil {
				return fmt.Errorf("write row %d of %s: %w", n+2, sheet, err)
			}
		}
	}

	if len(tables) > 0 {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return fmt.Errorf("drop default sheet: %w", err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}
