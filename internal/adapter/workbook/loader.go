// Package workbook reads and writes the yearly accident workbook.
package workbook

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/couchcryptid/school-accident-trends/internal/domain"
)

// Loader reads a workbook into a domain.Dataset according to a Schema.
type Loader struct {
	schema *Schema
	logger *slog.Logger
}

// NewLoader creates a loader for the given schema.
func NewLoader(schema *Schema, logger *slog.Logger) *Loader {
	return &Loader{schema: schema, logger: logger}
}

// Load opens the workbook and reads every sheet the schema lists. Any missing
// sheet or required column fails the whole load.
func (l *Loader) Load(path string) (*domain.Dataset, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	tables := make([]domain.Table, 0, len(l.schema.Sheets))
	for _, sheet := range l.schema.Sheets {
		t, err := l.readSheet(f, sheet)
		if err != nil {
			return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
		}
		tables = append(tables, t)
		l.logger.Debug("sheet loaded", "year", t.Year, "records", len(t.Records))
	}

	ds := domain.NewDataset(tables...)
	l.logger.Info("workbook loaded", "path", path, "years", ds.Years(), "records", ds.Len())
	return ds, nil
}

// Headers returns the canonical header row of every sheet the schema lists.
func (l *Loader) Headers(path string) (map[string][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	out := make(map[string][]string, len(l.schema.Sheets))
	for _, sheet := range l.schema.Sheets {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
		}
		var headers []string
		if len(rows) > 0 {
			for _, raw := range rows[0] {
				headers = append(headers, l.schema.header(raw))
			}
		}
		out[sheet] = headers
	}
	return out, nil
}

func (l *Loader) readSheet(f *excelize.File, sheet string) (domain.Table, error) {
	year, err := sheetYear(sheet)
	if err != nil {
		return domain.Table{}, err
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return domain.Table{}, err
	}
	if len(rows) == 0 {
		return domain.Table{}, fmt.Errorf("sheet %s has no header row", sheet)
	}

	index := make(map[string]int, len(rows[0]))
	for i, raw := range rows[0] {
		h := l.schema.header(raw)
		if _, dup := index[h]; !dup {
			index[h] = i
		}
	}

	regionCol, ok := index[l.schema.Columns.Region]
	if !ok {
		return domain.Table{}, fmt.Errorf("missing column %q", l.schema.Columns.Region)
	}
	weekdayCol, ok := index[l.schema.Columns.Weekday]
	if !ok {
		return domain.Table{}, fmt.Errorf("missing column %q", l.schema.Columns.Weekday)
	}

	t := domain.Table{Year: year}
	timeCol, hasTime := index[l.schema.Columns.Time]
	if !hasTime {
		t.MissingTimeColumn = true
		l.logger.Warn("time column missing", "year", year, "column", l.schema.Columns.Time)
	}

	dimCols := make(map[domain.DimensionKey]int)
	for key, header := range l.schema.dimensionColumns() {
		col, ok := index[header]
		if !ok {
			l.logger.Warn("dimension column missing", "year", year, "dimension", key.String(), "column", header)
			continue
		}
		dimCols[key] = col
	}

	rewrites := l.rewritesFor(year, index)

	for _, row := range rows[1:] {
		if blank(row) {
			continue
		}
		r := domain.Record{
			Region:  cell(row, regionCol),
			Weekday: cell(row, weekdayCol),
		}
		if hasTime {
			r.Time = cell(row, timeCol)
		}
		for key, col := range dimCols {
			v := cell(row, col)
			if to, ok := rewrites[col][v]; ok {
				v = to
			}
			r.Values[key] = v
		}
		t.Records = append(t.Records, r)
	}

	return t, nil
}

// rewritesFor returns column index -> from -> to for the rewrites active in year.
func (l *Loader) rewritesFor(year int, index map[string]int) map[int]map[string]string {
	out := make(map[int]map[string]string)
	for _, rw := range l.schema.Rewrites {
		if !rw.appliesTo(year) {
			continue
		}
		col, ok := index[rw.Column]
		if !ok {
			continue
		}
		if out[col] == nil {
			out[col] = make(map[string]string)
		}
		out[col][rw.From] = rw.To
	}
	return out
}

func cell(row []string, col int) string {
	if col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
