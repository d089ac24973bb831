package workbook

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/couchcryptid/school-accident-trends/internal/domain"
)

var fullHeader = []any{"지역", "사고발생요일", "사고발생시각", "사고장소", "사고부위", "사고형태", "사고당시활동", "매개물", "사고자학년"}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testSchema(t *testing.T) *Schema {
	t.Helper()
	s, err := DefaultSchema()
	require.NoError(t, err)
	return s
}

// buildWorkbook writes sheet -> rows (header first) to a temp file.
func buildWorkbook(t *testing.T, sheets map[string][][]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for name, rows := range sheets {
		_, err := f.NewSheet(name)
		require.NoError(t, err)
		for i, row := range rows {
			addr, err := excelize.CoordinatesToCellName(1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(name, addr, &row))
		}
	}
	require.NoError(t, f.DeleteSheet("Sheet1"))

	path := filepath.Join(t.TempDir(), "schoolData.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

// fiveYears returns a workbook layout with one data row per year.
func fiveYears() map[string][][]any {
	sheets := make(map[string][][]any)
	for _, y := range []string{"2019", "2020", "2021", "2022", "2023"} {
		sheets[y] = [][]any{
			fullHeader,
			{"서울", "월", "10:30", "교실", "손", "낙상", "공부", "학용품", "3학년"},
		}
	}
	return sheets
}

func TestLoader_Load(t *testing.T) {
	sheets := fiveYears()
	sheets["2019"] = [][]any{
		// Older header spelling for the mediating object.
		{"지역", "사고발생요일", "사고발생시각", "사고장소", "사고부위", "사고형태", "사고당시활동", "사고매개물", "사고자학년"},
		{"서울", "월", "10:30", "교외활동", "발", "낙상", "구기운동", "운동용품", "5학년"},
		{" 부산 ", "화", "14:05", "운동장"},
		{},
	}
	sheets["2023"] = append(sheets["2023"], []any{"경기", "수", "09:00", "교외활동", "손", "기타", "공부", "기타", "1학년"})
	path := buildWorkbook(t, sheets)

	ds, err := NewLoader(testSchema(t), testLogger()).Load(path)
	require.NoError(t, err)

	assert.Equal(t, []int{2019, 2020, 2021, 2022, 2023}, ds.Years())
	assert.Equal(t, 7, ds.Len())

	t2019, ok := ds.Table(2019)
	require.True(t, ok)
	require.Len(t, t2019.Records, 2)

	first := t2019.Records[0]
	assert.Equal(t, "서울", first.Region)
	assert.Equal(t, "월", first.Weekday)
	assert.Equal(t, "10:30", first.Time)
	assert.Equal(t, "교외", first.Values[domain.Place])
	assert.Equal(t, "운동용품", first.Values[domain.Object])
	assert.Equal(t, "5학년", first.Values[domain.Grade])

	short := t2019.Records[1]
	assert.Equal(t, "부산", short.Region)
	assert.Equal(t, "운동장", short.Values[domain.Place])
	assert.Empty(t, short.Values[domain.Grade])

	// The place rewrite does not apply to the latest year.
	t2023, _ := ds.Table(2023)
	require.Len(t, t2023.Records, 2)
	assert.Equal(t, "교외활동", t2023.Records[1].Values[domain.Place])
}

func TestLoader_MissingTimeColumn(t *testing.T) {
	sheets := fiveYears()
	sheets["2021"] = [][]any{
		{"지역", "사고발생요일", "사고장소"},
		{"서울", "월", "교실"},
	}
	path := buildWorkbook(t, sheets)

	ds, err := NewLoader(testSchema(t), testLogger()).Load(path)
	require.NoError(t, err)

	table, _ := ds.Table(2021)
	assert.True(t, table.MissingTimeColumn)
	assert.Len(t, table.Records, 1)

	other, _ := ds.Table(2020)
	assert.False(t, other.MissingTimeColumn)
}

func TestLoader_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := NewLoader(testSchema(t), testLogger()).Load(filepath.Join(t.TempDir(), "nope.xlsx"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "open workbook")
	})

	t.Run("missing sheet", func(t *testing.T) {
		sheets := fiveYears()
		delete(sheets, "2022")
		_, err := NewLoader(testSchema(t), testLogger()).Load(buildWorkbook(t, sheets))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "2022")
	})

	t.Run("missing region column", func(t *testing.T) {
		sheets := fiveYears()
		sheets["2020"] = [][]any{{"사고발생요일", "사고발생시각"}, {"월", "10:00"}}
		_, err := NewLoader(testSchema(t), testLogger()).Load(buildWorkbook(t, sheets))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "지역")
	})

	t.Run("empty sheet", func(t *testing.T) {
		sheets := fiveYears()
		sheets["2023"] = nil
		_, err := NewLoader(testSchema(t), testLogger()).Load(buildWorkbook(t, sheets))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no header row")
	})
}

func TestLoader_Headers(t *testing.T) {
	sheets := fiveYears()
	sheets["2019"][0] = []any{"지역", "사고발생요일", "사고매개물"}
	path := buildWorkbook(t, sheets)

	headers, err := NewLoader(testSchema(t), testLogger()).Headers(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"지역", "사고발생요일", "매개물"}, headers["2019"])
	assert.Len(t, headers["2023"], len(fullHeader))
}

func TestWrite_RoundTrip(t *testing.T) {
	rec := func(region, day, clock, place, grade string) domain.Record {
		r := domain.Record{Region: region, Weekday: day, Time: clock}
		r.Values[domain.Place] = place
		r.Values[domain.Grade] = grade
		return r
	}
	var tables []domain.Table
	for y := 2019; y <= 2023; y++ {
		tables = append(tables, domain.Table{Year: y, Records: []domain.Record{
			rec("서울", "월", "08:10", "교실", "1학년"),
			rec("대구", "토", "17:45", "운동장", "6학년"),
		}})
	}
	tables[2].MissingTimeColumn = true
	tables[2].Records[0].Time = ""
	tables[2].Records[1].Time = ""

	schema := testSchema(t)
	path := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, Write(path, schema, tables))

	ds, err := NewLoader(schema, testLogger()).Load(path)
	require.NoError(t, err)

	for _, want := range tables {
		got, ok := ds.Table(want.Year)
		require.True(t, ok, "year %d", want.Year)
		assert.Equal(t, want, got, "year %d", want.Year)
	}
}
