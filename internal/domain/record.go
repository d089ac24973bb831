package domain

import (
	"fmt"
	"slices"
)

// DimensionKey identifies one categorical axis of accident classification.
type DimensionKey int

// Dimension keys, in the order the workbook columns are declared.
const (
	Place DimensionKey = iota
	BodyPart
	AccidentType
	Activity
	Object
	Grade

	numDimensions
)

// Dimension is a closed, enumerated label set together with the key used to
// read a record's value in that axis.
type Dimension struct {
	Key    DimensionKey `json:"-"`
	Name   string       `json:"name"`
	Title  string       `json:"title"` // Korean page title used by the source workbook
	Labels []string     `json:"labels"`
}

// Value returns the record's label in this dimension, or "" when absent.
func (d Dimension) Value(r Record) string {
	return r.Values[d.Key]
}

// Has reports whether label belongs to the dimension's label set.
func (d Dimension) Has(label string) bool {
	return slices.Contains(d.Labels, label)
}

var dimensions = [numDimensions]Dimension{
	Place: {
		Key:    Place,
		Name:   "place",
		Title:  "사고장소",
		Labels: []string{"교실", "교외", "부속시설", "운동장", "통로"},
	},
	BodyPart: {
		Key:    BodyPart,
		Name:   "body_part",
		Title:  "사고부위",
		Labels: []string{"머리", "얼굴", "치아", "눈", "몸통", "팔", "손", "다리", "발"},
	},
	AccidentType: {
		Key:   AccidentType,
		Name:  "type",
		Title: "사고형태",
		Labels: []string{
			"기타", "낙상", "낙상-넘어짐", "낙상-떨어짐", "낙상-미끄러짐",
			"물리적힘 노출", "사람과의 충돌", "염좌·삐임 등 신체 충격",
		},
	},
	Activity: {
		Key:   Activity,
		Name:  "activity",
		Title: "사고당시활동",
		Labels: []string{
			"공부", "구기운동", "기타", "기타운동", "보행/주행",
			"식사/수면/휴식", "실험실습", "장난/놀이",
		},
	},
	Object: {
		Key:    Object,
		Name:   "object",
		Title:  "사고매개물",
		Labels: []string{"건물/시설물", "교통수단", "기타", "사람", "운동용품", "자연물", "학용품"},
	},
	Grade: {
		Key:    Grade,
		Name:   "grade",
		Title:  "사고자학년",
		Labels: []string{"1학년", "2학년", "3학년", "4학년", "5학년", "6학년", "유아", "N/A"},
	},
}

// Dimensions returns every dimension in a stable order.
func Dimensions() []Dimension {
	out := make([]Dimension, 0, numDimensions)
	for _, d := range dimensions {
		out = append(out, d.clone())
	}
	return out
}

// DimensionOf returns the dimension for a key.
func DimensionOf(key DimensionKey) Dimension {
	return dimensions[key].clone()
}

// DimensionByName looks up a dimension by its API name (e.g. "place").
func DimensionByName(name string) (Dimension, error) {
	for _, d := range dimensions {
		if d.Name == name {
			return d.clone(), nil
		}
	}
	return Dimension{}, fmt.Errorf("%w: %q", ErrUnknownDimension, name)
}

func (d Dimension) clone() Dimension {
	d.Labels = slices.Clone(d.Labels)
	return d
}

func (k DimensionKey) String() string {
	if k < 0 || k >= numDimensions {
		return "unknown"
	}
	return dimensions[k].Name
}

// Weekdays are the seven weekday tokens used by the workbook, Monday first.
var Weekdays = []string{"월", "화", "수", "목", "금", "토", "일"}

// Regions are the seventeen provincial region names offered to callers.
// Matching is exact; a region spelled differently in the workbook yields no rows.
var Regions = []string{
	"서울", "경기", "강원", "세종", "부산", "제주", "경북", "경남", "충북",
	"충남", "대구", "대전", "광주", "울산", "인천", "전북", "전남",
}

// Record is one accident entry.
type Record struct {
	Region  string
	Weekday string
	Time    string // free-text time of day, e.g. "13:40"; may be empty or malformed
	Values  [numDimensions]string
}

// Table holds the records of one calendar year.
type Table struct {
	Year    int
	Records []Record

	// MissingTimeColumn is set by the loader when the sheet has no
	// time-of-day column at all.
	MissingTimeColumn bool
}

// Clone returns a copy whose record slice can be filtered without affecting t.
func (t Table) Clone() Table {
	t.Records = slices.Clone(t.Records)
	return t
}

// Dataset is an immutable set of yearly tables.
type Dataset struct {
	tables map[int]Table
	years  []int
}

// NewDataset builds a dataset from yearly tables. A later table for the same
// year replaces an earlier one. Tables are copied.
func NewDataset(tables ...Table) *Dataset {
	ds := &Dataset{tables: make(map[int]Table, len(tables))}
	for _, t := range tables {
		if _, ok := ds.tables[t.Year]; !ok {
			ds.years = append(ds.years, t.Year)
		}
		ds.tables[t.Year] = t.Clone()
	}
	slices.Sort(ds.years)
	return ds
}

// Years returns the dataset's years in ascending order.
func (ds *Dataset) Years() []int {
	return slices.Clone(ds.years)
}

// Table returns a copy of the table for year.
func (ds *Dataset) Table(year int) (Table, bool) {
	t, ok := ds.tables[year]
	if !ok {
		return Table{}, false
	}
	return t.Clone(), true
}

// LatestYear returns the most recent year, or 0 for an empty dataset.
func (ds *Dataset) LatestYear() int {
	if len(ds.years) == 0 {
		return 0
	}
	return ds.years[len(ds.years)-1]
}

// DefaultTargetYear is the year after the latest historical year.
func (ds *Dataset) DefaultTargetYear() int {
	return ds.LatestYear() + 1
}

// Len returns the total number of records across all years.
func (ds *Dataset) Len() int {
	n := 0
	for _, t := range ds.tables {
		n += len(t.Records)
	}
	return n
}
