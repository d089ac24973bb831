package query

import (
	"time"

	"github.com/couchcryptid/school-accident-trends/internal/domain"
)

// Query selects records and names the dimension to tabulate or project.
type Query struct {
	Dimension string
	Region    string
	Weekday   string
	HourStart int
	HourEnd   int

	// TargetYear is the year to project; 0 selects the year after the
	// latest one in the dataset.
	TargetYear int
}

func (q Query) filter() domain.Filter {
	return domain.Filter{Region: q.Region, Weekday: q.Weekday, HourStart: q.HourStart, HourEnd: q.HourEnd}
}

// GridQuery asks for one projection per hour in [FromHour, ToHour).
type GridQuery struct {
	Dimension  string
	Region     string
	Weekday    string
	FromHour   int
	ToHour     int
	TargetYear int
}

// WeekdayQuery asks for a per-weekday tabulation of a region and hour window.
type WeekdayQuery struct {
	Dimension string
	Region    string
	HourStart int
	HourEnd   int
}

// Meta identifies one computed result.
type Meta struct {
	QueryID     string    `json:"query_id"`
	GeneratedAt time.Time `json:"generated_at"`
}

// TabulateResult carries the per-year counts and distributions.
type TabulateResult struct {
	Meta
	Tabulation domain.Tabulation `json:"tabulation"`
}

// ProjectResult carries the history that trained the projection alongside it.
type ProjectResult struct {
	Meta
	History    domain.Tabulation `json:"history"`
	Projection domain.Projection `json:"projection"`
}

// GridResult carries an hourly projection grid.
type GridResult struct {
	Meta
	Grid domain.Grid `json:"grid"`
}

// WeekdaysResult carries a weekday breakdown.
type WeekdaysResult struct {
	Meta
	Breakdown domain.WeekdayBreakdown `json:"breakdown"`
}

// Catalog lists the values a caller may choose from.
type Catalog struct {
	Dimensions        []domain.Dimension `json:"dimensions"`
	Regions           []string           `json:"regions"`
	Weekdays          []string           `json:"weekdays"`
	Years             []int              `json:"years"`
	DefaultTargetYear int                `json:"default_target_year"`
	GridFromHour      int                `json:"grid_from_hour"`
	GridToHour        int                `json:"grid_to_hour"`
	Thresholds        domain.Thresholds  `json:"thresholds"`
}
