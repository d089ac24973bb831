package domain

// WeekdayShare is the tabulation of one weekday within a year.
type WeekdayShare struct {
	Count        int                `json:"count"`
	Distribution map[string]float64 `json:"distribution"`
}

// WeekdayBreakdown splits a region and hour window by weekday for each year.
type WeekdayBreakdown struct {
	Dimension string `json:"dimension"`
	Region    string `json:"region"`
	HourStart int    `json:"hour_start"`
	HourEnd   int    `json:"hour_end"`

	// Years maps year -> weekday token -> share.
	Years   map[int]map[string]WeekdayShare `json:"years"`
	Skipped []SkippedYear                   `json:"skipped,omitempty"`
}

// BreakdownByWeekday tabulates dim for every weekday token in region within
// [hourStart, hourEnd).
func BreakdownByWeekday(ds *Dataset, region string, hourStart, hourEnd int, dim Dimension) WeekdayBreakdown {
	out := WeekdayBreakdown{
		Dimension: dim.Name,
		Region:    region,
		HourStart: hourStart,
		HourEnd:   hourEnd,
		Years:     make(map[int]map[string]WeekdayShare),
	}

	for i, day := range Weekdays {
		tab := Tabulate(ds, Filter{Region: region, Weekday: day, HourStart: hourStart, HourEnd: hourEnd}, dim)
		if i == 0 {
			// Skips depend only on the time column, so every weekday sees the same set.
			out.Skipped = tab.Skipped
		}
		for year, count := range tab.Counts {
			if out.Years[year] == nil {
				out.Years[year] = make(map[string]WeekdayShare, len(Weekdays))
			}
			out.Years[year][day] = WeekdayShare{Count: count, Distribution: tab.Distributions[year]}
		}
	}

	return out
}
