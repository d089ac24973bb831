package domain

import "slices"

// Filter selects records by exact region and weekday and a half-open hour
// range [HourStart, HourEnd). The core does not validate the bounds.
type Filter struct {
	Region    string `json:"region"`
	Weekday   string `json:"weekday"`
	HourStart int    `json:"hour_start"`
	HourEnd   int    `json:"hour_end"`
}

func (f Filter) matches(r Record, h hourOf) bool {
	return r.Region == f.Region &&
		r.Weekday == f.Weekday &&
		h.ok && h.hour >= f.HourStart && h.hour < f.HourEnd
}

// Tabulation is the per-year outcome of filtering a dataset and tallying one
// dimension. Years that failed to parse are absent from every map and listed
// in Skipped.
type Tabulation struct {
	Dimension string `json:"dimension"`
	Filter    Filter `json:"filter"`

	// Counts is the number of matched records per year.
	Counts map[int]int `json:"counts"`

	// Distributions holds the percentage of each label per year over the
	// non-empty observed values. Every label of the dimension is present.
	Distributions map[int]map[string]float64 `json:"distributions"`

	// LabelCounts holds the raw tally of every observed value per year,
	// including values outside the dimension's label set.
	LabelCounts map[int]map[string]int `json:"label_counts"`

	Skipped []SkippedYear `json:"skipped,omitempty"`
}

// SkippedYear records why a year was excluded from a tabulation.
type SkippedYear struct {
	Year   int    `json:"year"`
	Err    error  `json:"-"`
	Reason string `json:"reason"`
}

// Years returns the tabulated (non-skipped) years in ascending order.
func (t Tabulation) Years() []int {
	years := make([]int, 0, len(t.Counts))
	for y := range t.Counts {
		years = append(years, y)
	}
	slices.Sort(years)
	return years
}

// Tabulate filters every year of ds and tallies dim's labels among the matches.
func Tabulate(ds *Dataset, f Filter, dim Dimension) Tabulation {
	out := Tabulation{
		Dimension:     dim.Name,
		Filter:        f,
		Counts:        make(map[int]int),
		Distributions: make(map[int]map[string]float64),
		LabelCounts:   make(map[int]map[string]int),
	}

	for _, year := range ds.Years() {
		table, _ := ds.Table(year)
		hours, err := tableHours(table)
		if err != nil {
			out.Skipped = append(out.Skipped, SkippedYear{Year: year, Err: err, Reason: err.Error()})
			continue
		}

		matched := 0
		observed := make(map[string]int)
		for i, r := range table.Records {
			if !f.matches(r, hours[i]) {
				continue
			}
			matched++
			if v := dim.Value(r); v != "" {
				observed[v]++
			}
		}

		out.Counts[year] = matched
		out.LabelCounts[year] = observed
		out.Distributions[year] = distribution(dim, observed)
	}

	return out
}

// distribution converts label tallies into percentages over every non-empty
// observed value, including values outside the label set.
func distribution(dim Dimension, observed map[string]int) map[string]float64 {
	total := 0
	for _, n := range observed {
		total += n
	}

	dist := make(map[string]float64, len(dim.Labels))
	for _, label := range dim.Labels {
		dist[label] = percentOf(float64(observed[label]), float64(total))
	}
	return dist
}

// percentOf returns 100*part/total, or 0 when total is not positive.
func percentOf(part, total float64) float64 {
	if total <= 0 {
		return 0
	}
	return part / total * 100
}
