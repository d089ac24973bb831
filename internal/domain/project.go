package domain

// Projection is the extrapolated next-period distribution for one dimension.
type Projection struct {
	Dimension  string `json:"dimension"`
	Filter     Filter `json:"filter"`
	TargetYear int    `json:"target_year"`

	// TrainingYears are the years whose counts fed the fits.
	TrainingYears []int `json:"training_years"`

	// Counts is the clamped predicted count per label.
	Counts map[string]float64 `json:"counts"`

	// Total is the sum of Counts.
	Total float64 `json:"total"`

	// Percentages is each label's share of Total, all zero when Total is 0.
	Percentages map[string]float64 `json:"percentages"`

	// Degenerate lists labels predicted as 0 because no line could be fitted.
	Degenerate []string `json:"degenerate,omitempty"`

	// Clamped lists labels whose raw prediction was negative.
	Clamped []string `json:"clamped,omitempty"`

	Skipped []SkippedYear `json:"skipped,omitempty"`
}

// Project tabulates ds and extrapolates each label of dim to targetYear.
func Project(ds *Dataset, f Filter, dim Dimension, targetYear int) Projection {
	return ProjectTabulation(Tabulate(ds, f, dim), ds.Years(), dim, targetYear)
}

// ProjectTabulation fits one line per label of dim over the tabulated years
// and evaluates it at targetYear.
//
// datasetYears is the full list of years in the dataset. When the tabulation
// covers fewer years (some were skipped) every label is predicted as 0 rather
// than fitted on a partial series.
func ProjectTabulation(tab Tabulation, datasetYears []int, dim Dimension, targetYear int) Projection {
	years := tab.Years()

	p := Projection{
		Dimension:     dim.Name,
		Filter:        tab.Filter,
		TargetYear:    targetYear,
		TrainingYears: years,
		Counts:        make(map[string]float64, len(dim.Labels)),
		Percentages:   make(map[string]float64, len(dim.Labels)),
		Skipped:       tab.Skipped,
	}

	complete := len(years) == len(datasetYears)

	xs := make([]float64, len(years))
	for i, y := range years {
		xs[i] = float64(y)
	}

	for _, label := range dim.Labels {
		if !complete {
			p.Counts[label] = 0
			p.Degenerate = append(p.Degenerate, label)
			continue
		}

		ys := make([]float64, len(years))
		for i, y := range years {
			ys[i] = float64(tab.LabelCounts[y][label])
		}

		fit, ok := fitLine(xs, ys)
		if !ok {
			p.Counts[label] = 0
			p.Degenerate = append(p.Degenerate, label)
			continue
		}

		predicted := fit.at(float64(targetYear))
		if predicted < 0 {
			predicted = 0
			p.Clamped = append(p.Clamped, label)
		}
		p.Counts[label] = predicted
	}

	for _, label := range dim.Labels {
		p.Total += p.Counts[label]
	}
	for _, label := range dim.Labels {
		p.Percentages[label] = percentOf(p.Counts[label], p.Total)
	}

	return p
}
