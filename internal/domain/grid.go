package domain

// Band classifies a projected share for highlighting.
type Band string

const (
	BandHigh   Band = "high"
	BandNormal Band = "normal"
	BandLow    Band = "low"
)

// Thresholds are the percentage bounds used by Classify. A share strictly
// above High is high, strictly below Low is low.
type Thresholds struct {
	High float64 `json:"high"`
	Low  float64 `json:"low"`
}

// DefaultThresholds mirror the highlighting of the hourly tables: red above
// 30%, green below 10%.
var DefaultThresholds = Thresholds{High: 30, Low: 10}

// Classify returns the band of a percentage.
func (t Thresholds) Classify(percent float64) Band {
	switch {
	case percent > t.High:
		return BandHigh
	case percent < t.Low:
		return BandLow
	default:
		return BandNormal
	}
}

// HourSlots splits [from, to) into one-hour filters for region and weekday.
// An empty or inverted range yields no slots.
func HourSlots(region, weekday string, from, to int) []Filter {
	if to <= from {
		return nil
	}
	slots := make([]Filter, 0, to-from)
	for h := from; h < to; h++ {
		slots = append(slots, Filter{Region: region, Weekday: weekday, HourStart: h, HourEnd: h + 1})
	}
	return slots
}

// GridCell is one label's projected share in one hour slot.
type GridCell struct {
	Count   float64 `json:"count"`
	Percent float64 `json:"percent"`
	Band    Band    `json:"band"`
}

// GridSlot is the projection for a single one-hour slot.
type GridSlot struct {
	HourStart int                 `json:"hour_start"`
	HourEnd   int                 `json:"hour_end"`
	Total     float64             `json:"total"`
	Cells     map[string]GridCell `json:"cells"`
}

// Grid is a label-by-hour table of projected shares.
type Grid struct {
	Dimension  string     `json:"dimension"`
	Region     string     `json:"region"`
	Weekday    string     `json:"weekday"`
	TargetYear int        `json:"target_year"`
	Labels     []string   `json:"labels"`
	Thresholds Thresholds `json:"thresholds"`
	Slots      []GridSlot `json:"slots"`
}

// NewGridSlot bands the cells of a projection computed for one slot.
func NewGridSlot(p Projection, dim Dimension, th Thresholds) GridSlot {
	slot := GridSlot{
		HourStart: p.Filter.HourStart,
		HourEnd:   p.Filter.HourEnd,
		Total:     p.Total,
		Cells:     make(map[string]GridCell, len(dim.Labels)),
	}
	for _, label := range dim.Labels {
		pct := p.Percentages[label]
		slot.Cells[label] = GridCell{
			Count:   p.Counts[label],
			Percent: pct,
			Band:    th.Classify(pct),
		}
	}
	return slot
}

// Series returns each label's percentages in slot order, the shape a line
// chart of the grid needs.
func (g Grid) Series() map[string][]float64 {
	series := make(map[string][]float64, len(g.Labels))
	for _, label := range g.Labels {
		values := make([]float64, len(g.Slots))
		for i, s := range g.Slots {
			values[i] = s.Cells[label].Percent
		}
		series[label] = values
	}
	return series
}
