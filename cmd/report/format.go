package main

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/couchcryptid/school-accident-trends/internal/domain"
	"github.com/couchcryptid/school-accident-trends/internal/query"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// writeSummary prints the history and projection of one filter.
func writeSummary(w io.Writer, res query.ProjectResult) error {
	hist, p := res.History, res.Projection
	f := p.Filter
	fmt.Fprintf(w, "%s  %s %s %02d:00-%02d:00  projected %d\n\n", p.Dimension, f.Region, f.Weekday, f.HourStart, f.HourEnd, p.TargetYear)

	years := hist.Years()
	dim, err := domain.DimensionByName(p.Dimension)
	if err != nil {
		return err
	}

	tw := newTable(w)
	header := []string{"label"}
	for _, y := range years {
		header = append(header, fmt.Sprint(y))
	}
	header = append(header, fmt.Sprintf("%d*", p.TargetYear))
	fmt.Fprintln(tw, strings.Join(header, "\t"))

	row := []string{"(records)"}
	for _, y := range years {
		row = append(row, fmt.Sprint(hist.Counts[y]))
	}
	row = append(row, fmt.Sprintf("%.1f", p.Total))
	fmt.Fprintln(tw, strings.Join(row, "\t"))

	for _, label := range dim.Labels {
		row := []string{label}
		for _, y := range years {
			row = append(row, fmt.Sprintf("%d (%.1f%%)", hist.LabelCounts[y][label], hist.Distributions[y][label]))
		}
		row = append(row, fmt.Sprintf("%.1f (%.1f%%)", p.Counts[label], p.Percentages[label]))
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\n* projected from %v\n", p.TrainingYears)
	if len(p.Clamped) > 0 {
		fmt.Fprintf(w, "clamped to zero: %s\n", strings.Join(p.Clamped, ", "))
	}
	writeSkipped(w, p.Skipped)
	return nil
}

// writeGrid prints labels down and hour slots across. High shares are marked
// with "+" and low shares with "-".
func writeGrid(w io.Writer, res query.GridResult) error {
	g := res.Grid
	fmt.Fprintf(w, "%s  %s %s  projected %d  (+ above %.0f%%, - below %.0f%%)\n\n",
		g.Dimension, g.Region, g.Weekday, g.TargetYear, g.Thresholds.High, g.Thresholds.Low)

	tw := newTable(w)
	header := []string{"label"}
	for _, s := range g.Slots {
		header = append(header, fmt.Sprintf("%02d", s.HourStart))
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))

	for _, label := range g.Labels {
		row := []string{label}
		for _, s := range g.Slots {
			c := s.Cells[label]
			row = append(row, fmt.Sprintf("%.1f%s", c.Percent, bandMark(c.Band)))
		}
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}

	total := []string{"(total)"}
	for _, s := range g.Slots {
		total = append(total, fmt.Sprintf("%.1f", s.Total))
	}
	fmt.Fprintln(tw, strings.Join(total, "\t"))
	return tw.Flush()
}

func bandMark(b domain.Band) string {
	switch b {
	case domain.BandHigh:
		return "+"
	case domain.BandLow:
		return "-"
	default:
		return ""
	}
}

// writeWeekdays prints one block per year with weekdays across.
func writeWeekdays(w io.Writer, res query.WeekdaysResult) error {
	b := res.Breakdown
	fmt.Fprintf(w, "%s  %s %02d:00-%02d:00 by weekday\n", b.Dimension, b.Region, b.HourStart, b.HourEnd)

	dim, err := domain.DimensionByName(b.Dimension)
	if err != nil {
		return err
	}

	for _, y := range sortedYears(b.Years) {
		fmt.Fprintf(w, "\n%d\n", y)
		tw := newTable(w)
		fmt.Fprintln(tw, "label\t"+strings.Join(domain.Weekdays, "\t"))

		counts := []string{"(records)"}
		for _, day := range domain.Weekdays {
			counts = append(counts, fmt.Sprint(b.Years[y][day].Count))
		}
		fmt.Fprintln(tw, strings.Join(counts, "\t"))

		for _, label := range dim.Labels {
			row := []string{label}
			for _, day := range domain.Weekdays {
				row = append(row, fmt.Sprintf("%.1f%%", b.Years[y][day].Distribution[label]))
			}
			fmt.Fprintln(tw, strings.Join(row, "\t"))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	writeSkipped(w, b.Skipped)
	return nil
}

func writeSkipped(w io.Writer, skipped []domain.SkippedYear) {
	for _, s := range skipped {
		fmt.Fprintf(w, "skipped %d: %s\n", s.Year, s.Reason)
	}
}

func sortedYears[V any](m map[int]V) []int {
	years := make([]int, 0, len(m))
	for y := range m {
		years = append(years, y)
	}
	slices.Sort(years)
	return years
}
