// Command validate checks a school accident workbook before it is served:
// every year sheet and required header is present, time-of-day values parse,
// category values fall inside the known label sets, and region and weekday
// tokens match the values callers can select.
//
// Usage:
//
//	go run ./cmd/validate -workbook schoolData.xlsx [-schema schema.yaml] [-min-parse-rate 0.95]
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"slices"
	"sort"

	"github.com/couchcryptid/school-accident-trends/internal/adapter/workbook"
	"github.com/couchcryptid/school-accident-trends/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	path := flag.String("workbook", "", "path to the accident workbook")
	schemaPath := flag.String("schema", "", "workbook schema YAML (default: embedded)")
	minParseRate := flag.Float64("min-parse-rate", 0.95, "minimum share of parsable time-of-day values per year")
	flag.Parse()

	if *path == "" {
		flag.Usage()
		os.Exit(1)
	}

	os.Exit(run(os.Stdout, *path, *schemaPath, *minParseRate))
}

func run(w io.Writer, path, schemaPath string, minParseRate float64) int {
	fmt.Fprintln(w, "=== School Accident Workbook Validation ===")
	fmt.Fprintln(w)

	schema, err := workbook.LoadSchema(schemaPath)
	if err != nil {
		fmt.Fprintf(w, "FATAL: load schema: %v\n", err)
		return 1
	}

	loader := workbook.NewLoader(schema, slog.New(slog.NewTextHandler(io.Discard, nil)))
	headers, err := loader.Headers(path)
	if err != nil {
		fmt.Fprintf(w, "FATAL: read headers: %v\n", err)
		return 1
	}
	ds, err := loader.Load(path)
	if err != nil {
		fmt.Fprintf(w, "FATAL: load workbook: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateHeaders(schema, headers),
		validateTimes(ds, minParseRate),
		validateLabels(ds),
		validateTokens(ds),
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(w, "  %-42s %s\n", p.name, status)
	}

	fmt.Fprintln(w)
	for _, y := range ds.Years() {
		t, _ := ds.Table(y)
		fmt.Fprintf(w, "%d: %d records\n", y, len(t.Records))
	}

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(w, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(w, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(w, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(w, "\nValidation FAILED.")
	return 1
}

// validateHeaders checks that every sheet carries the columns the schema maps.
func validateHeaders(schema *workbook.Schema, headers map[string][]string) *phase {
	p := &phase{name: "Sheets and headers"}

	required := []string{schema.Columns.Region, schema.Columns.Weekday, schema.Columns.Time}
	names := slices.Sorted(maps.Keys(schema.Dimensions))
	for _, name := range names {
		required = append(required, schema.Dimensions[name])
	}

	for _, sheet := range schema.Sheets {
		row := headers[sheet]
		for _, col := range required {
			if !slices.Contains(row, col) {
				p.errorf("sheet %s: missing column %q", sheet, col)
			}
		}
	}
	return p
}

// validateTimes checks the share of parsable time-of-day values per year.
func validateTimes(ds *domain.Dataset, minRate float64) *phase {
	p := &phase{name: "Time-of-day parsing"}

	for _, y := range ds.Years() {
		t, _ := ds.Table(y)
		if t.MissingTimeColumn {
			p.errorf("%d: no time-of-day column", y)
			continue
		}
		if len(t.Records) == 0 {
			continue
		}
		parsed := 0
		for _, r := range t.Records {
			if _, ok := domain.ParseHour(r.Time); ok {
				parsed++
			}
		}
		rate := float64(parsed) / float64(len(t.Records))
		if rate < minRate {
			p.errorf("%d: %.1f%% of %d time values parse (minimum %.1f%%)", y, rate*100, len(t.Records), minRate*100)
		}
	}
	return p
}

// validateLabels reports category values outside each dimension's label set.
func validateLabels(ds *domain.Dataset) *phase {
	p := &phase{name: "Category label coverage"}

	for _, y := range ds.Years() {
		t, _ := ds.Table(y)
		for _, d := range domain.Dimensions() {
			unknown := make(map[string]int)
			for _, r := range t.Records {
				if v := d.Value(r); v != "" && !d.Has(v) {
					unknown[v]++
				}
			}
			if len(unknown) > 0 {
				p.errorf("%d %s: unknown labels %s", y, d.Name, summarize(unknown))
			}
		}
	}
	return p
}

// validateTokens reports region and weekday values no filter can select.
func validateTokens(ds *domain.Dataset) *phase {
	p := &phase{name: "Region and weekday tokens"}

	for _, y := range ds.Years() {
		t, _ := ds.Table(y)
		regions := make(map[string]int)
		weekdays := make(map[string]int)
		for _, r := range t.Records {
			if !slices.Contains(domain.Regions, r.Region) {
				regions[r.Region]++
			}
			if !slices.Contains(domain.Weekdays, r.Weekday) {
				weekdays[r.Weekday]++
			}
		}
		if len(regions) > 0 {
			p.errorf("%d: unknown regions %s", y, summarize(regions))
		}
		if len(weekdays) > 0 {
			p.errorf("%d: unknown weekdays %s", y, summarize(weekdays))
		}
	}
	return p
}

// summarize lists up to five values by descending count.
func summarize(counts map[string]int) string {
	values := slices.Collect(maps.Keys(counts))
	sort.Slice(values, func(i, j int) bool {
		if counts[values[i]] != counts[values[j]] {
			return counts[values[i]] > counts[values[j]]
		}
		return values[i] < values[j]
	})

	out := ""
	for i, v := range values {
		if i == 5 {
			out += fmt.Sprintf(", ... (%d more)", len(values)-5)
			break
		}
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("%q x%d", v, counts[v])
	}
	return out
}
