// Command genmock writes a synthetic accident workbook with the same layout
// as the published one. Label frequencies drift from year to year so that
// projections have non-trivial trends, and a small share of records carry
// malformed times or blank categories. Output is deterministic for a seed.
//
// Usage:
//
//	go run ./cmd/genmock -out data/mock/schoolData.xlsx -records 2000 -seed 7
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"slices"

	"github.com/couchcryptid/school-accident-trends/internal/adapter/workbook"
	"github.com/couchcryptid/school-accident-trends/internal/domain"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output path for the generated workbook")
	schemaPath := flag.String("schema", "", "workbook schema YAML (default: embedded)")
	records := flag.Int("records", 2000, "records per year")
	fromYear := flag.Int("from-year", 2019, "first year")
	toYear := flag.Int("to-year", 2023, "last year")
	seed := flag.Uint64("seed", 1, "random seed")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}
	if *toYear < *fromYear || *records < 0 {
		return fmt.Errorf("invalid range: years %d..%d, %d records", *fromYear, *toYear, *records)
	}

	schema, err := workbook.LoadSchema(*schemaPath)
	if err != nil {
		return err
	}

	g := newGenerator(*seed, *fromYear)
	var tables []domain.Table //nolint:prealloc // one per year
	for y := *fromYear; y <= *toYear; y++ {
		t := g.table(y, *records)
		legacyLabels(schema, &t)
		tables = append(tables, t)
		log.Printf("%d: %d records", y, len(t.Records))
	}

	if err := workbook.Write(*out, schema, tables); err != nil {
		return fmt.Errorf("writing %s: %w", *out, err)
	}
	log.Printf("wrote %s", *out)
	return nil
}

type generator struct {
	rng       *rand.Rand
	firstYear int
}

func newGenerator(seed uint64, firstYear int) *generator {
	return &generator{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)), firstYear: firstYear}
}

func (g *generator) table(year, n int) domain.Table {
	t := domain.Table{Year: year, Records: make([]domain.Record, 0, n)}
	for range n {
		t.Records = append(t.Records, g.record(year))
	}
	return t
}

func (g *generator) record(year int) domain.Record {
	r := domain.Record{
		Region:  domain.Regions[g.rng.IntN(len(domain.Regions))],
		Weekday: g.weekday(),
		Time:    g.clock(),
	}
	for _, d := range domain.Dimensions() {
		// Roughly one in two hundred records leaves a category blank.
		if g.rng.IntN(200) == 0 {
			continue
		}
		r.Values[d.Key] = g.label(d, year)
	}
	return r
}

// weekday favours school days.
func (g *generator) weekday() string {
	weights := []float64{10, 10, 10, 10, 10, 2, 1}
	return domain.Weekdays[g.pick(weights)]
}

// clock concentrates times in school hours and mixes in malformed values.
func (g *generator) clock() string {
	switch g.rng.IntN(100) {
	case 0:
		return ""
	case 1:
		return "미상"
	}
	hourWeights := make([]float64, 24)
	for h := range hourWeights {
		switch {
		case h >= 8 && h < 17:
			hourWeights[h] = 10
		case h >= 6 && h < 22:
			hourWeights[h] = 2
		default:
			hourWeights[h] = 0.2
		}
	}
	return fmt.Sprintf("%02d:%02d", g.pick(hourWeights), g.rng.IntN(60))
}

// label draws from a dimension whose label weights drift linearly by year.
func (g *generator) label(d domain.Dimension, year int) string {
	step := float64(year - g.firstYear)
	weights := make([]float64, len(d.Labels))
	for i := range d.Labels {
		drift := float64(i%3-1) * 0.15
		weights[i] = max(0.05, float64(len(d.Labels)-i)*(1+drift*step))
	}
	return d.Labels[g.pick(weights)]
}

func (g *generator) pick(weights []float64) int {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	x := g.rng.Float64() * total
	for i, w := range weights {
		x -= w
		if x < 0 {
			return i
		}
	}
	return len(weights) - 1
}

// legacyLabels reverses the schema's rewrites for the years they cover, so
// generated sheets use the older spellings the loader normalizes.
func legacyLabels(schema *workbook.Schema, t *domain.Table) {
	for _, rw := range schema.Rewrites {
		if len(rw.Years) > 0 && !slices.Contains(rw.Years, t.Year) {
			continue
		}
		for name, header := range schema.Dimensions {
			if header != rw.Column {
				continue
			}
			d, err := domain.DimensionByName(name)
			if err != nil {
				continue
			}
			for i := range t.Records {
				if t.Records[i].Values[d.Key] == rw.To {
					t.Records[i].Values[d.Key] = rw.From
				}
			}
		}
	}
}
