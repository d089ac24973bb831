package workbook

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/couchcryptid/school-accident-trends/internal/domain"
)

//go:embed schema.yaml
var defaultSchema []byte

// Schema describes where the loader finds each field in the workbook.
type Schema struct {
	Sheets        []string          `yaml:"sheets"`
	Columns       Columns           `yaml:"columns"`
	Dimensions    map[string]string `yaml:"dimensions"`
	HeaderAliases map[string]string `yaml:"header_aliases"`
	Rewrites      []Rewrite         `yaml:"rewrites"`
}

// Columns names the headers of the non-categorical fields.
type Columns struct {
	Region  string `yaml:"region"`
	Weekday string `yaml:"weekday"`
	Time    string `yaml:"time"`
}

// Rewrite replaces one cell value with another in a column. An empty Years
// list applies the rewrite to every sheet.
type Rewrite struct {
	Column string `yaml:"column"`
	From   string `yaml:"from"`
	To     string `yaml:"to"`
	Years  []int  `yaml:"years"`
}

func (r Rewrite) appliesTo(year int) bool {
	return len(r.Years) == 0 || slices.Contains(r.Years, year)
}

// DefaultSchema returns the embedded schema for the published workbook.
func DefaultSchema() (*Schema, error) {
	return ParseSchema(defaultSchema)
}

// LoadSchema reads a schema file, or the embedded default when path is empty.
func LoadSchema(path string) (*Schema, error) {
	if path == "" {
		return DefaultSchema()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	return ParseSchema(data)
}

// ParseSchema decodes and validates a YAML schema.
func ParseSchema(data []byte) (*Schema, error) {
	var s Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode schema: %w", err)
	}
	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("validate schema: %w", err)
	}
	return &s, nil
}

func (s *Schema) validate() error {
	if len(s.Sheets) == 0 {
		return errors.New("no sheets listed")
	}
	for _, name := range s.Sheets {
		if _, err := sheetYear(name); err != nil {
			return err
		}
	}
	if s.Columns.Region == "" || s.Columns.Weekday == "" || s.Columns.Time == "" {
		return errors.New("region, weekday and time columns are required")
	}
	for name, header := range s.Dimensions {
		if _, err := domain.DimensionByName(name); err != nil {
			return err
		}
		if header == "" {
			return fmt.Errorf("dimension %q has no column", name)
		}
	}
	for _, r := range s.Rewrites {
		if r.Column == "" || r.From == "" {
			return errors.New("rewrite needs a column and a from value")
		}
	}
	return nil
}

// header maps a raw header cell to its canonical name.
func (s *Schema) header(raw string) string {
	h := strings.TrimSpace(raw)
	if alias, ok := s.HeaderAliases[h]; ok {
		return alias
	}
	return h
}

// dimensionColumns returns the header for each dimension the schema maps.
func (s *Schema) dimensionColumns() map[domain.DimensionKey]string {
	out := make(map[domain.DimensionKey]string, len(s.Dimensions))
	for name, header := range s.Dimensions {
		d, err := domain.DimensionByName(name)
		if err != nil {
			continue
		}
		out[d.Key] = header
	}
	return out
}

func sheetYear(name string) (int, error) {
	year, err := strconv.Atoi(strings.TrimSpace(name))
	if err != nil {
		return 0, fmt.Errorf("sheet %q is not a year", name)
	}
	return year, nil
}
