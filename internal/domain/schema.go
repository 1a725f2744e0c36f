package domain

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// Schema assigns roles to the columns of the observation table. Columns not
// named here pass through as features when they hold numbers.
type Schema struct {
	DropColumns    []string    `yaml:"drop_columns"`
	DateColumn     string      `yaml:"date_column"`
	DateLayouts    []string    `yaml:"date_layouts"`
	LocationColumn string      `yaml:"location_column"`
	Target         string      `yaml:"target"`
	Categorical    []string    `yaml:"categorical"`
	Numeric        []string    `yaml:"numeric"`
	Skewed         []string    `yaml:"skewed"`
	TempDiff       DiffFeature `yaml:"temp_diff"`
	Standardize    bool        `yaml:"standardize"`
}

// DiffFeature derives Name = Minuend - Subtrahend.
type DiffFeature struct {
	Name       string `yaml:"name"`
	Minuend    string `yaml:"minuend"`
	Subtrahend string `yaml:"subtrahend"`
}

// DefaultSchema returns the weatherAUS column roles.
func DefaultSchema() Schema {
	return Schema{
		DropColumns:    []string{"Unnamed: 0"},
		DateColumn:     "Date",
		DateLayouts:    []string{"2006-01-02", "02-01-2006", "2006/01/02", "1/2/2006", "2006-01-02 15:04:05"},
		LocationColumn: "Location",
		Target:         "RainTomorrow",
		Categorical:    []string{"Location", "WindGustDir", "WindDir9am", "WindDir3pm", "RainToday", "RainTomorrow"},
		Numeric: []string{
			"MinTemp", "MaxTemp", "Rainfall", "Evaporation", "Sunshine",
			"WindGustSpeed", "WindSpeed9am", "WindSpeed3pm", "Humidity9am",
			"Humidity3pm", "Pressure9am", "Pressure3pm", "Cloud9am", "Cloud3pm",
			"Temp9am", "Temp3pm", "RISK_MM",
		},
		Skewed:      []string{"Rainfall", "Evaporation"},
		TempDiff:    DiffFeature{Name: "TempDiff", Minuend: "MaxTemp", Subtrahend: "MinTemp"},
		Standardize: true,
	}
}

// OneHotColumns returns the categorical columns expanded into indicators:
// every categorical column except the target.
func (s Schema) OneHotColumns() []string {
	out := make([]string, 0, len(s.Categorical))
	for _, c := range s.Categorical {
		if c != s.Target {
			out = append(out, c)
		}
	}
	return out
}

// Validate reports schema settings the pipeline cannot run with.
func (s Schema) Validate() error {
	if s.Target == "" {
		return errors.New("schema: target is required")
	}
	if slices.Contains(s.DropColumns, s.Target) {
		return fmt.Errorf("schema: target %q is listed in drop_columns", s.Target)
	}
	if s.DateColumn != "" && len(s.DateLayouts) == 0 {
		return errors.New("schema: date_layouts is empty")
	}
	return nil
}

// DecodeSchema reads a YAML schema. Keys absent from the document keep their
// DefaultSchema values.
func DecodeSchema(r io.Reader) (Schema, error) {
	s := DefaultSchema()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return Schema{}, fmt.Errorf("decode schema: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Schema{}, err
	}
	return s, nil
}

// LoadSchema reads a YAML schema file. An empty path yields DefaultSchema.
func LoadSchema(path string) (Schema, error) {
	if path == "" {
		return DefaultSchema(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return Schema{}, fmt.Errorf("open schema: %w", err)
	}
	defer f.Close()
	return DecodeSchema(f)
}
