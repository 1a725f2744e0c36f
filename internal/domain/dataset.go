package domain

import (
	"fmt"
	"slices"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Dataset is the observation table as it moves through preparation. Cells are
// held in a gota DataFrame; dates parsed from the date column and the fitted
// label encoders are carried alongside.
type Dataset struct {
	frame    dataframe.DataFrame
	dates    []time.Time
	encoders map[string]*LabelEncoder
}

// NewDataset wraps an existing frame.
func NewDataset(df dataframe.DataFrame) (*Dataset, error) {
	if df.Err != nil {
		return nil, fmt.Errorf("new dataset: %w", df.Err)
	}
	return &Dataset{frame: df, encoders: map[string]*LabelEncoder{}}, nil
}

// Frame returns the underlying DataFrame.
func (d *Dataset) Frame() dataframe.DataFrame { return d.frame }

// Rows returns the number of observations.
func (d *Dataset) Rows() int { return d.frame.Nrow() }

// Columns returns the column names in order.
func (d *Dataset) Columns() []string { return d.frame.Names() }

// Has reports whether col exists.
func (d *Dataset) Has(col string) bool {
	return slices.Contains(d.frame.Names(), col)
}

// Dates returns the parsed date column, or nil if no date was converted.
func (d *Dataset) Dates() []time.Time { return d.dates }

// Encoder returns the label encoder fitted on col, if any.
func (d *Dataset) Encoder(col string) (*LabelEncoder, bool) {
	e, ok := d.encoders[col]
	return e, ok
}

// Strings returns the cells of col as strings. Missing cells read "NaN".
func (d *Dataset) Strings(col string) []string {
	return d.frame.Col(col).Records()
}

// Floats returns the cells of col as float64. Missing or non-numeric cells
// are NaN.
func (d *Dataset) Floats(col string) []float64 {
	return d.frame.Col(col).Float()
}

// Ints returns the cells of an integer-typed column.
func (d *Dataset) Ints(col string) ([]int, error) {
	v, err := d.frame.Col(col).Int()
	if err != nil {
		return nil, fmt.Errorf("column %q: %w", col, err)
	}
	return v, nil
}

// Kind returns the gota type of col.
func (d *Dataset) Kind(col string) series.Type {
	return d.frame.Col(col).Type()
}

// SetFloats adds or replaces col with float values.
func (d *Dataset) SetFloats(col string, values []float64) error {
	return d.mutate(series.New(values, series.Float, col))
}

// SetInts adds or replaces col with integer values.
func (d *Dataset) SetInts(col string, values []int) error {
	return d.mutate(series.New(values, series.Int, col))
}

// Drop removes col if present.
func (d *Dataset) Drop(col string) error {
	if !d.Has(col) {
		return nil
	}
	df := d.frame.Drop(col)
	if df.Err != nil {
		return fmt.Errorf("drop %q: %w", col, df.Err)
	}
	d.frame = df
	delete(d.encoders, col)
	return nil
}

// keepRows retains the rows at the given indexes, in order.
func (d *Dataset) keepRows(idx []int) error {
	df := d.frame.Subset(idx)
	if df.Err != nil {
		return fmt.Errorf("subset rows: %w", df.Err)
	}
	d.frame = df
	if d.dates != nil {
		kept := make([]time.Time, len(idx))
		for i, j := range idx {
			kept[i] = d.dates[j]
		}
		d.dates = kept
	}
	return nil
}

func (d *Dataset) mutate(s series.Series) error {
	if s.Err != nil {
		return fmt.Errorf("build column %q: %w", s.Name, s.Err)
	}
	df := d.frame.Mutate(s)
	if df.Err != nil {
		return fmt.Errorf("set column %q: %w", s.Name, df.Err)
	}
	d.frame = df
	return nil
}
