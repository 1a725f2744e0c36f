package domain

import (
	"fmt"
	"slices"
	"sort"
)

// LabelEncoder maps category labels to the index of the label in the sorted
// set of distinct labels.
type LabelEncoder struct {
	Classes []string
	index   map[string]int
}

// FitLabelEncoder learns the classes of values.
func FitLabelEncoder(values []string) *LabelEncoder {
	index := make(map[string]int)
	for _, v := range values {
		index[v] = 0
	}
	classes := make([]string, 0, len(index))
	for v := range index {
		classes = append(classes, v)
	}
	sort.Strings(classes)
	for i, c := range classes {
		index[c] = i
	}
	return &LabelEncoder{Classes: classes, index: index}
}

// Transform encodes values. Labels not seen during fitting are an error.
func (e *LabelEncoder) Transform(values []string) ([]int, error) {
	codes := make([]int, len(values))
	for i, v := range values {
		c, ok := e.index[v]
		if !ok {
			return nil, fmt.Errorf("label %q not among %d fitted classes", v, len(e.Classes))
		}
		codes[i] = c
	}
	return codes, nil
}

// Class returns the label for code.
func (e *LabelEncoder) Class(code int) string {
	if code < 0 || code >= len(e.Classes) {
		return ""
	}
	return e.Classes[code]
}

// LabelEncode replaces each present column in cols with integer codes and
// keeps the fitted encoder on the dataset.
func LabelEncode(d *Dataset, cols []string) ([]Warning, error) {
	var warnings []Warning
	for _, col := range cols {
		if !d.Has(col) {
			warnings = append(warnings, missingColumn("label_encode", col,
				fmt.Sprintf("Column '%s' not found in DataFrame.", col)))
			continue
		}
		values := d.Strings(col)
		enc := FitLabelEncoder(values)
		codes, err := enc.Transform(values)
		if err != nil {
			return warnings, fmt.Errorf("label encode %q: %w", col, err)
		}
		if err := d.SetInts(col, codes); err != nil {
			return warnings, err
		}
		d.encoders[col] = enc
	}
	return warnings, nil
}

// OneHotEncode expands each present column in cols into 0/1 indicator
// columns named "<col>_<class>", dropping the first class, and removes the
// source column. Indicators are appended after the existing columns.
func OneHotEncode(d *Dataset, cols []string) ([]Warning, error) {
	var warnings []Warning
	for _, col := range cols {
		if !d.Has(col) {
			warnings = append(warnings, missingColumn("one_hot", col,
				fmt.Sprintf("Column '%s' not found in DataFrame. Skipping one-hot encoding.", col)))
			continue
		}

		enc, codes, err := categoryCodes(d, col)
		if err != nil {
			return warnings, err
		}
		for k := 1; k < len(enc.Classes); k++ {
			indicator := make([]float64, len(codes))
			for i, c := range codes {
				if c == k {
					indicator[i] = 1
				}
			}
			name := col + "_" + enc.Classes[k]
			if d.Has(name) {
				return warnings, fmt.Errorf("one-hot %q: indicator %q collides with an existing column", col, name)
			}
			if err := d.SetFloats(name, indicator); err != nil {
				return warnings, err
			}
		}
		if err := d.Drop(col); err != nil {
			return warnings, err
		}
	}
	return warnings, nil
}

// categoryCodes returns the encoder and codes for col, fitting a new encoder
// when col was not label-encoded earlier.
func categoryCodes(d *Dataset, col string) (*LabelEncoder, []int, error) {
	if enc, ok := d.encoders[col]; ok {
		codes, err := d.Ints(col)
		return enc, codes, err
	}
	values := d.Strings(col)
	enc := FitLabelEncoder(values)
	codes, err := enc.Transform(values)
	if err != nil {
		return nil, nil, fmt.Errorf("one-hot %q: %w", col, err)
	}
	return enc, codes, nil
}

// EncodedColumns lists the columns that hold label codes, in table order.
func EncodedColumns(d *Dataset) []string {
	var out []string
	for _, c := range d.Columns() {
		if _, ok := d.encoders[c]; ok {
			out = append(out, c)
		}
	}
	return slices.Clip(out)
}
