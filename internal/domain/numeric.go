package domain

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// ImputeMean parses each present column in cols as float and replaces NaN
// and infinite cells with the mean of the column's finite values. A column with no
// numeric values at all is dropped.
func ImputeMean(d *Dataset, cols []string) ([]Warning, error) {
	var warnings []Warning
	for _, col := range cols {
		if !d.Has(col) {
			warnings = append(warnings, missingColumn("impute_mean", col,
				fmt.Sprintf("Column '%s' not found in the DataFrame. Skipping imputation.", col)))
			continue
		}
		filled, ok := fillMean(d.Floats(col))
		if !ok {
			warnings = append(warnings, missingColumn("impute_mean", col, "no numeric values. Column dropped."))
			if err := d.Drop(col); err != nil {
				return warnings, err
			}
			continue
		}
		if err := d.SetFloats(col, filled); err != nil {
			return warnings, err
		}
	}
	return warnings, nil
}

// fillMean replaces NaN and ±Inf entries with the mean of the finite ones. It
// reports false when no entry is finite.
func fillMean(values []float64) ([]float64, bool) {
	known := finite(values)
	if len(known) == 0 {
		return nil, false
	}
	if len(known) == len(values) {
		return values, true
	}
	mean := stat.Mean(known, nil)
	out := make([]float64, len(values))
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			v = mean
		}
		out[i] = v
	}
	return out, true
}

// Log1p applies log(1+x) to each present column in cols. Negative inputs map
// to 0; NaN stays NaN.
func Log1p(d *Dataset, cols []string) ([]Warning, error) {
	var warnings []Warning
	for _, col := range cols {
		if !d.Has(col) {
			warnings = append(warnings, missingColumn("log1p", col,
				fmt.Sprintf("Column '%s' not found in the DataFrame. Skipping log transform.", col)))
			continue
		}
		values := d.Floats(col)
		out := make([]float64, len(values))
		for i, v := range values {
			switch {
			case math.IsNaN(v):
				out[i] = v
			case v < 0:
				out[i] = 0
			default:
				out[i] = math.Log1p(v)
			}
		}
		if err := d.SetFloats(col, out); err != nil {
			return warnings, err
		}
	}
	return warnings, nil
}

// Standardize rescales each present column in cols to (x - mean) / std using
// the sample standard deviation. Columns with fewer than two values or zero
// spread are left as they are.
func Standardize(d *Dataset, cols []string) ([]Warning, error) {
	var warnings []Warning
	for _, col := range cols {
		if !d.Has(col) {
			warnings = append(warnings, missingColumn("standardize", col,
				fmt.Sprintf("Column '%s' not found in the DataFrame. Skipping normalization.", col)))
			continue
		}
		values := d.Floats(col)
		known := finite(values)
		if len(known) < 2 {
			warnings = append(warnings, missingColumn("standardize", col, "fewer than two values. Left unscaled."))
			continue
		}
		mean, std := stat.MeanStdDev(known, nil)
		if std == 0 || math.IsNaN(std) {
			warnings = append(warnings, missingColumn("standardize", col, "zero variance. Left unscaled."))
			continue
		}
		out := make([]float64, len(values))
		for i, v := range values {
			out[i] = (v - mean) / std
		}
		if err := d.SetFloats(col, out); err != nil {
			return warnings, err
		}
	}
	return warnings, nil
}

func finite(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}
