package domain

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// CheckSplit reports every property of s that a classifier would reject:
// shape mismatches, NaN or infinite features and labels that are not class
// indexes.
// An empty result means the split is usable.
func CheckSplit(s Split) []string {
	var problems []string
	width := len(s.Features)

	check := func(name string, x *mat.Dense, y []float64) {
		if x == nil {
			problems = append(problems, fmt.Sprintf("%s: matrix is nil", name))
			return
		}
		rows, cols := x.Dims()
		if cols != width {
			problems = append(problems, fmt.Sprintf("%s: %d columns, %d feature names", name, cols, width))
		}
		if rows != len(y) {
			problems = append(problems, fmt.Sprintf("%s: %d rows, %d labels", name, rows, len(y)))
		}
		for i := 0; i < rows; i++ {
			if row := x.RawRowView(i); floats.HasNaN(row) || hasInf(row) {
				problems = append(problems, fmt.Sprintf("%s: row %d has NaN or infinite features", name, i))
				break
			}
		}
		for i, v := range y {
			if v < 0 || v != math.Trunc(v) {
				problems = append(problems, fmt.Sprintf("%s: label %d is %v, not a class index", name, i, v))
				break
			}
		}
	}

	check("train", s.XTrain, s.YTrain)
	check("test", s.XTest, s.YTest)
	if len(s.YTrain) == 0 {
		problems = append(problems, "train: no rows")
	}
	if len(s.YTest) == 0 {
		problems = append(problems, "test: no rows")
	}
	return problems
}

func hasInf(values []float64) bool {
	for _, v := range values {
		if math.IsInf(v, 0) {
			return true
		}
	}
	return false
}
