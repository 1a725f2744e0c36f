package domain

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/mat"
)

// Matrix is the prepared design matrix: one row per observation, one column
// per feature, and the encoded target.
type Matrix struct {
	Features []string
	X        *mat.Dense
	Y        []float64
}

// Split is the train/test partition handed to a classifier.
type Split struct {
	Features   []string   `json:"features"`
	XTrain     *mat.Dense `json:"-"`
	XTest      *mat.Dense `json:"-"`
	YTrain     []float64  `json:"-"`
	YTest      []float64  `json:"-"`
	TrainIndex []int      `json:"-"` // source rows, in split order
	TestIndex  []int      `json:"-"`
	PreparedAt time.Time  `json:"prepared_at"`
}

// TrainRows returns the number of training observations.
func (s Split) TrainRows() int { return len(s.YTrain) }

// TestRows returns the number of test observations.
func (s Split) TestRows() int { return len(s.YTest) }

// FeatureMatrix separates target from features. Every non-target column is
// read as float; a column with no numeric values is dropped, and remaining
// NaN and infinite cells are mean-imputed.
func FeatureMatrix(d *Dataset, target string) (Matrix, []Warning, error) {
	if !d.Has(target) {
		return Matrix{}, nil, fmt.Errorf("feature matrix: %q: %w", target, ErrMissingTarget)
	}

	var warnings []Warning
	var features []string
	var columns [][]float64
	for _, col := range d.Columns() {
		if col == target {
			continue
		}
		filled, ok := fillMean(d.Floats(col))
		if !ok {
			warnings = append(warnings, missingColumn("feature_matrix", col, "no numeric values. Column dropped."))
			continue
		}
		features = append(features, col)
		columns = append(columns, filled)
	}
	if len(features) == 0 {
		return Matrix{}, warnings, ErrNoFeatures
	}

	y := d.Floats(target)
	for i, v := range y {
		if math.IsNaN(v) {
			return Matrix{}, warnings, fmt.Errorf("feature matrix: target %q row %d is not numeric", target, i)
		}
	}

	rows, cols := len(y), len(features)
	data := make([]float64, rows*cols)
	for j, c := range columns {
		for i, v := range c {
			data[i*cols+j] = v
		}
	}
	return Matrix{Features: features, X: mat.NewDense(rows, cols, data), Y: y}, warnings, nil
}

// TrainTestSplit shuffles rows with a PRNG seeded by seed and holds out
// ceil(testSize * n) of them for testing. The split is stamped with preparedAt.
func TrainTestSplit(m Matrix, testSize float64, seed uint64, preparedAt time.Time) (Split, error) {
	if !(testSize > 0 && testSize < 1) {
		return Split{}, fmt.Errorf("%w: %v not in (0, 1)", ErrInvalidTestSize, testSize)
	}
	n := len(m.Y)
	if n < 2 {
		return Split{}, fmt.Errorf("%w: %d", ErrTooFewRows, n)
	}
	nTest := int(math.Ceil(testSize * float64(n)))
	if nTest >= n {
		return Split{}, fmt.Errorf("%w: test size %v leaves no training rows out of %d", ErrTooFewRows, testSize, n)
	}

	perm := rand.New(rand.NewPCG(seed, seed)).Perm(n)
	testIdx, trainIdx := perm[:nTest], perm[nTest:]

	return Split{
		Features:   m.Features,
		XTrain:     takeRows(m.X, trainIdx),
		XTest:      takeRows(m.X, testIdx),
		YTrain:     take(m.Y, trainIdx),
		YTest:      take(m.Y, testIdx),
		TrainIndex: trainIdx,
		TestIndex:  testIdx,
		PreparedAt: preparedAt.UTC(),
	}, nil
}

func takeRows(x *mat.Dense, idx []int) *mat.Dense {
	_, cols := x.Dims()
	data := make([]float64, 0, len(idx)*cols)
	for _, i := range idx {
		data = append(data, x.RawRowView(i)...)
	}
	return mat.NewDense(len(idx), cols, data)
}

func take(v []float64, idx []int) []float64 {
	out := make([]float64, len(idx))
	for i, j := range idx {
		out[i] = v[j]
	}
	return out
}
