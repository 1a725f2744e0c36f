package domain

import (
	"math"
	"slices"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestFeatureMatrix(t *testing.T) {
	t.Run("imputes and drops non-numeric columns", func(t *testing.T) {
		d := mustReadCSV(t, "a,s,RainTomorrow\n1,x,No\nNA,y,Yes\n3,z,No\n")
		_, err := LabelEncode(d, []string{"RainTomorrow"})
		require.NoError(t, err)

		m, warnings, err := FeatureMatrix(d, "RainTomorrow")
		require.NoError(t, err)

		assert.Equal(t, []string{"a"}, m.Features)
		assert.Equal(t, []float64{0, 1, 0}, m.Y)
		assert.Equal(t, []float64{1, 2, 3}, mat.Col(nil, 0, m.X))
		require.Len(t, warnings, 1)
		assert.Equal(t, "s", warnings[0].Column)
	})

	t.Run("missing target", func(t *testing.T) {
		d := mustReadCSV(t, "a\n1\n")

		_, _, err := FeatureMatrix(d, "RainTomorrow")
		assert.ErrorIs(t, err, ErrMissingTarget)
	})

	t.Run("target only", func(t *testing.T) {
		d := mustReadCSV(t, "RainTomorrow\n0\n1\n")

		_, _, err := FeatureMatrix(d, "RainTomorrow")
		assert.ErrorIs(t, err, ErrNoFeatures)
	})

	t.Run("unencoded target", func(t *testing.T) {
		d := mustReadCSV(t, "a,RainTomorrow\n1,No\n2,Yes\n")

		_, _, err := FeatureMatrix(d, "RainTomorrow")
		assert.Error(t, err)
	})
}

// sequentialMatrix builds an n x 2 matrix whose row i is (i, 10*i) and whose
// label is i%2.
func sequentialMatrix(n int) Matrix {
	data := make([]float64, 0, 2*n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		data = append(data, float64(i), float64(10*i))
		y[i] = float64(i % 2)
	}
	return Matrix{Features: []string{"a", "b"}, X: mat.NewDense(n, 2, data), Y: y}
}

func TestTrainTestSplit(t *testing.T) {
	fixed := time.Date(2024, 4, 26, 15, 0, 0, 0, time.UTC)

	m := sequentialMatrix(10)
	s, err := TrainTestSplit(m, 0.2, 42, fixed.In(time.FixedZone("AEST", 10*3600)))
	require.NoError(t, err)

	assert.Equal(t, 8, s.TrainRows())
	assert.Equal(t, 2, s.TestRows())
	assert.Equal(t, fixed, s.PreparedAt)
	assert.Equal(t, m.Features, s.Features)

	all := append(slices.Clone(s.TrainIndex), s.TestIndex...)
	slices.Sort(all)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, all)

	for i, src := range s.TrainIndex {
		assert.Equal(t, []float64{float64(src), float64(10 * src)}, s.XTrain.RawRowView(i))
		assert.Equal(t, float64(src%2), s.YTrain[i])
	}
	for i, src := range s.TestIndex {
		assert.Equal(t, []float64{float64(src), float64(10 * src)}, s.XTest.RawRowView(i))
		assert.Equal(t, float64(src%2), s.YTest[i])
	}
}

func TestTrainTestSplit_Deterministic(t *testing.T) {
	m := sequentialMatrix(50)

	a, err := TrainTestSplit(m, 0.2, 42, time.Time{})
	require.NoError(t, err)
	b, err := TrainTestSplit(m, 0.2, 42, time.Time{})
	require.NoError(t, err)
	c, err := TrainTestSplit(m, 0.2, 7, time.Time{})
	require.NoError(t, err)

	if diff := cmp.Diff(a.TestIndex, b.TestIndex); diff != "" {
		t.Errorf("same seed, different test rows (-first +second):\n%s", diff)
	}
	assert.Equal(t, a.YTrain, b.YTrain)
	assert.NotEqual(t, a.TestIndex, c.TestIndex)
}

func TestTrainTestSplit_TestRowCount(t *testing.T) {
	tests := []struct {
		n        int
		testSize float64
		wantTest int
	}{
		{10, 0.2, 2},
		{5, 0.25, 2},
		{3, 0.2, 1},
		{2, 0.5, 1},
		{101, 0.2, 21},
	}
	for _, tt := range tests {
		s, err := TrainTestSplit(sequentialMatrix(tt.n), tt.testSize, 42, time.Time{})
		require.NoError(t, err)
		assert.Equal(t, tt.wantTest, s.TestRows(), "n=%d test_size=%v", tt.n, tt.testSize)
		assert.Equal(t, tt.n, s.TrainRows()+s.TestRows())
	}
}

func TestTrainTestSplit_Errors(t *testing.T) {
	tests := []struct {
		name     string
		n        int
		testSize float64
		want     error
	}{
		{"zero test size", 10, 0, ErrInvalidTestSize},
		{"whole set", 10, 1, ErrInvalidTestSize},
		{"NaN test size", 10, math.NaN(), ErrInvalidTestSize},
		{"single row", 1, 0.2, ErrTooFewRows},
		{"no training rows left", 2, 0.9, ErrTooFewRows},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := TrainTestSplit(sequentialMatrix(tt.n), tt.testSize, 42, time.Time{})
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
