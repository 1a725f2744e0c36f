// Package csvout writes a prepared split as four plain CSV files and reads
// them back for validation.
package csvout

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"gonum.org/v1/gonum/mat"

	"github.com/couchcryptid/weather-prep/internal/domain"
)

// File names written by WriteSplit.
const (
	XTrainFile = "X_train.csv"
	XTestFile  = "X_test.csv"
	YTrainFile = "y_train.csv"
	YTestFile  = "y_test.csv"
)

// WriteSplit writes the split into dir, creating it if needed. Feature files
// carry the feature names as header; label files carry the target name.
func WriteSplit(dir string, split domain.Split, target string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	files := []struct {
		name   string
		header []string
		rows   func(yield func([]float64) error) error
	}{
		{XTrainFile, split.Features, matrixRows(split.XTrain)},
		{XTestFile, split.Features, matrixRows(split.XTest)},
		{YTrainFile, []string{target}, vectorRows(split.YTrain)},
		{YTestFile, []string{target}, vectorRows(split.YTest)},
	}
	for _, f := range files {
		if err := writeFile(filepath.Join(dir, f.name), f.header, f.rows); err != nil {
			return err
		}
	}
	return nil
}

func matrixRows(x *mat.Dense) func(func([]float64) error) error {
	return func(yield func([]float64) error) error {
		if x == nil {
			return nil
		}
		rows, _ := x.Dims()
		for i := 0; i < rows; i++ {
			if err := yield(x.RawRowView(i)); err != nil {
				return err
			}
		}
		return nil
	}
}

func vectorRows(y []float64) func(func([]float64) error) error {
	return func(yield func([]float64) error) error {
		for _, v := range y {
			if err := yield([]float64{v}); err != nil {
				return err
			}
		}
		return nil
	}
}

func writeFile(path string, header []string, rows func(func([]float64) error) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", filepath.Base(path), err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", filepath.Base(path), cerr)
		}
	}()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	record := make([]string, len(header))
	err = rows(func(values []float64) error {
		for i, v := range values {
			record[i] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		return w.Write(record)
	})
	if err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", filepath.Base(path), err)
	}
	return nil
}

// ReadSplit loads the four files written by WriteSplit. Row provenance and
// PreparedAt are not stored, so they are zero in the result.
func ReadSplit(dir string) (domain.Split, error) {
	features, xTrain, err := readMatrix(filepath.Join(dir, XTrainFile))
	if err != nil {
		return domain.Split{}, err
	}
	testFeatures, xTest, err := readMatrix(filepath.Join(dir, XTestFile))
	if err != nil {
		return domain.Split{}, err
	}
	if !slices.Equal(features, testFeatures) {
		return domain.Split{}, fmt.Errorf("%s and %s have different headers", XTrainFile, XTestFile)
	}
	_, yTrain, err := readMatrix(filepath.Join(dir, YTrainFile))
	if err != nil {
		return domain.Split{}, err
	}
	_, yTest, err := readMatrix(filepath.Join(dir, YTestFile))
	if err != nil {
		return domain.Split{}, err
	}
	return domain.Split{
		Features: features,
		XTrain:   xTrain,
		XTest:    xTest,
		YTrain:   firstColumn(yTrain),
		YTest:    firstColumn(yTest),
	}, nil
}

func readMatrix(path string) ([]string, *mat.Dense, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	df := dataframe.ReadCSV(f,
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.Float),
	)
	if df.Err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", filepath.Base(path), df.Err)
	}
	rows, cols := df.Dims()
	if rows == 0 || cols == 0 {
		return nil, nil, fmt.Errorf("read %s: no data rows", filepath.Base(path))
	}
	x := mat.NewDense(rows, cols, nil)
	for j, name := range df.Names() {
		x.SetCol(j, df.Col(name).Float())
	}
	return df.Names(), x, nil
}

func firstColumn(x *mat.Dense) []float64 {
	return mat.Col(nil, 0, x)
}
