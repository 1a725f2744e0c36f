package domain

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// naTokens are the cell values read as missing, matching pandas' default
// na_values.
var naTokens = map[string]struct{}{
	"": {}, "NA": {}, "N/A": {}, "n/a": {}, "NaN": {}, "nan": {}, "-NaN": {}, "-nan": {},
	"null": {}, "NULL": {}, "None": {}, "<NA>": {}, "#N/A": {}, "#NA": {}, "#N/A N/A": {},
	"-1.#IND": {}, "1.#IND": {}, "-1.#QNAN": {}, "1.#QNAN": {},
}

// missing is the marker gota string series treat as NA.
const missing = "NaN"

func isNA(s string) bool {
	_, ok := naTokens[s]
	return ok
}

// ReadCSV parses a header-first CSV into a Dataset of string columns.
// Empty headers become "Unnamed: <i>" and repeated headers gain ".1", ".2"
// suffixes. Short rows are padded with missing cells.
func ReadCSV(r io.Reader) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read csv: %w", ErrEmptyDataset)
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	names := normalizeHeader(header)

	cols := make([][]string, len(names))
	line := 1
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		line++
		if len(row) > len(names) {
			return nil, fmt.Errorf("read csv: line %d: expected %d fields, saw %d", line, len(names), len(row))
		}
		for i := range names {
			cell := missing
			if i < len(row) {
				if v := strings.TrimSpace(row[i]); !isNA(v) {
					cell = v
				}
			}
			cols[i] = append(cols[i], cell)
		}
	}

	if len(cols) == 0 || len(cols[0]) == 0 {
		return nil, fmt.Errorf("read csv: %w", ErrEmptyDataset)
	}

	ss := make([]series.Series, len(names))
	for i, name := range names {
		ss[i] = series.New(cols[i], series.String, name)
	}
	return NewDataset(dataframe.New(ss...))
}

func normalizeHeader(header []string) []string {
	names := make([]string, len(header))
	seen := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		if h == "" {
			h = "Unnamed: " + strconv.Itoa(i)
		}
		if n, dup := seen[h]; dup {
			seen[h] = n + 1
			h = h + "." + strconv.Itoa(n+1)
		} else {
			seen[h] = 0
		}
		names[i] = h
	}
	return names
}
