package domain

import (
	"fmt"
	"strings"
	"time"
)

// DropColumns removes the listed columns that are present. Absent columns are
// ignored silently; an index column that was never written is not a problem.
func DropColumns(d *Dataset, cols []string) ([]string, error) {
	var dropped []string
	for _, c := range cols {
		if !d.Has(c) {
			continue
		}
		if err := d.Drop(c); err != nil {
			return dropped, err
		}
		dropped = append(dropped, c)
	}
	return dropped, nil
}

// DropIncompleteRows removes every row with at least one missing cell and
// returns how many were removed. It fails with ErrEmptyDataset if no row is
// complete.
func DropIncompleteRows(d *Dataset) (int, error) {
	n := d.Rows()
	complete := make([]bool, n)
	for i := range complete {
		complete[i] = true
	}
	for _, col := range d.Columns() {
		for i, na := range d.frame.Col(col).IsNaN() {
			if na {
				complete[i] = false
			}
		}
	}

	keep := make([]int, 0, n)
	for i, ok := range complete {
		if ok {
			keep = append(keep, i)
		}
	}
	if len(keep) == n {
		return 0, nil
	}
	if len(keep) == 0 {
		return n, fmt.Errorf("drop incomplete rows: all %d rows have missing values: %w", n, ErrEmptyDataset)
	}
	if err := d.keepRows(keep); err != nil {
		return 0, err
	}
	return n - len(keep), nil
}

// ConvertDates parses col with the first matching layout and stores the
// result on the dataset. A missing column yields a warning; an unparseable
// value is an error naming its row.
func ConvertDates(d *Dataset, col string, layouts []string) ([]Warning, error) {
	if col == "" {
		return nil, nil
	}
	if !d.Has(col) {
		return []Warning{missingColumn("convert_date", col,
			fmt.Sprintf("'%s' column not found in the DataFrame. Skipping conversion.", col))}, nil
	}

	raw := d.Strings(col)
	dates := make([]time.Time, len(raw))
	for i, v := range raw {
		t, err := parseDate(v, layouts)
		if err != nil {
			return nil, fmt.Errorf("convert %q: row %d: %w", col, i, err)
		}
		dates[i] = t
	}
	d.dates = dates
	return nil, nil
}

func parseDate(v string, layouts []string) (time.Time, error) {
	v = strings.TrimSpace(v)
	for _, layout := range layouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", v)
}
