package domain

import "fmt"

// AddDateParts derives Year, Month and Day columns from the converted date.
func AddDateParts(d *Dataset, dateCol string) ([]Warning, error) {
	if d.dates == nil {
		return []Warning{missingColumn("date_parts", dateCol,
			"no converted date column. Skipping Year/Month/Day extraction.")}, nil
	}
	years := make([]int, len(d.dates))
	months := make([]int, len(d.dates))
	days := make([]int, len(d.dates))
	for i, t := range d.dates {
		years[i] = t.Year()
		months[i] = int(t.Month())
		days[i] = t.Day()
	}
	for _, c := range []struct {
		name string
		vals []int
	}{{"Year", years}, {"Month", months}, {"Day", days}} {
		if err := d.SetInts(c.name, c.vals); err != nil {
			return nil, err
		}
	}
	return nil, nil
}

// AddDifference derives f.Name = f.Minuend - f.Subtrahend when both inputs exist.
func AddDifference(d *Dataset, f DiffFeature) ([]Warning, error) {
	if f.Name == "" {
		return nil, nil
	}
	var absent []string
	for _, c := range []string{f.Minuend, f.Subtrahend} {
		if !d.Has(c) {
			absent = append(absent, c)
		}
	}
	if len(absent) > 0 {
		return []Warning{missingColumn("difference", f.Name,
			fmt.Sprintf("Columns %v not found in the DataFrame. Skipping %s calculation.", absent, f.Name))}, nil
	}

	a := d.Floats(f.Minuend)
	b := d.Floats(f.Subtrahend)
	diff := make([]float64, len(a))
	for i := range a {
		diff[i] = a[i] - b[i]
	}
	return nil, d.SetFloats(f.Name, diff)
}
