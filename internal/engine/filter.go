package engine

// Filter keeps the rows whose value in column is one of values, in their
// original order. No values means no filter: the receiver comes back as is.
func (d *Dataset) Filter(column string, values []string) (*Dataset, error) {
	c, err := d.column(column)
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return d, nil
	}

	want := make(map[string]struct{}, len(values))
	for _, v := range values {
		want[c.canonical(v)] = struct{}{}
	}

	idx := make([]int, 0, d.rows)
	for i := 0; i < d.rows; i++ {
		if _, ok := want[c.Format(i)]; ok {
			idx = append(idx, i)
		}
	}
	return d.Take(idx), nil
}

// Canonical rewrites request values into the textual form Filter and Unique
// compare on, so "2010.0" reads as "2010" in an int column.
func (d *Dataset) Canonical(column string, values []string) ([]string, error) {
	c, err := d.column(column)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = c.canonical(v)
	}
	return out, nil
}

// Unique lists the distinct values of a column in first-appearance order.
func (d *Dataset) Unique(column string) ([]string, error) {
	c, err := d.column(column)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for i := 0; i < d.rows; i++ {
		v := c.Format(i)
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out, nil
}

// YearRange returns the smallest and largest year.
func (d *Dataset) YearRange() (lo, hi int64, err error) {
	years, err := d.years()
	if err != nil {
		return 0, 0, err
	}
	if len(years) == 0 {
		return 0, 0, ErrEmptyDataset
	}
	lo, hi = years[0], years[0]
	for _, y := range years[1:] {
		if y < lo {
			lo = y
		}
		if y > hi {
			hi = y
		}
	}
	return lo, hi, nil
}

// ClampYear pulls y into [min(year), max(year)].
func (d *Dataset) ClampYear(y int64) (int64, error) {
	lo, hi, err := d.YearRange()
	if err != nil {
		return y, err
	}
	return min(max(y, lo), hi), nil
}

// FilterByMinYear keeps rows with year >= minYear. Out-of-range thresholds
// are clamped first, so the result is never empty for a non-empty dataset.
func (d *Dataset) FilterByMinYear(minYear int64) (*Dataset, error) {
	years, err := d.years()
	if err != nil {
		return nil, err
	}
	if len(years) == 0 {
		return d, nil
	}
	minYear, err = d.ClampYear(minYear)
	if err != nil {
		return nil, err
	}

	idx := make([]int, 0, len(years))
	for i, y := range years {
		if y >= minYear {
			idx = append(idx, i)
		}
	}
	if len(idx) == d.rows {
		return d, nil
	}
	return d.Take(idx), nil
}

func (d *Dataset) years() ([]int64, error) {
	i, ok := d.index[ColYear]
	if !ok {
		return nil, ErrNoYearColumn
	}
	c := d.columns[i]
	if c.Kind != KindInt {
		return nil, ErrNoYearColumn
	}
	return c.Ints, nil
}
