package engine

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

// Kind is the physical type of a column.
type Kind uint8

const (
	KindInt Kind = iota
	KindFloat
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	default:
		return "string"
	}
}

// Column holds one field in Struct-of-Arrays form. Only the slice matching
// Kind is populated.
type Column struct {
	Name string
	Kind Kind

	Ints    []int64
	Floats  []float64
	Strings []string
}

func IntColumn(name string, vals ...int64) *Column {
	return &Column{Name: name, Kind: KindInt, Ints: vals}
}

func FloatColumn(name string, vals ...float64) *Column {
	return &Column{Name: name, Kind: KindFloat, Floats: vals}
}

func StringColumn(name string, vals ...string) *Column {
	return &Column{Name: name, Kind: KindString, Strings: vals}
}

func (c *Column) Len() int {
	switch c.Kind {
	case KindInt:
		return len(c.Ints)
	case KindFloat:
		return len(c.Floats)
	default:
		return len(c.Strings)
	}
}

// Numeric reports whether the column takes part in summary statistics.
func (c *Column) Numeric() bool {
	return c.Kind == KindInt || c.Kind == KindFloat
}

// Float returns row i as a float64; string columns yield NaN.
func (c *Column) Float(i int) float64 {
	switch c.Kind {
	case KindInt:
		return float64(c.Ints[i])
	case KindFloat:
		return c.Floats[i]
	default:
		return math.NaN()
	}
}

// Format returns the canonical text of row i. Filter values are matched
// against this form.
func (c *Column) Format(i int) string {
	switch c.Kind {
	case KindInt:
		return strconv.FormatInt(c.Ints[i], 10)
	case KindFloat:
		return formatFloat(c.Floats[i])
	default:
		return c.Strings[i]
	}
}

// canonical maps user input onto the Format form of this column so that
// "2010.0" selects the int 2010.
func (c *Column) canonical(v string) string {
	if c.Kind == KindString {
		return v
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return v
	}
	if c.Kind == KindInt {
		if f != math.Trunc(f) {
			return v
		}
		return strconv.FormatInt(int64(f), 10)
	}
	return formatFloat(f)
}

func formatFloat(f float64) string {
	if math.IsNaN(f) {
		return "NaN"
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func (c *Column) take(idx []int) *Column {
	out := &Column{Name: c.Name, Kind: c.Kind}
	switch c.Kind {
	case KindInt:
		out.Ints = make([]int64, len(idx))
		for k, i := range idx {
			out.Ints[k] = c.Ints[i]
		}
	case KindFloat:
		out.Floats = make([]float64, len(idx))
		for k, i := range idx {
			out.Floats[k] = c.Floats[i]
		}
	default:
		out.Strings = make([]string, len(idx))
		for k, i := range idx {
			out.Strings[k] = c.Strings[i]
		}
	}
	return out
}

var (
	ErrUnknownColumn = errors.New("unknown column")
	ErrNoYearColumn  = errors.New("dataset has no year column")
	ErrEmptyDataset  = errors.New("dataset has no rows")
	ErrNotNumeric    = errors.New("column is not numeric")
)

// Dataset is an immutable column store. Every derived view is a new Dataset
// built from a row subset; nothing here mutates a column after construction.
type Dataset struct {
	columns []*Column
	index   map[string]int
	rows    int
}

// NewDataset checks that columns share a length and have unique names.
func NewDataset(cols ...*Column) (*Dataset, error) {
	d := &Dataset{columns: cols, index: make(map[string]int, len(cols))}
	for i, c := range cols {
		if _, dup := d.index[c.Name]; dup {
			return nil, fmt.Errorf("duplicate column %q", c.Name)
		}
		d.index[c.Name] = i
		if i == 0 {
			d.rows = c.Len()
		} else if c.Len() != d.rows {
			return nil, fmt.Errorf("column %q has %d rows, want %d", c.Name, c.Len(), d.rows)
		}
	}
	return d, nil
}

func (d *Dataset) NumRows() int { return d.rows }

// Columns returns column names in file order.
func (d *Dataset) Columns() []string {
	names := make([]string, len(d.columns))
	for i, c := range d.columns {
		names[i] = c.Name
	}
	return names
}

func (d *Dataset) column(name string) (*Column, error) {
	i, ok := d.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
	}
	return d.columns[i], nil
}

// Kind reports the type of a column.
func (d *Dataset) Kind(name string) (Kind, error) {
	c, err := d.column(name)
	if err != nil {
		return 0, err
	}
	return c.Kind, nil
}

// Floats returns a copy of a numeric column as float64 values.
func (d *Dataset) Floats(name string) ([]float64, error) {
	c, err := d.column(name)
	if err != nil {
		return nil, err
	}
	if !c.Numeric() {
		return nil, fmt.Errorf("%w: %q", ErrNotNumeric, name)
	}
	out := make([]float64, c.Len())
	for i := range out {
		out[i] = c.Float(i)
	}
	return out, nil
}

// Ints returns a copy of an integer column.
func (d *Dataset) Ints(name string) ([]int64, error) {
	c, err := d.column(name)
	if err != nil {
		return nil, err
	}
	if c.Kind != KindInt {
		return nil, fmt.Errorf("%w: %q is %s", ErrNotNumeric, name, c.Kind)
	}
	return append([]int64(nil), c.Ints...), nil
}

// Row returns row i formatted cell by cell.
func (d *Dataset) Row(i int) []string {
	out := make([]string, len(d.columns))
	for j, c := range d.columns {
		out[j] = c.Format(i)
	}
	return out
}

// Take builds a dataset from the given row indices, in the given order.
func (d *Dataset) Take(idx []int) *Dataset {
	cols := make([]*Column, len(d.columns))
	for i, c := range d.columns {
		cols[i] = c.take(idx)
	}
	return &Dataset{columns: cols, index: d.index, rows: len(idx)}
}

// Equal compares names, kinds and cell values. NaN equals NaN.
func (d *Dataset) Equal(o *Dataset) bool {
	if d == o {
		return true
	}
	if d == nil || o == nil || d.rows != o.rows || len(d.columns) != len(o.columns) {
		return false
	}
	for i, c := range d.columns {
		oc := o.columns[i]
		if c.Name != oc.Name || c.Kind != oc.Kind {
			return false
		}
		for r := 0; r < d.rows; r++ {
			if c.Format(r) != oc.Format(r) {
				return false
			}
		}
	}
	return true
}
