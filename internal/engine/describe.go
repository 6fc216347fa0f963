package engine

import (
	"encoding/json"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// StatNames is the row order of a describe table.
var StatNames = []string{"count", "mean", "std", "min", "25%", "50%", "75%", "max"}

// Stat is a float that encodes NaN and Inf as JSON null.
type Stat float64

func (s Stat) MarshalJSON() ([]byte, error) {
	f := float64(s)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(f)
}

type Stats struct {
	Count Stat `json:"count"`
	Mean  Stat `json:"mean"`
	Std   Stat `json:"std"`
	Min   Stat `json:"min"`
	P25   Stat `json:"25%"`
	P50   Stat `json:"50%"`
	P75   Stat `json:"75%"`
	Max   Stat `json:"max"`
}

// Values returns the stats in StatNames order.
func (s Stats) Values() []float64 {
	return []float64{
		float64(s.Count), float64(s.Mean), float64(s.Std), float64(s.Min),
		float64(s.P25), float64(s.P50), float64(s.P75), float64(s.Max),
	}
}

type ColumnSummary struct {
	Column string `json:"column"`
	Stats  Stats  `json:"stats"`
}

// Summary holds one entry per numeric column, in dataset order.
type Summary []ColumnSummary

func (s Summary) Lookup(column string) (Stats, bool) {
	for _, cs := range s {
		if cs.Column == column {
			return cs.Stats, true
		}
	}
	return Stats{}, false
}

// Map returns column -> stat name -> value.
func (s Summary) Map() map[string]map[string]float64 {
	out := make(map[string]map[string]float64, len(s))
	for _, cs := range s {
		m := make(map[string]float64, len(StatNames))
		for i, v := range cs.Stats.Values() {
			m[StatNames[i]] = v
		}
		out[cs.Column] = m
	}
	return out
}

// Describe computes count, mean, sample std, min, quartiles and max for every
// numeric column. NaN cells are skipped.
func Describe(d *Dataset) Summary {
	out := make(Summary, 0, len(d.columns))
	for _, c := range d.columns {
		if !c.Numeric() {
			continue
		}
		vals := make([]float64, 0, c.Len())
		for i := 0; i < c.Len(); i++ {
			if v := c.Float(i); !math.IsNaN(v) {
				vals = append(vals, v)
			}
		}
		out = append(out, ColumnSummary{Column: c.Name, Stats: describe(vals)})
	}
	return out
}

func describe(vals []float64) Stats {
	nan := Stat(math.NaN())
	s := Stats{Count: Stat(len(vals)), Mean: nan, Std: nan, Min: nan, P25: nan, P50: nan, P75: nan, Max: nan}
	if len(vals) == 0 {
		return s
	}

	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)

	s.Mean = Stat(stat.Mean(vals, nil))
	if len(vals) > 1 {
		s.Std = Stat(stat.StdDev(vals, nil))
	}
	s.Min = Stat(sorted[0])
	s.P25 = Stat(percentile(sorted, 0.25))
	s.P50 = Stat(percentile(sorted, 0.50))
	s.P75 = Stat(percentile(sorted, 0.75))
	s.Max = Stat(sorted[len(sorted)-1])
	return s
}

// percentile interpolates linearly between the closest ranks of sorted,
// the same rule dataframe libraries default to.
func percentile(sorted []float64, p float64) float64 {
	pos := p * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// Mean is the arithmetic mean of a numeric column, ignoring NaN.
func (d *Dataset) Mean(column string) (float64, error) {
	vals, err := d.Floats(column)
	if err != nil {
		return 0, err
	}
	kept := vals[:0]
	for _, v := range vals {
		if !math.IsNaN(v) {
			kept = append(kept, v)
		}
	}
	if len(kept) == 0 {
		return math.NaN(), nil
	}
	return stat.Mean(kept, nil), nil
}
