package engine

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
)

func TestDescribe(t *testing.T) {
	ds, err := NewDataset(
		IntColumn(ColYear, 2010, 2011, 2012),
		FloatColumn(ColFacebook, 0, 10, 20),
		StringColumn("label", "a", "b", "c"),
	)
	if err != nil {
		t.Fatal(err)
	}

	sum := Describe(ds)
	if len(sum) != 2 {
		t.Fatalf("Expected 2 numeric columns, got %d", len(sum))
	}
	if sum[0].Column != ColYear {
		t.Errorf("Expected year first, got %s", sum[0].Column)
	}

	fb, ok := sum.Lookup(ColFacebook)
	if !ok {
		t.Fatal("facebook column missing from summary")
	}
	checks := map[string]float64{
		"count": 3, "mean": 10, "std": 10, "min": 0,
		"25%": 5, "50%": 10, "75%": 15, "max": 20,
	}
	m := sum.Map()[ColFacebook]
	for name, want := range checks {
		if got := m[name]; math.Abs(got-want) > 1e-9 {
			t.Errorf("%s: expected %v, got %v", name, want, got)
		}
	}
	if float64(fb.Mean) != 10.0 {
		t.Errorf("mean: expected 10.0, got %v", fb.Mean)
	}
}

func TestDescribeSkipsNaN(t *testing.T) {
	ds, _ := NewDataset(FloatColumn("x", 1, math.NaN(), 3))
	st, _ := Describe(ds).Lookup("x")
	if st.Count != 2 || st.Mean != 2 {
		t.Errorf("Expected count 2 mean 2, got count %v mean %v", st.Count, st.Mean)
	}
}

func TestDescribeSingleValue(t *testing.T) {
	ds, _ := NewDataset(FloatColumn("x", 4))
	st, _ := Describe(ds).Lookup("x")
	if !math.IsNaN(float64(st.Std)) {
		t.Errorf("Expected NaN std for one value, got %v", st.Std)
	}
	if st.P25 != 4 || st.Max != 4 {
		t.Errorf("Expected quartiles of 4, got %v / %v", st.P25, st.Max)
	}

	b, err := json.Marshal(st)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), `"std":null`) {
		t.Errorf("Expected std encoded as null, got %s", b)
	}
}

func TestMean(t *testing.T) {
	ds, _ := NewDataset(FloatColumn(ColFacebook, 0, 10, 20))
	got, err := ds.Mean(ColFacebook)
	if err != nil {
		t.Fatal(err)
	}
	if got != 10.0 {
		t.Errorf("Expected 10.0, got %v", got)
	}
	if _, err := ds.Mean("missing"); err == nil {
		t.Error("Expected error for unknown column")
	}
}
