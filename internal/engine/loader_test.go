package engine

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleCSV = `year,Twitter user count % change since 2010,Facebook user count % change since 2010,Suicide Rate % change since 2010,Total social media growth,Social Media Impact Score
2010,0.0,0.0,0.0,0.0,0.0
2011,82.5,37.1,2.3,119.6,1.2
2012,150.0,71.4,4.1,221.4,3.4
2013,215.0,102.9,5.9,317.9,6.1
`

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadCSV(t *testing.T) {
	ds, err := LoadCSV(writeTemp(t, sampleCSV))
	if err != nil {
		t.Fatalf("LoadCSV: %v", err)
	}

	if ds.NumRows() != 4 {
		t.Fatalf("Expected 4 rows, got %d", ds.NumRows())
	}
	if got := len(ds.Columns()); got != 6 {
		t.Fatalf("Expected 6 columns, got %d", got)
	}
	if ds.Columns()[0] != ColYear {
		t.Errorf("Expected first column %q, got %q", ColYear, ds.Columns()[0])
	}

	if k, _ := ds.Kind(ColYear); k != KindInt {
		t.Errorf("year kind: expected int, got %s", k)
	}
	if k, _ := ds.Kind(ColFacebook); k != KindFloat {
		t.Errorf("facebook kind: expected float, got %s", k)
	}

	years, _ := ds.Ints(ColYear)
	if years[3] != 2013 {
		t.Errorf("Row 3 year: expected 2013, got %d", years[3])
	}
	tw, _ := ds.Floats(ColTwitter)
	if tw[1] != 82.5 {
		t.Errorf("Row 1 twitter: expected 82.5, got %f", tw[1])
	}
}

func TestLoadCSVExtraColumns(t *testing.T) {
	csv := strings.Replace(sampleCSV, "Social Media Impact Score\n", "Social Media Impact Score,note\n", 1)
	csv = strings.Replace(csv, "2010,0.0,0.0,0.0,0.0,0.0\n", "2010,0.0,0.0,0.0,0.0,0.0,base\n", 1)
	csv = strings.Replace(csv, "1.2\n", "1.2,a\n", 1)
	csv = strings.Replace(csv, "3.4\n", "3.4,b\n", 1)
	csv = strings.Replace(csv, "6.1\n", "6.1,c\n", 1)

	ds, err := ReadCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if k, _ := ds.Kind("note"); k != KindString {
		t.Errorf("note kind: expected string, got %s", k)
	}
	if got := ds.Row(2)[6]; got != "b" {
		t.Errorf("Row 2 note: expected b, got %q", got)
	}
}

func TestLoadCSVNullFloat(t *testing.T) {
	csv := strings.Replace(sampleCSV, "2012,150.0,71.4", "2012,,71.4", 1)
	ds, err := ReadCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	tw, _ := ds.Floats(ColTwitter)
	if !math.IsNaN(tw[2]) {
		t.Errorf("Expected NaN for empty cell, got %f", tw[2])
	}
}

func TestLoadCSVErrors(t *testing.T) {
	cases := map[string]string{
		"header only":    strings.SplitN(sampleCSV, "\n", 2)[0] + "\n",
		"missing column": "year,Twitter user count % change since 2010\n2010,1.0\n",
		"bad number":     strings.Replace(sampleCSV, "82.5", "lots", 1),
		"ragged row":     strings.Replace(sampleCSV, "2011,82.5,", "2011,", 1),
		"null year":      strings.Replace(sampleCSV, "2012,150.0", ",150.0", 1),
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadCSV(writeTemp(t, content))
			var le *LoadError
			if !errors.As(err, &le) {
				t.Fatalf("Expected LoadError, got %v", err)
			}
			if le.Path == "" {
				t.Error("LoadError should carry the file path")
			}
		})
	}
}

func TestLoadCSVMissingFile(t *testing.T) {
	_, err := LoadCSV(filepath.Join(t.TempDir(), "nope.csv"))
	var le *LoadError
	if !errors.As(err, &le) {
		t.Fatalf("Expected LoadError, got %v", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected wrapped ErrNotExist, got %v", err)
	}
}

func TestSourceLoadsOnce(t *testing.T) {
	path := writeTemp(t, sampleCSV)
	src := NewSource(path, nil)
	if src.Ready() {
		t.Fatal("Source should not be ready before Load")
	}

	first, err := src.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	// Changing the file must not affect the cached table.
	if err := os.WriteFile(path, []byte("garbage"), 0o644); err != nil {
		t.Fatal(err)
	}
	second, err := src.Load()
	if err != nil {
		t.Fatalf("second Load: %v", err)
	}

	if first != second {
		t.Error("Expected the same cached dataset on repeated Load")
	}
	if !first.Equal(second) {
		t.Error("Expected repeated loads to compare equal")
	}
	if !src.Ready() {
		t.Error("Source should be ready after Load")
	}
}

func TestSourceCachesError(t *testing.T) {
	src := NewSource(filepath.Join(t.TempDir(), "missing.csv"), nil)
	_, err1 := src.Load()
	_, err2 := src.Load()
	if err1 == nil || err1 != err2 {
		t.Errorf("Expected the same cached error, got %v and %v", err1, err2)
	}
}

func TestReadCSVHeaderOnly(t *testing.T) {
	header := strings.SplitN(sampleCSV, "\n", 2)[0]
	for _, content := range []string{header + "\n", header, ""} {
		_, err := ReadCSV(strings.NewReader(content))
		if !errors.Is(err, ErrEmptyDataset) {
			t.Errorf("%q: expected ErrEmptyDataset, got %v", content, err)
		}
	}
}

func TestLoadCSVExtraColumnTypes(t *testing.T) {
	csv := `year,Twitter user count % change since 2010,Facebook user count % change since 2010,Suicide Rate % change since 2010,Total social media growth,Social Media Impact Score,Instagram,posts,gaps,blank
2010,0.0,0.0,0.0,0.0,0.0,0,1,5,
2011,82.5,37.1,2.3,119.6,1.2,12.5,2,,
2012,150.0,71.4,4.1,221.4,3.4,20.5,3,7,
2013,215.0,102.9,5.9,317.9,6.1,31,4,8,
`
	ds, err := ReadCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}

	for name, want := range map[string]Kind{
		"Instagram": KindFloat,
		"posts":     KindInt,
		"gaps":      KindFloat,
		"blank":     KindFloat,
	} {
		if k, _ := ds.Kind(name); k != want {
			t.Errorf("%s kind: expected %s, got %s", name, want, k)
		}
	}

	insta, _ := ds.Floats("Instagram")
	if insta[0] != 0 || insta[1] != 12.5 || insta[3] != 31 {
		t.Errorf("Unexpected Instagram values %v", insta)
	}
	gaps, _ := ds.Floats("gaps")
	if !math.IsNaN(gaps[1]) || gaps[2] != 7 {
		t.Errorf("Unexpected gaps values %v", gaps)
	}
}

func TestSourceHeaderOnlyFile(t *testing.T) {
	src := NewSource(writeTemp(t, strings.SplitN(sampleCSV, "\n", 2)[0]+"\n"), nil)
	for i := 0; i < 2; i++ {
		ds, err := src.Load()
		var le *LoadError
		if ds != nil || !errors.As(err, &le) {
			t.Fatalf("Load %d: expected LoadError, got %v, %v", i, ds, err)
		}
	}
	if !src.Ready() {
		t.Error("Source should be ready after a failed load")
	}
}

func TestSourceRecoversFromPanic(t *testing.T) {
	src := NewSource("data.csv", nil)
	src.load = func(string) (*Dataset, error) { panic("nil builder") }

	_, err := src.Load()
	var le *LoadError
	if !errors.As(err, &le) {
		t.Fatalf("Expected LoadError, got %v", err)
	}
	if le.Path != "data.csv" || !strings.Contains(err.Error(), "nil builder") {
		t.Errorf("Unexpected error %v", err)
	}
	if !src.Ready() {
		t.Error("Source should be ready after a panicking load")
	}
	if _, again := src.Load(); again != err {
		t.Errorf("Expected the cached error, got %v", again)
	}
}
