package engine

import (
	"bytes"
	stdcsv "encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/csv"
	"github.com/apache/arrow/go/v18/arrow/memory"
	"go.uber.org/zap"
)

// Columns the dashboard relies on.
const (
	ColYear         = "year"
	ColTwitter      = "Twitter user count % change since 2010"
	ColFacebook     = "Facebook user count % change since 2010"
	ColSuicideRate  = "Suicide Rate % change since 2010"
	ColTotalGrowth  = "Total social media growth"
	ColImpactScore  = "Social Media Impact Score"
	DefaultDataPath = "cleaned_dataset.csv"
)

// RequiredColumns fixes the types of the columns the pages read. Other
// columns are inferred.
var RequiredColumns = map[string]arrow.DataType{
	ColYear:        arrow.PrimitiveTypes.Int64,
	ColTwitter:     arrow.PrimitiveTypes.Float64,
	ColFacebook:    arrow.PrimitiveTypes.Float64,
	ColSuicideRate: arrow.PrimitiveTypes.Float64,
	ColTotalGrowth: arrow.PrimitiveTypes.Float64,
	ColImpactScore: arrow.PrimitiveTypes.Float64,
}

// LoadError reports a dataset that is missing, unreadable or malformed.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("load dataset: %v", e.Err)
	}
	return fmt.Sprintf("load dataset %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// LoadCSV reads the dataset file at path.
func LoadCSV(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	defer f.Close()

	ds, err := ReadCSV(f)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			le.Path = path
			return nil, le
		}
		return nil, &LoadError{Path: path, Err: err}
	}
	return ds, nil
}

// nullTokens are the cell values read as missing.
var nullTokens = []string{"", "NA", "NaN", "nan", "null"}

// ReadCSV parses a headed CSV stream into a Dataset. Column types are
// decided from every row first, then the arrow reader parses the stream
// against that explicit schema.
func ReadCSV(r io.Reader) (*Dataset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &LoadError{Err: err}
	}
	schema, rows, err := scanSchema(data)
	if err != nil {
		return nil, &LoadError{Err: err}
	}
	if rows == 0 {
		return nil, &LoadError{Err: ErrEmptyDataset}
	}

	rdr := csv.NewReader(bytes.NewReader(data), schema,
		csv.WithAllocator(memory.DefaultAllocator),
		csv.WithHeader(true),
		csv.WithChunk(-1),
		csv.WithNullReader(false, nullTokens...),
	)
	defer rdr.Release()

	cols := make([]*Column, schema.NumFields())
	nulls := make([][]bool, schema.NumFields())
	for i, f := range schema.Fields() {
		cols[i] = &Column{Name: f.Name, Kind: kindOf(f.Type)}
	}

	for rdr.Next() {
		rec := rdr.Record()
		// Copy out of arrow buffers; the record is released on the next call.
		for i, arr := range rec.Columns() {
			c := cols[i]
			n := arr.Len()
			switch a := arr.(type) {
			case *array.Int64:
				for j := 0; j < n; j++ {
					c.Ints = append(c.Ints, a.Value(j))
					nulls[i] = append(nulls[i], a.IsNull(j))
				}
			case *array.Float64:
				for j := 0; j < n; j++ {
					v := a.Value(j)
					if a.IsNull(j) {
						v = math.NaN()
					}
					c.Floats = append(c.Floats, v)
				}
			case *array.String:
				for j := 0; j < n; j++ {
					c.Strings = append(c.Strings, a.Value(j))
				}
			default:
				for j := 0; j < n; j++ {
					s := ""
					if !a.IsNull(j) {
						s = a.ValueStr(j)
					}
					c.Strings = append(c.Strings, s)
				}
			}
		}
	}
	if err := rdr.Err(); err != nil && !errors.Is(err, io.EOF) {
		return nil, &LoadError{Err: err}
	}
	if cols[0].Len() == 0 {
		return nil, &LoadError{Err: ErrEmptyDataset}
	}

	for i, c := range cols {
		if c.Kind != KindInt || !anyTrue(nulls[i]) {
			continue
		}
		if c.Name == ColYear {
			return nil, &LoadError{Err: fmt.Errorf("column %q has empty cells", ColYear)}
		}
		cols[i] = nullableInts(c, nulls[i])
	}

	ds, err := NewDataset(cols...)
	if err != nil {
		return nil, &LoadError{Err: err}
	}
	return ds, nil
}

// scanSchema reads the header and every row once to type each column.
// Required columns keep their fixed types. Any other column is int64 when
// every present cell is an integer, float64 when every present cell is a
// number (or none is present), and string otherwise.
func scanSchema(data []byte) (*arrow.Schema, int, error) {
	cr := stdcsv.NewReader(bytes.NewReader(data))
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, 0, ErrEmptyDataset
	}
	if err != nil {
		return nil, 0, err
	}
	names := append([]string(nil), header...)

	have := make(map[string]bool, len(names))
	for _, n := range names {
		have[n] = true
	}
	for name := range RequiredColumns {
		if !have[name] {
			return nil, 0, fmt.Errorf("missing required column %q", name)
		}
	}

	isInt := make([]bool, len(names))
	isFloat := make([]bool, len(names))
	seen := make([]bool, len(names))
	for i := range names {
		isInt[i], isFloat[i] = true, true
	}
	rows := 0
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, 0, err
		}
		rows++
		for i, v := range rec {
			if isNullToken(v) {
				continue
			}
			seen[i] = true
			if isInt[i] {
				if _, err := strconv.ParseInt(v, 10, 64); err != nil {
					isInt[i] = false
				}
			}
			if !isInt[i] && isFloat[i] {
				if _, err := strconv.ParseFloat(v, 64); err != nil {
					isFloat[i] = false
				}
			}
		}
	}

	fields := make([]arrow.Field, len(names))
	for i, name := range names {
		dt, ok := RequiredColumns[name]
		switch {
		case ok:
		case isInt[i] && seen[i]:
			dt = arrow.PrimitiveTypes.Int64
		case isFloat[i]:
			dt = arrow.PrimitiveTypes.Float64
		default:
			dt = arrow.BinaryTypes.String
		}
		fields[i] = arrow.Field{Name: name, Type: dt, Nullable: true}
	}
	return arrow.NewSchema(fields, nil), rows, nil
}

func isNullToken(v string) bool {
	for _, t := range nullTokens {
		if v == t {
			return true
		}
	}
	return false
}

func kindOf(t arrow.DataType) Kind {
	switch t.ID() {
	case arrow.INT64:
		return KindInt
	case arrow.FLOAT64:
		return KindFloat
	default:
		return KindString
	}
}

func anyTrue(b []bool) bool {
	for _, v := range b {
		if v {
			return true
		}
	}
	return false
}

// nullableInts widens an int column with gaps to float so gaps become NaN.
func nullableInts(c *Column, null []bool) *Column {
	out := &Column{Name: c.Name, Kind: KindFloat, Floats: make([]float64, len(c.Ints))}
	for i, v := range c.Ints {
		if null[i] {
			out.Floats[i] = math.NaN()
			continue
		}
		out.Floats[i] = float64(v)
	}
	return out
}

// Source is the process-wide dataset. The file is read at most once; every
// caller after that gets the same *Dataset (or the same error).
type Source struct {
	path string
	log  *zap.Logger
	load func(string) (*Dataset, error)

	once  sync.Once
	ready atomic.Bool
	ds    *Dataset
	err   error
}

func NewSource(path string, log *zap.Logger) *Source {
	if log == nil {
		log = zap.NewNop()
	}
	return &Source{path: path, log: log, load: LoadCSV}
}

func (s *Source) Path() string { return s.path }

// Load blocks until the first load finishes.
func (s *Source) Load() (*Dataset, error) {
	s.once.Do(func() {
		t0 := time.Now()
		defer s.ready.Store(true)
		defer func() {
			if r := recover(); r != nil {
				s.ds, s.err = nil, &LoadError{Path: s.path, Err: fmt.Errorf("reader panic: %v", r)}
				s.log.Error("dataset load panicked", zap.String("path", s.path), zap.Error(s.err))
			}
		}()
		s.ds, s.err = s.load(s.path)
		if s.err != nil {
			s.log.Error("dataset load failed", zap.String("path", s.path), zap.Error(s.err))
		} else {
			s.log.Info("dataset loaded",
				zap.String("path", s.path),
				zap.Int("rows", s.ds.NumRows()),
				zap.Int("columns", len(s.ds.columns)),
				zap.Duration("took", time.Since(t0)))
		}
	})
	return s.ds, s.err
}

// Ready reports whether Load has completed, successfully or not.
func (s *Source) Ready() bool { return s.ready.Load() }
