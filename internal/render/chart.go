// Package render turns chart configurations into PNG images.
//
// Scatter, line and bar charts are drawn with gonum/plot. Charts with a
// secondary Y axis are drawn with go-chart, which supports twin axes.
package render

import (
	"fmt"
	"math"
)

type Kind int

const (
	Scatter Kind = iota
	Line
	Bar
	DualAxis
)

func (k Kind) String() string {
	switch k {
	case Scatter:
		return "scatter"
	case Line:
		return "line"
	case Bar:
		return "bar"
	case DualAxis:
		return "dual-axis"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Marker uses matplotlib's single-letter names.
type Marker string

const (
	Circle Marker = "o"
	Square Marker = "s"
)

// Series is one set of points. C, when set, colours each point through
// Colormap. Size is the marker area in points squared.
type Series struct {
	Label     string
	X, Y      []float64
	C         []float64
	Colormap  string
	Marker    Marker
	Size      float64
	Alpha     float64
	Color     string
	Secondary bool
}

// Reference is a horizontal line across the plot, e.g. a mean.
type Reference struct {
	Label string
	Y     float64
	Color string
}

type Chart struct {
	Kind       Kind
	Title      string
	XLabel     string
	YLabel     string
	Y2Label    string
	ColorLabel string
	Grid       bool
	// Width and Height are in inches.
	Width, Height float64

	Series []Series
	HLines []Reference
}

// RenderError reports a chart whose inputs cannot be drawn.
type RenderError struct {
	Chart  string
	Series string
	Reason string
	Err    error
}

func (e *RenderError) Error() string {
	msg := "render " + e.Chart
	if e.Series != "" {
		msg += " series " + e.Series
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *RenderError) Unwrap() error { return e.Err }

// Validate reports the first problem that would stop the chart rendering.
func (c Chart) Validate() error {
	if len(c.Series) == 0 {
		return &RenderError{Chart: c.Title, Reason: "no series"}
	}
	for i, s := range c.Series {
		name := s.Label
		if name == "" {
			name = fmt.Sprintf("#%d", i)
		}
		fail := func(format string, args ...any) error {
			return &RenderError{Chart: c.Title, Series: name, Reason: fmt.Sprintf(format, args...)}
		}
		if len(s.X) == 0 || len(s.Y) == 0 {
			return fail("empty series")
		}
		if len(s.X) != len(s.Y) {
			return fail("x has %d values, y has %d", len(s.X), len(s.Y))
		}
		if s.C != nil && len(s.C) != len(s.X) {
			return fail("color values have %d entries, want %d", len(s.C), len(s.X))
		}
		if s.C != nil {
			if _, ok := colormaps[s.Colormap]; !ok {
				return fail("unknown colormap %q", s.Colormap)
			}
		}
		for j := range s.X {
			if !finite(s.X[j]) || !finite(s.Y[j]) {
				return fail("non-finite point at index %d", j)
			}
		}
		if s.Secondary && c.Kind != DualAxis {
			return fail("secondary axis needs a dual-axis chart")
		}
	}
	return nil
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

// Renderer draws a chart. Identical charts produce identical bytes.
type Renderer interface {
	Render(c Chart) ([]byte, error)
}
