package render

import (
	"bytes"
	"strconv"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// go-chart sizes are pixels; gonum's PNG backend renders at 96 dpi too.
const dpi = 96

func renderDual(c Chart) ([]byte, error) {
	var (
		series       []chart.Series
		xs, y1s, y2s []float64
		y1Color      = drawing.ColorBlack
		y2Color      = drawing.ColorBlack
	)
	for _, s := range c.Series {
		col := toDrawing(s.Color)
		cs := chart.ContinuousSeries{
			Name:    s.Label,
			XValues: s.X,
			YValues: s.Y,
			Style:   chart.Style{StrokeColor: col, StrokeWidth: 2},
		}
		xs = append(xs, s.X...)
		if s.Secondary {
			cs.YAxis = chart.YAxisSecondary
			y2s = append(y2s, s.Y...)
			y2Color = col
		} else {
			y1s = append(y1s, s.Y...)
			y1Color = col
		}
		series = append(series, cs)
	}

	grid := chart.Style{StrokeColor: drawing.ColorFromHex("d0d0d0"), StrokeWidth: 1, StrokeDashArray: []float64{4, 4}}
	graph := chart.Chart{
		Title:  c.Title,
		Width:  int(c.Width * dpi),
		Height: int(c.Height * dpi),
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: chart.XAxis{
			Name:           c.XLabel,
			ValueFormatter: wholeNumber,
		},
		YAxis: chart.YAxis{
			Name:      c.YLabel,
			NameStyle: chart.Style{FontColor: y1Color},
			Style:     chart.Style{FontColor: y1Color},
		},
		YAxisSecondary: chart.YAxis{
			Name:      c.Y2Label,
			NameStyle: chart.Style{FontColor: y2Color},
			Style:     chart.Style{FontColor: y2Color},
		},
		Series: series,
	}
	// Range is an interface; only set it when there is something to pad.
	if r := flatRange(xs); r != nil {
		graph.XAxis.Range = r
	}
	if r := flatRange(y1s); r != nil {
		graph.YAxis.Range = r
	}
	if r := flatRange(y2s); r != nil {
		graph.YAxisSecondary.Range = r
	}
	if c.Grid {
		graph.XAxis.GridMajorStyle = grid
		graph.YAxis.GridMajorStyle = grid
	}
	graph.Elements = []chart.Renderable{chart.LegendLeft(&graph)}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, &RenderError{Chart: c.Title, Reason: DualAxis.String(), Err: err}
	}
	return buf.Bytes(), nil
}

// flatRange pads a range with no spread, which go-chart refuses to draw.
// A nil result lets go-chart fit the data itself.
func flatRange(vals []float64) *chart.ContinuousRange {
	if len(vals) == 0 {
		return nil
	}
	lo, hi := vals[0], vals[0]
	for _, v := range vals[1:] {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	if lo != hi {
		return nil
	}
	return &chart.ContinuousRange{Min: lo - 1, Max: hi + 1}
}

func wholeNumber(v interface{}) string {
	if f, ok := v.(float64); ok {
		return strconv.FormatFloat(f, 'f', 0, 64)
	}
	return ""
}

func toDrawing(name string) drawing.Color {
	if name == "" {
		return drawing.ColorBlack
	}
	return drawing.ColorFromHex(hexOf(name))
}
