package render

import (
	"bytes"
	"image/color"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

const (
	defaultWidth  = 10.0
	defaultHeight = 6.0
)

// PNG renders charts as PNG images. The zero value is ready to use.
type PNG struct{}

func NewPNG() *PNG { return &PNG{} }

func (r *PNG) Render(c Chart) ([]byte, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if c.Width <= 0 {
		c.Width = defaultWidth
	}
	if c.Height <= 0 {
		c.Height = defaultHeight
	}
	if c.Kind == DualAxis {
		return renderDual(c)
	}
	return renderPlot(c)
}

func renderPlot(c Chart) ([]byte, error) {
	p := plot.New()
	p.Title.Text = c.Title
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = c.XLabel
	p.Y.Label.Text = c.YLabel
	p.Legend.Top = true
	p.Legend.Left = true

	if c.Grid {
		grid := plotter.NewGrid()
		grid.Vertical.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}
		grid.Horizontal.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}
		if c.Kind == Bar {
			grid.Vertical.Color = nil
		}
		p.Add(grid)
	}

	for _, s := range c.Series {
		var err error
		switch c.Kind {
		case Scatter:
			err = addScatter(p, s)
		case Line:
			err = addLine(p, s)
		case Bar:
			err = addBars(p, s)
		}
		if err != nil {
			return nil, &RenderError{Chart: c.Title, Series: s.Label, Reason: c.Kind.String(), Err: err}
		}
	}

	for _, ref := range c.HLines {
		y := ref.Y
		fn := plotter.NewFunction(func(float64) float64 { return y })
		fn.Color = parseColor(ref.Color, color.NRGBA{B: 0xff, A: 0xff})
		fn.Width = vg.Points(2)
		fn.Dashes = []vg.Length{vg.Points(6), vg.Points(4)}
		p.Add(fn)
		if ref.Label != "" {
			p.Legend.Add(ref.Label, fn)
		}
	}

	w, h := vg.Length(c.Width)*vg.Inch, vg.Length(c.Height)*vg.Inch
	cnv := vgimg.New(w, h)
	dc := draw.New(cnv)
	if bar := colorBar(c); bar != nil {
		p.Draw(draw.Crop(dc, 0, -colorBarWidth, 0, 0))
		side := draw.Crop(dc, w-colorBarWidth, 0, 0, 0)
		// Line the bar up with the data area rather than the title and ticks.
		bar.Draw(draw.Crop(side, 0, 0, vg.Points(36), -vg.Points(30)))
	} else {
		p.Draw(dc)
	}

	var buf bytes.Buffer
	if _, err := (vgimg.PngCanvas{Canvas: cnv}).WriteTo(&buf); err != nil {
		return nil, &RenderError{Chart: c.Title, Reason: "encode", Err: err}
	}
	return buf.Bytes(), nil
}

const colorBarWidth = vg.Length(0.9) * vg.Inch

// colorBar builds the vertical legend for the first color-mapped series of
// a scatter chart. Charts without a ColorLabel get none.
func colorBar(c Chart) *plot.Plot {
	if c.Kind != Scatter || c.ColorLabel == "" {
		return nil
	}
	for _, s := range c.Series {
		if s.C == nil {
			continue
		}
		bar := plot.New()
		bar.HideX()
		bar.Y.Padding = 0
		bar.Y.Label.Text = c.ColorLabel
		bar.Add(&plotter.ColorBar{ColorMap: scaledColormap(s.Colormap, s.C), Vertical: true})
		return bar
	}
	return nil
}

func xys(s Series) plotter.XYs {
	pts := make(plotter.XYs, len(s.X))
	for i := range s.X {
		pts[i].X = s.X[i]
		pts[i].Y = s.Y[i]
	}
	return pts
}

func addScatter(p *plot.Plot, s Series) error {
	sc, err := plotter.NewScatter(xys(s))
	if err != nil {
		return err
	}

	size := s.Size
	if size <= 0 {
		size = 36
	}
	alpha := s.Alpha
	if alpha <= 0 || alpha > 1 {
		alpha = 1
	}
	// matplotlib sizes are areas; gonum wants a radius.
	style := draw.GlyphStyle{
		Color:  withAlpha(parseColor(s.Color, color.Black), alpha),
		Radius: vg.Points(math.Sqrt(size) / 2),
		Shape:  glyph(s.Marker),
	}
	sc.GlyphStyle = style

	if s.C != nil {
		cm := scaledColormap(s.Colormap, s.C)
		vals := s.C
		sc.GlyphStyleFunc = func(i int) draw.GlyphStyle {
			gs := style
			if col, err := cm.At(vals[i]); err == nil {
				gs.Color = withAlpha(col, alpha)
			}
			return gs
		}
	}

	p.Add(sc)
	if s.Label != "" {
		p.Legend.Add(s.Label, sc)
	}
	return nil
}

func addLine(p *plot.Plot, s Series) error {
	l, err := plotter.NewLine(xys(s))
	if err != nil {
		return err
	}
	l.Color = parseColor(s.Color, color.Black)
	l.Width = vg.Points(1.5)
	p.Add(l)
	if s.Label != "" {
		p.Legend.Add(s.Label, l)
	}
	return nil
}

// addBars places one bar per X value and labels the ticks with the X values.
func addBars(p *plot.Plot, s Series) error {
	bars, err := plotter.NewBarChart(plotter.Values(s.Y), vg.Points(20))
	if err != nil {
		return err
	}
	alpha := s.Alpha
	if alpha <= 0 || alpha > 1 {
		alpha = 1
	}
	bars.Color = withAlpha(parseColor(s.Color, color.Black), alpha)
	bars.LineStyle.Color = color.Black
	bars.LineStyle.Width = vg.Points(0.5)
	p.Add(bars)
	if s.Label != "" {
		p.Legend.Add(s.Label, bars)
	}

	labels := make([]string, len(s.X))
	for i, x := range s.X {
		labels[i] = strconv.FormatFloat(x, 'f', -1, 64)
	}
	p.NominalX(labels...)
	return nil
}

func glyph(m Marker) draw.GlyphDrawer {
	if m == Square {
		return draw.SquareGlyph{}
	}
	return draw.CircleGlyph{}
}

// named colours used by the dashboard pages; anything else is parsed as hex.
var namedColors = map[string]string{
	"black":     "000000",
	"blue":      "0000ff",
	"green":     "008000",
	"orange":    "ffa500",
	"purple":    "800080",
	"darkblue":  "00008b",
	"darkgreen": "006400",
	"red":       "ff0000",
}

func hexOf(name string) string {
	if h, ok := namedColors[strings.ToLower(name)]; ok {
		return h
	}
	return strings.TrimPrefix(name, "#")
}

func parseColor(name string, fallback color.Color) color.Color {
	if name == "" {
		return fallback
	}
	h := hexOf(name)
	if len(h) != 6 {
		return fallback
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return fallback
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}
}

func withAlpha(c color.Color, alpha float64) color.Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	n.A = uint8(math.Round(float64(n.A) * alpha))
	return n
}
