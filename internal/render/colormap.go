package render

import (
	"image/color"

	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
)

// colormaps builds a fresh map per call since palette.ColorMap carries its
// own min/max state.
var colormaps = map[string]func() palette.ColorMap{
	"coolwarm":  func() palette.ColorMap { return moreland.SmoothBlueRed() },
	"viridis":   func() palette.ColorMap { return luminance(viridis, moreland.Kindlmann) },
	"magma":     func() palette.ColorMap { return luminance(magma, moreland.ExtendedBlackBody) },
	"blackbody": func() palette.ColorMap { return moreland.BlackBody() },
	"kindlmann": func() palette.ColorMap { return moreland.Kindlmann() },
}

var viridis = []color.Color{
	color.NRGBA{R: 0x44, G: 0x01, B: 0x54, A: 0xff},
	color.NRGBA{R: 0x3b, G: 0x52, B: 0x8b, A: 0xff},
	color.NRGBA{R: 0x21, G: 0x91, B: 0x8c, A: 0xff},
	color.NRGBA{R: 0x5e, G: 0xc9, B: 0x62, A: 0xff},
	color.NRGBA{R: 0xfd, G: 0xe7, B: 0x25, A: 0xff},
}

var magma = []color.Color{
	color.NRGBA{R: 0x00, G: 0x00, B: 0x04, A: 0xff},
	color.NRGBA{R: 0x3b, G: 0x0f, B: 0x70, A: 0xff},
	color.NRGBA{R: 0x8c, G: 0x29, B: 0x81, A: 0xff},
	color.NRGBA{R: 0xde, G: 0x49, B: 0x68, A: 0xff},
	color.NRGBA{R: 0xfe, G: 0x9f, B: 0x6d, A: 0xff},
	color.NRGBA{R: 0xfc, G: 0xfd, B: 0xbf, A: 0xff},
}

// luminance interpolates the control colours; fallback is used if moreland
// rejects them.
func luminance(controls []color.Color, fallback func() palette.ColorMap) palette.ColorMap {
	cm, err := moreland.NewLuminance(controls)
	if err != nil {
		return fallback()
	}
	return cm
}

// scaledColormap returns the named map spanning the range of vals.
func scaledColormap(name string, vals []float64) palette.ColorMap {
	cm := colormaps[name]()
	lo, hi := vals[0], vals[0]
	for _, v := range vals[1:] {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	if lo == hi {
		hi = lo + 1
	}
	cm.SetMax(hi)
	cm.SetMin(lo)
	return cm
}
