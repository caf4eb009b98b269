package dashboard

import (
	"image/color"

	"gonum.org/v1/plot/vg"

	"nplreport/internal/config"
)

// Theme carries every styling decision of the dashboard. The renderer
// holds no other styling state.
type Theme struct {
	Width  vg.Length
	Height vg.Length
	DPI    int

	TitleSize      vg.Length
	PanelTitleSize vg.Length
	LabelSize      vg.Length

	Background      color.Color
	PanelBackground color.Color
	GridColor       color.Color
	TextColor       color.Color

	// StagePalette colors the stage composition pie
	StagePalette []color.Color
	// BarPalette is sampled once per stage for the totals bar chart
	BarPalette []color.Color
	// ProductPalette colors the per-product boxes
	ProductPalette []color.Color
	// HistogramColor fills the 90+ DPD histogram and draws its density line
	HistogramColor color.Color

	BarWidth vg.Length
	BoxWidth vg.Length

	// PrincipalAxisMax is the upper limit of the principal box plot axis
	PrincipalAxisMax float64
	HistogramBins    int
	// KDESamples is the number of points of the density line
	KDESamples int
}

var (
	pastel = []color.Color{
		rgb(0xa1, 0xc9, 0xf4), rgb(0xff, 0xb4, 0x82), rgb(0x8d, 0xe5, 0xa1), rgb(0xff, 0x9f, 0x9b),
		rgb(0xd0, 0xbb, 0xff), rgb(0xde, 0xbb, 0x9b), rgb(0xfa, 0xb0, 0xe4), rgb(0xcf, 0xcf, 0xcf),
	}
	viridis = []color.Color{
		rgb(0x44, 0x01, 0x54), rgb(0x3b, 0x52, 0x8b), rgb(0x21, 0x91, 0x8c), rgb(0x5e, 0xc9, 0x62), rgb(0xfd, 0xe7, 0x25),
	}
	set2 = []color.Color{
		rgb(0x66, 0xc2, 0xa5), rgb(0xfc, 0x8d, 0x62), rgb(0x8d, 0xa0, 0xcb), rgb(0xe7, 0x8a, 0xc3),
		rgb(0xa6, 0xd8, 0x54), rgb(0xff, 0xd9, 0x2f), rgb(0xe5, 0xc4, 0x94), rgb(0xb3, 0xb3, 0xb3),
	}
	crimson = color.NRGBA{R: 0xdc, G: 0x14, B: 0x3c, A: 0xff}
)

// DefaultTheme returns the standard dashboard look: an 18x14 inch figure
// at 300 DPI on a dark grid.
func DefaultTheme() Theme {
	return Theme{
		Width:            vg.Length(config.DefaultFigureWidthInches) * vg.Inch,
		Height:           vg.Length(config.DefaultFigureHeightInches) * vg.Inch,
		DPI:              config.DefaultDPI,
		TitleSize:        vg.Points(22),
		PanelTitleSize:   vg.Points(14),
		LabelSize:        vg.Points(11),
		Background:       color.White,
		PanelBackground:  rgb(0xea, 0xea, 0xf2),
		GridColor:        color.White,
		TextColor:        color.Black,
		StagePalette:     pastel,
		BarPalette:       viridis,
		ProductPalette:   set2,
		HistogramColor:   crimson,
		BarWidth:         vg.Inch,
		BoxWidth:         vg.Inch * 0.6,
		PrincipalAxisMax: config.DefaultPrincipalAxisMax,
		HistogramBins:    config.DefaultHistogramBins,
		KDESamples:       200,
	}
}

// ThemeFromConfig applies the configured size, resolution and axis overrides
// to the default theme
func ThemeFromConfig(cfg config.DashboardConfig) Theme {
	t := DefaultTheme()
	if cfg.WidthInches > 0 {
		t.Width = vg.Length(cfg.WidthInches) * vg.Inch
	}
	if cfg.HeightInches > 0 {
		t.Height = vg.Length(cfg.HeightInches) * vg.Inch
	}
	if cfg.DPI > 0 {
		t.DPI = cfg.DPI
	}
	if cfg.PrincipalAxisMax > 0 {
		t.PrincipalAxisMax = cfg.PrincipalAxisMax
	}
	if cfg.HistogramBins > 0 {
		t.HistogramBins = cfg.HistogramBins
	}
	return t
}

// cycle returns the i-th color of palette, wrapping around
func cycle(palette []color.Color, i int) color.Color {
	if len(palette) == 0 {
		return color.Gray{Y: 128}
	}
	return palette[i%len(palette)]
}

// sample returns n colors evenly spaced along palette, interpolating
// between its anchors
func sample(palette []color.Color, n int) []color.Color {
	out := make([]color.Color, n)
	if len(palette) == 0 {
		for i := range out {
			out[i] = color.Gray{Y: 128}
		}
		return out
	}
	if len(palette) == 1 {
		for i := range out {
			out[i] = palette[0]
		}
		return out
	}
	for i := range out {
		pos := (float64(i) + 0.5) / float64(n) * float64(len(palette)-1)
		lo := int(pos)
		if lo >= len(palette)-1 {
			lo = len(palette) - 2
		}
		out[i] = lerp(palette[lo], palette[lo+1], pos-float64(lo))
	}
	return out
}

func lerp(a, b color.Color, t float64) color.Color {
	ar, ag, ab, _ := a.RGBA()
	br, bg, bb, _ := b.RGBA()
	mix := func(x, y uint32) uint8 {
		return uint8((float64(x)*(1-t) + float64(y)*t) / 257)
	}
	return color.NRGBA{R: mix(ar, br), G: mix(ag, bg), B: mix(ab, bb), A: 0xff}
}

// withAlpha returns c with the given opacity
func withAlpha(c color.Color, alpha float64) color.Color {
	r, g, b, _ := c.RGBA()
	return color.NRGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: uint8(alpha * 0xff)}
}

func rgb(r, g, b uint8) color.Color {
	return color.NRGBA{R: r, G: g, B: b, A: 0xff}
}
