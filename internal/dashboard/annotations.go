package dashboard

import (
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg/draw"
)

// message draws a single line of text in the middle of an otherwise
// empty panel
type message struct {
	text  string
	style draw.TextStyle
}

func newMessage(text string, style draw.TextStyle) *message {
	style.XAlign = draw.XCenter
	style.YAlign = draw.YCenter
	return &message{text: text, style: style}
}

// Plot implements plot.Plotter
func (m *message) Plot(c draw.Canvas, _ *plot.Plot) {
	c.FillText(m.style, c.Center(), m.text)
}

// backdrop fills the data area of a panel
type backdrop struct {
	color color.Color
}

// Plot implements plot.Plotter
func (b backdrop) Plot(c draw.Canvas, _ *plot.Plot) {
	c.SetColor(b.color)
	c.Fill(c.Rectangle.Path())
}
