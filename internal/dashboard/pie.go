package dashboard

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// pieChart draws counts as wedges starting at twelve o'clock and running
// counterclockwise. Each wedge carries its label outside the rim and its
// share of the total inside.
type pieChart struct {
	values []float64
	labels []string
	colors []color.Color

	// LabelStyle draws the category names, ShareStyle the percentages
	LabelStyle draw.TextStyle
	ShareStyle draw.TextStyle
	// ShareFormat formats each wedge's share in percent
	ShareFormat string
}

var _ plot.Plotter = (*pieChart)(nil)

func newPieChart(values []float64, labels []string, colors []color.Color, style draw.TextStyle) (*pieChart, error) {
	if len(values) != len(labels) {
		return nil, fmt.Errorf("pie chart has %d values and %d labels", len(values), len(labels))
	}
	for i, v := range values {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("pie chart value %q is not a count: %v", labels[i], v)
		}
	}
	share := style
	share.XAlign = draw.XCenter
	share.YAlign = draw.YCenter
	return &pieChart{
		values:      values,
		labels:      labels,
		colors:      colors,
		LabelStyle:  style,
		ShareStyle:  share,
		ShareFormat: "%.1f%%",
	}, nil
}

func (pc *pieChart) total() float64 {
	var total float64
	for _, v := range pc.values {
		total += v
	}
	return total
}

// Plot implements plot.Plotter
func (pc *pieChart) Plot(c draw.Canvas, _ *plot.Plot) {
	total := pc.total()
	if total == 0 {
		return
	}

	center := c.Center()
	radius := 0.38 * vg.Length(math.Min(float64(c.Max.X-c.Min.X), float64(c.Max.Y-c.Min.Y)))
	start := math.Pi / 2

	for i, v := range pc.values {
		if v == 0 {
			continue
		}
		sweep := 2 * math.Pi * v / total

		var wedge vg.Path
		wedge.Move(center)
		wedge.Arc(center, radius, start, sweep)
		wedge.Close()
		c.SetColor(cycle(pc.colors, i))
		c.Fill(wedge)

		mid := start + sweep/2
		cos, sin := math.Cos(mid), math.Sin(mid)

		label := pc.LabelStyle
		label.YAlign = draw.YCenter
		switch {
		case cos > 0.1:
			label.XAlign = draw.XLeft
		case cos < -0.1:
			label.XAlign = draw.XRight
		default:
			label.XAlign = draw.XCenter
		}
		c.FillText(label, polar(center, radius*1.1, cos, sin), pc.labels[i])
		c.FillText(pc.ShareStyle, polar(center, radius*0.6, cos, sin), fmt.Sprintf(pc.ShareFormat, 100*v/total))

		start += sweep
	}
}

func polar(center vg.Point, r vg.Length, cos, sin float64) vg.Point {
	return vg.Point{X: center.X + r*vg.Length(cos), Y: center.Y + r*vg.Length(sin)}
}
