package dashboard

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"nplreport/pkg/contracts/domain"
)

// Panel titles
const (
	TitleStageCounts   = "Account Count by Stage"
	TitleStageTotals   = "Total Principal by Stage"
	TitleProductSpread = "Principal Distribution by Product"
	TitleSevereDPD     = "DPD Distribution (90+ Days)"
	noPrincipalMessage = "No principal amounts"
	noSevereDPDMessage = "No accounts more than 90 days past due"
)

// newPanel returns an empty panel in the theme's dark grid style
func (r *Renderer) newPanel(title string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = r.theme.PanelTitleSize
	p.Title.TextStyle.Color = r.theme.TextColor
	p.Title.Padding = vg.Points(8)
	p.BackgroundColor = r.theme.Background

	for _, axis := range []*plot.Axis{&p.X, &p.Y} {
		axis.Label.TextStyle.Font.Size = r.theme.LabelSize
		axis.Tick.Label.Font.Size = r.theme.LabelSize
		axis.Color = r.theme.TextColor
		axis.Tick.Color = r.theme.TextColor
	}

	p.Add(backdrop{color: r.theme.PanelBackground})
	grid := plotter.NewGrid()
	grid.Vertical.Color = r.theme.GridColor
	grid.Horizontal.Color = r.theme.GridColor
	grid.Vertical.Width = vg.Points(1)
	grid.Horizontal.Width = vg.Points(1)
	p.Add(grid)
	return p
}

// emptyPanel hides the axes and shows text in place of the data
func (r *Renderer) emptyPanel(p *plot.Plot, text string) {
	p.HideAxes()
	p.Add(newMessage(text, p.Title.TextStyle))
}

// stageCountsPanel is a pie of account counts per stage
func (r *Renderer) stageCountsPanel(summary []domain.StageSummary) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = TitleStageCounts
	p.Title.TextStyle.Font.Size = r.theme.PanelTitleSize
	p.Title.TextStyle.Color = r.theme.TextColor
	p.Title.Padding = vg.Points(8)
	p.BackgroundColor = r.theme.Background
	p.HideAxes()

	counts := make([]float64, len(summary))
	labels := make([]string, len(summary))
	var total float64
	for i, s := range summary {
		counts[i] = float64(s.Count)
		labels[i] = s.Stage
		total += counts[i]
	}
	if total == 0 {
		p.Add(newMessage(noPrincipalMessage, p.Title.TextStyle))
		return p, nil
	}

	style := p.Title.TextStyle
	style.Font.Size = r.theme.LabelSize
	pie, err := newPieChart(counts, labels, r.theme.StagePalette, style)
	if err != nil {
		return nil, err
	}
	p.Add(pie)
	return p, nil
}

// stageTotalsPanel is a bar per stage of the principal sum
func (r *Renderer) stageTotalsPanel(summary []domain.StageSummary) (*plot.Plot, error) {
	p := r.newPanel(TitleStageTotals)
	p.X.Label.Text = domain.ColStageName
	p.Y.Label.Text = "sum"
	p.Y.Tick.Marker = amountTicks

	colors := sample(r.theme.BarPalette, len(summary))
	labels := make([]string, len(summary))
	for i, s := range summary {
		bar, err := plotter.NewBarChart(plotter.Values{s.Sum}, r.theme.BarWidth)
		if err != nil {
			return nil, err
		}
		bar.XMin = float64(i)
		bar.Color = colors[i]
		bar.LineStyle.Width = 0
		p.Add(bar)
		labels[i] = s.Stage
	}
	p.NominalX(labels...)
	p.Y.Min = 0
	return p, nil
}

// productSpreadPanel is a box plot of principal per product type, clipped
// to the theme's principal axis
func (r *Renderer) productSpreadPanel(table *domain.Table) (*plot.Plot, error) {
	p := r.newPanel(TitleProductSpread)
	p.X.Label.Text = domain.ColProductType
	p.Y.Label.Text = domain.ColPrincipal
	p.Y.Tick.Marker = amountTicks

	byProduct := make(map[string]plotter.Values)
	for i := 0; i < table.Len(); i++ {
		product := table.Get(i, domain.ColProductType)
		if product.IsNull() {
			continue
		}
		key := product.String()
		values := byProduct[key]
		if principal, ok := table.Get(i, domain.ColPrincipal).AsNumber(); ok {
			values = append(values, principal)
		}
		byProduct[key] = values
	}

	products := make([]string, 0, len(byProduct))
	for product := range byProduct {
		products = append(products, product)
	}
	sort.Strings(products)

	boxes := 0
	for i, product := range products {
		values := byProduct[product]
		if len(values) == 0 {
			continue
		}
		box, err := plotter.NewBoxPlot(r.theme.BoxWidth, float64(i), values)
		if err != nil {
			return nil, err
		}
		box.FillColor = cycle(r.theme.ProductPalette, i)
		p.Add(box)
		boxes++
	}
	if boxes == 0 {
		r.emptyPanel(p, noPrincipalMessage)
		return p, nil
	}

	p.NominalX(products...)
	p.Y.Min = 0
	p.Y.Max = r.theme.PrincipalAxisMax
	return p, nil
}

// severeDPDPanel is a histogram of days past due above the severe
// delinquency threshold with a density estimate drawn over it
func (r *Renderer) severeDPDPanel(table *domain.Table) (*plot.Plot, error) {
	p := r.newPanel(TitleSevereDPD)
	p.X.Label.Text = domain.ColDaysPastDue
	p.Y.Label.Text = "Count"

	all, err := table.Floats(domain.ColDaysPastDue)
	if err != nil {
		return nil, err
	}
	severe := make(plotter.Values, 0, len(all))
	for _, dpd := range all {
		if dpd > domain.SevereDelinquencyDays {
			severe = append(severe, dpd)
		}
	}
	if len(severe) == 0 {
		r.emptyPanel(p, noSevereDPDMessage)
		return p, nil
	}

	hist, err := plotter.NewHist(severe, r.theme.HistogramBins)
	if err != nil {
		return nil, err
	}
	hist.FillColor = withAlpha(r.theme.HistogramColor, 0.7)
	hist.LineStyle.Color = r.theme.GridColor
	hist.LineStyle.Width = vg.Points(0.5)
	p.Add(hist)

	if curve, ok := densityLine(severe, r.theme.KDESamples, float64(len(severe))*hist.Width); ok {
		line, err := plotter.NewLine(curve)
		if err != nil {
			return nil, err
		}
		line.Color = r.theme.HistogramColor
		line.Width = vg.Points(2)
		p.Add(line)
	}
	p.Y.Min = 0
	return p, nil
}

// amountTicks labels large currency amounts in millions
var amountTicks = plot.TickerFunc(func(min, max float64) []plot.Tick {
	ticks := plot.DefaultTicks{}.Ticks(min, max)
	for i := range ticks {
		if ticks[i].Label == "" {
			continue
		}
		ticks[i].Label = formatAmount(ticks[i].Value)
	}
	return ticks
})

func formatAmount(v float64) string {
	switch {
	case v == 0:
		return "0"
	case v >= 1e6 || v <= -1e6:
		return trimmed(v/1e6) + "M"
	case v >= 1e3 || v <= -1e3:
		return trimmed(v/1e3) + "K"
	default:
		return fmt.Sprintf("%g", v)
	}
}

func trimmed(v float64) string {
	return strconv.FormatFloat(math.Round(v*1000)/1000, 'f', -1, 64)
}
