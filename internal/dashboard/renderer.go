package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"nplreport/internal/config"
	"nplreport/internal/errors"
	"nplreport/internal/files"
	"nplreport/pkg/contracts/domain"
)

// RequiredColumns must be present in the enriched dataset
var RequiredColumns = []string{
	domain.ColStageName,
	domain.ColPrincipal,
	domain.ColProductType,
	domain.ColDaysPastDue,
}

// Renderer draws the four-panel portfolio health dashboard
type Renderer struct {
	logger *slog.Logger
	theme  Theme
	paths  *config.Paths
}

// NewRenderer creates a renderer that writes into the configured output directory
func NewRenderer(logger *slog.Logger, theme Theme, paths *config.Paths) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{
		logger: logger.With(slog.String("component", "dashboard")),
		theme:  theme,
		paths:  paths,
	}
}

// Title returns the figure title for a reporting period
func Title(reportDate string) string {
	return fmt.Sprintf("Portfolio Health Dashboard (%s)", reportDate)
}

// Render draws the dashboard for the enriched table and its stage summary
// and returns the path of the written PNG. The file appears only once it is
// complete; on failure no file is left behind.
func (r *Renderer) Render(ctx context.Context, reportDate string, table *domain.Table, summary []domain.StageSummary) (string, error) {
	start := time.Now()
	path := r.paths.DashboardFile(reportDate)

	if table == nil || table.Len() == 0 {
		return "", errors.NewRenderError("enriched dataset is empty", nil).WithContext("report_date", reportDate)
	}
	if err := table.Require(RequiredColumns...); err != nil {
		return "", errors.NewSchemaError("enriched dataset cannot be drawn", err).WithContext("report_date", reportDate)
	}
	if len(summary) == 0 {
		return "", errors.NewRenderError("stage summary is empty", nil).WithContext("report_date", reportDate)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	r.logger.InfoContext(ctx, "Rendering dashboard",
		slog.String("report_date", reportDate),
		slog.Int("rows", table.Len()),
		slog.Int("stages", len(summary)))

	panels, err := r.panels(table, summary)
	if err != nil {
		return "", errors.NewRenderError("failed to build dashboard panels", err).WithContext("report_date", reportDate)
	}

	img := vgimg.NewWith(
		vgimg.UseWH(r.theme.Width, r.theme.Height),
		vgimg.UseDPI(r.theme.DPI),
		vgimg.UseBackgroundColor(r.theme.Background),
	)
	r.draw(draw.New(img), Title(reportDate), panels)

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := writePNG(path, img); err != nil {
		return "", errors.NewStorageError("failed to write dashboard", err).WithContext("path", path)
	}

	r.logger.InfoContext(ctx, "Dashboard saved",
		slog.String("path", path),
		slog.Duration("duration", time.Since(start)))
	return path, nil
}

// panels returns the 2x2 grid, row by row from the top left
func (r *Renderer) panels(table *domain.Table, summary []domain.StageSummary) ([][]*plot.Plot, error) {
	counts, err := r.stageCountsPanel(summary)
	if err != nil {
		return nil, fmt.Errorf("stage counts: %w", err)
	}
	totals, err := r.stageTotalsPanel(summary)
	if err != nil {
		return nil, fmt.Errorf("stage totals: %w", err)
	}
	spread, err := r.productSpreadPanel(table)
	if err != nil {
		return nil, fmt.Errorf("product spread: %w", err)
	}
	severe, err := r.severeDPDPanel(table)
	if err != nil {
		return nil, fmt.Errorf("severe dpd: %w", err)
	}
	return [][]*plot.Plot{{counts, totals}, {spread, severe}}, nil
}

// draw lays out the title band above the aligned panel grid
func (r *Renderer) draw(dc draw.Canvas, title string, panels [][]*plot.Plot) {
	style := panels[0][0].Title.TextStyle
	style.Font.Size = r.theme.TitleSize
	style.Color = r.theme.TextColor
	style.XAlign = draw.XCenter
	style.YAlign = draw.YTop

	margin := r.theme.Height * 0.02
	dc.FillText(style, vg.Point{X: dc.Center().X, Y: dc.Max.Y - margin}, title)

	band := style.Height(title) + 2*margin
	body := draw.Crop(dc, 0, 0, 0, -band)

	pad := r.theme.Width * 0.015
	tiles := draw.Tiles{
		Rows:      len(panels),
		Cols:      len(panels[0]),
		PadTop:    pad,
		PadBottom: pad,
		PadLeft:   pad,
		PadRight:  pad,
		PadX:      2 * pad,
		PadY:      2 * pad,
	}
	canvases := plot.Align(panels, tiles, body)
	for i, row := range panels {
		for j, p := range row {
			p.Draw(canvases[i][j])
		}
	}
}

// writePNG encodes img to a temporary file next to path and renames it
// into place
func writePNG(path string, img *vgimg.Canvas) error {
	af, err := files.Create(path)
	if err != nil {
		return err
	}
	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(af); err != nil {
		af.Abort()
		return err
	}
	return af.Commit()
}
