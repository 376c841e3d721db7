// Package visual renders the per-trial summary plots from a loaded artifact
// set. Rendering is deterministic: the same artifact set yields the same
// binning, scaling and point coordinates.
package visual

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"bridge-bench/internal/artifact"
	"bridge-bench/internal/logging"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// Fixed plot filenames written into the scratch workspace.
const (
	FileActivity   = "activity.png"
	FileLatency    = "latency.png"
	FileCongestion = "congestion.png"
)

// PlotFiles lists the image files a successful trial produces, in archive
// order.
func PlotFiles() []string {
	return []string{FileActivity, FileLatency, FileCongestion}
}

const (
	histBins = 400

	// All plots are saved at the high-density tier. The congestion plot was
	// historically composed at a coarser 150 DPI tier to bound file size for
	// its denser series; with a single-pass renderer the compose tier
	// collapses into the save tier, which governs the final raster.
	saveDPI = 600

	plotWidth  = 6.4 * vg.Inch
	plotHeight = 4.8 * vg.Inch

	// Sub-point markers keep dense scatter series from overplotting.
	scatterRadius = 0.2
)

var seriesColors = []color.NRGBA{
	{R: 31, G: 119, B: 180, A: 128},
	{R: 255, G: 127, B: 14, A: 128},
	{R: 44, G: 160, B: 44, A: 128},
}

// Builder renders the three summary plots into a workspace directory. It
// holds no state between calls.
type Builder struct{}

func NewBuilder() *Builder {
	return &Builder{}
}

func (b *Builder) Render(set *artifact.Set, dir string) error {
	logger := logging.GetLogger()

	if err := b.renderActivity(set, filepath.Join(dir, FileActivity)); err != nil {
		return fmt.Errorf("activity plot: %w", err)
	}
	if err := b.renderScatter(set.Latency, "latency", filepath.Join(dir, FileLatency)); err != nil {
		return fmt.Errorf("latency plot: %w", err)
	}
	if err := b.renderScatter(set.Congestion, "congestion", filepath.Join(dir, FileCongestion)); err != nil {
		return fmt.Errorf("congestion plot: %w", err)
	}

	logger.WithField("dir", dir).Debug("Plots rendered")
	return nil
}

// renderActivity overlays density-normalized histograms of the three
// activity series. Empty series carry no density and are skipped.
func (b *Builder) renderActivity(set *artifact.Set, path string) error {
	p := plot.New()
	p.X.Label.Text = "activities density histogram"
	p.Legend.Top = true

	series := []struct {
		label   string
		samples []float64
	}{
		{"broadcast activity", set.Broadcast},
		{"dispatch activity", set.Dispatch},
		{"discard activity", set.Discard},
	}

	for i, s := range series {
		if len(s.samples) == 0 {
			continue
		}
		h, err := plotter.NewHist(plotter.Values(s.samples), histBins)
		if err != nil {
			return fmt.Errorf("%s: %w", s.label, err)
		}
		h.Normalize(1)
		h.FillColor = seriesColors[i%len(seriesColors)]
		h.LineStyle.Width = 0
		p.Add(h)
		p.Legend.Add(s.label, fillThumbnailer{c: seriesColors[i%len(seriesColors)]})
	}

	return writePNG(p, path)
}

func (b *Builder) renderScatter(pairs [][2]float64, yLabel, path string) error {
	p := plot.New()
	p.X.Label.Text = "time"
	p.Y.Label.Text = yLabel

	xys := make(plotter.XYs, len(pairs))
	for i, pair := range pairs {
		xys[i].X = pair[0]
		xys[i].Y = pair[1]
	}

	s, err := plotter.NewScatter(xys)
	if err != nil {
		return err
	}
	s.GlyphStyle.Shape = draw.CircleGlyph{}
	s.GlyphStyle.Radius = vg.Points(scatterRadius)
	s.GlyphStyle.Color = seriesColors[0]
	p.Add(s)

	return writePNG(p, path)
}

func writePNG(p *plot.Plot, path string) error {
	c := vgimg.NewWith(vgimg.UseWH(plotWidth, plotHeight), vgimg.UseDPI(saveDPI))
	p.Draw(draw.New(c))

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	png := vgimg.PngCanvas{Canvas: c}
	if _, err := png.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// fillThumbnailer draws a filled legend swatch for a histogram series, which
// has no thumbnail of its own.
type fillThumbnailer struct {
	c color.Color
}

func (t fillThumbnailer) Thumbnail(c *draw.Canvas) {
	pts := []vg.Point{
		{X: c.Min.X, Y: c.Min.Y},
		{X: c.Min.X, Y: c.Max.Y},
		{X: c.Max.X, Y: c.Max.Y},
		{X: c.Max.X, Y: c.Min.Y},
	}
	c.FillPolygon(t.c, pts)
}
