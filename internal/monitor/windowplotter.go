// Package monitor renders diagnostic snapshots of the sliding-window map:
// a top-down view of the loaded cell window with the local cloud scattered
// over it. Intended for offline runs and debugging, not the ICP hot path.
package monitor

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/banshee-data/pointmap/internal/grid"
	"github.com/banshee-data/pointmap/internal/pointcloud"
)

// WindowPlotter writes PNG snapshots into an output directory, one file per
// capture, numbered sequentially.
type WindowPlotter struct {
	outputDir string
	frameIdx  int
}

// NewWindowPlotter creates the output directory if needed.
func NewWindowPlotter(outputDir string) (*WindowPlotter, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}
	return &WindowPlotter{outputDir: outputDir}, nil
}

// Capture renders the loaded cells and cloud points into the next numbered
// PNG and returns its path. Cell squares are drawn in the XY plane; aisles
// collapse onto it.
func (wp *WindowPlotter) Capture(cells []grid.CellInfo, cloud *pointcloud.Cloud) (string, error) {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("map window (frame %d, %d cells, %d points)", wp.frameIdx, len(cells), cloud.Len())
	p.X.Label.Text = "x (m)"
	p.Y.Label.Text = "y (m)"

	seen := make(map[[2]int]bool)
	for _, c := range cells {
		xy := [2]int{c.Row, c.Column}
		if seen[xy] {
			continue
		}
		seen[xy] = true
		rect := plotter.XYs{
			{X: grid.InferiorWorld(c.Row), Y: grid.InferiorWorld(c.Column)},
			{X: grid.SuperiorWorld(c.Row), Y: grid.InferiorWorld(c.Column)},
			{X: grid.SuperiorWorld(c.Row), Y: grid.SuperiorWorld(c.Column)},
			{X: grid.InferiorWorld(c.Row), Y: grid.SuperiorWorld(c.Column)},
			{X: grid.InferiorWorld(c.Row), Y: grid.InferiorWorld(c.Column)},
		}
		line, err := plotter.NewLine(rect)
		if err != nil {
			return "", fmt.Errorf("cell outline: %w", err)
		}
		line.Color = color.RGBA{R: 0x88, G: 0x88, B: 0x88, A: 0xff}
		p.Add(line)
	}

	if cloud.Len() > 0 {
		pts := make(plotter.XYs, cloud.Len())
		for i, pos := range cloud.Positions {
			pts[i] = plotter.XY{X: pos[0], Y: pos[1]}
		}
		scatter, err := plotter.NewScatter(pts)
		if err != nil {
			return "", fmt.Errorf("point scatter: %w", err)
		}
		scatter.GlyphStyle.Radius = vg.Points(1.5)
		scatter.GlyphStyle.Shape = draw.CircleGlyph{}
		scatter.GlyphStyle.Color = color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff}
		p.Add(scatter)
	}

	path := filepath.Join(wp.outputDir, fmt.Sprintf("window_%04d.png", wp.frameIdx))
	wp.frameIdx++
	if err := p.Save(8*vg.Inch, 8*vg.Inch, path); err != nil {
		return "", fmt.Errorf("save plot: %w", err)
	}
	return path, nil
}
