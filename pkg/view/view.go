// Package view draws a scene snapshot as text. Boxes are projected onto
// the X/Y plane, X to columns and Y to rows, and drawn as outlines with
// their labels inside. Depth is ignored.
package view

import (
	"math"

	"github.com/chazu/seqviz/pkg/scene"
)

// Options controls the projection.
type Options struct {
	// Scale is the number of columns per world unit. Rows use half of
	// it, since terminal cells are about twice as tall as wide.
	Scale float64
	// MaxWidth and MaxHeight bound the canvas. Zero means unbounded. The
	// scale shrinks to fit.
	MaxWidth, MaxHeight int
}

// DefaultOptions draws a unit cube as a 7×4 character box.
func DefaultOptions() Options {
	return Options{Scale: 6}
}

// projection maps world coordinates to canvas cells.
type projection struct {
	minX, maxY float64
	sx, sy     float64
}

func (p projection) col(x float64) int { return int(math.Round((x - p.minX) * p.sx)) }
func (p projection) row(y float64) int { return int(math.Round((p.maxY - y) * p.sy)) }

// Render draws snap. Shell slots are drawn first with dashed outlines so
// nodes and labels sit on top of them. An empty snapshot yields an empty
// canvas.
func Render(snap scene.Snapshot, opts Options) *Canvas {
	boxes := append(snap.Boxes(scene.RoleShell), snap.Boxes(scene.RoleNode)...)
	if len(boxes) == 0 {
		return NewCanvas(0, 0)
	}
	if opts.Scale <= 0 {
		opts.Scale = DefaultOptions().Scale
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, b := range boxes {
		half := b.Size().Scale(0.5)
		minX = math.Min(minX, b.Position.X-half.X)
		maxX = math.Max(maxX, b.Position.X+half.X)
		minY = math.Min(minY, b.Position.Y-half.Y)
		maxY = math.Max(maxY, b.Position.Y+half.Y)
	}
	spanX, spanY := maxX-minX, maxY-minY

	sx := opts.Scale
	if opts.MaxWidth > 1 && spanX*sx > float64(opts.MaxWidth-1) {
		sx = float64(opts.MaxWidth-1) / spanX
	}
	if opts.MaxHeight > 1 && spanY*sx/2 > float64(opts.MaxHeight-1) {
		sx = 2 * float64(opts.MaxHeight-1) / spanY
	}
	p := projection{minX: minX, maxY: maxY, sx: sx, sy: sx / 2}

	c := NewCanvas(p.col(maxX)+1, p.row(minY)+1)
	for _, b := range boxes {
		half := b.Size().Scale(0.5)
		x0, x1 := p.col(b.Position.X-half.X), p.col(b.Position.X+half.X)
		y0, y1 := p.row(b.Position.Y+half.Y), p.row(b.Position.Y-half.Y)
		x1 = max(x1, x0+1)
		y1 = max(y1, y0+1)
		c.Rect(x0, y0, x1, y1, b.Material.Role == scene.RoleShell, b.Material.Color)
	}
	for _, l := range snap.Labels() {
		text := []rune(l.Text)
		x := p.col(l.Position.X) - len(text)/2
		c.Text(x, p.row(l.Position.Y), l.Text, l.Style.Color)
	}
	return c
}
