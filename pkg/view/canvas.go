package view

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// cell is one character position and the color it is drawn in.
type cell struct {
	r     rune
	color string
}

// Canvas is a fixed-size character grid. Row 0 is the top line.
type Canvas struct {
	Width, Height int
	grid          [][]cell
}

// NewCanvas returns a blank canvas.
func NewCanvas(w, h int) *Canvas {
	c := &Canvas{Width: w, Height: h, grid: make([][]cell, h)}
	for i := range c.grid {
		c.grid[i] = make([]cell, w)
	}
	c.Clear()
	return c
}

// Set draws r at column x, row y. Out-of-range positions are ignored.
func (c *Canvas) Set(x, y int, r rune, color string) {
	if x < 0 || y < 0 || x >= c.Width || y >= c.Height {
		return
	}
	c.grid[y][x] = cell{r: r, color: color}
}

// At returns the rune at column x, row y, or 0 outside the canvas.
func (c *Canvas) At(x, y int) rune {
	if x < 0 || y < 0 || x >= c.Width || y >= c.Height {
		return 0
	}
	return c.grid[y][x].r
}

// Text writes s starting at column x, row y.
func (c *Canvas) Text(x, y int, s string, color string) {
	for i, r := range []rune(s) {
		c.Set(x+i, y, r, color)
	}
}

// Rect outlines the rectangle with corners (x0, y0) and (x1, y1).
// Dashed rectangles use dotted lines.
func (c *Canvas) Rect(x0, y0, x1, y1 int, dashed bool, color string) {
	h, v := '─', '│'
	tl, tr, bl, br := '┌', '┐', '└', '┘'
	if dashed {
		h, v = '┄', '┆'
		tl, tr, bl, br = '·', '·', '·', '·'
	}
	for x := x0 + 1; x < x1; x++ {
		c.Set(x, y0, h, color)
		c.Set(x, y1, h, color)
	}
	for y := y0 + 1; y < y1; y++ {
		c.Set(x0, y, v, color)
		c.Set(x1, y, v, color)
	}
	c.Set(x0, y0, tl, color)
	c.Set(x1, y0, tr, color)
	c.Set(x0, y1, bl, color)
	c.Set(x1, y1, br, color)
}

// Clear blanks every cell.
func (c *Canvas) Clear() {
	for _, row := range c.grid {
		for j := range row {
			row[j] = cell{r: ' '}
		}
	}
}

// String returns the canvas as plain text with trailing spaces trimmed.
func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.grid {
		line := make([]rune, len(row))
		for i, cl := range row {
			line[i] = cl.r
		}
		b.WriteString(strings.TrimRight(string(line), " "))
		b.WriteByte('\n')
	}
	return b.String()
}

// Render returns the canvas with every run of same-colored cells styled
// by lipgloss.
func (c *Canvas) Render() string {
	var b strings.Builder
	for _, row := range c.grid {
		start := 0
		for i := 1; i <= len(row); i++ {
			if i < len(row) && row[i].color == row[start].color {
				continue
			}
			b.WriteString(paint(row[start:i]))
			start = i
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func paint(run []cell) string {
	if len(run) == 0 {
		return ""
	}
	rs := make([]rune, len(run))
	for i, cl := range run {
		rs[i] = cl.r
	}
	if run[0].color == "" {
		return string(rs)
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(run[0].color)).Render(string(rs))
}
