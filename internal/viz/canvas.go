package viz

import (
	"math"
	"strings"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const brailleBlank = 0x2800

type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// Set turns on the dot at (x, y) in sub-pixel coordinates, (0, 0) being the
// top left. The canvas is Width*2 by Height*4 dots.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}

	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}

	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

func (c *Canvas) IsSet(x, y int) bool {
	if x < 0 || y < 0 || x/2 >= c.Width || y/4 >= c.Height {
		return false
	}
	return c.Grid[y/4][x/2]&rune(pixelMap[y%4][x%2]) != 0
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = brailleBlank
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

// Bounds is a world-space window mapped onto a canvas.
type Bounds struct {
	MinX, MaxX, MinY, MaxY float64
}

// FitBounds returns a square window centered on the data that contains
// every finite point and the origin, with a 5% margin.
func FitBounds(xs, ys []float64) Bounds {
	b := Bounds{}
	for i := range xs {
		if i >= len(ys) || !finite(xs[i]) || !finite(ys[i]) {
			continue
		}
		b.MinX = math.Min(b.MinX, xs[i])
		b.MaxX = math.Max(b.MaxX, xs[i])
		b.MinY = math.Min(b.MinY, ys[i])
		b.MaxY = math.Max(b.MaxY, ys[i])
	}

	cx, cy := (b.MinX+b.MaxX)/2, (b.MinY+b.MaxY)/2
	half := 0.525 * math.Max(b.MaxX-b.MinX, b.MaxY-b.MinY)
	if half == 0 {
		half = 1
	}
	return Bounds{MinX: cx - half, MaxX: cx + half, MinY: cy - half, MaxY: cy + half}
}

// Project maps world coordinates to sub-pixel coordinates, y pointing up.
func (c *Canvas) Project(b Bounds, x, y float64) (int, int) {
	w, h := float64(c.Width*2-1), float64(c.Height*4-1)
	px := (x - b.MinX) / (b.MaxX - b.MinX) * w
	py := (b.MaxY - y) / (b.MaxY - b.MinY) * h
	return int(math.Round(px)), int(math.Round(py))
}

// DrawPath connects consecutive finite points. Non-finite points break the
// path.
func (c *Canvas) DrawPath(b Bounds, xs, ys []float64) {
	havePrev := false
	var px, py int
	for i := range xs {
		if i >= len(ys) || !finite(xs[i]) || !finite(ys[i]) {
			havePrev = false
			continue
		}
		x, y := c.Project(b, xs[i], ys[i])
		if havePrev {
			c.DrawLine(px, py, x, y)
		} else {
			c.Set(x, y)
		}
		px, py, havePrev = x, y, true
	}
}

// DrawMarker draws a small cross centered on a world point.
func (c *Canvas) DrawMarker(b Bounds, x, y float64) {
	cx, cy := c.Project(b, x, y)
	for d := -1; d <= 1; d++ {
		c.Set(cx+d, cy)
		c.Set(cx, cy+d)
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
