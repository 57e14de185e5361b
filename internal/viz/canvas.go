package viz

import (
	"strings"

	"github.com/san-kum/spinsim/internal/spin"
	"github.com/san-kum/spinsim/internal/topology"
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

const blank = 0x2800

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

// Set lights a sub-pixel. The canvas is (Width*2) x (Height*4) sub-pixels.
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

// IsSet reports whether a sub-pixel is lit.
func (c *Canvas) IsSet(x, y int) bool {
	if x < 0 || y < 0 || x/2 >= c.Width || y/4 >= c.Height {
		return false
	}
	return c.Grid[y/4][x/2]&rune(pixelMap[y%4][x%2]) != 0
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
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

// project maps a position in the cube of side box onto canvas sub-pixels,
// looking down the z axis.
func (c *Canvas) project(p topology.Vec3, box float64) (int, int) {
	w, h := float64(c.Width*2-1), float64(c.Height*4-1)
	x := (p[0]/box + 0.5) * w
	y := (0.5 - p[1]/box) * h
	return int(x + 0.5), int(y + 0.5)
}

// PlotSpins draws every up spin as a dot. With edges set the neighbour graph
// is drawn underneath.
func (c *Canvas) PlotSpins(positions []topology.Vec3, spins []spin.Spin, box float64, g *topology.Graph, edges bool) {
	c.Clear()
	if edges && g != nil {
		for _, e := range g.Edges() {
			x0, y0 := c.project(positions[e.I], box)
			x1, y1 := c.project(positions[e.J], box)
			c.DrawLine(x0, y0, x1, y1)
		}
	}
	for i, p := range positions {
		if spins[i] != spin.Up {
			continue
		}
		x, y := c.project(p, box)
		c.Set(x, y)
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
