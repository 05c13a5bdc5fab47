package viz

import (
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/stickbox/internal/physics"
	"github.com/san-kum/stickbox/internal/sim"
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

// SubWidth and SubHeight are the canvas size in dots.
func (c *Canvas) SubWidth() int  { return c.Width * 2 }
func (c *Canvas) SubHeight() int { return c.Height * 4 }

func (c *Canvas) cell(x, y int) (row, col int, mask rune, ok bool) {
	if x < 0 || y < 0 {
		return 0, 0, 0, false
	}
	col, row = x/2, y/4
	if col >= c.Width || row >= c.Height {
		return 0, 0, 0, false
	}
	return row, col, rune(pixelMap[y%4][x%2]), true
}

// Set lights the dot at (x, y) in dot coordinates.
func (c *Canvas) Set(x, y int) {
	if row, col, mask, ok := c.cell(x, y); ok {
		c.Grid[row][col] |= mask
	}
}

// IsSet reports whether the dot at (x, y) is lit.
func (c *Canvas) IsSet(x, y int) bool {
	row, col, mask, ok := c.cell(x, y)
	return ok && c.Grid[row][col]&mask != 0
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

// DrawDisc fills a disc of radius r dots; r below one lights a single dot.
func (c *Canvas) DrawDisc(cx, cy, r int) {
	if r < 1 {
		c.Set(cx, cy)
		return
	}
	for y := -r; y <= r; y++ {
		for x := -r; x <= r; x++ {
			if x*x+y*y <= r*r {
				c.Set(cx+x, cy+y)
			}
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

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Projection maps world bounds onto the canvas dots with a uniform
// scale, centred along the slack axis.
type Projection struct {
	bounds     physics.Bounds
	scale      float64
	offX, offY float64
}

func NewProjection(b physics.Bounds, c *Canvas) Projection {
	sw, sh := float64(c.SubWidth()), float64(c.SubHeight())
	scale := math.Min(sw/b.Width(), sh/b.Height())
	return Projection{
		bounds: b,
		scale:  scale,
		offX:   (sw - b.Width()*scale) / 2,
		offY:   (sh - b.Height()*scale) / 2,
	}
}

func (p Projection) Scale() float64 { return p.scale }

// Project returns the dot under world point v.
func (p Projection) Project(v mgl64.Vec2) (int, int) {
	x := p.offX + (v[0]-p.bounds.MinX)*p.scale
	y := p.offY + (v[1]-p.bounds.MinY)*p.scale
	return int(math.Floor(x)), int(math.Floor(y))
}

// Unproject maps a dot position (fractional allowed) back to the world.
func (p Projection) Unproject(x, y float64) mgl64.Vec2 {
	return mgl64.Vec2{
		p.bounds.MinX + (x-p.offX)/p.scale,
		p.bounds.MinY + (y-p.offY)/p.scale,
	}
}

// CellToWorld maps the centre of a terminal cell of the canvas to the world.
func (p Projection) CellToWorld(col, row int) mgl64.Vec2 {
	return p.Unproject(float64(col*2)+1, float64(row*4)+2)
}

// DrawPrimitives renders segments as lines and discs at their scaled radius.
func (c *Canvas) DrawPrimitives(prims []sim.Primitive, p Projection) {
	for _, prim := range prims {
		switch prim.Kind {
		case sim.Segment:
			x0, y0 := p.Project(prim.A)
			x1, y1 := p.Project(prim.B)
			c.DrawLine(x0, y0, x1, y1)
		case sim.Disc:
			x, y := p.Project(prim.A)
			c.DrawDisc(x, y, int(prim.Radius*p.scale))
		}
	}
}

// DrawFrame outlines the world bounds.
func (c *Canvas) DrawFrame(p Projection) {
	x0, y0 := p.Project(mgl64.Vec2{p.bounds.MinX, p.bounds.MinY})
	x1, y1 := p.Project(mgl64.Vec2{p.bounds.MaxX, p.bounds.MaxY})
	x1, y1 = min(x1, c.SubWidth()-1), min(y1, c.SubHeight()-1)
	c.DrawLine(x0, y0, x1, y0)
	c.DrawLine(x1, y0, x1, y1)
	c.DrawLine(x1, y1, x0, y1)
	c.DrawLine(x0, y1, x0, y0)
}
