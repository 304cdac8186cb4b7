package render

import (
	"image/color"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/scholarnet/kgraph/internal/force"
)

// Runes used by the terminal surface.
const (
	runeLink = '·'
	runeFill = '█'
	runeDot  = '●'
	runeRing = '▓'
)

type cell struct {
	r    rune
	fg   color.NRGBA
	cont bool // right half of a wide rune
}

// Cells is a Surface backed by a grid of terminal cells. Canvas coordinates
// are scaled to the grid, so circles become ellipses on non-square cells.
type Cells struct {
	cols, rows    int
	width, height float64
	bg            color.NRGBA
	grid          []cell
	styles        map[color.NRGBA]lipgloss.Style
}

// NewCells returns a cols x rows grid showing a width x height canvas.
func NewCells(cols, rows int, width, height float64) *Cells {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	return &Cells{
		cols:   cols,
		rows:   rows,
		width:  width,
		height: height,
		bg:     ColorBackground,
		grid:   make([]cell, cols*rows),
		styles: make(map[color.NRGBA]lipgloss.Style),
	}
}

// Size returns the grid dimensions.
func (s *Cells) Size() (cols, rows int) {
	return s.cols, s.rows
}

// ToCanvas maps a grid cell to the canvas point at its center.
func (s *Cells) ToCanvas(col, row int) force.Vec {
	return force.Vec{
		X: (float64(col) + 0.5) * s.width / float64(s.cols),
		Y: (float64(row) + 0.5) * s.height / float64(s.rows),
	}
}

// CellSize returns the canvas extent of one cell.
func (s *Cells) CellSize() (w, h float64) {
	return s.width / float64(s.cols), s.height / float64(s.rows)
}

func (s *Cells) toGrid(p force.Vec) (float64, float64) {
	return p.X * float64(s.cols) / s.width, p.Y * float64(s.rows) / s.height
}

func (s *Cells) set(col, row int, r rune, fg color.NRGBA) {
	if col < 0 || col >= s.cols || row < 0 || row >= s.rows {
		return
	}
	s.grid[row*s.cols+col] = cell{r: r, fg: fg}
}

// Clear blanks the grid. The background is left to the terminal; bg is used
// only to flatten translucent colors.
func (s *Cells) Clear(bg color.NRGBA) {
	s.bg = bg
	for i := range s.grid {
		s.grid[i] = cell{}
	}
}

func (s *Cells) flatten(c color.NRGBA) color.NRGBA {
	a := float64(c.A) / 255
	mix := func(fg, bg uint8) uint8 {
		return uint8(float64(fg)*a + float64(bg)*(1-a) + 0.5)
	}
	return color.NRGBA{mix(c.R, s.bg.R), mix(c.G, s.bg.G), mix(c.B, s.bg.B), 255}
}

func (s *Cells) Line(a, b force.Vec, _ float64, c color.NRGBA) {
	if c.A == 0 {
		return
	}
	fg := s.flatten(c)
	ax, ay := s.toGrid(a)
	bx, by := s.toGrid(b)
	x0, y0 := int(math.Floor(ax)), int(math.Floor(ay))
	x1, y1 := int(math.Floor(bx)), int(math.Floor(by))

	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := sign(x1-x0), sign(y1-y0)
	e := dx + dy
	for {
		s.set(x0, y0, runeLink, fg)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

// within reports whether the center of cell (col, row) lies within radius r
// (canvas units) of center.
func (s *Cells) within(center force.Vec, r float64, col, row int) bool {
	cx, cy := s.toGrid(center)
	rx := r * float64(s.cols) / s.width
	ry := r * float64(s.rows) / s.height
	if rx <= 0 || ry <= 0 {
		return false
	}
	nx := (float64(col) + 0.5 - cx) / rx
	ny := (float64(row) + 0.5 - cy) / ry
	return nx*nx+ny*ny <= 1
}

// ellipse calls fn for every cell within radius r of center.
func (s *Cells) ellipse(center force.Vec, r float64, fn func(col, row int)) {
	cx, cy := s.toGrid(center)
	rx := r * float64(s.cols) / s.width
	ry := r * float64(s.rows) / s.height
	for row := int(math.Floor(cy - ry)); row <= int(math.Ceil(cy+ry)); row++ {
		for col := int(math.Floor(cx - rx)); col <= int(math.Ceil(cx+rx)); col++ {
			if s.within(center, r, col, row) {
				fn(col, row)
			}
		}
	}
}

func (s *Cells) Circle(center force.Vec, r float64, c color.NRGBA) {
	fg := s.flatten(c)
	n := 0
	s.ellipse(center, r, func(col, row int) {
		s.set(col, row, runeFill, fg)
		n++
	})
	if n == 0 {
		cx, cy := s.toGrid(center)
		s.set(int(math.Floor(cx)), int(math.Floor(cy)), runeDot, fg)
	}
}

// Ring marks the cells just outside the circle; at terminal resolution an
// outline must be at least one cell thick to show.
func (s *Cells) Ring(center force.Vec, r, width float64, c color.NRGBA) {
	fg := s.flatten(c)
	pad := math.Max(width, math.Max(s.width/float64(s.cols), s.height/float64(s.rows)))
	s.ellipse(center, r+pad, func(col, row int) {
		if !s.within(center, r, col, row) {
			s.set(col, row, runeRing, fg)
		}
	})
}

func (s *Cells) Text(at force.Vec, str string, c color.NRGBA) {
	if str == "" {
		return
	}
	fg := s.flatten(c)
	x, y := s.toGrid(at)
	row := int(math.Floor(y))
	col := int(math.Round(x - float64(runewidth.StringWidth(str))/2))
	for _, r := range str {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		if w == 2 && col+1 >= s.cols {
			break
		}
		s.set(col, row, r, fg)
		if w == 2 && col >= 0 && row >= 0 && row < s.rows {
			s.grid[row*s.cols+col+1] = cell{cont: true}
		}
		col += w
	}
}

// Plain returns the grid as text without colors.
func (s *Cells) Plain() string {
	return s.render(func(_ color.NRGBA, run string) string { return run })
}

// String returns the grid with each colored run styled by lipgloss.
func (s *Cells) String() string {
	return s.render(func(fg color.NRGBA, run string) string {
		if fg.A == 0 {
			return run
		}
		st, ok := s.styles[fg]
		if !ok {
			st = lipgloss.NewStyle().Foreground(lipgloss.Color(Hex(fg)))
			s.styles[fg] = st
		}
		return st.Render(run)
	})
}

func (s *Cells) render(paint func(fg color.NRGBA, run string) string) string {
	var b strings.Builder
	var run strings.Builder
	for row := 0; row < s.rows; row++ {
		if row > 0 {
			b.WriteByte('\n')
		}
		var cur color.NRGBA
		flush := func() {
			if run.Len() > 0 {
				b.WriteString(paint(cur, run.String()))
				run.Reset()
			}
		}
		for col := 0; col < s.cols; col++ {
			c := s.grid[row*s.cols+col]
			if c.cont {
				continue
			}
			r, fg := c.r, c.fg
			if r == 0 {
				r, fg = ' ', color.NRGBA{}
			}
			if fg != cur {
				flush()
				cur = fg
			}
			run.WriteRune(r)
		}
		flush()
	}
	return b.String()
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	}
	return 0
}
