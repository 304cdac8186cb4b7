// Package render paints a layout frame onto a drawing surface: links as
// lines, nodes as filled circles colored by kind, and labels below them.
package render

import (
	"fmt"
	"image/color"

	"github.com/scholarnet/kgraph/internal/force"
	"github.com/scholarnet/kgraph/internal/graph"
)

// Surface is a 2D drawing target in canvas coordinates.
type Surface interface {
	Clear(bg color.NRGBA)
	Line(a, b force.Vec, width float64, c color.NRGBA)
	Circle(center force.Vec, r float64, fill color.NRGBA)
	Ring(center force.Vec, r, width float64, c color.NRGBA)
	// Text draws s horizontally centered on at.X with its baseline at at.Y.
	Text(at force.Vec, s string, c color.NRGBA)
}

// Colors used in rendering.
var (
	ColorBackground = color.NRGBA{255, 255, 255, 255}
	ColorLink       = color.NRGBA{156, 163, 175, 255} // #9CA3AF, alpha set per link
	ColorSelected   = color.NRGBA{31, 41, 55, 255}    // #1F2937
	ColorHovered    = color.NRGBA{107, 114, 128, 255} // #6B7280
	ColorLabel      = color.NRGBA{31, 41, 55, 255}    // #1F2937
	ColorUnknown    = color.NRGBA{156, 163, 175, 255}

	kindColors = map[graph.Kind]color.NRGBA{
		graph.KindScholar:    {59, 130, 246, 255}, // #3B82F6
		graph.KindPaper:      {16, 185, 129, 255}, // #10B981
		graph.KindKeyword:    {245, 158, 11, 255}, // #F59E0B
		graph.KindDepartment: {239, 68, 68, 255},  // #EF4444
	}
)

// KindColor returns the fill color for a node kind.
func KindColor(k graph.Kind) color.NRGBA {
	if c, ok := kindColors[k]; ok {
		return c
	}
	return ColorUnknown
}

// Hex formats c as #RRGGBB.
func Hex(c color.NRGBA) string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// withAlpha returns c with its alpha scaled by a in [0, 1].
func withAlpha(c color.NRGBA, a float64) color.NRGBA {
	if a < 0 {
		a = 0
	}
	if a > 1 {
		a = 1
	}
	c.A = uint8(a*float64(c.A) + 0.5)
	return c
}
