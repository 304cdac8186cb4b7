package render

import (
	"image/color"

	"github.com/scholarnet/kgraph/internal/force"
)

// Op is one recorded drawing operation.
type Op struct {
	Kind   string    `json:"op"` // "clear", "line", "circle", "ring", "text"
	From   force.Vec `json:"from"`
	To     force.Vec `json:"to,omitempty"`
	Radius float64   `json:"radius,omitempty"`
	Width  float64   `json:"width,omitempty"`
	Color  string    `json:"color"`
	Alpha  uint8     `json:"alpha"`
	Text   string    `json:"text,omitempty"`
}

// Recorder is a Surface that keeps a list of operations instead of pixels.
type Recorder struct {
	Ops []Op
}

func (r *Recorder) add(op Op, c color.NRGBA) {
	op.Color = Hex(c)
	op.Alpha = c.A
	r.Ops = append(r.Ops, op)
}

// Clear discards previously recorded operations.
func (r *Recorder) Clear(bg color.NRGBA) {
	r.Ops = r.Ops[:0]
	r.add(Op{Kind: "clear"}, bg)
}

func (r *Recorder) Line(a, b force.Vec, width float64, c color.NRGBA) {
	r.add(Op{Kind: "line", From: a, To: b, Width: width}, c)
}

func (r *Recorder) Circle(center force.Vec, radius float64, fill color.NRGBA) {
	r.add(Op{Kind: "circle", From: center, Radius: radius}, fill)
}

func (r *Recorder) Ring(center force.Vec, radius, width float64, c color.NRGBA) {
	r.add(Op{Kind: "ring", From: center, Radius: radius, Width: width}, c)
}

func (r *Recorder) Text(at force.Vec, s string, c color.NRGBA) {
	r.add(Op{Kind: "text", From: at, Text: s}, c)
}

// Count returns how many operations of the given kind were recorded.
func (r *Recorder) Count(kind string) int {
	n := 0
	for _, op := range r.Ops {
		if op.Kind == kind {
			n++
		}
	}
	return n
}

// Filter returns the operations of the given kind.
func (r *Recorder) Filter(kind string) []Op {
	var out []Op
	for _, op := range r.Ops {
		if op.Kind == kind {
			out = append(out, op)
		}
	}
	return out
}
