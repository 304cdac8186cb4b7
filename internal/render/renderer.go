package render

import (
	"github.com/scholarnet/kgraph/internal/force"
	"github.com/scholarnet/kgraph/internal/graph"
)

// Frame is everything needed to paint one picture of the layout.
type Frame struct {
	Nodes        []force.NodeState
	Links        []graph.Link
	LinkStrength float64
	Selected     string
	Hovered      string

	// Visibility predicates from the filter controls. Nil shows everything.
	NodeVisible func(force.NodeState) bool
	LinkVisible func(graph.Link) bool
}

// Style holds the tunable drawing constants.
type Style struct {
	SelectedWidth float64
	HoveredWidth  float64
	LabelOffset   float64 // distance from the circle bottom to the label baseline
	LinkWidth     float64 // line width at strength 1
}

// DefaultStyle matches the canvas look: 3px selection, 2px hover, labels
// 15px below the circle.
func DefaultStyle() Style {
	return Style{
		SelectedWidth: 3,
		HoveredWidth:  2,
		LabelOffset:   15,
		LinkWidth:     2,
	}
}

// Renderer paints frames.
type Renderer struct {
	Style Style
}

// New returns a renderer with the default style.
func New() *Renderer {
	return &Renderer{Style: DefaultStyle()}
}

// Draw clears s and paints f. Links whose endpoints are missing, unplaced or
// hidden are skipped silently.
func (r *Renderer) Draw(s Surface, f Frame) {
	s.Clear(ColorBackground)

	byID := make(map[string]force.NodeState, len(f.Nodes))
	for _, n := range f.Nodes {
		if !n.Placed || !r.nodeVisible(f, n) {
			continue
		}
		if _, dup := byID[n.ID]; !dup {
			byID[n.ID] = n
		}
	}

	for _, l := range f.Links {
		src, ok := byID[l.Source]
		if !ok {
			continue
		}
		dst, ok := byID[l.Target]
		if !ok {
			continue
		}
		if f.LinkVisible != nil && !f.LinkVisible(l) {
			continue
		}
		c := withAlpha(ColorLink, l.Strength*f.LinkStrength)
		s.Line(src.Position, dst.Position, l.Strength*r.Style.LinkWidth, c)
	}

	for _, n := range f.Nodes {
		if !n.Placed || !r.nodeVisible(f, n) {
			continue
		}
		s.Circle(n.Position, n.Weight, KindColor(n.Kind))
		if f.Selected != "" && n.ID == f.Selected {
			s.Ring(n.Position, n.Weight, r.Style.SelectedWidth, ColorSelected)
		}
		if f.Hovered != "" && n.ID == f.Hovered {
			s.Ring(n.Position, n.Weight, r.Style.HoveredWidth, ColorHovered)
		}
		at := force.Vec{X: n.Position.X, Y: n.Position.Y + n.Weight + r.Style.LabelOffset}
		s.Text(at, n.Label, ColorLabel)
	}
}

func (r *Renderer) nodeVisible(f Frame, n force.NodeState) bool {
	return f.NodeVisible == nil || f.NodeVisible(n)
}
