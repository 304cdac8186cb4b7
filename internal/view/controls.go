package view

import (
	"errors"
	"fmt"
	"math"

	"github.com/scholarnet/kgraph/internal/force"
	"github.com/scholarnet/kgraph/internal/graph"
	"github.com/scholarnet/kgraph/internal/interact"
	"github.com/scholarnet/kgraph/internal/render"
)

// ErrInvalidMinStrength is returned for a minimum strength outside [0, 1].
var ErrInvalidMinStrength = errors.New("minimum strength must be in [0, 1]")

// Controls forwards control changes to a Runner and keeps the display
// filter. It belongs to the UI event loop and is not safe for concurrent use.
type Controls struct {
	runner *force.Runner
	filter Filter
}

// NewControls binds controls to r with the default filter.
func NewControls(r *force.Runner) *Controls {
	return &Controls{runner: r, filter: DefaultFilter()}
}

// Runner returns the bound runner.
func (c *Controls) Runner() *force.Runner {
	return c.runner
}

func (c *Controls) engine() *force.Engine {
	return c.runner.Engine()
}

// SetLinkStrength sets the global link strength, clamped to [0.1, 1].
func (c *Controls) SetLinkStrength(f float64) {
	c.engine().SetLinkStrength(f)
}

// LinkStrength returns the current global link strength.
func (c *Controls) LinkStrength() float64 {
	return c.engine().LinkStrength()
}

// StepLinkStrength moves the link strength by delta and snaps it to the
// nearest 0.1 so repeated steps do not accumulate rounding error.
func (c *Controls) StepLinkStrength(delta float64) float64 {
	next := math.Round((c.LinkStrength()+delta)*10) / 10
	c.SetLinkStrength(next)
	return c.LinkStrength()
}

func (c *Controls) SetRunning(on bool) {
	c.runner.SetRunning(on)
}

// Toggle flips the running flag and returns the new value.
func (c *Controls) Toggle() bool {
	return c.runner.Toggle()
}

func (c *Controls) Running() bool {
	return c.runner.Running()
}

// Reset re-randomizes positions.
func (c *Controls) Reset() {
	c.runner.Reset()
}

// Filter returns the current filter.
func (c *Controls) Filter() Filter {
	return c.filter
}

// SetFilter replaces the whole filter after validating it.
func (c *Controls) SetFilter(f Filter) error {
	if f.Kind == "" {
		f.Kind = KindAll
	}
	if f.Kind != KindAll {
		if _, err := graph.ParseKind(f.Kind); err != nil {
			return err
		}
	}
	if f.MinStrength < 0 || f.MinStrength > 1 || math.IsNaN(f.MinStrength) {
		return fmt.Errorf("%w: got %v", ErrInvalidMinStrength, f.MinStrength)
	}
	c.filter = f
	return nil
}

func (c *Controls) SetSearch(q string) {
	c.filter.Search = q
}

// SetKind filters by node kind; "all" shows every kind.
func (c *Controls) SetKind(kind string) error {
	f := c.filter
	f.Kind = kind
	return c.SetFilter(f)
}

// CycleKind advances the kind filter and returns the new value.
func (c *Controls) CycleKind() string {
	c.filter.Kind = NextKind(c.filter.Kind)
	return c.filter.Kind
}

func (c *Controls) SetMinStrength(v float64) error {
	f := c.filter
	f.MinStrength = v
	return c.SetFilter(f)
}

// NodeVisible reports whether n passes the current filter.
func (c *Controls) NodeVisible(n graph.Node) bool {
	return c.filter.MatchNode(n)
}

// LinkVisible reports whether both endpoints of l are visible and l meets
// the minimum strength.
func (c *Controls) LinkVisible(l graph.Link) bool {
	if !c.filter.MatchLink(l) {
		return false
	}
	g := c.engine().Graph()
	src, ok := g.Node(l.Source)
	if !ok || !c.filter.MatchNode(src) {
		return false
	}
	dst, ok := g.Node(l.Target)
	return ok && c.filter.MatchNode(dst)
}

// Eligible adapts the filter for hit-testing.
func (c *Controls) Eligible() interact.Eligible {
	if !c.filter.Active() {
		return nil
	}
	f := c.filter
	return func(n force.NodeState) bool { return f.MatchNode(n.Node) }
}

// Frame snapshots the engine and builds the frame to render, with selection
// and hover taken from tr.
func (c *Controls) Frame(tr *interact.Tracker) render.Frame {
	return c.FrameOf(c.engine().Snapshot(), tr)
}

// FrameOf builds a frame from an existing snapshot. Links come from the
// dataset the snapshot was taken from, so a reload after the snapshot does
// not mix two datasets in one frame.
func (c *Controls) FrameOf(snap force.Snapshot, tr *interact.Tracker) render.Frame {
	g := snap.Graph()
	if g == nil {
		g = c.engine().Graph()
	}
	f := render.Frame{
		Nodes:        snap.Nodes,
		Links:        g.Links(),
		LinkStrength: c.LinkStrength(),
	}
	if tr != nil {
		f.Selected, _ = tr.Selected()
		f.Hovered, _ = tr.Hovered()
	}
	if c.filter.Active() {
		filter := c.filter
		f.NodeVisible = func(n force.NodeState) bool { return filter.MatchNode(n.Node) }
		f.LinkVisible = filter.MatchLink
	}
	return f
}

// Stats summarizes the graph together with the control state.
func (c *Controls) Stats() Summary {
	s := Stats(c.engine().Graph())
	s.Running = c.Running()
	s.LinkStrength = c.LinkStrength()
	s.Tick = c.engine().Ticks()
	return s
}
