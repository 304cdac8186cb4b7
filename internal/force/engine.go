// Package force implements the force-directed layout simulation: pairwise
// repulsion, link attraction, centering, damping and bounds clamping, advanced
// one discrete tick at a time.
package force

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/scholarnet/kgraph/internal/graph"
)

// zeroDistance is the distance below which two nodes are treated as coincident.
const zeroDistance = 1e-9

// goldenAngle spreads the separation directions of coincident pairs.
const goldenAngle = 2.399963229728653

// body is the physical state of one node. It is owned by the Engine.
type body struct {
	pos    Vec
	vel    Vec
	placed bool
}

// linkRef is a link seen from one endpoint.
type linkRef struct {
	other    int
	strength float64
}

// Engine owns node positions and velocities and advances them one tick at a
// time. All methods are safe for concurrent use; a single mutex guards the
// physical state so a tick is never observed half-applied.
type Engine struct {
	mu           sync.Mutex
	g            *graph.Graph
	params       Params
	linkStrength float64
	rng          *rand.Rand

	bodies []body      // parallel to g.Nodes()
	adj    [][]linkRef // links with both endpoints present, per node
	forces []Vec       // scratch, reused across ticks
	ticks  uint64
}

// Option configures an Engine.
type Option func(*Engine)

// WithSeed makes placement reproducible.
func WithSeed(seed int64) Option {
	return func(e *Engine) {
		e.rng = rand.New(rand.NewSource(seed))
	}
}

// WithRand supplies the random source used for placement.
func WithRand(r *rand.Rand) Option {
	return func(e *Engine) {
		e.rng = r
	}
}

// New creates an engine for g. Nodes are placed lazily on the first tick.
func New(g *graph.Graph, p Params, opts ...Option) *Engine {
	e := &Engine{
		params:       p,
		linkStrength: ClampLinkStrength(p.LinkStrength),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	e.load(g, nil)
	return e
}

// load installs g, carrying over the state of nodes whose id is in prev.
func (e *Engine) load(g *graph.Graph, prev map[string]body) {
	nodes := g.Nodes()
	e.g = g
	e.bodies = make([]body, len(nodes))
	e.forces = make([]Vec, len(nodes))
	e.adj = make([][]linkRef, len(nodes))

	for i, n := range nodes {
		if b, ok := prev[n.ID]; ok {
			e.bodies[i] = b
		}
	}

	for _, l := range g.Links() {
		si, sok := g.Index(l.Source)
		ti, tok := g.Index(l.Target)
		if !sok || !tok || si == ti {
			continue // dangling links contribute no force
		}
		e.adj[si] = append(e.adj[si], linkRef{other: ti, strength: l.Strength})
		e.adj[ti] = append(e.adj[ti], linkRef{other: si, strength: l.Strength})
	}
}

// Load swaps in a refreshed dataset. Nodes that keep their id keep their
// position and velocity; new nodes are placed on the next tick.
func (e *Engine) Load(g *graph.Graph) {
	e.mu.Lock()
	defer e.mu.Unlock()

	prev := make(map[string]body, len(e.bodies))
	for i, n := range e.g.Nodes() {
		if e.bodies[i].placed {
			if _, dup := prev[n.ID]; !dup {
				prev[n.ID] = e.bodies[i]
			}
		}
	}
	e.load(g, prev)
}

// Graph returns the dataset currently being simulated.
func (e *Engine) Graph() *graph.Graph {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.g
}

// Params returns the simulation parameters.
func (e *Engine) Params() Params {
	return e.params
}

// SetLinkStrength sets the global link strength factor, clamped to [0.1, 1.0].
// It takes effect on the next tick.
func (e *Engine) SetLinkStrength(f float64) {
	e.mu.Lock()
	e.linkStrength = ClampLinkStrength(f)
	e.mu.Unlock()
}

// LinkStrength returns the global link strength factor.
func (e *Engine) LinkStrength() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.linkStrength
}

// Ticks returns the number of ticks applied so far.
func (e *Engine) Ticks() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ticks
}

// randomPosition picks a position inside the clamp range of a node of weight w.
func (e *Engine) randomPosition(w float64) Vec {
	return Vec{
		X: randomIn(e.rng, w, e.params.Width-w),
		Y: randomIn(e.rng, w, e.params.Height-w),
	}
}

func randomIn(r *rand.Rand, lo, hi float64) float64 {
	if lo >= hi {
		return (lo + hi) / 2
	}
	return lo + r.Float64()*(hi-lo)
}

// Place puts a node at an explicit position with zero velocity. It returns
// false if id is unknown.
func (e *Engine) Place(id string, pos Vec) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	i, ok := e.g.Index(id)
	if !ok {
		return false
	}
	e.bodies[i] = body{pos: pos, placed: true}
	return true
}

// Reset re-randomizes every position and zeroes every velocity. The node and
// link sets are unchanged.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i, n := range e.g.Nodes() {
		e.bodies[i] = body{pos: e.randomPosition(n.Weight), placed: true}
	}
}

// Tick advances the simulation by one step.
func (e *Engine) Tick() {
	e.mu.Lock()
	defer e.mu.Unlock()

	nodes := e.g.Nodes()
	for i := range e.bodies {
		if !e.bodies[i].placed {
			e.bodies[i] = body{pos: e.randomPosition(nodes[i].Weight), placed: true}
		}
	}

	center := e.params.Center()
	pull := e.params.Attraction * e.linkStrength

	for i := range e.bodies {
		p := e.bodies[i].pos
		var f Vec

		for j := range e.bodies {
			if j == i {
				continue
			}
			d := p.Sub(e.bodies[j].pos)
			dist := d.Len()
			var dir Vec
			if dist < zeroDistance {
				dist = 1
				dir = separation(i, j)
			} else {
				dir = d.Scale(1 / dist)
			}
			mag := e.params.Repulsion * (nodes[i].Weight + nodes[j].Weight) / dist
			f = f.Add(dir.Scale(mag))
		}

		for _, ref := range e.adj[i] {
			d := e.bodies[ref.other].pos.Sub(p)
			dist := d.Len()
			if dist < zeroDistance {
				continue
			}
			f = f.Add(d.Scale(pull * ref.strength / dist))
		}

		f = f.Add(center.Sub(p).Scale(e.params.Centering))
		e.forces[i] = f
	}

	for i := range e.bodies {
		b := &e.bodies[i]
		w := nodes[i].Weight
		b.vel = b.vel.Add(e.forces[i]).Scale(e.params.Damping)
		b.pos = b.pos.Add(b.vel)
		b.pos.X, b.vel.X = clamp(b.pos.X, b.vel.X, w, e.params.Width-w)
		b.pos.Y, b.vel.Y = clamp(b.pos.Y, b.vel.Y, w, e.params.Height-w)
	}

	e.ticks++
}

// separation returns a fixed unit direction for a coincident pair, pointing
// opposite ways for i and j.
func separation(i, j int) Vec {
	lo, hi, sign := i, j, 1.0
	if j < i {
		lo, hi, sign = j, i, -1.0
	}
	theta := float64(lo*31+hi*17) * goldenAngle
	return Vec{math.Cos(theta) * sign, math.Sin(theta) * sign}
}

// clamp keeps x inside [lo, hi]. A clamped component loses its velocity.
func clamp(x, v, lo, hi float64) (float64, float64) {
	if lo > hi {
		return (lo + hi) / 2, 0
	}
	switch {
	case x < lo:
		return lo, 0
	case x > hi:
		return hi, 0
	}
	return x, v
}

// Speed returns the sum of velocity magnitudes across all nodes.
func (e *Engine) Speed() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	total := 0.0
	for _, b := range e.bodies {
		total += b.vel.Len()
	}
	return total
}
