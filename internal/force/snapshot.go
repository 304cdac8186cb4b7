package force

import "github.com/scholarnet/kgraph/internal/graph"

// NodeState is a node together with its position at snapshot time.
type NodeState struct {
	graph.Node
	Position Vec  `json:"position"`
	Placed   bool `json:"placed"`
}

// Snapshot is a read-only copy of the layout taken between ticks. Renderer and
// hit-testing work from snapshots so they never observe a tick in progress.
type Snapshot struct {
	Nodes []NodeState `json:"nodes"`
	Tick  uint64      `json:"tick"`

	g *graph.Graph
}

// Snapshot copies the current positions.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	nodes := e.g.Nodes()
	s := Snapshot{
		Nodes: make([]NodeState, len(nodes)),
		Tick:  e.ticks,
		g:     e.g,
	}
	for i, n := range nodes {
		s.Nodes[i] = NodeState{
			Node:     n,
			Position: e.bodies[i].pos,
			Placed:   e.bodies[i].placed,
		}
	}
	return s
}

// Find returns the state of the node with the given id.
func (s Snapshot) Find(id string) (NodeState, bool) {
	if s.g == nil {
		for _, n := range s.Nodes {
			if n.ID == id {
				return n, true
			}
		}
		return NodeState{}, false
	}
	i, ok := s.g.Index(id)
	if !ok {
		return NodeState{}, false
	}
	return s.Nodes[i], true
}

// Graph returns the dataset the snapshot was taken from.
func (s Snapshot) Graph() *graph.Graph {
	return s.g
}

// Position returns the current position of a placed node.
func (e *Engine) Position(id string) (Vec, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	i, ok := e.g.Index(id)
	if !ok || !e.bodies[i].placed {
		return Vec{}, false
	}
	return e.bodies[i].pos, true
}
