package graph

// Graph holds the authoritative node and link lists with an id index.
// A Graph is immutable after construction.
type Graph struct {
	nodes []Node
	links []Link
	index map[string]int
}

// Neighbor pairs a link with the node at its other end.
type Neighbor struct {
	Link Link
	Node Node
}

// New builds a graph from the given nodes and links. The slices are copied.
// When two nodes share an id the first one wins the index slot.
func New(nodes []Node, links []Link) *Graph {
	g := &Graph{
		nodes: append([]Node(nil), nodes...),
		links: append([]Link(nil), links...),
		index: make(map[string]int, len(nodes)),
	}
	for i, n := range g.nodes {
		if _, exists := g.index[n.ID]; !exists {
			g.index[n.ID] = i
		}
	}
	return g
}

// Nodes returns the nodes in collection order. Callers must not modify the slice.
func (g *Graph) Nodes() []Node {
	return g.nodes
}

// Links returns the links in collection order. Callers must not modify the slice.
func (g *Graph) Links() []Link {
	return g.links
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Node looks up a node by id. Unknown ids return false; links in a
// partially-loaded dataset may legitimately reference them.
func (g *Graph) Node(id string) (Node, bool) {
	i, ok := g.index[id]
	if !ok {
		return Node{}, false
	}
	return g.nodes[i], true
}

// Index returns the collection position of the node with the given id.
func (g *Graph) Index(id string) (int, bool) {
	i, ok := g.index[id]
	return i, ok
}

// Neighbors returns every link touching id paired with the node at its other
// end. Links whose other end does not exist are omitted. An unknown id has
// no neighbors.
func (g *Graph) Neighbors(id string) []Neighbor {
	if _, ok := g.index[id]; !ok {
		return nil
	}
	var out []Neighbor
	for _, l := range g.links {
		if !l.Touches(id) {
			continue
		}
		other, ok := g.Node(l.Other(id))
		if !ok {
			continue
		}
		out = append(out, Neighbor{Link: l, Node: other})
	}
	return out
}

// Degree counts links touching id, dangling ones included. An unknown id has
// degree zero even when dangling links name it.
func (g *Graph) Degree(id string) int {
	if _, ok := g.index[id]; !ok {
		return 0
	}
	n := 0
	for _, l := range g.links {
		if l.Touches(id) {
			n++
		}
	}
	return n
}

// CountByKind returns the number of nodes of each kind.
func (g *Graph) CountByKind() map[Kind]int {
	counts := make(map[Kind]int, len(Kinds))
	for _, n := range g.nodes {
		counts[n.Kind]++
	}
	return counts
}

// DanglingLink describes a link with a missing endpoint.
type DanglingLink struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Reason string `json:"reason"` // "missing_source", "missing_target", or "missing_both"
}

// DanglingLinks lists links whose endpoints are not in the node set.
func (g *Graph) DanglingLinks() []DanglingLink {
	var out []DanglingLink
	for _, l := range g.links {
		_, sourceOK := g.index[l.Source]
		_, targetOK := g.index[l.Target]
		if sourceOK && targetOK {
			continue
		}
		d := DanglingLink{Source: l.Source, Target: l.Target}
		switch {
		case !sourceOK && !targetOK:
			d.Reason = "missing_both"
		case !sourceOK:
			d.Reason = "missing_source"
		default:
			d.Reason = "missing_target"
		}
		out = append(out, d)
	}
	return out
}

// Validate checks every record and rejects duplicate node ids. It returns the
// first problem found.
func (g *Graph) Validate() error {
	seen := make(map[string]bool, len(g.nodes))
	for i := range g.nodes {
		n := &g.nodes[i]
		if err := n.Validate(); err != nil {
			return &RecordError{Kind: "node", Index: i, ID: n.ID, Err: err}
		}
		if seen[n.ID] {
			return &RecordError{Kind: "node", Index: i, ID: n.ID, Err: ErrDuplicateID}
		}
		seen[n.ID] = true
	}
	for i := range g.links {
		l := &g.links[i]
		if err := l.Validate(); err != nil {
			return &RecordError{Kind: "link", Index: i, ID: l.Source + "->" + l.Target, Err: err}
		}
	}
	return nil
}
