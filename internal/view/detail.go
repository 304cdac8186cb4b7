package view

import (
	"math"

	"github.com/scholarnet/kgraph/internal/graph"
)

// MaxConnections is how many connections Describe lists.
const MaxConnections = 5

// Connection is one neighbor in a node's detail panel.
type Connection struct {
	ID       string         `json:"id"`
	Label    string         `json:"label"`
	Kind     graph.Kind     `json:"kind"`
	LinkKind graph.LinkKind `json:"link_kind,omitempty"`
	Strength float64        `json:"strength"`
	Percent  int            `json:"percent"`
}

// Detail is the information panel for one node.
type Detail struct {
	ID          string       `json:"id"`
	Label       string       `json:"label"`
	Kind        graph.Kind   `json:"kind"`
	Influence   float64      `json:"influence"`
	Degree      int          `json:"degree"`
	Connections []Connection `json:"connections"`
}

// Describe builds the detail panel for id. Connections are listed in link
// order, capped at MaxConnections.
func Describe(g *graph.Graph, id string) (Detail, bool) {
	n, ok := g.Node(id)
	if !ok {
		return Detail{}, false
	}
	d := Detail{
		ID:          n.ID,
		Label:       n.Label,
		Kind:        n.Kind,
		Influence:   n.Weight,
		Degree:      g.Degree(id),
		Connections: []Connection{},
	}
	for _, nb := range g.Neighbors(id) {
		if len(d.Connections) == MaxConnections {
			break
		}
		d.Connections = append(d.Connections, Connection{
			ID:       nb.Node.ID,
			Label:    nb.Node.Label,
			Kind:     nb.Node.Kind,
			LinkKind: nb.Link.Kind,
			Strength: nb.Link.Strength,
			Percent:  int(math.Round(nb.Link.Strength * 100)),
		})
	}
	return d, true
}

// Summary is the statistics overview of a graph.
type Summary struct {
	Nodes        int                `json:"nodes"`
	Links        int                `json:"links"`
	Dangling     int                `json:"dangling_links"`
	ByKind       map[graph.Kind]int `json:"by_kind"`
	Running      bool               `json:"running"`
	LinkStrength float64            `json:"link_strength,omitempty"`
	Tick         uint64             `json:"tick,omitempty"`
}

// Stats counts nodes per kind and links. Every known kind is present in
// ByKind, with zero if absent.
func Stats(g *graph.Graph) Summary {
	byKind := g.CountByKind()
	for _, k := range graph.Kinds {
		if _, ok := byKind[k]; !ok {
			byKind[k] = 0
		}
	}
	return Summary{
		Nodes:    g.Len(),
		Links:    len(g.Links()),
		Dangling: len(g.DanglingLinks()),
		ByKind:   byKind,
	}
}
