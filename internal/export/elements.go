// Package export writes a laid-out graph as a standalone HTML page.
package export

import (
	"encoding/json"
	"fmt"

	"github.com/scholarnet/kgraph/internal/force"
	"github.com/scholarnet/kgraph/internal/render"
)

// Elements represents the Cytoscape.js data format.
type Elements struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Node is a node in Cytoscape.js format with a preset position.
type Node struct {
	Data     NodeData  `json:"data"`
	Position force.Vec `json:"position"`
}

// NodeData contains the node data fields.
type NodeData struct {
	ID     string  `json:"id"`
	Label  string  `json:"label"`
	Kind   string  `json:"kind"`
	Weight float64 `json:"weight"`
	Color  string  `json:"color"`
	Degree int     `json:"degree"`
}

// Edge is an edge in Cytoscape.js format.
type Edge struct {
	Data EdgeData `json:"data"`
}

// EdgeData contains the edge data fields. Opacity is the link's strength
// scaled by the global link strength, as on screen.
type EdgeData struct {
	ID       string  `json:"id"`
	Source   string  `json:"source"`
	Target   string  `json:"target"`
	Kind     string  `json:"kind"`
	Strength float64 `json:"strength"`
	Opacity  float64 `json:"opacity"`
}

// Build converts a snapshot into Cytoscape elements. Unplaced nodes and
// links with a missing endpoint are left out.
func Build(snap force.Snapshot, linkStrength float64) Elements {
	el := Elements{
		Nodes: make([]Node, 0, len(snap.Nodes)),
		Edges: []Edge{},
	}

	g := snap.Graph()
	placed := make(map[string]bool, len(snap.Nodes))
	for _, n := range snap.Nodes {
		if !n.Placed || placed[n.ID] {
			continue
		}
		placed[n.ID] = true

		degree := 0
		if g != nil {
			degree = g.Degree(n.ID)
		}
		el.Nodes = append(el.Nodes, Node{
			Data: NodeData{
				ID:     n.ID,
				Label:  n.Label,
				Kind:   string(n.Kind),
				Weight: n.Weight,
				Color:  render.Hex(render.KindColor(n.Kind)),
				Degree: degree,
			},
			Position: n.Position,
		})
	}

	if g == nil {
		return el
	}
	for i, l := range g.Links() {
		if !placed[l.Source] || !placed[l.Target] {
			continue
		}
		el.Edges = append(el.Edges, Edge{
			Data: EdgeData{
				ID:       edgeID(l.Source, l.Target, string(l.Kind), i),
				Source:   l.Source,
				Target:   l.Target,
				Kind:     string(l.Kind),
				Strength: l.Strength,
				Opacity:  l.Strength * linkStrength,
			},
		})
	}
	return el
}

// IsEmpty returns true if there are no nodes to show.
func (e Elements) IsEmpty() bool {
	return len(e.Nodes) == 0
}

// JSON marshals the elements for embedding in a page.
func (e Elements) JSON() (string, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return "", fmt.Errorf("marshaling Cytoscape elements to JSON: %w", err)
	}
	return string(b), nil
}

// edgeID is unique within one export; it is not stable across exports.
func edgeID(source, target, kind string, index int) string {
	return fmt.Sprintf("%s-%s-%s-%d", source, target, kind, index)
}
