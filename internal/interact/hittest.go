// Package interact resolves pointer coordinates to nodes of the current
// layout and tracks the hovered and selected node.
package interact

import (
	"math"

	"github.com/scholarnet/kgraph/internal/force"
)

// Eligible reports whether a node may be hit. A nil Eligible accepts every node.
type Eligible func(n force.NodeState) bool

// HitTest returns the id of the node whose circle contains p. A point on the
// rim counts as inside. When circles overlap the topmost one in paint order
// wins, which is the last match in collection order. Unplaced and ineligible
// nodes never match.
func HitTest(snap force.Snapshot, p force.Vec, eligible Eligible) (string, bool) {
	for i := len(snap.Nodes) - 1; i >= 0; i-- {
		n := snap.Nodes[i]
		if !n.Placed {
			continue
		}
		if eligible != nil && !eligible(n) {
			continue
		}
		if n.Position.Dist(p) <= n.Weight {
			return n.ID, true
		}
	}
	return "", false
}

// Pick is HitTest for pointers coarser than the smallest node. When nothing
// is hit exactly, it returns the topmost eligible node whose center lies
// within slop of p on both axes. A zero slop makes Pick equal to HitTest.
func Pick(snap force.Snapshot, p force.Vec, eligible Eligible, slop force.Vec) (string, bool) {
	if id, ok := HitTest(snap, p, eligible); ok {
		return id, true
	}
	if slop.X <= 0 || slop.Y <= 0 {
		return "", false
	}
	for i := len(snap.Nodes) - 1; i >= 0; i-- {
		n := snap.Nodes[i]
		if !n.Placed || (eligible != nil && !eligible(n)) {
			continue
		}
		if math.Abs(n.Position.X-p.X) <= slop.X && math.Abs(n.Position.Y-p.Y) <= slop.Y {
			return n.ID, true
		}
	}
	return "", false
}
