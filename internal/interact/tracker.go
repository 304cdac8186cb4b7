package interact

import "github.com/scholarnet/kgraph/internal/force"

// Tracker holds the selected and hovered node ids. It is written only by
// pointer handlers and read by the renderer; it never touches physics.
// A Tracker belongs to the event loop that drives it and is not safe for
// concurrent use.
type Tracker struct {
	selected string
	hovered  string
	slop     force.Vec
}

// SetSlop widens Move and Click to nodes whose center lies within slop of
// the pointer on both axes, for hosts whose pointer is coarser than the
// smallest node. See Pick.
func (t *Tracker) SetSlop(slop force.Vec) {
	t.slop = slop
}

// Selected returns the selected node id, if any.
func (t *Tracker) Selected() (string, bool) {
	return t.selected, t.selected != ""
}

// Hovered returns the hovered node id, if any.
func (t *Tracker) Hovered() (string, bool) {
	return t.hovered, t.hovered != ""
}

// Move handles a pointer move and reports whether the hovered node changed.
func (t *Tracker) Move(snap force.Snapshot, p force.Vec, eligible Eligible) bool {
	id, _ := Pick(snap, p, eligible, t.slop)
	if id == t.hovered {
		return false
	}
	t.hovered = id
	return true
}

// Click handles a pointer click and reports whether the selection changed.
// Clicking empty space clears the selection.
func (t *Tracker) Click(snap force.Snapshot, p force.Vec, eligible Eligible) bool {
	id, _ := Pick(snap, p, eligible, t.slop)
	if id == t.selected {
		return false
	}
	t.selected = id
	return true
}

// Select sets the selection directly, e.g. from a command-line flag.
func (t *Tracker) Select(id string) {
	t.selected = id
}

// Hover sets the hovered node directly.
func (t *Tracker) Hover(id string) {
	t.hovered = id
}

// Clear drops both selection and hover.
func (t *Tracker) Clear() {
	t.selected, t.hovered = "", ""
}

// Prune drops a selection or hover whose node is gone from snap or no longer
// eligible, and reports whether anything changed. Used after a filter change
// or a dataset refresh.
func (t *Tracker) Prune(snap force.Snapshot, eligible Eligible) bool {
	keep := func(id string) bool {
		if id == "" {
			return true
		}
		n, ok := snap.Find(id)
		return ok && (eligible == nil || eligible(n))
	}

	changed := false
	if !keep(t.selected) {
		t.selected = ""
		changed = true
	}
	if !keep(t.hovered) {
		t.hovered = ""
		changed = true
	}
	return changed
}
