// Package view binds user controls to the simulation: link strength, the
// run/pause flag, reset, and the display filters. It owns no simulation
// state of its own.
package view

import (
	"strings"

	"github.com/scholarnet/kgraph/internal/graph"
)

// KindAll disables kind filtering.
const KindAll = "all"

// Filter narrows what is drawn and hit-tested. Physics always runs on the
// full graph.
type Filter struct {
	Search      string  `json:"search,omitempty"`
	Kind        string  `json:"kind"`
	MinStrength float64 `json:"min_strength"`
}

// DefaultFilter shows everything.
func DefaultFilter() Filter {
	return Filter{Kind: KindAll}
}

// Active reports whether the filter hides anything.
func (f Filter) Active() bool {
	return f.Search != "" || (f.Kind != "" && f.Kind != KindAll) || f.MinStrength > 0
}

// MatchNode reports whether n passes the search and kind filters. Search is a
// case-insensitive substring match on label or id.
func (f Filter) MatchNode(n graph.Node) bool {
	if f.Kind != "" && f.Kind != KindAll && string(n.Kind) != f.Kind {
		return false
	}
	if f.Search == "" {
		return true
	}
	q := strings.ToLower(strings.TrimSpace(f.Search))
	return strings.Contains(strings.ToLower(n.Label), q) || strings.Contains(strings.ToLower(n.ID), q)
}

// MatchLink reports whether l meets the minimum strength. Endpoint
// visibility is checked separately.
func (f Filter) MatchLink(l graph.Link) bool {
	return l.Strength >= f.MinStrength
}

// NextKind cycles all -> scholar -> paper -> keyword -> department -> all.
func NextKind(current string) string {
	if current == "" || current == KindAll {
		return string(graph.Kinds[0])
	}
	for i, k := range graph.Kinds {
		if string(k) == current && i+1 < len(graph.Kinds) {
			return string(graph.Kinds[i+1])
		}
	}
	return KindAll
}
