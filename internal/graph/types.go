// Package graph defines the typed node and link records of the knowledge graph
// and the lookup structures derived from them.
package graph

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
)

// Kind is the entity type of a node. It drives rendering color.
type Kind string

// Node kinds.
const (
	KindScholar    Kind = "scholar"
	KindPaper      Kind = "paper"
	KindKeyword    Kind = "keyword"
	KindDepartment Kind = "department"
)

// Kinds lists every node kind in display order.
var Kinds = []Kind{KindScholar, KindPaper, KindKeyword, KindDepartment}

// Valid reports whether k is one of the known node kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindScholar, KindPaper, KindKeyword, KindDepartment:
		return true
	}
	return false
}

// ParseKind converts a string to a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.Valid() {
		return "", fmt.Errorf("invalid node kind %q (valid: %v)", s, Kinds)
	}
	return k, nil
}

// LinkKind is the relation type of a link. It is advisory only.
type LinkKind string

// Link kinds.
const (
	LinkCollaboration      LinkKind = "collaboration"
	LinkAuthorship         LinkKind = "authorship"
	LinkCitation           LinkKind = "citation"
	LinkKeywordAssociation LinkKind = "keyword-association"
)

// LinkKinds lists every link kind.
var LinkKinds = []LinkKind{LinkCollaboration, LinkAuthorship, LinkCitation, LinkKeywordAssociation}

// Valid reports whether k is one of the known link kinds.
func (k LinkKind) Valid() bool {
	switch k {
	case LinkCollaboration, LinkAuthorship, LinkCitation, LinkKeywordAssociation:
		return true
	}
	return false
}

// UnmarshalJSON accepts the legacy "keyword" spelling for keyword associations.
func (k *LinkKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "keyword" {
		s = string(LinkKeywordAssociation)
	}
	*k = LinkKind(s)
	return nil
}

// Node is a typed visual entity. Position and velocity are not part of the
// record; they belong to the simulation engine.
type Node struct {
	ID     string  `json:"id"`
	Label  string  `json:"label"`
	Kind   Kind    `json:"kind"`
	Weight float64 `json:"weight"` // radius and force share
}

// Link is a weighted relation between two nodes.
type Link struct {
	Source   string   `json:"source"`
	Target   string   `json:"target"`
	Strength float64  `json:"strength"` // (0, 1]
	Kind     LinkKind `json:"kind"`
}

// Touches reports whether the link has id as either endpoint.
func (l Link) Touches(id string) bool {
	return l.Source == id || l.Target == id
}

// Other returns the endpoint opposite to id.
func (l Link) Other(id string) string {
	if l.Source == id {
		return l.Target
	}
	return l.Source
}

// IDPattern is the regex pattern for valid node IDs.
var IDPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// Validation errors.
var (
	ErrEmptyID         = errors.New("id is required")
	ErrInvalidID       = errors.New("id must match pattern: lowercase alphanumeric, hyphens, underscores; must start with alphanumeric")
	ErrEmptyLabel      = errors.New("label is required")
	ErrInvalidKind     = errors.New("kind is not a known node kind")
	ErrInvalidWeight   = errors.New("weight must be positive")
	ErrEmptySource     = errors.New("source is required")
	ErrEmptyTarget     = errors.New("target is required")
	ErrSelfLink        = errors.New("source and target cannot be the same")
	ErrInvalidStrength = errors.New("strength must be in (0, 1]")
	ErrInvalidLinkKind = errors.New("kind is not a known link kind")
	ErrDuplicateID     = errors.New("node with this id already exists")
)

// Validate checks a node read from a dataset.
func (n *Node) Validate() error {
	if n.ID == "" {
		return ErrEmptyID
	}
	if !IDPattern.MatchString(n.ID) {
		return ErrInvalidID
	}
	if n.Label == "" {
		return ErrEmptyLabel
	}
	if !n.Kind.Valid() {
		return ErrInvalidKind
	}
	if !(n.Weight > 0) {
		return ErrInvalidWeight
	}
	return nil
}

// Validate checks a link read from a dataset. Endpoint existence is not
// checked here; see Graph.DanglingLinks.
func (l *Link) Validate() error {
	if l.Source == "" {
		return ErrEmptySource
	}
	if l.Target == "" {
		return ErrEmptyTarget
	}
	if l.Source == l.Target {
		return ErrSelfLink
	}
	if !(l.Strength > 0 && l.Strength <= 1) {
		return ErrInvalidStrength
	}
	if !l.Kind.Valid() {
		return ErrInvalidLinkKind
	}
	return nil
}
