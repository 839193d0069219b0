package ir

import (
	"fmt"
	"slices"
)

// DuplicateNodeError reports two definitions of the same NodeID.
// An overwrite would make generation depend on input order, so duplicates
// are fatal rather than last-writer-wins.
type DuplicateNodeError struct {
	ID             NodeID
	FirstDocument  string // document that defined the id first
	SecondDocument string // document attempting the redefinition
}

func (e *DuplicateNodeError) Error() string {
	if e.FirstDocument != "" || e.SecondDocument != "" {
		return fmt.Sprintf("duplicate node %s: defined in %s, redefined in %s",
			e.ID, e.FirstDocument, e.SecondDocument)
	}
	return fmt.Sprintf("duplicate node %s", e.ID)
}

// NodeSet is the resolved address-space graph: a mapping from NodeID to
// Node plus a set of references, with an optional imported base model.
//
// The base is never mutated through an extension set; extension only adds.
// All exposure of nodes and references is in canonical order (SortedNodes,
// SortedReferences) independent of insertion order.
type NodeSet struct {
	// Namespaces is the namespace table threaded through the pipeline:
	// index position is the namespace index, value is the URI.
	Namespaces []string

	nodes  map[string]Node
	refs   []Reference
	origin map[string]string // node key -> defining document
	base   *NodeSet
}

// NewNodeSet creates an empty NodeSet with the given namespace table.
func NewNodeSet(namespaces []string) *NodeSet {
	return &NodeSet{
		Namespaces: slices.Clone(namespaces),
		nodes:      make(map[string]Node),
		origin:     make(map[string]string),
	}
}

// NewExtensionSet creates an empty NodeSet extending base. Lookups fall
// through to the base; the base itself is never written to.
func NewExtensionSet(namespaces []string, base *NodeSet) *NodeSet {
	ns := NewNodeSet(namespaces)
	ns.base = base
	return ns
}

// AddNode inserts a node, recording the defining document for diagnostics.
// Returns *DuplicateNodeError if the NodeID is already defined here or in
// the imported base (redefining an inherited node counts as a duplicate).
func (s *NodeSet) AddNode(n Node, document string) error {
	if n.Attrs == nil {
		return fmt.Errorf("node %s: nil attribute set", n.ID)
	}
	if n.Attrs.NodeClass() != n.Class {
		return fmt.Errorf("node %s: %s attributes on %s node",
			n.ID, n.Attrs.NodeClass(), n.Class)
	}
	key := n.ID.Key()
	if prev, ok := s.originOf(key); ok {
		return &DuplicateNodeError{ID: n.ID, FirstDocument: prev, SecondDocument: document}
	}
	s.nodes[key] = n
	s.origin[key] = document
	return nil
}

// AddReference appends a reference. Referential integrity is the builder's
// validation step, not checked here.
func (s *NodeSet) AddReference(r Reference) {
	s.refs = append(s.refs, r)
}

// Node returns the node for id, consulting the imported base.
func (s *NodeSet) Node(id NodeID) (Node, bool) {
	if n, ok := s.nodes[id.Key()]; ok {
		return n, true
	}
	if s.base != nil {
		return s.base.Node(id)
	}
	return Node{}, false
}

// Has reports whether id resolves here or transitively through the base.
func (s *NodeSet) Has(id NodeID) bool {
	_, ok := s.Node(id)
	return ok
}

// Origin returns the document that defined id, if any.
func (s *NodeSet) Origin(id NodeID) (string, bool) {
	return s.originOf(id.Key())
}

func (s *NodeSet) originOf(key string) (string, bool) {
	if doc, ok := s.origin[key]; ok {
		return doc, true
	}
	if s.base != nil {
		return s.base.originOf(key)
	}
	return "", false
}

// Len returns the number of nodes defined in this set (base excluded).
func (s *NodeSet) Len() int {
	return len(s.nodes)
}

// RefLen returns the number of references defined in this set.
func (s *NodeSet) RefLen() int {
	return len(s.refs)
}

// Base returns the imported base model, or nil.
func (s *NodeSet) Base() *NodeSet {
	return s.base
}

// SortedNodes returns this set's nodes in canonical order: ascending
// NodeID per NodeID.Compare. The map is never iterated into output
// directly; this sorted copy is the only exposure.
func (s *NodeSet) SortedNodes() []Node {
	out := make([]Node, 0, len(s.nodes))
	for _, n := range s.nodes {
		out = append(out, n)
	}
	slices.SortFunc(out, func(a, b Node) int {
		return a.ID.Compare(b.ID)
	})
	return out
}

// SortedReferences returns this set's references in canonical order:
// (Source, Type, Target, forward first), duplicates removed.
func (s *NodeSet) SortedReferences() []Reference {
	out := slices.Clone(s.refs)
	slices.SortFunc(out, Reference.Compare)
	return slices.CompactFunc(out, func(a, b Reference) bool {
		return a.Compare(b) == 0
	})
}
