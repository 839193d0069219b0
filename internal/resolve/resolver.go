package resolve

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/spacegen/internal/ir"
	"github.com/roach88/spacegen/internal/schema"
)

// UnresolvedIdentifierError reports a raw identifier that maps to no
// declared namespace or known alias.
type UnresolvedIdentifierError struct {
	Document   string
	Identifier string
	Detail     string
}

func (e *UnresolvedIdentifierError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: unresolved identifier %q: %s", e.Document, e.Identifier, e.Detail)
	}
	return fmt.Sprintf("%s: unresolved identifier %q", e.Document, e.Identifier)
}

// ResolvedDocument is a schema document with every identifier rewritten
// to canonical NodeIDs under the global namespace table.
type ResolvedDocument struct {
	Name   string
	Models []schema.Model
	Nodes  []ResolvedNode
}

// ResolvedNode mirrors schema.RawNode with canonical identifiers.
// Attribute values stay raw strings except identifier-valued attributes
// (DataType), which are rewritten to canonical text form.
type ResolvedNode struct {
	ID          ir.NodeID
	Class       ir.NodeClass
	BrowseName  ir.QualifiedName
	DisplayName string
	Description string
	Attrs       map[string]string
	Refs        []ResolvedReference
}

// ResolvedReference is a reference tuple with canonical identifiers.
type ResolvedReference struct {
	Type      ir.NodeID
	Target    ir.NodeID
	IsForward bool
}

// Resolver rewrites one document's raw identifiers against the global
// namespace table. A Resolver is cheap; build one per document.
type Resolver struct {
	table *NamespaceTable
	doc   *schema.Document

	// local namespace index -> global index, per this document's
	// declaration list.
	remap []uint16
}

// NewResolver prepares a resolver for doc. Every URI the document
// declares must be present in the table (the table was built from the
// same document list, so a miss is a programming error surfaced as an
// unresolved identifier).
func NewResolver(doc *schema.Document, table *NamespaceTable) (*Resolver, error) {
	r := &Resolver{table: table, doc: doc, remap: make([]uint16, len(doc.NamespaceURIs))}
	for i, uri := range doc.NamespaceURIs {
		global, ok := table.Index(uri)
		if !ok {
			return nil, &UnresolvedIdentifierError{
				Document:   doc.Name,
				Identifier: uri,
				Detail:     "namespace URI not in table",
			}
		}
		r.remap[i] = global
	}
	return r, nil
}

// Resolve rewrites the whole document.
func (r *Resolver) Resolve() (*ResolvedDocument, error) {
	out := &ResolvedDocument{Name: r.doc.Name, Models: r.doc.Models}

	for _, raw := range r.doc.Nodes {
		node, err := r.resolveNode(raw)
		if err != nil {
			return nil, err
		}
		out.Nodes = append(out.Nodes, node)
	}
	return out, nil
}

func (r *Resolver) resolveNode(raw schema.RawNode) (ResolvedNode, error) {
	class, err := ir.ParseNodeClass(raw.Class)
	if err != nil {
		return ResolvedNode{}, &UnresolvedIdentifierError{
			Document: r.doc.Name, Identifier: raw.Class, Detail: "unknown node class",
		}
	}

	id, err := r.ResolveID(raw.NodeID)
	if err != nil {
		return ResolvedNode{}, err
	}
	browse, err := r.resolveBrowseName(raw.BrowseName)
	if err != nil {
		return ResolvedNode{}, err
	}

	node := ResolvedNode{
		ID:          id,
		Class:       class,
		BrowseName:  browse,
		DisplayName: raw.DisplayName,
		Description: raw.Description,
		Attrs:       make(map[string]string, len(raw.Attrs)),
	}
	for k, v := range raw.Attrs {
		if k == "DataType" {
			// Identifier-valued attribute: canonicalize now so later
			// stages never see a document-local or aliased form.
			dt, err := r.ResolveID(v)
			if err != nil {
				return ResolvedNode{}, err
			}
			node.Attrs[k] = dt.String()
			continue
		}
		node.Attrs[k] = v
	}

	for _, ref := range raw.Refs {
		refType, err := r.ResolveID(ref.Type)
		if err != nil {
			return ResolvedNode{}, err
		}
		target, err := r.ResolveID(ref.Target)
		if err != nil {
			return ResolvedNode{}, err
		}
		node.Refs = append(node.Refs, ResolvedReference{
			Type:      refType,
			Target:    target,
			IsForward: ref.IsForward,
		})
	}
	return node, nil
}

// ResolveID maps a raw identifier to a canonical NodeID. The raw form may
// be an alias, or a NodeID text form whose namespace index is local to
// the document being resolved.
func (r *Resolver) ResolveID(raw string) (ir.NodeID, error) {
	if aliased, ok := r.doc.Aliases[raw]; ok {
		raw = aliased
	}

	id, err := ir.ParseNodeID(raw)
	if err != nil {
		return ir.NodeID{}, &UnresolvedIdentifierError{
			Document: r.doc.Name, Identifier: raw, Detail: err.Error(),
		}
	}
	return r.remapID(raw, id)
}

// resolveBrowseName parses "N:Name" with a document-local index N
// (defaulting to 0) and remaps it to the global index.
func (r *Resolver) resolveBrowseName(raw string) (ir.QualifiedName, error) {
	name := raw
	local := 0
	if i := strings.Index(raw, ":"); i >= 0 {
		n, err := strconv.Atoi(raw[:i])
		if err != nil || n < 0 {
			return ir.QualifiedName{}, &UnresolvedIdentifierError{
				Document: r.doc.Name, Identifier: raw, Detail: "bad browse name namespace index",
			}
		}
		local = n
		name = raw[i+1:]
	}
	global, err := r.remapIndex(raw, local)
	if err != nil {
		return ir.QualifiedName{}, err
	}
	return ir.QualifiedName{NamespaceIndex: global, Name: name}, nil
}

func (r *Resolver) remapID(raw string, id ir.NodeID) (ir.NodeID, error) {
	global, err := r.remapIndex(raw, int(id.NamespaceIndex))
	if err != nil {
		return ir.NodeID{}, err
	}
	id.NamespaceIndex = global
	return id, nil
}

func (r *Resolver) remapIndex(raw string, local int) (uint16, error) {
	if local >= len(r.remap) {
		return 0, &UnresolvedIdentifierError{
			Document:   r.doc.Name,
			Identifier: raw,
			Detail:     fmt.Sprintf("namespace index %d not declared by document", local),
		}
	}
	return r.remap[local], nil
}
