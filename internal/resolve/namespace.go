package resolve

import (
	"slices"

	"github.com/roach88/spacegen/internal/schema"
)

// NamespaceTable maps namespace URIs to stable global indexes.
type NamespaceTable struct {
	uris  []string
	index map[string]uint16
}

// BuildNamespaceTable assigns a global index to every namespace URI
// declared by the ordered document list, in first-declaration order.
// The base document's first URI gets index 0.
func BuildNamespaceTable(docs []*schema.Document) *NamespaceTable {
	t := &NamespaceTable{index: make(map[string]uint16)}
	for _, doc := range docs {
		for _, uri := range doc.NamespaceURIs {
			if _, ok := t.index[uri]; ok {
				continue
			}
			t.index[uri] = uint16(len(t.uris))
			t.uris = append(t.uris, uri)
		}
	}
	return t
}

// Index returns the global index for uri.
func (t *NamespaceTable) Index(uri string) (uint16, bool) {
	idx, ok := t.index[uri]
	return idx, ok
}

// URIs returns the table contents in index order.
func (t *NamespaceTable) URIs() []string {
	return slices.Clone(t.uris)
}

// Len returns the number of namespaces in the table.
func (t *NamespaceTable) Len() int {
	return len(t.uris)
}
