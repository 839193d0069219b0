package builder

import (
	"fmt"
	"strings"

	"github.com/roach88/spacegen/internal/ir"
)

// DanglingReferenceError reports a reference whose source, target, or
// reference type resolves to no node, even transitively through the
// imported base model.
type DanglingReferenceError struct {
	Reference ir.Reference
	Missing   ir.NodeID // the identifier that failed to resolve
	Detail    string    // optional, e.g. "reference type is not a ReferenceType node"
}

func (e *DanglingReferenceError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("dangling reference %s: %s (%s)", e.Reference, e.Missing, e.Detail)
	}
	return fmt.Sprintf("dangling reference %s: %s does not resolve to any node", e.Reference, e.Missing)
}

// CycleError reports a cyclic requirement among schema documents.
// Base → extension dependencies must form a DAG; cycles are rejected
// explicitly rather than looped over.
type CycleError struct {
	Path []string // model URIs forming the cycle, first repeated last
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("cyclic model requirement: %s", strings.Join(e.Path, " -> "))
}
