package emit

import (
	"fmt"

	"github.com/roach88/spacegen/internal/ir"
)

// UnsupportedAttributeError reports an attribute shape the emitter cannot
// render. This is a generator capability gap, not a schema defect: the
// input was valid, the generator is what needs extending.
type UnsupportedAttributeError struct {
	NodeID ir.NodeID
	Detail string
}

func (e *UnsupportedAttributeError) Error() string {
	return fmt.Sprintf("node %s: unsupported attribute set: %s", e.NodeID, e.Detail)
}
