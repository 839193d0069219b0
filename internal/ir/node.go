package ir

import "fmt"

// NodeClass is the closed set of node classes. No other values exist;
// readers reject anything outside this set before the IR is built.
type NodeClass uint8

const (
	ClassObject NodeClass = iota
	ClassVariable
	ClassMethod
	ClassObjectType
	ClassVariableType
	ClassReferenceType
	ClassDataType
	ClassView
)

var nodeClassNames = [...]string{
	"Object",
	"Variable",
	"Method",
	"ObjectType",
	"VariableType",
	"ReferenceType",
	"DataType",
	"View",
}

// String returns the class name as it appears in schema documents.
func (c NodeClass) String() string {
	if int(c) < len(nodeClassNames) {
		return nodeClassNames[c]
	}
	return fmt.Sprintf("NodeClass(%d)", c)
}

// ParseNodeClass maps a schema class name to a NodeClass.
func ParseNodeClass(s string) (NodeClass, error) {
	for i, name := range nodeClassNames {
		if name == s {
			return NodeClass(i), nil
		}
	}
	return 0, fmt.Errorf("unknown node class %q", s)
}

// QualifiedName is a namespace-qualified browse name.
type QualifiedName struct {
	NamespaceIndex uint16 `json:"ns"`
	Name           string `json:"name"`
}

// String renders "N:Name", omitting the index for namespace 0.
func (q QualifiedName) String() string {
	if q.NamespaceIndex == 0 {
		return q.Name
	}
	return fmt.Sprintf("%d:%s", q.NamespaceIndex, q.Name)
}

// Node is one entry of the address space.
type Node struct {
	ID          NodeID        `json:"id"`
	Class       NodeClass     `json:"class"`
	BrowseName  QualifiedName `json:"browse_name"`
	DisplayName string        `json:"display_name"`
	Description string        `json:"description,omitempty"`

	// Attrs is the class-specific attribute set. Its dynamic type must
	// match Class; NodeSet.AddNode enforces this.
	Attrs Attributes `json:"attrs"`
}

// Reference is a typed, directional edge between two nodes. Type names a
// node of class ReferenceType in the same graph (or its imported base).
type Reference struct {
	Source    NodeID `json:"source"`
	Type      NodeID `json:"type"`
	Target    NodeID `json:"target"`
	IsForward bool   `json:"is_forward"`
}

// Compare imposes the canonical reference order:
// (Source, Type, Target, forward before inverse). Part of SortKeyVersion.
func (r Reference) Compare(other Reference) int {
	if c := r.Source.Compare(other.Source); c != 0 {
		return c
	}
	if c := r.Type.Compare(other.Type); c != 0 {
		return c
	}
	if c := r.Target.Compare(other.Target); c != 0 {
		return c
	}
	if r.IsForward == other.IsForward {
		return 0
	}
	if r.IsForward {
		return -1
	}
	return 1
}

// String renders the reference for diagnostics.
func (r Reference) String() string {
	arrow := "->"
	if !r.IsForward {
		arrow = "<-"
	}
	return fmt.Sprintf("%s %s[%s] %s", r.Source, arrow, r.Type, r.Target)
}
