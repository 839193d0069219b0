package emit

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"strconv"

	"github.com/roach88/spacegen/internal/ir"
)

// Options controls the emitted package surface.
type Options struct {
	// PackageName is the package clause of the emitted file.
	// Defaults to "addressspace".
	PackageName string

	// BuildFunc is the name of the emitted assembly function.
	// Defaults to "BuildAddressSpace".
	BuildFunc string
}

func (o *Options) withDefaults() Options {
	out := *o
	if out.PackageName == "" {
		out.PackageName = "addressspace"
	}
	if out.BuildFunc == "" {
		out.BuildFunc = "BuildAddressSpace"
	}
	return out
}

// Emit renders ns as Go source: runtime types, one var declaration per
// node in canonical order, and one assembly function inserting every
// node and then every reference in that same order. The text is returned
// unformatted; callers pass it through the formatter before writing.
func Emit(ns *ir.NodeSet, opts Options) ([]byte, error) {
	o := opts.withDefaults()

	digest, err := ir.Digest(ns)
	if err != nil {
		return nil, err
	}
	nodes := ns.SortedNodes()
	refs := ns.SortedReferences()

	var b bytes.Buffer
	fmt.Fprintf(&b, "// Code generated by spacegen. DO NOT EDIT.\n")
	fmt.Fprintf(&b, "//\n")
	fmt.Fprintf(&b, "// Address space digest: %s\n", digest)
	fmt.Fprintf(&b, "\npackage %s\n", o.PackageName)

	writeRuntimeTypes(&b)

	if len(nodes) > 0 {
		fmt.Fprintf(&b, "\n// Node declarations in canonical order.\n")
		fmt.Fprintf(&b, "var (\n")
		for _, n := range nodes {
			if err := writeNodeDecl(&b, n); err != nil {
				return nil, err
			}
		}
		fmt.Fprintf(&b, ")\n")
	}

	fmt.Fprintf(&b, "\n// %s assembles the generated address space.\n", o.BuildFunc)
	fmt.Fprintf(&b, "func %s() *AddressSpace {\n", o.BuildFunc)
	fmt.Fprintf(&b, "\tas := &AddressSpace{\n")
	fmt.Fprintf(&b, "\t\tNamespaces: []string{\n")
	for _, uri := range ns.Namespaces {
		fmt.Fprintf(&b, "\t\t\t%s,\n", strconv.Quote(uri))
	}
	fmt.Fprintf(&b, "\t\t},\n")
	fmt.Fprintf(&b, "\t}\n")
	if len(nodes) > 0 {
		fmt.Fprintf(&b, "\tas.Nodes = append(as.Nodes,\n")
		for _, n := range nodes {
			fmt.Fprintf(&b, "\t\t%s,\n", nodeVarName(n.ID))
		}
		fmt.Fprintf(&b, "\t)\n")
	}
	if len(refs) > 0 {
		fmt.Fprintf(&b, "\tas.References = append(as.References,\n")
		for _, r := range refs {
			fmt.Fprintf(&b, "\t\tReference{Source: %s, Type: %s, Target: %s, IsForward: %t},\n",
				strconv.Quote(r.Source.String()), strconv.Quote(r.Type.String()),
				strconv.Quote(r.Target.String()), r.IsForward)
		}
		fmt.Fprintf(&b, "\t)\n")
	}
	fmt.Fprintf(&b, "\treturn as\n")
	fmt.Fprintf(&b, "}\n")

	return b.Bytes(), nil
}

// writeRuntimeTypes emits the minimal runtime the generated package needs.
// Attributes are flattened onto Node; only the fields for a node's class
// carry meaning, the rest stay zero.
func writeRuntimeTypes(b *bytes.Buffer) {
	b.WriteString(`
// AddressSpace is the assembled node graph.
type AddressSpace struct {
	Namespaces []string
	Nodes      []Node
	References []Reference
}

// Node is one address-space node. Identifier-valued fields hold the
// canonical text form of the identifier.
type Node struct {
	ID          string
	Class       string
	BrowseName  string
	DisplayName string
	Description string

	EventNotifier   uint8
	DataType        string
	ValueRank       int32
	ArrayDimensions []uint32
	AccessLevel     uint8
	Executable      bool
	UserExecutable  bool
	IsAbstract      bool
	Symmetric       bool
	InverseName     string
	ContainsNoLoops bool
}

// Reference is one typed, directed edge between nodes.
type Reference struct {
	Source    string
	Type      string
	Target    string
	IsForward bool
}
`)
}

func writeNodeDecl(b *bytes.Buffer, n ir.Node) error {
	fmt.Fprintf(b, "\t%s = Node{\n", nodeVarName(n.ID))
	fmt.Fprintf(b, "\t\tID: %s,\n", strconv.Quote(n.ID.String()))
	fmt.Fprintf(b, "\t\tClass: %s,\n", strconv.Quote(n.Class.String()))
	fmt.Fprintf(b, "\t\tBrowseName: %s,\n", strconv.Quote(n.BrowseName.String()))
	writeString(b, "DisplayName", n.DisplayName)
	writeString(b, "Description", n.Description)
	if err := writeNodeAttrs(b, n); err != nil {
		return err
	}
	fmt.Fprintf(b, "\t}\n")
	return nil
}

// writeNodeAttrs renders the class-specific attribute fields. Zero values
// are elided; field order is fixed per class.
func writeNodeAttrs(b *bytes.Buffer, n ir.Node) error {
	switch a := n.Attrs.(type) {
	case ir.ObjectAttributes:
		writeUint8(b, "EventNotifier", a.EventNotifier)
	case ir.VariableAttributes:
		writeID(b, "DataType", a.DataType)
		writeInt32(b, "ValueRank", a.ValueRank)
		writeDims(b, a.ArrayDimensions)
		writeUint8(b, "AccessLevel", a.AccessLevel)
	case ir.MethodAttributes:
		writeBool(b, "Executable", a.Executable)
		writeBool(b, "UserExecutable", a.UserExecutable)
	case ir.ObjectTypeAttributes:
		writeBool(b, "IsAbstract", a.IsAbstract)
	case ir.VariableTypeAttributes:
		writeID(b, "DataType", a.DataType)
		writeInt32(b, "ValueRank", a.ValueRank)
		writeBool(b, "IsAbstract", a.IsAbstract)
	case ir.ReferenceTypeAttributes:
		writeBool(b, "IsAbstract", a.IsAbstract)
		writeBool(b, "Symmetric", a.Symmetric)
		writeString(b, "InverseName", a.InverseName)
	case ir.DataTypeAttributes:
		writeBool(b, "IsAbstract", a.IsAbstract)
	case ir.ViewAttributes:
		writeBool(b, "ContainsNoLoops", a.ContainsNoLoops)
		writeUint8(b, "EventNotifier", a.EventNotifier)
	default:
		return &UnsupportedAttributeError{
			NodeID: n.ID,
			Detail: fmt.Sprintf("no rendering for %T", n.Attrs),
		}
	}
	return nil
}

func writeUint8(b *bytes.Buffer, field string, v uint8) {
	if v != 0 {
		fmt.Fprintf(b, "\t\t%s: %d,\n", field, v)
	}
}

func writeInt32(b *bytes.Buffer, field string, v int32) {
	if v != 0 {
		fmt.Fprintf(b, "\t\t%s: %d,\n", field, v)
	}
}

func writeBool(b *bytes.Buffer, field string, v bool) {
	if v {
		fmt.Fprintf(b, "\t\t%s: true,\n", field)
	}
}

func writeString(b *bytes.Buffer, field, v string) {
	if v != "" {
		fmt.Fprintf(b, "\t\t%s: %s,\n", field, strconv.Quote(v))
	}
}

func writeID(b *bytes.Buffer, field string, id ir.NodeID) {
	if !id.IsNull() {
		fmt.Fprintf(b, "\t\t%s: %s,\n", field, strconv.Quote(id.String()))
	}
}

func writeDims(b *bytes.Buffer, dims []uint32) {
	if len(dims) == 0 {
		return
	}
	fmt.Fprintf(b, "\t\tArrayDimensions: []uint32{")
	for i, d := range dims {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(b, "%d", d)
	}
	b.WriteString("},\n")
}

// nodeVarName derives a Go identifier for a node declaration. Names are
// type-prefixed so a string identifier "5001" cannot collide with the
// numeric identifier 5001. Sanitized string identifiers that lost
// characters carry a short content hash to keep names collision-free.
func nodeVarName(id ir.NodeID) string {
	switch id.Type {
	case ir.IDTypeString:
		clean := sanitizeIdent(id.Text)
		if clean != id.Text {
			sum := sha256.Sum256([]byte(id.Text))
			return fmt.Sprintf("Node_%d_s_%s_%x", id.NamespaceIndex, clean, sum[:4])
		}
		return fmt.Sprintf("Node_%d_s_%s", id.NamespaceIndex, clean)
	case ir.IDTypeOpaque:
		return fmt.Sprintf("Node_%d_b_%x", id.NamespaceIndex, id.Opaque)
	default:
		return fmt.Sprintf("Node_%d_%d", id.NamespaceIndex, id.Numeric)
	}
}

func sanitizeIdent(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_':
			out = append(out, c)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}
