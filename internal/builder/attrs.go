package builder

import (
	"strconv"
	"strings"

	"github.com/roach88/spacegen/internal/ir"
	"github.com/roach88/spacegen/internal/resolve"
	"github.com/roach88/spacegen/internal/schema"
)

// BaseDataType (i=24) is the default data type for variables that do not
// declare one, per the base information model.
var baseDataTypeID = ir.NewNumericID(0, 24)

// buildAttributes converts raw class-specific attribute strings into the
// typed variant for the node's class. Raw values come from the reader's
// closed per-class name set; a value that fails to parse is a structurally
// invalid attribute encoding, i.e. a schema syntax error.
func buildAttributes(document string, node resolve.ResolvedNode) (ir.Attributes, error) {
	p := &attrParser{document: document, node: node}

	switch node.Class {
	case ir.ClassObject:
		attrs := ir.ObjectAttributes{EventNotifier: p.uint8Attr("EventNotifier", 0)}
		return attrs, p.err
	case ir.ClassVariable:
		attrs := ir.VariableAttributes{
			DataType:        p.nodeIDAttr("DataType", baseDataTypeID),
			ValueRank:       p.int32Attr("ValueRank", -1),
			ArrayDimensions: p.dimensionsAttr("ArrayDimensions"),
			AccessLevel:     p.uint8Attr("AccessLevel", 1),
		}
		return attrs, p.err
	case ir.ClassMethod:
		attrs := ir.MethodAttributes{
			Executable:     p.boolAttr("Executable", true),
			UserExecutable: p.boolAttr("UserExecutable", true),
		}
		return attrs, p.err
	case ir.ClassObjectType:
		attrs := ir.ObjectTypeAttributes{IsAbstract: p.boolAttr("IsAbstract", false)}
		return attrs, p.err
	case ir.ClassVariableType:
		attrs := ir.VariableTypeAttributes{
			DataType:   p.nodeIDAttr("DataType", baseDataTypeID),
			ValueRank:  p.int32Attr("ValueRank", -1),
			IsAbstract: p.boolAttr("IsAbstract", false),
		}
		return attrs, p.err
	case ir.ClassReferenceType:
		attrs := ir.ReferenceTypeAttributes{
			IsAbstract:  p.boolAttr("IsAbstract", false),
			Symmetric:   p.boolAttr("Symmetric", false),
			InverseName: node.Attrs["InverseName"],
		}
		return attrs, p.err
	case ir.ClassDataType:
		attrs := ir.DataTypeAttributes{IsAbstract: p.boolAttr("IsAbstract", false)}
		return attrs, p.err
	case ir.ClassView:
		attrs := ir.ViewAttributes{
			ContainsNoLoops: p.boolAttr("ContainsNoLoops", false),
			EventNotifier:   p.uint8Attr("EventNotifier", 0),
		}
		return attrs, p.err
	default:
		return nil, &schema.SyntaxError{
			Document: document,
			Detail:   "unknown node class " + node.Class.String(),
		}
	}
}

// attrParser accumulates the first parse failure while letting the
// per-class constructors above stay declarative.
type attrParser struct {
	document string
	node     resolve.ResolvedNode
	err      error
}

func (p *attrParser) fail(name, value, reason string) {
	if p.err == nil {
		p.err = &schema.SyntaxError{
			Document: p.document,
			Detail:   p.node.ID.String() + ": attribute " + name + "=" + strconv.Quote(value) + ": " + reason,
		}
	}
}

func (p *attrParser) boolAttr(name string, def bool) bool {
	raw, ok := p.node.Attrs[name]
	if !ok {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		p.fail(name, raw, "not a boolean")
		return def
	}
	return v
}

func (p *attrParser) uint8Attr(name string, def uint8) uint8 {
	raw, ok := p.node.Attrs[name]
	if !ok {
		return def
	}
	v, err := strconv.ParseUint(raw, 10, 8)
	if err != nil {
		p.fail(name, raw, "not an 8-bit unsigned integer")
		return def
	}
	return uint8(v)
}

func (p *attrParser) int32Attr(name string, def int32) int32 {
	raw, ok := p.node.Attrs[name]
	if !ok {
		return def
	}
	v, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		p.fail(name, raw, "not a 32-bit integer")
		return def
	}
	return int32(v)
}

func (p *attrParser) nodeIDAttr(name string, def ir.NodeID) ir.NodeID {
	raw, ok := p.node.Attrs[name]
	if !ok {
		return def
	}
	// The resolver already canonicalized identifier-valued attributes;
	// a parse failure here means it never saw this document.
	id, err := ir.ParseNodeID(raw)
	if err != nil {
		p.fail(name, raw, "not a node id")
		return def
	}
	return id
}

func (p *attrParser) dimensionsAttr(name string) []uint32 {
	raw, ok := p.node.Attrs[name]
	if !ok || strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	dims := make([]uint32, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.ParseUint(strings.TrimSpace(part), 10, 32)
		if err != nil {
			p.fail(name, raw, "not a comma-separated list of dimensions")
			return nil
		}
		dims = append(dims, uint32(v))
	}
	return dims
}
