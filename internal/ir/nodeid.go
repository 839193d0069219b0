package ir

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
)

// IDType discriminates the value form of a NodeID.
// The ordinal order (Numeric < String < Opaque) is part of the canonical
// sort key (SortKeyVersion) and must never be reordered.
type IDType uint8

const (
	IDTypeNumeric IDType = iota
	IDTypeString
	IDTypeOpaque
)

// String returns the text-form prefix for the ID type.
func (t IDType) String() string {
	switch t {
	case IDTypeNumeric:
		return "i"
	case IDTypeString:
		return "s"
	case IDTypeOpaque:
		return "b"
	default:
		return fmt.Sprintf("IDType(%d)", t)
	}
}

// NodeID is the canonical, immutable, totally-ordered identifier of a Node.
// It is a value type; treat it as immutable after construction.
//
// Text forms:
//
//	i=85           numeric, namespace 0
//	ns=2;s=Motor   string, namespace 2
//	ns=2;b=AQID    opaque (base64), namespace 2
type NodeID struct {
	NamespaceIndex uint16 `json:"ns"`
	Type           IDType `json:"type"`

	// Exactly one of the following carries the value, selected by Type.
	Numeric uint32 `json:"numeric,omitempty"`
	Text    string `json:"text,omitempty"`
	Opaque  []byte `json:"opaque,omitempty"`
}

// NewNumericID creates a numeric NodeID.
func NewNumericID(ns uint16, value uint32) NodeID {
	return NodeID{NamespaceIndex: ns, Type: IDTypeNumeric, Numeric: value}
}

// NewStringID creates a string NodeID.
func NewStringID(ns uint16, value string) NodeID {
	return NodeID{NamespaceIndex: ns, Type: IDTypeString, Text: value}
}

// NewOpaqueID creates an opaque (byte sequence) NodeID.
func NewOpaqueID(ns uint16, value []byte) NodeID {
	b := make([]byte, len(value))
	copy(b, value)
	return NodeID{NamespaceIndex: ns, Type: IDTypeOpaque, Opaque: b}
}

// IsNull reports whether the NodeID is the zero numeric id in namespace 0.
func (id NodeID) IsNull() bool {
	return id.NamespaceIndex == 0 && id.Type == IDTypeNumeric && id.Numeric == 0
}

// String renders the canonical text form. The "ns=0;" prefix is always
// omitted for namespace 0 so a NodeID has exactly one text rendering.
func (id NodeID) String() string {
	var b strings.Builder
	if id.NamespaceIndex != 0 {
		fmt.Fprintf(&b, "ns=%d;", id.NamespaceIndex)
	}
	switch id.Type {
	case IDTypeNumeric:
		fmt.Fprintf(&b, "i=%d", id.Numeric)
	case IDTypeString:
		fmt.Fprintf(&b, "s=%s", id.Text)
	case IDTypeOpaque:
		fmt.Fprintf(&b, "b=%s", base64.StdEncoding.EncodeToString(id.Opaque))
	}
	return b.String()
}

// Compare imposes the total order used for canonical output:
// (NamespaceIndex, IDType ordinal, value). Numeric values compare
// numerically, string values bytewise, opaque values bytewise.
// The convention is versioned as SortKeyVersion; changing it changes
// every generated file and is a breaking change.
func (id NodeID) Compare(other NodeID) int {
	if id.NamespaceIndex != other.NamespaceIndex {
		if id.NamespaceIndex < other.NamespaceIndex {
			return -1
		}
		return 1
	}
	if id.Type != other.Type {
		if id.Type < other.Type {
			return -1
		}
		return 1
	}
	switch id.Type {
	case IDTypeNumeric:
		if id.Numeric != other.Numeric {
			if id.Numeric < other.Numeric {
				return -1
			}
			return 1
		}
		return 0
	case IDTypeString:
		return strings.Compare(id.Text, other.Text)
	default:
		return bytes.Compare(id.Opaque, other.Opaque)
	}
}

// Equal reports value equality.
func (id NodeID) Equal(other NodeID) bool {
	return id.Compare(other) == 0
}

// Key returns a map key for the NodeID. Opaque ids are not comparable as
// struct values (byte slice), so the canonical text form serves as key.
func (id NodeID) Key() string {
	return id.String()
}

// ParseNodeID parses the canonical text form of a NodeID.
// Accepted grammar: ["ns=" digits ";"] ("i="|"s="|"b=") value.
func ParseNodeID(s string) (NodeID, error) {
	rest := s
	var ns uint16
	if strings.HasPrefix(rest, "ns=") {
		semi := strings.Index(rest, ";")
		if semi < 0 {
			return NodeID{}, fmt.Errorf("node id %q: missing ';' after namespace", s)
		}
		n, err := strconv.ParseUint(rest[3:semi], 10, 16)
		if err != nil {
			return NodeID{}, fmt.Errorf("node id %q: bad namespace index: %w", s, err)
		}
		ns = uint16(n)
		rest = rest[semi+1:]
	}
	if len(rest) < 2 || rest[1] != '=' {
		return NodeID{}, fmt.Errorf("node id %q: missing identifier form", s)
	}
	value := rest[2:]
	switch rest[0] {
	case 'i':
		n, err := strconv.ParseUint(value, 10, 32)
		if err != nil {
			return NodeID{}, fmt.Errorf("node id %q: bad numeric value: %w", s, err)
		}
		return NewNumericID(ns, uint32(n)), nil
	case 's':
		if value == "" {
			return NodeID{}, fmt.Errorf("node id %q: empty string value", s)
		}
		return NewStringID(ns, value), nil
	case 'b':
		raw, err := base64.StdEncoding.DecodeString(value)
		if err != nil {
			return NodeID{}, fmt.Errorf("node id %q: bad base64 value: %w", s, err)
		}
		return NewOpaqueID(ns, raw), nil
	default:
		return NodeID{}, fmt.Errorf("node id %q: unknown identifier form %q", s, rest[0])
	}
}

// MustParseNodeID is like ParseNodeID but panics on error.
// Use only in tests or for literals known to be valid (generated code).
func MustParseNodeID(s string) NodeID {
	id, err := ParseNodeID(s)
	if err != nil {
		panic(err)
	}
	return id
}
