package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"unicode/utf16"

	"golang.org/x/text/unicode/norm"
)

// MarshalCanonical produces RFC 8785 canonical JSON for a NodeSet.
// CRITICAL: this is the ONLY serialization used for content-addressed
// digests (Digest). Properties:
//
//  1. Object keys sorted by UTF-16 code units (not UTF-8 bytes)
//  2. No HTML escaping (< > & are NOT escaped)
//  3. Strings are NFC normalized at the serialization boundary
//  4. No floats anywhere in the IR
//
// Nodes and references appear in canonical order, so two NodeSets built
// from permuted input marshal to identical bytes.
func MarshalCanonical(s *NodeSet) ([]byte, error) {
	nsArr := make(carr, len(s.Namespaces))
	for i, uri := range s.Namespaces {
		nsArr[i] = cstr(uri)
	}

	nodes := s.SortedNodes()
	nodeArr := make(carr, len(nodes))
	for i, n := range nodes {
		v, err := canonicalNode(n)
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", n.ID, err)
		}
		nodeArr[i] = v
	}

	refs := s.SortedReferences()
	refArr := make(carr, len(refs))
	for i, r := range refs {
		refArr[i] = cobj{
			"source":     cstr(r.Source.String()),
			"type":       cstr(r.Type.String()),
			"target":     cstr(r.Target.String()),
			"is_forward": cbool(r.IsForward),
		}
	}

	root := cobj{
		"sort_key_version": cstr(SortKeyVersion),
		"namespaces":       nsArr,
		"nodes":            nodeArr,
		"references":       refArr,
	}
	return marshalCanonical(root)
}

// canonicalNode converts a Node to its canonical value tree.
func canonicalNode(n Node) (cval, error) {
	obj := cobj{
		"id":           cstr(n.ID.String()),
		"class":        cstr(n.Class.String()),
		"browse_name":  cstr(n.BrowseName.String()),
		"display_name": cstr(n.DisplayName),
	}
	if n.Description != "" {
		obj["description"] = cstr(n.Description)
	}
	attrs, err := canonicalAttributes(n.Attrs)
	if err != nil {
		return nil, err
	}
	obj["attrs"] = attrs
	return obj, nil
}

func canonicalAttributes(attrs Attributes) (cval, error) {
	switch a := attrs.(type) {
	case ObjectAttributes:
		return cobj{"event_notifier": cint(a.EventNotifier)}, nil
	case VariableAttributes:
		obj := cobj{
			"data_type":    cstr(a.DataType.String()),
			"value_rank":   cint(a.ValueRank),
			"access_level": cint(a.AccessLevel),
		}
		if len(a.ArrayDimensions) > 0 {
			dims := make(carr, len(a.ArrayDimensions))
			for i, d := range a.ArrayDimensions {
				dims[i] = cint(d)
			}
			obj["array_dimensions"] = dims
		}
		return obj, nil
	case MethodAttributes:
		return cobj{
			"executable":      cbool(a.Executable),
			"user_executable": cbool(a.UserExecutable),
		}, nil
	case ObjectTypeAttributes:
		return cobj{"is_abstract": cbool(a.IsAbstract)}, nil
	case VariableTypeAttributes:
		return cobj{
			"data_type":   cstr(a.DataType.String()),
			"value_rank":  cint(a.ValueRank),
			"is_abstract": cbool(a.IsAbstract),
		}, nil
	case ReferenceTypeAttributes:
		obj := cobj{
			"is_abstract": cbool(a.IsAbstract),
			"symmetric":   cbool(a.Symmetric),
		}
		if a.InverseName != "" {
			obj["inverse_name"] = cstr(a.InverseName)
		}
		return obj, nil
	case DataTypeAttributes:
		return cobj{"is_abstract": cbool(a.IsAbstract)}, nil
	case ViewAttributes:
		return cobj{
			"contains_no_loops": cbool(a.ContainsNoLoops),
			"event_notifier":    cint(a.EventNotifier),
		}, nil
	default:
		return nil, fmt.Errorf("unsupported attribute variant %T", attrs)
	}
}

// cval is the sealed value tree for canonical JSON. Only cstr, cint,
// cbool, carr, and cobj implement it. No floats, no null.
type cval interface {
	cvalue() // sealed
}

type cstr string

func (cstr) cvalue() {}

type cint int64

func (cint) cvalue() {}

type cbool bool

func (cbool) cvalue() {}

type carr []cval

func (carr) cvalue() {}

type cobj map[string]cval

func (cobj) cvalue() {}

func marshalCanonical(v cval) ([]byte, error) {
	switch val := v.(type) {
	case cstr:
		return marshalCanonicalString(string(val))
	case cint:
		return []byte(fmt.Sprintf("%d", val)), nil
	case cbool:
		if val {
			return []byte("true"), nil
		}
		return []byte("false"), nil
	case carr:
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			b, err := marshalCanonical(elem)
			if err != nil {
				return nil, fmt.Errorf("array[%d]: %w", i, err)
			}
			buf.Write(b)
		}
		buf.WriteByte(']')
		return buf.Bytes(), nil
	case cobj:
		return marshalCanonicalObject(val)
	default:
		return nil, fmt.Errorf("unsupported canonical value type: %T", v)
	}
}

func marshalCanonicalObject(obj cobj) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	// CRITICAL: RFC 8785 UTF-16 code unit key ordering.
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeysRFC8785)

	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyBytes, err := marshalCanonicalString(k)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')

		valBytes, err := marshalCanonical(obj[k])
		if err != nil {
			return nil, fmt.Errorf("value for key %q: %w", k, err)
		}
		buf.Write(valBytes)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// marshalCanonicalString produces a canonical JSON string with NFC
// normalization and HTML escaping disabled per RFC 8785.
func marshalCanonicalString(s string) ([]byte, error) {
	normalized := norm.NFC.String(s)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false) // CRITICAL: <, >, & must NOT be escaped
	if err := enc.Encode(normalized); err != nil {
		return nil, err
	}

	// json.Encoder adds a trailing newline, remove it.
	result := buf.Bytes()
	if len(result) > 0 && result[len(result)-1] == '\n' {
		result = result[:len(result)-1]
	}
	return result, nil
}

// compareKeysRFC8785 compares strings by UTF-16 code units as required by
// RFC 8785. CRITICAL: Go's default string comparison is UTF-8 bytewise,
// which produces a DIFFERENT order for characters outside the BMP.
func compareKeysRFC8785(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))

	n := min(len(a16), len(b16))
	for i := 0; i < n; i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a16) < len(b16):
		return -1
	case len(a16) > len(b16):
		return 1
	default:
		return 0
	}
}
