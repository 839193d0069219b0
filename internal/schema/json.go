package schema

import (
	_ "embed"
	"io"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

//go:embed nodeset_schema.cue
var nodesetSchemaCUE string

// schemaValue compiles the embedded CUE schema once. The compiled value is
// immutable and safe for concurrent unification.
var schemaValue = sync.OnceValue(func() cue.Value {
	ctx := cuecontext.New()
	v := ctx.CompileString(nodesetSchemaCUE, cue.Filename("nodeset_schema.cue"))
	if err := v.Err(); err != nil {
		// The schema is embedded at build time; failing to compile it is
		// a generator defect, not a schema-input defect.
		panic(err)
	}
	return v.LookupPath(cue.ParsePath("#NodeSet"))
})

// jsonDocument mirrors the JSON document shape accepted by the CUE schema.
type jsonDocument struct {
	NamespaceURIs []string          `json:"namespaceUris"`
	Models        []jsonModel       `json:"models"`
	Aliases       map[string]string `json:"aliases"`
	Nodes         []jsonNode        `json:"nodes"`
}

type jsonModel struct {
	URI            string   `json:"uri"`
	RequiredModels []string `json:"requiredModels"`
}

type jsonNode struct {
	Class       string            `json:"class"`
	NodeID      string            `json:"nodeId"`
	BrowseName  string            `json:"browseName"`
	DisplayName string            `json:"displayName"`
	Description string            `json:"description"`
	Attributes  map[string]string `json:"attributes"`
	References  []jsonReference   `json:"references"`
}

type jsonReference struct {
	Type      string `json:"type"`
	Target    string `json:"target"`
	IsForward *bool  `json:"isForward"`
}

// ReadJSON parses one JSON node-set document. The document is compiled as
// a CUE value (JSON is a subset of CUE), unified with the embedded schema,
// and validated concrete before decoding, so malformed shapes surface as
// SyntaxError with source positions instead of partially decoded records.
func ReadJSON(name string, r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &SyntaxError{Document: name, Detail: err.Error()}
	}

	ctx := cuecontext.New()
	docVal := ctx.CompileBytes(data, cue.Filename(name))
	if err := docVal.Err(); err != nil {
		return nil, convertCUEError(name, err)
	}

	unified := schemaValue().Unify(docVal)
	if err := unified.Validate(cue.Concrete(true), cue.Final()); err != nil {
		return nil, convertCUEError(name, err)
	}

	var jd jsonDocument
	if err := unified.Decode(&jd); err != nil {
		return nil, convertCUEError(name, err)
	}
	return convertJSONDocument(name, &jd)
}

// convertJSONDocument maps the decoded JSON shape onto the raw Document,
// applying the same closed attribute-name policy as the XML reader.
func convertJSONDocument(name string, jd *jsonDocument) (*Document, error) {
	if len(jd.NamespaceURIs) == 0 {
		return nil, syntaxErrorf(name, 0, "document declares no namespace URIs")
	}
	if len(jd.Models) == 0 {
		return nil, syntaxErrorf(name, 0, "document declares no models")
	}

	doc := &Document{Name: name, Aliases: make(map[string]string)}
	doc.NamespaceURIs = append(doc.NamespaceURIs, jd.NamespaceURIs...)
	for _, m := range jd.Models {
		doc.Models = append(doc.Models, Model{URI: m.URI, RequiredModels: m.RequiredModels})
	}
	for alias, id := range jd.Aliases {
		doc.Aliases[alias] = id
	}

	for _, jn := range jd.Nodes {
		node := RawNode{
			Class:       jn.Class,
			NodeID:      jn.NodeID,
			BrowseName:  jn.BrowseName,
			DisplayName: jn.DisplayName,
			Description: jn.Description,
			Attrs:       make(map[string]string),
		}
		if node.NodeID == "" {
			return nil, syntaxErrorf(name, 0, "%s node with empty nodeId", jn.Class)
		}
		if node.BrowseName == "" {
			return nil, syntaxErrorf(name, 0, "%s: empty browseName", jn.NodeID)
		}
		if node.DisplayName == "" {
			node.DisplayName = browseNameLocal(node.BrowseName)
		}

		allowed := allowedAttrs[jn.Class]
		for k, v := range jn.Attributes {
			if !allowed[k] {
				return nil, syntaxErrorf(name, 0, "%s: unknown attribute %s on %s", jn.NodeID, k, jn.Class)
			}
			node.Attrs[k] = v
		}

		for _, jr := range jn.References {
			if strings.TrimSpace(jr.Target) == "" {
				return nil, syntaxErrorf(name, 0, "%s: reference has empty target", jn.NodeID)
			}
			forward := true
			if jr.IsForward != nil {
				forward = *jr.IsForward
			}
			node.Refs = append(node.Refs, RawReference{
				Type:      jr.Type,
				Target:    strings.TrimSpace(jr.Target),
				IsForward: forward,
			})
		}
		doc.Nodes = append(doc.Nodes, node)
	}
	return doc, nil
}

// convertCUEError extracts position info from CUE errors into SyntaxError.
func convertCUEError(name string, err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &SyntaxError{Document: name, Detail: err.Error()}
	}
	first := errs[0]
	line := 0
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		line = positions[0].Line()
	}
	return &SyntaxError{Document: name, Line: line, Detail: first.Error()}
}
