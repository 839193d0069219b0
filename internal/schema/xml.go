package schema

import (
	"encoding/xml"
	"errors"
	"io"
	"strings"
)

// XML body shapes. Node attributes are handled by hand so names outside
// the closed per-class set can be rejected instead of silently dropped.
type xmlNamespaceURIs struct {
	URIs []string `xml:"Uri"`
}

type xmlModels struct {
	Models []xmlModel `xml:"Model"`
}

type xmlModel struct {
	URI      string             `xml:"Uri,attr"`
	Required []xmlRequiredModel `xml:"RequiredModel"`
}

type xmlRequiredModel struct {
	URI string `xml:"Uri,attr"`
}

type xmlAliases struct {
	Aliases []xmlAlias `xml:"Alias"`
}

type xmlAlias struct {
	Name string `xml:"Name,attr"`
	ID   string `xml:",chardata"`
}

type xmlNodeBody struct {
	DisplayName string         `xml:"DisplayName"`
	Description string         `xml:"Description"`
	References  []xmlReference `xml:"References>Reference"`
}

type xmlReference struct {
	Type      string `xml:"Type,attr"`
	IsForward *bool  `xml:"IsForward,attr"`
	Target    string `xml:",chardata"`
}

// ReadXML parses one NodeSet XML document into its raw form.
// Node records are appended in document order, interleaved exactly as the
// node elements appear.
func ReadXML(name string, r io.Reader) (*Document, error) {
	dec := xml.NewDecoder(r)

	root, err := nextStartElement(dec)
	if err != nil {
		return nil, wrapXMLError(name, err)
	}
	if root.Name.Local != "NodeSet" {
		return nil, syntaxErrorf(name, 0, "root element must be NodeSet, got %s", root.Name.Local)
	}

	doc := &Document{Name: name, Aliases: make(map[string]string)}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, wrapXMLError(name, err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		switch {
		case start.Name.Local == "NamespaceUris":
			var uris xmlNamespaceURIs
			if err := dec.DecodeElement(&uris, &start); err != nil {
				return nil, wrapXMLError(name, err)
			}
			for _, u := range uris.URIs {
				doc.NamespaceURIs = append(doc.NamespaceURIs, strings.TrimSpace(u))
			}

		case start.Name.Local == "Models":
			var models xmlModels
			if err := dec.DecodeElement(&models, &start); err != nil {
				return nil, wrapXMLError(name, err)
			}
			for _, m := range models.Models {
				if m.URI == "" {
					return nil, syntaxErrorf(name, 0, "Model element missing Uri attribute")
				}
				model := Model{URI: m.URI}
				for _, req := range m.Required {
					if req.URI == "" {
						return nil, syntaxErrorf(name, 0, "RequiredModel element missing Uri attribute")
					}
					model.RequiredModels = append(model.RequiredModels, req.URI)
				}
				doc.Models = append(doc.Models, model)
			}

		case start.Name.Local == "Aliases":
			var aliases xmlAliases
			if err := dec.DecodeElement(&aliases, &start); err != nil {
				return nil, wrapXMLError(name, err)
			}
			for _, a := range aliases.Aliases {
				if a.Name == "" {
					return nil, syntaxErrorf(name, 0, "Alias element missing Name attribute")
				}
				doc.Aliases[a.Name] = strings.TrimSpace(a.ID)
			}

		case nodeClassNames[start.Name.Local]:
			node, err := readXMLNode(name, dec, start)
			if err != nil {
				return nil, err
			}
			doc.Nodes = append(doc.Nodes, node)

		default:
			return nil, syntaxErrorf(name, 0, "unknown element %s", start.Name.Local)
		}
	}

	if len(doc.NamespaceURIs) == 0 {
		return nil, syntaxErrorf(name, 0, "document declares no namespace URIs")
	}
	if len(doc.Models) == 0 {
		return nil, syntaxErrorf(name, 0, "document declares no models")
	}
	return doc, nil
}

// readXMLNode consumes one node-class element. The element name is the
// node class; attributes split into the required identifiers and the
// closed class-specific set.
func readXMLNode(name string, dec *xml.Decoder, start xml.StartElement) (RawNode, error) {
	class := start.Name.Local
	node := RawNode{Class: class, Attrs: make(map[string]string)}

	allowed := allowedAttrs[class]
	for _, attr := range start.Attr {
		switch attr.Name.Local {
		case "NodeId":
			node.NodeID = attr.Value
		case "BrowseName":
			node.BrowseName = attr.Value
		default:
			if !allowed[attr.Name.Local] {
				return RawNode{}, syntaxErrorf(name, 0, "%s: unknown attribute %s on %s",
					node.NodeID, attr.Name.Local, class)
			}
			node.Attrs[attr.Name.Local] = attr.Value
		}
	}
	if node.NodeID == "" {
		return RawNode{}, syntaxErrorf(name, 0, "%s element missing NodeId attribute", class)
	}
	if node.BrowseName == "" {
		return RawNode{}, syntaxErrorf(name, 0, "%s: missing BrowseName attribute", node.NodeID)
	}

	var body xmlNodeBody
	if err := dec.DecodeElement(&body, &start); err != nil {
		return RawNode{}, wrapXMLError(name, err)
	}
	node.DisplayName = strings.TrimSpace(body.DisplayName)
	node.Description = strings.TrimSpace(body.Description)
	if node.DisplayName == "" {
		node.DisplayName = browseNameLocal(node.BrowseName)
	}

	for _, ref := range body.References {
		if ref.Type == "" {
			return RawNode{}, syntaxErrorf(name, 0, "%s: Reference missing Type attribute", node.NodeID)
		}
		target := strings.TrimSpace(ref.Target)
		if target == "" {
			return RawNode{}, syntaxErrorf(name, 0, "%s: Reference has empty target", node.NodeID)
		}
		forward := true
		if ref.IsForward != nil {
			forward = *ref.IsForward
		}
		node.Refs = append(node.Refs, RawReference{Type: ref.Type, Target: target, IsForward: forward})
	}
	return node, nil
}

// browseNameLocal strips the "N:" namespace prefix from a raw browse name.
func browseNameLocal(browseName string) string {
	if i := strings.Index(browseName, ":"); i >= 0 {
		return browseName[i+1:]
	}
	return browseName
}

func nextStartElement(dec *xml.Decoder) (xml.StartElement, error) {
	for {
		tok, err := dec.Token()
		if err != nil {
			return xml.StartElement{}, err
		}
		if start, ok := tok.(xml.StartElement); ok {
			return start, nil
		}
	}
}

// wrapXMLError converts an encoding/xml failure into a SyntaxError,
// keeping the line number when the decoder provides one.
func wrapXMLError(name string, err error) error {
	var syntax *xml.SyntaxError
	if errors.As(err, &syntax) {
		return &SyntaxError{Document: name, Line: syntax.Line, Detail: syntax.Msg}
	}
	return &SyntaxError{Document: name, Detail: err.Error()}
}
