package schema

// Document is one node-set schema document in raw, unresolved form.
// Node order is document order; canonical ordering is a later stage.
type Document struct {
	// Name identifies the document in diagnostics (usually the file path).
	Name string

	// NamespaceURIs are the namespaces declared by this document, in
	// declaration order. Index positions are document-local; the resolver
	// assigns global indexes.
	NamespaceURIs []string

	// Models declares the information models this document defines and
	// the models those require (the base → extension dependency edges).
	Models []Model

	// Aliases maps a symbolic name to a raw node id string.
	Aliases map[string]string

	// Nodes are the raw node records in document order.
	Nodes []RawNode
}

// Model declares one information model and its requirements.
type Model struct {
	URI            string
	RequiredModels []string
}

// RawNode is an unresolved node record. All identifiers are raw strings
// as written in the document.
type RawNode struct {
	Class       string            // one of the eight node class names
	NodeID      string            // raw id, document-local namespace indexes
	BrowseName  string            // "N:Name" with document-local index
	DisplayName string
	Description string

	// Attrs holds class-specific attribute values as raw strings,
	// keyed by attribute name. Unknown names are rejected at read time.
	Attrs map[string]string

	// Refs are the references declared on this node.
	Refs []RawReference
}

// RawReference is an unresolved reference tuple. Type may be an alias.
type RawReference struct {
	Type      string
	Target    string
	IsForward bool
}

// allowedAttrs is the closed attribute-name set per node class. Anything
// outside this set in a document is a syntax error, not a silent drop.
var allowedAttrs = map[string]map[string]bool{
	"Object":        {"EventNotifier": true},
	"Variable":      {"DataType": true, "ValueRank": true, "ArrayDimensions": true, "AccessLevel": true},
	"Method":        {"Executable": true, "UserExecutable": true},
	"ObjectType":    {"IsAbstract": true},
	"VariableType":  {"DataType": true, "ValueRank": true, "IsAbstract": true},
	"ReferenceType": {"IsAbstract": true, "Symmetric": true, "InverseName": true},
	"DataType":      {"IsAbstract": true},
	"View":          {"ContainsNoLoops": true, "EventNotifier": true},
}

// nodeClassNames lists the accepted class element names.
var nodeClassNames = map[string]bool{
	"Object": true, "Variable": true, "Method": true, "ObjectType": true,
	"VariableType": true, "ReferenceType": true, "DataType": true, "View": true,
}
