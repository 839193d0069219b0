// Package ir defines the Address-Space Intermediate Representation: nodes,
// typed references, and the resolved NodeSet graph, together with the
// canonical ordering and canonical JSON serialization that make generated
// output byte-reproducible.
//
// The IR is built fresh on every generator invocation and has no persistence
// of its own. Its only durable projection is the generated source text.
package ir
