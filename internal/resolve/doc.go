// Package resolve maps every raw identifier in a schema document (aliases,
// browse names, document-local namespace indexes) to a canonical ir.NodeID.
//
// The namespace table is an explicit value built once from the ordered
// document list and threaded through later stages, never ambient state.
// Index assignment is deterministic: first declaration across the ordered
// list wins, independent of any parse order within a document.
package resolve
