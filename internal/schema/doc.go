// Package schema reads node-set schema documents into a raw, unresolved
// form: raw node records with raw attribute values and raw reference
// tuples, in document order. Identifiers are left as written (aliases,
// document-local namespace indexes); resolution happens later.
//
// Two document shapes are accepted: NodeSet XML and a JSON form that is
// validated against an embedded CUE schema before decoding.
//
// Reading is a pure transformation of input bytes to raw records.
package schema
