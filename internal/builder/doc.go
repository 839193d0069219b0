// Package builder assembles resolved schema documents into the
// Address-Space IR and validates its invariants: referential integrity
// and NodeID uniqueness. All validation failures are fatal to the run;
// no partial IR is ever returned.
package builder
