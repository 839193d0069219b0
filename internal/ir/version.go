package ir

// Version constants for the IR and the generator.
const (
	// SortKeyVersion versions the canonical ordering convention:
	// nodes by (NamespaceIndex, IDType ordinal, value), references by
	// (Source, Type, Target, forward first), namespace indexes assigned
	// by first declaration across the ordered document list.
	//
	// Any change to this convention changes every generated file and
	// must be treated as a breaking change by the determinism gate.
	SortKeyVersion = "1"

	// GeneratorVersion is the spacegen generator version.
	GeneratorVersion = "0.1.0"
)
