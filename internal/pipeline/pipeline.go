// Package pipeline runs the whole generation sequence: read documents,
// resolve identifiers, build and validate the graph, emit source, format
// it. One run, one output; there is no incremental or watch mode.
package pipeline

import (
	"github.com/roach88/spacegen/internal/builder"
	"github.com/roach88/spacegen/internal/config"
	"github.com/roach88/spacegen/internal/emit"
	"github.com/roach88/spacegen/internal/format"
	"github.com/roach88/spacegen/internal/ir"
	"github.com/roach88/spacegen/internal/schema"
)

// Stats summarizes a run for operator output and the run ledger.
type Stats struct {
	Documents  int `json:"documents"`
	Namespaces int `json:"namespaces"`
	Nodes      int `json:"nodes"`
	References int `json:"references"`
}

// Result is a successful generation run.
type Result struct {
	// Source is the formatted generated file, ready to write.
	Source []byte

	// NodeSetDigest is the content digest of the canonical IR.
	NodeSetDigest string

	// SourceDigest is the content digest of Source.
	SourceDigest string

	Stats Stats
}

// Run executes the full pipeline for the manifest. Any stage failure
// aborts the run with no output; a broken schema never produces a
// partially generated file.
func Run(m *config.Manifest) (*Result, error) {
	ns, err := buildSet(m)
	if err != nil {
		return nil, err
	}

	raw, err := emit.Emit(ns, emit.Options{PackageName: m.Package})
	if err != nil {
		return nil, err
	}
	src, err := format.Source(raw)
	if err != nil {
		return nil, err
	}

	digest, err := ir.Digest(ns)
	if err != nil {
		return nil, err
	}
	return &Result{
		Source:        src,
		NodeSetDigest: digest,
		SourceDigest:  ir.SourceDigest(src),
		Stats:         stats(m, ns),
	}, nil
}

// Report is the outcome of a validation-only run.
type Report struct {
	NodeSetDigest string `json:"nodeset_digest"`
	Stats         Stats  `json:"stats"`
}

// Validate runs read, resolve, and build without emitting anything.
func Validate(m *config.Manifest) (*Report, error) {
	ns, err := buildSet(m)
	if err != nil {
		return nil, err
	}
	digest, err := ir.Digest(ns)
	if err != nil {
		return nil, err
	}
	return &Report{NodeSetDigest: digest, Stats: stats(m, ns)}, nil
}

func buildSet(m *config.Manifest) (*ir.NodeSet, error) {
	docs, err := schema.ReadDocuments(m.DocumentPaths())
	if err != nil {
		return nil, err
	}
	return builder.Build(docs)
}

func stats(m *config.Manifest, ns *ir.NodeSet) Stats {
	return Stats{
		Documents:  len(m.Documents),
		Namespaces: len(ns.Namespaces),
		Nodes:      ns.Len(),
		References: len(ns.SortedReferences()),
	}
}
