package builder

import (
	"sync"

	"github.com/roach88/spacegen/internal/ir"
	"github.com/roach88/spacegen/internal/resolve"
	"github.com/roach88/spacegen/internal/schema"
)

// defaultWorkers bounds the reference-validation fan-out. Validation of
// disjoint reference shards is order-free; only error selection and the
// final canonical sort are ordered.
const defaultWorkers = 4

// Options configures a build.
type Options struct {
	// Base is an explicitly imported, already-built base model. It is
	// never mutated; references may resolve into it.
	Base *ir.NodeSet

	// Workers bounds parallel reference validation. Zero means default.
	Workers int
}

// Option mutates Options.
type Option func(*Options)

// WithBase imports base as the read-only model the documents extend.
func WithBase(base *ir.NodeSet) Option {
	return func(o *Options) { o.Base = base }
}

// WithWorkers sets the reference-validation worker count.
func WithWorkers(n int) Option {
	return func(o *Options) { o.Workers = n }
}

// Build assembles the ordered document list into a validated NodeSet.
//
// Stages, all fail-fast and whole:
//  1. document dependency graph (missing documents, cycles)
//  2. namespace table + identifier resolution
//  3. node construction (duplicates, attribute encodings)
//  4. reference validation (dangling references), sharded across
//     workers and merged before the canonical ordering step
//
// On any failure no NodeSet is returned: a broken schema never produces
// a broken address space.
func Build(docs []*schema.Document, opts ...Option) (*ir.NodeSet, error) {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	if o.Workers <= 0 {
		o.Workers = defaultWorkers
	}

	var baseNamespaces []string
	if o.Base != nil {
		baseNamespaces = o.Base.Namespaces
	}
	if err := ValidateDocumentGraph(docs, baseNamespaces); err != nil {
		return nil, err
	}

	// Seed the table with the base model's namespaces so indexes already
	// compiled into the base stay valid, then extend in first-declaration
	// order across the document list.
	tableDocs := docs
	if len(baseNamespaces) > 0 {
		seed := &schema.Document{NamespaceURIs: baseNamespaces}
		tableDocs = append([]*schema.Document{seed}, docs...)
	}
	table := resolve.BuildNamespaceTable(tableDocs)

	var ns *ir.NodeSet
	if o.Base != nil {
		ns = ir.NewExtensionSet(table.URIs(), o.Base)
	} else {
		ns = ir.NewNodeSet(table.URIs())
	}

	for _, doc := range docs {
		resolver, err := resolve.NewResolver(doc, table)
		if err != nil {
			return nil, err
		}
		resolved, err := resolver.Resolve()
		if err != nil {
			return nil, err
		}

		for _, rn := range resolved.Nodes {
			attrs, err := buildAttributes(doc.Name, rn)
			if err != nil {
				return nil, err
			}
			node := ir.Node{
				ID:          rn.ID,
				Class:       rn.Class,
				BrowseName:  rn.BrowseName,
				DisplayName: rn.DisplayName,
				Description: rn.Description,
				Attrs:       attrs,
			}
			if err := ns.AddNode(node, doc.Name); err != nil {
				return nil, err
			}
			for _, ref := range rn.Refs {
				ns.AddReference(ir.Reference{
					Source:    rn.ID,
					Type:      ref.Type,
					Target:    ref.Target,
					IsForward: ref.IsForward,
				})
			}
		}
	}

	if err := validateReferences(ns, o.Workers); err != nil {
		return nil, err
	}
	return ns, nil
}

// validateReferences checks referential integrity over disjoint shards of
// the canonically ordered reference list. Shard results merge into the
// error for the first reference in canonical order, so the reported
// failure is independent of scheduling.
func validateReferences(ns *ir.NodeSet, workers int) error {
	refs := ns.SortedReferences()
	if len(refs) == 0 {
		return nil
	}
	if workers > len(refs) {
		workers = len(refs)
	}

	type shardResult struct {
		index int // index of the failing reference, -1 if clean
		err   *DanglingReferenceError
	}

	results := make([]shardResult, workers)
	chunk := (len(refs) + workers - 1) / workers

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := min(lo+chunk, len(refs))
		wg.Add(1)
		go func(w, lo, hi int) {
			defer wg.Done()
			results[w] = shardResult{index: -1}
			for i := lo; i < hi; i++ {
				if err := checkReference(ns, refs[i]); err != nil {
					results[w] = shardResult{index: i, err: err}
					return
				}
			}
		}(w, lo, hi)
	}
	wg.Wait()

	first := shardResult{index: -1}
	for _, r := range results {
		if r.index >= 0 && (first.index < 0 || r.index < first.index) {
			first = r
		}
	}
	if first.index >= 0 {
		return first.err
	}
	return nil
}

func checkReference(ns *ir.NodeSet, ref ir.Reference) *DanglingReferenceError {
	if !ns.Has(ref.Source) {
		return &DanglingReferenceError{Reference: ref, Missing: ref.Source}
	}
	typeNode, ok := ns.Node(ref.Type)
	if !ok {
		return &DanglingReferenceError{Reference: ref, Missing: ref.Type}
	}
	if typeNode.Class != ir.ClassReferenceType {
		return &DanglingReferenceError{
			Reference: ref,
			Missing:   ref.Type,
			Detail:    "reference type is a " + typeNode.Class.String() + " node, not a ReferenceType",
		}
	}
	if !ns.Has(ref.Target) {
		return &DanglingReferenceError{Reference: ref, Missing: ref.Target}
	}
	return nil
}
