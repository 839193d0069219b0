package builder

import (
	"slices"

	"github.com/roach88/spacegen/internal/schema"
)

// modelGraph maps model URI -> required model URIs.
type modelGraph map[string][]string

// ValidateDocumentGraph checks the explicit base → extension dependency
// graph across the supplied documents before any node resolution begins.
// Every required model must be defined by a supplied document (or already
// present among the base namespaces), and the requirements must form a DAG.
func ValidateDocumentGraph(docs []*schema.Document, baseNamespaces []string) error {
	defined := make(map[string]bool)
	for _, doc := range docs {
		for _, m := range doc.Models {
			defined[m.URI] = true
		}
	}
	imported := make(map[string]bool, len(baseNamespaces))
	for _, uri := range baseNamespaces {
		imported[uri] = true
	}

	graph := make(modelGraph)
	for _, doc := range docs {
		for _, m := range doc.Models {
			if graph[m.URI] == nil {
				graph[m.URI] = []string{}
			}
			for _, req := range m.RequiredModels {
				if !defined[req] && !imported[req] {
					return &schema.MissingDocumentError{Document: doc.Name, RequiredURI: req}
				}
				if defined[req] {
					graph[m.URI] = append(graph[m.URI], req)
				}
			}
		}
	}

	for _, scc := range tarjanSCC(graph) {
		if len(scc) > 1 || (len(scc) == 1 && hasSelfLoop(scc[0], graph)) {
			path := append(scc, scc[0])
			return &CycleError{Path: path}
		}
	}
	return nil
}

func hasSelfLoop(node string, graph modelGraph) bool {
	for _, neighbor := range graph[node] {
		if neighbor == node {
			return true
		}
	}
	return false
}

// tarjanSCC finds strongly connected components of the model graph.
// Nodes are visited in sorted order so the reported cycle path is
// deterministic regardless of map iteration.
func tarjanSCC(graph modelGraph) [][]string {
	var (
		index   = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range graph[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	for _, node := range sortedKeys(graph) {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}
	return sccs
}

// sortedKeys returns the graph's keys in byte order; only used to make
// traversal (and therefore cycle reporting) deterministic.
func sortedKeys(graph modelGraph) []string {
	keys := make([]string, 0, len(graph))
	for k := range graph {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
