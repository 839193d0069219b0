package schema

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ReadDocument reads one schema document from disk, dispatching on the
// file extension (.xml or .json). The file handle is released on all
// exit paths.
func ReadDocument(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open schema document: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xml":
		return ReadXML(path, f)
	case ".json":
		return ReadJSON(path, f)
	default:
		return nil, syntaxErrorf(path, 0, "unsupported document extension %q (want .xml or .json)", filepath.Ext(path))
	}
}

// ReadDocuments reads the ordered document list, base first. Order is
// preserved; it drives deterministic namespace index assignment in the
// resolver.
func ReadDocuments(paths []string) ([]*Document, error) {
	docs := make([]*Document, 0, len(paths))
	for _, path := range paths {
		doc, err := ReadDocument(path)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}
