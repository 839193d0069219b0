package schema

import "fmt"

// SyntaxError reports malformed schema input: unparsable identifiers,
// structurally invalid attribute encodings, or fields outside the format.
type SyntaxError struct {
	Document string
	Line     int // 0 when unknown
	Detail   string
}

func (e *SyntaxError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", e.Document, e.Line, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Document, e.Detail)
}

// MissingDocumentError reports an extension document whose required base
// model was not supplied in the document list.
type MissingDocumentError struct {
	Document    string // the extension document
	RequiredURI string // the model URI it requires
}

func (e *MissingDocumentError) Error() string {
	return fmt.Sprintf("%s: required model %q not supplied", e.Document, e.RequiredURI)
}

func syntaxErrorf(document string, line int, format string, args ...any) *SyntaxError {
	return &SyntaxError{Document: document, Line: line, Detail: fmt.Sprintf(format, args...)}
}
