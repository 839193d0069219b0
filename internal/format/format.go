// Package format canonicalizes emitted Go source through go/format,
// the same formatter gofmt runs. It is deterministic and idempotent,
// which is what makes byte-for-byte output comparison meaningful.
package format

import (
	"fmt"
	goformat "go/format"
)

// FormatterError reports source the formatter rejected. Since the
// emitter only produces syntactically valid Go, this points at an
// emitter defect, not at the input schema.
type FormatterError struct {
	Err error
}

func (e *FormatterError) Error() string {
	return fmt.Sprintf("formatter rejected generated source: %v", e.Err)
}

func (e *FormatterError) Unwrap() error { return e.Err }

// Source formats src as gofmt would.
func Source(src []byte) ([]byte, error) {
	out, err := goformat.Source(src)
	if err != nil {
		return nil, &FormatterError{Err: err}
	}
	return out, nil
}
