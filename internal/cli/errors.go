package cli

import (
	"errors"

	"github.com/roach88/spacegen/internal/builder"
	"github.com/roach88/spacegen/internal/emit"
	"github.com/roach88/spacegen/internal/format"
	"github.com/roach88/spacegen/internal/gate"
	"github.com/roach88/spacegen/internal/ir"
	"github.com/roach88/spacegen/internal/resolve"
	"github.com/roach88/spacegen/internal/schema"
)

// Error codes for CLI operations.
const (
	// E0xx: command and I/O errors
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeManifest    = "E002" // Manifest load or validation error
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeWriteFailed = "E007" // File write error

	// E1xx: schema, resolution, and graph errors
	ErrCodeSyntax       = "E101" // Schema document syntax error
	ErrCodeMissingDoc   = "E102" // Required model has no document
	ErrCodeUnresolved   = "E103" // Unresolved identifier
	ErrCodeDuplicate    = "E104" // Duplicate NodeID
	ErrCodeDangling     = "E105" // Dangling reference
	ErrCodeCycle        = "E106" // Cyclic model requirement

	// E3xx: emission and gate errors
	ErrCodeUnsupported = "E301" // Unsupported attribute shape
	ErrCodeFormatter   = "E302" // Formatter rejected generated source
	ErrCodeMismatch    = "E303" // Committed output differs from fresh generation
)

// classifyError maps a pipeline error to its CLI error code. Typed
// errors keep their identity all the way up; only here do they become
// operator-facing codes.
func classifyError(err error) string {
	var (
		synErr  *schema.SyntaxError
		mdErr   *schema.MissingDocumentError
		uiErr   *resolve.UnresolvedIdentifierError
		dupErr  *ir.DuplicateNodeError
		dngErr  *builder.DanglingReferenceError
		cycErr  *builder.CycleError
		attrErr *emit.UnsupportedAttributeError
		fmtErr  *format.FormatterError
		mmErr   *gate.MismatchError
	)
	switch {
	case errors.As(err, &synErr):
		return ErrCodeSyntax
	case errors.As(err, &mdErr):
		return ErrCodeMissingDoc
	case errors.As(err, &uiErr):
		return ErrCodeUnresolved
	case errors.As(err, &dupErr):
		return ErrCodeDuplicate
	case errors.As(err, &dngErr):
		return ErrCodeDangling
	case errors.As(err, &cycErr):
		return ErrCodeCycle
	case errors.As(err, &attrErr):
		return ErrCodeUnsupported
	case errors.As(err, &fmtErr):
		return ErrCodeFormatter
	case errors.As(err, &mmErr):
		return ErrCodeMismatch
	default:
		return ErrCodeGeneric
	}
}
