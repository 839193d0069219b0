// Package gate implements the CI determinism check: regenerate from the
// schema documents and byte-compare against the committed generated
// file. Equal means the commit is honest; a difference means either the
// schema changed without regeneration or the generator lost determinism.
package gate

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/roach88/spacegen/internal/config"
	"github.com/roach88/spacegen/internal/pipeline"
)

// MismatchError reports a committed file that does not match a fresh
// generation, with a line diff for the operator.
type MismatchError struct {
	Path string
	Diff string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("%s differs from freshly generated output (stale commit or schema change without regeneration)", e.Path)
}

// Check regenerates from the manifest and compares against the file at
// committedPath. A missing committed file is an ordinary error, not a
// mismatch: the gate can only judge a commit that exists.
//
// On mismatch the pipeline result is still returned next to the
// *MismatchError so callers can record digests of the fresh run.
func Check(m *config.Manifest, committedPath string) (*pipeline.Result, error) {
	res, err := pipeline.Run(m)
	if err != nil {
		return nil, err
	}

	committed, err := os.ReadFile(committedPath)
	if err != nil {
		return nil, fmt.Errorf("read committed output: %w", err)
	}
	if bytes.Equal(committed, res.Source) {
		return res, nil
	}
	return res, &MismatchError{
		Path: committedPath,
		Diff: lineDiff(committed, res.Source),
	}
}

// lineDiff renders a line-oriented diff, committed on the left, fresh
// generation on the right.
func lineDiff(committed, fresh []byte) string {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(string(committed), string(fresh))
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var sb strings.Builder
	for _, d := range diffs {
		prefix := "  "
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "- "
		case diffmatchpatch.DiffInsert:
			prefix = "+ "
		}
		for _, line := range strings.Split(strings.TrimSuffix(d.Text, "\n"), "\n") {
			sb.WriteString(prefix)
			sb.WriteString(line)
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
