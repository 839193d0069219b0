package cli

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/spacegen/internal/ledger"
)

func generateProject(t *testing.T, manifestExtra string) (manifest, out string) {
	t.Helper()
	manifest = writeProject(t, testBaseXML, manifestExtra)
	_, _, err := execute("generate", manifest)
	require.NoError(t, err)
	return manifest, filepath.Join(filepath.Dir(manifest), "gen", "plant_gen.go")
}

func TestCheckPassesOnFreshOutput(t *testing.T) {
	manifest, _ := generateProject(t, "")

	stdout, _, err := execute("check", manifest)
	require.NoError(t, err)
	assert.Contains(t, stdout, "is up to date")
}

func TestCheckFailsOnEditedOutput(t *testing.T) {
	manifest, out := generateProject(t, "")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(out, append(data, []byte("\n// drift\n")...), 0o644))

	stdout, _, err := execute("check", manifest)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, "Error [E303]")
	assert.Contains(t, stdout, "- // drift")
}

func TestCheckMismatchJSONCarriesDiff(t *testing.T) {
	manifest, out := generateProject(t, "")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(out, append(data, []byte("\n// drift\n")...), 0o644))

	stdout, _, err := execute("--format", "json", "check", manifest)
	require.Error(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeMismatch, resp.Error.Code)
	details, ok := resp.Error.Details.(string)
	require.True(t, ok)
	assert.Contains(t, details, "- // drift")
}

func TestCheckMissingCommittedFileIsCommandError(t *testing.T) {
	manifest := writeProject(t, testBaseXML, "")

	stdout, _, err := execute("check", manifest)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stdout, "Error [E005]")
}

func TestCheckSchemaErrorIsFailure(t *testing.T) {
	manifest, _ := generateProject(t, "")

	// Break the schema after committing.
	require.NoError(t, os.WriteFile(
		filepath.Join(filepath.Dir(manifest), "base.xml"), []byte(brokenXML), 0o644))

	stdout, _, err := execute("check", manifest)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, "Error [E105]")
}

func TestCheckRecordsLedgerOutcomes(t *testing.T) {
	manifest, out := generateProject(t, "ledger: runs.db\n")
	ctx := context.Background()
	ledgerPath := filepath.Join(filepath.Dir(manifest), "runs.db")

	_, _, err := execute("check", manifest)
	require.NoError(t, err)

	l, err := ledger.Open(ledgerPath)
	require.NoError(t, err)
	run, ok, err := l.LastRun(ctx, manifest)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, ledger.OutcomeMatch, run.Outcome)
	require.NoError(t, l.Close())

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(out, append(data, '\n'), 0o644))
	_, _, _ = execute("check", manifest)

	l, err = ledger.Open(ledgerPath)
	require.NoError(t, err)
	defer l.Close()
	mismatches, err := l.RunsByOutcome(ctx, ledger.OutcomeMismatch, 0)
	require.NoError(t, err)
	assert.Len(t, mismatches, 1)
}
