package cli

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/spacegen/internal/ledger"
)

func TestGenerateWritesFormattedFile(t *testing.T) {
	manifest := writeProject(t, testBaseXML, "")

	stdout, _, err := execute("generate", manifest)
	require.NoError(t, err)
	assert.Contains(t, stdout, "wrote ")
	assert.Contains(t, stdout, "3 nodes")
	assert.Contains(t, stdout, "nodeset digest: ")

	out := filepath.Join(filepath.Dir(manifest), "gen", "plant_gen.go")
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "// Code generated by spacegen. DO NOT EDIT.\n"))
	assert.Contains(t, string(data), "package plant\n")
	assert.Contains(t, string(data), "func BuildAddressSpace() *AddressSpace {")
}

func TestGenerateJSONOutput(t *testing.T) {
	manifest := writeProject(t, testBaseXML, "")

	stdout, _, err := execute("--format", "json", "generate", manifest)
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Len(t, data["nodeset_digest"], 64)
	stats, ok := data["stats"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(3), stats["nodes"])
}

func TestGenerateToStdout(t *testing.T) {
	manifest := writeProject(t, testBaseXML, "")

	stdout, _, err := execute("generate", "-o", "-", manifest)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "// Code generated by spacegen. DO NOT EDIT.\n"))

	// Nothing written to the manifest's output path.
	_, statErr := os.Stat(filepath.Join(filepath.Dir(manifest), "gen", "plant_gen.go"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestGenerateDanglingReferenceFails(t *testing.T) {
	manifest := writeProject(t, brokenXML, "")

	stdout, _, err := execute("generate", manifest)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, "Error [E105]")
	assert.Contains(t, stdout, "i=9999")

	_, statErr := os.Stat(filepath.Join(filepath.Dir(manifest), "gen", "plant_gen.go"))
	assert.True(t, os.IsNotExist(statErr), "no partial output on failure")
}

func TestGenerateMissingManifestIsCommandError(t *testing.T) {
	stdout, _, err := execute("generate", filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stdout, "Error [E002]")
}

func TestGenerateRecordsLedgerRun(t *testing.T) {
	manifest := writeProject(t, testBaseXML, "ledger: runs.db\n")

	_, _, err := execute("generate", manifest)
	require.NoError(t, err)

	l, err := ledger.Open(filepath.Join(filepath.Dir(manifest), "runs.db"))
	require.NoError(t, err)
	defer l.Close()

	run, ok, err := l.LastRun(context.Background(), manifest)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, ledger.OutcomeGenerated, run.Outcome)
	assert.Len(t, run.NodeSetDigest, 64)
	assert.Len(t, run.SourceDigest, 64)
}

func TestGenerateIsRepeatable(t *testing.T) {
	manifest := writeProject(t, testBaseXML, "")
	out := filepath.Join(filepath.Dir(manifest), "gen", "plant_gen.go")

	_, _, err := execute("generate", manifest)
	require.NoError(t, err)
	first, err := os.ReadFile(out)
	require.NoError(t, err)

	_, _, err = execute("generate", manifest)
	require.NoError(t, err)
	second, err := os.ReadFile(out)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
