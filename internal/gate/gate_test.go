package gate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/spacegen/internal/config"
	"github.com/roach88/spacegen/internal/pipeline"
)

const plantXML = `<?xml version="1.0" encoding="utf-8"?>
<NodeSet>
  <NamespaceUris>
    <Uri>urn:example:plant</Uri>
  </NamespaceUris>
  <Models>
    <Model Uri="urn:example:plant"/>
  </Models>
  <ReferenceType NodeId="i=35" BrowseName="Organizes"/>
  <Object NodeId="i=85" BrowseName="Objects"/>
  <Object NodeId="ns=0;i=100" BrowseName="Plant">
    <References>
      <Reference Type="i=35" IsForward="false">i=85</Reference>
    </References>
  </Object>
</NodeSet>`

func setup(t *testing.T) (*config.Manifest, string) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "plant.xml"), []byte(plantXML), 0o644))
	manifest := `documents:
  - path: plant.xml
output: plant_gen.go
package: plant
`
	path := filepath.Join(dir, "spacegen.yaml")
	require.NoError(t, os.WriteFile(path, []byte(manifest), 0o644))
	m, err := config.Load(path)
	require.NoError(t, err)
	return m, m.Output
}

func commit(t *testing.T, m *config.Manifest, out string) *pipeline.Result {
	t.Helper()
	res, err := pipeline.Run(m)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(out, res.Source, 0o644))
	return res
}

func TestCheckPassesOnFreshCommit(t *testing.T) {
	m, out := setup(t)
	committed := commit(t, m, out)

	res, err := Check(m, out)
	require.NoError(t, err)
	assert.Equal(t, committed.SourceDigest, res.SourceDigest)
}

func TestCheckFailsOnStaleCommit(t *testing.T) {
	m, out := setup(t)
	res := commit(t, m, out)

	stale := append([]byte(nil), res.Source...)
	stale = append(stale, []byte("\n// local edit\n")...)
	require.NoError(t, os.WriteFile(out, stale, 0o644))

	fresh, err := Check(m, out)
	var mmErr *MismatchError
	require.ErrorAs(t, err, &mmErr)
	assert.Equal(t, out, mmErr.Path)
	assert.Contains(t, mmErr.Diff, "- // local edit")
	require.NotNil(t, fresh, "mismatch still carries the fresh run for the ledger")
	assert.Equal(t, res.SourceDigest, fresh.SourceDigest)
}

func TestCheckMissingCommitIsNotAMismatch(t *testing.T) {
	m, out := setup(t)

	_, err := Check(m, out)
	require.Error(t, err)
	var mmErr *MismatchError
	assert.NotErrorAs(t, err, &mmErr)
	assert.Contains(t, err.Error(), "read committed output")
}

func TestCheckPropagatesPipelineFailure(t *testing.T) {
	m, out := setup(t)
	commit(t, m, out)

	broken := []byte(`<NodeSet>
  <NamespaceUris><Uri>urn:example:plant</Uri></NamespaceUris>
  <Models><Model Uri="urn:example:plant"/></Models>
  <Object NodeId="i=1" BrowseName="A">
    <References><Reference Type="i=35">i=9999</Reference></References>
  </Object>
</NodeSet>`)
	require.NoError(t, os.WriteFile(m.Documents[0].Path, broken, 0o644))

	_, err := Check(m, out)
	require.Error(t, err)
	var mmErr *MismatchError
	assert.NotErrorAs(t, err, &mmErr)
}
