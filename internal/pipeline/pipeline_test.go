package pipeline

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/spacegen/internal/builder"
	"github.com/roach88/spacegen/internal/config"
)

const baseXML = `<?xml version="1.0" encoding="utf-8"?>
<NodeSet>
  <NamespaceUris>
    <Uri>http://opcfoundation.org/UA/</Uri>
  </NamespaceUris>
  <Models>
    <Model Uri="http://opcfoundation.org/UA/"/>
  </Models>
  <ReferenceType NodeId="i=35" BrowseName="Organizes" InverseName="OrganizedBy"/>
  <ReferenceType NodeId="i=47" BrowseName="HasComponent" InverseName="ComponentOf"/>
  <Object NodeId="i=85" BrowseName="Objects"/>
  <DataType NodeId="i=11" BrowseName="Double"/>
</NodeSet>`

const devicesJSON = `{
  "namespaceUris": ["http://opcfoundation.org/UA/", "urn:example:devices"],
  "models": [{"uri": "urn:example:devices", "requiredModels": ["http://opcfoundation.org/UA/"]}],
  "aliases": {"Organizes": "i=35"},
  "nodes": [
    {
      "class": "Object",
      "nodeId": "ns=1;i=5001",
      "browseName": "1:Device",
      "references": [{"type": "Organizes", "target": "i=85", "isForward": false}]
    },
    {
      "class": "Variable",
      "nodeId": "ns=1;i=5002",
      "browseName": "1:Speed",
      "attributes": {"DataType": "i=11", "AccessLevel": "3"},
      "references": [{"type": "i=47", "target": "ns=1;i=5001", "isForward": false}]
    }
  ]
}`

// writeFixtures lays a manifest plus mixed-dialect documents into a
// temp dir and loads the manifest.
func writeFixtures(t *testing.T, deviceBody string) *config.Manifest {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "base.xml"), []byte(baseXML), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "devices.json"), []byte(deviceBody), 0o644))
	manifest := `documents:
  - path: base.xml
  - path: devices.json
output: gen/addressspace.go
package: devices
`
	path := filepath.Join(dir, "spacegen.yaml")
	require.NoError(t, os.WriteFile(path, []byte(manifest), 0o644))

	m, err := config.Load(path)
	require.NoError(t, err)
	return m
}

func TestRunGeneratesFormattedSource(t *testing.T) {
	m := writeFixtures(t, devicesJSON)
	res, err := Run(m)
	require.NoError(t, err)

	src := string(res.Source)
	assert.Contains(t, src, "// Code generated by spacegen. DO NOT EDIT.")
	assert.Contains(t, src, "package devices\n")
	assert.Contains(t, src, "func BuildAddressSpace() *AddressSpace {")
	assert.Contains(t, src, `"urn:example:devices"`)
	assert.Contains(t, src, "Node_1_5001")

	assert.Len(t, res.NodeSetDigest, 64)
	assert.Len(t, res.SourceDigest, 64)
	assert.NotEqual(t, res.NodeSetDigest, res.SourceDigest)

	assert.Equal(t, Stats{Documents: 2, Namespaces: 2, Nodes: 6, References: 2}, res.Stats)
}

func TestRunIsByteDeterministic(t *testing.T) {
	m := writeFixtures(t, devicesJSON)

	first, err := Run(m)
	require.NoError(t, err)
	second, err := Run(m)
	require.NoError(t, err)

	assert.True(t, bytes.Equal(first.Source, second.Source))
	assert.Equal(t, first.NodeSetDigest, second.NodeSetDigest)
	assert.Equal(t, first.SourceDigest, second.SourceDigest)
}

func TestRunFailsWholeOnDanglingReference(t *testing.T) {
	broken := `{
  "namespaceUris": ["http://opcfoundation.org/UA/", "urn:example:devices"],
  "models": [{"uri": "urn:example:devices", "requiredModels": ["http://opcfoundation.org/UA/"]}],
  "nodes": [
    {
      "class": "Object",
      "nodeId": "ns=1;i=5001",
      "browseName": "1:Device",
      "references": [{"type": "i=35", "target": "ns=1;i=9999"}]
    }
  ]
}`
	m := writeFixtures(t, broken)
	res, err := Run(m)
	var drErr *builder.DanglingReferenceError
	require.ErrorAs(t, err, &drErr)
	assert.Nil(t, res, "no partial output on failure")
}

func TestValidateReportsWithoutEmitting(t *testing.T) {
	m := writeFixtures(t, devicesJSON)
	rep, err := Validate(m)
	require.NoError(t, err)
	assert.Equal(t, Stats{Documents: 2, Namespaces: 2, Nodes: 6, References: 2}, rep.Stats)

	res, err := Run(m)
	require.NoError(t, err)
	assert.Equal(t, res.NodeSetDigest, rep.NodeSetDigest, "validate and generate agree on the IR digest")
}
