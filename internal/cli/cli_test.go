package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const testBaseXML = `<?xml version="1.0" encoding="utf-8"?>
<NodeSet>
  <NamespaceUris>
    <Uri>urn:test:base</Uri>
  </NamespaceUris>
  <Models>
    <Model Uri="urn:test:base"/>
  </Models>
  <ReferenceType NodeId="i=35" BrowseName="Organizes" InverseName="OrganizedBy"/>
  <Object NodeId="i=85" BrowseName="Objects"/>
  <Object NodeId="i=100" BrowseName="Plant">
    <References>
      <Reference Type="i=35" IsForward="false">i=85</Reference>
    </References>
  </Object>
</NodeSet>`

// brokenXML has a reference to a node that does not exist.
const brokenXML = `<NodeSet>
  <NamespaceUris><Uri>urn:test:base</Uri></NamespaceUris>
  <Models><Model Uri="urn:test:base"/></Models>
  <ReferenceType NodeId="i=35" BrowseName="Organizes"/>
  <Object NodeId="i=100" BrowseName="Plant">
    <References><Reference Type="i=35">i=9999</Reference></References>
  </Object>
</NodeSet>`

// writeProject lays a manifest and one schema document into a temp dir
// and returns the manifest path.
func writeProject(t *testing.T, docBody, manifestExtra string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "base.xml"), []byte(docBody), 0o644))
	manifest := `documents:
  - path: base.xml
output: gen/plant_gen.go
package: plant
` + manifestExtra
	path := filepath.Join(dir, "spacegen.yaml")
	require.NoError(t, os.WriteFile(path, []byte(manifest), 0o644))
	return path
}

// execute runs the CLI with args and captures stdout and stderr.
func execute(args ...string) (stdout, stderr string, err error) {
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}
