package schema

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const devicesJSON = `{
  "namespaceUris": ["http://opcfoundation.org/UA/", "urn:example:devices"],
  "models": [{"uri": "urn:example:devices", "requiredModels": ["http://opcfoundation.org/UA/"]}],
  "aliases": {"HasComponent": "i=47"},
  "nodes": [
    {
      "class": "Object",
      "nodeId": "ns=1;i=5001",
      "browseName": "1:Device",
      "displayName": "Device",
      "attributes": {"EventNotifier": "1"},
      "references": [{"type": "i=35", "target": "i=85", "isForward": false}]
    },
    {
      "class": "Variable",
      "nodeId": "ns=1;i=5002",
      "browseName": "1:Speed",
      "attributes": {"DataType": "i=11", "ValueRank": "-1"},
      "references": [{"type": "HasComponent", "target": "ns=1;i=5001", "isForward": false}]
    }
  ]
}`

func TestReadJSON(t *testing.T) {
	doc, err := ReadJSON("devices.json", strings.NewReader(devicesJSON))
	require.NoError(t, err)

	assert.Equal(t, []string{"http://opcfoundation.org/UA/", "urn:example:devices"}, doc.NamespaceURIs)
	require.Len(t, doc.Models, 1)
	assert.Equal(t, "urn:example:devices", doc.Models[0].URI)
	assert.Equal(t, "i=47", doc.Aliases["HasComponent"])

	require.Len(t, doc.Nodes, 2)
	assert.Equal(t, "Object", doc.Nodes[0].Class)
	assert.Equal(t, "ns=1;i=5001", doc.Nodes[0].NodeID)
	assert.Equal(t, "Device", doc.Nodes[0].DisplayName)
	require.Len(t, doc.Nodes[0].Refs, 1)
	assert.False(t, doc.Nodes[0].Refs[0].IsForward)

	assert.Equal(t, "Speed", doc.Nodes[1].DisplayName, "display name defaults to browse name local part")
	assert.Equal(t, "-1", doc.Nodes[1].Attrs["ValueRank"])
}

func TestReadJSONEquivalentToXML(t *testing.T) {
	fromXML, err := ReadXML("doc", strings.NewReader(devicesXML))
	require.NoError(t, err)
	fromJSON, err := ReadJSON("doc", strings.NewReader(`{
  "namespaceUris": ["http://opcfoundation.org/UA/", "urn:example:devices"],
  "models": [{"uri": "urn:example:devices", "requiredModels": ["http://opcfoundation.org/UA/"]}],
  "aliases": {"HasComponent": "i=47", "Organizes": "i=35"},
  "nodes": [
    {
      "class": "Object",
      "nodeId": "ns=1;i=5001",
      "browseName": "1:Device",
      "displayName": "Device",
      "description": "A device instance",
      "attributes": {"EventNotifier": "1"},
      "references": [{"type": "Organizes", "target": "i=85", "isForward": false}]
    },
    {
      "class": "Variable",
      "nodeId": "ns=1;i=5002",
      "browseName": "1:Speed",
      "attributes": {"DataType": "i=11", "ValueRank": "-1", "AccessLevel": "3"},
      "references": [{"type": "HasComponent", "target": "ns=1;i=5001", "isForward": false}]
    }
  ]
}`))
	require.NoError(t, err)
	assert.Equal(t, fromXML.Nodes, fromJSON.Nodes, "both shapes produce identical raw records")
	assert.Equal(t, fromXML.NamespaceURIs, fromJSON.NamespaceURIs)
	assert.Equal(t, fromXML.Models, fromJSON.Models)
}

func TestReadJSONErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"not_json", `{{{`},
		{"unknown_top_level_field", `{"namespaceUris":["urn:a"],"models":[{"uri":"urn:a"}],"extra":1}`},
		{"unknown_node_field", `{"namespaceUris":["urn:a"],"models":[{"uri":"urn:a"}],"nodes":[{"class":"Object","nodeId":"i=1","browseName":"A","color":"red"}]}`},
		{"bad_class", `{"namespaceUris":["urn:a"],"models":[{"uri":"urn:a"}],"nodes":[{"class":"Widget","nodeId":"i=1","browseName":"A"}]}`},
		{"numeric_node_id", `{"namespaceUris":["urn:a"],"models":[{"uri":"urn:a"}],"nodes":[{"class":"Object","nodeId":5,"browseName":"A"}]}`},
		{"unknown_attribute", `{"namespaceUris":["urn:a"],"models":[{"uri":"urn:a"}],"nodes":[{"class":"Object","nodeId":"i=1","browseName":"A","attributes":{"DataType":"i=11"}}]}`},
		{"no_models", `{"namespaceUris":["urn:a"],"models":[]}`},
		{"no_namespaces", `{"namespaceUris":[],"models":[{"uri":"urn:a"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadJSON("bad.json", strings.NewReader(tt.input))
			var syntaxErr *SyntaxError
			require.ErrorAs(t, err, &syntaxErr)
			assert.Equal(t, "bad.json", syntaxErr.Document)
		})
	}
}

func TestReadDocumentDispatch(t *testing.T) {
	dir := t.TempDir()

	xmlPath := filepath.Join(dir, "devices.xml")
	require.NoError(t, os.WriteFile(xmlPath, []byte(devicesXML), 0o644))
	jsonPath := filepath.Join(dir, "devices.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(devicesJSON), 0o644))
	yamlPath := filepath.Join(dir, "devices.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("nope"), 0o644))

	fromXML, err := ReadDocument(xmlPath)
	require.NoError(t, err)
	assert.Len(t, fromXML.Nodes, 2)

	fromJSON, err := ReadDocument(jsonPath)
	require.NoError(t, err)
	assert.Len(t, fromJSON.Nodes, 2)

	_, err = ReadDocument(yamlPath)
	var syntaxErr *SyntaxError
	require.ErrorAs(t, err, &syntaxErr)
	assert.Contains(t, err.Error(), "unsupported document extension")

	_, err = ReadDocument(filepath.Join(dir, "missing.xml"))
	assert.Error(t, err)

	docs, err := ReadDocuments([]string{xmlPath, jsonPath})
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, xmlPath, docs[0].Name)
}
