// Package config loads the generation manifest: the ordered list of
// schema documents plus output placement. The manifest is the only
// configuration surface; there are no environment variables.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DocumentRef names one schema document. Order in the manifest is the
// document order of the whole run; base models come first.
type DocumentRef struct {
	Path string `yaml:"path"`
}

// Manifest is the full run configuration.
type Manifest struct {
	// Documents are read in listed order.
	Documents []DocumentRef `yaml:"documents"`

	// Output is the generated file path. Required by generate and check;
	// validate runs without it.
	Output string `yaml:"output"`

	// Package is the emitted package name. Defaults to "addressspace".
	Package string `yaml:"package"`

	// Ledger is an optional SQLite path recording gate runs.
	Ledger string `yaml:"ledger"`
}

// Load reads and validates a manifest. Relative paths inside the
// manifest resolve against the manifest's own directory, so a run means
// the same thing regardless of the working directory it starts from.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var m Manifest
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}

	base := filepath.Dir(path)
	for i := range m.Documents {
		m.Documents[i].Path = resolve(base, m.Documents[i].Path)
	}
	m.Output = resolve(base, m.Output)
	m.Ledger = resolve(base, m.Ledger)

	if err := m.validate(path); err != nil {
		return nil, err
	}
	return &m, nil
}

func resolve(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

func (m *Manifest) validate(path string) error {
	if len(m.Documents) == 0 {
		return fmt.Errorf("manifest %s: no documents listed", path)
	}
	for i, d := range m.Documents {
		if d.Path == "" {
			return fmt.Errorf("manifest %s: documents[%d]: empty path", path, i)
		}
	}
	if m.Package == "" {
		m.Package = "addressspace"
	}
	return nil
}

// DocumentPaths returns the document paths in run order.
func (m *Manifest) DocumentPaths() []string {
	out := make([]string, len(m.Documents))
	for i, d := range m.Documents {
		out[i] = d.Path
	}
	return out
}
