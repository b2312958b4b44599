// Package corpus loads seed documents for the retrieval index from a YAML
// manifest and markdown files.
package corpus

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultChunkSize is the target chunk length in characters.
const DefaultChunkSize = 3200

// Manifest lists the documents to index.
type Manifest struct {
	// ChunkSize bounds chunk length in characters. Zero means DefaultChunkSize.
	ChunkSize int `yaml:"chunk_size"`

	// Documents are inline texts.
	Documents []Entry `yaml:"documents"`

	// Globs match markdown or text files relative to the manifest directory.
	Globs []string `yaml:"globs"`

	// baseDir is where globs are resolved from.
	baseDir string
}

// Entry is one inline document.
type Entry struct {
	ID     string `yaml:"id"`
	Source string `yaml:"source"`
	Text   string `yaml:"text"`
}

// LoadManifest reads a manifest file. Globs resolve relative to its directory.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	m, err := ParseManifest(data)
	if err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	m.baseDir = filepath.Dir(path)
	return m, nil
}

// ParseManifest decodes manifest YAML. Globs resolve from the working directory.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	if m.ChunkSize <= 0 {
		m.ChunkSize = DefaultChunkSize
	}
	m.baseDir = "."
	return &m, nil
}

func (m *Manifest) validate() error {
	if len(m.Documents) == 0 && len(m.Globs) == 0 {
		return fmt.Errorf("manifest has no documents or globs")
	}
	seen := make(map[string]bool, len(m.Documents))
	for i, d := range m.Documents {
		if d.ID == "" {
			return fmt.Errorf("documents[%d]: id is required", i)
		}
		if seen[d.ID] {
			return fmt.Errorf("documents[%d]: duplicate id %q", i, d.ID)
		}
		seen[d.ID] = true
		if d.Text == "" {
			return fmt.Errorf("documents[%d]: text is required", i)
		}
	}
	return nil
}
