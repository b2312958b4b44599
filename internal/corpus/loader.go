package corpus

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/mjubilee1/Ai-Agent-Demo/internal/models"
)

// Documents expands the manifest into chunked documents. Chunk ids are
// "<id>-<n>".
func (m *Manifest) Documents() ([]models.Document, error) {
	var docs []models.Document
	for _, e := range m.Documents {
		source := e.Source
		if source == "" {
			source = e.ID
		}
		docs = append(docs, chunkDocs(e.ID, source, e.Text, m.ChunkSize)...)
	}

	files, err := m.files()
	if err != nil {
		return nil, err
	}
	for _, f := range files {
		fileDocs, err := loadFile(f, m.baseDir, m.ChunkSize)
		if err != nil {
			return nil, err
		}
		docs = append(docs, fileDocs...)
	}
	return docs, nil
}

func (m *Manifest) files() ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	for _, pattern := range m.Globs {
		abs := pattern
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(m.baseDir, pattern)
		}
		matches, err := doublestar.FilepathGlob(abs, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", pattern, err)
		}
		for _, match := range matches {
			if !seen[match] {
				seen[match] = true
				files = append(files, match)
			}
		}
	}
	sort.Strings(files)
	return files, nil
}

func loadFile(path, baseDir string, size int) ([]models.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	source, err := filepath.Rel(baseDir, path)
	if err != nil {
		source = path
	}
	source = filepath.ToSlash(source)

	body, meta := splitFrontmatter(string(data))
	if s, ok := meta["source"].(string); ok && s != "" {
		source = s
	}
	id := strings.TrimSuffix(source, filepath.Ext(source))
	if s, ok := meta["id"].(string); ok && s != "" {
		id = s
	}
	return chunkDocs(id, source, body, size), nil
}

func chunkDocs(id, source, text string, size int) []models.Document {
	chunks := Chunk(text, size)
	docs := make([]models.Document, 0, len(chunks))
	for i, c := range chunks {
		docs = append(docs, models.Document{
			ID:     fmt.Sprintf("%s-%d", id, i),
			Text:   c,
			Source: source,
		})
	}
	return docs
}

// splitFrontmatter separates a leading YAML frontmatter block from the body.
// Malformed frontmatter is treated as body text.
func splitFrontmatter(content string) (string, map[string]any) {
	if !strings.HasPrefix(content, "---\n") && !strings.HasPrefix(content, "---\r\n") {
		return content, nil
	}

	rest := content[strings.Index(content, "\n")+1:]
	end := strings.Index(rest, "\n---")
	if end == -1 {
		return content, nil
	}

	var meta map[string]any
	if err := yaml.Unmarshal([]byte(rest[:end]), &meta); err != nil {
		return content, nil
	}

	body := rest[end+len("\n---"):]
	return strings.TrimLeft(body, "\r\n"), meta
}
