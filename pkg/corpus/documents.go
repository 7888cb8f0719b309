package corpus

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Document is one raw file destined for chunking and embedding.
type Document struct {
	Path    string
	Content string
}

const maxDocumentSize = 100 * 1024 * 1024

var allowedExtensions = map[string]bool{
	".txt":  true,
	".md":   true,
	".json": true,
}

// LoadDocuments walks dir and reads every supported text file. Unreadable
// or oversized files are skipped, not fatal; the builder works with
// whatever the directory offers.
func LoadDocuments(dir string) ([]Document, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("docs dir %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("docs path %s is not a directory", dir)
	}

	var docs []Document
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !allowedExtensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		if fi, err := d.Info(); err != nil || fi.Size() > maxDocumentSize {
			return nil
		}

		raw, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		if len(strings.TrimSpace(string(raw))) == 0 {
			return nil
		}

		docs = append(docs, Document{Path: path, Content: string(raw)})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan docs dir %s: %w", dir, err)
	}

	return docs, nil
}
