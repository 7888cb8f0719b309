// Package corpus loads the operator documentation set: the flattened
// metadata text consumed by the full-text fallback tier, and the raw
// document files consumed by the embedding builder.
package corpus

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"ai-docs-assistant-be/internal/pkg/logger"
)

// Corpus is one loaded snapshot of the flattened text. Loaded is true
// whenever a candidate file was read, even if its content is empty; the
// resolver uses the flag to tell "no data at all" from "data with no
// match".
type Corpus struct {
	Text         string
	Path         string
	Loaded       bool
	LoadDuration time.Duration
	LoadedAt     time.Time
}

// Store probes a fixed list of candidate paths and keeps the most recent
// snapshot. Reload swaps the snapshot wholesale; readers always see a
// complete one.
type Store struct {
	primaryPath string
	docsDir     string
	logger      logger.ILogger

	mu      sync.RWMutex
	current Corpus
}

func NewStore(primaryPath, docsDir string, log logger.ILogger) *Store {
	return &Store{
		primaryPath: primaryPath,
		docsDir:     docsDir,
		logger:      log,
	}
}

func (s *Store) candidates() []string {
	paths := []string{}
	if s.primaryPath != "" {
		paths = append(paths, s.primaryPath)
	}
	return append(paths,
		filepath.Join(s.docsDir, "sample_bucket_metadata_converted.txt"),
		filepath.Join(s.docsDir, "bucket_metadata.txt"),
		filepath.Join(s.docsDir, "metadata.txt"),
	)
}

// Load probes the candidates in order and swaps in the first readable
// file. When none is readable the snapshot stays unloaded, which the
// resolver reports as no_data.
func (s *Store) Load() Corpus {
	start := time.Now()

	for _, path := range s.candidates() {
		raw, err := os.ReadFile(path)
		if err != nil {
			continue
		}

		loaded := Corpus{
			Text:         string(raw),
			Path:         path,
			Loaded:       true,
			LoadDuration: time.Since(start),
			LoadedAt:     time.Now(),
		}

		s.mu.Lock()
		s.current = loaded
		s.mu.Unlock()

		s.logger.Info("corpus", "Flattened corpus loaded", map[string]interface{}{
			"path":  path,
			"bytes": len(raw),
		})
		return loaded
	}

	s.logger.Warn("corpus", "No readable corpus file found", map[string]interface{}{
		"candidates": s.candidates(),
	})

	empty := Corpus{LoadDuration: time.Since(start)}
	s.mu.Lock()
	s.current = empty
	s.mu.Unlock()
	return empty
}

func (s *Store) Current() Corpus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}
