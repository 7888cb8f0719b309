package vector

import (
	"context"
	"encoding/gob"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"ai-docs-assistant-be/internal/pkg/logger"
)

// FileStore keeps the whole index in memory and persists it as a single gob
// file. Search is a linear cosine scan, which is fine for corpora in the
// tens of thousands of chunks.
type FileStore struct {
	path   string
	logger logger.ILogger

	mu     sync.RWMutex
	chunks []DocumentChunk
}

func NewFileStore(path string, log logger.ILogger) *FileStore {
	return &FileStore{
		path:   path,
		logger: log,
	}
}

func (s *FileStore) Name() string {
	return "file"
}

func (s *FileStore) Load(ctx context.Context) error {
	f, err := os.Open(s.path)
	if err != nil {
		return fmt.Errorf("vector index not available at %s: %w", s.path, err)
	}
	defer f.Close()

	var chunks []DocumentChunk
	if err := gob.NewDecoder(f).Decode(&chunks); err != nil {
		return fmt.Errorf("decode vector index %s: %w", s.path, err)
	}

	s.mu.Lock()
	s.chunks = chunks
	s.mu.Unlock()

	s.logger.Info("vector", "Vector index loaded", map[string]interface{}{
		"path":   s.path,
		"chunks": len(chunks),
	})
	return nil
}

func (s *FileStore) Search(ctx context.Context, embedding []float32, k int) ([]DocumentChunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if k <= 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	type scored struct {
		index int
		score float64
	}
	scores := make([]scored, 0, len(s.chunks))
	for i := range s.chunks {
		scores = append(scores, scored{index: i, score: cosineSimilarity(embedding, s.chunks[i].Embedding)})
	}
	sort.SliceStable(scores, func(a, b int) bool {
		return scores[a].score > scores[b].score
	})

	if k > len(scores) {
		k = len(scores)
	}
	out := make([]DocumentChunk, 0, k)
	for _, sc := range scores[:k] {
		out = append(out, s.chunks[sc.index])
	}
	return out, nil
}

func (s *FileStore) ReplaceAll(ctx context.Context, chunks []DocumentChunk) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create index directory: %w", err)
	}

	// Write to a temp file first so a crash mid-write never corrupts the
	// published index.
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp index: %w", err)
	}
	tmpName := tmp.Name()

	if err := gob.NewEncoder(tmp).Encode(chunks); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("encode vector index: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp index: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("publish vector index: %w", err)
	}

	s.mu.Lock()
	s.chunks = chunks
	s.mu.Unlock()

	s.logger.Info("vector", "Vector index replaced", map[string]interface{}{
		"path":   s.path,
		"chunks": len(chunks),
	})
	return nil
}

func (s *FileStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks)
}

// cosineSimilarity tolerates unnormalized vectors; zero or mismatched
// vectors score 0.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
