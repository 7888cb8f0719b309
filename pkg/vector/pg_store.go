package vector

import (
	"context"
	"fmt"
	"sync"

	"ai-docs-assistant-be/internal/entity"
	"ai-docs-assistant-be/internal/pkg/logger"
	"ai-docs-assistant-be/internal/repository/contract"
)

// PgStore backs the index with the document_chunks table so multiple
// instances share one index and rebuilds are a single transaction.
type PgStore struct {
	repo   contract.DocumentChunkRepository
	logger logger.ILogger

	mu    sync.RWMutex
	count int
}

func NewPgStore(repo contract.DocumentChunkRepository, log logger.ILogger) *PgStore {
	return &PgStore{
		repo:   repo,
		logger: log,
	}
}

func (s *PgStore) Name() string {
	return "postgres"
}

// Load verifies the table is reachable and non-empty. An empty table means
// the index was never built, which keeps this backend consistent with the
// file store's missing-file behaviour.
func (s *PgStore) Load(ctx context.Context) error {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return fmt.Errorf("query document chunks: %w", err)
	}
	if count == 0 {
		return fmt.Errorf("vector index not built: document_chunks table is empty")
	}

	s.mu.Lock()
	s.count = int(count)
	s.mu.Unlock()

	s.logger.Info("vector", "Vector index ready", map[string]interface{}{
		"backend": s.Name(),
		"chunks":  count,
	})
	return nil
}

func (s *PgStore) Search(ctx context.Context, embedding []float32, k int) ([]DocumentChunk, error) {
	ents, err := s.repo.SearchSimilar(ctx, embedding, k)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}

	out := make([]DocumentChunk, 0, len(ents))
	for _, e := range ents {
		out = append(out, DocumentChunk{
			Source:     e.Source,
			ChunkIndex: e.ChunkIndex,
			Content:    e.Content,
			Embedding:  e.Embedding,
		})
	}
	return out, nil
}

func (s *PgStore) ReplaceAll(ctx context.Context, chunks []DocumentChunk) error {
	ents := make([]*entity.DocumentChunk, 0, len(chunks))
	for _, c := range chunks {
		ents = append(ents, &entity.DocumentChunk{
			Source:     c.Source,
			ChunkIndex: c.ChunkIndex,
			Content:    c.Content,
			Embedding:  c.Embedding,
		})
	}

	if err := s.repo.ReplaceAll(ctx, ents); err != nil {
		return fmt.Errorf("replace document chunks: %w", err)
	}

	s.mu.Lock()
	s.count = len(chunks)
	s.mu.Unlock()

	s.logger.Info("vector", "Vector index replaced", map[string]interface{}{
		"backend": s.Name(),
		"chunks":  len(chunks),
	})
	return nil
}

func (s *PgStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.count
}
