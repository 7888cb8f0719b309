package vector

import (
	"context"
	"fmt"
	"sync"

	"ai-docs-assistant-be/internal/pkg/logger"
	"ai-docs-assistant-be/pkg/embedding"
)

// Retriever lazily loads the chunk store on first use and answers top-K
// queries. Load happens once per process until Reset, even under concurrent
// first callers.
type Retriever struct {
	store    ChunkStore
	embedder embedding.EmbeddingProvider
	topK     int
	logger   logger.ILogger

	mu      sync.Mutex
	loaded  bool
	loadErr error
}

// Stats describes the retriever state for health reporting.
type Stats struct {
	Backend string
	Loaded  bool
	Chunks  int
	Err     error
}

func NewRetriever(store ChunkStore, embedder embedding.EmbeddingProvider, topK int, log logger.ILogger) *Retriever {
	if topK <= 0 {
		topK = 3
	}
	return &Retriever{
		store:    store,
		embedder: embedder,
		topK:     topK,
		logger:   log,
	}
}

// ensureLoaded performs the one-time store load. The mutex makes concurrent
// first callers block on the same load instead of racing it. A failed load
// stays failed until Reset, so a broken index does not get retried on every
// query.
func (r *Retriever) ensureLoaded(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.loaded {
		return r.loadErr
	}

	r.loadErr = r.store.Load(ctx)
	r.loaded = true
	if r.loadErr != nil {
		r.logger.Warn("vector", "Vector store load failed", map[string]interface{}{
			"backend": r.store.Name(),
			"error":   r.loadErr.Error(),
		})
	}
	return r.loadErr
}

// Search embeds the query and returns the k nearest chunks. k <= 0 uses the
// configured default. Context deadlines propagate out as errors, so a timeout
// is never mistaken for an empty result.
func (r *Retriever) Search(ctx context.Context, query string, k int) ([]DocumentChunk, error) {
	if err := r.ensureLoaded(ctx); err != nil {
		return nil, fmt.Errorf("vector index unavailable: %w", err)
	}
	if k <= 0 {
		k = r.topK
	}

	resp, err := r.embedder.Generate(ctx, query, embedding.TaskQuery)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	chunks, err := r.store.Search(ctx, resp.Embedding.Values, k)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}
	return chunks, nil
}

// Reset clears the load state so the next Search reloads the store. Called
// after rebuilds and when the corpus consumer sees changed documents.
func (r *Retriever) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loaded = false
	r.loadErr = nil
}

func (r *Retriever) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Stats{
		Backend: r.store.Name(),
		Loaded:  r.loaded && r.loadErr == nil,
		Chunks:  r.store.Count(),
		Err:     r.loadErr,
	}
}
