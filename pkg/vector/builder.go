package vector

import (
	"context"
	"fmt"
	"time"

	"ai-docs-assistant-be/internal/pkg/logger"
	"ai-docs-assistant-be/pkg/corpus"
	"ai-docs-assistant-be/pkg/embedding"
	"ai-docs-assistant-be/pkg/utils"
)

// Builder turns a documents directory into an embedded chunk index.
type Builder struct {
	store     ChunkStore
	embedder  embedding.EmbeddingProvider
	chunkSize int
	overlap   int
	logger    logger.ILogger
}

type BuildResult struct {
	Documents int
	Chunks    int
	Duration  time.Duration
}

func NewBuilder(store ChunkStore, embedder embedding.EmbeddingProvider, chunkSize, overlap int, log logger.ILogger) *Builder {
	return &Builder{
		store:     store,
		embedder:  embedder,
		chunkSize: chunkSize,
		overlap:   overlap,
		logger:    log,
	}
}

// Rebuild loads every document under docsDir, splits it, embeds each chunk
// and replaces the store contents in one atomic publish. Any embedding
// failure aborts the whole rebuild and leaves the previous index intact.
func (b *Builder) Rebuild(ctx context.Context, docsDir string) (*BuildResult, error) {
	start := time.Now()

	docs, err := corpus.LoadDocuments(docsDir)
	if err != nil {
		return nil, fmt.Errorf("load documents: %w", err)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("no documents found in %s", docsDir)
	}

	b.logger.Info("vector", "Rebuilding vector index", map[string]interface{}{
		"documents": len(docs),
		"directory": docsDir,
	})

	var chunks []DocumentChunk
	for _, doc := range docs {
		pieces := utils.SplitText(doc.Content, b.chunkSize, b.overlap)
		for i, piece := range pieces {
			resp, err := b.embedder.Generate(ctx, piece, embedding.TaskDocument)
			if err != nil {
				return nil, fmt.Errorf("embed chunk %d of %s: %w", i, doc.Path, err)
			}
			chunks = append(chunks, DocumentChunk{
				Source:     doc.Path,
				ChunkIndex: i,
				Content:    piece,
				Embedding:  resp.Embedding.Values,
			})
		}
		b.logger.Info("vector", "Document embedded", map[string]interface{}{
			"source": doc.Path,
			"chunks": len(pieces),
		})
	}

	if err := b.store.ReplaceAll(ctx, chunks); err != nil {
		return nil, fmt.Errorf("publish index: %w", err)
	}

	result := &BuildResult{
		Documents: len(docs),
		Chunks:    len(chunks),
		Duration:  time.Since(start),
	}
	b.logger.Info("vector", "Vector index rebuilt", map[string]interface{}{
		"documents":   result.Documents,
		"chunks":      result.Chunks,
		"duration_ms": result.Duration.Milliseconds(),
	})
	return result, nil
}
