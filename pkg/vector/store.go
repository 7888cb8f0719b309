// Package vector implements the semantic retrieval tier: corpus chunks are
// embedded once at build time and queried by cosine similarity at resolve
// time. Two store backends exist, a gob file for single-node setups and
// postgres/pgvector when a database is configured.
package vector

import (
	"context"
	"fmt"
	"strings"
)

// DocumentChunk is one embedded slice of the metadata corpus.
type DocumentChunk struct {
	Source     string
	ChunkIndex int
	Content    string
	Embedding  []float32
}

// ChunkStore persists embedded chunks and answers nearest-neighbour queries.
type ChunkStore interface {
	Load(ctx context.Context) error
	Search(ctx context.Context, embedding []float32, k int) ([]DocumentChunk, error)
	// ReplaceAll swaps the whole index atomically. Readers mid-search keep
	// seeing the previous index.
	ReplaceAll(ctx context.Context, chunks []DocumentChunk) error
	Count() int
	Name() string
}

const snippetMaxChars = 500

// FormatSnippets renders retrieved chunks for the degraded answer path when
// the generator cannot produce a synthesis in time. One block per chunk,
// numbered from 1, newlines flattened so each snippet stays on one line.
func FormatSnippets(chunks []DocumentChunk) string {
	if len(chunks) == 0 {
		return "No relevant documents found."
	}

	blocks := make([]string, 0, len(chunks))
	for i, c := range chunks {
		src := c.Source
		if src == "" {
			src = "unknown"
		}
		text := c.Content
		if runes := []rune(text); len(runes) > snippetMaxChars {
			text = string(runes[:snippetMaxChars])
		}
		text = strings.ReplaceAll(text, "\n", " ")
		blocks = append(blocks, fmt.Sprintf("[%d] %s: %s", i+1, src, text))
	}
	return strings.Join(blocks, "\n\n")
}
