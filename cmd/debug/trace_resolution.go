package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"ai-docs-assistant-be/internal/config"
	"ai-docs-assistant-be/internal/pkg/logger"
	"ai-docs-assistant-be/internal/repository/implementation"
	"ai-docs-assistant-be/pkg/bucketindex"
	"ai-docs-assistant-be/pkg/cache"
	"ai-docs-assistant-be/pkg/corpus"
	"ai-docs-assistant-be/pkg/database"
	embeddingFactory "ai-docs-assistant-be/pkg/embedding/factory"
	"ai-docs-assistant-be/pkg/fulltext"
	"ai-docs-assistant-be/pkg/resolver"
	"ai-docs-assistant-be/pkg/vector"
)

// Probes every tier of the cascade independently for one query, showing
// what each would contribute and where the routing decision lands. The
// resolver itself is not invoked; this inspects routing, not answers.

func main() {
	cfg := config.Load()

	query := "show buckets with department: engineering"
	if len(os.Args) > 1 {
		query = strings.Join(os.Args[1:], " ")
	}

	diagLogger := logger.NewIsolatedLogger("logs/trace.log")

	ctx := context.Background()

	fmt.Println("=" + strings.Repeat("=", 79))
	fmt.Println("RESOLUTION TRACE TOOL")
	fmt.Println("=" + strings.Repeat("=", 79))
	fmt.Printf("Query: %q\n", query)
	fmt.Println()

	// --- Validation gate ---
	fmt.Println("--- VALIDATION ---")
	normalized, err := resolver.ValidateQuery(query, cfg.Resolver.QueryMaxLength)
	if err != nil {
		fmt.Printf("REJECTED: %v\n", err)
		fmt.Println("The cascade never runs for this input.")
		return
	}
	fmt.Printf("Accepted. Normalized: %q\n", normalized)
	fmt.Println()

	// --- Tier 0: cache ---
	fmt.Println("--- TIER 0: CACHE ---")
	cacheTTL := time.Duration(cfg.Cache.TTLHours) * time.Hour
	fileStore, err := cache.NewFileStore(cfg.Cache.Dir, cacheTTL, diagLogger)
	if err != nil {
		fmt.Printf("Cache unavailable: %v\n", err)
	} else {
		defer fileStore.Close()
		fmt.Printf("Key: %s\n", cache.Key(normalized))
		if answer, ok := fileStore.Get(normalized); ok {
			fmt.Printf("HIT (%d chars). The cascade would stop here.\n", len(answer))
		} else {
			fmt.Println("Miss. Falls through.")
		}
	}
	fmt.Println()

	// --- Tier 1: structured index ---
	fmt.Println("--- TIER 1: STRUCTURED INDEX ---")
	ix := bucketindex.New(cfg.Resolver.QuickSearchMaxResults, cfg.Resolver.QuickKeywordFallback, diagLogger)
	if err := ix.Build(cfg.Corpus.FlattenedTxtPath); err != nil {
		fmt.Printf("Build failed (%v). Tier disabled, falls through.\n", err)
	} else {
		st := ix.Stats()
		fmt.Printf("Index: %d lines, %d departments, %d labels, %d names (built in %s)\n",
			st.Lines, st.Departments, st.Labels, st.Names, st.LastBuildDuration.Round(time.Millisecond))
		fmt.Printf("Gate IsBucketQuery: %v\n", ix.IsBucketQuery(normalized))
		if matches, ok := ix.QuickSearch(normalized); ok {
			fmt.Printf("Matches:\n%s\n", indent(matches))
			fmt.Println("The cascade would answer from these lines.")
		} else {
			fmt.Println("No structured match. Falls through.")
		}
	}
	fmt.Println()

	// --- Tier 2: vector retrieval ---
	fmt.Println("--- TIER 2: VECTOR RETRIEVAL ---")
	embeddingProvider, err := embeddingFactory.NewEmbeddingProvider(
		cfg.Ai.EmbeddingProvider,
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.OllamaModel,
		cfg.Ai.GoogleGeminiKey,
		cfg.Ai.JinaKey,
	)
	if err != nil {
		log.Fatalf("Failed to initialize embedding provider: %v", err)
	}

	var chunkStore vector.ChunkStore
	if cfg.Vector.Backend == "pgvector" && cfg.Database.Connection != "" {
		db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		chunkStore = vector.NewPgStore(implementation.NewDocumentChunkRepository(db), diagLogger)
	} else {
		chunkStore = vector.NewFileStore(cfg.Vector.IndexPath, diagLogger)
	}
	retriever := vector.NewRetriever(chunkStore, embeddingProvider, cfg.Vector.SearchK, diagLogger)

	searchCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.Vector.SearchTimeoutSecs)*time.Second)
	chunks, err := retriever.Search(searchCtx, normalized, cfg.Vector.SearchK)
	cancel()
	switch {
	case err != nil:
		fmt.Printf("Unavailable (%v). Falls through.\n", err)
	case len(chunks) == 0:
		fmt.Println("Zero results. Falls through.")
	default:
		fmt.Printf("Top %d chunks:\n", len(chunks))
		for i, ch := range chunks {
			fmt.Printf("%-4d %-30s chunk %d  %q\n", i+1, ch.Source, ch.ChunkIndex, preview(ch.Content, 60))
		}
		fmt.Println("The cascade would answer from these chunks.")
	}
	fmt.Println()

	// --- Tier 3: full-text fallback ---
	fmt.Println("--- TIER 3: FULL-TEXT FALLBACK ---")
	corpusStore := corpus.NewStore(cfg.Corpus.FlattenedTxtPath, cfg.Corpus.DocsPath, diagLogger)
	snap := corpusStore.Load()
	if !snap.Loaded {
		fmt.Println("Corpus not loaded. The cascade would answer no_data.")
	} else {
		fmt.Printf("Corpus: %s (%d chars, loaded in %s)\n", snap.Path, len(snap.Text), snap.LoadDuration.Round(time.Millisecond))
		matches := fulltext.Search(normalized, snap.Text, cfg.Resolver.FulltextMaxResults)
		if matches == "" {
			fmt.Println("No matches. The cascade would answer not_found.")
		} else {
			fmt.Printf("Matches:\n%s\n", indent(preview(matches, 600)))
		}
	}
	fmt.Println()

	fmt.Println("=" + strings.Repeat("=", 79))
	fmt.Println("TRACE COMPLETE")
	fmt.Println("=" + strings.Repeat("=", 79))
	fmt.Println()
	fmt.Println("Current Cascade Configuration:")
	fmt.Printf("  Cache TTL:          %dh (%s backend)\n", cfg.Cache.TTLHours, cfg.Cache.Backend)
	fmt.Printf("  Quick max results:  %d (keyword fallback: %v)\n", cfg.Resolver.QuickSearchMaxResults, cfg.Resolver.QuickKeywordFallback)
	fmt.Printf("  Vector TopK:        %d (timeout %ds, %s backend)\n", cfg.Vector.SearchK, cfg.Vector.SearchTimeoutSecs, cfg.Vector.Backend)
	fmt.Printf("  Fulltext max:       %d\n", cfg.Resolver.FulltextMaxResults)
	fmt.Println()
	fmt.Println("Reading the trace:")
	fmt.Println("  1. The first tier that reports a result is where Resolve stops.")
	fmt.Println("  2. A gated tier 1 with IsBucketQuery=false means the query lacks an")
	fmt.Println("     explicit 'department:'/'label:'/'bucket:' marker, which is intended.")
	fmt.Println("  3. If tier 2 is empty but should not be, rebuild via cmd/buildindex.")
}

func indent(s string) string {
	return "  " + strings.ReplaceAll(strings.TrimRight(s, "\n"), "\n", "\n  ")
}

func preview(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
