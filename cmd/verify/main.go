package main

import (
	"context"
	"log"
	"strings"

	"ai-docs-assistant-be/internal/config"
	"ai-docs-assistant-be/internal/pkg/logger"
	"ai-docs-assistant-be/internal/repository/implementation"
	"ai-docs-assistant-be/internal/repository/specification"
	"ai-docs-assistant-be/pkg/bucketindex"
	"ai-docs-assistant-be/pkg/corpus"
	"ai-docs-assistant-be/pkg/database"
	"ai-docs-assistant-be/pkg/vector"
)

// Cross-checks the three corpus artifacts against each other: the
// flattened metadata file, the documents directory and the vector index.
// Read-only; prints findings and a verdict.

func main() {
	cfg := config.Load()

	diagLogger := logger.NewIsolatedLogger("logs/verify.log")

	log.Println("🔍 CORPUS INTEGRITY CHECK")
	warnings := 0

	// 1. Flattened metadata file feeding the structured index
	log.Println(strings.Repeat("─", 50))
	log.Printf("Metadata file: %s", cfg.Corpus.FlattenedTxtPath)
	ix := bucketindex.New(cfg.Resolver.QuickSearchMaxResults, cfg.Resolver.QuickKeywordFallback, diagLogger)
	if err := ix.Build(cfg.Corpus.FlattenedTxtPath); err != nil {
		log.Printf("⚠️  Build failed: %v (quick search tier will be disabled)", err)
		warnings++
	} else {
		st := ix.Stats()
		log.Printf("    Lines: %d | Departments: %d | Labels: %d | Names: %d", st.Lines, st.Departments, st.Labels, st.Names)
		if st.Lines > 0 && st.Departments+st.Labels+st.Names == 0 {
			log.Println("⚠️  No attribute markers found; every quick search will miss. Check the export format.")
			warnings++
		}
	}

	// 2. Documents directory feeding the vector tier
	log.Println(strings.Repeat("─", 50))
	log.Printf("Docs dir: %s", cfg.Corpus.DocsPath)
	docs, err := corpus.LoadDocuments(cfg.Corpus.DocsPath)
	if err != nil {
		log.Printf("⚠️  %v", err)
		warnings++
	} else {
		totalBytes := 0
		for _, d := range docs {
			totalBytes += len(d.Content)
		}
		log.Printf("    Documents: %d (%d bytes)", len(docs), totalBytes)
		if len(docs) == 0 {
			log.Println("⚠️  No indexable documents; vector rebuilds will fail.")
			warnings++
		}
	}

	// 3. Vector index consistency
	log.Println(strings.Repeat("─", 50))
	ctx := context.Background()
	if cfg.Vector.Backend == "pgvector" && cfg.Database.Connection != "" {
		db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
		if err != nil {
			log.Fatal("Error: Failed to connect to database:", err)
		}
		repo := implementation.NewDocumentChunkRepository(db)
		log.Println("Vector backend: PGVECTOR")

		chunks, err := repo.FindAll(ctx, specification.OrderBy{Field: "source"})
		if err != nil {
			log.Printf("⚠️  Chunk query failed: %v", err)
			warnings++
		} else {
			indexed := make(map[string]int)
			for _, c := range chunks {
				indexed[c.Source]++
			}
			log.Printf("    Chunks: %d across %d sources", len(chunks), len(indexed))

			onDisk := make(map[string]bool, len(docs))
			for _, d := range docs {
				onDisk[d.Path] = true
			}
			for _, d := range docs {
				if indexed[d.Path] == 0 {
					log.Printf("⚠️  Not indexed: %s (rebuild to pick it up)", d.Path)
					warnings++
				}
			}
			for src := range indexed {
				if !onDisk[src] {
					log.Printf("⚠️  Indexed but missing on disk: %s (stale index entry)", src)
					warnings++
				}
			}
		}
	} else {
		store := vector.NewFileStore(cfg.Vector.IndexPath, diagLogger)
		log.Printf("Vector backend: FILE (%s)", cfg.Vector.IndexPath)
		if err := store.Load(ctx); err != nil {
			log.Printf("⚠️  Index not loadable: %v (vector tier will fall through)", err)
			warnings++
		} else {
			log.Printf("    Chunks: %d", store.Count())
			if store.Count() == 0 && len(docs) > 0 {
				log.Println("⚠️  Index is empty but documents exist. Run cmd/buildindex.")
				warnings++
			}
		}
	}

	log.Println(strings.Repeat("─", 50))
	if warnings == 0 {
		log.Println("✅ Success: All corpus artifacts are consistent")
	} else {
		log.Printf("⚠️  Finished with %d warning(s)", warnings)
	}
}
