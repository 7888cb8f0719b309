package main

import (
	"context"
	"log"
	"os"
	"time"

	"ai-docs-assistant-be/internal/config"
	"ai-docs-assistant-be/internal/pkg/logger"
	"ai-docs-assistant-be/internal/repository/implementation"
	"ai-docs-assistant-be/pkg/database"
	embeddingFactory "ai-docs-assistant-be/pkg/embedding/factory"
	"ai-docs-assistant-be/pkg/vector"
)

func main() {
	cfg := config.Load()

	docsDir := cfg.Corpus.DocsPath
	if len(os.Args) > 1 {
		docsDir = os.Args[1]
	}

	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	embeddingProvider, err := embeddingFactory.NewEmbeddingProvider(
		cfg.Ai.EmbeddingProvider,
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.OllamaModel,
		cfg.Ai.GoogleGeminiKey,
		cfg.Ai.JinaKey,
	)
	if err != nil {
		log.Fatalf("Error: Failed to initialize embedding provider: %v", err)
	}

	var chunkStore vector.ChunkStore
	if cfg.Vector.Backend == "pgvector" && cfg.Database.Connection != "" {
		db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
		if err != nil {
			log.Fatal("Error: Failed to connect to database:", err)
		}
		chunkStore = vector.NewPgStore(implementation.NewDocumentChunkRepository(db), sysLogger)
		log.Println("Using Vector Backend: PGVECTOR")
	} else {
		chunkStore = vector.NewFileStore(cfg.Vector.IndexPath, sysLogger)
		log.Printf("Using Vector Backend: FILE (%s)", cfg.Vector.IndexPath)
	}

	builder := vector.NewBuilder(chunkStore, embeddingProvider, cfg.Vector.ChunkSize, cfg.Vector.ChunkOverlap, sysLogger)

	log.Printf("Building vector index from %s ...", docsDir)
	res, err := builder.Rebuild(context.Background(), docsDir)
	if err != nil {
		log.Fatal("Error: Vector index build failed:", err)
	}

	log.Printf("✅ Success: Indexed %d documents into %d chunks in %s", res.Documents, res.Chunks, res.Duration.Round(time.Millisecond))
}
