package main

import (
	"context"
	"errors"
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
	llmFactory "ai-docs-assistant-be/pkg/llm/factory"
	"ai-docs-assistant-be/pkg/resolver"
	"ai-docs-assistant-be/pkg/vector"

	"github.com/fatih/color"
	"github.com/redis/go-redis/v9"
)

// consoleSink prints resolution stages as the cascade walks them.
type consoleSink struct{}

func (consoleSink) Emit(evt resolver.ActivityEvent) {
	switch evt.Kind {
	case resolver.EventStarted:
		color.Cyan("🔎 %s", evt.Query)
	case resolver.EventStage:
		color.Yellow("  → %s", evt.Stage)
	}
}

func main() {
	cfg := config.Load()

	query := strings.TrimSpace(strings.Join(os.Args[1:], " "))
	if query == "" {
		color.Red("Usage: query <question>")
		os.Exit(1)
	}

	// Console output stays clean; subsystem chatter goes to its own file.
	cliLogger := logger.NewIsolatedLogger("logs/query.log")

	cacheTTL := time.Duration(cfg.Cache.TTLHours) * time.Hour
	var cacheStore cache.Store
	if cfg.Cache.Backend == "redis" {
		opts, err := redis.ParseURL(cfg.Cache.RedisURL)
		if err != nil {
			log.Fatalf("Invalid REDIS_URL: %v", err)
		}
		cacheStore = cache.NewRedisStore(redis.NewClient(opts), cfg.Cache.RedisKeyPrefix, cacheTTL, cliLogger)
	} else {
		fileStore, err := cache.NewFileStore(cfg.Cache.Dir, cacheTTL, cliLogger)
		if err != nil {
			log.Fatalf("Failed to initialize file cache at %s: %v", cfg.Cache.Dir, err)
		}
		cacheStore = fileStore
	}
	defer cacheStore.Close()

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

	llmProvider, err := llmFactory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.HuggingFaceKey,
	)
	if err != nil {
		log.Fatalf("Failed to initialize LLM provider: %v", err)
	}

	var chunkStore vector.ChunkStore
	if cfg.Vector.Backend == "pgvector" && cfg.Database.Connection != "" {
		db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		chunkStore = vector.NewPgStore(implementation.NewDocumentChunkRepository(db), cliLogger)
	} else {
		chunkStore = vector.NewFileStore(cfg.Vector.IndexPath, cliLogger)
	}

	retriever := vector.NewRetriever(chunkStore, embeddingProvider, cfg.Vector.SearchK, cliLogger)
	builder := vector.NewBuilder(chunkStore, embeddingProvider, cfg.Vector.ChunkSize, cfg.Vector.ChunkOverlap, cliLogger)

	bucketIndex := bucketindex.New(cfg.Resolver.QuickSearchMaxResults, cfg.Resolver.QuickKeywordFallback, cliLogger)
	if err := bucketIndex.Build(cfg.Corpus.FlattenedTxtPath); err != nil {
		color.Yellow("  (structured index unavailable: %v)", err)
	}

	corpusStore := corpus.NewStore(cfg.Corpus.FlattenedTxtPath, cfg.Corpus.DocsPath, cliLogger)
	corpusStore.Load()

	res := resolver.NewResolver(
		cacheStore,
		bucketIndex,
		retriever,
		builder,
		corpusStore,
		llmProvider,
		nil,
		consoleSink{},
		resolver.Options{
			LLMTimeout:         time.Duration(cfg.Ai.LLMTimeoutSecs) * time.Second,
			VectorTimeout:      time.Duration(cfg.Vector.SearchTimeoutSecs) * time.Second,
			VectorTopK:         cfg.Vector.SearchK,
			MaxContextChars:    cfg.Vector.ContextMaxChars,
			MaxQueryLength:     cfg.Resolver.QueryMaxLength,
			FulltextMaxResults: cfg.Resolver.FulltextMaxResults,
		},
		cliLogger,
	)

	result, err := res.Resolve(context.Background(), query)
	if err != nil {
		if errors.Is(err, resolver.ErrInvalidQuery) {
			color.Red("Rejected: %v", err)
		} else {
			color.Red("Failed: %v", err)
		}
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println(result.Answer)
	fmt.Println()
	color.Green("Source: %s | Confidence: %.1f | Elapsed: %s", result.Source, result.Confidence, result.Elapsed.Round(time.Millisecond))
}
