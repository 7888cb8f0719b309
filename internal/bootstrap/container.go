package bootstrap

import (
	"context"
	"log"
	"time"

	"ai-docs-assistant-be/internal/config"
	"ai-docs-assistant-be/internal/controller"
	"ai-docs-assistant-be/internal/handler"
	"ai-docs-assistant-be/internal/pkg/logger"
	"ai-docs-assistant-be/internal/pkg/mailer"
	"ai-docs-assistant-be/internal/repository/contract"
	"ai-docs-assistant-be/internal/repository/implementation"
	"ai-docs-assistant-be/internal/repository/memory"
	"ai-docs-assistant-be/internal/service"
	"ai-docs-assistant-be/internal/websocket"
	"ai-docs-assistant-be/pkg/admin/dashboard"
	adminEvents "ai-docs-assistant-be/pkg/admin/events"
	"ai-docs-assistant-be/pkg/admin/usage"
	"ai-docs-assistant-be/pkg/bucketindex"
	"ai-docs-assistant-be/pkg/cache"
	"ai-docs-assistant-be/pkg/corpus"
	embeddingFactory "ai-docs-assistant-be/pkg/embedding/factory"
	llmFactory "ai-docs-assistant-be/pkg/llm/factory"
	"ai-docs-assistant-be/pkg/resolver"
	"ai-docs-assistant-be/pkg/vector"

	pktNats "ai-docs-assistant-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AssistantController controller.IAssistantController
	AdminController     controller.IAdminController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
	WatcherService  service.IWatcherService

	// WebSockets
	ActivityHandler *handler.ActivityHandler
	WebSocketHub    *websocket.Hub

	// Engine handles main.go touches at shutdown
	Resolver      *resolver.Resolver
	UsageTracker  *usage.Tracker
	CacheStore    cache.Store
	NatsPublisher *pktNats.Publisher
}

// NewContainer wires the engine tiers, services and controllers. db may be
// nil; postgres only backs the pgvector store and usage snapshots, the
// default deployment runs on file backends alone.
func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
		cfg.SMTP.AlertEmail,
	)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 2.5 Infrastructure
	// NATS (advisory events; the engine runs without it)
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL, sysLogger)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	// Redis, only when a backend asks for it
	var rdb *redis.Client
	if cfg.Cache.Backend == "redis" {
		opt, err := redis.ParseURL(cfg.Cache.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{
				Addr: cfg.Cache.RedisURL,
			}
		}
		rdb = redis.NewClient(opt)
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v", err)
		}
	}

	// 3. Engine Tiers
	cacheTTL := time.Duration(cfg.Cache.TTLHours) * time.Hour
	var cacheStore cache.Store
	if rdb != nil {
		cacheStore = cache.NewRedisStore(rdb, cfg.Cache.RedisKeyPrefix, cacheTTL, sysLogger)
		log.Printf("[INFO] Using Cache Backend: REDIS (%s)", cfg.Cache.RedisURL)
	} else {
		fileStore, err := cache.NewFileStore(cfg.Cache.Dir, cacheTTL, sysLogger)
		if err != nil {
			log.Fatalf("[FATAL] Failed to initialize file cache at %s: %v", cfg.Cache.Dir, err)
		}
		cacheStore = fileStore
		log.Printf("[INFO] Using Cache Backend: FILE (%s)", cfg.Cache.Dir)
	}

	// Embedding Provider based on Config
	embeddingProvider, err := embeddingFactory.NewEmbeddingProvider(
		cfg.Ai.EmbeddingProvider,
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.OllamaModel,
		cfg.Ai.GoogleGeminiKey,
		cfg.Ai.JinaKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize Embedding Provider: %v", err)
	}
	log.Printf("[INFO] Using Embedding Provider: %s", cfg.Ai.EmbeddingProvider)

	// LLM Provider based on Config
	llmProvider, err := llmFactory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.HuggingFaceKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// Vector store: pgvector when postgres is wired, gob file otherwise
	var chunkStore vector.ChunkStore
	if cfg.Vector.Backend == "pgvector" && db != nil {
		chunkStore = vector.NewPgStore(implementation.NewDocumentChunkRepository(db), sysLogger)
		log.Printf("[INFO] Using Vector Backend: PGVECTOR")
	} else {
		if cfg.Vector.Backend == "pgvector" {
			log.Printf("[WARN] VECTOR_BACKEND=pgvector but no database configured, falling back to file store")
		}
		chunkStore = vector.NewFileStore(cfg.Vector.IndexPath, sysLogger)
		log.Printf("[INFO] Using Vector Backend: FILE (%s)", cfg.Vector.IndexPath)
	}

	retriever := vector.NewRetriever(chunkStore, embeddingProvider, cfg.Vector.SearchK, sysLogger)
	builder := vector.NewBuilder(chunkStore, embeddingProvider, cfg.Vector.ChunkSize, cfg.Vector.ChunkOverlap, sysLogger)

	bucketIndex := bucketindex.New(cfg.Resolver.QuickSearchMaxResults, cfg.Resolver.QuickKeywordFallback, sysLogger)
	if err := bucketIndex.Build(cfg.Corpus.FlattenedTxtPath); err != nil {
		log.Printf("[WARN] Structured index build failed, quick search disabled: %v", err)
	}

	corpusStore := corpus.NewStore(cfg.Corpus.FlattenedTxtPath, cfg.Corpus.DocsPath, sysLogger)
	if snap := corpusStore.Load(); !snap.Loaded {
		log.Printf("[WARN] No corpus file could be loaded, fulltext fallback disabled")
	}

	// Usage recording: counters for the dashboard plus the recent-questions
	// ring; both feed from every resolution
	var usageRepo contract.UsageStatRepository
	if db != nil {
		usageRepo = implementation.NewUsageStatRepository(db)
	}
	usageTracker := usage.NewTracker(sysLogger, usageRepo)
	recentQuestions := memory.NewRecentQuestionsRepository(0, 0)

	// WebSocket Hub (isolated log keeps per-connection chatter out of the
	// admin log feed)
	wsLogger := logger.NewIsolatedLogger("logs/activity.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	res := resolver.NewResolver(
		cacheStore,
		bucketIndex,
		retriever,
		builder,
		corpusStore,
		llmProvider,
		resolver.UsageRecorders{usageTracker, recentQuestions},
		wsHub,
		resolver.Options{
			LLMTimeout:         time.Duration(cfg.Ai.LLMTimeoutSecs) * time.Second,
			VectorTimeout:      time.Duration(cfg.Vector.SearchTimeoutSecs) * time.Second,
			VectorTopK:         cfg.Vector.SearchK,
			MaxContextChars:    cfg.Vector.ContextMaxChars,
			MaxQueryLength:     cfg.Resolver.QueryMaxLength,
			FulltextMaxResults: cfg.Resolver.FulltextMaxResults,
		},
		sysLogger,
	)

	// 4. Services
	adminEventPublisher := adminEvents.NewNatsPublisher(natsPub, sysLogger)
	dashboardAggregator := dashboard.NewAggregator(
		sysLogger,
		cacheStore,
		bucketIndex,
		retriever,
		corpusStore,
		usageTracker,
		recentQuestions,
	)

	assistantService := service.NewAssistantService(res, sysLogger)
	adminService := service.NewAdminService(
		res,
		sysLogger,
		dashboardAggregator,
		adminEventPublisher,
		emailService,
		cfg.Admin.Username,
		cfg.Admin.PasswordHash,
		cfg.Admin.JWTSecret,
		cfg.Admin.JWTExpiryHours,
		cfg.Corpus.FlattenedTxtPath,
		cfg.Corpus.DocsPath,
	)

	publisherService := service.NewPublisherService(service.TopicCorpusUpdated, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		service.TopicCorpusUpdated,
		res,
		adminEventPublisher,
		emailService,
		sysLogger,
		cfg.Corpus.FlattenedTxtPath,
		cfg.Corpus.DocsPath,
		cfg.Watcher.AutoRebuildVector,
	)

	var watcherService service.IWatcherService
	if cfg.Watcher.Enabled {
		watcherService = service.NewWatcherService(
			cfg.Corpus.DocsPath,
			cfg.Watcher.DebounceSeconds,
			publisherService,
			sysLogger,
		)
	}

	activityHandler := handler.NewActivityHandler(wsHub, wsLogger)

	// 5. Controllers
	return &Container{
		AssistantController: controller.NewAssistantController(assistantService),
		AdminController:     controller.NewAdminController(adminService),

		ConsumerService: consumerService,
		WatcherService:  watcherService,

		ActivityHandler: activityHandler,
		WebSocketHub:    wsHub,

		Resolver:      res,
		UsageTracker:  usageTracker,
		CacheStore:    cacheStore,
		NatsPublisher: natsPub,
	}
}
