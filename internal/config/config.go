package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Corpus    CorpusConfig
	Cache     CacheConfig
	Vector    VectorConfig
	Database  DatabaseConfig
	Ai        AIConfig
	Resolver  ResolverConfig
	Admin     AdminConfig
	SMTP      SMTPConfig
	Watcher   WatcherConfig
	Telemetry TelemetryConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
}

type CorpusConfig struct {
	DocsPath         string
	FlattenedTxtPath string
}

type CacheConfig struct {
	Backend        string // "file" or "redis"
	Dir            string
	TTLHours       int
	RedisURL       string
	RedisKeyPrefix string
}

type VectorConfig struct {
	Backend           string // "file" or "pgvector"
	IndexPath         string
	SearchK           int
	SearchTimeoutSecs int
	ContextMaxChars   int
	ChunkSize         int
	ChunkOverlap      int
}

type DatabaseConfig struct {
	Connection string
}

type AIConfig struct {
	EmbeddingProvider string // "ollama", "gemini" or "jina"
	OllamaBaseURL     string
	OllamaModel       string
	GoogleGeminiKey   string
	JinaKey           string
	LLMProvider       string // "ollama" or "huggingface"
	LLMModel          string
	HuggingFaceKey    string
	LLMTimeoutSecs    int
}

type ResolverConfig struct {
	QuickSearchMaxResults int
	QuickKeywordFallback  bool
	FulltextMaxResults    int
	QueryMaxLength        int
}

type AdminConfig struct {
	Username       string
	PasswordHash   string
	JWTSecret      string
	JWTExpiryHours int
}

type SMTPConfig struct {
	Host       string
	Port       int
	Email      string
	Password   string
	SenderName string
	AlertEmail string
}

type WatcherConfig struct {
	Enabled           bool
	DebounceSeconds   int
	AutoRebuildVector bool
}

type TelemetryConfig struct {
	Enabled      bool
	OTLPEndpoint string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "8000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
		},
		Corpus: CorpusConfig{
			DocsPath:         getEnv("DOCS_PATH", "docs"),
			FlattenedTxtPath: getEnv("FLATTENED_TXT_PATH", "docs/sample_bucket_metadata_converted.txt"),
		},
		Cache: CacheConfig{
			Backend:        getEnv("CACHE_BACKEND", "file"),
			Dir:            getEnv("CACHE_DIR", "cache"),
			TTLHours:       getEnvAsInt("CACHE_TTL_HOURS", 24),
			RedisURL:       getEnv("REDIS_URL", "redis://localhost:6379"),
			RedisKeyPrefix: getEnv("REDIS_KEY_PREFIX", "assistant:responses:"),
		},
		Vector: VectorConfig{
			Backend:           getEnv("VECTOR_BACKEND", "file"),
			IndexPath:         getEnv("VECTOR_INDEX_PATH", "data/vector_index.gob"),
			SearchK:           getEnvAsInt("VECTOR_SEARCH_K", 3),
			SearchTimeoutSecs: getEnvAsInt("VECTOR_SEARCH_TIMEOUT_SECONDS", 10),
			ContextMaxChars:   getEnvAsInt("VECTOR_CONTEXT_MAX_CHARS", 4000),
			ChunkSize:         getEnvAsInt("CHUNK_SIZE", 800),
			ChunkOverlap:      getEnvAsInt("CHUNK_OVERLAP", 100),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "ollama"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:       getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			GoogleGeminiKey:   getEnv("GOOGLE_GEMINI_API_KEY", ""),
			JinaKey:           getEnv("JINA_API_KEY", ""),
			LLMProvider:       getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:          getEnv("LLM_MODEL", "llama3"),
			HuggingFaceKey:    getEnv("HUGGINGFACE_API_KEY", ""),
			LLMTimeoutSecs:    getEnvAsInt("LLM_TIMEOUT_SECONDS", 30),
		},
		Resolver: ResolverConfig{
			QuickSearchMaxResults: getEnvAsInt("QUICK_SEARCH_MAX_RESULTS", 5),
			QuickKeywordFallback:  getEnvAsBool("QUICK_SEARCH_ENABLE_KEYWORD_FALLBACK", false),
			FulltextMaxResults:    getEnvAsInt("FULLTEXT_MAX_RESULTS", 10),
			QueryMaxLength:        getEnvAsInt("QUERY_MAX_LENGTH", 2000),
		},
		Admin: AdminConfig{
			Username:       getEnv("ADMIN_USERNAME", "admin"),
			PasswordHash:   getEnv("ADMIN_PASSWORD_HASH", ""),
			JWTSecret:      getEnv("JWT_SECRET", ""),
			JWTExpiryHours: getEnvAsInt("JWT_EXPIRY_HOURS", 12),
		},
		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getEnvAsInt("SMTP_PORT", 587),
			Email:      getEnv("SMTP_EMAIL", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			SenderName: getEnv("SMTP_SENDER_NAME", "Docs Assistant"),
			AlertEmail: getEnv("OPS_ALERT_EMAIL", ""),
		},
		Watcher: WatcherConfig{
			Enabled:           getEnvAsBool("WATCH_ENABLED", false),
			DebounceSeconds:   getEnvAsInt("WATCH_DEBOUNCE_SECONDS", 5),
			AutoRebuildVector: getEnvAsBool("AUTO_REBUILD_VECTOR", false),
		},
		Telemetry: TelemetryConfig{
			Enabled:      getEnvAsBool("OTEL_ENABLED", false),
			OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}
