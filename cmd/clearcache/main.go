package main

import (
	"log"
	"time"

	"ai-docs-assistant-be/internal/config"
	"ai-docs-assistant-be/internal/pkg/logger"
	"ai-docs-assistant-be/pkg/cache"

	"github.com/redis/go-redis/v9"
)

// Wipes the response cache so the next queries resolve from the live
// corpus instead of replaying stale answers. The persisted vector index
// is left alone; rebuild it through cmd/buildindex or the admin API.

func main() {
	cfg := config.Load()

	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	cacheTTL := time.Duration(cfg.Cache.TTLHours) * time.Hour
	var store cache.Store
	if cfg.Cache.Backend == "redis" {
		opts, err := redis.ParseURL(cfg.Cache.RedisURL)
		if err != nil {
			log.Fatalf("Error: Invalid REDIS_URL: %v", err)
		}
		store = cache.NewRedisStore(redis.NewClient(opts), cfg.Cache.RedisKeyPrefix, cacheTTL, sysLogger)
		log.Printf("Using Cache Backend: REDIS (%s)", cfg.Cache.RedisURL)
	} else {
		fileStore, err := cache.NewFileStore(cfg.Cache.Dir, cacheTTL, sysLogger)
		if err != nil {
			log.Fatalf("Error: Failed to open file cache at %s: %v", cfg.Cache.Dir, err)
		}
		store = fileStore
		log.Printf("Using Cache Backend: FILE (%s)", cfg.Cache.Dir)
	}
	defer store.Close()

	expired := store.ClearExpired()
	log.Printf("Removed %d expired entries", expired)

	remaining := store.ClearAll()
	log.Printf("Removed %d remaining entries", remaining)

	log.Println("✅ Success: Response cache cleared")
}
