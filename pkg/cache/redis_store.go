package cache

import (
	"context"
	"encoding/json"
	"time"

	"ai-docs-assistant-be/internal/pkg/logger"

	"github.com/redis/go-redis/v9"
)

const redisOpTimeout = 3 * time.Second

// RedisStore is the alternative cache backend for installs that already
// run Redis. Expiry is delegated to server-side TTLs, so ClearExpired has
// nothing to sweep. A single SET is the atomic publish here.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger logger.ILogger
}

func NewRedisStore(client *redis.Client, prefix string, ttl time.Duration, log logger.ILogger) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: prefix,
		ttl:    ttl,
		logger: log,
	}
}

func (s *RedisStore) Get(query string) (string, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	raw, err := s.client.Get(ctx, s.prefix+Key(query)).Result()
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn("cache", "Redis get failed, treating as miss", map[string]interface{}{
				"error": err.Error(),
			})
		}
		return "", false
	}

	var entry Entry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return "", false
	}
	return entry.Answer, true
}

func (s *RedisStore) Set(query, answer, source string) {
	entry := Entry{
		Query:     query,
		Answer:    answer,
		Source:    source,
		Timestamp: time.Now(),
	}

	raw, err := json.Marshal(entry)
	if err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	if err := s.client.Set(ctx, s.prefix+Key(query), raw, s.ttl).Err(); err != nil {
		s.logger.Warn("cache", "Redis set failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func (s *RedisStore) ClearExpired() int {
	// Redis evicts on TTL by itself.
	return 0
}

func (s *RedisStore) ClearAll() int {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	removed := 0
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if s.client.Del(ctx, iter.Val()).Err() == nil {
			removed++
		}
	}
	if err := iter.Err(); err != nil {
		s.logger.Warn("cache", "Redis scan failed during clear", map[string]interface{}{
			"error": err.Error(),
		})
	}

	s.logger.Info("cache", "Cache cleared", map[string]interface{}{
		"removed": removed,
	})
	return removed
}

func (s *RedisStore) Stats() StoreStats {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	stats := StoreStats{Backend: "redis"}
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		stats.Entries++
	}
	return stats
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
