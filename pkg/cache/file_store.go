package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ai-docs-assistant-be/internal/pkg/logger"

	gocache "github.com/patrickmn/go-cache"
)

// FileStore keeps one JSON file per entry under dir, fronted by an
// in-memory hot layer so repeated hits skip the filesystem. Writes go to
// a temp file first and are published with an atomic rename, which is
// what keeps concurrent readers from ever seeing a torn record.
type FileStore struct {
	dir    string
	ttl    time.Duration
	hot    *gocache.Cache
	logger logger.ILogger
}

func NewFileStore(dir string, ttl time.Duration, log logger.ILogger) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache dir %s: %w", dir, err)
	}
	return &FileStore{
		dir:    dir,
		ttl:    ttl,
		hot:    gocache.New(ttl, 10*time.Minute),
		logger: log,
	}, nil
}

func (s *FileStore) entryPath(key string) string {
	return filepath.Join(s.dir, key+".json")
}

func (s *FileStore) Get(query string) (string, bool) {
	key := Key(query)

	if answer, ok := s.hot.Get(key); ok {
		return answer.(string), true
	}

	raw, err := os.ReadFile(s.entryPath(key))
	if err != nil {
		return "", false
	}

	var entry Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		s.logger.Warn("cache", "Corrupt cache entry treated as miss", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		return "", false
	}

	age := time.Since(entry.Timestamp)
	if age >= s.ttl {
		return "", false
	}

	// Warm the hot layer for the remaining lifetime only, so it never
	// outlives the durable record.
	s.hot.Set(key, entry.Answer, s.ttl-age)
	return entry.Answer, true
}

func (s *FileStore) Set(query, answer, source string) {
	key := Key(query)
	entry := Entry{
		Query:     query,
		Answer:    answer,
		Source:    source,
		Timestamp: time.Now(),
	}

	s.hot.Set(key, answer, gocache.DefaultExpiration)

	raw, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		s.logger.Warn("cache", "Failed to encode cache entry", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		return
	}

	tmp, err := os.CreateTemp(s.dir, key+".*.tmp")
	if err != nil {
		s.logger.Warn("cache", "Failed to create cache temp file", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		return
	}

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		s.logger.Warn("cache", "Failed to write cache temp file", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		return
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return
	}

	if err := os.Rename(tmp.Name(), s.entryPath(key)); err != nil {
		os.Remove(tmp.Name())
		s.logger.Warn("cache", "Failed to publish cache entry", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
}

func (s *FileStore) ClearExpired() int {
	files, err := os.ReadDir(s.dir)
	if err != nil {
		return 0
	}

	removed := 0
	for _, file := range files {
		name := file.Name()
		if !strings.HasSuffix(name, ".json") {
			continue
		}
		path := filepath.Join(s.dir, name)

		raw, err := os.ReadFile(path)
		if err != nil {
			continue
		}

		var entry Entry
		if err := json.Unmarshal(raw, &entry); err != nil {
			// Corrupt records are removed along with expired ones.
			if os.Remove(path) == nil {
				removed++
			}
			continue
		}

		if time.Since(entry.Timestamp) >= s.ttl {
			if os.Remove(path) == nil {
				removed++
			}
		}
	}

	s.hot.DeleteExpired()

	if removed > 0 {
		s.logger.Info("cache", "Expired cache entries removed", map[string]interface{}{
			"removed": removed,
		})
	}
	return removed
}

func (s *FileStore) ClearAll() int {
	files, err := os.ReadDir(s.dir)
	if err != nil {
		return 0
	}

	removed := 0
	for _, file := range files {
		name := file.Name()
		path := filepath.Join(s.dir, name)
		switch {
		case strings.HasSuffix(name, ".json"):
			if os.Remove(path) == nil {
				removed++
			}
		case strings.HasSuffix(name, ".tmp"):
			// Stale temp files from interrupted writes.
			os.Remove(path)
		}
	}

	s.hot.Flush()

	s.logger.Info("cache", "Cache cleared", map[string]interface{}{
		"removed": removed,
	})
	return removed
}

func (s *FileStore) Stats() StoreStats {
	stats := StoreStats{Backend: "file"}
	files, err := os.ReadDir(s.dir)
	if err != nil {
		return stats
	}
	for _, file := range files {
		if strings.HasSuffix(file.Name(), ".json") {
			stats.Entries++
		}
	}
	return stats
}

func (s *FileStore) Close() error {
	return nil
}
