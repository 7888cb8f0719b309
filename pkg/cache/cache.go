// Package cache is the durable response cache in front of the resolution
// cascade: normalized query -> answer plus provenance, with TTL expiry.
// The cache is a performance layer only; every backend swallows its own
// errors and reports a miss instead.
package cache

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
	"time"
)

// Entry is one cached resolution, keyed by the normalized query hash.
type Entry struct {
	Query     string    `json:"query"`
	Answer    string    `json:"answer"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
}

type StoreStats struct {
	Backend string `json:"backend"`
	Entries int    `json:"entries"`
}

type Store interface {
	// Get returns the cached answer for query if present and not expired.
	// Expired, corrupt or unreadable entries count as a miss.
	Get(query string) (string, bool)
	// Set stores the answer. A concurrent Get must never observe a torn
	// record; last-writer-wins on the same query is acceptable.
	Set(query, answer, source string)
	// ClearExpired removes entries past TTL and returns how many were removed.
	ClearExpired() int
	// ClearAll wipes the cache and returns how many entries were removed.
	ClearAll() int
	Stats() StoreStats
	Close() error
}

// Key hashes the lowercased, trimmed query. Two phrasings differing only
// in case or surrounding whitespace share a cache slot.
func Key(query string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(query))))
	return hex.EncodeToString(sum[:])
}
