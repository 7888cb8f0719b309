// Package store holds the small in-memory view types backing the admin
// dashboard.
package store

import "time"

// RecentQuestion is one resolved query as shown on the dashboard feed.
type RecentQuestion struct {
	RequestId string    `json:"request_id"`
	Query     string    `json:"query"`
	Source    string    `json:"source"`
	CacheHit  bool      `json:"cache_hit"`
	Elapsed   float64   `json:"response_time"` // seconds
	At        time.Time `json:"at"`
}
