package entity

import (
	"time"

	"github.com/google/uuid"
)

// SourceUsage aggregates resolution timings for one answer source.
type SourceUsage struct {
	Count   int64   `json:"count"`
	TotalMs float64 `json:"total_ms"`
	MinMs   float64 `json:"min_ms"`
	MaxMs   float64 `json:"max_ms"`
}

// UsageStat is one persisted snapshot of cumulative resolution usage.
// The newest row seeds the in-memory tracker after a restart.
type UsageStat struct {
	Id           uuid.UUID
	TotalQueries int64
	BySource     map[string]SourceUsage
	CreatedAt    time.Time
}
