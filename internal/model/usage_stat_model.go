package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// UsageStat rows are append-only snapshots of cumulative usage; the
// tracker flushes one on shutdown and restores from the newest.
type UsageStat struct {
	Id           uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TotalQueries int64          `gorm:"default:0"`
	BySource     datatypes.JSON `gorm:"type:jsonb"` // map[source]{count,total_ms,min_ms,max_ms}
	CreatedAt    time.Time      `gorm:"autoCreateTime;index"`
}

func (UsageStat) TableName() string {
	return "usage_stats"
}
