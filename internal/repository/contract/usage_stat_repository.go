package contract

import (
	"context"

	"ai-docs-assistant-be/internal/entity"
)

type UsageStatRepository interface {
	Create(ctx context.Context, stat *entity.UsageStat) error
	// FindLatest returns the newest snapshot, or nil when none exists.
	FindLatest(ctx context.Context) (*entity.UsageStat, error)
}
