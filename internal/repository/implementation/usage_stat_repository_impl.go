package implementation

import (
	"context"
	"errors"

	"ai-docs-assistant-be/internal/entity"
	"ai-docs-assistant-be/internal/mapper"
	"ai-docs-assistant-be/internal/model"
	"ai-docs-assistant-be/internal/repository/contract"

	"gorm.io/gorm"
)

type UsageStatRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.UsageStatMapper
}

func NewUsageStatRepository(db *gorm.DB) contract.UsageStatRepository {
	return &UsageStatRepositoryImpl{
		db:     db,
		mapper: mapper.NewUsageStatMapper(),
	}
}

func (r *UsageStatRepositoryImpl) Create(ctx context.Context, stat *entity.UsageStat) error {
	m, err := r.mapper.ToModel(stat)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	stat.Id = m.Id
	stat.CreatedAt = m.CreatedAt
	return nil
}

func (r *UsageStatRepositoryImpl) FindLatest(ctx context.Context) (*entity.UsageStat, error) {
	var m model.UsageStat
	err := r.db.WithContext(ctx).Order("created_at DESC").First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m)
}
