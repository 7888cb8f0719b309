package mapper

import (
	"encoding/json"

	"ai-docs-assistant-be/internal/entity"
	"ai-docs-assistant-be/internal/model"

	"gorm.io/datatypes"
)

type UsageStatMapper struct{}

func NewUsageStatMapper() *UsageStatMapper {
	return &UsageStatMapper{}
}

func (m *UsageStatMapper) ToEntity(s *model.UsageStat) (*entity.UsageStat, error) {
	if s == nil {
		return nil, nil
	}

	bySource := map[string]entity.SourceUsage{}
	if len(s.BySource) > 0 {
		if err := json.Unmarshal(s.BySource, &bySource); err != nil {
			return nil, err
		}
	}

	return &entity.UsageStat{
		Id:           s.Id,
		TotalQueries: s.TotalQueries,
		BySource:     bySource,
		CreatedAt:    s.CreatedAt,
	}, nil
}

func (m *UsageStatMapper) ToModel(s *entity.UsageStat) (*model.UsageStat, error) {
	if s == nil {
		return nil, nil
	}

	raw, err := json.Marshal(s.BySource)
	if err != nil {
		return nil, err
	}

	return &model.UsageStat{
		Id:           s.Id,
		TotalQueries: s.TotalQueries,
		BySource:     datatypes.JSON(raw),
		CreatedAt:    s.CreatedAt,
	}, nil
}
