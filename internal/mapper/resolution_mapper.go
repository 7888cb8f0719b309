package mapper

import (
	"ai-docs-assistant-be/internal/dto"
	"ai-docs-assistant-be/pkg/resolver"
)

type ResolutionMapper struct{}

func NewResolutionMapper() *ResolutionMapper {
	return &ResolutionMapper{}
}

func (m *ResolutionMapper) ToAskResponse(r *resolver.Result) *dto.AskResponse {
	if r == nil {
		return nil
	}

	return &dto.AskResponse{
		RequestId:    r.RequestId.String(),
		Answer:       r.Answer,
		Source:       string(r.Source),
		Confidence:   r.Confidence,
		ResponseTime: r.Elapsed.Seconds(),
	}
}
