package service

import (
	"context"
	"time"

	"ai-docs-assistant-be/internal/dto"
	"ai-docs-assistant-be/internal/mapper"
	"ai-docs-assistant-be/internal/pkg/logger"
	"ai-docs-assistant-be/pkg/resolver"
)

// IAssistantService is the public question-answering surface.
type IAssistantService interface {
	Ask(ctx context.Context, request *dto.AskRequest) (*dto.AskResponse, error)
	Health(ctx context.Context) *dto.HealthResponse
}

type assistantService struct {
	resolver  *resolver.Resolver
	mapper    *mapper.ResolutionMapper
	logger    logger.ILogger
	startedAt time.Time
}

func NewAssistantService(res *resolver.Resolver, log logger.ILogger) IAssistantService {
	return &assistantService{
		resolver:  res,
		mapper:    mapper.NewResolutionMapper(),
		logger:    log,
		startedAt: time.Now(),
	}
}

// Ask runs the tier cascade. The resolver degrades internally, so the only
// error that surfaces here is query validation.
func (s *assistantService) Ask(ctx context.Context, request *dto.AskRequest) (*dto.AskResponse, error) {
	result, err := s.resolver.Resolve(ctx, request.Question)
	if err != nil {
		return nil, err
	}
	return s.mapper.ToAskResponse(result), nil
}

// Health reports per-component readiness. The process stays up with
// components missing, so the report is "degraded" rather than an error
// when a tier has nothing loaded.
func (s *assistantService) Health(ctx context.Context) *dto.HealthResponse {
	components := s.resolver.Health()

	resp := &dto.HealthResponse{
		Status:        "healthy",
		Components:    make(map[string]dto.ComponentHealthResponse, len(components)),
		UptimeSeconds: time.Since(s.startedAt).Seconds(),
	}
	for name, c := range components {
		resp.Components[name] = dto.ComponentHealthResponse{
			Loaded:     c.Loaded,
			LastLoadMs: c.LastDuration.Milliseconds(),
		}
		if !c.Loaded {
			resp.Status = "degraded"
		}
	}
	return resp
}
