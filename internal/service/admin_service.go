package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"ai-docs-assistant-be/internal/dto"
	"ai-docs-assistant-be/internal/pkg/logger"
	"ai-docs-assistant-be/internal/pkg/mailer"
	"ai-docs-assistant-be/pkg/admin/dashboard"
	adminEvents "ai-docs-assistant-be/pkg/admin/events"
	"ai-docs-assistant-be/pkg/resolver"
)

type IAdminService interface {
	Login(ctx context.Context, req *dto.AdminLoginRequest) (*dto.AdminLoginResponse, error)

	// Cache Management
	ClearExpiredCache(ctx context.Context) (*dto.CacheClearResponse, error)
	ClearAllCache(ctx context.Context) (*dto.CacheClearResponse, error)

	// Index Management
	RebuildStructuredIndex(ctx context.Context, req *dto.RebuildIndexRequest) (*dto.RebuildIndexResponse, error)
	RebuildVectorIndex(ctx context.Context, req *dto.RebuildVectorRequest) (*dto.RebuildVectorResponse, error)

	// Dashboard
	GetDashboardStats(ctx context.Context) (*dto.DashboardResponse, error)

	// Logs
	GetSystemLogs(ctx context.Context, page, limit int, level string) ([]*dto.LogListResponse, error)
	GetLogDetail(ctx context.Context, logId string) (*dto.LogDetailResponse, error)
}

type adminService struct {
	resolver *resolver.Resolver
	logger   logger.ILogger

	// Domain Components
	dashboardAggregator *dashboard.Aggregator
	eventPublisher      adminEvents.Publisher
	emailService        mailer.IEmailService

	// Credentials from env config
	username     string
	passwordHash string
	jwtSecret    string
	jwtExpiry    time.Duration

	// Default rebuild sources
	metadataPath string
	docsDir      string
}

func NewAdminService(
	res *resolver.Resolver,
	log logger.ILogger,
	dashboardAggregator *dashboard.Aggregator,
	eventPublisher adminEvents.Publisher,
	emailService mailer.IEmailService,
	username, passwordHash, jwtSecret string,
	jwtExpiryHours int,
	metadataPath, docsDir string,
) IAdminService {
	if jwtExpiryHours <= 0 {
		jwtExpiryHours = 12
	}
	return &adminService{
		resolver:            res,
		logger:              log,
		dashboardAggregator: dashboardAggregator,
		eventPublisher:      eventPublisher,
		emailService:        emailService,
		username:            username,
		passwordHash:        passwordHash,
		jwtSecret:           jwtSecret,
		jwtExpiry:           time.Duration(jwtExpiryHours) * time.Hour,
		metadataPath:        metadataPath,
		docsDir:             docsDir,
	}
}

// Login checks the env-configured admin credentials and issues a JWT. All
// credential failures collapse into one message so the response does not
// leak which part was wrong.
func (s *adminService) Login(ctx context.Context, req *dto.AdminLoginRequest) (*dto.AdminLoginResponse, error) {
	if s.passwordHash == "" {
		return nil, errors.New("admin login is not configured")
	}
	if req.Username != s.username {
		return nil, errors.New("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.passwordHash), []byte(req.Password)); err != nil {
		return nil, errors.New("invalid credentials")
	}

	expiresAt := time.Now().Add(s.jwtExpiry)
	claims := jwt.MapClaims{
		"username": req.Username,
		"role":     "admin",
		"exp":      expiresAt.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	secret := s.jwtSecret
	if secret == "" {
		secret = "default_secret"
	}
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return nil, err
	}

	s.logger.Info("ADMIN", "Admin login", map[string]interface{}{
		"username":   req.Username,
		"expires_at": expiresAt.Format(time.RFC3339),
	})

	return &dto.AdminLoginResponse{Token: signed, ExpiresAt: expiresAt}, nil
}

func (s *adminService) ClearExpiredCache(ctx context.Context) (*dto.CacheClearResponse, error) {
	removed := s.resolver.ClearExpiredCache()
	s.eventPublisher.PublishCacheCleared(ctx, "expired", removed)
	return &dto.CacheClearResponse{Removed: removed}, nil
}

func (s *adminService) ClearAllCache(ctx context.Context) (*dto.CacheClearResponse, error) {
	removed := s.resolver.ClearAllCache()
	s.eventPublisher.PublishCacheCleared(ctx, "all", removed)
	return &dto.CacheClearResponse{Removed: removed}, nil
}

func (s *adminService) RebuildStructuredIndex(ctx context.Context, req *dto.RebuildIndexRequest) (*dto.RebuildIndexResponse, error) {
	path := s.metadataPath
	if req != nil && req.MetadataPath != "" {
		path = req.MetadataPath
	}

	start := time.Now()
	if err := s.resolver.RebuildStructuredIndex(path); err != nil {
		s.logger.Error("ADMIN", "Structured index rebuild failed", map[string]interface{}{
			"path":  path,
			"error": err.Error(),
		})
		return nil, fmt.Errorf("rebuild structured index: %w", err)
	}
	duration := time.Since(start)

	stats := s.resolver.IndexStats()
	s.eventPublisher.PublishIndexRebuilt(ctx, path, stats.Lines, duration)

	return &dto.RebuildIndexResponse{
		Lines:       stats.Lines,
		Departments: stats.Departments,
		Labels:      stats.Labels,
		Names:       stats.Names,
		DurationMs:  duration.Milliseconds(),
	}, nil
}

// RebuildVectorIndex re-embeds the docs directory. Failures raise an ops
// alert besides the error: a stale vector index keeps serving, so nobody
// notices from the query path alone.
func (s *adminService) RebuildVectorIndex(ctx context.Context, req *dto.RebuildVectorRequest) (*dto.RebuildVectorResponse, error) {
	docsDir := s.docsDir
	if req != nil && req.DocsDir != "" {
		docsDir = req.DocsDir
	}

	result, err := s.resolver.RebuildVectorIndex(ctx, docsDir)
	if err != nil {
		s.logger.Error("ADMIN", "Vector rebuild failed", map[string]interface{}{
			"docs_dir": docsDir,
			"error":    err.Error(),
		})
		s.eventPublisher.PublishVectorRebuildFailed(ctx, docsDir, err.Error())
		if mailErr := s.emailService.SendRebuildFailed("vector index", err.Error()); mailErr != nil {
			s.logger.Warn("ADMIN", "Rebuild failure alert mail not sent", map[string]interface{}{
				"error": mailErr.Error(),
			})
		}
		return nil, fmt.Errorf("rebuild vector index: %w", err)
	}

	s.eventPublisher.PublishVectorRebuilt(ctx, docsDir, result.Documents, result.Chunks, result.Duration)

	return &dto.RebuildVectorResponse{
		Documents:  result.Documents,
		Chunks:     result.Chunks,
		DurationMs: result.Duration.Milliseconds(),
	}, nil
}

func (s *adminService) GetDashboardStats(ctx context.Context) (*dto.DashboardResponse, error) {
	return s.dashboardAggregator.GetStats(ctx), nil
}

func (s *adminService) GetSystemLogs(ctx context.Context, page, limit int, level string) ([]*dto.LogListResponse, error) {
	return s.dashboardAggregator.GetSystemLogs(ctx, page, limit, level)
}

func (s *adminService) GetLogDetail(ctx context.Context, logId string) (*dto.LogDetailResponse, error) {
	return s.dashboardAggregator.GetLogDetail(ctx, logId)
}
