package dashboard

import (
	"context"
	"time"

	"ai-docs-assistant-be/internal/dto"
	"ai-docs-assistant-be/internal/pkg/logger"
	"ai-docs-assistant-be/internal/repository/memory"
	"ai-docs-assistant-be/pkg/admin/usage"
	"ai-docs-assistant-be/pkg/bucketindex"
	"ai-docs-assistant-be/pkg/cache"
	"ai-docs-assistant-be/pkg/corpus"
	"ai-docs-assistant-be/pkg/vector"
)

// Aggregator composes the admin dashboard view from the live engine
// components. All reads are snapshots; nothing here mutates the engine.
type Aggregator struct {
	logger    logger.ILogger
	store     cache.Store
	index     *bucketindex.Index
	retriever *vector.Retriever
	corpus    *corpus.Store
	tracker   *usage.Tracker
	recent    *memory.RecentQuestionsRepository
}

// NewAggregator creates a new dashboard aggregator
func NewAggregator(
	log logger.ILogger,
	store cache.Store,
	index *bucketindex.Index,
	retriever *vector.Retriever,
	corpusStore *corpus.Store,
	tracker *usage.Tracker,
	recent *memory.RecentQuestionsRepository,
) *Aggregator {
	return &Aggregator{
		logger:    log,
		store:     store,
		index:     index,
		retriever: retriever,
		corpus:    corpusStore,
		tracker:   tracker,
		recent:    recent,
	}
}

// GetStats retrieves dashboard statistics
func (a *Aggregator) GetStats(ctx context.Context) *dto.DashboardResponse {
	cacheStats := a.store.Stats()
	indexStats := a.index.Stats()
	vectorStats := a.retriever.Stats()
	current := a.corpus.Current()

	usageBySource := map[string]dto.SourceUsageResponse{}
	for source, s := range a.tracker.Stats() {
		usageBySource[source] = dto.SourceUsageResponse{
			Count:   s.Count,
			TotalMs: s.TotalMs,
			AvgMs:   s.AvgMs,
			MinMs:   s.MinMs,
			MaxMs:   s.MaxMs,
		}
	}

	recentQuestions := []dto.RecentQuestionResponse{}
	for _, q := range a.recent.List() {
		recentQuestions = append(recentQuestions, dto.RecentQuestionResponse{
			RequestId:    q.RequestId,
			Query:        q.Query,
			Source:       q.Source,
			CacheHit:     q.CacheHit,
			ResponseTime: q.Elapsed,
			At:           q.At,
		})
	}

	return &dto.DashboardResponse{
		Cache: dto.CacheStatsResponse{
			Backend: cacheStats.Backend,
			Entries: cacheStats.Entries,
		},
		StructuredIndex: dto.IndexStatsResponse{
			Enabled:     indexStats.Enabled,
			Lines:       indexStats.Lines,
			Departments: indexStats.Departments,
			Labels:      indexStats.Labels,
			Names:       indexStats.Names,
			LastBuildMs: indexStats.LastBuildDuration.Milliseconds(),
		},
		Vector: dto.VectorStatsResponse{
			Backend: vectorStats.Backend,
			Loaded:  vectorStats.Loaded,
			Chunks:  vectorStats.Chunks,
		},
		Corpus: dto.CorpusStatsResponse{
			Loaded: current.Loaded,
			Path:   current.Path,
			Bytes:  len(current.Text),
		},
		TotalQueries:    a.tracker.TotalQueries(),
		UsageBySource:   usageBySource,
		RecentQuestions: recentQuestions,
	}
}

// GetSystemLogs retrieves recent structured log entries
func (a *Aggregator) GetSystemLogs(ctx context.Context, page, limit int, level string) ([]*dto.LogListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 50
	}

	logs, err := a.logger.GetLogs(level, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}

	var res []*dto.LogListResponse
	for _, l := range logs {
		ts, _ := time.Parse(time.RFC3339, l.Timestamp)
		res = append(res, &dto.LogListResponse{
			Id:        l.Id,
			Level:     l.Level,
			Module:    l.Module,
			Message:   l.Message,
			CreatedAt: ts,
		})
	}
	return res, nil
}

// GetLogDetail retrieves a single log entry
func (a *Aggregator) GetLogDetail(ctx context.Context, logId string) (*dto.LogDetailResponse, error) {
	l, err := a.logger.GetLogById(logId)
	if err != nil {
		return nil, err
	}

	ts, _ := time.Parse(time.RFC3339, l.Timestamp)

	return &dto.LogDetailResponse{
		LogListResponse: dto.LogListResponse{
			Id:        logId,
			Level:     l.Level,
			Module:    l.Module,
			Message:   l.Message,
			CreatedAt: ts,
		},
		Details: l.Details,
	}, nil
}
