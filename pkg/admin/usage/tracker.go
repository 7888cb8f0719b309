package usage

import (
	"context"
	"sync"

	"ai-docs-assistant-be/internal/entity"
	"ai-docs-assistant-be/internal/pkg/logger"
	"ai-docs-assistant-be/internal/repository/contract"
	"ai-docs-assistant-be/pkg/resolver"
)

// SourceStats is the dashboard view of one answer source.
type SourceStats struct {
	Count   int64   `json:"count"`
	TotalMs float64 `json:"total_ms"`
	AvgMs   float64 `json:"avg_ms"`
	MinMs   float64 `json:"min_ms"`
	MaxMs   float64 `json:"max_ms"`
}

type bucket struct {
	count   int64
	totalMs float64
	minMs   float64
	maxMs   float64
}

// Tracker aggregates resolution outcomes per answer source. It implements
// resolver.UsageRecorder; Record only touches in-memory counters. The
// optional repository restores the counters at startup and flushes a
// snapshot at shutdown, so totals survive restarts when postgres is
// configured.
type Tracker struct {
	logger logger.ILogger
	repo   contract.UsageStatRepository

	mu       sync.Mutex
	total    int64
	bySource map[string]*bucket
}

// NewTracker creates a new usage tracker. repo may be nil, in which case
// stats live in memory only.
func NewTracker(log logger.ILogger, repo contract.UsageStatRepository) *Tracker {
	return &Tracker{
		logger:   log,
		repo:     repo,
		bySource: map[string]*bucket{},
	}
}

// Record implements resolver.UsageRecorder.
func (t *Tracker) Record(rec resolver.UsageRecord) {
	ms := float64(rec.Elapsed.Microseconds()) / 1000.0

	t.mu.Lock()
	defer t.mu.Unlock()

	t.total++
	b, ok := t.bySource[string(rec.Source)]
	if !ok {
		t.bySource[string(rec.Source)] = &bucket{count: 1, totalMs: ms, minMs: ms, maxMs: ms}
		return
	}
	b.count++
	b.totalMs += ms
	if ms < b.minMs {
		b.minMs = ms
	}
	if ms > b.maxMs {
		b.maxMs = ms
	}
}

// TotalQueries returns the number of resolutions recorded so far.
func (t *Tracker) TotalQueries() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.total
}

// Stats returns a snapshot of the per-source aggregates. The returned map
// is a copy; callers may mutate it freely.
func (t *Tracker) Stats() map[string]SourceStats {
	t.mu.Lock()
	defer t.mu.Unlock()

	stats := make(map[string]SourceStats, len(t.bySource))
	for source, b := range t.bySource {
		avg := 0.0
		if b.count > 0 {
			avg = b.totalMs / float64(b.count)
		}
		stats[source] = SourceStats{
			Count:   b.count,
			TotalMs: b.totalMs,
			AvgMs:   avg,
			MinMs:   b.minMs,
			MaxMs:   b.maxMs,
		}
	}
	return stats
}

// Restore replaces the counters with the newest persisted snapshot.
// Called once at startup, before any Record.
func (t *Tracker) Restore(ctx context.Context) error {
	if t.repo == nil {
		return nil
	}

	latest, err := t.repo.FindLatest(ctx)
	if err != nil {
		return err
	}
	if latest == nil {
		return nil
	}

	t.mu.Lock()
	t.total = latest.TotalQueries
	t.bySource = make(map[string]*bucket, len(latest.BySource))
	for source, u := range latest.BySource {
		t.bySource[source] = &bucket{
			count:   u.Count,
			totalMs: u.TotalMs,
			minMs:   u.MinMs,
			maxMs:   u.MaxMs,
		}
	}
	t.mu.Unlock()

	t.logger.Info("USAGE", "Restored usage counters from snapshot", map[string]interface{}{
		"total_queries": latest.TotalQueries,
		"sources":       len(latest.BySource),
		"snapshot_at":   latest.CreatedAt,
	})
	return nil
}

// Flush persists the current counters as a new snapshot. A tracker that
// never recorded anything writes nothing.
func (t *Tracker) Flush(ctx context.Context) error {
	if t.repo == nil {
		return nil
	}

	t.mu.Lock()
	if t.total == 0 {
		t.mu.Unlock()
		return nil
	}
	stat := &entity.UsageStat{
		TotalQueries: t.total,
		BySource:     make(map[string]entity.SourceUsage, len(t.bySource)),
	}
	for source, b := range t.bySource {
		stat.BySource[source] = entity.SourceUsage{
			Count:   b.count,
			TotalMs: b.totalMs,
			MinMs:   b.minMs,
			MaxMs:   b.maxMs,
		}
	}
	t.mu.Unlock()

	if err := t.repo.Create(ctx, stat); err != nil {
		return err
	}

	t.logger.Info("USAGE", "Flushed usage snapshot", map[string]interface{}{
		"total_queries": stat.TotalQueries,
		"sources":       len(stat.BySource),
	})
	return nil
}
