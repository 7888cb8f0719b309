package usage

import (
	"context"
	"sync"
	"testing"
	"time"

	"ai-docs-assistant-be/internal/entity"
	"ai-docs-assistant-be/internal/pkg/logger"
	"ai-docs-assistant-be/pkg/resolver"
)

type fakeUsageRepo struct {
	saved  []*entity.UsageStat
	latest *entity.UsageStat
}

func (f *fakeUsageRepo) Create(ctx context.Context, stat *entity.UsageStat) error {
	f.saved = append(f.saved, stat)
	return nil
}

func (f *fakeUsageRepo) FindLatest(ctx context.Context) (*entity.UsageStat, error) {
	return f.latest, nil
}

func record(source resolver.Source, ms int) resolver.UsageRecord {
	return resolver.UsageRecord{
		Source:  source,
		Elapsed: time.Duration(ms) * time.Millisecond,
		At:      time.Now(),
	}
}

func TestTrackerAggregatesPerSource(t *testing.T) {
	tr := NewTracker(logger.NewNop(), nil)

	tr.Record(record(resolver.SourceVector, 100))
	tr.Record(record(resolver.SourceVector, 300))
	tr.Record(record(resolver.SourceCache, 2))

	if got := tr.TotalQueries(); got != 3 {
		t.Fatalf("TotalQueries = %d, want 3", got)
	}

	stats := tr.Stats()
	v, ok := stats["vector"]
	if !ok {
		t.Fatal("no aggregate for vector")
	}
	if v.Count != 2 {
		t.Errorf("vector count = %d, want 2", v.Count)
	}
	if v.TotalMs != 400 {
		t.Errorf("vector total = %v, want 400", v.TotalMs)
	}
	if v.AvgMs != 200 {
		t.Errorf("vector avg = %v, want 200", v.AvgMs)
	}
	if v.MinMs != 100 || v.MaxMs != 300 {
		t.Errorf("vector min/max = %v/%v, want 100/300", v.MinMs, v.MaxMs)
	}
	if stats["cache"].Count != 1 {
		t.Errorf("cache count = %d, want 1", stats["cache"].Count)
	}
}

func TestTrackerStatsIsACopy(t *testing.T) {
	tr := NewTracker(logger.NewNop(), nil)
	tr.Record(record(resolver.SourceVector, 50))

	stats := tr.Stats()
	stats["vector"] = SourceStats{Count: 999}
	delete(stats, "vector")

	if got := tr.Stats()["vector"].Count; got != 1 {
		t.Errorf("tracker state mutated through snapshot, count = %d", got)
	}
}

func TestTrackerConcurrentRecord(t *testing.T) {
	tr := NewTracker(logger.NewNop(), nil)

	const workers = 8
	const perWorker = 50

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				tr.Record(record(resolver.SourceQuickSearch, 10))
			}
		}()
	}
	wg.Wait()

	if got := tr.TotalQueries(); got != workers*perWorker {
		t.Errorf("TotalQueries = %d, want %d", got, workers*perWorker)
	}
	if got := tr.Stats()["quick_search"].Count; got != workers*perWorker {
		t.Errorf("quick_search count = %d, want %d", got, workers*perWorker)
	}
}

func TestTrackerFlushAndRestore(t *testing.T) {
	repo := &fakeUsageRepo{}
	tr := NewTracker(logger.NewNop(), repo)

	tr.Record(record(resolver.SourceVector, 100))
	tr.Record(record(resolver.SourceCache, 2))

	if err := tr.Flush(context.Background()); err != nil {
		t.Fatalf("flush failed: %v", err)
	}
	if len(repo.saved) != 1 {
		t.Fatalf("expected one snapshot, got %d", len(repo.saved))
	}
	repo.latest = repo.saved[0]

	restored := NewTracker(logger.NewNop(), repo)
	if err := restored.Restore(context.Background()); err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	if got := restored.TotalQueries(); got != 2 {
		t.Errorf("restored total = %d, want 2", got)
	}
	v := restored.Stats()["vector"]
	if v.Count != 1 || v.MinMs != 100 || v.MaxMs != 100 {
		t.Errorf("restored vector aggregate wrong: %+v", v)
	}

	// Counters keep accumulating after a restore.
	restored.Record(record(resolver.SourceVector, 300))
	v = restored.Stats()["vector"]
	if v.Count != 2 || v.MaxMs != 300 {
		t.Errorf("post-restore aggregate wrong: %+v", v)
	}
}

func TestTrackerFlushSkipsWhenEmpty(t *testing.T) {
	repo := &fakeUsageRepo{}
	tr := NewTracker(logger.NewNop(), repo)

	if err := tr.Flush(context.Background()); err != nil {
		t.Fatalf("flush failed: %v", err)
	}
	if len(repo.saved) != 0 {
		t.Errorf("empty tracker wrote %d snapshots", len(repo.saved))
	}
}
