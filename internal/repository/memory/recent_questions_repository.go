package memory

import (
	"sort"
	"time"

	"ai-docs-assistant-be/pkg/resolver"
	"ai-docs-assistant-be/pkg/store"

	"github.com/patrickmn/go-cache"
)

// RecentQuestionsRepository keeps the recently resolved questions shown on
// the dashboard. Entries expire on their own TTL; List caps how many the
// dashboard sees.
type RecentQuestionsRepository struct {
	cache *cache.Cache
	limit int
}

func NewRecentQuestionsRepository(ttl time.Duration, limit int) *RecentQuestionsRepository {
	if ttl <= 0 {
		ttl = 1 * time.Hour
	}
	if limit <= 0 {
		limit = 20
	}
	c := cache.New(ttl, 10*time.Minute)
	return &RecentQuestionsRepository{
		cache: c,
		limit: limit,
	}
}

// Record implements resolver.UsageRecorder.
func (r *RecentQuestionsRepository) Record(rec resolver.UsageRecord) {
	q := &store.RecentQuestion{
		RequestId: rec.RequestId.String(),
		Query:     rec.Query,
		Source:    string(rec.Source),
		CacheHit:  rec.CacheHit,
		Elapsed:   rec.Elapsed.Seconds(),
		At:        rec.At,
	}
	r.cache.Set(q.RequestId, q, cache.DefaultExpiration)
}

// List returns the retained questions, most recent first.
func (r *RecentQuestionsRepository) List() []*store.RecentQuestion {
	items := r.cache.Items()

	questions := make([]*store.RecentQuestion, 0, len(items))
	for _, item := range items {
		if q, ok := item.Object.(*store.RecentQuestion); ok {
			questions = append(questions, q)
		}
	}

	sort.Slice(questions, func(i, j int) bool {
		return questions[i].At.After(questions[j].At)
	})
	if len(questions) > r.limit {
		questions = questions[:r.limit]
	}
	return questions
}
