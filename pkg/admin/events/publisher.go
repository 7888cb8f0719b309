package events

import (
	"context"
	"time"

	"ai-docs-assistant-be/internal/pkg/logger"
	pkgEvents "ai-docs-assistant-be/pkg/events"
	pkgNats "ai-docs-assistant-be/pkg/nats"
)

// Publisher abstracts event publishing for operational actions. Events
// are advisory: implementations log failures and never propagate them
// into the operation that raised them.
type Publisher interface {
	PublishCacheCleared(ctx context.Context, scope string, removed int)
	PublishIndexRebuilt(ctx context.Context, path string, lines int, duration time.Duration)
	PublishVectorRebuilt(ctx context.Context, docsDir string, documents, chunks int, duration time.Duration)
	PublishVectorRebuildFailed(ctx context.Context, docsDir, reason string)
	PublishCorpusReloaded(ctx context.Context, path string, bytes int)
}

// NatsPublisher implements Publisher using NATS. A nil inner publisher
// turns every method into a no-op, which is how bootstrap degrades when
// the NATS connection cannot be established.
type NatsPublisher struct {
	publisher *pkgNats.Publisher
	logger    logger.ILogger
}

// NewNatsPublisher creates a new NATS-based event publisher
func NewNatsPublisher(publisher *pkgNats.Publisher, logger logger.ILogger) *NatsPublisher {
	return &NatsPublisher{
		publisher: publisher,
		logger:    logger,
	}
}

// PublishCacheCleared emits cache.cleared after a manual cache sweep
func (p *NatsPublisher) PublishCacheCleared(ctx context.Context, scope string, removed int) {
	if p.publisher == nil {
		return
	}

	now := time.Now()
	evt := pkgEvents.BaseEvent{
		Type: pkgEvents.TypeCacheCleared,
		Data: map[string]interface{}{
			"scope":       scope,
			"removed":     removed,
			"occurred_at": now,
		},
		OccurredAt: now,
	}

	if err := p.publisher.Publish(ctx, evt); err != nil {
		p.logger.Error("OPS", "Failed to publish cache.cleared event", map[string]interface{}{"error": err.Error()})
	}
}

// PublishIndexRebuilt emits index.rebuilt after a structured index rebuild
func (p *NatsPublisher) PublishIndexRebuilt(ctx context.Context, path string, lines int, duration time.Duration) {
	if p.publisher == nil {
		return
	}

	now := time.Now()
	evt := pkgEvents.BaseEvent{
		Type: pkgEvents.TypeIndexRebuilt,
		Data: map[string]interface{}{
			"path":        path,
			"lines":       lines,
			"duration_ms": duration.Milliseconds(),
			"occurred_at": now,
		},
		OccurredAt: now,
	}

	if err := p.publisher.Publish(ctx, evt); err != nil {
		p.logger.Error("OPS", "Failed to publish index.rebuilt event", map[string]interface{}{"error": err.Error()})
	}
}

// PublishVectorRebuilt emits vector.rebuilt after a successful re-embedding run
func (p *NatsPublisher) PublishVectorRebuilt(ctx context.Context, docsDir string, documents, chunks int, duration time.Duration) {
	if p.publisher == nil {
		return
	}

	now := time.Now()
	evt := pkgEvents.BaseEvent{
		Type: pkgEvents.TypeVectorRebuilt,
		Data: map[string]interface{}{
			"docs_dir":    docsDir,
			"documents":   documents,
			"chunks":      chunks,
			"duration_ms": duration.Milliseconds(),
			"occurred_at": now,
		},
		OccurredAt: now,
	}

	if err := p.publisher.Publish(ctx, evt); err != nil {
		p.logger.Error("OPS", "Failed to publish vector.rebuilt event", map[string]interface{}{"error": err.Error()})
	}
}

// PublishVectorRebuildFailed emits vector.rebuild_failed so external
// tooling can page on broken embedding runs
func (p *NatsPublisher) PublishVectorRebuildFailed(ctx context.Context, docsDir, reason string) {
	if p.publisher == nil {
		return
	}

	now := time.Now()
	evt := pkgEvents.BaseEvent{
		Type: pkgEvents.TypeVectorRebuildFailed,
		Data: map[string]interface{}{
			"docs_dir":    docsDir,
			"reason":      reason,
			"occurred_at": now,
		},
		OccurredAt: now,
	}

	if err := p.publisher.Publish(ctx, evt); err != nil {
		p.logger.Error("OPS", "Failed to publish vector.rebuild_failed event", map[string]interface{}{"error": err.Error()})
	}
}

// PublishCorpusReloaded emits corpus.reloaded after the watcher or an
// admin action swapped the flattened corpus
func (p *NatsPublisher) PublishCorpusReloaded(ctx context.Context, path string, bytes int) {
	if p.publisher == nil {
		return
	}

	now := time.Now()
	evt := pkgEvents.BaseEvent{
		Type: pkgEvents.TypeCorpusReloaded,
		Data: map[string]interface{}{
			"path":        path,
			"bytes":       bytes,
			"occurred_at": now,
		},
		OccurredAt: now,
	}

	if err := p.publisher.Publish(ctx, evt); err != nil {
		p.logger.Error("OPS", "Failed to publish corpus.reloaded event", map[string]interface{}{"error": err.Error()})
	}
}
