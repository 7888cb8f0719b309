package resolver

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"ai-docs-assistant-be/internal/pkg/logger"
	"ai-docs-assistant-be/pkg/bucketindex"
	"ai-docs-assistant-be/pkg/cache"
	"ai-docs-assistant-be/pkg/corpus"
	"ai-docs-assistant-be/pkg/fulltext"
	"ai-docs-assistant-be/pkg/guard"
	"ai-docs-assistant-be/pkg/llm"
	"ai-docs-assistant-be/pkg/vector"
)

// Options are the cascade tunables. Zero values fall back to defaults.
type Options struct {
	LLMTimeout         time.Duration
	VectorTimeout      time.Duration
	VectorTopK         int
	MaxContextChars    int
	MaxQueryLength     int
	FulltextMaxResults int
}

func (o Options) withDefaults() Options {
	if o.LLMTimeout <= 0 {
		o.LLMTimeout = 30 * time.Second
	}
	if o.VectorTimeout <= 0 {
		o.VectorTimeout = 10 * time.Second
	}
	if o.VectorTopK <= 0 {
		o.VectorTopK = 3
	}
	if o.MaxContextChars <= 0 {
		o.MaxContextChars = 4000
	}
	if o.MaxQueryLength <= 0 {
		o.MaxQueryLength = DefaultMaxQueryLength
	}
	if o.FulltextMaxResults <= 0 {
		o.FulltextMaxResults = 10
	}
	return o
}

// ComponentHealth is one subsystem's slice of the health report.
type ComponentHealth struct {
	Loaded       bool
	LastDuration time.Duration
	Details      map[string]interface{}
}

// Resolver owns the cascade and the admin operations over its tiers.
type Resolver struct {
	store     cache.Store
	index     *bucketindex.Index
	retriever *vector.Retriever
	builder   *vector.Builder
	corpus    *corpus.Store
	llm       llm.LLMProvider
	usage     UsageRecorder
	activity  ActivitySink
	opts      Options
	logger    logger.ILogger
}

// NewResolver wires the tiers together. usage and activity may be nil.
func NewResolver(
	store cache.Store,
	index *bucketindex.Index,
	retriever *vector.Retriever,
	builder *vector.Builder,
	corpusStore *corpus.Store,
	llmProvider llm.LLMProvider,
	usage UsageRecorder,
	activity ActivitySink,
	opts Options,
	log logger.ILogger,
) *Resolver {
	return &Resolver{
		store:     store,
		index:     index,
		retriever: retriever,
		builder:   builder,
		corpus:    corpusStore,
		llm:       llmProvider,
		usage:     usage,
		activity:  activity,
		opts:      opts.withDefaults(),
		logger:    log,
	}
}

// Resolve walks the tiers in order and always produces an answer for a
// valid query. ErrInvalidQuery is the only error returned; every other
// failure degrades to a later tier or a raw-matches answer.
func (r *Resolver) Resolve(ctx context.Context, rawQuery string) (*Result, error) {
	start := time.Now()

	query, err := ValidateQuery(rawQuery, r.opts.MaxQueryLength)
	if err != nil {
		r.logger.Warn("resolver", "Query rejected", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, err
	}

	requestId := uuid.New()
	r.emit(ActivityEvent{RequestId: requestId, Kind: EventStarted, Query: truncate(query, 120), At: time.Now()})

	res := r.cascade(ctx, requestId, query)
	res.RequestId = requestId
	res.Query = query
	res.Confidence = res.Source.Confidence()
	res.Elapsed = time.Since(start)

	// Write-through: answers replay from the cache on the next ask.
	// Terminal results stay uncached so they are retried once data shows up.
	if !res.Source.Terminal() && res.Source != SourceCache && strings.TrimSpace(res.Answer) != "" {
		r.store.Set(query, res.Answer, string(res.Source))
	}

	r.record(UsageRecord{
		RequestId: requestId,
		Query:     query,
		Source:    res.Source,
		Elapsed:   res.Elapsed,
		CacheHit:  res.Source == SourceCache,
		At:        time.Now(),
	})
	r.emit(ActivityEvent{RequestId: requestId, Kind: EventResolved, Source: res.Source, Elapsed: res.Elapsed, At: time.Now()})

	r.logger.Info("resolver", "Query resolved", map[string]interface{}{
		"request_id": requestId.String(),
		"source":     string(res.Source),
		"elapsed_ms": res.Elapsed.Milliseconds(),
	})
	return res, nil
}

func (r *Resolver) cascade(ctx context.Context, requestId uuid.UUID, query string) *Result {
	// Tier 0: replay a previous resolution.
	r.stage(requestId, "cache")
	if answer, ok := r.store.Get(query); ok {
		return &Result{Answer: answer, Source: SourceCache}
	}

	// Tier 1: structured metadata lookup, only for queries that name an
	// attribute explicitly.
	if matches, ok := r.index.QuickSearch(query); ok {
		r.stage(requestId, "quick_search")
		answer, err := r.generate(ctx, quickSearchPrompt(query, matches))
		switch {
		case err == nil:
			return &Result{Answer: answer, Source: SourceQuickSearch}
		case guard.IsTimeout(err):
			r.logger.Warn("resolver", "Generator timed out over structured matches", map[string]interface{}{
				"request_id": requestId.String(),
			})
			return &Result{Answer: matches, Source: SourceQuickSearchTimeoutRaw}
		default:
			r.logger.Error("resolver", "Generator failed over structured matches", map[string]interface{}{
				"request_id": requestId.String(),
				"error":      err.Error(),
			})
			return &Result{Answer: matches, Source: SourceQuickSearchRaw}
		}
	}

	// Tier 2: semantic retrieval. Any failure here falls through; only a
	// generator failure over successfully retrieved chunks degrades to
	// snippets.
	r.stage(requestId, "vector")
	chunks, err := guard.Run(ctx, r.opts.VectorTimeout, func(c context.Context) ([]vector.DocumentChunk, error) {
		return r.retriever.Search(c, query, r.opts.VectorTopK)
	})
	switch {
	case err != nil:
		r.logger.Warn("resolver", "Vector tier skipped", map[string]interface{}{
			"request_id": requestId.String(),
			"error":      err.Error(),
		})
	case len(chunks) == 0:
		r.logger.Info("resolver", "Vector search matched nothing", map[string]interface{}{
			"request_id": requestId.String(),
		})
	default:
		contextText := buildVectorContext(chunks, r.opts.MaxContextChars)
		answer, genErr := r.generate(ctx, vectorPrompt(query, contextText))
		if genErr == nil {
			return &Result{Answer: answer, Source: SourceVector}
		}
		r.logger.Warn("resolver", "Generator failed over retrieved chunks, serving snippets", map[string]interface{}{
			"request_id": requestId.String(),
			"error":      genErr.Error(),
		})
		return &Result{Answer: vector.FormatSnippets(chunks), Source: SourceVectorSnippets}
	}

	// Tier 3: scored scan over the raw corpus.
	r.stage(requestId, "txt_fallback")
	snap := r.corpus.Current()
	if !snap.Loaded {
		snap = r.corpus.Load()
	}
	if !snap.Loaded {
		return &Result{Answer: answerNoData, Source: SourceNoData}
	}

	matches := fulltext.Search(query, snap.Text, r.opts.FulltextMaxResults)
	if matches == "" {
		return &Result{Answer: answerNotFound, Source: SourceNotFound}
	}

	answer, genErr := r.generate(ctx, fulltextPrompt(query, matches))
	if genErr == nil {
		return &Result{Answer: answer, Source: SourceTxtFallback}
	}
	r.logger.Error("resolver", "Generator failed over full-text matches", map[string]interface{}{
		"request_id": requestId.String(),
		"error":      genErr.Error(),
	})
	return &Result{Answer: matches, Source: SourceTxtFallbackRaw}
}

var errEmptyGeneration = errors.New("generator returned empty output")

// generate makes exactly one bounded generator call. Empty output counts
// as a failure so degraded paths never serve a blank answer.
func (r *Resolver) generate(ctx context.Context, prompt string) (string, error) {
	answer, err := guard.Run(ctx, r.opts.LLMTimeout, func(c context.Context) (string, error) {
		return r.llm.Generate(c, prompt)
	})
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(answer) == "" {
		return "", errEmptyGeneration
	}
	return answer, nil
}

// ClearExpiredCache removes expired cache entries and reports the count.
func (r *Resolver) ClearExpiredCache() int {
	n := r.store.ClearExpired()
	r.logger.Info("resolver", "Expired cache entries cleared", map[string]interface{}{"removed": n})
	return n
}

// ClearAllCache wipes the response cache and reports the count.
func (r *Resolver) ClearAllCache() int {
	n := r.store.ClearAll()
	r.logger.Info("resolver", "Response cache cleared", map[string]interface{}{"removed": n})
	return n
}

// RebuildStructuredIndex rebuilds the metadata index from path.
func (r *Resolver) RebuildStructuredIndex(path string) error {
	return r.index.Build(path)
}

// IndexStats reports the structured index counters after a build.
func (r *Resolver) IndexStats() bucketindex.Stats {
	return r.index.Stats()
}

// RebuildVectorIndex re-embeds the documents directory and resets the
// retriever so the next search loads the fresh index.
func (r *Resolver) RebuildVectorIndex(ctx context.Context, docsDir string) (*vector.BuildResult, error) {
	res, err := r.builder.Rebuild(ctx, docsDir)
	if err != nil {
		return nil, err
	}
	r.retriever.Reset()
	return res, nil
}

// ReloadCorpus re-reads the fallback corpus from disk. The watcher calls
// this whenever the metadata file changes.
func (r *Resolver) ReloadCorpus() corpus.Corpus {
	return r.corpus.Load()
}

// ResetRetriever drops the retriever's in-memory index so the next search
// reloads it from the backend.
func (r *Resolver) ResetRetriever() {
	r.retriever.Reset()
}

// Health reports per-component readiness for the health endpoint.
func (r *Resolver) Health() map[string]ComponentHealth {
	health := make(map[string]ComponentHealth, 4)

	cs := r.store.Stats()
	health["cache"] = ComponentHealth{
		Loaded: true,
		Details: map[string]interface{}{
			"backend": cs.Backend,
			"entries": cs.Entries,
		},
	}

	is := r.index.Stats()
	health["structured_index"] = ComponentHealth{
		Loaded:       is.Enabled,
		LastDuration: is.LastBuildDuration,
		Details: map[string]interface{}{
			"lines":       is.Lines,
			"departments": is.Departments,
			"labels":      is.Labels,
			"names":       is.Names,
		},
	}

	vs := r.retriever.Stats()
	vectorDetails := map[string]interface{}{
		"backend": vs.Backend,
		"chunks":  vs.Chunks,
	}
	if vs.Err != nil {
		vectorDetails["error"] = vs.Err.Error()
	}
	health["vector_store"] = ComponentHealth{
		Loaded:  vs.Loaded,
		Details: vectorDetails,
	}

	cp := r.corpus.Current()
	health["corpus"] = ComponentHealth{
		Loaded:       cp.Loaded,
		LastDuration: cp.LoadDuration,
		Details: map[string]interface{}{
			"path": cp.Path,
		},
	}

	return health
}

func (r *Resolver) stage(requestId uuid.UUID, stage string) {
	r.emit(ActivityEvent{RequestId: requestId, Kind: EventStage, Stage: stage, At: time.Now()})
}

func (r *Resolver) emit(evt ActivityEvent) {
	if r.activity != nil {
		r.activity.Emit(evt)
	}
}

func (r *Resolver) record(rec UsageRecord) {
	if r.usage != nil {
		r.usage.Record(rec)
	}
}
