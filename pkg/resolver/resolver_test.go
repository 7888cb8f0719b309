package resolver

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"ai-docs-assistant-be/internal/pkg/logger"
	"ai-docs-assistant-be/pkg/bucketindex"
	"ai-docs-assistant-be/pkg/cache"
	"ai-docs-assistant-be/pkg/corpus"
	"ai-docs-assistant-be/pkg/embedding"
	"ai-docs-assistant-be/pkg/llm"
	"ai-docs-assistant-be/pkg/vector"
)

const metadataContent = `department: engineering | name: logs-bucket | label: env:prod
department: finance | name: invoices | label: env:prod
department: engineering | name: metrics-bucket | label: env:staging
`

const corpusContent = `The logs-bucket stores application logs with a 30 day retention policy.
Invoices are kept in the finance bucket for seven years.
Lifecycle rules move objects to cold storage after 90 days.
`

type fakeLLM struct {
	mu     sync.Mutex
	answer string
	err    error
	delay  time.Duration
	calls  int
	last   string
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	f.mu.Lock()
	f.calls++
	f.last = prompt
	f.mu.Unlock()
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return f.answer, f.err
}

func (f *fakeLLM) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	prompt := ""
	if len(history) > 0 {
		prompt = history[len(history)-1].Content
	}
	return f.Generate(ctx, prompt, opts...)
}

func (f *fakeLLM) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type memStore struct {
	mu sync.Mutex
	m  map[string]cache.Entry
}

func newMemStore() *memStore {
	return &memStore{m: map[string]cache.Entry{}}
}

func (s *memStore) Get(query string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.m[cache.Key(query)]
	if !ok {
		return "", false
	}
	return e.Answer, true
}

func (s *memStore) Set(query, answer, source string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[cache.Key(query)] = cache.Entry{Query: query, Answer: answer, Source: source, Timestamp: time.Now()}
}

func (s *memStore) ClearExpired() int { return 0 }

func (s *memStore) ClearAll() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.m)
	s.m = map[string]cache.Entry{}
	return n
}

func (s *memStore) Stats() cache.StoreStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cache.StoreStats{Backend: "memory", Entries: len(s.m)}
}

func (s *memStore) Close() error { return nil }

func (s *memStore) entry(query string) (cache.Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.m[cache.Key(query)]
	return e, ok
}

type fakeChunkStore struct {
	mu       sync.Mutex
	loadErr  error
	chunks   []vector.DocumentChunk
	searches int
}

func (f *fakeChunkStore) Load(ctx context.Context) error { return f.loadErr }

func (f *fakeChunkStore) Search(ctx context.Context, emb []float32, k int) ([]vector.DocumentChunk, error) {
	f.mu.Lock()
	f.searches++
	f.mu.Unlock()
	return f.chunks, nil
}

func (f *fakeChunkStore) ReplaceAll(ctx context.Context, chunks []vector.DocumentChunk) error {
	f.chunks = chunks
	return nil
}

func (f *fakeChunkStore) Count() int { return len(f.chunks) }

func (f *fakeChunkStore) Name() string { return "fake" }

func (f *fakeChunkStore) searchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.searches
}

type fakeEmbedder struct{}

func (fakeEmbedder) Generate(ctx context.Context, text string, taskType string) (*embedding.EmbeddingResponse, error) {
	return &embedding.EmbeddingResponse{Embedding: embedding.EmbeddingResponseEmbedding{Values: []float32{1, 0}}}, nil
}

// testDeps holds the cascade fixture; zero values give a working stack with
// metadata index, one vector chunk and a loadable corpus.
type testDeps struct {
	llm        *fakeLLM
	chunkStore *fakeChunkStore
	store      *memStore
	noCorpus   bool
	opts       Options
}

func newTestResolver(t *testing.T, d *testDeps) (*Resolver, *testDeps) {
	t.Helper()

	log := logger.NewNop()
	if d.llm == nil {
		d.llm = &fakeLLM{answer: "generated answer"}
	}
	if d.chunkStore == nil {
		d.chunkStore = &fakeChunkStore{chunks: []vector.DocumentChunk{
			{Source: "docs/meta.txt", Content: "retention policy details"},
		}}
	}
	if d.store == nil {
		d.store = newMemStore()
	}
	if d.opts.LLMTimeout == 0 {
		d.opts.LLMTimeout = 2 * time.Second
	}
	if d.opts.VectorTimeout == 0 {
		d.opts.VectorTimeout = 2 * time.Second
	}

	dir := t.TempDir()
	metaPath := filepath.Join(dir, "bucket_metadata.txt")
	if err := os.WriteFile(metaPath, []byte(metadataContent), 0o644); err != nil {
		t.Fatalf("write metadata: %v", err)
	}
	idx := bucketindex.New(5, false, log)
	if err := idx.Build(metaPath); err != nil {
		t.Fatalf("build index: %v", err)
	}

	corpusPath := filepath.Join(dir, "corpus.txt")
	if !d.noCorpus {
		if err := os.WriteFile(corpusPath, []byte(corpusContent), 0o644); err != nil {
			t.Fatalf("write corpus: %v", err)
		}
	}
	corpusStore := corpus.NewStore(corpusPath, filepath.Join(dir, "docs"), log)

	retriever := vector.NewRetriever(d.chunkStore, fakeEmbedder{}, 3, log)
	builder := vector.NewBuilder(d.chunkStore, fakeEmbedder{}, 800, 100, log)

	r := NewResolver(d.store, idx, retriever, builder, corpusStore, d.llm, nil, nil, d.opts, log)
	return r, d
}

func TestResolveCacheHit(t *testing.T) {
	r, d := newTestResolver(t, &testDeps{})
	d.store.Set("what is the retention policy?", "cached answer", "vector")

	res, err := r.Resolve(context.Background(), "what is the retention policy?")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if res.Source != SourceCache || res.Answer != "cached answer" {
		t.Fatalf("expected cache hit, got %s: %q", res.Source, res.Answer)
	}
	if res.Confidence != 1.0 {
		t.Errorf("cache confidence = %v, want 1.0", res.Confidence)
	}
	if d.llm.callCount() != 0 {
		t.Errorf("cache hit must not call the generator, got %d calls", d.llm.callCount())
	}
}

func TestResolveCacheKeyNormalization(t *testing.T) {
	r, d := newTestResolver(t, &testDeps{})
	d.store.Set("what is the retention policy?", "cached answer", "vector")

	res, err := r.Resolve(context.Background(), "  WHAT IS THE RETENTION POLICY?  ")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if res.Source != SourceCache {
		t.Fatalf("case/whitespace variant should hit the cache, got %s", res.Source)
	}
}

func TestResolveQuickSearchSuccess(t *testing.T) {
	r, d := newTestResolver(t, &testDeps{})

	res, err := r.Resolve(context.Background(), `show buckets with department: "engineering"`)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if res.Source != SourceQuickSearch {
		t.Fatalf("expected quick_search, got %s", res.Source)
	}
	if res.Confidence != 0.9 {
		t.Errorf("confidence = %v, want 0.9", res.Confidence)
	}
	if !strings.Contains(d.llm.last, "Based on this bucket information:") {
		t.Errorf("generator prompt missing structured matches:\n%s", d.llm.last)
	}
	if !strings.Contains(d.llm.last, "logs-bucket") {
		t.Errorf("prompt should carry the matched lines:\n%s", d.llm.last)
	}
	if d.chunkStore.searchCount() != 0 {
		t.Error("vector tier must not run when the structured tier answers")
	}

	// Write-through: the same question now replays from cache.
	if entry, ok := d.store.entry(`show buckets with department: "engineering"`); !ok {
		t.Fatal("answer was not written to cache")
	} else if entry.Source != string(SourceQuickSearch) {
		t.Errorf("cached source = %s, want quick_search", entry.Source)
	}

	res2, err := r.Resolve(context.Background(), `show buckets with department: "engineering"`)
	if err != nil {
		t.Fatalf("second resolve failed: %v", err)
	}
	if res2.Source != SourceCache {
		t.Fatalf("second ask should hit cache, got %s", res2.Source)
	}
	if d.llm.callCount() != 1 {
		t.Errorf("generator should have run once, got %d", d.llm.callCount())
	}
}

func TestResolveQuickSearchGeneratorTimeout(t *testing.T) {
	slow := &fakeLLM{answer: "late", delay: 500 * time.Millisecond}
	r, _ := newTestResolver(t, &testDeps{
		llm:  slow,
		opts: Options{LLMTimeout: 50 * time.Millisecond},
	})

	start := time.Now()
	res, err := r.Resolve(context.Background(), "buckets with department: engineering")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if res.Source != SourceQuickSearchTimeoutRaw {
		t.Fatalf("expected quick_search_timeout_raw, got %s", res.Source)
	}
	if res.Confidence != 0.7 {
		t.Errorf("confidence = %v, want 0.7", res.Confidence)
	}
	// The degraded answer is the raw matched lines, not generator output.
	if !strings.Contains(res.Answer, "Line ") || !strings.Contains(res.Answer, "engineering") {
		t.Errorf("expected raw matches as answer, got %q", res.Answer)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("timeout path took too long: %v", elapsed)
	}
}

func TestResolveQuickSearchGeneratorError(t *testing.T) {
	r, _ := newTestResolver(t, &testDeps{
		llm: &fakeLLM{err: errors.New("model not loaded")},
	})

	res, err := r.Resolve(context.Background(), "buckets with department: engineering")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if res.Source != SourceQuickSearchRaw {
		t.Fatalf("expected quick_search_raw, got %s", res.Source)
	}
	if res.Confidence != 0.7 {
		t.Errorf("confidence = %v, want 0.7", res.Confidence)
	}
	if !strings.Contains(res.Answer, "engineering") {
		t.Errorf("expected raw matches, got %q", res.Answer)
	}
}

func TestResolveVectorSuccess(t *testing.T) {
	r, d := newTestResolver(t, &testDeps{})

	// No attribute marker, so the structured tier is skipped.
	res, err := r.Resolve(context.Background(), "how long are logs retained?")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if res.Source != SourceVector {
		t.Fatalf("expected vector, got %s", res.Source)
	}
	if res.Confidence != 0.8 {
		t.Errorf("confidence = %v, want 0.8", res.Confidence)
	}
	if !strings.Contains(d.llm.last, "retention policy details") {
		t.Errorf("prompt should stuff retrieved chunks:\n%s", d.llm.last)
	}
	if !strings.Contains(d.llm.last, "Helpful Answer:") {
		t.Errorf("vector prompt malformed:\n%s", d.llm.last)
	}
}

func TestResolveVectorGeneratorFailureServesSnippets(t *testing.T) {
	r, _ := newTestResolver(t, &testDeps{
		llm: &fakeLLM{err: errors.New("generation failed")},
	})

	res, err := r.Resolve(context.Background(), "how long are logs retained?")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if res.Source != SourceVectorSnippets {
		t.Fatalf("expected vector_snippets_fallback, got %s", res.Source)
	}
	if res.Confidence != 0.6 {
		t.Errorf("confidence = %v, want 0.6", res.Confidence)
	}
	if !strings.Contains(res.Answer, "[1] docs/meta.txt:") {
		t.Errorf("expected numbered snippets, got %q", res.Answer)
	}
}

func TestResolveVectorUnavailableFallsThrough(t *testing.T) {
	r, d := newTestResolver(t, &testDeps{
		chunkStore: &fakeChunkStore{loadErr: errors.New("index missing")},
	})

	res, err := r.Resolve(context.Background(), "how long are invoices kept?")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if res.Source != SourceTxtFallback {
		t.Fatalf("expected txt_fallback, got %s", res.Source)
	}
	if res.Confidence != 0.6 {
		t.Errorf("confidence = %v, want 0.6", res.Confidence)
	}
	if !strings.Contains(d.llm.last, "Based on this information:") {
		t.Errorf("fulltext prompt malformed:\n%s", d.llm.last)
	}
}

func TestResolveVectorEmptyFallsThrough(t *testing.T) {
	r, _ := newTestResolver(t, &testDeps{
		chunkStore: &fakeChunkStore{chunks: nil},
	})

	res, err := r.Resolve(context.Background(), "how long are invoices kept?")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	// Zero chunks is a miss, not a degraded answer.
	if res.Source != SourceTxtFallback {
		t.Fatalf("expected txt_fallback after empty vector result, got %s", res.Source)
	}
}

func TestResolveFulltextGeneratorErrorServesRawMatches(t *testing.T) {
	r, _ := newTestResolver(t, &testDeps{
		llm:        &fakeLLM{err: errors.New("down")},
		chunkStore: &fakeChunkStore{loadErr: errors.New("index missing")},
	})

	res, err := r.Resolve(context.Background(), "how long are invoices kept?")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if res.Source != SourceTxtFallbackRaw {
		t.Fatalf("expected txt_fallback_raw, got %s", res.Source)
	}
	if res.Confidence != 0.5 {
		t.Errorf("confidence = %v, want 0.5", res.Confidence)
	}
	if !strings.Contains(res.Answer, "Line ") {
		t.Errorf("expected scored corpus lines, got %q", res.Answer)
	}
}

func TestResolveNotFoundNotCached(t *testing.T) {
	r, d := newTestResolver(t, &testDeps{
		chunkStore: &fakeChunkStore{loadErr: errors.New("index missing")},
	})

	res, err := r.Resolve(context.Background(), "zzz qqq xxx")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if res.Source != SourceNotFound {
		t.Fatalf("expected not_found, got %s", res.Source)
	}
	if res.Answer != "No relevant information found for your question." {
		t.Errorf("unexpected terminal answer: %q", res.Answer)
	}
	if res.Confidence != 0.0 {
		t.Errorf("confidence = %v, want 0.0", res.Confidence)
	}
	if d.store.Stats().Entries != 0 {
		t.Error("terminal answers must not be cached")
	}
}

func TestResolveNoData(t *testing.T) {
	r, d := newTestResolver(t, &testDeps{
		chunkStore: &fakeChunkStore{loadErr: errors.New("index missing")},
		noCorpus:   true,
	})

	res, err := r.Resolve(context.Background(), "anything at all")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if res.Source != SourceNoData {
		t.Fatalf("expected no_data, got %s", res.Source)
	}
	if res.Answer != "No data available to answer your question." {
		t.Errorf("unexpected terminal answer: %q", res.Answer)
	}
	if d.store.Stats().Entries != 0 {
		t.Error("terminal answers must not be cached")
	}
}

func TestResolveRejectsInvalidQueries(t *testing.T) {
	r, d := newTestResolver(t, &testDeps{})

	cases := []struct {
		name  string
		query string
	}{
		{"empty", ""},
		{"whitespace only", "   \n\t  "},
		{"too long", strings.Repeat("a", 2001)},
		{"script injection", "show me <script>alert(1)</script>"},
		{"traversal", "read ../../etc/passwd"},
		{"code eval", "eval(import os)"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := r.Resolve(context.Background(), tc.query)
			if !errors.Is(err, ErrInvalidQuery) {
				t.Fatalf("expected ErrInvalidQuery, got %v", err)
			}
		})
	}
	if d.llm.callCount() != 0 {
		t.Errorf("rejected queries must not reach the generator, got %d calls", d.llm.callCount())
	}
}

type capturingRecorder struct {
	mu   sync.Mutex
	recs []UsageRecord
}

func (c *capturingRecorder) Record(rec UsageRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.recs = append(c.recs, rec)
}

type capturingSink struct {
	mu   sync.Mutex
	evts []ActivityEvent
}

func (c *capturingSink) Emit(evt ActivityEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.evts = append(c.evts, evt)
}

func TestResolveObservers(t *testing.T) {
	d := &testDeps{}
	r, d := newTestResolver(t, d)

	rec := &capturingRecorder{}
	sink := &capturingSink{}
	r.usage = rec
	r.activity = sink

	if _, err := r.Resolve(context.Background(), "how long are logs retained?"); err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	if len(rec.recs) != 1 {
		t.Fatalf("expected one usage record, got %d", len(rec.recs))
	}
	if rec.recs[0].Source != SourceVector || rec.recs[0].CacheHit {
		t.Errorf("unexpected usage record: %+v", rec.recs[0])
	}

	var kinds []string
	for _, e := range sink.evts {
		kinds = append(kinds, e.Kind)
	}
	if len(sink.evts) < 3 {
		t.Fatalf("expected started/stage/resolved events, got %v", kinds)
	}
	if sink.evts[0].Kind != EventStarted {
		t.Errorf("first event should be started, got %s", sink.evts[0].Kind)
	}
	last := sink.evts[len(sink.evts)-1]
	if last.Kind != EventResolved || last.Source != SourceVector {
		t.Errorf("last event should be resolved/vector, got %+v", last)
	}

	// The request id ties the whole series together.
	for _, e := range sink.evts[1:] {
		if e.RequestId != sink.evts[0].RequestId {
			t.Errorf("event request ids diverge: %v vs %v", e.RequestId, sink.evts[0].RequestId)
		}
	}
	_ = d
}

func TestResolveHealth(t *testing.T) {
	r, _ := newTestResolver(t, &testDeps{})

	// Surface the vector and corpus tiers once so health reflects them.
	if _, err := r.Resolve(context.Background(), "how long are logs retained?"); err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	health := r.Health()
	for _, component := range []string{"cache", "structured_index", "vector_store", "corpus"} {
		if _, ok := health[component]; !ok {
			t.Errorf("health report missing %s", component)
		}
	}
	if !health["structured_index"].Loaded {
		t.Error("structured index should report loaded")
	}
	if !health["vector_store"].Loaded {
		t.Error("vector store should report loaded after a successful search")
	}
}
