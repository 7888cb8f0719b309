// Package resolver walks a query through the tiered cascade: response
// cache, structured metadata index, vector retrieval, full-text scan, then
// the terminal answers. Cheap and precise tiers go first; later tiers trade
// latency for recall. The only error a caller ever sees is a rejected
// query; everything downstream degrades instead of failing.
package resolver

import (
	"time"

	"github.com/google/uuid"
)

// Source identifies which tier produced an answer, including the degraded
// raw variants used when the generator cannot finish in time.
type Source string

const (
	SourceCache                 Source = "cache"
	SourceQuickSearch           Source = "quick_search"
	SourceQuickSearchRaw        Source = "quick_search_raw"
	SourceQuickSearchTimeoutRaw Source = "quick_search_timeout_raw"
	SourceVector                Source = "vector"
	SourceVectorSnippets        Source = "vector_snippets_fallback"
	SourceTxtFallback           Source = "txt_fallback"
	SourceTxtFallbackRaw        Source = "txt_fallback_raw"
	SourceNotFound              Source = "not_found"
	SourceNoData                Source = "no_data"
)

// Confidence per source: full trust in replayed answers, then one step
// down per tier, with another 0.2 off when an answer ships raw matches
// instead of a synthesis. Terminal sources carry none.
var confidences = map[Source]float64{
	SourceCache:                 1.0,
	SourceQuickSearch:           0.9,
	SourceVector:                0.8,
	SourceQuickSearchRaw:        0.7,
	SourceQuickSearchTimeoutRaw: 0.7,
	SourceTxtFallback:           0.6,
	SourceVectorSnippets:        0.6,
	SourceTxtFallbackRaw:        0.5,
	SourceNotFound:              0.0,
	SourceNoData:                0.0,
}

func (s Source) Confidence() float64 {
	return confidences[s]
}

// Terminal reports whether the source is one of the two no-answer ends of
// the cascade. Terminal results are never written back to the cache.
func (s Source) Terminal() bool {
	return s == SourceNotFound || s == SourceNoData
}

const (
	answerNotFound = "No relevant information found for your question."
	answerNoData   = "No data available to answer your question."
)

// Result is the outcome of one resolution.
type Result struct {
	RequestId  uuid.UUID
	Query      string
	Answer     string
	Source     Source
	Confidence float64
	Elapsed    time.Duration
}
