package resolver

import (
	"time"

	"github.com/google/uuid"
)

// UsageRecord is one resolved query as seen by the usage tracker.
type UsageRecord struct {
	RequestId uuid.UUID
	Query     string
	Source    Source
	Elapsed   time.Duration
	CacheHit  bool
	At        time.Time
}

// UsageRecorder aggregates resolution outcomes for the admin dashboard.
// Implementations must not block; Record is called on the request path.
type UsageRecorder interface {
	Record(rec UsageRecord)
}

// UsageRecorders fans one record out to several recorders.
type UsageRecorders []UsageRecorder

func (rs UsageRecorders) Record(rec UsageRecord) {
	for _, r := range rs {
		r.Record(rec)
	}
}

// Activity event kinds.
const (
	EventStarted  = "started"
	EventStage    = "stage"
	EventResolved = "resolved"
)

// ActivityEvent is one step of a resolution, for live feeds and ops
// messaging.
type ActivityEvent struct {
	RequestId uuid.UUID
	Kind      string
	Stage     string
	Source    Source
	Query     string
	Elapsed   time.Duration
	At        time.Time
}

// ActivitySink receives resolution lifecycle events. Implementations must
// not block.
type ActivitySink interface {
	Emit(evt ActivityEvent)
}
