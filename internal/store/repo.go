package store

import (
	"context"
	"time"

	"github.com/saurav/teachback/internal/knowledge"
	"github.com/saurav/teachback/internal/spacedrep"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
}

// SnapshotData captures the full learner state at a point in time.
type SnapshotData struct {
	Version int                     `json:"version"`
	Graph   *knowledge.Graph        `json:"graph,omitempty"`
	Reviews *spacedrep.SnapshotData `json:"reviews,omitempty"`
	Badges  []string                `json:"badges,omitempty"`
}

// Snapshot represents a point-in-time capture of learner state.
type Snapshot struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	Data      SnapshotData
}

// SnapshotRepo manages learner state snapshots.
type SnapshotRepo interface {
	// Save stores a new snapshot.
	Save(ctx context.Context, snap *Snapshot) error

	// Latest returns the most recent snapshot, or nil if none exist.
	Latest(ctx context.Context) (*Snapshot, error)

	// Prune deletes all but the N most recent snapshots.
	Prune(ctx context.Context, keep int) error
}

// SessionEventData captures one session lifecycle event.
type SessionEventData struct {
	SessionID   string
	Topic       string
	Action      string // "start", "end", "abort"
	Turns       int
	AvgQuality  float64
	Grade       string
	LegacyScore int
}

// SessionEventRecord is a stored session event.
type SessionEventRecord struct {
	ID          int
	Sequence    int64
	Timestamp   time.Time
	SessionID   string
	Topic       string
	Action      string
	Turns       int
	AvgQuality  float64
	Grade       string
	LegacyScore int
}

// SessionTally aggregates completed sessions for achievement evaluation.
type SessionTally struct {
	Completed int
	Perfect   int // legacy score 100
	AGrades   int
}

// ReviewEventData captures one completed spaced-repetition review.
type ReviewEventData struct {
	Concept      string
	Quality      int
	IntervalDays int
	EaseFactor   float64
}

// BadgeEventData captures one achievement unlock.
type BadgeEventData struct {
	BadgeID string
	Tier    string
	Reason  string
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEventRecord is a stored LLM request event.
type LLMEventRecord struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// LLMPurposeUsage aggregates LLM usage for one purpose label.
type LLMPurposeUsage struct {
	Purpose      string
	Requests     int
	Failures     int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// LLMModelUsage aggregates LLM usage for one model.
type LLMModelUsage struct {
	Model        string
	Requests     int
	InputTokens  int
	OutputTokens int
}

// EventRepo provides append and query access to domain events.
type EventRepo interface {
	// AppendSessionEvent records a session lifecycle event.
	AppendSessionEvent(ctx context.Context, data SessionEventData) error

	// QuerySessionEvents returns session events, most recent first.
	QuerySessionEvents(ctx context.Context, opts QueryOpts) ([]SessionEventRecord, error)

	// SessionTally aggregates completed sessions.
	SessionTally(ctx context.Context) (SessionTally, error)

	// AppendReviewEvent records a completed review.
	AppendReviewEvent(ctx context.Context, data ReviewEventData) error

	// ReviewCount returns the total number of completed reviews.
	ReviewCount(ctx context.Context) (int, error)

	// AppendBadgeEvent records an achievement unlock.
	AppendBadgeEvent(ctx context.Context, data BadgeEventData) error

	// BadgeIDs returns the IDs of all unlocked badges in unlock order.
	BadgeIDs(ctx context.Context) ([]string, error)

	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns LLM events, most recent first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEventRecord, error)

	// GetLLMEvent returns one LLM event by ID, or nil if not found.
	GetLLMEvent(ctx context.Context, id int) (*LLMEventRecord, error)

	// LLMUsageByPurpose aggregates LLM usage grouped by purpose.
	LLMUsageByPurpose(ctx context.Context) ([]LLMPurposeUsage, error)

	// LLMUsageByModel aggregates LLM usage grouped by model.
	LLMUsageByModel(ctx context.Context) ([]LLMModelUsage, error)
}
