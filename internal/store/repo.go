package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by single-row lookups that match nothing.
var ErrNotFound = errors.New("not found")

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit   int       // max results (0 = unlimited)
	After   int64     // sequence > After
	Before  int64     // sequence < Before
	From    time.Time // timestamp >= From
	To      time.Time // timestamp <= To
	Purpose string    // exact purpose match
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

// LLMEvent is a stored LLM request event.
type LLMEvent struct {
	LLMRequestEventData
	ID        int
	Sequence  int64
	Timestamp time.Time
}

// PurposeUsage aggregates requests sharing a purpose.
type PurposeUsage struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// ModelUsage aggregates requests per provider and model.
type ModelUsage struct {
	Provider     string
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// EventRepo provides append and query access to LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns events newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error)

	// GetLLMEvent returns a single event, or nil if it does not exist.
	GetLLMEvent(ctx context.Context, id int) (*LLMEvent, error)

	// LLMUsageByPurpose aggregates tokens and latency per purpose.
	LLMUsageByPurpose(ctx context.Context) ([]PurposeUsage, error)

	// LLMUsageByModel aggregates tokens per provider/model pair.
	LLMUsageByModel(ctx context.Context) ([]ModelUsage, error)
}

// HistoryRecord is one persisted history row. Nodes is the JSON encoded
// node list; decoding belongs to the history package.
type HistoryRecord struct {
	ID           string
	Topic        string
	Nodes        []byte
	LastAccessed time.Time
	Sequence     int64
}

// HistoryRepo stores recent learning sessions.
type HistoryRepo interface {
	// Put inserts or replaces the record and moves it to the front.
	Put(ctx context.Context, rec HistoryRecord) error

	// List returns records most recent first.
	List(ctx context.Context) ([]HistoryRecord, error)

	// Get returns ErrNotFound when id is unknown.
	Get(ctx context.Context, id string) (*HistoryRecord, error)

	// Delete removes id. Unknown ids are a no-op.
	Delete(ctx context.Context, id string) error

	// Prune deletes all but the keep most recent records.
	Prune(ctx context.Context, keep int) error
}

// SettingsRepo is a small key-value table holding JSON documents.
type SettingsRepo interface {
	// Get returns ErrNotFound when key was never written.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put writes value under key, replacing any previous value.
	Put(ctx context.Context, key string, value []byte) error
}
