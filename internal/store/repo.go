package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
}

// StateRepo stores opaque serialized aggregates under a fixed key.
type StateRepo interface {
	// Load returns the stored document for key, or ErrNotFound.
	Load(ctx context.Context, key string) ([]byte, error)

	// Save replaces the document stored under key.
	Save(ctx context.Context, key string, data []byte) error
}

// WorksheetEventData captures one recorded worksheet result.
type WorksheetEventData struct {
	Topic      string
	Grade      int
	Score      int
	Total      int
	XPGained   int
	LevelAfter int
	Decision   string
	Fallback   bool
}

// WorksheetEventRecord is a stored worksheet event.
type WorksheetEventRecord struct {
	WorksheetEventData
	ID        int
	Sequence  int64
	Timestamp time.Time
}

// ArtifactEventData captures one artifact added to the inventory.
type ArtifactEventData struct {
	ArtifactID string
	Name       string
	Rarity     string
	Topic      string
}

// ArtifactEventRecord is a stored artifact event.
type ArtifactEventRecord struct {
	ArtifactEventData
	ID        int
	Sequence  int64
	Timestamp time.Time
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

// LLMRequestEventRecord is a stored LLM request event.
type LLMRequestEventRecord struct {
	LLMRequestEventData
	ID        int
	Sequence  int64
	Timestamp time.Time
}

// LLMUsageStats aggregates LLM usage for one purpose.
type LLMUsageStats struct {
	Purpose      string
	Calls        int
	Failures     int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// LLMModelUsage aggregates LLM token usage for one model.
type LLMModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// EventRepo provides append and query access to domain events.
type EventRepo interface {
	// AppendWorksheetEvent records a completed worksheet.
	AppendWorksheetEvent(ctx context.Context, data WorksheetEventData) error

	// QueryWorksheetEvents returns worksheet events, newest first.
	QueryWorksheetEvents(ctx context.Context, opts QueryOpts) ([]WorksheetEventRecord, error)

	// AppendArtifactEvent records an artifact acquisition.
	AppendArtifactEvent(ctx context.Context, data ArtifactEventData) error

	// QueryArtifactEvents returns artifact events, newest first.
	QueryArtifactEvents(ctx context.Context, opts QueryOpts) ([]ArtifactEventRecord, error)

	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns LLM events, newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEventRecord, error)

	// GetLLMEvent returns a single LLM event by id, or nil if absent.
	GetLLMEvent(ctx context.Context, id int) (*LLMRequestEventRecord, error)

	// LLMUsageByPurpose aggregates LLM usage per purpose.
	LLMUsageByPurpose(ctx context.Context) ([]LLMUsageStats, error)

	// LLMUsageByModel aggregates LLM token usage per model.
	LLMUsageByModel(ctx context.Context) ([]LLMModelUsage, error)
}
