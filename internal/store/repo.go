package store

import (
	"context"
	"time"

	"github.com/abhisek/sheetz/internal/problem"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To

	FailedOnly bool
	Purpose    string // LLM events only
}

// ProblemRepo manages the problem bank.
type ProblemRepo interface {
	// Upsert inserts or replaces problems by id and returns how many were
	// written.
	Upsert(ctx context.Context, problems []problem.Problem) (int, error)

	// Get returns the problems with the given ids in the order of ids.
	// Missing ids yield a *NotFoundError.
	Get(ctx context.Context, ids []string) ([]problem.Problem, error)

	// Query returns the problems matching f ordered by id.
	Query(ctx context.Context, f problem.Filter) ([]problem.Problem, error)

	Count(ctx context.Context) (int, error)

	// Facets returns the distinct subjects, chapter paths and exam types,
	// each sorted.
	Facets(ctx context.Context) (problem.Facets, error)
}

// Worksheet is a saved selection of problems.
type Worksheet struct {
	ID             string
	Title          string
	Author         string
	ProblemIDs     []string
	IncludeAnswers bool
	ShowBadges     bool
	SortKey        problem.SortKey
	CreatedAt      time.Time
}

// WorksheetRepo manages saved worksheets.
type WorksheetRepo interface {
	// Create stores ws. ID and CreatedAt are assigned when empty.
	Create(ctx context.Context, ws Worksheet) (Worksheet, error)

	// Get returns the worksheet or a *NotFoundError.
	Get(ctx context.Context, id string) (*Worksheet, error)

	// List returns worksheets newest first.
	List(ctx context.Context, limit int) ([]Worksheet, error)
}

// Override replaces the default image reference of a problem or answer with
// an edited version.
type Override struct {
	Kind       problem.ResourceKind
	ResourceID string
	URL        string
	UpdatedAt  time.Time
}

// OverrideRepo manages edited-content overrides.
type OverrideRepo interface {
	Set(ctx context.Context, kind problem.ResourceKind, id, url string) error
	Delete(ctx context.Context, kind problem.ResourceKind, id string) (bool, error)
	List(ctx context.Context) ([]Override, error)

	// Override returns the override URL for a resource, if any.
	Override(ctx context.Context, kind problem.ResourceKind, id string) (string, bool, error)
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

// LLMUsage aggregates LLM events by one dimension.
type LLMUsage struct {
	Purpose      string
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// GenerationEventData records one worksheet PDF generation attempt.
type GenerationEventData struct {
	WorksheetID  string
	RequestID    string
	Token        uint64
	Problems     int
	Answers      int
	Pages        int
	Bytes        int64
	Placeholders int
	DurationMs   int64
	Success      bool
	ErrorMessage string
}

// GenerationEventRecord is a stored generation event.
type GenerationEventRecord struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	GenerationEventData
}

// EventRepo provides append and query access to domain events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEventRecord, error)

	// GetLLMEvent returns nil when the event does not exist.
	GetLLMEvent(ctx context.Context, id int) (*LLMEventRecord, error)
	LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error)
	LLMUsageByModel(ctx context.Context) ([]LLMUsage, error)

	// AppendGeneration records a PDF generation attempt.
	AppendGeneration(ctx context.Context, data GenerationEventData) error
	QueryGenerations(ctx context.Context, opts QueryOpts) ([]GenerationEventRecord, error)
}
