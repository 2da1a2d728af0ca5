package worksheet

import (
	"sync"

	"github.com/google/uuid"

	"github.com/abhisek/sheetz/internal/problem"
)

// Request is one generation attempt. It is immutable once handed to the
// generator; a changed selection means a new Request with a new token.
type Request struct {
	// ID identifies the attempt in the event log.
	ID string

	// Token orders requests from one Tracker. A result is only published
	// while its token is current.
	Token uint64

	// WorksheetID is the saved worksheet this request renders, if any.
	WorksheetID string

	Title  string
	Author string

	// Problems in final worksheet order.
	Problems []problem.Problem

	IncludeAnswers bool
	ShowBadges     bool
}

// NewRequest stamps a request with a fresh id and the tracker's next token.
// tracker may be nil for one-shot generation.
func NewRequest(tracker *Tracker, title, author string, problems []problem.Problem) Request {
	r := Request{
		ID:       uuid.NewString(),
		Title:    title,
		Author:   author,
		Problems: problems,
	}
	if tracker != nil {
		r.Token = tracker.Next()
	}
	return r
}

// Tracker hands out monotonically increasing tokens and guards publication
// of results so a slow, superseded generation never overwrites a newer one.
type Tracker struct {
	mu      sync.Mutex
	current uint64
}

// Next issues a new token, making every earlier token stale.
func (t *Tracker) Next() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.current++
	return t.current
}

// Current returns the latest issued token.
func (t *Tracker) Current() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

// IsCurrent reports whether token is the latest issued token.
func (t *Tracker) IsCurrent(token uint64) bool {
	return t.Current() == token
}

// Publish runs fn only if token is still current and reports whether it ran.
// No new token can be issued while fn runs.
func (t *Tracker) Publish(token uint64, fn func()) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if token != t.current {
		return false
	}
	fn()
	return true
}
