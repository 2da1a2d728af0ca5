package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

var errEmptyContent = errors.New("no text content in response")

// Kind classifies a provider failure.
type Kind int

const (
	// KindUnavailable covers network failures and 5xx responses.
	KindUnavailable Kind = iota
	KindRateLimited
	// KindRejected is a 4xx other than 429: bad key, unknown model, bad
	// request. Retrying cannot help.
	KindRejected
	KindInvalidResponse
	KindTruncated
)

func (k Kind) String() string {
	switch k {
	case KindUnavailable:
		return "unavailable"
	case KindRateLimited:
		return "rate limited"
	case KindRejected:
		return "rejected"
	case KindInvalidResponse:
		return "invalid response"
	case KindTruncated:
		return "truncated"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error is returned by every backend for a failed Generate.
type Error struct {
	Kind    Kind
	Backend string

	// RetryAfter is the server-requested wait for KindRateLimited, if known.
	RetryAfter time.Duration

	// Content is the offending reply for KindInvalidResponse and
	// KindTruncated.
	Content json.RawMessage

	Err error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Backend != "" {
		msg = e.Backend + ": " + msg
	}
	if e.Kind == KindTruncated {
		msg += " (max tokens reached)"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf reports the Kind of err if it wraps an *Error.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// classifyStatus maps an SDK error carrying an HTTP status to an *Error.
// status is 0 when the SDK gave no status (transport failure).
func classifyStatus(backend string, status int, err error) *Error {
	kind := KindUnavailable
	switch {
	case status == http.StatusTooManyRequests:
		kind = KindRateLimited
	case status >= 400 && status < 500:
		kind = KindRejected
	}
	return &Error{Kind: kind, Backend: backend, Err: err}
}
