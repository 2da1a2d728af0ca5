package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/abhisek/sheetz/internal/store"
)

type purposeKey struct{}

// WithPurpose labels requests made with ctx, e.g. "problem-search". The
// label is stored with each logged event.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey{}, purpose)
}

// PurposeFrom returns the label set by WithPurpose, or "unlabeled".
func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey{}).(string); ok && v != "" {
		return v
	}
	return "unlabeled"
}

type loggingProvider struct {
	inner   Provider
	backend string
	events  store.EventRepo
}

// WithLogging appends one LLM event per Generate call to events.
func WithLogging(p Provider, backend string, events store.EventRepo) Provider {
	return &loggingProvider{inner: p, backend: backend, events: events}
}

func (l *loggingProvider) ModelID() string { return l.inner.ModelID() }

func (l *loggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := l.inner.Generate(ctx, req)

	ev := store.LLMRequestEventData{
		Provider:    l.backend,
		Model:       l.inner.ModelID(),
		Purpose:     PurposeFrom(ctx),
		LatencyMs:   time.Since(start).Milliseconds(),
		Success:     err == nil,
		RequestBody: transcript(req),
	}
	switch {
	case resp != nil:
		ev.Model = resp.Model
		ev.InputTokens = resp.Usage.InputTokens
		ev.OutputTokens = resp.Usage.OutputTokens
		ev.ResponseBody = string(resp.Content)
	case err != nil:
		ev.ErrorMessage = err.Error()
		var e *Error
		if errors.As(err, &e) && len(e.Content) > 0 {
			ev.ResponseBody = string(e.Content)
		}
	}

	// A lost event must not fail the search. The request may have been
	// cancelled, so write on a context that outlives it.
	if lerr := l.events.AppendLLMRequest(context.WithoutCancel(ctx), ev); lerr != nil {
		fmt.Fprintf(os.Stderr, "warning: LLM event not recorded: %v\n", lerr)
	}
	return resp, err
}

// transcript renders a request as the plain text stored with its event.
func transcript(req Request) string {
	var b strings.Builder
	section := func(title, body string) {
		fmt.Fprintf(&b, "## %s\n%s\n\n", title, body)
	}
	if req.System != "" {
		section("system", req.System)
	}
	section("prompt", req.Prompt)
	if req.Schema != nil {
		if def, err := json.MarshalIndent(req.Schema.Definition, "", "  "); err == nil {
			section("schema "+req.Schema.Name, string(def))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
