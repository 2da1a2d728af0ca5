package llm

import (
	"context"
	"encoding/json"
)

// Provider turns one prompt into a JSON document. Problem search is the
// only caller, so every exchange is a single user turn.
type Provider interface {
	Generate(ctx context.Context, req Request) (*Response, error)
	ModelID() string
}

// Request is a single-turn prompt.
type Request struct {
	System string
	Prompt string

	// Schema, when set, asks the backend for native structured output and
	// the reply is validated against it before Generate returns.
	Schema *Schema

	MaxTokens   int
	Temperature float64
}

// Schema is a named JSON Schema document.
type Schema struct {
	// Name is kebab-case, e.g. "problem-filter". Backends use it as the
	// schema or tool name.
	Name        string
	Description string
	Definition  map[string]any
}

// StopReason is the normalized reason generation ended.
type StopReason string

const (
	StopEnd       StopReason = "end"
	StopMaxTokens StopReason = "max_tokens"
)

// Response is a backend reply. Content is schema-valid JSON when the
// request carried a Schema.
type Response struct {
	Content json.RawMessage
	Usage   Usage
	Model   string
	Stop    StopReason
}

// Usage is the token count for one request.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Total returns input plus output tokens.
func (u Usage) Total() int { return u.InputTokens + u.OutputTokens }

// reply is what a backend extracted from its SDK response before the
// shared checks in finish run.
type reply struct {
	content json.RawMessage
	usage   Usage
	model   string
	stop    StopReason
}

// finish rejects truncated or schema-violating content and assembles the
// Response. Every backend funnels through it.
func finish(backend string, req Request, r reply) (*Response, error) {
	if r.stop == StopMaxTokens {
		return nil, &Error{Kind: KindTruncated, Backend: backend, Content: r.content}
	}
	if len(r.content) == 0 {
		return nil, &Error{Kind: KindInvalidResponse, Backend: backend, Err: errEmptyContent}
	}
	if err := validateResponse(req.Schema, r.content); err != nil {
		err.Backend = backend
		return nil, err
	}
	return &Response{
		Content: r.content,
		Usage:   r.usage,
		Model:   r.model,
		Stop:    r.stop,
	}, nil
}

// resolveModel maps a friendly alias to a backend model ID. Unknown names
// pass through so full model IDs work too.
func resolveModel(name string, aliases map[string]string) string {
	if id, ok := aliases[name]; ok {
		return id
	}
	return name
}
