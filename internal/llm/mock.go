package llm

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
)

// ErrMockExhausted is returned once a MockProvider has no canned replies
// and no Fallback.
var ErrMockExhausted = errors.New("mock provider: no responses left")

// MockResponse is one canned reply.
type MockResponse struct {
	Content json.RawMessage
	Usage   Usage
	Err     error
}

// MockProvider replays canned replies in order and records every request.
// It backs tests and the "mock" provider setting.
type MockProvider struct {
	mu       sync.Mutex
	queue    []MockResponse
	calls    []Request
	Fallback func(Request) MockResponse
}

func NewMockProvider(responses ...MockResponse) *MockProvider {
	return &MockProvider{queue: responses}
}

// Generate pops the next reply, or asks Fallback when the queue is empty.
func (m *MockProvider) Generate(_ context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	m.calls = append(m.calls, req)
	var next MockResponse
	switch {
	case len(m.queue) > 0:
		next, m.queue = m.queue[0], m.queue[1:]
	case m.Fallback != nil:
		next = m.Fallback(req)
	default:
		next.Err = ErrMockExhausted
	}
	m.mu.Unlock()

	if next.Err != nil {
		return nil, next.Err
	}
	return &Response{Content: next.Content, Usage: next.Usage, Model: "mock", Stop: StopEnd}, nil
}

func (m *MockProvider) ModelID() string { return "mock" }

// Push queues more replies.
func (m *MockProvider) Push(responses ...MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, responses...)
}

// Calls returns a copy of the requests seen so far.
func (m *MockProvider) Calls() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Request(nil), m.calls...)
}

func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}
