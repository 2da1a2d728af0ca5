package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withFastRetry wraps p and records requested waits instead of sleeping.
func withFastRetry(p Provider, attempts int, timeout time.Duration) (Provider, *[]time.Duration) {
	var waits []time.Duration
	r := WithRetry(p, RetryConfig{
		MaxAttempts: attempts,
		InitialWait: 100 * time.Millisecond,
		MaxWait:     time.Second,
		Multiplier:  2,
	}, timeout).(*retryProvider)
	r.sleep = func(_ context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	}
	return r, &waits
}

func okReply() MockResponse {
	return MockResponse{Content: []byte(`{"min_difficulty":2}`)}
}

func TestRetry_TransientThenSuccess(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &Error{Kind: KindUnavailable}},
		MockResponse{Err: errors.New("connection reset")},
		okReply(),
	)
	p, waits := withFastRetry(mock, 3, 0)

	resp, err := p.Generate(context.Background(), Request{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"min_difficulty":2}`, string(resp.Content))
	assert.Equal(t, 3, mock.CallCount())
	require.Len(t, *waits, 2)
	assert.InDelta(t, float64(100*time.Millisecond), float64((*waits)[0]), float64(20*time.Millisecond))
	assert.InDelta(t, float64(200*time.Millisecond), float64((*waits)[1]), float64(40*time.Millisecond))
}

func TestRetry_GivesUpAfterMaxAttempts(t *testing.T) {
	mock := NewMockProvider()
	mock.Fallback = func(Request) MockResponse {
		return MockResponse{Err: &Error{Kind: KindUnavailable, Backend: "test"}}
	}
	p, waits := withFastRetry(mock, 4, 0)

	_, err := p.Generate(context.Background(), Request{})
	kind, _ := KindOf(err)
	assert.Equal(t, KindUnavailable, kind)
	assert.Equal(t, 4, mock.CallCount())
	assert.Len(t, *waits, 3)
}

func TestRetry_NotRetried(t *testing.T) {
	for _, kind := range []Kind{KindRejected, KindTruncated} {
		t.Run(kind.String(), func(t *testing.T) {
			mock := NewMockProvider(MockResponse{Err: &Error{Kind: kind}}, okReply())
			p, _ := withFastRetry(mock, 3, 0)

			_, err := p.Generate(context.Background(), Request{})
			got, _ := KindOf(err)
			assert.Equal(t, kind, got)
			assert.Equal(t, 1, mock.CallCount())
		})
	}
}

func TestRetry_InvalidResponseGetsOneMoreTry(t *testing.T) {
	bad := MockResponse{Err: &Error{Kind: KindInvalidResponse}}
	mock := NewMockProvider(bad, bad, okReply())
	p, _ := withFastRetry(mock, 5, 0)

	_, err := p.Generate(context.Background(), Request{})
	kind, _ := KindOf(err)
	assert.Equal(t, KindInvalidResponse, kind)
	assert.Equal(t, 2, mock.CallCount())
}

func TestRetry_HonoursRetryAfter(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &Error{Kind: KindRateLimited, RetryAfter: 3 * time.Second}},
		okReply(),
	)
	p, waits := withFastRetry(mock, 3, 0)

	_, err := p.Generate(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, []time.Duration{3 * time.Second}, *waits)
}

func TestRetry_WaitIsCapped(t *testing.T) {
	r := &retryProvider{cfg: RetryConfig{InitialWait: time.Second, MaxWait: 2 * time.Second, Multiplier: 10}}
	d := r.wait(3, errors.New("x"))
	assert.LessOrEqual(t, d, 2*time.Second+2*time.Second/5)
	assert.GreaterOrEqual(t, d, 2*time.Second-2*time.Second/5)
}

type blockingProvider struct{ calls int }

func (b *blockingProvider) Generate(ctx context.Context, _ Request) (*Response, error) {
	b.calls++
	<-ctx.Done()
	return nil, ctx.Err()
}

func (b *blockingProvider) ModelID() string { return "blocking" }

func TestRetry_TimeoutBoundsTheCall(t *testing.T) {
	inner := &blockingProvider{}
	p := WithRetry(inner, RetryConfig{MaxAttempts: 3, InitialWait: time.Millisecond}, 20*time.Millisecond)

	start := time.Now()
	_, err := p.Generate(context.Background(), Request{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, inner.calls)
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, "blocking", p.ModelID())
}

func TestRetry_CancelledWhileWaiting(t *testing.T) {
	mock := NewMockProvider(MockResponse{Err: &Error{Kind: KindUnavailable}}, okReply())
	p := WithRetry(mock, RetryConfig{MaxAttempts: 2, InitialWait: time.Hour, Multiplier: 1}, 0)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(10*time.Millisecond, cancel)

	_, err := p.Generate(ctx, Request{})
	require.Error(t, err)
	assert.Equal(t, 1, mock.CallCount())
}
