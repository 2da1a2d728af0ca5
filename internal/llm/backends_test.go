package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

var difficultySchema = &Schema{
	Name: "difficulty-only",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"min_difficulty": map[string]any{"type": "integer", "minimum": 0, "maximum": 5},
		},
		"required":             []any{"min_difficulty"},
		"additionalProperties": false,
	},
}

func searchRequest() Request {
	return Request{
		System:    "You translate worksheet requests into problem filters.",
		Prompt:    "Request: hard calculus",
		Schema:    difficultySchema,
		MaxTokens: 256,
	}
}

// serve starts a test server and records the last request body.
func serve(t *testing.T, status int, header http.Header, body any) (*httptest.Server, *[]byte) {
	t.Helper()
	var got []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = io.ReadAll(r.Body)
		for k, vs := range header {
			w.Header()[k] = vs
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return srv, &got
}

func anthropicMessage(text, stop string) map[string]any {
	return map[string]any{
		"id":          "msg_1",
		"type":        "message",
		"role":        "assistant",
		"model":       "claude-haiku-4-5-20251001",
		"content":     []map[string]any{{"type": "text", "text": text}},
		"stop_reason": stop,
		"usage":       map[string]any{"input_tokens": 120, "output_tokens": 14},
	}
}

func anthropicFailure(kind string) map[string]any {
	return map[string]any{"type": "error", "error": map[string]any{"type": kind, "message": kind}}
}

func newAnthropic(t *testing.T, url string) *AnthropicProvider {
	t.Helper()
	p, err := NewAnthropicProvider(BackendConfig{APIKey: "k", Model: "claude-haiku", BaseURL: url})
	require.NoError(t, err)
	return p
}

func TestAnthropic_Generate(t *testing.T) {
	srv, body := serve(t, http.StatusOK, nil, anthropicMessage(`{"min_difficulty":4}`, "end_turn"))
	p := newAnthropic(t, srv.URL)
	assert.Equal(t, "claude-haiku-4-5-20251001", p.ModelID())

	resp, err := p.Generate(context.Background(), searchRequest())
	require.NoError(t, err)
	assert.JSONEq(t, `{"min_difficulty":4}`, string(resp.Content))
	assert.Equal(t, StopEnd, resp.Stop)
	assert.Equal(t, 134, resp.Usage.Total())
	assert.Contains(t, string(*body), "Request: hard calculus")
}

func TestAnthropic_SchemaViolation(t *testing.T) {
	srv, _ := serve(t, http.StatusOK, nil, anthropicMessage(`{"min_difficulty":9}`, "end_turn"))

	_, err := newAnthropic(t, srv.URL).Generate(context.Background(), searchRequest())
	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, KindInvalidResponse, kind)
}

func TestAnthropic_Truncated(t *testing.T) {
	srv, _ := serve(t, http.StatusOK, nil, anthropicMessage(`{"min_diff`, "max_tokens"))

	_, err := newAnthropic(t, srv.URL).Generate(context.Background(), searchRequest())
	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, KindTruncated, e.Kind)
	assert.Equal(t, `{"min_diff`, string(e.Content))
}

func TestAnthropic_StatusClassification(t *testing.T) {
	tests := []struct {
		status int
		want   Kind
	}{
		{http.StatusTooManyRequests, KindRateLimited},
		{http.StatusUnauthorized, KindRejected},
		{http.StatusInternalServerError, KindUnavailable},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			hdr := http.Header{"Retry-After": []string{"7"}}
			srv, _ := serve(t, tt.status, hdr, anthropicFailure("api_error"))

			_, err := newAnthropic(t, srv.URL).Generate(context.Background(), searchRequest())
			var e *Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, tt.want, e.Kind)
			assert.Equal(t, ProviderAnthropic, e.Backend)
			if tt.want == KindRateLimited {
				assert.Equal(t, 7*time.Second, e.RetryAfter)
			}
		})
	}
}

func chatCompletion(content, finish string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1760000000,
		"model":   "gpt-4o-mini-2024-07-18",
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]any{"role": "assistant", "content": content},
			"finish_reason": finish,
		}},
		"usage": map[string]any{"prompt_tokens": 90, "completion_tokens": 10, "total_tokens": 100},
	}
}

func TestOpenAI_Generate(t *testing.T) {
	srv, body := serve(t, http.StatusOK, nil, chatCompletion(`{"min_difficulty":3}`, "stop"))
	p, err := NewOpenAIProvider(BackendConfig{APIKey: "k", Model: "gpt-mini", BaseURL: srv.URL + "/v1"})
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", p.ModelID())

	resp, err := p.Generate(context.Background(), searchRequest())
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini-2024-07-18", resp.Model)
	assert.Equal(t, 90, resp.Usage.InputTokens)

	var sent struct {
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
		ResponseFormat struct {
			Type       string `json:"type"`
			JSONSchema struct {
				Name   string `json:"name"`
				Strict bool   `json:"strict"`
			} `json:"json_schema"`
		} `json:"response_format"`
	}
	require.NoError(t, json.Unmarshal(*body, &sent))
	require.Len(t, sent.Messages, 2)
	assert.Equal(t, "system", sent.Messages[0].Role)
	assert.Equal(t, "Request: hard calculus", sent.Messages[1].Content)
	assert.Equal(t, "json_schema", sent.ResponseFormat.Type)
	assert.Equal(t, "difficulty-only", sent.ResponseFormat.JSONSchema.Name)
	assert.True(t, sent.ResponseFormat.JSONSchema.Strict)
}

func TestOpenAI_LengthIsTruncation(t *testing.T) {
	srv, _ := serve(t, http.StatusOK, nil, chatCompletion(`{"min_`, "length"))
	p, err := NewOpenAIProvider(BackendConfig{APIKey: "k", Model: "gpt-4o-mini", BaseURL: srv.URL + "/v1"})
	require.NoError(t, err)

	_, err = p.Generate(context.Background(), searchRequest())
	kind, _ := KindOf(err)
	assert.Equal(t, KindTruncated, kind)
}

func TestOpenAI_RateLimited(t *testing.T) {
	srv, _ := serve(t, http.StatusTooManyRequests, nil, map[string]any{
		"error": map[string]any{"message": "slow down", "type": "rate_limit_exceeded"},
	})
	p, err := NewOpenAIProvider(BackendConfig{APIKey: "k", Model: "gpt-4o-mini", BaseURL: srv.URL + "/v1"})
	require.NoError(t, err)

	_, err = p.Generate(context.Background(), searchRequest())
	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, KindRateLimited, kind)
}

func TestOpenRouter_UsesSlugAndTitleHeader(t *testing.T) {
	var title, model string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		title = r.Header.Get("X-Title")
		var req struct {
			Model string `json:"model"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		model = req.Model
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(chatCompletion(`{"min_difficulty":1}`, "stop"))
	}))
	t.Cleanup(srv.Close)

	p, err := NewOpenRouterProvider(BackendConfig{APIKey: "k", Model: "gpt-mini", BaseURL: srv.URL})
	require.NoError(t, err)
	_, err = p.Generate(context.Background(), searchRequest())
	require.NoError(t, err)

	assert.Equal(t, "sheetz", title)
	assert.Equal(t, "gpt-mini", model, "OpenRouter slugs are not aliased")
}

func TestBackends_RequireKey(t *testing.T) {
	_, err := NewAnthropicProvider(BackendConfig{})
	assert.Error(t, err)
	_, err = NewOpenAIProvider(BackendConfig{})
	assert.Error(t, err)
	_, err = NewOpenRouterProvider(BackendConfig{})
	assert.Error(t, err)
	_, err = NewGeminiProvider(context.Background(), BackendConfig{})
	assert.Error(t, err)
}

func TestGeminiSchema(t *testing.T) {
	s := geminiSchema(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"sort":  map[string]any{"type": "string", "enum": []any{"order", "difficulty"}},
			"rate":  map[string]any{"type": "number", "minimum": -1, "maximum": 100.0},
			"years": map[string]any{"type": "array", "items": map[string]any{"type": "integer"}},
		},
		"required": []any{"years", "sort", "rate"},
	})

	assert.Equal(t, genai.TypeObject, s.Type)
	assert.Equal(t, []string{"years", "sort", "rate"}, s.PropertyOrdering)
	assert.Equal(t, []string{"order", "difficulty"}, s.Properties["sort"].Enum)
	require.NotNil(t, s.Properties["rate"].Minimum)
	assert.Equal(t, -1.0, *s.Properties["rate"].Minimum)
	assert.Equal(t, 100.0, *s.Properties["rate"].Maximum)
	assert.Equal(t, genai.TypeInteger, s.Properties["years"].Items.Type)
	assert.Nil(t, s.Properties["sort"].Minimum)
}

func TestResolveModel(t *testing.T) {
	assert.Equal(t, "gemini-2.5-flash", resolveModel("gemini-flash", geminiAliases))
	assert.Equal(t, "gemini-2.0-flash-001", resolveModel("gemini-2.0-flash-001", geminiAliases))
}
