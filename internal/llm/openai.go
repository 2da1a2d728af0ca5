package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

const openRouterBaseURL = "https://openrouter.ai/api/v1"

var openaiAliases = map[string]string{
	"gpt-mini": "gpt-4o-mini",
	"gpt":      "gpt-4o",
}

// OpenAIProvider talks to the Chat Completions API. OpenRouter and other
// compatible gateways reuse it with a different base URL.
type OpenAIProvider struct {
	client  *openai.Client
	model   string
	backend string
}

// NewOpenAIProvider resolves friendly model aliases and targets the
// OpenAI API unless cfg.BaseURL points elsewhere.
func NewOpenAIProvider(cfg BackendConfig) (*OpenAIProvider, error) {
	cfg.Model = resolveModel(cfg.Model, openaiAliases)
	return newChatProvider(ProviderOpenAI, cfg, nil)
}

// NewOpenRouterProvider targets OpenRouter. Model names are OpenRouter
// slugs such as "openai/gpt-4o-mini" and are used verbatim.
func NewOpenRouterProvider(cfg BackendConfig) (*OpenAIProvider, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = openRouterBaseURL
	}
	headers := http.Header{}
	headers.Set("X-Title", "sheetz")
	return newChatProvider(ProviderOpenRouter, cfg, headers)
}

func newChatProvider(backend string, cfg BackendConfig, headers http.Header) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s: API key is required", backend)
	}
	conf := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		conf.BaseURL = cfg.BaseURL
	}
	if len(headers) > 0 {
		conf.HTTPClient = &http.Client{Transport: &headerTransport{base: http.DefaultTransport, headers: headers}}
	}
	return &OpenAIProvider{
		client:  openai.NewClientWithConfig(conf),
		model:   cfg.Model,
		backend: backend,
	}, nil
}

func (p *OpenAIProvider) ModelID() string { return p.model }

func (p *OpenAIProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	var msgs []openai.ChatCompletionMessage
	if req.System != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: req.System})
	}
	msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: req.Prompt})

	chat := openai.ChatCompletionRequest{
		Model:               p.model,
		Messages:            msgs,
		MaxCompletionTokens: req.MaxTokens,
		Temperature:         float32(req.Temperature),
	}
	if req.Schema != nil {
		def, err := json.Marshal(req.Schema.Definition)
		if err != nil {
			return nil, fmt.Errorf("%s: schema %q: %w", p.backend, req.Schema.Name, err)
		}
		chat.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:        req.Schema.Name,
				Description: req.Schema.Description,
				Schema:      json.RawMessage(def),
				Strict:      true,
			},
		}
	}

	resp, err := p.client.CreateChatCompletion(ctx, chat)
	if err != nil {
		return nil, p.classify(err)
	}
	if len(resp.Choices) == 0 {
		return nil, &Error{Kind: KindInvalidResponse, Backend: p.backend, Err: errors.New("no choices in response")}
	}

	choice := resp.Choices[0]
	stop := StopEnd
	if choice.FinishReason == openai.FinishReasonLength {
		stop = StopMaxTokens
	}
	return finish(p.backend, req, reply{
		content: json.RawMessage(choice.Message.Content),
		usage:   Usage{InputTokens: resp.Usage.PromptTokens, OutputTokens: resp.Usage.CompletionTokens},
		model:   resp.Model,
		stop:    stop,
	})
}

func (p *OpenAIProvider) classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return classifyStatus(p.backend, apiErr.HTTPStatusCode, err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return classifyStatus(p.backend, reqErr.HTTPStatusCode, err)
	}
	return classifyStatus(p.backend, 0, err)
}

// headerTransport adds fixed headers to every outgoing request.
type headerTransport struct {
	base    http.RoundTripper
	headers http.Header
}

func (t *headerTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	r = r.Clone(r.Context())
	for k, vs := range t.headers {
		for _, v := range vs {
			r.Header.Add(k, v)
		}
	}
	return t.base.RoundTrip(r)
}

var _ Provider = (*OpenAIProvider)(nil)
