package llm

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Provider names accepted by Config.Provider.
const (
	ProviderAnthropic  = "anthropic"
	ProviderOpenAI     = "openai"
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
	ProviderMock       = "mock"
)

// BackendConfig is the connection setting shared by every hosted backend.
type BackendConfig struct {
	APIKey string
	Model  string

	// BaseURL overrides the API endpoint, e.g. for a compatible gateway.
	BaseURL string
}

// Config selects a backend and tunes retries.
type Config struct {
	Provider string

	Anthropic  BackendConfig
	OpenAI     BackendConfig
	Gemini     BackendConfig
	OpenRouter BackendConfig

	Retry RetryConfig

	// Timeout bounds one Generate call including retries and waits.
	Timeout time.Duration
}

// backends lists hosted backends in discovery order. env is the infix of
// the SHEETZ_<env>_* variables; standardKey is the vendor's usual key
// variable.
var backends = []struct {
	name        string
	env         string
	standardKey string
}{
	{ProviderGemini, "GEMINI", "GEMINI_API_KEY"},
	{ProviderOpenAI, "OPENAI", "OPENAI_API_KEY"},
	{ProviderAnthropic, "ANTHROPIC", "ANTHROPIC_API_KEY"},
	{ProviderOpenRouter, "OPENROUTER", "OPENROUTER_API_KEY"},
}

// DefaultConfig picks the cheap model tier of each backend; a search
// prompt is a few hundred tokens.
func DefaultConfig() Config {
	return Config{
		Provider:   ProviderAnthropic,
		Anthropic:  BackendConfig{Model: "claude-haiku"},
		OpenAI:     BackendConfig{Model: "gpt-mini"},
		Gemini:     BackendConfig{Model: "gemini-flash"},
		OpenRouter: BackendConfig{Model: "google/gemini-2.5-flash"},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2,
		},
		Timeout: 45 * time.Second,
	}
}

// Backend returns the settings of the named backend, or nil for an
// unknown name or the mock.
func (c *Config) Backend(name string) *BackendConfig {
	switch name {
	case ProviderAnthropic:
		return &c.Anthropic
	case ProviderOpenAI:
		return &c.OpenAI
	case ProviderGemini:
		return &c.Gemini
	case ProviderOpenRouter:
		return &c.OpenRouter
	}
	return nil
}

// ConfigFromEnv reads SHEETZ_LLM_PROVIDER, SHEETZ_LLM_TIMEOUT,
// SHEETZ_LLM_MAX_ATTEMPTS and SHEETZ_<BACKEND>_{API_KEY,MODEL,BASE_URL}
// over the defaults.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	if v := os.Getenv("SHEETZ_LLM_PROVIDER"); v != "" {
		cfg.Provider = v
	}
	if d, err := time.ParseDuration(os.Getenv("SHEETZ_LLM_TIMEOUT")); err == nil && d > 0 {
		cfg.Timeout = d
	}
	if n, err := strconv.Atoi(os.Getenv("SHEETZ_LLM_MAX_ATTEMPTS")); err == nil && n > 0 {
		cfg.Retry.MaxAttempts = n
	}

	for _, b := range backends {
		bc := cfg.Backend(b.name)
		for field, dst := range map[string]*string{
			"API_KEY":  &bc.APIKey,
			"MODEL":    &bc.Model,
			"BASE_URL": &bc.BaseURL,
		} {
			if v := os.Getenv("SHEETZ_" + b.env + "_" + field); v != "" {
				*dst = v
			}
		}
	}
	return cfg
}

// DiscoverConfig falls back to the vendors' standard key variables and
// selects the first backend that has one.
func DiscoverConfig() (Config, bool) {
	cfg := DefaultConfig()
	for _, b := range backends {
		if key := os.Getenv(b.standardKey); key != "" {
			cfg.Provider = b.name
			cfg.Backend(b.name).APIKey = key
			return cfg, true
		}
	}
	return Config{}, false
}

// Validate checks the selected backend is known and has a key.
func (c Config) Validate() error {
	if c.Provider == ProviderMock {
		return nil
	}
	for _, b := range backends {
		if b.name != c.Provider {
			continue
		}
		if c.Backend(b.name).APIKey == "" {
			return fmt.Errorf("SHEETZ_%s_API_KEY is required for the %s provider", b.env, b.name)
		}
		return nil
	}
	return fmt.Errorf("unknown LLM provider: %q", c.Provider)
}
