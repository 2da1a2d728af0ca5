package search

// Config controls the behavior of the Searcher.
type Config struct {
	// MaxTokens is the token budget for the interpretation response.
	MaxTokens int

	// Temperature controls LLM output randomness (0.0-1.0).
	Temperature float64

	// DefaultLimit caps the result size when the request names no limit.
	DefaultLimit int
}

// DefaultConfig returns the recommended search settings.
func DefaultConfig() Config {
	return Config{
		MaxTokens:    400,
		Temperature:  0,
		DefaultLimit: 50,
	}
}
