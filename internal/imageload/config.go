package imageload

import (
	"os"
	"strconv"
	"time"
)

// Config controls how images are fetched and decoded.
type Config struct {
	// ProxyURL, when set, routes remote http(s) images through an image
	// proxy endpoint as ProxyURL?url=<escaped source>.
	ProxyURL string

	// Timeout bounds a single image load. Default: 15s.
	Timeout time.Duration

	// MaxBytes caps the size of a single image body. Default: 20 MiB.
	MaxBytes int64

	// Concurrency limits simultaneous loads in one batch. Default: 8.
	Concurrency int

	// MaxPixelWidth downsamples wider images before embedding.
	// Zero disables downsampling. Default: 2000.
	MaxPixelWidth int

	// UserAgent is sent with remote requests.
	UserAgent string
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Timeout:       15 * time.Second,
		MaxBytes:      20 << 20,
		Concurrency:   8,
		MaxPixelWidth: 2000,
		UserAgent:     "sheetz/1.0",
	}
}

// ConfigFromEnv overlays SHEETZ_IMAGE_* environment variables on the
// defaults.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	if p := os.Getenv("SHEETZ_IMAGE_PROXY"); p != "" {
		cfg.ProxyURL = p
	}
	if v := os.Getenv("SHEETZ_IMAGE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}
	if v := os.Getenv("SHEETZ_IMAGE_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Concurrency = n
		}
	}
	return cfg
}
