package imageproxy

import (
	"os"
	"strings"
	"time"
)

// Config holds configuration for the image proxy server.
type Config struct {
	// Addr is the listen address. Default: "localhost:8787".
	Addr string

	// Path is where the proxy endpoint is mounted.
	Path string

	// MaxBytes caps a proxied image body. Default: 20 MiB.
	MaxBytes int64

	// FetchTimeout bounds one upstream fetch.
	FetchTimeout time.Duration

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// AllowedOrigins lists CORS origins. "*" allows any origin.
	AllowedOrigins []string

	EnableLogging bool
}

// DefaultConfig returns sensible defaults for the proxy.
func DefaultConfig() Config {
	return Config{
		Addr:           "localhost:8787",
		Path:           "/image-proxy",
		MaxBytes:       20 << 20,
		FetchTimeout:   15 * time.Second,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   30 * time.Second,
		IdleTimeout:    60 * time.Second,
		AllowedOrigins: []string{"*"},
		EnableLogging:  true,
	}
}

// ConfigFromEnv overlays SHEETZ_PROXY_* variables on the defaults.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	if v := os.Getenv("SHEETZ_PROXY_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("SHEETZ_PROXY_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		cfg.AllowedOrigins = origins
	}
	return cfg
}
