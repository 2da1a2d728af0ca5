// Package imageproxy serves problem images from other origins with CORS
// headers so browser-side tools can load them.
package imageproxy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Handler fetches the image named by the url query parameter.
type Handler struct {
	client   *http.Client
	maxBytes int64
	timeout  time.Duration
}

// NewHandler creates a proxy handler. client may be nil.
func NewHandler(cfg Config, client *http.Client) *Handler {
	if client == nil {
		client = &http.Client{}
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = DefaultConfig().MaxBytes
	}
	return &Handler{client: client, maxBytes: cfg.MaxBytes, timeout: cfg.FetchTimeout}
}

// errTooLarge marks an upstream body over the size cap.
var errTooLarge = errors.New("image exceeds size limit")

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD, OPTIONS")
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Only GET is supported")
		return
	}

	target, err := parseTarget(r.URL.Query().Get("url"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	ctx := r.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	body, contentType, err := h.fetch(ctx, target)
	if err != nil {
		writeError(w, http.StatusBadGateway, "upstream_error", err.Error())
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodGet {
		w.Write(body)
	}
}

// parseTarget accepts absolute http(s) URLs only.
func parseTarget(raw string) (*url.URL, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, errors.New("missing url parameter")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid url: %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, errors.New("url has no host")
	}
	return u, nil
}

func (h *Handler) fetch(ctx context.Context, target *url.URL) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("Accept", "image/*")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("upstream returned %d", resp.StatusCode)
	}
	if resp.ContentLength > h.maxBytes {
		return nil, "", errTooLarge
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, h.maxBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("read upstream body: %w", err)
	}
	if int64(len(body)) > h.maxBytes {
		return nil, "", errTooLarge
	}
	return body, contentType(resp.Header.Get("Content-Type"), body), nil
}

// contentType forwards the upstream type, sniffing when it is absent or
// not parseable.
func contentType(header string, body []byte) string {
	if header != "" {
		if _, _, err := mime.ParseMediaType(header); err == nil {
			return header
		}
	}
	return http.DetectContentType(body)
}

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	var body errorBody
	body.Error.Code = code
	body.Error.Message = message

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
