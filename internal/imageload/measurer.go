package imageload

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/abhisek/sheetz/internal/layout"
)

// LoadError describes why a single image could not be loaded. It never
// escapes Measure; it is only reported to the error handler.
type LoadError struct {
	Ref string
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load image %q: %v", e.Ref, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// ErrorHandler is notified of every image that fell back to the placeholder.
type ErrorHandler func(err *LoadError)

// Measurer loads images and reports their natural dimensions.
type Measurer struct {
	cfg     Config
	client  *http.Client
	decoder Decoder
	onError ErrorHandler
}

// Option configures a Measurer.
type Option func(*Measurer)

// WithHTTPClient sets the client used for remote images.
func WithHTTPClient(c *http.Client) Option {
	return func(m *Measurer) { m.client = c }
}

// WithDecoder replaces the default StdDecoder.
func WithDecoder(d Decoder) Option {
	return func(m *Measurer) { m.decoder = d }
}

// WithErrorHandler registers a callback for images replaced by the
// placeholder.
func WithErrorHandler(h ErrorHandler) Option {
	return func(m *Measurer) { m.onError = h }
}

// NewMeasurer creates a Measurer.
func NewMeasurer(cfg Config, opts ...Option) *Measurer {
	m := &Measurer{
		cfg:     cfg,
		client:  http.DefaultClient,
		decoder: StdDecoder{MaxPixelWidth: cfg.MaxPixelWidth},
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Measure loads ref and returns its decoded image. Any failure yields the
// placeholder; Measure never returns an error.
func (m *Measurer) Measure(ctx context.Context, ref string) layout.Image {
	img, err := m.load(ctx, ref)
	if err != nil {
		if m.onError != nil {
			m.onError(&LoadError{Ref: ref, Err: err})
		}
		return Placeholder(ref)
	}
	img.Source = ref
	return img
}

// MeasureAll loads every ref concurrently and returns the images in the
// order of refs. Identical refs are loaded once. Failures are substituted
// individually; the batch always completes.
func (m *Measurer) MeasureAll(ctx context.Context, refs []string) []layout.Image {
	out := make([]layout.Image, len(refs))
	p := &pass{m: m, calls: make(map[string]*call)}

	var g errgroup.Group
	if m.cfg.Concurrency > 0 {
		g.SetLimit(m.cfg.Concurrency)
	}
	for i, ref := range refs {
		g.Go(func() error {
			out[i] = p.measure(ctx, ref)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// pass memoizes loads by ref within one MeasureAll call.
type pass struct {
	m     *Measurer
	mu    sync.Mutex
	calls map[string]*call
}

type call struct {
	done chan struct{}
	img  layout.Image
}

func (p *pass) measure(ctx context.Context, ref string) layout.Image {
	p.mu.Lock()
	if c, ok := p.calls[ref]; ok {
		p.mu.Unlock()
		<-c.done
		return c.img
	}
	c := &call{done: make(chan struct{})}
	p.calls[ref] = c
	p.mu.Unlock()

	c.img = p.m.Measure(ctx, ref)
	close(c.done)
	return c.img
}

func (m *Measurer) load(ctx context.Context, ref string) (layout.Image, error) {
	data, err := m.fetch(ctx, ref)
	if err != nil {
		return layout.Image{}, err
	}
	return m.decoder.Decode(data)
}

func (m *Measurer) fetch(ctx context.Context, ref string) ([]byte, error) {
	switch {
	case ref == "":
		return nil, errors.New("empty image reference")
	case strings.HasPrefix(ref, "data:"):
		return decodeDataURL(ref)
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		return m.fetchRemote(ctx, ref)
	case strings.HasPrefix(ref, "file://"):
		return m.readFile(strings.TrimPrefix(ref, "file://"))
	default:
		return m.readFile(ref)
	}
}

func (m *Measurer) fetchRemote(ctx context.Context, ref string) ([]byte, error) {
	if m.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.cfg.Timeout)
		defer cancel()
	}

	target := ref
	if m.cfg.ProxyURL != "" {
		target = ProxiedURL(m.cfg.ProxyURL, ref)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	if m.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", m.cfg.UserAgent)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	return m.readLimited(resp.Body)
}

func (m *Measurer) readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return m.readLimited(f)
}

func (m *Measurer) readLimited(r io.Reader) ([]byte, error) {
	if m.cfg.MaxBytes <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, m.cfg.MaxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > m.cfg.MaxBytes {
		return nil, fmt.Errorf("image exceeds %d bytes", m.cfg.MaxBytes)
	}
	return data, nil
}

// ProxiedURL rewrites source to go through the image proxy at base.
func ProxiedURL(base, source string) string {
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + "url=" + url.QueryEscape(source)
}

// decodeDataURL extracts the payload of a base64 data URL.
func decodeDataURL(ref string) ([]byte, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(ref, "data:"), ",")
	if !ok {
		return nil, errors.New("malformed data URL")
	}
	if !strings.HasSuffix(meta, ";base64") {
		s, err := url.PathUnescape(payload)
		if err != nil {
			return nil, fmt.Errorf("unescape data URL: %w", err)
		}
		return []byte(s), nil
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("decode data URL: %w", err)
	}
	return data, nil
}
