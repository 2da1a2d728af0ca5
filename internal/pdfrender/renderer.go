package pdfrender

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/abhisek/sheetz/internal/docdef"
)

// Backend serializes a document definition into PDF bytes.
type Backend interface {
	Encode(ctx context.Context, doc *docdef.Document) ([]byte, error)
}

// Output is a rendered PDF.
type Output struct {
	Bytes    []byte
	Pages    int
	Duration time.Duration
}

// Renderer validates backend output. It holds no per-document state and is
// safe for concurrent use.
type Renderer struct {
	backend Backend
}

// New returns a renderer over backend.
func New(backend Backend) *Renderer {
	return &Renderer{backend: backend}
}

var defaultRenderer = sync.OnceValues(func() (*Renderer, error) {
	return initRenderer(GoFonts)
})

// Default returns the process-wide renderer, initializing it on first use.
// Concurrent first callers wait for the same initialization. A failed
// initialization is not retried.
func Default() (*Renderer, error) {
	return defaultRenderer()
}

func initRenderer(loadFonts func() (Fonts, error)) (*Renderer, error) {
	fonts, err := loadFonts()
	if err != nil {
		return nil, &InitError{Err: err}
	}
	return New(NewFPDFBackend(fonts)), nil
}

// Render encodes doc and checks that the result is a non-empty, readable PDF.
func (r *Renderer) Render(ctx context.Context, doc *docdef.Document) (*Output, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()

	data, err := r.backend.Encode(ctx, doc)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &RenderError{Err: err}
	}
	if len(data) == 0 {
		return nil, ErrEmptyPDF
	}

	pages, err := PageCount(data)
	if err != nil {
		return nil, &RenderError{Err: err}
	}

	return &Output{
		Bytes:    data,
		Pages:    pages,
		Duration: time.Since(start),
	}, nil
}

// PageCount reads the number of pages of a PDF.
func PageCount(data []byte) (int, error) {
	n, err := api.PageCount(bytes.NewReader(data), newPDFCPUConfig())
	if err != nil {
		return 0, fmt.Errorf("read pdf: %w", err)
	}
	return n, nil
}

var disablePDFCPUConfigDir sync.Once

// newPDFCPUConfig returns a fresh configuration per call since pdfcpu
// mutates it while reading.
func newPDFCPUConfig() *model.Configuration {
	// Keep pdfcpu from creating a config directory under the user's home.
	disablePDFCPUConfigDir.Do(func() { model.ConfigPath = "disable" })
	return model.NewDefaultConfiguration()
}
