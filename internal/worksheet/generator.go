package worksheet

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/abhisek/sheetz/internal/docdef"
	"github.com/abhisek/sheetz/internal/layout"
	"github.com/abhisek/sheetz/internal/pdfrender"
	"github.com/abhisek/sheetz/internal/problem"
	"github.com/abhisek/sheetz/internal/store"
)

// OverrideLookup resolves edited-content overrides. ok is false when the
// resource has no override.
type OverrideLookup interface {
	Override(ctx context.Context, kind problem.ResourceKind, id string) (url string, ok bool, err error)
}

// Measurer resolves image references. It never fails; unusable references
// come back as placeholders in input order.
type Measurer interface {
	MeasureAll(ctx context.Context, refs []string) []layout.Image
}

// Renderer turns a document definition into PDF bytes.
type Renderer interface {
	Render(ctx context.Context, doc *docdef.Document) (*pdfrender.Output, error)
}

// EventRecorder stores generation attempts.
type EventRecorder interface {
	AppendGeneration(ctx context.Context, data store.GenerationEventData) error
}

// Result is a successfully generated worksheet PDF.
type Result struct {
	RequestID string
	Token     uint64
	Title     string
	Author    string

	PDF          []byte
	Pages        int
	Problems     int
	Answers      int
	Placeholders int
	Duration     time.Duration

	// Document is the definition the PDF was rendered from.
	Document *docdef.Document
}

// Generator runs the generation pipeline: override lookup, concurrent image
// measurement, layout and rendering. It keeps no per-request state, so one
// Generator serves concurrent requests.
type Generator struct {
	measurer  Measurer
	renderer  Renderer
	overrides OverrideLookup
	events    EventRecorder
	builder   *docdef.Builder
}

// Option configures a Generator.
type Option func(*Generator)

// WithRenderer replaces the process-wide PDF renderer.
func WithRenderer(r Renderer) Option {
	return func(g *Generator) { g.renderer = r }
}

// WithOverrides enables edited-content overrides.
func WithOverrides(l OverrideLookup) Option {
	return func(g *Generator) { g.overrides = l }
}

// WithEvents records every attempt.
func WithEvents(e EventRecorder) Option {
	return func(g *Generator) { g.events = e }
}

// WithBuilder replaces the A4 document builder.
func WithBuilder(b *docdef.Builder) Option {
	return func(g *Generator) { g.builder = b }
}

// NewGenerator creates a generator measuring images with m.
func NewGenerator(m Measurer, opts ...Option) *Generator {
	g := &Generator{measurer: m, builder: docdef.NewBuilder()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate renders req into a PDF. Image failures degrade to placeholders;
// override lookup and rendering failures abort the attempt.
func (g *Generator) Generate(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	res, err := g.generate(ctx, req)
	g.record(ctx, req, res, err, time.Since(start))
	if err != nil {
		return nil, err
	}
	res.Duration = time.Since(start)
	return res, nil
}

func (g *Generator) generate(ctx context.Context, req Request) (*Result, error) {
	problemRefs, answerRefs, answerOf, err := g.resolve(ctx, req)
	if err != nil {
		return nil, err
	}

	// One pass over both lists so shared references load once.
	images := g.measurer.MeasureAll(ctx, append(append([]string(nil), problemRefs...), answerRefs...))
	problemImages := images[:len(problemRefs)]
	answerImages := images[len(problemRefs):]

	var problemBadges, answerBadges []*layout.Badge
	if req.ShowBadges {
		problemBadges = docdef.Badges(req.Problems)
		answerBadges = make([]*layout.Badge, len(answerOf))
		for i, idx := range answerOf {
			answerBadges[i] = &layout.Badge{Number: idx + 1}
		}
	}

	cfg := g.builder.Layout
	doc := g.builder.Build(
		layout.NewItems(problemImages, problemBadges, cfg),
		layout.NewItems(answerImages, answerBadges, cfg),
		docdef.Metadata{Title: req.Title, Author: req.Author},
	)

	renderer := g.renderer
	if renderer == nil {
		r, err := pdfrender.Default()
		if err != nil {
			return nil, err
		}
		renderer = r
	}
	out, err := renderer.Render(ctx, doc)
	if err != nil {
		return nil, err
	}

	var placeholders int
	for _, img := range images {
		if img.Placeholder {
			placeholders++
		}
	}

	return &Result{
		RequestID:    req.ID,
		Token:        req.Token,
		Title:        req.Title,
		Author:       req.Author,
		PDF:          out.Bytes,
		Pages:        out.Pages,
		Problems:     len(problemRefs),
		Answers:      len(answerRefs),
		Placeholders: placeholders,
		Document:     doc,
	}, nil
}

// resolve picks the image reference for every problem and answer,
// preferring overrides. answerOf maps each answer to its problem index.
func (g *Generator) resolve(ctx context.Context, req Request) (problems, answers []string, answerOf []int, err error) {
	problems = make([]string, len(req.Problems))
	for i, p := range req.Problems {
		if problems[i], err = g.ref(ctx, problem.ResourceProblem, p.ID, p.ImageURL); err != nil {
			return nil, nil, nil, err
		}
	}
	if !req.IncludeAnswers {
		return problems, nil, nil, nil
	}
	for i, p := range req.Problems {
		ref, err := g.ref(ctx, problem.ResourceAnswer, p.ID, p.AnswerImageURL)
		if err != nil {
			return nil, nil, nil, err
		}
		if ref == "" {
			continue
		}
		answers = append(answers, ref)
		answerOf = append(answerOf, i)
	}
	return problems, answers, answerOf, nil
}

func (g *Generator) ref(ctx context.Context, kind problem.ResourceKind, id, fallback string) (string, error) {
	if g.overrides == nil {
		return fallback, nil
	}
	url, ok, err := g.overrides.Override(ctx, kind, id)
	if err != nil {
		return "", &OverrideError{Kind: kind, ResourceID: id, Err: err}
	}
	if ok {
		return url, nil
	}
	return fallback, nil
}

func (g *Generator) record(ctx context.Context, req Request, res *Result, genErr error, d time.Duration) {
	if g.events == nil {
		return
	}
	data := store.GenerationEventData{
		WorksheetID: req.WorksheetID,
		RequestID:   req.ID,
		Token:       req.Token,
		Problems:    len(req.Problems),
		DurationMs:  d.Milliseconds(),
		Success:     genErr == nil,
	}
	if res != nil {
		data.Answers = res.Answers
		data.Pages = res.Pages
		data.Bytes = int64(len(res.PDF))
		data.Placeholders = res.Placeholders
	}
	if genErr != nil {
		data.ErrorMessage = genErr.Error()
	}

	// Recording must not fail the generation, and a canceled request is
	// still worth recording.
	if err := g.events.AppendGeneration(context.WithoutCancel(ctx), data); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to log generation event: %v\n", err)
	}
}
