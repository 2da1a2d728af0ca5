package worksheet

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/sheetz/internal/docdef"
	"github.com/abhisek/sheetz/internal/imageload"
	"github.com/abhisek/sheetz/internal/layout"
	"github.com/abhisek/sheetz/internal/pdfrender"
	"github.com/abhisek/sheetz/internal/problem"
	"github.com/abhisek/sheetz/internal/store"
)

// fakeMeasurer returns an 800x600 image per ref and remembers the refs.
type fakeMeasurer struct {
	mu   sync.Mutex
	refs []string
}

func (f *fakeMeasurer) MeasureAll(_ context.Context, refs []string) []layout.Image {
	f.mu.Lock()
	f.refs = append(f.refs, refs...)
	f.mu.Unlock()
	out := make([]layout.Image, len(refs))
	for i, r := range refs {
		out[i] = layout.Image{Width: 800, Height: 600, Source: r, Format: "png"}
	}
	return out
}

type stubRenderer struct {
	out *pdfrender.Output
	err error
	doc *docdef.Document
}

func (s *stubRenderer) Render(_ context.Context, doc *docdef.Document) (*pdfrender.Output, error) {
	s.doc = doc
	return s.out, s.err
}

type mapOverrides struct {
	urls map[string]string
	err  error
}

func (m mapOverrides) Override(_ context.Context, kind problem.ResourceKind, id string) (string, bool, error) {
	if m.err != nil {
		return "", false, m.err
	}
	u, ok := m.urls[string(kind)+":"+id]
	return u, ok, nil
}

type recorder struct {
	events []store.GenerationEventData
}

func (r *recorder) AppendGeneration(_ context.Context, d store.GenerationEventData) error {
	r.events = append(r.events, d)
	return nil
}

func problems(n int) []problem.Problem {
	ps := make([]problem.Problem, n)
	for i := range ps {
		id := string(rune('a' + i))
		ps[i] = problem.Problem{ID: id, ImageURL: id + ".png", AnswerImageURL: id + "-ans.png", Difficulty: 2, CorrectRate: -1}
	}
	return ps
}

func okRenderer() *stubRenderer {
	return &stubRenderer{out: &pdfrender.Output{Bytes: []byte("%PDF-1.4"), Pages: 1}}
}

func TestTracker(t *testing.T) {
	var tr Tracker
	first := tr.Next()
	second := tr.Next()
	assert.Greater(t, second, first)
	assert.False(t, tr.IsCurrent(first))
	assert.True(t, tr.IsCurrent(second))

	ran := false
	assert.False(t, tr.Publish(first, func() { ran = true }))
	assert.False(t, ran)
	assert.True(t, tr.Publish(second, func() { ran = true }))
	assert.True(t, ran)
}

func TestTracker_ConcurrentTokensAreUnique(t *testing.T) {
	var tr Tracker
	const n = 50
	seen := make(chan uint64, n)
	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			seen <- tr.Next()
		}()
	}
	wg.Wait()
	close(seen)

	uniq := map[uint64]bool{}
	for tok := range seen {
		uniq[tok] = true
	}
	assert.Len(t, uniq, n)
	assert.Equal(t, uint64(n), tr.Current())
}

func TestGenerate_Pipeline(t *testing.T) {
	m := &fakeMeasurer{}
	r := okRenderer()
	rec := &recorder{}
	g := NewGenerator(m, WithRenderer(r), WithEvents(rec))

	var tr Tracker
	req := NewRequest(&tr, "Set", "Kim", problems(5))
	req.IncludeAnswers = true
	req.ShowBadges = true

	res, err := g.Generate(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, req.Token, res.Token)
	assert.Equal(t, 5, res.Problems)
	assert.Equal(t, 5, res.Answers)
	assert.Equal(t, 0, res.Placeholders)
	assert.Equal(t, []string{"a.png", "b.png", "c.png", "d.png", "e.png",
		"a-ans.png", "b-ans.png", "c-ans.png", "d-ans.png", "e-ans.png"}, m.refs)

	require.NotNil(t, r.doc)
	assert.Equal(t, 10, r.doc.ItemCount())
	require.Len(t, r.doc.Sections, 2)
	assert.Equal(t, "Set", r.doc.Sections[0].Label)

	require.Len(t, rec.events, 1)
	assert.True(t, rec.events[0].Success)
	assert.Equal(t, req.ID, rec.events[0].RequestID)
	assert.Equal(t, 5, rec.events[0].Answers)
}

func TestGenerate_SkipsMissingAnswers(t *testing.T) {
	m := &fakeMeasurer{}
	g := NewGenerator(m, WithRenderer(okRenderer()))

	ps := problems(3)
	ps[1].AnswerImageURL = ""
	req := NewRequest(nil, "T", "", ps)
	req.IncludeAnswers = true

	res, err := g.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Answers)
}

func TestGenerate_PrefersOverrides(t *testing.T) {
	m := &fakeMeasurer{}
	g := NewGenerator(m,
		WithRenderer(okRenderer()),
		WithOverrides(mapOverrides{urls: map[string]string{
			"problem:b": "edited-b.png",
			"answer:a":  "edited-a-ans.png",
		}}),
	)
	req := NewRequest(nil, "T", "", problems(2))
	req.IncludeAnswers = true

	_, err := g.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.png", "edited-b.png", "edited-a-ans.png", "b-ans.png"}, m.refs)
}

func TestGenerate_OverrideFailureAborts(t *testing.T) {
	m := &fakeMeasurer{}
	r := okRenderer()
	rec := &recorder{}
	g := NewGenerator(m, WithRenderer(r), WithEvents(rec),
		WithOverrides(mapOverrides{err: errors.New("connection refused")}))

	_, err := g.Generate(context.Background(), NewRequest(nil, "T", "", problems(1)))

	var oe *OverrideError
	require.ErrorAs(t, err, &oe)
	assert.Contains(t, err.Error(), "could not fetch override data")
	assert.Equal(t, "a", oe.ResourceID)
	assert.Empty(t, m.refs)
	assert.Nil(t, r.doc)

	require.Len(t, rec.events, 1)
	assert.False(t, rec.events[0].Success)
	assert.Contains(t, rec.events[0].ErrorMessage, "override")
}

func TestGenerate_EmptyPDFIsSurfaced(t *testing.T) {
	g := NewGenerator(&fakeMeasurer{}, WithRenderer(&stubRenderer{err: pdfrender.ErrEmptyPDF}))

	_, err := g.Generate(context.Background(), NewRequest(nil, "T", "", problems(1)))
	assert.ErrorIs(t, err, pdfrender.ErrEmptyPDF)
	assert.True(t, pdfrender.IsRetryable(err))
}

func TestGenerate_StaleResultIsDropped(t *testing.T) {
	g := NewGenerator(&fakeMeasurer{}, WithRenderer(okRenderer()))
	var tr Tracker

	older := NewRequest(&tr, "old", "", problems(1))
	newer := NewRequest(&tr, "new", "", problems(2))

	var shown string
	resNew, err := g.Generate(context.Background(), newer)
	require.NoError(t, err)
	assert.True(t, tr.Publish(resNew.Token, func() { shown = resNew.Title }))

	// The older request finishes late.
	resOld, err := g.Generate(context.Background(), older)
	require.NoError(t, err)
	assert.False(t, tr.Publish(resOld.Token, func() { shown = resOld.Title }))

	assert.Equal(t, "new", shown)
}

// A 404 image yields a placeholder in its slot and the document keeps every
// item.
func TestGenerate_NotFoundImageBecomesPlaceholder(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 80, 60))))
	pngData := buf.Bytes()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.png" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(pngData)
	}))
	defer srv.Close()

	cfg := imageload.DefaultConfig()
	g := NewGenerator(imageload.NewMeasurer(cfg, imageload.WithErrorHandler(func(*imageload.LoadError) {})))

	ps := []problem.Problem{
		{ID: "1", ImageURL: srv.URL + "/ok.png", CorrectRate: -1},
		{ID: "2", ImageURL: srv.URL + "/missing.png", CorrectRate: -1},
		{ID: "3", ImageURL: srv.URL + "/ok.png", CorrectRate: -1},
	}
	res, err := g.Generate(context.Background(), NewRequest(nil, "Scenario", "", ps))
	require.NoError(t, err)

	assert.Equal(t, 1, res.Placeholders)
	assert.Equal(t, 1, res.Pages)
	assert.Equal(t, 3, res.Document.ItemCount())
	assert.True(t, bytes.HasPrefix(res.PDF, []byte("%PDF-")))

	cols := res.Document.Content[0].(layout.ColumnsNode)
	var nodes []layout.ImageNode
	for _, c := range cols.Columns {
		for _, n := range c.Children {
			nodes = append(nodes, n.(layout.ImageNode))
		}
	}
	require.Len(t, nodes, 3)
	assert.Equal(t, 1, nodes[1].Seq)
	assert.True(t, nodes[1].Image.Placeholder)
	assert.Equal(t, imageload.PlaceholderWidth, nodes[1].Image.Width)
	assert.Equal(t, imageload.PlaceholderHeight, nodes[1].Image.Height)
}

func TestFilename(t *testing.T) {
	tests := []struct {
		title, author, want string
	}{
		{"Week 3", "Kim", "Week 3_Kim.pdf"},
		{"a/b:c*d?", "", "a_b_c_d_.pdf"},
		{"", "", "worksheet.pdf"},
		{"", "Lee", "worksheet_Lee.pdf"},
		{"  ..hidden  ", "", "hidden.pdf"},
		{"tab\there\nnew", "", "tab here new.pdf"},
		// Decomposed Hangul is recomposed.
		{"한", "", "한.pdf"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Filename(tt.title, tt.author), "%q/%q", tt.title, tt.author)
	}

	long := Filename(string(bytes.Repeat([]byte("x"), 300)), "")
	assert.Equal(t, maxBaseRunes+len(".pdf"), len(long))
}

func TestSave_DoesNotOverwrite(t *testing.T) {
	dir := t.TempDir()
	res := &Result{Title: "Quiz", PDF: []byte("%PDF-1")}

	p1, err := Save(res, dir)
	require.NoError(t, err)
	p2, err := Save(res, dir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "Quiz.pdf"), p1)
	assert.Equal(t, filepath.Join(dir, "Quiz (2).pdf"), p2)

	data, err := os.ReadFile(p2)
	require.NoError(t, err)
	assert.Equal(t, res.PDF, data)

	_, err = Save(&Result{}, dir)
	assert.Error(t, err)
}

func TestPrint(t *testing.T) {
	assert.NoError(t, Print(context.Background(), "/tmp/x.pdf", PrintConfig{Command: []string{"true"}}))
	assert.Error(t, Print(context.Background(), "/tmp/x.pdf", PrintConfig{Command: []string{"false"}}))
	assert.Error(t, Print(context.Background(), "/tmp/x.pdf", PrintConfig{}))
}

func TestPrintConfigFromEnv(t *testing.T) {
	t.Setenv("SHEETZ_PRINT_CMD", "lp -d office")
	assert.Equal(t, []string{"lp", "-d", "office"}, PrintConfigFromEnv().Command)

	t.Setenv("SHEETZ_PRINT_CMD", "")
	assert.Equal(t, []string{"lp"}, PrintConfigFromEnv().Command)
}

type fakeSource struct {
	ps []problem.Problem
}

func (f fakeSource) Get(_ context.Context, ids []string) ([]problem.Problem, error) {
	var out []problem.Problem
	for _, id := range ids {
		for _, p := range f.ps {
			if p.ID == id {
				out = append(out, p)
			}
		}
	}
	return out, nil
}

func (f fakeSource) Query(_ context.Context, flt problem.Filter) ([]problem.Problem, error) {
	var out []problem.Problem
	for _, p := range f.ps {
		if flt.Matches(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

func TestBuildFile(t *testing.T) {
	doc := `
title: Review
author: Kim
problems: [c, a, b]
sort: difficulty
badges: true
`
	bf, err := ParseBuildFile([]byte(doc))
	require.NoError(t, err)
	assert.True(t, bf.Answers())

	src := fakeSource{ps: []problem.Problem{
		{ID: "a", Difficulty: 3}, {ID: "b", Difficulty: 1}, {ID: "c", Difficulty: 3},
	}}
	ps, err := bf.Resolve(context.Background(), src)
	require.NoError(t, err)
	var ids []string
	for _, p := range ps {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"b", "c", "a"}, ids)

	req := bf.Request(nil, ps)
	assert.True(t, req.IncludeAnswers)
	assert.True(t, req.ShowBadges)
	assert.Equal(t, "Review", req.Title)
	assert.NotEmpty(t, req.ID)
}

func TestBuildFile_Filter(t *testing.T) {
	doc := `
title: Hard ones
filter:
  min_difficulty: 3
include_answers: false
`
	bf, err := ParseBuildFile([]byte(doc))
	require.NoError(t, err)
	assert.False(t, bf.Answers())

	src := fakeSource{ps: []problem.Problem{{ID: "a", Difficulty: 3}, {ID: "b", Difficulty: 1}}}
	ps, err := bf.Resolve(context.Background(), src)
	require.NoError(t, err)
	require.Len(t, ps, 1)
	assert.Equal(t, "a", ps[0].ID)
}

func TestBuildFile_Invalid(t *testing.T) {
	tests := map[string]string{
		"no title":      "problems: [a]",
		"no selection":  "title: x",
		"both":          "title: x\nproblems: [a]\nfilter: {}",
		"bad sort":      "title: x\nproblems: [a]\nsort: random",
		"unknown field": "title: x\nproblems: [a]\ncolour: red",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseBuildFile([]byte(doc))
			assert.Error(t, err)
		})
	}
}
