package preview

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/sheetz/internal/docdef"
	"github.com/abhisek/sheetz/internal/layout"
	"github.com/abhisek/sheetz/internal/pdfrender"
	"github.com/abhisek/sheetz/internal/problem"
	"github.com/abhisek/sheetz/internal/router"
	"github.com/abhisek/sheetz/internal/worksheet"
)

// fakeGenerator lays out every problem at 700pt and every answer at 100pt,
// so N problems fill ceil(N/2) pages.
type fakeGenerator struct {
	mu    sync.Mutex
	errs  []error
	calls []worksheet.Request
}

func (g *fakeGenerator) Generate(_ context.Context, req worksheet.Request) (*worksheet.Result, error) {
	g.mu.Lock()
	g.calls = append(g.calls, req)
	var err error
	if len(g.errs) > 0 {
		err, g.errs = g.errs[0], g.errs[1:]
	}
	g.mu.Unlock()
	if err != nil {
		return nil, err
	}

	items := func(n int, h float64) []layout.Item {
		out := make([]layout.Item, n)
		for i := range out {
			out[i] = layout.Item{Image: layout.Image{Width: 240, Height: int(h)}, RenderHeight: h, Seq: i}
		}
		return out
	}
	var answers []layout.Item
	if req.IncludeAnswers {
		answers = items(len(req.Problems), 100)
	}
	doc := docdef.NewBuilder().Build(items(len(req.Problems), 700), answers, docdef.Metadata{Title: req.Title})
	return &worksheet.Result{
		RequestID: req.ID,
		Token:     req.Token,
		Title:     req.Title,
		Author:    req.Author,
		PDF:       []byte("%PDF-1.4 fake"),
		Pages:     doc.PageCount(),
		Problems:  len(req.Problems),
		Answers:   len(answers),
		Document:  doc,
	}, nil
}

func testProblems(n int) []problem.Problem {
	ps := make([]problem.Problem, n)
	for i := range ps {
		ps[i] = problem.Problem{ID: fmt.Sprintf("p%d", i+1), ImageURL: "x.png", CorrectRate: -1}
	}
	return ps
}

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

// collect runs cmd, expanding batches, and returns the generation results.
func collect(cmd tea.Cmd) []generatedMsg {
	if cmd == nil {
		return nil
	}
	var out []generatedMsg
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			out = append(out, collect(c)...)
		}
	case generatedMsg:
		out = append(out, msg)
	}
	return out
}

func deliver(s *PreviewScreen, msgs []generatedMsg) {
	for _, m := range msgs {
		s.Update(m)
	}
}

func newTestScreen(t *testing.T, gen *fakeGenerator, n int) *PreviewScreen {
	t.Helper()
	return New(gen, Options{
		Title:     "Quadratics",
		Author:    "Kim",
		Problems:  testProblems(n),
		OutputDir: t.TempDir(),
		Print:     worksheet.PrintConfig{Command: []string{"true"}},
	})
}

func TestPreview_GeneratesOnInit(t *testing.T) {
	gen := &fakeGenerator{}
	s := newTestScreen(t, gen, 5)

	msgs := collect(s.Init())
	require.Len(t, msgs, 1)
	assert.True(t, s.Loading())

	deliver(s, msgs)
	assert.False(t, s.Loading())
	require.NotNil(t, s.Result())
	assert.Equal(t, 3, s.Result().Pages)
	assert.Len(t, s.pages, 3)
	assert.Len(t, s.offsets, 3)
	assert.Equal(t, 1, s.CurrentPage())

	view := s.View(100, 40)
	assert.Contains(t, view, "3 pages")
	assert.Contains(t, view, "5 problems")
}

func TestPreview_StaleResultDropped(t *testing.T) {
	gen := &fakeGenerator{}
	s := newTestScreen(t, gen, 4)

	first := collect(s.Init())
	_, cmd := s.Update(keyPress('a'))
	second := collect(cmd)
	require.Len(t, first, 1)
	require.Len(t, second, 1)
	require.Less(t, first[0].Token, second[0].Token)

	// The superseded result arrives last and must not win.
	deliver(s, second)
	deliver(s, first)

	require.NotNil(t, s.Result())
	assert.Equal(t, second[0].Token, s.Result().Token)
	assert.Equal(t, 4, s.Result().Answers)
	assert.True(t, gen.calls[1].IncludeAnswers)
}

func TestPreview_StaleErrorDropped(t *testing.T) {
	gen := &fakeGenerator{errs: []error{pdfrender.ErrEmptyPDF}}
	s := newTestScreen(t, gen, 2)

	first := collect(s.Init())
	_, cmd := s.Update(keyPress('a'))
	second := collect(cmd)

	deliver(s, first)
	assert.NoError(t, s.Err())
	assert.True(t, s.Loading())

	deliver(s, second)
	assert.NoError(t, s.Err())
	assert.NotNil(t, s.Result())
}

func TestPreview_PageJump(t *testing.T) {
	s := newTestScreen(t, &fakeGenerator{}, 6)
	deliver(s, collect(s.Init()))

	s.Update(keyPress('g'))
	assert.True(t, s.jumping)
	s.Update(keyPress('x'))
	s.Update(keyPress('3'))
	assert.Equal(t, "3", s.jump.Value())
	s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})

	assert.False(t, s.jumping)
	assert.Equal(t, 3, s.CurrentPage())

	s.Update(keyPress('g'))
	s.Update(keyPress('9'))
	s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	assert.Equal(t, 3, s.CurrentPage())
	assert.Contains(t, s.status, "No page")
}

func TestPreview_Zoom(t *testing.T) {
	s := newTestScreen(t, &fakeGenerator{}, 4)
	deliver(s, collect(s.Init()))

	before := s.viewport.TotalLineCount()
	s.Update(keyPress('+'))
	assert.Equal(t, 3, s.zoom)
	assert.Greater(t, s.viewport.TotalLineCount(), before)

	for range 5 {
		s.Update(keyPress('+'))
	}
	assert.Equal(t, MaxZoom, s.zoom)
	for range 5 {
		s.Update(keyPress('-'))
	}
	assert.Equal(t, MinZoom, s.zoom)
}

func TestPreview_ZoomKeepsPage(t *testing.T) {
	s := newTestScreen(t, &fakeGenerator{}, 6)
	deliver(s, collect(s.Init()))

	require.True(t, s.GotoPage(2))
	s.Update(keyPress('+'))
	assert.Equal(t, 2, s.CurrentPage())
}

func TestPreview_Download(t *testing.T) {
	s := newTestScreen(t, &fakeGenerator{}, 2)
	deliver(s, collect(s.Init()))

	_, cmd := s.Update(keyPress('d'))
	require.NotNil(t, cmd)
	msg, ok := cmd().(savedMsg)
	require.True(t, ok)
	require.NoError(t, msg.Err)
	assert.True(t, strings.HasSuffix(msg.Path, "Quadratics_Kim.pdf"))

	data, err := os.ReadFile(msg.Path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 fake", string(data))

	s.Update(msg)
	assert.Contains(t, s.status, "Saved")
}

func TestPreview_Print(t *testing.T) {
	s := newTestScreen(t, &fakeGenerator{}, 2)
	deliver(s, collect(s.Init()))

	_, cmd := s.Update(keyPress('p'))
	require.NotNil(t, cmd)
	msg, ok := cmd().(printedMsg)
	require.True(t, ok)
	require.NoError(t, msg.Err)
	os.RemoveAll(filepath.Dir(msg.Path))

	s.Update(msg)
	assert.Equal(t, "Sent to printer", s.status)
}

func TestPreview_ActionsNeedResult(t *testing.T) {
	s := newTestScreen(t, &fakeGenerator{}, 2)
	s.Init()

	_, cmd := s.Update(keyPress('d'))
	assert.Nil(t, cmd)
	_, cmd = s.Update(keyPress('p'))
	assert.Nil(t, cmd)
}

func TestPreview_ErrorAndRetry(t *testing.T) {
	gen := &fakeGenerator{errs: []error{&worksheet.OverrideError{
		Kind: problem.ResourceAnswer, ResourceID: "p1", Err: fmt.Errorf("connection refused"),
	}}}
	s := newTestScreen(t, gen, 2)

	deliver(s, collect(s.Init()))
	require.Error(t, s.Err())
	view := s.View(100, 40)
	assert.Contains(t, view, "Preview failed")
	assert.Contains(t, view, "answer p1")
	assert.Contains(t, view, "Press r to retry")
	assert.Equal(t, "r", s.KeyHints()[0].Key)

	_, cmd := s.Update(keyPress('r'))
	deliver(s, collect(cmd))
	assert.NoError(t, s.Err())
	require.NotNil(t, s.Result())
	assert.Len(t, gen.calls, 2)
}

func TestPreview_EmptyPDFMessage(t *testing.T) {
	s := newTestScreen(t, &fakeGenerator{errs: []error{pdfrender.ErrEmptyPDF}}, 1)
	deliver(s, collect(s.Init()))
	assert.Contains(t, s.View(100, 40), "The PDF came out empty.")
}

func TestPreview_EscPops(t *testing.T) {
	s := newTestScreen(t, &fakeGenerator{}, 1)
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	require.NotNil(t, cmd)
	_, ok := cmd().(router.PopScreenMsg)
	assert.True(t, ok)
}

func TestPagesOf_SectionsAndPlaceholders(t *testing.T) {
	items := []layout.Item{
		{Image: layout.Image{Width: 240, Height: 300}, RenderHeight: 300, Seq: 0},
		{Image: layout.Image{Width: 300, Height: 200, Placeholder: true}, RenderHeight: 160, Seq: 1},
	}
	answers := []layout.Item{{Image: layout.Image{Width: 240, Height: 100}, RenderHeight: 100, Seq: 0}}
	doc := docdef.NewBuilder().Build(items, answers, docdef.Metadata{Title: "Set"})

	pages := pagesOf(doc, 2)
	require.Len(t, pages, 2)
	assert.Equal(t, "Set", pages[0].Section)
	assert.Equal(t, docdef.DefaultAnswersLabel, pages[1].Section)

	left := pages[0].Columns[0]
	require.Len(t, left, 2)
	assert.Equal(t, "1.", left[0].Label)
	assert.True(t, left[1].Placeholder)
	assert.Equal(t, "2. missing", left[1].Label)
	assert.Greater(t, left[0].Rows, left[1].Rows)

	content, offsets := renderPages(pages, 2)
	assert.Contains(t, content, "1 / 2")
	assert.Contains(t, content, "2 / 2  Answers")
	assert.Equal(t, []int{0, pageRows(2) + 4}, offsets)
}
