// Package preview shows a generated worksheet as scrollable page
// thumbnails with download and print actions.
package preview

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/sheetz/internal/pdfrender"
	"github.com/abhisek/sheetz/internal/problem"
	"github.com/abhisek/sheetz/internal/router"
	"github.com/abhisek/sheetz/internal/screen"
	"github.com/abhisek/sheetz/internal/ui/components"
	"github.com/abhisek/sheetz/internal/ui/layout"
	"github.com/abhisek/sheetz/internal/ui/theme"
	"github.com/abhisek/sheetz/internal/worksheet"
)

// Generator produces the worksheet PDF for a request.
type Generator interface {
	Generate(ctx context.Context, req worksheet.Request) (*worksheet.Result, error)
}

// Options describes the worksheet to preview.
type Options struct {
	WorksheetID string
	Title       string
	Author      string
	Problems    []problem.Problem

	IncludeAnswers bool
	ShowBadges     bool

	// OutputDir receives downloaded PDFs. Default: current directory.
	OutputDir string
	Print     worksheet.PrintConfig
}

type generatedMsg struct {
	Token  uint64
	Result *worksheet.Result
	Err    error
}

type savedMsg struct {
	Path string
	Err  error
}

type printedMsg struct {
	Path string
	Err  error
}

// PreviewScreen renders a worksheet preview.
type PreviewScreen struct {
	gen     Generator
	opts    Options
	tracker *worksheet.Tracker

	includeAnswers bool
	loading        bool
	result         *worksheet.Result
	err            error

	zoom     int
	pages    []thumbPage
	offsets  []int
	viewport viewport.Model
	spinner  spinner.Model

	jumping bool
	jump    components.PageInput
	status  string
}

var _ screen.Screen = (*PreviewScreen)(nil)
var _ screen.KeyHintProvider = (*PreviewScreen)(nil)

// New creates a PreviewScreen. Generation starts on Init.
func New(gen Generator, opts Options) *PreviewScreen {
	return &PreviewScreen{
		gen:            gen,
		opts:           opts,
		tracker:        &worksheet.Tracker{},
		includeAnswers: opts.IncludeAnswers,
		zoom:           2,
		viewport:       viewport.New(),
		spinner:        spinner.New(spinner.WithSpinner(spinner.Dot)),
		jump:           components.NewPageInput(),
	}
}

func (s *PreviewScreen) Init() tea.Cmd {
	return s.regenerate()
}

func (s *PreviewScreen) Title() string {
	if s.opts.Title != "" {
		return s.opts.Title
	}
	return "Preview"
}

func (s *PreviewScreen) KeyHints() []layout.KeyHint {
	if s.jumping {
		return []layout.KeyHint{
			{Key: "Enter", Description: "Go"},
			{Key: "Esc", Description: "Cancel"},
		}
	}
	if s.err != nil {
		return []layout.KeyHint{
			{Key: "r", Description: "Retry"},
			{Key: "Esc", Description: "Back"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Scroll"},
		{Key: "+/-", Description: "Zoom"},
		{Key: "g", Description: "Page"},
		{Key: "a", Description: "Answers"},
		{Key: "d", Description: "Download"},
		{Key: "p", Description: "Print"},
		{Key: "Esc", Description: "Back"},
	}
}

// regenerate issues a new token and starts generating. Any result still in
// flight for an older token is discarded when it arrives.
func (s *PreviewScreen) regenerate() tea.Cmd {
	req := worksheet.NewRequest(s.tracker, s.opts.Title, s.opts.Author, s.opts.Problems)
	req.WorksheetID = s.opts.WorksheetID
	req.IncludeAnswers = s.includeAnswers
	req.ShowBadges = s.opts.ShowBadges

	s.loading = true
	s.err = nil
	gen := s.gen
	return tea.Batch(func() tea.Msg {
		res, err := gen.Generate(context.Background(), req)
		return generatedMsg{Token: req.Token, Result: res, Err: err}
	}, s.spinner.Tick)
}

func (s *PreviewScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case generatedMsg:
		s.tracker.Publish(msg.Token, func() {
			s.loading = false
			if msg.Err != nil {
				s.err = msg.Err
				return
			}
			s.result = msg.Result
			s.status = ""
			s.rebuild()
		})
		return s, nil

	case savedMsg:
		if msg.Err != nil {
			s.status = "Download failed: " + msg.Err.Error()
		} else {
			s.status = "Saved " + msg.Path
		}
		return s, nil

	case printedMsg:
		if msg.Err != nil {
			s.status = "Print failed: " + msg.Err.Error()
		} else {
			s.status = "Sent to printer"
		}
		return s, nil

	case spinner.TickMsg:
		if !s.loading {
			return s, nil
		}
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd

	case tea.KeyMsg:
		if s.jumping {
			return s.updateJump(msg)
		}
		return s.updateKey(msg)
	}
	return s, nil
}

func (s *PreviewScreen) updateKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return s, router.Pop
	case "r":
		if s.err != nil {
			return s, s.regenerate()
		}
		return s, nil
	case "a":
		s.includeAnswers = !s.includeAnswers
		if s.includeAnswers {
			s.status = "Adding answer key..."
		} else {
			s.status = "Removing answer key..."
		}
		return s, s.regenerate()
	}

	if s.result == nil || s.err != nil {
		return s, nil
	}

	switch msg.String() {
	case "+", "=":
		s.setZoom(s.zoom + 1)
	case "-", "_":
		s.setZoom(s.zoom - 1)
	case "g":
		s.jumping = true
		return s, s.jump.Open(len(s.offsets))
	case "d":
		return s, s.save()
	case "p":
		return s, s.print()
	case "home":
		s.viewport.GotoTop()
	case "end":
		s.viewport.GotoBottom()
	default:
		var cmd tea.Cmd
		s.viewport, cmd = s.viewport.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *PreviewScreen) updateJump(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "esc":
		s.jumping = false
		s.jump.Close()
		return s, nil
	case "enter":
		s.jumping = false
		s.jump.Close()
		n, err := s.jump.Page()
		if err != nil || !s.GotoPage(n) {
			s.status = fmt.Sprintf("No page %q", s.jump.Value())
		}
		return s, nil
	}
	var cmd tea.Cmd
	s.jump, cmd = s.jump.Update(msg)
	return s, cmd
}

// GotoPage scrolls so page n (1-based) is at the top.
func (s *PreviewScreen) GotoPage(n int) bool {
	if n < 1 || n > len(s.offsets) {
		return false
	}
	s.viewport.SetYOffset(s.offsets[n-1])
	s.status = fmt.Sprintf("Page %d", n)
	return true
}

// CurrentPage returns the page at the top of the viewport.
func (s *PreviewScreen) CurrentPage() int {
	y := s.viewport.YOffset()
	page := 0
	for i, off := range s.offsets {
		if off <= y {
			page = i + 1
		}
	}
	return page
}

func (s *PreviewScreen) setZoom(z int) {
	z = min(max(z, MinZoom), MaxZoom)
	if z == s.zoom {
		return
	}
	page := s.CurrentPage()
	s.zoom = z
	s.rebuild()
	s.GotoPage(page)
	s.status = fmt.Sprintf("Zoom %d/%d", s.zoom, MaxZoom)
}

func (s *PreviewScreen) rebuild() {
	if s.result == nil {
		s.pages, s.offsets = nil, nil
		s.viewport.SetContent("")
		return
	}
	s.pages = pagesOf(s.result.Document, s.zoom)
	var content string
	content, s.offsets = renderPages(s.pages, s.zoom)
	s.viewport.SetContent(content)
}

func (s *PreviewScreen) save() tea.Cmd {
	res, dir := s.result, s.opts.OutputDir
	return func() tea.Msg {
		path, err := worksheet.Save(res, dir)
		return savedMsg{Path: path, Err: err}
	}
}

func (s *PreviewScreen) print() tea.Cmd {
	res, cfg := s.result, s.opts.Print
	return func() tea.Msg {
		dir, err := os.MkdirTemp("", "sheetz-print-")
		if err != nil {
			return printedMsg{Err: err}
		}
		path, err := worksheet.Save(res, dir)
		if err != nil {
			return printedMsg{Err: err}
		}
		return printedMsg{Path: path, Err: worksheet.Print(context.Background(), path, cfg)}
	}
}

func (s *PreviewScreen) View(width, height int) string {
	if s.err != nil {
		return s.errorView(width)
	}
	if s.result == nil {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n" + s.spinner.View() + " Generating worksheet...")
	}

	header := s.summary(width)
	var footer string
	if s.jumping {
		footer = "Go to page: " + s.jump.View()
	} else if s.status != "" {
		footer = theme.Hint.Render(s.status)
	}

	vh := height - lipgloss.Height(header) - 1
	if vh < 1 {
		vh = 1
	}
	s.viewport.SetWidth(width)
	s.viewport.SetHeight(vh)

	return header + "\n" + s.viewport.View() + "\n" + footer
}

func (s *PreviewScreen) summary(width int) string {
	r := s.result
	parts := []string{
		fmt.Sprintf("%d pages", r.Pages),
		fmt.Sprintf("%d problems", r.Problems),
	}
	if r.Answers > 0 {
		parts = append(parts, fmt.Sprintf("%d answers", r.Answers))
	}
	if r.Placeholders > 0 {
		parts = append(parts, lipgloss.NewStyle().Foreground(theme.Accent).
			Render(fmt.Sprintf("%d missing images", r.Placeholders)))
	}
	parts = append(parts, fmt.Sprintf("page %d/%d", max(s.CurrentPage(), 1), len(s.pages)))
	if s.loading {
		parts = append(parts, s.spinner.View())
	}
	return lipgloss.NewStyle().Width(width).Foreground(theme.TextDim).
		Render(strings.Join(parts, " · "))
}

func (s *PreviewScreen) errorView(width int) string {
	msg := s.err.Error()
	var re *pdfrender.RenderError
	var ie *pdfrender.InitError
	var oe *worksheet.OverrideError
	switch {
	case errors.Is(s.err, pdfrender.ErrEmptyPDF):
		msg = "The PDF came out empty."
	case errors.As(s.err, &ie):
		msg = "The PDF library failed to load."
	case errors.As(s.err, &oe):
		msg = fmt.Sprintf("Could not fetch the edited image for %s %s.", oe.Kind, oe.ResourceID)
	case errors.As(s.err, &re):
		msg = "The PDF could not be rendered."
	}

	title := lipgloss.NewStyle().Foreground(theme.Error).Bold(true).Render("Preview failed")
	detail := lipgloss.NewStyle().Foreground(theme.Text).Render(msg)
	cause := theme.Hint.Render(s.err.Error())
	hint := theme.Hint.Render("Press r to retry")

	return lipgloss.NewStyle().Width(width).Align(lipgloss.Center).
		Render("\n\n" + title + "\n\n" + detail + "\n" + cause + "\n\n" + hint)
}

// Loading reports whether a generation is in flight.
func (s *PreviewScreen) Loading() bool { return s.loading }

// Result returns the latest published result.
func (s *PreviewScreen) Result() *worksheet.Result { return s.result }

// Err returns the latest published error.
func (s *PreviewScreen) Err() error { return s.err }
