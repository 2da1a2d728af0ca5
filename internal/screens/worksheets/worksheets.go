// Package worksheets lists saved worksheets and opens them in the preview.
package worksheets

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/sheetz/internal/problem"
	"github.com/abhisek/sheetz/internal/router"
	"github.com/abhisek/sheetz/internal/screen"
	"github.com/abhisek/sheetz/internal/screens/history"
	"github.com/abhisek/sheetz/internal/screens/preview"
	"github.com/abhisek/sheetz/internal/store"
	"github.com/abhisek/sheetz/internal/ui/components"
	"github.com/abhisek/sheetz/internal/ui/layout"
	"github.com/abhisek/sheetz/internal/ui/theme"
)

// Deps are the collaborators the list needs to open previews.
type Deps struct {
	Worksheets store.WorksheetRepo
	Problems   store.ProblemRepo
	Events     history.EventSource
	Generator  preview.Generator

	// Preview carries the download and print settings for opened previews.
	Preview preview.Options
}

type loadedMsg struct {
	Worksheets []store.Worksheet
	Err        error
}

type openMsg struct {
	Options preview.Options
	Err     error
}

// WorksheetsScreen is the home screen.
type WorksheetsScreen struct {
	deps   Deps
	list   []store.Worksheet
	rows   components.List
	loaded bool
	errMsg string
}

var _ screen.Screen = (*WorksheetsScreen)(nil)
var _ screen.KeyHintProvider = (*WorksheetsScreen)(nil)
var _ screen.Focuser = (*WorksheetsScreen)(nil)

// New creates the worksheets screen.
func New(deps Deps) *WorksheetsScreen {
	return &WorksheetsScreen{deps: deps}
}

func (s *WorksheetsScreen) Init() tea.Cmd {
	return s.load()
}

// Focus reloads the list when returning from another screen; worksheets
// may have been created from the CLI meanwhile.
func (s *WorksheetsScreen) Focus() tea.Cmd {
	return s.load()
}

func (s *WorksheetsScreen) load() tea.Cmd {
	repo := s.deps.Worksheets
	return func() tea.Msg {
		list, err := repo.List(context.Background(), 100)
		return loadedMsg{Worksheets: list, Err: err}
	}
}

func (s *WorksheetsScreen) Title() string {
	return "Worksheets"
}

func (s *WorksheetsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Preview"},
		{Key: "h", Description: "History"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (s *WorksheetsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		s.loaded = true
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.errMsg = ""
		s.list = msg.Worksheets
		items := make([]components.ListItem, len(s.list))
		for i, ws := range s.list {
			items[i] = components.ListItem{
				Title:  rowTitle(ws),
				Detail: rowDetail(ws),
				Action: s.open(ws),
			}
		}
		s.rows.SetItems(items)
		return s, nil

	case openMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.errMsg = ""
		p := preview.New(s.deps.Generator, msg.Options)
		return s, router.Push(p)

	case tea.KeyMsg:
		if msg.String() == "h" && s.deps.Events != nil {
			h := history.New(s.deps.Events)
			return s, router.Push(h)
		}
		var cmd tea.Cmd
		s.rows, cmd = s.rows.Update(msg)
		return s, cmd
	}
	return s, nil
}

// open loads the worksheet's problems in saved order.
func (s *WorksheetsScreen) open(ws store.Worksheet) func() tea.Cmd {
	return func() tea.Cmd {
		deps := s.deps
		return func() tea.Msg {
			problems, err := deps.Problems.Get(context.Background(), ws.ProblemIDs)
			if err != nil {
				return openMsg{Err: fmt.Errorf("open %q: %w", ws.Title, err)}
			}
			opts := deps.Preview
			opts.WorksheetID = ws.ID
			opts.Title = ws.Title
			opts.Author = ws.Author
			opts.Problems = problem.Sort(problems, ws.SortKey, false)
			opts.IncludeAnswers = ws.IncludeAnswers
			opts.ShowBadges = ws.ShowBadges
			return openMsg{Options: opts}
		}
	}
}

func rowTitle(ws store.Worksheet) string {
	title := ws.Title
	if title == "" {
		title = "(untitled)"
	}
	if ws.Author != "" {
		title += " · " + ws.Author
	}
	return title
}

func rowDetail(ws store.Worksheet) string {
	return fmt.Sprintf("%d problems, %s", len(ws.ProblemIDs), ws.CreatedAt.Local().Format("Jan 02"))
}

func (s *WorksheetsScreen) View(width, height int) string {
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading worksheets...")
	}

	var b strings.Builder
	b.WriteString("\n")
	if len(s.list) == 0 {
		b.WriteString(lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("No worksheets yet. Create one with `sheetz worksheet create`."))
	} else {
		rows := height - 1
		if s.errMsg != "" {
			rows -= 2
		}
		b.WriteString(s.rows.View(width, rows))
	}
	if s.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Error).Render("  " + s.errMsg))
	}
	return b.String()
}
