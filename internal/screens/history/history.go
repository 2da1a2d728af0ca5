package history

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/sheetz/internal/router"
	"github.com/abhisek/sheetz/internal/screen"
	"github.com/abhisek/sheetz/internal/store"
	"github.com/abhisek/sheetz/internal/ui/layout"
	"github.com/abhisek/sheetz/internal/ui/theme"
)

// EventSource lists generation events.
type EventSource interface {
	QueryGenerations(ctx context.Context, opts store.QueryOpts) ([]store.GenerationEventRecord, error)
}

type historyLoadedMsg struct {
	Events []store.GenerationEventRecord
	Err    error
}

// HistoryScreen displays past worksheet generations.
type HistoryScreen struct {
	events   EventSource
	records  []store.GenerationEventRecord
	selected int
	expanded map[int]bool
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(events EventSource) *HistoryScreen {
	return &HistoryScreen{
		events:   events,
		expanded: make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	events := s.events
	return func() tea.Msg {
		recs, err := events.QueryGenerations(context.Background(), store.QueryOpts{Limit: 50})
		return historyLoadedMsg{Events: recs, Err: err}
	}
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Details"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.records = msg.Events
		}
		s.loaded = true
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, router.Pop
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
			return s, nil
		case "down", "j":
			if s.selected < len(s.records)-1 {
				s.selected++
			}
			return s, nil
		case "enter":
			s.expanded[s.selected] = !s.expanded[s.selected]
			return s, nil
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading history...")
	}
	if len(s.records) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  No worksheets generated yet.")
	}

	var b strings.Builder
	b.WriteString("\n")

	for i, rec := range s.records {
		prefix := "  "
		if i == s.selected {
			prefix = "> "
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			lineStyle(rec, i == s.selected).Render(prefix+Summary(rec))))
		b.WriteString("\n")

		if s.expanded[i] {
			for _, d := range Details(rec) {
				b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
					lipgloss.NewStyle().Foreground(theme.TextDim).Render("    "+d)))
				b.WriteString("\n")
			}
		}
	}

	return b.String()
}

func lineStyle(rec store.GenerationEventRecord, selected bool) lipgloss.Style {
	style := lipgloss.NewStyle().Foreground(theme.Text)
	if !rec.Success {
		style = style.Foreground(theme.Error)
	}
	if selected {
		style = style.Bold(true)
		if rec.Success {
			style = style.Foreground(theme.Primary)
		}
	}
	return style
}

// Summary is the one-line description of a generation.
func Summary(rec store.GenerationEventRecord) string {
	date := rec.Timestamp.Local().Format("Jan 02 15:04")
	if !rec.Success {
		return fmt.Sprintf("%s  failed  %d problems", date, rec.Problems)
	}
	s := fmt.Sprintf("%s  %d pages  %d problems", date, rec.Pages, rec.Problems)
	if rec.Answers > 0 {
		s += fmt.Sprintf(" + %d answers", rec.Answers)
	}
	s += fmt.Sprintf("  %.1fs", float64(rec.DurationMs)/1000)
	return s
}

// Details lists the expanded fields of a generation.
func Details(rec store.GenerationEventRecord) []string {
	var out []string
	if rec.WorksheetID != "" {
		out = append(out, "worksheet "+rec.WorksheetID)
	}
	out = append(out, fmt.Sprintf("request %s (token %d)", rec.RequestID, rec.Token))
	if rec.Success {
		out = append(out, fmt.Sprintf("%d bytes, %d missing images", rec.Bytes, rec.Placeholders))
	}
	if rec.ErrorMessage != "" {
		out = append(out, "error: "+rec.ErrorMessage)
	}
	return out
}
