package components

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/sheetz/internal/ui/theme"
)

const pageStep = 10

// ListItem is one selectable row. Detail is drawn dimmed after Title.
type ListItem struct {
	Title  string
	Detail string
	Action func() tea.Cmd
}

// List is a vertical selection list that scrolls to keep the cursor
// visible.
type List struct {
	Items  []ListItem
	Cursor int
}

func NewList(items []ListItem) List {
	return List{Items: items}
}

// SetItems replaces the rows and keeps the cursor in range.
func (l *List) SetItems(items []ListItem) {
	l.Items = items
	l.move(0)
}

func (l *List) move(delta int) {
	l.Cursor += delta
	if l.Cursor >= len(l.Items) {
		l.Cursor = len(l.Items) - 1
	}
	if l.Cursor < 0 {
		l.Cursor = 0
	}
}

// Selected returns the row under the cursor.
func (l List) Selected() (ListItem, bool) {
	if l.Cursor < 0 || l.Cursor >= len(l.Items) {
		return ListItem{}, false
	}
	return l.Items[l.Cursor], true
}

func (l List) Update(msg tea.Msg) (List, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return l, nil
	}
	switch key.String() {
	case "up", "k":
		l.move(-1)
	case "down", "j":
		l.move(1)
	case "pgup":
		l.move(-pageStep)
	case "pgdown":
		l.move(pageStep)
	case "home", "g":
		l.Cursor = 0
	case "end", "G":
		l.move(len(l.Items))
	case "enter":
		if item, ok := l.Selected(); ok && item.Action != nil {
			return l, item.Action()
		}
	}
	return l, nil
}

// View renders at most height rows.
func (l List) View(width, height int) string {
	if height < 1 {
		height = 1
	}
	start := 0
	if l.Cursor >= height {
		start = l.Cursor - height + 1
	}
	end := min(start+height, len(l.Items))

	selected := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
	normal := lipgloss.NewStyle().Foreground(theme.Text)
	detail := lipgloss.NewStyle().Foreground(theme.TextDim)

	var b strings.Builder
	for i := start; i < end; i++ {
		item := l.Items[i]
		line := normal.Render("    " + item.Title)
		if i == l.Cursor {
			line = selected.Render("  ▸ " + item.Title)
		}
		if item.Detail != "" && lipgloss.Width(line)+2+lipgloss.Width(item.Detail) <= width {
			line += "  " + detail.Render(item.Detail)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}
