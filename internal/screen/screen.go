// Package screen declares the contract between the router and the TUI
// screens.
package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/sheetz/internal/ui/layout"
)

// Screen is one page of the TUI. View receives the space left between the
// header and the footer.
type Screen interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Screen, tea.Cmd)
	View(width, height int) string
	Title() string
}

// KeyHintProvider replaces the default footer hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// Focuser is notified when the screen above it is popped and it becomes
// active again, e.g. to reload data another screen may have changed.
type Focuser interface {
	Focus() tea.Cmd
}
