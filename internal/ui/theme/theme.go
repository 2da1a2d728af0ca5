// Package theme holds the TUI palette and the styles shared across screens.
package theme

import "charm.land/lipgloss/v2"

var (
	Primary   = lipgloss.Color("#2563EB")
	Secondary = lipgloss.Color("#0D9488")
	Accent    = lipgloss.Color("#D97706")
	Error     = lipgloss.Color("#DC2626")
	Text      = lipgloss.Color("#F1F5F9")
	TextDim   = lipgloss.Color("#94A3B8")
	BgCard    = lipgloss.Color("#1E293B")
	Border    = lipgloss.Color("#334155")
)

var (
	Hint = lipgloss.NewStyle().Foreground(TextDim).Italic(true)

	// Bar frames the header and footer.
	Bar = lipgloss.NewStyle().
		Background(BgCard).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border)

	Brand = lipgloss.NewStyle().Foreground(Primary).Bold(true)
	Key   = lipgloss.NewStyle().Foreground(Text).Bold(true)
	Dim   = lipgloss.NewStyle().Foreground(TextDim)
	Plain = lipgloss.NewStyle().Foreground(Text)
)
