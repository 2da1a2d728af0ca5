// Package layout renders the frame around the active screen.
package layout

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/sheetz/internal/ui/theme"
)

// Below this the preview thumbnails cannot show a full page.
const (
	MinWidth  = 80
	MinHeight = 24
)

const barPadding = 4 // border plus one space each side

type KeyHint struct {
	Key         string
	Description string
}

func IsTooSmall(width, height int) bool {
	return width < MinWidth || height < MinHeight
}

func RenderMinSizeMessage(width, height int) string {
	return theme.Plain.
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(fmt.Sprintf("Terminal too small: %d x %d\nResize to at least %d x %d",
			width, height, MinWidth, MinHeight))
}

// RenderHeader draws the brand, the navigation trail and info, e.g. the
// database path. Leading trail entries are dropped when space runs out.
func RenderHeader(trail []string, info string, width int) string {
	inner := max(width-barPadding, 0)
	brand := theme.Brand.Render("Sheetz")
	right := theme.Dim.Render(info)

	room := inner - lipgloss.Width(brand) - lipgloss.Width(right) - 4
	crumbs := trail
	text := strings.Join(crumbs, " › ")
	for len(crumbs) > 1 && lipgloss.Width(text) > room {
		crumbs = crumbs[1:]
		text = "… › " + strings.Join(crumbs, " › ")
	}
	center := theme.Plain.Render(text)

	gap := max(inner-lipgloss.Width(brand)-lipgloss.Width(center)-lipgloss.Width(right), 2)
	left := gap / 2
	line := " " + brand + strings.Repeat(" ", left) + center + strings.Repeat(" ", gap-left) + right
	return theme.Bar.Width(width).Render(line)
}

// RenderFooter draws as many key hints as fit on one line.
func RenderFooter(hints []KeyHint, width int) string {
	inner := max(width-barPadding, 0)
	var b strings.Builder
	used := 0
	for _, h := range hints {
		part := theme.Key.Render(h.Key) + " " + theme.Dim.Render(h.Description)
		sep := "   "
		if used == 0 {
			sep = " "
		}
		w := lipgloss.Width(sep + part)
		if used+w > inner {
			break
		}
		b.WriteString(sep + part)
		used += w
	}
	return theme.Bar.Width(width).Render(b.String())
}

// RenderFrame stacks header, content and footer, padding the content to
// fill the terminal.
func RenderFrame(header, content, footer string, width, height int) string {
	body := height - lipgloss.Height(header) - lipgloss.Height(footer)
	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		lipgloss.NewStyle().Width(width).Height(max(body, 0)).MaxHeight(max(body, 0)).Render(content),
		footer,
	)
}
