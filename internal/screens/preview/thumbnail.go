package preview

import (
	"fmt"
	"math"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/sheetz/internal/docdef"
	"github.com/abhisek/sheetz/internal/layout"
	"github.com/abhisek/sheetz/internal/ui/theme"
)

const (
	MinZoom = 1
	MaxZoom = 4
)

// thumbItem is one image box scaled into terminal rows.
type thumbItem struct {
	Seq         int
	Label       string
	Rows        int
	Placeholder bool
}

// thumbPage is one physical page of the document.
type thumbPage struct {
	Number  int
	Section string
	Columns [][]thumbItem
}

// pageRows is the height of a page body at zoom z.
func pageRows(z int) int { return 8 + 6*z }

// columnCells is the width of one column at zoom z.
func columnCells(z int) int { return 10 + 6*z }

// pagesOf splits the node stream into pages. Each ColumnsNode is one page.
func pagesOf(doc *docdef.Document, zoom int) []thumbPage {
	if doc == nil {
		return nil
	}
	maxHeight := doc.Layout.MaxColumnHeight
	if maxHeight <= 0 {
		maxHeight = layout.DefaultConfig().MaxColumnHeight
	}
	rows := pageRows(zoom)

	var pages []thumbPage
	for _, node := range doc.Content {
		cols, ok := node.(layout.ColumnsNode)
		if !ok {
			continue
		}
		p := thumbPage{Number: len(pages) + 1}
		for _, st := range cols.Columns {
			var items []thumbItem
			for _, child := range st.Children {
				img, ok := child.(layout.ImageNode)
				if !ok {
					continue
				}
				r := int(math.Round(img.OuterHeight() / maxHeight * float64(rows)))
				items = append(items, thumbItem{
					Seq:         img.Seq,
					Label:       itemLabel(img),
					Rows:        max(r, 2),
					Placeholder: img.Image.Placeholder,
				})
			}
			p.Columns = append(p.Columns, items)
		}
		pages = append(pages, p)
	}

	for _, sec := range doc.Sections {
		for i := sec.FirstPage - 1; i < sec.FirstPage-1+sec.Pages && i < len(pages); i++ {
			if i >= 0 {
				pages[i].Section = sec.Label
			}
		}
	}
	return pages
}

func itemLabel(img layout.ImageNode) string {
	n := img.Seq + 1
	if img.Badge != nil && img.Badge.Number > 0 {
		n = img.Badge.Number
	}
	label := fmt.Sprintf("%d.", n)
	if img.Badge != nil && img.Badge.Difficulty > 0 {
		label += fmt.Sprintf(" Lv.%d", img.Badge.Difficulty)
	}
	if img.Image.Placeholder {
		label += " missing"
	}
	return label
}

// renderColumn draws items top to bottom, clipped to rows lines.
func renderColumn(items []thumbItem, width, rows int) []string {
	var (
		lines  []string
		head   = lipgloss.NewStyle().Foreground(theme.Text).Bold(true)
		fill   = lipgloss.NewStyle().Foreground(theme.Secondary)
		broken = lipgloss.NewStyle().Foreground(theme.Error)
	)
	for _, it := range items {
		body, bodyStyle := "░", fill
		if it.Placeholder {
			body, bodyStyle = "╳", broken
		}
		lines = append(lines, head.Render(clip(it.Label, width)))
		for i := 1; i < it.Rows-1; i++ {
			lines = append(lines, bodyStyle.Render(strings.Repeat(body, width)))
		}
		lines = append(lines, "")
	}
	if len(lines) > rows {
		lines = lines[:rows]
	}
	for len(lines) < rows {
		lines = append(lines, "")
	}
	for i, l := range lines {
		if pad := width - lipgloss.Width(l); pad > 0 {
			lines[i] = l + strings.Repeat(" ", pad)
		}
	}
	return lines
}

func clip(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 1 {
		return string(r[:width])
	}
	return string(r[:width-1]) + "…"
}

// renderPages draws every page and returns the rendered text together with
// the line each page starts on.
func renderPages(pages []thumbPage, zoom int) (string, []int) {
	width, rows := columnCells(zoom), pageRows(zoom)
	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Padding(0, 1)
	caption := lipgloss.NewStyle().Foreground(theme.TextDim)

	var (
		b       strings.Builder
		offsets = make([]int, 0, len(pages))
		line    int
	)
	for _, p := range pages {
		offsets = append(offsets, line)

		cols := make([]string, 0, 3)
		for i := 0; i < 2; i++ {
			var items []thumbItem
			if i < len(p.Columns) {
				items = p.Columns[i]
			}
			if i == 1 {
				cols = append(cols, strings.Repeat(" \n", rows-1)+" ")
			}
			cols = append(cols, strings.Join(renderColumn(items, width, rows), "\n"))
		}
		page := card.Render(lipgloss.JoinHorizontal(lipgloss.Top, cols...))

		text := fmt.Sprintf("%d / %d", p.Number, len(pages))
		if p.Section != "" {
			text += "  " + p.Section
		}
		block := page + "\n" + caption.Render(text) + "\n\n"
		b.WriteString(block)
		line += strings.Count(block, "\n")
	}
	return b.String(), offsets
}
