package docdef

import "fmt"

// FooterContent is what the renderer draws in one page's footer slot.
type FooterContent struct {
	// Divider draws a thin rule across the content width.
	Divider bool

	// Text is centered under the divider.
	Text string

	// Label is left-aligned under the divider. It names the section
	// the page belongs to.
	Label string
}

// FooterFunc computes a footer from the 1-based page number and the total
// page count. Both are only known once the whole document is laid out.
type FooterFunc func(page, total int) FooterContent

// PageNumberFooter returns the default footer: a divider and "page / total".
// sections, when given, supply the left-aligned label.
func PageNumberFooter(sections []Section) FooterFunc {
	return func(page, total int) FooterContent {
		fc := FooterContent{
			Divider: true,
			Text:    fmt.Sprintf("%d / %d", page, total),
		}
		if s, ok := sectionAt(sections, page); ok {
			fc.Label = s.Label
		}
		return fc
	}
}

func sectionAt(sections []Section, page int) (Section, bool) {
	for _, s := range sections {
		if page >= s.FirstPage && page < s.FirstPage+s.Pages {
			return s, true
		}
	}
	return Section{}, false
}
