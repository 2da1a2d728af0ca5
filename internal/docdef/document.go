package docdef

import "github.com/abhisek/sheetz/internal/layout"

// Metadata describes the worksheet being rendered.
type Metadata struct {
	Title  string
	Author string

	// AnswersLabel names the answer key section. Defaults to "Answers".
	AnswersLabel string
}

// Section is a self-contained run of pages produced by one assembler pass.
type Section struct {
	Label string

	// FirstPage is the 1-based physical page the section starts on.
	FirstPage int
	Pages     int
	Items     int
}

// Document is the renderer-agnostic definition of a PDF.
type Document struct {
	Geometry Geometry
	Layout   layout.Config
	Metadata Metadata

	// Content is the flattened node stream. Pages are separated by
	// layout.PageBreak nodes.
	Content []layout.Node

	Sections []Section
	Footer   FooterFunc
}

// PageCount returns the number of physical pages the content spans. A
// document with no content has zero pages.
func (d *Document) PageCount() int {
	if d == nil || len(d.Content) == 0 {
		return 0
	}
	n := 1
	for _, node := range d.Content {
		if node.Kind() == layout.KindPageBreak {
			n++
		}
	}
	return n
}

// ItemCount returns the number of image nodes in the document.
func (d *Document) ItemCount() int {
	if d == nil {
		return 0
	}
	var n int
	for _, node := range d.Content {
		n += countImages(node)
	}
	return n
}

func countImages(n layout.Node) int {
	switch v := n.(type) {
	case layout.ImageNode:
		return 1
	case layout.StackNode:
		var c int
		for _, child := range v.Children {
			c += countImages(child)
		}
		return c
	case layout.ColumnsNode:
		var c int
		for _, col := range v.Columns {
			c += countImages(col)
		}
		return c
	default:
		return 0
	}
}

// FooterFor evaluates the footer for a page, returning an empty footer when
// none is set.
func (d *Document) FooterFor(page, total int) FooterContent {
	if d.Footer == nil {
		return FooterContent{}
	}
	return d.Footer(page, total)
}
