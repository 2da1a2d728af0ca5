package docdef

import "github.com/abhisek/sheetz/internal/layout"

// DefaultAnswersLabel labels the answer key section when Metadata leaves it
// blank.
const DefaultAnswersLabel = "Answers"

// Builder wraps assembled pages with geometry and a footer.
type Builder struct {
	Geometry Geometry
	Layout   layout.Config
}

// NewBuilder returns a builder for A4 with the default column layout.
func NewBuilder() *Builder {
	g := A4()
	return &Builder{Geometry: g, Layout: g.LayoutConfig(layout.DefaultConfig())}
}

// Build paginates problems and, when present, answers as two independent
// passes. The answer pass starts on a fresh page. Build never fails; empty
// input yields a document without content.
func (b *Builder) Build(problems, answers []layout.Item, meta Metadata) *Document {
	doc := &Document{
		Geometry: b.Geometry,
		Layout:   b.Layout,
		Metadata: meta,
	}

	b.appendSection(doc, meta.Title, problems)
	if len(answers) > 0 {
		label := meta.AnswersLabel
		if label == "" {
			label = DefaultAnswersLabel
		}
		b.appendSection(doc, label, answers)
	}

	doc.Footer = PageNumberFooter(doc.Sections)
	return doc
}

func (b *Builder) appendSection(doc *Document, label string, items []layout.Item) {
	pages := layout.Assemble(items, b.Layout)
	if len(pages) == 0 {
		return
	}
	first := doc.PageCount() + 1
	if len(doc.Content) > 0 {
		doc.Content = append(doc.Content, layout.PageBreak{})
	}
	doc.Sections = append(doc.Sections, Section{
		Label:     label,
		FirstPage: first,
		Pages:     len(pages),
		Items:     len(items),
	})
	doc.Content = append(doc.Content, layout.Nodes(pages, b.Layout)...)
}
