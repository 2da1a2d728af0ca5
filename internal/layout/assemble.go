package layout

// Assemble paginates items into two-column pages. Each page packs a left
// column and then continues into the right column from where the left one
// stopped. An empty input yields no pages.
func Assemble(items []Item, cfg Config) []Page {
	var pages []Page
	queue := items
	for len(queue) > 0 {
		left := Pack(queue, cfg.MaxColumnHeight, cfg.InterItemMargin)
		queue = left.Remaining

		page := Page{Left: newColumn(left, cfg)}
		if len(queue) > 0 {
			right := Pack(queue, cfg.MaxColumnHeight, cfg.InterItemMargin)
			queue = right.Remaining
			page.Right = newColumn(right, cfg)
		}
		pages = append(pages, page)
	}
	return pages
}

func newColumn(r PackResult, cfg Config) *Column {
	return &Column{
		Items:  r.Accepted,
		Height: r.Height,
		Nodes:  BuildContent(r.Accepted, cfg.MaxColumnHeight, cfg),
	}
}

// Nodes flattens pages into a node stream with a page break between
// consecutive pages and none after the last.
func Nodes(pages []Page, cfg Config) []Node {
	var out []Node
	for i, p := range pages {
		if i > 0 {
			out = append(out, PageBreak{})
		}
		cols := ColumnsNode{Gap: cfg.ColumnGap}
		for _, c := range []*Column{p.Left, p.Right} {
			if c == nil {
				continue
			}
			cols.Columns = append(cols.Columns, StackNode{
				Width:    cfg.ColumnWidth,
				Children: c.Nodes,
			})
		}
		out = append(out, cols)
	}
	return out
}
