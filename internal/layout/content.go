package layout

// BuildContent turns a packed column into image nodes, spreading the
// leftover height evenly between items (space-between). The last item never
// carries a bottom margin.
func BuildContent(column []Item, maxHeight float64, cfg Config) []Node {
	switch len(column) {
	case 0:
		return nil
	case 1:
		return []Node{imageNode(column[0], 0, cfg)}
	}

	var total float64
	for _, it := range column {
		total += it.RenderHeight
	}
	gap := (maxHeight - total) / float64(len(column)-1)
	if gap < cfg.MinimumGap {
		gap = cfg.MinimumGap
	}

	nodes := make([]Node, len(column))
	for i, it := range column {
		margin := gap
		if i == len(column)-1 {
			margin = 0
		}
		nodes[i] = imageNode(it, margin, cfg)
	}
	return nodes
}

func imageNode(it Item, marginBottom float64, cfg Config) ImageNode {
	n := ImageNode{
		Image:        it.Image,
		Seq:          it.Seq,
		Width:        cfg.ImageWidth,
		Height:       it.RenderHeight,
		MarginBottom: marginBottom,
	}
	if it.Badge != nil {
		n.Badge = it.Badge
		n.BadgeHeight = cfg.BadgeHeight
		n.Height -= cfg.BadgeHeight
	}
	return n
}
