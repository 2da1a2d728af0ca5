package layout

// PackResult is the outcome of filling one column.
type PackResult struct {
	Accepted  []Item
	Remaining []Item

	// Height is the cumulative packing height of Accepted, margins included.
	Height float64
}

// Pack greedily fills a column from the front of items. Each item costs its
// render height plus interItemMargin; packing stops before the first item
// that would push the column past maxHeight.
//
// An item is always accepted into an empty column, even when it alone
// exceeds maxHeight. Callers rely on this for progress: a non-empty input
// never yields an empty Accepted.
func Pack(items []Item, maxHeight, interItemMargin float64) PackResult {
	var running float64
	n := 0
	for _, it := range items {
		cost := it.RenderHeight + interItemMargin
		if n > 0 && running+cost > maxHeight {
			break
		}
		running += cost
		n++
	}
	return PackResult{
		Accepted:  items[:n:n],
		Remaining: items[n:],
		Height:    running,
	}
}
