package layout

// Config controls column geometry and spacing. All values are in points.
type Config struct {
	// ColumnWidth is the width of each of the two columns.
	ColumnWidth float64

	// ImageWidth is the render width every image is scaled to.
	// Must not exceed ColumnWidth.
	ImageWidth float64

	// ColumnGap separates the left and right columns.
	ColumnGap float64

	// MaxColumnHeight is the vertical space available to a column.
	MaxColumnHeight float64

	// InterItemMargin is the worst-case spacing added to every item while
	// deciding whether it fits.
	InterItemMargin float64

	// MinimumGap is the smallest gap the content builder will place
	// between two items.
	MinimumGap float64

	// BadgeHeight is added to an item's render height when it carries a
	// badge row.
	BadgeHeight float64
}

// DefaultConfig returns the A4 two-column geometry.
func DefaultConfig() Config {
	return Config{
		ColumnWidth:     250.14,
		ImageWidth:      240,
		ColumnGap:       15,
		MaxColumnHeight: 721.89,
		InterItemMargin: 20,
		MinimumGap:      10,
		BadgeHeight:     14,
	}
}
