package docdef

import "github.com/abhisek/sheetz/internal/layout"

// Geometry is the fixed page frame in points.
type Geometry struct {
	PageWidth  float64
	PageHeight float64

	MarginLeft   float64
	MarginRight  float64
	MarginTop    float64
	MarginBottom float64
}

// A4 returns portrait A4 with the footer slot in the bottom margin.
func A4() Geometry {
	return Geometry{
		PageWidth:    595.28,
		PageHeight:   841.89,
		MarginLeft:   40,
		MarginRight:  40,
		MarginTop:    40,
		MarginBottom: 80,
	}
}

// ContentWidth is the horizontal space between the side margins.
func (g Geometry) ContentWidth() float64 {
	return g.PageWidth - g.MarginLeft - g.MarginRight
}

// ContentHeight is the vertical space between the top and bottom margins.
func (g Geometry) ContentHeight() float64 {
	return g.PageHeight - g.MarginTop - g.MarginBottom
}

// LayoutConfig derives column geometry from the page frame, keeping the
// spacing constants of base.
func (g Geometry) LayoutConfig(base layout.Config) layout.Config {
	cfg := base
	cfg.MaxColumnHeight = g.ContentHeight()
	cfg.ColumnWidth = (g.ContentWidth() - cfg.ColumnGap) / 2
	if cfg.ImageWidth > cfg.ColumnWidth {
		cfg.ImageWidth = cfg.ColumnWidth
	}
	return cfg
}
