package layout

// Image is a decoded problem or answer image ready for placement.
//
// Width and Height are the natural pixel dimensions. When loading failed,
// Placeholder is set and the dimensions are the fixed placeholder size, so
// the layout always receives a usable image.
type Image struct {
	// Data is the encoded image (PNG, JPEG or GIF) embedded in the PDF.
	Data []byte

	// Format is the encoding of Data: "png", "jpeg" or "gif".
	Format string

	Width  int
	Height int

	// Placeholder reports that the real image could not be loaded.
	Placeholder bool

	// Source is the reference the image was resolved from.
	Source string
}

// Badge is the metadata row shown above a problem image.
// Empty fields are simply not rendered.
type Badge struct {
	Number      int
	Difficulty  int
	ChapterPath string
	ExamLabel   string
	CorrectRate string
	Tags        []string
}

// IsEmpty reports whether the badge has nothing to show.
func (b *Badge) IsEmpty() bool {
	if b == nil {
		return true
	}
	return b.Number == 0 && b.Difficulty == 0 && b.ChapterPath == "" &&
		b.ExamLabel == "" && b.CorrectRate == "" && len(b.Tags) == 0
}

// Item is one image scaled to the render width.
type Item struct {
	Image Image

	// RenderHeight is the total vertical space the item occupies in a
	// column, including the badge row when Badge is set.
	RenderHeight float64

	// Seq is the item's position in the original ordered list. It is the
	// only ordering authority.
	Seq int

	Badge *Badge
}

// Column is a packed run of items.
type Column struct {
	Items  []Item
	Height float64
	Nodes  []Node
}

// Page holds up to two columns. Right is nil when the queue ran out after
// the left column.
type Page struct {
	Left  *Column
	Right *Column
}

// Items returns the page's items in reading order: left, then right.
func (p Page) Items() []Item {
	var out []Item
	if p.Left != nil {
		out = append(out, p.Left.Items...)
	}
	if p.Right != nil {
		out = append(out, p.Right.Items...)
	}
	return out
}
