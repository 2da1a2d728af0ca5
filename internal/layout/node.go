package layout

// NodeKind identifies a Node variant.
type NodeKind string

const (
	KindImage     NodeKind = "image"
	KindStack     NodeKind = "stack"
	KindColumns   NodeKind = "columns"
	KindPageBreak NodeKind = "page-break"
)

// Node is an element of the renderer-agnostic document tree.
// Renderers switch on the concrete type.
type Node interface {
	Kind() NodeKind
}

// ImageNode places one image box. Height is the image's own height; the
// badge row, when present, is drawn above it and adds BadgeHeight.
type ImageNode struct {
	Image        Image
	Seq          int
	Width        float64
	Height       float64
	MarginBottom float64
	Badge        *Badge
	BadgeHeight  float64
}

// StackNode stacks its children vertically.
type StackNode struct {
	Width    float64
	Children []Node
}

// ColumnsNode lays out stacks side by side separated by Gap.
type ColumnsNode struct {
	Gap     float64
	Columns []StackNode
}

// PageBreak forces the following content onto a new physical page.
type PageBreak struct{}

func (ImageNode) Kind() NodeKind { return KindImage }
func (StackNode) Kind() NodeKind { return KindStack }
func (ColumnsNode) Kind() NodeKind { return KindColumns }
func (PageBreak) Kind() NodeKind { return KindPageBreak }

// OuterHeight returns the vertical space an image node consumes,
// including its badge row and bottom margin.
func (n ImageNode) OuterHeight() float64 {
	return n.BadgeHeight + n.Height + n.MarginBottom
}
