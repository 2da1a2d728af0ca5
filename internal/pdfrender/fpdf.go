package pdfrender

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/abhisek/sheetz/internal/docdef"
	"github.com/abhisek/sheetz/internal/imageload"
	"github.com/abhisek/sheetz/internal/layout"
)

const (
	badgeFontSize  = 8
	footerFontSize = 9
	footerOffset   = 20
	ellipsis       = "…"
)

// FPDFBackend draws documents with go-pdf/fpdf. A fresh fpdf instance is
// created per Encode, so one backend serves concurrent callers.
type FPDFBackend struct {
	fonts Fonts
}

// NewFPDFBackend returns a backend embedding fonts in every document.
func NewFPDFBackend(fonts Fonts) *FPDFBackend {
	return &FPDFBackend{fonts: fonts}
}

// Encode implements Backend.
func (b *FPDFBackend) Encode(ctx context.Context, doc *docdef.Document) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("nil document")
	}
	g := doc.Geometry
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: g.PageWidth, Ht: g.PageHeight},
	})
	pdf.SetMargins(g.MarginLeft, g.MarginTop, g.MarginRight)
	pdf.SetAutoPageBreak(false, g.MarginBottom)
	pdf.AddUTF8FontFromBytes(fontFamily, "", b.fonts.Regular)
	pdf.AddUTF8FontFromBytes(fontFamily, "B", b.fonts.Bold)
	pdf.SetTitle(doc.Metadata.Title, true)
	pdf.SetAuthor(doc.Metadata.Author, true)
	pdf.SetCreator("sheetz", true)
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("init fpdf: %w", err)
	}

	w := &writer{pdf: pdf, doc: doc}

	// An empty document still gets one blank page so the output is a
	// valid PDF with a footer.
	total := max(doc.PageCount(), 1)
	pdf.SetFooterFunc(func() {
		w.footer(doc.FooterFor(pdf.PageNo(), total))
	})
	pdf.AddPage()

	for _, node := range doc.Content {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		w.node(node, g.MarginLeft, g.MarginTop, g.ContentWidth())
		if err := pdf.Error(); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// writer carries the state of one Encode call.
type writer struct {
	pdf    *fpdf.Fpdf
	doc    *docdef.Document
	images int
}

func (w *writer) node(n layout.Node, x, y, width float64) float64 {
	switch v := n.(type) {
	case layout.PageBreak:
		w.pdf.AddPage()
	case layout.ColumnsNode:
		var tallest float64
		for _, col := range v.Columns {
			h := w.node(col, x, y, col.Width)
			tallest = max(tallest, h)
			x += col.Width + v.Gap
		}
		return tallest
	case layout.StackNode:
		top := y
		for _, child := range v.Children {
			y += w.node(child, x, y, v.Width)
		}
		return y - top
	case layout.ImageNode:
		w.image(v, x+(width-v.Width)/2, y)
		return v.OuterHeight()
	}
	return 0
}

func (w *writer) image(n layout.ImageNode, x, y float64) {
	if n.Badge != nil {
		w.badge(n.Badge, x, y, n.Width, n.BadgeHeight)
		y += n.BadgeHeight
	}

	img := n.Image
	name, opts := w.register(img)
	if !w.pdf.Ok() {
		// Bytes the PDF writer cannot parse are drawn as the placeholder.
		w.pdf.ClearError()
		img = imageload.Placeholder(img.Source)
		name, opts = w.register(img)
	}
	width, height := fitBox(n.Width, n.Height, w.doc.Layout.MaxColumnHeight-n.BadgeHeight)
	x += (n.Width - width) / 2
	w.pdf.ImageOptions(name, x, y, width, height, false, opts, 0, "")

	if img.Placeholder {
		w.pdf.SetFont(fontFamily, "", badgeFontSize)
		w.pdf.SetTextColor(120, 120, 120)
		w.pdf.SetXY(x, y+height/2-badgeFontSize/2)
		w.pdf.CellFormat(width, badgeFontSize, "image unavailable", "", 0, "C", false, 0, "")
		w.pdf.SetTextColor(0, 0, 0)
	}
}

// fitBox scales a width x height box down, keeping its aspect ratio, so it
// is no taller than maxHeight. An oversized image packed alone in a column
// is drawn shrunk instead of running past the footer.
func fitBox(width, height, maxHeight float64) (float64, float64) {
	if maxHeight <= 0 || height <= maxHeight {
		return width, height
	}
	scale := maxHeight / height
	return width * scale, maxHeight
}

func (w *writer) register(img layout.Image) (string, fpdf.ImageOptions) {
	w.images++
	name := fmt.Sprintf("img%d", w.images)
	opts := fpdf.ImageOptions{ImageType: imageType(img.Format)}
	w.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(img.Data))
	return name, opts
}

func imageType(format string) string {
	switch strings.ToLower(format) {
	case "jpeg", "jpg":
		return "JPG"
	case "gif":
		return "GIF"
	default:
		return "PNG"
	}
}

func (w *writer) badge(b *layout.Badge, x, y, width, height float64) {
	pdf := w.pdf
	pdf.SetTextColor(60, 60, 60)

	var lead string
	if b.Number > 0 {
		lead = fmt.Sprintf("%d.", b.Number)
		pdf.SetFont(fontFamily, "B", badgeFontSize+1)
		lw := pdf.GetStringWidth(lead) + 4
		pdf.SetXY(x, y)
		pdf.CellFormat(lw, height, lead, "", 0, "L", false, 0, "")
		x += lw
		width -= lw
	}

	pdf.SetFont(fontFamily, "", badgeFontSize)
	text := fit(pdf, badgeText(b), width)
	pdf.SetXY(x, y)
	pdf.CellFormat(width, height, text, "", 0, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}

func badgeText(b *layout.Badge) string {
	var parts []string
	if b.Difficulty > 0 {
		parts = append(parts, fmt.Sprintf("Lv.%d", b.Difficulty))
	}
	for _, s := range []string{b.ChapterPath, b.ExamLabel} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	if b.CorrectRate != "" {
		parts = append(parts, "rate "+b.CorrectRate)
	}
	for _, t := range b.Tags {
		parts = append(parts, "#"+t)
	}
	return strings.Join(parts, " · ")
}

// fit truncates s with an ellipsis until it fits width at the current font.
func fit(pdf *fpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 {
		r = r[:len(r)-1]
		t := strings.TrimRight(string(r), " ·") + ellipsis
		if pdf.GetStringWidth(t) <= width {
			return t
		}
	}
	return ""
}

func (w *writer) footer(fc docdef.FooterContent) {
	pdf := w.pdf
	g := w.doc.Geometry
	y := g.PageHeight - g.MarginBottom + footerOffset

	if fc.Divider {
		pdf.SetDrawColor(190, 190, 190)
		pdf.SetLineWidth(0.5)
		pdf.Line(g.MarginLeft, y, g.PageWidth-g.MarginRight, y)
	}

	pdf.SetFont(fontFamily, "", footerFontSize)
	pdf.SetTextColor(90, 90, 90)
	if fc.Text != "" {
		pdf.SetXY(g.MarginLeft, y+6)
		pdf.CellFormat(g.ContentWidth(), 12, fc.Text, "", 0, "C", false, 0, "")
	}
	if fc.Label != "" {
		pdf.SetXY(g.MarginLeft, y+6)
		pdf.CellFormat(g.ContentWidth()/3, 12, fit(pdf, fc.Label, g.ContentWidth()/3), "", 0, "L", false, 0, "")
	}
	pdf.SetTextColor(0, 0, 0)
}
