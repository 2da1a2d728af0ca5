package imageload

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"sync"

	"github.com/abhisek/sheetz/internal/layout"
)

// Placeholder dimensions substituted for images that fail to load.
const (
	PlaceholderWidth  = 300
	PlaceholderHeight = 200
)

var placeholderPNG = sync.OnceValue(func() []byte {
	img := image.NewNRGBA(image.Rect(0, 0, PlaceholderWidth, PlaceholderHeight))
	fill := color.NRGBA{R: 0xEE, G: 0xEE, B: 0xEE, A: 0xFF}
	edge := color.NRGBA{R: 0xBB, G: 0xBB, B: 0xBB, A: 0xFF}
	for y := 0; y < PlaceholderHeight; y++ {
		for x := 0; x < PlaceholderWidth; x++ {
			c := fill
			if x < 2 || y < 2 || x >= PlaceholderWidth-2 || y >= PlaceholderHeight-2 || x*PlaceholderHeight == y*PlaceholderWidth {
				c = edge
			}
			img.SetNRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	// Encoding an in-memory NRGBA cannot fail.
	_ = png.Encode(&buf, img)
	return buf.Bytes()
})

// Placeholder returns the fixed-size stand-in image for source.
func Placeholder(source string) layout.Image {
	return layout.Image{
		Data:        placeholderPNG(),
		Format:      "png",
		Width:       PlaceholderWidth,
		Height:      PlaceholderHeight,
		Placeholder: true,
		Source:      source,
	}
}
