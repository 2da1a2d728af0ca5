package imageload

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"

	// Formats the PDF backend embeds as-is.
	_ "image/gif"
	_ "image/jpeg"

	"golang.org/x/image/draw"

	// Formats that are transcoded to PNG before embedding.
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/abhisek/sheetz/internal/layout"
)

// ErrEmptyImage is returned for a zero-length image body.
var ErrEmptyImage = errors.New("empty image data")

// Decoder turns raw image bytes into an embeddable layout.Image.
// Implementations must be safe for concurrent use.
type Decoder interface {
	Decode(data []byte) (layout.Image, error)
}

// StdDecoder decodes with the image package registry. PNG, JPEG and GIF
// pass through untouched; WebP, BMP and TIFF, 16-bit or interlaced PNGs
// and images wider than MaxPixelWidth are re-encoded as 8-bit PNG.
type StdDecoder struct {
	MaxPixelWidth int
}

func (d StdDecoder) Decode(data []byte) (layout.Image, error) {
	if len(data) == 0 {
		return layout.Image{}, ErrEmptyImage
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return layout.Image{}, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return layout.Image{}, fmt.Errorf("invalid dimensions %dx%d", cfg.Width, cfg.Height)
	}

	out := layout.Image{
		Data:   data,
		Format: format,
		Width:  cfg.Width,
		Height: cfg.Height,
	}
	if !d.needsTranscode(format, data, cfg.Width) {
		return out, nil
	}

	out.Data, err = d.transcode(data)
	if err != nil {
		return layout.Image{}, err
	}
	out.Format = "png"
	return out, nil
}

func (d StdDecoder) needsTranscode(format string, data []byte, width int) bool {
	if d.MaxPixelWidth > 0 && width > d.MaxPixelWidth {
		return true
	}
	switch format {
	case "jpeg", "gif":
		return false
	case "png":
		return !simplePNG(data)
	default:
		return true
	}
}

// simplePNG reports whether the IHDR chunk declares a bit depth of at most
// 8 and no interlacing.
func simplePNG(data []byte) bool {
	// signature(8) + length(4) + "IHDR"(4) + width(4) + height(4)
	const depthOff = 24
	if len(data) < depthOff+5 || string(data[12:16]) != "IHDR" {
		return false
	}
	depth := data[depthOff]
	interlace := data[depthOff+4]
	return depth <= 8 && interlace == 0
}

func (d StdDecoder) transcode(data []byte) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if d.MaxPixelWidth > 0 && w > d.MaxPixelWidth {
		h = h * d.MaxPixelWidth / w
		if h < 1 {
			h = 1
		}
		w = d.MaxPixelWidth
	}

	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	if w == b.Dx() && h == b.Dy() {
		draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	} else {
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
