package pdfrender

import (
	"fmt"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
)

const fontFamily = "go"

// Fonts holds the TrueType data embedded into every document.
type Fonts struct {
	Regular []byte
	Bold    []byte
}

// GoFonts returns the Go font family, checked to be parseable.
func GoFonts() (Fonts, error) {
	f := Fonts{Regular: goregular.TTF, Bold: gobold.TTF}
	if err := f.Validate(); err != nil {
		return Fonts{}, err
	}
	return f, nil
}

// Validate parses both faces.
func (f Fonts) Validate() error {
	for name, data := range map[string][]byte{"regular": f.Regular, "bold": f.Bold} {
		if len(data) == 0 {
			return fmt.Errorf("%s font is empty", name)
		}
		font, err := sfnt.Parse(data)
		if err != nil {
			return fmt.Errorf("parse %s font: %w", name, err)
		}
		if font.NumGlyphs() == 0 {
			return fmt.Errorf("%s font has no glyphs", name)
		}
	}
	return nil
}
