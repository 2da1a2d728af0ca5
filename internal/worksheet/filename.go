package worksheet

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const (
	defaultBaseName = "worksheet"
	maxBaseRunes    = 120
)

// Filename derives a download file name from the worksheet title and
// author. Characters that are illegal on common filesystems are replaced,
// and the result always ends in ".pdf".
func Filename(title, author string) string {
	base := sanitize(title)
	if a := sanitize(author); a != "" {
		if base == "" {
			base = defaultBaseName
		}
		base += "_" + a
	}
	if base == "" {
		base = defaultBaseName
	}
	if r := []rune(base); len(r) > maxBaseRunes {
		base = strings.TrimRight(string(r[:maxBaseRunes]), " ._")
	}
	return base + ".pdf"
}

func sanitize(s string) string {
	s = norm.NFC.String(s)
	var b strings.Builder
	space := false
	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			if !space {
				b.WriteRune(' ')
			}
			space = true
		case strings.ContainsRune(`<>:"/\|?*`, r), unicode.IsControl(r):
			b.WriteRune('_')
			space = false
		default:
			b.WriteRune(r)
			space = false
		}
	}
	// Leading dots hide files; trailing dots and spaces are stripped on Windows.
	return strings.Trim(b.String(), " .")
}
