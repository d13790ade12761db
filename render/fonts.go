package render

import (
	"strings"
	"unicode/utf8"

	"github.com/go-pdf/fpdf"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
)

// fontFamily is the embedded Go font family. It covers Latin, Greek and
// Cyrillic; other scripts fall back to the font's missing glyph.
const fontFamily = "Go"

var fontFaces = []struct {
	style string
	ttf   []byte
}{
	{"", goregular.TTF},
	{"B", gobold.TTF},
	{"I", goitalic.TTF},
	{"BI", gobolditalic.TTF},
}

// registerFonts embeds the four faces as subsetted UTF-8 fonts.
func registerFonts(pdf *fpdf.Fpdf) {
	for _, f := range fontFaces {
		pdf.AddUTF8FontFromBytes(fontFamily, f.style, f.ttf)
	}
}

// glyphText prepares text for the UTF-8 fonts. fpdf indexes glyph widths
// by rune within the Basic Multilingual Plane, so runes beyond it and
// invalid bytes become '?'.
func glyphText(s string) string {
	if utf8.ValidString(s) && !strings.ContainsFunc(s, func(r rune) bool { return r > 0xFFFF }) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r > 0xFFFF || r == utf8.RuneError {
			r = '?'
		}
		b.WriteRune(r)
	}
	return b.String()
}
