package delivery

import (
	"strconv"
	"strings"
	"time"
	"unicode"
)

const (
	filenamePrefix = "Surat_Penawaran_"
	fallbackPrefix = "surat-penawaran-"
	filenameExt    = ".pdf"
	fallbackDigits = 6
)

// Filename names the document for recipient. Every whitespace rune becomes
// an underscore. A blank recipient falls back to a name ending in the last
// six digits of now in Unix milliseconds, so only that case depends on the
// clock.
func Filename(recipient string, now time.Time) string {
	if strings.TrimFunc(recipient, isSpace) == "" {
		ms := strconv.FormatInt(now.UnixMilli(), 10)
		if len(ms) > fallbackDigits {
			ms = ms[len(ms)-fallbackDigits:]
		}
		return fallbackPrefix + ms + filenameExt
	}
	return filenamePrefix + strings.Map(func(r rune) rune {
		if isSpace(r) {
			return '_'
		}
		return r
	}, recipient) + filenameExt
}

// isSpace matches the whitespace class of JavaScript regular expressions:
// Unicode spaces and line terminators plus the byte order mark, but not NEL.
func isSpace(r rune) bool {
	if r == '\uFEFF' {
		return true
	}
	return r != '\u0085' && unicode.IsSpace(r)
}
