package letter

import (
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

var indonesianMonths = [...]string{
	"Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember",
}

// FormatLocalDate renders t as an Indonesian long date, e.g. "5 Oktober 2026".
func FormatLocalDate(t time.Time) string {
	return fmt.Sprintf("%d %s %d", t.Day(), indonesianMonths[t.Month()-1], t.Year())
}

// FormatCurrencyGroups inserts a dot between thousands groups. A dot goes at
// every position that sits between two word characters and is followed by a
// whole number of three-digit groups ending the digit run, so text that is
// already grouped comes back unchanged.
func FormatCurrencyGroups(value string) string {
	if len(value) < 4 {
		return value
	}
	var b strings.Builder
	b.Grow(len(value) + len(value)/3)
	for i := 0; i < len(value); i++ {
		if i > 0 && isWordByte(value[i-1]) && isWordByte(value[i]) && groupsFollow(value, i) {
			b.WriteByte('.')
		}
		b.WriteByte(value[i])
	}
	return b.String()
}

// groupsFollow reports whether value[i:] starts with a run of digits whose
// length is a positive multiple of three.
func groupsFollow(value string, i int) bool {
	n := 0
	for j := i; j < len(value) && isDigit(value[j]); j++ {
		n++
	}
	return n > 0 && n%3 == 0
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isWordByte(c byte) bool {
	return isDigit(c) || c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// HumanizeKey turns a camel-case key into a display label:
// "kacaSamping" becomes "Kaca Samping".
func HumanizeKey(key string) string {
	if key == "" {
		return ""
	}
	var b strings.Builder
	for _, r := range key {
		if r >= 'A' && r <= 'Z' {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	out := b.String()
	first, size := utf8.DecodeRuneInString(out)
	return string(unicode.ToUpper(first)) + out[size:]
}
