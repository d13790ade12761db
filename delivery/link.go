package delivery

import (
	"strings"
)

// DefaultLinkHost serves WhatsApp click-to-chat links.
const DefaultLinkHost = "wa.me"

// LinkComposer builds messaging deep links.
type LinkComposer struct {
	Host string
}

// Compose returns https://<host>/<target>?text=<message>, where the message
// is extra and url on separate lines, or url alone when extra is empty.
func (c LinkComposer) Compose(target, url, extra string) string {
	host := c.Host
	if host == "" {
		host = DefaultLinkHost
	}
	text := url
	if extra != "" {
		text = extra + "\n" + url
	}
	return "https://" + host + "/" + target + "?text=" + EncodeURIComponent(text)
}

const upperhex = "0123456789ABCDEF"

// EncodeURIComponent percent-encodes s the way JavaScript's
// encodeURIComponent does: UTF-8 bytes, leaving A-Z a-z 0-9 and -_.!~*'()
// as they are. Invalid UTF-8 is replaced with U+FFFD first.
func EncodeURIComponent(s string) string {
	s = strings.ToValidUTF8(s, "\uFFFD")
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if unreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&15])
	}
	return b.String()
}

func unreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case '-', '_', '.', '!', '~', '*', '\'', '(', ')':
		return true
	}
	return false
}
