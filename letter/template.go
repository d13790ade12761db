package letter

import (
	"strings"
	"text/template"
	"unicode"
)

// Align is the horizontal alignment of a section.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

func (a Align) String() string {
	switch a {
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	default:
		return "left"
	}
}

type sectionTemplate struct {
	name  string
	align Align
	tpl   *template.Template
}

var templateFuncs = template.FuncMap{
	"md":     EscapeMarkdown,
	"strong": strong,
	"rupiah": FormatCurrencyGroups,
	"label":  HumanizeKey,
}

func section(name string, align Align, body string) sectionTemplate {
	return sectionTemplate{
		name:  name,
		align: align,
		tpl:   template.Must(template.New(name).Funcs(templateFuncs).Parse(body)),
	}
}

// The letter layout, top to bottom. Each section is Markdown; the
// specification table has an empty header row that renderers skip.
var letterSections = []sectionTemplate{
	section("letterhead", AlignCenter, `![Header](asset:header.png)`),
	section("dateline", AlignRight, `{{md .Location}}, {{md .Date}}`),
	section("recipient", AlignLeft, "Kepada Yth.\n\n{{strong .Recipient}}"),
	section("subject", AlignLeft, `**Perihal : <u>{{md .Subject}}</u>**`),
	section("opening", AlignLeft, "Dengan Hormat,\n\n"+
		"Melalui surat ini kami mengajukan penawaran atas {{strong .OfferSubject}} seharga "+
		"**Rp{{md (rupiah .Price)}},00 ({{md .PriceInWords}})** dengan spesifikasi sebagai berikut:"),
	section("specification", AlignLeft, "| | |\n| --- | --- |\n"+
		"{{range .Specification.Items}}| {{md (label .Key)}} | : {{md .Value}} |\n{{end}}"),
	section("closing", AlignLeft, "Demikian surat Penawaran yang dapat kami sampaikan atas perhatiannya "+
		"kami ucapkan terima kasih."),
	section("signature", AlignLeft, "Hormat Kami,\n\n![Tanda Tangan](asset:ttd.png?w=40)\n\n{{strong .Signatory}}"),
}

// EscapeMarkdown makes free text safe to splice into Markdown: ASCII
// punctuation is backslash-escaped and line breaks collapse to spaces.
// Leading whitespace is dropped so a value that opens a line cannot turn it
// into an indented code block.
func EscapeMarkdown(s string) string {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	var b strings.Builder
	b.Grow(len(s) + len(s)/4)
	for _, r := range s {
		switch {
		case r == '\r':
			continue
		case r == '\n':
			b.WriteByte(' ')
		case r < 0x80 && strings.ContainsRune("\\`*_{}[]()<>#+-.!|~&\"'$%,:;=?@^/", r):
			b.WriteByte('\\')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func strong(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return "**" + EscapeMarkdown(s) + "**"
}
