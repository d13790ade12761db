package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"

	"offer_letter_publisher/letter"
)

const (
	fontSize     = 11.0
	lineHeight   = 5.0
	paragraphGap = 1.5
	sectionGap   = 3.0
	// labelShare is the width of the first table column relative to the
	// content width.
	labelShare = 0.25
)

// layout walks goldmark documents and draws them with fpdf.
type layout struct {
	pdf  *fpdf.Fpdf
	b    *backend
	opts Options
	tr   func(string) string

	bold, italic, underline int
	imageSeq                int
	err                     error
}

func newLayout(pdf *fpdf.Fpdf, b *backend, opts Options) *layout {
	return &layout{
		pdf:  pdf,
		b:    b,
		opts: opts,
		tr:   glyphText,
	}
}

func (l *layout) fail(err error) {
	if l.err == nil {
		l.err = err
	}
}

func (l *layout) contentWidth() float64 {
	w, _ := l.pdf.GetPageSize()
	left, _, right, _ := l.pdf.GetMargins()
	return w - left - right
}

func (l *layout) bottomLimit() float64 {
	_, h := l.pdf.GetPageSize()
	_, _, _, bottom := l.pdf.GetMargins()
	return h - bottom
}

// ensure starts a new page when h millimetres do not fit on this one.
func (l *layout) ensure(h float64) {
	if l.pdf.GetY()+h > l.bottomLimit() {
		l.pdf.AddPage()
	}
}

func (l *layout) applyFont() {
	var style strings.Builder
	if l.bold > 0 {
		style.WriteByte('B')
	}
	if l.italic > 0 {
		style.WriteByte('I')
	}
	if l.underline > 0 {
		style.WriteByte('U')
	}
	l.pdf.SetFont(fontFamily, style.String(), fontSize)
}

func (l *layout) section(s letter.Section) {
	if s.Doc == nil {
		return
	}
	first := true
	for c := s.Doc.FirstChild(); c != nil; c = c.NextSibling() {
		if !first {
			l.pdf.Ln(paragraphGap)
		}
		first = false
		l.block(c, s.Align, s.Source)
		if l.err != nil {
			return
		}
	}
	l.pdf.Ln(sectionGap)
}

func alignCode(a letter.Align) string {
	switch a {
	case letter.AlignCenter:
		return "C"
	case letter.AlignRight:
		return "R"
	default:
		return "L"
	}
}

func (l *layout) block(n ast.Node, align letter.Align, source []byte) {
	switch n := n.(type) {
	case *ast.Paragraph:
		if img, ok := soleImage(n); ok {
			l.image(img, align, source)
			return
		}
		if align != letter.AlignLeft {
			l.applyFont()
			l.pdf.MultiCell(0, lineHeight, l.tr(letter.PlainText(n, source)), "", alignCode(align), false)
			return
		}
		l.inline(n, source)
		l.pdf.Ln(lineHeight)
	case *ast.Heading:
		l.bold++
		l.applyFont()
		l.pdf.SetFontSize(fontSize + float64(7-n.Level))
		l.pdf.MultiCell(0, lineHeight+1, l.tr(letter.PlainText(n, source)), "", alignCode(align), false)
		l.bold--
		l.applyFont()
	case *east.Table:
		l.table(n, source)
	case *ast.ThematicBreak:
		left, _, _, _ := l.pdf.GetMargins()
		y := l.pdf.GetY() + lineHeight/2
		l.pdf.Line(left, y, left+l.contentWidth(), y)
		l.pdf.Ln(lineHeight)
	case *ast.List:
		idx := n.Start
		for item := n.FirstChild(); item != nil; item = item.NextSibling() {
			marker := "• "
			if n.IsOrdered() {
				marker = fmt.Sprintf("%d. ", idx)
				idx++
			}
			l.applyFont()
			l.pdf.Write(lineHeight, l.tr(marker))
			for c := item.FirstChild(); c != nil; c = c.NextSibling() {
				l.inline(c, source)
			}
			l.pdf.Ln(lineHeight)
		}
	default:
		l.applyFont()
		l.pdf.MultiCell(0, lineHeight, l.tr(letter.PlainText(n, source)), "", alignCode(align), false)
	}
}

func soleImage(p *ast.Paragraph) (*ast.Image, bool) {
	if p.ChildCount() != 1 {
		return nil, false
	}
	img, ok := p.FirstChild().(*ast.Image)
	return img, ok
}

// inline writes the inline children of n as flowing, left-aligned text.
func (l *layout) inline(n ast.Node, source []byte) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch c := c.(type) {
		case *ast.Text:
			l.write(string(letter.InlineText(c.Segment.Value(source))))
			if c.HardLineBreak() {
				l.pdf.Ln(lineHeight)
			} else if c.SoftLineBreak() {
				l.write(" ")
			}
		case *ast.String:
			l.write(string(letter.InlineText(c.Value)))
		case *ast.Emphasis:
			if c.Level >= 2 {
				l.bold++
			} else {
				l.italic++
			}
			l.inline(c, source)
			if c.Level >= 2 {
				l.bold--
			} else {
				l.italic--
			}
		case *ast.RawHTML:
			l.rawHTML(c, source)
		case *ast.CodeSpan, *ast.Link:
			l.inline(c, source)
		case *ast.AutoLink:
			l.write(string(c.URL(source)))
		case *ast.Image:
			l.pdf.Ln(lineHeight)
			l.image(c, letter.AlignLeft, source)
		default:
			l.write(letter.PlainText(c, source))
		}
		if l.err != nil {
			return
		}
	}
}

func (l *layout) write(s string) {
	if s == "" {
		return
	}
	l.applyFont()
	l.pdf.Write(lineHeight, l.tr(s))
}

// rawHTML honours the few inline tags the letter template uses.
func (l *layout) rawHTML(n *ast.RawHTML, source []byte) {
	var raw bytes.Buffer
	for i := 0; i < n.Segments.Len(); i++ {
		seg := n.Segments.At(i)
		raw.Write(seg.Value(source))
	}
	switch strings.ToLower(strings.TrimSpace(raw.String())) {
	case "<u>":
		l.underline++
	case "</u>":
		if l.underline > 0 {
			l.underline--
		}
	case "<b>", "<strong>":
		l.bold++
	case "</b>", "</strong>":
		if l.bold > 0 {
			l.bold--
		}
	case "<i>", "<em>":
		l.italic++
	case "</i>", "</em>":
		if l.italic > 0 {
			l.italic--
		}
	case "<br>", "<br/>", "<br />":
		l.pdf.Ln(lineHeight)
	}
}

func (l *layout) image(img *ast.Image, align letter.Align, source []byte) {
	ref, ok := letter.ParseAssetRef(string(img.Destination))
	if !ok {
		l.fail(fmt.Errorf("render: unsupported image source %q", img.Destination))
		return
	}
	src, ok := l.b.images[ref.Name]
	if !ok {
		l.fail(fmt.Errorf("render: asset %q not found", ref.Name))
		return
	}

	cw := l.contentWidth()
	w := ref.WidthMM
	if w <= 0 || w > cw {
		w = cw
	}
	r, err := rasterize(src, w, l.opts)
	if err != nil {
		l.fail(fmt.Errorf("render: rasterize %s: %w", ref.Name, err))
		return
	}
	h := w * float64(r.height) / float64(r.width)

	l.imageSeq++
	name := fmt.Sprintf("%s#%d", ref.Name, l.imageSeq)
	imgOpts := fpdf.ImageOptions{ImageType: r.imageType}
	l.pdf.RegisterImageOptionsReader(name, imgOpts, bytes.NewReader(r.data))
	if err := l.pdf.Error(); err != nil {
		l.fail(err)
		return
	}

	l.ensure(h)
	left, _, _, _ := l.pdf.GetMargins()
	x := left
	switch align {
	case letter.AlignCenter:
		x += (cw - w) / 2
	case letter.AlignRight:
		x += cw - w
	}
	y := l.pdf.GetY()
	l.pdf.ImageOptions(name, x, y, w, h, false, imgOpts, 0, "")
	l.pdf.SetY(y + h)
}

// table draws a GFM table row by row. The first column takes labelShare of
// the width; the rest split the remainder. A header row whose cells are all
// empty is not drawn.
func (l *layout) table(t *east.Table, source []byte) {
	cw := l.contentWidth()
	for row := t.FirstChild(); row != nil; row = row.NextSibling() {
		cells := cellTexts(row, source)
		if len(cells) == 0 {
			continue
		}
		header := row.Kind() == east.KindTableHeader
		if header && allBlank(cells) {
			continue
		}
		if header {
			l.bold++
		}
		l.row(cells, columnWidths(len(cells), cw))
		if header {
			l.bold--
		}
		if l.err != nil {
			return
		}
	}
	l.applyFont()
}

func (l *layout) row(cells []string, widths []float64) {
	l.applyFont()
	lines := 1
	translated := make([]string, len(cells))
	for i, c := range cells {
		translated[i] = l.tr(c)
		if n := len(l.pdf.SplitText(translated[i], widths[i])); n > lines {
			lines = n
		}
	}
	rowH := float64(lines) * lineHeight
	l.ensure(rowH)

	left, _, _, _ := l.pdf.GetMargins()
	x, y := left, l.pdf.GetY()
	for i, c := range translated {
		l.pdf.SetXY(x, y)
		l.pdf.MultiCell(widths[i], lineHeight, c, "", "L", false)
		x += widths[i]
	}
	l.pdf.SetXY(left, y+rowH)
}

// TableRows returns the cell texts of every body row of the tables in doc,
// in document order.
func TableRows(doc ast.Node, source []byte) [][]string {
	var rows [][]string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering && n.Kind() == east.KindTableRow {
			rows = append(rows, cellTexts(n, source))
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return rows
}

func cellTexts(row ast.Node, source []byte) []string {
	var out []string
	for c := row.FirstChild(); c != nil; c = c.NextSibling() {
		if c.Kind() == east.KindTableCell {
			out = append(out, strings.TrimSpace(letter.PlainText(c, source)))
		}
	}
	return out
}

func columnWidths(n int, total float64) []float64 {
	widths := make([]float64, n)
	if n == 1 {
		widths[0] = total
		return widths
	}
	widths[0] = total * labelShare
	rest := (total - widths[0]) / float64(n-1)
	for i := 1; i < n; i++ {
		widths[i] = rest
	}
	return widths
}

func allBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
