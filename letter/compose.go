package letter

import (
	"bytes"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.Table),
	goldmark.WithRendererOptions(html.WithUnsafe()),
)

// Section is one laid-out block of the letter: Markdown source and the
// goldmark document parsed from it.
type Section struct {
	Name   string
	Align  Align
	Source []byte
	Doc    ast.Node
}

// View is the rendered visual content of a letter, the input of the PDF
// renderer and of the HTML preview.
type View struct {
	Title    string
	Sections []Section
}

// Empty reports whether the view has nothing to lay out.
func (v *View) Empty() bool {
	if v == nil {
		return true
	}
	for _, s := range v.Sections {
		if s.Doc != nil && s.Doc.HasChildren() {
			return false
		}
	}
	return true
}

// Section returns the section with the given name.
func (v *View) Section(name string) (Section, bool) {
	for _, s := range v.Sections {
		if s.Name == name {
			return s, true
		}
	}
	return Section{}, false
}

// Compose lays out rec on the letter template.
func Compose(rec OfferRecord) (*View, error) {
	view := &View{
		Title:    strings.TrimSpace("Surat Penawaran " + rec.Recipient),
		Sections: make([]Section, 0, len(letterSections)),
	}
	for _, st := range letterSections {
		var buf bytes.Buffer
		if err := st.tpl.Execute(&buf, rec); err != nil {
			return nil, fmt.Errorf("letter: compose %s: %w", st.name, err)
		}
		src := buf.Bytes()
		view.Sections = append(view.Sections, Section{
			Name:   st.name,
			Align:  st.align,
			Source: src,
			Doc:    markdown.Parser().Parse(text.NewReader(src)),
		})
	}
	return view, nil
}

// HTML writes a preview of the view. Asset images are served from
// assetBase (e.g. "/assets/").
func (v *View) HTML(w io.Writer, assetBase string) error {
	r := renderer.NewRenderer(renderer.WithNodeRenderers(
		util.Prioritized(html.NewRenderer(html.WithUnsafe()), 1000),
		util.Prioritized(extension.NewTableHTMLRenderer(), 500),
		util.Prioritized(previewImages{base: assetBase}, 100),
	))
	if _, err := io.WriteString(w, `<div class="surat" style="font-family: Calibri, sans-serif">`+"\n"); err != nil {
		return err
	}
	for _, s := range v.Sections {
		if _, err := fmt.Fprintf(w, "<div class=%q style=\"text-align:%s\">\n", "surat-"+s.Name, s.Align); err != nil {
			return err
		}
		if err := r.Render(w, s.Source, s.Doc); err != nil {
			return fmt.Errorf("letter: preview %s: %w", s.Name, err)
		}
		if _, err := io.WriteString(w, "</div>\n"); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "</div>\n")
	return err
}

type previewImages struct {
	base string
}

func (p previewImages) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindImage, p.renderImage)
}

func (p previewImages) renderImage(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ast.Image)
	src := string(n.Destination)
	style := ""
	if ref, ok := ParseAssetRef(src); ok {
		src = p.base + ref.Name
		if ref.WidthMM > 0 {
			style = fmt.Sprintf(` style="width:%.1fmm"`, ref.WidthMM)
		} else {
			style = ` style="width:100%"`
		}
	}
	_, _ = w.WriteString(`<img src="`)
	_, _ = w.Write(util.EscapeHTML(util.URLEscape([]byte(src), true)))
	_, _ = w.WriteString(`" alt="`)
	_, _ = w.Write(util.EscapeHTML([]byte(PlainText(n, source))))
	_, _ = w.WriteString(`"` + style + `>`)
	return ast.WalkSkipChildren, nil
}

// AssetRef points at an embedded image: "asset:<name>[?w=<mm>]".
type AssetRef struct {
	Name    string
	WidthMM float64
}

// ParseAssetRef parses an image destination in the asset scheme.
func ParseAssetRef(dest string) (AssetRef, bool) {
	u, err := url.Parse(dest)
	if err != nil || u.Scheme != "asset" || u.Opaque == "" {
		return AssetRef{}, false
	}
	ref := AssetRef{Name: u.Opaque}
	if w := u.Query().Get("w"); w != "" {
		if mm, err := strconv.ParseFloat(w, 64); err == nil && mm > 0 {
			ref.WidthMM = mm
		}
	}
	return ref, true
}

// PlainText concatenates the text below n with Markdown escapes and
// entity references resolved.
func PlainText(n ast.Node, source []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			b.Write(InlineText(t.Segment.Value(source)))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(InlineText(t.Value))
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}

// InlineText resolves backslash escapes and character references in a raw
// Markdown text segment.
func InlineText(raw []byte) []byte {
	out := util.UnescapePunctuations(raw)
	out = util.ResolveNumericReferences(out)
	return util.ResolveEntityNames(out)
}
