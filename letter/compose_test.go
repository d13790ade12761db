package letter

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"
)

func specRows(t *testing.T, v *View) [][2]string {
	t.Helper()
	s, ok := v.Section("specification")
	if !ok {
		t.Fatal("specification section missing")
	}
	var rows [][2]string
	_ = ast.Walk(s.Doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering || n.Kind() != east.KindTableRow {
			return ast.WalkContinue, nil
		}
		label := PlainText(n.FirstChild(), s.Source)
		value := PlainText(n.FirstChild().NextSibling(), s.Source)
		rows = append(rows, [2]string{strings.TrimSpace(label), strings.TrimSpace(value)})
		return ast.WalkSkipChildren, nil
	})
	return rows
}

func TestComposeTableFollowsSpecificationOrder(t *testing.T) {
	rec := Default(time.Now())
	view, err := Compose(rec)
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	rows := specRows(t, view)
	items := rec.Specification.Items()
	if len(rows) != len(items) {
		t.Fatalf("expected %d rows got %d", len(items), len(rows))
	}
	for i, it := range items {
		if rows[i][0] != HumanizeKey(it.Key) {
			t.Fatalf("row %d: expected label %q got %q", i, HumanizeKey(it.Key), rows[i][0])
		}
		if rows[i][1] != ": "+it.Value {
			t.Fatalf("row %d: expected value %q got %q", i, ": "+it.Value, rows[i][1])
		}
	}
}

func TestComposeEscapesUserText(t *testing.T) {
	rec := Default(time.Now())
	rec.Recipient = "PT *Maju* [Jaya] | Tbk."
	if err := rec.SetSpec("cat", "Merah | Putih"); err != nil {
		t.Fatalf("set spec: %v", err)
	}
	view, err := Compose(rec)
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	s, _ := view.Section("recipient")
	if got := PlainText(s.Doc, s.Source); !strings.Contains(got, "PT *Maju* [Jaya] | Tbk.") {
		t.Fatalf("recipient not preserved literally: %q", got)
	}
	rows := specRows(t, view)
	if last := rows[len(rows)-1]; last[1] != ": Merah | Putih" {
		t.Fatalf("pipe in value broke the table: %v", last)
	}
	if view.Title != "Surat Penawaran PT *Maju* [Jaya] | Tbk." {
		t.Fatalf("unexpected title %q", view.Title)
	}
}

func TestComposeIndentedLocationStaysParagraph(t *testing.T) {
	for _, loc := range []string{"    Yogyakarta", "\tYogyakarta", "        Yogyakarta"} {
		rec := Default(time.Date(2026, time.October, 15, 0, 0, 0, 0, time.UTC))
		rec.Location = loc
		view, err := Compose(rec)
		if err != nil {
			t.Fatalf("compose: %v", err)
		}
		s, ok := view.Section("dateline")
		if !ok {
			t.Fatal("dateline section missing")
		}
		if _, ok := s.Doc.FirstChild().(*ast.Paragraph); !ok {
			t.Fatalf("location %q: dateline parsed as %s", loc, s.Doc.FirstChild().Kind())
		}
		if got := PlainText(s.Doc, s.Source); got != "Yogyakarta, "+rec.Date {
			t.Fatalf("location %q: unexpected dateline %q", loc, got)
		}
	}
}

func TestViewEmpty(t *testing.T) {
	var nilView *View
	if !nilView.Empty() {
		t.Fatal("nil view should be empty")
	}
	if !(&View{}).Empty() {
		t.Fatal("view without sections should be empty")
	}
	view, err := Compose(Default(time.Now()))
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if view.Empty() {
		t.Fatal("composed letter should not be empty")
	}
}

func TestViewHTML(t *testing.T) {
	view, err := Compose(Default(time.Now()))
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	var buf bytes.Buffer
	if err := view.HTML(&buf, "/assets/"); err != nil {
		t.Fatalf("html: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		`<img src="/assets/header.png"`,
		`<img src="/assets/ttd.png" alt="Tanda Tangan" style="width:40.0mm">`,
		"<u>Penawaran Pembuatan Karoseri</u>",
		"Rp138.000.000,00 (Seratus Tiga Puluh Delapan Juta Rupiah)",
		"Model Body",
		"text-align:right",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("preview missing %q:\n%s", want, out)
		}
	}
}

func TestParseAssetRef(t *testing.T) {
	ref, ok := ParseAssetRef("asset:ttd.png?w=40")
	if !ok || ref.Name != "ttd.png" || ref.WidthMM != 40 {
		t.Fatalf("unexpected ref %+v ok=%v", ref, ok)
	}
	if _, ok := ParseAssetRef("https://example.com/x.png"); ok {
		t.Fatal("http url should not be an asset ref")
	}
}
