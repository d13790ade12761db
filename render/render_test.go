package render

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io/fs"
	"strings"
	"sync/atomic"
	"testing"
	"testing/fstest"
	"time"
	"unicode/utf16"

	"offer_letter_publisher/apperr"
	"offer_letter_publisher/letter"
)

var fixedClock = func() time.Time { return time.Date(2026, time.October, 15, 10, 0, 0, 0, time.UTC) }

func pngBytes(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func testAssets(t *testing.T) fstest.MapFS {
	t.Helper()
	return fstest.MapFS{
		"header.png": {Data: pngBytes(t, 600, 90, color.NRGBA{R: 20, G: 40, B: 90, A: 255})},
		"ttd.png":    {Data: pngBytes(t, 240, 90, color.NRGBA{R: 20, G: 30, B: 90, A: 128})},
	}
}

// countingFS counts Open calls. It hides ReadDirFS so directory listing
// goes through Open as well.
type countingFS struct {
	fsys  fs.FS
	opens atomic.Int32
}

func (c *countingFS) Open(name string) (fs.File, error) {
	c.opens.Add(1)
	return c.fsys.Open(name)
}

func composeDefault(t *testing.T) *letter.View {
	t.Helper()
	rec := letter.Default(fixedClock())
	rec.Recipient = "PT Maju"
	view, err := letter.Compose(rec)
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	return view
}

// shown returns how s appears in uncompressed page content drawn with the
// UTF-8 fonts: a literal string of UTF-16BE code units.
func shown(s string) string {
	var b strings.Builder
	for _, u := range utf16.Encode([]rune(s)) {
		b.WriteByte(byte(u >> 8))
		b.WriteByte(byte(u))
	}
	r := strings.NewReplacer("\\", "\\\\", "(", "\\(", ")", "\\)", "\r", "\\r")
	return "(" + r.Replace(b.String()) + ")"
}

func debugOptions() Options {
	opts := DefaultOptions()
	opts.DisableStreamCompression = true
	return opts
}

func TestRenderProducesPDF(t *testing.T) {
	r := New(testAssets(t), WithClock(fixedClock))
	data, err := r.Render(context.Background(), composeDefault(t), DefaultOptions())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Fatalf("output is not a PDF: %q", data[:min(len(data), 16)])
	}
}

func TestRenderIsDeterministic(t *testing.T) {
	r := New(testAssets(t), WithClock(fixedClock))
	view := composeDefault(t)
	first, err := r.Render(context.Background(), view, DefaultOptions())
	if err != nil {
		t.Fatalf("first render: %v", err)
	}
	second, err := r.Render(context.Background(), view, DefaultOptions())
	if err != nil {
		t.Fatalf("second render: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Fatal("same record and clock produced different documents")
	}
}

func TestRenderKeepsSpecificationOrder(t *testing.T) {
	r := New(testAssets(t), WithClock(fixedClock))
	data, err := r.Render(context.Background(), composeDefault(t), debugOptions())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	out := string(data)
	last := -1
	for _, key := range letter.Default(fixedClock()).Specification.Keys() {
		needle := shown(letter.HumanizeKey(key))
		i := strings.Index(out, needle)
		if i < 0 {
			t.Fatalf("label %s not found in page content", needle)
		}
		if i < last {
			t.Fatalf("label %s drawn out of order", needle)
		}
		last = i
	}
	if !strings.Contains(out, shown("PT Maju")) {
		t.Fatal("recipient missing from page content")
	}
}

func TestRenderKeepsIndentedLocation(t *testing.T) {
	rec := letter.Default(fixedClock())
	rec.Location = "    Yogyakarta"
	view, err := letter.Compose(rec)
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	data, err := New(testAssets(t), WithClock(fixedClock)).Render(context.Background(), view, debugOptions())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if want := shown("Yogyakarta, " + rec.Date); !strings.Contains(string(data), want) {
		t.Fatal("dateline missing from page content")
	}
}

func TestRenderKeepsNonLatin1Glyphs(t *testing.T) {
	rec := letter.Default(fixedClock())
	rec.Recipient = "Şirket Ğüneş"
	if err := rec.SetSpec(rec.Specification.Keys()[0], "Ёлка Ω 🚚"); err != nil {
		t.Fatalf("set spec: %v", err)
	}
	view, err := letter.Compose(rec)
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	data, err := New(testAssets(t), WithClock(fixedClock)).Render(context.Background(), view, debugOptions())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	out := string(data)
	for _, want := range []string{shown("Şirket Ğüneş"), shown(": Ёлка Ω ?")} {
		if !strings.Contains(out, want) {
			t.Fatalf("page content missing %q", want)
		}
	}
}

func TestGlyphText(t *testing.T) {
	cases := map[string]string{
		"Şirket":    "Şirket",
		"truk 🚚":    "truk ?",
		"a\xffb":    "a?b",
		"PT 株式会社": "PT 株式会社",
	}
	for in, want := range cases {
		if got := glyphText(in); got != want {
			t.Fatalf("glyphText(%q): expected %q got %q", in, want, got)
		}
	}
}

func TestRenderTargetNotFound(t *testing.T) {
	fsys := &countingFS{fsys: fstest.MapFS{"header.png": {Data: []byte("not an image")}}}
	r := New(fsys)
	for _, view := range []*letter.View{nil, {}, {Sections: []letter.Section{{Name: "blank"}}}} {
		_, err := r.Render(context.Background(), view, DefaultOptions())
		if !apperr.Is(err, apperr.RenderTargetNotFound) {
			t.Fatalf("expected RenderTargetNotFound, got %v", err)
		}
	}
	if n := fsys.opens.Load(); n != 0 {
		t.Fatalf("backend touched before target check: %d opens", n)
	}
}

func TestRenderBackendUnavailable(t *testing.T) {
	r := New(fstest.MapFS{"header.png": {Data: []byte("not an image")}})
	_, err := r.Render(context.Background(), composeDefault(t), DefaultOptions())
	if !apperr.Is(err, apperr.RenderBackendUnavailable) {
		t.Fatalf("expected RenderBackendUnavailable, got %v", err)
	}
	if apperr.MessageOr(err, "") == "" {
		t.Fatal("expected a user-facing message")
	}
}

func TestBackendInitialisedOnce(t *testing.T) {
	fsys := &countingFS{fsys: testAssets(t)}
	r := New(fsys, WithClock(fixedClock))
	view := composeDefault(t)
	if _, err := r.Render(context.Background(), view, DefaultOptions()); err != nil {
		t.Fatalf("first render: %v", err)
	}
	after := fsys.opens.Load()
	if after == 0 {
		t.Fatal("expected assets to be read")
	}
	if _, err := r.Render(context.Background(), view, DefaultOptions()); err != nil {
		t.Fatalf("second render: %v", err)
	}
	if got := fsys.opens.Load(); got != after {
		t.Fatalf("backend re-initialised: %d opens after first render, %d after second", after, got)
	}
}

func TestRenderMissingAsset(t *testing.T) {
	fsys := testAssets(t)
	delete(fsys, "ttd.png")
	_, err := New(fsys).Render(context.Background(), composeDefault(t), DefaultOptions())
	if !apperr.Is(err, apperr.RenderFailed) {
		t.Fatalf("expected RenderFailed, got %v", err)
	}
}

func TestRenderInvalidOptions(t *testing.T) {
	opts := DefaultOptions()
	opts.PageFormat = "b7"
	_, err := New(testAssets(t)).Render(context.Background(), composeDefault(t), opts)
	if !apperr.Is(err, apperr.RenderFailed) {
		t.Fatalf("expected RenderFailed, got %v", err)
	}
}

func TestRenderCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(testAssets(t)).Render(ctx, composeDefault(t), DefaultOptions())
	if !apperr.Is(err, apperr.RenderFailed) {
		t.Fatalf("expected RenderFailed, got %v", err)
	}
}

func TestRenderPNGLandscape(t *testing.T) {
	opts := DefaultOptions()
	opts.ImageCompression = ImageCompression{Format: "png"}
	opts.Orientation = Landscape
	opts.PageFormat = "letter"
	data, err := New(testAssets(t), WithClock(fixedClock)).Render(context.Background(), composeDefault(t), opts)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Fatal("output is not a PDF")
	}
}

func TestDefaultRendererUsesEmbeddedAssets(t *testing.T) {
	if Default() != Default() {
		t.Fatal("Default should return one renderer per process")
	}
	data, err := Default().Render(context.Background(), composeDefault(t), DefaultOptions())
	if err != nil {
		t.Fatalf("render with embedded assets: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("empty document")
	}
}

func TestTableRows(t *testing.T) {
	view := composeDefault(t)
	s, _ := view.Section("specification")
	rows := TableRows(s.Doc, s.Source)
	if len(rows) != 19 {
		t.Fatalf("expected 19 body rows, got %d", len(rows))
	}
	if rows[0][0] != "Model Body" || rows[0][1] != ": JB5" {
		t.Fatalf("unexpected first row %v", rows[0])
	}
}
