package render

import (
	"image"
	"image/color"
	"image/draw"
	"testing"
)

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	if err := opts.Validate(); err != nil {
		t.Fatalf("default options invalid: %v", err)
	}
	if opts.Margins != (Margins{8, 25.4, 25.4, 25.4}) {
		t.Fatalf("unexpected margins %v", opts.Margins)
	}
	if opts.Margins.Top() != 8 || opts.Margins.Left() != 25.4 {
		t.Fatalf("margin accessors out of CSS order")
	}
	if opts.ImageCompression.Quality != 0.98 || opts.RasterScale != 2 || opts.fpdfSize() != "A4" || opts.fpdfOrientation() != "P" {
		t.Fatalf("unexpected defaults %+v", opts)
	}
}

func TestOptionsValidate(t *testing.T) {
	cases := map[string]func(*Options){
		"negative margin": func(o *Options) { o.Margins[2] = -1 },
		"quality below 0": func(o *Options) { o.ImageCompression.Quality = -0.1 },
		"quality above 1": func(o *Options) { o.ImageCompression.Quality = 1.5 },
		"unknown format":  func(o *Options) { o.ImageCompression.Format = "webp" },
		"zero scale":      func(o *Options) { o.RasterScale = 0 },
		"unknown page":    func(o *Options) { o.PageFormat = "tabloid" },
		"bad orientation": func(o *Options) { o.Orientation = "diagonal" },
	}
	for name, mutate := range cases {
		opts := DefaultOptions()
		mutate(&opts)
		if err := opts.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}

	for _, q := range []float64{0, 1} {
		opts := DefaultOptions()
		opts.ImageCompression.Quality = q
		if err := opts.Validate(); err != nil {
			t.Fatalf("quality %v should be valid: %v", q, err)
		}
	}

	opts := DefaultOptions()
	opts.ImageCompression = ImageCompression{Format: "PNG"}
	opts.PageFormat = "Legal"
	if err := opts.Validate(); err != nil {
		t.Fatalf("png/legal should be valid: %v", err)
	}
}

func TestRasterizeNeverUpscales(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 100, 50))
	draw.Draw(src, src.Bounds(), &image.Uniform{C: color.Black}, image.Point{}, draw.Src)

	r, err := rasterize(src, 100, DefaultOptions())
	if err != nil {
		t.Fatalf("rasterize: %v", err)
	}
	if r.width != 100 || r.height != 50 || r.imageType != "JPG" {
		t.Fatalf("unexpected raster %dx%d %s", r.width, r.height, r.imageType)
	}

	opts := DefaultOptions()
	opts.RasterScale = 1
	opts.ImageCompression = ImageCompression{Format: "png"}
	r, err = rasterize(src, 10, opts)
	if err != nil {
		t.Fatalf("rasterize: %v", err)
	}
	// 10mm at 96dpi is 38 pixels.
	if r.width != 38 || r.height != 19 || r.imageType != "PNG" {
		t.Fatalf("unexpected raster %dx%d %s", r.width, r.height, r.imageType)
	}
}

func TestRasterizeZeroQuality(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 40, 20))
	opts := DefaultOptions()
	opts.ImageCompression.Quality = 0
	r, err := rasterize(src, 100, opts)
	if err != nil {
		t.Fatalf("rasterize: %v", err)
	}
	if r.imageType != "JPG" || len(r.data) == 0 {
		t.Fatalf("unexpected raster %s with %d bytes", r.imageType, len(r.data))
	}
}

func TestColumnWidths(t *testing.T) {
	w := columnWidths(2, 160)
	if w[0] != 40 || w[1] != 120 {
		t.Fatalf("unexpected widths %v", w)
	}
	if w := columnWidths(1, 160); w[0] != 160 {
		t.Fatalf("single column should span the page, got %v", w)
	}
	w = columnWidths(3, 160)
	if w[1] != 60 || w[2] != 60 {
		t.Fatalf("unexpected widths %v", w)
	}
}
