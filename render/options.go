package render

import (
	"fmt"
	"strings"
)

// Margins are page margins in millimetres, in CSS order:
// top, right, bottom, left.
type Margins [4]float64

func (m Margins) Top() float64    { return m[0] }
func (m Margins) Right() float64  { return m[1] }
func (m Margins) Bottom() float64 { return m[2] }
func (m Margins) Left() float64   { return m[3] }

// ImageCompression controls how embedded raster images are encoded.
type ImageCompression struct {
	// Format is "jpeg" or "png".
	Format string `json:"format" yaml:"format"`
	// Quality is the JPEG quality in 0..1. Ignored for PNG.
	Quality float64 `json:"quality" yaml:"quality"`
}

// Orientation of the page.
type Orientation string

const (
	Portrait  Orientation = "portrait"
	Landscape Orientation = "landscape"
)

// Options configure one render.
type Options struct {
	Margins          Margins          `json:"margins" yaml:"margins"`
	ImageCompression ImageCompression `json:"imageCompression" yaml:"imageCompression"`
	// RasterScale multiplies the pixel density of embedded images.
	RasterScale int         `json:"rasterScale" yaml:"rasterScale"`
	PageFormat  string      `json:"pageFormat" yaml:"pageFormat"`
	Orientation Orientation `json:"orientation" yaml:"orientation"`
	// DisableStreamCompression writes page content uncompressed, which is
	// only useful when inspecting output.
	DisableStreamCompression bool `json:"disableStreamCompression,omitempty" yaml:"disableStreamCompression,omitempty"`
}

// DefaultOptions returns the letter's standard page setup: A4 portrait,
// 8mm top margin and one inch elsewhere, JPEG at 0.98, double density.
func DefaultOptions() Options {
	return Options{
		Margins:          Margins{8, 25.4, 25.4, 25.4},
		ImageCompression: ImageCompression{Format: "jpeg", Quality: 0.98},
		RasterScale:      2,
		PageFormat:       "a4",
		Orientation:      Portrait,
	}
}

var pageFormats = map[string]string{
	"a3":     "A3",
	"a4":     "A4",
	"a5":     "A5",
	"letter": "Letter",
	"legal":  "Legal",
}

// Validate reports the first invalid option.
func (o Options) Validate() error {
	for i, m := range o.Margins {
		if m < 0 {
			return fmt.Errorf("render: margin %d is negative", i)
		}
	}
	switch strings.ToLower(o.ImageCompression.Format) {
	case "jpeg", "jpg":
		if o.ImageCompression.Quality < 0 || o.ImageCompression.Quality > 1 {
			return fmt.Errorf("render: image quality %.2f outside [0,1]", o.ImageCompression.Quality)
		}
	case "png":
	default:
		return fmt.Errorf("render: unsupported image format %q", o.ImageCompression.Format)
	}
	if o.RasterScale < 1 {
		return fmt.Errorf("render: raster scale must be at least 1")
	}
	if _, ok := pageFormats[strings.ToLower(o.PageFormat)]; !ok {
		return fmt.Errorf("render: unsupported page format %q", o.PageFormat)
	}
	switch o.Orientation {
	case Portrait, Landscape:
	default:
		return fmt.Errorf("render: unsupported orientation %q", o.Orientation)
	}
	return nil
}

func (o Options) fpdfSize() string {
	return pageFormats[strings.ToLower(o.PageFormat)]
}

func (o Options) fpdfOrientation() string {
	if o.Orientation == Landscape {
		return "L"
	}
	return "P"
}

func (o Options) jpeg() bool {
	f := strings.ToLower(o.ImageCompression.Format)
	return f == "jpeg" || f == "jpg"
}
