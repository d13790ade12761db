package render

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"math"

	"golang.org/x/image/draw"
)

const cssPixelsPerMM = 96 / 25.4

type raster struct {
	data      []byte
	imageType string
	width     int
	height    int
}

// rasterize flattens img onto white and resamples it for a placement
// widthMM wide at RasterScale times CSS pixel density. Images are never
// enlarged past their source resolution.
func rasterize(img image.Image, widthMM float64, opts Options) (raster, error) {
	src := img.Bounds()
	w := int(math.Round(widthMM * cssPixelsPerMM * float64(opts.RasterScale)))
	if w <= 0 || w > src.Dx() {
		w = src.Dx()
	}
	h := int(math.Round(float64(src.Dy()) * float64(w) / float64(src.Dx())))
	if h < 1 {
		h = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, src, draw.Over, nil)

	var buf bytes.Buffer
	if opts.jpeg() {
		q := int(math.Round(opts.ImageCompression.Quality * 100))
		if q < 1 {
			q = 1
		}
		if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: q}); err != nil {
			return raster{}, err
		}
		return raster{data: buf.Bytes(), imageType: "JPG", width: w, height: h}, nil
	}
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(&buf, dst); err != nil {
		return raster{}, err
	}
	return raster{data: buf.Bytes(), imageType: "PNG", width: w, height: h}, nil
}
