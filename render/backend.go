package render

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"path"
	"strings"
	"sync"

	"offer_letter_publisher/assets"
)

// backend is the expensive part of rendering: every letter asset decoded
// into memory. It is built once per Renderer and reused.
type backend struct {
	images map[string]image.Image
}

func loadBackend(fsys fs.FS) (*backend, error) {
	if fsys == nil {
		return nil, fmt.Errorf("render: no asset filesystem")
	}
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("render: list assets: %w", err)
	}
	b := &backend{images: make(map[string]image.Image)}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(path.Ext(e.Name())) {
		case ".png", ".jpg", ".jpeg":
		default:
			continue
		}
		img, err := decodeAsset(fsys, e.Name())
		if err != nil {
			return nil, err
		}
		b.images[e.Name()] = img
	}
	return b, nil
}

func decodeAsset(fsys fs.FS, name string) (image.Image, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, fmt.Errorf("render: open asset %s: %w", name, err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("render: decode asset %s: %w", name, err)
	}
	return img, nil
}

var (
	defaultOnce     sync.Once
	defaultRenderer *Renderer
)

// Default returns the process-wide renderer over the embedded letter
// assets. Its backend is initialised on the first Render call.
func Default() *Renderer {
	defaultOnce.Do(func() {
		defaultRenderer = New(assets.FS)
	})
	return defaultRenderer
}
