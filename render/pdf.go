// Package render turns a laid-out letter into a paginated PDF.
package render

import (
	"bytes"
	"context"
	"io/fs"
	"sync"
	"time"

	"github.com/go-pdf/fpdf"

	"offer_letter_publisher/apperr"
	"offer_letter_publisher/letter"
)

// Producer is written into the PDF metadata.
const Producer = "offer_letter_publisher"

// MIMEType of the documents produced here.
const MIMEType = "application/pdf"

// Renderer produces PDF documents from letter views. The zero value is not
// usable; construct with New or use Default.
type Renderer struct {
	assets fs.FS
	now    func() time.Time

	once    sync.Once
	backend *backend
	initErr error
}

// Option customises a Renderer.
type Option func(*Renderer)

// WithClock fixes the timestamp written into document metadata.
func WithClock(now func() time.Time) Option {
	return func(r *Renderer) { r.now = now }
}

// New creates a renderer reading letter images from assets.
func New(assets fs.FS, opts ...Option) *Renderer {
	r := &Renderer{assets: assets, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ready initialises the backend on first use and returns it afterwards.
func (r *Renderer) ready() (*backend, error) {
	r.once.Do(func() {
		r.backend, r.initErr = loadBackend(r.assets)
	})
	if r.initErr != nil {
		return nil, apperr.Wrap(apperr.RenderBackendUnavailable, "mesin pembuat PDF belum siap", r.initErr)
	}
	return r.backend, nil
}

// Render lays view out on pages described by opts and returns the PDF.
func (r *Renderer) Render(ctx context.Context, view *letter.View, opts Options) ([]byte, error) {
	if view.Empty() {
		return nil, apperr.New(apperr.RenderTargetNotFound, "konten surat tidak ditemukan")
	}
	b, err := r.ready()
	if err != nil {
		return nil, err
	}
	if err := opts.Validate(); err != nil {
		return nil, apperr.Wrap(apperr.RenderFailed, "pengaturan halaman tidak valid", err)
	}

	now := r.now()
	pdf := fpdf.New(opts.fpdfOrientation(), "mm", opts.fpdfSize(), "")
	pdf.SetMargins(opts.Margins.Left(), opts.Margins.Top(), opts.Margins.Right())
	pdf.SetAutoPageBreak(true, opts.Margins.Bottom())
	pdf.SetCompression(!opts.DisableStreamCompression)
	pdf.SetCreationDate(now)
	pdf.SetModificationDate(now)
	pdf.SetCatalogSort(true)
	pdf.SetTitle(view.Title, true)
	pdf.SetCreator(Producer, false)
	registerFonts(pdf)
	pdf.SetFont(fontFamily, "", fontSize)
	pdf.AddPage()

	l := newLayout(pdf, b, opts)
	for _, s := range view.Sections {
		if err := ctx.Err(); err != nil {
			return nil, apperr.Wrap(apperr.RenderFailed, "", err)
		}
		l.section(s)
		if l.err != nil {
			return nil, apperr.Wrap(apperr.RenderFailed, "", l.err)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, apperr.Wrap(apperr.RenderFailed, "", err)
	}
	return buf.Bytes(), nil
}
