package delivery

import (
	"context"
	"errors"
	"fmt"

	"offer_letter_publisher/apperr"
	"offer_letter_publisher/letter"
	"offer_letter_publisher/publisher"
	"offer_letter_publisher/render"
)

const (
	ShareTitle = "Surat Penawaran"
	ShareText  = "Halo, berikut surat penawarannya."
)

// Document is a generated letter. It is never modified after rendering.
type Document struct {
	Filename string
	Data     []byte
	Record   letter.OfferRecord
}

// Status of one strategy attempt.
type Status int

const (
	NotApplicable Status = iota
	Delivered
	Failed
)

func (s Status) String() string {
	switch s {
	case Delivered:
		return "delivered"
	case Failed:
		return "failed"
	default:
		return "not_applicable"
	}
}

// Outcome is the result of one strategy attempt.
type Outcome struct {
	Status Status
	Err    error
	// Location is where a local save put the document.
	Location string
	// Cancelled is set when the user dismissed the share surface.
	Cancelled bool
	Artifact  publisher.Artifact
	Link      string
}

// Strategy is one way of getting a document to the user.
type Strategy interface {
	Name() string
	State() State
	Attempt(ctx context.Context, doc *Document) Outcome
}

// Publisher uploads a document and returns its public location.
type Publisher interface {
	Publish(ctx context.Context, data []byte, filename string) (publisher.Artifact, error)
}

// LocalSave writes the document to the device.
type LocalSave struct {
	Saver Saver
}

func (LocalSave) Name() string { return "local_save" }
func (LocalSave) State() State { return StateLocalSave }

func (s LocalSave) Attempt(ctx context.Context, doc *Document) Outcome {
	if s.Saver == nil {
		return Outcome{Status: NotApplicable}
	}
	loc, err := s.Saver.Save(ctx, doc.Filename, doc.Data)
	if err != nil {
		return Outcome{Status: Failed, Err: apperr.Wrap(apperr.Internal, "Gagal menyimpan PDF", err)}
	}
	return Outcome{Status: Delivered, Location: loc}
}

// Share hands the document to the native share surface.
type Share struct {
	Sharer Sharer
}

func (Share) Name() string { return "share" }
func (Share) State() State { return StateSharing }

func (s Share) Attempt(ctx context.Context, doc *Document) Outcome {
	if s.Sharer == nil {
		return Outcome{Status: NotApplicable}
	}
	req := ShareRequest{
		Title:    ShareTitle,
		Text:     ShareText,
		Filename: doc.Filename,
		MIMEType: render.MIMEType,
		Data:     doc.Data,
	}
	if !s.Sharer.CanShare(req) {
		return Outcome{Status: NotApplicable}
	}
	err := s.Sharer.Share(ctx, req)
	switch {
	case err == nil:
		return Outcome{Status: Delivered}
	case errors.Is(err, ErrShareCancelled):
		return Outcome{Status: Delivered, Cancelled: true}
	default:
		return Outcome{Status: Failed, Err: apperr.Wrap(apperr.ShareDeclined, "", err)}
	}
}

// Publish uploads the document and opens a messaging deep link to it.
type Publish struct {
	Publisher Publisher
	Links     LinkComposer
	Target    string
	Opener    Opener
}

func (Publish) Name() string { return "publish" }
func (Publish) State() State { return StatePublishing }

func (s Publish) Attempt(ctx context.Context, doc *Document) Outcome {
	if s.Publisher == nil {
		return Outcome{Status: NotApplicable}
	}
	art, err := s.Publisher.Publish(ctx, doc.Data, doc.Filename)
	if err != nil {
		return Outcome{Status: Failed, Err: err}
	}
	link := s.Links.Compose(s.Target, art.URL, SendMessage(doc.Record))
	out := Outcome{Status: Delivered, Artifact: art, Link: link}
	if s.Opener != nil {
		if err := s.Opener.Open(ctx, link); err != nil {
			out.Status = Failed
			out.Err = apperr.Wrap(apperr.Internal, "Gagal membuka WhatsApp", err)
		}
	}
	return out
}

// SendMessage is the chat text that accompanies a published letter.
func SendMessage(rec letter.OfferRecord) string {
	return fmt.Sprintf("Halo, ini surat penawaran untuk %s (%s).", rec.Recipient, rec.Subject)
}
