// Package delivery runs the generate-and-deliver flows: render a letter
// once, then save it, share it, or publish it and open a chat link.
package delivery

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"offer_letter_publisher/apperr"
	"offer_letter_publisher/letter"
	"offer_letter_publisher/logger"
	"offer_letter_publisher/metrics"
	"offer_letter_publisher/publisher"
	"offer_letter_publisher/render"
)

// State of a flow.
type State string

const (
	StateIdle       State = "IDLE"
	StateGenerating State = "GENERATING"
	StateLocalSave  State = "LOCAL_SAVE"
	StateSharing    State = "SHARING"
	StatePublishing State = "PUBLISHING"
	StateDone       State = "DONE"
	StateFailed     State = "FAILED"
)

// Flow names a user action.
type Flow string

const (
	FlowDownload Flow = "download"
	FlowSend     Flow = "send"
)

// Fallback messages when a failure carries none.
const (
	DownloadFailure = "Gagal membuat PDF"
	SendFailure     = "Gagal mengirim via WhatsApp"
	BusyMessage     = "Masih memproses surat sebelumnya"
)

// Renderer turns a composed letter into document bytes.
type Renderer interface {
	Render(ctx context.Context, view *letter.View, opts render.Options) ([]byte, error)
}

// Report describes how one flow went.
type Report struct {
	FlowID    string             `json:"flowId"`
	Flow      Flow               `json:"flow"`
	State     State              `json:"state"`
	States    []State            `json:"states"`
	Filename  string             `json:"filename,omitempty"`
	Strategy  string             `json:"strategy,omitempty"`
	Location  string             `json:"location,omitempty"`
	Cancelled bool               `json:"cancelled,omitempty"`
	Artifact  publisher.Artifact `json:"artifact"`
	Link      string             `json:"link,omitempty"`
	Err       error              `json:"-"`
}

func (r *Report) enter(s State) {
	r.State = s
	r.States = append(r.States, s)
}

// Message is the text to show the user for a failed flow.
func (r Report) Message() string {
	if r.Err == nil {
		return ""
	}
	return UserMessage(r.Flow, r.Err)
}

// UserMessage prefers the message carried by err, else the generic text of
// the flow.
func UserMessage(flow Flow, err error) string {
	fallback := DownloadFailure
	if flow == FlowSend {
		fallback = SendFailure
	}
	return apperr.MessageOr(err, fallback)
}

// Settings configure a Pipeline.
type Settings struct {
	// Target is the phone number deep links open a chat with.
	Target string
	Links  LinkComposer
	Render render.Options
	// Clock defaults to time.Now. Only the blank-recipient filename uses it.
	Clock func() time.Time
}

// SettingsFromConfig maps the loaded configuration onto pipeline settings.
func SettingsFromConfig(cfg publisher.Config) Settings {
	return Settings{
		Target: cfg.WhatsApp.Target,
		Links:  LinkComposer{Host: cfg.WhatsApp.Host},
		Render: cfg.Render,
	}
}

// Pipeline runs download and send flows, one at a time.
type Pipeline struct {
	settings  Settings
	renderer  Renderer
	publisher Publisher
	gate      *Gate
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

// NewPipeline wires a pipeline. A nil logger discards and nil metrics are
// replaced by a private collector.
func NewPipeline(settings Settings, r Renderer, p Publisher, log *slog.Logger, m *metrics.Metrics) *Pipeline {
	if settings.Clock == nil {
		settings.Clock = time.Now
	}
	if log == nil {
		log = logger.Discard()
	}
	if m == nil {
		m = metrics.New()
	}
	return &Pipeline{
		settings:  settings,
		renderer:  r,
		publisher: p,
		gate:      NewGate(),
		logger:    log,
		metrics:   m,
	}
}

// Busy reports whether a flow is running.
func (p *Pipeline) Busy() bool { return p.gate.Busy() }

// Download renders rec and saves it through plat.Saver.
func (p *Pipeline) Download(ctx context.Context, rec letter.OfferRecord, plat Platform) (Report, error) {
	return p.run(ctx, FlowDownload, rec, []Strategy{
		LocalSave{Saver: plat.Saver},
	})
}

// Send renders rec and offers it to the native share surface. When sharing
// is unavailable or fails, the document is published and a chat link with
// its URL is opened through plat.Opener.
func (p *Pipeline) Send(ctx context.Context, rec letter.OfferRecord, plat Platform) (Report, error) {
	return p.run(ctx, FlowSend, rec, []Strategy{
		Share{Sharer: plat.Sharer},
		Publish{
			Publisher: p.publisher,
			Links:     p.settings.Links,
			Target:    p.settings.Target,
			Opener:    plat.Opener,
		},
	})
}

func (p *Pipeline) run(ctx context.Context, flow Flow, rec letter.OfferRecord, strategies []Strategy) (rep Report, err error) {
	rep = Report{FlowID: uuid.NewString(), Flow: flow}
	rep.enter(StateIdle)
	log := p.logger.With("flow_id", rep.FlowID, "flow", string(flow))

	if !p.gate.Begin() {
		p.metrics.IncRejected()
		log.Warn("flow rejected, another one is running")
		rep.Err = apperr.New(apperr.Busy, BusyMessage)
		return rep, rep.Err
	}
	defer p.gate.End()
	defer func() {
		if r := recover(); r != nil {
			err = apperr.Wrap(apperr.Internal, "", fmt.Errorf("panic: %v", r))
			rep.Err = err
			rep.enter(StateFailed)
			p.metrics.IncFailed()
			log.Error("flow panicked", "panic", r)
		}
	}()

	p.metrics.IncStarted()
	log.Info("flow started")
	fail := func(e error) (Report, error) {
		rep.Err = e
		rep.enter(StateFailed)
		p.metrics.IncFailed()
		log.Error("flow failed", "state", string(rep.States[len(rep.States)-2]), "kind", string(apperr.KindOf(e)), "err", e)
		return rep, e
	}

	rep.enter(StateGenerating)
	snapshot := rec.Clone()
	view, err := letter.Compose(snapshot)
	if err != nil {
		return fail(apperr.Wrap(apperr.RenderFailed, "", err))
	}
	data, err := p.renderer.Render(ctx, view, p.settings.Render)
	if err != nil {
		return fail(err)
	}
	p.metrics.IncRendered()

	doc := &Document{
		Filename: Filename(snapshot.Recipient, p.settings.Clock()),
		Data:     data,
		Record:   snapshot,
	}
	rep.Filename = doc.Filename
	log = log.With("filename", doc.Filename)

	var lastErr error
	for _, s := range strategies {
		rep.enter(s.State())
		out := s.Attempt(ctx, doc)
		if out.Artifact.URL != "" {
			rep.Artifact = out.Artifact
			rep.Link = out.Link
		}
		switch out.Status {
		case Delivered:
			rep.Strategy = s.Name()
			rep.Location = out.Location
			rep.Cancelled = out.Cancelled
			rep.enter(StateDone)
			p.metrics.IncDelivered(s.Name())
			log.Info("flow done", "strategy", s.Name(), "cancelled", out.Cancelled)
			return rep, nil
		case Failed:
			lastErr = out.Err
			log.Warn("strategy failed", "strategy", s.Name(), "err", out.Err)
		default:
			log.Debug("strategy not applicable", "strategy", s.Name())
		}
	}
	if lastErr == nil {
		lastErr = apperr.New(apperr.Internal, "")
	}
	return fail(lastErr)
}
