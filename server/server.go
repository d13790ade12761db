package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"offer_letter_publisher/apperr"
	"offer_letter_publisher/delivery"
	"offer_letter_publisher/letter"
	"offer_letter_publisher/metrics"
	"offer_letter_publisher/render"
)

const assetBase = "/assets/"

// Server exposes the letter editor and the generate-and-deliver flows of a
// single in-memory session over HTTP.
type Server struct {
	pipeline *delivery.Pipeline
	session  *letter.Session
	metrics  *metrics.Metrics
	assets   fs.FS
	logger   *slog.Logger
}

func New(pipeline *delivery.Pipeline, session *letter.Session, m *metrics.Metrics, assets fs.FS, logger *slog.Logger) (*Server, error) {
	if pipeline == nil {
		return nil, errors.New("delivery pipeline required")
	}
	if session == nil {
		return nil, errors.New("letter session required")
	}
	if m == nil {
		m = metrics.New()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		pipeline: pipeline,
		session:  session,
		metrics:  m,
		assets:   assets,
		logger:   logger,
	}, nil
}

func (s *Server) Routes() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/assets/{name}", s.handleAsset).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)
	api.HandleFunc("/letter", s.handleLetterGet).Methods(http.MethodGet)
	api.HandleFunc("/letter", s.handleLetterPatch).Methods(http.MethodPatch)
	api.HandleFunc("/letter/preview", s.handlePreview).Methods(http.MethodGet)
	api.HandleFunc("/letter/download", s.handleDownload).Methods(http.MethodPost)
	api.HandleFunc("/letter/send", s.handleSend).Methods(http.MethodPost)

	r.Handle("/", http.RedirectHandler("/api/letter/preview", http.StatusFound)).Methods(http.MethodGet)
	r.Use(s.logMiddleware)
	return r
}

// --- Handlers ---

type statusResp struct {
	Busy      bool   `json:"busy"`
	SessionID string `json:"session_id"`
}

type letterPatchReq struct {
	Fields        map[string]string `json:"fields"`
	Specification map[string]string `json:"specification"`
}

type sendResp struct {
	FlowID   string `json:"flow_id"`
	Filename string `json:"filename"`
	Strategy string `json:"strategy"`
	URL      string `json:"url,omitempty"`
	Link     string `json:"link,omitempty"`
}

type errorResp struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statusResp{Busy: s.pipeline.Busy(), SessionID: s.session.ID})
}

func (s *Server) handleAsset(w http.ResponseWriter, r *http.Request) {
	if s.assets == nil {
		http.NotFound(w, r)
		return
	}
	name := mux.Vars(r)["name"]
	if !fs.ValidPath(name) {
		http.NotFound(w, r)
		return
	}
	http.ServeFileFS(w, r, s.assets, name)
}

func (s *Server) handleLetterGet(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Record())
}

func (s *Server) handleLetterPatch(w http.ResponseWriter, r *http.Request) {
	var req letterPatchReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "")
		return
	}
	rec, err := s.session.Update(func(rec *letter.OfferRecord) error {
		for name, value := range req.Fields {
			f, ok := letter.ParseField(name)
			if !ok {
				return fmt.Errorf("%w: %s", letter.ErrUnknownField, name)
			}
			if err := rec.Set(f, value); err != nil {
				return err
			}
		}
		for key, value := range req.Specification {
			if err := rec.SetSpec(key, value); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	view, err := letter.Compose(s.session.Record())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error(), "")
		return
	}
	var buf bytes.Buffer
	buf.WriteString("<!doctype html>\n<html><head><meta charset=\"utf-8\"><title>")
	buf.WriteString(html.EscapeString(view.Title))
	buf.WriteString("</title></head><body>\n")
	if err := view.HTML(&buf, assetBase); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error(), "")
		return
	}
	buf.WriteString("</body></html>\n")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	saver := &responseSaver{}
	rep, err := s.pipeline.Download(r.Context(), s.session.Record(), delivery.Platform{Saver: saver})
	if err != nil {
		s.writeFlowError(w, rep, err)
		return
	}
	writePDF(w, saver.filename, saver.data, "download")
}

func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	share := &clientShare{enabled: truthy(r.URL.Query().Get("share"))}
	opener := &delivery.LinkRecorder{}
	rep, err := s.pipeline.Send(r.Context(), s.session.Record(), delivery.Platform{
		Sharer: share,
		Opener: opener,
	})
	if err != nil {
		s.writeFlowError(w, rep, err)
		return
	}
	if rep.Strategy == "share" && share.req != nil {
		w.Header().Set("X-Share-Title", url.QueryEscape(share.req.Title))
		w.Header().Set("X-Share-Text", url.QueryEscape(share.req.Text))
		writePDF(w, share.req.Filename, share.req.Data, "share")
		return
	}
	writeJSON(w, http.StatusOK, sendResp{
		FlowID:   rep.FlowID,
		Filename: rep.Filename,
		Strategy: rep.Strategy,
		URL:      rep.Artifact.URL,
		Link:     opener.Link,
	})
}

func (s *Server) writeFlowError(w http.ResponseWriter, rep delivery.Report, err error) {
	kind := apperr.KindOf(err)
	writeError(w, statusFor(kind), delivery.UserMessage(rep.Flow, err), string(kind))
}

// --- Response-bound platform adapters ---

// responseSaver keeps the document so the handler can return it as an
// attachment once the flow is done.
type responseSaver struct {
	filename string
	data     []byte
}

func (s *responseSaver) Save(_ context.Context, filename string, data []byte) (string, error) {
	s.filename = filename
	s.data = data
	return "response", nil
}

// clientShare stands in for the browser's share sheet. The client declares
// the capability; the document goes back in the response for it to share.
type clientShare struct {
	enabled bool
	req     *delivery.ShareRequest
}

func (c *clientShare) CanShare(req delivery.ShareRequest) bool {
	return c.enabled && req.MIMEType == render.MIMEType
}

func (c *clientShare) Share(_ context.Context, req delivery.ShareRequest) error {
	c.req = &req
	return nil
}

// --- Helpers ---

func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.Busy:
		return http.StatusConflict
	case apperr.PublishRejected, apperr.PublishTransport, apperr.ShareDeclined:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func truthy(v string) bool {
	b, err := strconv.ParseBool(v)
	return err == nil && b
}

func writePDF(w http.ResponseWriter, filename string, data []byte, mode string) {
	w.Header().Set("Content-Type", render.MIMEType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q; filename*=UTF-8''%s", filename, url.PathEscape(filename)))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("X-Delivery", mode)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg, kind string) {
	writeJSON(w, status, errorResp{Error: msg, Kind: kind})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"elapsed", time.Since(start))
	})
}
