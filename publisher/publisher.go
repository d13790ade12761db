// Package publisher uploads generated letters to the remote object-storage
// endpoint and returns their public URL.
package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"offer_letter_publisher/apperr"
	"offer_letter_publisher/logger"
)

const (
	// FormField is the multipart field the endpoint reads the file from.
	FormField = "file"
	// GenericFailure is shown when the endpoint gives no reason.
	GenericFailure = "Gagal upload file"

	contentType      = "application/pdf"
	maxResponseBytes = 1 << 20
)

// Artifact is a published document.
type Artifact struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
}

type uploadResp struct {
	URL   string `json:"url"`
	Error string `json:"error"`
}

// Client posts documents to the upload endpoint. It sends exactly one
// request per Publish and never retries.
type Client struct {
	endpoint string
	client   *http.Client
	logger   *slog.Logger
}

// NewClient creates a Client for endpoint. A nil client gets a 60 second
// timeout; a nil logger discards.
func NewClient(endpoint string, client *http.Client, log *slog.Logger) *Client {
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Client{endpoint: endpoint, client: client, logger: log}
}

// FromConfig builds a Client from cfg.Upload.
func FromConfig(cfg Config, log *slog.Logger) *Client {
	timeout := cfg.Upload.Timeout.Std()
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return NewClient(cfg.Upload.Endpoint, &http.Client{Timeout: timeout}, log)
}

// Endpoint returns the upload URL.
func (c *Client) Endpoint() string { return c.endpoint }

// Publish uploads data as filename and returns where it can be fetched.
func (c *Client) Publish(ctx context.Context, data []byte, filename string) (Artifact, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, FormField, escapeQuotes(filename)))
	h.Set("Content-Type", contentType)
	part, err := writer.CreatePart(h)
	if err != nil {
		return Artifact{}, apperr.Wrap(apperr.Internal, "", err)
	}
	if _, err := part.Write(data); err != nil {
		return Artifact{}, apperr.Wrap(apperr.Internal, "", err)
	}
	if err := writer.Close(); err != nil {
		return Artifact{}, apperr.Wrap(apperr.Internal, "", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, &body)
	if err != nil {
		return Artifact{}, apperr.Wrap(apperr.PublishTransport, "", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("upload failed", "endpoint", c.endpoint, "filename", filename, "err", err)
		return Artifact{}, apperr.Wrap(apperr.PublishTransport, "", err)
	}
	defer resp.Body.Close()
	c.logger.Debug("upload answered", "status", resp.StatusCode, "filename", filename, "bytes", len(data), "elapsed", time.Since(start))

	var out uploadResp
	decodeErr := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&out)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := GenericFailure
		if decodeErr == nil && strings.TrimSpace(out.Error) != "" {
			msg = out.Error
		}
		return Artifact{}, apperr.Wrap(apperr.PublishRejected, msg, fmt.Errorf("upload status %d", resp.StatusCode))
	}
	if decodeErr != nil {
		return Artifact{}, apperr.Wrap(apperr.PublishRejected, GenericFailure, fmt.Errorf("decode upload response: %w", decodeErr))
	}
	if strings.TrimSpace(out.URL) == "" {
		return Artifact{}, apperr.Wrap(apperr.PublishRejected, GenericFailure, fmt.Errorf("upload response has no url"))
	}
	return Artifact{URL: out.URL, Filename: filename}, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
