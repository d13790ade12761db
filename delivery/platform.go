package delivery

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// ErrShareCancelled is returned by a Sharer when the user dismissed the
// share surface. It counts as a completed delivery.
var ErrShareCancelled = errors.New("share cancelled by user")

// Saver stores a document on the user's device and returns where it went.
type Saver interface {
	Save(ctx context.Context, filename string, data []byte) (string, error)
}

// ShareRequest is what the native share surface receives.
type ShareRequest struct {
	Title    string
	Text     string
	Filename string
	MIMEType string
	Data     []byte
}

// Sharer hands a file to the platform's share surface.
type Sharer interface {
	// CanShare reports whether req can be shared as a file attachment.
	CanShare(req ShareRequest) bool
	Share(ctx context.Context, req ShareRequest) error
}

// Opener opens a link, typically in a browser or the messaging app.
type Opener interface {
	Open(ctx context.Context, link string) error
}

// Platform bundles the capabilities of the environment a flow runs in.
// A nil member disables the strategy that needs it.
type Platform struct {
	Saver  Saver
	Sharer Sharer
	Opener Opener
}

// DirSaver writes documents into a directory.
type DirSaver struct {
	Dir string
}

// Save writes data to Dir/filename through a temporary file so a partial
// document is never left under the final name.
func (s DirSaver) Save(_ context.Context, filename string, data []byte) (string, error) {
	dir := s.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	name := safeName(filename)
	if name == "" || name == "." || name == ".." {
		return "", fmt.Errorf("invalid filename %q", filename)
	}
	dst := filepath.Join(dir, name)
	tmp, err := os.CreateTemp(dir, ".surat-*.pdf")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return "", err
	}
	return dst, nil
}

// safeName keeps the whole name as a single path element: separators,
// control characters and, on Windows, reserved characters become '_'.
func safeName(name string) string {
	reserved := "/\\"
	if runtime.GOOS == "windows" {
		reserved += `<>:"|?*`
	}
	return strings.Map(func(r rune) rune {
		if r < 0x20 || strings.ContainsRune(reserved, r) {
			return '_'
		}
		return r
	}, name)
}

// NoShare is a platform without a share surface.
type NoShare struct{}

func (NoShare) CanShare(ShareRequest) bool { return false }

func (NoShare) Share(context.Context, ShareRequest) error {
	return errors.New("share not supported")
}

// BrowserOpener opens links with the desktop's default handler.
type BrowserOpener struct{}

func (BrowserOpener) Open(ctx context.Context, link string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.CommandContext(ctx, "open", link)
	case "windows":
		cmd = exec.CommandContext(ctx, "rundll32", "url.dll,FileProtocolHandler", link)
	default:
		cmd = exec.CommandContext(ctx, "xdg-open", link)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("open link: %w", err)
	}
	go cmd.Wait()
	return nil
}

// PrintOpener writes links to W, one per line.
type PrintOpener struct {
	W io.Writer
}

func (o PrintOpener) Open(_ context.Context, link string) error {
	_, err := fmt.Fprintln(o.W, link)
	return err
}

// LinkRecorder keeps the last opened link. Useful where the caller, not the
// flow, decides how the link reaches the user.
type LinkRecorder struct {
	Link string
}

func (r *LinkRecorder) Open(_ context.Context, link string) error {
	r.Link = link
	return nil
}
