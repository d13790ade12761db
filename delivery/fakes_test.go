package delivery

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"offer_letter_publisher/letter"
	"offer_letter_publisher/publisher"
	"offer_letter_publisher/render"
)

type fakeRenderer struct {
	calls   atomic.Int32
	err     error
	panic   bool
	started chan struct{}
	release chan struct{}
}

func (f *fakeRenderer) Render(ctx context.Context, view *letter.View, opts render.Options) ([]byte, error) {
	f.calls.Add(1)
	if f.started != nil {
		close(f.started)
	}
	if f.release != nil {
		<-f.release
	}
	if f.panic {
		panic("renderer exploded")
	}
	if f.err != nil {
		return nil, f.err
	}
	if view.Empty() {
		return nil, errors.New("empty view")
	}
	return []byte("%PDF-1.3 " + view.Title), nil
}

type fakePublisher struct {
	calls    atomic.Int32
	url      string
	err      error
	filename string
}

func (f *fakePublisher) Publish(ctx context.Context, data []byte, filename string) (publisher.Artifact, error) {
	f.calls.Add(1)
	f.filename = filename
	if f.err != nil {
		return publisher.Artifact{}, f.err
	}
	return publisher.Artifact{URL: f.url, Filename: filename}, nil
}

type fakeSharer struct {
	can    bool
	err    error
	shared []ShareRequest
}

func (f *fakeSharer) CanShare(req ShareRequest) bool { return f.can }

func (f *fakeSharer) Share(ctx context.Context, req ShareRequest) error {
	f.shared = append(f.shared, req)
	return f.err
}

type memSaver struct {
	mu    sync.Mutex
	files map[string][]byte
	err   error
}

func (m *memSaver) Save(ctx context.Context, filename string, data []byte) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.files == nil {
		m.files = make(map[string][]byte)
	}
	m.files[filename] = data
	return "mem://" + filename, nil
}

type failingOpener struct{}

func (failingOpener) Open(context.Context, string) error { return errors.New("no browser") }
