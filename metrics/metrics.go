package metrics

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
)

// Metrics is a tiny in-memory counter set for generate-and-deliver flows.
type Metrics struct {
	started   atomic.Int64
	rejected  atomic.Int64
	rendered  atomic.Int64
	saved     atomic.Int64
	shared    atomic.Int64
	published atomic.Int64
	failed    atomic.Int64
}

// New returns a zeroed Metrics collector.
func New() *Metrics {
	return &Metrics{}
}

func (m *Metrics) IncStarted()  { m.started.Add(1) }
func (m *Metrics) IncRejected() { m.rejected.Add(1) }
func (m *Metrics) IncRendered() { m.rendered.Add(1) }
func (m *Metrics) IncFailed()   { m.failed.Add(1) }

// IncDelivered counts a delivery by strategy name.
func (m *Metrics) IncDelivered(strategy string) {
	switch strategy {
	case "local_save":
		m.saved.Add(1)
	case "share":
		m.shared.Add(1)
	case "publish":
		m.published.Add(1)
	}
}

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	Started   int64 `json:"started"`
	Rejected  int64 `json:"rejected"`
	Rendered  int64 `json:"rendered"`
	Saved     int64 `json:"saved"`
	Shared    int64 `json:"shared"`
	Published int64 `json:"published"`
	Failed    int64 `json:"failed"`
}

func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		Started:   m.started.Load(),
		Rejected:  m.rejected.Load(),
		Rendered:  m.rendered.Load(),
		Saved:     m.saved.Load(),
		Shared:    m.shared.Load(),
		Published: m.published.Load(),
		Failed:    m.failed.Load(),
	}
}

// Handler exposes the counters as JSON.
func (m *Metrics) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(m.Snapshot())
	})
}
