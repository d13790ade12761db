package letter

import (
	"sync"
	"time"
)

// Session holds the single in-memory record being edited. Nothing is
// persisted; the record lives as long as the session.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu     sync.Mutex
	record OfferRecord
}

// NewSession starts a session with the given record.
func NewSession(id string, record OfferRecord) *Session {
	return &Session{
		ID:        id,
		CreatedAt: time.Now(),
		record:    record.Clone(),
	}
}

// Record returns a snapshot of the current record.
func (s *Session) Record() OfferRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record.Clone()
}

// Update applies fn to the record. When fn fails the record is left as it
// was before the call.
func (s *Session) Update(fn func(*OfferRecord) error) (OfferRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.record.Clone()
	if err := fn(&next); err != nil {
		return s.record.Clone(), err
	}
	s.record = next
	return next.Clone(), nil
}
