package repository

import (
	"sync"
	"time"

	"github.com/fms-portal/suggestion-api/internal/models"
)

// Snapshot is the in-memory mirror of the remote suggestion rows. It is
// replaced wholesale by a reload and patched in exactly one place (a
// successful response submission, which is immediately followed by a
// reload). Records are kept in canonical order: newest first, fetch
// order breaking ties.
//
// The busy flag generalises the dashboard's disable-every-control
// bookkeeping: at most one reload or response submission runs at a
// time, and release happens on every exit path via defer.
type Snapshot struct {
	mu        sync.RWMutex
	records   []models.Suggestion
	loadedAt  time.Time
	loaded    bool
	lastError error

	busyMu sync.Mutex
	busy   bool
}

// NewSnapshot returns an empty snapshot.
func NewSnapshot() *Snapshot {
	return &Snapshot{}
}

// BeginBusy acquires the busy region. It returns false when another
// operation already holds it; callers must surface that as a retryable
// conflict rather than queueing behind it.
func (s *Snapshot) BeginBusy() bool {
	s.busyMu.Lock()
	defer s.busyMu.Unlock()
	if s.busy {
		return false
	}
	s.busy = true
	return true
}

// EndBusy releases the busy region. Safe to call via defer on every
// exit path.
func (s *Snapshot) EndBusy() {
	s.busyMu.Lock()
	s.busy = false
	s.busyMu.Unlock()
}

// Replace swaps in a freshly loaded record set.
func (s *Snapshot) Replace(records []models.Suggestion) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = records
	s.loadedAt = time.Now().UTC()
	s.loaded = true
	s.lastError = nil
}

// Fail records a reload failure. The previous records are dropped: the
// dashboard shows the error with a retry affordance instead of a
// possibly stale list.
func (s *Snapshot) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
	s.loaded = false
	s.lastError = err
}

// Records returns a copy of the snapshot contents in canonical order.
func (s *Snapshot) Records() []models.Suggestion {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Suggestion, len(s.records))
	copy(out, s.records)
	return out
}

// Loaded reports whether the snapshot holds a successful load, along
// with its timestamp.
func (s *Snapshot) Loaded() (bool, time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded, s.loadedAt
}

// LastError returns the failure recorded by the most recent reload, if
// any.
func (s *Snapshot) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastError
}

// Patch applies the optimistic single-record mutation after a response
// submission succeeds. The follow-up reload reconciles with the sheet.
func (s *Snapshot) Patch(id string, mutate func(*models.Suggestion)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.records {
		if s.records[i].ID == id {
			mutate(&s.records[i])
			return true
		}
	}
	return false
}

// Find returns the record with the given id.
func (s *Snapshot) Find(id string) (models.Suggestion, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, record := range s.records {
		if record.ID == id {
			return record, true
		}
	}
	return models.Suggestion{}, false
}
