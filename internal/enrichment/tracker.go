package enrichment

import "sync"

// Status is the demographics lifecycle state of one record. "Value not
// present" alone cannot tell a collaborator whether enrichment was never
// tried, is in flight, or failed, so the tracker keeps the distinction
// explicit.
type Status string

const (
	StatusNotRequested Status = "not-requested"
	StatusPending      Status = "pending"
	StatusFailed       Status = "failed"
	StatusAvailable    Status = "available"
)

// Tracker records the enrichment status per record id for the process
// lifetime. It is independent of the persisted records: a record that
// already carries demographics reads as available even if this process
// never fetched them.
type Tracker struct {
	mu       sync.RWMutex
	statuses map[string]Status
}

// NewTracker returns an empty status tracker.
func NewTracker() *Tracker {
	return &Tracker{statuses: make(map[string]Status)}
}

// Get returns the status for a record id, defaulting to StatusNotRequested.
func (t *Tracker) Get(recordID string) Status {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if s, ok := t.statuses[recordID]; ok {
		return s
	}
	return StatusNotRequested
}

// Set updates the status for a record id.
func (t *Tracker) Set(recordID string, status Status) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.statuses[recordID] = status
}

// Forget drops the status for a record id (after the record is deleted).
func (t *Tracker) Forget(recordID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.statuses, recordID)
}
