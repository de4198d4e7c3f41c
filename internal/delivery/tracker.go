// Package delivery tracks per-message delivery-state labels.
package delivery

import "github.com/verdantex/comms-center/internal/model"

// Tracker maps message ids to their delivery status. Updates are
// forward-only over sending→sent→delivered→read; a late or duplicated
// status event can never regress a message that was already read.
// Single-owner: only the UI task mutates it.
type Tracker struct {
	statuses map[string]model.DeliveryStatus
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		statuses: make(map[string]model.DeliveryStatus),
	}
}

// Update records a status for a message. It returns false without
// mutating when the status is unknown or would move backwards.
func (t *Tracker) Update(messageID string, status model.DeliveryStatus) bool {
	if !status.Valid() {
		return false
	}
	if current, ok := t.statuses[messageID]; ok {
		if status.Rank() < current.Rank() {
			return false
		}
	}
	t.statuses[messageID] = status
	return true
}

// Status returns the stored status for a message.
func (t *Tracker) Status(messageID string) (model.DeliveryStatus, bool) {
	s, ok := t.statuses[messageID]
	return s, ok
}

// Statuses returns a copy of the full map for the UI surface.
func (t *Tracker) Statuses() map[string]model.DeliveryStatus {
	out := make(map[string]model.DeliveryStatus, len(t.statuses))
	for id, s := range t.statuses {
		out[id] = s
	}
	return out
}

// Forget drops a message's entry, e.g. after its conversation is
// evicted from the view.
func (t *Tracker) Forget(messageID string) {
	delete(t.statuses, messageID)
}
