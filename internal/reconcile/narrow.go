package reconcile

import (
	"fmt"
	"time"

	"github.com/verdantex/comms-center/internal/backend"
	"github.com/verdantex/comms-center/internal/model"
)

// Entry is the outcome of narrowing one wire payload: either a valid
// strict message or the raw payload plus the rejection reason.
type Entry struct {
	Message model.Message
	Raw     backend.WireMessage
	Err     error
}

// Narrow validates a loosely-typed wire message into the strict model
// shape. Rejected entries never reach the watermark or the counters.
func Narrow(w backend.WireMessage) Entry {
	fail := func(err error) Entry {
		return Entry{Raw: w, Err: err}
	}

	if w.ID == "" {
		return fail(fmt.Errorf("missing message id"))
	}
	if w.SenderID == "" {
		return fail(fmt.Errorf("message %s: missing sender id", w.ID))
	}

	createdAt, err := time.Parse(time.RFC3339, w.CreatedAt)
	if err != nil {
		return fail(fmt.Errorf(
			"message %s: bad created_at %q: %w", w.ID, w.CreatedAt, err,
		))
	}

	priority := model.Priority(w.Priority)
	if w.Priority == "" {
		priority = model.PriorityNormal
	} else if !priority.Valid() {
		return fail(fmt.Errorf(
			"message %s: unknown priority %q", w.ID, w.Priority,
		))
	}

	return Entry{
		Message: model.Message{
			ID:             w.ID,
			ProjectID:      w.ProjectID,
			CounterpartyID: w.CounterpartyID,
			SenderID:       w.SenderID,
			SenderName:     w.SenderName,
			Subject:        w.Subject,
			Body:           w.Body,
			Priority:       priority,
			CreatedAt:      createdAt,
			Read:           w.Read,
		},
		Raw: w,
	}
}
