// Package reconcile turns "the feed got longer" into "N new
// notification events", exactly once per message. A strictly
// increasing watermark over the append-only feed guarantees that no
// message timestamp is ever notified twice, even if the feed is
// re-observed, truncated, or regrown.
package reconcile

import (
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/verdantex/comms-center/internal/backend"
	"github.com/verdantex/comms-center/internal/model"
)

// Dispatcher delivers notification side effects (in-app toast, native
// popup). Implementations must swallow their own failures; Dispatch
// errors are logged here and never block watermark advancement.
type Dispatcher interface {
	Dispatch(n model.Notification) error
}

// Result summarizes one reconciliation pass.
type Result struct {
	// Created holds the notifications emitted by this pass, oldest
	// first.
	Created []model.Notification

	// Malformed counts feed entries rejected during narrowing.
	Malformed int
}

// Reconciler tracks one conversation scope's feed. It keeps the last
// observed feed length and the timestamp watermark of the most recent
// message already accounted for.
type Reconciler struct {
	scope        model.ConversationScope
	projectTitle string
	userID       string

	lastObservedCount int
	watermark         time.Time

	dispatcher Dispatcher
	logf       func(format string, args ...any)
	newID      func() string
}

// New creates a reconciler for one conversation scope. userID is the
// signed-in user; messages they author never produce notifications.
func New(
	scope model.ConversationScope,
	projectTitle string,
	userID string,
	d Dispatcher,
) *Reconciler {
	return &Reconciler{
		scope:        scope,
		projectTitle: projectTitle,
		userID:       userID,
		dispatcher:   d,
		logf:         log.Printf,
		newID:        func() string { return uuid.New().String() },
	}
}

// SetLogf overrides the logging hook. Tests only.
func (r *Reconciler) SetLogf(logf func(format string, args ...any)) {
	r.logf = logf
}

// SetProjectTitle updates the display title used on emitted
// notifications after a conversation refresh.
func (r *Reconciler) SetProjectTitle(title string) {
	r.projectTitle = title
}

// SetDispatcher swaps the side-effect dispatcher, e.g. after the
// native-notification setting changed.
func (r *Reconciler) SetDispatcher(d Dispatcher) {
	r.dispatcher = d
}

// Seed primes the reconciler from cached state without emitting side
// effects, so a warm start does not re-notify history.
func (r *Reconciler) Seed(count int, watermark time.Time) {
	r.lastObservedCount = count
	r.watermark = watermark
}

// Watermark returns the timestamp of the most recent message already
// accounted for.
func (r *Reconciler) Watermark() time.Time {
	return r.watermark
}

// ObservedCount returns the feed length seen by the last pass.
func (r *Reconciler) ObservedCount() int {
	return r.lastObservedCount
}

// Observe reconciles a feed snapshot against previous state. New
// entries authored by someone else and newer than the watermark each
// emit exactly one notification. Re-observing an unchanged feed is a
// no-op. The observed count is updated unconditionally, even when no
// side effects fire.
func (r *Reconciler) Observe(feed []backend.WireMessage) Result {
	var res Result

	if len(feed) > r.lastObservedCount {
		// Sender of the entry preceding the new suffix, for reply
		// classification.
		prevSender := ""
		if r.lastObservedCount > 0 && r.lastObservedCount <= len(feed) {
			prevSender = feed[r.lastObservedCount-1].SenderID
		}

		for _, wire := range feed[r.lastObservedCount:] {
			entry := Narrow(wire)
			if entry.Err != nil {
				res.Malformed++
				r.logf(
					"comms: dropping malformed feed entry %q in project %s: %v",
					wire.ID, r.scope.ProjectID, entry.Err,
				)
				continue
			}

			msg := entry.Message
			replyToUser := prevSender == r.userID
			prevSender = msg.SenderID

			if msg.SenderID == r.userID {
				continue
			}
			if !msg.CreatedAt.After(r.watermark) {
				continue
			}

			n := r.buildNotification(msg, replyToUser)
			if err := r.dispatcher.Dispatch(n); err != nil {
				r.logf(
					"comms: notification dispatch failed for %s: %v",
					n.ID, err,
				)
			}

			r.watermark = msg.CreatedAt
			res.Created = append(res.Created, n)
		}
	}

	r.lastObservedCount = len(feed)
	return res
}

// buildNotification derives a notification from a freshly observed
// message.
func (r *Reconciler) buildNotification(
	msg model.Message,
	replyToUser bool,
) model.Notification {
	kind := model.KindMessage
	switch {
	case msg.Priority.AtLeast(model.PriorityHigh):
		kind = model.KindUrgent
	case replyToUser:
		kind = model.KindReply
	}

	title := msg.Subject
	if title == "" {
		title = "New message from " + msg.SenderName
	}

	return model.Notification{
		ID:           r.newID(),
		Kind:         kind,
		Title:        title,
		Body:         msg.Body,
		ProjectID:    r.scope.ProjectID,
		ProjectTitle: r.projectTitle,
		SenderID:     msg.SenderID,
		SenderName:   msg.SenderName,
		Priority:     msg.Priority,
		CreatedAt:    msg.CreatedAt,
	}
}
