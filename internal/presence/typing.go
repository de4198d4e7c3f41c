// Package presence tracks ephemeral "user X is typing in conversation
// Y" state. Entries self-expire after a short inactivity window and
// never survive process restart.
package presence

import (
	"sort"
	"time"
)

// TypingTTL is the inactivity window after which a typing entry
// expires.
const TypingTTL = 3 * time.Second

// entry is one user's typing state.
type entry struct {
	conversationID string
	expiresAt      time.Time
}

// Tracker holds the typing entries. Single-owner: only the UI task
// mutates it. Expiry is deadline-based, so a stale timer firing after
// the entry was restarted or stopped is a harmless no-op.
type Tracker struct {
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

// NewTracker creates a tracker with the default TTL.
func NewTracker() *Tracker {
	return &Tracker{
		entries: make(map[string]entry),
		ttl:     TypingTTL,
		now:     time.Now,
	}
}

// SetNow overrides the clock. Tests only.
func (t *Tracker) SetNow(now func() time.Time) {
	t.now = now
}

// TTL returns the inactivity window.
func (t *Tracker) TTL() time.Duration {
	return t.ttl
}

// Start records that a user is typing in a conversation and (re)starts
// their inactivity deadline. Returns the new deadline so the caller
// can schedule an expiry check.
func (t *Tracker) Start(userID, conversationID string) time.Time {
	deadline := t.now().Add(t.ttl)
	t.entries[userID] = entry{
		conversationID: conversationID,
		expiresAt:      deadline,
	}
	return deadline
}

// Stop clears a user's typing state immediately. Any pending expiry
// check becomes a no-op.
func (t *Tracker) Stop(userID string) {
	delete(t.entries, userID)
}

// Expire removes every entry whose deadline has passed and returns the
// affected user ids.
func (t *Tracker) Expire(now time.Time) []string {
	var expired []string
	for userID, e := range t.entries {
		if !e.expiresAt.After(now) {
			delete(t.entries, userID)
			expired = append(expired, userID)
		}
	}
	sort.Strings(expired)
	return expired
}

// TypingIn returns the users currently typing in a conversation,
// sorted for stable rendering.
func (t *Tracker) TypingIn(conversationID string) []string {
	var users []string
	for userID, e := range t.entries {
		if e.conversationID == conversationID {
			users = append(users, userID)
		}
	}
	sort.Strings(users)
	return users
}

// Deadline returns a user's current expiry deadline.
func (t *Tracker) Deadline(userID string) (time.Time, bool) {
	e, ok := t.entries[userID]
	if !ok {
		return time.Time{}, false
	}
	return e.expiresAt, true
}

// Len returns the number of active typing entries.
func (t *Tracker) Len() int {
	return len(t.entries)
}
