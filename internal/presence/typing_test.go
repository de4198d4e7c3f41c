package presence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartSetsDeadlineAtTTL(t *testing.T) {
	now := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	tr := NewTracker()
	tr.SetNow(func() time.Time { return now })

	deadline := tr.Start("user-ava", "proj-solar")
	assert.Equal(t, now.Add(TypingTTL), deadline)

	got, ok := tr.Deadline("user-ava")
	require.True(t, ok)
	assert.Equal(t, deadline, got)
}

func TestStartRestartsWindow(t *testing.T) {
	now := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	tr := NewTracker()
	tr.SetNow(func() time.Time { return now })

	first := tr.Start("user-ava", "proj-solar")

	// A fresh signal two seconds later pushes the deadline out.
	now = now.Add(2 * time.Second)
	second := tr.Start("user-ava", "proj-solar")
	assert.Equal(t, first.Add(2*time.Second), second)

	// The original deadline passing no longer expires the entry.
	expired := tr.Expire(first)
	assert.Empty(t, expired)
	assert.Equal(t, 1, tr.Len())
}

func TestExpireRemovesPastDeadlines(t *testing.T) {
	now := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	tr := NewTracker()
	tr.SetNow(func() time.Time { return now })

	tr.Start("user-ben", "proj-mangrove")
	tr.Start("user-ava", "proj-solar")

	now = now.Add(time.Second)
	tr.Start("user-cara", "proj-solar")

	expired := tr.Expire(now.Add(TypingTTL - time.Second))
	assert.Equal(t, []string{"user-ava", "user-ben"}, expired)
	assert.Equal(t, 1, tr.Len())

	// Already-expired entries do not come back.
	assert.Empty(t, tr.Expire(now.Add(TypingTTL-time.Second)))
}

func TestTypingInSortedPerConversation(t *testing.T) {
	tr := NewTracker()
	tr.Start("user-cara", "proj-solar")
	tr.Start("user-ava", "proj-solar")
	tr.Start("user-ben", "proj-mangrove")

	assert.Equal(t, []string{"user-ava", "user-cara"}, tr.TypingIn("proj-solar"))
	assert.Equal(t, []string{"user-ben"}, tr.TypingIn("proj-mangrove"))
	assert.Empty(t, tr.TypingIn("proj-wind"))
}

func TestStopClearsImmediately(t *testing.T) {
	tr := NewTracker()
	tr.Start("user-ava", "proj-solar")
	tr.Stop("user-ava")

	assert.Zero(t, tr.Len())
	_, ok := tr.Deadline("user-ava")
	assert.False(t, ok)

	// Stopping an absent user is a no-op.
	tr.Stop("user-ava")
	assert.Zero(t, tr.Len())
}

func TestStartMovesUserBetweenConversations(t *testing.T) {
	tr := NewTracker()
	tr.Start("user-ava", "proj-solar")
	tr.Start("user-ava", "proj-mangrove")

	assert.Empty(t, tr.TypingIn("proj-solar"))
	assert.Equal(t, []string{"user-ava"}, tr.TypingIn("proj-mangrove"))
	assert.Equal(t, 1, tr.Len())
}
