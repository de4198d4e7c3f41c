package conn

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdantex/comms-center/internal/model"
)

func TestMonitorStartsConnected(t *testing.T) {
	m := NewMonitor()

	state := m.State()
	assert.True(t, state.Connected)
	assert.Zero(t, state.ReconnectAttempts)
}

func TestMonitorEmitsLostEdgeOnce(t *testing.T) {
	m := NewMonitor()

	assert.Equal(t, TransitionLost, m.Apply(false))
	// Subsequent failures in the same outage collapse to no edge.
	assert.Equal(t, TransitionNone, m.Apply(false))
	assert.Equal(t, TransitionNone, m.Apply(false))
	assert.False(t, m.State().Connected)
}

func TestMonitorEmitsRestoredEdgeOnce(t *testing.T) {
	m := NewMonitor()

	require.Equal(t, TransitionLost, m.Apply(false))
	m.RecordAttempt()
	m.RecordAttempt()

	assert.Equal(t, TransitionRestored, m.Apply(true))
	assert.Equal(t, TransitionNone, m.Apply(true))

	state := m.State()
	assert.True(t, state.Connected)
	assert.Zero(t, state.ReconnectAttempts, "restore resets the attempt counter")
}

func TestMonitorBackoffSchedule(t *testing.T) {
	m := NewMonitor()
	require.Equal(t, TransitionLost, m.Apply(false))

	want := []time.Duration{
		1 * time.Second,
		2 * time.Second,
		4 * time.Second,
		8 * time.Second,
		16 * time.Second,
	}
	for i, expected := range want {
		delay, retry := m.NextRetryDelay()
		require.True(t, retry, "attempt %d should schedule a retry", i)
		assert.Equal(t, expected, delay)
		m.RecordAttempt()
	}

	// Past the cap, no further backoff retries; only the fixed-interval
	// poll keeps checking.
	_, retry := m.NextRetryDelay()
	assert.False(t, retry)
	assert.Equal(t, model.MaxReconnectAttempts, m.State().ReconnectAttempts)

	// The counter plateaus rather than growing without bound.
	m.RecordAttempt()
	assert.Equal(t, model.MaxReconnectAttempts, m.State().ReconnectAttempts)
}

func TestMonitorNoRetryWhileConnected(t *testing.T) {
	m := NewMonitor()

	_, retry := m.NextRetryDelay()
	assert.False(t, retry)

	m.RecordAttempt()
	assert.Zero(t, m.State().ReconnectAttempts)
}

func TestMonitorRecordsCheckTime(t *testing.T) {
	fixed := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	m := NewMonitor()
	m.SetNow(func() time.Time { return fixed })

	m.Apply(true)
	assert.Equal(t, fixed, m.State().LastCheckedAt)
}
