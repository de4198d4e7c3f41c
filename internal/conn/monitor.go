package conn

import (
	"time"

	"github.com/verdantex/comms-center/internal/model"
)

// PollInterval is how often reachability is re-checked regardless of
// backoff state.
const PollInterval = 30 * time.Second

// Transition describes what a reachability check observed.
type Transition int

const (
	// TransitionNone means the connection state did not change.
	TransitionNone Transition = iota

	// TransitionLost is the connected→disconnected edge. Emitted at
	// most once per outage regardless of how many checks fail.
	TransitionLost

	// TransitionRestored is the disconnected→connected edge. Emitted
	// at most once per recovery; resets the attempt counter.
	TransitionRestored
)

// Monitor decides whether the message stream is live and owns the
// reconnection backoff schedule. It is a pure state machine: the
// blocking reachability probe runs elsewhere and only its boolean
// outcome is folded in via Apply. All methods assume single-owner
// access from the update loop.
type Monitor struct {
	state model.ConnectionState
	now   func() time.Time
}

// NewMonitor creates a monitor that starts in the connected state, so
// the first failed check surfaces a lost transition.
func NewMonitor() *Monitor {
	return &Monitor{
		state: model.ConnectionState{
			Connected: true,
		},
		now: time.Now,
	}
}

// SetNow overrides the clock. Tests only.
func (m *Monitor) SetNow(now func() time.Time) {
	m.now = now
}

// State returns a copy of the current connection state.
func (m *Monitor) State() model.ConnectionState {
	return m.state
}

// Apply folds one reachability observation into the state and returns
// the resulting transition. Repeated observations of the same state
// collapse to TransitionNone, so a burst of reachability events yields
// exactly one edge per actual state change.
func (m *Monitor) Apply(reachable bool) Transition {
	m.state.LastCheckedAt = m.now()

	switch {
	case reachable && !m.state.Connected:
		m.state.Connected = true
		m.state.ReconnectAttempts = 0
		return TransitionRestored

	case !reachable && m.state.Connected:
		m.state.Connected = false
		return TransitionLost

	default:
		return TransitionNone
	}
}

// NextRetryDelay returns the backoff delay before the next automatic
// reconnect attempt: 2^attempts seconds (1, 2, 4, 8, 16s). The second
// return is false once connected or once the attempt cap is reached;
// past the cap only the fixed-interval poll keeps checking.
func (m *Monitor) NextRetryDelay() (time.Duration, bool) {
	if m.state.Connected {
		return 0, false
	}
	if m.state.ReconnectAttempts >= model.MaxReconnectAttempts {
		return 0, false
	}
	return time.Duration(1<<uint(m.state.ReconnectAttempts)) * time.Second, true
}

// RecordAttempt increments the attempt counter when a scheduled retry
// fires. The counter plateaus at the cap and only a restored
// transition resets it.
func (m *Monitor) RecordAttempt() {
	if m.state.Connected {
		return
	}
	if m.state.ReconnectAttempts < model.MaxReconnectAttempts {
		m.state.ReconnectAttempts++
	}
}
