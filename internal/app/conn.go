package app

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/verdantex/comms-center/internal/conn"
	"github.com/verdantex/comms-center/internal/model"
)

// connCheckTimeout bounds one reachability probe.
const connCheckTimeout = 10 * time.Second

// connTickMsg fires when the next connection check is due. Stale
// generations (from superseded schedules) are ignored.
type connTickMsg struct {
	gen int
}

// connCheckedMsg carries the outcome of one reachability probe. Only
// the boolean crosses the goroutine boundary; the monitor's state is
// touched exclusively on the update loop.
type connCheckedMsg struct {
	reachable bool
}

// runConnCheck probes the backend off the update loop.
func (m Model) runConnCheck() tea.Cmd {
	b := m.backend
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(
			context.Background(), connCheckTimeout,
		)
		defer cancel()
		return connCheckedMsg{reachable: b.Ping(ctx) == nil}
	}
}

// handleConnChecked folds a probe result into the monitor: edge
// transitions produce a system notification and a toast, then the next
// check is scheduled with exponential backoff while offline.
func (m Model) handleConnChecked(msg connCheckedMsg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	transition := m.monitor.Apply(msg.reachable)
	switch transition {
	case conn.TransitionLost:
		n := m.connectionNotification(
			"Connection lost",
			"The marketplace backend is unreachable. Reconnecting…",
		)
		_ = m.dispatcher.Dispatch(n)
		m.center.Add(n)
		cmds = append(cmds, m.drainToasts())

	case conn.TransitionRestored:
		n := m.connectionNotification(
			"Connection restored",
			"Back online. Refreshing conversations.",
		)
		_ = m.dispatcher.Dispatch(n)
		m.center.Add(n)
		cmds = append(cmds, m.drainToasts(), m.poller.Refresh())
	}

	if m.currentView == ViewNotifications && transition != conn.TransitionNone {
		cmds = append(cmds, m.notifList.SetNotifications(m.center.Notifications()))
	}

	cmds = append(cmds, m.scheduleNextCheck())
	return m, tea.Batch(cmds...)
}

// scheduleNextCheck arms the next connection probe: the regular poll
// interval while online, exponential backoff while offline, and the
// regular interval again once the backoff attempts are exhausted.
func (m *Model) scheduleNextCheck() tea.Cmd {
	delay := conn.PollInterval
	if retryDelay, retrying := m.monitor.NextRetryDelay(); retrying {
		m.monitor.RecordAttempt()
		delay = retryDelay
	}

	m.connGen++
	gen := m.connGen
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return connTickMsg{gen: gen}
	})
}

// connectionNotification builds a system notification for a
// connectivity edge.
func (m Model) connectionNotification(title, body string) model.Notification {
	return model.Notification{
		ID:        uuid.New().String(),
		Kind:      model.KindSystem,
		Title:     title,
		Body:      body,
		Priority:  model.PriorityNormal,
		CreatedAt: time.Now(),
	}
}
