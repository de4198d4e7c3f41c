package app

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// typingTickMsg drives typing-indicator expiry while any entry is live.
type typingTickMsg struct{}

// ensureTypingTimer arms the expiry tick when entries exist and no tick
// is already in flight.
func (m *Model) ensureTypingTimer() tea.Cmd {
	if m.typing.Len() == 0 || m.typingTimer {
		return nil
	}
	m.typingTimer = true
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return typingTickMsg{}
	})
}

// handleTypingTick expires stale typing entries and re-arms the timer
// while any remain.
func (m Model) handleTypingTick(typingTickMsg) (tea.Model, tea.Cmd) {
	m.typingTimer = false

	expired := m.typing.Expire(time.Now())
	if len(expired) > 0 {
		m.refreshThreadPresence()
	}

	return m, m.ensureTypingTimer()
}

// refreshThreadPresence pushes the current conversation's typing users
// into the thread view.
func (m *Model) refreshThreadPresence() {
	if m.currentView != ViewThread {
		return
	}
	scope := m.threadView.Scope()
	m.threadView.SetTypingUsers(m.typing.TypingIn(scope.ProjectID))
}

// recordOwnTyping throttles and publishes the user's typing signal
// while the compose form is active.
func (m *Model) recordOwnTyping() tea.Cmd {
	if time.Since(m.lastTypingSent) < typingPublishInterval {
		return nil
	}
	m.lastTypingSent = time.Now()

	scope := m.threadView.Scope()
	b := m.backend
	userID := m.cfg.Backend.UserID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		return typingPublishedMsg{err: b.PublishTyping(ctx, scope, userID)}
	}
}
