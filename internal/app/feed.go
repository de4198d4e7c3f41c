package app

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verdantex/comms-center/internal/backend"
	"github.com/verdantex/comms-center/internal/bridge/email"
	"github.com/verdantex/comms-center/internal/feed"
	"github.com/verdantex/comms-center/internal/model"
	"github.com/verdantex/comms-center/internal/reconcile"
)

// cachedConversationsMsg carries the warm-start summaries read from the
// local cache before the first poll lands.
type cachedConversationsMsg struct {
	summaries []model.ConversationSummary
}

// loadCachedConversations reads cached summaries for a warm start.
func (m Model) loadCachedConversations() tea.Cmd {
	s := m.store
	return func() tea.Msg {
		summaries, err := s.GetConversations(context.Background())
		if err != nil {
			return cachedConversationsMsg{}
		}
		return cachedConversationsMsg{summaries: summaries}
	}
}

// handleConversations applies a wholesale summary refresh: aggregator
// state, counterparty typing signals, and the auth-error banner.
func (m Model) handleConversations(msg feed.ConversationsMsg) (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{m.poller.WaitForNextResult()}

	if msg.Err != nil {
		if msg.AuthError {
			m.authErrorMessage = "authentication failed; update your token in settings (s)"
		}
		return m, tea.Batch(cmds...)
	}

	m.authErrorMessage = ""
	m.agg.SetSummaries(msg.Summaries)
	cmds = append(cmds, m.convList.Reload())

	// Counterparty typing signals ride on the summaries; each sighting
	// restarts that user's expiry window.
	for _, s := range msg.Summaries {
		for _, user := range s.Typing {
			if user == m.cfg.Backend.UserID || user == m.cfg.Backend.UserName {
				continue
			}
			m.typing.Start(user, s.ProjectID)
		}
	}
	if cmd := m.ensureTypingTimer(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	m.refreshThreadPresence()

	return m, tea.Batch(cmds...)
}

// handleSnapshot feeds one scope's snapshot through its reconciler and
// applies delivery receipts for the user's own messages.
func (m Model) handleSnapshot(msg feed.SnapshotMsg) (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{m.poller.WaitForNextResult()}

	if msg.Err != nil {
		return m, tea.Batch(cmds...)
	}

	r := m.reconcilerFor(msg.Scope, msg.ProjectTitle)
	res := r.Observe(msg.Feed)

	if len(res.Created) > 0 {
		m.center.Add(res.Created...)
		if m.currentView == ViewNotifications {
			cmds = append(cmds, m.notifList.SetNotifications(m.center.Notifications()))
		}
		cmds = append(cmds, m.drainToasts())
	}

	m.applyDeliveryReceipts(msg.Feed)

	if m.currentView == ViewThread && m.threadView.Scope() == msg.Scope {
		m.threadView.SetDeliveries(m.deliveries.Statuses())
		cmds = append(cmds, m.threadView.LoadMessages())
	}

	return m, tea.Batch(cmds...)
}

// handleDigest surfaces inbox mail as system notifications.
func (m Model) handleDigest(msg email.DigestMsg) (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{m.bridge.WaitForNextResult()}

	if msg.Err != nil {
		return m, tea.Batch(cmds...)
	}

	for _, n := range msg.Notifications {
		_ = m.dispatcher.Dispatch(n)
	}
	m.center.Add(msg.Notifications...)

	if m.currentView == ViewNotifications {
		cmds = append(cmds, m.notifList.SetNotifications(m.center.Notifications()))
	}
	cmds = append(cmds, m.drainToasts())

	return m, tea.Batch(cmds...)
}

// reconcilerFor returns the scope's reconciler, creating and seeding it
// on first sight so history present before startup never re-notifies.
func (m Model) reconcilerFor(
	scope model.ConversationScope,
	projectTitle string,
) *reconcile.Reconciler {
	if r, ok := m.reconcilers[scope]; ok {
		r.SetProjectTitle(projectTitle)
		return r
	}

	r := reconcile.New(scope, projectTitle, m.cfg.Backend.UserID, m.dispatcher)
	r.Seed(0, m.startedAt)
	m.reconcilers[scope] = r
	return r
}

// applyDeliveryReceipts promotes the user's own messages found in a
// feed snapshot: presence in the feed means delivered, a read flag
// means read. The tracker rejects any regression.
func (m Model) applyDeliveryReceipts(wire []backend.WireMessage) {
	for _, w := range wire {
		entry := reconcile.Narrow(w)
		if entry.Err != nil || entry.Message.SenderID != m.cfg.Backend.UserID {
			continue
		}

		status := model.DeliveryDelivered
		if entry.Message.Read {
			status = model.DeliveryRead
		}
		m.deliveries.Update(entry.Message.ID, status)
	}
}

// drainToasts moves queued toasts into the status banner and arms the
// clear timer.
func (m *Model) drainToasts() tea.Cmd {
	toasts := m.toaster.Drain()
	if len(toasts) == 0 {
		return nil
	}

	// Latest wins; earlier toasts from the same pass are superseded.
	m.toast = toasts[len(toasts)-1]
	m.toastGen++
	gen := m.toastGen
	return tea.Tick(toastDuration, func(time.Time) tea.Msg {
		return toastClearMsg{gen: gen}
	})
}

// toastClearMsg clears the toast banner once its display time is up.
// Stale generations are ignored.
type toastClearMsg struct {
	gen int
}
