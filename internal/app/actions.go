package app

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/verdantex/comms-center/internal/model"
	"github.com/verdantex/comms-center/internal/ui/compose"
	"github.com/verdantex/comms-center/internal/ui/notiflist"
)

// actionTimeout bounds one backend mutation.
const actionTimeout = 15 * time.Second

// Result messages for backend mutations. Local state flips only after
// the backend confirms; on error the optimistic change never happened.
type markReadResultMsg struct {
	id  string
	err error
}

type markAllReadResultMsg struct {
	err error
}

type clearResultMsg struct {
	id  string
	err error
}

type markProjectReadResultMsg struct {
	projectID string
	err       error
}

type sendResultMsg struct {
	message model.Message
	err     error
}

// typingPublishedMsg reports an outbound typing signal. Failures are
// ignored.
type typingPublishedMsg struct {
	err error
}

// --- Navigation ---

// openConversation switches to the thread view and kicks off the
// mark-read round trip for the opened project.
func (m Model) openConversation(
	scope model.ConversationScope,
	projectTitle string,
) (tea.Model, tea.Cmd) {
	m.previousView = m.currentView
	m.currentView = ViewThread

	cmds := []tea.Cmd{m.threadView.Open(scope, projectTitle)}
	m.threadView.SetDeliveries(m.deliveries.Statuses())
	m.refreshThreadPresence()

	if summary, ok := m.agg.Summary(scope.ProjectID); ok && summary.UnreadCount > 0 {
		cmds = append(cmds, m.markProjectRead(scope.ProjectID))
	}

	return m, tea.Batch(cmds...)
}

// openFromNotification jumps from a notification to its conversation,
// marking the notification read on the way.
func (m Model) openFromNotification(msg notiflist.OpenConversationMsg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	if n, ok := m.center.Get(msg.NotificationID); ok && !n.Read {
		cmds = append(cmds, m.markNotificationRead(n.ID))
	}

	summary, ok := m.agg.Summary(msg.ProjectID)
	if !ok {
		return m, tea.Batch(cmds...)
	}

	mdl, cmd := m.openConversation(summary.Scope(), summary.ProjectTitle)
	cmds = append(cmds, cmd)
	return mdl, tea.Batch(cmds...)
}

// --- Notification mutations ---

// markNotificationRead asks the backend to flip one notification.
func (m Model) markNotificationRead(id string) tea.Cmd {
	b := m.backend
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		return markReadResultMsg{id: id, err: b.MarkNotificationRead(ctx, id)}
	}
}

func (m Model) handleMarkReadResult(msg markReadResultMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		return m, m.showErrorToast("Marking notification read failed")
	}

	m.center.ApplyRead(msg.id)
	cmds := []tea.Cmd{m.mirrorNotificationRead(msg.id)}
	if m.currentView == ViewNotifications {
		cmds = append(cmds, m.notifList.SetNotifications(m.center.Notifications()))
	}
	return m, tea.Batch(cmds...)
}

// markAllNotificationsRead asks the backend to flip every unread
// notification in one call.
func (m Model) markAllNotificationsRead() tea.Cmd {
	b := m.backend
	userID := m.cfg.Backend.UserID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		return markAllReadResultMsg{err: b.MarkAllNotificationsRead(ctx, userID)}
	}
}

func (m Model) handleMarkAllReadResult(msg markAllReadResultMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		return m, m.showErrorToast("Marking all notifications read failed")
	}

	m.center.ApplyAllRead()
	cmds := []tea.Cmd{m.mirrorAllNotificationsRead()}
	if m.currentView == ViewNotifications {
		cmds = append(cmds, m.notifList.SetNotifications(m.center.Notifications()))
	}
	return m, tea.Batch(cmds...)
}

// clearNotification asks the backend to delete one notification.
func (m Model) clearNotification(id string) tea.Cmd {
	b := m.backend
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		return clearResultMsg{id: id, err: b.ClearNotification(ctx, id)}
	}
}

func (m Model) handleClearResult(msg clearResultMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		return m, m.showErrorToast("Clearing notification failed")
	}

	m.center.Remove(msg.id)
	cmds := []tea.Cmd{m.mirrorNotificationDelete(msg.id)}
	if m.currentView == ViewNotifications {
		cmds = append(cmds, m.notifList.SetNotifications(m.center.Notifications()))
	}
	return m, tea.Batch(cmds...)
}

// --- Conversation mutations ---

// markProjectRead asks the backend to mark a whole conversation read.
func (m Model) markProjectRead(projectID string) tea.Cmd {
	b := m.backend
	userID := m.cfg.Backend.UserID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		return markProjectReadResultMsg{
			projectID: projectID,
			err:       b.MarkProjectMessagesRead(ctx, projectID, userID),
		}
	}
}

func (m Model) handleMarkProjectReadResult(msg markProjectReadResultMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		return m, m.showErrorToast("Marking conversation read failed")
	}

	m.agg.ApplyProjectRead(msg.projectID)

	s := m.store
	mirror := func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		_ = s.MarkConversationRead(ctx, msg.projectID)
		return nil
	}

	return m, tea.Batch(m.convList.Reload(), mirror)
}

// --- Sending ---

// handleComposeSubmit builds the outbound message, registers it with
// the delivery tracker, and posts it.
func (m Model) handleComposeSubmit(msg compose.MessageSubmittedMsg) (tea.Model, tea.Cmd) {
	m.currentView = ViewThread

	outbound := model.Message{
		ID:             uuid.New().String(),
		ProjectID:      msg.Scope.ProjectID,
		CounterpartyID: msg.Scope.CounterpartyID,
		SenderID:       m.cfg.Backend.UserID,
		SenderName:     m.cfg.Backend.UserName,
		Subject:        msg.Subject,
		Body:           msg.Body,
		Priority:       msg.Priority,
		CreatedAt:      time.Now().UTC(),
		Read:           true,
	}

	m.deliveries.Update(outbound.ID, model.DeliverySending)
	m.threadView.SetDeliveries(m.deliveries.Statuses())

	b := m.backend
	send := func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		return sendResultMsg{message: outbound, err: b.SendMessage(ctx, outbound)}
	}

	return m, send
}

func (m Model) handleSendResult(msg sendResultMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.deliveries.Forget(msg.message.ID)
		m.threadView.SetDeliveries(m.deliveries.Statuses())
		return m, m.showErrorToast("Sending message failed")
	}

	m.deliveries.Update(msg.message.ID, model.DeliverySent)
	m.threadView.SetDeliveries(m.deliveries.Statuses())

	s := m.store
	mirror := func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		_ = s.UpsertMessages(ctx, []model.Message{msg.message})
		return nil
	}

	cmds := []tea.Cmd{mirror, m.poller.Refresh()}
	if m.currentView == ViewThread && m.threadView.Scope() == msg.message.Scope() {
		cmds = append(cmds, m.threadView.LoadMessages())
	}
	return m, tea.Batch(cmds...)
}

// --- Helpers ---

// showErrorToast puts an error line in the status banner.
func (m *Model) showErrorToast(text string) tea.Cmd {
	m.toast = text
	m.toastGen++
	gen := m.toastGen
	return tea.Tick(toastDuration, func(time.Time) tea.Msg {
		return toastClearMsg{gen: gen}
	})
}

// mirrorNotificationRead updates the cache copy of a read flip.
func (m Model) mirrorNotificationRead(id string) tea.Cmd {
	s := m.store
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		_ = s.MarkNotificationRead(ctx, id)
		return nil
	}
}

// mirrorAllNotificationsRead updates the cache copy of a mark-all.
func (m Model) mirrorAllNotificationsRead() tea.Cmd {
	s := m.store
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		_ = s.MarkAllNotificationsRead(ctx)
		return nil
	}
}

// mirrorNotificationDelete updates the cache copy of a clear.
func (m Model) mirrorNotificationDelete(id string) tea.Cmd {
	s := m.store
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		_ = s.DeleteNotification(ctx, id)
		return nil
	}
}
