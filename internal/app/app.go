// Package app is the root Bubble Tea model: it routes views, owns the
// notification center, conversation aggregator, connection monitor,
// per-conversation reconcilers, and presence/delivery trackers, and
// drives every timer from the single update loop.
package app

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verdantex/comms-center/internal/backend"
	"github.com/verdantex/comms-center/internal/bridge/email"
	"github.com/verdantex/comms-center/internal/conn"
	"github.com/verdantex/comms-center/internal/convo"
	"github.com/verdantex/comms-center/internal/delivery"
	"github.com/verdantex/comms-center/internal/feed"
	"github.com/verdantex/comms-center/internal/keys"
	"github.com/verdantex/comms-center/internal/model"
	"github.com/verdantex/comms-center/internal/notify"
	"github.com/verdantex/comms-center/internal/presence"
	"github.com/verdantex/comms-center/internal/reconcile"
	"github.com/verdantex/comms-center/internal/store"
	"github.com/verdantex/comms-center/internal/ui"
	"github.com/verdantex/comms-center/internal/ui/command"
	"github.com/verdantex/comms-center/internal/ui/compose"
	"github.com/verdantex/comms-center/internal/ui/convlist"
	helpview "github.com/verdantex/comms-center/internal/ui/help"
	"github.com/verdantex/comms-center/internal/ui/notiflist"
	settingsview "github.com/verdantex/comms-center/internal/ui/settings"
	"github.com/verdantex/comms-center/internal/ui/thread"
)

// toastDuration is how long a toast stays in the status banner.
const toastDuration = 4 * time.Second

// typingPublishInterval throttles outbound typing signals while the
// user keeps composing.
const typingPublishInterval = 2 * time.Second

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewConversations ViewState = iota
	ViewNotifications
	ViewThread
	ViewCompose
	ViewHelp
	ViewCommand
	ViewSettings
)

// Model is the root Bubble Tea model.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	cfg          model.AppConfig
	backend      backend.Backend
	store        store.Store
	keys         *keys.KeyMap

	center      *notify.Center
	agg         *convo.Aggregator
	monitor     *conn.Monitor
	reconcilers map[model.ConversationScope]*reconcile.Reconciler
	dispatcher  *notify.Dispatcher
	toaster     *Toaster
	typing      *presence.Tracker
	deliveries  *delivery.Tracker
	poller      *feed.Poller
	bridge      *email.Bridge

	convList     convlist.Model
	notifList    notiflist.Model
	threadView   thread.Model
	composeView  compose.Model
	helpView     helpview.Model
	commandView  command.Model
	settingsView settingsview.Model

	ready            bool
	startedAt        time.Time
	connGen          int
	typingTimer      bool
	toast            string
	toastGen         int
	lastTypingSent   time.Time
	authErrorMessage string
}

// New creates the root application model. bridge may be nil when the
// email bridge is disabled.
func New(
	cfg model.AppConfig,
	b backend.Backend,
	s store.Store,
	bridge *email.Bridge,
) Model {
	k := keys.DefaultKeyMap()
	toaster := NewToaster()
	agg := convo.NewAggregator()

	interval := time.Duration(cfg.Backend.PollIntervalSec) * time.Second

	return Model{
		currentView: ViewConversations,
		cfg:         cfg,
		backend:     b,
		store:       s,
		keys:        k,

		center:      notify.NewCenter(),
		agg:         agg,
		monitor:     conn.NewMonitor(),
		reconcilers: map[model.ConversationScope]*reconcile.Reconciler{},
		dispatcher:  notify.NewDispatcher(toaster, cfg.Display.NativeNotifications),
		toaster:     toaster,
		typing:      presence.NewTracker(),
		deliveries:  delivery.NewTracker(),
		poller:      feed.New(b, s, cfg.Backend.UserID, interval),
		bridge:      bridge,

		convList:     convlist.New(agg, k, 80, 24),
		notifList:    notiflist.New(k, 80, 24),
		threadView:   thread.New(s, cfg.Backend.UserID, k, 80, 24),
		composeView:  compose.New(80, 24),
		helpView:     helpview.New(k, 80, 24),
		commandView:  command.New(80, 24),
		settingsView: settingsview.New(cfg, b, k, 80, 24),

		startedAt: time.Now(),
	}
}

// Init starts the feed poller, the email bridge, and the connection
// check cycle, and warms the conversation list from the cache.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.poller.Start(),
		m.runConnCheck(),
		m.loadCachedConversations(),
	}
	if m.bridge != nil {
		cmds = append(cmds, m.bridge.Start())
	}
	return tea.Batch(cmds...)
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		w := m.layout.ContentWidth()
		h := m.layout.ContentHeight()
		m.convList.SetSize(w, h)
		m.notifList.SetSize(w, h)
		m.threadView.SetSize(w, h)
		m.composeView.SetSize(w, h)
		m.helpView.SetSize(w, h)
		m.commandView.SetSize(w, h)
		m.settingsView.SetSize(w, h)
		// Forward to active view so huh forms can calculate their layout.
		return m.updateActiveView(msg)

	case cachedConversationsMsg:
		// Only a warm start; the first poll refreshes wholesale.
		if len(m.agg.Summaries()) == 0 && len(msg.summaries) > 0 {
			m.agg.SetSummaries(msg.summaries)
			return m, m.convList.Reload()
		}
		return m, nil

	case feed.ConversationsMsg:
		return m.handleConversations(msg)

	case feed.SnapshotMsg:
		return m.handleSnapshot(msg)

	case email.DigestMsg:
		return m.handleDigest(msg)

	case connTickMsg:
		if msg.gen != m.connGen {
			return m, nil
		}
		return m, m.runConnCheck()

	case connCheckedMsg:
		return m.handleConnChecked(msg)

	case typingTickMsg:
		return m.handleTypingTick(msg)

	case toastClearMsg:
		if msg.gen == m.toastGen {
			m.toast = ""
		}
		return m, nil

	case typingPublishedMsg:
		// Fire-and-forget; a lost typing signal self-heals on the next
		// keystroke.
		return m, nil

	case convlist.SelectedConversationMsg:
		return m.openConversation(msg.Scope, msg.ProjectTitle)

	case notiflist.OpenConversationMsg:
		return m.openFromNotification(msg)

	case notiflist.MarkReadRequestMsg:
		return m, m.markNotificationRead(msg.NotificationID)

	case notiflist.MarkAllReadRequestMsg:
		return m, m.markAllNotificationsRead()

	case notiflist.ClearRequestMsg:
		return m, m.clearNotification(msg.NotificationID)

	case markReadResultMsg:
		return m.handleMarkReadResult(msg)

	case markAllReadResultMsg:
		return m.handleMarkAllReadResult(msg)

	case clearResultMsg:
		return m.handleClearResult(msg)

	case markProjectReadResultMsg:
		return m.handleMarkProjectReadResult(msg)

	case thread.BackMsg:
		m.currentView = ViewConversations
		return m, m.convList.Reload()

	case thread.ReplyRequestMsg:
		m.previousView = m.currentView
		m.currentView = ViewCompose
		return m, m.composeView.Start(msg.Scope, msg.ProjectTitle)

	case compose.MessageSubmittedMsg:
		return m.handleComposeSubmit(msg)

	case compose.ComposeCancelMsg:
		m.currentView = m.previousView
		return m, nil

	case sendResultMsg:
		return m.handleSendResult(msg)

	case command.CommandMsg:
		m.currentView = m.previousView
		return m, m.executeCommand(string(msg))

	case settingsview.DoneMsg:
		m.currentView = ViewConversations
		return m, nil

	case settingsview.SavedMsg:
		m.cfg = msg.Config
		m.dispatcher = notify.NewDispatcher(
			m.toaster, m.cfg.Display.NativeNotifications,
		)
		for _, r := range m.reconcilers {
			r.SetDispatcher(m.dispatcher)
		}
		return m, nil

	case tea.KeyMsg:
		if mdl, cmd, handled := m.handleGlobalKeys(msg); handled {
			return mdl, cmd
		}
		if m.currentView == ViewCompose {
			if cmd := m.recordOwnTyping(); cmd != nil {
				next, viewCmd := m.updateActiveView(msg)
				return next, tea.Batch(cmd, viewCmd)
			}
		}
	}

	return m.updateActiveView(msg)
}

// handleGlobalKeys processes keys that work regardless of view. The
// third return value reports whether the key was consumed.
func (m Model) handleGlobalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	// Text-entry views own their keystrokes.
	typingView := m.currentView == ViewCompose ||
		m.currentView == ViewCommand ||
		m.currentView == ViewSettings

	switch msg.String() {
	case "ctrl+c":
		m.shutdown()
		return m, tea.Quit, true

	case "q":
		if m.currentView == ViewConversations {
			m.shutdown()
			return m, tea.Quit, true
		}

	case "?":
		if typingView {
			break
		}
		if m.currentView == ViewHelp {
			m.currentView = m.previousView
			return m, nil, true
		}
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return m, nil, true

	case ":":
		if typingView {
			break
		}
		if m.currentView == ViewCommand {
			m.currentView = m.previousView
			return m, nil, true
		}
		m.previousView = m.currentView
		m.currentView = ViewCommand
		return m, m.commandView.Focus(), true

	case "N":
		if m.currentView == ViewConversations {
			m.previousView = m.currentView
			m.currentView = ViewNotifications
			return m, m.notifList.SetNotifications(m.center.Notifications()), true
		}
		if m.currentView == ViewNotifications {
			m.currentView = ViewConversations
			return m, m.convList.Reload(), true
		}

	case "esc":
		if m.currentView == ViewNotifications || m.currentView == ViewHelp ||
			m.currentView == ViewCommand {
			m.currentView = ViewConversations
			return m, m.convList.Reload(), true
		}

	case "r":
		if m.currentView == ViewConversations ||
			m.currentView == ViewNotifications {
			return m, m.poller.Refresh(), true
		}

	case "s":
		if m.currentView == ViewConversations {
			m.previousView = m.currentView
			m.currentView = ViewSettings
			m.settingsView.SetConfig(m.cfg)
			return m, m.settingsView.Init(), true
		}
	}

	return m, nil, false
}

// shutdown stops the background workers.
func (m *Model) shutdown() {
	m.poller.Stop()
	if m.bridge != nil {
		m.bridge.Stop()
	}
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewConversations:
		m.convList, cmd = m.convList.Update(msg)
	case ViewNotifications:
		m.notifList, cmd = m.notifList.Update(msg)
	case ViewThread:
		m.threadView, cmd = m.threadView.Update(msg)
	case ViewCompose:
		m.composeView, cmd = m.composeView.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	case ViewCommand:
		m.commandView, cmd = m.commandView.Update(msg)
	case ViewSettings:
		m.settingsView, cmd = m.settingsView.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.layout.RenderHeader(m.headerTitle(), m.headerStatus())
	content := m.renderContent()
	statusBar := m.layout.RenderStatusBar(m.statusLine())

	return m.layout.RenderWithFrame(header, content, statusBar)
}

// headerTitle shows the app name with unread and urgent counts.
func (m Model) headerTitle() string {
	title := "Comms Center"
	if unread := m.center.UnreadCount(); unread > 0 {
		title = fmt.Sprintf("%s [%d unread]", title, unread)
	}
	if urgent := m.center.UrgentCount(); urgent > 0 {
		title = fmt.Sprintf("%s [%d urgent]", title, urgent)
	}
	return title
}

// headerStatus combines connection state and poller state.
func (m Model) headerStatus() string {
	state := m.monitor.State()
	if !state.Connected {
		if state.ReconnectAttempts >= model.MaxReconnectAttempts {
			return "offline (retrying every 30s)"
		}
		return fmt.Sprintf(
			"offline (attempt %d/%d)",
			state.ReconnectAttempts, model.MaxReconnectAttempts,
		)
	}

	switch m.poller.GetStatus().State {
	case feed.Running:
		return "online · syncing"
	case feed.Error:
		return "online · sync error"
	default:
		return "online"
	}
}

// renderContent returns the rendered string for the current view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewConversations:
		return m.convList.View()
	case ViewNotifications:
		return m.notifList.View()
	case ViewThread:
		return m.threadView.View()
	case ViewCompose:
		return m.composeView.View()
	case ViewHelp:
		return m.helpView.View()
	case ViewCommand:
		return m.commandView.View()
	case ViewSettings:
		return m.settingsView.View()
	default:
		return ""
	}
}

// statusLine picks what the bottom bar shows: toast, auth error, or
// key hints for the current view.
func (m Model) statusLine() string {
	if m.toast != "" {
		return "🔔 " + m.toast
	}
	if m.authErrorMessage != "" &&
		(m.currentView == ViewConversations || m.currentView == ViewNotifications) {
		return m.authErrorMessage
	}

	switch m.currentView {
	case ViewNotifications:
		return "m read | M read all | d clear | enter open | N back"
	case ViewThread:
		return "n reply | j/k scroll | esc back"
	case ViewCompose:
		return "enter submit | esc cancel"
	case ViewHelp:
		return "? close help | esc back"
	case ViewCommand:
		return ": close | enter execute | esc back"
	case ViewSettings:
		return "enter open | esc back"
	default:
		return "q quit | ? help | N notifications | / search | f filter | tab sort"
	}
}

// executeCommand handles a command string from the command palette.
func (m *Model) executeCommand(cmd string) tea.Cmd {
	switch cmd {
	case "refresh", "sync":
		return m.poller.Refresh()
	case "quit", "q":
		m.shutdown()
		return tea.Quit
	case "notifications":
		m.previousView = m.currentView
		m.currentView = ViewNotifications
		return m.notifList.SetNotifications(m.center.Notifications())
	case "read all":
		return m.markAllNotificationsRead()
	case "settings", "configure", "config":
		m.previousView = m.currentView
		m.currentView = ViewSettings
		m.settingsView.SetConfig(m.cfg)
		return m.settingsView.Init()
	case "unread":
		m.agg.SetStatusFilter(convo.FilterUnread)
		return m.convList.Reload()
	case "urgent":
		m.agg.SetStatusFilter(convo.FilterUrgent)
		return m.convList.Reload()
	case "active":
		m.agg.SetStatusFilter(convo.FilterActive)
		return m.convList.Reload()
	case "clear filters", "clear":
		m.agg.SetSearchTerm("")
		m.agg.SetStatusFilter(convo.FilterAll)
		return m.convList.Reload()
	default:
		return nil
	}
}
