// Package notiflist renders the notification center: newest first,
// with per-item read and clear actions.
package notiflist

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verdantex/comms-center/internal/keys"
	"github.com/verdantex/comms-center/internal/model"
	"github.com/verdantex/comms-center/internal/theme"
)

// MarkReadRequestMsg asks the parent to mark one notification read.
type MarkReadRequestMsg struct {
	NotificationID string
}

// MarkAllReadRequestMsg asks the parent to mark every notification read.
type MarkAllReadRequestMsg struct{}

// ClearRequestMsg asks the parent to remove one notification.
type ClearRequestMsg struct {
	NotificationID string
}

// OpenConversationMsg asks the parent to jump to the notification's
// conversation.
type OpenConversationMsg struct {
	NotificationID string
	ProjectID      string
}

// NotificationItem wraps a model.Notification for a bubbles/list.
type NotificationItem struct {
	Notification model.Notification
}

// FilterValue returns the string used for fuzzy filtering.
func (i NotificationItem) FilterValue() string {
	return i.Notification.Title
}

// ItemDelegate renders one notification row.
type ItemDelegate struct{}

// Height returns the number of lines each item takes.
func (d ItemDelegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d ItemDelegate) Spacing() int { return 0 }

// Update handles per-item messages (unused for now).
func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single notification row.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	ni, ok := item.(NotificationItem)
	if !ok {
		return
	}

	n := ni.Notification
	isSelected := index == m.Index()

	marker := "●"
	if n.Read {
		marker = " "
	}

	kindBadge := theme.KindLabelStyle(string(n.Kind)).Render(string(n.Kind))

	sender := ""
	if n.SenderName != "" {
		sender = lipgloss.NewStyle().
			Foreground(theme.ColorGray).
			Render(" from " + n.SenderName)
	}

	timeStr := lipgloss.NewStyle().
		Foreground(theme.ColorGray).
		Render(relativeTime(n.CreatedAt))

	line := fmt.Sprintf(
		"%s %s %s%s  %s",
		marker, kindBadge, n.Title, sender, timeStr,
	)

	if !n.Read {
		line = theme.UnreadStyle.Render(line)
	}

	if isSelected {
		line = theme.SelectedItemStyle.Render(line)
	} else {
		line = theme.ListItemStyle.Render(line)
	}

	fmt.Fprint(w, line)
}

// Model is the notification center view component.
type Model struct {
	list   list.Model
	keys   *keys.KeyMap
	width  int
	height int
}

// New creates a new notification center model.
func New(k *keys.KeyMap, width, height int) Model {
	l := list.New([]list.Item{}, ItemDelegate{}, width, height-2)
	l.Title = "Notifications"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	return Model{
		list:   l,
		keys:   k,
		width:  width,
		height: height,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// SetNotifications replaces the visible rows.
func (m *Model) SetNotifications(ns []model.Notification) tea.Cmd {
	items := make([]list.Item, len(ns))
	for i, n := range ns {
		items[i] = NotificationItem{Notification: n}
	}
	return m.list.SetItems(items)
}

// Update handles messages for the notification center view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Select):
			item, ok := m.selected()
			if !ok || item.Notification.ProjectID == "" {
				return m, nil
			}
			n := item.Notification
			return m, func() tea.Msg {
				return OpenConversationMsg{
					NotificationID: n.ID,
					ProjectID:      n.ProjectID,
				}
			}

		case key.Matches(msg, m.keys.MarkRead):
			item, ok := m.selected()
			if !ok || item.Notification.Read {
				return m, nil
			}
			id := item.Notification.ID
			return m, func() tea.Msg {
				return MarkReadRequestMsg{NotificationID: id}
			}

		case key.Matches(msg, m.keys.MarkAllRead):
			return m, func() tea.Msg {
				return MarkAllReadRequestMsg{}
			}

		case key.Matches(msg, m.keys.Clear):
			item, ok := m.selected()
			if !ok {
				return m, nil
			}
			id := item.Notification.ID
			return m, func() tea.Msg {
				return ClearRequestMsg{NotificationID: id}
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// selected returns the currently focused notification item.
func (m Model) selected() (NotificationItem, bool) {
	item, ok := m.list.SelectedItem().(NotificationItem)
	return item, ok
}

// View renders the notification center view.
func (m Model) View() string {
	if len(m.list.Items()) == 0 {
		return lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray).
			Render("No notifications.")
	}

	return m.list.View()
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
}

// relativeTime returns a human-friendly relative time string.
func relativeTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
