// Package thread renders one conversation's message history, newest at
// the bottom, with outbound delivery states and a typing indicator.
package thread

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verdantex/comms-center/internal/keys"
	"github.com/verdantex/comms-center/internal/model"
	"github.com/verdantex/comms-center/internal/store"
	"github.com/verdantex/comms-center/internal/theme"
)

// BackMsg signals the parent to navigate back to the conversation list.
type BackMsg struct{}

// ReplyRequestMsg asks the parent to open the compose form for the
// current conversation.
type ReplyRequestMsg struct {
	Scope        model.ConversationScope
	ProjectTitle string
}

// MessagesLoadedMsg carries the cached message history for one scope.
type MessagesLoadedMsg struct {
	Scope    model.ConversationScope
	Messages []model.Message
}

// Model is the conversation thread view component.
type Model struct {
	scope        model.ConversationScope
	projectTitle string
	userID       string
	messages     []model.Message
	deliveries   map[string]model.DeliveryStatus
	typingUsers  []string
	viewport     viewport.Model
	store        store.Store
	keys         *keys.KeyMap
	width        int
	height       int
	loading      bool
}

// New creates a new thread view model.
func New(s store.Store, userID string, k *keys.KeyMap, width, height int) Model {
	vp := viewport.New(width, height-2)
	vp.Style = lipgloss.NewStyle()

	return Model{
		userID:     userID,
		deliveries: map[string]model.DeliveryStatus{},
		viewport:   vp,
		store:      s,
		keys:       k,
		width:      width,
		height:     height,
	}
}

// Init returns the initial command for the thread view.
func (m Model) Init() tea.Cmd {
	return nil
}

// Open switches the view to a new conversation and returns a command
// loading its cached history.
func (m *Model) Open(scope model.ConversationScope, projectTitle string) tea.Cmd {
	m.scope = scope
	m.projectTitle = projectTitle
	m.messages = nil
	m.typingUsers = nil
	m.loading = true
	return m.LoadMessages()
}

// Scope returns the conversation currently shown.
func (m Model) Scope() model.ConversationScope {
	return m.scope
}

// LoadMessages returns a tea.Cmd that reads the conversation history
// from the local cache.
func (m Model) LoadMessages() tea.Cmd {
	scope := m.scope
	s := m.store
	return func() tea.Msg {
		msgs, err := s.GetMessages(context.Background(), scope)
		if err != nil {
			return MessagesLoadedMsg{Scope: scope}
		}
		return MessagesLoadedMsg{Scope: scope, Messages: msgs}
	}
}

// Update handles messages for the thread view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case MessagesLoadedMsg:
		if msg.Scope != m.scope {
			return m, nil
		}
		m.messages = msg.Messages
		m.loading = false
		m.viewport.SetContent(m.renderContent())
		m.viewport.GotoBottom()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Back):
			return m, func() tea.Msg {
				return BackMsg{}
			}

		case key.Matches(msg, m.keys.Reply):
			scope := m.scope
			title := m.projectTitle
			return m, func() tea.Msg {
				return ReplyRequestMsg{Scope: scope, ProjectTitle: title}
			}
		}
	}

	// Delegate to viewport for scrolling (j/k, up/down, pgup/pgdn)
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// SetDeliveries updates the outbound delivery states and re-renders.
func (m *Model) SetDeliveries(d map[string]model.DeliveryStatus) {
	m.deliveries = d
	m.viewport.SetContent(m.renderContent())
}

// SetTypingUsers updates the typing indicator line.
func (m *Model) SetTypingUsers(users []string) {
	m.typingUsers = users
}

// View renders the thread view.
func (m Model) View() string {
	if m.loading {
		return lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray).
			Render("Loading conversation...")
	}

	sections := []string{m.viewport.View()}

	if line := m.typingLine(); line != "" {
		sections = append(sections, line)
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// typingLine formats the typing indicator, or returns "" when nobody
// is typing.
func (m Model) typingLine() string {
	switch len(m.typingUsers) {
	case 0:
		return ""
	case 1:
		return theme.TypingStyle.Render(
			fmt.Sprintf("%s is typing…", m.typingUsers[0]),
		)
	default:
		return theme.TypingStyle.Render(
			fmt.Sprintf("%s are typing…", strings.Join(m.typingUsers, ", ")),
		)
	}
}

// renderContent builds the full thread content for the viewport.
func (m Model) renderContent() string {
	if len(m.messages) == 0 {
		return lipgloss.NewStyle().
			Foreground(theme.ColorGray).
			Italic(true).
			Render("No messages in this conversation yet.")
	}

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	senderStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorBlue)
	ownStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorGreen)
	timeStyle := lipgloss.NewStyle().Foreground(theme.ColorGray)
	sepStyle := lipgloss.NewStyle().Foreground(theme.ColorSubtle)

	separator := sepStyle.Render(strings.Repeat("─", min(m.width-4, 80)))

	sections := []string{titleStyle.Render(m.projectTitle), separator, ""}

	for _, msg := range m.messages {
		own := msg.SenderID == m.userID

		nameStyle := senderStyle
		name := msg.SenderName
		if own {
			nameStyle = ownStyle
			name = "You"
		}

		header := fmt.Sprintf(
			"%s  %s",
			nameStyle.Render(name),
			timeStyle.Render(msg.CreatedAt.Format("2006-01-02 15:04")),
		)

		if msg.Priority.AtLeast(model.PriorityHigh) {
			header += "  " + theme.PriorityStyle(string(msg.Priority)).
				Render(strings.ToUpper(string(msg.Priority)))
		}

		if own {
			if status, ok := m.deliveries[msg.ID]; ok {
				header += "  " + theme.DeliveryStyle(string(status)).
					Render(deliveryGlyph(status)+" "+string(status))
			}
		}

		sections = append(sections, header)
		if msg.Subject != "" {
			sections = append(sections, titleStyle.Render(msg.Subject))
		}
		sections = append(sections, msg.Body, "")
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// deliveryGlyph returns the checkmark glyph for a delivery status.
func deliveryGlyph(status model.DeliveryStatus) string {
	switch status {
	case model.DeliverySending:
		return "◌"
	case model.DeliverySent:
		return "✓"
	case model.DeliveryDelivered:
		return "✓✓"
	case model.DeliveryRead:
		return "✓✓"
	default:
		return "?"
	}
}

// SetSize updates the thread view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height - 2
}
