// Package compose is the huh-backed form for writing a message in the
// current conversation.
package compose

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/verdantex/comms-center/internal/model"
	"github.com/verdantex/comms-center/internal/theme"
)

// MessageSubmittedMsg is dispatched when the user submits the form.
type MessageSubmittedMsg struct {
	Scope    model.ConversationScope
	Subject  string
	Body     string
	Priority model.Priority
}

// ComposeCancelMsg is dispatched when the user cancels the form.
type ComposeCancelMsg struct{}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	subject  string
	body     string
	priority model.Priority
}

// Model is the Bubble Tea model for the compose form.
type Model struct {
	form         *huh.Form
	fb           *formBindings
	scope        model.ConversationScope
	projectTitle string
	width        int
	height       int
}

// New creates a new compose form model.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{priority: model.PriorityNormal},
		width:  width,
		height: height,
	}
}

// Start initializes the form for a new message in the given conversation.
func (m *Model) Start(scope model.ConversationScope, projectTitle string) tea.Cmd {
	m.scope = scope
	m.projectTitle = projectTitle
	m.fb.subject = ""
	m.fb.body = ""
	m.fb.priority = model.PriorityNormal
	m.form = m.buildForm()
	return m.form.Init()
}

// Update handles messages for the compose form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		return m, m.handleSubmit()
	}
	if m.form.State == huh.StateAborted {
		return m, func() tea.Msg { return ComposeCancelMsg{} }
	}

	return m, cmd
}

// View renders the compose form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	content := titleStyle.Render("Message · "+m.projectTitle) +
		"\n" + m.form.View()

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(content)
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Subject").
				Placeholder("Optional subject...").
				Value(&m.fb.subject),
			huh.NewText().
				Title("Message").
				Placeholder("Write your message...").
				Value(&m.fb.body).
				Validate(validateRequired("Message")),
			huh.NewSelect[model.Priority]().
				Title("Priority").
				Options(
					huh.NewOption("Low", model.PriorityLow),
					huh.NewOption("Normal", model.PriorityNormal),
					huh.NewOption("High", model.PriorityHigh),
					huh.NewOption("Urgent", model.PriorityUrgent),
				).
				Value(&m.fb.priority),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) handleSubmit() tea.Cmd {
	scope := m.scope
	subject := m.fb.subject
	body := m.fb.body
	priority := m.fb.priority
	return func() tea.Msg {
		return MessageSubmittedMsg{
			Scope:    scope,
			Subject:  subject,
			Body:     body,
			Priority: priority,
		}
	}
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 100 {
		w = 100
	}
	return w
}

func (m Model) formHeight() int {
	h := m.height - 4
	if h < 10 {
		h = 10
	}
	return h
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}
