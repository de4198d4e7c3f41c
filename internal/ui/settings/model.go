// Package settings is the configuration screen: backend connection,
// email bridge, and display options, persisted to the config file.
package settings

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/verdantex/comms-center/internal/backend"
	"github.com/verdantex/comms-center/internal/credential"
	"github.com/verdantex/comms-center/internal/keys"
	"github.com/verdantex/comms-center/internal/model"
	"github.com/verdantex/comms-center/internal/theme"
)

// Mode represents the current state of the settings view.
type Mode int

const (
	ModeMenu           Mode = iota // Top-level settings menu
	ModeFormBackend                // Backend connection form
	ModeFormEmail                  // Email bridge form
	ModeValidating                 // Testing the backend connection
	ModeValidateResult             // Show validation result
)

// DoneMsg signals the settings view should close.
type DoneMsg struct{}

// SavedMsg signals the configuration was saved; the parent re-wires
// its collaborators from the new config.
type SavedMsg struct {
	Config model.AppConfig
}

// ValidateResultMsg carries the result of a backend connection test.
type ValidateResultMsg struct {
	Err error
}

// savedInternalMsg is sent after the config file is written.
type savedInternalMsg struct {
	cfg model.AppConfig
	err error
}

// menu entries in display order.
var menuEntries = []string{
	"Backend connection",
	"Email bridge",
	"Test backend connection",
}

// Model is the Bubble Tea model for the settings view.
type Model struct {
	mode        Mode
	cfg         model.AppConfig
	pinger      backend.Backend
	selectedIdx int

	backendForm *huh.Form
	emailForm   *huh.Form

	// Form field values (huh binds to these)
	formBaseURL  string
	formUserID   string
	formUserName string
	formInterval string
	formToken    string
	formNative   bool

	formEnabled      bool
	formIMAPHost     string
	formIMAPPort     string
	formUsername     string
	formPassword     string
	formTLS          bool
	formMailbox      string
	formMailInterval string

	validating bool
	validError error
	spinner    spinner.Model

	statusMsg string

	keys          *keys.KeyMap
	width, height int
}

// New creates a new settings view model.
func New(cfg model.AppConfig, b backend.Backend, k *keys.KeyMap, width, height int) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		mode:    ModeMenu,
		cfg:     cfg,
		pinger:  b,
		keys:    k,
		spinner: sp,
		width:   width,
		height:  height,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// SetConfig replaces the config shown by the view.
func (m *Model) SetConfig(cfg model.AppConfig) {
	m.cfg = cfg
}

// Update handles messages and dispatches based on current mode.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case savedInternalMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Error saving config: %v", msg.err)
			m.mode = ModeMenu
			return m, nil
		}
		m.cfg = msg.cfg
		m.statusMsg = "Settings saved"
		m.mode = ModeMenu
		return m, func() tea.Msg { return SavedMsg{Config: msg.cfg} }

	case ValidateResultMsg:
		m.validating = false
		m.validError = msg.Err
		m.mode = ModeValidateResult
		return m, nil

	case spinner.TickMsg:
		if m.mode == ModeValidating {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	return m.updateActiveForm(msg)
}

// handleKeyMsg processes key messages based on the current mode.
func (m Model) handleKeyMsg(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch m.mode {
	case ModeMenu:
		return m.handleMenuKeys(msg)
	case ModeFormBackend:
		return m.updateBackendForm(msg)
	case ModeFormEmail:
		return m.updateEmailForm(msg)
	case ModeValidateResult:
		if msg.String() == "enter" || msg.String() == "esc" {
			m.mode = ModeMenu
			m.validError = nil
		}
		return m, nil
	case ModeValidating:
		if msg.String() == "esc" {
			m.mode = ModeMenu
			m.validating = false
		}
		return m, nil
	}
	return m, nil
}

// handleMenuKeys processes key events in the top-level menu.
func (m Model) handleMenuKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		return m, func() tea.Msg { return DoneMsg{} }

	case key.Matches(msg, m.keys.Down):
		m.selectedIdx = (m.selectedIdx + 1) % len(menuEntries)
		return m, nil

	case key.Matches(msg, m.keys.Up):
		m.selectedIdx--
		if m.selectedIdx < 0 {
			m.selectedIdx = len(menuEntries) - 1
		}
		return m, nil

	case msg.String() == "enter":
		switch m.selectedIdx {
		case 0:
			m.startBackendForm()
			return m, m.backendForm.Init()
		case 1:
			m.startEmailForm()
			return m, m.emailForm.Init()
		case 2:
			m.mode = ModeValidating
			m.validating = true
			return m, tea.Batch(m.spinner.Tick, m.validateBackend())
		}
	}

	return m, nil
}

// updateActiveForm dispatches non-key messages to the active form.
func (m Model) updateActiveForm(msg tea.Msg) (Model, tea.Cmd) {
	switch m.mode {
	case ModeFormBackend:
		return m.updateBackendForm(msg)
	case ModeFormEmail:
		return m.updateEmailForm(msg)
	}
	return m, nil
}

// --- Backend form ---

func (m *Model) startBackendForm() {
	m.formBaseURL = m.cfg.Backend.BaseURL
	m.formUserID = m.cfg.Backend.UserID
	m.formUserName = m.cfg.Backend.UserName
	m.formInterval = strconv.Itoa(m.cfg.Backend.PollIntervalSec)
	m.formToken = "" // Never pre-fill credentials
	m.formNative = m.cfg.Display.NativeNotifications
	m.mode = ModeFormBackend
	m.backendForm = m.buildBackendForm()
}

func (m *Model) buildBackendForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Base URL").
				Description("Marketplace API URL (e.g., https://api.verdantex.io)").
				Placeholder("https://api.verdantex.io").
				Value(&m.formBaseURL).
				Validate(validateURL),
			huh.NewInput().
				Title("User ID").
				Description("Your marketplace account ID").
				Value(&m.formUserID).
				Validate(validateRequired("User ID")),
			huh.NewInput().
				Title("Display Name").
				Value(&m.formUserName),
			huh.NewInput().
				Title("Poll Interval").
				Description("Seconds between feed polls").
				Placeholder("30").
				Value(&m.formInterval).
				Validate(validateNumber),
			huh.NewInput().
				Title("API Token").
				Description("Leave blank to keep the stored token").
				EchoMode(huh.EchoModePassword).
				Value(&m.formToken),
			huh.NewConfirm().
				Title("Native Notifications").
				Description("Mirror urgent notifications to the desktop").
				Affirmative("Yes").
				Negative("No").
				Value(&m.formNative),
		),
	).WithWidth(m.formWidth())
}

func (m Model) updateBackendForm(msg tea.Msg) (Model, tea.Cmd) {
	if m.backendForm == nil {
		return m, nil
	}

	mdl, cmd := m.backendForm.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.backendForm = f
	}

	if m.backendForm.State == huh.StateCompleted {
		return m.saveBackendForm()
	}
	if m.backendForm.State == huh.StateAborted {
		m.mode = ModeMenu
		return m, nil
	}

	return m, cmd
}

func (m Model) saveBackendForm() (Model, tea.Cmd) {
	cfg := m.cfg
	cfg.Backend.BaseURL = m.formBaseURL
	cfg.Backend.UserID = m.formUserID
	cfg.Backend.UserName = m.formUserName
	if n, err := strconv.Atoi(m.formInterval); err == nil && n > 0 {
		cfg.Backend.PollIntervalSec = n
	}
	cfg.Display.NativeNotifications = m.formNative

	if m.formToken != "" {
		if err := credential.Set(credential.KeyAPIToken, m.formToken); err != nil {
			m.statusMsg = fmt.Sprintf("Error saving credential: %v", err)
			m.mode = ModeMenu
			return m, nil
		}
	}

	return m, saveConfig(cfg)
}

// --- Email bridge form ---

func (m *Model) startEmailForm() {
	m.formEnabled = m.cfg.Email.Enabled
	m.formIMAPHost = m.cfg.Email.Host
	m.formIMAPPort = m.cfg.Email.Port
	m.formUsername = m.cfg.Email.Username
	m.formPassword = "" // Never pre-fill credentials
	m.formTLS = m.cfg.Email.TLS
	m.formMailbox = m.cfg.Email.Mailbox
	m.formMailInterval = strconv.Itoa(m.cfg.Email.PollIntervalSec)
	m.mode = ModeFormEmail
	m.emailForm = m.buildEmailForm()
}

func (m *Model) buildEmailForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Enable Email Bridge").
				Description("Surface registry inbox mail as notifications").
				Affirmative("Yes").
				Negative("No").
				Value(&m.formEnabled),
			huh.NewInput().
				Title("IMAP Host").
				Placeholder("imap.example.com").
				Value(&m.formIMAPHost),
			huh.NewInput().
				Title("IMAP Port").
				Placeholder("993").
				Value(&m.formIMAPPort),
			huh.NewInput().
				Title("Username").
				Placeholder("verifier@example.com").
				Value(&m.formUsername),
			huh.NewInput().
				Title("Password").
				Description("Leave blank to keep the stored password").
				EchoMode(huh.EchoModePassword).
				Value(&m.formPassword),
			huh.NewConfirm().
				Title("Use TLS").
				Affirmative("Yes").
				Negative("No").
				Value(&m.formTLS),
			huh.NewInput().
				Title("Mailbox").
				Placeholder("INBOX").
				Value(&m.formMailbox),
			huh.NewInput().
				Title("Poll Interval").
				Description("Seconds between inbox polls").
				Placeholder("300").
				Value(&m.formMailInterval).
				Validate(validateNumber),
		),
	).WithWidth(m.formWidth())
}

func (m Model) updateEmailForm(msg tea.Msg) (Model, tea.Cmd) {
	if m.emailForm == nil {
		return m, nil
	}

	mdl, cmd := m.emailForm.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.emailForm = f
	}

	if m.emailForm.State == huh.StateCompleted {
		return m.saveEmailForm()
	}
	if m.emailForm.State == huh.StateAborted {
		m.mode = ModeMenu
		return m, nil
	}

	return m, cmd
}

func (m Model) saveEmailForm() (Model, tea.Cmd) {
	cfg := m.cfg
	cfg.Email.Enabled = m.formEnabled
	cfg.Email.Host = m.formIMAPHost
	cfg.Email.Port = m.formIMAPPort
	cfg.Email.Username = m.formUsername
	cfg.Email.TLS = m.formTLS
	cfg.Email.Mailbox = m.formMailbox
	if n, err := strconv.Atoi(m.formMailInterval); err == nil && n > 0 {
		cfg.Email.PollIntervalSec = n
	}

	if m.formPassword != "" {
		if err := credential.Set(credential.KeyIMAPPassword, m.formPassword); err != nil {
			m.statusMsg = fmt.Sprintf("Error saving credential: %v", err)
			m.mode = ModeMenu
			return m, nil
		}
	}

	return m, saveConfig(cfg)
}

// --- Validation ---

// validateBackend tests the backend connection with a health check.
func (m Model) validateBackend() tea.Cmd {
	b := m.pinger
	return func() tea.Msg {
		err := b.Ping(context.Background())
		return ValidateResultMsg{Err: err}
	}
}

// saveConfig returns a command persisting the config file.
func saveConfig(cfg model.AppConfig) tea.Cmd {
	return func() tea.Msg {
		err := model.SaveConfig(model.DefaultConfigPath(), &cfg)
		return savedInternalMsg{cfg: cfg, err: err}
	}
}

// --- View ---

// View renders the settings UI based on the current mode.
func (m Model) View() string {
	switch m.mode {
	case ModeMenu:
		return m.viewMenu()
	case ModeFormBackend:
		return m.viewForm(m.backendForm)
	case ModeFormEmail:
		return m.viewForm(m.emailForm)
	case ModeValidating:
		return m.viewValidating()
	case ModeValidateResult:
		return m.viewValidateResult()
	default:
		return ""
	}
}

func (m Model) viewMenu() string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	b.WriteString(titleStyle.Render("Settings"))
	b.WriteString("\n\n")

	for i, entry := range menuEntries {
		if i == m.selectedIdx {
			b.WriteString(theme.SelectedItemStyle.Render(entry))
		} else {
			b.WriteString(theme.ListItemStyle.Render(entry))
		}
		b.WriteString("\n")
	}

	if m.statusMsg != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().
			Foreground(theme.ColorYellow).
			Italic(true).
			Render(m.statusMsg))
	}

	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().
		Foreground(theme.ColorGray).
		Render("enter open | esc back"))

	return lipgloss.NewStyle().
		Padding(1, 2).
		Width(m.width).
		Height(m.height).
		Render(b.String())
}

func (m Model) viewForm(f *huh.Form) string {
	if f == nil {
		return ""
	}

	return lipgloss.NewStyle().
		Padding(1, 2).
		Width(m.width).
		Height(m.height).
		Render(f.View())
}

func (m Model) viewValidating() string {
	style := lipgloss.NewStyle().
		Padding(1, 2).
		Width(m.width).
		Height(m.height)

	content := fmt.Sprintf(
		"%s Testing connection...\n\nPress esc to cancel.",
		m.spinner.View(),
	)

	return style.Render(content)
}

func (m Model) viewValidateResult() string {
	style := lipgloss.NewStyle().
		Padding(1, 2).
		Width(m.width).
		Height(m.height)

	var content string
	if m.validError != nil {
		content = lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.ColorRed).
			Render("Connection failed") + "\n\n" +
			m.validError.Error() + "\n\n" +
			lipgloss.NewStyle().Foreground(theme.ColorGray).
				Render("enter/esc back")
	} else {
		content = lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.ColorGreen).
			Render("Connection successful") + "\n\n" +
			lipgloss.NewStyle().Foreground(theme.ColorGray).
				Render("enter/esc back")
	}

	return style.Render(content)
}

// --- Helpers ---

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
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

// --- Validators ---

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}

func validateURL(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("URL is required")
	}
	parsed, err := url.Parse(s)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("URL must include scheme and host (e.g., https://example.com)")
	}
	return nil
}

func validateNumber(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	if _, err := strconv.Atoi(strings.TrimSpace(s)); err != nil {
		return fmt.Errorf("must be a number")
	}
	return nil
}
