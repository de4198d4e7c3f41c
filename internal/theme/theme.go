package theme

import "github.com/charmbracelet/lipgloss"

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	ColorBlue    = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	ColorGreen   = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	ColorYellow  = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	ColorRed     = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	ColorOrange  = lipgloss.AdaptiveColor{Dark: "#FFA94D", Light: "#C05621"}
	ColorMagenta = lipgloss.AdaptiveColor{Dark: "#CC5DE8", Light: "#805AD5"}
	ColorGray    = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	ColorWhite   = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
	ColorSubtle  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#CBD5E0"}
	ColorBorder  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#E2E8F0"}
)

// HeaderStyle is used for top-level section headers and the application title.
var HeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorBlue).
	Padding(0, 1)

// StatusBarStyle is used for the bottom status bar.
var StatusBarStyle = lipgloss.NewStyle().
	Foreground(ColorWhite).
	Background(ColorSubtle).
	Padding(0, 1)

// ThreadPanelStyle wraps the conversation thread content area.
var ThreadPanelStyle = lipgloss.NewStyle().
	Padding(1, 2).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// ListItemStyle is the base style for items in a list.
var ListItemStyle = lipgloss.NewStyle().
	PaddingLeft(2)

// SelectedItemStyle highlights the currently focused list item.
var SelectedItemStyle = lipgloss.NewStyle().
	PaddingLeft(1).
	Bold(true).
	Foreground(ColorBlue).
	Border(lipgloss.NormalBorder(), false, false, false, true).
	BorderForeground(ColorBlue)

// HelpStyle is used for keyboard shortcut hints and help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Italic(true)

// BorderStyle provides a standard rounded border for panels.
var BorderStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// UnreadStyle marks unread counts and unread list entries.
var UnreadStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorYellow)

// ToastStyle renders the transient in-app notification banner.
var ToastStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorMagenta).
	Padding(0, 1)

// TypingStyle renders the typing indicator line in a thread.
var TypingStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Italic(true)

// StatusStyle returns a color-coded style for the given verification status.
func StatusStyle(status string) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true).Padding(0, 1)

	switch status {
	case "assigned":
		return base.Foreground(ColorBlue)
	case "accepted":
		return base.Foreground(ColorMagenta)
	case "in_progress":
		return base.Foreground(ColorYellow)
	case "completed":
		return base.Foreground(ColorGreen)
	case "rejected":
		return base.Foreground(ColorRed)
	default:
		return base.Foreground(ColorGray)
	}
}

// PriorityStyle returns a color-coded style for the given message priority.
func PriorityStyle(priority string) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)

	switch priority {
	case "urgent":
		return base.Foreground(ColorRed)
	case "high":
		return base.Foreground(ColorOrange)
	case "normal":
		return base.Foreground(ColorYellow)
	case "low":
		return base.Foreground(ColorBlue)
	default:
		return base.Foreground(ColorGray)
	}
}

// KindLabelStyle returns a color-coded style for the given notification kind.
func KindLabelStyle(kind string) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true).Padding(0, 1)

	switch kind {
	case "urgent":
		return base.Foreground(ColorRed)
	case "reply":
		return base.Foreground(ColorMagenta)
	case "message":
		return base.Foreground(ColorBlue)
	case "system":
		return base.Foreground(ColorGreen)
	default:
		return base.Foreground(ColorGray)
	}
}

// DeliveryStyle returns a color-coded style for an outbound delivery status.
func DeliveryStyle(status string) lipgloss.Style {
	base := lipgloss.NewStyle()

	switch status {
	case "sending":
		return base.Foreground(ColorGray)
	case "sent":
		return base.Foreground(ColorBlue)
	case "delivered":
		return base.Foreground(ColorYellow)
	case "read":
		return base.Foreground(ColorGreen)
	default:
		return base.Foreground(ColorGray)
	}
}

// ConnectionStyle returns a style for the connection badge in the header.
func ConnectionStyle(connected bool) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	if connected {
		return base.Foreground(ColorGreen)
	}
	return base.Foreground(ColorRed)
}
