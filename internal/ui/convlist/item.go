package convlist

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verdantex/comms-center/internal/model"
	"github.com/verdantex/comms-center/internal/theme"
)

// ConversationItem wraps a model.ConversationSummary so it can be used
// in a bubbles/list.
type ConversationItem struct {
	Summary model.ConversationSummary
}

// FilterValue returns the string used for fuzzy filtering.
func (i ConversationItem) FilterValue() string {
	return i.Summary.ProjectTitle
}

// Title returns the project title for the list.
func (i ConversationItem) Title() string {
	return i.Summary.ProjectTitle
}

// Description returns a short summary line for the list.
func (i ConversationItem) Description() string {
	parts := []string{
		i.Summary.CounterpartyName,
		string(i.Summary.Status),
		relativeTime(i.Summary.LastMessage.CreatedAt),
	}
	return strings.Join(parts, " | ")
}

// ItemDelegate implements list.ItemDelegate for rendering
// conversation rows.
type ItemDelegate struct{}

// Height returns the number of lines each item takes.
func (d ItemDelegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d ItemDelegate) Spacing() int { return 0 }

// Update handles per-item messages (unused for now).
func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single conversation row.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	ci, ok := item.(ConversationItem)
	if !ok {
		return
	}

	s := ci.Summary
	isSelected := index == m.Index()

	statusBadge := theme.StatusStyle(string(s.Status)).Render(string(s.Status))

	priBadge := ""
	if s.LastMessage.Priority.AtLeast(model.PriorityHigh) {
		priBadge = theme.PriorityStyle(string(s.LastMessage.Priority)).
			Render(" " + strings.ToUpper(string(s.LastMessage.Priority)))
	}

	unreadBadge := ""
	if s.UnreadCount > 0 {
		unreadBadge = theme.UnreadStyle.Render(
			fmt.Sprintf(" (%d unread)", s.UnreadCount),
		)
	}

	subject := s.LastMessage.Subject
	if subject == "" {
		subject = firstLine(s.LastMessage.Body)
	}
	preview := lipgloss.NewStyle().
		Foreground(theme.ColorGray).
		Render(truncate(subject, 40))

	timeStr := lipgloss.NewStyle().
		Foreground(theme.ColorGray).
		Render(relativeTime(s.LastMessage.CreatedAt))

	line := fmt.Sprintf(
		"%s %s · %s%s%s  %s  %s",
		statusBadge, s.ProjectTitle, s.CounterpartyName,
		priBadge, unreadBadge, preview, timeStr,
	)

	if isSelected {
		line = theme.SelectedItemStyle.Render(line)
	} else if s.UnreadCount > 0 {
		line = theme.ListItemStyle.Bold(true).Render(line)
	} else {
		line = theme.ListItemStyle.Render(line)
	}

	fmt.Fprint(w, line)
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
		mins := int(d.Minutes())
		if mins == 1 {
			return "1m ago"
		}
		return fmt.Sprintf("%dm ago", mins)
	case d < 24*time.Hour:
		hrs := int(d.Hours())
		if hrs == 1 {
			return "1h ago"
		}
		return fmt.Sprintf("%dh ago", hrs)
	case d < 7*24*time.Hour:
		days := int(d.Hours() / 24)
		if days == 1 {
			return "1d ago"
		}
		return fmt.Sprintf("%dd ago", days)
	default:
		weeks := int(d.Hours() / 24 / 7)
		if weeks == 1 {
			return "1w ago"
		}
		return fmt.Sprintf("%dw ago", weeks)
	}
}

// firstLine returns the first line of a multi-line body.
func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return s[:idx]
	}
	return s
}

// truncate caps a string at n runes.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "…"
}
