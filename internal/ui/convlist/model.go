// Package convlist renders the conversation inbox: one row per
// verification project, searchable and filterable.
package convlist

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verdantex/comms-center/internal/convo"
	"github.com/verdantex/comms-center/internal/keys"
	"github.com/verdantex/comms-center/internal/model"
	"github.com/verdantex/comms-center/internal/theme"
)

// SelectedConversationMsg is sent when the user opens a conversation.
type SelectedConversationMsg struct {
	Scope        model.ConversationScope
	ProjectTitle string
}

// statusFilters defines the filter cycle bound to the filter key.
var statusFilters = []convo.StatusFilter{
	convo.FilterAll,
	convo.FilterUnread,
	convo.FilterUrgent,
	convo.FilterActive,
}

// sortModes defines the sort cycle bound to Tab.
var sortModes = []convo.SortMode{
	convo.SortRecent,
	convo.SortProject,
	convo.SortUnread,
}

// Model is the conversation list view component.
type Model struct {
	list        list.Model
	agg         *convo.Aggregator
	keys        *keys.KeyMap
	filterIndex int
	sortIndex   int
	searchMode  bool
	searchInput textinput.Model
	width       int
	height      int
}

// New creates a new conversation list model over the given aggregator.
func New(agg *convo.Aggregator, k *keys.KeyMap, width, height int) Model {
	delegate := ItemDelegate{}
	l := list.New([]list.Item{}, delegate, width, height-2)
	l.Title = "Conversations"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	si := textinput.New()
	si.Placeholder = "search conversations..."
	si.Prompt = "/ "
	si.Width = width - 4

	return Model{
		list:        l,
		agg:         agg,
		keys:        k,
		searchInput: si,
		width:       width,
		height:      height,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Reload rebuilds the visible rows from the aggregator. Call after any
// change to the underlying summaries, search term, filter, or sort.
func (m *Model) Reload() tea.Cmd {
	filtered := m.agg.Filtered()
	items := make([]list.Item, len(filtered))
	for i, s := range filtered {
		items[i] = ConversationItem{Summary: s}
	}
	return m.list.SetItems(items)
}

// Update handles messages for the conversation list view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if m.searchMode {
			return m.handleSearchKeys(msg)
		}
		return m.handleNormalKeys(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// handleSearchKeys processes key input while in search mode. The search
// narrows live on every keystroke.
func (m Model) handleSearchKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searchMode = false
		return m, nil

	case "esc":
		m.searchMode = false
		m.searchInput.Reset()
		m.agg.SetSearchTerm("")
		return m, m.Reload()
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	m.agg.SetSearchTerm(m.searchInput.Value())
	return m, tea.Batch(cmd, m.Reload())
}

// handleNormalKeys processes key input in normal (non-search) mode.
func (m Model) handleNormalKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Select):
		item, ok := m.list.SelectedItem().(ConversationItem)
		if !ok {
			return m, nil
		}
		return m, func() tea.Msg {
			return SelectedConversationMsg{
				Scope:        item.Summary.Scope(),
				ProjectTitle: item.Summary.ProjectTitle,
			}
		}

	case key.Matches(msg, m.keys.Search):
		m.searchMode = true
		m.searchInput.Reset()
		return m, m.searchInput.Focus()

	case key.Matches(msg, m.keys.CycleFilter):
		m.filterIndex = (m.filterIndex + 1) % len(statusFilters)
		m.agg.SetStatusFilter(statusFilters[m.filterIndex])
		return m, m.Reload()

	case key.Matches(msg, m.keys.CycleSort):
		m.sortIndex = (m.sortIndex + 1) % len(sortModes)
		m.agg.SetSortBy(sortModes[m.sortIndex])
		return m, m.Reload()
	}

	// Delegate to the list for navigation keys (up/down/pgup/pgdn)
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the conversation list view.
func (m Model) View() string {
	var bars []string

	if m.searchMode {
		bars = append(bars, lipgloss.NewStyle().
			Foreground(theme.ColorWhite).
			Padding(0, 1).
			Render(m.searchInput.View()))
	}

	modeLine := lipgloss.NewStyle().
		Foreground(theme.ColorGray).
		Padding(0, 1).
		Render(fmt.Sprintf(
			"filter: %s  sort: %s",
			m.agg.StatusFilterMode(), m.agg.SortBy(),
		))
	bars = append(bars, modeLine)

	if len(m.list.Items()) == 0 {
		bars = append(bars, m.renderEmptyState())
	} else {
		bars = append(bars, m.list.View())
	}

	return lipgloss.JoinVertical(lipgloss.Left, bars...)
}

// renderEmptyState shows guidance text when no conversations match.
func (m Model) renderEmptyState() string {
	hasFilters := m.agg.SearchTerm() != "" ||
		m.agg.StatusFilterMode() != convo.FilterAll

	style := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height - 2).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	if hasFilters {
		return style.Render(
			"No matching conversations.\nTry adjusting the search or filter.",
		)
	}

	return style.Render("No conversations yet.")
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-3)
	m.searchInput.Width = width - 4
}
