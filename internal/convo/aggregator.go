// Package convo maintains the per-project conversation summaries and
// their search/filter/sort presentation state.
package convo

import (
	"sort"
	"strings"

	"github.com/verdantex/comms-center/internal/model"
)

// StatusFilter selects which conversations are shown.
type StatusFilter string

const (
	FilterAll    StatusFilter = "all"
	FilterUnread StatusFilter = "unread"
	FilterUrgent StatusFilter = "urgent"
	FilterActive StatusFilter = "active"
)

// SortMode orders the filtered conversations.
type SortMode string

const (
	SortRecent  SortMode = "recent"
	SortProject SortMode = "project"
	SortUnread  SortMode = "unread"
)

// Aggregator holds the wholesale-refreshed summaries plus the user's
// current search term, status filter, and sort mode. Single-owner:
// only the UI task mutates it.
type Aggregator struct {
	summaries    []model.ConversationSummary
	searchTerm   string
	statusFilter StatusFilter
	sortBy       SortMode
}

// NewAggregator creates an aggregator showing everything, most recent
// first.
func NewAggregator() *Aggregator {
	return &Aggregator{
		statusFilter: FilterAll,
		sortBy:       SortRecent,
	}
}

// SetSummaries replaces the summary list wholesale, as delivered by a
// backend refresh.
func (a *Aggregator) SetSummaries(s []model.ConversationSummary) {
	a.summaries = make([]model.ConversationSummary, len(s))
	copy(a.summaries, s)
}

// Summaries returns a copy of the unfiltered list.
func (a *Aggregator) Summaries() []model.ConversationSummary {
	out := make([]model.ConversationSummary, len(a.summaries))
	copy(out, a.summaries)
	return out
}

// Summary returns the summary for one project.
func (a *Aggregator) Summary(projectID string) (model.ConversationSummary, bool) {
	for _, s := range a.summaries {
		if s.ProjectID == projectID {
			return s, true
		}
	}
	return model.ConversationSummary{}, false
}

// SetSearchTerm updates the free-text search term.
func (a *Aggregator) SetSearchTerm(term string) {
	a.searchTerm = term
}

// SearchTerm returns the current search term.
func (a *Aggregator) SearchTerm() string {
	return a.searchTerm
}

// SetStatusFilter updates the status filter.
func (a *Aggregator) SetStatusFilter(f StatusFilter) {
	a.statusFilter = f
}

// StatusFilterMode returns the current status filter.
func (a *Aggregator) StatusFilterMode() StatusFilter {
	return a.statusFilter
}

// SetSortBy updates the sort mode.
func (a *Aggregator) SetSortBy(mode SortMode) {
	a.sortBy = mode
}

// SortBy returns the current sort mode.
func (a *Aggregator) SortBy() SortMode {
	return a.sortBy
}

// Filtered returns the summaries matching the current search term and
// status filter, ordered by the current sort mode.
func (a *Aggregator) Filtered() []model.ConversationSummary {
	var out []model.ConversationSummary
	for _, s := range a.summaries {
		if !a.matchesSearch(s) {
			continue
		}
		if !a.matchesStatus(s) {
			continue
		}
		out = append(out, s)
	}

	switch a.sortBy {
	case SortProject:
		sort.SliceStable(out, func(i, j int) bool {
			return strings.ToLower(out[i].ProjectTitle) <
				strings.ToLower(out[j].ProjectTitle)
		})
	case SortUnread:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].UnreadCount > out[j].UnreadCount
		})
	default: // SortRecent
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].LastMessage.CreatedAt.After(
				out[j].LastMessage.CreatedAt,
			)
		})
	}

	return out
}

// matchesSearch applies case-insensitive substring matching against
// project title, counterparty name, and the last message's subject and
// body. Any one match qualifies.
func (a *Aggregator) matchesSearch(s model.ConversationSummary) bool {
	if a.searchTerm == "" {
		return true
	}
	term := strings.ToLower(a.searchTerm)

	for _, field := range []string{
		s.ProjectTitle,
		s.CounterpartyName,
		s.LastMessage.Subject,
		s.LastMessage.Body,
	} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

// matchesStatus applies the status filter.
func (a *Aggregator) matchesStatus(s model.ConversationSummary) bool {
	switch a.statusFilter {
	case FilterUnread:
		return s.UnreadCount > 0
	case FilterUrgent:
		return s.LastMessage.Priority.AtLeast(model.PriorityHigh)
	case FilterActive:
		return s.Status.Active()
	default:
		return true
	}
}

// ApplyProjectRead zeroes a conversation's unread count after the
// backend confirmed the scoped mark-read. Returns false when the
// project is unknown; a failed backend call never reaches this point,
// leaving the summary unchanged.
func (a *Aggregator) ApplyProjectRead(projectID string) bool {
	for i := range a.summaries {
		if a.summaries[i].ProjectID == projectID {
			a.summaries[i].UnreadCount = 0
			a.summaries[i].LastMessage.Read = true
			return true
		}
	}
	return false
}

// TotalUnread is the total unread message count across all
// conversations, for the dashboard header.
func (a *Aggregator) TotalUnread() int {
	total := 0
	for _, s := range a.summaries {
		total += s.UnreadCount
	}
	return total
}

// UrgentConversations counts conversations whose last message is
// high or urgent priority and still unread.
func (a *Aggregator) UrgentConversations() int {
	count := 0
	for _, s := range a.summaries {
		if s.UnreadCount > 0 &&
			s.LastMessage.Priority.AtLeast(model.PriorityHigh) {
			count++
		}
	}
	return count
}
