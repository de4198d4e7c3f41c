package convo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdantex/comms-center/internal/model"
)

func summaryFixtures() []model.ConversationSummary {
	base := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	return []model.ConversationSummary{
		{
			ProjectID:        "proj-solar",
			ProjectTitle:     "Solar Farm Alpha",
			CounterpartyID:   "user-ava",
			CounterpartyName: "Ava Chen",
			LastMessage: model.Message{
				Subject:   "Verification schedule",
				Body:      "Site visit is booked for Thursday.",
				Priority:  model.PriorityNormal,
				CreatedAt: base.Add(2 * time.Hour),
			},
			UnreadCount:   2,
			TotalMessages: 14,
			Status:        model.VerificationInProgress,
		},
		{
			ProjectID:        "proj-mangrove",
			ProjectTitle:     "Mangrove Restoration",
			CounterpartyID:   "user-ben",
			CounterpartyName: "Ben Okafor",
			LastMessage: model.Message{
				Subject:   "Missing documents",
				Body:      "We still need the land tenure certificates.",
				Priority:  model.PriorityUrgent,
				CreatedAt: base.Add(time.Hour),
			},
			UnreadCount:   5,
			TotalMessages: 30,
			Status:        model.VerificationAssigned,
		},
		{
			ProjectID:        "proj-wind",
			ProjectTitle:     "Highland Wind",
			CounterpartyID:   "user-cara",
			CounterpartyName: "Cara Diaz",
			LastMessage: model.Message{
				Subject:   "Credits issued",
				Body:      "Batch 7 has been issued to the registry.",
				Priority:  model.PriorityNormal,
				CreatedAt: base.Add(3 * time.Hour),
				Read:      true,
			},
			UnreadCount:   0,
			TotalMessages: 8,
			Status:        model.VerificationCompleted,
		},
	}
}

func projectIDs(ss []model.ConversationSummary) []string {
	ids := make([]string, len(ss))
	for i, s := range ss {
		ids[i] = s.ProjectID
	}
	return ids
}

func TestFilteredDefaultSortsMostRecentFirst(t *testing.T) {
	a := NewAggregator()
	a.SetSummaries(summaryFixtures())

	got := projectIDs(a.Filtered())
	assert.Equal(t, []string{"proj-wind", "proj-solar", "proj-mangrove"}, got)
}

func TestSearchMatchesAnyField(t *testing.T) {
	a := NewAggregator()
	a.SetSummaries(summaryFixtures())

	// Project title, case-insensitive.
	a.SetSearchTerm("solar")
	assert.Equal(t, []string{"proj-solar"}, projectIDs(a.Filtered()))

	// Counterparty name.
	a.SetSearchTerm("Ava")
	assert.Equal(t, []string{"proj-solar"}, projectIDs(a.Filtered()))

	// Last message body.
	a.SetSearchTerm("land tenure")
	assert.Equal(t, []string{"proj-mangrove"}, projectIDs(a.Filtered()))

	// Last message subject.
	a.SetSearchTerm("credits issued")
	assert.Equal(t, []string{"proj-wind"}, projectIDs(a.Filtered()))

	a.SetSearchTerm("geothermal")
	assert.Empty(t, a.Filtered())

	a.SetSearchTerm("")
	assert.Len(t, a.Filtered(), 3)
}

func TestStatusFilters(t *testing.T) {
	a := NewAggregator()
	a.SetSummaries(summaryFixtures())

	a.SetStatusFilter(FilterUnread)
	assert.ElementsMatch(t,
		[]string{"proj-solar", "proj-mangrove"},
		projectIDs(a.Filtered()),
	)

	a.SetStatusFilter(FilterUrgent)
	assert.Equal(t, []string{"proj-mangrove"}, projectIDs(a.Filtered()))

	a.SetStatusFilter(FilterActive)
	assert.Equal(t, []string{"proj-solar"}, projectIDs(a.Filtered()))

	a.SetStatusFilter(FilterAll)
	assert.Len(t, a.Filtered(), 3)
}

func TestSearchAndFilterCompose(t *testing.T) {
	a := NewAggregator()
	a.SetSummaries(summaryFixtures())

	a.SetSearchTerm("e")
	a.SetStatusFilter(FilterUnread)

	got := projectIDs(a.Filtered())
	assert.ElementsMatch(t, []string{"proj-solar", "proj-mangrove"}, got)
}

func TestSortModes(t *testing.T) {
	a := NewAggregator()
	a.SetSummaries(summaryFixtures())

	a.SetSortBy(SortProject)
	assert.Equal(t,
		[]string{"proj-wind", "proj-mangrove", "proj-solar"},
		projectIDs(a.Filtered()),
	)

	a.SetSortBy(SortUnread)
	assert.Equal(t,
		[]string{"proj-mangrove", "proj-solar", "proj-wind"},
		projectIDs(a.Filtered()),
	)
}

func TestApplyProjectRead(t *testing.T) {
	a := NewAggregator()
	a.SetSummaries(summaryFixtures())
	require.Equal(t, 7, a.TotalUnread())

	require.True(t, a.ApplyProjectRead("proj-mangrove"))
	assert.Equal(t, 2, a.TotalUnread())

	s, ok := a.Summary("proj-mangrove")
	require.True(t, ok)
	assert.Zero(t, s.UnreadCount)
	assert.True(t, s.LastMessage.Read)

	assert.False(t, a.ApplyProjectRead("proj-unknown"))
}

func TestUrgentConversations(t *testing.T) {
	a := NewAggregator()
	a.SetSummaries(summaryFixtures())

	// Only mangrove is both unread and high-or-urgent priority.
	assert.Equal(t, 1, a.UrgentConversations())

	require.True(t, a.ApplyProjectRead("proj-mangrove"))
	assert.Zero(t, a.UrgentConversations())
}

func TestSetSummariesCopies(t *testing.T) {
	a := NewAggregator()
	in := summaryFixtures()
	a.SetSummaries(in)

	in[0].UnreadCount = 99
	s, ok := a.Summary("proj-solar")
	require.True(t, ok)
	assert.Equal(t, 2, s.UnreadCount)
}
