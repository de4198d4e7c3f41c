package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdantex/comms-center/internal/model"
	"github.com/verdantex/comms-center/tests/testutil"
)

var solarScope = model.ConversationScope{
	ProjectID:      "proj-solar",
	CounterpartyID: "user-ava",
}

func storedMessage(id string, at time.Time) model.Message {
	return model.Message{
		ID:             id,
		ProjectID:      solarScope.ProjectID,
		CounterpartyID: solarScope.CounterpartyID,
		SenderID:       "user-ava",
		SenderName:     "Ava Chen",
		Subject:        "Verification update",
		Body:           "The auditor confirmed the batch.",
		Priority:       model.PriorityNormal,
		CreatedAt:      at,
	}
}

func TestMessagesRoundTripOrderedByArrival(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)

	newer := storedMessage("m2", base.Add(time.Minute))
	older := storedMessage("m1", base)
	other := storedMessage("m3", base)
	other.ProjectID = "proj-wind"

	require.NoError(t, s.UpsertMessages(ctx, []model.Message{newer, older, other}))

	got, err := s.GetMessages(ctx, solarScope)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "m1", got[0].ID)
	assert.Equal(t, "m2", got[1].ID)
	assert.Equal(t, "Ava Chen", got[0].SenderName)
	assert.Equal(t, model.PriorityNormal, got[0].Priority)
	assert.WithinDuration(t, base, got[0].CreatedAt, time.Second)
}

func TestUpsertMessagesReplacesExisting(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)

	m := storedMessage("m1", base)
	require.NoError(t, s.UpsertMessages(ctx, []model.Message{m}))

	m.Read = true
	m.Body = "Edited body."
	require.NoError(t, s.UpsertMessages(ctx, []model.Message{m}))

	got, err := s.GetMessages(ctx, solarScope)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].Read)
	assert.Equal(t, "Edited body.", got[0].Body)
}

func TestUpsertMessagesEmptyBatch(t *testing.T) {
	s := testutil.NewTestStore(t)
	assert.NoError(t, s.UpsertMessages(context.Background(), nil))
}

func storedNotification(id string, at time.Time) model.Notification {
	return model.Notification{
		ID:           id,
		Kind:         model.KindMessage,
		Title:        "Verification update",
		Body:         "The auditor confirmed the batch.",
		ProjectID:    "proj-solar",
		ProjectTitle: "Solar Farm Alpha",
		SenderID:     "user-ava",
		SenderName:   "Ava Chen",
		Priority:     model.PriorityNormal,
		CreatedAt:    at,
	}
}

func TestNotificationsRoundTripNewestFirst(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)

	require.NoError(t, s.CreateNotification(ctx, storedNotification("n1", base)))
	require.NoError(t, s.CreateNotification(ctx, storedNotification("n2", base.Add(time.Minute))))

	got, err := s.GetNotifications(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "n2", got[0].ID)
	assert.Equal(t, "n1", got[1].ID)
	assert.Equal(t, model.KindMessage, got[0].Kind)
	assert.False(t, got[0].Read)
}

func TestMarkNotificationRead(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)

	require.NoError(t, s.CreateNotification(ctx, storedNotification("n1", base)))
	require.NoError(t, s.CreateNotification(ctx, storedNotification("n2", base.Add(time.Minute))))

	require.NoError(t, s.MarkNotificationRead(ctx, "n1"))

	got, err := s.GetNotifications(ctx)
	require.NoError(t, err)
	for _, n := range got {
		assert.Equal(t, n.ID == "n1", n.Read)
	}
}

func TestMarkAllNotificationsRead(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)

	require.NoError(t, s.CreateNotification(ctx, storedNotification("n1", base)))
	require.NoError(t, s.CreateNotification(ctx, storedNotification("n2", base.Add(time.Minute))))

	require.NoError(t, s.MarkAllNotificationsRead(ctx))

	got, err := s.GetNotifications(ctx)
	require.NoError(t, err)
	for _, n := range got {
		assert.True(t, n.Read)
	}
}

func TestDeleteNotification(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)

	require.NoError(t, s.CreateNotification(ctx, storedNotification("n1", base)))
	require.NoError(t, s.DeleteNotification(ctx, "n1"))

	got, err := s.GetNotifications(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)

	// Deleting an absent row is not an error.
	assert.NoError(t, s.DeleteNotification(ctx, "n1"))
}

func storedSummary() model.ConversationSummary {
	base := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	return model.ConversationSummary{
		ProjectID:        "proj-solar",
		ProjectTitle:     "Solar Farm Alpha",
		CounterpartyID:   "user-ava",
		CounterpartyName: "Ava Chen",
		LastMessage:      storedMessage("m1", base),
		UnreadCount:      3,
		TotalMessages:    14,
		Status:           model.VerificationInProgress,
	}
}

func TestConversationsRoundTrip(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	want := storedSummary()
	require.NoError(t, s.UpsertConversations(ctx, []model.ConversationSummary{want}))

	got, err := s.GetConversations(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, want.ProjectID, got[0].ProjectID)
	assert.Equal(t, want.ProjectTitle, got[0].ProjectTitle)
	assert.Equal(t, want.CounterpartyName, got[0].CounterpartyName)
	assert.Equal(t, want.UnreadCount, got[0].UnreadCount)
	assert.Equal(t, want.TotalMessages, got[0].TotalMessages)
	assert.Equal(t, want.Status, got[0].Status)
	assert.Equal(t, want.LastMessage.ID, got[0].LastMessage.ID)
	assert.Equal(t, want.LastMessage.Body, got[0].LastMessage.Body)
}

func TestUpsertConversationsReplacesByProject(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	first := storedSummary()
	require.NoError(t, s.UpsertConversations(ctx, []model.ConversationSummary{first}))

	first.UnreadCount = 0
	first.Status = model.VerificationCompleted
	require.NoError(t, s.UpsertConversations(ctx, []model.ConversationSummary{first}))

	got, err := s.GetConversations(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Zero(t, got[0].UnreadCount)
	assert.Equal(t, model.VerificationCompleted, got[0].Status)
}

func TestMarkConversationReadCascadesToMessages(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)

	require.NoError(t, s.UpsertConversations(ctx, []model.ConversationSummary{storedSummary()}))
	require.NoError(t, s.UpsertMessages(ctx, []model.Message{
		storedMessage("m1", base),
		storedMessage("m2", base.Add(time.Minute)),
	}))

	require.NoError(t, s.MarkConversationRead(ctx, "proj-solar"))

	convs, err := s.GetConversations(ctx)
	require.NoError(t, err)
	require.Len(t, convs, 1)
	assert.Zero(t, convs[0].UnreadCount)

	msgs, err := s.GetMessages(ctx, solarScope)
	require.NoError(t, err)
	for _, m := range msgs {
		assert.True(t, m.Read)
	}
}
