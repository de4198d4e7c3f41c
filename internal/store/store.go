package store

import (
	"context"

	"github.com/verdantex/comms-center/internal/model"
)

// Store defines the local cache for messages, notifications, and
// conversation summaries. The cache mirrors the backend so the client
// can warm-start (and keep rendering) while offline; it is never the
// source of truth.
type Store interface {
	// === Messages ===

	UpsertMessages(ctx context.Context, msgs []model.Message) error
	GetMessages(
		ctx context.Context,
		scope model.ConversationScope,
	) ([]model.Message, error)

	// === Notifications ===

	CreateNotification(ctx context.Context, n model.Notification) error
	GetNotifications(ctx context.Context) ([]model.Notification, error)
	MarkNotificationRead(ctx context.Context, id string) error
	MarkAllNotificationsRead(ctx context.Context) error
	DeleteNotification(ctx context.Context, id string) error

	// === Conversation summaries ===

	UpsertConversations(
		ctx context.Context,
		summaries []model.ConversationSummary,
	) error
	GetConversations(ctx context.Context) ([]model.ConversationSummary, error)
	MarkConversationRead(ctx context.Context, projectID string) error
}
