package backend

import (
	"context"
	"errors"
	"fmt"

	"github.com/verdantex/comms-center/internal/model"
)

// AuthError indicates that authentication has failed or expired against
// the marketplace backend. It is returned when a 401 response is
// received.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth error: %s", e.Message)
}

// IsAuthError reports whether err (or any error in its chain) is an
// AuthError.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// WireMessage is the loosely-typed message payload as it arrives from
// the transport. Timestamps and priorities are plain strings here;
// narrowing into a strict model.Message happens in the reconciler so
// malformed data is rejected before it can touch the watermark.
type WireMessage struct {
	ID             string `json:"id"`
	ProjectID      string `json:"project_id"`
	CounterpartyID string `json:"counterparty_id"`
	SenderID       string `json:"sender_id"`
	SenderName     string `json:"sender_name"`
	Subject        string `json:"subject"`
	Body           string `json:"body"`
	Priority       string `json:"priority"`
	CreatedAt      string `json:"created_at"`
	Read           bool   `json:"read"`
}

// Backend is the contract with the message/notification persistence
// collaborator. Push-or-poll semantics are the collaborator's business;
// this client polls.
type Backend interface {
	// Ping verifies the backend is reachable. It is the reachability
	// signal consumed by the connection monitor.
	Ping(ctx context.Context) error

	// FetchMessages retrieves the ordered, append-only message feed
	// for one conversation scope.
	FetchMessages(
		ctx context.Context,
		scope model.ConversationScope,
	) ([]WireMessage, error)

	// FetchConversations retrieves the per-project conversation
	// summaries for a user.
	FetchConversations(
		ctx context.Context,
		userID string,
	) ([]model.ConversationSummary, error)

	// SendMessage submits a new message to its conversation scope.
	SendMessage(ctx context.Context, msg model.Message) error

	// PublishTyping announces that the user is composing in a
	// conversation. Counterparty signals come back on the conversation
	// summaries.
	PublishTyping(
		ctx context.Context,
		scope model.ConversationScope,
		userID string,
	) error

	// MarkNotificationRead flips one notification to read.
	MarkNotificationRead(ctx context.Context, id string) error

	// MarkAllNotificationsRead flips every unread notification for a
	// user in a single call.
	MarkAllNotificationsRead(ctx context.Context, userID string) error

	// ClearNotification deletes a notification.
	ClearNotification(ctx context.Context, id string) error

	// MarkProjectMessagesRead marks every message in a project's
	// conversation as read for the user.
	MarkProjectMessagesRead(
		ctx context.Context,
		projectID string,
		userID string,
	) error
}
