package api

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/verdantex/comms-center/internal/backend"
	"github.com/verdantex/comms-center/internal/model"
)

// Ping verifies the backend is reachable and the token is accepted.
func (c *Client) Ping(ctx context.Context) error {
	return c.get(ctx, "/api/v1/health", nil)
}

// FetchMessages retrieves the ordered message feed for one scope. The
// payloads stay loosely typed; strict narrowing happens in the
// reconciler.
func (c *Client) FetchMessages(
	ctx context.Context,
	scope model.ConversationScope,
) ([]backend.WireMessage, error) {
	path := fmt.Sprintf(
		"/api/v1/projects/%s/messages?counterparty=%s",
		url.PathEscape(scope.ProjectID),
		url.QueryEscape(scope.CounterpartyID),
	)

	var resp messagesResponse
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, fmt.Errorf(
			"fetching messages for project %s: %w", scope.ProjectID, err,
		)
	}
	return resp.Messages, nil
}

// FetchConversations retrieves and normalizes the per-project summaries
// for a user.
func (c *Client) FetchConversations(
	ctx context.Context,
	userID string,
) ([]model.ConversationSummary, error) {
	path := fmt.Sprintf(
		"/api/v1/users/%s/conversations", url.PathEscape(userID),
	)

	var resp conversationsResponse
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, fmt.Errorf(
			"fetching conversations for user %s: %w", userID, err,
		)
	}

	summaries := make([]model.ConversationSummary, 0, len(resp.Conversations))
	for _, wc := range resp.Conversations {
		summaries = append(summaries, toSummary(wc))
	}
	return summaries, nil
}

// SendMessage posts a new message into its conversation scope.
func (c *Client) SendMessage(ctx context.Context, msg model.Message) error {
	path := fmt.Sprintf(
		"/api/v1/projects/%s/messages", url.PathEscape(msg.ProjectID),
	)

	req := sendMessageRequest{
		ID:             msg.ID,
		CounterpartyID: msg.CounterpartyID,
		SenderID:       msg.SenderID,
		SenderName:     msg.SenderName,
		Subject:        msg.Subject,
		Body:           msg.Body,
		Priority:       string(msg.Priority),
	}

	if err := c.post(ctx, path, req, nil); err != nil {
		return fmt.Errorf("sending message %s: %w", msg.ID, err)
	}
	return nil
}

// MarkNotificationRead flips one notification to read.
func (c *Client) MarkNotificationRead(ctx context.Context, id string) error {
	path := fmt.Sprintf(
		"/api/v1/notifications/%s/read", url.PathEscape(id),
	)
	if err := c.post(ctx, path, nil, nil); err != nil {
		return fmt.Errorf("marking notification %s read: %w", id, err)
	}
	return nil
}

// MarkAllNotificationsRead flips every unread notification for a user.
func (c *Client) MarkAllNotificationsRead(
	ctx context.Context,
	userID string,
) error {
	err := c.post(
		ctx, "/api/v1/notifications/read-all",
		markAllReadRequest{UserID: userID}, nil,
	)
	if err != nil {
		return fmt.Errorf(
			"marking all notifications read for %s: %w", userID, err,
		)
	}
	return nil
}

// ClearNotification deletes a notification.
func (c *Client) ClearNotification(ctx context.Context, id string) error {
	path := fmt.Sprintf("/api/v1/notifications/%s", url.PathEscape(id))
	if err := c.delete(ctx, path); err != nil {
		return fmt.Errorf("clearing notification %s: %w", id, err)
	}
	return nil
}

// MarkProjectMessagesRead marks a project's conversation as read for
// the user.
func (c *Client) MarkProjectMessagesRead(
	ctx context.Context,
	projectID string,
	userID string,
) error {
	path := fmt.Sprintf(
		"/api/v1/projects/%s/messages/read", url.PathEscape(projectID),
	)
	err := c.post(ctx, path, markProjectReadRequest{UserID: userID}, nil)
	if err != nil {
		return fmt.Errorf(
			"marking project %s messages read: %w", projectID, err,
		)
	}
	return nil
}

// toSummary narrows a wire conversation into the strict model shape.
// Summaries are display-only, so unparseable fields degrade to zero
// values instead of failing the whole refresh.
func toSummary(wc wireConversation) model.ConversationSummary {
	last := model.Message{
		ID:             wc.LastMessage.ID,
		ProjectID:      wc.ProjectID,
		CounterpartyID: wc.CounterpartyID,
		SenderID:       wc.LastMessage.SenderID,
		SenderName:     wc.LastMessage.SenderName,
		Subject:        wc.LastMessage.Subject,
		Body:           wc.LastMessage.Body,
		Priority:       model.Priority(wc.LastMessage.Priority),
		Read:           wc.LastMessage.Read,
	}
	if !last.Priority.Valid() {
		last.Priority = model.PriorityNormal
	}
	if ts, err := time.Parse(time.RFC3339, wc.LastMessage.CreatedAt); err == nil {
		last.CreatedAt = ts
	}

	return model.ConversationSummary{
		ProjectID:        wc.ProjectID,
		ProjectTitle:     wc.ProjectTitle,
		CounterpartyID:   wc.CounterpartyID,
		CounterpartyName: wc.CounterpartyName,
		LastMessage:      last,
		UnreadCount:      wc.UnreadCount,
		TotalMessages:    wc.TotalMessages,
		Status:           model.VerificationStatus(wc.Status),
		Typing:           wc.Typing,
	}
}

// PublishTyping announces that the user is composing in a conversation.
// The signal is short-lived on the backend; clients re-send it while
// typing continues.
func (c *Client) PublishTyping(
	ctx context.Context,
	scope model.ConversationScope,
	userID string,
) error {
	path := fmt.Sprintf(
		"/api/v1/projects/%s/typing", url.PathEscape(scope.ProjectID),
	)
	req := typingRequest{
		UserID:         userID,
		CounterpartyID: scope.CounterpartyID,
	}
	if err := c.post(ctx, path, req, nil); err != nil {
		return fmt.Errorf(
			"publishing typing for project %s: %w", scope.ProjectID, err,
		)
	}
	return nil
}
