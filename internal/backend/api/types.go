package api

import "github.com/verdantex/comms-center/internal/backend"

// errorResponse is the backend's standard error envelope.
type errorResponse struct {
	Error string `json:"error"`
}

// messagesResponse wraps a conversation feed page.
type messagesResponse struct {
	Messages []backend.WireMessage `json:"messages"`
}

// conversationsResponse wraps the per-project summary list.
type conversationsResponse struct {
	Conversations []wireConversation `json:"conversations"`
}

// wireConversation is a conversation summary as returned by the API.
type wireConversation struct {
	ProjectID        string              `json:"project_id"`
	ProjectTitle     string              `json:"project_title"`
	CounterpartyID   string              `json:"counterparty_id"`
	CounterpartyName string              `json:"counterparty_name"`
	LastMessage      backend.WireMessage `json:"last_message"`
	UnreadCount      int                 `json:"unread_count"`
	TotalMessages    int                 `json:"total_messages"`
	Status           string              `json:"status"`
	Typing           []string            `json:"typing,omitempty"`
}

// sendMessageRequest is the payload for posting a new message.
type sendMessageRequest struct {
	ID             string `json:"id"`
	CounterpartyID string `json:"counterparty_id"`
	SenderID       string `json:"sender_id"`
	SenderName     string `json:"sender_name"`
	Subject        string `json:"subject"`
	Body           string `json:"body"`
	Priority       string `json:"priority"`
}

// typingRequest announces that a user is composing in a conversation.
type typingRequest struct {
	UserID         string `json:"user_id"`
	CounterpartyID string `json:"counterparty_id"`
}

// markProjectReadRequest scopes a bulk mark-read to one user.
type markProjectReadRequest struct {
	UserID string `json:"user_id"`
}

// markAllReadRequest scopes a notification mark-all to one user.
type markAllReadRequest struct {
	UserID string `json:"user_id"`
}
