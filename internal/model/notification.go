package model

import "time"

// NotificationKind classifies what produced a notification.
type NotificationKind string

const (
	// KindMessage is a plain new message from a counterparty.
	KindMessage NotificationKind = "message"

	// KindReply is a counterparty response to something the current
	// user sent in the same thread.
	KindReply NotificationKind = "reply"

	// KindUrgent is a high- or urgent-priority message.
	KindUrgent NotificationKind = "urgent"

	// KindSystem covers client-generated notices: connectivity
	// transitions and email-bridge digests.
	KindSystem NotificationKind = "system"
)

// Notification is one entry in the aggregate notification center.
// Derived from message events or system sources; owned by the center
// for its lifetime in the client process.
type Notification struct {
	// ID is the unique identifier for this notification.
	ID string `json:"id"`

	// Kind classifies the notification (use Kind* constants).
	Kind NotificationKind `json:"kind"`

	// Title is the short headline shown in the list.
	Title string `json:"title"`

	// Body is the preview or detail text.
	Body string `json:"body"`

	// ProjectID links back to the carbon project, when applicable.
	ProjectID string `json:"project_id"`

	// ProjectTitle is the display name of the linked project.
	ProjectTitle string `json:"project_title"`

	// SenderID identifies who triggered the notification, if anyone.
	SenderID string `json:"sender_id"`

	// SenderName is the display name of the sender.
	SenderName string `json:"sender_name"`

	// Priority is the severity inherited from the originating message.
	Priority Priority `json:"priority"`

	// Read indicates whether the user has seen this notification.
	Read bool `json:"read"`

	// CreatedAt is when this notification was generated.
	CreatedAt time.Time `json:"created_at"`
}

// IsUrgent reports whether the notification should count toward the
// urgent badge while unread.
func (n Notification) IsUrgent() bool {
	return n.Priority == PriorityUrgent
}
