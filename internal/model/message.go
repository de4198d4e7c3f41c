package model

import "time"

// Priority is the severity label carried by messages and notifications.
// It drives sorting and whether a native desktop notification is attempted.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// priorityRank orders priorities from least to most severe.
var priorityRank = map[Priority]int{
	PriorityLow:    0,
	PriorityNormal: 1,
	PriorityHigh:   2,
	PriorityUrgent: 3,
}

// Valid reports whether p is one of the known priority labels.
func (p Priority) Valid() bool {
	_, ok := priorityRank[p]
	return ok
}

// AtLeast reports whether p is as severe as other or more so.
func (p Priority) AtLeast(other Priority) bool {
	return priorityRank[p] >= priorityRank[other]
}

// ConversationScope identifies a single message thread: one project,
// one counterparty (the developer or verifier on the other side).
type ConversationScope struct {
	ProjectID      string `json:"project_id"`
	CounterpartyID string `json:"counterparty_id"`
}

// Message is a single message within a conversation scope. The backend
// owns the record; the client only ever holds a read-only snapshot.
type Message struct {
	// ID is the unique identifier for this message.
	ID string `json:"id"`

	// ProjectID is the carbon project this conversation belongs to.
	ProjectID string `json:"project_id"`

	// CounterpartyID identifies the other participant in the thread.
	CounterpartyID string `json:"counterparty_id"`

	// SenderID identifies who authored the message.
	SenderID string `json:"sender_id"`

	// SenderName is the sender's display name.
	SenderName string `json:"sender_name"`

	// Subject is the short summary line.
	Subject string `json:"subject"`

	// Body is the full message text.
	Body string `json:"body"`

	// Priority is the severity label (use Priority* constants).
	Priority Priority `json:"priority"`

	// CreatedAt is when the backend accepted the message. The feed is
	// append-only and ordered by this timestamp.
	CreatedAt time.Time `json:"created_at"`

	// Read indicates whether the current user has read the message.
	Read bool `json:"read"`
}

// Scope returns the conversation scope this message belongs to.
func (m Message) Scope() ConversationScope {
	return ConversationScope{
		ProjectID:      m.ProjectID,
		CounterpartyID: m.CounterpartyID,
	}
}

// DeliveryStatus labels how far a sent message has progressed.
type DeliveryStatus string

const (
	DeliverySending   DeliveryStatus = "sending"
	DeliverySent      DeliveryStatus = "sent"
	DeliveryDelivered DeliveryStatus = "delivered"
	DeliveryRead      DeliveryStatus = "read"
)

// deliveryRank orders delivery states from earliest to final.
var deliveryRank = map[DeliveryStatus]int{
	DeliverySending:   0,
	DeliverySent:      1,
	DeliveryDelivered: 2,
	DeliveryRead:      3,
}

// Valid reports whether s is one of the known delivery states.
func (s DeliveryStatus) Valid() bool {
	_, ok := deliveryRank[s]
	return ok
}

// Rank returns the position of s in the sending→read progression.
func (s DeliveryStatus) Rank() int {
	return deliveryRank[s]
}
