package model

// VerificationStatus tracks where a project's verification engagement
// stands. Conversations are grouped and filtered by this status.
type VerificationStatus string

const (
	VerificationAssigned   VerificationStatus = "assigned"
	VerificationAccepted   VerificationStatus = "accepted"
	VerificationInProgress VerificationStatus = "in_progress"
	VerificationCompleted  VerificationStatus = "completed"
	VerificationRejected   VerificationStatus = "rejected"
)

// Active reports whether the engagement is in a working state.
func (s VerificationStatus) Active() bool {
	return s == VerificationInProgress || s == VerificationAccepted
}

// ConversationSummary is the per-project rollup shown in the
// conversation list. The backend refreshes it wholesale; only
// UnreadCount is locally correctable after a confirmed mark-read.
type ConversationSummary struct {
	// ProjectID is the carbon project this thread belongs to.
	ProjectID string `json:"project_id"`

	// ProjectTitle is the project's display name.
	ProjectTitle string `json:"project_title"`

	// CounterpartyID identifies the other participant.
	CounterpartyID string `json:"counterparty_id"`

	// CounterpartyName is the other participant's display name.
	CounterpartyName string `json:"counterparty_name"`

	// LastMessage is the most recent message in the thread.
	LastMessage Message `json:"last_message"`

	// UnreadCount is how many messages the current user has not read.
	UnreadCount int `json:"unread_count"`

	// TotalMessages is the total thread length.
	TotalMessages int `json:"total_messages"`

	// Status is the project's verification status.
	Status VerificationStatus `json:"status"`

	// Typing lists participants currently composing in this thread.
	// Transient presence data; never persisted.
	Typing []string `json:"typing,omitempty"`
}

// Scope returns the conversation scope for this summary.
func (c ConversationSummary) Scope() ConversationScope {
	return ConversationScope{
		ProjectID:      c.ProjectID,
		CounterpartyID: c.CounterpartyID,
	}
}
