package model

import "time"

// MaxReconnectAttempts caps exponential backoff growth. Past the cap
// the monitor keeps polling on its fixed interval without scheduling
// further backoff retries.
const MaxReconnectAttempts = 5

// ConnectionState is the monitor's view of backend reachability.
type ConnectionState struct {
	// Connected reports whether the last check reached the backend.
	Connected bool `json:"connected"`

	// ReconnectAttempts counts consecutive failed checks while
	// disconnected. Reset to zero only on a confirmed
	// disconnected→connected transition.
	ReconnectAttempts int `json:"reconnect_attempts"`

	// LastCheckedAt is when the monitor last evaluated reachability.
	LastCheckedAt time.Time `json:"last_checked_at"`
}
