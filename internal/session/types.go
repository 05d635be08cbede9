package session

import "time"

type Status string

const (
	StatusActive Status = "active"
	StatusEnded  Status = "ended"
)

// Conversation is the registry entry for one chat conversation. Booking
// state lives in the conversation package; this only tracks liveness.
type Conversation struct {
	ID             string    `json:"conversation_id"`
	UserEmail      string    `json:"user_email,omitempty"`
	Status         Status    `json:"status"`
	ActiveTurnID   string    `json:"active_turn_id,omitempty"`
	TurnCount      int       `json:"turn_count"`
	StartedAt      time.Time `json:"started_at"`
	LastActivityAt time.Time `json:"last_activity_at"`
}
