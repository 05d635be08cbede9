package memory

import (
	"context"
	"time"
)

// Role identifies the speaker of a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn stores a single user or assistant message.
type Turn struct {
	ID             string    `json:"id"`
	UserEmail      string    `json:"user_email"`
	ConversationID string    `json:"conversation_id"`
	Role           Role      `json:"role"`
	Text           string    `json:"text"`
	Embedding      []float32 `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
}

// Store persists and retrieves conversational memory. Turns are keyed by
// user email, not by conversation: a returning user sees earlier conversations.
type Store interface {
	SaveTurn(ctx context.Context, turn Turn) error
	// RecentTurns returns up to limit turns, oldest first.
	RecentTurns(ctx context.Context, userEmail string, limit int) ([]Turn, error)
	// RelevantTurns returns up to limit turns ranked by similarity to query,
	// then re-ordered oldest first.
	RelevantTurns(ctx context.Context, userEmail string, query []float32, limit int) ([]Turn, error)
	Close() error
}

// Embedder turns text into a vector. Implementations never fail; they return
// a zero vector when no embedding is available.
type Embedder interface {
	Embed(ctx context.Context, text string) []float32
}

// IsZeroVector reports whether v carries no signal.
func IsZeroVector(v []float32) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}
