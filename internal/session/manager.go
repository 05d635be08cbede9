// Package session tracks which conversations are live and expires idle ones.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("conversation not found")

// ended conversations are kept this many inactivity timeouts before purge
const endedRetention = 10

type Manager struct {
	mu                sync.RWMutex
	conversations     map[string]*Conversation
	inactivityTimeout time.Duration
	onExpire          func(*Conversation)
	now               func() time.Time
}

func NewManager(inactivityTimeout time.Duration) *Manager {
	if inactivityTimeout <= 0 {
		inactivityTimeout = 30 * time.Minute
	}
	return &Manager{
		conversations:     make(map[string]*Conversation),
		inactivityTimeout: inactivityTimeout,
		now:               func() time.Time { return time.Now().UTC() },
	}
}

func (m *Manager) SetExpireHook(hook func(*Conversation)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onExpire = hook
}

// Resolve returns the conversation for id, creating it when id is empty or
// unknown. A caller-supplied id is kept as is. Ended conversations are
// reactivated. created reports whether a new entry was made.
func (m *Manager) Resolve(id, userEmail string) (conv *Conversation, created bool) {
	id = strings.TrimSpace(id)
	if id == "" {
		id = uuid.NewString()
	}
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.conversations[id]
	if !ok {
		c = &Conversation{
			ID:             id,
			UserEmail:      userEmail,
			Status:         StatusActive,
			StartedAt:      now,
			LastActivityAt: now,
		}
		m.conversations[id] = c
		return clone(c), true
	}
	c.Status = StatusActive
	c.LastActivityAt = now
	if c.UserEmail == "" {
		c.UserEmail = userEmail
	}
	return clone(c), false
}

func (m *Manager) Get(id string) (*Conversation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.conversations[id]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(c), nil
}

func (m *Manager) Touch(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.conversations[id]
	if !ok {
		return ErrNotFound
	}
	c.LastActivityAt = m.now()
	return nil
}

// StartTurn marks turnID as in flight.
func (m *Manager) StartTurn(id, turnID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.conversations[id]
	if !ok {
		return ErrNotFound
	}
	c.ActiveTurnID = turnID
	c.LastActivityAt = m.now()
	return nil
}

// FinishTurn clears the in-flight turn and counts it.
func (m *Manager) FinishTurn(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.conversations[id]
	if !ok {
		return ErrNotFound
	}
	c.ActiveTurnID = ""
	c.TurnCount++
	c.LastActivityAt = m.now()
	return nil
}

func (m *Manager) End(id string) (*Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.conversations[id]
	if !ok {
		return nil, ErrNotFound
	}
	c.Status = StatusEnded
	c.ActiveTurnID = ""
	c.LastActivityAt = m.now()
	return clone(c), nil
}

func (m *Manager) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.expireInactive()
			}
		}
	}()
}

func (m *Manager) ActiveCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, c := range m.conversations {
		if c.Status == StatusActive {
			count++
		}
	}
	return count
}

func (m *Manager) expireInactive() {
	now := m.now()
	var expired []*Conversation

	m.mu.Lock()
	for id, c := range m.conversations {
		idle := now.Sub(c.LastActivityAt)
		if c.Status != StatusActive {
			if idle >= endedRetention*m.inactivityTimeout {
				delete(m.conversations, id)
			}
			continue
		}
		if idle < m.inactivityTimeout {
			continue
		}
		c.Status = StatusEnded
		c.ActiveTurnID = ""
		c.LastActivityAt = now
		expired = append(expired, clone(c))
	}
	hook := m.onExpire
	m.mu.Unlock()

	if hook != nil {
		for _, c := range expired {
			hook(c)
		}
	}
}

func clone(c *Conversation) *Conversation {
	out := *c
	return &out
}
