package telegram

import (
	"sync"
	"time"
)

const (
	ActionReset      = "reset"
	ActionRemoveData = "removedata"
	ActionRemoveUser = "removeuser"
)

// PendingAction is a destructive command waiting for /confirm.
type PendingAction struct {
	Action    string
	Week      int
	Code      string
	ExpiresAt time.Time
}

// ConfirmManager holds at most one pending destructive action per admin.
type ConfirmManager struct {
	mu      sync.Mutex
	ttl     time.Duration
	pending map[int64]*PendingAction
}

func NewConfirmManager() *ConfirmManager {
	return &ConfirmManager{
		ttl:     time.Minute,
		pending: make(map[int64]*PendingAction),
	}
}

func (m *ConfirmManager) Ask(adminID int64, action PendingAction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	action.ExpiresAt = time.Now().Add(m.ttl)
	m.pending[adminID] = &action
}

// Take removes and returns the pending action, if any is still live.
func (m *ConfirmManager) Take(adminID int64) (*PendingAction, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	action, ok := m.pending[adminID]
	if !ok {
		return nil, false
	}
	delete(m.pending, adminID)
	if time.Now().After(action.ExpiresAt) {
		return nil, false
	}
	return action, true
}

func (m *ConfirmManager) Clear(adminID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.pending, adminID)
}
