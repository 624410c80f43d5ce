package presence

import (
	"context"
	"sync"
)

// Memory is the single-process registry. Plain map under a RWMutex is all
// last-writer-wins needs.
type Memory struct {
	mu       sync.RWMutex
	sessions map[string]string
}

func NewMemory() *Memory {
	return &Memory{
		sessions: make(map[string]string),
	}
}

func (m *Memory) Register(_ context.Context, userID, sessionID string) error {
	m.mu.Lock()
	m.sessions[userID] = sessionID
	m.mu.Unlock()

	return nil
}

func (m *Memory) Resolve(_ context.Context, userID string) (string, bool, error) {
	m.mu.RLock()
	sessionID, ok := m.sessions[userID]
	m.mu.RUnlock()

	return sessionID, ok, nil
}

func (m *Memory) Unregister(_ context.Context, userID string) error {
	m.mu.Lock()
	delete(m.sessions, userID)
	m.mu.Unlock()

	return nil
}
