package workspace

import "sync"

type key struct {
	card  string
	field string
}

// Manager holds one session per card field.
type Manager struct {
	mu       sync.Mutex
	sessions map[key]*Session
}

// NewManager creates an empty manager.
func NewManager() *Manager {
	return &Manager{sessions: make(map[key]*Session)}
}

// Open returns the session for (card, field), creating it on doc when none
// exists. An existing session whose document differs from doc was edited
// elsewhere and is re-committed so its units match.
func (m *Manager) Open(card, field, doc string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := key{card, field}
	if s, ok := m.sessions[k]; ok {
		if s.Document() != doc {
			s.Commit(doc)
		}
		return s
	}
	s := NewSession(doc)
	m.sessions[k] = s
	return s
}

// Drop discards every session of a card.
func (m *Manager) Drop(card string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.sessions {
		if k.card == card {
			delete(m.sessions, k)
		}
	}
}

// Len returns the number of open sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
