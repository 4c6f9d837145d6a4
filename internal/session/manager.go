package session

import (
	"sort"
	"sync"

	"github.com/lumiread/lumiread/internal/lumidoc"
)

// Manager tracks the open document sessions by document id.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*Session)}
}

// Put registers a document and returns its session, replacing any session
// previously held under the same id.
func (m *Manager) Put(docID string, doc *lumidoc.Document) *Session {
	sess := NewSession(docID, doc)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[docID] = sess
	return sess
}

// Get returns the session for a document id.
func (m *Manager) Get(docID string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.sessions[docID]
	return sess, ok
}

// Delete removes a session. Unknown ids are a no-op.
func (m *Manager) Delete(docID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, docID)
}

// DocIDs lists the open document ids in sorted order.
func (m *Manager) DocIDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
