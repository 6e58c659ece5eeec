package sessionstore

import (
	"context"
	"sync"
	"time"

	"github.com/saltmarshlabs/crossgate/internal/pkg/metrics"
)

// MemoryStore is an in-process session store for tests and single-node
// dev deployments. Expired sessions are dropped lazily on read.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*Session),
	}
}

// Get returns the live session for the ID, or ErrSessionNotFound.
func (m *MemoryStore) Get(ctx context.Context, id string) (*Session, error) {
	start := time.Now()

	m.mu.RLock()
	sess, ok := m.sessions[id]
	m.mu.RUnlock()

	if ok && sess.Expired(time.Now()) {
		m.mu.Lock()
		delete(m.sessions, id)
		m.mu.Unlock()
		ok = false
	}

	if !ok {
		metrics.RecordStoreOperation("memory", "get", time.Since(start), ErrSessionNotFound)
		return nil, ErrSessionNotFound
	}

	copied := *sess
	metrics.RecordStoreOperation("memory", "get", time.Since(start), nil)
	return &copied, nil
}

// Put stores the session under its ID.
func (m *MemoryStore) Put(ctx context.Context, sess *Session, ttl time.Duration) error {
	start := time.Now()

	copied := *sess
	if ttl > 0 {
		copied.ExpiresAt = time.Now().Add(ttl)
	}

	m.mu.Lock()
	m.sessions[copied.ID] = &copied
	m.mu.Unlock()

	metrics.RecordStoreOperation("memory", "put", time.Since(start), nil)
	return nil
}

// Destroy removes the session. Missing sessions are ignored.
func (m *MemoryStore) Destroy(ctx context.Context, id string) error {
	start := time.Now()

	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()

	metrics.RecordStoreOperation("memory", "destroy", time.Since(start), nil)
	return nil
}

// DestroyByAccount removes every session bound to the account.
func (m *MemoryStore) DestroyByAccount(ctx context.Context, accountID string) (int, error) {
	start := time.Now()

	m.mu.Lock()
	removed := 0
	for id, sess := range m.sessions {
		if sess.AccountID == accountID {
			delete(m.sessions, id)
			removed++
		}
	}
	m.mu.Unlock()

	metrics.RecordStoreOperation("memory", "destroy_by_account", time.Since(start), nil)
	return removed, nil
}

// Len returns the number of stored sessions, including any not yet
// reaped. Intended for tests.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
