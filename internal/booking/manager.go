package booking

import (
	"context"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// loadTimeout bounds a rehydration shared by every request waiting on the session
const loadTimeout = 5 * time.Second

type managedStore struct {
	store      *Store
	lastAccess time.Time
}

// Manager hands out one Store per session. A session's saved state is loaded
// once, the first time the session is seen by this process.
type Manager struct {
	storage Storage
	mu      sync.Mutex
	stores  map[string]*managedStore
	loads   singleflight.Group
	now     func() time.Time
}

// NewManager creates a new store manager
func NewManager(storage Storage) *Manager {
	return &Manager{
		storage: storage,
		stores:  make(map[string]*managedStore),
		now:     time.Now,
	}
}

// Store returns the store of a session, rehydrating it on first use.
// A failed load is returned and not cached, so the next request loads again.
func (m *Manager) Store(ctx context.Context, sessionID string) (*Store, error) {
	if s := m.lookup(sessionID); s != nil {
		return s, nil
	}

	ch := m.loads.DoChan(sessionID, func() (interface{}, error) {
		if s := m.lookup(sessionID); s != nil {
			return s, nil
		}
		// the load is shared, so one caller giving up must not fail the others
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()
		s, err := NewStore(loadCtx, sessionID, m.storage)
		if err != nil {
			return nil, err
		}
		m.mu.Lock()
		m.stores[sessionID] = &managedStore{store: s, lastAccess: m.now()}
		m.mu.Unlock()
		return s, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Store), nil
	}
}

func (m *Manager) lookup(sessionID string) *Store {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ms, ok := m.stores[sessionID]; ok {
		ms.lastAccess = m.now()
		return ms.store
	}
	return nil
}

// Forget drops the in-memory store of a session. The saved state is untouched.
func (m *Manager) Forget(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.stores, sessionID)
}

// Len returns the number of sessions held in memory
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.stores)
}

// Sweep forgets stores idle for longer than maxIdle and returns how many were dropped
func (m *Manager) Sweep(maxIdle time.Duration) int {
	cutoff := m.now().Add(-maxIdle)
	m.mu.Lock()
	defer m.mu.Unlock()

	dropped := 0
	for id, ms := range m.stores {
		if ms.lastAccess.Before(cutoff) {
			delete(m.stores, id)
			dropped++
		}
	}
	if dropped > 0 {
		log.Printf("Evicted %d idle booking sessions", dropped)
	}
	return dropped
}

// RunSweeper evicts idle stores every interval until ctx is done
func (m *Manager) RunSweeper(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep(maxIdle)
		}
	}
}
