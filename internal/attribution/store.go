package attribution

import (
	"sync"
	"time"
)

// Store persists one attribution snapshot per visitor session.
type Store interface {
	Get(sessionID string) (Snapshot, bool)
	Set(sessionID string, snap Snapshot)
}

// MemoryStore keeps snapshots in a mutex-guarded map. Entries older than
// the TTL are dropped lazily on access and by a periodic sweep.
type MemoryStore struct {
	mu        sync.RWMutex
	snapshots map[string]Snapshot
	ttl       time.Duration
}

// NewMemoryStore creates a session store with the given entry lifetime.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	s := &MemoryStore{
		snapshots: make(map[string]Snapshot),
		ttl:       ttl,
	}
	go s.sweep()
	return s
}

// Get returns the snapshot stored for sessionID, if any.
func (s *MemoryStore) Get(sessionID string) (Snapshot, bool) {
	s.mu.RLock()
	snap, ok := s.snapshots[sessionID]
	s.mu.RUnlock()
	if !ok {
		return Snapshot{}, false
	}
	if s.expired(snap) {
		s.mu.Lock()
		delete(s.snapshots, sessionID)
		s.mu.Unlock()
		return Snapshot{}, false
	}
	return snap, true
}

// Set stores snap for sessionID. A non-empty capture overwrites whatever
// is stored; an empty one is ignored so that navigating to a clean URL
// never erases the campaign that brought the visitor in.
func (s *MemoryStore) Set(sessionID string, snap Snapshot) {
	if sessionID == "" || snap.IsEmpty() {
		return
	}
	s.mu.Lock()
	s.snapshots[sessionID] = snap
	s.mu.Unlock()
}

func (s *MemoryStore) expired(snap Snapshot) bool {
	if s.ttl <= 0 || snap.CapturedAt.IsZero() {
		return false
	}
	return time.Since(snap.CapturedAt) > s.ttl
}

func (s *MemoryStore) sweep() {
	if s.ttl <= 0 {
		return
	}
	ticker := time.NewTicker(s.ttl)
	defer ticker.Stop()
	for range ticker.C {
		s.mu.Lock()
		for id, snap := range s.snapshots {
			if s.expired(snap) {
				delete(s.snapshots, id)
			}
		}
		s.mu.Unlock()
	}
}
