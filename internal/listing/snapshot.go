package listing

import (
	"sync"
	"time"

	"samaj-directory/pkg/pagination"
)

// Snapshot is what a list leaves behind when it is closed, so that returning
// to the same screen can show the previous page walk without refetching.
type Snapshot[T any] struct {
	State   pagination.State[T]
	Query   string
	Filter  any
	SavedAt time.Time
}

type storeEntry struct {
	snapshot any
	stale    bool
}

// SnapshotStore keeps list snapshots for one navigation scope. It is owned by
// whoever owns the screens and handed to each ListModel explicitly.
type SnapshotStore struct {
	mu      sync.Mutex
	entries map[string]*storeEntry
}

// NewSnapshotStore creates an empty store.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{entries: make(map[string]*storeEntry)}
}

// Save records snapshot under key and clears any stale mark.
func (s *SnapshotStore) Save(key string, snapshot any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = &storeEntry{snapshot: snapshot}
}

// Load returns the snapshot stored under key. Stale or missing entries
// report false.
func (s *SnapshotStore) Load(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok || e.stale {
		return nil, false
	}
	return e.snapshot, true
}

// MarkStale keeps the entry but forces the next list opened under key to
// reload, typically after the underlying collection was modified.
func (s *SnapshotStore) MarkStale(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[key]; ok {
		e.stale = true
	}
}

// Clear removes the entry for key.
func (s *SnapshotStore) Clear(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}

// Len returns the number of entries, stale ones included.
func (s *SnapshotStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Restore loads a typed snapshot. A value of another element type is treated
// as missing.
func Restore[T any](s *SnapshotStore, key string) (Snapshot[T], bool) {
	if s == nil {
		return Snapshot[T]{}, false
	}
	v, ok := s.Load(key)
	if !ok {
		return Snapshot[T]{}, false
	}
	snap, ok := v.(Snapshot[T])
	return snap, ok
}
