package store

import (
	"sort"
	"sync"

	"swapchess/internal/room"
)

// MemoryStore is the in-process room registry.
type MemoryStore struct {
	mu    sync.RWMutex
	rooms map[string]*room.Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rooms: map[string]*room.Session{},
	}
}

func (m *MemoryStore) GetRoom(code string) (*room.Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rooms[code]
	return r, ok
}

func (m *MemoryStore) InsertRoom(r *room.Session) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, taken := m.rooms[r.Code]; taken {
		return false
	}
	m.rooms[r.Code] = r
	return true
}

func (m *MemoryStore) DeleteRoom(code string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rooms[code]; !ok {
		return false
	}
	delete(m.rooms, code)
	return true
}

// Rooms returns the registered sessions ordered by code.
func (m *MemoryStore) Rooms() []*room.Session {
	m.mu.RLock()
	out := make([]*room.Session, 0, len(m.rooms))
	for _, r := range m.rooms {
		out = append(out, r)
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms)
}
