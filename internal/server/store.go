package server

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"time"

	"party-deduction/internal/game"
)

var errNoSession = errors.New("no session for room")

// SessionStore persists the single live session of each room. Load must
// return a private copy; mutating it has no effect until Save.
type SessionStore interface {
	Load(ctx context.Context, roomID string) (*game.Session, error)
	Save(ctx context.Context, s *game.Session) error
	// ActiveRooms lists rooms whose session has not settled yet.
	ActiveRooms(ctx context.Context) ([]string, error)
	// ArchiveSettled drops settled sessions last touched before cutoff.
	ArchiveSettled(ctx context.Context, cutoff time.Time) (int, error)
}

// MemoryStore keeps JSON snapshots in process memory.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]storedSession
}

type storedSession struct {
	data      []byte
	settled   bool
	updatedAt time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]storedSession)}
}

func (m *MemoryStore) Load(_ context.Context, roomID string) (*game.Session, error) {
	m.mu.Lock()
	stored, ok := m.sessions[roomID]
	m.mu.Unlock()
	if !ok {
		return nil, errNoSession
	}
	return decodeSession(stored.data)
}

func (m *MemoryStore) Save(_ context.Context, s *game.Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.RoomID] = storedSession{data: data, settled: s.Settled(), updatedAt: s.UpdatedAt}
	return nil
}

func (m *MemoryStore) ActiveRooms(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.sessions))
	for id, stored := range m.sessions {
		if !stored.settled {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *MemoryStore) ArchiveSettled(_ context.Context, cutoff time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, stored := range m.sessions {
		if stored.settled && stored.updatedAt.Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed, nil
}

func decodeSession(data []byte) (*game.Session, error) {
	var s game.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// cloneSession deep-copies s through its JSON form.
func cloneSession(s *game.Session) (*game.Session, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return decodeSession(data)
}
