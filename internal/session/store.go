package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store keeps the live sessions of the API server in memory.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	cfg      Config
}

func NewStore(cfg Config) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		cfg:      cfg,
	}
}

// Create opens a fresh session. An empty name falls back to the configured
// player name.
func (st *Store) Create(playerName string) *Session {
	cfg := st.cfg
	if playerName != "" {
		cfg.PlayerName = playerName
	}
	s := New(uuid.New().String(), cfg)

	st.mu.Lock()
	st.sessions[s.ID] = s
	st.mu.Unlock()
	return s
}

func (st *Store) Get(id string) (*Session, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (st *Store) Delete(id string) {
	st.mu.Lock()
	delete(st.sessions, id)
	st.mu.Unlock()
}

func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// Sweep drops sessions idle for longer than maxIdle and returns how many
// went.
func (st *Store) Sweep(maxIdle time.Duration) int {
	cutoff := time.Now().UTC().Add(-maxIdle)

	st.mu.Lock()
	defer st.mu.Unlock()

	removed := 0
	for id, s := range st.sessions {
		if s.LastActivity().Before(cutoff) {
			delete(st.sessions, id)
			removed++
		}
	}
	return removed
}
