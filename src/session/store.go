package session

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"stock-dashboard/src/logger"
)

// DefaultTTL is the idle lifetime of a session.
const DefaultTTL = 12 * time.Hour

type entry struct {
	state    State
	lastSeen time.Time
}

// Store keeps sessions in process memory. Nothing survives a restart.
type Store struct {
	TTL    time.Duration
	Logger *logger.Logger

	sessions map[string]*entry
	defaults State
	mu       sync.RWMutex
	now      func() time.Time
}

// -----------------------------------------------------------------------------

func NewStore(ttl time.Duration, defaults State, log *logger.Logger) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Store{
		TTL:      ttl,
		Logger:   log,
		sessions: make(map[string]*entry),
		defaults: defaults.Logout(),
		now:      time.Now,
	}
}

// -----------------------------------------------------------------------------

// NewID returns 128 random bits, hex encoded.
func NewID() (string, error) {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", fmt.Errorf("session id: %w", err)
	}
	return hex.EncodeToString(b[:]), nil
}

// -----------------------------------------------------------------------------

// Create starts a fresh unauthenticated session from the current defaults.
func (s *Store) Create() (string, State, error) {
	id, err := NewID()
	if err != nil {
		return "", State{}, err
	}
	s.mu.Lock()
	st := s.defaults.clone()
	s.sessions[id] = &entry{state: st, lastSeen: s.now()}
	s.mu.Unlock()
	return id, st, nil
}

// -----------------------------------------------------------------------------

// Get returns the session state and refreshes its idle timer. Expired
// sessions are reported as missing.
func (s *Store) Get(id string) (State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[id]
	if !ok {
		return State{}, false
	}
	now := s.now()
	if now.Sub(e.lastSeen) > s.TTL {
		delete(s.sessions, id)
		return State{}, false
	}
	e.lastSeen = now
	return e.state.clone(), true
}

// -----------------------------------------------------------------------------

// Save replaces the state of an existing session.
func (s *Store) Save(id string, st State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[id]
	if !ok {
		return fmt.Errorf("session %s not found", shortID(id))
	}
	e.state = st.clone()
	e.lastSeen = s.now()
	return nil
}

// -----------------------------------------------------------------------------

func (s *Store) Delete(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// -----------------------------------------------------------------------------

// PurgeExpired removes idle sessions and reports how many were dropped.
func (s *Store) PurgeExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	n := 0
	for id, e := range s.sessions {
		if now.Sub(e.lastSeen) > s.TTL {
			delete(s.sessions, id)
			n++
		}
	}
	if n > 0 {
		s.Logger.Info("Purged %d expired sessions, %d active", n, len(s.sessions))
	}
	return n
}

// -----------------------------------------------------------------------------

func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// -----------------------------------------------------------------------------

// Defaults returns the template new sessions start from.
func (s *Store) Defaults() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.defaults.clone()
}

// SetDefaultWatchlist changes the watchlist new sessions start with. Existing
// sessions keep their own copy.
func (s *Store) SetDefaultWatchlist(watchlist []string) {
	next := s.Defaults()
	next.Watchlist = nil
	for _, t := range watchlist {
		next = next.AddToWatchlist(t)
	}
	s.mu.Lock()
	s.defaults = next
	s.mu.Unlock()
}

// -----------------------------------------------------------------------------

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
