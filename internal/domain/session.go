package domain

import (
	"sync"
	"time"
)

// Session tracks the per-connection state of one display. The zone is unset
// until the display sends its join message; only then is the connection
// eligible for replay.
type Session struct {
	ID           string
	zone         string
	joined       bool
	CreatedAt    time.Time
	LastActiveAt time.Time
	mu           sync.RWMutex
}

func NewSession(id string) *Session {
	now := time.Now()
	return &Session{
		ID:           id,
		CreatedAt:    now,
		LastActiveAt: now,
	}
}

// JoinZone records the zone membership, replacing any previous one.
func (s *Session) JoinZone(zone string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.zone = zone
	s.joined = true
	s.LastActiveAt = time.Now()
}

// Zone returns the current zone name. Empty string is a valid zone label.
func (s *Session) Zone() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.zone
}

// IsJoined reports whether a join message has been processed for this
// connection.
func (s *Session) IsJoined() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.joined
}

func (s *Session) UpdateActivity() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.LastActiveAt = time.Now()
}
