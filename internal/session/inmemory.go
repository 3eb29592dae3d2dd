package session

import (
	"sync"
	"time"
)

// InMemoryStore keeps sessions in a mutex-guarded map. Sessions carry no
// external persistence, eviction just reclaims memory.
type InMemoryStore struct {
	sessions map[int64]*Session
	mu       sync.RWMutex
	now      func() time.Time
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{sessions: make(map[int64]*Session), now: time.Now}
}

func (s *InMemoryStore) Get(chatID int64) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[chatID]
	if !ok {
		return nil, false
	}
	sess.LastActivity = s.now()
	return sess, true
}

func (s *InMemoryStore) CreateOrReset(chatID int64, query string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := &Session{
		ChatID:       chatID,
		State:        StateSiteSelection,
		Query:        query,
		LastActivity: s.now(),
	}
	s.sessions[chatID] = sess
	return sess
}

func (s *InMemoryStore) Delete(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, chatID)
}

func (s *InMemoryStore) SweepExpired(now time.Time, ttl time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for chatID, sess := range s.sessions {
		if now.Sub(sess.LastActivity) > ttl {
			delete(s.sessions, chatID)
			removed++
		}
	}
	return removed
}

// Len reports the number of live sessions.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
