package intake

import (
	"sync"
	"time"
)

// session is the per-user conversation state. It exists only while an
// intake is in progress and is destroyed on completion or cancellation.
type session struct {
	step      Step
	draft     Draft
	startedAt time.Time
}

// sessionStore keeps at most one session per user. Sessions are touched
// only by their owner's event stream, the lock just guards the map itself.
type sessionStore struct {
	mu       sync.RWMutex
	sessions map[int64]*session
}

func newSessionStore() *sessionStore {
	return &sessionStore{sessions: make(map[int64]*session)}
}

// begin creates a fresh session, overwriting any in-progress one.
func (s *sessionStore) begin(userID int64) *session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := &session{step: StepName, startedAt: time.Now()}
	s.sessions[userID] = sess
	return sess
}

func (s *sessionStore) get(userID int64) (*session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[userID]
	return sess, ok
}

func (s *sessionStore) clear(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
}

func (s *sessionStore) active(userID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.sessions[userID]
	return ok
}
