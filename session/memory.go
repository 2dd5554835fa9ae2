package session

import (
	"context"
	"sync"
	"time"

	"photoshare/models"
)

// MemoryStore keeps sessions in process. Sessions die with the process and are
// invisible to other instances; use RedisStore when running more than one.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]models.Session
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]models.Session),
		now:      time.Now,
	}
}

var _ Store = (*MemoryStore)(nil)

func (s *MemoryStore) Create(_ context.Context, sess *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweep()
	s.sessions[sess.ID] = *sess
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	if sess.Expired(s.now()) {
		delete(s.sessions, id)
		return nil, ErrNotFound
	}
	return &sess, nil
}

func (s *MemoryStore) Touch(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok || sess.Expired(s.now()) {
		return ErrNotFound
	}
	sess.LastSeen = at
	s.sessions[id] = sess
	return nil
}

func (s *MemoryStore) Destroy(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
	return nil
}

func (s *MemoryStore) DestroyUser(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, sess := range s.sessions {
		if sess.UserID == userID {
			delete(s.sessions, id)
		}
	}
	return nil
}

// sweep drops expired sessions; callers hold mu.
func (s *MemoryStore) sweep() {
	now := s.now()
	for id, sess := range s.sessions {
		if sess.Expired(now) {
			delete(s.sessions, id)
		}
	}
}
