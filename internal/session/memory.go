package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps sessions in process memory. It backs local development
// and tests; production deployments configure the redis store instead.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	stop     chan struct{}
	stopOnce sync.Once
}

func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{
		sessions: make(map[string]*Session),
		stop:     make(chan struct{}),
	}
	go s.sweep()
	return s
}

func (s *MemoryStore) Save(_ context.Context, sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *sess
	s.sessions[sess.Token] = &cp
	return nil
}

func (s *MemoryStore) Get(_ context.Context, token string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[token]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}
	if sess.Expired() {
		// lazy expiry; the sweeper will reclaim it eventually
		return nil, ErrNotFound
	}
	cp := *sess
	return &cp, nil
}

func (s *MemoryStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}

func (s *MemoryStore) Close() error {
	s.stopOnce.Do(func() { close(s.stop) })
	return nil
}

func (s *MemoryStore) sweep() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.mu.Lock()
			for token, sess := range s.sessions {
				if sess.Expired() {
					delete(s.sessions, token)
				}
			}
			s.mu.Unlock()
		}
	}
}
