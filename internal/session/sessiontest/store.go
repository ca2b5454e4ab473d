// Package sessiontest provides an in-memory session store for tests.
package sessiontest

import (
	"context"
	"sync"

	"github.com/suPer8Hu/icebreaker-bot/internal/models"
	"github.com/suPer8Hu/icebreaker-bot/internal/session"
)

type Store struct {
	mu   sync.Mutex
	data map[string]*session.Session
	Puts int
}

func New() *Store {
	return &Store{data: map[string]*session.Session{}}
}

func (s *Store) Get(ctx context.Context, chatID string) *session.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.data[chatID]; ok {
		return v.Clone()
	}
	return session.New(chatID, models.English)
}

func (s *Store) Put(ctx context.Context, chatID string, sess *session.Session) {
	if chatID == "" || sess == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Puts++
	s.data[chatID] = sess.Clone()
}

func (s *Store) Clear(ctx context.Context, chatID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, chatID)
}

// Peek returns the stored session without copying, or nil.
func (s *Store) Peek(chatID string) *session.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data[chatID]
}
