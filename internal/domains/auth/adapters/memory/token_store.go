package memory

import (
	"context"
	"sync"

	authports "github.com/Apurer/pharmacy-dispatch/internal/domains/auth/ports"
)

// TokenStore keeps the token for the life of the process.
type TokenStore struct {
	mu    sync.RWMutex
	token string
}

func NewTokenStore() *TokenStore {
	return &TokenStore{}
}

func (s *TokenStore) Set(_ context.Context, token string) error {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	return nil
}

func (s *TokenStore) Get(_ context.Context) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.token != "", nil
}

func (s *TokenStore) Clear(_ context.Context) error {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
	return nil
}

var _ authports.TokenStore = (*TokenStore)(nil)
