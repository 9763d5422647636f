package auth

import (
	"sync"
	"time"

	"github.com/nsurely/motor-go/pkg/motor"
)

// TokenStore holds the current session token. Reads and writes go through
// copies so callers never share the stored value.
type TokenStore struct {
	mu    sync.RWMutex
	token *motor.SessionToken
	stale bool
}

// NewTokenStore creates an empty store.
func NewTokenStore() *TokenStore {
	return &TokenStore{}
}

// Get returns a copy of the stored token, or nil.
func (s *TokenStore) Get() *motor.SessionToken {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.token.Clone()
}

// Set replaces the stored token and clears the stale mark.
func (s *TokenStore) Set(token *motor.SessionToken) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = token.Clone()
	s.stale = false
}

// Clear drops the stored token.
func (s *TokenStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = nil
	s.stale = false
}

// Invalidate marks the access token stale without dropping the refresh token.
func (s *TokenStore) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stale = true
}

// RequiresRefresh reports whether the token is stale or expired at now.
func (s *TokenStore) RequiresRefresh(now time.Time) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.stale || s.token.RequiresRefresh(now)
}

// AccessToken returns the current access token, empty if none.
func (s *TokenStore) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.token == nil {
		return ""
	}

	return s.token.AccessToken
}
