package auth

import (
	"context"
	"maps"
	"strings"
	"sync"

	"github.com/nsurely/motor-go/internal/constants"
	"github.com/nsurely/motor-go/pkg/motor"
)

// APIKeyAuth authenticates with a static key and secret. It never expires.
type APIKeyAuth struct {
	key    string
	secret string

	once    sync.Once
	headers map[string]string
}

// NewAPIKeyAuth trims the key and secret and fails if either is empty.
func NewAPIKeyAuth(key, secret string) (*APIKeyAuth, error) {
	key = strings.TrimSpace(key)
	secret = strings.TrimSpace(secret)

	if key == "" {
		return nil, motor.ErrAPIKeyRequired
	}

	if secret == "" {
		return nil, motor.ErrAPISecretRequired
	}

	return &APIKeyAuth{key: key, secret: secret}, nil
}

// Key returns the API key, for display.
func (a *APIKeyAuth) Key() string { return a.key }

func (a *APIKeyAuth) IsLoggedIn() bool                       { return true }
func (a *APIKeyAuth) RequiresRefresh() bool                  { return false }
func (a *APIKeyAuth) Refresh(ctx context.Context) error      { return nil }
func (a *APIKeyAuth) Authenticate(ctx context.Context) error { return nil }
func (a *APIKeyAuth) Expire()                                {}

// Login is a no-op for API keys and returns an empty token.
func (a *APIKeyAuth) Login(ctx context.Context, email, password string) (string, error) {
	return "", nil
}

// Logout is a no-op for API keys.
func (a *APIKeyAuth) Logout(ctx context.Context) (bool, error) {
	return true, nil
}

// Headers returns "Authorization: apiKey <key>:<secret>".
func (a *APIKeyAuth) Headers() map[string]string {
	a.once.Do(func() {
		a.headers = map[string]string{
			constants.HeaderAuthorization: "apiKey " + a.key + ":" + a.secret,
		}
	})

	return maps.Clone(a.headers)
}
