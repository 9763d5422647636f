// Package auth implements the credential strategies a Motor client
// authenticates with: a static API key or a refreshable session.
package auth

import (
	"context"
	"errors"

	"github.com/nsurely/motor-go/pkg/motor"
)

// Provider turns one credential into request headers and manages its
// lifecycle. Implementations are safe for concurrent use.
type Provider interface {
	// IsLoggedIn reports whether the provider can authenticate a request
	// without refreshing first.
	IsLoggedIn() bool
	// RequiresRefresh reports whether Refresh must run before the next request.
	RequiresRefresh() bool
	// Refresh renews the credential.
	Refresh(ctx context.Context) error
	// Headers returns the headers to attach to a request. The map is a copy.
	Headers() map[string]string
	// Login exchanges an email and password for a session.
	Login(ctx context.Context, email, password string) (string, error)
	// Logout ends the session. It returns false when there was none.
	Logout(ctx context.Context) (bool, error)
	// Authenticate logs in with the configured credentials, if any.
	Authenticate(ctx context.Context) error
	// Expire marks the current credential stale so the next check refreshes.
	Expire()
}

// Ensure refreshes p when it requires it. A refresh rejected for an
// authentication reason falls back to a fresh login with the configured
// credentials; when none are configured the refresh error is returned.
func Ensure(ctx context.Context, p Provider) error {
	if p == nil || !p.RequiresRefresh() {
		return nil
	}

	err := p.Refresh(ctx)
	if err == nil || !errors.Is(err, motor.ErrAuthentication) {
		return err
	}

	loginErr := p.Authenticate(ctx)
	if loginErr == nil {
		return nil
	}

	if errors.Is(loginErr, motor.ErrLoginRequired) {
		return err
	}

	return loginErr
}
