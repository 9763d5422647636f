package motor

import (
	"context"
	"maps"
	"time"
)

// SessionToken is the state of a bearer session. The zero value is an empty,
// logged out session.
type SessionToken struct {
	TokenType        string              `json:"tokenType,omitempty"        yaml:"token_type,omitempty"`
	AccessToken      string              `json:"accessToken,omitempty"      yaml:"access_token,omitempty"`
	ExpiresIn        int                 `json:"expiresIn,omitempty"        yaml:"expires_in,omitempty"`
	RefreshToken     string              `json:"refreshToken,omitempty"     yaml:"refresh_token,omitempty"`
	RefreshExpiresIn int                 `json:"refreshExpiresIn,omitempty" yaml:"refresh_expires_in,omitempty"`
	AccountID        string              `json:"accountId,omitempty"        yaml:"account_id,omitempty"`
	AccountType      string              `json:"accountType,omitempty"      yaml:"account_type,omitempty"`
	Orgs             []map[string]string `json:"orgs,omitempty"             yaml:"orgs,omitempty"`
	// LastRefresh is when the access token was issued. ExpiresIn and
	// RefreshExpiresIn are minutes counted from here.
	LastRefresh time.Time `json:"lastRefresh,omitzero" yaml:"last_refresh,omitempty"`
}

// RequiresRefresh reports whether the access token is missing, has no known
// lifetime, or has outlived it at now.
func (t *SessionToken) RequiresRefresh(now time.Time) bool {
	if t == nil || t.AccessToken == "" || t.ExpiresIn == 0 || t.LastRefresh.IsZero() {
		return true
	}

	return now.Sub(t.LastRefresh).Minutes() >= float64(t.ExpiresIn)
}

// CanRefresh reports whether the refresh token is present and still inside
// its own window at now. An unknown refresh lifetime is treated as unlimited.
func (t *SessionToken) CanRefresh(now time.Time) bool {
	if t == nil || t.RefreshToken == "" {
		return false
	}

	if t.RefreshExpiresIn == 0 || t.LastRefresh.IsZero() {
		return true
	}

	return now.Sub(t.LastRefresh).Minutes() < float64(t.RefreshExpiresIn)
}

// ExpiresAt is when the access token stops being valid. Zero if unknown.
func (t *SessionToken) ExpiresAt() time.Time {
	if t == nil || t.LastRefresh.IsZero() || t.ExpiresIn == 0 {
		return time.Time{}
	}

	return t.LastRefresh.Add(time.Duration(t.ExpiresIn) * time.Minute)
}

// Clone returns a deep copy.
func (t *SessionToken) Clone() *SessionToken {
	if t == nil {
		return nil
	}

	out := *t
	if t.Orgs != nil {
		out.Orgs = make([]map[string]string, len(t.Orgs))
		for i, org := range t.Orgs {
			out.Orgs[i] = maps.Clone(org)
		}
	}

	return &out
}

// SessionPersister stores sessions between processes.
type SessionPersister interface {
	SaveSession(ctx context.Context, token *SessionToken) error
	LoadSession(ctx context.Context) (*SessionToken, error)
	ClearSession(ctx context.Context) error
}
