package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/sync/singleflight"

	"github.com/nsurely/motor-go/internal/constants"
	"github.com/nsurely/motor-go/pkg/motor"
)

// SessionAuth authenticates with a bearer session obtained by logging in as a
// user or a driver. The session is refreshed with its refresh token once the
// access token expires.
type SessionAuth struct {
	authType   motor.AuthType
	loginURL   string
	refreshURL string
	logoutURL  string

	credMu   sync.RWMutex
	email    string
	password string

	store      *TokenStore
	persister  motor.SessionPersister
	httpClient *retryablehttp.Client
	logger     motor.Logger
	now        func() time.Time
	timeout    time.Duration

	flight singleflight.Group
}

// SessionOption configures a SessionAuth.
type SessionOption func(*SessionAuth)

// WithCredentials sets the email and password Authenticate logs in with.
func WithCredentials(email, password string) SessionOption {
	return func(a *SessionAuth) {
		a.email = strings.TrimSpace(email)
		a.password = password
	}
}

// WithSession resumes a previously issued session.
func WithSession(token *motor.SessionToken) SessionOption {
	return func(a *SessionAuth) {
		if token != nil {
			a.store.Set(token)
		}
	}
}

// WithPersister stores every new session and clears it on logout.
func WithPersister(persister motor.SessionPersister) SessionOption {
	return func(a *SessionAuth) {
		a.persister = persister
	}
}

// WithHTTPClient replaces the client used for login, refresh and logout.
func WithHTTPClient(client *http.Client) SessionOption {
	return func(a *SessionAuth) {
		if client != nil {
			a.httpClient.HTTPClient = client
		}
	}
}

// WithTimeout bounds each login, refresh and logout request. Zero keeps the
// default.
func WithTimeout(timeout time.Duration) SessionOption {
	return func(a *SessionAuth) {
		a.timeout = timeout
	}
}

// WithLogger sets the logger.
func WithLogger(logger motor.Logger) SessionOption {
	return func(a *SessionAuth) {
		a.logger = logger
	}
}

// WithClock replaces the time source.
func WithClock(now func() time.Time) SessionOption {
	return func(a *SessionAuth) {
		a.now = now
	}
}

// NewSessionAuth creates a session provider for baseURL. Driver sessions are
// scoped to orgID; user sessions are not. An empty authType means user.
func NewSessionAuth(baseURL, orgID string, authType motor.AuthType, opts ...SessionOption) (*SessionAuth, error) {
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		return nil, motor.ErrRegionOrURLRequired
	}

	if authType == "" {
		authType = motor.AuthTypeUser
	}

	auth := &SessionAuth{
		authType:   authType,
		store:      NewTokenStore(),
		httpClient: newAuthHTTPClient(),
		logger:     motor.NopLogger{},
		now:        time.Now,
	}

	switch authType {
	case motor.AuthTypeUser:
		auth.loginURL = baseURL + "/org/auth/users/login"
		auth.refreshURL = baseURL + "/org/auth/users/session/refresh"
		auth.logoutURL = baseURL + "/org/auth/users/logout"
	case motor.AuthTypeDriver:
		if orgID == "" {
			return nil, motor.ErrOrgIDRequired
		}

		auth.loginURL = baseURL + "/org/" + orgID + "/drivers/login"
		auth.refreshURL = baseURL + "/org/" + orgID + "/drivers/session/refresh"
		auth.logoutURL = baseURL + "/org/" + orgID + "/drivers/logout"
	default:
		return nil, fmt.Errorf("%w: %q", motor.ErrInvalidAuthType, authType)
	}

	for _, opt := range opts {
		opt(auth)
	}

	if auth.timeout > 0 {
		httpClient := *auth.httpClient.HTTPClient
		httpClient.Timeout = auth.timeout
		auth.httpClient.HTTPClient = &httpClient
	}

	return auth, nil
}

// newAuthHTTPClient never retries: a login or refresh is sent exactly once.
func newAuthHTTPClient() *retryablehttp.Client {
	client := retryablehttp.NewClient()
	client.RetryMax = 0
	client.Logger = nil
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler
	client.HTTPClient.Timeout = constants.DefaultHTTPTimeout

	return client
}

// AuthType returns user or driver.
func (a *SessionAuth) AuthType() motor.AuthType { return a.authType }

// Session returns a copy of the current session, or nil.
func (a *SessionAuth) Session() *motor.SessionToken { return a.store.Get() }

// IsLoggedIn reports whether an unexpired access token is held.
func (a *SessionAuth) IsLoggedIn() bool {
	return a.store.AccessToken() != "" && !a.RequiresRefresh()
}

// RequiresRefresh reports whether the access token is missing, stale or expired.
func (a *SessionAuth) RequiresRefresh() bool {
	return a.store.RequiresRefresh(a.now())
}

// Expire marks the access token stale.
func (a *SessionAuth) Expire() {
	a.store.Invalidate()
}

// Headers returns the bearer header, or an empty map without an access token.
func (a *SessionAuth) Headers() map[string]string {
	token := a.store.AccessToken()
	if token == "" {
		return map[string]string{}
	}

	return map[string]string{constants.HeaderAuthorization: "Bearer " + token}
}

// Authenticate logs in with the configured credentials.
func (a *SessionAuth) Authenticate(ctx context.Context) error {
	a.credMu.RLock()
	email, password := a.email, a.password
	a.credMu.RUnlock()

	if email == "" || password == "" {
		return motor.ErrLoginRequired
	}

	_, err := a.Login(ctx, email, password)

	return err
}

// Login exchanges email and password for a new session and returns the access
// token. The credentials are kept for later re-authentication.
func (a *SessionAuth) Login(ctx context.Context, email, password string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", motor.ErrEmailRequired
	}

	if password == "" {
		return "", motor.ErrPasswordRequired
	}

	result, err := a.share(ctx, "login:"+email, a.loginURL, func(ctx context.Context) (any, error) {
		token, err := a.exchange(ctx, "login", a.loginURL, map[string]string{
			"email":    email,
			"password": password,
		})
		if err != nil {
			return nil, err
		}

		a.credMu.Lock()
		a.email, a.password = email, password
		a.credMu.Unlock()

		a.save(ctx, token)

		a.logger.Info("Logged in", map[string]any{
			"auth_type":  string(a.authType),
			"account_id": token.AccountID,
		})

		return token.AccessToken, nil
	})
	if err != nil {
		return "", err
	}

	accessToken, _ := result.(string)

	return accessToken, nil
}

// Refresh exchanges the refresh token for a new access and refresh pair. It
// does nothing while the access token is fresh; call Expire first to force
// one. Concurrent callers share one exchange.
func (a *SessionAuth) Refresh(ctx context.Context) error {
	_, err := a.share(ctx, "refresh", a.refreshURL, func(ctx context.Context) (any, error) {
		if !a.store.RequiresRefresh(a.now()) {
			return nil, nil
		}

		current := a.store.Get()
		if current == nil || current.RefreshToken == "" {
			return nil, motor.ErrNotLoggedIn
		}

		if !current.CanRefresh(a.now()) {
			return nil, motor.ErrSessionExpired
		}

		token, err := a.exchange(ctx, "refresh", a.refreshURL, map[string]string{
			"refreshToken": current.RefreshToken,
		})
		if err != nil {
			return nil, err
		}

		// Refresh responses omit the account details.
		if token.AccountID == "" {
			token.AccountID = current.AccountID
		}

		if token.AccountType == "" {
			token.AccountType = current.AccountType
		}

		if token.Orgs == nil {
			token.Orgs = current.Orgs
		}

		a.save(ctx, token)
		a.logger.Debug("Session refreshed", map[string]any{"expires_at": token.ExpiresAt()})

		return nil, nil
	})

	return err
}

// Logout revokes the refresh token and clears the session locally and in the
// persister. A failed revocation is logged; the local session is cleared
// regardless.
func (a *SessionAuth) Logout(ctx context.Context) (bool, error) {
	current := a.store.Get()
	if current == nil || (current.AccessToken == "" && current.RefreshToken == "") {
		return false, nil
	}

	if current.RefreshToken != "" {
		body, err := json.Marshal(map[string]string{"refreshToken": current.RefreshToken})
		if err != nil {
			return false, fmt.Errorf("encoding logout request: %w", err)
		}

		if _, err := a.post(ctx, a.logoutURL, body); err != nil {
			a.logger.Warn("Logout request failed", map[string]any{"error": err.Error()})
		}
	}

	a.store.Clear()

	if a.persister != nil {
		if err := a.persister.ClearSession(ctx); err != nil {
			return true, fmt.Errorf("clearing stored session: %w", err)
		}
	}

	return true, nil
}

// share runs fn once for every concurrent caller of key. The exchange is
// detached from any single caller's context; a caller whose ctx ends first
// stops waiting with a transport error while the others get the result.
func (a *SessionAuth) share(ctx context.Context, key, url string, fn func(context.Context) (any, error)) (any, error) {
	detached := context.WithoutCancel(ctx)

	ch := a.flight.DoChan(key, func() (any, error) {
		return fn(detached)
	})

	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, &motor.TransportError{Method: http.MethodPost, URL: url, Err: ctx.Err()}
	}
}

func (a *SessionAuth) save(ctx context.Context, token *motor.SessionToken) {
	a.store.Set(token)

	if a.persister == nil {
		return
	}

	if err := a.persister.SaveSession(ctx, token); err != nil {
		a.logger.Warn("Failed to persist session", map[string]any{"error": err.Error()})
	}
}

// exchange posts payload to url and decodes a token response.
func (a *SessionAuth) exchange(ctx context.Context, op, url string, payload map[string]string) (*motor.SessionToken, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding %s request: %w", op, err)
	}

	respBody, err := a.post(ctx, url, body)
	if err != nil {
		if errors.Is(err, motor.ErrTransport) {
			return nil, err
		}

		return nil, &motor.AuthError{Op: op, Err: err}
	}

	var token motor.SessionToken

	if err := json.Unmarshal(respBody, &token); err != nil {
		return nil, &motor.AuthError{Op: op, Err: fmt.Errorf("parsing %s response: %w", op, err)}
	}

	if token.AccessToken == "" {
		return nil, &motor.AuthError{Op: op, Err: motor.ErrUnexpectedResponse}
	}

	token.LastRefresh = a.now()

	return &token, nil
}

func (a *SessionAuth) post(ctx context.Context, url string, body []byte) ([]byte, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := a.httpClient.Do(req)
	if resp == nil {
		return nil, &motor.TransportError{Method: http.MethodPost, URL: url, Err: err}
	}

	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &motor.TransportError{Method: http.MethodPost, URL: url, Err: err}
	}

	if resp.StatusCode >= http.StatusMultipleChoices {
		return nil, motor.NewAPIError(http.MethodPost, url, resp.StatusCode, respBody)
	}

	return respBody, nil
}
