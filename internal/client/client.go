package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/hashicorp/go-multierror"

	"github.com/nsurely/motor-go/internal/auth"
	"github.com/nsurely/motor-go/internal/constants"
	"github.com/nsurely/motor-go/internal/http"
	"github.com/nsurely/motor-go/pkg/motor"
)

// Static errors for err113 compliance.
var (
	ErrSessionAuthRequired = fmt.Errorf("%w: client has no credentials to log in with", motor.ErrConfiguration)
	ErrDriverAuthRequired  = fmt.Errorf("%w: signing in a new driver requires a driver session client", motor.ErrConfiguration)
)

// Client implements the motor.Client interface.
type Client struct {
	httpClient    *http.Client
	provider      auth.Provider
	baseURL       string
	telematicsURL string
	orgID         string

	// ownedCache is closed with the client when it was built from CacheConfig.
	ownedCache motor.Cache

	// Resource clients
	drivers       motor.DriversClient
	vehicles      motor.VehiclesClient
	fleets        motor.FleetsClient
	billingEvents motor.BillingEventsClient
	policies      motor.PoliciesClient
	telematics    motor.TelematicsClient
}

// createProvider picks the authentication provider by credential precedence:
// API key first, then a user or driver session, then none. An explicit auth
// type alone yields a session client that is not logged in yet.
func createProvider(config *motor.Config, baseURL string) (auth.Provider, error) {
	if config.HasAPIKey() {
		provider, err := auth.NewAPIKeyAuth(config.APIKey, config.APISecret)
		if err != nil {
			return nil, fmt.Errorf("creating api key provider: %w", err)
		}

		return provider, nil
	}

	if config.HasSession() || config.AuthType != "" {
		return createSessionProvider(config, baseURL)
	}

	return nil, nil //nolint:nilnil // no credentials means unauthenticated
}

func createSessionProvider(config *motor.Config, baseURL string) (*auth.SessionAuth, error) {
	opts := []auth.SessionOption{
		auth.WithLogger(loggerOrNop(config.Logger)),
		auth.WithTimeout(config.EffectiveTimeout()),
	}

	if config.Email != "" {
		opts = append(opts, auth.WithCredentials(config.Email, config.Password))
	}

	if config.Session != nil {
		opts = append(opts, auth.WithSession(config.Session))
	}

	if config.SessionPersister != nil {
		opts = append(opts, auth.WithPersister(config.SessionPersister))
	}

	provider, err := auth.NewSessionAuth(baseURL, config.OrgID, config.EffectiveAuthType(), opts...)
	if err != nil {
		return nil, fmt.Errorf("creating session provider: %w", err)
	}

	return provider, nil
}

func createHTTPClientOptions(config *motor.Config, cache motor.Cache) []http.Option {
	var httpOpts []http.Option

	if config.Logger != nil {
		httpOpts = append(httpOpts, http.WithLogger(config.Logger))
	}

	if config.Debug {
		httpOpts = append(httpOpts, http.WithDebug(true))
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, http.WithUserAgent(config.UserAgent))
	}

	httpOpts = append(httpOpts, http.WithTimeout(config.EffectiveTimeout()))

	if config.RetryMax > 0 {
		retryWaitMin := constants.DefaultRetryWaitMin
		retryWaitMax := constants.DefaultRetryWaitMax

		if config.RetryWaitMin > 0 {
			retryWaitMin = config.RetryWaitMin
		}

		if config.RetryWaitMax > 0 {
			retryWaitMax = config.RetryWaitMax
		}

		httpOpts = append(httpOpts, http.WithRetryConfig(config.RetryMax, retryWaitMin, retryWaitMax))
	}

	if config.RateLimit > 0 {
		httpOpts = append(httpOpts, http.WithRateLimit(config.RateLimit, config.RateBurst))
	}

	if config.TracerProvider != nil {
		httpOpts = append(httpOpts, http.WithTracerProvider(config.TracerProvider))
	}

	if cache != nil {
		ttl := config.SettingsTTL
		if ttl <= 0 {
			ttl = constants.DefaultSettingsTTL
		}

		httpOpts = append(httpOpts, http.WithSettingsCache(cache, ttl))
	}

	return httpOpts
}

// New creates a client from config. No request is sent; a session client logs
// in lazily on its first call.
func New(ctx context.Context, config *motor.Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	baseURL, err := config.BaseURL()
	if err != nil {
		return nil, err
	}

	provider, err := createProvider(config, baseURL)
	if err != nil {
		return nil, err
	}

	return newClient(ctx, config, baseURL, provider)
}

func newClient(_ context.Context, config *motor.Config, baseURL string, provider auth.Provider) (*Client, error) {
	telematicsURL, err := config.ResolveTelematicsURL()
	if err != nil {
		return nil, err
	}

	client := &Client{
		provider:      provider,
		baseURL:       baseURL,
		telematicsURL: telematicsURL,
		orgID:         config.OrgID,
	}

	cache := config.Cache
	if cache == nil && config.CacheConfig != nil {
		cache, err = motor.NewCacheFromConfig(config.CacheConfig)
		if err != nil {
			return nil, fmt.Errorf("creating settings cache: %w", err)
		}

		client.ownedCache = cache
	}

	client.httpClient = http.NewClient(baseURL, config.OrgID, provider, createHTTPClientOptions(config, cache)...)

	client.initializeResourceClients()

	return client, nil
}

func (c *Client) initializeResourceClients() {
	c.drivers = NewDriversClient(c.httpClient)
	c.vehicles = NewVehiclesClient(c.httpClient)
	c.fleets = NewFleetsClient(c.httpClient)
	c.billingEvents = NewBillingEventsClient(c.httpClient)
	c.policies = NewPoliciesClient(c.httpClient)
	c.telematics = NewTelematicsClient(c.httpClient, c.telematicsURL, c.orgID)
}

// Drivers implements motor.Client.Drivers.
func (c *Client) Drivers() motor.DriversClient {
	return c.drivers
}

// Vehicles implements motor.Client.Vehicles.
func (c *Client) Vehicles() motor.VehiclesClient {
	return c.vehicles
}

// Fleets implements motor.Client.Fleets.
func (c *Client) Fleets() motor.FleetsClient {
	return c.fleets
}

// BillingEvents implements motor.Client.BillingEvents.
func (c *Client) BillingEvents() motor.BillingEventsClient {
	return c.billingEvents
}

// Policies implements motor.Client.Policies.
func (c *Client) Policies() motor.PoliciesClient {
	return c.policies
}

// Telematics implements motor.Client.Telematics.
func (c *Client) Telematics() motor.TelematicsClient {
	return c.telematics
}

// Request implements motor.Client.Request.
func (c *Client) Request(ctx context.Context, req *motor.Request) (json.RawMessage, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: request is required", motor.ErrConfiguration)
	}

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return nil, err
	}

	if len(resp.Body) == 0 {
		return nil, nil
	}

	return json.RawMessage(resp.Body), nil
}

// BatchFetch implements motor.Client.BatchFetch.
func (c *Client) BatchFetch(ctx context.Context, endpoint string, params motor.Params, opts *motor.BatchOptions) *motor.BatchIterator[json.RawMessage] {
	return motor.BatchFetch[json.RawMessage](ctx, c.httpClient, endpoint, params, opts)
}

// Download implements motor.Client.Download.
func (c *Client) Download(ctx context.Context, rawURL string, w io.Writer) (int64, error) {
	n, err := c.httpClient.Download(ctx, rawURL, w)
	if err != nil {
		return n, fmt.Errorf("downloading %s: %w", rawURL, err)
	}

	return n, nil
}

// OrgSettings implements motor.Client.OrgSettings.
func (c *Client) OrgSettings(ctx context.Context) (*motor.OrgSettings, error) {
	return c.httpClient.OrgSettings(ctx)
}

// RefreshOrgSettings implements motor.Client.RefreshOrgSettings.
func (c *Client) RefreshOrgSettings(ctx context.Context) (*motor.OrgSettings, error) {
	return c.httpClient.RefreshOrgSettings(ctx)
}

// OrgName returns the organization's display name.
func (c *Client) OrgName(ctx context.Context) (string, error) {
	settings, err := c.OrgSettings(ctx)
	if err != nil {
		return "", err
	}

	return settings.DisplayName, nil
}

// Language returns the organization's default language.
func (c *Client) Language(ctx context.Context) (string, error) {
	settings, err := c.OrgSettings(ctx)
	if err != nil {
		return "", err
	}

	return settings.Language(), nil
}

// Login logs in through the client's provider. API key clients have no session
// and return an empty token; public clients return ErrSessionAuthRequired.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	if c.provider == nil {
		return "", ErrSessionAuthRequired
	}

	token, err := c.provider.Login(ctx, email, password)
	if err != nil {
		return "", fmt.Errorf("logging in: %w", err)
	}

	return token, nil
}

// Signup creates a driver with the given credentials and extra fields, then
// logs the new driver in when login is set. Only driver session clients can
// sign up; users are added by another authenticated user.
func (c *Client) Signup(ctx context.Context, signup *motor.DriverSignup, login bool) (*motor.Driver, error) {
	session, ok := c.provider.(*auth.SessionAuth)
	if !ok || session.AuthType() != motor.AuthTypeDriver {
		return nil, ErrDriverAuthRequired
	}

	driver, err := c.drivers.Signup(ctx, signup)
	if err != nil {
		return nil, err
	}

	if login {
		if _, err := session.Login(ctx, signup.Email, signup.Password); err != nil {
			return driver, fmt.Errorf("logging in new driver: %w", err)
		}
	}

	return driver, nil
}

// Logout ends the session. It reports false when there was nothing to end.
func (c *Client) Logout(ctx context.Context) (bool, error) {
	if c.provider == nil {
		return false, nil
	}

	return c.provider.Logout(ctx)
}

// IsLoggedIn reports whether the client holds usable credentials.
func (c *Client) IsLoggedIn() bool {
	return c.provider != nil && c.provider.IsLoggedIn()
}

// Session returns a copy of the current session, or nil.
func (c *Client) Session() *motor.SessionToken {
	session, ok := c.provider.(*auth.SessionAuth)
	if !ok {
		return nil
	}

	return session.Session()
}

// Provider returns the authentication provider, nil for public clients.
func (c *Client) Provider() auth.Provider {
	return c.provider
}

// OrgID implements motor.Client.OrgID.
func (c *Client) OrgID() string {
	return c.orgID
}

// BaseURL implements motor.Client.BaseURL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// TelematicsURL returns the telematics ingest root.
func (c *Client) TelematicsURL() string {
	return c.telematicsURL
}

// Close stops background work and releases an owned settings cache.
func (c *Client) Close() error {
	var result *multierror.Error

	if err := c.httpClient.Close(); err != nil {
		result = multierror.Append(result, fmt.Errorf("closing transport: %w", err))
	}

	if closer, ok := c.ownedCache.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("closing settings cache: %w", err))
		}
	}

	return result.ErrorOrNil()
}

func loggerOrNop(logger motor.Logger) motor.Logger {
	if logger == nil {
		return motor.NopLogger{}
	}

	return logger
}

var _ motor.Client = (*Client)(nil)
