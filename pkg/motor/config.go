package motor

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// Region is one of the fixed deployment regions of the Motor API.
type Region string

const (
	RegionEU1 Region = "eu-1"
	RegionUS1 Region = "us-1"
	RegionME1 Region = "me-1"
)

// Regions lists every region a client can be pointed at.
var Regions = []Region{RegionEU1, RegionUS1, RegionME1}

// Valid reports whether r is a known region.
func (r Region) Valid() bool {
	return slices.Contains(Regions, r)
}

// APIURL is the API root for the region.
func (r Region) APIURL() string {
	return fmt.Sprintf("https://%s.nsurely-motor.com/v1/api", r)
}

// TelematicsURL is the telematics ingest root for the region.
func (r Region) TelematicsURL() string {
	return fmt.Sprintf("https://%s.nsurely-motor.com/v1/telematics", r)
}

// AuthType selects which account type a session login targets.
type AuthType string

const (
	AuthTypeUser   AuthType = "user"
	AuthTypeDriver AuthType = "driver"
)

// Valid reports whether t is user or driver.
func (t AuthType) Valid() bool {
	return t == AuthTypeUser || t == AuthTypeDriver
}

// DefaultTimeout is applied when Config.Timeout is zero.
const DefaultTimeout = 10 * time.Second

// Config represents client configuration for building a motor.Client.
//
// # Base URL
//
// Either Region or URL must be set. URL wins when both are present and has any
// trailing slash removed. Every organization scoped call is sent to
// "<base>/org/<OrgID>/<endpoint>".
//
// # Authentication precedence
//
//  1. APIKey/APISecret: a static "apiKey <key>:<secret>" Authorization header.
//  2. Email/Password or Session: a bearer session for a user (default) or
//     driver account, refreshed as it expires.
//  3. No credentials: only public endpoints can be called.
type Config struct {
	// OrgID: organization every request is scoped to. Required.
	OrgID string
	// Region: deployment region; ignored when URL is set.
	Region Region
	// URL: explicit API root such as "https://eu-1.nsurely-motor.com/v1/api".
	URL string
	// TelematicsURL: overrides the telematics ingest root. Derived from Region
	// or URL when empty.
	TelematicsURL string

	// APIKey and APISecret: API key credentials. Both or neither.
	APIKey    string
	APISecret string

	// Email and Password: session login credentials.
	Email    string
	Password string
	// AuthType: "user" (default) or "driver".
	AuthType AuthType
	// Session: a previously issued session to resume without logging in.
	Session *SessionToken
	// SessionPersister: receives every new session and is cleared on logout.
	SessionPersister SessionPersister

	// Timeout: per request timeout. Defaults to 10 seconds.
	Timeout time.Duration
	// RetryMax: transport level retries for 5xx, 429 and connection errors.
	// Zero (the default) leaves the single re-authentication retry as the only
	// retry the client performs.
	RetryMax int
	// RetryWaitMin and RetryWaitMax bound the backoff between those retries.
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	// RateLimit: maximum requests per second. Zero disables limiting.
	RateLimit float64
	// RateBurst: burst size for RateLimit. Defaults to 1.
	RateBurst int

	// Cache: backend for the organization settings snapshot. Nil keeps the
	// snapshot in memory only.
	Cache Cache
	// CacheConfig: builds a cache the client owns and closes when Cache is nil.
	CacheConfig *CacheConfig
	// SettingsTTL: lifetime of a cached settings snapshot.
	SettingsTTL time.Duration

	// Debug: logs every request and response when a Logger is provided.
	Debug bool
	// Logger: optional structured logger.
	Logger Logger
	// UserAgent: overrides the default User-Agent header.
	UserAgent string
	// TracerProvider: source of request spans. Defaults to the global provider.
	TracerProvider trace.TracerProvider
}

// HasAPIKey reports whether API key credentials were supplied.
func (c *Config) HasAPIKey() bool {
	return c.APIKey != "" || c.APISecret != ""
}

// HasSession reports whether session credentials or a stored session were supplied.
func (c *Config) HasSession() bool {
	return c.Email != "" || c.Password != "" || c.Session != nil
}

// Validate checks the configuration without touching the network.
func (c *Config) Validate() error {
	if c == nil {
		return ErrConfigRequired
	}

	if strings.TrimSpace(c.OrgID) == "" {
		return ErrOrgIDRequired
	}

	if _, err := c.BaseURL(); err != nil {
		return err
	}

	if c.HasAPIKey() {
		if strings.TrimSpace(c.APIKey) == "" {
			return ErrAPIKeyRequired
		}

		if strings.TrimSpace(c.APISecret) == "" {
			return ErrAPISecretRequired
		}

		return nil
	}

	if c.AuthType != "" && !c.AuthType.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidAuthType, c.AuthType)
	}

	if c.Email != "" && c.Password == "" {
		return ErrPasswordRequired
	}

	if c.Password != "" && c.Email == "" {
		return ErrEmailRequired
	}

	return nil
}

// BaseURL resolves the API root from URL or Region.
func (c *Config) BaseURL() (string, error) {
	if c.URL != "" {
		return normalizeURL(c.URL)
	}

	if c.Region == "" {
		return "", ErrRegionOrURLRequired
	}

	if !c.Region.Valid() {
		return "", fmt.Errorf("%w: %q (must be one of eu-1, us-1, me-1)", ErrInvalidRegion, c.Region)
	}

	return c.Region.APIURL(), nil
}

// ResolveTelematicsURL returns the telematics ingest root.
func (c *Config) ResolveTelematicsURL() (string, error) {
	if c.TelematicsURL != "" {
		return normalizeURL(c.TelematicsURL)
	}

	if c.URL != "" {
		base, err := normalizeURL(c.URL)
		if err != nil {
			return "", err
		}

		return strings.TrimSuffix(base, "/api") + "/telematics", nil
	}

	if !c.Region.Valid() {
		return "", ErrRegionOrURLRequired
	}

	return c.Region.TelematicsURL(), nil
}

// EffectiveTimeout returns Timeout or the default.
func (c *Config) EffectiveTimeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}

	return DefaultTimeout
}

// EffectiveAuthType returns AuthType or user.
func (c *Config) EffectiveAuthType() AuthType {
	if c.AuthType == "" {
		return AuthTypeUser
	}

	return c.AuthType
}

// normalizeURL trims trailing slashes and adds https:// when no scheme is present.
func normalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}

	if parsed.Host == "" {
		return "", fmt.Errorf("%w: %q has no host", ErrInvalidURL, raw)
	}

	return strings.TrimRight(raw, "/"), nil
}
