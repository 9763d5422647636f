package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for a single API call.
	DefaultHTTPTimeout = 10 * time.Second

	// ShortHTTPTimeout bounds background work such as the settings prefetch.
	ShortHTTPTimeout = 5 * time.Second

	// ConfigLockTimeout bounds how long the CLI waits for the config file lock.
	ConfigLockTimeout = 5 * time.Second
)

// Retry limits. Transport retries are off unless configured.
const (
	// DefaultRetryMax is the default number of transport retries.
	DefaultRetryMax = 0

	// DefaultRetryWaitMin is the minimum wait between transport retries.
	DefaultRetryWaitMin = 500 * time.Millisecond

	// DefaultRetryWaitMax is the maximum wait between transport retries.
	DefaultRetryWaitMax = 5 * time.Second
)

// Pagination.
const (
	// StandardPageSize is the default limit for list endpoints.
	StandardPageSize = 50

	// DefaultConcurrencyLimit bounds concurrent member fetches.
	DefaultConcurrencyLimit = 2
)

// Caching.
const (
	// DefaultCacheSize is the default number of entries in a memory cache.
	DefaultCacheSize = 100

	// DefaultSettingsTTL is how long a cached settings snapshot is trusted.
	DefaultSettingsTTL = 15 * time.Minute

	// SettingsCachePrefix prefixes organization settings cache keys.
	SettingsCachePrefix = "orgsettings."

	// DefaultNATSBucket is the KV bucket used when none is configured.
	DefaultNATSBucket = "motor-cache"
)

// Headers.
const (
	// HeaderAuthorization carries credentials.
	HeaderAuthorization = "Authorization"

	// HeaderRequestID correlates a logical request across its attempts.
	HeaderRequestID = "X-Request-ID"

	// DefaultUserAgent is sent when none is configured.
	DefaultUserAgent = "motor-go/1.0"
)

// UI and display constants.
const (
	// NotAvailable is used when information is not available.
	NotAvailable = "N/A"

	// MaskedSecret is used to hide sensitive information.
	MaskedSecret = "***"
)

// Format constants.
const (
	// FormatJSON for JSON output format.
	FormatJSON = "json"

	// FormatYAML for YAML output format.
	FormatYAML = "yaml"

	// FormatTable for table output format.
	FormatTable = "table"
)

// Keyring.
const (
	// KeyringService is the service name sessions are stored under.
	KeyringService = "motor-cli"
)
