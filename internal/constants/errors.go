package constants

import "errors"

// CLI configuration errors.
var (
	ErrNoOrgConfigured     = errors.New("no organization configured, use 'motor config set org-id <id>' or --org")
	ErrNoCredentials       = errors.New("no credentials configured, run 'motor login' first")
	ErrUnknownConfigKey    = errors.New("unknown configuration key")
	ErrSecretKeyNotAllowed = errors.New("secrets cannot be set via config command, use 'motor login'")
	ErrConfigLocked        = errors.New("config file is locked by another process")
)

// Input validation errors.
var (
	ErrInvalidParam      = errors.New("invalid parameter, expected key=value")
	ErrInvalidHeader     = errors.New("invalid header, expected Name: value")
	ErrInvalidFilter     = errors.New("filter expression must evaluate to a boolean")
	ErrInvalidOutput     = errors.New("invalid output format")
	ErrPasswordRequired  = errors.New("password is required")
	ErrEmailRequired     = errors.New("email is required")
	ErrInvalidAuthMethod = errors.New("use either --api-key/--api-secret or --email")
)
