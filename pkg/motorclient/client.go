// Package motorclient provides the main entry point for creating Motor API clients.
package motorclient

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cast"

	"github.com/nsurely/motor-go/internal/client"
	"github.com/nsurely/motor-go/pkg/motor"
)

// Environment variables read by ConfigFromEnv.
const (
	EnvOrgID     = "MOTOR_ORG_ID"
	EnvRegion    = "MOTOR_REGION"
	EnvURL       = "MOTOR_URL"
	EnvAPIKey    = "MOTOR_API_KEY"
	EnvAPISecret = "MOTOR_API_SECRET"
	EnvEmail     = "MOTOR_EMAIL"
	EnvPassword  = "MOTOR_PASSWORD"
	EnvAuthType  = "MOTOR_AUTH_TYPE"
	EnvTimeout   = "MOTOR_TIMEOUT"
	EnvDebug     = "MOTOR_DEBUG"
)

// New creates a new Motor API client. The configuration is validated before
// anything touches the network; sessions log in on the first request.
func New(ctx context.Context, config *motor.Config) (motor.Client, error) {
	c, err := client.New(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return c, nil
}

// NewWithAPIKey creates a client authenticated with an API key and secret.
func NewWithAPIKey(ctx context.Context, region motor.Region, orgID, apiKey, apiSecret string) (motor.Client, error) {
	return New(ctx, &motor.Config{
		OrgID:     orgID,
		Region:    region,
		APIKey:    apiKey,
		APISecret: apiSecret,
	})
}

// NewWithPassword creates a client that logs a user in with email and password.
func NewWithPassword(ctx context.Context, region motor.Region, orgID, email, password string) (motor.Client, error) {
	return New(ctx, &motor.Config{
		OrgID:    orgID,
		Region:   region,
		Email:    email,
		Password: password,
		AuthType: motor.AuthTypeUser,
	})
}

// NewDriverWithPassword is NewWithPassword for driver accounts.
func NewDriverWithPassword(ctx context.Context, region motor.Region, orgID, email, password string) (motor.Client, error) {
	return New(ctx, &motor.Config{
		OrgID:    orgID,
		Region:   region,
		Email:    email,
		Password: password,
		AuthType: motor.AuthTypeDriver,
	})
}

// NewPublic creates an unauthenticated client. Only public endpoints such as
// the organization settings and telematics ingest can be called with it.
func NewPublic(ctx context.Context, region motor.Region, orgID string) (motor.Client, error) {
	return New(ctx, &motor.Config{
		OrgID:  orgID,
		Region: region,
	})
}

// ConfigFromEnv builds a configuration from the MOTOR_* environment
// variables. Unset variables leave the matching field empty.
func ConfigFromEnv() (*motor.Config, error) {
	config := &motor.Config{
		OrgID:     strings.TrimSpace(os.Getenv(EnvOrgID)),
		Region:    motor.Region(strings.TrimSpace(os.Getenv(EnvRegion))),
		URL:       strings.TrimSpace(os.Getenv(EnvURL)),
		APIKey:    os.Getenv(EnvAPIKey),
		APISecret: os.Getenv(EnvAPISecret),
		Email:     os.Getenv(EnvEmail),
		Password:  os.Getenv(EnvPassword),
		AuthType:  motor.AuthType(strings.ToLower(strings.TrimSpace(os.Getenv(EnvAuthType)))),
	}

	if raw := os.Getenv(EnvTimeout); raw != "" {
		timeout, err := cast.ToDurationE(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", motor.ErrConfiguration, EnvTimeout, err)
		}

		config.Timeout = timeout
	}

	if raw := os.Getenv(EnvDebug); raw != "" {
		debug, err := cast.ToBoolE(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", motor.ErrConfiguration, EnvDebug, err)
		}

		config.Debug = debug
	}

	return config, nil
}

// NewFromEnv creates a client from ConfigFromEnv.
func NewFromEnv(ctx context.Context) (motor.Client, error) {
	config, err := ConfigFromEnv()
	if err != nil {
		return nil, err
	}

	return New(ctx, config)
}
