package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"github.com/zalando/go-keyring"

	"github.com/nsurely/motor-go/internal/auth"
	"github.com/nsurely/motor-go/internal/constants"
	"github.com/nsurely/motor-go/pkg/motor"
	"github.com/nsurely/motor-go/pkg/motorclient"
)

// clientMode says which credentials a command needs.
type clientMode int

const (
	// clientAuthenticated fails without stored credentials.
	clientAuthenticated clientMode = iota
	// clientOptionalAuth uses credentials when present and falls back to a
	// public client.
	clientOptionalAuth
)

// newLogger builds the stderr logger used at --verbose.
func newLogger() motor.Logger {
	if !viper.GetBool("verbose") {
		return nil
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).
		With().Timestamp().Logger().
		Level(zerolog.DebugLevel)

	return motor.NewZerologLogger(logger)
}

// baseClientConfig maps the CLI configuration onto a client configuration
// without credentials.
func baseClientConfig(config *Config) (*motor.Config, error) {
	if strings.TrimSpace(config.OrgID) == "" {
		return nil, constants.ErrNoOrgConfigured
	}

	timeout, err := config.TimeoutDuration()
	if err != nil {
		return nil, err
	}

	region := motor.Region(strings.ToLower(config.Region))
	if region == "" && config.URL == "" {
		region = motor.RegionEU1
	}

	logger := newLogger()

	return &motor.Config{
		OrgID:    config.OrgID,
		Region:   region,
		URL:     config.URL,
		Timeout: timeout,
		Logger:  logger,
		Debug:   logger != nil,
	}, nil
}

// newClient builds a client from the configuration and stored credentials.
// API keys win over sessions, matching the library's precedence.
func newClient(ctx context.Context, mode clientMode) (motor.Client, error) {
	config := loadConfig()

	clientConfig, err := baseClientConfig(config)
	if err != nil {
		return nil, err
	}

	switch {
	case config.APIKey != "":
		secret, err := apiSecret(config)
		if err != nil {
			return nil, err
		}

		clientConfig.APIKey = config.APIKey
		clientConfig.APISecret = secret
	case config.Email != "":
		persister, err := sessionPersister(config)
		if err != nil {
			return nil, err
		}

		session, err := persister.LoadSession(ctx)
		if err != nil {
			return nil, fmt.Errorf("loading stored session: %w", err)
		}

		password := viper.GetString(keyPassword)
		if session == nil && password == "" {
			if mode == clientAuthenticated {
				return nil, constants.ErrNoCredentials
			}

			break
		}

		clientConfig.AuthType = motor.AuthType(strings.ToLower(config.AuthType))
		clientConfig.Session = session
		clientConfig.SessionPersister = persister

		if password != "" {
			clientConfig.Email = config.Email
			clientConfig.Password = password
		}
	case mode == clientAuthenticated:
		return nil, constants.ErrNoCredentials
	}

	return motorclient.New(ctx, clientConfig)
}

// sessionPersister returns where sessions for the configured account live.
func sessionPersister(config *Config) (motor.SessionPersister, error) {
	authType := strings.ToLower(config.AuthType)
	if authType == "" {
		authType = string(motor.AuthTypeUser)
	}

	account := strings.Join([]string{config.OrgID, authType, config.Email}, ":")

	if strings.ToLower(config.SessionStore) != sessionStoreFile {
		return auth.NewKeyringPersister(constants.KeyringService, account), nil
	}

	dir, err := ConfigDir()
	if err != nil {
		return nil, err
	}

	name := strings.NewReplacer(":", "_", "@", "_", "/", "_").Replace(account)

	return auth.NewFilePersister(filepath.Join(dir, "sessions", name+".json")), nil
}

func apiKeyAccount(orgID, apiKey string) string {
	return orgID + ":apikey:" + apiKey
}

// apiSecret reads the secret for the configured API key from MOTOR_API_SECRET
// or the keyring.
func apiSecret(config *Config) (string, error) {
	if secret := viper.GetString(keyAPISecret); secret != "" {
		return secret, nil
	}

	secret, err := keyring.Get(constants.KeyringService, apiKeyAccount(config.OrgID, config.APIKey))
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", constants.ErrNoCredentials
		}

		return "", fmt.Errorf("reading api secret from keyring: %w", err)
	}

	return secret, nil
}

// closeClient releases the client, keeping the first error.
func closeClient(client motor.Client, err *error) {
	if closeErr := client.Close(); closeErr != nil && *err == nil {
		*err = closeErr
	}
}
