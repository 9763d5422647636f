package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/nsurely/motor-go/internal/constants"
	"github.com/nsurely/motor-go/pkg/motor"
)

// Configuration keys, shared by the config file, viper and MOTOR_* variables.
const (
	keyOrgID        = "org-id"
	keyRegion       = "region"
	keyURL          = "url"
	keyEmail        = "email"
	keyAuthType     = "auth-type"
	keyAPIKey       = "api-key"
	keyOutput       = "output"
	keyTimeout      = "timeout"
	keySessionStore = "session-store"

	// Only read from the environment, never written.
	keyAPISecret = "api-secret"
	keyPassword  = "password"
)

// Session stores.
const (
	sessionStoreKeyring = "keyring"
	sessionStoreFile    = "file"
)

var (
	configKeys = []string{
		keyOrgID, keyRegion, keyURL, keyEmail, keyAuthType,
		keyAPIKey, keyOutput, keyTimeout, keySessionStore,
	}
	secretKeys = []string{keyAPISecret, keyPassword, "secret", "token"}
)

// Config represents the CLI configuration.
type Config struct {
	OrgID        string `json:"org_id,omitempty"        yaml:"org-id,omitempty"`
	Region       string `json:"region,omitempty"        yaml:"region,omitempty"`
	URL          string `json:"url,omitempty"           yaml:"url,omitempty"`
	Email        string `json:"email,omitempty"         yaml:"email,omitempty"`
	AuthType     string `json:"auth_type,omitempty"     yaml:"auth-type,omitempty"`
	APIKey       string `json:"api_key,omitempty"       yaml:"api-key,omitempty"`
	Output       string `json:"output,omitempty"        yaml:"output,omitempty"`
	Timeout      string `json:"timeout,omitempty"       yaml:"timeout,omitempty"`
	SessionStore string `json:"session_store,omitempty" yaml:"session-store,omitempty"`
}

// get returns the value stored under a configuration key.
func (c *Config) get(key string) string {
	switch key {
	case keyOrgID:
		return c.OrgID
	case keyRegion:
		return c.Region
	case keyURL:
		return c.URL
	case keyEmail:
		return c.Email
	case keyAuthType:
		return c.AuthType
	case keyAPIKey:
		return c.APIKey
	case keyOutput:
		return c.Output
	case keyTimeout:
		return c.Timeout
	case keySessionStore:
		return c.SessionStore
	}

	return ""
}

// set stores value under key without validating it.
func (c *Config) set(key, value string) {
	switch key {
	case keyOrgID:
		c.OrgID = value
	case keyRegion:
		c.Region = value
	case keyURL:
		c.URL = value
	case keyEmail:
		c.Email = value
	case keyAuthType:
		c.AuthType = value
	case keyAPIKey:
		c.APIKey = value
	case keyOutput:
		c.Output = value
	case keyTimeout:
		c.Timeout = value
	case keySessionStore:
		c.SessionStore = value
	}
}

// TimeoutDuration parses Timeout. Bare numbers are seconds.
func (c *Config) TimeoutDuration() (time.Duration, error) {
	if c.Timeout == "" {
		return 0, nil
	}

	if seconds, err := cast.ToFloat64E(c.Timeout); err == nil {
		return time.Duration(seconds * float64(time.Second)), nil
	}

	timeout, err := cast.ToDurationE(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q: %w", c.Timeout, err)
	}

	return timeout, nil
}

// normalizeConfigValue validates and canonicalizes a value for key.
func normalizeConfigValue(key, value string) (string, error) {
	value = strings.TrimSpace(value)

	switch key {
	case keyRegion:
		if !motor.Region(strings.ToLower(value)).Valid() {
			return "", fmt.Errorf("%w: %q", motor.ErrInvalidRegion, value)
		}

		return strings.ToLower(value), nil
	case keyAuthType:
		if !motor.AuthType(strings.ToLower(value)).Valid() {
			return "", fmt.Errorf("%w: %q", motor.ErrInvalidAuthType, value)
		}

		return strings.ToLower(value), nil
	case keyOutput:
		value = strings.ToLower(value)
		if !slices.Contains([]string{constants.FormatTable, constants.FormatJSON, constants.FormatYAML}, value) {
			return "", fmt.Errorf("%w: %q", constants.ErrInvalidOutput, value)
		}

		return value, nil
	case keyTimeout:
		timeout, err := (&Config{Timeout: value}).TimeoutDuration()
		if err != nil {
			return "", err
		}

		return timeout.String(), nil
	case keySessionStore:
		value = strings.ToLower(value)
		if value != sessionStoreKeyring && value != sessionStoreFile {
			return "", fmt.Errorf("%w: session-store must be %s or %s", constants.ErrUnknownConfigKey, sessionStoreKeyring, sessionStoreFile)
		}

		return value, nil
	case keyURL:
		return strings.TrimRight(value, "/"), nil
	default:
		return value, nil
	}
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Show and change the Motor CLI configuration stored in ~/.motor/config.yml",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetCommand())
	cmd.AddCommand(newConfigUnsetCommand())
	cmd.AddCommand(newConfigClearCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the effective configuration, including flags and MOTOR_* environment variables",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			props := make([]property, 0, len(configKeys)+1)
			for _, key := range configKeys {
				props = append(props, property{name: key, value: orNA(config.get(key))})
			}

			secret := constants.NotAvailable
			if viper.GetString(keyAPISecret) != "" {
				secret = constants.MaskedSecret
			}

			props = append(props, property{name: keyAPISecret, value: secret})

			return renderDetails(cmd, config, props)
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Long:  "Set a configuration value. Keys: " + strings.Join(configKeys, ", "),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := strings.ToLower(args[0])

			if err := checkConfigKey(key); err != nil {
				return err
			}

			value, err := normalizeConfigValue(key, args[1])
			if err != nil {
				return err
			}

			err = updateConfigFile(cmd.Context(), func(config *Config) {
				config.set(key, value)
			})
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Set %s to %s\n", key, value)

			return nil
		},
	}
}

func newConfigUnsetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unset KEY",
		Short: "Unset a configuration value",
		Long:  "Remove a configuration value from the config file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := strings.ToLower(args[0])

			if err := checkConfigKey(key); err != nil {
				return err
			}

			err := updateConfigFile(cmd.Context(), func(config *Config) {
				config.set(key, "")
			})
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Unset %s\n", key)

			return nil
		},
	}
}

func newConfigClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear configuration",
		Long:  "Remove the config file. Stored sessions are left alone; use 'motor logout' for those",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configFilePath()
			if err != nil {
				return err
			}

			err = withConfigLock(cmd.Context(), path, func() error {
				err := os.Remove(path)
				if err != nil && !errors.Is(err, os.ErrNotExist) {
					return fmt.Errorf("failed to remove config file: %w", err)
				}

				return nil
			})
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Cleared all configuration")

			return nil
		},
	}
}

func checkConfigKey(key string) error {
	if slices.Contains(secretKeys, key) {
		return constants.ErrSecretKeyNotAllowed
	}

	if !slices.Contains(configKeys, key) {
		return fmt.Errorf("%w: %q", constants.ErrUnknownConfigKey, key)
	}

	return nil
}

// loadConfig returns the effective configuration: flags, then MOTOR_*
// variables, then the config file.
func loadConfig() *Config {
	return &Config{
		OrgID:        cast.ToString(viper.Get(keyOrgID)),
		Region:       cast.ToString(viper.Get(keyRegion)),
		URL:          cast.ToString(viper.Get(keyURL)),
		Email:        cast.ToString(viper.Get(keyEmail)),
		AuthType:     cast.ToString(viper.Get(keyAuthType)),
		APIKey:       cast.ToString(viper.Get(keyAPIKey)),
		Output:       cast.ToString(viper.Get(keyOutput)),
		Timeout:      cast.ToString(viper.Get(keyTimeout)),
		SessionStore: cast.ToString(viper.Get(keySessionStore)),
	}
}

// ConfigDir returns ~/.motor, creating it if needed.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}

	dir := filepath.Join(home, ".motor")
	if err := os.MkdirAll(dir, constants.ConfigDirPerm); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}

	return dir, nil
}

func configFilePath() (string, error) {
	if path := viper.ConfigFileUsed(); path != "" {
		return path, nil
	}

	if path := viper.GetString("config"); path != "" {
		return path, nil
	}

	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(dir, "config.yml"), nil
}

// readConfigFile reads only the config file, ignoring flags and environment.
// Hand-edited files may hold numbers or booleans; those are coerced to
// strings.
func readConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}

		return nil, fmt.Errorf("reading config file: %w", err)
	}

	raw := map[string]any{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	config := &Config{}

	for _, key := range configKeys {
		value, ok := raw[key]
		if !ok || value == nil {
			continue
		}

		s, err := cast.ToStringE(value)
		if err != nil {
			return nil, fmt.Errorf("config key %s: %w", key, err)
		}

		config.set(key, s)
	}

	return config, nil
}

func writeConfigFile(path string, config *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), constants.ConfigDirPerm); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(path, data, constants.ConfigFilePerm); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// updateConfigFile applies mutate to the config file under an exclusive lock
// so concurrent CLI invocations do not lose each other's writes.
func updateConfigFile(ctx context.Context, mutate func(*Config)) error {
	path, err := configFilePath()
	if err != nil {
		return err
	}

	return withConfigLock(ctx, path, func() error {
		config, err := readConfigFile(path)
		if err != nil {
			return err
		}

		mutate(config)

		return writeConfigFile(path, config)
	})
}

func withConfigLock(ctx context.Context, path string, fn func() error) error {
	if ctx == nil {
		ctx = context.Background()
	}

	if err := os.MkdirAll(filepath.Dir(path), constants.ConfigDirPerm); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	lockCtx, cancel := context.WithTimeout(ctx, constants.ConfigLockTimeout)
	defer cancel()

	lock := flock.New(path + ".lock")

	locked, err := lock.TryLockContext(lockCtx, 50*time.Millisecond)
	if err != nil || !locked {
		return fmt.Errorf("%w: %s", constants.ErrConfigLocked, path)
	}

	defer func() { _ = lock.Unlock() }()

	return fn()
}
