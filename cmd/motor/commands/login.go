package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/zalando/go-keyring"
	"golang.org/x/term"

	"github.com/nsurely/motor-go/internal/constants"
	"github.com/nsurely/motor-go/pkg/motor"
	"github.com/nsurely/motor-go/pkg/motorclient"
)

// NewLoginCommand creates the login command
func NewLoginCommand() *cobra.Command {
	var (
		email     string
		password  string
		driver    bool
		apiKey    string
		apiSecret string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the Motor API",
		Long: `Authenticate against an organization with a user or driver account, or
store an API key. Sessions are kept in the system keyring (or a file when
session-store is "file") and refreshed automatically.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if (apiKey != "" || apiSecret != "") && email != "" {
				return constants.ErrInvalidAuthMethod
			}

			if apiKey != "" || apiSecret != "" {
				return loginWithAPIKey(cmd, apiKey, apiSecret)
			}

			authType := motor.AuthTypeUser
			if driver {
				authType = motor.AuthTypeDriver
			}

			return loginWithPassword(cmd, email, password, authType)
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password (prompted when omitted)")
	cmd.Flags().BoolVar(&driver, "driver", false, "log in as a driver instead of a user")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "API key to store instead of logging in")
	cmd.Flags().StringVar(&apiSecret, "api-secret", "", "API secret for --api-key")

	return cmd
}

func loginWithPassword(cmd *cobra.Command, email, password string, authType motor.AuthType) (err error) {
	ctx := commandContext(cmd)

	reader := bufio.NewReader(cmd.InOrStdin())

	if email == "" {
		email = viper.GetString(keyEmail)
	}

	if email == "" {
		_, _ = fmt.Fprint(cmd.OutOrStdout(), "Email: ")
		email, _ = reader.ReadString('\n')
		email = strings.TrimSpace(email)
	}

	if email == "" {
		return constants.ErrEmailRequired
	}

	if password == "" {
		password = viper.GetString(keyPassword)
	}

	if password == "" {
		password, err = readPassword(cmd, reader)
		if err != nil {
			return err
		}
	}

	if password == "" {
		return constants.ErrPasswordRequired
	}

	config := loadConfig()
	config.Email = email
	config.AuthType = string(authType)
	config.APIKey = ""

	clientConfig, err := baseClientConfig(config)
	if err != nil {
		return err
	}

	persister, err := sessionPersister(config)
	if err != nil {
		return err
	}

	clientConfig.AuthType = authType
	clientConfig.Email = email
	clientConfig.Password = password
	clientConfig.SessionPersister = persister

	client, err := motorclient.New(ctx, clientConfig)
	if err != nil {
		return err
	}
	defer closeClient(client, &err)

	if _, err := client.Login(ctx, email, password); err != nil {
		return err
	}

	err = updateConfigFile(ctx, func(c *Config) {
		c.OrgID = config.OrgID
		c.Email = email
		c.AuthType = string(authType)
		c.APIKey = ""
	})
	if err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	session := client.Session()

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Logged in to %s as %s (%s)\n", config.OrgID, email, authType)

	if session != nil {
		expires := session.ExpiresAt()
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Account: %s\nSession expires: %s\n", orNA(session.AccountID), formatTime(&expires))
	}

	return nil
}

func loginWithAPIKey(cmd *cobra.Command, apiKey, apiSecret string) (err error) {
	ctx := commandContext(cmd)

	if apiKey == "" {
		return motor.ErrAPIKeyRequired
	}

	if apiSecret == "" {
		apiSecret = viper.GetString(keyAPISecret)
	}

	if apiSecret == "" {
		return motor.ErrAPISecretRequired
	}

	config := loadConfig()

	clientConfig, err := baseClientConfig(config)
	if err != nil {
		return err
	}

	clientConfig.APIKey = apiKey
	clientConfig.APISecret = apiSecret

	client, err := motorclient.New(ctx, clientConfig)
	if err != nil {
		return err
	}
	defer closeClient(client, &err)

	// One record is enough to prove the key works for this organization.
	if _, err := client.Request(ctx, &motor.Request{Endpoint: "drivers", Params: motor.Params{"limit": 1}}); err != nil {
		return fmt.Errorf("verifying api key: %w", err)
	}

	if err := keyring.Set(constants.KeyringService, apiKeyAccount(config.OrgID, apiKey), apiSecret); err != nil {
		return fmt.Errorf("saving api secret to keyring: %w", err)
	}

	err = updateConfigFile(ctx, func(c *Config) {
		c.OrgID = config.OrgID
		c.APIKey = apiKey
	})
	if err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Stored API key %s for %s\n", apiKey, config.OrgID)

	return nil
}

// readPassword reads without echo from a terminal, or a plain line otherwise.
func readPassword(cmd *cobra.Command, reader *bufio.Reader) (string, error) {
	_, _ = fmt.Fprint(cmd.OutOrStdout(), "Password: ")

	if file, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		bytePassword, err := term.ReadPassword(int(file.Fd()))
		_, _ = fmt.Fprintln(cmd.OutOrStdout())

		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}

		return string(bytePassword), nil
	}

	line, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	return strings.TrimRight(line, "\r\n"), nil
}

// NewLogoutCommand creates the logout command
func NewLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out of the Motor API",
		Long:  "End the stored session, or forget the stored API key",
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			ctx := commandContext(cmd)

			config := loadConfig()

			if config.APIKey != "" {
				err := keyring.Delete(constants.KeyringService, apiKeyAccount(config.OrgID, config.APIKey))
				if err != nil && !errors.Is(err, keyring.ErrNotFound) {
					return fmt.Errorf("deleting api secret from keyring: %w", err)
				}

				if err := updateConfigFile(ctx, func(c *Config) { c.APIKey = "" }); err != nil {
					return fmt.Errorf("failed to save configuration: %w", err)
				}

				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Removed API key %s\n", config.APIKey)

				return nil
			}

			client, err := newClient(ctx, clientOptionalAuth)
			if err != nil {
				return err
			}
			defer closeClient(client, &err)

			loggedOut, err := client.Logout(ctx)
			if err != nil {
				return fmt.Errorf("failed to log out: %w", err)
			}

			if !loggedOut {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Not logged in")

				return nil
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Logged out")

			return nil
		},
	}
}
