package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nsurely/motor-go/internal/constants"
	"github.com/nsurely/motor-go/pkg/motor"
)

// NewOrgCommand creates the org command group
func NewOrgCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "org",
		Aliases: []string{"organization"},
		Short:   "Show organization settings",
		Long:    "Show the public settings of the configured organization. No login is required",
	}

	cmd.AddCommand(newOrgSettingsCommand())
	cmd.AddCommand(newOrgNameCommand())
	cmd.AddCommand(newOrgLanguageCommand())

	return cmd
}

func newOrgSettingsCommand() *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show organization settings",
		Long:  "Display the organization's branding, feature switches and onboarding rules",
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			ctx := commandContext(cmd)

			client, err := newClient(ctx, clientOptionalAuth)
			if err != nil {
				return err
			}
			defer closeClient(client, &err)

			var settings *motor.OrgSettings
			if refresh {
				settings, err = client.RefreshOrgSettings(ctx)
			} else {
				settings, err = client.OrgSettings(ctx)
			}

			if err != nil {
				return fmt.Errorf("failed to load organization settings: %w", err)
			}

			return renderDetails(cmd, settings, orgSettingsProperties(settings))
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass any cached copy")

	return cmd
}

func orgSettingsProperties(settings *motor.OrgSettings) []property {
	active := constants.NotAvailable
	if settings.IsActive != nil {
		active = yesNo(*settings.IsActive)
	}

	props := []property{
		{"ID", orNA(settings.ID)},
		{"Name", orNA(settings.DisplayName)},
		{"Group", orNA(settings.OrgGroupDisplayName)},
		{"Profile Type", orNA(settings.ProfileType)},
		{"Source ID Type", orNA(settings.SourceIDType)},
		{"Environment", orNA(settings.Env)},
		{"Language", settings.Language()},
		{"Active", active},
		{"Created", orNA(settings.CreatedAt)},
	}

	if features := settings.Features; features != nil {
		props = append(props,
			property{"Claims", yesNo(features.ClaimsOn)},
			property{"Scoring", yesNo(features.ScoringOn)},
			property{"Rewards", yesNo(features.RewardsOn)},
			property{"Billing", yesNo(features.BillingOn)},
			property{"Fleets", yesNo(features.FleetOn)},
		)
	}

	if tos := settings.Tos; tos != nil {
		props = append(props, property{"Contact", orNA(tos.ContactEmail)})
	}

	return props
}

func newOrgNameCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "name",
		Short: "Print the organization name",
		Long:  "Print the display name of the configured organization",
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			ctx := commandContext(cmd)

			client, err := newClient(ctx, clientOptionalAuth)
			if err != nil {
				return err
			}
			defer closeClient(client, &err)

			name, err := client.OrgName(ctx)
			if err != nil {
				return fmt.Errorf("failed to load organization name: %w", err)
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), name)

			return nil
		},
	}
}

func newOrgLanguageCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "language",
		Aliases: []string{"lang"},
		Short:   "Print the organization language",
		Long:    "Print the default language code of the configured organization",
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			ctx := commandContext(cmd)

			client, err := newClient(ctx, clientOptionalAuth)
			if err != nil {
				return err
			}
			defer closeClient(client, &err)

			lang, err := client.Language(ctx)
			if err != nil {
				return fmt.Errorf("failed to load organization language: %w", err)
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), lang)

			return nil
		},
	}
}
