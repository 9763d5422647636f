package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/nsurely/motor-go/pkg/motor"
)

// NewDriversCommand creates the drivers command group
func NewDriversCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "drivers",
		Aliases: []string{"driver", "drv"},
		Short:   "Manage drivers",
		Long:    "List and inspect the drivers of the organization",
	}

	cmd.AddCommand(newDriversGetCommand())
	cmd.AddCommand(newDriversListCommand())
	cmd.AddCommand(newDriversBillingAccountsCommand())

	return cmd
}

func newDriversGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get DRIVER_ID",
		Short: "Get driver details",
		Long:  "Display detailed information about a specific driver",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(cmd, func(ctx context.Context, client motor.Client) (*motor.Driver, error) {
				driver, err := client.Drivers().Get(ctx, args[0], nil)
				if err != nil {
					return nil, fmt.Errorf("failed to get driver: %w", err)
				}

				return driver, nil
			}, driverProperties)
		},
	}
}

func driverProperties(driver *motor.Driver) []property {
	props := []property{
		{"ID", driver.ID},
		{"Name", orNA(driver.FullName())},
		{"Email", orNA(driver.Email)},
		{"Phone", orNA(driver.TelE164)},
		{"Source ID", orNA(driver.SourceID)},
		{"External ID", orNA(driver.ExternalID)},
		{"Language", orNA(driver.Lang)},
		{"Active", yesNo(driver.IsActive)},
		{"Approved", yesNo(driver.IsApproved)},
		{"Activated", yesNo(driver.DriverActivated)},
		{"Vehicles", strconv.Itoa(driver.VehicleCount)},
		{"Points", strconv.Itoa(driver.TotalPoints)},
		{"Distance (30 days)", formatFloat(driver.DistanceKm30Days) + " km"},
		{"Created", formatTime(driver.CreatedAt)},
	}

	if !driver.Dob.IsZero() {
		props = append(props, property{"Date of Birth", driver.Dob.String()})
	}

	if driver.Risk != nil && driver.Risk.Score != nil {
		props = append(props, property{"Risk Score", formatFloat(*driver.Risk.Score)})
	}

	return props
}

func newDriversListCommand() *cobra.Command {
	var flags listFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List drivers",
		Long:  "List the drivers of the organization, page by page",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, &flags,
				func(ctx context.Context, client motor.Client, params motor.Params, opts *motor.BatchOptions) *motor.BatchIterator[motor.Driver] {
					return client.Drivers().List(ctx, params, opts)
				},
				nil,
				[]string{"ID", "Name", "Email", "Active", "Approved", "Vehicles", "Created"},
				func(d motor.Driver) []string {
					return []string{d.ID, orNA(d.FullName()), orNA(d.Email), yesNo(d.IsActive), yesNo(d.IsApproved), strconv.Itoa(d.VehicleCount), formatAgo(d.CreatedAt)}
				},
			)
		},
	}

	flags.register(cmd)
	flags.registerParams(cmd)

	return cmd
}

func newDriversBillingAccountsCommand() *cobra.Command {
	var primary bool

	cmd := &cobra.Command{
		Use:     "billing-accounts DRIVER_ID",
		Aliases: []string{"accounts"},
		Short:   "List a driver's billing accounts",
		Long:    "List the billing accounts owned by a driver",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			ctx := commandContext(cmd)

			client, err := newClient(ctx, clientAuthenticated)
			if err != nil {
				return err
			}
			defer closeClient(client, &err)

			accounts, err := client.Drivers().BillingAccounts(ctx, args[0], primary)
			if err != nil {
				return fmt.Errorf("failed to list billing accounts: %w", err)
			}

			return renderList(cmd, accounts,
				[]string{"ID", "Currency", "Primary", "Active", "Expiry", "Created"},
				func(a motor.BillingAccount) []string {
					return []string{a.ID, orNA(a.CurrencyIsoCode), yesNo(a.IsPrimary), yesNo(a.IsActive), orNA(a.Expiry), formatAgo(a.CreatedAt)}
				},
			)
		},
	}

	cmd.Flags().BoolVar(&primary, "primary", false, "only the primary account")

	return cmd
}
