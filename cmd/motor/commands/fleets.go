package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/nsurely/motor-go/internal/constants"
	"github.com/nsurely/motor-go/pkg/motor"
)

// NewFleetsCommand creates the fleets command group
func NewFleetsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "fleets",
		Aliases: []string{"fleet"},
		Short:   "Manage fleets",
		Long:    "List fleets and inspect their drivers and vehicles",
	}

	cmd.AddCommand(newFleetsGetCommand())
	cmd.AddCommand(newFleetsListCommand())
	cmd.AddCommand(newFleetsMembersCommand())

	return cmd
}

func newFleetsGetCommand() *cobra.Command {
	var lang string

	cmd := &cobra.Command{
		Use:   "get FLEET_ID",
		Short: "Get fleet details",
		Long:  "Display detailed information about a specific fleet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(cmd, func(ctx context.Context, client motor.Client) (*motor.Fleet, error) {
				fleet, err := client.Fleets().Get(ctx, args[0], nil)
				if err != nil {
					return nil, fmt.Errorf("failed to get fleet: %w", err)
				}

				return fleet, nil
			}, func(fleet *motor.Fleet) []property {
				return fleetProperties(fleet, lang)
			})
		},
	}

	cmd.Flags().StringVar(&lang, "lang", "", "language for the name and description")

	return cmd
}

func fleetProperties(fleet *motor.Fleet, lang string) []property {
	return []property{
		{"ID", fleet.ID},
		{"Name", orNA(fleet.DisplayIn(lang))},
		{"Description", orNA(fleet.DescriptionIn(lang))},
		{"External ID", orNA(fleet.ExternalID)},
		{"Parent", orNA(fleet.ParentID)},
		{"Tags", orNA(strings.Join(fleet.TagList(), ", "))},
		{"Active", yesNo(fleet.IsActive)},
		{"Driver Assignment Required", yesNo(fleet.RequiresDriverAssignment)},
		{"Drivers", strconv.Itoa(fleet.DriverCount)},
		{"Vehicles", strconv.Itoa(fleet.VehicleCount)},
		{"Sub-fleets", strconv.Itoa(fleet.SubFleetCount)},
		{"Created", formatTime(fleet.CreatedAt)},
	}
}

func newFleetsListCommand() *cobra.Command {
	var flags listFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List fleets",
		Long:  "List the fleets of the organization, page by page",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, &flags,
				func(ctx context.Context, client motor.Client, params motor.Params, opts *motor.BatchOptions) *motor.BatchIterator[motor.Fleet] {
					return client.Fleets().List(ctx, params, opts)
				},
				nil,
				[]string{"ID", "Name", "Parent", "Active", "Drivers", "Vehicles", "Created"},
				func(f motor.Fleet) []string {
					return []string{f.ID, orNA(f.Display), orNA(f.ParentID), yesNo(f.IsActive), strconv.Itoa(f.DriverCount), strconv.Itoa(f.VehicleCount), formatAgo(f.CreatedAt)}
				},
			)
		},
	}

	flags.register(cmd)
	flags.registerParams(cmd)

	return cmd
}

func newFleetsMembersCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "members FLEET_ID",
		Short: "List fleet members",
		Long:  "List every driver and vehicle in a fleet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			ctx := commandContext(cmd)

			client, err := newClient(ctx, clientAuthenticated)
			if err != nil {
				return err
			}
			defer closeClient(client, &err)

			members, err := client.Fleets().Members(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to list fleet members: %w", err)
			}

			done, err := encodeStructured(cmd.OutOrStdout(), members)
			if done || err != nil {
				return err
			}

			return renderMembersTable(cmd, members)
		},
	}
}

func renderMembersTable(cmd *cobra.Command, members *motor.FleetMembers) error {
	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.Header("Kind", "ID", "Name", "Roles", "Active", "Joined")

	for _, member := range members.Drivers {
		id, name := constants.NotAvailable, constants.NotAvailable
		if member.Driver != nil {
			id, name = member.Driver.ID, orNA(member.Driver.FullName())
		}

		_ = table.Append("driver", id, name, driverRoles(member), yesNo(member.IsActive), formatAgo(member.CreatedAt))
	}

	for _, member := range members.Vehicles {
		id, name := orNA(member.SourceID), constants.NotAvailable
		if member.RegisteredVehicle != nil {
			id, name = member.RegisteredVehicle.ID, orNA(member.RegisteredVehicle.RegPlate)
		}

		_ = table.Append("vehicle", id, name, "", "", formatAgo(member.CreatedAt))
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "\n%d driver(s), %d vehicle(s)\n", len(members.Drivers), len(members.Vehicles))

	return nil
}

func driverRoles(member motor.FleetDriver) string {
	var roles []string
	if member.IsDriverManager {
		roles = append(roles, "driver manager")
	}

	if member.IsVehicleManager {
		roles = append(roles, "vehicle manager")
	}

	if member.IsBillingManager {
		roles = append(roles, "billing manager")
	}

	return strings.Join(roles, ", ")
}
