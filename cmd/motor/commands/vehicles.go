package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/nsurely/motor-go/pkg/motor"
)

// NewVehiclesCommand creates the vehicles command group
func NewVehiclesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "vehicles",
		Aliases: []string{"vehicle", "veh"},
		Short:   "Manage registered vehicles",
		Long:    "Search and inspect the vehicles registered with the organization",
	}

	cmd.AddCommand(newVehiclesGetCommand())
	cmd.AddCommand(newVehiclesSearchCommand())

	return cmd
}

func newVehiclesGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get VEHICLE_ID",
		Short: "Get vehicle details",
		Long:  "Display detailed information about a specific registered vehicle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(cmd, func(ctx context.Context, client motor.Client) (*motor.RegisteredVehicle, error) {
				vehicle, err := client.Vehicles().Get(ctx, args[0], nil)
				if err != nil {
					return nil, fmt.Errorf("failed to get vehicle: %w", err)
				}

				return vehicle, nil
			}, vehicleProperties)
		},
	}
}

func vehicleProperties(vehicle *motor.RegisteredVehicle) []property {
	props := []property{
		{"ID", vehicle.ID},
		{"Registration", orNA(vehicle.RegPlate)},
		{"VIN", orNA(vehicle.Vin)},
		{"Source ID", orNA(vehicle.SourceID)},
		{"Year", strconv.Itoa(vehicle.Year)},
		{"Fuel", orNA(vehicle.FuelType)},
		{"Gearbox", orNA(vehicle.GearboxType)},
		{"Mileage", formatFloat(vehicle.MileageKm) + " km"},
		{"Active", yesNo(vehicle.IsActive)},
		{"Approved", yesNo(vehicle.IsApproved)},
		{"Drivers", strconv.Itoa(vehicle.TotalDrvCount)},
		{"Created", formatTime(vehicle.CreatedAt)},
	}

	if vehicle.Vehicle != nil {
		props = append(props,
			property{"Make", orNA(vehicle.Vehicle.Brand)},
			property{"Model", orNA(vehicle.Vehicle.Model)},
		)
	}

	return props
}

func newVehiclesSearchCommand() *cobra.Command {
	var (
		flags    listFlags
		search   motor.VehicleSearch
		active   bool
		approved bool
	)

	cmd := &cobra.Command{
		Use:     "search",
		Aliases: []string{"list"},
		Short:   "Search registered vehicles",
		Long:    "Search registered vehicles by registration plate, VIN or state",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("active") {
				search.IsActive = &active
			}

			if cmd.Flags().Changed("approved") {
				search.IsApproved = &approved
			}

			return runList(cmd, &flags,
				func(ctx context.Context, client motor.Client, _ motor.Params, opts *motor.BatchOptions) *motor.BatchIterator[motor.RegisteredVehicle] {
					return client.Vehicles().Search(ctx, &search, opts)
				},
				nil,
				[]string{"ID", "Registration", "VIN", "Year", "Active", "Approved", "Created"},
				func(v motor.RegisteredVehicle) []string {
					return []string{v.ID, orNA(v.RegPlate), orNA(v.Vin), strconv.Itoa(v.Year), yesNo(v.IsActive), yesNo(v.IsApproved), formatAgo(v.CreatedAt)}
				},
			)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&search.RegPlate, "reg-plate", "", "registration plate")
	cmd.Flags().StringVar(&search.Vin, "vin", "", "vehicle identification number")
	cmd.Flags().BoolVar(&active, "active", false, "only active (or, with =false, inactive) vehicles")
	cmd.Flags().BoolVar(&approved, "approved", false, "only approved (or, with =false, unapproved) vehicles")
	cmd.Flags().BoolVar(&search.Brief, "brief", false, "request the short record form")

	return cmd
}
