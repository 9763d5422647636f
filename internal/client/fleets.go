package client

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/nsurely/motor-go/internal/http"
	"github.com/nsurely/motor-go/pkg/motor"
)

// FleetsClient implements motor.FleetsClient.
type FleetsClient struct {
	*ResourceClient[motor.Fleet]
}

// NewFleetsClient creates a new fleets client.
func NewFleetsClient(httpClient *http.Client) *FleetsClient {
	return &FleetsClient{
		ResourceClient: NewResourceClient[motor.Fleet](httpClient, "fleets", "fleet"),
	}
}

// Parent retrieves the parent of a sub fleet, or nil for a top level fleet.
func (c *FleetsClient) Parent(ctx context.Context, fleet *motor.Fleet) (*motor.Fleet, error) {
	if fleet == nil || !fleet.HasParent() {
		return nil, nil //nolint:nilnil // top level fleet
	}

	parent, err := c.Get(ctx, fleet.ParentID, nil)
	if err != nil {
		return nil, fmt.Errorf("getting parent of fleet %s: %w", fleet.ID, err)
	}

	return parent, nil
}

// Drivers pages through the fleet's driver memberships.
func (c *FleetsClient) Drivers(ctx context.Context, fleetID string, opts *motor.BatchOptions) *motor.BatchIterator[motor.FleetDriver] {
	return motor.BatchFetch[motor.FleetDriver](ctx, c.httpClient, c.resourcePath+"/"+fleetID+"/drivers", nil, opts)
}

// Vehicles pages through the fleet's vehicle memberships.
func (c *FleetsClient) Vehicles(ctx context.Context, fleetID string, opts *motor.BatchOptions) *motor.BatchIterator[motor.FleetVehicle] {
	return motor.BatchFetch[motor.FleetVehicle](ctx, c.httpClient, c.resourcePath+"/"+fleetID+"/vehicles", nil, opts)
}

// Members fetches every driver and vehicle in the fleet. Both lists are
// paged concurrently; the first failure cancels the other.
func (c *FleetsClient) Members(ctx context.Context, fleetID string) (*motor.FleetMembers, error) {
	if _, err := c.itemPath(fleetID); err != nil {
		return nil, err
	}

	members := &motor.FleetMembers{}

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		drivers, err := c.Drivers(groupCtx, fleetID, nil).All()
		if err != nil {
			return fmt.Errorf("listing fleet drivers: %w", err)
		}

		members.Drivers = drivers

		return nil
	})

	group.Go(func() error {
		vehicles, err := c.Vehicles(groupCtx, fleetID, nil).All()
		if err != nil {
			return fmt.Errorf("listing fleet vehicles: %w", err)
		}

		members.Vehicles = vehicles

		return nil
	})

	if err := group.Wait(); err != nil {
		return nil, err
	}

	return members, nil
}

var _ motor.FleetsClient = (*FleetsClient)(nil)
