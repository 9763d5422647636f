package client

import (
	"context"

	"github.com/nsurely/motor-go/internal/http"
	"github.com/nsurely/motor-go/pkg/motor"
)

// VehiclesClient implements motor.VehiclesClient over registered vehicles.
type VehiclesClient struct {
	*ResourceClient[motor.RegisteredVehicle]
}

// NewVehiclesClient creates a new vehicles client.
func NewVehiclesClient(httpClient *http.Client) *VehiclesClient {
	return &VehiclesClient{
		ResourceClient: NewResourceClient[motor.RegisteredVehicle](httpClient, "registered-vehicles", "registered vehicle"),
	}
}

// Search pages through registered vehicles matching search. A nil search
// lists every vehicle in full form.
func (c *VehiclesClient) Search(ctx context.Context, search *motor.VehicleSearch, opts *motor.BatchOptions) *motor.BatchIterator[motor.RegisteredVehicle] {
	return c.List(ctx, search.Params(), opts)
}

var _ motor.VehiclesClient = (*VehiclesClient)(nil)
