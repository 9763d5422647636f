package motor

import (
	"context"
	"encoding/json"
	"io"
	"time"
)

// Client is the main interface for the Motor API client.
type Client interface {
	Drivers() DriversClient
	Vehicles() VehiclesClient
	Fleets() FleetsClient
	BillingEvents() BillingEventsClient
	Policies() PoliciesClient
	Telematics() TelematicsClient

	// Request performs one authenticated call and returns the raw body, which
	// is nil for empty responses.
	Request(ctx context.Context, req *Request) (json.RawMessage, error)
	// BatchFetch pages through a list endpoint.
	BatchFetch(ctx context.Context, endpoint string, params Params, opts *BatchOptions) *BatchIterator[json.RawMessage]
	// Download streams an authenticated GET of rawURL into w.
	Download(ctx context.Context, rawURL string, w io.Writer) (int64, error)

	// OrgSettings returns the organization settings, loading them if needed.
	OrgSettings(ctx context.Context) (*OrgSettings, error)
	// RefreshOrgSettings reloads the organization settings.
	RefreshOrgSettings(ctx context.Context) (*OrgSettings, error)
	OrgName(ctx context.Context) (string, error)
	Language(ctx context.Context) (string, error)

	Login(ctx context.Context, email, password string) (string, error)
	// Signup creates a driver profile on a driver session client and logs the
	// new driver in when login is set.
	Signup(ctx context.Context, signup *DriverSignup, login bool) (*Driver, error)
	Logout(ctx context.Context) (bool, error)
	IsLoggedIn() bool
	// Session returns a copy of the current session, nil for API key clients.
	Session() *SessionToken

	OrgID() string
	BaseURL() string
	// Close waits for background work and releases the client's resources.
	Close() error
}

// DriversClient manages drivers.
type DriversClient interface {
	Get(ctx context.Context, id string, params Params) (*Driver, error)
	List(ctx context.Context, params Params, opts *BatchOptions) *BatchIterator[Driver]
	Create(ctx context.Context, fields map[string]any) (*Driver, error)
	Update(ctx context.Context, id string, fields map[string]any) (*Driver, error)
	Delete(ctx context.Context, id string) error
	BillingAccounts(ctx context.Context, driverID string, primaryOnly bool) ([]BillingAccount, error)
	BillingAccount(ctx context.Context, driverID, accountID string) (*BillingAccount, error)
	PrimaryBillingAccount(ctx context.Context, driverID string) (*BillingAccount, error)
	// Signup creates a driver without authenticating the request.
	Signup(ctx context.Context, signup *DriverSignup) (*Driver, error)
}

// VehiclesClient manages registered vehicles.
type VehiclesClient interface {
	Get(ctx context.Context, id string, params Params) (*RegisteredVehicle, error)
	Search(ctx context.Context, search *VehicleSearch, opts *BatchOptions) *BatchIterator[RegisteredVehicle]
	Update(ctx context.Context, id string, fields map[string]any) (*RegisteredVehicle, error)
	Delete(ctx context.Context, id string) error
}

// FleetsClient manages fleets and their members.
type FleetsClient interface {
	Get(ctx context.Context, id string, params Params) (*Fleet, error)
	List(ctx context.Context, params Params, opts *BatchOptions) *BatchIterator[Fleet]
	Create(ctx context.Context, fields map[string]any) (*Fleet, error)
	Update(ctx context.Context, id string, fields map[string]any) (*Fleet, error)
	Delete(ctx context.Context, id string) error
	Parent(ctx context.Context, fleet *Fleet) (*Fleet, error)
	Drivers(ctx context.Context, fleetID string, opts *BatchOptions) *BatchIterator[FleetDriver]
	Vehicles(ctx context.Context, fleetID string, opts *BatchOptions) *BatchIterator[FleetVehicle]
	Members(ctx context.Context, fleetID string) (*FleetMembers, error)
}

// BillingEventsClient manages billing events.
type BillingEventsClient interface {
	Get(ctx context.Context, id string) (*BillingEvent, error)
	List(ctx context.Context, params Params, opts *BatchOptions) *BatchIterator[BillingEvent]
	Update(ctx context.Context, id string, fields map[string]any) error
	UpdateStatus(ctx context.Context, id string, status BillingEventStatus, paymentID string) error
}

// PoliciesClient manages policies.
type PoliciesClient interface {
	Get(ctx context.Context, id string, params Params) (*Policy, error)
	List(ctx context.Context, params Params, opts *BatchOptions) *BatchIterator[Policy]
	Update(ctx context.Context, id string, fields map[string]any) error
}

// TelematicsClient sends trip data to the telematics ingest API.
type TelematicsClient interface {
	Track(ctx context.Context, batch *TrackBatch) error
	NewTrip(sourceID string, batchWindow time.Duration) (*TripManager, error)
}
