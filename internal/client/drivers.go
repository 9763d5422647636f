package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	motorhttp "github.com/nsurely/motor-go/internal/http"
	"github.com/nsurely/motor-go/pkg/motor"
)

// DriversClient implements motor.DriversClient.
type DriversClient struct {
	*ResourceClient[motor.Driver]
}

// NewDriversClient creates a new drivers client.
func NewDriversClient(httpClient *motorhttp.Client) *DriversClient {
	return &DriversClient{
		ResourceClient: NewResourceClient[motor.Driver](httpClient, "drivers", "driver"),
	}
}

// BillingAccounts lists a driver's billing accounts, only the primary one
// when primaryOnly is set.
func (c *DriversClient) BillingAccounts(ctx context.Context, driverID string, primaryOnly bool) ([]motor.BillingAccount, error) {
	path, err := c.itemPath(driverID)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Get(ctx, path+"/billing-accounts", motor.Params{"primary": primaryOnly})
	if err != nil {
		return nil, fmt.Errorf("listing billing accounts: %w", err)
	}

	if len(resp.Body) == 0 {
		return []motor.BillingAccount{}, nil
	}

	accounts, err := decode[[]motor.BillingAccount](resp.Body, "billing accounts")
	if err != nil {
		return nil, err
	}

	return *accounts, nil
}

// BillingAccount retrieves one of a driver's billing accounts.
func (c *DriversClient) BillingAccount(ctx context.Context, driverID, accountID string) (*motor.BillingAccount, error) {
	path, err := c.itemPath(driverID)
	if err != nil {
		return nil, err
	}

	if accountID == "" {
		return nil, fmt.Errorf("billing account: %w", motor.ErrIDRequired)
	}

	resp, err := c.httpClient.Get(ctx, path+"/billing-accounts/"+url.PathEscape(accountID), nil)
	if err != nil {
		return nil, fmt.Errorf("getting billing account: %w", err)
	}

	return decode[motor.BillingAccount](resp.Body, "billing account")
}

// PrimaryBillingAccount returns the driver's primary billing account with all
// details, or nil when the driver has none.
func (c *DriversClient) PrimaryBillingAccount(ctx context.Context, driverID string) (*motor.BillingAccount, error) {
	accounts, err := c.BillingAccounts(ctx, driverID, true)
	if err != nil {
		return nil, err
	}

	if len(accounts) == 0 {
		return nil, nil //nolint:nilnil // no primary account
	}

	// The list form is abbreviated.
	return c.BillingAccount(ctx, driverID, accounts[0].ID)
}

// Signup creates a driver. The request carries no credentials since the
// driver does not exist yet.
func (c *DriversClient) Signup(ctx context.Context, signup *motor.DriverSignup) (*motor.Driver, error) {
	fields, err := signup.Fields()
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(ctx, &motor.Request{
		Method:   http.MethodPost,
		Endpoint: c.resourcePath,
		Body:     fields,
		Public:   true,
	})
	if err != nil {
		return nil, fmt.Errorf("signing up driver: %w", err)
	}

	return decode[motor.Driver](resp.Body, "driver")
}

var _ motor.DriversClient = (*DriversClient)(nil)
