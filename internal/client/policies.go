package client

import (
	"context"

	"github.com/nsurely/motor-go/internal/http"
	"github.com/nsurely/motor-go/pkg/motor"
)

// PoliciesClient implements motor.PoliciesClient.
type PoliciesClient struct {
	policies *ResourceClient[motor.Policy]
}

// NewPoliciesClient creates a new policies client.
func NewPoliciesClient(httpClient *http.Client) *PoliciesClient {
	return &PoliciesClient{
		policies: NewResourceClient[motor.Policy](httpClient, "policies", "policy"),
	}
}

// Get retrieves a policy.
func (c *PoliciesClient) Get(ctx context.Context, id string, params motor.Params) (*motor.Policy, error) {
	return c.policies.Get(ctx, id, params)
}

// List pages through policies.
func (c *PoliciesClient) List(ctx context.Context, params motor.Params, opts *motor.BatchOptions) *motor.BatchIterator[motor.Policy] {
	return c.policies.List(ctx, params, opts)
}

// Update patches a policy.
func (c *PoliciesClient) Update(ctx context.Context, id string, fields map[string]any) error {
	_, err := c.policies.patch(ctx, id, fields)

	return err
}

var _ motor.PoliciesClient = (*PoliciesClient)(nil)
