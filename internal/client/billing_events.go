package client

import (
	"context"
	"fmt"

	"github.com/nsurely/motor-go/internal/http"
	"github.com/nsurely/motor-go/pkg/motor"
)

// BillingEventsClient implements motor.BillingEventsClient.
type BillingEventsClient struct {
	events *ResourceClient[motor.BillingEvent]
}

// NewBillingEventsClient creates a new billing events client.
func NewBillingEventsClient(httpClient *http.Client) *BillingEventsClient {
	return &BillingEventsClient{
		events: NewResourceClient[motor.BillingEvent](httpClient, "billing-events", "billing event"),
	}
}

// Get retrieves a billing event.
func (c *BillingEventsClient) Get(ctx context.Context, id string) (*motor.BillingEvent, error) {
	return c.events.Get(ctx, id, nil)
}

// List pages through billing events.
func (c *BillingEventsClient) List(ctx context.Context, params motor.Params, opts *motor.BatchOptions) *motor.BatchIterator[motor.BillingEvent] {
	return c.events.List(ctx, params, opts)
}

// Update patches a billing event with API formatted fields.
func (c *BillingEventsClient) Update(ctx context.Context, id string, fields map[string]any) error {
	_, err := c.events.patch(ctx, id, fields)

	return err
}

// UpdateStatus sets the payment status, attaching paymentID when given.
func (c *BillingEventsClient) UpdateStatus(ctx context.Context, id string, status motor.BillingEventStatus, paymentID string) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %q", motor.ErrInvalidStatus, status)
	}

	fields := map[string]any{"status": string(status)}
	if paymentID != "" {
		fields["paymentId"] = paymentID
	}

	return c.Update(ctx, id, fields)
}

var _ motor.BillingEventsClient = (*BillingEventsClient)(nil)
