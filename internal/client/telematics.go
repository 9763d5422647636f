package client

import (
	"context"
	"fmt"
	"net/http"
	"time"

	motorhttp "github.com/nsurely/motor-go/internal/http"
	"github.com/nsurely/motor-go/pkg/motor"
)

// TelematicsClient implements motor.TelematicsClient.
type TelematicsClient struct {
	httpClient *motorhttp.Client
	trackURL   string
	orgID      string
}

// NewTelematicsClient creates a client for the ingest API rooted at telematicsURL.
func NewTelematicsClient(httpClient *motorhttp.Client, telematicsURL, orgID string) *TelematicsClient {
	return &TelematicsClient{
		httpClient: httpClient,
		trackURL:   telematicsURL + "/track",
		orgID:      orgID,
	}
}

// Track sends one batch. The ingest API is not authenticated; the batch is
// tied to the organization by its orgId.
func (c *TelematicsClient) Track(ctx context.Context, batch *motor.TrackBatch) error {
	if batch == nil {
		return nil
	}

	if batch.SourceID == "" {
		return fmt.Errorf("source: %w", motor.ErrIDRequired)
	}

	body := *batch
	if body.OrgID == "" {
		body.OrgID = c.orgID
	}

	_, err := c.httpClient.Do(ctx, &motor.Request{
		Method: http.MethodPost,
		URL:    c.trackURL,
		Body:   &body,
		Public: true,
	})
	if err != nil {
		return fmt.Errorf("sending telematics batch: %w", err)
	}

	return nil
}

// NewTrip creates a TripManager that sends through this client.
func (c *TelematicsClient) NewTrip(sourceID string, batchWindow time.Duration) (*motor.TripManager, error) {
	return motor.NewTripManager(c, sourceID, c.orgID, batchWindow)
}

var _ motor.TelematicsClient = (*TelematicsClient)(nil)
