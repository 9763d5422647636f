package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/nsurely/motor-go/internal/http"
	"github.com/nsurely/motor-go/pkg/motor"
)

// ResourceClient provides the CRUD calls shared by organization resources
// served under a single collection path.
type ResourceClient[T any] struct {
	httpClient   *http.Client
	resourcePath string
	resourceName string
}

// NewResourceClient creates a client for the collection at resourcePath.
func NewResourceClient[T any](httpClient *http.Client, resourcePath, resourceName string) *ResourceClient[T] {
	return &ResourceClient[T]{
		httpClient:   httpClient,
		resourcePath: resourcePath,
		resourceName: resourceName,
	}
}

func (c *ResourceClient[T]) itemPath(id string) (string, error) {
	if id == "" {
		return "", fmt.Errorf("%s: %w", c.resourceName, motor.ErrIDRequired)
	}

	return c.resourcePath + "/" + url.PathEscape(id), nil
}

// Get retrieves one record by ID.
func (c *ResourceClient[T]) Get(ctx context.Context, id string, params motor.Params) (*T, error) {
	path, err := c.itemPath(id)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Get(ctx, path, params)
	if err != nil {
		return nil, fmt.Errorf("getting %s: %w", c.resourceName, err)
	}

	return decode[T](resp.Body, c.resourceName)
}

// List pages through the collection.
func (c *ResourceClient[T]) List(ctx context.Context, params motor.Params, opts *motor.BatchOptions) *motor.BatchIterator[T] {
	return motor.BatchFetch[T](ctx, c.httpClient, c.resourcePath, params, opts)
}

// Create posts fields as a new record.
func (c *ResourceClient[T]) Create(ctx context.Context, fields map[string]any) (*T, error) {
	resp, err := c.httpClient.Post(ctx, c.resourcePath, fields)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", c.resourceName, err)
	}

	return decode[T](resp.Body, c.resourceName)
}

// Update patches fields and returns the updated record. When the API answers
// without a body the record is fetched again.
func (c *ResourceClient[T]) Update(ctx context.Context, id string, fields map[string]any) (*T, error) {
	body, err := c.patch(ctx, id, fields)
	if err != nil {
		return nil, err
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return c.Get(ctx, id, nil)
	}

	return decode[T](body, c.resourceName)
}

// Delete removes a record.
func (c *ResourceClient[T]) Delete(ctx context.Context, id string) error {
	path, err := c.itemPath(id)
	if err != nil {
		return err
	}

	if _, err := c.httpClient.Delete(ctx, path); err != nil {
		return fmt.Errorf("deleting %s: %w", c.resourceName, err)
	}

	return nil
}

func (c *ResourceClient[T]) patch(ctx context.Context, id string, fields map[string]any) ([]byte, error) {
	path, err := c.itemPath(id)
	if err != nil {
		return nil, err
	}

	if fields == nil {
		fields = map[string]any{}
	}

	resp, err := c.httpClient.Patch(ctx, path, fields)
	if err != nil {
		return nil, fmt.Errorf("updating %s: %w", c.resourceName, err)
	}

	return resp.Body, nil
}

func decode[T any](body []byte, name string) (*T, error) {
	var result T

	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("parsing %s response: %w", name, err)
	}

	return &result, nil
}
