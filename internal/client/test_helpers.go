package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nsurely/motor-go/pkg/motor"
)

// TestOrgID is the organization every test client is scoped to.
const TestOrgID = "org-1"

// NewTestServer starts a fake API. Organization settings requests made in the
// background are answered here so handler only sees the calls under test.
func NewTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if strings.Contains(request.URL.Path, "/public/") {
			_, _ = writer.Write([]byte(`{"id":"` + TestOrgID + `","displayName":"Test Org"}`))

			return
		}

		handler(writer, request)
	}))
	t.Cleanup(server.Close)

	return server
}

// NewTestClient creates an API key client against baseURL.
func NewTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()

	client, err := New(context.Background(), &motor.Config{
		OrgID:     TestOrgID,
		URL:       baseURL,
		APIKey:    "key",
		APISecret: "secret",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return client
}

// WriteJSON encodes body with status.
func WriteJSON(t *testing.T, writer http.ResponseWriter, status int, body any) {
	t.Helper()

	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)

	if body != nil {
		_ = json.NewEncoder(writer).Encode(body)
	}
}

// TestGetOperation represents a generic get operation test case.
type TestGetOperation[TResponse any] struct {
	Name         string
	ID           string
	ExpectedPath string
	StatusCode   int
	Response     any
	WantErr      bool
	ErrMessage   string
	Validate     func(t *testing.T, result *TResponse)
}

// RunGetTests runs get cases against a fresh fake API each.
func RunGetTests[TResponse any](
	t *testing.T,
	tests []TestGetOperation[TResponse],
	getFunc func(*Client) func(context.Context, string) (*TResponse, error),
) {
	t.Helper()

	for _, testCase := range tests {
		t.Run(testCase.Name, func(t *testing.T) {
			t.Parallel()

			server := NewTestServer(t, func(writer http.ResponseWriter, request *http.Request) {
				assert.Equal(t, testCase.ExpectedPath, request.URL.Path)
				assert.Equal(t, http.MethodGet, request.Method)
				assert.Equal(t, "apiKey key:secret", request.Header.Get("Authorization"))
				WriteJSON(t, writer, testCase.StatusCode, testCase.Response)
			})

			client := NewTestClient(t, server.URL)

			result, err := getFunc(client)(context.Background(), testCase.ID)

			if testCase.WantErr {
				require.Error(t, err)

				if testCase.ErrMessage != "" {
					assert.Contains(t, err.Error(), testCase.ErrMessage)
				}

				assert.Nil(t, result)

				return
			}

			require.NoError(t, err)
			require.NotNil(t, result)

			if testCase.Validate != nil {
				testCase.Validate(t, result)
			}
		})
	}
}

// TestUpdateOperation represents a PATCH test case.
type TestUpdateOperation struct {
	Name         string
	ID           string
	Fields       map[string]any
	ExpectedPath string
	StatusCode   int
	Response     any
	WantErr      bool
	ErrMessage   string
}

// RunUpdateTests checks the PATCH path and body of update calls.
func RunUpdateTests(
	t *testing.T,
	tests []TestUpdateOperation,
	updateFunc func(*Client) func(context.Context, string, map[string]any) error,
) {
	t.Helper()

	for _, testCase := range tests {
		t.Run(testCase.Name, func(t *testing.T) {
			t.Parallel()

			server := NewTestServer(t, func(writer http.ResponseWriter, request *http.Request) {
				assert.Equal(t, testCase.ExpectedPath, request.URL.Path)
				assert.Equal(t, http.MethodPatch, request.Method)

				var body map[string]any
				assert.NoError(t, json.NewDecoder(request.Body).Decode(&body))

				for key, value := range testCase.Fields {
					assert.Equal(t, value, body[key])
				}

				WriteJSON(t, writer, testCase.StatusCode, testCase.Response)
			})

			client := NewTestClient(t, server.URL)

			err := updateFunc(client)(context.Background(), testCase.ID, testCase.Fields)

			if testCase.WantErr {
				require.Error(t, err)

				if testCase.ErrMessage != "" {
					assert.Contains(t, err.Error(), testCase.ErrMessage)
				}

				return
			}

			require.NoError(t, err)
		})
	}
}

// PagedHandler serves records in pages of the requested limit.
func PagedHandler(t *testing.T, expectedPath string, records []map[string]any) http.HandlerFunc {
	t.Helper()

	return func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, expectedPath, request.URL.Path)

		query := request.URL.Query()
		limit, err := strconv.Atoi(query.Get("limit"))
		assert.NoError(t, err)

		offset, err := strconv.Atoi(query.Get("offset"))
		assert.NoError(t, err)

		end := min(offset+limit, len(records))
		page := []map[string]any{}

		if offset < len(records) {
			page = records[offset:end]
		}

		WriteJSON(t, writer, http.StatusOK, page)
	}
}
