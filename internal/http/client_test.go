package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/nsurely/motor-go/internal/auth"
	motorhttp "github.com/nsurely/motor-go/internal/http"
	"github.com/nsurely/motor-go/pkg/motor"
)

const testOrg = "org-1"

// MockLogger for testing.
type MockLogger struct {
	mu   sync.Mutex
	logs []map[string]any
}

func (l *MockLogger) record(level, msg string, fields map[string]any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.logs = append(l.logs, map[string]any{"level": level, "msg": msg, "fields": fields})
}

func (l *MockLogger) Debug(msg string, fields map[string]any) { l.record("debug", msg, fields) }
func (l *MockLogger) Info(msg string, fields map[string]any)  { l.record("info", msg, fields) }
func (l *MockLogger) Warn(msg string, fields map[string]any)  { l.record("warn", msg, fields) }
func (l *MockLogger) Error(msg string, fields map[string]any) { l.record("error", msg, fields) }

func (l *MockLogger) messages() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]string, 0, len(l.logs))
	for _, entry := range l.logs {
		out = append(out, entry["msg"].(string))
	}

	return out
}

// MockProvider counts lifecycle calls and hands out a numbered token.
type MockProvider struct {
	mu         sync.Mutex
	generation int
	stale      bool
	refreshes  int
	expires    int
	refreshErr error
}

func newMockProvider() *MockProvider {
	return &MockProvider{generation: 1}
}

func (p *MockProvider) IsLoggedIn() bool { return !p.RequiresRefresh() }

func (p *MockProvider) RequiresRefresh() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.stale
}

func (p *MockProvider) Refresh(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.refreshes++
	if p.refreshErr != nil {
		return p.refreshErr
	}

	p.generation++
	p.stale = false

	return nil
}

func (p *MockProvider) Headers() map[string]string {
	p.mu.Lock()
	defer p.mu.Unlock()

	return map[string]string{"Authorization": "Bearer token-" + strconv.Itoa(p.generation)}
}

func (p *MockProvider) Login(ctx context.Context, email, password string) (string, error) {
	return "", nil
}

func (p *MockProvider) Logout(ctx context.Context) (bool, error) { return true, nil }

func (p *MockProvider) Authenticate(ctx context.Context) error { return motor.ErrLoginRequired }

func (p *MockProvider) Expire() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.expires++
	p.stale = true
}

func newTestClient(t *testing.T, serverURL string, provider auth.Provider, opts ...motorhttp.Option) *motorhttp.Client {
	t.Helper()

	opts = append([]motorhttp.Option{motorhttp.WithSettingsPrefetch(false)}, opts...)
	client := motorhttp.NewClient(serverURL, testOrg, provider, opts...)
	t.Cleanup(func() { _ = client.Close() })

	return client
}

func apiKey(t *testing.T) auth.Provider {
	t.Helper()

	provider, err := auth.NewAPIKeyAuth("key", "secret")
	require.NoError(t, err)

	return provider
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_Do(t *testing.T) {
	t.Parallel()

	t.Run("successful request", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "/org/org-1/drivers/d-1", request.URL.Path)
			assert.Equal(t, http.MethodGet, request.Method)
			assert.Equal(t, "apiKey key:secret", request.Header.Get("Authorization"))
			assert.Equal(t, "application/json", request.Header.Get("Accept"))
			assert.Len(t, request.Header.Get("X-Request-ID"), 26)

			_ = json.NewEncoder(writer).Encode(map[string]string{"id": "d-1", "firstName": "Ada"})
		}))
		defer server.Close()

		client := newTestClient(t, server.URL, apiKey(t))

		resp, err := client.Get(context.Background(), "drivers/d-1", nil)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)

		var result map[string]string
		require.NoError(t, json.Unmarshal(resp.Body, &result))
		assert.Equal(t, "Ada", result["firstName"])
	})

	t.Run("query parameters are coerced to strings", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			query := request.URL.Query()
			assert.Equal(t, "true", query.Get("isActive"))
			assert.Equal(t, "2026-03-01", query.Get("since"))
			assert.Equal(t, "10", query.Get("limit"))
			assert.Equal(t, "gte.5", query.Get("score"))
			assert.False(t, query.Has("skip"))
			writer.WriteHeader(http.StatusNoContent)
		}))
		defer server.Close()

		client := newTestClient(t, server.URL, nil)
		search, err := motor.NewSearch(5, motor.OpGte)
		require.NoError(t, err)

		resp, err := client.Get(context.Background(), "drivers", motor.Params{
			"isActive": true,
			"since":    motor.Date{Year: 2026, Month: 3, Day: 1},
			"limit":    10,
			"score":    search,
			"skip":     nil,
		})
		require.NoError(t, err)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		assert.Empty(t, resp.Body)
	})

	t.Run("request with body", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, http.MethodPost, request.Method)
			assert.Equal(t, "application/json", request.Header.Get("Content-Type"))

			var body map[string]string
			_ = json.NewDecoder(request.Body).Decode(&body)
			assert.Equal(t, "Ada", body["firstName"])

			writer.WriteHeader(http.StatusCreated)
		}))
		defer server.Close()

		client := newTestClient(t, server.URL, nil)

		resp, err := client.Post(context.Background(), "drivers", map[string]string{"firstName": "Ada"})
		require.NoError(t, err)
		assert.Equal(t, 201, resp.StatusCode)
	})

	t.Run("url override", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "/elsewhere", request.URL.Path)
			assert.Equal(t, "a=1&b=2", request.URL.RawQuery)
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := newTestClient(t, server.URL, nil)

		_, err := client.Do(context.Background(), &motor.Request{
			URL:    server.URL + "/elsewhere?a=1",
			Params: motor.Params{"b": 2},
		})
		require.NoError(t, err)
	})

	t.Run("error response", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusNotFound)
			_, _ = writer.Write([]byte(`{"message":"Driver not found"}`))
		}))
		defer server.Close()

		client := newTestClient(t, server.URL, apiKey(t))

		resp, err := client.Get(context.Background(), "drivers/missing", nil)
		require.Error(t, err)
		assert.Equal(t, 404, resp.StatusCode)
		assert.ErrorIs(t, err, motor.ErrAPI)
		assert.False(t, motor.IsAuthError(err))

		apiErr := &motor.APIError{}
		require.ErrorAs(t, err, &apiErr)
		assert.True(t, apiErr.IsNotFound())
		assert.True(t, apiErr.IsClientError())
		assert.Equal(t, "Driver not found", apiErr.Message)
		assert.Equal(t, `{"message":"Driver not found"}`, apiErr.Text())
	})

	t.Run("redirects are api errors", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusNotModified)
		}))
		defer server.Close()

		client := newTestClient(t, server.URL, nil)

		_, err := client.Get(context.Background(), "drivers", nil)
		apiErr := &motor.APIError{}
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusNotModified, apiErr.StatusCode)
	})

	t.Run("custom headers are merged with auth headers", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "custom-value", request.Header.Get("X-Custom-Header"))
			assert.Equal(t, "apiKey key:secret", request.Header.Get("Authorization"))
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := newTestClient(t, server.URL, apiKey(t))

		_, err := client.Do(context.Background(), &motor.Request{
			Endpoint: "drivers",
			Headers: map[string]string{
				"X-Custom-Header": "custom-value",
				"Authorization":   "Bearer stale",
			},
		})
		require.NoError(t, err)
	})

	t.Run("public requests skip authentication", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Empty(t, request.Header.Get("Authorization"))
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		provider := newMockProvider()
		provider.Expire()

		client := newTestClient(t, server.URL, provider)

		_, err := client.Do(context.Background(), &motor.Request{Endpoint: "x", Public: true})
		require.NoError(t, err)
		assert.Equal(t, 0, provider.refreshes)
	})

	t.Run("missing endpoint", func(t *testing.T) {
		t.Parallel()

		client := newTestClient(t, "https://api.invalid", nil)

		_, err := client.Do(context.Background(), &motor.Request{})
		require.ErrorIs(t, err, motor.ErrConfiguration)
	})

	t.Run("with debug logging", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			_ = json.NewEncoder(writer).Encode(map[string]string{"result": "ok"})
		}))
		defer server.Close()

		logger := &MockLogger{}
		client := newTestClient(t, server.URL, apiKey(t), motorhttp.WithLogger(logger), motorhttp.WithDebug(true))

		_, err := client.Get(context.Background(), "drivers", nil)
		require.NoError(t, err)

		messages := logger.messages()
		assert.Contains(t, messages, "HTTP Request")
		assert.Contains(t, messages, "HTTP Response")

		for _, entry := range logger.logs {
			if entry["msg"] != "HTTP Request" {
				continue
			}

			fields := entry["fields"].(map[string]any)
			headers := fields["headers"].(map[string]string)
			assert.Equal(t, "***", headers["Authorization"])
		}
	})
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_Methods(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		method string
		fn     func(*motorhttp.Client, context.Context) (*motorhttp.Response, error)
	}{
		{
			name:   "GET",
			method: "GET",
			fn: func(c *motorhttp.Client, ctx context.Context) (*motorhttp.Response, error) {
				return c.Get(ctx, "test", nil)
			},
		},
		{
			name:   "POST",
			method: "POST",
			fn: func(c *motorhttp.Client, ctx context.Context) (*motorhttp.Response, error) {
				return c.Post(ctx, "test", map[string]string{"key": "value"})
			},
		},
		{
			name:   "PUT",
			method: "PUT",
			fn: func(c *motorhttp.Client, ctx context.Context) (*motorhttp.Response, error) {
				return c.Put(ctx, "test", map[string]string{"key": "value"})
			},
		},
		{
			name:   "PATCH",
			method: "PATCH",
			fn: func(c *motorhttp.Client, ctx context.Context) (*motorhttp.Response, error) {
				return c.Patch(ctx, "test", map[string]string{"key": "value"})
			},
		},
		{
			name:   "DELETE",
			method: "DELETE",
			fn: func(c *motorhttp.Client, ctx context.Context) (*motorhttp.Response, error) {
				return c.Delete(ctx, "test")
			},
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
				assert.Equal(t, testCase.method, request.Method)
				assert.Equal(t, "/org/org-1/test", request.URL.Path)
				writer.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			client := newTestClient(t, server.URL, nil)
			resp, err := testCase.fn(client, context.Background())
			require.NoError(t, err)
			assert.Equal(t, 200, resp.StatusCode)
		})
	}
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_Unauthorized(t *testing.T) {
	t.Parallel()

	t.Run("401 then 200 is transparent", func(t *testing.T) {
		t.Parallel()

		var attempts atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if attempts.Add(1) == 1 {
				assert.Equal(t, "Bearer token-1", request.Header.Get("Authorization"))
				writer.WriteHeader(http.StatusUnauthorized)

				return
			}

			assert.Equal(t, "Bearer token-2", request.Header.Get("Authorization"))
			_, _ = writer.Write([]byte(`{"id":"d-1"}`))
		}))
		defer server.Close()

		provider := newMockProvider()
		client := newTestClient(t, server.URL, provider)

		resp, err := client.Get(context.Background(), "drivers/d-1", nil)
		require.NoError(t, err)
		assert.JSONEq(t, `{"id":"d-1"}`, string(resp.Body))
		assert.Equal(t, int32(2), attempts.Load())
		assert.Equal(t, 1, provider.expires)
		assert.Equal(t, 1, provider.refreshes)
	})

	t.Run("401 twice is an authentication error", func(t *testing.T) {
		t.Parallel()

		var attempts atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			attempts.Add(1)
			writer.WriteHeader(http.StatusUnauthorized)
			_, _ = writer.Write([]byte(`{"message":"token revoked"}`))
		}))
		defer server.Close()

		client := newTestClient(t, server.URL, newMockProvider())

		resp, err := client.Get(context.Background(), "drivers", nil)
		require.Error(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, int32(2), attempts.Load(), "exactly one retry")
		assert.ErrorIs(t, err, motor.ErrAuthentication)

		authErr := &motor.AuthError{}
		require.ErrorAs(t, err, &authErr)

		apiErr := &motor.APIError{}
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "token revoked", apiErr.Message)
	})

	t.Run("api key retries once with the same header", func(t *testing.T) {
		t.Parallel()

		var attempts atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			attempts.Add(1)
			assert.Equal(t, "apiKey key:secret", request.Header.Get("Authorization"))
			writer.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		client := newTestClient(t, server.URL, apiKey(t))

		_, err := client.Get(context.Background(), "drivers", nil)
		assert.True(t, motor.IsAuthError(err))
		assert.Equal(t, int32(2), attempts.Load())
	})

	t.Run("unauthenticated 401 is not retried", func(t *testing.T) {
		t.Parallel()

		var attempts atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			attempts.Add(1)
			writer.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		client := newTestClient(t, server.URL, nil)

		_, err := client.Get(context.Background(), "drivers", nil)
		assert.True(t, motor.IsAuthError(err))
		assert.Equal(t, int32(1), attempts.Load())
	})

	t.Run("failed re-authentication stops the retry", func(t *testing.T) {
		t.Parallel()

		var attempts atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			attempts.Add(1)
			writer.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		provider := newMockProvider()
		provider.refreshErr = motor.ErrNotLoggedIn

		client := newTestClient(t, server.URL, provider)

		_, err := client.Get(context.Background(), "drivers", nil)
		require.ErrorIs(t, err, motor.ErrNotLoggedIn)
		assert.Equal(t, int32(1), attempts.Load())
	})

	t.Run("session refresh on 401", func(t *testing.T) {
		t.Parallel()

		var (
			logins   atomic.Int32
			refreshs atomic.Int32
			calls    atomic.Int32
		)

		mux := http.NewServeMux()
		mux.HandleFunc("POST /org/auth/users/login", func(writer http.ResponseWriter, request *http.Request) {
			logins.Add(1)
			_, _ = writer.Write([]byte(`{"accessToken":"first","refreshToken":"r1","expiresIn":15,"refreshExpiresIn":60}`))
		})
		mux.HandleFunc("POST /org/auth/users/session/refresh", func(writer http.ResponseWriter, request *http.Request) {
			refreshs.Add(1)
			_, _ = writer.Write([]byte(`{"accessToken":"second","refreshToken":"r2","expiresIn":15,"refreshExpiresIn":60}`))
		})
		mux.HandleFunc("GET /org/org-1/drivers", func(writer http.ResponseWriter, request *http.Request) {
			calls.Add(1)

			if request.Header.Get("Authorization") != "Bearer second" {
				writer.WriteHeader(http.StatusUnauthorized)

				return
			}

			_, _ = writer.Write([]byte(`[]`))
		})

		server := httptest.NewServer(mux)
		defer server.Close()

		provider, err := auth.NewSessionAuth(server.URL, testOrg, motor.AuthTypeUser,
			auth.WithCredentials("user@example.com", "secret"))
		require.NoError(t, err)

		client := newTestClient(t, server.URL, provider)

		resp, err := client.Get(context.Background(), "drivers", nil)
		require.NoError(t, err)
		assert.Equal(t, "[]", string(resp.Body))
		assert.Equal(t, int32(1), logins.Load())
		assert.Equal(t, int32(1), refreshs.Load())
		assert.Equal(t, int32(2), calls.Load())
	})
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_RetryLogic(t *testing.T) {
	t.Parallel()

	t.Run("no transport retries by default", func(t *testing.T) {
		t.Parallel()

		var attempts atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			attempts.Add(1)
			writer.WriteHeader(http.StatusInternalServerError)
			_, _ = writer.Write([]byte("boom"))
		}))
		defer server.Close()

		client := newTestClient(t, server.URL, nil)

		resp, err := client.Get(context.Background(), "test", nil)
		require.Error(t, err)
		assert.Equal(t, 500, resp.StatusCode)
		assert.Equal(t, int32(1), attempts.Load())
		assert.True(t, motor.IsServerError(err))

		apiErr := &motor.APIError{}
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "boom", apiErr.Message)
	})

	t.Run("retries on 5xx errors when configured", func(t *testing.T) {
		t.Parallel()

		var attempts atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if attempts.Add(1) < 3 {
				writer.WriteHeader(http.StatusInternalServerError)
			} else {
				writer.WriteHeader(http.StatusOK)
			}
		}))
		defer server.Close()

		client := newTestClient(t, server.URL, nil, motorhttp.WithRetryConfig(3, 10*time.Millisecond, 100*time.Millisecond))

		resp, err := client.Get(context.Background(), "test", nil)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		assert.Equal(t, int32(3), attempts.Load())
	})

	t.Run("retries on rate limiting when configured", func(t *testing.T) {
		t.Parallel()

		var attempts atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if attempts.Add(1) < 2 {
				writer.WriteHeader(http.StatusTooManyRequests)
			} else {
				writer.WriteHeader(http.StatusOK)
			}
		}))
		defer server.Close()

		client := newTestClient(t, server.URL, nil, motorhttp.WithRetryConfig(3, 10*time.Millisecond, 100*time.Millisecond))

		resp, err := client.Get(context.Background(), "test", nil)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		assert.Equal(t, int32(2), attempts.Load())
	})

	t.Run("does not retry on client errors", func(t *testing.T) {
		t.Parallel()

		var attempts atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			attempts.Add(1)
			writer.WriteHeader(http.StatusBadRequest)
		}))
		defer server.Close()

		client := newTestClient(t, server.URL, nil, motorhttp.WithRetryConfig(3, 10*time.Millisecond, 100*time.Millisecond))

		resp, err := client.Get(context.Background(), "test", nil)
		require.Error(t, err)
		assert.Equal(t, 400, resp.StatusCode)
		assert.Equal(t, int32(1), attempts.Load())

		apiErr := &motor.APIError{}
		require.ErrorAs(t, err, &apiErr)
		assert.True(t, apiErr.IsBadRequest())
	})
}

func TestClient_TransportErrors(t *testing.T) {
	t.Parallel()

	t.Run("connection refused", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.NotFoundHandler())
		url := server.URL
		server.Close()

		client := newTestClient(t, url, apiKey(t))

		resp, err := client.Get(context.Background(), "drivers", nil)
		require.Error(t, err)
		assert.Nil(t, resp)
		assert.True(t, motor.IsTransportError(err))
		assert.False(t, motor.IsAuthError(err))

		transportErr := &motor.TransportError{}
		require.ErrorAs(t, err, &transportErr)
		assert.Equal(t, http.MethodGet, transportErr.Method)
	})

	t.Run("timeout", func(t *testing.T) {
		t.Parallel()

		release := make(chan struct{})
		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			select {
			case <-release:
			case <-request.Context().Done():
			}
		}))
		defer server.Close()
		defer close(release)

		client := newTestClient(t, server.URL, nil, motorhttp.WithTimeout(50*time.Millisecond))

		_, err := client.Get(context.Background(), "slow", nil)
		require.Error(t, err)

		transportErr := &motor.TransportError{}
		require.ErrorAs(t, err, &transportErr)
		assert.True(t, transportErr.Timeout())
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()

		client := newTestClient(t, "http://127.0.0.1:1", nil)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := client.Get(ctx, "drivers", nil)
		require.Error(t, err)
		assert.True(t, motor.IsTransportError(err))
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestClient_FetchPage(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		switch request.URL.Path {
		case "/org/org-1/list":
			_, _ = writer.Write([]byte(`[{"id":"a"},{"id":"b"}]`))
		case "/org/org-1/empty":
			writer.WriteHeader(http.StatusNoContent)
		case "/org/org-1/null":
			_, _ = writer.Write([]byte(`null`))
		default:
			_, _ = writer.Write([]byte(`{"id":"a"}`))
		}
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, nil)
	ctx := context.Background()

	page, err := client.FetchPage(ctx, "list", nil)
	require.NoError(t, err)
	assert.Len(t, page, 2)

	page, err = client.FetchPage(ctx, "empty", nil)
	require.NoError(t, err)
	assert.Empty(t, page)

	page, err = client.FetchPage(ctx, "null", nil)
	require.NoError(t, err)
	assert.Empty(t, page)

	_, err = client.FetchPage(ctx, "object", nil)
	require.ErrorIs(t, err, motor.ErrUnexpectedResponse)
}

func TestClient_BatchFetch(t *testing.T) {
	t.Parallel()

	pages := map[string]string{
		"0": `[{"id":"a"},{"id":"b"}]`,
		"2": `[{"id":"c"},{"id":"d"}]`,
		"4": `[{"id":"e"}]`,
	}

	var (
		mu      sync.Mutex
		offsets []string
	)

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		query := request.URL.Query()
		assert.Equal(t, "2", query.Get("limit"))
		assert.Equal(t, "true", query.Get("isActive"))

		mu.Lock()
		offsets = append(offsets, query.Get("offset"))
		mu.Unlock()

		_, _ = writer.Write([]byte(pages[query.Get("offset")]))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, nil)

	type record struct {
		ID string `json:"id"`
	}

	it := motor.BatchFetch[record](context.Background(), client, "drivers", motor.Params{"isActive": true}, &motor.BatchOptions{Limit: 2})

	items, err := it.All()
	require.NoError(t, err)

	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}

	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, ids)

	mu.Lock()
	defer mu.Unlock()

	assert.Equal(t, []string{"0", "2", "4"}, offsets)
}

func TestClient_Download(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "apiKey key:secret", request.Header.Get("Authorization"))
		_, _ = writer.Write([]byte("file-content"))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, apiKey(t))

	var buf bytes.Buffer

	n, err := client.Download(context.Background(), server.URL+"/files/licence.pdf", &buf)
	require.NoError(t, err)
	assert.Equal(t, int64(12), n)
	assert.Equal(t, "file-content", buf.String())
}

func TestClient_Tracing(t *testing.T) {
	t.Parallel()

	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.NotEmpty(t, request.Header.Get("Traceparent"))
		writer.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, nil, motorhttp.WithTracerProvider(provider))

	_, err := client.Get(context.Background(), "drivers", nil)
	require.Error(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "motor GET", spans[0].Name())

	var status int64

	for _, attr := range spans[0].Attributes() {
		if attr.Key == "http.response.status_code" {
			status = attr.Value.AsInt64()
		}
	}

	assert.Equal(t, int64(404), status)
}

func TestClient_RateLimit(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, nil, motorhttp.WithRateLimit(20, 1))

	start := time.Now()

	for range 3 {
		_, err := client.Get(context.Background(), "drivers", nil)
		require.NoError(t, err)
	}

	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
}

func TestClient_Close(t *testing.T) {
	t.Parallel()

	client := motorhttp.NewClient("https://api.invalid", testOrg, nil)
	require.NoError(t, client.Close())
	require.NoError(t, client.Close())

	_, err := client.Get(context.Background(), "drivers", nil)
	require.True(t, errors.Is(err, motor.ErrClientClosed))

	_, err = client.OrgSettings(context.Background())
	require.ErrorIs(t, err, motor.ErrClientClosed)
}
