// Package http implements the request executor every Motor call goes
// through: organization URL resolution, authentication with a single retry on
// 401, status classification and organization settings loading.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/nsurely/motor-go/internal/auth"
	"github.com/nsurely/motor-go/internal/constants"
	"github.com/nsurely/motor-go/pkg/motor"
)

const tracerName = "github.com/nsurely/motor-go"

// Response is the raw result of one call.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Client executes requests against one organization.
type Client struct {
	baseURL  string
	orgID    string
	orgURL   string
	provider auth.Provider

	httpClient *retryablehttp.Client
	logger     motor.Logger
	debug      bool
	userAgent  string
	limiter    *rate.Limiter
	tracer     trace.Tracer
	propagator propagation.TextMapPropagator

	settings *settingsLoader
	prefetch bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	closed atomic.Bool
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(logger motor.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithDebug logs every request and response.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		if userAgent != "" {
			c.userAgent = userAgent
		}
	}
}

// WithTimeout sets the per attempt timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.HTTPClient.Timeout = timeout
		}
	}
}

// WithRetryConfig enables transport retries for connection errors, 429 and
// 5xx responses. This is separate from the single retry on 401.
func WithRetryConfig(maxRetries int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		c.httpClient.RetryMax = maxRetries
		c.httpClient.RetryWaitMin = waitMin
		c.httpClient.RetryWaitMax = waitMax
	}
}

// WithRateLimit limits attempts to perSecond with the given burst.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Client) {
		if perSecond <= 0 {
			return
		}

		if burst < 1 {
			burst = 1
		}

		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithTracerProvider records a span per request.
func WithTracerProvider(provider trace.TracerProvider) Option {
	return func(c *Client) {
		if provider != nil {
			c.tracer = provider.Tracer(tracerName)
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient.HTTPClient = client
		}
	}
}

// WithSettingsCache stores organization settings in cache for ttl.
func WithSettingsCache(cache motor.Cache, ttl time.Duration) Option {
	return func(c *Client) {
		c.settings.cache = cache
		c.settings.ttl = ttl
	}
}

// WithSettingsPrefetch controls whether the first request loads the
// organization settings in the background. On by default.
func WithSettingsPrefetch(enabled bool) Option {
	return func(c *Client) {
		c.prefetch = enabled
	}
}

// NewClient creates an executor for orgID at baseURL. A nil provider sends
// every request unauthenticated.
func NewClient(baseURL, orgID string, provider auth.Provider, opts ...Option) *Client {
	baseURL = strings.TrimRight(baseURL, "/")

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = constants.DefaultRetryMax
	retryClient.RetryWaitMin = constants.DefaultRetryWaitMin
	retryClient.RetryWaitMax = constants.DefaultRetryWaitMax
	retryClient.HTTPClient.Timeout = constants.DefaultHTTPTimeout
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	retryClient.Logger = nil

	ctx, cancel := context.WithCancel(context.Background())

	client := &Client{
		baseURL:    baseURL,
		orgID:      orgID,
		orgURL:     baseURL + "/org/" + orgID,
		provider:   provider,
		httpClient: retryClient,
		logger:     motor.NopLogger{},
		userAgent:  constants.DefaultUserAgent,
		tracer:     otel.GetTracerProvider().Tracer(tracerName),
		propagator: propagation.TraceContext{},
		prefetch:   true,
		ctx:        ctx,
		cancel:     cancel,
	}

	client.settings = newSettingsLoader(client.fetchOrgSettings)

	for _, opt := range opts {
		opt(client)
	}

	client.settings.logger = client.logger
	client.settings.cacheKey = constants.SettingsCachePrefix + orgID

	if client.debug {
		client.httpClient.Logger = &leveledLogger{logger: client.logger}
	}

	return client
}

// BaseURL returns the API root.
func (c *Client) BaseURL() string { return c.baseURL }

// OrgID returns the organization id.
func (c *Client) OrgID() string { return c.orgID }

// OrgURL returns the organization scoped root, "<base>/org/<orgID>".
func (c *Client) OrgURL() string { return c.orgURL }

// Provider returns the authentication provider, nil when unauthenticated.
func (c *Client) Provider() auth.Provider { return c.provider }

// Close cancels background work and waits for it to finish.
func (c *Client) Close() error {
	if c.closed.Swap(true) {
		return nil
	}

	// A trigger that passed its closed check has already called wg.Add once
	// the settings lock is released.
	c.settings.mu.Lock()
	c.settings.mu.Unlock() //nolint:staticcheck // empty critical section

	c.cancel()
	c.wg.Wait()
	c.httpClient.HTTPClient.CloseIdleConnections()

	return nil
}

// Do executes req. A 401 marks the credential stale, re-authenticates and
// sends the request once more; a second 401 is an *motor.AuthError. Any
// other status of 300 or above is an *motor.APIError. The response is
// returned alongside API errors.
func (c *Client) Do(ctx context.Context, req *motor.Request) (*Response, error) {
	if c.closed.Load() {
		return nil, motor.ErrClientClosed
	}

	if c.prefetch {
		c.settings.trigger(c)
	}

	method := req.HTTPMethod()

	target, err := c.resolveURL(req)
	if err != nil {
		return nil, err
	}

	body, err := encodeBody(req.Body)
	if err != nil {
		return nil, err
	}

	ctx, span := c.tracer.Start(ctx, "motor "+method, trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.full", target),
			attribute.String("motor.org_id", c.orgID),
		))
	defer span.End()

	resp, err := c.execute(ctx, req, method, target, body)

	if resp != nil {
		span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	return resp, err
}

func (c *Client) execute(ctx context.Context, req *motor.Request, method, target string, body []byte) (*Response, error) {
	authenticated := c.provider != nil && !req.Public
	requestID := ulid.Make().String()

	if authenticated {
		if err := auth.Ensure(ctx, c.provider); err != nil {
			return nil, err
		}
	}

	resp, err := c.send(ctx, req, method, target, body, requestID, authenticated, 1)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		if !authenticated {
			return resp, &motor.AuthError{Op: "request", Err: motor.NewAPIError(method, target, resp.StatusCode, resp.Body)}
		}

		c.logger.Debug("Unauthorized, re-authenticating", map[string]any{"url": target, "request_id": requestID})
		c.provider.Expire()

		if err := auth.Ensure(ctx, c.provider); err != nil {
			return resp, err
		}

		resp, err = c.send(ctx, req, method, target, body, requestID, authenticated, 2)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode == http.StatusUnauthorized {
			return resp, &motor.AuthError{Op: "request", Err: motor.NewAPIError(method, target, resp.StatusCode, resp.Body)}
		}
	}

	if resp.StatusCode >= http.StatusMultipleChoices {
		return resp, motor.NewAPIError(method, target, resp.StatusCode, resp.Body)
	}

	return resp, nil
}

func (c *Client) send(ctx context.Context, req *motor.Request, method, target string, body []byte,
	requestID string, authenticated bool, attempt int,
) (*Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &motor.TransportError{Method: method, URL: target, Err: err}
		}
	}

	var rawBody any
	if body != nil {
		rawBody = body
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, method, target, rawBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	if values := req.Params.ToValues(); len(values) > 0 {
		query := httpReq.URL.Query()
		maps.Copy(query, values)
		httpReq.URL.RawQuery = query.Encode()
	}

	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)
	httpReq.Header.Set(constants.HeaderRequestID, requestID)

	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	if authenticated {
		for key, value := range c.provider.Headers() {
			httpReq.Header.Set(key, value)
		}
	}

	c.propagator.Inject(ctx, propagation.HeaderCarrier(httpReq.Header))

	if c.debug {
		c.logger.Debug("HTTP Request", map[string]any{
			"method":     method,
			"url":        httpReq.URL.String(),
			"request_id": requestID,
			"attempt":    attempt,
			"headers":    maskHeaders(httpReq.Header),
		})
	}

	start := time.Now()

	// The passthrough error handler returns the final response together with
	// the retry policy's error; a response always wins.
	httpResp, err := c.httpClient.Do(httpReq)
	if httpResp == nil {
		return nil, &motor.TransportError{Method: method, URL: target, Err: err}
	}

	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &motor.TransportError{Method: method, URL: target, Err: fmt.Errorf("reading response body: %w", err)}
	}

	if c.debug {
		c.logger.Debug("HTTP Response", map[string]any{
			"status":     httpResp.StatusCode,
			"request_id": requestID,
			"attempt":    attempt,
			"duration":   time.Since(start).String(),
			"size":       len(respBody),
		})
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       respBody,
	}, nil
}

func (c *Client) resolveURL(req *motor.Request) (string, error) {
	if req.URL != "" {
		return req.URL, nil
	}

	if req.Endpoint == "" {
		return "", fmt.Errorf("%w: endpoint or url is required", motor.ErrConfiguration)
	}

	return c.orgURL + "/" + strings.TrimLeft(req.Endpoint, "/"), nil
}

// Get sends a GET to an organization endpoint.
func (c *Client) Get(ctx context.Context, endpoint string, params motor.Params) (*Response, error) {
	return c.Do(ctx, &motor.Request{Method: http.MethodGet, Endpoint: endpoint, Params: params})
}

// Post sends a POST with a JSON body.
func (c *Client) Post(ctx context.Context, endpoint string, body any) (*Response, error) {
	return c.Do(ctx, &motor.Request{Method: http.MethodPost, Endpoint: endpoint, Body: body})
}

// Put sends a PUT with a JSON body.
func (c *Client) Put(ctx context.Context, endpoint string, body any) (*Response, error) {
	return c.Do(ctx, &motor.Request{Method: http.MethodPut, Endpoint: endpoint, Body: body})
}

// Patch sends a PATCH with a JSON body.
func (c *Client) Patch(ctx context.Context, endpoint string, body any) (*Response, error) {
	return c.Do(ctx, &motor.Request{Method: http.MethodPatch, Endpoint: endpoint, Body: body})
}

// Delete sends a DELETE.
func (c *Client) Delete(ctx context.Context, endpoint string) (*Response, error) {
	return c.Do(ctx, &motor.Request{Method: http.MethodDelete, Endpoint: endpoint})
}

// FetchPage GETs one page of a list endpoint. An empty body is an empty page.
func (c *Client) FetchPage(ctx context.Context, endpoint string, params motor.Params) ([]json.RawMessage, error) {
	resp, err := c.Get(ctx, endpoint, params)
	if err != nil {
		return nil, err
	}

	body := bytes.TrimSpace(resp.Body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return nil, nil
	}

	var page []json.RawMessage
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("%w: %s is not a list: %w", motor.ErrUnexpectedResponse, endpoint, err)
	}

	return page, nil
}

// Download writes the body of an authenticated GET of rawURL to w.
func (c *Client) Download(ctx context.Context, rawURL string, w io.Writer) (int64, error) {
	resp, err := c.Do(ctx, &motor.Request{Method: http.MethodGet, URL: rawURL, Headers: map[string]string{"Accept": "*/*"}})
	if err != nil {
		return 0, err
	}

	n, err := io.Copy(w, bytes.NewReader(resp.Body))
	if err != nil {
		return n, fmt.Errorf("writing download: %w", err)
	}

	return n, nil
}

func encodeBody(body any) ([]byte, error) {
	switch v := body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case json.RawMessage:
		return v, nil
	case string:
		return []byte(v), nil
	case io.Reader:
		data, err := io.ReadAll(v)
		if err != nil {
			return nil, fmt.Errorf("reading request body: %w", err)
		}

		return data, nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}

		return data, nil
	}
}

func maskHeaders(header http.Header) map[string]string {
	out := make(map[string]string, len(header))

	for key := range header {
		if strings.EqualFold(key, constants.HeaderAuthorization) {
			out[key] = constants.MaskedSecret

			continue
		}

		out[key] = header.Get(key)
	}

	return out
}
