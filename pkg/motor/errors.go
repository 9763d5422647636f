package motor

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

// Error categories, matched with errors.Is.
var (
	ErrConfiguration  = errors.New("configuration error")
	ErrAuthentication = errors.New("authentication error")
	ErrAPI            = errors.New("api error")
	ErrTransport      = errors.New("transport error")
)

// Static errors for err113 compliance.
var (
	ErrConfigRequired      = fmt.Errorf("%w: config is required", ErrConfiguration)
	ErrOrgIDRequired       = fmt.Errorf("%w: organization id is required", ErrConfiguration)
	ErrRegionOrURLRequired = fmt.Errorf("%w: either a region or a url is required", ErrConfiguration)
	ErrInvalidRegion       = fmt.Errorf("%w: invalid region", ErrConfiguration)
	ErrInvalidURL          = fmt.Errorf("%w: invalid url", ErrConfiguration)
	ErrAPIKeyRequired      = fmt.Errorf("%w: api key is required", ErrConfiguration)
	ErrAPISecretRequired   = fmt.Errorf("%w: api secret is required", ErrConfiguration)
	ErrEmailRequired       = fmt.Errorf("%w: email is required", ErrConfiguration)
	ErrPasswordRequired    = fmt.Errorf("%w: password is required", ErrConfiguration)
	ErrNameRequired        = fmt.Errorf("%w: first and last name are required", ErrConfiguration)
	ErrInvalidAuthType     = fmt.Errorf("%w: auth type must be user or driver", ErrConfiguration)
	ErrInvalidLimit        = fmt.Errorf("%w: limit must be greater than zero", ErrConfiguration)
	ErrInvalidOffset       = fmt.Errorf("%w: offset must not be negative", ErrConfiguration)
	ErrInvalidBatchWindow  = fmt.Errorf("%w: batch window must be between 0 and 60 seconds", ErrConfiguration)
	ErrIDRequired          = fmt.Errorf("%w: id is required", ErrConfiguration)
	ErrInvalidStatus       = fmt.Errorf("%w: invalid billing event status", ErrConfiguration)
	ErrInvalidCoordinate   = fmt.Errorf("%w: coordinate out of range", ErrConfiguration)
	ErrAlertCodeRequired   = fmt.Errorf("%w: alert code is required", ErrConfiguration)

	ErrNotLoggedIn    = fmt.Errorf("%w: not logged in", ErrAuthentication)
	ErrLoginRequired  = fmt.Errorf("%w: login required", ErrAuthentication)
	ErrSessionExpired = fmt.Errorf("%w: session expired", ErrAuthentication)

	ErrNoMoreItems        = errors.New("no more items")
	ErrUnexpectedResponse = fmt.Errorf("%w: unexpected response shape", ErrAPI)
	ErrClientClosed       = errors.New("client is closed")
)

// APIError is returned for any response with a status code of 300 or above.
type APIError struct {
	StatusCode int    `json:"statusCode"`
	Method     string `json:"method,omitempty"`
	URL        string `json:"url,omitempty"`
	Message    string `json:"message,omitempty"`
	Body       []byte `json:"-"`
}

// NewAPIError builds an APIError, pulling a human readable message out of the
// response body when the API sent one.
func NewAPIError(method, url string, statusCode int, body []byte) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Method:     method,
		URL:        url,
		Message:    extractMessage(statusCode, body),
		Body:       body,
	}
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Method == "" {
		return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
	}

	return fmt.Sprintf("api error %d on %s %s: %s", e.StatusCode, e.Method, e.URL, e.Message)
}

// Is reports whether target is the ErrAPI category.
func (e *APIError) Is(target error) bool {
	return target == ErrAPI
}

// IsServerError reports a 5xx status.
func (e *APIError) IsServerError() bool {
	return e.StatusCode >= http.StatusInternalServerError
}

// IsClientError reports a 4xx status.
func (e *APIError) IsClientError() bool {
	return e.StatusCode >= http.StatusBadRequest && e.StatusCode < http.StatusInternalServerError
}

func (e *APIError) IsNotFound() bool     { return e.StatusCode == http.StatusNotFound }
func (e *APIError) IsBadRequest() bool   { return e.StatusCode == http.StatusBadRequest }
func (e *APIError) IsUnauthorized() bool { return e.StatusCode == http.StatusUnauthorized }

// Text returns the raw response body as a string.
func (e *APIError) Text() string {
	return string(e.Body)
}

// AuthError is an authentication failure: a login or refresh exchange that the
// API rejected, or a request that was still unauthorized after re-authenticating.
type AuthError struct {
	Op  string
	Err error
}

func (e *AuthError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("authentication failed: %v", e.Err)
	}

	return fmt.Sprintf("authentication failed during %s: %v", e.Op, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// Is reports whether target is the ErrAuthentication category. The wrapped
// APIError is still reachable through errors.As.
func (e *AuthError) Is(target error) bool {
	return target == ErrAuthentication
}

// TransportError is a network level failure: the request never produced an
// HTTP response.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

// Timeout reports whether the failure was a timeout.
func (e *TransportError) Timeout() bool {
	var timeout interface{ Timeout() bool }
	if errors.As(e.Err, &timeout) {
		return timeout.Timeout()
	}

	return false
}

// IsNotFound checks if the error is a 404 from the API.
func IsNotFound(err error) bool {
	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.IsNotFound()
	}

	return false
}

// IsUnauthorized checks if the error carries a 401 from the API.
func IsUnauthorized(err error) bool {
	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.IsUnauthorized()
	}

	return false
}

// IsServerError checks if the error is a 5xx from the API.
func IsServerError(err error) bool {
	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.IsServerError()
	}

	return false
}

func IsAuthError(err error) bool      { return errors.Is(err, ErrAuthentication) }
func IsTransportError(err error) bool { return errors.Is(err, ErrTransport) }
func IsConfigError(err error) bool    { return errors.Is(err, ErrConfiguration) }

var messagePaths = []string{"message", "detail", "error.message", "error", "title"}

func extractMessage(statusCode int, body []byte) string {
	if len(body) > 0 && gjson.ValidBytes(body) {
		for _, path := range messagePaths {
			if value := gjson.GetBytes(body, path); value.Type == gjson.String && value.String() != "" {
				return value.String()
			}
		}
	}

	if text := strings.TrimSpace(string(body)); text != "" && !gjson.ValidBytes(body) {
		return text
	}

	return http.StatusText(statusCode)
}
