package motor

import (
	"maps"
	"net/http"
)

// Request describes one logical API call.
type Request struct {
	// Method is the HTTP method. Defaults to GET.
	Method string
	// Endpoint is a path relative to the organization root, e.g. "drivers/123".
	Endpoint string
	// URL replaces the organization scoped URL with an absolute one.
	URL string
	// Params are query parameters, coerced to strings on the wire.
	Params Params
	// Body is JSON encoded unless it is already []byte or json.RawMessage.
	Body any
	// Headers are sent alongside the authentication headers.
	Headers map[string]string
	// Public skips authentication entirely.
	Public bool
}

// Clone returns a copy whose Params and Headers can be modified independently.
func (r *Request) Clone() *Request {
	out := *r
	if r.Params != nil {
		out.Params = r.Params.Clone()
	}

	out.Headers = maps.Clone(r.Headers)

	return &out
}

// HTTPMethod returns Method or GET.
func (r *Request) HTTPMethod() string {
	if r.Method == "" {
		return http.MethodGet
	}

	return r.Method
}
