package gateway

import (
	"net/http"
	"time"
)

// Default per-request timeouts.
const (
	DefaultTimeout   = 30 * time.Second
	MultipartTimeout = 60 * time.Second
)

var supportedMethods = map[string]bool{
	http.MethodGet:    true,
	http.MethodPost:   true,
	http.MethodPut:    true,
	http.MethodPatch:  true,
	http.MethodDelete: true,
}

// Request describes one call against a family.
//
// Body and Parts are mutually exclusive. Setting both is a programming error
// and Dispatch panics.
type Request struct {
	Family Family

	// Path is relative to the family base URL and already escaped, see Path.
	Path string

	// Method is an HTTP verb. Verbs other than GET, POST, PUT, PATCH and
	// DELETE yield an UnsupportedMethod failure.
	Method string

	// Query values may be strings, bools, integers or floats. Nil values are skipped.
	Query map[string]any

	// Body is encoded as JSON when non-nil.
	Body any

	// Parts are sent as a multipart/related body.
	Parts []Part

	// Timeout overrides DefaultTimeout or MultipartTimeout when positive.
	Timeout time.Duration

	// Binary forces a BinarySuccess for any 2xx response, regardless of
	// content type.
	Binary bool
}

// Part is one section of a multipart request.
type Part struct {
	Name        string
	Filename    string
	ContentType string
	Content     []byte
}

func (r *Request) timeout() time.Duration {
	if r.Timeout > 0 {
		return r.Timeout
	}
	if len(r.Parts) > 0 {
		return MultipartTimeout
	}
	return DefaultTimeout
}
