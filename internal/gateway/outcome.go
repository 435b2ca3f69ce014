package gateway

import (
	"context"
	"encoding/json"
	"net/http"
)

// Outcome is the result of a dispatched request. It is one of Success,
// BinarySuccess or *Failure.
type Outcome interface {
	outcome()
}

// Success is a 2xx response carrying JSON.
type Success struct {
	// Body is the validated JSON value, "{}" for an empty body.
	Body       json.RawMessage
	Header     http.Header
	StatusCode int
}

// BinarySuccess is a 2xx response carrying raw bytes.
type BinarySuccess struct {
	Content    []byte
	Header     http.Header
	StatusCode int
}

func (Success) outcome()       {}
func (BinarySuccess) outcome() {}
func (*Failure) outcome()      {}

// Decode unmarshals the success body into v.
func (s Success) Decode(v any) error {
	if err := json.Unmarshal(s.Body, v); err != nil {
		return internalf("failed to decode response: %v", err)
	}
	return nil
}

// Doer dispatches requests. *Dispatcher implements it.
type Doer interface {
	Dispatch(ctx context.Context, req Request) Outcome
}

// DecodeJSON dispatches req through d and decodes a JSON success into v.
// A BinarySuccess is reported as an InternalError and a *Failure is returned as is.
// A nil v discards the body.
func DecodeJSON(ctx context.Context, d Doer, req Request, v any) error {
	switch out := d.Dispatch(ctx, req).(type) {
	case Success:
		if v == nil {
			return nil
		}
		return out.Decode(v)
	case BinarySuccess:
		return internalf("expected a JSON response, got %q", out.Header.Get("Content-Type"))
	case *Failure:
		return out
	default:
		return internalf("unexpected outcome %T", out)
	}
}
