package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Kind classifies a Failure.
type Kind string

const (
	// AuthError means no usable credential could be acquired.
	AuthError Kind = "AuthError"

	// UnsupportedMethod means the request used an HTTP verb the gateway does not send.
	UnsupportedMethod Kind = "UnsupportedMethod"

	// TransportError means the request never produced a response: dial, TLS,
	// reset, timeout or cancellation.
	TransportError Kind = "TransportError"

	// ApiError means the remote answered with a non-2xx status.
	ApiError Kind = "ApiError"

	// EncodingError means caller-supplied content could not be decoded.
	EncodingError Kind = "EncodingError"

	// SizeLimitError means a download was refused before fetching content.
	SizeLimitError Kind = "SizeLimitError"

	// InternalError covers every other fault.
	InternalError Kind = "InternalError"
)

// Failure is the normalized error of every gateway operation.
type Failure struct {
	Kind    Kind
	Message string

	// StatusCode is the remote HTTP status. Only set for ApiError.
	StatusCode int

	// Details is the remote error body for ApiError: the JSON body verbatim,
	// or {"response_text": ...} when the body is not JSON.
	Details json.RawMessage

	// Err is the underlying cause, if any.
	Err error
}

func (f *Failure) Error() string {
	if f.Err != nil && f.Message == "" {
		return fmt.Sprintf("%s: %v", f.Kind, f.Err)
	}
	return f.Message
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Payload returns the uniform error object rendered to tool callers.
func (f *Failure) Payload() map[string]any {
	payload := map[string]any{
		"error": f.Error(),
		"kind":  string(f.Kind),
	}
	if f.StatusCode != 0 {
		payload["status_code"] = f.StatusCode
	}
	if len(f.Details) > 0 {
		payload["details"] = f.Details
	}
	return payload
}

// AsFailure returns err as a *Failure. Errors that do not wrap a Failure
// become an InternalError. A nil err returns nil.
func AsFailure(err error) *Failure {
	if err == nil {
		return nil
	}
	var f *Failure
	if errors.As(err, &f) {
		return f
	}
	return &Failure{
		Kind:    InternalError,
		Message: "Unexpected error: " + err.Error(),
		Err:     err,
	}
}

// IsKind reports whether err is a Failure of the given kind.
func IsKind(err error, kind Kind) bool {
	var f *Failure
	return errors.As(err, &f) && f.Kind == kind
}

// NewFailure creates a Failure with a formatted message.
func NewFailure(kind Kind, format string, args ...any) *Failure {
	return &Failure{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func internalf(format string, args ...any) *Failure {
	return NewFailure(InternalError, "Unexpected error: "+format, args...)
}

// responseTextDetails wraps a non-JSON error body.
func responseTextDetails(body []byte) json.RawMessage {
	data, _ := json.Marshal(map[string]string{"response_text": string(body)})
	return data
}
