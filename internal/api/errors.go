package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an Error.
type Kind int

const (
	// KindRemote is a non-2xx response other than 401/403.
	KindRemote Kind = iota
	// KindValidation is malformed local input, rejected before any request.
	KindValidation
	// KindAuthRejection is a 401 or 403 response.
	KindAuthRejection
	// KindTransport is a network failure.
	KindTransport
)

func (k Kind) String() string {
	switch k {
	case KindRemote:
		return "remote"
	case KindValidation:
		return "validation"
	case KindAuthRejection:
		return "auth_rejection"
	case KindTransport:
		return "transport"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error represents a failed API operation
type Error struct {
	Kind    Kind
	Message string
	// Status is the HTTP status, zero when no response was received.
	Status int
	// Data is the parsed response body, if any.
	Data any
	Err  error
}

// Error returns the human-readable message
func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Status != 0 {
		return fmt.Sprintf("Request failed: %d", e.Status)
	}
	return e.Kind.String() + " error"
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewValidationError creates an error for input rejected before dispatch.
func NewValidationError(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// IsAuthRejection reports whether err is a 401/403 rejection.
func IsAuthRejection(err error) bool {
	return isKind(err, KindAuthRejection)
}

// IsValidation reports whether err was raised by local input validation.
func IsValidation(err error) bool {
	return isKind(err, KindValidation)
}

func isKind(err error, kind Kind) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == kind
}

// newStatusError builds the error for a non-2xx response. The message comes
// from the body's "error" field, then "message", then a generic fallback.
func newStatusError(status int, data any) *Error {
	kind := KindRemote
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		kind = KindAuthRejection
	}

	message := fmt.Sprintf("Request failed: %d", status)
	if body, ok := data.(map[string]any); ok {
		for _, key := range []string{"error", "message"} {
			if s, ok := body[key].(string); ok && s != "" {
				message = s
				break
			}
		}
	}

	return &Error{
		Kind:    kind,
		Message: message,
		Status:  status,
		Data:    data,
	}
}
