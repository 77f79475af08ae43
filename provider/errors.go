package provider

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConfigured is returned by every call on an Unconfigured provider.
	ErrNotConfigured = errors.New("provider not configured")
	// ErrUserNotFound is returned by FindUserByEmail when nothing matches.
	ErrUserNotFound = errors.New("provider user not found")
	// ErrUnavailable wraps transport failures, timeouts, cancellation, and 5xx responses.
	ErrUnavailable = errors.New("provider unavailable")
	// ErrRejected is matched by every *Error.
	ErrRejected = errors.New("provider rejected request")
)

// Error is a provider response that refused the request.
type Error struct {
	StatusCode int
	Type       string
	Message    string
	RequestID  string
}

func (e *Error) Error() string {
	if e.Type == "" {
		return fmt.Sprintf("provider rejected request: status %d", e.StatusCode)
	}
	return fmt.Sprintf("provider rejected request: status %d: %s", e.StatusCode, e.Type)
}

func (e *Error) Unwrap() error { return ErrRejected }

// Unavailable wraps err so that it matches ErrUnavailable.
func Unavailable(err error) error {
	if err == nil {
		return ErrUnavailable
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
