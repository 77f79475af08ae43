package authgate

import (
	"errors"
	"net/http"
)

// Error categories. Every error returned by Engine operations matches exactly
// one of these through errors.Is.
var (
	// ErrBadRequest marks locally detected input failures.
	ErrBadRequest = errors.New("bad request")
	// ErrUnauthorized marks absent, invalid, or provider-rejected credentials.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrProviderUnavailable marks an identity provider that is not configured or cannot be reached.
	ErrProviderUnavailable = errors.New("identity provider unavailable")
	// ErrRateLimited marks requests refused by the login throttle.
	ErrRateLimited = errors.New("rate limited")
)

var (
	ErrMissingEmail         = categorized(ErrBadRequest, "email is required")
	ErrInvalidEmail         = categorized(ErrBadRequest, "email is invalid")
	ErrMissingOrganization  = categorized(ErrBadRequest, "organization id is required")
	ErrUnsupportedLocale    = categorized(ErrBadRequest, "unsupported locale")
	ErrMissingToken         = categorized(ErrBadRequest, "token is required")
	ErrInvalidFlowType      = categorized(ErrBadRequest, "invalid token type")
	ErrMissingCallbackToken = categorized(ErrBadRequest, "missing callback token")
	ErrInvalidBody          = categorized(ErrBadRequest, "request body must be a JSON object")

	ErrMissingCredential = categorized(ErrUnauthorized, "no session credential")
	ErrLoginFailed       = categorized(ErrUnauthorized, "could not initiate login")
	ErrInvalidMagicLink  = categorized(ErrUnauthorized, "invalid or expired magic link")
	ErrInvalidSession    = categorized(ErrUnauthorized, "invalid or expired session")
	ErrLogoutFailed      = categorized(ErrUnauthorized, "could not revoke session")

	ErrProviderNotConfigured = categorized(ErrProviderUnavailable, "identity provider not configured")
	ErrProviderUnreachable   = categorized(ErrProviderUnavailable, "identity provider unreachable")

	ErrLoginRateLimited = categorized(ErrRateLimited, "too many login requests")

	// ErrEngineNotReady is returned by operations invoked on a nil or unbuilt Engine.
	ErrEngineNotReady = errors.New("engine not initialized")
)

// publicMessages are the client-facing texts for errors whose internal
// message is not meant for end users.
var publicMessages = map[error]string{
	ErrMissingCallbackToken: "Missing stytch_token in query parameters",
	ErrMissingCredential:    "No authorization header or cookie provided",
	ErrLoginFailed:          "Failed to send magic link",
	ErrInvalidMagicLink:     "Invalid or expired magic link",
	ErrInvalidSession:       "Invalid or expired session",
	ErrLogoutFailed:         "Failed to revoke session",
	ErrLoginRateLimited:     "Too many login attempts, try again later",
}

// categorizedError is a message that unwraps to its taxonomy member.
type categorizedError struct {
	kind error
	msg  string
}

func categorized(kind error, msg string) error {
	return &categorizedError{kind: kind, msg: msg}
}

func (e *categorizedError) Error() string { return e.msg }

func (e *categorizedError) Unwrap() error { return e.kind }

// ErrorKind names the category of an error for transport encoding.
type ErrorKind string

const (
	KindNone                ErrorKind = ""
	KindBadRequest          ErrorKind = "bad_request"
	KindUnauthorized        ErrorKind = "unauthorized"
	KindProviderUnavailable ErrorKind = "provider_unavailable"
	KindRateLimited         ErrorKind = "rate_limited"
	KindInternal            ErrorKind = "internal"
)

// Kind reports the taxonomy member err belongs to.
func Kind(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrBadRequest):
		return KindBadRequest
	case errors.Is(err, ErrUnauthorized):
		return KindUnauthorized
	case errors.Is(err, ErrProviderUnavailable):
		return KindProviderUnavailable
	case errors.Is(err, ErrRateLimited):
		return KindRateLimited
	default:
		return KindInternal
	}
}

// HTTPStatus maps err to the response status used by the HTTP surface.
func HTTPStatus(err error) int {
	switch Kind(err) {
	case KindNone:
		return http.StatusOK
	case KindBadRequest:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindProviderUnavailable:
		return http.StatusServiceUnavailable
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the client-safe message for err. Errors outside the
// taxonomy collapse to a generic message.
func PublicMessage(err error) string {
	var ce *categorizedError
	if errors.As(err, &ce) {
		if msg, ok := publicMessages[ce]; ok {
			return msg
		}
		return ce.msg
	}
	switch Kind(err) {
	case KindBadRequest, KindUnauthorized, KindProviderUnavailable, KindRateLimited:
		return err.Error()
	default:
		return "internal error"
	}
}
