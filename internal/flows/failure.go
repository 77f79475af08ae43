package flows

import (
	"errors"
	"net/http"

	"github.com/MrEthical07/authgate/provider"
)

// FailureKind classifies flow failures for root-level mapping.
type FailureKind int

const (
	FailureNone FailureKind = iota
	// FailureNotConfigured: the provider has no credentials.
	FailureNotConfigured
	// FailureUnavailable: transport failure, timeout, cancellation or 5xx.
	FailureUnavailable
	// FailureRejected: the provider answered and refused the request.
	FailureRejected
	// FailureUserNotFound: login pre-check found no such user.
	FailureUserNotFound
	// FailureRateLimited: the login throttle denied the request.
	FailureRateLimited
	// FailureProviderThrottled: the provider answered 429.
	FailureProviderThrottled
	// FailureInternal: any error the provider adapter did not classify.
	FailureInternal
)

func (k FailureKind) String() string {
	switch k {
	case FailureNone:
		return "none"
	case FailureNotConfigured:
		return "not_configured"
	case FailureUnavailable:
		return "unavailable"
	case FailureRejected:
		return "rejected"
	case FailureUserNotFound:
		return "user_not_found"
	case FailureRateLimited:
		return "rate_limited"
	case FailureProviderThrottled:
		return "provider_throttled"
	default:
		return "internal"
	}
}

// ClassifyProviderError maps a provider adapter error onto a FailureKind.
func ClassifyProviderError(err error) FailureKind {
	switch {
	case err == nil:
		return FailureNone
	case errors.Is(err, provider.ErrNotConfigured):
		return FailureNotConfigured
	case errors.Is(err, provider.ErrUnavailable):
		return FailureUnavailable
	case errors.Is(err, provider.ErrUserNotFound):
		return FailureUserNotFound
	case isTooManyRequests(err):
		return FailureProviderThrottled
	case errors.Is(err, provider.ErrRejected):
		return FailureRejected
	default:
		return FailureInternal
	}
}

func isTooManyRequests(err error) bool {
	var perr *provider.Error
	return errors.As(err, &perr) && perr.StatusCode == http.StatusTooManyRequests
}
