package flows

import (
	"context"
	"time"

	"github.com/MrEthical07/authgate/provider"
)

// AuthenticateDeps captures token-exchange dependencies.
type AuthenticateDeps struct {
	Provider        provider.Provider
	SessionDuration time.Duration
}

// AuthenticateResult carries the provider result for the dispatched flow.
// Exactly one of MagicLink or Session is meaningful, selected by Flow.
type AuthenticateResult struct {
	Failure   FailureKind
	Err       error
	Flow      Flow
	MagicLink provider.AuthenticateResult
	Session   provider.SessionResult
}

// RunAuthenticate dispatches token to the provider call for flow.
func RunAuthenticate(ctx context.Context, token string, flow Flow, deps AuthenticateDeps) AuthenticateResult {
	out := AuthenticateResult{Flow: flow}
	if !deps.Provider.Configured() {
		out.Failure, out.Err = FailureNotConfigured, provider.ErrNotConfigured
		return out
	}

	switch flow {
	case FlowSession:
		res, err := deps.Provider.AuthenticateSession(ctx, token)
		if err != nil {
			out.Failure, out.Err = ClassifyProviderError(err), err
			return out
		}
		out.Session = res
	default:
		res, err := deps.Provider.AuthenticateMagicLink(ctx, provider.MagicLinkAuthRequest{
			Token:           token,
			SessionDuration: deps.SessionDuration,
		})
		if err != nil {
			out.Failure, out.Err = ClassifyProviderError(err), err
			return out
		}
		out.MagicLink = res
	}
	return out
}
