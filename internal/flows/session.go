package flows

import (
	"context"

	"github.com/MrEthical07/authgate/provider"
)

// SessionDeps captures validate and revoke dependencies.
type SessionDeps struct {
	Provider provider.Provider
}

type ValidateResult struct {
	Failure FailureKind
	Err     error
	Session provider.SessionResult
}

// RunValidateSession asks the provider whether token is a live session.
func RunValidateSession(ctx context.Context, token string, deps SessionDeps) ValidateResult {
	if !deps.Provider.Configured() {
		return ValidateResult{Failure: FailureNotConfigured, Err: provider.ErrNotConfigured}
	}
	res, err := deps.Provider.AuthenticateSession(ctx, token)
	if err != nil {
		return ValidateResult{Failure: ClassifyProviderError(err), Err: err}
	}
	return ValidateResult{Session: res}
}

type RevokeResult struct {
	Failure FailureKind
	Err     error
	Revoke  provider.RevokeResult
}

// RunRevokeSession revokes token at the provider.
func RunRevokeSession(ctx context.Context, token string, deps SessionDeps) RevokeResult {
	if !deps.Provider.Configured() {
		return RevokeResult{Failure: FailureNotConfigured, Err: provider.ErrNotConfigured}
	}
	res, err := deps.Provider.RevokeSession(ctx, token)
	if err != nil {
		return RevokeResult{Failure: ClassifyProviderError(err), Err: err}
	}
	return RevokeResult{Revoke: res}
}
