package flows

import (
	"context"
	"errors"

	"github.com/MrEthical07/authgate/provider"
)

// LoginStage names the step of RunLogin that produced a result.
type LoginStage string

const (
	StageThrottle LoginStage = "throttle"
	StageLookup   LoginStage = "lookup"
	StageSend     LoginStage = "send"
)

// LoginDeps captures login-initiation dependencies.
type LoginDeps struct {
	Provider            provider.Provider
	RequireExistingUser bool
	RedirectURL         string
	// Throttle is optional. An error matching ThrottleRejected denies the
	// login; any other error is reported in LoginResult.ThrottleErr and the
	// login proceeds unthrottled.
	Throttle         func(ctx context.Context, email, ip string) error
	ThrottleRejected error
}

// LoginInput is a validated login request.
type LoginInput struct {
	Email          string
	OrganizationID string
	Locale         string
	IP             string
}

// LoginResult returns either the send receipt or a classified failure.
type LoginResult struct {
	Failure     FailureKind
	Stage       LoginStage
	Err         error
	ThrottleErr error
	UserID      string
	Send        provider.SendResult
}

// RunLogin throttles, optionally confirms the user exists, and asks the
// provider to email a magic link.
func RunLogin(ctx context.Context, in LoginInput, deps LoginDeps) LoginResult {
	if !deps.Provider.Configured() {
		return LoginResult{Failure: FailureNotConfigured, Stage: StageSend, Err: provider.ErrNotConfigured}
	}

	var out LoginResult
	if deps.Throttle != nil {
		if err := deps.Throttle(ctx, in.Email, in.IP); err != nil {
			if deps.ThrottleRejected != nil && errors.Is(err, deps.ThrottleRejected) {
				return LoginResult{Failure: FailureRateLimited, Stage: StageThrottle, Err: err}
			}
			out.ThrottleErr = err
		}
	}

	if deps.RequireExistingUser {
		principal, err := deps.Provider.FindUserByEmail(ctx, in.Email, in.OrganizationID)
		if err != nil {
			out.Failure = ClassifyProviderError(err)
			out.Stage = StageLookup
			out.Err = err
			return out
		}
		out.UserID = principal.ID
	}

	sent, err := deps.Provider.SendMagicLink(ctx, provider.MagicLinkRequest{
		Email:          in.Email,
		OrganizationID: in.OrganizationID,
		Locale:         in.Locale,
		RedirectURL:    deps.RedirectURL,
	})
	out.Stage = StageSend
	if err != nil {
		out.Failure = ClassifyProviderError(err)
		out.Err = err
		return out
	}
	out.Send = sent
	if sent.UserID != "" {
		out.UserID = sent.UserID
	}
	return out
}
