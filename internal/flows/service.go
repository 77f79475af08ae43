package flows

import (
	"context"
)

// Service is the centralized flow runner built once by the root engine.
type Service struct {
	deps Deps
}

// New returns a flow service with immutable dependency wiring.
func New(deps Deps) Service {
	return Service{deps: deps}
}

// Initialized reports whether the service has been wired with flow deps.
func (s Service) Initialized() bool {
	return s.deps.Login.Provider != nil &&
		s.deps.Authenticate.Provider != nil &&
		s.deps.Session.Provider != nil
}

func (s Service) Login(ctx context.Context, in LoginInput) LoginResult {
	return RunLogin(ctx, in, s.deps.Login)
}

func (s Service) Authenticate(ctx context.Context, token string, flow Flow) AuthenticateResult {
	return RunAuthenticate(ctx, token, flow, s.deps.Authenticate)
}

func (s Service) ValidateSession(ctx context.Context, token string) ValidateResult {
	return RunValidateSession(ctx, token, s.deps.Session)
}

func (s Service) RevokeSession(ctx context.Context, token string) RevokeResult {
	return RunRevokeSession(ctx, token, s.deps.Session)
}
