package provider

import "context"

// Unconfigured stands in for a provider whose credentials are missing.
// Every call fails immediately with ErrNotConfigured and performs no I/O.
type Unconfigured struct{}

var _ Provider = Unconfigured{}

func (Unconfigured) Configured() bool { return false }

func (Unconfigured) SendMagicLink(context.Context, MagicLinkRequest) (SendResult, error) {
	return SendResult{}, ErrNotConfigured
}

func (Unconfigured) AuthenticateMagicLink(context.Context, MagicLinkAuthRequest) (AuthenticateResult, error) {
	return AuthenticateResult{}, ErrNotConfigured
}

func (Unconfigured) AuthenticateSession(context.Context, string) (SessionResult, error) {
	return SessionResult{}, ErrNotConfigured
}

func (Unconfigured) RevokeSession(context.Context, string) (RevokeResult, error) {
	return RevokeResult{}, ErrNotConfigured
}

func (Unconfigured) FindUserByEmail(context.Context, string, string) (Principal, error) {
	return Principal{}, ErrNotConfigured
}
