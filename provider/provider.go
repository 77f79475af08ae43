package provider

import (
	"context"
	"time"
)

// Provider is the identity-provider capability set used by the gateway.
// Implementations must be safe for concurrent use.
type Provider interface {
	// Configured reports whether calls can reach a real provider.
	Configured() bool

	SendMagicLink(ctx context.Context, req MagicLinkRequest) (SendResult, error)
	AuthenticateMagicLink(ctx context.Context, req MagicLinkAuthRequest) (AuthenticateResult, error)
	AuthenticateSession(ctx context.Context, token string) (SessionResult, error)
	RevokeSession(ctx context.Context, token string) (RevokeResult, error)

	// FindUserByEmail returns ErrUserNotFound when no principal matches.
	// OrganizationID scopes the lookup in multi-tenant deployments.
	FindUserByEmail(ctx context.Context, email, organizationID string) (Principal, error)
}

// MagicLinkRequest asks the provider to email a login link.
type MagicLinkRequest struct {
	Email          string
	OrganizationID string
	Locale         string
	// RedirectURL is used for both the login and the signup redirect.
	RedirectURL string
}

// MagicLinkAuthRequest redeems a magic-link token for a new session.
type MagicLinkAuthRequest struct {
	Token           string
	SessionDuration time.Duration
}

// Principal is the provider's view of an authenticated user or member.
type Principal struct {
	ID             string
	OrganizationID string
	Email          string
	FirstName      string
}

// SendResult is the normalized outcome of SendMagicLink.
type SendResult struct {
	RequestID string
	UserID    string
}

// AuthenticateResult is the normalized outcome of AuthenticateMagicLink.
type AuthenticateResult struct {
	RequestID      string
	SessionToken   string
	PrincipalID    string
	OrganizationID string
	// Principal is nil when the provider omitted profile data.
	Principal *Principal
	// ExpiresAt is zero when the provider did not report an expiry.
	ExpiresAt time.Time
}

// SessionResult is the normalized outcome of AuthenticateSession.
type SessionResult struct {
	RequestID      string
	PrincipalID    string
	OrganizationID string
	Principal      *Principal
	ExpiresAt      time.Time
}

// RevokeResult is the normalized outcome of RevokeSession.
type RevokeResult struct {
	RequestID string
}
