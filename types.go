package authgate

import (
	"io"
	"log/slog"
	"time"

	internalaudit "github.com/MrEthical07/authgate/internal/audit"
)

// LoginRequest starts a magic-link login.
type LoginRequest struct {
	Email string `json:"email"`
	// OrganizationID is required in multi-tenant mode and ignored otherwise.
	OrganizationID string `json:"organizationId,omitempty"`
	// Locale selects the email language; empty uses the configured default.
	Locale string `json:"locale,omitempty"`
}

// AuthenticateRequest exchanges a magic-link token or checks a session token.
type AuthenticateRequest struct {
	Token string `json:"token"`
	// Type is the client-declared flow; empty lets the token shape decide.
	Type string `json:"type,omitempty"`
}

// SessionInfo is the request-scoped view of an authenticated session. It is
// assembled fresh for every request and never stored.
type SessionInfo struct {
	SessionToken   string
	UserID         string
	OrganizationID string
	Email          string
	Name           string
	ExpiresAt      time.Time
}

// Principal is the JSON projection of a SessionInfo returned to clients.
// The session token is deliberately absent.
type Principal struct {
	UserID         string    `json:"userId"`
	OrganizationID string    `json:"organizationId,omitempty"`
	Email          string    `json:"email,omitempty"`
	Name           string    `json:"name,omitempty"`
	ExpiresAt      time.Time `json:"expiresAt"`
}

// Principal projects s for a response body.
func (s SessionInfo) Principal() Principal {
	return Principal{
		UserID:         s.UserID,
		OrganizationID: s.OrganizationID,
		Email:          s.Email,
		Name:           s.Name,
		ExpiresAt:      s.ExpiresAt.UTC(),
	}
}

// LoginResult acknowledges a magic-link send.
type LoginResult struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	RequestID string `json:"requestId"`
}

// LogoutResult acknowledges a revoked session.
type LogoutResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ValidationResult is the body of a successful session validation.
type ValidationResult struct {
	Valid     bool      `json:"valid"`
	User      Principal `json:"user"`
	ExpiresAt time.Time `json:"expiresAt"`
}

const (
	loginSentMessage      = "Magic link sent successfully"
	sessionRevokedMessage = "Session revoked successfully"
)

// AuditEvent is the audit record emitted by Engine operations.
type AuditEvent = internalaudit.Event

// AuditSink receives audit events from the Engine's dispatcher.
type AuditSink = internalaudit.Sink

type AuditSinkFunc = internalaudit.SinkFunc

type NoOpSink = internalaudit.NoOpSink

type ChannelSink = internalaudit.ChannelSink

type JSONWriterSink = internalaudit.JSONWriterSink

type SlogSink = internalaudit.SlogSink

func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}

func NewSlogSink(logger *slog.Logger) *SlogSink {
	return internalaudit.NewSlogSink(logger)
}
