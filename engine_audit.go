package authgate

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

const (
	auditEventLoginInitiated      = "login_initiated"
	auditEventLoginFailure        = "login_failure"
	auditEventLoginRateLimited    = "login_rate_limited"
	auditEventAuthenticateSuccess = "authenticate_success"
	auditEventAuthenticateFailure = "authenticate_failure"
	auditEventSessionValidated    = "session_validated"
	auditEventSessionRejected     = "session_rejected"
	auditEventLogout              = "logout"
	auditEventLogoutFailure       = "logout_failure"
	auditEventRateLimitTriggered  = "rate_limit_triggered"
)

// AuditErrorCode is the coarse failure code recorded on audit events.
type AuditErrorCode string

const (
	auditErrBadRequest            AuditErrorCode = "bad_request"
	auditErrMissingCredential     AuditErrorCode = "missing_credential"
	auditErrLoginFailed           AuditErrorCode = "login_failed"
	auditErrInvalidMagicLink      AuditErrorCode = "invalid_magic_link"
	auditErrInvalidSession        AuditErrorCode = "invalid_session"
	auditErrLogoutFailed          AuditErrorCode = "logout_failed"
	auditErrRateLimited           AuditErrorCode = "rate_limited"
	auditErrProviderNotConfigured AuditErrorCode = "provider_not_configured"
	auditErrProviderUnavailable   AuditErrorCode = "provider_unavailable"
	auditErrInternal              AuditErrorCode = "internal_error"
)

func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	flow AuthFlow,
	success bool,
	userID string,
	organizationID string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		ID:             uuid.NewString(),
		Timestamp:      e.now().UTC(),
		EventType:      eventType,
		RequestID:      RequestIDFromContext(ctx),
		Flow:           string(flow),
		UserID:         userID,
		OrganizationID: organizationID,
		IP:             clientIPFromContext(ctx),
		UserAgent:      userAgentFromContext(ctx),
		Success:        success,
		Metadata:       metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	e.audit.Emit(ctx, event)
}

func (e *Engine) emitRateLimit(
	ctx context.Context,
	scope string,
	metadataBuilder func() map[string]string,
) {
	e.metricInc(MetricRateLimitHit)
	e.emitAudit(ctx, auditEventRateLimitTriggered, "", false, "", "", nil, func() map[string]string {
		base := map[string]string{
			"scope": scope,
		}
		if metadataBuilder == nil {
			return base
		}
		for k, v := range metadataBuilder() {
			base[k] = v
		}
		return base
	})
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrMissingCredential):
		return auditErrMissingCredential
	case errors.Is(err, ErrLoginFailed):
		return auditErrLoginFailed
	case errors.Is(err, ErrInvalidMagicLink):
		return auditErrInvalidMagicLink
	case errors.Is(err, ErrInvalidSession):
		return auditErrInvalidSession
	case errors.Is(err, ErrLogoutFailed):
		return auditErrLogoutFailed
	case errors.Is(err, ErrProviderNotConfigured):
		return auditErrProviderNotConfigured
	case errors.Is(err, ErrProviderUnavailable):
		return auditErrProviderUnavailable
	case errors.Is(err, ErrRateLimited):
		return auditErrRateLimited
	case errors.Is(err, ErrBadRequest):
		return auditErrBadRequest
	default:
		return auditErrInternal
	}
}
