package authgate

import (
	"context"

	"github.com/MrEthical07/authgate/internal/flows"
)

// ValidateSession confirms credential with the provider and returns the
// session it belongs to. An empty credential fails with ErrMissingCredential
// without contacting the provider.
func (e *Engine) ValidateSession(ctx context.Context, credential string) (SessionInfo, error) {
	return e.checkSession(ctx, "validate", credential)
}

// CurrentPrincipal returns the identity behind credential. It performs the
// same provider check as ValidateSession.
func (e *Engine) CurrentPrincipal(ctx context.Context, credential string) (Principal, error) {
	info, err := e.checkSession(ctx, "me", credential)
	if err != nil {
		return Principal{}, err
	}
	return info.Principal(), nil
}

// Logout revokes credential at the provider. The caller clears the cookie
// regardless of the outcome.
func (e *Engine) Logout(ctx context.Context, credential string) (LogoutResult, error) {
	if !e.ready() {
		return LogoutResult{}, ErrEngineNotReady
	}
	if credential == "" {
		e.metricInc(MetricMissingCredential)
		e.emitAudit(ctx, auditEventLogoutFailure, FlowSession, false, "", "", ErrMissingCredential, nil)
		return LogoutResult{}, ErrMissingCredential
	}

	start := e.now()
	res := e.flows.RevokeSession(ctx, credential)
	e.observeProvider(start)

	if res.Failure != flows.FailureNone {
		err := e.providerFailure(ctx, "logout", res.Failure, res.Err, ErrLogoutFailed)
		e.metricInc(MetricLogoutFailure)
		e.emitAudit(ctx, auditEventLogoutFailure, FlowSession, false, "", "", err, func() map[string]string {
			return map[string]string{"failure": res.Failure.String()}
		})
		return LogoutResult{}, err
	}

	e.metricInc(MetricLogout)
	e.emitAudit(ctx, auditEventLogout, FlowSession, true, "", "", nil, func() map[string]string {
		return map[string]string{"provider_request_id": res.Revoke.RequestID}
	})
	return LogoutResult{Success: true, Message: sessionRevokedMessage}, nil
}

func (e *Engine) checkSession(ctx context.Context, op, credential string) (SessionInfo, error) {
	if !e.ready() {
		return SessionInfo{}, ErrEngineNotReady
	}
	if credential == "" {
		e.metricInc(MetricMissingCredential)
		e.emitAudit(ctx, auditEventSessionRejected, FlowSession, false, "", "", ErrMissingCredential, func() map[string]string {
			return map[string]string{"op": op}
		})
		return SessionInfo{}, ErrMissingCredential
	}

	start := e.now()
	res := e.flows.ValidateSession(ctx, credential)
	e.observeProvider(start)

	if res.Failure != flows.FailureNone {
		err := e.providerFailure(ctx, op, res.Failure, res.Err, ErrInvalidSession)
		e.metricInc(MetricValidateFailure)
		e.emitAudit(ctx, auditEventSessionRejected, FlowSession, false, "", "", err, func() map[string]string {
			return map[string]string{"op": op, "failure": res.Failure.String()}
		})
		return SessionInfo{}, err
	}

	info := assembleValidatedSession(credential, res.Session, e.now())
	e.metricInc(MetricValidateSuccess)
	e.emitAudit(ctx, auditEventSessionValidated, FlowSession, true, info.UserID, info.OrganizationID, nil, func() map[string]string {
		return map[string]string{"op": op}
	})
	return info, nil
}
