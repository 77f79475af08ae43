package authgate

import (
	"context"
	"strings"

	"github.com/MrEthical07/authgate/internal/flows"
)

// Authenticate resolves req.Token to a SessionInfo. The flow is taken from
// req.Type when it names one, otherwise from the token shape. A non-empty
// Type that names no flow is rejected with ErrInvalidFlowType.
//
// The token is passed to the provider exactly as sent; only a token that is
// empty or all whitespace is refused locally. For FlowSession the returned
// SessionToken is the token the client sent.
func (e *Engine) Authenticate(ctx context.Context, req AuthenticateRequest) (SessionInfo, error) {
	if !e.ready() {
		return SessionInfo{}, ErrEngineNotReady
	}

	token := req.Token
	if strings.TrimSpace(token) == "" {
		return SessionInfo{}, e.rejectAuthenticate(ctx, "", ErrMissingToken)
	}
	declared := strings.TrimSpace(req.Type)
	if declared != "" {
		if _, ok := NormalizeFlowType(declared); !ok {
			return SessionInfo{}, e.rejectAuthenticate(ctx, "", ErrInvalidFlowType)
		}
	}

	return e.authenticate(ctx, token, ClassifyFlow(token, declared))
}

// AuthenticateCallback redeems the magic-link token delivered on the
// redirect back from the emailed link.
func (e *Engine) AuthenticateCallback(ctx context.Context, token string) (SessionInfo, error) {
	if !e.ready() {
		return SessionInfo{}, ErrEngineNotReady
	}

	if strings.TrimSpace(token) == "" {
		return SessionInfo{}, e.rejectAuthenticate(ctx, FlowMagicLink, ErrMissingCallbackToken)
	}
	return e.authenticate(ctx, token, FlowMagicLink)
}

func (e *Engine) rejectAuthenticate(ctx context.Context, flow AuthFlow, err error) error {
	e.metricInc(MetricBadRequest)
	e.emitAudit(ctx, auditEventAuthenticateFailure, flow, false, "", "", err, nil)
	return err
}

func (e *Engine) authenticate(ctx context.Context, token string, flow AuthFlow) (SessionInfo, error) {
	start := e.now()
	res := e.flows.Authenticate(ctx, token, flow)
	e.observeProvider(start)

	if res.Failure != flows.FailureNone {
		rejected := ErrInvalidMagicLink
		if flow == FlowSession {
			rejected = ErrInvalidSession
		}
		err := e.providerFailure(ctx, "authenticate."+string(flow), res.Failure, res.Err, rejected)
		e.metricInc(MetricAuthenticateFailure)
		e.emitAudit(ctx, auditEventAuthenticateFailure, flow, false, "", "", err, func() map[string]string {
			return map[string]string{"failure": res.Failure.String()}
		})
		return SessionInfo{}, err
	}

	now := e.now()
	var info SessionInfo
	if flow == FlowSession {
		info = assembleValidatedSession(token, res.Session, now)
	} else {
		info = assembleMagicLinkSession(res.MagicLink, now, e.config.Session)
		e.metricInc(MetricSessionCreated)
	}

	e.metricInc(MetricAuthenticateSuccess)
	e.emitAudit(ctx, auditEventAuthenticateSuccess, flow, true, info.UserID, info.OrganizationID, nil, nil)
	return info, nil
}
