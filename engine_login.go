package authgate

import (
	"context"
	"net/mail"
	"strings"

	"github.com/MrEthical07/authgate/internal/flows"
)

// InitiateLogin validates req, applies the login throttle, and asks the
// provider to email a magic link.
//
// Input problems return BadRequest errors before any I/O. A throttled request
// returns ErrLoginRateLimited. An unknown user (when existing users are
// required) and any provider refusal return ErrLoginFailed, so the response
// never reveals whether an address is registered.
func (e *Engine) InitiateLogin(ctx context.Context, req LoginRequest) (LoginResult, error) {
	if !e.ready() {
		return LoginResult{}, ErrEngineNotReady
	}

	in, err := e.validateLogin(req)
	if err != nil {
		e.metricInc(MetricBadRequest)
		e.emitAudit(ctx, auditEventLoginFailure, FlowMagicLink, false, "", req.OrganizationID, err, nil)
		return LoginResult{}, err
	}
	in.IP = clientIPFromContext(ctx)

	start := e.now()
	res := e.flows.Login(ctx, in)
	e.observeProvider(start)

	if res.ThrottleErr != nil {
		e.metricInc(MetricRateLimiterUnavailable)
		e.logger.WarnContext(ctx, "login throttle unavailable, continuing unthrottled",
			"request_id", RequestIDFromContext(ctx),
			"error", res.ThrottleErr.Error(),
		)
	}

	if res.Failure != flows.FailureNone {
		err := e.providerFailure(ctx, "login."+string(res.Stage), res.Failure, res.Err, ErrLoginFailed)
		if res.Failure == flows.FailureRateLimited || res.Failure == flows.FailureProviderThrottled {
			scope := "login"
			if res.Failure == flows.FailureProviderThrottled {
				scope = "provider"
			}
			e.metricInc(MetricLoginRateLimited)
			e.emitAudit(ctx, auditEventLoginRateLimited, FlowMagicLink, false, "", in.OrganizationID, err, func() map[string]string {
				return map[string]string{"email": maskEmail(in.Email)}
			})
			e.emitRateLimit(ctx, scope, func() map[string]string {
				return map[string]string{"email": maskEmail(in.Email)}
			})
			return LoginResult{}, err
		}

		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, FlowMagicLink, false, res.UserID, in.OrganizationID, err, func() map[string]string {
			return map[string]string{
				"stage":   string(res.Stage),
				"failure": res.Failure.String(),
				"email":   maskEmail(in.Email),
			}
		})
		return LoginResult{}, err
	}

	e.metricInc(MetricLoginSuccess)
	e.emitAudit(ctx, auditEventLoginInitiated, FlowMagicLink, true, res.UserID, in.OrganizationID, nil, func() map[string]string {
		return map[string]string{
			"email":               maskEmail(in.Email),
			"provider_request_id": res.Send.RequestID,
		}
	})

	return LoginResult{
		Success:   true,
		Message:   loginSentMessage,
		RequestID: res.Send.RequestID,
	}, nil
}

func (e *Engine) validateLogin(req LoginRequest) (flows.LoginInput, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" {
		return flows.LoginInput{}, ErrMissingEmail
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || addr.Name != "" {
		return flows.LoginInput{}, ErrInvalidEmail
	}

	orgID := strings.TrimSpace(req.OrganizationID)
	if e.config.MultiTenant.Enabled {
		if orgID == "" {
			return flows.LoginInput{}, ErrMissingOrganization
		}
	} else {
		orgID = ""
	}

	locale := strings.TrimSpace(req.Locale)
	if locale == "" {
		locale = e.config.MagicLink.DefaultLocale
	}
	if locale != "" {
		matched, ok := MatchLocale(locale)
		if !ok {
			return flows.LoginInput{}, ErrUnsupportedLocale
		}
		locale = string(matched)
	}

	return flows.LoginInput{
		Email:          email,
		OrganizationID: orgID,
		Locale:         locale,
	}, nil
}
