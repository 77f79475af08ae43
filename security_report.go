package authgate

import (
	"github.com/MrEthical07/authgate/internal/security"
)

// SecurityReport describes the effective security posture of an Engine.
type SecurityReport = security.Report

// SecurityReport summarizes the configuration the Engine was built with.
func (e *Engine) SecurityReport() SecurityReport {
	if e == nil {
		return SecurityReport{}
	}
	return security.BuildReport(security.ReportInput{
		ProductionMode:      e.config.Production(),
		ProviderConfigured:  e.provider != nil && e.provider.Configured(),
		MultiTenant:         e.config.MultiTenant.Enabled,
		SessionDuration:     e.config.Session.Duration,
		UseProviderExpiry:   e.config.Session.UseProviderExpiry,
		RequireExistingUser: e.config.MagicLink.RequireExistingUser,
		RedirectURL:         e.config.MagicLink.RedirectURL,
		RateLimiterPresent:  e.rateLimiter != nil,
		MaxLoginAttempts:    e.config.RateLimit.MaxLoginAttempts,
		LoginWindow:         e.config.RateLimit.LoginWindow,
		EnableIPThrottle:    e.config.RateLimit.EnableIPThrottle,
		AuditEnabled:        e.config.Audit.Enabled,
		MetricsEnabled:      e.config.Metrics.Enabled,
		CORSOrigins:         e.config.AllowedOrigins(),
	})
}
