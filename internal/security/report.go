package security

import (
	"net/url"
	"strings"
	"time"
)

// Report summarizes the security-relevant posture of a running gateway.
type Report struct {
	ProductionMode      bool
	ProviderConfigured  bool
	ProviderMode        string
	SecureCookies       bool
	CookieSameSite      string
	SessionDuration     time.Duration
	UseProviderExpiry   bool
	RequireExistingUser bool
	RateLimitingActive  bool
	IPThrottleActive    bool
	AuditEnabled        bool
	MetricsEnabled      bool
	CORSOrigins         []string
	Warnings            []string
}

type ReportInput struct {
	ProductionMode      bool
	ProviderConfigured  bool
	MultiTenant         bool
	SessionDuration     time.Duration
	UseProviderExpiry   bool
	RequireExistingUser bool
	RedirectURL         string
	RateLimiterPresent  bool
	MaxLoginAttempts    int
	LoginWindow         time.Duration
	EnableIPThrottle    bool
	AuditEnabled        bool
	MetricsEnabled      bool
	CORSOrigins         []string
}

const maxRecommendedSession = 90 * 24 * time.Hour

func BuildReport(input ReportInput) Report {
	rateLimiting := input.RateLimiterPresent &&
		input.MaxLoginAttempts > 0 &&
		input.LoginWindow > 0

	mode := "consumer"
	if input.MultiTenant {
		mode = "b2b"
	}
	sameSite := "Lax"
	if input.ProductionMode {
		sameSite = "None"
	}

	r := Report{
		ProductionMode:      input.ProductionMode,
		ProviderConfigured:  input.ProviderConfigured,
		ProviderMode:        mode,
		SecureCookies:       input.ProductionMode,
		CookieSameSite:      sameSite,
		SessionDuration:     input.SessionDuration,
		UseProviderExpiry:   input.UseProviderExpiry,
		RequireExistingUser: input.RequireExistingUser,
		RateLimitingActive:  rateLimiting,
		IPThrottleActive:    rateLimiting && input.EnableIPThrottle,
		AuditEnabled:        input.AuditEnabled,
		MetricsEnabled:      input.MetricsEnabled,
		CORSOrigins:         append([]string(nil), input.CORSOrigins...),
	}

	if !input.ProviderConfigured {
		r.Warnings = append(r.Warnings, "identity provider credentials are missing; every auth operation fails with provider_unavailable")
	}
	if input.RedirectURL == "" {
		r.Warnings = append(r.Warnings, "no magic-link redirect URL configured; the provider project default is used")
	}
	if input.SessionDuration > maxRecommendedSession {
		r.Warnings = append(r.Warnings, "session duration exceeds 90 days")
	}
	if input.ProductionMode {
		if !rateLimiting {
			r.Warnings = append(r.Warnings, "login initiation is not rate limited in production")
		}
		for _, origin := range input.CORSOrigins {
			if isLoopbackOrigin(origin) {
				r.Warnings = append(r.Warnings, "production CORS allows a loopback origin: "+origin)
			}
		}
	}
	return r
}

func isLoopbackOrigin(origin string) bool {
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	return host == "localhost" || host == "127.0.0.1" || host == "::1"
}
