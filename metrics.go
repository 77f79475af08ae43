package authgate

import (
	internalmetrics "github.com/MrEthical07/authgate/internal/metrics"
)

// MetricID identifies one engine counter or histogram.
type MetricID = internalmetrics.ID

// Metrics is the engine's in-process metric store.
type Metrics = internalmetrics.Metrics

// MetricsSnapshot is a point-in-time copy of all metrics.
type MetricsSnapshot = internalmetrics.Snapshot

const (
	MetricLoginSuccess           = internalmetrics.LoginSuccess
	MetricLoginFailure           = internalmetrics.LoginFailure
	MetricLoginRateLimited       = internalmetrics.LoginRateLimited
	MetricAuthenticateSuccess    = internalmetrics.AuthenticateSuccess
	MetricAuthenticateFailure    = internalmetrics.AuthenticateFailure
	MetricSessionCreated         = internalmetrics.SessionCreated
	MetricValidateSuccess        = internalmetrics.ValidateSuccess
	MetricValidateFailure        = internalmetrics.ValidateFailure
	MetricMissingCredential      = internalmetrics.MissingCredential
	MetricLogout                 = internalmetrics.Logout
	MetricLogoutFailure          = internalmetrics.LogoutFailure
	MetricBadRequest             = internalmetrics.BadRequest
	MetricProviderUnavailable    = internalmetrics.ProviderUnavailable
	MetricRateLimitHit           = internalmetrics.RateLimitHit
	MetricRateLimiterUnavailable = internalmetrics.RateLimiterUnavailable
	MetricProviderLatency        = internalmetrics.ProviderLatency
)

// NewMetrics builds a metric store from cfg.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return internalmetrics.New(internalmetrics.Config{
		Enabled:       cfg.Enabled,
		EnableLatency: cfg.EnableLatencyHistograms,
	})
}
