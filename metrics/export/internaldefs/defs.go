package internaldefs

import (
	"math"

	"github.com/MrEthical07/authgate"
)

// CounterDef names one engine counter.
type CounterDef struct {
	ID   authgate.MetricID
	Name string
	Help string
}

// HistogramDef names one engine histogram.
type HistogramDef struct {
	ID   authgate.MetricID
	Name string
	Help string
}

var CounterDefs = []CounterDef{
	{ID: authgate.MetricLoginSuccess, Name: "authgate_login_success_total", Help: "Magic links sent."},
	{ID: authgate.MetricLoginFailure, Name: "authgate_login_failure_total", Help: "Login initiations refused by the provider or the user pre-check."},
	{ID: authgate.MetricLoginRateLimited, Name: "authgate_login_rate_limited_total", Help: "Login initiations denied by the throttle."},
	{ID: authgate.MetricAuthenticateSuccess, Name: "authgate_authenticate_success_total", Help: "Successful token authentications."},
	{ID: authgate.MetricAuthenticateFailure, Name: "authgate_authenticate_failure_total", Help: "Token authentications refused or failed."},
	{ID: authgate.MetricSessionCreated, Name: "authgate_session_created_total", Help: "Sessions created from magic links."},
	{ID: authgate.MetricValidateSuccess, Name: "authgate_validate_success_total", Help: "Sessions confirmed by the provider."},
	{ID: authgate.MetricValidateFailure, Name: "authgate_validate_failure_total", Help: "Session checks refused or failed."},
	{ID: authgate.MetricMissingCredential, Name: "authgate_missing_credential_total", Help: "Protected requests without a credential."},
	{ID: authgate.MetricLogout, Name: "authgate_logout_total", Help: "Sessions revoked."},
	{ID: authgate.MetricLogoutFailure, Name: "authgate_logout_failure_total", Help: "Revocations refused or failed."},
	{ID: authgate.MetricBadRequest, Name: "authgate_bad_request_total", Help: "Requests rejected by local input checks."},
	{ID: authgate.MetricProviderUnavailable, Name: "authgate_provider_unavailable_total", Help: "Provider calls that were not configured or could not be completed."},
	{ID: authgate.MetricRateLimitHit, Name: "authgate_rate_limit_hit_total", Help: "Rate-limit checks that denied requests."},
	{ID: authgate.MetricRateLimiterUnavailable, Name: "authgate_rate_limiter_unavailable_total", Help: "Login throttle checks skipped because Redis failed."},
}

var HistogramDefs = []HistogramDef{
	{ID: authgate.MetricProviderLatency, Name: "authgate_provider_latency_seconds", Help: "Identity provider call latency."},
}

// AuditDroppedName is the counter for events dropped by the audit dispatcher.
const (
	AuditDroppedName = "authgate_audit_dropped_total"
	AuditDroppedHelp = "Dropped audit events due to dispatcher backpressure."
)

// HistogramBounds are the upper bounds in seconds, matching the engine
// bucket layout. The last bound is +Inf.
var HistogramBounds = []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, math.Inf(1)}

// HistogramBoundLabels renders each bound as an "le" label value.
var HistogramBoundLabels = []string{"0.05", "0.1", "0.25", "0.5", "1", "2.5", "5", "+Inf"}

// NormalizeBuckets copies raw into a fixed-size array, zero-filling.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts into running totals.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
