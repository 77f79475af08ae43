package authgate

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	internalaudit "github.com/MrEthical07/authgate/internal/audit"
	"github.com/MrEthical07/authgate/internal/flows"
	"github.com/MrEthical07/authgate/internal/rate"
	"github.com/MrEthical07/authgate/provider"
	"github.com/MrEthical07/authgate/session"
)

// Engine dispatches gateway operations to the identity provider and maps
// every outcome onto SessionInfo values and the error taxonomy.
//
// An Engine is immutable after Builder.Build and safe for concurrent use.
type Engine struct {
	config      Config
	provider    provider.Provider
	flows       flows.Service
	rateLimiter *rate.Limiter
	audit       *internalaudit.Dispatcher
	metrics     *Metrics
	carrier     *session.Carrier
	logger      *slog.Logger
	now         func() time.Time
}

// Close drains pending audit events. The Engine must not be used afterwards.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped reports audit events discarded due to dispatcher backpressure.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns a copy of the engine counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

// Config returns a copy of the configuration the Engine was built with.
func (e *Engine) Config() Config {
	if e == nil {
		return Config{}
	}
	return cloneConfig(e.config)
}

// Carrier returns the session cookie carrier derived from the configuration.
func (e *Engine) Carrier() *session.Carrier {
	if e == nil {
		return session.NewCarrier(session.CookieConfig{})
	}
	return e.carrier
}

// ProviderConfigured reports whether the provider has credentials.
func (e *Engine) ProviderConfigured() bool {
	return e != nil && e.provider != nil && e.provider.Configured()
}

func (e *Engine) ready() bool {
	return e != nil && e.flows.Initialized()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) observeProvider(start time.Time) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Observe(MetricProviderLatency, e.now().Sub(start))
}

// providerFailure maps a classified flow failure onto the taxonomy. rejected
// is the operation-specific Unauthorized error used when the provider
// answered and refused, or failed in a way the adapter did not classify.
func (e *Engine) providerFailure(ctx context.Context, op string, kind flows.FailureKind, err error, rejected error) error {
	switch kind {
	case flows.FailureNone:
		return nil
	case flows.FailureNotConfigured:
		e.metricInc(MetricProviderUnavailable)
		return ErrProviderNotConfigured
	case flows.FailureUnavailable:
		e.metricInc(MetricProviderUnavailable)
		e.logProviderError(ctx, op, kind, err)
		return ErrProviderUnreachable
	case flows.FailureRateLimited:
		return ErrLoginRateLimited
	case flows.FailureProviderThrottled:
		e.logProviderError(ctx, op, kind, err)
		// Only login initiation has a rate-limited answer; elsewhere the
		// provider's 429 is an ordinary refusal.
		if strings.HasPrefix(op, "login.") {
			return ErrLoginRateLimited
		}
		return rejected
	default:
		e.logProviderError(ctx, op, kind, err)
		return rejected
	}
}

// logProviderError records provider detail that never reaches the client.
func (e *Engine) logProviderError(ctx context.Context, op string, kind flows.FailureKind, err error) {
	if e == nil || e.logger == nil || err == nil {
		return
	}
	attrs := []slog.Attr{
		slog.String("op", op),
		slog.String("failure", kind.String()),
		slog.String("error", err.Error()),
	}
	if id := RequestIDFromContext(ctx); id != "" {
		attrs = append(attrs, slog.String("request_id", id))
	}
	var perr *provider.Error
	if errors.As(err, &perr) {
		attrs = append(attrs,
			slog.Int("status", perr.StatusCode),
			slog.String("provider_error_type", perr.Type),
			slog.String("provider_request_id", perr.RequestID),
		)
	}
	e.logger.LogAttrs(ctx, slog.LevelWarn, "identity provider call failed", attrs...)
}

// maskEmail keeps the first rune of the local part and the domain.
func maskEmail(email string) string {
	at := strings.LastIndexByte(email, '@')
	if at <= 0 {
		return "***"
	}
	local := []rune(email[:at])
	return string(local[0]) + "***" + email[at:]
}
