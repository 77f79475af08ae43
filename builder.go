package authgate

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	internalaudit "github.com/MrEthical07/authgate/internal/audit"
	"github.com/MrEthical07/authgate/internal/flows"
	"github.com/MrEthical07/authgate/internal/rate"
	"github.com/MrEthical07/authgate/provider"
	"github.com/MrEthical07/authgate/provider/stytch"
	"github.com/MrEthical07/authgate/session"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"
)

// Builder assembles an Engine. A Builder is single-use.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	provider   provider.Provider
	httpClient *http.Client
	tracer     trace.Tracer

	auditSink AuditSink
	logger    *slog.Logger
	now       func() time.Time

	built bool
}

// New returns a Builder seeded with DefaultConfig.
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithProvider injects the identity provider. Without it, Build derives a
// Stytch client (or the unconfigured variant) from Config.Provider.
func (b *Builder) WithProvider(p provider.Provider) *Builder {
	b.provider = p
	return b
}

// WithRedis enables the login throttle.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithHTTPClient overrides the transport of the derived Stytch client.
func (b *Builder) WithHTTPClient(client *http.Client) *Builder {
	b.httpClient = client
	return b
}

// WithTracer sets the tracer for provider spans.
func (b *Builder) WithTracer(tracer trace.Tracer) *Builder {
	b.tracer = tracer
	return b
}

// WithAuditSink sets the audit destination. Events flow only when
// Config.Audit.Enabled is set; the default sink logs through the Builder's
// logger.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// WithClock replaces time.Now, for tests.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

// Build validates the configuration and returns a ready Engine.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := b.logger
	if logger == nil {
		logger = slog.Default()
	}
	now := b.now
	if now == nil {
		now = time.Now
	}

	p := b.provider
	if p == nil {
		var err error
		p, err = stytch.NewProvider(stytch.Config{
			ProjectID:  cfg.Provider.ProjectID,
			Secret:     cfg.Provider.Secret,
			BaseURL:    cfg.Provider.BaseURL,
			Timeout:    cfg.Provider.Timeout,
			B2B:        cfg.MultiTenant.Enabled,
			HTTPClient: b.httpClient,
			Tracer:     b.tracer,
		})
		if err != nil {
			return nil, err
		}
	}
	if !p.Configured() {
		logger.LogAttrs(context.Background(), slog.LevelWarn,
			"identity provider credentials missing; auth operations will fail with provider_unavailable")
	}

	var limiter *rate.Limiter
	if b.redis != nil && cfg.RateLimit.MaxLoginAttempts > 0 {
		limiter = rate.New(b.redis, rate.Config{
			Prefix:           cfg.RateLimit.RedisPrefix,
			EnableIPThrottle: cfg.RateLimit.EnableIPThrottle,
			MaxLoginAttempts: cfg.RateLimit.MaxLoginAttempts,
			LoginWindow:      cfg.RateLimit.LoginWindow,
		})
	}

	sink := b.auditSink
	if sink == nil {
		sink = NewSlogSink(logger)
	}

	loginDeps := flows.LoginDeps{
		Provider:            p,
		RequireExistingUser: cfg.MagicLink.RequireExistingUser,
		RedirectURL:         cfg.MagicLink.RedirectURL,
		ThrottleRejected:    rate.ErrRateLimited,
	}
	if limiter != nil {
		loginDeps.Throttle = limiter.AllowLogin
	}

	e := &Engine{
		config:   cfg,
		provider: p,
		flows: flows.New(flows.Deps{
			Login: loginDeps,
			Authenticate: flows.AuthenticateDeps{
				Provider:        p,
				SessionDuration: cfg.Session.Duration,
			},
			Session: flows.SessionDeps{Provider: p},
		}),
		rateLimiter: limiter,
		audit: internalaudit.NewDispatcher(internalaudit.Config{
			Enabled:     cfg.Audit.Enabled,
			BufferSize:  cfg.Audit.BufferSize,
			DropIfFull:  cfg.Audit.DropIfFull,
			SinkTimeout: cfg.Audit.SinkTimeout,
			Logger:      logger,
		}, sink),
		metrics: NewMetrics(cfg.Metrics),
		carrier: session.NewCarrier(cfg.SessionCookie()),
		logger:  logger,
		now:     now,
	}

	b.built = true
	return e, nil
}
