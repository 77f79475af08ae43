package authgate

import (
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/MrEthical07/authgate/session"
	"github.com/caarlos0/env/v11"
)

// Config is the complete gateway configuration. It is read once at startup
// and treated as immutable after Builder.Build.
type Config struct {
	// Environment is "production" or anything else; production switches the
	// cookie policy to Secure + SameSite=None.
	Environment string `env:"APP_ENV" envDefault:"development"`

	Provider    ProviderConfig
	Session     SessionConfig
	Cookie      CookieConfig
	MagicLink   MagicLinkConfig
	MultiTenant MultiTenantConfig
	RateLimit   RateLimitConfig
	Audit       AuditConfig
	Metrics     MetricsConfig
	HTTP        HTTPConfig
	Log         LogConfig
	Tracing     TracingConfig
}

/*
====================================
PROVIDER CONFIG
====================================
*/

// ProviderConfig holds identity-provider credentials. Leaving ProjectID or
// Secret empty selects the unconfigured provider.
type ProviderConfig struct {
	ProjectID string        `env:"STYTCH_PROJECT_ID"`
	Secret    string        `env:"STYTCH_SECRET"`
	BaseURL   string        `env:"STYTCH_API_BASE_URL"`
	Timeout   time.Duration `env:"STYTCH_TIMEOUT" envDefault:"10s"`
}

// Configured reports whether both credentials are present.
func (p ProviderConfig) Configured() bool {
	return strings.TrimSpace(p.ProjectID) != "" && strings.TrimSpace(p.Secret) != ""
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig controls the lifetime of sessions created from magic links.
type SessionConfig struct {
	// Duration is requested from the provider and used for the local expiry.
	Duration time.Duration `env:"SESSION_DURATION" envDefault:"720h"`
	// UseProviderExpiry prefers a future expiry reported by the provider over
	// now+Duration.
	UseProviderExpiry bool `env:"SESSION_USE_PROVIDER_EXPIRY"`
}

/*
====================================
COOKIE CONFIG
====================================
*/

type CookieConfig struct {
	Name   string `env:"SESSION_COOKIE_NAME" envDefault:"kab_session"`
	Domain string `env:"COOKIE_DOMAIN"`
}

/*
====================================
MAGIC LINK CONFIG
====================================
*/

type MagicLinkConfig struct {
	// RedirectURL is where the emailed link sends the browser.
	RedirectURL string `env:"FRONTEND_URL"`
	// RequireExistingUser looks the email up before sending and refuses
	// unknown addresses with the generic login failure.
	RequireExistingUser bool `env:"MAGIC_LINK_REQUIRE_EXISTING_USER" envDefault:"true"`
	// DefaultLocale applies when a login request names none.
	DefaultLocale string `env:"MAGIC_LINK_DEFAULT_LOCALE"`
}

/*
====================================
MULTI-TENANT CONFIG
====================================
*/

// MultiTenantConfig switches the provider to organization-scoped members.
type MultiTenantConfig struct {
	Enabled bool `env:"MULTI_TENANT"`
}

/*
====================================
RATE LIMIT CONFIG
====================================
*/

// RateLimitConfig throttles login initiation. It is active only when a Redis
// client is supplied to the Builder.
type RateLimitConfig struct {
	RedisAddr        string        `env:"REDIS_ADDR"`
	RedisPrefix      string        `env:"RATE_LIMIT_PREFIX" envDefault:"ag"`
	MaxLoginAttempts int           `env:"LOGIN_MAX_ATTEMPTS" envDefault:"5"`
	LoginWindow      time.Duration `env:"LOGIN_WINDOW" envDefault:"15m"`
	EnableIPThrottle bool          `env:"LOGIN_IP_THROTTLE" envDefault:"true"`
}

/*
====================================
AUDIT / METRICS CONFIG
====================================
*/

type AuditConfig struct {
	Enabled    bool `env:"AUDIT_ENABLED"`
	BufferSize int  `env:"AUDIT_BUFFER_SIZE" envDefault:"1024"`
	DropIfFull bool `env:"AUDIT_DROP_IF_FULL" envDefault:"true"`
	// SinkTimeout bounds one sink delivery; a sink that outlives it loses
	// that event.
	SinkTimeout time.Duration `env:"AUDIT_SINK_TIMEOUT" envDefault:"5s"`
}

type MetricsConfig struct {
	Enabled                 bool `env:"METRICS_ENABLED" envDefault:"true"`
	EnableLatencyHistograms bool `env:"METRICS_LATENCY_HISTOGRAMS"`
}

/*
====================================
HTTP / LOG CONFIG
====================================
*/

type HTTPConfig struct {
	Port string `env:"PORT" envDefault:"3000"`
	// CORSOrigins defaults per environment when empty; see AllowedOrigins.
	CORSOrigins     []string      `env:"CORS_ORIGINS" envSeparator:","`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"15s"`
}

type LogConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

// TracingConfig enables OTLP/HTTP span export. Tracing is off while
// Endpoint is empty; provider calls still create spans on the no-op tracer.
type TracingConfig struct {
	Endpoint    string  `env:"OTEL_TRACES_ENDPOINT"`
	ServiceName string  `env:"OTEL_SERVICE_NAME" envDefault:"authgate"`
	SampleRatio float64 `env:"OTEL_TRACES_SAMPLE_RATIO" envDefault:"1"`
}

var devCORSOrigins = []string{"http://localhost:3000", "http://localhost:3001"}

// Production reports whether the production cookie policy applies.
func (c Config) Production() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), "production")
}

// AllowedOrigins returns the configured CORS origins, or the environment
// default when none are set: nothing in production, the local dev servers
// otherwise.
func (c Config) AllowedOrigins() []string {
	out := make([]string, 0, len(c.HTTP.CORSOrigins))
	for _, o := range c.HTTP.CORSOrigins {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	if len(out) > 0 {
		return out
	}
	if c.Production() {
		return nil
	}
	return append(out, devCORSOrigins...)
}

// SessionCookie derives the carrier configuration.
func (c Config) SessionCookie() session.CookieConfig {
	return session.CookieConfig{
		Name:       c.Cookie.Name,
		Production: c.Production(),
		Domain:     c.Cookie.Domain,
	}
}

// DefaultConfig returns the built-in defaults, matching an empty environment.
func DefaultConfig() Config {
	return Config{
		Environment: "development",
		Provider: ProviderConfig{
			Timeout: 10 * time.Second,
		},
		Session: SessionConfig{
			Duration: 30 * 24 * time.Hour,
		},
		Cookie: CookieConfig{
			Name: session.DefaultCookieName,
		},
		MagicLink: MagicLinkConfig{
			RequireExistingUser: true,
		},
		RateLimit: RateLimitConfig{
			RedisPrefix:      "ag",
			MaxLoginAttempts: 5,
			LoginWindow:      15 * time.Minute,
			EnableIPThrottle: true,
		},
		Audit: AuditConfig{
			BufferSize:  1024,
			DropIfFull:  true,
			SinkTimeout: 5 * time.Second,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
		HTTP: HTTPConfig{
			Port:            "3000",
			ShutdownTimeout: 10 * time.Second,
			ReadTimeout:     15 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Tracing: TracingConfig{
			ServiceName: "authgate",
			SampleRatio: 1,
		},
	}
}

// LoadConfigFromEnv parses the process environment over DefaultConfig.
func LoadConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.Cookie.Name == "" {
		cfg.Cookie.Name = session.DefaultCookieName
	}
	if cfg.Session.Duration == 0 {
		cfg.Session.Duration = 30 * 24 * time.Hour
	}
	if cfg.RateLimit.RedisPrefix == "" {
		cfg.RateLimit.RedisPrefix = "ag"
	}
	return cfg, nil
}

func cloneConfig(cfg Config) Config {
	out := cfg
	if cfg.HTTP.CORSOrigins != nil {
		out.HTTP.CORSOrigins = append([]string(nil), cfg.HTTP.CORSOrigins...)
	}
	return out
}

/*
====================================
VALIDATION
====================================
*/

// Validate rejects configurations the gateway cannot run with. Missing
// provider credentials are not an error; they select the unconfigured
// provider.
func (c *Config) Validate() error {
	if c.Session.Duration < time.Minute {
		return errors.New("Session Duration must be >= 1m")
	}
	if c.Session.Duration%time.Minute != 0 {
		return errors.New("Session Duration must be a whole number of minutes")
	}
	if c.Provider.Timeout < 0 {
		return errors.New("Provider Timeout must be >= 0")
	}
	if c.Provider.BaseURL != "" {
		u, err := url.Parse(c.Provider.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return errors.New("Provider BaseURL must be an absolute URL")
		}
	}
	if strings.TrimSpace(c.Cookie.Name) == "" {
		return errors.New("Cookie Name must not be empty")
	}
	if strings.ContainsAny(c.Cookie.Name, " ;,=\t") {
		return errors.New("Cookie Name contains invalid characters")
	}
	if c.MagicLink.RedirectURL != "" {
		u, err := url.Parse(c.MagicLink.RedirectURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return errors.New("MagicLink RedirectURL must be an absolute URL")
		}
		if c.Production() && u.Scheme != "https" {
			return errors.New("MagicLink RedirectURL must use https in production")
		}
	}
	if c.MagicLink.DefaultLocale != "" {
		if _, ok := MatchLocale(c.MagicLink.DefaultLocale); !ok {
			return errors.New("MagicLink DefaultLocale is not a supported locale")
		}
	}
	if c.RateLimit.MaxLoginAttempts < 0 {
		return errors.New("RateLimit MaxLoginAttempts must be >= 0")
	}
	if c.RateLimit.MaxLoginAttempts > 0 && c.RateLimit.LoginWindow <= 0 {
		return errors.New("RateLimit LoginWindow must be > 0 when MaxLoginAttempts is set")
	}
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when audit is enabled")
	}
	if c.Audit.SinkTimeout < 0 {
		return errors.New("Audit SinkTimeout must be >= 0")
	}
	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		return errors.New("Tracing SampleRatio must be within [0, 1]")
	}
	if c.Tracing.Endpoint != "" {
		u, err := url.Parse(c.Tracing.Endpoint)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return errors.New("Tracing Endpoint must be an absolute URL")
		}
	}
	if c.Production() {
		for _, o := range c.HTTP.CORSOrigins {
			if strings.TrimSpace(o) == "*" {
				return errors.New("wildcard CORS origin is not allowed with credentials in production")
			}
		}
	}
	return nil
}
