package authgate

import (
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantValid bool
	}{
		{
			name:      "defaults valid",
			mutate:    func(c *Config) {},
			wantValid: true,
		},
		{
			name: "session duration too short",
			mutate: func(c *Config) {
				c.Session.Duration = 30 * time.Second
			},
			wantValid: false,
		},
		{
			name: "session duration fractional minutes",
			mutate: func(c *Config) {
				c.Session.Duration = 90 * time.Second
			},
			wantValid: false,
		},
		{
			name: "negative provider timeout",
			mutate: func(c *Config) {
				c.Provider.Timeout = -time.Second
			},
			wantValid: false,
		},
		{
			name: "relative provider base url",
			mutate: func(c *Config) {
				c.Provider.BaseURL = "api.stytch.test"
			},
			wantValid: false,
		},
		{
			name: "cookie name with separator",
			mutate: func(c *Config) {
				c.Cookie.Name = "kab;session"
			},
			wantValid: false,
		},
		{
			name: "blank cookie name",
			mutate: func(c *Config) {
				c.Cookie.Name = "  "
			},
			wantValid: false,
		},
		{
			name: "http redirect allowed in development",
			mutate: func(c *Config) {
				c.MagicLink.RedirectURL = "http://localhost:3000/auth/callback"
			},
			wantValid: true,
		},
		{
			name: "http redirect rejected in production",
			mutate: func(c *Config) {
				c.Environment = "production"
				c.MagicLink.RedirectURL = "http://app.example.com/auth/callback"
			},
			wantValid: false,
		},
		{
			name: "unsupported default locale",
			mutate: func(c *Config) {
				c.MagicLink.DefaultLocale = "de"
			},
			wantValid: false,
		},
		{
			name: "attempts without window",
			mutate: func(c *Config) {
				c.RateLimit.LoginWindow = 0
			},
			wantValid: false,
		},
		{
			name: "throttle disabled needs no window",
			mutate: func(c *Config) {
				c.RateLimit.MaxLoginAttempts = 0
				c.RateLimit.LoginWindow = 0
			},
			wantValid: true,
		},
		{
			name: "audit enabled without buffer",
			mutate: func(c *Config) {
				c.Audit.Enabled = true
				c.Audit.BufferSize = 0
			},
			wantValid: false,
		},
		{
			name: "negative audit sink timeout",
			mutate: func(c *Config) {
				c.Audit.SinkTimeout = -time.Second
			},
			wantValid: false,
		},
		{
			name: "tracing sample ratio above one",
			mutate: func(c *Config) {
				c.Tracing.SampleRatio = 1.5
			},
			wantValid: false,
		},
		{
			name: "relative tracing endpoint",
			mutate: func(c *Config) {
				c.Tracing.Endpoint = "collector:4318"
			},
			wantValid: false,
		},
		{
			name: "wildcard cors in production",
			mutate: func(c *Config) {
				c.Environment = "Production"
				c.HTTP.CORSOrigins = []string{"https://app.example.com", " * "}
			},
			wantValid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantValid && err != nil {
				t.Fatalf("expected valid config, got %v", err)
			}
			if !tt.wantValid && err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("STYTCH_PROJECT_ID", "project-test-123")
	t.Setenv("STYTCH_SECRET", "secret-test-123")
	t.Setenv("SESSION_DURATION", "2h")
	t.Setenv("SESSION_COOKIE_NAME", "")
	t.Setenv("MULTI_TENANT", "true")
	t.Setenv("CORS_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("LOGIN_MAX_ATTEMPTS", "3")

	cfg, err := LoadConfigFromEnv()
	if err != nil {
		t.Fatalf("LoadConfigFromEnv: %v", err)
	}
	if !cfg.Production() || !cfg.Provider.Configured() || !cfg.MultiTenant.Enabled {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.Session.Duration != 2*time.Hour || cfg.RateLimit.MaxLoginAttempts != 3 {
		t.Fatalf("unexpected durations %+v", cfg)
	}
	if cfg.Cookie.Name != "kab_session" {
		t.Fatalf("empty cookie name must fall back to default, got %q", cfg.Cookie.Name)
	}
	origins := cfg.AllowedOrigins()
	if len(origins) != 2 || origins[1] != "https://b.example.com" {
		t.Fatalf("unexpected origins %v", origins)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("env config must validate: %v", err)
	}
}

func TestAllowedOriginsDefaults(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.AllowedOrigins(); len(got) != 2 || got[0] != "http://localhost:3000" {
		t.Fatalf("unexpected development origins %v", got)
	}
	cfg.Environment = "production"
	if got := cfg.AllowedOrigins(); len(got) != 0 {
		t.Fatalf("production must not default any origin, got %v", got)
	}
}

func TestSessionCookieFollowsEnvironment(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Cookie.Domain = "example.com"
	if sc := cfg.SessionCookie(); sc.Production || sc.Name != "kab_session" || sc.Domain != "example.com" {
		t.Fatalf("unexpected development cookie config %+v", sc)
	}
	cfg.Environment = "production"
	if !cfg.SessionCookie().Production {
		t.Fatal("production environment must yield production cookies")
	}
}

func TestBuildConfigImmutableAgainstExternalMutation(t *testing.T) {
	cfg := testConfig()
	cfg.HTTP.CORSOrigins = []string{"https://a.example.com"}
	te := newTestEngine(t, cfg, nil)

	cfg.HTTP.CORSOrigins[0] = "https://evil.example.com"
	got := te.Config()
	if got.HTTP.CORSOrigins[0] != "https://a.example.com" {
		t.Fatal("engine config must not alias caller slices")
	}
	got.HTTP.CORSOrigins[0] = "https://evil.example.com"
	if te.Config().HTTP.CORSOrigins[0] != "https://a.example.com" {
		t.Fatal("Config must return a copy")
	}
}
