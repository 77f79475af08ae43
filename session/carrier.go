package session

import (
	"net/http"
	"time"
)

// DefaultCookieName is the cookie the gateway reads and writes unless
// configured otherwise.
const DefaultCookieName = "kab_session"

// CookieConfig selects the cookie name and the production attribute policy.
type CookieConfig struct {
	Name string
	// Production forces Secure and SameSite=None so the cookie survives
	// cross-site requests from the frontend origin.
	Production bool
	Domain     string
}

// Carrier writes and clears the session cookie.
type Carrier struct {
	cfg CookieConfig
}

func NewCarrier(cfg CookieConfig) *Carrier {
	if cfg.Name == "" {
		cfg.Name = DefaultCookieName
	}
	return &Carrier{cfg: cfg}
}

// Name returns the cookie name.
func (c *Carrier) Name() string {
	return c.cfg.Name
}

// base is the attribute set shared by SetCookie and ClearCookie.
func (c *Carrier) base() http.Cookie {
	sameSite := http.SameSiteLaxMode
	if c.cfg.Production {
		sameSite = http.SameSiteNoneMode
	}
	return http.Cookie{
		Name:     c.cfg.Name,
		Path:     "/",
		Domain:   c.cfg.Domain,
		HttpOnly: true,
		Secure:   c.cfg.Production,
		SameSite: sameSite,
	}
}

// SetCookie builds the directive that stores token until expiresAt. A zero
// or already-passed expiry yields a browser-session cookie with no Max-Age.
func (c *Carrier) SetCookie(token string, expiresAt, now time.Time) *http.Cookie {
	cookie := c.base()
	cookie.Value = token
	cookie.MaxAge = MaxAge(expiresAt, now)
	return &cookie
}

// ClearCookie builds the directive that deletes the cookie.
func (c *Carrier) ClearCookie() *http.Cookie {
	cookie := c.base()
	cookie.MaxAge = -1
	cookie.Expires = time.Unix(0, 0).UTC()
	return &cookie
}

// Value returns the cookie carried by r, or "" when absent.
func (c *Carrier) Value(r *http.Request) string {
	if r == nil {
		return ""
	}
	cookie, err := r.Cookie(c.cfg.Name)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// MaxAge is the whole number of seconds from now until expiresAt, clamped at
// zero. A zero expiresAt means unknown and also yields zero.
func MaxAge(expiresAt, now time.Time) int {
	if expiresAt.IsZero() {
		return 0
	}
	d := expiresAt.Sub(now)
	if d <= 0 {
		return 0
	}
	return int(d / time.Second)
}
