package jwt

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNotJWT is returned by Inspect for credentials that do not parse as a JWT.
var ErrNotJWT = errors.New("credential is not a jwt")

// SessionClaims carries the unverified registered claims of a session JWT.
type SessionClaims struct {
	Subject   string
	Issuer    string
	Audience  []string
	ExpiresAt time.Time
	IssuedAt  time.Time
	Algorithm string
	KeyID     string
}

// Expired reports whether the unverified exp claim lies before now. Tokens
// without exp are never reported as expired.
func (c SessionClaims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !c.ExpiresAt.After(now)
}

var parser = jwt.NewParser(jwt.WithoutClaimsValidation())

// LooksLikeJWT is a cheap structural check: three non-empty dot-separated
// segments with a header that starts like base64url-encoded JSON.
func LooksLikeJWT(token string) bool {
	if strings.Count(token, ".") != 2 {
		return false
	}
	parts := strings.Split(token, ".")
	for _, p := range parts[:2] {
		if p == "" {
			return false
		}
	}
	return strings.HasPrefix(parts[0], "eyJ")
}

// Inspect decodes token without verifying it.
func Inspect(token string) (SessionClaims, error) {
	if !LooksLikeJWT(token) {
		return SessionClaims{}, ErrNotJWT
	}

	var claims jwt.RegisteredClaims
	parsed, _, err := parser.ParseUnverified(token, &claims)
	if err != nil {
		return SessionClaims{}, errors.Join(ErrNotJWT, err)
	}

	out := SessionClaims{
		Subject:  claims.Subject,
		Issuer:   claims.Issuer,
		Audience: []string(claims.Audience),
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time.UTC()
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time.UTC()
	}
	if parsed != nil {
		if parsed.Method != nil {
			out.Algorithm = parsed.Method.Alg()
		}
		if kid, ok := parsed.Header["kid"].(string); ok {
			out.KeyID = kid
		}
	}
	return out, nil
}
