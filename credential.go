package authgate

import "strings"

const bearerPrefix = "Bearer "

// ExtractCredential picks the session credential from an Authorization
// header value and a cookie value. A non-empty header always wins; one
// leading "Bearer " (case-sensitive) is stripped and the rest is used
// verbatim. An empty result is reported as absent.
func ExtractCredential(authorizationHeader, cookieValue string) (string, bool) {
	if authorizationHeader != "" {
		token := strings.TrimPrefix(authorizationHeader, bearerPrefix)
		return token, token != ""
	}
	if cookieValue != "" {
		return cookieValue, true
	}
	return "", false
}
