// Package authgate is a session-authentication gateway in front of an external
// identity provider. It turns login requests, magic-link tokens, and
// bearer or cookie credentials into a uniform [SessionInfo] and a small error
// taxonomy (bad request, unauthorized, provider unavailable, rate limited).
//
// Engine methods are safe to call from multiple goroutines after
// initialization through [Builder.Build]. The Engine holds no per-user state:
// every operation is one request, zero or more provider calls, and a result.
//
// # Architecture boundaries
//
// authgate is the public surface. It exposes [Engine], [Builder], [Config], and
// value types. Flow classification and step orchestration live under
// internal/flows; provider I/O lives behind the provider.Provider interface;
// cookie handling lives in the session package; HTTP routing lives in httpapi.
//
// # What this package must NOT do
//
//   - Verify tokens cryptographically. The provider is the authority.
//   - Persist or cache a SessionInfo beyond the request that produced it.
//   - Return raw provider error payloads to callers.
package authgate
