// Package middleware exposes HTTP adapters that put authgate.Engine session
// checks in front of handlers.
//
// # Guards
//
//   - [RequireSession] validates the request credential with the provider and
//     injects the resulting authgate.SessionInfo into the request context.
//   - [CredentialFromRequest] applies the header-over-cookie precedence rule.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. It does NOT
// talk to the identity provider itself; every decision is delegated to
// Engine.ValidateSession.
package middleware
