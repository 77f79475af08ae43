// Package provider defines the boundary between authgate and an external
// identity provider.
//
// [Provider] is the capability set the gateway needs: send a magic link,
// redeem a magic-link token, authenticate and revoke a session, and look up a
// principal by email. Implementations convert provider payloads into the
// normalized result structs of this package before returning, so nothing
// upstream depends on a provider's wire format.
//
// # Variants
//
//   - [Unconfigured] fails every call with [ErrNotConfigured].
//   - stytch.Client talks to the Stytch REST API.
//   - providertest.Provider is an in-memory fake for tests.
//
// # What this package must NOT do
//
//   - Retry calls. A failed call is reported once.
//   - Decide HTTP status codes or user-facing messages.
package provider
