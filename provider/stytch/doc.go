// Package stytch implements provider.Provider against the Stytch REST API.
//
// Consumer projects use the /v1 user endpoints; multi-tenant deployments set
// Config.B2B and use the /v1/b2b member endpoints. Every call is one POST with
// HTTP basic auth, wrapped in an OpenTelemetry client span. Responses with a
// 5xx status, transport failures, and context cancellation map to
// provider.ErrUnavailable; other non-2xx responses become *provider.Error.
package stytch
