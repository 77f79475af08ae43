// Package jwt recognizes session credentials that are shaped like JSON Web
// Tokens and reads their unverified claims.
//
// Nothing here verifies a signature. The identity provider is the only
// authority on whether a session is valid; the inspector exists so the
// provider adapter can send a credential under the right field name and so
// logs can carry a subject hint.
package jwt
