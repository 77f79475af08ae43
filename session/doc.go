// Package session carries the provider session token to browsers in an
// HttpOnly cookie.
//
// A [Carrier] builds the set-cookie and clear-cookie directives from one
// shared attribute set, so a cookie written by a login is always removable by
// a logout issued under the same configuration.
//
// # What this package must NOT do
//
//   - Interpret or validate the token it carries.
//   - Store sessions anywhere other than the client cookie.
package session
