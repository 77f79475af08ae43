// Package httpapi mounts the authgate Engine on a chi router.
//
// Routes:
//
//	POST /auth/login         start a magic-link login
//	POST /auth/authenticate  redeem a magic link or confirm a session token; sets the cookie
//	GET  /auth/callback      redeem ?stytch_token= from the emailed link; sets the cookie
//	POST /auth/logout        revoke the session; clears the cookie
//	GET  /auth/me            current principal
//	GET  /auth/validate      {valid, user, expiresAt}
//	GET  /healthz            liveness plus provider mode
//	GET  /metrics            Prometheus exposition, when a handler is supplied
//
// Errors are encoded as {"error": kind, "message": text} with the status from
// authgate.HTTPStatus. Provider payloads never reach the body.
package httpapi
