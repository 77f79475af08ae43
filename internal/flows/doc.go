// Package flows contains pure-function orchestrators for every Engine operation.
//
// Each flow function (RunLogin, RunAuthenticate, RunValidateSession,
// RunRevokeSession) accepts a typed dependency struct and returns a result
// with a classified FailureKind. The Engine maps failure kinds onto its public
// error taxonomy, so provider error details never cross this boundary upward
// except through Result.Err for logging.
//
// Classify, NormalizeFlowType and DetectFlow decide which provider call an
// incoming token is dispatched to.
//
// # What this package must NOT do
//
//   - Hold mutable state between calls.
//   - Import authgate (to avoid import cycles).
//   - Emit audit events or metrics; the Engine owns both.
package flows
