// Package rate provides the Redis-backed login-initiation throttle.
//
// # Window semantics
//
// Fixed-window counters: INCR + EXPIRE NX in one MULTI/EXEC. Keys are
// namespaced by a configurable prefix:
//   - <prefix>:ml:e:  magic-link sends per normalized email
//   - <prefix>:ml:ip: magic-link sends per client IP
//
// # What this package must NOT do
//
//   - Decide what happens when Redis is down; it reports ErrRedisUnavailable
//     and the engine applies its policy.
//   - Be imported outside the authgate module.
package rate
