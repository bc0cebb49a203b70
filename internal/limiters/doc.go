// Package limiters holds client-side throttles for verification codes.
//
// # Limiters
//
//   - [MemoryResendLimiter] keeps per-address cooldowns in process memory.
//   - [RedisResendLimiter] shares cooldowns between processes via key expiry.
//
// All limiters are nil-safe: calling any method on a nil receiver allows the call.
//
// # Architecture boundaries
//
// Each limiter owns its own Redis key namespace and error types. The cooldown
// length comes from the Engine config.
//
// # What this package must NOT do
//
//   - Import dashAuth or any sibling internal package.
//   - Make policy decisions beyond timing; the Engine decides consequences.
package limiters
