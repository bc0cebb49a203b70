// Package session provides the persistence adapters that hold the access token
// and the cached user record between process runs or HTTP exchanges.
//
// # Backends
//
//   - [MemoryStore]: process memory with clock-driven expiry.
//   - [RedisStore]: shared Redis keys with native TTL.
//   - [PostgresStore]: one key/value table through pgx.
//   - [CookieStore]: cookies of a single HTTP exchange, the server-side
//     equivalent of browser cookies.
//   - [NoopStore]: no medium at all; every read reports absent.
//
// # Architecture boundaries
//
// This package stores opaque strings under string keys. It does NOT know which
// keys exist, parse tokens, or decode user records. Those responsibilities
// belong to the root package.
//
// # What this package must NOT do
//
//   - Import dashAuth or any sibling package (no upward imports).
//   - Encrypt, sign, or otherwise transform stored values beyond the escaping a
//     medium requires.
//   - Coordinate writers; the last write wins.
package session
