// Package middleware adapts the dashAuth route policy and session lifecycle to
// net/http.
//
// # Middleware
//
//   - [Gate] applies dashAuth.Gate to every request: loading placeholder,
//     redirect to sign-in, or pass-through with the state in the context.
//   - [CookieSessions] builds one Engine per request over a cookie-backed
//     store, hydrates it and exposes it through [EngineFromContext].
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. Decisions come
// from dashAuth.Gate; persistence and hydration from the Engine.
//
// # What this package must NOT do
//
//   - Parse or validate tokens (the backend is the authority).
//   - Write responses after calling next, except the decisions above.
//   - Cache decisions across requests.
package middleware
