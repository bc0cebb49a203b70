// Package dashAuth is the client-side session layer of the dashboard: it
// persists the bearer token and cached user, reconstructs the session on
// start-up, drives every sign-in flow against the auth backend and decides
// which routes an anonymous visitor may see.
//
// An [Engine] is built once through [Builder.Build] and injected wherever the
// session is needed. Its methods are safe to call from multiple goroutines.
//
// # Architecture boundaries
//
// dashAuth is the public surface. It exposes [Engine], [Builder], [Config],
// [State] and the route policy ([Gate]). Wire types and endpoint calls live
// in authapi, HTTP plumbing in transport, storage backends in session.
// Flow orchestration, audit dispatch and the resend cooldown live under
// internal/ and are never exported.
//
// # Session lifecycle
//
// Every Engine starts in [PhaseHydrating] and leaves it exactly once, to
// [PhaseAnonymous] or [PhaseAuthenticated]. After that the state only moves
// through sign-in, logout and [Engine.SetUser]. Transitions are pure
// ([State.Apply]) so callers can test their own handling without a backend.
//
// # What this package must NOT do
//
//   - Validate tokens; the backend is the authority.
//   - Retry failed requests or navigate on the caller's behalf.
//   - Import any sub-package that re-imports dashAuth (no import cycles).
package dashAuth
