// Package flows contains pure-function orchestrators for the Engine's
// session operations.
//
// Each flow function (RunHydrate, RunIssueSession, RunLogout) accepts a typed
// dependency struct and returns a result without side effects beyond those
// dependencies, so every branch can be unit tested with stub functions.
//
// # Architecture boundaries
//
// Flow functions coordinate the credential record and the auth API. They do
// NOT own either, and they never touch the session state machine; the Engine
// applies the transition that matches the returned result.
//
// # What this package must NOT do
//
//   - Hold mutable state between calls.
//   - Import dashAuth (to avoid import cycles).
//   - Perform I/O directly; all I/O is mediated through dependency functions.
package flows
