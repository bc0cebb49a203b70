// Package internal groups the private building blocks of dashAuth.
//
// # Sub-packages
//
//   - audit: async event dispatch (Dispatcher + Sink implementations)
//   - flows: hydration, session issue and logout orchestration
//   - limiters: resend-code cooldowns (memory or Redis)
//   - fakebackend: in-process auth backend for tests, the CLI demo and the example shell
//
// # What this package must NOT do
//
//   - Export types that appear in the public dashAuth API.
//   - Be imported by any package outside the dashAuth module.
package internal
