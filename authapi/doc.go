// Package authapi is the typed surface of the dashboard's auth backend: one
// method per endpoint, the request/response contracts, form validation rules,
// and the error classifiers every caller needs.
//
// # Architecture boundaries
//
// This package issues requests through a [Requester] and returns results and
// errors unchanged. It does NOT persist tokens or hold session state; the root
// package owns both.
//
// # What this package must NOT do
//
//   - Import dashAuth (no upward imports).
//   - Retry, swallow, or rewrite transport errors.
//   - Decide navigation; redirect intents live in the root package.
package authapi
