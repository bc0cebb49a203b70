// Package jwt reads access-token claims on the client side and issues tokens for
// the in-process development backend.
//
// [Inspect] and [Expired] never verify signatures; the client holds no key and
// uses exp only to decide whether a cached user must be revalidated. [Issuer]
// verifies strictly and is only used where this module plays the backend.
package jwt
