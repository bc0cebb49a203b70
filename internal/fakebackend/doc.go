// Package fakebackend is an in-process implementation of the dashboard auth
// API. It issues real HS256 tokens through jwt.Issuer so hydration,
// revalidation and bearer checks behave as they do against the real
// backend.
//
// It backs the engine tests, the dashauth CLI's demo mode and the
// dashboard-shell example. It is not a server for production use: accounts
// and codes live in memory and are lost on restart.
package fakebackend
