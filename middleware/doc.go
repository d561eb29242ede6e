// Package middleware exposes an HTTP adapter around Engine verification.
//
// [Guard] reads the Authorization header, calls Engine.Verify, and injects
// the resulting [authcache.AuthResult] into the request context, where
// handlers retrieve it with [AuthResultFromContext].
//
// This package translates HTTP semantics into Engine calls; it never parses
// tokens or touches Redis itself.
package middleware
