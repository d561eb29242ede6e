// Package authcache provides a session-token lifecycle engine with rotating
// JWT refresh tokens, Redis-backed per-identity sessions, and an
// evict-after-write entity cache coordinator.
//
// The package is designed for concurrent server workloads: Engine methods
// are safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// authcache is the public surface. It exposes [Engine], [Builder], [Config],
// and value types (LoginResult, TokenPair, MetricsSnapshot, etc.). Token
// encoding lives in token/, refresh session storage in session/, and the
// read-through/evict-after-write cache discipline in cache/. The member
// database is never owned here; callers inject a [MemberProvider].
//
// # Consistency contract
//
// At most one refresh token per identity is live at any time; a rotated-out
// token presented again is rejected as a replay. Entity mutations evict
// their cache keys only after the authoritative write commits, so a cached
// snapshot is never older than the last committed mutation of its key.
// Session store failures are fatal for lifecycle operations; entity cache
// failures degrade reads to the authoritative loader.
package authcache
