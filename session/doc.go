// Package session implements the Redis-backed session store: one record per
// subject identity holding the currently-valid refresh token value with a
// TTL.
//
// # Consistency model
//
// Put is an unconditional overwrite (last-write-wins). Concurrent reissues
// for the same identity race on Put; the value-comparison performed by the
// lifecycle manager detects the rotated-out loser on its next use. Exactly
// one record exists per identity at any instant.
//
// # Failure model
//
// A miss is redis.Nil. Everything else is wrapped in ErrUnavailable and is
// fatal to reissue/logout: session liveness cannot be asserted without the
// store, so callers fall into the unauthenticated path rather than treating
// a request as implicitly valid.
package session
