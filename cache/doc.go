// Package cache implements the read-through entity cache and the
// cache-consistency coordinator that keeps it consistent with authoritative
// storage under concurrent mutation.
//
// # Ordering invariant
//
// Eviction happens strictly after the authoritative write commits
// (evict-after-write, never invalidate-then-write), and is always removal,
// never replacement. A cache entry, if present, therefore reflects storage
// state no older than the last successful mutation targeting its key. The
// one permitted staleness window — a read that began before an overlapping
// write completed — self-heals at TTL expiry.
//
// # Failure model
//
// The cache is an accelerator, not a source of truth. Backend failures on
// read degrade to the loader; failures on post-write eviction are logged and
// observed but never turn a committed mutation into an error.
package cache
