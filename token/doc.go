// Package token implements the signed token codec: issuance of access and
// refresh tokens carrying a subject identity and capability set, and
// verification that classifies presented tokens as valid, expired, or
// malformed.
//
// # Architecture boundaries
//
// The codec is pure: it holds key material supplied at construction and no
// other state. Refresh-token liveness (rotation, revocation) is the session
// store's concern; this package only proves authenticity and lifetime.
//
// # What this package must NOT do
//
//   - Touch Redis or any other store.
//   - Reason about cookies, headers, or any transport concern.
package token
