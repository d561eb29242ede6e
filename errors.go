package authcache

import "errors"

var (
	// ErrBadCredentials is returned when the login id is unknown or the
	// password does not match. The two cases are deliberately not
	// distinguishable by the caller.
	ErrBadCredentials = errors.New("bad credentials")
	// ErrAccountDeleted is returned when an operation targets an account
	// marked deleted. A deleted account always outranks a structurally valid
	// token.
	ErrAccountDeleted = errors.New("account deleted")
	// ErrBadToken covers signature/structure failures and refresh-token
	// value mismatches (replay of a rotated-out token).
	ErrBadToken = errors.New("bad token")
	// ErrTokenExpired is returned for an expired access token on paths that
	// require a live one.
	ErrTokenExpired = errors.New("access token expired")
	// ErrRefreshExpired is terminal for the session; the caller must
	// re-login.
	ErrRefreshExpired = errors.New("refresh token expired")
	// ErrSessionRevoked means no session record exists for the subject:
	// logged out, expired via TTL, or never logged in.
	ErrSessionRevoked = errors.New("session revoked")
	// ErrStoreUnavailable wraps session/cache backend failures surfaced to
	// the caller. Idempotent store operations are safe for the caller to
	// retry; this core never retries internally.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrMemberNotFound is returned by member lookups for absent records,
	// and must be returned by MemberProvider implementations for the same.
	ErrMemberNotFound = errors.New("member not found")
	// ErrDuplicateMember rejects signup with an already-taken login id.
	ErrDuplicateMember = errors.New("member already exists")
	// ErrPasswordPolicy rejects passwords the hasher refuses to process.
	ErrPasswordPolicy = errors.New("password rejected by policy")

	// ErrEngineNotReady guards against use of a partially constructed
	// Engine.
	ErrEngineNotReady = errors.New("engine not ready")
)
