package authcache

import (
	"context"
	"time"
)

// DefaultCapability is granted to every member without an explicit set.
const DefaultCapability = "ROLE_USER"

// MemberRecord is the full account record exchanged with the injected
// MemberProvider. UserID is the unique storage identifier; LoginID is the
// immutable subject identity carried inside tokens and used as the session
// store key.
type MemberRecord struct {
	UserID       string
	LoginID      string
	Nickname     string
	PasswordHash string
	Capabilities []string
	Deleted      bool
	UpdatedAt    time.Time
}

// MemberProvider is the interface callers implement to integrate the engine
// with their member database. Lookups return ErrMemberNotFound for absent
// records; Save is an upsert.
type MemberProvider interface {
	FindByLoginID(ctx context.Context, loginID string) (MemberRecord, error)
	FindByID(ctx context.Context, userID string) (MemberRecord, error)
	ExistsByLoginID(ctx context.Context, loginID string) (bool, error)
	Save(ctx context.Context, member MemberRecord) error
}

// Profile is the minimal member view returned from Login for the caller to
// set as client-side state.
type Profile struct {
	UserID   string `json:"userId"`
	LoginID  string `json:"loginId"`
	Nickname string `json:"nickname,omitempty"`
}

// TokenPair is a freshly minted access/refresh pair.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// LoginResult is returned by Engine.Login.
type LoginResult struct {
	TokenPair
	Profile Profile `json:"profile"`
}

// AuthResult is returned by Engine.Verify for a live access token.
type AuthResult struct {
	LoginID      string
	Capabilities []string
}

// MemberInfo is the cached member read model served by GetMemberInfo. It
// deliberately excludes credential material.
type MemberInfo struct {
	UserID       string    `json:"userId"`
	LoginID      string    `json:"loginId"`
	Nickname     string    `json:"nickname,omitempty"`
	Capabilities []string  `json:"capabilities,omitempty"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// SignupRequest is the input for Engine.Signup.
type SignupRequest struct {
	LoginID  string
	Password string
	Nickname string
}

// MemberUpdate carries the mutable profile fields for UpdateMemberInfo. Nil
// fields are left unchanged.
type MemberUpdate struct {
	Nickname *string
}
