package authcache

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/sweep-team/authcache/cache"
)

// Signup creates a new member account and returns its user id. The login id
// must be unused; a taken one fails with ErrDuplicateMember.
func (e *Engine) Signup(ctx context.Context, req SignupRequest) (string, error) {
	if e == nil || e.memberProvider == nil {
		return "", ErrEngineNotReady
	}

	exists, err := e.memberProvider.ExistsByLoginID(ctx, req.LoginID)
	if err != nil {
		return "", err
	}
	if exists {
		e.metricInc(MetricSignupDuplicate)
		e.emitAudit(ctx, AuditEvent{
			EventType: auditEventSignupDuplicate,
			LoginID:   req.LoginID,
			Error:     ErrDuplicateMember.Error(),
		})
		return "", ErrDuplicateMember
	}

	hash, err := e.passwordHash.Hash(req.Password)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPasswordPolicy, err)
	}

	member := MemberRecord{
		UserID:       uuid.NewString(),
		LoginID:      req.LoginID,
		Nickname:     req.Nickname,
		PasswordHash: hash,
		Capabilities: []string{DefaultCapability},
		UpdatedAt:    time.Now().UTC(),
	}

	if err := e.memberProvider.Save(ctx, member); err != nil {
		return "", err
	}

	e.metricInc(MetricSignupSuccess)
	e.emitAudit(ctx, AuditEvent{
		EventType: auditEventSignupSuccess,
		UserID:    member.UserID,
		LoginID:   member.LoginID,
		Success:   true,
	})

	return member.UserID, nil
}

// GetMemberInfo serves the member read model through the entity cache. On a
// miss the record is loaded from the member backend and the snapshot cached;
// when the cache backend is unavailable the load still happens, uncached.
// Deleted members read as absent.
func (e *Engine) GetMemberInfo(ctx context.Context, userID string) (*MemberInfo, error) {
	if e == nil || e.cache == nil {
		return nil, ErrEngineNotReady
	}

	info, err := cache.ReadThroughJSON(ctx, e.cache, cache.MemberKey(userID), func(ctx context.Context) (MemberInfo, error) {
		member, loadErr := e.memberProvider.FindByID(ctx, userID)
		if loadErr != nil {
			return MemberInfo{}, loadErr
		}
		if member.Deleted {
			return MemberInfo{}, ErrMemberNotFound
		}
		return MemberInfo{
			UserID:       member.UserID,
			LoginID:      member.LoginID,
			Nickname:     member.Nickname,
			Capabilities: capabilitiesOf(member),
			UpdatedAt:    member.UpdatedAt,
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// UpdateMemberInfo applies upd to the member record and evicts the cached
// read model after the write commits. The next read repopulates the cache
// from the authoritative record.
func (e *Engine) UpdateMemberInfo(ctx context.Context, userID string, upd MemberUpdate) error {
	if e == nil || e.cache == nil {
		return ErrEngineNotReady
	}

	err := e.cache.Mutate(ctx, func(ctx context.Context) error {
		member, findErr := e.memberProvider.FindByID(ctx, userID)
		if findErr != nil {
			return findErr
		}
		if member.Deleted {
			return ErrMemberNotFound
		}
		if upd.Nickname != nil {
			member.Nickname = *upd.Nickname
		}
		member.UpdatedAt = time.Now().UTC()
		return e.memberProvider.Save(ctx, member)
	}, cache.MemberKey(userID))
	if err != nil {
		e.emitAudit(ctx, AuditEvent{
			EventType: auditEventMemberUpdateFailed,
			UserID:    userID,
			Error:     err.Error(),
		})
		return err
	}

	e.emitAudit(ctx, AuditEvent{
		EventType: auditEventMemberUpdated,
		UserID:    userID,
		Success:   true,
	})
	return nil
}

// UpdatePassword re-hashes and stores a new password for loginID. The
// cached read model carries no credential material, so no eviction is
// needed.
func (e *Engine) UpdatePassword(ctx context.Context, loginID, newPassword string) error {
	if e == nil || e.memberProvider == nil {
		return ErrEngineNotReady
	}

	member, err := e.memberProvider.FindByLoginID(ctx, loginID)
	if err != nil {
		return err
	}
	if member.Deleted {
		return ErrAccountDeleted
	}

	hash, err := e.passwordHash.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPasswordPolicy, err)
	}

	member.PasswordHash = hash
	member.UpdatedAt = time.Now().UTC()
	if err := e.memberProvider.Save(ctx, member); err != nil {
		return err
	}

	e.metricInc(MetricPasswordChange)
	e.emitAudit(ctx, AuditEvent{
		EventType: auditEventPasswordChanged,
		UserID:    member.UserID,
		LoginID:   loginID,
		Success:   true,
	})
	return nil
}

// CheckPassword verifies a password without minting anything. It fails with
// ErrBadCredentials for unknown login ids and mismatches alike.
func (e *Engine) CheckPassword(ctx context.Context, loginID, plainPassword string) error {
	if e == nil || e.memberProvider == nil {
		return ErrEngineNotReady
	}

	member, err := e.memberProvider.FindByLoginID(ctx, loginID)
	if err != nil {
		if errors.Is(err, ErrMemberNotFound) {
			return ErrBadCredentials
		}
		return err
	}
	if member.Deleted {
		return ErrAccountDeleted
	}

	ok, err := e.passwordHash.Verify(plainPassword, member.PasswordHash)
	if err != nil || !ok {
		return ErrBadCredentials
	}
	return nil
}

// IsMember reports whether a live account exists for loginID. Absent and
// deleted accounts both fail with ErrMemberNotFound.
func (e *Engine) IsMember(ctx context.Context, loginID string) error {
	if e == nil || e.memberProvider == nil {
		return ErrEngineNotReady
	}

	member, err := e.memberProvider.FindByLoginID(ctx, loginID)
	if err != nil {
		return err
	}
	if member.Deleted {
		return ErrMemberNotFound
	}
	return nil
}

// RemoveAccount marks the member deleted and revokes its session, gated on
// the current password. The deletion mark, the session revocation, and the
// cache eviction happen in that order: once Save commits, the account is
// gone even if the later steps degrade.
func (e *Engine) RemoveAccount(ctx context.Context, userID, plainPassword string) error {
	if e == nil || e.cache == nil {
		return ErrEngineNotReady
	}

	member, err := e.memberProvider.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if member.Deleted {
		return ErrAccountDeleted
	}

	ok, err := e.passwordHash.Verify(plainPassword, member.PasswordHash)
	if err != nil || !ok {
		return ErrBadCredentials
	}

	err = e.cache.Mutate(ctx, func(ctx context.Context) error {
		member.Deleted = true
		member.UpdatedAt = time.Now().UTC()
		if saveErr := e.memberProvider.Save(ctx, member); saveErr != nil {
			return saveErr
		}
		if delErr := e.sessions.Delete(ctx, member.LoginID); delErr != nil {
			// The account is already marked deleted; reissue will refuse it
			// and clean the session up on next contact.
			log.Print("authcache: session revoke failed during account removal")
		} else {
			e.metricInc(MetricSessionRevoked)
		}
		return nil
	}, cache.MemberKey(userID))
	if err != nil {
		return err
	}

	e.metricInc(MetricAccountRemoved)
	e.emitAudit(ctx, AuditEvent{
		EventType: auditEventAccountRemoved,
		UserID:    userID,
		LoginID:   member.LoginID,
		Success:   true,
	})
	return nil
}
