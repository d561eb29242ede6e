package authcache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sweep-team/authcache/cache"
	"github.com/sweep-team/authcache/password"
	"github.com/sweep-team/authcache/session"
	"github.com/sweep-team/authcache/token"
)

// Engine is the assembled session-lifecycle core. Build one via Builder and
// treat it as immutable; all methods are safe for concurrent use.
type Engine struct {
	config         Config
	codec          *token.Codec
	sessions       *session.Store
	cache          *cache.Coordinator
	passwordHash   *password.Hasher
	memberProvider MemberProvider
	audit          *auditDispatcher
	metrics        *Metrics
}

// Close flushes and stops the audit dispatcher. The Engine must not be used
// after Close.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped reports how many audit events were discarded because the
// buffer was full.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns a point-in-time copy of all counters and
// histograms for export.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

// Cache exposes the eviction coordinator so collaborating domains route
// their own reads and mutations through the same consistency discipline.
func (e *Engine) Cache() *cache.Coordinator {
	if e == nil {
		return nil
	}
	return e.cache
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) emitAudit(ctx context.Context, event AuditEvent) {
	if e == nil || e.audit == nil {
		return
	}
	event.Timestamp = time.Now().UTC()
	if event.IP == "" {
		event.IP = clientIPFromContext(ctx)
	}
	if rid := requestIDFromContext(ctx); rid != "" {
		if event.Metadata == nil {
			event.Metadata = map[string]string{}
		}
		event.Metadata["request_id"] = rid
	}
	e.audit.Emit(ctx, event)
}

func capabilitiesOf(member MemberRecord) []string {
	if len(member.Capabilities) == 0 {
		return []string{DefaultCapability}
	}
	return member.Capabilities
}

// Login authenticates loginID against the member backend, mints a fresh
// access/refresh pair, and stores the refresh token as the single live
// session for that identity, replacing whatever was there.
//
// Unknown login ids and wrong passwords are both reported as
// ErrBadCredentials. A deleted account fails with ErrAccountDeleted before
// any token is minted. A session store failure is fatal and surfaces as
// ErrStoreUnavailable; no tokens escape in that case.
func (e *Engine) Login(ctx context.Context, loginID, plainPassword string) (*LoginResult, error) {
	if e == nil || e.codec == nil {
		return nil, ErrEngineNotReady
	}

	member, err := e.memberProvider.FindByLoginID(ctx, loginID)
	if err != nil {
		if errors.Is(err, ErrMemberNotFound) {
			e.metricInc(MetricLoginFailure)
			e.emitAudit(ctx, AuditEvent{
				EventType: auditEventLoginFailure,
				LoginID:   loginID,
				Error:     ErrBadCredentials.Error(),
			})
			return nil, ErrBadCredentials
		}
		e.metricInc(MetricLoginFailure)
		return nil, err
	}

	ok, err := e.passwordHash.Verify(plainPassword, member.PasswordHash)
	if err != nil || !ok {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, AuditEvent{
			EventType: auditEventLoginFailure,
			UserID:    member.UserID,
			LoginID:   loginID,
			Error:     ErrBadCredentials.Error(),
		})
		return nil, ErrBadCredentials
	}

	if member.Deleted {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, AuditEvent{
			EventType: auditEventLoginFailure,
			UserID:    member.UserID,
			LoginID:   loginID,
			Error:     ErrAccountDeleted.Error(),
		})
		return nil, ErrAccountDeleted
	}

	caps := capabilitiesOf(member)

	accessToken, err := e.codec.IssueAccess(member.LoginID, caps)
	if err != nil {
		e.metricInc(MetricLoginFailure)
		return nil, err
	}
	refreshToken, err := e.codec.IssueRefresh(member.LoginID, caps)
	if err != nil {
		e.metricInc(MetricLoginFailure)
		return nil, err
	}

	if err := e.sessions.Put(ctx, member.LoginID, refreshToken, e.config.JWT.RefreshTTL); err != nil {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, AuditEvent{
			EventType: auditEventLoginFailure,
			UserID:    member.UserID,
			LoginID:   loginID,
			Error:     ErrStoreUnavailable.Error(),
		})
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	e.metricInc(MetricLoginSuccess)
	e.metricInc(MetricSessionCreated)
	e.emitAudit(ctx, AuditEvent{
		EventType: auditEventLoginSuccess,
		UserID:    member.UserID,
		LoginID:   loginID,
		Success:   true,
	})

	return &LoginResult{
		TokenPair: TokenPair{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
		},
		Profile: Profile{
			UserID:   member.UserID,
			LoginID:  member.LoginID,
			Nickname: member.Nickname,
		},
	}, nil
}

// Reissue rotates a refresh token: the presented token must match the stored
// session value exactly, and on success a new pair is minted and the new
// refresh token replaces the old one. A rotated-out token presented again is
// a replay and fails with ErrBadToken; the live session is left intact.
//
// An expired refresh token is terminal (ErrRefreshExpired), an absent
// session means the identity is logged out (ErrSessionRevoked), and a
// deleted or vanished account revokes the session and fails with
// ErrAccountDeleted. Session store failures surface as ErrStoreUnavailable.
func (e *Engine) Reissue(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if e == nil || e.codec == nil {
		return nil, ErrEngineNotReady
	}

	claims, status := e.codec.Verify(refreshToken)
	switch status {
	case token.StatusMalformed:
		e.metricInc(MetricReissueFailure)
		e.emitAudit(ctx, AuditEvent{
			EventType: auditEventReissueInvalid,
			Error:     ErrBadToken.Error(),
		})
		return nil, ErrBadToken
	case token.StatusExpired:
		e.metricInc(MetricReissueFailure)
		e.emitAudit(ctx, AuditEvent{
			EventType: auditEventReissueInvalid,
			LoginID:   claims.Subject,
			Error:     ErrRefreshExpired.Error(),
		})
		return nil, ErrRefreshExpired
	}
	if claims.Kind != token.KindRefresh {
		e.metricInc(MetricReissueFailure)
		e.emitAudit(ctx, AuditEvent{
			EventType: auditEventReissueInvalid,
			LoginID:   claims.Subject,
			Error:     ErrBadToken.Error(),
		})
		return nil, ErrBadToken
	}

	loginID := claims.Subject

	stored, err := e.sessions.Get(ctx, loginID)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			e.metricInc(MetricReissueFailure)
			e.emitAudit(ctx, AuditEvent{
				EventType: auditEventReissueInvalid,
				LoginID:   loginID,
				Error:     ErrSessionRevoked.Error(),
			})
			return nil, ErrSessionRevoked
		}
		e.metricInc(MetricReissueFailure)
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if stored != refreshToken {
		// The presented token was rotated out by a later reissue or login.
		e.metricInc(MetricReplayDetected)
		e.metricInc(MetricReissueFailure)
		e.emitAudit(ctx, AuditEvent{
			EventType: auditEventReissueReplay,
			LoginID:   loginID,
			Error:     ErrBadToken.Error(),
		})
		return nil, ErrBadToken
	}

	member, err := e.memberProvider.FindByLoginID(ctx, loginID)
	if err != nil && !errors.Is(err, ErrMemberNotFound) {
		e.metricInc(MetricReissueFailure)
		return nil, err
	}
	if errors.Is(err, ErrMemberNotFound) || member.Deleted {
		if delErr := e.sessions.Delete(ctx, loginID); delErr == nil {
			e.metricInc(MetricSessionRevoked)
		}
		e.metricInc(MetricReissueFailure)
		e.emitAudit(ctx, AuditEvent{
			EventType: auditEventReissueInvalid,
			UserID:    member.UserID,
			LoginID:   loginID,
			Error:     ErrAccountDeleted.Error(),
		})
		return nil, ErrAccountDeleted
	}

	caps := capabilitiesOf(member)

	accessToken, err := e.codec.IssueAccess(loginID, caps)
	if err != nil {
		e.metricInc(MetricReissueFailure)
		return nil, err
	}
	newRefresh, err := e.codec.IssueRefresh(loginID, caps)
	if err != nil {
		e.metricInc(MetricReissueFailure)
		return nil, err
	}

	if err := e.sessions.Put(ctx, loginID, newRefresh, e.config.JWT.RefreshTTL); err != nil {
		e.metricInc(MetricReissueFailure)
		e.emitAudit(ctx, AuditEvent{
			EventType: auditEventReissueInvalid,
			UserID:    member.UserID,
			LoginID:   loginID,
			Error:     ErrStoreUnavailable.Error(),
		})
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	e.metricInc(MetricReissueSuccess)
	e.emitAudit(ctx, AuditEvent{
		EventType: auditEventReissueSuccess,
		UserID:    member.UserID,
		LoginID:   loginID,
		Success:   true,
	})

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: newRefresh,
	}, nil
}

// Logout removes the session record for the identity carried by accessToken.
// The token only needs to be well-formed and correctly signed; an expired
// access token is still good enough to identify who is logging out. Logout
// is idempotent: logging out an already logged-out identity succeeds.
func (e *Engine) Logout(ctx context.Context, accessToken string) error {
	if e == nil || e.codec == nil {
		return ErrEngineNotReady
	}

	claims, status := e.codec.Verify(accessToken)
	if status == token.StatusMalformed || claims.Kind != token.KindAccess {
		e.emitAudit(ctx, AuditEvent{
			EventType: auditEventLogout,
			Error:     ErrBadToken.Error(),
		})
		return ErrBadToken
	}

	loginID := claims.Subject

	if err := e.sessions.Delete(ctx, loginID); err != nil {
		e.emitAudit(ctx, AuditEvent{
			EventType: auditEventLogout,
			LoginID:   loginID,
			Error:     ErrStoreUnavailable.Error(),
		})
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	e.metricInc(MetricLogout)
	e.metricInc(MetricSessionRevoked)
	e.emitAudit(ctx, AuditEvent{
		EventType: auditEventLogout,
		LoginID:   loginID,
		Success:   true,
	})

	return nil
}

// Verify is the stateless access-token check used on the request path. It
// never touches Redis: an access token is trusted for its whole lifetime
// once signed. Expired tokens fail with ErrTokenExpired, everything else
// invalid with ErrBadToken.
func (e *Engine) Verify(ctx context.Context, accessToken string) (*AuthResult, error) {
	if e == nil || e.codec == nil {
		return nil, ErrEngineNotReady
	}

	start := time.Now()
	claims, status := e.codec.Verify(accessToken)
	if e.metrics != nil {
		e.metrics.Observe(MetricVerifyLatency, time.Since(start))
	}

	switch status {
	case token.StatusExpired:
		return nil, ErrTokenExpired
	case token.StatusMalformed:
		return nil, ErrBadToken
	}
	if claims.Kind != token.KindAccess {
		return nil, ErrBadToken
	}

	return &AuthResult{
		LoginID:      claims.Subject,
		Capabilities: claims.Capabilities,
	}, nil
}
