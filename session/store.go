package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrUnavailable wraps any Redis failure other than a clean miss. Callers
// must treat it as "session liveness unverifiable", never as "session valid".
var ErrUnavailable = errors.New("session store unavailable")

const defaultPrefix = "rtk"

// Store holds the single currently-valid refresh token value per identity.
// All operations are idempotent and last-write-wins; Put overwrites any prior
// value unconditionally, which is how rotation invalidates the previous
// refresh token.
//
// The store holds no in-process state beyond the client handle and is safe
// for concurrent use.
type Store struct {
	redis  redis.UniversalClient
	prefix string
}

// NewStore creates a session Store backed by the given Redis client. prefix
// sets the key namespace; empty falls back to "rtk".
func NewStore(client redis.UniversalClient, prefix string) *Store {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &Store{
		redis:  client,
		prefix: prefix,
	}
}

func (s *Store) key(loginID string) string {
	return s.prefix + ":" + loginID
}

// Put stores refreshValue as the session record for loginID, replacing any
// existing record. The record expires automatically after ttl if unused.
func (s *Store) Put(ctx context.Context, loginID, refreshValue string, ttl time.Duration) error {
	if loginID == "" {
		return errors.New("empty login id")
	}
	if err := s.redis.Set(ctx, s.key(loginID), refreshValue, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Get returns the current refresh token value for loginID. An absent record
// returns redis.Nil; any other failure is wrapped in ErrUnavailable.
func (s *Store) Get(ctx context.Context, loginID string) (string, error) {
	value, err := s.redis.Get(ctx, s.key(loginID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return value, nil
}

// Delete removes the session record for loginID. Deleting an absent record
// is not an error.
func (s *Store) Delete(ctx context.Context, loginID string) error {
	if err := s.redis.Del(ctx, s.key(loginID)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// TTL reports the remaining lifetime of the session record, redis.Nil if
// absent. Used by operational tooling, not by the lifecycle flows.
func (s *Store) TTL(ctx context.Context, loginID string) (time.Duration, error) {
	d, err := s.redis.TTL(ctx, s.key(loginID)).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if d < 0 {
		return 0, redis.Nil
	}
	return d, nil
}
