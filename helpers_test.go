package authcache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type memProvider struct {
	mu      sync.RWMutex
	byID    map[string]MemberRecord
	byLogin map[string]string

	failFinds bool
}

func newMemProvider() *memProvider {
	return &memProvider{
		byID:    map[string]MemberRecord{},
		byLogin: map[string]string{},
	}
}

func (p *memProvider) put(member MemberRecord) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.byID[member.UserID] = member
	p.byLogin[member.LoginID] = member.UserID
}

func (p *memProvider) remove(userID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	member, ok := p.byID[userID]
	if !ok {
		return
	}
	delete(p.byID, userID)
	delete(p.byLogin, member.LoginID)
}

func (p *memProvider) get(userID string) (MemberRecord, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	member, ok := p.byID[userID]
	return member, ok
}

func (p *memProvider) FindByLoginID(_ context.Context, loginID string) (MemberRecord, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.failFinds {
		return MemberRecord{}, context.DeadlineExceeded
	}
	id, ok := p.byLogin[loginID]
	if !ok {
		return MemberRecord{}, ErrMemberNotFound
	}
	return p.byID[id], nil
}

func (p *memProvider) FindByID(_ context.Context, userID string) (MemberRecord, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.failFinds {
		return MemberRecord{}, context.DeadlineExceeded
	}
	member, ok := p.byID[userID]
	if !ok {
		return MemberRecord{}, ErrMemberNotFound
	}
	return member, nil
}

func (p *memProvider) ExistsByLoginID(_ context.Context, loginID string) (bool, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.byLogin[loginID]
	return ok, nil
}

func (p *memProvider) Save(_ context.Context, member MemberRecord) error {
	p.put(member)
	return nil
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Now()}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, client
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.JWT.SigningMethod = "hs256"
	cfg.JWT.PrivateKey = []byte("test-secret-key")
	cfg.JWT.AccessTTL = 30 * time.Minute
	cfg.JWT.RefreshTTL = 7 * 24 * time.Hour
	cfg.JWT.Leeway = 0
	cfg.Password.Memory = 8192
	cfg.Password.Time = 1
	cfg.Password.Parallelism = 1
	return cfg
}

type engineHarness struct {
	engine   *Engine
	provider *memProvider
	redis    *miniredis.Miniredis
	clock    *fakeClock
}

func newTestEngine(t *testing.T) (*engineHarness, func()) {
	t.Helper()
	return newTestEngineWithConfig(t, testConfig())
}

func newTestEngineWithConfig(t *testing.T, cfg Config) (*engineHarness, func()) {
	t.Helper()

	mr, rdb := newTestRedis(t)
	provider := newMemProvider()
	clock := newFakeClock()

	engine, err := New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithMemberProvider(provider).
		WithClock(clock.Now).
		Build()
	if err != nil {
		mr.Close()
		t.Fatalf("Build failed: %v", err)
	}

	h := &engineHarness{
		engine:   engine,
		provider: provider,
		redis:    mr,
		clock:    clock,
	}

	return h, func() {
		engine.Close()
		mr.Close()
	}
}

func (h *engineHarness) seedMember(t *testing.T, loginID, plainPassword string) MemberRecord {
	t.Helper()

	hash, err := h.engine.passwordHash.Hash(plainPassword)
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}

	member := MemberRecord{
		UserID:       "user-" + loginID,
		LoginID:      loginID,
		Nickname:     "nick-" + loginID,
		PasswordHash: hash,
		Capabilities: []string{DefaultCapability},
		UpdatedAt:    time.Now().UTC(),
	}
	h.provider.put(member)
	return member
}
