package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	authcache "github.com/sweep-team/authcache"
)

type singleMemberProvider struct {
	member authcache.MemberRecord
}

func (p *singleMemberProvider) FindByLoginID(_ context.Context, loginID string) (authcache.MemberRecord, error) {
	if loginID != p.member.LoginID {
		return authcache.MemberRecord{}, authcache.ErrMemberNotFound
	}
	return p.member, nil
}

func (p *singleMemberProvider) FindByID(_ context.Context, userID string) (authcache.MemberRecord, error) {
	if userID != p.member.UserID {
		return authcache.MemberRecord{}, authcache.ErrMemberNotFound
	}
	return p.member, nil
}

func (p *singleMemberProvider) ExistsByLoginID(_ context.Context, loginID string) (bool, error) {
	return loginID == p.member.LoginID, nil
}

func (p *singleMemberProvider) Save(_ context.Context, member authcache.MemberRecord) error {
	p.member = member
	return nil
}

func newGuardedEngine(t *testing.T) (*authcache.Engine, string) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	cfg := authcache.DefaultConfig()
	cfg.JWT.SigningMethod = "hs256"
	cfg.JWT.PrivateKey = []byte("guard-test-secret")
	cfg.Password.Memory = 8192
	cfg.Password.Time = 1
	cfg.Password.Parallelism = 1

	engine, err := authcache.New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithMemberProvider(&singleMemberProvider{}).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	if _, err := engine.Signup(context.Background(), authcache.SignupRequest{
		LoginID:  "alice",
		Password: "correct-horse",
	}); err != nil {
		t.Fatalf("Signup failed: %v", err)
	}

	result, err := engine.Login(context.Background(), "alice", "correct-horse")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	return engine, result.AccessToken
}

func TestGuardAllowsValidToken(t *testing.T) {
	engine, accessToken := newGuardedEngine(t)

	var seen *authcache.AuthResult
	handler := Guard(engine)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = AuthResultFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+accessToken)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if seen == nil || seen.LoginID != "alice" {
		t.Fatalf("expected auth result in context, got %+v", seen)
	}
}

func TestGuardRejects(t *testing.T) {
	engine, _ := newGuardedEngine(t)

	handler := Guard(engine)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not run")
	}))

	cases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc"},
		{"empty token", "Bearer "},
		{"garbage token", "Bearer not.a.token"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
		})
	}
}

func TestGuardNilEngine(t *testing.T) {
	handler := Guard(nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
