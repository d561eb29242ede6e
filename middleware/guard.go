package middleware

import (
	"context"
	"net/http"
	"strings"

	authcache "github.com/sweep-team/authcache"
)

type authResultContextKey struct{}

// AuthResultFromContext retrieves the verification result Guard stored for
// the current request.
func AuthResultFromContext(ctx context.Context) (*authcache.AuthResult, bool) {
	res, ok := ctx.Value(authResultContextKey{}).(*authcache.AuthResult)
	return res, ok
}

// Guard wraps next so only requests carrying a live bearer access token get
// through. The verification result is attached to the request context for
// handlers downstream.
func Guard(engine *authcache.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			tokenStr, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			res, err := engine.Verify(r.Context(), tokenStr)
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), authResultContextKey{}, res)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}

	return token, true
}
