package auth

import (
	"context"
	"net/http"
	"strings"
)

type contextKey struct{}

// ContextWithClaims stores claims on ctx.
func ContextWithClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, contextKey{}, c)
}

// ClaimsFromContext returns the claims attached by Authenticate, or nil.
func ClaimsFromContext(ctx context.Context) *Claims {
	c, _ := ctx.Value(contextKey{}).(*Claims)
	return c
}

// ErrorWriter renders an auth failure. status is 401 or 403.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, status int, msg string)

func plainError(w http.ResponseWriter, _ *http.Request, status int, msg string) {
	http.Error(w, msg, status)
}

// Authenticate reads an optional "Authorization: Bearer <token>" header.
// A valid token puts its claims on the request context; a missing or
// invalid token lets the request through anonymously so that
// RequireAdmin decides.
func (m *JWTManager) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if tok := bearerToken(r); tok != "" {
			if claims, err := m.ValidateToken(tok); err == nil {
				r = r.WithContext(ContextWithClaims(r.Context(), claims))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin answers 401 for anonymous requests and 403 for
// authenticated non-admins.
func RequireAdmin(onError ErrorWriter) func(http.Handler) http.Handler {
	if onError == nil {
		onError = plainError
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := ClaimsFromContext(r.Context())
			switch {
			case claims == nil:
				onError(w, r, http.StatusUnauthorized, "authentication required")
			case !claims.IsAdmin:
				onError(w, r, http.StatusForbidden, "admin privileges required")
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	scheme, tok, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(tok)
}
