package middleware

import (
	"context"
	"net/http"
	"strings"

	"academy/internal/adapters/membership"
	"academy/internal/domain/identity"
)

// contextKey is an unexported type for context keys in this package.
type contextKey string

const identityContextKey contextKey = "identity"

// MemberIDHeader is the fallback identity header.
const MemberIDHeader = "X-Member-Id"

// IdentityResolver verifies request credentials.
type IdentityResolver interface {
	Resolve(ctx context.Context, c membership.Credentials) identity.Identity
}

// Identity returns middleware that resolves the caller and stores the Identity in the
// request context. It never blocks; handlers decide what an anonymous caller may do.
// Preflight requests are not resolved.
func Identity(resolver IdentityResolver, cookieName string) func(http.Handler) http.Handler {
	if cookieName == "" {
		cookieName = membership.DefaultCookieName
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions || resolver == nil {
				next.ServeHTTP(w, r)
				return
			}
			creds := ExtractCredentials(r, cookieName)
			if creds == (membership.Credentials{}) {
				next.ServeHTTP(w, r)
				return
			}
			ident := resolver.Resolve(r.Context(), creds)
			next.ServeHTTP(w, r.WithContext(ContextWithIdentity(r.Context(), ident)))
		})
	}
}

// ExtractCredentials collects every identity source present on r.
func ExtractCredentials(r *http.Request, cookieName string) membership.Credentials {
	var c membership.Credentials
	if auth := r.Header.Get("Authorization"); len(auth) > 7 && strings.EqualFold(auth[:7], "bearer ") {
		c.BearerToken = strings.TrimSpace(auth[7:])
	}
	if cookie, err := r.Cookie(cookieName); err == nil {
		c.CookieToken = cookie.Value
	}
	c.MemberID = strings.TrimSpace(r.Header.Get(MemberIDHeader))
	return c
}

// GetIdentity returns the caller resolved by Identity, or Unauthenticated.
func GetIdentity(ctx context.Context) identity.Identity {
	if ident, ok := ctx.Value(identityContextKey).(identity.Identity); ok {
		return ident
	}
	return identity.Unauthenticated()
}

// ContextWithIdentity returns a context carrying ident.
func ContextWithIdentity(ctx context.Context, ident identity.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, ident)
}
