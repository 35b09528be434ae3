package membership

import (
	"context"
	"log/slog"
	"strings"

	"academy/internal/domain/identity"
)

// DefaultCookieName is the Memberstack session cookie.
const DefaultCookieName = "_ms-mid"

// Credentials are the identity sources found on a request, in priority order.
type Credentials struct {
	BearerToken string
	CookieToken string
	MemberID    string // fallback header set by clients that resolved identity themselves
}

// Resolver turns request credentials into an Identity.
type Resolver struct {
	Client Client
	Policy identity.AdminPolicy
	// AllowMemberIDHeader enables the fallback member id source.
	AllowMemberIDHeader bool
}

// Resolve tries each credential in order. A failed verification falls through to the
// next source; only when none succeeds is the caller unauthenticated.
// POST: returned identity has a member loaded from the provider, or is Unauthenticated
func (r *Resolver) Resolve(ctx context.Context, c Credentials) identity.Identity {
	for _, src := range []struct {
		name  string
		token string
	}{
		{"bearer", c.BearerToken},
		{"cookie", c.CookieToken},
	} {
		token := strings.TrimSpace(src.token)
		if token == "" {
			continue
		}
		id, err := r.Client.VerifyToken(ctx, token)
		if err != nil {
			slog.Debug("identity_source_rejected", "source", src.name, "error", err)
			continue
		}
		if ident, ok := r.load(ctx, id, src.name); ok {
			return ident
		}
	}

	if r.AllowMemberIDHeader {
		if id := strings.TrimSpace(c.MemberID); id != "" {
			if ident, ok := r.load(ctx, id, "member_id_header"); ok {
				return ident
			}
		}
	}
	return identity.Unauthenticated()
}

func (r *Resolver) load(ctx context.Context, id, source string) (identity.Identity, bool) {
	m, err := r.Client.GetMember(ctx, id)
	if err != nil {
		slog.Debug("identity_member_lookup_failed", "source", source, "member_id", id, "error", err)
		return identity.Identity{}, false
	}
	if m.ID == "" {
		m.ID = id
	}
	return r.Policy.Classify(m), true
}
