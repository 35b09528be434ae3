package identity

import (
	"strings"
)

// Kind tags which variant an Identity holds.
type Kind uint8

const (
	KindUnauthenticated Kind = iota
	KindMember
	KindAdmin
)

// String returns the kind name used in logs and audit rows.
func (k Kind) String() string {
	switch k {
	case KindMember:
		return "member"
	case KindAdmin:
		return "admin"
	}
	return "unauthenticated"
}

// Plan is a membership plan connection as reported by the membership provider.
type Plan struct {
	ID     string
	Name   string
	Status string
}

// Member is a verified academy member.
type Member struct {
	ID    string
	Name  string
	Email string
	Plans []Plan
}

// Identity is the resolved caller of a request.
// INVARIANT: Member is zero when Kind is KindUnauthenticated.
type Identity struct {
	Kind   Kind
	Member Member
}

// Unauthenticated returns the identity of an anonymous caller.
func Unauthenticated() Identity {
	return Identity{Kind: KindUnauthenticated}
}

// IsAuthenticated reports whether the caller resolved to a member (admins included).
func (i Identity) IsAuthenticated() bool {
	return i.Kind != KindUnauthenticated && i.Member.ID != ""
}

// IsAdmin reports whether the caller holds the admin capability.
func (i Identity) IsAdmin() bool {
	return i.Kind == KindAdmin && i.Member.ID != ""
}

// DisplayName is the member name, falling back to the email address.
func (i Identity) DisplayName() string {
	if i.Member.Name != "" {
		return i.Member.Name
	}
	return i.Member.Email
}

// AdminPolicy decides which members hold the admin capability.
// A member is admin if any plan matches an entry of Plans (exact id, or
// case-insensitive name substring) or if the email is in Emails.
type AdminPolicy struct {
	Plans  []string
	Emails []string
}

// Classify returns the Identity for a verified member.
// PRE: m.ID is non-empty
// POST: KindAdmin if the policy matches, KindMember otherwise
func (p AdminPolicy) Classify(m Member) Identity {
	if p.isAdmin(m) {
		return Identity{Kind: KindAdmin, Member: m}
	}
	return Identity{Kind: KindMember, Member: m}
}

func (p AdminPolicy) isAdmin(m Member) bool {
	email := strings.ToLower(strings.TrimSpace(m.Email))
	if email != "" {
		for _, e := range p.Emails {
			if strings.ToLower(strings.TrimSpace(e)) == email {
				return true
			}
		}
	}
	for _, plan := range m.Plans {
		for _, want := range p.Plans {
			want = strings.TrimSpace(want)
			if want == "" {
				continue
			}
			if plan.ID == want {
				return true
			}
			if plan.Name != "" && strings.Contains(strings.ToLower(plan.Name), strings.ToLower(want)) {
				return true
			}
		}
	}
	return false
}
