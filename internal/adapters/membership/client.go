// Package membership talks to the membership provider that owns member identity,
// plans and authentication tokens.
package membership

import (
	"context"
	"errors"

	"academy/internal/domain/identity"
)

// Errors returned by clients.
var (
	ErrInvalidToken  = errors.New("membership token is invalid")
	ErrUnknownMember = errors.New("member not found")
)

// Client verifies tokens and loads member profiles.
type Client interface {
	// VerifyToken returns the member id the token belongs to.
	VerifyToken(ctx context.Context, token string) (string, error)
	// GetMember loads a member profile including plan connections.
	GetMember(ctx context.Context, id string) (identity.Member, error)
}

// StaticClient serves a fixed directory. Used in development and tests.
type StaticClient struct {
	Tokens  map[string]string // token -> member id
	Members map[string]identity.Member
}

var _ Client = (*StaticClient)(nil)

func (s *StaticClient) VerifyToken(_ context.Context, token string) (string, error) {
	id, ok := s.Tokens[token]
	if !ok {
		return "", ErrInvalidToken
	}
	return id, nil
}

func (s *StaticClient) GetMember(_ context.Context, id string) (identity.Member, error) {
	m, ok := s.Members[id]
	if !ok {
		return identity.Member{}, ErrUnknownMember
	}
	return m, nil
}
