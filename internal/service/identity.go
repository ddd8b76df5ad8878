package service

import (
	"context"
	"fmt"

	"github.com/tazhibayda/jobboard/internal/domain"
)

// IdentityResolver maps a verified identity to the local user record,
// creating the record on first sight.
type IdentityResolver struct {
	users    UserStore
	profiles ProfileSource
}

// NewIdentityResolver builds a resolver. profiles may be nil; then only the
// token's own claims are used for new records.
func NewIdentityResolver(users UserStore, profiles ProfileSource) *IdentityResolver {
	return &IdentityResolver{users: users, profiles: profiles}
}

// Resolve returns the user for id. Existing records are returned unchanged,
// so repeated calls are idempotent.
func (r *IdentityResolver) Resolve(ctx context.Context, id domain.Identity) (*domain.User, error) {
	if id.ExternalID == "" {
		return nil, invalid("identity has no subject")
	}
	u, err := r.users.FindUserByExternalID(ctx, id.ExternalID)
	if err != nil {
		return nil, fmt.Errorf("service/identity: find %s: %w", id.ExternalID, err)
	}
	if u != nil {
		return u, nil
	}

	if id.Email == "" && r.profiles != nil {
		p, err := r.profiles.Profile(ctx, id.ExternalID)
		if err != nil {
			return nil, fmt.Errorf("service/identity: profile %s: %w", id.ExternalID, err)
		}
		id = merge(id, p)
	}

	u, err = r.users.EnsureUser(ctx, &domain.User{
		ExternalID: id.ExternalID,
		Email:      id.Email,
		Name:       id.Name,
		Image:      id.ImageURL,
	})
	if err != nil {
		return nil, fmt.Errorf("service/identity: create %s: %w", id.ExternalID, err)
	}
	return u, nil
}

func merge(tok, p domain.Identity) domain.Identity {
	if tok.Email == "" {
		tok.Email = p.Email
	}
	if tok.Name == "" {
		tok.Name = p.Name
	}
	if tok.ImageURL == "" {
		tok.ImageURL = p.ImageURL
	}
	return tok
}
