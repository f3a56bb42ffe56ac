package ports

import (
	"context"

	"github.com/fleetops/rider-dispatch/internal/core/domain"
)

// TokenService mints and verifies signed identity claims.
type TokenService interface {
	// Authenticate checks username/password and issues a claim on success.
	Authenticate(ctx context.Context, username, password string) (string, *domain.User, error)
	// Issue mints a signed token carrying the user's identity and role.
	Issue(user *domain.User) (string, *domain.Claim, error)
	// Verify parses and validates a token. It never consults the directory.
	Verify(token string) (*domain.Claim, error)
	// ResolveSubject maps a verified claim to a live, active user.
	ResolveSubject(ctx context.Context, claim *domain.Claim) (*domain.User, error)
}
