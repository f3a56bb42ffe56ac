package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/fleetops/rider-dispatch/internal/core/domain"
	"github.com/fleetops/rider-dispatch/internal/core/ports"
)

// tokenClaims is the wire shape of an identity claim.
type tokenClaims struct {
	jwt.RegisteredClaims
	UserID string      `json:"id"`
	Role   domain.Role `json:"role"`
}

// TokenService mints and verifies HS256-signed identity claims. Verification
// is pure: the directory is only consulted by ResolveSubject, so an expired
// or forged token is rejected without a storage round trip.
type TokenService struct {
	users    ports.UserRepository
	secret   string
	tokenTTL time.Duration
}

func NewTokenService(users ports.UserRepository, secret string, tokenTTL time.Duration) *TokenService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &TokenService{users: users, secret: secret, tokenTTL: tokenTTL}
}

// Authenticate checks a username/password pair and issues a claim on success.
// Passwords are always bcrypt hashes; there is no legacy plaintext path.
func (s *TokenService) Authenticate(ctx context.Context, username, password string) (string, *domain.User, error) {
	if username == "" || password == "" {
		return "", nil, domain.ErrInvalidCredential
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrTargetNotFound) {
			// Do not reveal whether the username exists.
			return "", nil, domain.ErrInvalidCredential
		}
		return "", nil, err
	}
	if !user.Active {
		return "", nil, domain.ErrInactiveUser
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, domain.ErrInvalidCredential
	}

	token, _, err := s.Issue(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// Issue mints a signed token for the user and returns it with the claim it
// encodes.
func (s *TokenService) Issue(user *domain.User) (string, *domain.Claim, error) {
	now := time.Now().UTC()
	expires := now.Add(s.tokenTTL)

	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
		UserID: user.ID,
		Role:   user.Role,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.secret))
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}

	return signed, &domain.Claim{
		ID:        claims.ID,
		SubjectID: user.ID,
		Username:  user.Username,
		Role:      user.Role,
		ExpiresAt: expires,
	}, nil
}

// Verify parses and validates a token string. Malformed, mis-signed, and
// expired tokens map onto the error taxonomy; the directory is not touched.
func (s *TokenService) Verify(token string) (*domain.Claim, error) {
	parsed := tokenClaims{}
	tkn, err := jwt.ParseWithClaims(token, &parsed, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(s.secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrExpiredToken
		}
		return nil, domain.ErrInvalidCredential
	}
	if !tkn.Valid || parsed.UserID == "" || !parsed.Role.Valid() {
		return nil, domain.ErrInvalidCredential
	}

	var expires time.Time
	if parsed.ExpiresAt != nil {
		expires = parsed.ExpiresAt.Time
	}
	return &domain.Claim{
		ID:        parsed.ID,
		SubjectID: parsed.UserID,
		Username:  parsed.Subject,
		Role:      parsed.Role,
		ExpiresAt: expires,
	}, nil
}

// ResolveSubject maps a verified claim to a live user record. A subject that
// was deleted or soft-disabled after the token was minted is rejected.
func (s *TokenService) ResolveSubject(ctx context.Context, claim *domain.Claim) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, claim.SubjectID)
	if err != nil {
		if errors.Is(err, domain.ErrTargetNotFound) {
			return nil, domain.ErrInactiveUser
		}
		return nil, err
	}
	if !user.Active {
		return nil, domain.ErrInactiveUser
	}
	return user, nil
}
