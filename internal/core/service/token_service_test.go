package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fleetops/rider-dispatch/internal/core/domain"
)

const testSecret = "test-secret"

func TestTokenService_AuthenticateAndVerify(t *testing.T) {
	users := newMemUsers()
	rider := users.add(&domain.User{
		Username:     "rider1",
		PasswordHash: hashPassword("pass123"),
		Name:         "Rider One",
		Role:         domain.RoleRider,
		Store:        "central",
		Active:       true,
	})
	svc := NewTokenService(users, testSecret, time.Hour)

	token, user, err := svc.Authenticate(context.Background(), "rider1", "pass123")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if user.ID != rider.ID {
		t.Fatalf("user = %s, want %s", user.ID, rider.ID)
	}

	claim, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claim.SubjectID != rider.ID || claim.Role != domain.RoleRider || claim.Username != "rider1" {
		t.Fatalf("unexpected claim: %+v", claim)
	}
	if claim.ID == "" {
		t.Fatal("claim should carry a unique id")
	}
}

func TestTokenService_AuthenticateFailures(t *testing.T) {
	users := newMemUsers()
	users.add(&domain.User{
		Username:     "rider1",
		PasswordHash: hashPassword("pass123"),
		Role:         domain.RoleRider,
		Active:       true,
	})
	users.add(&domain.User{
		Username:     "ghost",
		PasswordHash: hashPassword("pass123"),
		Role:         domain.RoleRider,
		Active:       false,
	})
	svc := NewTokenService(users, testSecret, time.Hour)

	tests := []struct {
		name     string
		username string
		password string
		want     error
	}{
		{"wrong password", "rider1", "nope", domain.ErrInvalidCredential},
		{"unknown user", "nobody", "pass123", domain.ErrInvalidCredential},
		{"empty password", "rider1", "", domain.ErrInvalidCredential},
		{"inactive user", "ghost", "pass123", domain.ErrInactiveUser},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.Authenticate(context.Background(), tt.username, tt.password)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestTokenService_VerifyExpired(t *testing.T) {
	users := newMemUsers()
	rider := users.add(&domain.User{Username: "rider1", Role: domain.RoleRider, Active: true})

	// Mint with a negative TTL so the token is already expired.
	expired := &TokenService{users: users, secret: testSecret, tokenTTL: -time.Minute}
	token, _, err := expired.Issue(rider)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	svc := NewTokenService(users, testSecret, time.Hour)
	if _, err := svc.Verify(token); !errors.Is(err, domain.ErrExpiredToken) {
		t.Fatalf("err = %v, want ErrExpiredToken", err)
	}
}

func TestTokenService_VerifyWrongSecret(t *testing.T) {
	users := newMemUsers()
	rider := users.add(&domain.User{Username: "rider1", Role: domain.RoleRider, Active: true})

	other := NewTokenService(users, "other-secret", time.Hour)
	token, _, err := other.Issue(rider)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	svc := NewTokenService(users, testSecret, time.Hour)
	if _, err := svc.Verify(token); !errors.Is(err, domain.ErrInvalidCredential) {
		t.Fatalf("err = %v, want ErrInvalidCredential", err)
	}
	if _, err := svc.Verify("not-a-token"); !errors.Is(err, domain.ErrInvalidCredential) {
		t.Fatalf("err = %v, want ErrInvalidCredential", err)
	}
}

func TestTokenService_ResolveSubject(t *testing.T) {
	users := newMemUsers()
	rider := users.add(&domain.User{Username: "rider1", Role: domain.RoleRider, Active: true})
	svc := NewTokenService(users, testSecret, time.Hour)

	claim := claimFor(rider)
	if _, err := svc.ResolveSubject(context.Background(), claim); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	// Disabled after the token was minted: rejected.
	rider.Active = false
	if _, err := svc.ResolveSubject(context.Background(), claim); !errors.Is(err, domain.ErrInactiveUser) {
		t.Fatalf("err = %v, want ErrInactiveUser", err)
	}

	// Deleted subject: rejected the same way.
	_ = users.Delete(context.Background(), rider.ID)
	if _, err := svc.ResolveSubject(context.Background(), claim); !errors.Is(err, domain.ErrInactiveUser) {
		t.Fatalf("err = %v, want ErrInactiveUser", err)
	}
}
