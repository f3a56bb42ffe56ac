package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/fleetops/rider-dispatch/internal/core/domain"
	"github.com/fleetops/rider-dispatch/internal/core/ports"
)

// ImpersonationService executes identity delegation under the hierarchy
// adjacency rules and keeps the audit trail complete: a delegation whose
// audit record cannot be written returns no claim.
type ImpersonationService struct {
	users  ports.UserRepository
	audit  ports.AuditRepository
	tokens ports.TokenService
	tx     ports.TxRunner
	logger zerolog.Logger
}

func NewImpersonationService(
	users ports.UserRepository,
	audit ports.AuditRepository,
	tokens ports.TokenService,
	tx ports.TxRunner,
	logger zerolog.Logger,
) *ImpersonationService {
	return &ImpersonationService{users: users, audit: audit, tokens: tokens, tx: tx, logger: logger}
}

// Delegate validates the target's credentials and the adjacency rule, then
// issues a claim for the target identity and appends the audit record in the
// same transaction.
func (s *ImpersonationService) Delegate(ctx context.Context, actor *domain.Claim, targetUsername, targetPassword string) (*ports.DelegationResult, error) {
	target, err := s.users.FindByUsername(ctx, targetUsername)
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(target.PasswordHash), []byte(targetPassword)) != nil {
		return nil, domain.ErrInvalidCredential
	}

	if err := s.checkAdjacency(actor, target); err != nil {
		return nil, err
	}

	token, _, err := s.tokens.Issue(target)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		return s.audit.Insert(ctx, &domain.ImpersonationRecord{
			ActorID:    actor.SubjectID,
			TargetID:   target.ID,
			TargetRole: target.Role,
			RecordedAt: time.Now().UTC(),
		})
	})
	if err != nil {
		return nil, fmt.Errorf("record impersonation: %w", err)
	}

	s.logger.Info().
		Str("actor_id", actor.SubjectID).
		Str("target_id", target.ID).
		Str("target_role", string(target.Role)).
		Msg("identity delegated")

	return &ports.DelegationResult{Token: token, User: target}, nil
}

// checkAdjacency enforces who may impersonate whom: the prime admin may take
// on sub admins and riders (never another prime admin); a sub admin only its
// own riders; riders nobody.
func (s *ImpersonationService) checkAdjacency(actor *domain.Claim, target *domain.User) error {
	if !actor.Role.CanImpersonate(target.Role) {
		return domain.ErrImpersonationNotAllowed
	}
	if actor.Role == domain.RoleSubAdmin && target.ManagerID != actor.SubjectID {
		return domain.ErrOwnershipViolation
	}
	return nil
}

// ListRecords returns recent impersonation records, newest first, joined with
// display names. Read-only and restricted to the prime admin.
func (s *ImpersonationService) ListRecords(ctx context.Context, actor *domain.Claim, limit int) ([]ports.AuditEntry, error) {
	if actor.Role != domain.RolePrimeAdmin {
		return nil, domain.ErrInsufficientRole
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	records, err := s.audit.ListRecent(ctx, limit)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(records)*2)
	seen := map[string]bool{}
	for _, rec := range records {
		for _, id := range []string{rec.ActorID, rec.TargetID} {
			if id != "" && !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	users, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Name
	}

	entries := make([]ports.AuditEntry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, ports.AuditEntry{
			ID:         rec.ID,
			ActorID:    rec.ActorID,
			ActorName:  names[rec.ActorID],
			TargetID:   rec.TargetID,
			TargetName: names[rec.TargetID],
			TargetRole: rec.TargetRole,
			RecordedAt: rec.RecordedAt.UTC().Format(time.RFC3339),
		})
	}
	return entries, nil
}
