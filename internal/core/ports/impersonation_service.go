package ports

import (
	"context"

	"github.com/fleetops/rider-dispatch/internal/core/domain"
)

// DelegationResult carries the impersonated identity and its token.
type DelegationResult struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

// AuditEntry is one impersonation record joined with display names.
type AuditEntry struct {
	ID         string      `json:"id"`
	ActorID    string      `json:"actor_id"`
	ActorName  string      `json:"actor_name,omitempty"`
	TargetID   string      `json:"target_id"`
	TargetName string      `json:"target_name,omitempty"`
	TargetRole domain.Role `json:"target_role"`
	RecordedAt string      `json:"created_at"`
}

// ImpersonationService validates and executes identity delegation.
type ImpersonationService interface {
	// Delegate issues a claim for the target identity after verifying the
	// target's credentials and the hierarchy adjacency rules. The audit
	// record is written in the same transaction; if it cannot be written,
	// no claim is returned.
	Delegate(ctx context.Context, actor *domain.Claim, targetUsername, targetPassword string) (*DelegationResult, error)
	// ListRecords returns recent impersonation records, newest first.
	// Restricted to the prime admin.
	ListRecords(ctx context.Context, actor *domain.Claim, limit int) ([]AuditEntry, error)
}
