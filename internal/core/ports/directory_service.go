package ports

import (
	"context"

	"github.com/fleetops/rider-dispatch/internal/core/domain"
)

// CreateUserInput carries all data needed to create a subordinate account.
// ManagerID is honoured only when a prime admin creates a rider under a
// named sub admin; otherwise the creator manages the new account directly.
type CreateUserInput struct {
	Username  string
	Password  string
	Name      string
	Role      domain.Role
	Store     string
	ManagerID string
}

// UserSelector resolves a deletion target by id or username (id wins).
type UserSelector struct {
	ID       string
	Username string
}

// SubAdminOverview is a sub admin listing entry with its rider count.
type SubAdminOverview struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	Name       string `json:"name"`
	RiderCount int    `json:"rider_count"`
}

// DirectoryService owns user records and the manager/subordinate hierarchy.
type DirectoryService interface {
	// CreateSubordinate creates a sub admin or rider under the actor,
	// subject to the role capability table.
	CreateSubordinate(ctx context.Context, actor *domain.Claim, input CreateUserInput) (*domain.User, error)
	// DeleteUser removes the selected user. Deleting a sub admin cascades
	// through its riders; every dependent row goes in the same transaction.
	DeleteUser(ctx context.Context, actor *domain.Claim, selector UserSelector) error
	// VisibleRiderIDs computes the set of riders the admin may observe,
	// optionally narrowed to one store.
	VisibleRiderIDs(ctx context.Context, actor *domain.Claim, storeFilter string) ([]string, error)
	ListSubAdmins(ctx context.Context, actor *domain.Claim) ([]SubAdminOverview, error)
}
