package ports

import (
	"context"

	"github.com/fleetops/rider-dispatch/internal/core/domain"
)

// RiderFilter narrows rider listings. Zero values mean "no filter".
type RiderFilter struct {
	ManagerID string
	Store     string
	IDs       []string
}

// UserRepository defines persistence for the identity and hierarchy directory.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	// FindByIDs returns the users matching ids; missing ids are skipped.
	FindByIDs(ctx context.Context, ids []string) ([]*domain.User, error)
	// FindRiders lists rider accounts matching filter.
	FindRiders(ctx context.Context, filter RiderFilter) ([]*domain.User, error)
	FindByRole(ctx context.Context, role domain.Role) ([]*domain.User, error)
	// SetActive soft-disables or re-enables an account.
	SetActive(ctx context.Context, id string, active bool) error
	Delete(ctx context.Context, id string) error
}

// TxRunner executes fn inside a single storage transaction. Every write made
// through repositories with the derived context commits or rolls back as one
// atomic unit.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
