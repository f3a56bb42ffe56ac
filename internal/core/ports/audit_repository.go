package ports

import (
	"context"

	"github.com/fleetops/rider-dispatch/internal/core/domain"
)

// AuditRepository persists impersonation records. Insert failures must
// propagate: a delegation without its audit row is not permitted.
type AuditRepository interface {
	Insert(ctx context.Context, record *domain.ImpersonationRecord) error
	// ListRecent returns up to limit records, newest first.
	ListRecent(ctx context.Context, limit int) ([]domain.ImpersonationRecord, error)
}
