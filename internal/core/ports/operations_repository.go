package ports

import (
	"context"
	"time"

	"github.com/fleetops/rider-dispatch/internal/core/domain"
)

// AttendanceRepository keeps one row per rider per day.
type AttendanceRepository interface {
	// Upsert inserts or replaces the rider's row for date (YYYY-MM-DD).
	Upsert(ctx context.Context, riderID, date string, status domain.AttendanceStatus) error
	FindByRiderAndDate(ctx context.Context, riderID, date string) (*domain.Attendance, error)
	// CountAbsent counts riders among riderIDs marked absent or off_day on date.
	CountAbsent(ctx context.Context, riderIDs []string, date string) (int64, error)
	DeleteByRider(ctx context.Context, riderID string) error
}

// ShiftRepository persists scheduled rider shifts.
type ShiftRepository interface {
	Create(ctx context.Context, shift *domain.Shift) (*domain.Shift, error)
	ListByRiders(ctx context.Context, riderIDs []string) ([]domain.Shift, error)
	DeleteByRider(ctx context.Context, riderID string) error
}

// LocationStore holds each rider's last known position. Entries expire on
// their own; Delete exists for the rider deletion cascade.
type LocationStore interface {
	Set(ctx context.Context, loc domain.RiderLocation) error
	Get(ctx context.Context, riderID string) (*domain.RiderLocation, error)
	All(ctx context.Context) ([]domain.RiderLocation, error)
	Delete(ctx context.Context, riderID string) error
}

// LocationPing is a raw GPS sample from a rider device, fanned out to the
// location workers.
type LocationPing struct {
	RiderID    string
	Lat        float64
	Lng        float64
	RecordedAt time.Time
}
