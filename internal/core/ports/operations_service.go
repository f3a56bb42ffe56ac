package ports

import (
	"context"
	"time"

	"github.com/fleetops/rider-dispatch/internal/core/domain"
)

// AttendanceService handles the rider's own attendance-day bookkeeping.
type AttendanceService interface {
	// Mark sets today's attendance for the rider, replacing any earlier mark.
	Mark(ctx context.Context, actor *domain.Claim, status domain.AttendanceStatus) error
	// Today returns today's attendance row, or nil when none exists.
	Today(ctx context.Context, actor *domain.Claim) (*domain.Attendance, error)
}

// CreateShiftInput carries the parameters for scheduling a shift.
type CreateShiftInput struct {
	RiderID   string
	StartTime time.Time
	EndTime   time.Time
}

// ShiftService schedules shifts for riders visible to the acting admin.
type ShiftService interface {
	Create(ctx context.Context, actor *domain.Claim, input CreateShiftInput) (*domain.Shift, error)
	List(ctx context.Context, actor *domain.Claim) ([]domain.Shift, error)
}
