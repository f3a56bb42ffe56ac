package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/fleetops/rider-dispatch/internal/core/domain"
	"github.com/fleetops/rider-dispatch/internal/core/ports"
)

// ShiftService schedules working windows for riders. Admins may only touch
// riders inside their visibility scope.
type ShiftService struct {
	shifts    ports.ShiftRepository
	directory ports.DirectoryService
	logger    zerolog.Logger
}

func NewShiftService(shifts ports.ShiftRepository, directory ports.DirectoryService, logger zerolog.Logger) *ShiftService {
	return &ShiftService{shifts: shifts, directory: directory, logger: logger}
}

// Create schedules a shift for a rider visible to the acting admin.
func (s *ShiftService) Create(ctx context.Context, actor *domain.Claim, input ports.CreateShiftInput) (*domain.Shift, error) {
	if input.RiderID == "" || input.StartTime.IsZero() || input.EndTime.IsZero() {
		return nil, domain.ErrMissingField
	}
	visible, err := s.directory.VisibleRiderIDs(ctx, actor, "")
	if err != nil {
		return nil, err
	}
	if !containsID(visible, input.RiderID) {
		return nil, domain.ErrOwnershipViolation
	}

	shift, err := s.shifts.Create(ctx, &domain.Shift{
		RiderID:   input.RiderID,
		StartTime: input.StartTime,
		EndTime:   input.EndTime,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("create shift: %w", err)
	}

	s.logger.Info().
		Str("rider_id", shift.RiderID).
		Time("start", shift.StartTime).
		Time("end", shift.EndTime).
		Msg("shift created")
	return shift, nil
}

// List returns shifts for every rider visible to the acting admin.
func (s *ShiftService) List(ctx context.Context, actor *domain.Claim) ([]domain.Shift, error) {
	visible, err := s.directory.VisibleRiderIDs(ctx, actor, "")
	if err != nil {
		return nil, err
	}
	if len(visible) == 0 {
		return []domain.Shift{}, nil
	}
	return s.shifts.ListByRiders(ctx, visible)
}

func containsID(ids []string, target string) bool {
	for _, id := range ids {
		if id == target {
			return true
		}
	}
	return false
}
