package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/fleetops/rider-dispatch/internal/core/domain"
	"github.com/fleetops/rider-dispatch/internal/core/ports"
)

const dateLayout = "2006-01-02"

// AttendanceService keeps one attendance row per rider per day. Marking
// twice on the same day replaces the earlier mark.
type AttendanceService struct {
	attendance ports.AttendanceRepository
	logger     zerolog.Logger
}

func NewAttendanceService(attendance ports.AttendanceRepository, logger zerolog.Logger) *AttendanceService {
	return &AttendanceService{attendance: attendance, logger: logger}
}

// Mark records today's attendance for the rider identified by the claim.
func (s *AttendanceService) Mark(ctx context.Context, actor *domain.Claim, status domain.AttendanceStatus) error {
	if actor.Role != domain.RoleRider {
		return domain.ErrInsufficientRole
	}
	if !status.Valid() {
		return domain.ErrMissingField
	}

	today := time.Now().UTC().Format(dateLayout)
	if err := s.attendance.Upsert(ctx, actor.SubjectID, today, status); err != nil {
		return fmt.Errorf("mark attendance: %w", err)
	}

	s.logger.Debug().
		Str("rider_id", actor.SubjectID).
		Str("date", today).
		Str("status", string(status)).
		Msg("attendance marked")
	return nil
}

// Today returns the rider's attendance row for today, or nil when unmarked.
func (s *AttendanceService) Today(ctx context.Context, actor *domain.Claim) (*domain.Attendance, error) {
	if actor.Role != domain.RoleRider {
		return nil, domain.ErrInsufficientRole
	}
	today := time.Now().UTC().Format(dateLayout)
	return s.attendance.FindByRiderAndDate(ctx, actor.SubjectID, today)
}
