package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/fleetops/rider-dispatch/internal/core/domain"
	"github.com/fleetops/rider-dispatch/internal/core/ports"
)

// maxHierarchyDepth caps the manager chain: prime admin → sub admin → rider.
const maxHierarchyDepth = 2

// DirectoryService owns user records and the two-tier manager hierarchy.
type DirectoryService struct {
	users      ports.UserRepository
	presence   ports.PresenceRepository
	attendance ports.AttendanceRepository
	shifts     ports.ShiftRepository
	locations  ports.LocationStore
	tx         ports.TxRunner
	logger     zerolog.Logger
}

func NewDirectoryService(
	users ports.UserRepository,
	presence ports.PresenceRepository,
	attendance ports.AttendanceRepository,
	shifts ports.ShiftRepository,
	locations ports.LocationStore,
	tx ports.TxRunner,
	logger zerolog.Logger,
) *DirectoryService {
	return &DirectoryService{
		users:      users,
		presence:   presence,
		attendance: attendance,
		shifts:     shifts,
		locations:  locations,
		tx:         tx,
		logger:     logger,
	}
}

// CreateSubordinate creates a sub admin or rider account under the actor.
// The prime admin may create sub admins (managed by itself) and riders
// (managed by itself or by a named sub admin); a sub admin may only create
// riders managed by itself.
func (s *DirectoryService) CreateSubordinate(ctx context.Context, actor *domain.Claim, input ports.CreateUserInput) (*domain.User, error) {
	if !actor.Role.CanCreate(input.Role) {
		return nil, domain.ErrInsufficientRole
	}
	if input.Username == "" || input.Password == "" || input.Name == "" {
		return nil, domain.ErrMissingField
	}
	if input.Role == domain.RoleRider && input.Store == "" {
		return nil, domain.ErrMissingField
	}

	managerID, err := s.resolveManager(ctx, actor, input)
	if err != nil {
		return nil, err
	}
	if err := s.checkHierarchy(ctx, input.Role, managerID); err != nil {
		return nil, err
	}

	if _, err := s.users.FindByUsername(ctx, input.Username); err == nil {
		return nil, domain.ErrDuplicateUsername
	} else if !errors.Is(err, domain.ErrTargetNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	created, err := s.users.Create(ctx, &domain.User{
		Username:     input.Username,
		PasswordHash: string(hash),
		Name:         input.Name,
		Role:         input.Role,
		Store:        input.Store,
		ManagerID:    managerID,
		Active:       true,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("username", created.Username).
		Str("role", string(created.Role)).
		Str("manager_id", created.ManagerID).
		Msg("subordinate created")
	return created, nil
}

// resolveManager picks the manager for the new account. Only a prime admin
// creating a rider may delegate management to a named sub admin.
func (s *DirectoryService) resolveManager(ctx context.Context, actor *domain.Claim, input ports.CreateUserInput) (string, error) {
	if actor.Role == domain.RolePrimeAdmin && input.Role == domain.RoleRider && input.ManagerID != "" {
		manager, err := s.users.FindByID(ctx, input.ManagerID)
		if err != nil {
			return "", err
		}
		if manager.Role != domain.RoleSubAdmin {
			return "", domain.ErrTargetNotFound
		}
		return manager.ID, nil
	}
	return actor.SubjectID, nil
}

// checkHierarchy walks the ancestor chain of the proposed manager and rejects
// assignments that would exceed two levels or close a cycle. The walk is an
// explicit check rather than trust in caller discipline.
func (s *DirectoryService) checkHierarchy(ctx context.Context, newRole domain.Role, managerID string) error {
	if managerID == "" {
		return nil
	}
	seen := map[string]bool{}
	depth := 1 // the new account itself occupies one level below its manager
	id := managerID
	for id != "" {
		if seen[id] {
			return domain.ErrOwnershipViolation
		}
		seen[id] = true
		ancestor, err := s.users.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if newRole == domain.RoleRider && depth == 1 && !ancestor.Role.IsAdmin() {
			return domain.ErrInsufficientRole
		}
		if newRole == domain.RoleSubAdmin && depth == 1 && ancestor.Role != domain.RolePrimeAdmin {
			return domain.ErrInsufficientRole
		}
		depth++
		if depth > maxHierarchyDepth+1 {
			return domain.ErrOwnershipViolation
		}
		id = ancestor.ManagerID
	}
	return nil
}

// DeleteUser hard-deletes the selected user. A sub admin may only delete its
// own riders; the prime admin may delete any sub admin or rider. Deleting a
// sub admin cascades through its riders first. All rows for one call are
// removed in a single transaction.
func (s *DirectoryService) DeleteUser(ctx context.Context, actor *domain.Claim, selector ports.UserSelector) error {
	target, err := s.resolveSelector(ctx, selector)
	if err != nil {
		return err
	}
	if !actor.Role.CanDelete(target.Role) {
		return domain.ErrInsufficientRole
	}
	if actor.Role == domain.RoleSubAdmin && target.ManagerID != actor.SubjectID {
		return domain.ErrOwnershipViolation
	}

	var deletedRiders []string
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if target.Role != domain.RoleSubAdmin {
			if err := s.deleteRiderRows(ctx, target.ID); err != nil {
				return err
			}
			deletedRiders = append(deletedRiders, target.ID)
			return nil
		}

		riders, err := s.users.FindRiders(ctx, ports.RiderFilter{ManagerID: target.ID})
		if err != nil {
			return err
		}
		for _, rider := range riders {
			if err := s.deleteRiderRows(ctx, rider.ID); err != nil {
				return err
			}
			deletedRiders = append(deletedRiders, rider.ID)
		}
		return s.users.Delete(ctx, target.ID)
	})
	if err != nil {
		return fmt.Errorf("delete user %s: %w", target.ID, err)
	}

	// Live positions sit outside the transactional store. Entries carry a
	// TTL, so a failed delete here leaves at worst a short-lived stale key.
	for _, riderID := range deletedRiders {
		if err := s.locations.Delete(ctx, riderID); err != nil {
			s.logger.Warn().Err(err).Str("rider_id", riderID).Msg("failed to drop live location")
		}
	}

	s.logger.Info().
		Str("target_id", target.ID).
		Str("target_role", string(target.Role)).
		Int("riders_removed", len(deletedRiders)).
		Msg("user deleted")
	return nil
}

// deleteRiderRows removes a rider and every dependent row within the ambient
// transaction: presence events, attendance days, shifts, then the user row.
func (s *DirectoryService) deleteRiderRows(ctx context.Context, riderID string) error {
	if err := s.presence.DeleteByRider(ctx, riderID); err != nil {
		return err
	}
	if err := s.attendance.DeleteByRider(ctx, riderID); err != nil {
		return err
	}
	if err := s.shifts.DeleteByRider(ctx, riderID); err != nil {
		return err
	}
	return s.users.Delete(ctx, riderID)
}

func (s *DirectoryService) resolveSelector(ctx context.Context, selector ports.UserSelector) (*domain.User, error) {
	switch {
	case selector.ID != "":
		return s.users.FindByID(ctx, selector.ID)
	case selector.Username != "":
		return s.users.FindByUsername(ctx, selector.Username)
	default:
		return nil, domain.ErrTargetNotFound
	}
}

// VisibleRiderIDs computes the riders the acting admin may observe. The
// prime admin sees every rider (optionally one store); a sub admin sees only
// riders it manages.
func (s *DirectoryService) VisibleRiderIDs(ctx context.Context, actor *domain.Claim, storeFilter string) ([]string, error) {
	riders, err := s.visibleRiders(ctx, actor, storeFilter)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(riders))
	for _, r := range riders {
		ids = append(ids, r.ID)
	}
	return ids, nil
}

func (s *DirectoryService) visibleRiders(ctx context.Context, actor *domain.Claim, storeFilter string) ([]*domain.User, error) {
	if !actor.Role.IsAdmin() {
		return nil, domain.ErrInsufficientRole
	}
	filter := ports.RiderFilter{Store: storeFilter}
	if actor.Role == domain.RoleSubAdmin {
		filter.ManagerID = actor.SubjectID
	}
	return s.users.FindRiders(ctx, filter)
}

// ListSubAdmins returns every sub admin with its rider count. Prime only.
func (s *DirectoryService) ListSubAdmins(ctx context.Context, actor *domain.Claim) ([]ports.SubAdminOverview, error) {
	if actor.Role != domain.RolePrimeAdmin {
		return nil, domain.ErrInsufficientRole
	}
	subAdmins, err := s.users.FindByRole(ctx, domain.RoleSubAdmin)
	if err != nil {
		return nil, err
	}
	items := make([]ports.SubAdminOverview, 0, len(subAdmins))
	for _, sub := range subAdmins {
		riders, err := s.users.FindRiders(ctx, ports.RiderFilter{ManagerID: sub.ID})
		if err != nil {
			return nil, err
		}
		items = append(items, ports.SubAdminOverview{
			ID:         sub.ID,
			Username:   sub.Username,
			Name:       sub.Name,
			RiderCount: len(riders),
		})
	}
	return items, nil
}
