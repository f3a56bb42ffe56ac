package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/fleetops/rider-dispatch/internal/core/domain"
	"github.com/fleetops/rider-dispatch/internal/core/ports"
)

// PresenceService owns the append-only status log and everything derived
// from it: the latest-state reduction, the dispatch queue, and the admin
// dashboard views.
type PresenceService struct {
	presence   ports.PresenceRepository
	users      ports.UserRepository
	attendance ports.AttendanceRepository
	directory  ports.DirectoryService
	logger     zerolog.Logger
}

func NewPresenceService(
	presence ports.PresenceRepository,
	users ports.UserRepository,
	attendance ports.AttendanceRepository,
	directory ports.DirectoryService,
	logger zerolog.Logger,
) *PresenceService {
	return &PresenceService{
		presence:   presence,
		users:      users,
		attendance: attendance,
		directory:  directory,
		logger:     logger,
	}
}

// Append records a new status for the rider identified by the claim. The log
// is insert-only and transitions are not validated: any token may follow any
// other.
func (s *PresenceService) Append(ctx context.Context, actor *domain.Claim, status domain.Status) (*domain.PresenceEvent, error) {
	if actor.Role != domain.RoleRider {
		return nil, domain.ErrInsufficientRole
	}
	if status == "" {
		return nil, domain.ErrMissingField
	}

	event, err := s.presence.Append(ctx, actor.SubjectID, status, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("append presence: %w", err)
	}

	s.logger.Debug().
		Str("rider_id", event.RiderID).
		Str("status", string(event.Status)).
		Int64("sequence", event.Sequence).
		Msg("presence recorded")
	return event, nil
}

// LatestStates reduces the log to the current state per rider: the event
// with the greatest (RecordedAt, Sequence) pair wins. Riders with no events
// are absent from the result. The underlying cursor serves one consistent
// snapshot, so a rider's state is never a mix of two events.
func (s *PresenceService) LatestStates(ctx context.Context, riderIDs []string) (map[string]domain.LatestState, error) {
	if len(riderIDs) == 0 {
		return map[string]domain.LatestState{}, nil
	}

	cursor, err := s.presence.EventsFor(ctx, riderIDs, time.Time{})
	if err != nil {
		return nil, fmt.Errorf("read presence log: %w", err)
	}
	defer func() { _ = cursor.Close(ctx) }()

	latest := make(map[string]domain.LatestState)
	for cursor.Next(ctx) {
		ev := cursor.Event()
		state := latest[ev.RiderID]
		state.Reduce(ev)
		latest[ev.RiderID] = state
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("read presence log: %w", err)
	}
	return latest, nil
}

// BuildQueue returns the wait-ordered queue of available riders sharing the
// requesting rider's store: oldest available timestamp first, sequence as
// tiebreak, position 1-based.
func (s *PresenceService) BuildQueue(ctx context.Context, actor *domain.Claim) (*ports.QueueResult, error) {
	if actor.Role != domain.RoleRider {
		return nil, domain.ErrInsufficientRole
	}
	self, err := s.users.FindByID(ctx, actor.SubjectID)
	if err != nil {
		return nil, err
	}

	riders, err := s.users.FindRiders(ctx, ports.RiderFilter{Store: self.Store})
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(riders))
	byID := make(map[string]*domain.User, len(riders))
	for _, r := range riders {
		ids = append(ids, r.ID)
		byID[r.ID] = r
	}

	states, err := s.LatestStates(ctx, ids)
	if err != nil {
		return nil, err
	}

	type queued struct {
		entry ports.QueueEntry
		seq   int64
	}
	waiting := make([]queued, 0, len(states))
	for riderID, state := range states {
		rider := byID[riderID]
		if state.Status != domain.StatusAvailable || rider == nil || rider.Store != self.Store {
			continue
		}
		waiting = append(waiting, queued{
			entry: ports.QueueEntry{
				RiderID:    riderID,
				Name:       rider.Name,
				Store:      rider.Store,
				RecordedAt: state.RecordedAt,
			},
			seq: state.Sequence,
		})
	}
	sort.Slice(waiting, func(i, j int) bool {
		if !waiting[i].entry.RecordedAt.Equal(waiting[j].entry.RecordedAt) {
			return waiting[i].entry.RecordedAt.Before(waiting[j].entry.RecordedAt)
		}
		return waiting[i].seq < waiting[j].seq
	})

	result := &ports.QueueResult{
		Status:       domain.StatusOffline,
		Queue:        make([]ports.QueueEntry, 0, len(waiting)),
		TotalWaiting: len(waiting),
	}
	if state, ok := states[self.ID]; ok {
		result.Status = state.Status
	}
	for i, w := range waiting {
		result.Queue = append(result.Queue, w.entry)
		if w.entry.RiderID == self.ID {
			pos := i + 1
			result.Position = &pos
		}
	}
	return result, nil
}

// RiderStates lists the actor's visible riders joined with their current
// state. With includeOffline, riders lacking any event appear with the
// offline sentinel; otherwise only riders with at least one event appear.
func (s *PresenceService) RiderStates(ctx context.Context, actor *domain.Claim, storeFilter string, includeOffline bool) ([]ports.RiderState, error) {
	ids, err := s.directory.VisibleRiderIDs(ctx, actor, storeFilter)
	if err != nil {
		return nil, err
	}
	riders, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	states, err := s.LatestStates(ctx, ids)
	if err != nil {
		return nil, err
	}

	items := make([]ports.RiderState, 0, len(riders))
	for _, rider := range riders {
		state, ok := states[rider.ID]
		if !ok && !includeOffline {
			continue
		}
		item := ports.RiderState{
			RiderID:   rider.ID,
			Username:  rider.Username,
			Name:      rider.Name,
			Store:     rider.Store,
			ManagerID: rider.ManagerID,
			Status:    domain.StatusOffline,
		}
		if ok {
			item.Status = state.Status
			at := state.RecordedAt
			item.UpdatedAt = &at
		}
		items = append(items, item)
	}
	return items, nil
}

// DashboardStats summarises the actor's visible riders by current status,
// plus today's absentees from the attendance records.
func (s *PresenceService) DashboardStats(ctx context.Context, actor *domain.Claim, storeFilter string) (*ports.DashboardStats, error) {
	ids, err := s.directory.VisibleRiderIDs(ctx, actor, storeFilter)
	if err != nil {
		return nil, err
	}
	states, err := s.LatestStates(ctx, ids)
	if err != nil {
		return nil, err
	}

	stats := &ports.DashboardStats{
		TotalRiders: len(ids),
		UpdatedAt:   time.Now().UTC(),
	}
	for _, state := range states {
		countStatus(&stats.Active, &stats.Delivery, &stats.Available, &stats.OnBreak, state.Status)
	}

	today := time.Now().UTC().Format("2006-01-02")
	absent, err := s.attendance.CountAbsent(ctx, ids, today)
	if err != nil {
		return nil, err
	}
	stats.Absent = absent
	return stats, nil
}

// Overview builds the prime admin dashboard: per-sub-admin activity, grand
// totals, and per-store rollups over every rider in the system.
func (s *PresenceService) Overview(ctx context.Context, actor *domain.Claim) (*ports.PrimeOverview, error) {
	if actor.Role != domain.RolePrimeAdmin {
		return nil, domain.ErrInsufficientRole
	}

	riders, err := s.users.FindRiders(ctx, ports.RiderFilter{})
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(riders))
	for _, r := range riders {
		ids = append(ids, r.ID)
	}
	states, err := s.LatestStates(ctx, ids)
	if err != nil {
		return nil, err
	}

	subAdmins, err := s.users.FindByRole(ctx, domain.RoleSubAdmin)
	if err != nil {
		return nil, err
	}

	overview := &ports.PrimeOverview{
		SubAdmins: make([]ports.SubAdminActivity, 0, len(subAdmins)),
		Stores:    []ports.StoreActivity{},
	}
	for _, sub := range subAdmins {
		activity := ports.SubAdminActivity{
			ID:       sub.ID,
			Username: sub.Username,
			Name:     sub.Name,
		}
		for _, rider := range riders {
			if rider.ManagerID != sub.ID {
				continue
			}
			activity.RiderCount++
			if state, ok := states[rider.ID]; ok {
				countStatus(&activity.Active, &activity.Delivery, &activity.Available, nil, state.Status)
			}
		}
		overview.Totals.Active += activity.Active
		overview.Totals.Delivery += activity.Delivery
		overview.Totals.Available += activity.Available
		overview.SubAdmins = append(overview.SubAdmins, activity)
	}

	buckets := map[string]*ports.StoreActivity{}
	order := []string{}
	for _, rider := range riders {
		store := rider.Store
		if store == "" {
			store = "Unassigned"
		}
		bucket, ok := buckets[store]
		if !ok {
			bucket = &ports.StoreActivity{Store: store}
			buckets[store] = bucket
			order = append(order, store)
		}
		bucket.RiderCount++
		if state, ok := states[rider.ID]; ok {
			countStatus(&bucket.Active, &bucket.Delivery, &bucket.Available, nil, state.Status)
		}
	}
	sort.Strings(order)
	for _, store := range order {
		overview.Stores = append(overview.Stores, *buckets[store])
	}
	return overview, nil
}

// countStatus buckets one reduced status into the dashboard counters. Any
// non-offline token counts as active; onBreak may be nil for views that do
// not report it.
func countStatus(active, delivery, available, onBreak *int, status domain.Status) {
	if status != domain.StatusOffline {
		*active++
	}
	switch status {
	case domain.StatusDelivery:
		*delivery++
	case domain.StatusAvailable:
		*available++
	case domain.StatusBreak:
		if onBreak != nil {
			*onBreak++
		}
	}
}
