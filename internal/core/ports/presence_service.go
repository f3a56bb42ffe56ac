package ports

import (
	"context"
	"time"

	"github.com/fleetops/rider-dispatch/internal/core/domain"
)

// QueueEntry is one available rider waiting for dispatch.
type QueueEntry struct {
	RiderID    string    `json:"rider_id"`
	Name       string    `json:"name"`
	Store      string    `json:"store,omitempty"`
	RecordedAt time.Time `json:"updated_at"`
}

// QueueResult is the dispatch queue from one rider's point of view.
// Position is 1-based and nil when the requester is not currently available.
type QueueResult struct {
	Status       domain.Status `json:"status"`
	Queue        []QueueEntry  `json:"queue"`
	Position     *int          `json:"position"`
	TotalWaiting int           `json:"total_waiting"`
}

// RiderState is a rider joined with its reduced current status for the
// admin views. UpdatedAt is nil when the rider has no events yet.
type RiderState struct {
	RiderID   string        `json:"rider_id"`
	Username  string        `json:"username,omitempty"`
	Name      string        `json:"name"`
	Store     string        `json:"store,omitempty"`
	ManagerID string        `json:"manager_id,omitempty"`
	Status    domain.Status `json:"status"`
	UpdatedAt *time.Time    `json:"updated_at"`
}

// DashboardStats is the admin summary over the actor's visible riders.
type DashboardStats struct {
	TotalRiders int       `json:"total_riders"`
	Active      int       `json:"active"`
	Delivery    int       `json:"delivery"`
	Available   int       `json:"available"`
	OnBreak     int       `json:"on_break"`
	Absent      int64     `json:"absent"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// SubAdminActivity is one sub admin's rider activity in the prime overview.
type SubAdminActivity struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	Name       string `json:"name"`
	RiderCount int    `json:"rider_count"`
	Active     int    `json:"active"`
	Delivery   int    `json:"delivery"`
	Available  int    `json:"available"`
}

// StoreActivity is a per-store rollup in the prime overview.
type StoreActivity struct {
	Store      string `json:"store"`
	RiderCount int    `json:"rider_count"`
	Active     int    `json:"active"`
	Delivery   int    `json:"delivery"`
	Available  int    `json:"available"`
}

// PrimeOverview aggregates rider activity for the prime admin dashboard.
type PrimeOverview struct {
	SubAdmins []SubAdminActivity `json:"items"`
	Totals    StoreActivity      `json:"totals"`
	Stores    []StoreActivity    `json:"stores"`
}

// PresenceService owns the presence log, the latest-state reduction, and the
// views derived from it.
type PresenceService interface {
	// Append records a new status for the rider identified by the claim.
	Append(ctx context.Context, actor *domain.Claim, status domain.Status) (*domain.PresenceEvent, error)
	// LatestStates reduces the log to the current state per rider. Riders
	// with no events are absent from the result.
	LatestStates(ctx context.Context, riderIDs []string) (map[string]domain.LatestState, error)
	// BuildQueue returns the wait-ordered queue of available riders in the
	// requesting rider's store.
	BuildQueue(ctx context.Context, actor *domain.Claim) (*QueueResult, error)
	// RiderStates lists the actor's visible riders with their current state.
	RiderStates(ctx context.Context, actor *domain.Claim, storeFilter string, includeOffline bool) ([]RiderState, error)
	DashboardStats(ctx context.Context, actor *domain.Claim, storeFilter string) (*DashboardStats, error)
	Overview(ctx context.Context, actor *domain.Claim) (*PrimeOverview, error)
}
