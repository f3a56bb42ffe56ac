package ports

import (
	"context"
	"time"

	"github.com/fleetops/rider-dispatch/internal/core/domain"
)

// EventCursor is a lazy, finite, forward-only stream of presence events.
// Implementations guarantee the whole stream is served from one consistent
// snapshot of the log: appends that happen after EventsFor returns are never
// partially visible.
type EventCursor interface {
	// Next advances the cursor and reports whether an event is available.
	Next(ctx context.Context) bool
	// Event returns the event at the current position.
	Event() domain.PresenceEvent
	// Err returns the first error encountered while iterating.
	Err() error
	Close(ctx context.Context) error
}

// PresenceRepository is the append-only rider status ledger. Rows are never
// updated; the only delete path is the rider cascade.
type PresenceRepository interface {
	// Append inserts a new event and assigns its Sequence.
	Append(ctx context.Context, riderID string, status domain.Status, at time.Time) (*domain.PresenceEvent, error)
	// EventsFor streams events for the given riders recorded at or after
	// since (zero time means the full history).
	EventsFor(ctx context.Context, riderIDs []string, since time.Time) (EventCursor, error)
	DeleteByRider(ctx context.Context, riderID string) error
}
