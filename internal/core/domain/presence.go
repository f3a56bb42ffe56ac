package domain

import "time"

// Status is a rider presence token. The log accepts arbitrary tokens (no
// transition validation); these are the canonical ones the dashboard buckets.
type Status string

const (
	StatusOffline   Status = "offline"
	StatusAvailable Status = "available"
	StatusDelivery  Status = "delivery"
	StatusBreak     Status = "break"
)

// PresenceEvent is one immutable entry in the append-only presence log.
// Sequence is the storage-assigned insertion order and breaks ties between
// events sharing the same RecordedAt.
type PresenceEvent struct {
	ID         string    `json:"id"`
	RiderID    string    `json:"rider_id"`
	Status     Status    `json:"status"`
	RecordedAt time.Time `json:"recorded_at"`
	Sequence   int64     `json:"sequence"`
}

// LatestState is the reduced current state of one rider: the status of the
// event with the greatest (RecordedAt, Sequence) pair.
type LatestState struct {
	Status     Status    `json:"status"`
	RecordedAt time.Time `json:"recorded_at"`
	Sequence   int64     `json:"-"`
}

// Reduce folds ev into the running latest state and reports whether ev won.
// Later RecordedAt wins; on equal RecordedAt the higher Sequence wins.
func (s *LatestState) Reduce(ev PresenceEvent) bool {
	if ev.RecordedAt.Before(s.RecordedAt) {
		return false
	}
	if ev.RecordedAt.Equal(s.RecordedAt) && ev.Sequence <= s.Sequence {
		return false
	}
	s.Status = ev.Status
	s.RecordedAt = ev.RecordedAt
	s.Sequence = ev.Sequence
	return true
}
