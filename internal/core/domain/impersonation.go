package domain

import "time"

// ImpersonationRecord is an append-only audit entry written whenever one
// identity is delegated to another. Records are never mutated.
type ImpersonationRecord struct {
	ID         string    `json:"id"`
	ActorID    string    `json:"actor_id"`
	TargetID   string    `json:"target_id"`
	TargetRole Role      `json:"target_role"`
	RecordedAt time.Time `json:"recorded_at"`
}

// Claim is a verified, time-bounded assertion of identity. It is ephemeral:
// produced by the token service, carried through the request, never stored.
type Claim struct {
	ID        string    `json:"jti"`
	SubjectID string    `json:"subject_id"`
	Username  string    `json:"username"`
	Role      Role      `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}
