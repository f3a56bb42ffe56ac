package domain

import "time"

// AttendanceStatus is a rider's standing for one calendar day.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
	AttendanceOffDay  AttendanceStatus = "off_day"
)

// Valid reports whether a is a known attendance token.
func (a AttendanceStatus) Valid() bool {
	switch a {
	case AttendancePresent, AttendanceAbsent, AttendanceOffDay:
		return true
	}
	return false
}

// Attendance is the single row a rider holds per day (upserted, not appended).
type Attendance struct {
	ID      string           `json:"id"`
	RiderID string           `json:"rider_id"`
	Date    string           `json:"date"` // YYYY-MM-DD
	Status  AttendanceStatus `json:"status"`
}

// Shift is a scheduled working window for a rider.
type Shift struct {
	ID        string    `json:"id"`
	RiderID   string    `json:"rider_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	CreatedAt time.Time `json:"created_at"`
}

// RiderLocation is the last known GPS position of a rider. Positions are
// ephemeral; only the newest one per rider is retained.
type RiderLocation struct {
	RiderID    string    `json:"rider_id"`
	Lat        float64   `json:"lat"`
	Lng        float64   `json:"lng"`
	RecordedAt time.Time `json:"recorded_at"`
}
