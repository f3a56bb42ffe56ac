package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/fleetops/rider-dispatch/internal/core/domain"
	"github.com/fleetops/rider-dispatch/internal/core/ports"
)

// In-memory fakes shared by the service tests. They implement the ports with
// plain maps and slices; failure injection goes through the err fields.

type memUsers struct {
	byID   map[string]*domain.User
	nextID int
	err    error
}

func newMemUsers() *memUsers {
	return &memUsers{byID: map[string]*domain.User{}}
}

func (m *memUsers) add(user *domain.User) *domain.User {
	if user.ID == "" {
		m.nextID++
		user.ID = fmt.Sprintf("u%d", m.nextID)
	}
	m.byID[user.ID] = user
	return user
}

func (m *memUsers) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, u := range m.byID {
		if u.Username == user.Username {
			return nil, domain.ErrDuplicateUsername
		}
	}
	return m.add(user), nil
}

func (m *memUsers) FindByID(ctx context.Context, id string) (*domain.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	if u, ok := m.byID[id]; ok {
		return u, nil
	}
	return nil, domain.ErrTargetNotFound
}

func (m *memUsers) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, u := range m.byID {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, domain.ErrTargetNotFound
}

func (m *memUsers) FindByIDs(ctx context.Context, ids []string) ([]*domain.User, error) {
	out := []*domain.User{}
	for _, id := range ids {
		if u, ok := m.byID[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *memUsers) FindRiders(ctx context.Context, filter ports.RiderFilter) ([]*domain.User, error) {
	out := []*domain.User{}
	for _, u := range m.byID {
		if u.Role != domain.RoleRider {
			continue
		}
		if filter.ManagerID != "" && u.ManagerID != filter.ManagerID {
			continue
		}
		if filter.Store != "" && u.Store != filter.Store {
			continue
		}
		if len(filter.IDs) > 0 && !containsID(filter.IDs, u.ID) {
			continue
		}
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memUsers) FindByRole(ctx context.Context, role domain.Role) ([]*domain.User, error) {
	out := []*domain.User{}
	for _, u := range m.byID {
		if u.Role == role {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memUsers) SetActive(ctx context.Context, id string, active bool) error {
	u, ok := m.byID[id]
	if !ok {
		return domain.ErrTargetNotFound
	}
	u.Active = active
	return nil
}

func (m *memUsers) Delete(ctx context.Context, id string) error {
	if _, ok := m.byID[id]; !ok {
		return domain.ErrTargetNotFound
	}
	delete(m.byID, id)
	return nil
}

type memPresence struct {
	events  []domain.PresenceEvent
	nextSeq int64
	err     error
}

func (m *memPresence) Append(ctx context.Context, riderID string, status domain.Status, at time.Time) (*domain.PresenceEvent, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.nextSeq++
	ev := domain.PresenceEvent{
		ID:         fmt.Sprintf("ev%d", m.nextSeq),
		RiderID:    riderID,
		Status:     status,
		RecordedAt: at,
		Sequence:   m.nextSeq,
	}
	m.events = append(m.events, ev)
	return &ev, nil
}

func (m *memPresence) EventsFor(ctx context.Context, riderIDs []string, since time.Time) (ports.EventCursor, error) {
	if m.err != nil {
		return nil, m.err
	}
	matched := []domain.PresenceEvent{}
	for _, ev := range m.events {
		if !containsID(riderIDs, ev.RiderID) {
			continue
		}
		if !since.IsZero() && ev.RecordedAt.Before(since) {
			continue
		}
		matched = append(matched, ev)
	}
	return &sliceCursor{events: matched, pos: -1}, nil
}

func (m *memPresence) DeleteByRider(ctx context.Context, riderID string) error {
	kept := m.events[:0]
	for _, ev := range m.events {
		if ev.RiderID != riderID {
			kept = append(kept, ev)
		}
	}
	m.events = kept
	return nil
}

func (m *memPresence) countFor(riderID string) int {
	n := 0
	for _, ev := range m.events {
		if ev.RiderID == riderID {
			n++
		}
	}
	return n
}

// sliceCursor serves a fixed slice through the EventCursor interface.
type sliceCursor struct {
	events []domain.PresenceEvent
	pos    int
	err    error
}

func (c *sliceCursor) Next(ctx context.Context) bool {
	if c.err != nil {
		return false
	}
	c.pos++
	return c.pos < len(c.events)
}

func (c *sliceCursor) Event() domain.PresenceEvent { return c.events[c.pos] }
func (c *sliceCursor) Err() error                  { return c.err }
func (c *sliceCursor) Close(ctx context.Context) error {
	return nil
}

type memAudit struct {
	records   []domain.ImpersonationRecord
	insertErr error
}

func (m *memAudit) Insert(ctx context.Context, record *domain.ImpersonationRecord) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	record.ID = fmt.Sprintf("a%d", len(m.records)+1)
	m.records = append(m.records, *record)
	return nil
}

func (m *memAudit) ListRecent(ctx context.Context, limit int) ([]domain.ImpersonationRecord, error) {
	out := make([]domain.ImpersonationRecord, 0, limit)
	for i := len(m.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.records[i])
	}
	return out, nil
}

type memAttendance struct {
	rows map[string]domain.Attendance // key: riderID|date
}

func newMemAttendance() *memAttendance {
	return &memAttendance{rows: map[string]domain.Attendance{}}
}

func attKey(riderID, date string) string { return riderID + "|" + date }

func (m *memAttendance) Upsert(ctx context.Context, riderID, date string, status domain.AttendanceStatus) error {
	m.rows[attKey(riderID, date)] = domain.Attendance{RiderID: riderID, Date: date, Status: status}
	return nil
}

func (m *memAttendance) FindByRiderAndDate(ctx context.Context, riderID, date string) (*domain.Attendance, error) {
	if row, ok := m.rows[attKey(riderID, date)]; ok {
		return &row, nil
	}
	return nil, nil
}

func (m *memAttendance) CountAbsent(ctx context.Context, riderIDs []string, date string) (int64, error) {
	var n int64
	for _, id := range riderIDs {
		row, ok := m.rows[attKey(id, date)]
		if ok && (row.Status == domain.AttendanceAbsent || row.Status == domain.AttendanceOffDay) {
			n++
		}
	}
	return n, nil
}

func (m *memAttendance) DeleteByRider(ctx context.Context, riderID string) error {
	for key, row := range m.rows {
		if row.RiderID == riderID {
			delete(m.rows, key)
		}
	}
	return nil
}

func (m *memAttendance) countFor(riderID string) int {
	n := 0
	for _, row := range m.rows {
		if row.RiderID == riderID {
			n++
		}
	}
	return n
}

type memShifts struct {
	shifts []domain.Shift
}

func (m *memShifts) Create(ctx context.Context, shift *domain.Shift) (*domain.Shift, error) {
	shift.ID = fmt.Sprintf("s%d", len(m.shifts)+1)
	m.shifts = append(m.shifts, *shift)
	return shift, nil
}

func (m *memShifts) ListByRiders(ctx context.Context, riderIDs []string) ([]domain.Shift, error) {
	out := []domain.Shift{}
	for _, s := range m.shifts {
		if containsID(riderIDs, s.RiderID) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memShifts) DeleteByRider(ctx context.Context, riderID string) error {
	kept := m.shifts[:0]
	for _, s := range m.shifts {
		if s.RiderID != riderID {
			kept = append(kept, s)
		}
	}
	m.shifts = kept
	return nil
}

func (m *memShifts) countFor(riderID string) int {
	n := 0
	for _, s := range m.shifts {
		if s.RiderID == riderID {
			n++
		}
	}
	return n
}

type memLocations struct {
	byRider map[string]domain.RiderLocation
	deleted []string
}

func newMemLocations() *memLocations {
	return &memLocations{byRider: map[string]domain.RiderLocation{}}
}

func (m *memLocations) Set(ctx context.Context, loc domain.RiderLocation) error {
	m.byRider[loc.RiderID] = loc
	return nil
}

func (m *memLocations) Get(ctx context.Context, riderID string) (*domain.RiderLocation, error) {
	if loc, ok := m.byRider[riderID]; ok {
		return &loc, nil
	}
	return nil, nil
}

func (m *memLocations) All(ctx context.Context) ([]domain.RiderLocation, error) {
	out := []domain.RiderLocation{}
	for _, loc := range m.byRider {
		out = append(out, loc)
	}
	return out, nil
}

func (m *memLocations) Delete(ctx context.Context, riderID string) error {
	delete(m.byRider, riderID)
	m.deleted = append(m.deleted, riderID)
	return nil
}

// passTx runs the closure directly; the services only care that everything
// inside either completes or surfaces an error.
type passTx struct{}

func (passTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func hashPassword(password string) string {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	return string(hash)
}

func claimFor(user *domain.User) *domain.Claim {
	return &domain.Claim{
		ID:        "jti-" + user.ID,
		SubjectID: user.ID,
		Username:  user.Username,
		Role:      user.Role,
		ExpiresAt: time.Now().Add(time.Hour),
	}
}
