package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/fleetops/rider-dispatch/internal/core/domain"
	"github.com/fleetops/rider-dispatch/internal/core/ports"
)

type directoryFixture struct {
	users      *memUsers
	presence   *memPresence
	attendance *memAttendance
	shifts     *memShifts
	locations  *memLocations
	svc        *DirectoryService

	prime *domain.User
	sub   *domain.User
}

func newDirectoryFixture(t *testing.T) *directoryFixture {
	t.Helper()
	f := &directoryFixture{
		users:      newMemUsers(),
		presence:   &memPresence{},
		attendance: newMemAttendance(),
		shifts:     &memShifts{},
		locations:  newMemLocations(),
	}
	f.svc = NewDirectoryService(f.users, f.presence, f.attendance, f.shifts, f.locations, passTx{}, zerolog.Nop())
	f.prime = f.users.add(&domain.User{Username: "prime", Role: domain.RolePrimeAdmin, Active: true})
	f.sub = f.users.add(&domain.User{Username: "sub1", Role: domain.RoleSubAdmin, ManagerID: f.prime.ID, Active: true})
	return f
}

func (f *directoryFixture) addRider(username, store, managerID string) *domain.User {
	return f.users.add(&domain.User{
		Username:  username,
		Role:      domain.RoleRider,
		Store:     store,
		ManagerID: managerID,
		Active:    true,
	})
}

func TestDirectoryService_CreateSubordinate(t *testing.T) {
	f := newDirectoryFixture(t)
	ctx := context.Background()

	// Prime admin creates a sub admin managed by itself.
	created, err := f.svc.CreateSubordinate(ctx, claimFor(f.prime), ports.CreateUserInput{
		Username: "sub2", Password: "pw", Name: "Sub Two", Role: domain.RoleSubAdmin,
	})
	if err != nil {
		t.Fatalf("create sub admin: %v", err)
	}
	if created.ManagerID != f.prime.ID || !created.Active {
		t.Fatalf("unexpected sub admin: %+v", created)
	}

	// Sub admin creates a rider managed by itself.
	rider, err := f.svc.CreateSubordinate(ctx, claimFor(f.sub), ports.CreateUserInput{
		Username: "r1", Password: "pw", Name: "Rider", Role: domain.RoleRider, Store: "central",
	})
	if err != nil {
		t.Fatalf("create rider: %v", err)
	}
	if rider.ManagerID != f.sub.ID {
		t.Fatalf("rider manager = %s, want %s", rider.ManagerID, f.sub.ID)
	}
	if rider.PasswordHash == "pw" || rider.PasswordHash == "" {
		t.Fatal("password must be stored hashed")
	}

	// Prime admin places a rider under a named sub admin.
	delegated, err := f.svc.CreateSubordinate(ctx, claimFor(f.prime), ports.CreateUserInput{
		Username: "r2", Password: "pw", Name: "Rider", Role: domain.RoleRider,
		Store: "central", ManagerID: f.sub.ID,
	})
	if err != nil {
		t.Fatalf("create delegated rider: %v", err)
	}
	if delegated.ManagerID != f.sub.ID {
		t.Fatalf("delegated rider manager = %s, want %s", delegated.ManagerID, f.sub.ID)
	}
}

func TestDirectoryService_CreateSubordinateRejections(t *testing.T) {
	f := newDirectoryFixture(t)
	ctx := context.Background()
	rider := f.addRider("r1", "central", f.sub.ID)

	tests := []struct {
		name  string
		actor *domain.User
		input ports.CreateUserInput
		want  error
	}{
		{
			"sub admin cannot create sub admin",
			f.sub,
			ports.CreateUserInput{Username: "x", Password: "pw", Name: "X", Role: domain.RoleSubAdmin},
			domain.ErrInsufficientRole,
		},
		{
			"rider cannot create anyone",
			rider,
			ports.CreateUserInput{Username: "x", Password: "pw", Name: "X", Role: domain.RoleRider, Store: "central"},
			domain.ErrInsufficientRole,
		},
		{
			"nobody creates a prime admin",
			f.prime,
			ports.CreateUserInput{Username: "x", Password: "pw", Name: "X", Role: domain.RolePrimeAdmin},
			domain.ErrInsufficientRole,
		},
		{
			"missing username",
			f.prime,
			ports.CreateUserInput{Password: "pw", Name: "X", Role: domain.RoleSubAdmin},
			domain.ErrMissingField,
		},
		{
			"rider requires a store",
			f.sub,
			ports.CreateUserInput{Username: "x", Password: "pw", Name: "X", Role: domain.RoleRider},
			domain.ErrMissingField,
		},
		{
			"duplicate username",
			f.prime,
			ports.CreateUserInput{Username: "sub1", Password: "pw", Name: "X", Role: domain.RoleSubAdmin},
			domain.ErrDuplicateUsername,
		},
		{
			"named manager must be a sub admin",
			f.prime,
			ports.CreateUserInput{Username: "x", Password: "pw", Name: "X", Role: domain.RoleRider,
				Store: "central", ManagerID: rider.ID},
			domain.ErrTargetNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.CreateSubordinate(ctx, claimFor(tt.actor), tt.input)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDirectoryService_DeleteRiderCascades(t *testing.T) {
	f := newDirectoryFixture(t)
	ctx := context.Background()
	rider := f.addRider("r1", "central", f.sub.ID)

	now := time.Now().UTC()
	_, _ = f.presence.Append(ctx, rider.ID, domain.StatusAvailable, now)
	_, _ = f.presence.Append(ctx, rider.ID, domain.StatusDelivery, now.Add(time.Minute))
	_ = f.attendance.Upsert(ctx, rider.ID, "2026-08-28", domain.AttendancePresent)
	_, _ = f.shifts.Create(ctx, &domain.Shift{RiderID: rider.ID, StartTime: now, EndTime: now.Add(8 * time.Hour)})
	_ = f.locations.Set(ctx, domain.RiderLocation{RiderID: rider.ID, Lat: 1, Lng: 2})

	if err := f.svc.DeleteUser(ctx, claimFor(f.sub), ports.UserSelector{ID: rider.ID}); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := f.users.FindByID(ctx, rider.ID); !errors.Is(err, domain.ErrTargetNotFound) {
		t.Fatalf("rider lookup after delete: %v, want ErrTargetNotFound", err)
	}
	if n := f.presence.countFor(rider.ID); n != 0 {
		t.Errorf("presence rows remaining: %d", n)
	}
	if n := f.attendance.countFor(rider.ID); n != 0 {
		t.Errorf("attendance rows remaining: %d", n)
	}
	if n := f.shifts.countFor(rider.ID); n != 0 {
		t.Errorf("shift rows remaining: %d", n)
	}
	if loc, _ := f.locations.Get(ctx, rider.ID); loc != nil {
		t.Error("live location should be dropped")
	}
}

func TestDirectoryService_DeleteSubAdminCascadesThroughRiders(t *testing.T) {
	f := newDirectoryFixture(t)
	ctx := context.Background()
	r1 := f.addRider("r1", "central", f.sub.ID)
	r2 := f.addRider("r2", "north", f.sub.ID)
	other := f.addRider("r3", "central", f.prime.ID)

	now := time.Now().UTC()
	_, _ = f.presence.Append(ctx, r1.ID, domain.StatusAvailable, now)
	_, _ = f.presence.Append(ctx, other.ID, domain.StatusAvailable, now)

	if err := f.svc.DeleteUser(ctx, claimFor(f.prime), ports.UserSelector{Username: "sub1"}); err != nil {
		t.Fatalf("delete: %v", err)
	}

	for _, id := range []string{f.sub.ID, r1.ID, r2.ID} {
		if _, err := f.users.FindByID(ctx, id); !errors.Is(err, domain.ErrTargetNotFound) {
			t.Errorf("user %s should be gone, got %v", id, err)
		}
	}
	if n := f.presence.countFor(r1.ID); n != 0 {
		t.Errorf("presence rows remaining for cascaded rider: %d", n)
	}

	// Unrelated rider untouched.
	if _, err := f.users.FindByID(ctx, other.ID); err != nil {
		t.Errorf("unrelated rider should survive: %v", err)
	}
	if n := f.presence.countFor(other.ID); n != 1 {
		t.Errorf("unrelated presence rows = %d, want 1", n)
	}
}

func TestDirectoryService_DeleteRejections(t *testing.T) {
	f := newDirectoryFixture(t)
	ctx := context.Background()
	sub2 := f.users.add(&domain.User{Username: "sub2", Role: domain.RoleSubAdmin, ManagerID: f.prime.ID, Active: true})
	foreign := f.addRider("r1", "central", sub2.ID)

	// A sub admin may not delete another admin's rider.
	err := f.svc.DeleteUser(ctx, claimFor(f.sub), ports.UserSelector{ID: foreign.ID})
	if !errors.Is(err, domain.ErrOwnershipViolation) {
		t.Fatalf("err = %v, want ErrOwnershipViolation", err)
	}

	// A sub admin may not delete a sibling sub admin.
	err = f.svc.DeleteUser(ctx, claimFor(f.sub), ports.UserSelector{ID: sub2.ID})
	if !errors.Is(err, domain.ErrInsufficientRole) {
		t.Fatalf("err = %v, want ErrInsufficientRole", err)
	}

	// Unknown target.
	err = f.svc.DeleteUser(ctx, claimFor(f.prime), ports.UserSelector{ID: "missing"})
	if !errors.Is(err, domain.ErrTargetNotFound) {
		t.Fatalf("err = %v, want ErrTargetNotFound", err)
	}

	// Empty selector.
	err = f.svc.DeleteUser(ctx, claimFor(f.prime), ports.UserSelector{})
	if !errors.Is(err, domain.ErrTargetNotFound) {
		t.Fatalf("err = %v, want ErrTargetNotFound", err)
	}
}

func TestDirectoryService_VisibleRiderIDs(t *testing.T) {
	f := newDirectoryFixture(t)
	ctx := context.Background()
	r1 := f.addRider("r1", "central", f.sub.ID)
	r2 := f.addRider("r2", "north", f.sub.ID)
	r3 := f.addRider("r3", "central", f.prime.ID)

	// Prime admin sees every rider.
	ids, err := f.svc.VisibleRiderIDs(ctx, claimFor(f.prime), "")
	if err != nil {
		t.Fatalf("visible: %v", err)
	}
	if len(ids) != 3 {
		t.Fatalf("prime sees %d riders, want 3", len(ids))
	}

	// Store filter narrows the prime scope.
	ids, err = f.svc.VisibleRiderIDs(ctx, claimFor(f.prime), "central")
	if err != nil {
		t.Fatalf("visible: %v", err)
	}
	if len(ids) != 2 || !containsID(ids, r1.ID) || !containsID(ids, r3.ID) {
		t.Fatalf("prime central scope = %v", ids)
	}

	// Sub admin sees only its own riders.
	ids, err = f.svc.VisibleRiderIDs(ctx, claimFor(f.sub), "")
	if err != nil {
		t.Fatalf("visible: %v", err)
	}
	if len(ids) != 2 || !containsID(ids, r1.ID) || !containsID(ids, r2.ID) {
		t.Fatalf("sub scope = %v", ids)
	}

	// Riders have no visibility scope at all.
	if _, err := f.svc.VisibleRiderIDs(ctx, claimFor(r1), ""); !errors.Is(err, domain.ErrInsufficientRole) {
		t.Fatalf("err = %v, want ErrInsufficientRole", err)
	}
}

func TestDirectoryService_ListSubAdmins(t *testing.T) {
	f := newDirectoryFixture(t)
	ctx := context.Background()
	f.addRider("r1", "central", f.sub.ID)
	f.addRider("r2", "north", f.sub.ID)

	items, err := f.svc.ListSubAdmins(ctx, claimFor(f.prime))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 || items[0].ID != f.sub.ID || items[0].RiderCount != 2 {
		t.Fatalf("unexpected listing: %+v", items)
	}

	if _, err := f.svc.ListSubAdmins(ctx, claimFor(f.sub)); !errors.Is(err, domain.ErrInsufficientRole) {
		t.Fatalf("err = %v, want ErrInsufficientRole", err)
	}
}
