package domain

import "time"

// Role is the closed set of actor roles. Authorization decisions go through
// the capability methods below instead of ad-hoc string comparisons.
type Role string

const (
	RolePrimeAdmin Role = "prime_admin"
	RoleSubAdmin   Role = "sub_admin"
	RoleRider      Role = "rider"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RolePrimeAdmin, RoleSubAdmin, RoleRider:
		return true
	}
	return false
}

// IsAdmin reports whether r may use the admin surface.
func (r Role) IsAdmin() bool {
	return r == RolePrimeAdmin || r == RoleSubAdmin
}

// capabilities maps an actor role to the roles it may act on, per action.
// Ownership (a sub admin acting only on its own riders) is enforced by the
// services on top of this table.
var capabilities = map[Role]struct {
	create      []Role
	delete      []Role
	impersonate []Role
}{
	RolePrimeAdmin: {
		create:      []Role{RoleSubAdmin, RoleRider},
		delete:      []Role{RoleSubAdmin, RoleRider},
		impersonate: []Role{RoleSubAdmin, RoleRider},
	},
	RoleSubAdmin: {
		create:      []Role{RoleRider},
		delete:      []Role{RoleRider},
		impersonate: []Role{RoleRider},
	},
}

func containsRole(roles []Role, target Role) bool {
	for _, r := range roles {
		if r == target {
			return true
		}
	}
	return false
}

// CanCreate reports whether r may create an account with the target role.
func (r Role) CanCreate(target Role) bool {
	return containsRole(capabilities[r].create, target)
}

// CanDelete reports whether r may delete an account with the target role.
func (r Role) CanDelete(target Role) bool {
	return containsRole(capabilities[r].delete, target)
}

// CanImpersonate reports whether r may impersonate the target role.
func (r Role) CanImpersonate(target Role) bool {
	return containsRole(capabilities[r].impersonate, target)
}

// User models an account in the two-tier hierarchy: the prime admin manages
// sub admins, and each rider is managed by the prime admin or a sub admin.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	Role         Role      `json:"role"`
	Store        string    `json:"store,omitempty"`
	ManagerID    string    `json:"manager_id,omitempty"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
}
