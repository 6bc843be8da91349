// Package model defines the core domain types shared across studiogate:
// user roles, resolved sessions, and AI conversation log entries.
package model

// Role represents the access level assigned to a user in the user_roles table.
// The set is open on the database side; unknown values rank below RoleUser
// and are denied everywhere a minimum role is required.
type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleAdmin      Role = "admin"
	RoleManager    Role = "manager"
	RoleUser       Role = "user"
)

// DefaultRole is assumed when a user has no role row (or the lookup fails).
const DefaultRole = RoleUser

// RoleRank returns the numeric rank of a role (higher = more privileges).
// Only relative ordering matters — RoleAtLeast uses >= comparison.
func RoleRank(r Role) int {
	switch r {
	case RoleSuperAdmin:
		return 4
	case RoleAdmin:
		return 3
	case RoleManager:
		return 2
	case RoleUser:
		return 1
	default:
		return 0
	}
}

// RoleAtLeast returns true if role r has at least the privileges of minRole.
func RoleAtLeast(r, minRole Role) bool {
	return RoleRank(r) >= RoleRank(minRole)
}

// CanAccessStudio reports whether a role may enter the gated studio area.
// Manager and above qualify; RoleUser and unknown roles do not.
func CanAccessStudio(r Role) bool {
	return RoleAtLeast(r, RoleManager)
}
