package entities

// Role is the closed set of organization roles. Permission checks always use
// explicit per-action allowed-role sets; the rank exists for display and
// reporting only, because portfolio_manager and writer are incomparable for
// some actions.
type Role string

const (
	RoleOwner            Role = "owner"
	RoleAdmin            Role = "admin"
	RolePortfolioManager Role = "portfolio_manager"
	RoleWriter           Role = "writer"
	RoleReviewer         Role = "reviewer"
	RoleViewer           Role = "viewer"
)

var roleRanks = map[Role]int{
	RoleOwner:            6,
	RoleAdmin:            5,
	RolePortfolioManager: 4,
	RoleWriter:           3,
	RoleReviewer:         2,
	RoleViewer:           1,
}

// Rank returns the display ordering of a role, higher meaning more privileged.
// Unknown roles rank zero.
func (r Role) Rank() int {
	return roleRanks[r]
}

// Valid reports whether the role belongs to the closed set.
func (r Role) Valid() bool {
	_, ok := roleRanks[r]
	return ok
}

// RoleAllowed reports whether role is a member of the allowed set.
func RoleAllowed(role Role, allowed []Role) bool {
	for _, candidate := range allowed {
		if candidate == role {
			return true
		}
	}
	return false
}

// MembershipStatus is the lifecycle status of a membership row.
type MembershipStatus string

const (
	MembershipActive    MembershipStatus = "active"
	MembershipInvited   MembershipStatus = "invited"
	MembershipSuspended MembershipStatus = "suspended"
)

// Valid reports whether the status belongs to the closed set.
func (s MembershipStatus) Valid() bool {
	switch s {
	case MembershipActive, MembershipInvited, MembershipSuspended:
		return true
	default:
		return false
	}
}
