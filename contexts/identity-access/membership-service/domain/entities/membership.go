package entities

import "time"

// Membership ties an actor to an organization with one role and one status.
// At most one row exists per (actor, organization) pair; a re-invite updates
// the existing row. Rows are never hard-deleted while the organization exists.
type Membership struct {
	MembershipID string           `json:"membership_id"`
	OrgID        string           `json:"org_id"`
	ActorID      string           `json:"actor_id"`
	Role         Role             `json:"role"`
	Status       MembershipStatus `json:"status"`
	InvitedBy    string           `json:"invited_by,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// IsActive reports whether the membership currently grants access.
func (m Membership) IsActive() bool {
	return m.Status == MembershipActive
}
