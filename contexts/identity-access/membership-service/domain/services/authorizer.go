package services

import "grantstw/contexts/identity-access/membership-service/domain/entities"

// Decision is the outcome of one authorization evaluation. Reasons are stable
// strings safe to surface to end users.
type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason"`
}

const (
	ReasonPlatformAdmin    = "platform_admin"
	ReasonGlobalRead       = "global_read"
	ReasonRoleAllowed      = "role_allowed"
	ReasonUnauthenticated  = "not authenticated"
	ReasonNotMember        = "not a member"
	ReasonInsufficientRole = "insufficient role"
	ReasonPlatformOnly     = "platform admin only"
	ReasonUnknownAction    = "unknown action"
)

// Evaluate is the pure authorization decision function. It takes the actor,
// the action policy, and the actor's membership row in the target org (found
// reports whether one exists). First matching rule wins:
//
//  1. platform admins bypass every check
//  2. global-read actions allow any authenticated actor
//  3. platform-only actions deny everyone else
//  4. non-members are denied
//  5. the membership role must intersect the action's allowed set
//
// Callers re-evaluate inside the same critical section that performs a write
// so concurrent role revocation cannot slip through.
func Evaluate(actor entities.Actor, action Action, membership entities.Membership, found bool) Decision {
	if actor.ID == "" {
		return Decision{Allowed: false, Reason: ReasonUnauthenticated}
	}
	if actor.IsPlatformAdmin {
		return Decision{Allowed: true, Reason: ReasonPlatformAdmin}
	}

	policy, ok := LookupPolicy(action)
	if !ok {
		return Decision{Allowed: false, Reason: ReasonUnknownAction}
	}

	switch policy.Scope {
	case ScopeGlobalRead:
		return Decision{Allowed: true, Reason: ReasonGlobalRead}
	case ScopePlatform:
		return Decision{Allowed: false, Reason: ReasonPlatformOnly}
	}

	if !found || !membership.IsActive() {
		return Decision{Allowed: false, Reason: ReasonNotMember}
	}
	if !entities.RoleAllowed(membership.Role, policy.AllowedRoles) {
		return Decision{Allowed: false, Reason: ReasonInsufficientRole}
	}
	return Decision{Allowed: true, Reason: ReasonRoleAllowed}
}
