package services

import "grantstw/contexts/identity-access/membership-service/domain/entities"

// Action names every operation the platform authorizes. The set is closed;
// unknown actions always deny.
type Action string

const (
	ActionOrgRead         Action = "org.read"
	ActionOrgUpdate       Action = "org.update"
	ActionMemberInvite    Action = "member.invite"
	ActionMemberSetStatus Action = "member.set_status"
	ActionGrantRead       Action = "grant.read"
	ActionGrantWrite      Action = "grant.write"
	ActionMatchRead       Action = "match.read"
	ActionMatchCompute    Action = "match.compute"
	ActionAssignmentWrite Action = "assignment.write"
	ActionDraftRead       Action = "draft.read"
	ActionDraftWrite      Action = "draft.write"
)

// Scope determines which rule of the decision order applies before role sets
// are consulted.
type Scope string

const (
	// ScopeOrg requires an active membership with an allowed role.
	ScopeOrg Scope = "org"
	// ScopeGlobalRead allows any authenticated actor without org membership.
	ScopeGlobalRead Scope = "global_read"
	// ScopePlatform allows platform admins only.
	ScopePlatform Scope = "platform"
)

// Policy declares how a single action is authorized. Role sets are explicit
// per action rather than threshold comparisons: portfolio_manager and writer
// both unlock drafting independently of their display rank.
type Policy struct {
	Scope        Scope
	AllowedRoles []entities.Role
}

var policies = map[Action]Policy{
	ActionOrgRead: {
		Scope: ScopeOrg,
		AllowedRoles: []entities.Role{
			entities.RoleOwner, entities.RoleAdmin, entities.RolePortfolioManager,
			entities.RoleWriter, entities.RoleReviewer, entities.RoleViewer,
		},
	},
	ActionOrgUpdate: {
		Scope:        ScopeOrg,
		AllowedRoles: []entities.Role{entities.RoleOwner, entities.RoleAdmin},
	},
	ActionMemberInvite: {
		Scope:        ScopeOrg,
		AllowedRoles: []entities.Role{entities.RoleOwner, entities.RoleAdmin},
	},
	ActionMemberSetStatus: {
		Scope:        ScopeOrg,
		AllowedRoles: []entities.Role{entities.RoleOwner, entities.RoleAdmin},
	},
	ActionGrantRead:  {Scope: ScopeGlobalRead},
	ActionGrantWrite: {Scope: ScopePlatform},
	ActionMatchRead: {
		Scope: ScopeOrg,
		AllowedRoles: []entities.Role{
			entities.RoleOwner, entities.RoleAdmin, entities.RolePortfolioManager,
			entities.RoleWriter, entities.RoleReviewer, entities.RoleViewer,
		},
	},
	ActionMatchCompute: {
		Scope: ScopeOrg,
		AllowedRoles: []entities.Role{
			entities.RoleOwner, entities.RoleAdmin, entities.RolePortfolioManager,
		},
	},
	ActionAssignmentWrite: {
		Scope: ScopeOrg,
		AllowedRoles: []entities.Role{
			entities.RoleOwner, entities.RoleAdmin, entities.RolePortfolioManager,
		},
	},
	ActionDraftRead: {
		Scope: ScopeOrg,
		AllowedRoles: []entities.Role{
			entities.RoleOwner, entities.RoleAdmin, entities.RolePortfolioManager,
			entities.RoleWriter, entities.RoleReviewer, entities.RoleViewer,
		},
	},
	ActionDraftWrite: {
		Scope: ScopeOrg,
		AllowedRoles: []entities.Role{
			entities.RoleOwner, entities.RoleAdmin, entities.RolePortfolioManager,
			entities.RoleWriter,
		},
	},
}

// LookupPolicy returns the policy for an action, false for unknown actions.
func LookupPolicy(action Action) (Policy, bool) {
	policy, ok := policies[action]
	return policy, ok
}
