package services

import (
	"testing"

	"grantstw/contexts/identity-access/membership-service/domain/entities"
)

func membershipWith(role entities.Role, status entities.MembershipStatus) entities.Membership {
	return entities.Membership{
		MembershipID: "m-1",
		OrgID:        "org-1",
		ActorID:      "actor-1",
		Role:         role,
		Status:       status,
	}
}

func TestEvaluatePlatformAdminBypassesEverything(t *testing.T) {
	admin := entities.Actor{ID: "root", IsPlatformAdmin: true}
	for _, action := range []Action{ActionGrantWrite, ActionMemberSetStatus, ActionDraftWrite, Action("bogus")} {
		decision := Evaluate(admin, action, entities.Membership{}, false)
		if !decision.Allowed {
			t.Fatalf("platform admin denied for %s: %s", action, decision.Reason)
		}
		if decision.Reason != ReasonPlatformAdmin {
			t.Fatalf("unexpected reason %q", decision.Reason)
		}
	}
}

func TestEvaluateGlobalReadAllowsAnyAuthenticatedActor(t *testing.T) {
	actor := entities.Actor{ID: "actor-1"}
	decision := Evaluate(actor, ActionGrantRead, entities.Membership{}, false)
	if !decision.Allowed || decision.Reason != ReasonGlobalRead {
		t.Fatalf("expected global read allow, got %+v", decision)
	}
}

func TestEvaluateUnauthenticatedDenied(t *testing.T) {
	decision := Evaluate(entities.Actor{}, ActionGrantRead, entities.Membership{}, false)
	if decision.Allowed {
		t.Fatalf("expected deny for empty actor id")
	}
}

func TestEvaluatePlatformOnlyDeniesMembers(t *testing.T) {
	actor := entities.Actor{ID: "actor-1"}
	decision := Evaluate(actor, ActionGrantWrite, membershipWith(entities.RoleOwner, entities.MembershipActive), true)
	if decision.Allowed {
		t.Fatalf("owner must not pass a platform-only action")
	}
	if decision.Reason != ReasonPlatformOnly {
		t.Fatalf("unexpected reason %q", decision.Reason)
	}
}

func TestEvaluateNonMemberDenied(t *testing.T) {
	actor := entities.Actor{ID: "actor-1"}
	decision := Evaluate(actor, ActionDraftWrite, entities.Membership{}, false)
	if decision.Allowed || decision.Reason != ReasonNotMember {
		t.Fatalf("expected not-a-member deny, got %+v", decision)
	}

	suspended := membershipWith(entities.RoleOwner, entities.MembershipSuspended)
	decision = Evaluate(actor, ActionDraftWrite, suspended, true)
	if decision.Allowed || decision.Reason != ReasonNotMember {
		t.Fatalf("suspended member must count as non-member, got %+v", decision)
	}
}

func TestEvaluateRoleSetsAreExplicitNotThresholds(t *testing.T) {
	actor := entities.Actor{ID: "actor-1"}

	// writer and portfolio_manager both unlock drafting even though their
	// display ranks differ.
	for _, role := range []entities.Role{entities.RoleWriter, entities.RolePortfolioManager} {
		decision := Evaluate(actor, ActionDraftWrite, membershipWith(role, entities.MembershipActive), true)
		if !decision.Allowed {
			t.Fatalf("%s should unlock draft.write: %s", role, decision.Reason)
		}
	}

	// writer outranks reviewer for display but cannot mutate assignments.
	decision := Evaluate(actor, ActionAssignmentWrite, membershipWith(entities.RoleWriter, entities.MembershipActive), true)
	if decision.Allowed {
		t.Fatalf("writer must not pass assignment.write")
	}

	decision = Evaluate(actor, ActionDraftWrite, membershipWith(entities.RoleViewer, entities.MembershipActive), true)
	if decision.Allowed || decision.Reason != ReasonInsufficientRole {
		t.Fatalf("viewer must be denied draft.write, got %+v", decision)
	}
}

func TestEvaluateUnknownActionDenied(t *testing.T) {
	actor := entities.Actor{ID: "actor-1"}
	decision := Evaluate(actor, Action("who.knows"), membershipWith(entities.RoleOwner, entities.MembershipActive), true)
	if decision.Allowed || decision.Reason != ReasonUnknownAction {
		t.Fatalf("unknown actions must deny, got %+v", decision)
	}
}

func TestRoleRankOrdering(t *testing.T) {
	ordered := []entities.Role{
		entities.RoleOwner,
		entities.RoleAdmin,
		entities.RolePortfolioManager,
		entities.RoleWriter,
		entities.RoleReviewer,
		entities.RoleViewer,
	}
	for i := 1; i < len(ordered); i++ {
		if ordered[i-1].Rank() <= ordered[i].Rank() {
			t.Fatalf("expected %s to outrank %s", ordered[i-1], ordered[i])
		}
	}
}
