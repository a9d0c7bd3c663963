package commands

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"grantstw/contexts/identity-access/membership-service/adapters/memory"
	"grantstw/contexts/identity-access/membership-service/domain/entities"
	domainerrors "grantstw/contexts/identity-access/membership-service/domain/errors"
)

func newFixtures(t *testing.T) (*memory.Store, entities.Organization, entities.Actor) {
	t.Helper()
	store := memory.NewStore()
	founder := entities.Actor{ID: "founder"}
	create := CreateOrganizationUseCase{Repository: store, Clock: store, IDGenerator: store}
	result, err := create.Execute(context.Background(), CreateOrganizationCommand{
		Actor:       founder,
		RegistryKey: "reg-001",
		Name:        "Clean Water Coalition",
		Region:      "East Africa",
		FocusTags:   []string{"Water", "sanitation", "water"},
	})
	if err != nil {
		t.Fatalf("create organization failed: %v", err)
	}
	return store, result.Organization, founder
}

func TestCreateOrganizationAutoAddsActiveOwner(t *testing.T) {
	store, organization, founder := newFixtures(t)

	membership, found, err := store.GetMembership(context.Background(), organization.OrgID, founder.ID)
	if err != nil || !found {
		t.Fatalf("owner membership missing: %v", err)
	}
	if membership.Role != entities.RoleOwner || membership.Status != entities.MembershipActive {
		t.Fatalf("expected active owner, got %s/%s", membership.Role, membership.Status)
	}
	if got := organization.FocusTags; len(got) != 2 || got[0] != "water" || got[1] != "sanitation" {
		t.Fatalf("focus tags not normalized: %v", got)
	}
}

func TestCreateOrganizationDuplicateRegistryKeyConflicts(t *testing.T) {
	store, _, _ := newFixtures(t)
	create := CreateOrganizationUseCase{Repository: store, Clock: store, IDGenerator: store}
	_, err := create.Execute(context.Background(), CreateOrganizationCommand{
		Actor:       entities.Actor{ID: "someone-else"},
		RegistryKey: "reg-001",
		Name:        "Duplicate",
	})
	if !errors.Is(err, domainerrors.ErrOrganizationExists) {
		t.Fatalf("expected ErrOrganizationExists, got %v", err)
	}
}

func TestInviteRequiresAdminOrOwner(t *testing.T) {
	store, organization, founder := newFixtures(t)
	invite := InviteMemberUseCase{Repository: store, Clock: store, IDGenerator: store}
	setStatus := SetMemberStatusUseCase{Repository: store, Clock: store}

	// Founder invites a viewer; the viewer activates and then tries to
	// invite someone else.
	viewer := entities.Actor{ID: "viewer-1"}
	if _, err := invite.Execute(context.Background(), InviteMemberCommand{
		Actor: founder, OrgID: organization.OrgID, TargetActorID: viewer.ID, Role: entities.RoleViewer,
	}); err != nil {
		t.Fatalf("founder invite failed: %v", err)
	}
	if _, err := setStatus.Execute(context.Background(), SetMemberStatusCommand{
		Actor: founder, OrgID: organization.OrgID, TargetActorID: viewer.ID, Status: entities.MembershipActive,
	}); err != nil {
		t.Fatalf("activate viewer failed: %v", err)
	}

	_, err := invite.Execute(context.Background(), InviteMemberCommand{
		Actor: viewer, OrgID: organization.OrgID, TargetActorID: "friend", Role: entities.RoleWriter,
	})
	if !errors.Is(err, domainerrors.ErrPermissionDenied) {
		t.Fatalf("viewer invite should be denied, got %v", err)
	}

	// Platform admins bypass the role gate without membership.
	platform := entities.Actor{ID: "platform-ops", IsPlatformAdmin: true}
	if _, err := invite.Execute(context.Background(), InviteMemberCommand{
		Actor: platform, OrgID: organization.OrgID, TargetActorID: "pm-1", Role: entities.RolePortfolioManager,
	}); err != nil {
		t.Fatalf("platform admin invite failed: %v", err)
	}
}

func TestReInviteUpdatesExistingRow(t *testing.T) {
	store, organization, founder := newFixtures(t)
	invite := InviteMemberUseCase{Repository: store, Clock: store, IDGenerator: store}

	first, err := invite.Execute(context.Background(), InviteMemberCommand{
		Actor: founder, OrgID: organization.OrgID, TargetActorID: "writer-1", Role: entities.RoleViewer,
	})
	if err != nil {
		t.Fatalf("first invite failed: %v", err)
	}
	second, err := invite.Execute(context.Background(), InviteMemberCommand{
		Actor: founder, OrgID: organization.OrgID, TargetActorID: "writer-1", Role: entities.RoleWriter,
	})
	if err != nil {
		t.Fatalf("re-invite failed: %v", err)
	}
	if first.MembershipID != second.MembershipID {
		t.Fatalf("re-invite must update the same row, got %s and %s", first.MembershipID, second.MembershipID)
	}
	if second.Role != entities.RoleWriter {
		t.Fatalf("role not updated: %s", second.Role)
	}

	members, err := store.ListMemberships(context.Background(), organization.OrgID)
	if err != nil {
		t.Fatalf("list memberships failed: %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("expected owner plus one invitee, got %d rows", len(members))
	}
}

func TestSuspendingLastActiveOwnerRejected(t *testing.T) {
	store, organization, founder := newFixtures(t)
	setStatus := SetMemberStatusUseCase{Repository: store, Clock: store}

	_, err := setStatus.Execute(context.Background(), SetMemberStatusCommand{
		Actor:         founder,
		OrgID:         organization.OrgID,
		TargetActorID: founder.ID,
		Status:        entities.MembershipSuspended,
	})
	if !errors.Is(err, domainerrors.ErrLastOwner) {
		t.Fatalf("expected ErrLastOwner, got %v", err)
	}

	membership, _, err := store.GetMembership(context.Background(), organization.OrgID, founder.ID)
	if err != nil {
		t.Fatalf("get membership failed: %v", err)
	}
	if membership.Status != entities.MembershipActive {
		t.Fatalf("membership must remain active after rejected suspension, got %s", membership.Status)
	}
}

func TestSecondOwnerAllowsHandoff(t *testing.T) {
	store, organization, founder := newFixtures(t)
	invite := InviteMemberUseCase{Repository: store, Clock: store, IDGenerator: store}
	setStatus := SetMemberStatusUseCase{Repository: store, Clock: store}

	if _, err := invite.Execute(context.Background(), InviteMemberCommand{
		Actor: founder, OrgID: organization.OrgID, TargetActorID: "owner-2", Role: entities.RoleOwner,
	}); err != nil {
		t.Fatalf("invite second owner failed: %v", err)
	}
	if _, err := setStatus.Execute(context.Background(), SetMemberStatusCommand{
		Actor: founder, OrgID: organization.OrgID, TargetActorID: "owner-2", Status: entities.MembershipActive,
	}); err != nil {
		t.Fatalf("activate second owner failed: %v", err)
	}

	if _, err := setStatus.Execute(context.Background(), SetMemberStatusCommand{
		Actor: founder, OrgID: organization.OrgID, TargetActorID: founder.ID, Status: entities.MembershipSuspended,
	}); err != nil {
		t.Fatalf("suspending founder with a second active owner should pass: %v", err)
	}
}

// Random invite/set-status sequences must never drop the last active owner.
func TestActiveOwnerInvariantUnderRandomSequences(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	actors := []string{"founder", "a", "b", "c", "d"}
	roles := []entities.Role{
		entities.RoleOwner, entities.RoleAdmin, entities.RolePortfolioManager,
		entities.RoleWriter, entities.RoleReviewer, entities.RoleViewer,
	}
	statuses := []entities.MembershipStatus{
		entities.MembershipActive, entities.MembershipInvited, entities.MembershipSuspended,
	}

	for trial := 0; trial < 20; trial++ {
		store, organization, founder := newFixtures(t)
		invite := InviteMemberUseCase{Repository: store, Clock: store, IDGenerator: store}
		setStatus := SetMemberStatusUseCase{Repository: store, Clock: store}

		for step := 0; step < 60; step++ {
			target := actors[rng.Intn(len(actors))]
			if rng.Intn(2) == 0 {
				_, _ = invite.Execute(context.Background(), InviteMemberCommand{
					Actor:         founder,
					OrgID:         organization.OrgID,
					TargetActorID: target,
					Role:          roles[rng.Intn(len(roles))],
				})
			} else {
				_, _ = setStatus.Execute(context.Background(), SetMemberStatusCommand{
					Actor:         founder,
					OrgID:         organization.OrgID,
					TargetActorID: target,
					Status:        statuses[rng.Intn(len(statuses))],
				})
			}

			members, err := store.ListMemberships(context.Background(), organization.OrgID)
			if err != nil {
				t.Fatalf("list memberships failed: %v", err)
			}
			activeOwners := 0
			for _, membership := range members {
				if membership.Role == entities.RoleOwner && membership.Status == entities.MembershipActive {
					activeOwners++
				}
			}
			if activeOwners == 0 {
				t.Fatalf("trial %d step %d: organization lost its last active owner", trial, step)
			}
		}
	}
}
