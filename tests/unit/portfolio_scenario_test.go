package unit

import (
	"context"
	"errors"
	"testing"
	"time"

	drafting "grantstw/contexts/grant-portfolio/drafting-service"
	draftingerrors "grantstw/contexts/grant-portfolio/drafting-service/domain/errors"
	draftingservices "grantstw/contexts/grant-portfolio/drafting-service/domain/services"
	draftinghttp "grantstw/contexts/grant-portfolio/drafting-service/transport/http"
	matching "grantstw/contexts/grant-portfolio/matching-engine"
	matchingentities "grantstw/contexts/grant-portfolio/matching-engine/domain/entities"
	matchinghttp "grantstw/contexts/grant-portfolio/matching-engine/transport/http"
	membership "grantstw/contexts/identity-access/membership-service"
	membershipentities "grantstw/contexts/identity-access/membership-service/domain/entities"
	membershiperrors "grantstw/contexts/identity-access/membership-service/domain/errors"
	membershiphttp "grantstw/contexts/identity-access/membership-service/transport/http"
)

// portfolioFixture wires the three modules the way bootstrap does: the
// membership access gate authorizes matching and drafting operations.
type portfolioFixture struct {
	membership membership.Module
	matching   matching.Module
	drafting   drafting.Module
	orgID      string
}

func newPortfolioFixture(t *testing.T) *portfolioFixture {
	t.Helper()

	membershipModule := membership.NewInMemoryModule(nil)
	matchingModule := matching.NewInMemoryModule(membershipModule.Gate, nil, nil)
	draftingModule := drafting.NewInMemoryModule(membershipModule.Gate, nil)

	owner := membershipentities.Actor{ID: "owner-1"}
	created, err := membershipModule.Handler.CreateOrganizationHandler(context.Background(), owner, membershiphttp.CreateOrganizationRequest{
		RegistryKey: "reg-100",
		Name:        "Rivertown Youth Alliance",
		Region:      "Rivertown County",
		Mission:     "Every young person thrives",
		FocusTags:   []string{"education", "youth"},
	})
	if err != nil {
		t.Fatalf("create organization failed: %v", err)
	}
	orgID := created.Organization.OrgID

	for _, invite := range []membershiphttp.InviteMemberRequest{
		{TargetActorID: "writer-1", Role: "writer"},
		{TargetActorID: "viewer-1", Role: "viewer"},
	} {
		if _, err := membershipModule.Handler.InviteMemberHandler(context.Background(), owner, orgID, invite); err != nil {
			t.Fatalf("invite %s failed: %v", invite.TargetActorID, err)
		}
		if _, err := membershipModule.Handler.SetMemberStatusHandler(context.Background(), owner, orgID, membershiphttp.SetMemberStatusRequest{
			TargetActorID: invite.TargetActorID,
			Status:        "active",
		}); err != nil {
			t.Fatalf("activate %s failed: %v", invite.TargetActorID, err)
		}
	}

	draftingModule.Store.SeedOrgContext(orgID, draftingservices.OrgContext{
		Name:      "Rivertown Youth Alliance",
		Region:    "Rivertown County",
		Mission:   "Every young person thrives",
		FocusTags: []string{"education", "youth"},
	})
	draftingModule.Store.SeedGrantContext("grant-1", draftingservices.GrantContext{
		Name:   "Community Education Fund",
		Funder: "Bright Futures Foundation",
		Tags:   []string{"education"},
	})

	return &portfolioFixture{
		membership: membershipModule,
		matching:   matchingModule,
		drafting:   draftingModule,
		orgID:      orgID,
	}
}

func TestViewerDeniedWriterAllowedOnDrafts(t *testing.T) {
	f := newPortfolioFixture(t)

	_, err := f.drafting.Handler.CreateDraftHandler(context.Background(), "viewer-1", false, f.orgID, draftinghttp.CreateDraftRequest{
		GrantID: "grant-1",
		Title:   "Viewer Attempt",
	})
	if !errors.Is(err, draftingerrors.ErrPermissionDenied) {
		t.Fatalf("expected viewer denied, got %v", err)
	}

	created, err := f.drafting.Handler.CreateDraftHandler(context.Background(), "writer-1", false, f.orgID, draftinghttp.CreateDraftRequest{
		GrantID: "grant-1",
		Title:   "Education Fund Proposal",
	})
	if err != nil {
		t.Fatalf("writer create draft failed: %v", err)
	}

	_, err = f.drafting.Handler.AppendVersionHandler(context.Background(), "viewer-1", false, f.orgID, created.Draft.DraftID, draftinghttp.AppendVersionRequest{
		Sections: draftinghttp.DraftSectionsDTO{CoverLetter: "viewer edit"},
	})
	if !errors.Is(err, draftingerrors.ErrPermissionDenied) {
		t.Fatalf("expected viewer denied on append, got %v", err)
	}

	version, err := f.drafting.Handler.AppendVersionHandler(context.Background(), "writer-1", false, f.orgID, created.Draft.DraftID, draftinghttp.AppendVersionRequest{
		Sections: draftinghttp.DraftSectionsDTO{CoverLetter: "writer revision"},
		Note:     "tightened intro",
	})
	if err != nil {
		t.Fatalf("writer append failed: %v", err)
	}
	if version.VersionNumber != 2 {
		t.Fatalf("expected version two, got %d", version.VersionNumber)
	}

	lineage, err := f.drafting.Handler.GetLineageHandler(context.Background(), "viewer-1", false, f.orgID, created.Draft.DraftID)
	if err != nil {
		t.Fatalf("viewer lineage read failed: %v", err)
	}
	if len(lineage.Chain) != 2 {
		t.Fatalf("expected chain of 2, got %d", len(lineage.Chain))
	}
}

func TestSuspendingOnlyActiveOwnerFails(t *testing.T) {
	f := newPortfolioFixture(t)

	owner := membershipentities.Actor{ID: "owner-1"}
	_, err := f.membership.Handler.SetMemberStatusHandler(context.Background(), owner, f.orgID, membershiphttp.SetMemberStatusRequest{
		TargetActorID: "owner-1",
		Status:        "suspended",
	})
	if !errors.Is(err, membershiperrors.ErrLastOwner) {
		t.Fatalf("expected last-owner protection, got %v", err)
	}

	members, err := f.membership.Handler.ListMembersHandler(context.Background(), owner, f.orgID)
	if err != nil {
		t.Fatalf("list members failed: %v", err)
	}
	for _, member := range members.Members {
		if member.ActorID == "owner-1" && member.Status != "active" {
			t.Fatalf("owner row mutated despite rejected suspension: %+v", member)
		}
	}
}

func TestMatchComputeAcrossModules(t *testing.T) {
	f := newPortfolioFixture(t)

	f.matching.Store.SeedOrgProfile(matchingentities.OrgProfile{
		OrgID:     f.orgID,
		Name:      "Rivertown Youth Alliance",
		FocusTags: []string{"education", "youth"},
	})

	ingest := matchinghttp.IngestGrantsRequest{
		Grants: []matchinghttp.IngestGrantDTO{{
			ExternalID:  "feed-1",
			Name:        "Community Education Fund",
			Tags:        []string{"education"},
			Description: "education programs for youth",
			Deadline:    time.Date(2027, 6, 1, 0, 0, 0, 0, time.UTC),
		}},
	}
	if _, err := f.matching.Handler.IngestGrantsHandler(context.Background(), "platform-ops", true, ingest); err != nil {
		t.Fatalf("ingest failed: %v", err)
	}

	grants, err := f.matching.Handler.ListGrantsHandler(context.Background(), "owner-1", false, false)
	if err != nil {
		t.Fatalf("list grants failed: %v", err)
	}
	if len(grants.Grants) != 1 {
		t.Fatalf("expected one grant, got %d", len(grants.Grants))
	}

	match, err := f.matching.Handler.ComputeMatchHandler(context.Background(), "owner-1", false, f.orgID, matchinghttp.ComputeMatchRequest{
		GrantID: grants.Grants[0].GrantID,
	})
	if err != nil {
		t.Fatalf("compute match failed: %v", err)
	}
	if match.Score < 0 || match.Score > 100 {
		t.Fatalf("score out of range: %v", match.Score)
	}
	if match.Factors.CategoricalOverlap != 1.0 {
		t.Fatalf("expected full overlap, got %v", match.Factors.CategoricalOverlap)
	}

	_, err = f.matching.Handler.ComputeMatchHandler(context.Background(), "viewer-1", false, f.orgID, matchinghttp.ComputeMatchRequest{
		GrantID: grants.Grants[0].GrantID,
	})
	if err == nil {
		t.Fatalf("expected viewer denied on compute")
	}
}
