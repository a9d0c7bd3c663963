package commands

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"grantstw/contexts/grant-portfolio/drafting-service/adapters/memory"
	"grantstw/contexts/grant-portfolio/drafting-service/application/queries"
	"grantstw/contexts/grant-portfolio/drafting-service/domain/entities"
	domainerrors "grantstw/contexts/grant-portfolio/drafting-service/domain/errors"
	"grantstw/contexts/grant-portfolio/drafting-service/domain/services"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now.UTC()
}

type allowAllAuthorizer struct{}

func (allowAllAuthorizer) AuthorizeAction(_ context.Context, _ string, _ bool, _ string, _ string) (bool, string, error) {
	return true, "role_allowed", nil
}

type denyAllAuthorizer struct{}

func (denyAllAuthorizer) AuthorizeAction(_ context.Context, _ string, _ bool, _ string, _ string) (bool, string, error) {
	return false, "insufficient role", nil
}

type fixtures struct {
	store *memory.Store
	now   time.Time
}

func newFixtures(t *testing.T) fixtures {
	t.Helper()
	store := memory.NewStore()
	store.SeedOrgContext("org-1", services.OrgContext{
		Name:      "Rivertown Youth Alliance",
		Region:    "Rivertown County",
		Mission:   "Every young person thrives",
		FocusTags: []string{"education", "youth"},
	})
	store.SeedGrantContext("grant-1", services.GrantContext{
		Name:   "Community Education Fund",
		Funder: "Bright Futures Foundation",
		Tags:   []string{"education"},
	})
	return fixtures{
		store: store,
		now:   time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC),
	}
}

func (f fixtures) create() CreateDraftUseCase {
	return CreateDraftUseCase{
		Repository:    f.store,
		Organizations: f.store,
		Grants:        f.store,
		Authorizer:    allowAllAuthorizer{},
		Clock:         fixedClock{now: f.now},
		IDGenerator:   f.store,
	}
}

func (f fixtures) append() AppendVersionUseCase {
	return AppendVersionUseCase{
		Repository:  f.store,
		Authorizer:  allowAllAuthorizer{},
		Clock:       fixedClock{now: f.now},
		IDGenerator: f.store,
	}
}

func (f fixtures) rollback() RollbackDraftUseCase {
	return RollbackDraftUseCase{
		Repository: f.store,
		Authorizer: allowAllAuthorizer{},
		Clock:      fixedClock{now: f.now},
	}
}

func (f fixtures) createDraft(t *testing.T) CreateDraftResult {
	t.Helper()
	result, err := f.create().Execute(context.Background(), CreateDraftCommand{
		ActorID: "writer-1",
		OrgID:   "org-1",
		GrantID: "grant-1",
		Title:   "Education Fund Proposal",
	})
	if err != nil {
		t.Fatalf("create draft failed: %v", err)
	}
	return result
}

func (f fixtures) appendVersion(t *testing.T, draftID string, marker string) entities.DraftVersion {
	t.Helper()
	version, err := f.append().Execute(context.Background(), AppendVersionCommand{
		ActorID:  "writer-1",
		OrgID:    "org-1",
		DraftID:  draftID,
		Sections: entities.DraftSections{CoverLetter: marker},
		Note:     marker,
	})
	if err != nil {
		t.Fatalf("append version failed: %v", err)
	}
	return version
}

func TestCreateDraftSeedsComposerSections(t *testing.T) {
	f := newFixtures(t)

	result := f.createDraft(t)
	if result.Version.VersionNumber != 1 {
		t.Fatalf("expected version one, got %d", result.Version.VersionNumber)
	}
	if result.Draft.CurrentVersionID != result.Version.VersionID {
		t.Fatalf("expected head to point at version one")
	}
	if !strings.Contains(result.Version.Sections.CoverLetter, "Bright Futures Foundation") {
		t.Fatalf("expected composed cover letter, got %q", result.Version.Sections.CoverLetter)
	}
	if len(result.Version.Sections.Attachments) == 0 {
		t.Fatalf("expected default attachments on seeded sections")
	}
}

func TestCreateDraftKeepsCallerSections(t *testing.T) {
	f := newFixtures(t)

	sections := entities.DraftSections{CoverLetter: "hand-written opening"}
	result, err := f.create().Execute(context.Background(), CreateDraftCommand{
		ActorID:  "writer-1",
		OrgID:    "org-1",
		GrantID:  "grant-1",
		Title:    "Custom Proposal",
		Sections: &sections,
	})
	if err != nil {
		t.Fatalf("create draft failed: %v", err)
	}
	if result.Version.Sections.CoverLetter != "hand-written opening" {
		t.Fatalf("expected caller sections kept, got %q", result.Version.Sections.CoverLetter)
	}
}

func TestCreateDraftDenied(t *testing.T) {
	f := newFixtures(t)
	create := f.create()
	create.Authorizer = denyAllAuthorizer{}

	_, err := create.Execute(context.Background(), CreateDraftCommand{
		ActorID: "viewer-1",
		OrgID:   "org-1",
		GrantID: "grant-1",
		Title:   "Should Fail",
	})
	if !errors.Is(err, domainerrors.ErrPermissionDenied) {
		t.Fatalf("expected permission denied, got %v", err)
	}
}

func TestAppendVersionNumbersDensely(t *testing.T) {
	f := newFixtures(t)
	result := f.createDraft(t)

	second := f.appendVersion(t, result.Draft.DraftID, "revision two")
	third := f.appendVersion(t, result.Draft.DraftID, "revision three")

	if second.VersionNumber != 2 || third.VersionNumber != 3 {
		t.Fatalf("expected dense numbering 2,3, got %d,%d", second.VersionNumber, third.VersionNumber)
	}
	if second.ParentVersionID != result.Version.VersionID {
		t.Fatalf("expected version two to point at version one")
	}
	if third.ParentVersionID != second.VersionID {
		t.Fatalf("expected version three to point at version two")
	}
}

func TestAppendVersionBranchesFromEarlierVersion(t *testing.T) {
	f := newFixtures(t)
	result := f.createDraft(t)
	f.appendVersion(t, result.Draft.DraftID, "revision two")

	// Branching directly from version one needs no prior rollback.
	branched, err := f.append().Execute(context.Background(), AppendVersionCommand{
		ActorID:          "writer-1",
		OrgID:            "org-1",
		DraftID:          result.Draft.DraftID,
		BasedOnVersionID: result.Version.VersionID,
		Sections:         entities.DraftSections{CoverLetter: "fresh start"},
	})
	if err != nil {
		t.Fatalf("branched append failed: %v", err)
	}
	if branched.VersionNumber != 3 {
		t.Fatalf("expected version number 3, got %d", branched.VersionNumber)
	}
	if branched.ParentVersionID != result.Version.VersionID {
		t.Fatalf("expected parent %q, got %q", result.Version.VersionID, branched.ParentVersionID)
	}

	draft, err := f.store.GetDraft(context.Background(), result.Draft.DraftID)
	if err != nil {
		t.Fatalf("get draft failed: %v", err)
	}
	if draft.CurrentVersionID != branched.VersionID {
		t.Fatalf("expected head moved to the branched version")
	}
}

func TestAppendVersionRejectsCrossDraftBase(t *testing.T) {
	f := newFixtures(t)
	first := f.createDraft(t)
	second, err := f.create().Execute(context.Background(), CreateDraftCommand{
		ActorID: "writer-1",
		OrgID:   "org-1",
		GrantID: "grant-1",
		Title:   "Second Proposal",
	})
	if err != nil {
		t.Fatalf("create second draft failed: %v", err)
	}

	_, err = f.append().Execute(context.Background(), AppendVersionCommand{
		ActorID:          "writer-1",
		OrgID:            "org-1",
		DraftID:          first.Draft.DraftID,
		BasedOnVersionID: second.Version.VersionID,
		Sections:         entities.DraftSections{CoverLetter: "stolen base"},
	})
	if !errors.Is(err, domainerrors.ErrCrossDraftVersion) {
		t.Fatalf("expected cross-draft rejection, got %v", err)
	}

	versions, err := f.store.ListVersions(context.Background(), first.Draft.DraftID)
	if err != nil {
		t.Fatalf("list versions failed: %v", err)
	}
	if len(versions) != 1 {
		t.Fatalf("expected rejected append to write nothing, got %d versions", len(versions))
	}
}

func TestAppendVersionUnknownBaseVersion(t *testing.T) {
	f := newFixtures(t)
	result := f.createDraft(t)

	_, err := f.append().Execute(context.Background(), AppendVersionCommand{
		ActorID:          "writer-1",
		OrgID:            "org-1",
		DraftID:          result.Draft.DraftID,
		BasedOnVersionID: "missing",
		Sections:         entities.DraftSections{CoverLetter: "dangling base"},
	})
	if !errors.Is(err, domainerrors.ErrVersionNotFound) {
		t.Fatalf("expected version not found, got %v", err)
	}
}

func TestRollbackMovesHeadOnly(t *testing.T) {
	f := newFixtures(t)
	result := f.createDraft(t)
	f.appendVersion(t, result.Draft.DraftID, "revision two")

	rolled, err := f.rollback().Execute(context.Background(), RollbackDraftCommand{
		ActorID:   "writer-1",
		OrgID:     "org-1",
		DraftID:   result.Draft.DraftID,
		VersionID: result.Version.VersionID,
	})
	if err != nil {
		t.Fatalf("rollback failed: %v", err)
	}
	if rolled.CurrentVersionID != result.Version.VersionID {
		t.Fatalf("expected head moved to version one")
	}

	versions, err := f.store.ListVersions(context.Background(), result.Draft.DraftID)
	if err != nil {
		t.Fatalf("list versions failed: %v", err)
	}
	if len(versions) != 2 {
		t.Fatalf("expected both versions retained after rollback, got %d", len(versions))
	}

	// Appending after the rollback branches from the restored head but keeps
	// numbering from the maximum ever stored.
	third := f.appendVersion(t, result.Draft.DraftID, "revision three")
	if third.VersionNumber != 3 {
		t.Fatalf("expected version number 3 after rollback, got %d", third.VersionNumber)
	}
	if third.ParentVersionID != result.Version.VersionID {
		t.Fatalf("expected new version to branch from the rolled-back head")
	}
}

func TestRollbackUnknownVersion(t *testing.T) {
	f := newFixtures(t)
	result := f.createDraft(t)

	_, err := f.rollback().Execute(context.Background(), RollbackDraftCommand{
		ActorID:   "writer-1",
		OrgID:     "org-1",
		DraftID:   result.Draft.DraftID,
		VersionID: "missing",
	})
	if !errors.Is(err, domainerrors.ErrVersionNotFound) {
		t.Fatalf("expected version not found, got %v", err)
	}
}

func TestAppendVersionRejectsForeignOrg(t *testing.T) {
	f := newFixtures(t)
	result := f.createDraft(t)

	_, err := f.append().Execute(context.Background(), AppendVersionCommand{
		ActorID:  "writer-2",
		OrgID:    "org-2",
		DraftID:  result.Draft.DraftID,
		Sections: entities.DraftSections{CoverLetter: "cross-org write"},
	})
	if !errors.Is(err, domainerrors.ErrDraftNotFound) {
		t.Fatalf("expected draft hidden from foreign org, got %v", err)
	}
}

func TestLineageQueryAndCorruptionDetection(t *testing.T) {
	f := newFixtures(t)
	result := f.createDraft(t)
	second := f.appendVersion(t, result.Draft.DraftID, "revision two")
	third := f.appendVersion(t, result.Draft.DraftID, "revision three")

	lineage := queries.GetLineageUseCase{
		Repository: f.store,
		Authorizer: allowAllAuthorizer{},
	}
	got, err := lineage.Execute(context.Background(), queries.GetLineageQuery{
		ActorID: "writer-1",
		OrgID:   "org-1",
		DraftID: result.Draft.DraftID,
	})
	if err != nil {
		t.Fatalf("lineage failed: %v", err)
	}
	if len(got.Chain) != 3 {
		t.Fatalf("expected chain of 3, got %d", len(got.Chain))
	}
	if got.Chain[0].VersionID != third.VersionID || got.Chain[2].VersionID != result.Version.VersionID {
		t.Fatalf("expected head-first chain, got %v", got.Chain)
	}

	f.store.CorruptVersionParent(result.Draft.DraftID, result.Version.VersionID, second.VersionID)
	if _, err := lineage.Execute(context.Background(), queries.GetLineageQuery{
		ActorID: "writer-1",
		OrgID:   "org-1",
		DraftID: result.Draft.DraftID,
	}); !errors.Is(err, domainerrors.ErrLineageCorrupt) {
		t.Fatalf("expected lineage corruption, got %v", err)
	}
}
