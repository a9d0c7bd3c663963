package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	"grantstw/contexts/grant-portfolio/matching-engine/adapters/memory"
	"grantstw/contexts/grant-portfolio/matching-engine/domain/entities"
	domainerrors "grantstw/contexts/grant-portfolio/matching-engine/domain/errors"
	"grantstw/contexts/grant-portfolio/matching-engine/domain/services"
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
	return fixtures{
		store: memory.NewStore(),
		now:   time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC),
	}
}

func (f fixtures) ingest(t *testing.T, grants ...GrantInput) IngestGrantsResult {
	t.Helper()
	ingest := IngestGrantsUseCase{
		Repository:  f.store,
		Authorizer:  allowAllAuthorizer{},
		Clock:       fixedClock{now: f.now},
		IDGenerator: f.store,
	}
	result, err := ingest.Execute(context.Background(), IngestGrantsCommand{
		ActorID:       "platform-ops",
		PlatformAdmin: true,
		Grants:        grants,
	})
	if err != nil {
		t.Fatalf("ingest failed: %v", err)
	}
	return result
}

func (f fixtures) compute() ComputeMatchUseCase {
	return ComputeMatchUseCase{
		Repository:    f.store,
		Organizations: f.store,
		Authorizer:    allowAllAuthorizer{},
		Clock:         fixedClock{now: f.now},
		IDGenerator:   f.store,
		Weights:       services.DefaultWeights(),
	}
}

func TestIngestGrantsCreatesAndUpdatesByExternalID(t *testing.T) {
	f := newFixtures(t)
	deadline := f.now.Add(60 * 24 * time.Hour)

	first := f.ingest(t, GrantInput{
		ExternalID: "feed-1",
		Name:       "Community Education Fund",
		Tags:       []string{"Education", "education", " youth "},
		Deadline:   deadline,
	})
	if first.Created != 1 || first.Updated != 0 {
		t.Fatalf("expected 1 created, got %+v", first)
	}

	grants, err := f.store.ListGrants(context.Background())
	if err != nil {
		t.Fatalf("list grants failed: %v", err)
	}
	if len(grants) != 1 {
		t.Fatalf("expected one grant, got %d", len(grants))
	}
	originalID := grants[0].GrantID
	if len(grants[0].Tags) != 2 {
		t.Fatalf("expected deduplicated tags, got %v", grants[0].Tags)
	}
	if grants[0].Status != entities.GrantOpen {
		t.Fatalf("expected open status, got %s", grants[0].Status)
	}

	second := f.ingest(t, GrantInput{
		ExternalID: "feed-1",
		Name:       "Community Education Fund (2026)",
		Deadline:   deadline,
	})
	if second.Created != 0 || second.Updated != 1 {
		t.Fatalf("expected 1 updated, got %+v", second)
	}
	grants, _ = f.store.ListGrants(context.Background())
	if len(grants) != 1 || grants[0].GrantID != originalID {
		t.Fatalf("expected update to keep grant identity, got %+v", grants)
	}
	if grants[0].Name != "Community Education Fund (2026)" {
		t.Fatalf("expected updated name, got %s", grants[0].Name)
	}
}

func TestIngestGrantsDeniedWithoutPlatformAdmin(t *testing.T) {
	f := newFixtures(t)
	ingest := IngestGrantsUseCase{
		Repository:  f.store,
		Authorizer:  denyAllAuthorizer{},
		Clock:       fixedClock{now: f.now},
		IDGenerator: f.store,
	}
	_, err := ingest.Execute(context.Background(), IngestGrantsCommand{
		ActorID: "member-1",
		Grants: []GrantInput{{
			ExternalID: "feed-2",
			Name:       "Any Fund",
			Deadline:   f.now.Add(time.Hour),
		}},
	})
	if !errors.Is(err, domainerrors.ErrPermissionDenied) {
		t.Fatalf("expected permission denied, got %v", err)
	}
}

func TestComputeMatchWorkedExample(t *testing.T) {
	f := newFixtures(t)
	f.store.SeedOrgProfile(entities.OrgProfile{
		OrgID:        "org-1",
		FocusTags:    []string{"education"},
		FitEmbedding: []float32{1, 0},
	})
	f.ingest(t, GrantInput{
		ExternalID: "feed-1",
		Name:       "STEM Fund",
		Tags:       []string{"education", "health"},
		Deadline:   f.now.Add(30 * 24 * time.Hour),
		Embedding:  []float32{0.5, 0.8660254},
	})
	grants, _ := f.store.ListGrants(context.Background())

	match, err := f.compute().Execute(context.Background(), ComputeMatchCommand{
		ActorID: "actor-1",
		OrgID:   "org-1",
		GrantID: grants[0].GrantID,
	})
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}
	if match.Score != 50 {
		t.Fatalf("expected score 50, got %v", match.Score)
	}
	if match.Factors.CategoricalOverlap != 0.5 || match.Factors.SemanticSimilarity != 0.5 {
		t.Fatalf("unexpected factors: %+v", match.Factors)
	}
}

func TestComputeMatchHonorsConfiguredZeroWeights(t *testing.T) {
	f := newFixtures(t)
	f.store.SeedOrgProfile(entities.OrgProfile{
		OrgID:        "org-1",
		FocusTags:    []string{"education"},
		FitEmbedding: []float32{1, 0},
	})
	f.ingest(t, GrantInput{
		ExternalID: "feed-1",
		Name:       "STEM Fund",
		Tags:       []string{"education"},
		Deadline:   f.now.Add(30 * 24 * time.Hour),
		Embedding:  []float32{1, 0},
	})
	grants, _ := f.store.ListGrants(context.Background())

	// Weights come through as wired; a zero pair is a configuration, not a
	// request for the defaults.
	compute := f.compute()
	compute.Weights = services.Weights{}

	match, err := compute.Execute(context.Background(), ComputeMatchCommand{
		ActorID: "actor-1",
		OrgID:   "org-1",
		GrantID: grants[0].GrantID,
	})
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}
	if match.Score != 0 {
		t.Fatalf("expected zero weights to yield score 0, got %v", match.Score)
	}
}

func TestComputeMatchPreservesViewedFlagAndIdentity(t *testing.T) {
	f := newFixtures(t)
	f.store.SeedOrgProfile(entities.OrgProfile{
		OrgID:        "org-1",
		FocusTags:    []string{"education"},
		FitEmbedding: []float32{1, 0},
	})
	f.ingest(t, GrantInput{
		ExternalID: "feed-1",
		Name:       "STEM Fund",
		Tags:       []string{"education"},
		Deadline:   f.now.Add(30 * 24 * time.Hour),
		Embedding:  []float32{1, 0},
	})
	grants, _ := f.store.ListGrants(context.Background())
	grantID := grants[0].GrantID

	first, err := f.compute().Execute(context.Background(), ComputeMatchCommand{
		ActorID: "actor-1",
		OrgID:   "org-1",
		GrantID: grantID,
	})
	if err != nil {
		t.Fatalf("first compute failed: %v", err)
	}

	markViewed := MarkMatchViewedUseCase{
		Repository: f.store,
		Authorizer: allowAllAuthorizer{},
		Clock:      fixedClock{now: f.now},
	}
	if _, err := markViewed.Execute(context.Background(), MarkMatchViewedCommand{
		ActorID: "actor-1",
		OrgID:   "org-1",
		GrantID: grantID,
	}); err != nil {
		t.Fatalf("mark viewed failed: %v", err)
	}

	second, err := f.compute().Execute(context.Background(), ComputeMatchCommand{
		ActorID: "actor-1",
		OrgID:   "org-1",
		GrantID: grantID,
	})
	if err != nil {
		t.Fatalf("second compute failed: %v", err)
	}
	if second.MatchID != first.MatchID {
		t.Fatalf("expected recompute to keep match identity")
	}
	if !second.UserViewed {
		t.Fatalf("expected recompute to preserve the viewed flag")
	}
}

func TestComputeMatchDenied(t *testing.T) {
	f := newFixtures(t)
	compute := f.compute()
	compute.Authorizer = denyAllAuthorizer{}
	_, err := compute.Execute(context.Background(), ComputeMatchCommand{
		ActorID: "viewer-1",
		OrgID:   "org-1",
		GrantID: "grant-1",
	})
	if !errors.Is(err, domainerrors.ErrPermissionDenied) {
		t.Fatalf("expected permission denied, got %v", err)
	}
}

func TestRefreshMatchesScoresAllOpenGrants(t *testing.T) {
	f := newFixtures(t)
	f.store.SeedOrgProfile(entities.OrgProfile{
		OrgID:        "org-1",
		FocusTags:    []string{"education"},
		FitEmbedding: []float32{1, 0},
	})
	f.ingest(t,
		GrantInput{
			ExternalID: "feed-open-1",
			Name:       "Open Fund A",
			Tags:       []string{"education"},
			Deadline:   f.now.Add(40 * 24 * time.Hour),
			Embedding:  []float32{1, 0},
		},
		GrantInput{
			ExternalID: "feed-open-2",
			Name:       "Open Fund B",
			Tags:       []string{"health"},
			Deadline:   f.now.Add(50 * 24 * time.Hour),
			Embedding:  []float32{0, 1},
		},
		GrantInput{
			ExternalID: "feed-closed",
			Name:       "Closed Fund",
			Tags:       []string{"education"},
			Deadline:   f.now.Add(-24 * time.Hour),
			Embedding:  []float32{1, 0},
		},
	)

	refresh := RefreshMatchesUseCase{Compute: f.compute()}
	result, err := refresh.Execute(context.Background(), RefreshMatchesCommand{
		ActorID: "actor-1",
		OrgID:   "org-1",
	})
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if result.Computed != 2 {
		t.Fatalf("expected 2 computed matches, got %+v", result)
	}

	ranked, err := f.store.ListRankedMatches(context.Background(), "org-1")
	if err != nil {
		t.Fatalf("list ranked failed: %v", err)
	}
	if len(ranked) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(ranked))
	}
}

func TestRefreshMatchesStopsOnCancelledContext(t *testing.T) {
	f := newFixtures(t)
	f.store.SeedOrgProfile(entities.OrgProfile{
		OrgID:        "org-1",
		FitEmbedding: []float32{1, 0},
	})
	f.ingest(t, GrantInput{
		ExternalID: "feed-1",
		Name:       "Fund",
		Deadline:   f.now.Add(time.Hour),
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	refresh := RefreshMatchesUseCase{Compute: f.compute()}
	_, err := refresh.Execute(ctx, RefreshMatchesCommand{ActorID: "actor-1", OrgID: "org-1"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
}

func TestAssignmentLifecycle(t *testing.T) {
	f := newFixtures(t)
	f.ingest(t, GrantInput{
		ExternalID: "feed-1",
		Name:       "Fund",
		Deadline:   f.now.Add(30 * 24 * time.Hour),
	})
	grants, _ := f.store.ListGrants(context.Background())
	grantID := grants[0].GrantID

	create := CreateAssignmentUseCase{
		Repository:  f.store,
		Authorizer:  allowAllAuthorizer{},
		Clock:       fixedClock{now: f.now},
		IDGenerator: f.store,
	}
	assignment, err := create.Execute(context.Background(), CreateAssignmentCommand{
		ActorID: "actor-1",
		OrgID:   "org-1",
		GrantID: grantID,
	})
	if err != nil {
		t.Fatalf("create assignment failed: %v", err)
	}
	if assignment.Status != entities.AssignmentRecommended {
		t.Fatalf("expected recommended status, got %s", assignment.Status)
	}

	if _, err := create.Execute(context.Background(), CreateAssignmentCommand{
		ActorID: "actor-1",
		OrgID:   "org-1",
		GrantID: grantID,
	}); !errors.Is(err, domainerrors.ErrAssignmentExists) {
		t.Fatalf("expected duplicate assignment error, got %v", err)
	}

	transition := TransitionAssignmentUseCase{
		Repository: f.store,
		Authorizer: allowAllAuthorizer{},
		Clock:      fixedClock{now: f.now},
	}
	for _, status := range []entities.AssignmentStatus{
		entities.AssignmentQualified,
		entities.AssignmentDrafting,
		entities.AssignmentInReview,
		entities.AssignmentSubmitted,
		entities.AssignmentWon,
	} {
		assignment, err = transition.Execute(context.Background(), TransitionAssignmentCommand{
			ActorID: "actor-1",
			OrgID:   "org-1",
			GrantID: grantID,
			To:      status,
		})
		if err != nil {
			t.Fatalf("transition to %s failed: %v", status, err)
		}
	}
	if assignment.Status != entities.AssignmentWon {
		t.Fatalf("expected won status, got %s", assignment.Status)
	}

	if _, err := transition.Execute(context.Background(), TransitionAssignmentCommand{
		ActorID: "actor-1",
		OrgID:   "org-1",
		GrantID: grantID,
		To:      entities.AssignmentDrafting,
	}); !errors.Is(err, domainerrors.ErrInvalidTransition) {
		t.Fatalf("expected invalid transition error, got %v", err)
	}
}
