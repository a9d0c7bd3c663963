package workers

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"grantstw/contexts/grant-portfolio/matching-engine/adapters/memory"
	"grantstw/contexts/grant-portfolio/matching-engine/application/commands"
	"grantstw/contexts/grant-portfolio/matching-engine/domain/entities"
	"grantstw/contexts/grant-portfolio/matching-engine/domain/services"
	"grantstw/internal/shared/events"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now.UTC()
}

type allowAllAuthorizer struct{}

func (allowAllAuthorizer) AuthorizeAction(_ context.Context, _ string, _ bool, _ string, _ string) (bool, string, error) {
	return true, "platform_admin", nil
}

type capturingPublisher struct {
	published []events.Envelope
}

func (p *capturingPublisher) Publish(_ context.Context, _ string, event events.Envelope) error {
	p.published = append(p.published, event)
	return nil
}

func seedGrant(t *testing.T, store *memory.Store, now time.Time, externalID string, deadline time.Time, embedding []float32) string {
	t.Helper()
	ingest := commands.IngestGrantsUseCase{
		Repository:  store,
		Authorizer:  allowAllAuthorizer{},
		Clock:       fixedClock{now: now},
		IDGenerator: store,
	}
	if _, err := ingest.Execute(context.Background(), commands.IngestGrantsCommand{
		ActorID:       "platform-ops",
		PlatformAdmin: true,
		Grants: []commands.GrantInput{{
			ExternalID: externalID,
			Name:       "Fund " + externalID,
			Tags:       []string{"education"},
			Deadline:   deadline,
			Embedding:  embedding,
		}},
	}); err != nil {
		t.Fatalf("seed grant failed: %v", err)
	}
	grants, err := store.ListGrants(context.Background())
	if err != nil {
		t.Fatalf("list grants failed: %v", err)
	}
	for _, grant := range grants {
		if grant.ExternalID == externalID {
			return grant.GrantID
		}
	}
	t.Fatalf("seeded grant not found")
	return ""
}

func TestGrantStatusSweeperTransitions(t *testing.T) {
	now := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	store := memory.NewStore()

	openID := seedGrant(t, store, now, "feed-open", now.Add(60*24*time.Hour), nil)
	soonID := seedGrant(t, store, now.Add(-30*24*time.Hour), "feed-soon", now.Add(5*24*time.Hour), nil)
	pastID := seedGrant(t, store, now.Add(-30*24*time.Hour), "feed-past", now.Add(-time.Hour), nil)

	sweeper := GrantStatusSweeper{
		Repository:        store,
		Clock:             fixedClock{now: now},
		ClosingSoonWindow: 14 * 24 * time.Hour,
	}
	if err := sweeper.RunOnce(context.Background()); err != nil {
		t.Fatalf("sweep failed: %v", err)
	}

	assertStatus := func(id string, want entities.GrantStatus) {
		t.Helper()
		grant, err := store.GetGrant(context.Background(), id)
		if err != nil {
			t.Fatalf("get grant failed: %v", err)
		}
		if grant.Status != want {
			t.Fatalf("expected %s for %s, got %s", want, grant.ExternalID, grant.Status)
		}
	}
	assertStatus(openID, entities.GrantOpen)
	assertStatus(soonID, entities.GrantClosingSoon)
	assertStatus(pastID, entities.GrantClosed)
}

func TestMatchRefreshSweeperAndOutboxRelay(t *testing.T) {
	now := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	store := memory.NewStore()
	store.SeedOrgProfile(entities.OrgProfile{
		OrgID:        "org-1",
		FocusTags:    []string{"education"},
		FitEmbedding: []float32{1, 0},
	})
	seedGrant(t, store, now, "feed-1", now.Add(30*24*time.Hour), []float32{1, 0})

	refresh := commands.RefreshMatchesUseCase{
		Compute: commands.ComputeMatchUseCase{
			Repository:    store,
			Organizations: store,
			Authorizer:    allowAllAuthorizer{},
			Clock:         fixedClock{now: now},
			IDGenerator:   store,
			Weights:       services.DefaultWeights(),
		},
	}
	sweeper := MatchRefreshSweeper{
		Organizations: store,
		Refresh:       refresh,
	}
	if err := sweeper.RunOnce(context.Background()); err != nil {
		t.Fatalf("refresh sweep failed: %v", err)
	}

	pending, err := store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("list outbox failed: %v", err)
	}
	if len(pending) == 0 {
		t.Fatalf("expected pending match.updated events")
	}
	var envelope events.Envelope
	if err := json.Unmarshal(pending[0].Payload, &envelope); err != nil {
		t.Fatalf("decode envelope failed: %v", err)
	}
	if envelope.EventType != "match.updated" {
		t.Fatalf("expected match.updated event, got %s", envelope.EventType)
	}

	publisher := &capturingPublisher{}
	relay := OutboxRelay{
		Outbox:    store,
		Publisher: publisher,
		Clock:     fixedClock{now: now},
		BatchSize: 10,
	}
	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("relay failed: %v", err)
	}
	if len(publisher.published) != len(pending) {
		t.Fatalf("expected %d published events, got %d", len(pending), len(publisher.published))
	}

	remaining, err := store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("list outbox failed: %v", err)
	}
	if len(remaining) != 0 {
		t.Fatalf("expected outbox drained, got %d pending", len(remaining))
	}
}

func TestSweepersRespectDisabledFlag(t *testing.T) {
	now := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	store := memory.NewStore()
	pastID := seedGrant(t, store, now.Add(-30*24*time.Hour), "feed-past", now.Add(-time.Hour), nil)
	// Re-open manually so the disabled sweeper has something it would change.
	grant, _ := store.GetGrant(context.Background(), pastID)
	grant.Status = entities.GrantOpen
	if _, _, err := store.UpsertGrant(context.Background(), grant); err != nil {
		t.Fatalf("reseed failed: %v", err)
	}

	sweeper := GrantStatusSweeper{
		Repository: store,
		Clock:      fixedClock{now: now},
		Disabled:   true,
	}
	if err := sweeper.RunOnce(context.Background()); err != nil {
		t.Fatalf("disabled sweep failed: %v", err)
	}
	current, _ := store.GetGrant(context.Background(), pastID)
	if current.Status != entities.GrantOpen {
		t.Fatalf("expected disabled sweeper to leave status, got %s", current.Status)
	}
}
