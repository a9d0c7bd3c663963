package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "grantstw/contexts/grant-portfolio/matching-engine/application"
	"grantstw/contexts/grant-portfolio/matching-engine/domain/entities"
	domainerrors "grantstw/contexts/grant-portfolio/matching-engine/domain/errors"
	"grantstw/contexts/grant-portfolio/matching-engine/ports"
)

// GrantInput is one opportunity record from an external listing feed.
type GrantInput struct {
	ExternalID  string
	Name        string
	Funder      string
	Description string
	Tags        []string
	Region      string
	AmountMin   string
	AmountMax   string
	Deadline    time.Time
	Embedding   []float32
	SourceURL   string
}

// IngestGrantsCommand loads a batch of grants into the shared catalog.
// Grant writes are platform scoped; no organization is involved.
type IngestGrantsCommand struct {
	ActorID       string
	PlatformAdmin bool
	Grants        []GrantInput
}

// IngestGrantsResult counts what the batch did.
type IngestGrantsResult struct {
	Created int
	Updated int
}

// IngestGrantsUseCase upserts grants keyed by external id. Records without a
// vector are embedded from their description when an encoder is wired.
type IngestGrantsUseCase struct {
	Repository        ports.Repository
	Authorizer        ports.Authorizer
	Embedder          ports.Embedder
	Clock             ports.Clock
	IDGenerator       ports.IDGenerator
	ClosingSoonWindow time.Duration
	Logger            *slog.Logger
}

func (u IngestGrantsUseCase) Execute(ctx context.Context, cmd IngestGrantsCommand) (IngestGrantsResult, error) {
	logger := application.ResolveLogger(u.Logger)

	if strings.TrimSpace(cmd.ActorID) == "" {
		return IngestGrantsResult{}, domainerrors.ErrInvalidActorID
	}
	if err := application.Authorize(ctx, u.Authorizer, cmd.ActorID, cmd.PlatformAdmin, "", application.ActionGrantWrite); err != nil {
		logger.Warn("grant ingest denied",
			"event", "grant_ingest_denied",
			"module", "grant-portfolio/matching-engine",
			"layer", "application",
			"actor_id", cmd.ActorID,
		)
		return IngestGrantsResult{}, err
	}

	var result IngestGrantsResult
	for _, input := range cmd.Grants {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		grant, err := u.buildGrant(ctx, input)
		if err != nil {
			return result, err
		}
		_, created, err := u.Repository.UpsertGrant(ctx, grant)
		if err != nil {
			return result, err
		}
		if created {
			result.Created++
		} else {
			result.Updated++
		}
	}

	logger.Info("grants ingested",
		"event", "grant_ingest_completed",
		"module", "grant-portfolio/matching-engine",
		"layer", "application",
		"created", result.Created,
		"updated", result.Updated,
	)
	return result, nil
}

func (u IngestGrantsUseCase) buildGrant(ctx context.Context, input GrantInput) (entities.Grant, error) {
	if strings.TrimSpace(input.ExternalID) == "" || strings.TrimSpace(input.Name) == "" {
		return entities.Grant{}, domainerrors.ErrInvalidGrant
	}
	if input.Deadline.IsZero() {
		return entities.Grant{}, domainerrors.ErrInvalidGrant
	}

	embedding := input.Embedding
	if len(embedding) == 0 && u.Embedder != nil && strings.TrimSpace(input.Description) != "" {
		vector, err := u.Embedder.Embed(ctx, input.Description)
		if err != nil {
			return entities.Grant{}, err
		}
		embedding = vector
	}

	grantID, err := u.IDGenerator.NewID(ctx)
	if err != nil {
		return entities.Grant{}, err
	}

	now := u.now()
	return entities.Grant{
		GrantID:     grantID,
		ExternalID:  strings.TrimSpace(input.ExternalID),
		Name:        strings.TrimSpace(input.Name),
		Funder:      strings.TrimSpace(input.Funder),
		Description: input.Description,
		Tags:        normalizeTags(input.Tags),
		Region:      strings.TrimSpace(input.Region),
		AmountMin:   input.AmountMin,
		AmountMax:   input.AmountMax,
		Deadline:    input.Deadline.UTC(),
		Status:      entities.StatusFor(input.Deadline.UTC(), now, u.closingSoonWindow()),
		Embedding:   embedding,
		SourceURL:   input.SourceURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func (u IngestGrantsUseCase) closingSoonWindow() time.Duration {
	if u.ClosingSoonWindow > 0 {
		return u.ClosingSoonWindow
	}
	return 14 * 24 * time.Hour
}

func (u IngestGrantsUseCase) now() time.Time {
	if u.Clock != nil {
		return u.Clock.Now().UTC()
	}
	return time.Now().UTC()
}

func normalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
