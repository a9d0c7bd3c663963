package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "grantstw/contexts/identity-access/membership-service/application"
	"grantstw/contexts/identity-access/membership-service/domain/entities"
	domainerrors "grantstw/contexts/identity-access/membership-service/domain/errors"
	"grantstw/contexts/identity-access/membership-service/domain/services"
	"grantstw/contexts/identity-access/membership-service/ports"
)

// UpdateFitProfileCommand replaces the organization's semantic fit summary.
// When Embedding is empty the configured encoder produces one from the
// summary text.
type UpdateFitProfileCommand struct {
	Actor     entities.Actor
	OrgID     string
	Summary   string
	Embedding []float32
}

// UpdateFitProfileUseCase stores the summary plus encoder output that the
// matching engine later compares against grant vectors.
type UpdateFitProfileUseCase struct {
	Repository ports.Repository
	Embedder   ports.Embedder
	Clock      ports.Clock
	Logger     *slog.Logger
}

func (u UpdateFitProfileUseCase) Execute(ctx context.Context, cmd UpdateFitProfileCommand) (entities.Organization, error) {
	logger := application.ResolveLogger(u.Logger)

	if strings.TrimSpace(cmd.Actor.ID) == "" {
		return entities.Organization{}, domainerrors.ErrInvalidActorID
	}
	if strings.TrimSpace(cmd.OrgID) == "" {
		return entities.Organization{}, domainerrors.ErrInvalidOrgID
	}

	if err := authorizeMutation(ctx, u.Repository, cmd.Actor, cmd.OrgID, services.ActionOrgUpdate); err != nil {
		return entities.Organization{}, err
	}

	embedding := cmd.Embedding
	if len(embedding) == 0 && u.Embedder != nil && strings.TrimSpace(cmd.Summary) != "" {
		vector, err := u.Embedder.Embed(ctx, cmd.Summary)
		if err != nil {
			logger.Error("fit profile embedding failed",
				"event", "membership_fit_embed_failed",
				"module", "identity-access/membership-service",
				"layer", "application",
				"org_id", cmd.OrgID,
				"error", err.Error(),
			)
			return entities.Organization{}, err
		}
		embedding = vector
	}

	policy, _ := services.LookupPolicy(services.ActionOrgUpdate)
	organization, err := u.Repository.UpdateFitProfile(ctx, ports.FitProfileInput{
		Gate: ports.RoleGate{
			ActorID:       cmd.Actor.ID,
			PlatformAdmin: cmd.Actor.IsPlatformAdmin,
			AllowedRoles:  policy.AllowedRoles,
		},
		OrgID:     cmd.OrgID,
		Summary:   strings.TrimSpace(cmd.Summary),
		Embedding: embedding,
		Now:       u.now(),
	})
	if err != nil {
		return entities.Organization{}, err
	}

	logger.Info("fit profile updated",
		"event", "membership_fit_profile_updated",
		"module", "identity-access/membership-service",
		"layer", "application",
		"org_id", cmd.OrgID,
		"vector_len", len(embedding),
	)
	return organization, nil
}

func (u UpdateFitProfileUseCase) now() time.Time {
	if u.Clock != nil {
		return u.Clock.Now().UTC()
	}
	return time.Now().UTC()
}
