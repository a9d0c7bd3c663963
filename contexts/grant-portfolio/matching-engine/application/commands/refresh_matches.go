package commands

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	application "grantstw/contexts/grant-portfolio/matching-engine/application"
	"grantstw/contexts/grant-portfolio/matching-engine/domain/entities"
	domainerrors "grantstw/contexts/grant-portfolio/matching-engine/domain/errors"
	"grantstw/contexts/grant-portfolio/matching-engine/ports"
)

// RefreshMatchesCommand rescoring request for one organization across the
// open grant catalog.
type RefreshMatchesCommand struct {
	ActorID       string
	PlatformAdmin bool
	OrgID         string
}

// RefreshMatchesResult reports how far a refresh got before returning.
type RefreshMatchesResult struct {
	Computed int
	Skipped  int
}

// RefreshMatchesUseCase rescores an organization against open grants. When a
// similarity index is wired it narrows candidates to the top K nearest grant
// vectors; otherwise every open grant is scored. Each pair is persisted
// independently so a cancelled refresh leaves prior pairs committed.
type RefreshMatchesUseCase struct {
	Compute ComputeMatchUseCase
	Index   ports.SimilarityIndex
	TopK    int
	Logger  *slog.Logger
}

func (u RefreshMatchesUseCase) Execute(ctx context.Context, cmd RefreshMatchesCommand) (RefreshMatchesResult, error) {
	logger := application.ResolveLogger(u.Logger)

	if strings.TrimSpace(cmd.ActorID) == "" {
		return RefreshMatchesResult{}, domainerrors.ErrInvalidActorID
	}
	if strings.TrimSpace(cmd.OrgID) == "" {
		return RefreshMatchesResult{}, domainerrors.ErrInvalidOrgID
	}

	if err := application.Authorize(ctx, u.Compute.Authorizer, cmd.ActorID, cmd.PlatformAdmin, cmd.OrgID, application.ActionMatchCompute); err != nil {
		return RefreshMatchesResult{}, err
	}

	profile, found, err := u.Compute.Organizations.GetOrgProfile(ctx, cmd.OrgID)
	if err != nil {
		return RefreshMatchesResult{}, err
	}
	if !found {
		return RefreshMatchesResult{}, domainerrors.ErrOrganizationNotFound
	}

	grantIDs, err := u.candidateGrantIDs(ctx, profile)
	if err != nil {
		return RefreshMatchesResult{}, err
	}

	var result RefreshMatchesResult
	for _, grantID := range grantIDs {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		_, err := u.Compute.Execute(ctx, ComputeMatchCommand{
			ActorID:       cmd.ActorID,
			PlatformAdmin: cmd.PlatformAdmin,
			OrgID:         cmd.OrgID,
			GrantID:       grantID,
		})
		if errors.Is(err, domainerrors.ErrGrantNotFound) {
			result.Skipped++
			continue
		}
		if err != nil {
			return result, err
		}
		result.Computed++
	}

	logger.Info("matches refreshed",
		"event", "match_refresh_completed",
		"module", "grant-portfolio/matching-engine",
		"layer", "application",
		"org_id", cmd.OrgID,
		"computed", result.Computed,
		"skipped", result.Skipped,
	)
	return result, nil
}

// candidateGrantIDs prefers the similarity index when one is wired and the
// profile has a vector. Index misses fall back to the full open-grant scan.
func (u RefreshMatchesUseCase) candidateGrantIDs(ctx context.Context, profile entities.OrgProfile) ([]string, error) {
	if u.Index != nil && len(profile.FitEmbedding) > 0 {
		k := u.TopK
		if k <= 0 {
			k = 20
		}
		neighbors, err := u.Index.Nearest(ctx, profile.FitEmbedding, k)
		if err == nil && len(neighbors) > 0 {
			ids := make([]string, 0, len(neighbors))
			for _, n := range neighbors {
				ids = append(ids, n.GrantID)
			}
			return ids, nil
		}
	}

	grants, err := u.Compute.Repository.ListOpenGrants(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(grants))
	for _, grant := range grants {
		ids = append(ids, grant.GrantID)
	}
	return ids, nil
}
