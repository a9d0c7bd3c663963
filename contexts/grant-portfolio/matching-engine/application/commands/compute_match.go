package commands

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	application "grantstw/contexts/grant-portfolio/matching-engine/application"
	"grantstw/contexts/grant-portfolio/matching-engine/domain/entities"
	domainerrors "grantstw/contexts/grant-portfolio/matching-engine/domain/errors"
	"grantstw/contexts/grant-portfolio/matching-engine/domain/services"
	"grantstw/contexts/grant-portfolio/matching-engine/ports"
)

// ComputeMatchCommand scores one (organization, grant) pair and persists the
// result.
type ComputeMatchCommand struct {
	ActorID       string
	PlatformAdmin bool
	OrgID         string
	GrantID       string
}

// ComputeMatchUseCase runs the alignment formula against the current
// organization profile and grant record. The upsert keeps one row per pair
// and never resets the viewed flag.
type ComputeMatchUseCase struct {
	Repository    ports.Repository
	Organizations ports.OrganizationDirectory
	Authorizer    ports.Authorizer
	Clock         ports.Clock
	IDGenerator   ports.IDGenerator
	Weights       services.Weights
	Logger        *slog.Logger
}

func (u ComputeMatchUseCase) Execute(ctx context.Context, cmd ComputeMatchCommand) (entities.Match, error) {
	logger := application.ResolveLogger(u.Logger)

	if strings.TrimSpace(cmd.ActorID) == "" {
		return entities.Match{}, domainerrors.ErrInvalidActorID
	}
	if strings.TrimSpace(cmd.OrgID) == "" {
		return entities.Match{}, domainerrors.ErrInvalidOrgID
	}
	if strings.TrimSpace(cmd.GrantID) == "" {
		return entities.Match{}, domainerrors.ErrInvalidGrantID
	}

	if err := application.Authorize(ctx, u.Authorizer, cmd.ActorID, cmd.PlatformAdmin, cmd.OrgID, application.ActionMatchCompute); err != nil {
		if errors.Is(err, domainerrors.ErrPermissionDenied) {
			logger.Warn("match compute denied",
				"event", "match_compute_denied",
				"module", "grant-portfolio/matching-engine",
				"layer", "application",
				"org_id", cmd.OrgID,
				"actor_id", cmd.ActorID,
				"grant_id", cmd.GrantID,
			)
		}
		return entities.Match{}, err
	}

	match, err := u.scoreAndStore(ctx, cmd)
	if err != nil {
		return entities.Match{}, err
	}

	logger.Info("match computed",
		"event", "match_compute_completed",
		"module", "grant-portfolio/matching-engine",
		"layer", "application",
		"org_id", cmd.OrgID,
		"grant_id", cmd.GrantID,
		"score", match.Score,
	)
	return match, nil
}

// scoreAndStore assumes the caller has already authorized the request. The
// repository gate re-verifies inside the write's critical section.
func (u ComputeMatchUseCase) scoreAndStore(ctx context.Context, cmd ComputeMatchCommand) (entities.Match, error) {
	profile, found, err := u.Organizations.GetOrgProfile(ctx, cmd.OrgID)
	if err != nil {
		return entities.Match{}, err
	}
	if !found {
		return entities.Match{}, domainerrors.ErrOrganizationNotFound
	}

	grant, err := u.Repository.GetGrant(ctx, cmd.GrantID)
	if err != nil {
		return entities.Match{}, err
	}

	score, factors := services.ScoreAlignment(profile, grant, u.Weights)

	matchID, err := u.IDGenerator.NewID(ctx)
	if err != nil {
		return entities.Match{}, err
	}

	now := u.now()
	gate := application.RecheckGate(u.Authorizer, cmd.ActorID, cmd.PlatformAdmin, cmd.OrgID, application.ActionMatchCompute)
	return u.Repository.UpsertMatch(ctx, entities.Match{
		MatchID:   matchID,
		OrgID:     cmd.OrgID,
		GrantID:   cmd.GrantID,
		Score:     score,
		Factors:   factors,
		MatchedAt: now,
		CreatedAt: now,
		UpdatedAt: now,
	}, gate)
}

func (u ComputeMatchUseCase) now() time.Time {
	if u.Clock != nil {
		return u.Clock.Now().UTC()
	}
	return time.Now().UTC()
}
