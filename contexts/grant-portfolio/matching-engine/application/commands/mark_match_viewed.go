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

// MarkMatchViewedCommand flags a match as seen by a member.
type MarkMatchViewedCommand struct {
	ActorID       string
	PlatformAdmin bool
	OrgID         string
	GrantID       string
}

// MarkMatchViewedUseCase sets the viewed flag. The flag is sticky: later
// recomputes keep it.
type MarkMatchViewedUseCase struct {
	Repository ports.Repository
	Authorizer ports.Authorizer
	Clock      ports.Clock
	Logger     *slog.Logger
}

func (u MarkMatchViewedUseCase) Execute(ctx context.Context, cmd MarkMatchViewedCommand) (entities.Match, error) {
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

	if err := application.Authorize(ctx, u.Authorizer, cmd.ActorID, cmd.PlatformAdmin, cmd.OrgID, application.ActionMatchRead); err != nil {
		return entities.Match{}, err
	}

	gate := application.RecheckGate(u.Authorizer, cmd.ActorID, cmd.PlatformAdmin, cmd.OrgID, application.ActionMatchRead)
	match, err := u.Repository.MarkMatchViewed(ctx, cmd.OrgID, cmd.GrantID, u.now(), gate)
	if err != nil {
		return entities.Match{}, err
	}

	logger.Info("match viewed",
		"event", "match_viewed",
		"module", "grant-portfolio/matching-engine",
		"layer", "application",
		"org_id", cmd.OrgID,
		"grant_id", cmd.GrantID,
	)
	return match, nil
}

func (u MarkMatchViewedUseCase) now() time.Time {
	if u.Clock != nil {
		return u.Clock.Now().UTC()
	}
	return time.Now().UTC()
}
