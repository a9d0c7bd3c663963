package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "grantstw/contexts/grant-portfolio/drafting-service/application"
	"grantstw/contexts/grant-portfolio/drafting-service/domain/entities"
	domainerrors "grantstw/contexts/grant-portfolio/drafting-service/domain/errors"
	"grantstw/contexts/grant-portfolio/drafting-service/ports"
)

// RollbackDraftCommand moves a draft's head to an earlier version.
type RollbackDraftCommand struct {
	ActorID       string
	PlatformAdmin bool
	OrgID         string
	DraftID       string
	VersionID     string
}

// RollbackDraftUseCase moves the head pointer only; no version row is
// deleted or rewritten, so the rolled-past history stays auditable.
type RollbackDraftUseCase struct {
	Repository ports.Repository
	Authorizer ports.Authorizer
	Clock      ports.Clock
	Logger     *slog.Logger
}

func (u RollbackDraftUseCase) Execute(ctx context.Context, cmd RollbackDraftCommand) (entities.Draft, error) {
	logger := application.ResolveLogger(u.Logger)

	if strings.TrimSpace(cmd.ActorID) == "" {
		return entities.Draft{}, domainerrors.ErrInvalidActorID
	}
	if strings.TrimSpace(cmd.OrgID) == "" {
		return entities.Draft{}, domainerrors.ErrInvalidOrgID
	}
	if strings.TrimSpace(cmd.DraftID) == "" {
		return entities.Draft{}, domainerrors.ErrInvalidDraftID
	}
	if strings.TrimSpace(cmd.VersionID) == "" {
		return entities.Draft{}, domainerrors.ErrInvalidVersionID
	}

	if err := application.Authorize(ctx, u.Authorizer, cmd.ActorID, cmd.PlatformAdmin, cmd.OrgID, application.ActionDraftWrite); err != nil {
		return entities.Draft{}, err
	}

	draft, err := u.Repository.GetDraft(ctx, cmd.DraftID)
	if err != nil {
		return entities.Draft{}, err
	}
	if draft.OrgID != cmd.OrgID {
		return entities.Draft{}, domainerrors.ErrDraftNotFound
	}

	gate := application.RecheckGate(u.Authorizer, cmd.ActorID, cmd.PlatformAdmin, cmd.OrgID, application.ActionDraftWrite)
	rolled, err := u.Repository.Rollback(ctx, ports.RollbackInput{
		Gate:      gate,
		DraftID:   cmd.DraftID,
		VersionID: cmd.VersionID,
		Now:       u.now(),
	})
	if err != nil {
		return entities.Draft{}, err
	}

	logger.Info("draft rolled back",
		"event", "draft_rollback_completed",
		"module", "grant-portfolio/drafting-service",
		"layer", "application",
		"org_id", cmd.OrgID,
		"draft_id", cmd.DraftID,
		"version_id", cmd.VersionID,
	)
	return rolled, nil
}

func (u RollbackDraftUseCase) now() time.Time {
	if u.Clock != nil {
		return u.Clock.Now().UTC()
	}
	return time.Now().UTC()
}
