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

// AppendVersionCommand snapshots new content onto a draft's history.
// BasedOnVersionID optionally names an earlier version of the same draft to
// branch from; when empty the new version parents from the current head.
type AppendVersionCommand struct {
	ActorID          string
	PlatformAdmin    bool
	OrgID            string
	DraftID          string
	BasedOnVersionID string
	Sections         entities.DraftSections
	Note             string
}

// AppendVersionUseCase adds the next version and moves the draft head. The
// repository numbers the version from the maximum already stored, so a head
// that was rolled back still yields a fresh, unique number.
type AppendVersionUseCase struct {
	Repository  ports.Repository
	Authorizer  ports.Authorizer
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

func (u AppendVersionUseCase) Execute(ctx context.Context, cmd AppendVersionCommand) (entities.DraftVersion, error) {
	logger := application.ResolveLogger(u.Logger)

	if strings.TrimSpace(cmd.ActorID) == "" {
		return entities.DraftVersion{}, domainerrors.ErrInvalidActorID
	}
	if strings.TrimSpace(cmd.OrgID) == "" {
		return entities.DraftVersion{}, domainerrors.ErrInvalidOrgID
	}
	if strings.TrimSpace(cmd.DraftID) == "" {
		return entities.DraftVersion{}, domainerrors.ErrInvalidDraftID
	}

	if err := application.Authorize(ctx, u.Authorizer, cmd.ActorID, cmd.PlatformAdmin, cmd.OrgID, application.ActionDraftWrite); err != nil {
		return entities.DraftVersion{}, err
	}

	draft, err := u.Repository.GetDraft(ctx, cmd.DraftID)
	if err != nil {
		return entities.DraftVersion{}, err
	}
	if draft.OrgID != cmd.OrgID {
		return entities.DraftVersion{}, domainerrors.ErrDraftNotFound
	}

	versionID, err := u.IDGenerator.NewID(ctx)
	if err != nil {
		return entities.DraftVersion{}, err
	}

	gate := application.RecheckGate(u.Authorizer, cmd.ActorID, cmd.PlatformAdmin, cmd.OrgID, application.ActionDraftWrite)
	version, err := u.Repository.AppendVersion(ctx, ports.AppendVersionInput{
		Gate:             gate,
		VersionID:        versionID,
		DraftID:          cmd.DraftID,
		BasedOnVersionID: strings.TrimSpace(cmd.BasedOnVersionID),
		Sections:         cmd.Sections,
		AuthorID:         cmd.ActorID,
		Note:             cmd.Note,
		Now:              u.now(),
	})
	if err != nil {
		return entities.DraftVersion{}, err
	}

	logger.Info("draft version appended",
		"event", "draft_version_appended",
		"module", "grant-portfolio/drafting-service",
		"layer", "application",
		"org_id", cmd.OrgID,
		"draft_id", cmd.DraftID,
		"version_number", version.VersionNumber,
	)
	return version, nil
}

func (u AppendVersionUseCase) now() time.Time {
	if u.Clock != nil {
		return u.Clock.Now().UTC()
	}
	return time.Now().UTC()
}
