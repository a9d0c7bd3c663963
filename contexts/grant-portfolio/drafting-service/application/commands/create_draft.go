package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "grantstw/contexts/grant-portfolio/drafting-service/application"
	"grantstw/contexts/grant-portfolio/drafting-service/domain/entities"
	domainerrors "grantstw/contexts/grant-portfolio/drafting-service/domain/errors"
	"grantstw/contexts/grant-portfolio/drafting-service/domain/services"
	"grantstw/contexts/grant-portfolio/drafting-service/ports"
)

// CreateDraftCommand starts a proposal draft for a pursued grant. When no
// sections are supplied the composer seeds version one from the organization
// and grant context.
type CreateDraftCommand struct {
	ActorID       string
	PlatformAdmin bool
	OrgID         string
	GrantID       string
	Title         string
	Sections      *entities.DraftSections
}

// CreateDraftResult returns the head record with its first version.
type CreateDraftResult struct {
	Draft   entities.Draft
	Version entities.DraftVersion
}

// CreateDraftUseCase persists the draft head and version one atomically.
type CreateDraftUseCase struct {
	Repository    ports.Repository
	Organizations ports.OrganizationDirectory
	Grants        ports.GrantDirectory
	Authorizer    ports.Authorizer
	Clock         ports.Clock
	IDGenerator   ports.IDGenerator
	Logger        *slog.Logger
}

func (u CreateDraftUseCase) Execute(ctx context.Context, cmd CreateDraftCommand) (CreateDraftResult, error) {
	logger := application.ResolveLogger(u.Logger)

	if strings.TrimSpace(cmd.ActorID) == "" {
		return CreateDraftResult{}, domainerrors.ErrInvalidActorID
	}
	if strings.TrimSpace(cmd.OrgID) == "" {
		return CreateDraftResult{}, domainerrors.ErrInvalidOrgID
	}
	if strings.TrimSpace(cmd.GrantID) == "" {
		return CreateDraftResult{}, domainerrors.ErrInvalidGrantID
	}
	if strings.TrimSpace(cmd.Title) == "" {
		return CreateDraftResult{}, domainerrors.ErrInvalidTitle
	}

	if err := application.Authorize(ctx, u.Authorizer, cmd.ActorID, cmd.PlatformAdmin, cmd.OrgID, application.ActionDraftWrite); err != nil {
		logger.Warn("draft create denied",
			"event", "draft_create_denied",
			"module", "grant-portfolio/drafting-service",
			"layer", "application",
			"org_id", cmd.OrgID,
			"actor_id", cmd.ActorID,
		)
		return CreateDraftResult{}, err
	}

	sections, err := u.seedSections(ctx, cmd)
	if err != nil {
		return CreateDraftResult{}, err
	}

	draftID, err := u.IDGenerator.NewID(ctx)
	if err != nil {
		return CreateDraftResult{}, err
	}
	versionID, err := u.IDGenerator.NewID(ctx)
	if err != nil {
		return CreateDraftResult{}, err
	}

	now := u.now()
	draft := entities.Draft{
		DraftID:          draftID,
		OrgID:            cmd.OrgID,
		GrantID:          cmd.GrantID,
		Title:            strings.TrimSpace(cmd.Title),
		CurrentVersionID: versionID,
		CreatedBy:        cmd.ActorID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	version := entities.DraftVersion{
		VersionID:     versionID,
		DraftID:       draftID,
		VersionNumber: 1,
		Sections:      sections,
		AuthorID:      cmd.ActorID,
		CreatedAt:     now,
	}

	gate := application.RecheckGate(u.Authorizer, cmd.ActorID, cmd.PlatformAdmin, cmd.OrgID, application.ActionDraftWrite)
	created, err := u.Repository.CreateDraft(ctx, draft, version, gate)
	if err != nil {
		return CreateDraftResult{}, err
	}

	logger.Info("draft created",
		"event", "draft_create_completed",
		"module", "grant-portfolio/drafting-service",
		"layer", "application",
		"org_id", cmd.OrgID,
		"draft_id", created.DraftID,
		"grant_id", cmd.GrantID,
	)
	return CreateDraftResult{Draft: created, Version: version}, nil
}

// seedSections prefers caller-provided content; otherwise the composer
// builds version one from the directory projections.
func (u CreateDraftUseCase) seedSections(ctx context.Context, cmd CreateDraftCommand) (entities.DraftSections, error) {
	if cmd.Sections != nil {
		return *cmd.Sections, nil
	}

	org, found, err := u.Organizations.GetOrgContext(ctx, cmd.OrgID)
	if err != nil {
		return entities.DraftSections{}, err
	}
	if !found {
		return entities.DraftSections{}, domainerrors.ErrInvalidOrgID
	}
	grant, found, err := u.Grants.GetGrantContext(ctx, cmd.GrantID)
	if err != nil {
		return entities.DraftSections{}, err
	}
	if !found {
		return entities.DraftSections{}, domainerrors.ErrInvalidGrantID
	}
	return services.ComposeSections(org, grant), nil
}

func (u CreateDraftUseCase) now() time.Time {
	if u.Clock != nil {
		return u.Clock.Now().UTC()
	}
	return time.Now().UTC()
}
