package queries

import (
	"context"
	"log/slog"
	"strings"

	application "grantstw/contexts/grant-portfolio/drafting-service/application"
	"grantstw/contexts/grant-portfolio/drafting-service/domain/entities"
	domainerrors "grantstw/contexts/grant-portfolio/drafting-service/domain/errors"
	"grantstw/contexts/grant-portfolio/drafting-service/domain/services"
	"grantstw/contexts/grant-portfolio/drafting-service/ports"
)

// GetLineageQuery reads a draft's head and ancestry.
type GetLineageQuery struct {
	ActorID       string
	PlatformAdmin bool
	OrgID         string
	DraftID       string
}

// LineageResult returns the head record plus the ancestor chain, current
// version first.
type LineageResult struct {
	Draft entities.Draft
	Chain []entities.DraftVersion
}

// GetLineageUseCase walks the parent pointers from the current head. A
// broken or cyclic chain surfaces as a corruption error rather than a
// partial answer.
type GetLineageUseCase struct {
	Repository ports.Repository
	Authorizer ports.Authorizer
	Logger     *slog.Logger
}

func (u GetLineageUseCase) Execute(ctx context.Context, query GetLineageQuery) (LineageResult, error) {
	logger := application.ResolveLogger(u.Logger)

	if strings.TrimSpace(query.ActorID) == "" {
		return LineageResult{}, domainerrors.ErrInvalidActorID
	}
	if strings.TrimSpace(query.OrgID) == "" {
		return LineageResult{}, domainerrors.ErrInvalidOrgID
	}
	if strings.TrimSpace(query.DraftID) == "" {
		return LineageResult{}, domainerrors.ErrInvalidDraftID
	}

	if err := application.Authorize(ctx, u.Authorizer, query.ActorID, query.PlatformAdmin, query.OrgID, application.ActionDraftRead); err != nil {
		return LineageResult{}, err
	}

	draft, err := u.Repository.GetDraft(ctx, query.DraftID)
	if err != nil {
		return LineageResult{}, err
	}
	if draft.OrgID != query.OrgID {
		return LineageResult{}, domainerrors.ErrDraftNotFound
	}

	versions, err := u.Repository.ListVersions(ctx, query.DraftID)
	if err != nil {
		return LineageResult{}, err
	}
	byID := make(map[string]entities.DraftVersion, len(versions))
	for _, version := range versions {
		byID[version.VersionID] = version
	}

	chain, err := services.Lineage(draft.CurrentVersionID, byID)
	if err != nil {
		logger.Error("draft lineage walk failed",
			"event", "draft_lineage_failed",
			"module", "grant-portfolio/drafting-service",
			"layer", "application",
			"draft_id", query.DraftID,
			"error", err.Error(),
		)
		return LineageResult{}, err
	}
	return LineageResult{Draft: draft, Chain: chain}, nil
}
