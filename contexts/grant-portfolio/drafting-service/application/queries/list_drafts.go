package queries

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	application "grantstw/contexts/grant-portfolio/drafting-service/application"
	"grantstw/contexts/grant-portfolio/drafting-service/domain/entities"
	domainerrors "grantstw/contexts/grant-portfolio/drafting-service/domain/errors"
	"grantstw/contexts/grant-portfolio/drafting-service/ports"
)

// ListDraftsQuery reads an organization's drafts.
type ListDraftsQuery struct {
	ActorID       string
	PlatformAdmin bool
	OrgID         string
}

// ListDraftsUseCase returns drafts ordered by creation time, then id.
type ListDraftsUseCase struct {
	Repository ports.Repository
	Authorizer ports.Authorizer
	Logger     *slog.Logger
}

func (u ListDraftsUseCase) Execute(ctx context.Context, query ListDraftsQuery) ([]entities.Draft, error) {
	if strings.TrimSpace(query.ActorID) == "" {
		return nil, domainerrors.ErrInvalidActorID
	}
	if strings.TrimSpace(query.OrgID) == "" {
		return nil, domainerrors.ErrInvalidOrgID
	}
	if err := application.Authorize(ctx, u.Authorizer, query.ActorID, query.PlatformAdmin, query.OrgID, application.ActionDraftRead); err != nil {
		return nil, err
	}

	drafts, err := u.Repository.ListDrafts(ctx, query.OrgID)
	if err != nil {
		application.ResolveLogger(u.Logger).Error("draft listing failed",
			"event", "draft_list_failed",
			"module", "grant-portfolio/drafting-service",
			"layer", "application",
			"org_id", query.OrgID,
			"error", err.Error(),
		)
		return nil, err
	}

	sort.Slice(drafts, func(i, j int) bool {
		if !drafts[i].CreatedAt.Equal(drafts[j].CreatedAt) {
			return drafts[i].CreatedAt.Before(drafts[j].CreatedAt)
		}
		return drafts[i].DraftID < drafts[j].DraftID
	})
	return drafts, nil
}
