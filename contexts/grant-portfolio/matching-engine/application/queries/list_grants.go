package queries

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	application "grantstw/contexts/grant-portfolio/matching-engine/application"
	"grantstw/contexts/grant-portfolio/matching-engine/domain/entities"
	domainerrors "grantstw/contexts/grant-portfolio/matching-engine/domain/errors"
	"grantstw/contexts/grant-portfolio/matching-engine/ports"
)

// ListGrantsQuery reads the shared grant catalog. Grant reads are global:
// any authenticated actor may browse.
type ListGrantsQuery struct {
	ActorID       string
	PlatformAdmin bool
	OpenOnly      bool
}

// ListGrantsUseCase returns grants ordered by deadline ascending, then id.
type ListGrantsUseCase struct {
	Repository ports.Repository
	Authorizer ports.Authorizer
	Logger     *slog.Logger
}

func (u ListGrantsUseCase) Execute(ctx context.Context, query ListGrantsQuery) ([]entities.Grant, error) {
	if strings.TrimSpace(query.ActorID) == "" {
		return nil, domainerrors.ErrInvalidActorID
	}
	if err := application.Authorize(ctx, u.Authorizer, query.ActorID, query.PlatformAdmin, "", application.ActionGrantRead); err != nil {
		return nil, err
	}

	var (
		grants []entities.Grant
		err    error
	)
	if query.OpenOnly {
		grants, err = u.Repository.ListOpenGrants(ctx)
	} else {
		grants, err = u.Repository.ListGrants(ctx)
	}
	if err != nil {
		application.ResolveLogger(u.Logger).Error("grant listing failed",
			"event", "grant_list_failed",
			"module", "grant-portfolio/matching-engine",
			"layer", "application",
			"error", err.Error(),
		)
		return nil, err
	}

	sort.Slice(grants, func(i, j int) bool {
		if !grants[i].Deadline.Equal(grants[j].Deadline) {
			return grants[i].Deadline.Before(grants[j].Deadline)
		}
		return grants[i].GrantID < grants[j].GrantID
	})
	return grants, nil
}
