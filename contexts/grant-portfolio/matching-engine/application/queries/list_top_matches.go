package queries

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	application "grantstw/contexts/grant-portfolio/matching-engine/application"
	domainerrors "grantstw/contexts/grant-portfolio/matching-engine/domain/errors"
	"grantstw/contexts/grant-portfolio/matching-engine/ports"
)

// ListTopMatchesQuery asks for an organization's best-aligned grants.
type ListTopMatchesQuery struct {
	ActorID       string
	PlatformAdmin bool
	OrgID         string
	Limit         int
}

// ListTopMatchesUseCase returns matches ordered by score descending, then
// grant deadline ascending, then grant id. The ordering is total, so equal
// inputs always list identically.
type ListTopMatchesUseCase struct {
	Repository ports.Repository
	Authorizer ports.Authorizer
	Logger     *slog.Logger
}

func (u ListTopMatchesUseCase) Execute(ctx context.Context, query ListTopMatchesQuery) ([]ports.RankedMatch, error) {
	logger := application.ResolveLogger(u.Logger)

	if strings.TrimSpace(query.ActorID) == "" {
		return nil, domainerrors.ErrInvalidActorID
	}
	if strings.TrimSpace(query.OrgID) == "" {
		return nil, domainerrors.ErrInvalidOrgID
	}

	if err := application.Authorize(ctx, u.Authorizer, query.ActorID, query.PlatformAdmin, query.OrgID, application.ActionMatchRead); err != nil {
		return nil, err
	}

	ranked, err := u.Repository.ListRankedMatches(ctx, query.OrgID)
	if err != nil {
		logger.Error("match listing failed",
			"event", "match_list_failed",
			"module", "grant-portfolio/matching-engine",
			"layer", "application",
			"org_id", query.OrgID,
			"error", err.Error(),
		)
		return nil, err
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Match.Score != ranked[j].Match.Score {
			return ranked[i].Match.Score > ranked[j].Match.Score
		}
		if !ranked[i].Deadline.Equal(ranked[j].Deadline) {
			return ranked[i].Deadline.Before(ranked[j].Deadline)
		}
		return ranked[i].Match.GrantID < ranked[j].Match.GrantID
	})

	if query.Limit > 0 && len(ranked) > query.Limit {
		ranked = ranked[:query.Limit]
	}
	return ranked, nil
}
