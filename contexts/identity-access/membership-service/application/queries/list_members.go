package queries

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	application "grantstw/contexts/identity-access/membership-service/application"
	"grantstw/contexts/identity-access/membership-service/domain/entities"
	domainerrors "grantstw/contexts/identity-access/membership-service/domain/errors"
	"grantstw/contexts/identity-access/membership-service/domain/services"
	"grantstw/contexts/identity-access/membership-service/ports"
)

// ListMembersQuery returns the member roster of one organization.
type ListMembersQuery struct {
	Actor entities.Actor
	OrgID string
}

type ListMembersUseCase struct {
	Repository ports.Repository
	Logger     *slog.Logger
}

// Execute requires org.read and returns memberships ordered by display rank,
// most privileged first, then by actor id for determinism.
func (u ListMembersUseCase) Execute(ctx context.Context, query ListMembersQuery) ([]entities.Membership, error) {
	logger := application.ResolveLogger(u.Logger)

	if strings.TrimSpace(query.OrgID) == "" {
		return nil, domainerrors.ErrInvalidOrgID
	}

	membership, found, err := u.Repository.GetMembership(ctx, query.OrgID, query.Actor.ID)
	if err != nil {
		return nil, err
	}
	decision := services.Evaluate(query.Actor, services.ActionOrgRead, membership, found)
	if !decision.Allowed {
		return nil, domainerrors.ErrPermissionDenied
	}

	members, err := u.Repository.ListMemberships(ctx, query.OrgID)
	if err != nil {
		logger.Error("list members failed",
			"event", "membership_list_members_failed",
			"module", "identity-access/membership-service",
			"layer", "application",
			"org_id", query.OrgID,
			"error", err.Error(),
		)
		return nil, err
	}

	sort.Slice(members, func(i, j int) bool {
		if members[i].Role.Rank() != members[j].Role.Rank() {
			return members[i].Role.Rank() > members[j].Role.Rank()
		}
		return members[i].ActorID < members[j].ActorID
	})
	return members, nil
}
