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

// ListAssignmentsQuery reads an organization's pursuit pipeline.
type ListAssignmentsQuery struct {
	ActorID       string
	PlatformAdmin bool
	OrgID         string
}

// ListAssignmentsUseCase returns assignments ordered by creation time, then
// grant id.
type ListAssignmentsUseCase struct {
	Repository ports.Repository
	Authorizer ports.Authorizer
	Logger     *slog.Logger
}

func (u ListAssignmentsUseCase) Execute(ctx context.Context, query ListAssignmentsQuery) ([]entities.Assignment, error) {
	if strings.TrimSpace(query.ActorID) == "" {
		return nil, domainerrors.ErrInvalidActorID
	}
	if strings.TrimSpace(query.OrgID) == "" {
		return nil, domainerrors.ErrInvalidOrgID
	}
	if err := application.Authorize(ctx, u.Authorizer, query.ActorID, query.PlatformAdmin, query.OrgID, application.ActionMatchRead); err != nil {
		return nil, err
	}

	assignments, err := u.Repository.ListAssignments(ctx, query.OrgID)
	if err != nil {
		application.ResolveLogger(u.Logger).Error("assignment listing failed",
			"event", "assignment_list_failed",
			"module", "grant-portfolio/matching-engine",
			"layer", "application",
			"org_id", query.OrgID,
			"error", err.Error(),
		)
		return nil, err
	}

	sort.Slice(assignments, func(i, j int) bool {
		if !assignments[i].CreatedAt.Equal(assignments[j].CreatedAt) {
			return assignments[i].CreatedAt.Before(assignments[j].CreatedAt)
		}
		return assignments[i].GrantID < assignments[j].GrantID
	})
	return assignments, nil
}
