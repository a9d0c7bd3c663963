package queries

import (
	"context"
	"strings"

	"grantstw/contexts/identity-access/membership-service/domain/entities"
	domainerrors "grantstw/contexts/identity-access/membership-service/domain/errors"
	"grantstw/contexts/identity-access/membership-service/domain/services"
	"grantstw/contexts/identity-access/membership-service/ports"
)

// GetOrganizationQuery fetches one organization for a member or platform
// admin.
type GetOrganizationQuery struct {
	Actor entities.Actor
	OrgID string
}

type GetOrganizationUseCase struct {
	Repository ports.Repository
}

func (u GetOrganizationUseCase) Execute(ctx context.Context, query GetOrganizationQuery) (entities.Organization, error) {
	if strings.TrimSpace(query.OrgID) == "" {
		return entities.Organization{}, domainerrors.ErrInvalidOrgID
	}

	membership, found, err := u.Repository.GetMembership(ctx, query.OrgID, query.Actor.ID)
	if err != nil {
		return entities.Organization{}, err
	}
	decision := services.Evaluate(query.Actor, services.ActionOrgRead, membership, found)
	if !decision.Allowed {
		return entities.Organization{}, domainerrors.ErrPermissionDenied
	}

	return u.Repository.GetOrganization(ctx, query.OrgID)
}
