package httpadapter

import (
	"context"
	"log/slog"

	application "grantstw/contexts/identity-access/membership-service/application"
	"grantstw/contexts/identity-access/membership-service/application/commands"
	"grantstw/contexts/identity-access/membership-service/application/queries"
	"grantstw/contexts/identity-access/membership-service/domain/entities"
	httptransport "grantstw/contexts/identity-access/membership-service/transport/http"
)

// Handler maps HTTP DTOs to application commands/queries.
type Handler struct {
	CreateOrganization commands.CreateOrganizationUseCase
	InviteMember       commands.InviteMemberUseCase
	SetMemberStatus    commands.SetMemberStatusUseCase
	UpdateFitProfile   commands.UpdateFitProfileUseCase
	Authorize          queries.AuthorizeActionUseCase
	ListMembers        queries.ListMembersUseCase
	GetOrganization    queries.GetOrganizationUseCase
	Logger             *slog.Logger
}

func (h Handler) CreateOrganizationHandler(
	ctx context.Context,
	actor entities.Actor,
	request httptransport.CreateOrganizationRequest,
) (httptransport.CreateOrganizationResponse, error) {
	result, err := h.CreateOrganization.Execute(ctx, commands.CreateOrganizationCommand{
		Actor:        actor,
		RegistryKey:  request.RegistryKey,
		Name:         request.Name,
		Region:       request.Region,
		Mission:      request.Mission,
		FocusTags:    request.FocusTags,
		AnnualBudget: request.AnnualBudget,
	})
	if err != nil {
		return httptransport.CreateOrganizationResponse{}, err
	}
	return httptransport.CreateOrganizationResponse{
		Organization:    organizationDTO(result.Organization),
		OwnerMembership: membershipDTO(result.OwnerMembership),
	}, nil
}

func (h Handler) InviteMemberHandler(
	ctx context.Context,
	actor entities.Actor,
	orgID string,
	request httptransport.InviteMemberRequest,
) (httptransport.MembershipDTO, error) {
	membership, err := h.InviteMember.Execute(ctx, commands.InviteMemberCommand{
		Actor:         actor,
		OrgID:         orgID,
		TargetActorID: request.TargetActorID,
		Role:          entities.Role(request.Role),
	})
	if err != nil {
		return httptransport.MembershipDTO{}, err
	}
	return membershipDTO(membership), nil
}

func (h Handler) SetMemberStatusHandler(
	ctx context.Context,
	actor entities.Actor,
	orgID string,
	request httptransport.SetMemberStatusRequest,
) (httptransport.MembershipDTO, error) {
	membership, err := h.SetMemberStatus.Execute(ctx, commands.SetMemberStatusCommand{
		Actor:         actor,
		OrgID:         orgID,
		TargetActorID: request.TargetActorID,
		Status:        entities.MembershipStatus(request.Status),
	})
	if err != nil {
		return httptransport.MembershipDTO{}, err
	}
	return membershipDTO(membership), nil
}

func (h Handler) UpdateFitProfileHandler(
	ctx context.Context,
	actor entities.Actor,
	orgID string,
	request httptransport.UpdateFitProfileRequest,
) (httptransport.OrganizationDTO, error) {
	organization, err := h.UpdateFitProfile.Execute(ctx, commands.UpdateFitProfileCommand{
		Actor:     actor,
		OrgID:     orgID,
		Summary:   request.Summary,
		Embedding: request.Embedding,
	})
	if err != nil {
		return httptransport.OrganizationDTO{}, err
	}
	return organizationDTO(organization), nil
}

func (h Handler) AuthorizeHandler(
	ctx context.Context,
	actor entities.Actor,
	request httptransport.AuthorizeRequest,
) (httptransport.AuthorizeResponse, error) {
	logger := application.ResolveLogger(h.Logger)
	decision, err := h.Authorize.Execute(ctx, queries.AuthorizeActionQuery{
		ActorID:       actor.ID,
		PlatformAdmin: actor.IsPlatformAdmin,
		OrgID:         request.OrgID,
		Action:        request.Action,
	})
	if err != nil {
		logger.Error("http authorize failed",
			"event", "membership_http_authorize_failed",
			"module", "identity-access/membership-service",
			"layer", "transport",
			"actor_id", actor.ID,
			"action", request.Action,
			"error", err.Error(),
		)
		return httptransport.AuthorizeResponse{}, err
	}
	return httptransport.AuthorizeResponse{Allowed: decision.Allowed, Reason: decision.Reason}, nil
}

func (h Handler) ListMembersHandler(
	ctx context.Context,
	actor entities.Actor,
	orgID string,
) (httptransport.ListMembersResponse, error) {
	members, err := h.ListMembers.Execute(ctx, queries.ListMembersQuery{Actor: actor, OrgID: orgID})
	if err != nil {
		return httptransport.ListMembersResponse{}, err
	}
	items := make([]httptransport.MembershipDTO, 0, len(members))
	for _, membership := range members {
		items = append(items, membershipDTO(membership))
	}
	return httptransport.ListMembersResponse{OrgID: orgID, Members: items}, nil
}

func (h Handler) GetOrganizationHandler(
	ctx context.Context,
	actor entities.Actor,
	orgID string,
) (httptransport.OrganizationDTO, error) {
	organization, err := h.GetOrganization.Execute(ctx, queries.GetOrganizationQuery{Actor: actor, OrgID: orgID})
	if err != nil {
		return httptransport.OrganizationDTO{}, err
	}
	return organizationDTO(organization), nil
}

func organizationDTO(organization entities.Organization) httptransport.OrganizationDTO {
	return httptransport.OrganizationDTO{
		OrgID:        organization.OrgID,
		RegistryKey:  organization.RegistryKey,
		Name:         organization.Name,
		Region:       organization.Region,
		Mission:      organization.Mission,
		FocusTags:    organization.FocusTags,
		AnnualBudget: organization.AnnualBudget,
		FitSummary:   organization.Fit.Summary,
		CreatedBy:    organization.CreatedBy,
		CreatedAt:    organization.CreatedAt,
		UpdatedAt:    organization.UpdatedAt,
	}
}

func membershipDTO(membership entities.Membership) httptransport.MembershipDTO {
	return httptransport.MembershipDTO{
		MembershipID: membership.MembershipID,
		OrgID:        membership.OrgID,
		ActorID:      membership.ActorID,
		Role:         string(membership.Role),
		Status:       string(membership.Status),
		InvitedBy:    membership.InvitedBy,
		CreatedAt:    membership.CreatedAt,
		UpdatedAt:    membership.UpdatedAt,
	}
}
