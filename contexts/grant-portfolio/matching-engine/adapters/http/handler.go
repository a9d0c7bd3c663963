package httpadapter

import (
	"context"
	"log/slog"

	"grantstw/contexts/grant-portfolio/matching-engine/application/commands"
	"grantstw/contexts/grant-portfolio/matching-engine/application/queries"
	"grantstw/contexts/grant-portfolio/matching-engine/domain/entities"
	"grantstw/contexts/grant-portfolio/matching-engine/ports"
	httptransport "grantstw/contexts/grant-portfolio/matching-engine/transport/http"
)

// Handler maps HTTP DTOs to application commands/queries.
type Handler struct {
	IngestGrants         commands.IngestGrantsUseCase
	ComputeMatch         commands.ComputeMatchUseCase
	RefreshMatches       commands.RefreshMatchesUseCase
	MarkMatchViewed      commands.MarkMatchViewedUseCase
	CreateAssignment     commands.CreateAssignmentUseCase
	TransitionAssignment commands.TransitionAssignmentUseCase
	ListGrants           queries.ListGrantsUseCase
	ListTopMatches       queries.ListTopMatchesUseCase
	ListAssignments      queries.ListAssignmentsUseCase
	Logger               *slog.Logger
}

func (h Handler) IngestGrantsHandler(
	ctx context.Context,
	actorID string,
	platformAdmin bool,
	request httptransport.IngestGrantsRequest,
) (httptransport.IngestGrantsResponse, error) {
	inputs := make([]commands.GrantInput, 0, len(request.Grants))
	for _, grant := range request.Grants {
		inputs = append(inputs, commands.GrantInput{
			ExternalID:  grant.ExternalID,
			Name:        grant.Name,
			Funder:      grant.Funder,
			Description: grant.Description,
			Tags:        grant.Tags,
			Region:      grant.Region,
			AmountMin:   grant.AmountMin,
			AmountMax:   grant.AmountMax,
			Deadline:    grant.Deadline,
			Embedding:   grant.Embedding,
			SourceURL:   grant.SourceURL,
		})
	}
	result, err := h.IngestGrants.Execute(ctx, commands.IngestGrantsCommand{
		ActorID:       actorID,
		PlatformAdmin: platformAdmin,
		Grants:        inputs,
	})
	if err != nil {
		return httptransport.IngestGrantsResponse{}, err
	}
	return httptransport.IngestGrantsResponse{Created: result.Created, Updated: result.Updated}, nil
}

func (h Handler) ListGrantsHandler(
	ctx context.Context,
	actorID string,
	platformAdmin bool,
	openOnly bool,
) (httptransport.ListGrantsResponse, error) {
	grants, err := h.ListGrants.Execute(ctx, queries.ListGrantsQuery{
		ActorID:       actorID,
		PlatformAdmin: platformAdmin,
		OpenOnly:      openOnly,
	})
	if err != nil {
		return httptransport.ListGrantsResponse{}, err
	}
	items := make([]httptransport.GrantDTO, 0, len(grants))
	for _, grant := range grants {
		items = append(items, grantDTO(grant))
	}
	return httptransport.ListGrantsResponse{Grants: items}, nil
}

func (h Handler) ComputeMatchHandler(
	ctx context.Context,
	actorID string,
	platformAdmin bool,
	orgID string,
	request httptransport.ComputeMatchRequest,
) (httptransport.MatchDTO, error) {
	match, err := h.ComputeMatch.Execute(ctx, commands.ComputeMatchCommand{
		ActorID:       actorID,
		PlatformAdmin: platformAdmin,
		OrgID:         orgID,
		GrantID:       request.GrantID,
	})
	if err != nil {
		return httptransport.MatchDTO{}, err
	}
	return matchDTO(match), nil
}

func (h Handler) RefreshMatchesHandler(
	ctx context.Context,
	actorID string,
	platformAdmin bool,
	orgID string,
) (httptransport.RefreshMatchesResponse, error) {
	result, err := h.RefreshMatches.Execute(ctx, commands.RefreshMatchesCommand{
		ActorID:       actorID,
		PlatformAdmin: platformAdmin,
		OrgID:         orgID,
	})
	if err != nil {
		return httptransport.RefreshMatchesResponse{}, err
	}
	return httptransport.RefreshMatchesResponse{Computed: result.Computed, Skipped: result.Skipped}, nil
}

func (h Handler) ListTopMatchesHandler(
	ctx context.Context,
	actorID string,
	platformAdmin bool,
	orgID string,
	limit int,
) (httptransport.ListTopMatchesResponse, error) {
	ranked, err := h.ListTopMatches.Execute(ctx, queries.ListTopMatchesQuery{
		ActorID:       actorID,
		PlatformAdmin: platformAdmin,
		OrgID:         orgID,
		Limit:         limit,
	})
	if err != nil {
		return httptransport.ListTopMatchesResponse{}, err
	}
	items := make([]httptransport.TopMatchDTO, 0, len(ranked))
	for _, item := range ranked {
		items = append(items, topMatchDTO(item))
	}
	return httptransport.ListTopMatchesResponse{OrgID: orgID, Matches: items}, nil
}

func (h Handler) MarkMatchViewedHandler(
	ctx context.Context,
	actorID string,
	platformAdmin bool,
	orgID string,
	grantID string,
) (httptransport.MatchDTO, error) {
	match, err := h.MarkMatchViewed.Execute(ctx, commands.MarkMatchViewedCommand{
		ActorID:       actorID,
		PlatformAdmin: platformAdmin,
		OrgID:         orgID,
		GrantID:       grantID,
	})
	if err != nil {
		return httptransport.MatchDTO{}, err
	}
	return matchDTO(match), nil
}

func (h Handler) CreateAssignmentHandler(
	ctx context.Context,
	actorID string,
	platformAdmin bool,
	orgID string,
	request httptransport.CreateAssignmentRequest,
) (httptransport.AssignmentDTO, error) {
	assignment, err := h.CreateAssignment.Execute(ctx, commands.CreateAssignmentCommand{
		ActorID:       actorID,
		PlatformAdmin: platformAdmin,
		OrgID:         orgID,
		GrantID:       request.GrantID,
		Notes:         request.Notes,
	})
	if err != nil {
		return httptransport.AssignmentDTO{}, err
	}
	return assignmentDTO(assignment), nil
}

func (h Handler) TransitionAssignmentHandler(
	ctx context.Context,
	actorID string,
	platformAdmin bool,
	orgID string,
	request httptransport.TransitionAssignmentRequest,
) (httptransport.AssignmentDTO, error) {
	assignment, err := h.TransitionAssignment.Execute(ctx, commands.TransitionAssignmentCommand{
		ActorID:       actorID,
		PlatformAdmin: platformAdmin,
		OrgID:         orgID,
		GrantID:       request.GrantID,
		To:            entities.AssignmentStatus(request.To),
		Notes:         request.Notes,
	})
	if err != nil {
		return httptransport.AssignmentDTO{}, err
	}
	return assignmentDTO(assignment), nil
}

func (h Handler) ListAssignmentsHandler(
	ctx context.Context,
	actorID string,
	platformAdmin bool,
	orgID string,
) (httptransport.ListAssignmentsResponse, error) {
	assignments, err := h.ListAssignments.Execute(ctx, queries.ListAssignmentsQuery{
		ActorID:       actorID,
		PlatformAdmin: platformAdmin,
		OrgID:         orgID,
	})
	if err != nil {
		return httptransport.ListAssignmentsResponse{}, err
	}
	items := make([]httptransport.AssignmentDTO, 0, len(assignments))
	for _, assignment := range assignments {
		items = append(items, assignmentDTO(assignment))
	}
	return httptransport.ListAssignmentsResponse{OrgID: orgID, Assignments: items}, nil
}

func grantDTO(grant entities.Grant) httptransport.GrantDTO {
	return httptransport.GrantDTO{
		GrantID:     grant.GrantID,
		ExternalID:  grant.ExternalID,
		Name:        grant.Name,
		Funder:      grant.Funder,
		Description: grant.Description,
		Tags:        grant.Tags,
		Region:      grant.Region,
		AmountMin:   grant.AmountMin,
		AmountMax:   grant.AmountMax,
		Deadline:    grant.Deadline,
		Status:      string(grant.Status),
		SourceURL:   grant.SourceURL,
		CreatedAt:   grant.CreatedAt,
		UpdatedAt:   grant.UpdatedAt,
	}
}

func matchDTO(match entities.Match) httptransport.MatchDTO {
	return httptransport.MatchDTO{
		MatchID: match.MatchID,
		OrgID:   match.OrgID,
		GrantID: match.GrantID,
		Score:   match.Score,
		Factors: httptransport.AlignmentFactorsDTO{
			CategoricalOverlap: match.Factors.CategoricalOverlap,
			SemanticSimilarity: match.Factors.SemanticSimilarity,
			SharedTags:         match.Factors.SharedTags,
			CategoricalWeight:  match.Factors.CategoricalWeight,
			SemanticWeight:     match.Factors.SemanticWeight,
		},
		UserViewed: match.UserViewed,
		MatchedAt:  match.MatchedAt,
	}
}

func topMatchDTO(item ports.RankedMatch) httptransport.TopMatchDTO {
	return httptransport.TopMatchDTO{
		Match:    matchDTO(item.Match),
		Deadline: item.Deadline,
	}
}

func assignmentDTO(assignment entities.Assignment) httptransport.AssignmentDTO {
	return httptransport.AssignmentDTO{
		AssignmentID: assignment.AssignmentID,
		OrgID:        assignment.OrgID,
		GrantID:      assignment.GrantID,
		Status:       string(assignment.Status),
		Notes:        assignment.Notes,
		CreatedBy:    assignment.CreatedBy,
		CreatedAt:    assignment.CreatedAt,
		UpdatedAt:    assignment.UpdatedAt,
	}
}
