package httpadapter

import (
	"context"
	"log/slog"

	"grantstw/contexts/grant-portfolio/drafting-service/application/commands"
	"grantstw/contexts/grant-portfolio/drafting-service/application/queries"
	"grantstw/contexts/grant-portfolio/drafting-service/domain/entities"
	httptransport "grantstw/contexts/grant-portfolio/drafting-service/transport/http"
)

// Handler maps HTTP DTOs to application commands/queries.
type Handler struct {
	CreateDraft   commands.CreateDraftUseCase
	AppendVersion commands.AppendVersionUseCase
	RollbackDraft commands.RollbackDraftUseCase
	GetLineage    queries.GetLineageUseCase
	ListDrafts    queries.ListDraftsUseCase
	Logger        *slog.Logger
}

func (h Handler) CreateDraftHandler(
	ctx context.Context,
	actorID string,
	platformAdmin bool,
	orgID string,
	request httptransport.CreateDraftRequest,
) (httptransport.CreateDraftResponse, error) {
	var sections *entities.DraftSections
	if request.Sections != nil {
		converted := sectionsFromDTO(*request.Sections)
		sections = &converted
	}
	result, err := h.CreateDraft.Execute(ctx, commands.CreateDraftCommand{
		ActorID:       actorID,
		PlatformAdmin: platformAdmin,
		OrgID:         orgID,
		GrantID:       request.GrantID,
		Title:         request.Title,
		Sections:      sections,
	})
	if err != nil {
		return httptransport.CreateDraftResponse{}, err
	}
	return httptransport.CreateDraftResponse{
		Draft:   draftDTO(result.Draft),
		Version: versionDTO(result.Version),
	}, nil
}

func (h Handler) AppendVersionHandler(
	ctx context.Context,
	actorID string,
	platformAdmin bool,
	orgID string,
	draftID string,
	request httptransport.AppendVersionRequest,
) (httptransport.DraftVersionDTO, error) {
	version, err := h.AppendVersion.Execute(ctx, commands.AppendVersionCommand{
		ActorID:          actorID,
		PlatformAdmin:    platformAdmin,
		OrgID:            orgID,
		DraftID:          draftID,
		BasedOnVersionID: request.BasedOnVersionID,
		Sections:         sectionsFromDTO(request.Sections),
		Note:             request.Note,
	})
	if err != nil {
		return httptransport.DraftVersionDTO{}, err
	}
	return versionDTO(version), nil
}

func (h Handler) RollbackDraftHandler(
	ctx context.Context,
	actorID string,
	platformAdmin bool,
	orgID string,
	draftID string,
	request httptransport.RollbackDraftRequest,
) (httptransport.DraftDTO, error) {
	draft, err := h.RollbackDraft.Execute(ctx, commands.RollbackDraftCommand{
		ActorID:       actorID,
		PlatformAdmin: platformAdmin,
		OrgID:         orgID,
		DraftID:       draftID,
		VersionID:     request.VersionID,
	})
	if err != nil {
		return httptransport.DraftDTO{}, err
	}
	return draftDTO(draft), nil
}

func (h Handler) GetLineageHandler(
	ctx context.Context,
	actorID string,
	platformAdmin bool,
	orgID string,
	draftID string,
) (httptransport.LineageResponse, error) {
	result, err := h.GetLineage.Execute(ctx, queries.GetLineageQuery{
		ActorID:       actorID,
		PlatformAdmin: platformAdmin,
		OrgID:         orgID,
		DraftID:       draftID,
	})
	if err != nil {
		return httptransport.LineageResponse{}, err
	}
	chain := make([]httptransport.DraftVersionDTO, 0, len(result.Chain))
	for _, version := range result.Chain {
		chain = append(chain, versionDTO(version))
	}
	return httptransport.LineageResponse{Draft: draftDTO(result.Draft), Chain: chain}, nil
}

func (h Handler) ListDraftsHandler(
	ctx context.Context,
	actorID string,
	platformAdmin bool,
	orgID string,
) (httptransport.ListDraftsResponse, error) {
	drafts, err := h.ListDrafts.Execute(ctx, queries.ListDraftsQuery{
		ActorID:       actorID,
		PlatformAdmin: platformAdmin,
		OrgID:         orgID,
	})
	if err != nil {
		return httptransport.ListDraftsResponse{}, err
	}
	items := make([]httptransport.DraftDTO, 0, len(drafts))
	for _, draft := range drafts {
		items = append(items, draftDTO(draft))
	}
	return httptransport.ListDraftsResponse{OrgID: orgID, Drafts: items}, nil
}

func sectionsFromDTO(dto httptransport.DraftSectionsDTO) entities.DraftSections {
	return entities.DraftSections{
		CoverLetter:      dto.CoverLetter,
		OrgSummary:       dto.OrgSummary,
		ProblemStatement: dto.ProblemStatement,
		Activities:       dto.Activities,
		Measurement:      dto.Measurement,
		Budget:           dto.Budget,
		Attachments:      dto.Attachments,
	}
}

func sectionsDTO(sections entities.DraftSections) httptransport.DraftSectionsDTO {
	return httptransport.DraftSectionsDTO{
		CoverLetter:      sections.CoverLetter,
		OrgSummary:       sections.OrgSummary,
		ProblemStatement: sections.ProblemStatement,
		Activities:       sections.Activities,
		Measurement:      sections.Measurement,
		Budget:           sections.Budget,
		Attachments:      sections.Attachments,
	}
}

func draftDTO(draft entities.Draft) httptransport.DraftDTO {
	return httptransport.DraftDTO{
		DraftID:          draft.DraftID,
		OrgID:            draft.OrgID,
		GrantID:          draft.GrantID,
		Title:            draft.Title,
		CurrentVersionID: draft.CurrentVersionID,
		CreatedBy:        draft.CreatedBy,
		CreatedAt:        draft.CreatedAt,
		UpdatedAt:        draft.UpdatedAt,
	}
}

func versionDTO(version entities.DraftVersion) httptransport.DraftVersionDTO {
	return httptransport.DraftVersionDTO{
		VersionID:       version.VersionID,
		DraftID:         version.DraftID,
		VersionNumber:   version.VersionNumber,
		ParentVersionID: version.ParentVersionID,
		Sections:        sectionsDTO(version.Sections),
		AuthorID:        version.AuthorID,
		Note:            version.Note,
		CreatedAt:       version.CreatedAt,
	}
}
