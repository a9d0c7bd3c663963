package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	draftingerrors "grantstw/contexts/grant-portfolio/drafting-service/domain/errors"
	draftinghttp "grantstw/contexts/grant-portfolio/drafting-service/transport/http"
)

func (s *Server) handleCreateDraft(w http.ResponseWriter, r *http.Request) {
	actor, ok := resolveActor(r)
	if !ok {
		writeDraftingError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	var req draftinghttp.CreateDraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDraftingError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.drafting.Handler.CreateDraftHandler(r.Context(), actor.ID, actor.IsPlatformAdmin, r.PathValue("org_id"), req)
	if err != nil {
		writeDraftingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListDrafts(w http.ResponseWriter, r *http.Request) {
	actor, ok := resolveActor(r)
	if !ok {
		writeDraftingError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	resp, err := s.drafting.Handler.ListDraftsHandler(r.Context(), actor.ID, actor.IsPlatformAdmin, r.PathValue("org_id"))
	if err != nil {
		writeDraftingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAppendVersion(w http.ResponseWriter, r *http.Request) {
	actor, ok := resolveActor(r)
	if !ok {
		writeDraftingError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	var req draftinghttp.AppendVersionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDraftingError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.drafting.Handler.AppendVersionHandler(
		r.Context(),
		actor.ID,
		actor.IsPlatformAdmin,
		r.PathValue("org_id"),
		r.PathValue("draft_id"),
		req,
	)
	if err != nil {
		writeDraftingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleRollbackDraft(w http.ResponseWriter, r *http.Request) {
	actor, ok := resolveActor(r)
	if !ok {
		writeDraftingError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	var req draftinghttp.RollbackDraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDraftingError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.drafting.Handler.RollbackDraftHandler(
		r.Context(),
		actor.ID,
		actor.IsPlatformAdmin,
		r.PathValue("org_id"),
		r.PathValue("draft_id"),
		req,
	)
	if err != nil {
		writeDraftingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetLineage(w http.ResponseWriter, r *http.Request) {
	actor, ok := resolveActor(r)
	if !ok {
		writeDraftingError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	resp, err := s.drafting.Handler.GetLineageHandler(
		r.Context(),
		actor.ID,
		actor.IsPlatformAdmin,
		r.PathValue("org_id"),
		r.PathValue("draft_id"),
	)
	if err != nil {
		writeDraftingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeDraftingDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, draftingerrors.ErrInvalidActorID),
		errors.Is(err, draftingerrors.ErrInvalidOrgID),
		errors.Is(err, draftingerrors.ErrInvalidGrantID),
		errors.Is(err, draftingerrors.ErrInvalidDraftID),
		errors.Is(err, draftingerrors.ErrInvalidVersionID),
		errors.Is(err, draftingerrors.ErrInvalidTitle):
		writeDraftingError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, draftingerrors.ErrPermissionDenied):
		writeDraftingError(w, http.StatusForbidden, "permission_denied", err.Error())
	case errors.Is(err, draftingerrors.ErrDraftNotFound),
		errors.Is(err, draftingerrors.ErrVersionNotFound):
		writeDraftingError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, draftingerrors.ErrCrossDraftVersion):
		writeDraftingError(w, http.StatusConflict, "cross_draft_version", err.Error())
	case errors.Is(err, draftingerrors.ErrLineageCorrupt):
		writeDraftingError(w, http.StatusInternalServerError, "lineage_corrupt", err.Error())
	case errors.Is(err, draftingerrors.ErrConflict):
		writeDraftingError(w, http.StatusConflict, "conflict", err.Error())
	default:
		writeDraftingError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeDraftingError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, draftinghttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}
