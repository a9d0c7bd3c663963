package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	matchingerrors "grantstw/contexts/grant-portfolio/matching-engine/domain/errors"
	matchinghttp "grantstw/contexts/grant-portfolio/matching-engine/transport/http"
)

func (s *Server) handleIngestGrants(w http.ResponseWriter, r *http.Request) {
	actor, ok := resolveActor(r)
	if !ok {
		writeMatchingError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	var req matchinghttp.IngestGrantsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMatchingError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.matching.Handler.IngestGrantsHandler(r.Context(), actor.ID, actor.IsPlatformAdmin, req)
	if err != nil {
		writeMatchingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListGrants(w http.ResponseWriter, r *http.Request) {
	actor, ok := resolveActor(r)
	if !ok {
		writeMatchingError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	openOnly := r.URL.Query().Get("open_only") == "true"
	resp, err := s.matching.Handler.ListGrantsHandler(r.Context(), actor.ID, actor.IsPlatformAdmin, openOnly)
	if err != nil {
		writeMatchingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleComputeMatch(w http.ResponseWriter, r *http.Request) {
	actor, ok := resolveActor(r)
	if !ok {
		writeMatchingError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	var req matchinghttp.ComputeMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMatchingError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.matching.Handler.ComputeMatchHandler(r.Context(), actor.ID, actor.IsPlatformAdmin, r.PathValue("org_id"), req)
	if err != nil {
		writeMatchingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRefreshMatches(w http.ResponseWriter, r *http.Request) {
	actor, ok := resolveActor(r)
	if !ok {
		writeMatchingError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	resp, err := s.matching.Handler.RefreshMatchesHandler(r.Context(), actor.ID, actor.IsPlatformAdmin, r.PathValue("org_id"))
	if err != nil {
		writeMatchingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListTopMatches(w http.ResponseWriter, r *http.Request) {
	actor, ok := resolveActor(r)
	if !ok {
		writeMatchingError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	limit := 0
	if limitRaw := r.URL.Query().Get("limit"); limitRaw != "" {
		parsed, err := strconv.Atoi(limitRaw)
		if err != nil {
			writeMatchingError(w, http.StatusBadRequest, "invalid_limit", "limit must be an integer")
			return
		}
		limit = parsed
	}

	resp, err := s.matching.Handler.ListTopMatchesHandler(r.Context(), actor.ID, actor.IsPlatformAdmin, r.PathValue("org_id"), limit)
	if err != nil {
		writeMatchingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMarkMatchViewed(w http.ResponseWriter, r *http.Request) {
	actor, ok := resolveActor(r)
	if !ok {
		writeMatchingError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	resp, err := s.matching.Handler.MarkMatchViewedHandler(
		r.Context(),
		actor.ID,
		actor.IsPlatformAdmin,
		r.PathValue("org_id"),
		r.PathValue("grant_id"),
	)
	if err != nil {
		writeMatchingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateAssignment(w http.ResponseWriter, r *http.Request) {
	actor, ok := resolveActor(r)
	if !ok {
		writeMatchingError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	var req matchinghttp.CreateAssignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMatchingError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.matching.Handler.CreateAssignmentHandler(r.Context(), actor.ID, actor.IsPlatformAdmin, r.PathValue("org_id"), req)
	if err != nil {
		writeMatchingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleTransitionAssignment(w http.ResponseWriter, r *http.Request) {
	actor, ok := resolveActor(r)
	if !ok {
		writeMatchingError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	var req matchinghttp.TransitionAssignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMatchingError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.matching.Handler.TransitionAssignmentHandler(r.Context(), actor.ID, actor.IsPlatformAdmin, r.PathValue("org_id"), req)
	if err != nil {
		writeMatchingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListAssignments(w http.ResponseWriter, r *http.Request) {
	actor, ok := resolveActor(r)
	if !ok {
		writeMatchingError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	resp, err := s.matching.Handler.ListAssignmentsHandler(r.Context(), actor.ID, actor.IsPlatformAdmin, r.PathValue("org_id"))
	if err != nil {
		writeMatchingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeMatchingDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, matchingerrors.ErrInvalidActorID),
		errors.Is(err, matchingerrors.ErrInvalidOrgID),
		errors.Is(err, matchingerrors.ErrInvalidGrantID),
		errors.Is(err, matchingerrors.ErrInvalidGrant),
		errors.Is(err, matchingerrors.ErrInvalidStatus):
		writeMatchingError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, matchingerrors.ErrPermissionDenied):
		writeMatchingError(w, http.StatusForbidden, "permission_denied", err.Error())
	case errors.Is(err, matchingerrors.ErrOrganizationNotFound),
		errors.Is(err, matchingerrors.ErrGrantNotFound),
		errors.Is(err, matchingerrors.ErrMatchNotFound),
		errors.Is(err, matchingerrors.ErrAssignmentNotFound):
		writeMatchingError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, matchingerrors.ErrAssignmentExists):
		writeMatchingError(w, http.StatusConflict, "assignment_exists", err.Error())
	case errors.Is(err, matchingerrors.ErrInvalidTransition):
		writeMatchingError(w, http.StatusConflict, "invalid_transition", err.Error())
	case errors.Is(err, matchingerrors.ErrConflict):
		writeMatchingError(w, http.StatusConflict, "conflict", err.Error())
	default:
		writeMatchingError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeMatchingError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, matchinghttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}
