package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	membershiperrors "grantstw/contexts/identity-access/membership-service/domain/errors"
	membershiphttp "grantstw/contexts/identity-access/membership-service/transport/http"
)

func (s *Server) handleCreateOrganization(w http.ResponseWriter, r *http.Request) {
	actor, ok := resolveActor(r)
	if !ok {
		writeMembershipError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	var req membershiphttp.CreateOrganizationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMembershipError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.membership.Handler.CreateOrganizationHandler(r.Context(), actor, req)
	if err != nil {
		writeMembershipDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGetOrganization(w http.ResponseWriter, r *http.Request) {
	actor, ok := resolveActor(r)
	if !ok {
		writeMembershipError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	resp, err := s.membership.Handler.GetOrganizationHandler(r.Context(), actor, r.PathValue("org_id"))
	if err != nil {
		writeMembershipDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleInviteMember(w http.ResponseWriter, r *http.Request) {
	actor, ok := resolveActor(r)
	if !ok {
		writeMembershipError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	var req membershiphttp.InviteMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMembershipError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.membership.Handler.InviteMemberHandler(r.Context(), actor, r.PathValue("org_id"), req)
	if err != nil {
		writeMembershipDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleSetMemberStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := resolveActor(r)
	if !ok {
		writeMembershipError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	var req membershiphttp.SetMemberStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMembershipError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.membership.Handler.SetMemberStatusHandler(r.Context(), actor, r.PathValue("org_id"), req)
	if err != nil {
		writeMembershipDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListMembers(w http.ResponseWriter, r *http.Request) {
	actor, ok := resolveActor(r)
	if !ok {
		writeMembershipError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	resp, err := s.membership.Handler.ListMembersHandler(r.Context(), actor, r.PathValue("org_id"))
	if err != nil {
		writeMembershipDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdateFitProfile(w http.ResponseWriter, r *http.Request) {
	actor, ok := resolveActor(r)
	if !ok {
		writeMembershipError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	var req membershiphttp.UpdateFitProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMembershipError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.membership.Handler.UpdateFitProfileHandler(r.Context(), actor, r.PathValue("org_id"), req)
	if err != nil {
		writeMembershipDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAuthorizeCheck(w http.ResponseWriter, r *http.Request) {
	actor, ok := resolveActor(r)
	if !ok {
		writeMembershipError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	var req membershiphttp.AuthorizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMembershipError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.membership.Handler.AuthorizeHandler(r.Context(), actor, req)
	if err != nil {
		writeMembershipDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeMembershipDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, membershiperrors.ErrInvalidActorID),
		errors.Is(err, membershiperrors.ErrInvalidOrgID),
		errors.Is(err, membershiperrors.ErrInvalidRegistryKey),
		errors.Is(err, membershiperrors.ErrInvalidRole),
		errors.Is(err, membershiperrors.ErrInvalidStatus),
		errors.Is(err, membershiperrors.ErrUnknownAction):
		writeMembershipError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, membershiperrors.ErrPermissionDenied):
		writeMembershipError(w, http.StatusForbidden, "permission_denied", err.Error())
	case errors.Is(err, membershiperrors.ErrOrganizationNotFound),
		errors.Is(err, membershiperrors.ErrMembershipNotFound):
		writeMembershipError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, membershiperrors.ErrOrganizationExists):
		writeMembershipError(w, http.StatusConflict, "organization_exists", err.Error())
	case errors.Is(err, membershiperrors.ErrLastOwner):
		writeMembershipError(w, http.StatusConflict, "last_owner", err.Error())
	default:
		writeMembershipError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeMembershipError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, membershiphttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}
