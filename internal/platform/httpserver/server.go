package httpserver

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	drafting "grantstw/contexts/grant-portfolio/drafting-service"
	matching "grantstw/contexts/grant-portfolio/matching-engine"
	membership "grantstw/contexts/identity-access/membership-service"
	membershipentities "grantstw/contexts/identity-access/membership-service/domain/entities"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "grantstw/internal/platform/httpserver/docs"
)

type Server struct {
	mux        *http.ServeMux
	logger     *slog.Logger
	addr       string
	membership membership.Module
	matching   matching.Module
	drafting   drafting.Module
}

func New(
	membershipModule membership.Module,
	matchingModule matching.Module,
	draftingModule drafting.Module,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:        http.NewServeMux(),
		logger:     logger,
		addr:       addr,
		membership: membershipModule,
		matching:   matchingModule,
		drafting:   draftingModule,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("POST /api/orgs", s.handleCreateOrganization)
	s.mux.HandleFunc("GET /api/orgs/{org_id}", s.handleGetOrganization)
	s.mux.HandleFunc("POST /api/orgs/{org_id}/members", s.handleInviteMember)
	s.mux.HandleFunc("POST /api/orgs/{org_id}/members/status", s.handleSetMemberStatus)
	s.mux.HandleFunc("GET /api/orgs/{org_id}/members", s.handleListMembers)
	s.mux.HandleFunc("PUT /api/orgs/{org_id}/fit-profile", s.handleUpdateFitProfile)
	s.mux.HandleFunc("POST /api/authz/check", s.handleAuthorizeCheck)

	s.mux.HandleFunc("POST /api/grants/ingest", s.handleIngestGrants)
	s.mux.HandleFunc("GET /api/grants", s.handleListGrants)
	s.mux.HandleFunc("POST /api/orgs/{org_id}/matches/compute", s.handleComputeMatch)
	s.mux.HandleFunc("POST /api/orgs/{org_id}/matches/refresh", s.handleRefreshMatches)
	s.mux.HandleFunc("GET /api/orgs/{org_id}/matches", s.handleListTopMatches)
	s.mux.HandleFunc("POST /api/orgs/{org_id}/matches/{grant_id}/viewed", s.handleMarkMatchViewed)
	s.mux.HandleFunc("POST /api/orgs/{org_id}/assignments", s.handleCreateAssignment)
	s.mux.HandleFunc("POST /api/orgs/{org_id}/assignments/transition", s.handleTransitionAssignment)
	s.mux.HandleFunc("GET /api/orgs/{org_id}/assignments", s.handleListAssignments)

	s.mux.HandleFunc("POST /api/orgs/{org_id}/drafts", s.handleCreateDraft)
	s.mux.HandleFunc("GET /api/orgs/{org_id}/drafts", s.handleListDrafts)
	s.mux.HandleFunc("POST /api/orgs/{org_id}/drafts/{draft_id}/versions", s.handleAppendVersion)
	s.mux.HandleFunc("POST /api/orgs/{org_id}/drafts/{draft_id}/rollback", s.handleRollbackDraft)
	s.mux.HandleFunc("GET /api/orgs/{org_id}/drafts/{draft_id}/lineage", s.handleGetLineage)
}

// resolveActor reads the caller identity from headers. An empty actor id is a
// transport-level failure; role evaluation happens in the application layer.
func resolveActor(r *http.Request) (membershipentities.Actor, bool) {
	actorID := strings.TrimSpace(r.Header.Get("X-User-Id"))
	if actorID == "" {
		return membershipentities.Actor{}, false
	}
	return membershipentities.Actor{
		ID:              actorID,
		IsPlatformAdmin: strings.EqualFold(strings.TrimSpace(r.Header.Get("X-Platform-Admin")), "true"),
	}, true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
