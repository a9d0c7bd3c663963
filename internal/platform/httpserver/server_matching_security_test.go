package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"grantstw/contexts/grant-portfolio/matching-engine/domain/entities"
	matchinghttp "grantstw/contexts/grant-portfolio/matching-engine/transport/http"
)

func ingestTestGrant(t *testing.T, server *Server) string {
	t.Helper()
	body := []byte(`{"grants":[{"external_id":"feed-1","name":"Community Education Fund","tags":["education"],"deadline":"2027-06-01T00:00:00Z","description":"education programs for youth"}]}`)
	req := httptest.NewRequest(http.MethodPost, "/api/grants/ingest", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Id", "platform-ops")
	req.Header.Set("X-Platform-Admin", "true")

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}

	listReq := httptest.NewRequest(http.MethodGet, "/api/grants", nil)
	listReq.Header.Set("X-User-Id", "platform-ops")

	listRR := httptest.NewRecorder()
	server.mux.ServeHTTP(listRR, listReq)
	if listRR.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", listRR.Code, listRR.Body.String())
	}

	var listResp matchinghttp.ListGrantsResponse
	if err := json.Unmarshal(listRR.Body.Bytes(), &listResp); err != nil {
		t.Fatalf("decode list grants response: %v", err)
	}
	if len(listResp.Grants) != 1 {
		t.Fatalf("expected one grant, got %d", len(listResp.Grants))
	}
	return listResp.Grants[0].GrantID
}

func TestIngestGrantsRequiresUserHeader(t *testing.T) {
	server := newTestServer()
	body := []byte(`{"grants":[]}`)
	req := httptest.NewRequest(http.MethodPost, "/api/grants/ingest", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestIngestGrantsPlatformAdminOnly(t *testing.T) {
	server := newTestServer()
	body := []byte(`{"grants":[{"external_id":"feed-1","name":"Fund","deadline":"2027-06-01T00:00:00Z"}]}`)
	req := httptest.NewRequest(http.MethodPost, "/api/grants/ingest", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Id", "member-1")

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestComputeMatchForbiddenForNonMember(t *testing.T) {
	server := newTestServer()
	orgID := createTestOrganization(t, server, "owner-1")
	grantID := ingestTestGrant(t, server)

	body, _ := json.Marshal(matchinghttp.ComputeMatchRequest{GrantID: grantID})
	req := httptest.NewRequest(http.MethodPost, "/api/orgs/"+orgID+"/matches/compute", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Id", "stranger-1")

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestComputeMatchThroughHTTP(t *testing.T) {
	server := newTestServer()
	orgID := createTestOrganization(t, server, "owner-1")
	grantID := ingestTestGrant(t, server)

	server.matching.Store.SeedOrgProfile(entities.OrgProfile{
		OrgID:     orgID,
		Name:      "Rivertown Youth Alliance",
		FocusTags: []string{"education", "youth"},
	})

	body, _ := json.Marshal(matchinghttp.ComputeMatchRequest{GrantID: grantID})
	req := httptest.NewRequest(http.MethodPost, "/api/orgs/"+orgID+"/matches/compute", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Id", "owner-1")

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}

	var match matchinghttp.MatchDTO
	if err := json.Unmarshal(rr.Body.Bytes(), &match); err != nil {
		t.Fatalf("decode match response: %v", err)
	}
	if match.Score < 0 || match.Score > 100 {
		t.Fatalf("score out of range: %v", match.Score)
	}
	if match.Factors.CategoricalOverlap != 1.0 {
		t.Fatalf("expected full tag overlap, got %v", match.Factors.CategoricalOverlap)
	}

	listReq := httptest.NewRequest(http.MethodGet, "/api/orgs/"+orgID+"/matches?limit=5", nil)
	listReq.Header.Set("X-User-Id", "owner-1")

	listRR := httptest.NewRecorder()
	server.mux.ServeHTTP(listRR, listReq)
	if listRR.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", listRR.Code, listRR.Body.String())
	}

	var listResp matchinghttp.ListTopMatchesResponse
	if err := json.Unmarshal(listRR.Body.Bytes(), &listResp); err != nil {
		t.Fatalf("decode top matches response: %v", err)
	}
	if len(listResp.Matches) != 1 {
		t.Fatalf("expected one ranked match, got %d", len(listResp.Matches))
	}
}

func TestAssignmentLifecycleThroughHTTP(t *testing.T) {
	server := newTestServer()
	orgID := createTestOrganization(t, server, "owner-1")
	grantID := ingestTestGrant(t, server)

	createBody, _ := json.Marshal(matchinghttp.CreateAssignmentRequest{GrantID: grantID})
	createReq := httptest.NewRequest(http.MethodPost, "/api/orgs/"+orgID+"/assignments", bytes.NewReader(createBody))
	createReq.Header.Set("Content-Type", "application/json")
	createReq.Header.Set("X-User-Id", "owner-1")

	createRR := httptest.NewRecorder()
	server.mux.ServeHTTP(createRR, createReq)
	if createRR.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", createRR.Code, createRR.Body.String())
	}

	transitionBody, _ := json.Marshal(matchinghttp.TransitionAssignmentRequest{GrantID: grantID, To: "qualified"})
	transitionReq := httptest.NewRequest(http.MethodPost, "/api/orgs/"+orgID+"/assignments/transition", bytes.NewReader(transitionBody))
	transitionReq.Header.Set("Content-Type", "application/json")
	transitionReq.Header.Set("X-User-Id", "owner-1")

	transitionRR := httptest.NewRecorder()
	server.mux.ServeHTTP(transitionRR, transitionReq)
	if transitionRR.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", transitionRR.Code, transitionRR.Body.String())
	}

	skipBody, _ := json.Marshal(matchinghttp.TransitionAssignmentRequest{GrantID: grantID, To: "won"})
	skipReq := httptest.NewRequest(http.MethodPost, "/api/orgs/"+orgID+"/assignments/transition", bytes.NewReader(skipBody))
	skipReq.Header.Set("Content-Type", "application/json")
	skipReq.Header.Set("X-User-Id", "owner-1")

	skipRR := httptest.NewRecorder()
	server.mux.ServeHTTP(skipRR, skipReq)
	if skipRR.Code != http.StatusConflict {
		t.Fatalf("expected 409 for skipped stage, got %d body=%s", skipRR.Code, skipRR.Body.String())
	}
}
