package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"grantstw/contexts/grant-portfolio/drafting-service/domain/services"
	draftinghttp "grantstw/contexts/grant-portfolio/drafting-service/transport/http"
)

func seedDraftingContext(server *Server, orgID string) {
	server.drafting.Store.SeedOrgContext(orgID, services.OrgContext{
		Name:      "Rivertown Youth Alliance",
		Region:    "Rivertown County",
		Mission:   "Every young person thrives",
		FocusTags: []string{"education", "youth"},
	})
	server.drafting.Store.SeedGrantContext("grant-1", services.GrantContext{
		Name:   "Community Education Fund",
		Funder: "Bright Futures Foundation",
		Tags:   []string{"education"},
	})
}

func TestCreateDraftRequiresUserHeader(t *testing.T) {
	server := newTestServer()
	body := []byte(`{"grant_id":"grant-1","title":"Proposal"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/orgs/org-1/drafts", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestCreateDraftForbiddenForNonMember(t *testing.T) {
	server := newTestServer()
	orgID := createTestOrganization(t, server, "owner-1")
	seedDraftingContext(server, orgID)

	body := []byte(`{"grant_id":"grant-1","title":"Proposal"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/orgs/"+orgID+"/drafts", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Id", "stranger-1")

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestDraftLifecycleThroughHTTP(t *testing.T) {
	server := newTestServer()
	orgID := createTestOrganization(t, server, "owner-1")
	seedDraftingContext(server, orgID)

	createBody := []byte(`{"grant_id":"grant-1","title":"Education Fund Proposal"}`)
	createReq := httptest.NewRequest(http.MethodPost, "/api/orgs/"+orgID+"/drafts", bytes.NewReader(createBody))
	createReq.Header.Set("Content-Type", "application/json")
	createReq.Header.Set("X-User-Id", "owner-1")

	createRR := httptest.NewRecorder()
	server.mux.ServeHTTP(createRR, createReq)
	if createRR.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", createRR.Code, createRR.Body.String())
	}

	var created draftinghttp.CreateDraftResponse
	if err := json.Unmarshal(createRR.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode create draft response: %v", err)
	}
	if created.Version.VersionNumber != 1 {
		t.Fatalf("expected composer-seeded version one, got %d", created.Version.VersionNumber)
	}
	if !strings.Contains(created.Version.Sections.CoverLetter, "Bright Futures Foundation") {
		t.Fatalf("expected composed cover letter, got %q", created.Version.Sections.CoverLetter)
	}

	appendBody := []byte(`{"sections":{"cover_letter":"Revised opening"},"note":"tightened intro"}`)
	appendReq := httptest.NewRequest(
		http.MethodPost,
		"/api/orgs/"+orgID+"/drafts/"+created.Draft.DraftID+"/versions",
		bytes.NewReader(appendBody),
	)
	appendReq.Header.Set("Content-Type", "application/json")
	appendReq.Header.Set("X-User-Id", "owner-1")

	appendRR := httptest.NewRecorder()
	server.mux.ServeHTTP(appendRR, appendReq)
	if appendRR.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", appendRR.Code, appendRR.Body.String())
	}

	lineageReq := httptest.NewRequest(
		http.MethodGet,
		"/api/orgs/"+orgID+"/drafts/"+created.Draft.DraftID+"/lineage",
		nil,
	)
	lineageReq.Header.Set("X-User-Id", "owner-1")

	lineageRR := httptest.NewRecorder()
	server.mux.ServeHTTP(lineageRR, lineageReq)
	if lineageRR.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", lineageRR.Code, lineageRR.Body.String())
	}

	var lineage draftinghttp.LineageResponse
	if err := json.Unmarshal(lineageRR.Body.Bytes(), &lineage); err != nil {
		t.Fatalf("decode lineage response: %v", err)
	}
	if len(lineage.Chain) != 2 {
		t.Fatalf("expected chain of 2, got %d", len(lineage.Chain))
	}
	if lineage.Chain[0].VersionNumber != 2 || lineage.Chain[1].VersionNumber != 1 {
		t.Fatalf("expected head-first chain, got %v", lineage.Chain)
	}

	rollbackBody, _ := json.Marshal(draftinghttp.RollbackDraftRequest{VersionID: lineage.Chain[1].VersionID})
	rollbackReq := httptest.NewRequest(
		http.MethodPost,
		"/api/orgs/"+orgID+"/drafts/"+created.Draft.DraftID+"/rollback",
		bytes.NewReader(rollbackBody),
	)
	rollbackReq.Header.Set("Content-Type", "application/json")
	rollbackReq.Header.Set("X-User-Id", "owner-1")

	rollbackRR := httptest.NewRecorder()
	server.mux.ServeHTTP(rollbackRR, rollbackReq)
	if rollbackRR.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rollbackRR.Code, rollbackRR.Body.String())
	}

	var rolled draftinghttp.DraftDTO
	if err := json.Unmarshal(rollbackRR.Body.Bytes(), &rolled); err != nil {
		t.Fatalf("decode rollback response: %v", err)
	}
	if rolled.CurrentVersionID != lineage.Chain[1].VersionID {
		t.Fatalf("expected head moved back to version one")
	}

	// Branching from version two by request, without rolling forward first.
	branchBody, _ := json.Marshal(draftinghttp.AppendVersionRequest{
		Sections:         draftinghttp.DraftSectionsDTO{CoverLetter: "Alternate opening"},
		BasedOnVersionID: lineage.Chain[0].VersionID,
	})
	branchReq := httptest.NewRequest(
		http.MethodPost,
		"/api/orgs/"+orgID+"/drafts/"+created.Draft.DraftID+"/versions",
		bytes.NewReader(branchBody),
	)
	branchReq.Header.Set("Content-Type", "application/json")
	branchReq.Header.Set("X-User-Id", "owner-1")

	branchRR := httptest.NewRecorder()
	server.mux.ServeHTTP(branchRR, branchReq)
	if branchRR.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", branchRR.Code, branchRR.Body.String())
	}

	var branched draftinghttp.DraftVersionDTO
	if err := json.Unmarshal(branchRR.Body.Bytes(), &branched); err != nil {
		t.Fatalf("decode branched version response: %v", err)
	}
	if branched.VersionNumber != 3 {
		t.Fatalf("expected version number 3, got %d", branched.VersionNumber)
	}
	if branched.ParentVersionID != lineage.Chain[0].VersionID {
		t.Fatalf("expected branch parent to be the requested base version")
	}
}
