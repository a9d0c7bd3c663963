package services

import (
	"errors"
	"strings"
	"testing"
	"time"

	"grantstw/contexts/grant-portfolio/drafting-service/domain/entities"
	domainerrors "grantstw/contexts/grant-portfolio/drafting-service/domain/errors"
)

func TestComposeSectionsIsDeterministic(t *testing.T) {
	org := OrgContext{
		Name:         "Rivertown Youth Alliance",
		Region:       "Rivertown County",
		Mission:      "Every young person thrives",
		FocusTags:    []string{"education", "youth"},
		AnnualBudget: "$1.2M",
	}
	grant := GrantContext{
		Name:      "Community Education Fund",
		Funder:    "Bright Futures Foundation",
		Tags:      []string{"education", "equity"},
		AmountMin: "$50,000",
		AmountMax: "$150,000",
	}

	first := ComposeSections(org, grant)
	second := ComposeSections(org, grant)

	if first.CoverLetter != second.CoverLetter ||
		first.OrgSummary != second.OrgSummary ||
		first.ProblemStatement != second.ProblemStatement ||
		first.Activities != second.Activities ||
		first.Measurement != second.Measurement ||
		first.Budget != second.Budget {
		t.Fatalf("expected identical sections for identical inputs")
	}

	if !strings.Contains(first.CoverLetter, "Bright Futures Foundation") {
		t.Fatalf("cover letter missing funder: %q", first.CoverLetter)
	}
	if !strings.Contains(first.CoverLetter, "education, youth") {
		t.Fatalf("cover letter missing focus tags: %q", first.CoverLetter)
	}
	if !strings.Contains(first.Budget, "$50,000 - $150,000") {
		t.Fatalf("budget missing amount range: %q", first.Budget)
	}
	if len(first.Attachments) != 4 {
		t.Fatalf("expected default attachment list, got %v", first.Attachments)
	}
}

func TestComposeSectionsFallsBackOnEmptyContext(t *testing.T) {
	sections := ComposeSections(
		OrgContext{Name: "Small Org", Mission: "Serve"},
		GrantContext{Name: "Open Fund"},
	)

	if !strings.Contains(sections.CoverLetter, "Dear Review Team") {
		t.Fatalf("expected funder fallback, got %q", sections.CoverLetter)
	}
	if !strings.Contains(sections.ProblemStatement, "our service region") {
		t.Fatalf("expected region fallback, got %q", sections.ProblemStatement)
	}
	if !strings.Contains(sections.Budget, "TBD - TBD") {
		t.Fatalf("expected amount fallback, got %q", sections.Budget)
	}
}

func chainFixture() map[string]entities.DraftVersion {
	base := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	return map[string]entities.DraftVersion{
		"v1": {VersionID: "v1", DraftID: "d1", VersionNumber: 1, CreatedAt: base},
		"v2": {VersionID: "v2", DraftID: "d1", VersionNumber: 2, ParentVersionID: "v1", CreatedAt: base.Add(time.Hour)},
		"v3": {VersionID: "v3", DraftID: "d1", VersionNumber: 3, ParentVersionID: "v2", CreatedAt: base.Add(2 * time.Hour)},
	}
}

func TestLineageWalksHeadFirst(t *testing.T) {
	chain, err := Lineage("v3", chainFixture())
	if err != nil {
		t.Fatalf("lineage failed: %v", err)
	}
	if len(chain) != 3 {
		t.Fatalf("expected chain of 3, got %d", len(chain))
	}
	for i, want := range []string{"v3", "v2", "v1"} {
		if chain[i].VersionID != want {
			t.Fatalf("position %d: expected %s, got %s", i, want, chain[i].VersionID)
		}
	}
}

func TestLineageFromMidChainHead(t *testing.T) {
	chain, err := Lineage("v2", chainFixture())
	if err != nil {
		t.Fatalf("lineage failed: %v", err)
	}
	if len(chain) != 2 || chain[0].VersionID != "v2" || chain[1].VersionID != "v1" {
		t.Fatalf("expected v2->v1, got %v", chain)
	}
}

func TestLineageDetectsCycle(t *testing.T) {
	byID := chainFixture()
	v1 := byID["v1"]
	v1.ParentVersionID = "v3"
	byID["v1"] = v1

	if _, err := Lineage("v3", byID); !errors.Is(err, domainerrors.ErrLineageCorrupt) {
		t.Fatalf("expected lineage corruption, got %v", err)
	}
}

func TestLineageDetectsDanglingParent(t *testing.T) {
	byID := chainFixture()
	v2 := byID["v2"]
	v2.ParentVersionID = "missing"
	byID["v2"] = v2

	if _, err := Lineage("v3", byID); !errors.Is(err, domainerrors.ErrLineageCorrupt) {
		t.Fatalf("expected lineage corruption, got %v", err)
	}
}

func TestLineageUnknownHead(t *testing.T) {
	if _, err := Lineage("missing", chainFixture()); !errors.Is(err, domainerrors.ErrVersionNotFound) {
		t.Fatalf("expected version not found, got %v", err)
	}
}
