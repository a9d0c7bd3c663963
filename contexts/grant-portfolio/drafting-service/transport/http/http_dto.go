package httptransport

import "time"

type DraftSectionsDTO struct {
	CoverLetter      string   `json:"cover_letter"`
	OrgSummary       string   `json:"org_summary"`
	ProblemStatement string   `json:"problem_statement"`
	Activities       string   `json:"activities"`
	Measurement      string   `json:"measurement"`
	Budget           string   `json:"budget"`
	Attachments      []string `json:"attachments,omitempty"`
}

type DraftDTO struct {
	DraftID          string    `json:"draft_id"`
	OrgID            string    `json:"org_id"`
	GrantID          string    `json:"grant_id"`
	Title            string    `json:"title"`
	CurrentVersionID string    `json:"current_version_id"`
	CreatedBy        string    `json:"created_by"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type DraftVersionDTO struct {
	VersionID       string           `json:"version_id"`
	DraftID         string           `json:"draft_id"`
	VersionNumber   int              `json:"version_number"`
	ParentVersionID string           `json:"parent_version_id,omitempty"`
	Sections        DraftSectionsDTO `json:"sections"`
	AuthorID        string           `json:"author_id"`
	Note            string           `json:"note,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
}

// CreateDraftRequest starts a proposal. Sections are optional; when absent
// the composer seeds version one.
type CreateDraftRequest struct {
	GrantID  string            `json:"grant_id"`
	Title    string            `json:"title"`
	Sections *DraftSectionsDTO `json:"sections,omitempty"`
}

type CreateDraftResponse struct {
	Draft   DraftDTO        `json:"draft"`
	Version DraftVersionDTO `json:"version"`
}

type AppendVersionRequest struct {
	Sections         DraftSectionsDTO `json:"sections"`
	Note             string           `json:"note,omitempty"`
	BasedOnVersionID string           `json:"based_on_version_id,omitempty"`
}

type RollbackDraftRequest struct {
	VersionID string `json:"version_id"`
}

type ListDraftsResponse struct {
	OrgID  string     `json:"org_id"`
	Drafts []DraftDTO `json:"drafts"`
}

type LineageResponse struct {
	Draft DraftDTO          `json:"draft"`
	Chain []DraftVersionDTO `json:"chain"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
