package entities

import "time"

// DraftSections is the fixed section set every proposal draft carries.
// Sections are typed fields rather than a free-form map so readers and the
// composer agree on the shape.
type DraftSections struct {
	CoverLetter      string   `json:"cover_letter"`
	OrgSummary       string   `json:"org_summary"`
	ProblemStatement string   `json:"problem_statement"`
	Activities       string   `json:"activities"`
	Measurement      string   `json:"measurement"`
	Budget           string   `json:"budget"`
	Attachments      []string `json:"attachments,omitempty"`
}

// Draft is the head record of a proposal: it names the pursuit and points at
// the version currently considered current. Content lives in versions.
type Draft struct {
	DraftID          string    `json:"draft_id"`
	OrgID            string    `json:"org_id"`
	GrantID          string    `json:"grant_id"`
	Title            string    `json:"title"`
	CurrentVersionID string    `json:"current_version_id"`
	CreatedBy        string    `json:"created_by"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// DraftVersion is one immutable snapshot in a draft's lineage. Version
// numbers are dense per draft; the parent pointer records which version the
// author started from.
type DraftVersion struct {
	VersionID       string        `json:"version_id"`
	DraftID         string        `json:"draft_id"`
	VersionNumber   int           `json:"version_number"`
	ParentVersionID string        `json:"parent_version_id,omitempty"`
	Sections        DraftSections `json:"sections"`
	AuthorID        string        `json:"author_id"`
	Note            string        `json:"note,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
}
