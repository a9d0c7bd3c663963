package httptransport

import "time"

type GrantDTO struct {
	GrantID     string    `json:"grant_id"`
	ExternalID  string    `json:"external_id"`
	Name        string    `json:"name"`
	Funder      string    `json:"funder,omitempty"`
	Description string    `json:"description,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	Region      string    `json:"region,omitempty"`
	AmountMin   string    `json:"amount_min,omitempty"`
	AmountMax   string    `json:"amount_max,omitempty"`
	Deadline    time.Time `json:"deadline"`
	Status      string    `json:"status"`
	SourceURL   string    `json:"source_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IngestGrantsRequest loads a batch of opportunity records into the shared
// catalog. Platform-admin only.
type IngestGrantsRequest struct {
	Grants []IngestGrantDTO `json:"grants"`
}

type IngestGrantDTO struct {
	ExternalID  string    `json:"external_id"`
	Name        string    `json:"name"`
	Funder      string    `json:"funder,omitempty"`
	Description string    `json:"description,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	Region      string    `json:"region,omitempty"`
	AmountMin   string    `json:"amount_min,omitempty"`
	AmountMax   string    `json:"amount_max,omitempty"`
	Deadline    time.Time `json:"deadline"`
	Embedding   []float32 `json:"embedding,omitempty"`
	SourceURL   string    `json:"source_url,omitempty"`
}

type IngestGrantsResponse struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
}

type ListGrantsResponse struct {
	Grants []GrantDTO `json:"grants"`
}

type AlignmentFactorsDTO struct {
	CategoricalOverlap float64  `json:"categorical_overlap"`
	SemanticSimilarity float64  `json:"semantic_similarity"`
	SharedTags         []string `json:"shared_tags,omitempty"`
	CategoricalWeight  float64  `json:"categorical_weight"`
	SemanticWeight     float64  `json:"semantic_weight"`
}

type MatchDTO struct {
	MatchID    string              `json:"match_id"`
	OrgID      string              `json:"org_id"`
	GrantID    string              `json:"grant_id"`
	Score      float64             `json:"score"`
	Factors    AlignmentFactorsDTO `json:"factors"`
	UserViewed bool                `json:"user_viewed"`
	MatchedAt  time.Time           `json:"matched_at"`
}

type ComputeMatchRequest struct {
	GrantID string `json:"grant_id"`
}

type RefreshMatchesResponse struct {
	Computed int `json:"computed"`
	Skipped  int `json:"skipped"`
}

type TopMatchDTO struct {
	Match    MatchDTO  `json:"match"`
	Deadline time.Time `json:"deadline"`
}

type ListTopMatchesResponse struct {
	OrgID   string        `json:"org_id"`
	Matches []TopMatchDTO `json:"matches"`
}

type AssignmentDTO struct {
	AssignmentID string    `json:"assignment_id"`
	OrgID        string    `json:"org_id"`
	GrantID      string    `json:"grant_id"`
	Status       string    `json:"status"`
	Notes        string    `json:"notes,omitempty"`
	CreatedBy    string    `json:"created_by"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type CreateAssignmentRequest struct {
	GrantID string `json:"grant_id"`
	Notes   string `json:"notes,omitempty"`
}

type TransitionAssignmentRequest struct {
	GrantID string `json:"grant_id"`
	To      string `json:"to"`
	Notes   string `json:"notes,omitempty"`
}

type ListAssignmentsResponse struct {
	OrgID       string          `json:"org_id"`
	Assignments []AssignmentDTO `json:"assignments"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
