package entities

import "time"

// AssignmentStatus is the closed workflow sequence an organization moves a
// pursued grant through.
type AssignmentStatus string

const (
	AssignmentRecommended AssignmentStatus = "recommended"
	AssignmentQualified   AssignmentStatus = "qualified"
	AssignmentLOIPlanned  AssignmentStatus = "loi_planned"
	AssignmentDrafting    AssignmentStatus = "drafting"
	AssignmentInReview    AssignmentStatus = "in_review"
	AssignmentSubmitted   AssignmentStatus = "submitted"
	AssignmentWon         AssignmentStatus = "won"
	AssignmentLost        AssignmentStatus = "lost"
	AssignmentArchived    AssignmentStatus = "archived"
)

// Valid reports whether the status belongs to the closed set.
func (s AssignmentStatus) Valid() bool {
	switch s {
	case AssignmentRecommended, AssignmentQualified, AssignmentLOIPlanned,
		AssignmentDrafting, AssignmentInReview, AssignmentSubmitted,
		AssignmentWon, AssignmentLost, AssignmentArchived:
		return true
	default:
		return false
	}
}

var assignmentTransitions = map[AssignmentStatus][]AssignmentStatus{
	AssignmentRecommended: {AssignmentQualified, AssignmentArchived},
	AssignmentQualified:   {AssignmentLOIPlanned, AssignmentDrafting, AssignmentArchived},
	AssignmentLOIPlanned:  {AssignmentDrafting, AssignmentArchived},
	AssignmentDrafting:    {AssignmentInReview, AssignmentArchived},
	AssignmentInReview:    {AssignmentDrafting, AssignmentSubmitted, AssignmentArchived},
	AssignmentSubmitted:   {AssignmentWon, AssignmentLost, AssignmentArchived},
	AssignmentWon:         {AssignmentArchived},
	AssignmentLost:        {AssignmentArchived},
	AssignmentArchived:    {},
}

// CanTransition reports whether the workflow permits moving from one status
// to the next. In-review may bounce back to drafting; every non-archived
// state may archive.
func CanTransition(from AssignmentStatus, to AssignmentStatus) bool {
	for _, allowed := range assignmentTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Assignment tracks an organization's pursuit of a grant, unique per
// (organization, grant) pair.
type Assignment struct {
	AssignmentID string           `json:"assignment_id"`
	OrgID        string           `json:"org_id"`
	GrantID      string           `json:"grant_id"`
	Status       AssignmentStatus `json:"status"`
	Notes        string           `json:"notes,omitempty"`
	CreatedBy    string           `json:"created_by"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}
