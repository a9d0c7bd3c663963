package httptransport

import "time"

// CreateOrganizationRequest registers a tenant; the caller becomes its owner.
type CreateOrganizationRequest struct {
	RegistryKey  string   `json:"registry_key"`
	Name         string   `json:"name"`
	Region       string   `json:"region,omitempty"`
	Mission      string   `json:"mission,omitempty"`
	FocusTags    []string `json:"focus_tags,omitempty"`
	AnnualBudget string   `json:"annual_budget,omitempty"`
}

type OrganizationDTO struct {
	OrgID        string    `json:"org_id"`
	RegistryKey  string    `json:"registry_key"`
	Name         string    `json:"name"`
	Region       string    `json:"region,omitempty"`
	Mission      string    `json:"mission,omitempty"`
	FocusTags    []string  `json:"focus_tags,omitempty"`
	AnnualBudget string    `json:"annual_budget,omitempty"`
	FitSummary   string    `json:"fit_summary,omitempty"`
	CreatedBy    string    `json:"created_by"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type MembershipDTO struct {
	MembershipID string    `json:"membership_id"`
	OrgID        string    `json:"org_id"`
	ActorID      string    `json:"actor_id"`
	Role         string    `json:"role"`
	Status       string    `json:"status"`
	InvitedBy    string    `json:"invited_by,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type CreateOrganizationResponse struct {
	Organization    OrganizationDTO `json:"organization"`
	OwnerMembership MembershipDTO   `json:"owner_membership"`
}

type InviteMemberRequest struct {
	TargetActorID string `json:"target_actor_id"`
	Role          string `json:"role"`
}

type SetMemberStatusRequest struct {
	TargetActorID string `json:"target_actor_id"`
	Status        string `json:"status"`
}

type UpdateFitProfileRequest struct {
	Summary   string    `json:"summary"`
	Embedding []float32 `json:"embedding,omitempty"`
}

type ListMembersResponse struct {
	OrgID   string          `json:"org_id"`
	Members []MembershipDTO `json:"members"`
}

// AuthorizeRequest evaluates one action for the calling actor.
type AuthorizeRequest struct {
	OrgID  string `json:"org_id,omitempty"`
	Action string `json:"action"`
}

type AuthorizeResponse struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
