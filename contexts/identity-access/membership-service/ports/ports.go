package ports

import (
	"context"
	"time"

	"grantstw/contexts/identity-access/membership-service/domain/entities"
)

// Clock abstracts current time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// IDGenerator abstracts UUID generation for new rows.
type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// Embedder is the external encoder producing fixed-length vectors from text.
// The core never computes embeddings itself.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// RoleGate re-verifies the acting actor inside the same transaction or
// critical section that performs a write. Adapters must deny with
// ErrPermissionDenied when the acting membership is missing, inactive, or
// outside the allowed set, unless PlatformAdmin is set.
type RoleGate struct {
	ActorID       string
	PlatformAdmin bool
	AllowedRoles  []entities.Role
}

// CreateOrganizationInput carries the organization and its owner membership,
// persisted as one atomic unit.
type CreateOrganizationInput struct {
	Organization    entities.Organization
	OwnerMembership entities.Membership
}

// InviteInput upserts a membership row for the target actor.
type InviteInput struct {
	Gate          RoleGate
	MembershipID  string
	OrgID         string
	TargetActorID string
	Role          entities.Role
	InvitedBy     string
	Now           time.Time
}

// SetStatusInput mutates membership status. Adapters enforce the last-owner
// invariant inside the same atomic unit as the write.
type SetStatusInput struct {
	Gate          RoleGate
	OrgID         string
	TargetActorID string
	Status        entities.MembershipStatus
	Now           time.Time
}

// FitProfileInput replaces the organization fit profile.
type FitProfileInput struct {
	Gate      RoleGate
	OrgID     string
	Summary   string
	Embedding []float32
	Now       time.Time
}

// Repository is the write/read boundary for membership domain state.
type Repository interface {
	CreateOrganizationWithOwner(ctx context.Context, input CreateOrganizationInput) error
	GetOrganization(ctx context.Context, orgID string) (entities.Organization, error)
	ListOrganizations(ctx context.Context) ([]entities.Organization, error)
	GetMembership(ctx context.Context, orgID string, actorID string) (entities.Membership, bool, error)
	ListMemberships(ctx context.Context, orgID string) ([]entities.Membership, error)
	UpsertInvite(ctx context.Context, input InviteInput) (entities.Membership, error)
	SetMembershipStatus(ctx context.Context, input SetStatusInput) (entities.Membership, error)
	UpdateFitProfile(ctx context.Context, input FitProfileInput) (entities.Organization, error)
}
