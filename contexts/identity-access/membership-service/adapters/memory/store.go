package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"grantstw/contexts/identity-access/membership-service/domain/entities"
	domainerrors "grantstw/contexts/identity-access/membership-service/domain/errors"
	"grantstw/contexts/identity-access/membership-service/ports"

	"github.com/google/uuid"
)

// Store is an in-memory adapter implementing the repository, clock, and id
// generator ports. It is intended for tests and local development wiring.
// All mutations run under one mutex so the role gate and invariant checks
// observe the same state the write applies to.
type Store struct {
	mu sync.RWMutex

	organizations map[string]entities.Organization
	registryKeys  map[string]string
	memberships   map[string]map[string]entities.Membership
}

func NewStore() *Store {
	return &Store{
		organizations: make(map[string]entities.Organization),
		registryKeys:  make(map[string]string),
		memberships:   make(map[string]map[string]entities.Membership),
	}
}

// Now implements ports.Clock.
func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

// NewID implements ports.IDGenerator.
func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func (s *Store) CreateOrganizationWithOwner(_ context.Context, input ports.CreateOrganizationInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.registryKeys[input.Organization.RegistryKey]; exists {
		return domainerrors.ErrOrganizationExists
	}
	if _, exists := s.organizations[input.Organization.OrgID]; exists {
		return domainerrors.ErrOrganizationExists
	}

	s.organizations[input.Organization.OrgID] = input.Organization
	s.registryKeys[input.Organization.RegistryKey] = input.Organization.OrgID
	s.memberships[input.Organization.OrgID] = map[string]entities.Membership{
		input.OwnerMembership.ActorID: input.OwnerMembership,
	}
	return nil
}

func (s *Store) GetOrganization(_ context.Context, orgID string) (entities.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	organization, ok := s.organizations[orgID]
	if !ok {
		return entities.Organization{}, domainerrors.ErrOrganizationNotFound
	}
	return organization, nil
}

func (s *Store) ListOrganizations(_ context.Context) ([]entities.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.Organization, 0, len(s.organizations))
	for _, organization := range s.organizations {
		items = append(items, organization)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].OrgID < items[j].OrgID })
	return items, nil
}

func (s *Store) GetMembership(_ context.Context, orgID string, actorID string) (entities.Membership, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	membership, ok := s.memberships[orgID][actorID]
	return membership, ok, nil
}

func (s *Store) ListMemberships(_ context.Context, orgID string) ([]entities.Membership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := s.memberships[orgID]
	items := make([]entities.Membership, 0, len(rows))
	for _, membership := range rows {
		items = append(items, membership)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ActorID < items[j].ActorID })
	return items, nil
}

func (s *Store) UpsertInvite(_ context.Context, input ports.InviteInput) (entities.Membership, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.organizations[input.OrgID]; !ok {
		return entities.Membership{}, domainerrors.ErrOrganizationNotFound
	}
	if err := s.checkGateLocked(input.OrgID, input.Gate); err != nil {
		return entities.Membership{}, err
	}

	rows := s.memberships[input.OrgID]
	if rows == nil {
		rows = make(map[string]entities.Membership)
		s.memberships[input.OrgID] = rows
	}

	existing, ok := rows[input.TargetActorID]
	if !ok {
		membership := entities.Membership{
			MembershipID: input.MembershipID,
			OrgID:        input.OrgID,
			ActorID:      input.TargetActorID,
			Role:         input.Role,
			Status:       entities.MembershipInvited,
			InvitedBy:    input.InvitedBy,
			CreatedAt:    input.Now,
			UpdatedAt:    input.Now,
		}
		rows[input.TargetActorID] = membership
		return membership, nil
	}

	// Role downgrades count as owner removal for the invariant.
	if existing.Role == entities.RoleOwner && existing.Status == entities.MembershipActive &&
		input.Role != entities.RoleOwner {
		if s.activeOwnersLocked(input.OrgID, input.TargetActorID) == 0 {
			return entities.Membership{}, domainerrors.ErrLastOwner
		}
	}

	// Re-invite updates the existing row rather than duplicating it.
	existing.Role = input.Role
	if existing.Status == entities.MembershipSuspended {
		existing.Status = entities.MembershipInvited
	}
	existing.InvitedBy = input.InvitedBy
	existing.UpdatedAt = input.Now
	rows[input.TargetActorID] = existing
	return existing, nil
}

func (s *Store) SetMembershipStatus(_ context.Context, input ports.SetStatusInput) (entities.Membership, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.organizations[input.OrgID]; !ok {
		return entities.Membership{}, domainerrors.ErrOrganizationNotFound
	}
	if err := s.checkGateLocked(input.OrgID, input.Gate); err != nil {
		return entities.Membership{}, err
	}

	rows := s.memberships[input.OrgID]
	target, ok := rows[input.TargetActorID]
	if !ok {
		return entities.Membership{}, domainerrors.ErrMembershipNotFound
	}

	if target.Role == entities.RoleOwner && target.Status == entities.MembershipActive &&
		input.Status != entities.MembershipActive {
		if s.activeOwnersLocked(input.OrgID, input.TargetActorID) == 0 {
			return entities.Membership{}, domainerrors.ErrLastOwner
		}
	}

	target.Status = input.Status
	target.UpdatedAt = input.Now
	rows[input.TargetActorID] = target
	return target, nil
}

func (s *Store) UpdateFitProfile(_ context.Context, input ports.FitProfileInput) (entities.Organization, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	organization, ok := s.organizations[input.OrgID]
	if !ok {
		return entities.Organization{}, domainerrors.ErrOrganizationNotFound
	}
	if err := s.checkGateLocked(input.OrgID, input.Gate); err != nil {
		return entities.Organization{}, err
	}

	organization.Fit = entities.FitProfile{
		Summary:   input.Summary,
		Embedding: append([]float32(nil), input.Embedding...),
		UpdatedAt: input.Now,
	}
	organization.UpdatedAt = input.Now
	s.organizations[input.OrgID] = organization
	return organization, nil
}

// checkGateLocked re-verifies the acting actor under the store mutex, closing
// the gap between the application-layer decision and the write.
func (s *Store) checkGateLocked(orgID string, gate ports.RoleGate) error {
	if gate.PlatformAdmin {
		return nil
	}
	membership, ok := s.memberships[orgID][gate.ActorID]
	if !ok || !membership.IsActive() {
		return domainerrors.ErrPermissionDenied
	}
	if !entities.RoleAllowed(membership.Role, gate.AllowedRoles) {
		return domainerrors.ErrPermissionDenied
	}
	return nil
}

func (s *Store) activeOwnersLocked(orgID string, excludeActorID string) int {
	count := 0
	for actorID, membership := range s.memberships[orgID] {
		if actorID == excludeActorID {
			continue
		}
		if membership.Role == entities.RoleOwner && membership.Status == entities.MembershipActive {
			count++
		}
	}
	return count
}
