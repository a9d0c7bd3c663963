package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "grantstw/contexts/identity-access/membership-service/application"
	"grantstw/contexts/identity-access/membership-service/domain/entities"
	domainerrors "grantstw/contexts/identity-access/membership-service/domain/errors"
	"grantstw/contexts/identity-access/membership-service/ports"
)

// CreateOrganizationCommand contains transport-agnostic input for tenant
// registration.
type CreateOrganizationCommand struct {
	Actor        entities.Actor
	RegistryKey  string
	Name         string
	Region       string
	Mission      string
	FocusTags    []string
	AnnualBudget string
}

// CreateOrganizationResult returns the organization and its auto-created
// owner membership.
type CreateOrganizationResult struct {
	Organization    entities.Organization `json:"organization"`
	OwnerMembership entities.Membership   `json:"owner_membership"`
}

// CreateOrganizationUseCase registers a tenant and its first owner in one
// atomic unit.
type CreateOrganizationUseCase struct {
	Repository  ports.Repository
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

// Execute validates input and persists the organization plus the creator's
// active owner membership together. A registry key already bound to an
// organization surfaces ErrOrganizationExists.
func (u CreateOrganizationUseCase) Execute(ctx context.Context, cmd CreateOrganizationCommand) (CreateOrganizationResult, error) {
	logger := application.ResolveLogger(u.Logger)

	if strings.TrimSpace(cmd.Actor.ID) == "" {
		return CreateOrganizationResult{}, domainerrors.ErrInvalidActorID
	}
	if strings.TrimSpace(cmd.RegistryKey) == "" {
		return CreateOrganizationResult{}, domainerrors.ErrInvalidRegistryKey
	}
	if strings.TrimSpace(cmd.Name) == "" {
		return CreateOrganizationResult{}, domainerrors.ErrInvalidOrgID
	}

	now := u.now()
	orgID, err := u.IDGenerator.NewID(ctx)
	if err != nil {
		return CreateOrganizationResult{}, err
	}
	membershipID, err := u.IDGenerator.NewID(ctx)
	if err != nil {
		return CreateOrganizationResult{}, err
	}

	organization := entities.Organization{
		OrgID:        orgID,
		RegistryKey:  strings.TrimSpace(cmd.RegistryKey),
		Name:         strings.TrimSpace(cmd.Name),
		Region:       strings.TrimSpace(cmd.Region),
		Mission:      strings.TrimSpace(cmd.Mission),
		FocusTags:    normalizeTags(cmd.FocusTags),
		AnnualBudget: strings.TrimSpace(cmd.AnnualBudget),
		CreatedBy:    cmd.Actor.ID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	owner := entities.Membership{
		MembershipID: membershipID,
		OrgID:        orgID,
		ActorID:      cmd.Actor.ID,
		Role:         entities.RoleOwner,
		Status:       entities.MembershipActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := u.Repository.CreateOrganizationWithOwner(ctx, ports.CreateOrganizationInput{
		Organization:    organization,
		OwnerMembership: owner,
	}); err != nil {
		logger.Error("create organization failed",
			"event", "membership_create_org_failed",
			"module", "identity-access/membership-service",
			"layer", "application",
			"actor_id", cmd.Actor.ID,
			"registry_key", organization.RegistryKey,
			"error", err.Error(),
		)
		return CreateOrganizationResult{}, err
	}

	logger.Info("organization created",
		"event", "membership_org_created",
		"module", "identity-access/membership-service",
		"layer", "application",
		"org_id", orgID,
		"actor_id", cmd.Actor.ID,
	)
	return CreateOrganizationResult{Organization: organization, OwnerMembership: owner}, nil
}

func (u CreateOrganizationUseCase) now() time.Time {
	if u.Clock != nil {
		return u.Clock.Now().UTC()
	}
	return time.Now().UTC()
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		cleaned := strings.ToLower(strings.TrimSpace(tag))
		if cleaned == "" {
			continue
		}
		if _, dup := seen[cleaned]; dup {
			continue
		}
		seen[cleaned] = struct{}{}
		out = append(out, cleaned)
	}
	return out
}
