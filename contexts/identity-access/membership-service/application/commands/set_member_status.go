package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "grantstw/contexts/identity-access/membership-service/application"
	"grantstw/contexts/identity-access/membership-service/domain/entities"
	domainerrors "grantstw/contexts/identity-access/membership-service/domain/errors"
	"grantstw/contexts/identity-access/membership-service/domain/services"
	"grantstw/contexts/identity-access/membership-service/ports"
)

// SetMemberStatusCommand activates, suspends, or re-invites a member.
type SetMemberStatusCommand struct {
	Actor         entities.Actor
	OrgID         string
	TargetActorID string
	Status        entities.MembershipStatus
}

// SetMemberStatusUseCase mutates membership status. Suspension is the
// soft-delete path; rows are never hard-deleted while the organization
// exists. The adapter rejects any change that would leave the organization
// without an active owner.
type SetMemberStatusUseCase struct {
	Repository ports.Repository
	Clock      ports.Clock
	Logger     *slog.Logger
}

func (u SetMemberStatusUseCase) Execute(ctx context.Context, cmd SetMemberStatusCommand) (entities.Membership, error) {
	logger := application.ResolveLogger(u.Logger)

	if strings.TrimSpace(cmd.Actor.ID) == "" {
		return entities.Membership{}, domainerrors.ErrInvalidActorID
	}
	if strings.TrimSpace(cmd.OrgID) == "" {
		return entities.Membership{}, domainerrors.ErrInvalidOrgID
	}
	if strings.TrimSpace(cmd.TargetActorID) == "" {
		return entities.Membership{}, domainerrors.ErrInvalidActorID
	}
	if !cmd.Status.Valid() {
		return entities.Membership{}, domainerrors.ErrInvalidStatus
	}

	if err := authorizeMutation(ctx, u.Repository, cmd.Actor, cmd.OrgID, services.ActionMemberSetStatus); err != nil {
		return entities.Membership{}, err
	}

	policy, _ := services.LookupPolicy(services.ActionMemberSetStatus)
	membership, err := u.Repository.SetMembershipStatus(ctx, ports.SetStatusInput{
		Gate: ports.RoleGate{
			ActorID:       cmd.Actor.ID,
			PlatformAdmin: cmd.Actor.IsPlatformAdmin,
			AllowedRoles:  policy.AllowedRoles,
		},
		OrgID:         cmd.OrgID,
		TargetActorID: cmd.TargetActorID,
		Status:        cmd.Status,
		Now:           u.now(),
	})
	if err != nil {
		logger.Error("set member status failed",
			"event", "membership_set_status_failed",
			"module", "identity-access/membership-service",
			"layer", "application",
			"org_id", cmd.OrgID,
			"target_actor_id", cmd.TargetActorID,
			"status", string(cmd.Status),
			"error", err.Error(),
		)
		return entities.Membership{}, err
	}

	logger.Info("member status changed",
		"event", "membership_set_status_completed",
		"module", "identity-access/membership-service",
		"layer", "application",
		"org_id", cmd.OrgID,
		"target_actor_id", cmd.TargetActorID,
		"status", string(cmd.Status),
	)
	return membership, nil
}

func (u SetMemberStatusUseCase) now() time.Time {
	if u.Clock != nil {
		return u.Clock.Now().UTC()
	}
	return time.Now().UTC()
}
