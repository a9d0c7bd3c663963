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

// InviteMemberCommand invites or re-invites an actor into an organization.
type InviteMemberCommand struct {
	Actor         entities.Actor
	OrgID         string
	TargetActorID string
	Role          entities.Role
}

// InviteMemberUseCase upserts the target membership: absent rows are created
// with invited status, existing rows only change role. One row per
// (actor, organization) pair holds by construction.
type InviteMemberUseCase struct {
	Repository  ports.Repository
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

func (u InviteMemberUseCase) Execute(ctx context.Context, cmd InviteMemberCommand) (entities.Membership, error) {
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
	if !cmd.Role.Valid() {
		return entities.Membership{}, domainerrors.ErrInvalidRole
	}

	if err := authorizeMutation(ctx, u.Repository, cmd.Actor, cmd.OrgID, services.ActionMemberInvite); err != nil {
		logger.Warn("invite denied",
			"event", "membership_invite_denied",
			"module", "identity-access/membership-service",
			"layer", "application",
			"org_id", cmd.OrgID,
			"actor_id", cmd.Actor.ID,
			"target_actor_id", cmd.TargetActorID,
		)
		return entities.Membership{}, err
	}

	membershipID, err := u.IDGenerator.NewID(ctx)
	if err != nil {
		return entities.Membership{}, err
	}

	policy, _ := services.LookupPolicy(services.ActionMemberInvite)
	membership, err := u.Repository.UpsertInvite(ctx, ports.InviteInput{
		Gate: ports.RoleGate{
			ActorID:       cmd.Actor.ID,
			PlatformAdmin: cmd.Actor.IsPlatformAdmin,
			AllowedRoles:  policy.AllowedRoles,
		},
		MembershipID:  membershipID,
		OrgID:         cmd.OrgID,
		TargetActorID: cmd.TargetActorID,
		Role:          cmd.Role,
		InvitedBy:     cmd.Actor.ID,
		Now:           u.now(),
	})
	if err != nil {
		logger.Error("invite write failed",
			"event", "membership_invite_failed",
			"module", "identity-access/membership-service",
			"layer", "application",
			"org_id", cmd.OrgID,
			"target_actor_id", cmd.TargetActorID,
			"error", err.Error(),
		)
		return entities.Membership{}, err
	}

	logger.Info("member invited",
		"event", "membership_invite_completed",
		"module", "identity-access/membership-service",
		"layer", "application",
		"org_id", cmd.OrgID,
		"target_actor_id", cmd.TargetActorID,
		"role", string(cmd.Role),
	)
	return membership, nil
}

func (u InviteMemberUseCase) now() time.Time {
	if u.Clock != nil {
		return u.Clock.Now().UTC()
	}
	return time.Now().UTC()
}

// authorizeMutation runs the pure decision function against current
// membership state before any write is attempted. Adapters re-run the role
// gate inside the write transaction; this early check exists to fail fast
// with a stable reason.
func authorizeMutation(
	ctx context.Context,
	repo ports.Repository,
	actor entities.Actor,
	orgID string,
	action services.Action,
) error {
	membership, found, err := repo.GetMembership(ctx, orgID, actor.ID)
	if err != nil {
		return err
	}
	decision := services.Evaluate(actor, action, membership, found)
	if !decision.Allowed {
		return domainerrors.ErrPermissionDenied
	}
	return nil
}
