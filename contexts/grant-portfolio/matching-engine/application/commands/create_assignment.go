package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "grantstw/contexts/grant-portfolio/matching-engine/application"
	"grantstw/contexts/grant-portfolio/matching-engine/domain/entities"
	domainerrors "grantstw/contexts/grant-portfolio/matching-engine/domain/errors"
	"grantstw/contexts/grant-portfolio/matching-engine/ports"
)

// CreateAssignmentCommand starts pursuing a grant for an organization.
type CreateAssignmentCommand struct {
	ActorID       string
	PlatformAdmin bool
	OrgID         string
	GrantID       string
	Notes         string
}

// CreateAssignmentUseCase creates the pursuit record in the recommended
// state. One assignment per (organization, grant) pair holds by
// construction.
type CreateAssignmentUseCase struct {
	Repository  ports.Repository
	Authorizer  ports.Authorizer
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

func (u CreateAssignmentUseCase) Execute(ctx context.Context, cmd CreateAssignmentCommand) (entities.Assignment, error) {
	logger := application.ResolveLogger(u.Logger)

	if strings.TrimSpace(cmd.ActorID) == "" {
		return entities.Assignment{}, domainerrors.ErrInvalidActorID
	}
	if strings.TrimSpace(cmd.OrgID) == "" {
		return entities.Assignment{}, domainerrors.ErrInvalidOrgID
	}
	if strings.TrimSpace(cmd.GrantID) == "" {
		return entities.Assignment{}, domainerrors.ErrInvalidGrantID
	}

	if err := application.Authorize(ctx, u.Authorizer, cmd.ActorID, cmd.PlatformAdmin, cmd.OrgID, application.ActionAssignmentWrite); err != nil {
		return entities.Assignment{}, err
	}

	// The grant must exist; the pair key alone does not prove it.
	if _, err := u.Repository.GetGrant(ctx, cmd.GrantID); err != nil {
		return entities.Assignment{}, err
	}

	assignmentID, err := u.IDGenerator.NewID(ctx)
	if err != nil {
		return entities.Assignment{}, err
	}

	now := u.now()
	gate := application.RecheckGate(u.Authorizer, cmd.ActorID, cmd.PlatformAdmin, cmd.OrgID, application.ActionAssignmentWrite)
	assignment, err := u.Repository.CreateAssignment(ctx, entities.Assignment{
		AssignmentID: assignmentID,
		OrgID:        cmd.OrgID,
		GrantID:      cmd.GrantID,
		Status:       entities.AssignmentRecommended,
		Notes:        cmd.Notes,
		CreatedBy:    cmd.ActorID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, gate)
	if err != nil {
		return entities.Assignment{}, err
	}

	logger.Info("assignment created",
		"event", "assignment_create_completed",
		"module", "grant-portfolio/matching-engine",
		"layer", "application",
		"org_id", cmd.OrgID,
		"grant_id", cmd.GrantID,
	)
	return assignment, nil
}

func (u CreateAssignmentUseCase) now() time.Time {
	if u.Clock != nil {
		return u.Clock.Now().UTC()
	}
	return time.Now().UTC()
}
