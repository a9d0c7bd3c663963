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

// TransitionAssignmentCommand moves a pursuit to its next workflow state.
type TransitionAssignmentCommand struct {
	ActorID       string
	PlatformAdmin bool
	OrgID         string
	GrantID       string
	To            entities.AssignmentStatus
	Notes         string
}

// TransitionAssignmentUseCase applies one workflow move. The repository
// validates the transition against the row it locks, so concurrent moves
// cannot skip states.
type TransitionAssignmentUseCase struct {
	Repository ports.Repository
	Authorizer ports.Authorizer
	Clock      ports.Clock
	Logger     *slog.Logger
}

func (u TransitionAssignmentUseCase) Execute(ctx context.Context, cmd TransitionAssignmentCommand) (entities.Assignment, error) {
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
	if !cmd.To.Valid() {
		return entities.Assignment{}, domainerrors.ErrInvalidStatus
	}

	if err := application.Authorize(ctx, u.Authorizer, cmd.ActorID, cmd.PlatformAdmin, cmd.OrgID, application.ActionAssignmentWrite); err != nil {
		return entities.Assignment{}, err
	}

	gate := application.RecheckGate(u.Authorizer, cmd.ActorID, cmd.PlatformAdmin, cmd.OrgID, application.ActionAssignmentWrite)
	assignment, err := u.Repository.TransitionAssignment(ctx, ports.TransitionAssignmentInput{
		Gate:    gate,
		OrgID:   cmd.OrgID,
		GrantID: cmd.GrantID,
		To:      cmd.To,
		Notes:   cmd.Notes,
		Now:     u.now(),
	})
	if err != nil {
		return entities.Assignment{}, err
	}

	logger.Info("assignment transitioned",
		"event", "assignment_transition_completed",
		"module", "grant-portfolio/matching-engine",
		"layer", "application",
		"org_id", cmd.OrgID,
		"grant_id", cmd.GrantID,
		"status", string(assignment.Status),
	)
	return assignment, nil
}

func (u TransitionAssignmentUseCase) now() time.Time {
	if u.Clock != nil {
		return u.Clock.Now().UTC()
	}
	return time.Now().UTC()
}
