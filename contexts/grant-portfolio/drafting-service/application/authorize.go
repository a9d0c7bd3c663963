package application

import (
	"context"

	domainerrors "grantstw/contexts/grant-portfolio/drafting-service/domain/errors"
	"grantstw/contexts/grant-portfolio/drafting-service/ports"
)

// Action names evaluated by the membership context's role catalog.
const (
	ActionDraftRead  = "draft.read"
	ActionDraftWrite = "draft.write"
)

// Authorize asks the membership gate whether the actor may perform the
// action in the organization's scope. Denials map to ErrPermissionDenied so
// transports report a stable status.
func Authorize(
	ctx context.Context,
	auth ports.Authorizer,
	actorID string,
	platformAdmin bool,
	orgID string,
	action string,
) error {
	allowed, _, err := auth.AuthorizeAction(ctx, actorID, platformAdmin, orgID, action)
	if err != nil {
		return err
	}
	if !allowed {
		return domainerrors.ErrPermissionDenied
	}
	return nil
}

// RecheckGate captures the same authorization question as a closure that
// adapters run inside their write transaction or mutex hold.
func RecheckGate(
	auth ports.Authorizer,
	actorID string,
	platformAdmin bool,
	orgID string,
	action string,
) ports.Recheck {
	return func(ctx context.Context) error {
		return Authorize(ctx, auth, actorID, platformAdmin, orgID, action)
	}
}
