package queries

import (
	"context"
	"log/slog"
	"strings"

	application "grantstw/contexts/identity-access/membership-service/application"
	"grantstw/contexts/identity-access/membership-service/domain/entities"
	domainerrors "grantstw/contexts/identity-access/membership-service/domain/errors"
	"grantstw/contexts/identity-access/membership-service/domain/services"
	"grantstw/contexts/identity-access/membership-service/ports"
)

// AuthorizeActionQuery asks whether an actor may perform an action against an
// organization. OrgID may be empty for global or platform-scoped actions.
type AuthorizeActionQuery struct {
	ActorID       string
	PlatformAdmin bool
	OrgID         string
	Action        string
}

// AuthorizeActionUseCase loads membership state and applies the pure decision
// function. Storage failures deny by default rather than propagating, so a
// degraded store can never fail open.
type AuthorizeActionUseCase struct {
	Repository ports.Repository
	Logger     *slog.Logger
}

func (u AuthorizeActionUseCase) Execute(ctx context.Context, query AuthorizeActionQuery) (services.Decision, error) {
	logger := application.ResolveLogger(u.Logger)

	if strings.TrimSpace(query.ActorID) == "" {
		return services.Decision{Allowed: false, Reason: services.ReasonUnauthenticated}, domainerrors.ErrInvalidActorID
	}

	actor := entities.Actor{ID: query.ActorID, IsPlatformAdmin: query.PlatformAdmin}
	action := services.Action(query.Action)

	var membership entities.Membership
	found := false
	policy, known := services.LookupPolicy(action)
	if known && policy.Scope == services.ScopeOrg && strings.TrimSpace(query.OrgID) != "" {
		var err error
		membership, found, err = u.Repository.GetMembership(ctx, query.OrgID, query.ActorID)
		if err != nil {
			logger.Error("membership lookup failed, deny by default",
				"event", "membership_authorize_lookup_failed",
				"module", "identity-access/membership-service",
				"layer", "application",
				"org_id", query.OrgID,
				"actor_id", query.ActorID,
				"action", query.Action,
				"error", err.Error(),
			)
			return services.Decision{Allowed: false, Reason: "deny_by_default"}, nil
		}
	}

	decision := services.Evaluate(actor, action, membership, found)
	if !decision.Allowed {
		logger.Debug("authorization denied",
			"event", "membership_authorize_denied",
			"module", "identity-access/membership-service",
			"layer", "application",
			"org_id", query.OrgID,
			"actor_id", query.ActorID,
			"action", query.Action,
			"reason", decision.Reason,
		)
	}
	return decision, nil
}
