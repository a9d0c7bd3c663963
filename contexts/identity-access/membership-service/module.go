package membership

import (
	"context"
	"log/slog"

	httpadapter "grantstw/contexts/identity-access/membership-service/adapters/http"
	"grantstw/contexts/identity-access/membership-service/adapters/memory"
	"grantstw/contexts/identity-access/membership-service/application/commands"
	"grantstw/contexts/identity-access/membership-service/application/queries"
	"grantstw/contexts/identity-access/membership-service/ports"
)

// Module is the membership-service composition root exposed to runtime
// wiring.
type Module struct {
	Handler httpadapter.Handler
	Gate    AccessGate
	Store   *memory.Store
}

// Dependencies captures all runtime ports/config required by NewModule.
type Dependencies struct {
	Repository  ports.Repository
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Embedder    ports.Embedder
	Logger      *slog.Logger
}

// NewModule wires membership use-cases and the transport handler using
// explicit ports.
func NewModule(deps Dependencies) Module {
	createOrganization := commands.CreateOrganizationUseCase{
		Repository:  deps.Repository,
		Clock:       deps.Clock,
		IDGenerator: deps.IDGenerator,
		Logger:      deps.Logger,
	}
	inviteMember := commands.InviteMemberUseCase{
		Repository:  deps.Repository,
		Clock:       deps.Clock,
		IDGenerator: deps.IDGenerator,
		Logger:      deps.Logger,
	}
	setMemberStatus := commands.SetMemberStatusUseCase{
		Repository: deps.Repository,
		Clock:      deps.Clock,
		Logger:     deps.Logger,
	}
	updateFitProfile := commands.UpdateFitProfileUseCase{
		Repository: deps.Repository,
		Embedder:   deps.Embedder,
		Clock:      deps.Clock,
		Logger:     deps.Logger,
	}
	authorize := queries.AuthorizeActionUseCase{
		Repository: deps.Repository,
		Logger:     deps.Logger,
	}
	listMembers := queries.ListMembersUseCase{
		Repository: deps.Repository,
		Logger:     deps.Logger,
	}
	getOrganization := queries.GetOrganizationUseCase{
		Repository: deps.Repository,
	}

	handler := httpadapter.Handler{
		CreateOrganization: createOrganization,
		InviteMember:       inviteMember,
		SetMemberStatus:    setMemberStatus,
		UpdateFitProfile:   updateFitProfile,
		Authorize:          authorize,
		ListMembers:        listMembers,
		GetOrganization:    getOrganization,
		Logger:             deps.Logger,
	}

	return Module{
		Handler: handler,
		Gate:    AccessGate{Authorize: authorize},
	}
}

// NewInMemoryModule builds a development/testing module with in-memory
// adapters.
func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Repository:  store,
		Clock:       store,
		IDGenerator: store,
		Logger:      logger,
	})
	module.Store = store
	return module
}

// AccessGate exposes the authorization decision to sibling contexts with a
// plain signature so their ports are satisfied structurally without importing
// this module's types.
type AccessGate struct {
	Authorize queries.AuthorizeActionUseCase
}

// AuthorizeAction evaluates (actor, org, action) and returns the allow flag
// plus a stable reason string.
func (g AccessGate) AuthorizeAction(
	ctx context.Context,
	actorID string,
	platformAdmin bool,
	orgID string,
	action string,
) (bool, string, error) {
	decision, err := g.Authorize.Execute(ctx, queries.AuthorizeActionQuery{
		ActorID:       actorID,
		PlatformAdmin: platformAdmin,
		OrgID:         orgID,
		Action:        action,
	})
	if err != nil {
		return false, decision.Reason, err
	}
	return decision.Allowed, decision.Reason, nil
}
