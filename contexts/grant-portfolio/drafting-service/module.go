package drafting

import (
	"log/slog"

	httpadapter "grantstw/contexts/grant-portfolio/drafting-service/adapters/http"
	"grantstw/contexts/grant-portfolio/drafting-service/adapters/memory"
	"grantstw/contexts/grant-portfolio/drafting-service/application/commands"
	"grantstw/contexts/grant-portfolio/drafting-service/application/queries"
	"grantstw/contexts/grant-portfolio/drafting-service/ports"
)

// Module is the drafting-service composition root exposed to runtime wiring.
type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

// Dependencies captures all runtime ports required by NewModule.
type Dependencies struct {
	Repository    ports.Repository
	Organizations ports.OrganizationDirectory
	Grants        ports.GrantDirectory
	Authorizer    ports.Authorizer
	Clock         ports.Clock
	IDGenerator   ports.IDGenerator
	Logger        *slog.Logger
}

// NewModule wires drafting use-cases and the transport handler using
// explicit ports.
func NewModule(deps Dependencies) Module {
	createDraft := commands.CreateDraftUseCase{
		Repository:    deps.Repository,
		Organizations: deps.Organizations,
		Grants:        deps.Grants,
		Authorizer:    deps.Authorizer,
		Clock:         deps.Clock,
		IDGenerator:   deps.IDGenerator,
		Logger:        deps.Logger,
	}
	appendVersion := commands.AppendVersionUseCase{
		Repository:  deps.Repository,
		Authorizer:  deps.Authorizer,
		Clock:       deps.Clock,
		IDGenerator: deps.IDGenerator,
		Logger:      deps.Logger,
	}
	rollbackDraft := commands.RollbackDraftUseCase{
		Repository: deps.Repository,
		Authorizer: deps.Authorizer,
		Clock:      deps.Clock,
		Logger:     deps.Logger,
	}
	getLineage := queries.GetLineageUseCase{
		Repository: deps.Repository,
		Authorizer: deps.Authorizer,
		Logger:     deps.Logger,
	}
	listDrafts := queries.ListDraftsUseCase{
		Repository: deps.Repository,
		Authorizer: deps.Authorizer,
		Logger:     deps.Logger,
	}

	handler := httpadapter.Handler{
		CreateDraft:   createDraft,
		AppendVersion: appendVersion,
		RollbackDraft: rollbackDraft,
		GetLineage:    getLineage,
		ListDrafts:    listDrafts,
		Logger:        deps.Logger,
	}

	return Module{Handler: handler}
}

// NewInMemoryModule builds a development/testing module with in-memory
// adapters. The store doubles as the org and grant directories.
func NewInMemoryModule(authorizer ports.Authorizer, logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Repository:    store,
		Organizations: store,
		Grants:        store,
		Authorizer:    authorizer,
		Clock:         store,
		IDGenerator:   store,
		Logger:        logger,
	})
	module.Store = store
	return module
}
