package matching

import (
	"log/slog"
	"time"

	httpadapter "grantstw/contexts/grant-portfolio/matching-engine/adapters/http"
	"grantstw/contexts/grant-portfolio/matching-engine/adapters/memory"
	"grantstw/contexts/grant-portfolio/matching-engine/application/commands"
	"grantstw/contexts/grant-portfolio/matching-engine/application/queries"
	"grantstw/contexts/grant-portfolio/matching-engine/application/workers"
	"grantstw/contexts/grant-portfolio/matching-engine/domain/services"
	"grantstw/contexts/grant-portfolio/matching-engine/ports"
)

// Module is the matching-engine composition root exposed to runtime wiring.
type Module struct {
	Handler            httpadapter.Handler
	OutboxRelay        workers.OutboxRelay
	GrantStatusSweeper workers.GrantStatusSweeper
	MatchRefresher     workers.MatchRefreshSweeper
	Store              *memory.Store
}

// Dependencies captures all runtime ports/config required by NewModule.
type Dependencies struct {
	Repository        ports.Repository
	Organizations     ports.OrganizationDirectory
	Outbox            ports.OutboxRepository
	Publisher         ports.EventPublisher
	Authorizer        ports.Authorizer
	Embedder          ports.Embedder
	Index             ports.SimilarityIndex
	Clock             ports.Clock
	IDGenerator       ports.IDGenerator
	Weights           services.Weights
	TopK              int
	ClosingSoonWindow time.Duration
	OutboxBatchSize   int
	SweepDisabled     bool
	RefreshDisabled   bool
	Logger            *slog.Logger
}

// NewModule wires matching use-cases, workers, and the transport handler
// using explicit ports.
func NewModule(deps Dependencies) Module {
	computeMatch := commands.ComputeMatchUseCase{
		Repository:    deps.Repository,
		Organizations: deps.Organizations,
		Authorizer:    deps.Authorizer,
		Clock:         deps.Clock,
		IDGenerator:   deps.IDGenerator,
		Weights:       deps.Weights,
		Logger:        deps.Logger,
	}
	refreshMatches := commands.RefreshMatchesUseCase{
		Compute: computeMatch,
		Index:   deps.Index,
		TopK:    deps.TopK,
		Logger:  deps.Logger,
	}
	ingestGrants := commands.IngestGrantsUseCase{
		Repository:        deps.Repository,
		Authorizer:        deps.Authorizer,
		Embedder:          deps.Embedder,
		Clock:             deps.Clock,
		IDGenerator:       deps.IDGenerator,
		ClosingSoonWindow: deps.ClosingSoonWindow,
		Logger:            deps.Logger,
	}
	markViewed := commands.MarkMatchViewedUseCase{
		Repository: deps.Repository,
		Authorizer: deps.Authorizer,
		Clock:      deps.Clock,
		Logger:     deps.Logger,
	}
	createAssignment := commands.CreateAssignmentUseCase{
		Repository:  deps.Repository,
		Authorizer:  deps.Authorizer,
		Clock:       deps.Clock,
		IDGenerator: deps.IDGenerator,
		Logger:      deps.Logger,
	}
	transitionAssignment := commands.TransitionAssignmentUseCase{
		Repository: deps.Repository,
		Authorizer: deps.Authorizer,
		Clock:      deps.Clock,
		Logger:     deps.Logger,
	}
	listGrants := queries.ListGrantsUseCase{
		Repository: deps.Repository,
		Authorizer: deps.Authorizer,
		Logger:     deps.Logger,
	}
	listTopMatches := queries.ListTopMatchesUseCase{
		Repository: deps.Repository,
		Authorizer: deps.Authorizer,
		Logger:     deps.Logger,
	}
	listAssignments := queries.ListAssignmentsUseCase{
		Repository: deps.Repository,
		Authorizer: deps.Authorizer,
		Logger:     deps.Logger,
	}

	handler := httpadapter.Handler{
		IngestGrants:         ingestGrants,
		ComputeMatch:         computeMatch,
		RefreshMatches:       refreshMatches,
		MarkMatchViewed:      markViewed,
		CreateAssignment:     createAssignment,
		TransitionAssignment: transitionAssignment,
		ListGrants:           listGrants,
		ListTopMatches:       listTopMatches,
		ListAssignments:      listAssignments,
		Logger:               deps.Logger,
	}

	return Module{
		Handler: handler,
		OutboxRelay: workers.OutboxRelay{
			Outbox:    deps.Outbox,
			Publisher: deps.Publisher,
			Clock:     deps.Clock,
			BatchSize: deps.OutboxBatchSize,
			Logger:    deps.Logger,
		},
		GrantStatusSweeper: workers.GrantStatusSweeper{
			Repository:        deps.Repository,
			Clock:             deps.Clock,
			ClosingSoonWindow: deps.ClosingSoonWindow,
			Disabled:          deps.SweepDisabled,
			Logger:            deps.Logger,
		},
		MatchRefresher: workers.MatchRefreshSweeper{
			Organizations: deps.Organizations,
			Refresh:       refreshMatches,
			Disabled:      deps.RefreshDisabled,
			Logger:        deps.Logger,
		},
	}
}

// NewInMemoryModule builds a development/testing module with in-memory
// adapters. The store doubles as the org directory, similarity index, and
// outbox.
func NewInMemoryModule(authorizer ports.Authorizer, publisher ports.EventPublisher, logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Repository:    store,
		Organizations: store,
		Outbox:        store,
		Publisher:     publisher,
		Authorizer:    authorizer,
		Embedder:      memory.HashingEncoder{Dim: 64},
		Index:         store,
		Clock:         store,
		IDGenerator:   store,
		Weights:       services.DefaultWeights(),
		Logger:        logger,
	})
	module.Store = store
	return module
}
