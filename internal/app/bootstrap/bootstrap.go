package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	drafting "grantstw/contexts/grant-portfolio/drafting-service"
	draftingpostgres "grantstw/contexts/grant-portfolio/drafting-service/adapters/postgres"
	matching "grantstw/contexts/grant-portfolio/matching-engine"
	matchingmemory "grantstw/contexts/grant-portfolio/matching-engine/adapters/memory"
	matchingpostgres "grantstw/contexts/grant-portfolio/matching-engine/adapters/postgres"
	matchingworkers "grantstw/contexts/grant-portfolio/matching-engine/application/workers"
	"grantstw/contexts/grant-portfolio/matching-engine/domain/services"
	membership "grantstw/contexts/identity-access/membership-service"
	membershippostgres "grantstw/contexts/identity-access/membership-service/adapters/postgres"
	"grantstw/internal/platform/config"
	"grantstw/internal/platform/db"
	"grantstw/internal/platform/httpserver"
	"grantstw/internal/platform/messaging"

	"github.com/joho/godotenv"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	logger   *slog.Logger
}

type WorkerApp struct {
	postgres     *db.Postgres
	outboxRelay  matchingworkers.OutboxRelay
	statusSweep  matchingworkers.GrantStatusSweeper
	matchRefresh matchingworkers.MatchRefreshSweeper
	pollInterval time.Duration
	logger       *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	membershipModule, matchingModule, draftingModule := buildModules(cfg, pg, logger)

	server := httpserver.New(
		membershipModule,
		matchingModule,
		draftingModule,
		logger,
		normalizeAddr(cfg.HTTPPort),
	)
	return &APIApp{
		server:   server,
		postgres: pg,
		logger:   logger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	_, matchingModule, _ := buildModules(cfg, pg, logger)

	return &WorkerApp{
		postgres:     pg,
		outboxRelay:  matchingModule.OutboxRelay,
		statusSweep:  matchingModule.GrantStatusSweeper,
		matchRefresh: matchingModule.MatchRefresher,
		pollInterval: cfg.WorkerPollInterval,
		logger:       logger,
	}, nil
}

// buildModules wires the three bounded contexts against one postgres handle.
// The membership access gate is the authorizer for matching and drafting; the
// matching and drafting repositories read organization and grant rows as
// projections of the tables membership and ingestion own.
func buildModules(cfg config.Config, pg *db.Postgres, logger *slog.Logger) (membership.Module, matching.Module, drafting.Module) {
	membershipRepo := membershippostgres.NewRepository(pg.DB, logger)
	membershipModule := membership.NewModule(membership.Dependencies{
		Repository:  membershipRepo,
		Clock:       membershippostgres.SystemClock{},
		IDGenerator: membershippostgres.UUIDGenerator{},
		Embedder:    matchingmemory.HashingEncoder{Dim: 64},
		Logger:      logger,
	})

	bus, _ := messaging.NewKafka(nil, logger)

	matchingRepo := matchingpostgres.NewRepository(pg.DB, logger)
	matchingModule := matching.NewModule(matching.Dependencies{
		Repository:    matchingRepo,
		Organizations: matchingRepo,
		Outbox:        matchingRepo,
		Publisher:     bus,
		Authorizer:    membershipModule.Gate,
		Embedder:      matchingmemory.HashingEncoder{Dim: 64},
		Clock:         matchingpostgres.SystemClock{},
		IDGenerator:   matchingpostgres.UUIDGenerator{},
		Weights: services.Weights{
			Categorical: cfg.MatchCategoricalWeight,
			Semantic:    cfg.MatchSemanticWeight,
		},
		TopK:              cfg.MatchTopK,
		ClosingSoonWindow: time.Duration(cfg.GrantClosingSoonDays) * 24 * time.Hour,
		OutboxBatchSize:   100,
		SweepDisabled:     !cfg.EnableGrantStatusSweep,
		RefreshDisabled:   !cfg.EnableMatchRefreshSweep,
		Logger:            logger,
	})

	draftingRepo := draftingpostgres.NewRepository(pg.DB, logger)
	draftingModule := drafting.NewModule(drafting.Dependencies{
		Repository:    draftingRepo,
		Organizations: draftingRepo,
		Grants:        draftingRepo,
		Authorizer:    membershipModule.Gate,
		Clock:         draftingpostgres.SystemClock{},
		IDGenerator:   draftingpostgres.UUIDGenerator{},
		Logger:        logger,
	})

	return membershipModule, matchingModule, draftingModule
}

func (a *APIApp) Run(_ context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", w.pollInterval.String(),
	)

	for {
		if err := w.statusSweep.RunOnce(ctx); err != nil {
			return err
		}
		if err := w.matchRefresh.RunOnce(ctx); err != nil {
			return err
		}
		if err := w.outboxRelay.RunOnce(ctx); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (w *WorkerApp) Close() error {
	if w.postgres != nil {
		return w.postgres.Close()
	}
	return nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
