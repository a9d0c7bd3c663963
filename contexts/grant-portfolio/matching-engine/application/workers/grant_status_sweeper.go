package workers

import (
	"context"
	"log/slog"
	"time"

	application "grantstw/contexts/grant-portfolio/matching-engine/application"
	"grantstw/contexts/grant-portfolio/matching-engine/ports"
)

// GrantStatusSweeper moves grants through open, closing_soon, and closed as
// their deadlines approach and pass.
type GrantStatusSweeper struct {
	Repository        ports.Repository
	Clock             ports.Clock
	ClosingSoonWindow time.Duration
	Disabled          bool
	Logger            *slog.Logger
}

// RunOnce recomputes the deadline-driven status of every grant and persists
// the rows that changed.
func (s GrantStatusSweeper) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(s.Logger)
	if s.Disabled {
		logger.Debug("grant status sweep disabled",
			"event", "grant_status_sweep_disabled",
			"module", "grant-portfolio/matching-engine",
			"layer", "worker",
		)
		return nil
	}

	now := time.Now().UTC()
	if s.Clock != nil {
		now = s.Clock.Now().UTC()
	}
	window := s.ClosingSoonWindow
	if window <= 0 {
		window = 14 * 24 * time.Hour
	}

	changed, err := s.Repository.SweepGrantStatuses(ctx, now, window)
	if err != nil {
		logger.Error("grant status sweep failed",
			"event", "grant_status_sweep_failed",
			"module", "grant-portfolio/matching-engine",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}

	for _, grant := range changed {
		logger.Info("grant status changed",
			"event", "grant_status_changed",
			"module", "grant-portfolio/matching-engine",
			"layer", "worker",
			"grant_id", grant.GrantID,
			"status", string(grant.Status),
		)
	}
	return nil
}
