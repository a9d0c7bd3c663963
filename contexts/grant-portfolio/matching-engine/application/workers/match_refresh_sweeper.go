package workers

import (
	"context"
	"log/slog"

	application "grantstw/contexts/grant-portfolio/matching-engine/application"
	"grantstw/contexts/grant-portfolio/matching-engine/application/commands"
	"grantstw/contexts/grant-portfolio/matching-engine/ports"
)

// SweeperActorID is the platform identity the refresh sweeper acts as.
const SweeperActorID = "system-matcher"

// MatchRefreshSweeper rescores every organization against the open grant
// catalog. It runs as a platform actor so no per-organization membership is
// required.
type MatchRefreshSweeper struct {
	Organizations ports.OrganizationDirectory
	Refresh       commands.RefreshMatchesUseCase
	Disabled      bool
	Logger        *slog.Logger
}

// RunOnce refreshes each organization in turn. One failing organization does
// not stop the sweep; the error is logged and the next organization runs.
func (s MatchRefreshSweeper) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(s.Logger)
	if s.Disabled {
		logger.Debug("match refresh sweep disabled",
			"event", "match_refresh_sweep_disabled",
			"module", "grant-portfolio/matching-engine",
			"layer", "worker",
		)
		return nil
	}

	profiles, err := s.Organizations.ListOrgProfiles(ctx)
	if err != nil {
		logger.Error("match refresh listing failed",
			"event", "match_refresh_list_failed",
			"module", "grant-portfolio/matching-engine",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}

	var refreshed int
	for _, profile := range profiles {
		if err := ctx.Err(); err != nil {
			return err
		}
		_, err := s.Refresh.Execute(ctx, commands.RefreshMatchesCommand{
			ActorID:       SweeperActorID,
			PlatformAdmin: true,
			OrgID:         profile.OrgID,
		})
		if err != nil {
			logger.Error("match refresh failed for organization",
				"event", "match_refresh_org_failed",
				"module", "grant-portfolio/matching-engine",
				"layer", "worker",
				"org_id", profile.OrgID,
				"error", err.Error(),
			)
			continue
		}
		refreshed++
	}

	logger.Info("match refresh sweep completed",
		"event", "match_refresh_sweep_completed",
		"module", "grant-portfolio/matching-engine",
		"layer", "worker",
		"org_count", refreshed,
	)
	return nil
}
