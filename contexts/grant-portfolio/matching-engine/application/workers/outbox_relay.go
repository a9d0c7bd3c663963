package workers

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	application "grantstw/contexts/grant-portfolio/matching-engine/application"
	"grantstw/contexts/grant-portfolio/matching-engine/ports"
	"grantstw/internal/shared/events"
)

// OutboxRelay publishes persisted outbox records to the event bus.
type OutboxRelay struct {
	Outbox    ports.OutboxRepository
	Publisher ports.EventPublisher
	Clock     ports.Clock
	BatchSize int
	Logger    *slog.Logger
}

// RunOnce publishes a bounded batch of pending outbox rows and marks each row
// published only after broker publish succeeds. It stops on the first failure
// so the retry loop can reprocess remaining rows safely.
func (r OutboxRelay) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(r.Logger)
	limit := r.BatchSize
	if limit <= 0 {
		limit = 100
	}

	pending, err := r.Outbox.ListPendingOutbox(ctx, limit)
	if err != nil {
		logger.Error("match outbox list failed",
			"event", "match_outbox_list_failed",
			"module", "grant-portfolio/matching-engine",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}
	if len(pending) == 0 {
		logger.Debug("match outbox relay found no pending rows",
			"event", "match_outbox_relay_noop",
			"module", "grant-portfolio/matching-engine",
			"layer", "worker",
			"batch_size", limit,
		)
		return nil
	}

	now := time.Now().UTC()
	if r.Clock != nil {
		now = r.Clock.Now().UTC()
	}

	for _, row := range pending {
		var event events.Envelope
		if err := json.Unmarshal(row.Payload, &event); err != nil {
			logger.Error("match outbox decode failed",
				"event", "match_outbox_decode_failed",
				"module", "grant-portfolio/matching-engine",
				"layer", "worker",
				"outbox_id", row.ID,
				"error", err.Error(),
			)
			if err := r.Outbox.MarkOutboxFailed(ctx, row.ID); err != nil {
				return err
			}
			continue
		}
		topic := event.EventType
		if topic == "" {
			topic = row.EventType
		}
		if err := r.Publisher.Publish(ctx, topic, event); err != nil {
			logger.Error("match outbox publish failed",
				"event", "match_outbox_publish_failed",
				"module", "grant-portfolio/matching-engine",
				"layer", "worker",
				"outbox_id", row.ID,
				"event_id", event.EventID,
				"event_type", event.EventType,
				"error", err.Error(),
			)
			return err
		}
		if err := r.Outbox.MarkOutboxPublished(ctx, row.ID, now); err != nil {
			logger.Error("match outbox mark published failed",
				"event", "match_outbox_mark_published_failed",
				"module", "grant-portfolio/matching-engine",
				"layer", "worker",
				"outbox_id", row.ID,
				"error", err.Error(),
			)
			return err
		}
	}

	logger.Info("match outbox relay cycle completed",
		"event", "match_outbox_relay_completed",
		"module", "grant-portfolio/matching-engine",
		"layer", "worker",
		"published_count", len(pending),
	)
	return nil
}
