package workers

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	application "veilian/contexts/community-experience/chat-service/application"
	"veilian/contexts/community-experience/chat-service/ports"
	"veilian/internal/shared/events"
)

// OutboxRelay publishes persisted chat outbox records to the event bus.
type OutboxRelay struct {
	Repo      ports.Repository
	Publisher ports.Publisher
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

	pending, err := r.Repo.PendingOutbox(ctx, limit)
	if err != nil {
		logger.Error("chat outbox list failed",
			"event", "chat_outbox_list_failed",
			"module", "community-experience/chat-service",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}
	if len(pending) == 0 {
		logger.Debug("chat outbox relay found no pending rows",
			"event", "chat_outbox_relay_noop",
			"module", "community-experience/chat-service",
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
		var envelope events.Envelope
		if err := json.Unmarshal(row.Payload, &envelope); err != nil {
			logger.Error("chat outbox decode failed",
				"event", "chat_outbox_decode_failed",
				"module", "community-experience/chat-service",
				"layer", "worker",
				"outbox_id", row.OutboxID,
				"error", err.Error(),
			)
			return err
		}
		if err := r.Publisher.Publish(ctx, row.Topic, envelope); err != nil {
			logger.Error("chat outbox publish failed",
				"event", "chat_outbox_publish_failed",
				"module", "community-experience/chat-service",
				"layer", "worker",
				"outbox_id", row.OutboxID,
				"event_id", envelope.EventID,
				"topic", row.Topic,
				"error", err.Error(),
			)
			return err
		}
		if err := r.Repo.MarkOutboxPublished(ctx, row.OutboxID, now); err != nil {
			logger.Error("chat outbox mark published failed",
				"event", "chat_outbox_mark_published_failed",
				"module", "community-experience/chat-service",
				"layer", "worker",
				"outbox_id", row.OutboxID,
				"error", err.Error(),
			)
			return err
		}
	}

	logger.Info("chat outbox relay cycle completed",
		"event", "chat_outbox_relay_completed",
		"module", "community-experience/chat-service",
		"layer", "worker",
		"published_count", len(pending),
	)
	return nil
}
