package outbox

import (
	"context"
	"log/slog"
	"time"

	"github.com/corray333/littlelemon/internal/dal/interfaces/ioutboxrepo"
	"github.com/corray333/littlelemon/internal/service/models/outbox"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

// Publisher delivers a single outbox message.
type Publisher interface {
	Publish(ctx context.Context, msg outbox.Message) error
}

// Worker drains the outbox: due messages are published and removed, failed
// ones are rescheduled with exponential backoff.
type Worker struct {
	repo          ioutboxrepo.IOutboxRepository
	publisher     Publisher
	pollInterval  time.Duration
	batchSize     int
	concurrency   int
	retryInterval time.Duration
	stopCh        chan struct{}
}

// NewWorker creates a new outbox worker tuned by the outbox.* config keys.
func NewWorker(repo ioutboxrepo.IOutboxRepository, publisher Publisher) *Worker {
	return &Worker{
		repo:          repo,
		publisher:     publisher,
		pollInterval:  time.Duration(intOr("outbox.poll_interval_seconds", 10)) * time.Second,
		batchSize:     intOr("outbox.batch_size", 100),
		concurrency:   intOr("outbox.concurrency", 3),
		retryInterval: time.Duration(intOr("outbox.retry_interval_seconds", 30)) * time.Second,
		stopCh:        make(chan struct{}),
	}
}

func intOr(key string, fallback int) int {
	if v := viper.GetInt(key); v > 0 {
		return v
	}

	return fallback
}

// Start polls the outbox until ctx is cancelled or Stop is called.
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	slog.Info("Outbox worker started", "poll_interval", w.pollInterval, "batch_size", w.batchSize)

	for {
		select {
		case <-ctx.Done():
			slog.Info("Outbox worker shutting down")

			return
		case <-w.stopCh:
			slog.Info("Outbox worker stopped")

			return
		case <-ticker.C:
			w.processMessages(ctx)
		}
	}
}

// Stop stops the worker.
func (w *Worker) Stop() {
	close(w.stopCh)
}

// backoff doubles the retry interval for every attempt already made.
func (w *Worker) backoff(attempts int) time.Duration {
	return w.retryInterval << attempts
}

func (w *Worker) processMessages(ctx context.Context) {
	messages, err := w.repo.Pending(ctx, w.batchSize)
	if err != nil {
		slog.Error("Failed to load pending order events", "error", err)

		return
	}

	if len(messages) == 0 {
		return
	}

	slog.Info("Publishing order events", "count", len(messages))

	var g errgroup.Group
	g.SetLimit(w.concurrency)

	for _, msg := range messages {
		g.Go(func() error {
			w.publish(ctx, msg)

			return nil
		})
	}

	_ = g.Wait()
}

func (w *Worker) publish(ctx context.Context, msg outbox.Message) {
	log := slog.With("outbox_id", msg.ID, "message_id", msg.MessageID, "routing_key", msg.RoutingKey)

	if err := w.publisher.Publish(ctx, msg); err != nil {
		retry := outbox.Retry{
			Attempts:  msg.Attempts + 1,
			LastError: err.Error(),
		}
		retry.NextAttemptAt = time.Now().Add(w.backoff(retry.Attempts))

		log.Warn("Failed to publish order event, will retry",
			"attempts", retry.Attempts,
			"next_attempt", retry.NextAttemptAt,
			"error", err,
		)

		if err := w.repo.ScheduleRetry(ctx, msg.ID, retry); err != nil {
			log.Error("Failed to schedule order event retry", "error", err)
		}

		return
	}

	if err := w.repo.Remove(ctx, msg.ID); err != nil {
		log.Error("Failed to remove published order event", "error", err)

		return
	}

	log.Debug("Order event published")
}
