package ioutboxrepo

import (
	"context"

	"github.com/corray333/littlelemon/internal/service/models/outbox"
)

// IOutboxRepository stores order events until they are published.
type IOutboxRepository interface {
	Append(ctx context.Context, msg outbox.Message) error
	// Pending returns up to limit due messages, oldest schedule first.
	Pending(ctx context.Context, limit int) ([]outbox.Message, error)
	Remove(ctx context.Context, id int64) error
	ScheduleRetry(ctx context.Context, id int64, retry outbox.Retry) error
}
