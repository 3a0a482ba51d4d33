package postgresrepo

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/corray333/littlelemon/internal/dal/postgres"
	"github.com/corray333/littlelemon/internal/service/models/outbox"
	"github.com/corray333/littlelemon/internal/service/svcerr"
	"github.com/jackc/pgx/v5"
)

// OutboxDal represents an outbox row.
type OutboxDal struct {
	Id            int64     `db:"id"`
	MessageId     string    `db:"message_id"`
	Exchange      string    `db:"exchange"`
	RoutingKey    string    `db:"routing_key"`
	Payload       []byte    `db:"payload"`
	ContentType   string    `db:"content_type"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
	MaxAttempts   int32     `db:"max_attempts"`
	Attempts      int32     `db:"attempts"`
	LastError     string    `db:"last_error"`
	NextAttemptAt time.Time `db:"next_attempt_at"`
}

// ToModel converts OutboxDal to the service layer message.
func (d OutboxDal) ToModel() outbox.Message {
	return outbox.Message{
		ID:            d.Id,
		MessageID:     d.MessageId,
		Exchange:      d.Exchange,
		RoutingKey:    d.RoutingKey,
		Payload:       d.Payload,
		ContentType:   d.ContentType,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
		MaxAttempts:   int(d.MaxAttempts),
		Attempts:      int(d.Attempts),
		LastError:     d.LastError,
		NextAttemptAt: d.NextAttemptAt,
	}
}

var outboxColumns = []string{
	"id", "message_id", "exchange", "routing_key", "payload", "content_type",
	"created_at", "updated_at", "max_attempts", "attempts", "last_error", "next_attempt_at",
}

// OutboxRepository stores order events in PostgreSQL.
type OutboxRepository struct {
	conn postgres.GenericConn
	sb   sq.StatementBuilderType
}

// NewOutboxRepository creates a new outbox repository.
func NewOutboxRepository(conn postgres.GenericConn) *OutboxRepository {
	return &OutboxRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Append stores msg. Inside a unit of work it commits with the order rows.
func (r *OutboxRepository) Append(ctx context.Context, msg outbox.Message) error {
	sql, args, err := r.sb.Insert("outbox").
		SetMap(map[string]any{
			"message_id":      msg.MessageID,
			"exchange":        msg.Exchange,
			"routing_key":     msg.RoutingKey,
			"payload":         msg.Payload,
			"content_type":    msg.ContentType,
			"created_at":      msg.CreatedAt,
			"updated_at":      msg.UpdatedAt,
			"max_attempts":    msg.MaxAttempts,
			"attempts":        msg.Attempts,
			"next_attempt_at": msg.NextAttemptAt,
		}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert query: %w", err)
	}

	if _, err := r.conn.Exec(ctx, sql, args...); err != nil {
		return postgres.WrapError(err, "failed to insert outbox message")
	}

	return nil
}

// Pending returns due messages. Rows locked by another worker are skipped.
func (r *OutboxRepository) Pending(ctx context.Context, limit int) ([]outbox.Message, error) {
	sql, args, err := r.sb.Select(outboxColumns...).
		From("outbox").
		Where(sq.LtOrEq{"next_attempt_at": time.Now()}).
		Where("attempts < max_attempts").
		OrderBy("next_attempt_at").
		Limit(uint64(limit)).
		Suffix("FOR UPDATE SKIP LOCKED").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, postgres.WrapError(err, "failed to query outbox messages")
	}

	dals, err := pgx.CollectRows(rows, pgx.RowToStructByName[OutboxDal])
	if err != nil {
		return nil, fmt.Errorf("failed to scan outbox messages: %w", err)
	}

	messages := make([]outbox.Message, 0, len(dals))
	for _, d := range dals {
		messages = append(messages, d.ToModel())
	}

	return messages, nil
}

// Remove deletes a published message.
func (r *OutboxRepository) Remove(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("outbox").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete query: %w", err)
	}

	if _, err := r.conn.Exec(ctx, sql, args...); err != nil {
		return postgres.WrapError(err, "failed to delete outbox message")
	}

	return nil
}

// ScheduleRetry records a failed attempt.
func (r *OutboxRepository) ScheduleRetry(ctx context.Context, id int64, retry outbox.Retry) error {
	sql, args, err := r.sb.Update("outbox").
		Set("attempts", retry.Attempts).
		Set("last_error", retry.LastError).
		Set("next_attempt_at", retry.NextAttemptAt).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	tag, err := r.conn.Exec(ctx, sql, args...)
	if err != nil {
		return postgres.WrapError(err, "failed to update outbox message")
	}
	if tag.RowsAffected() == 0 {
		return svcerr.NotFound("outbox message %d not found", id)
	}

	return nil
}
