package postgresrepo

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/corray333/littlelemon/internal/dal/postgres"
	"github.com/corray333/littlelemon/internal/service/models/order"
	"github.com/corray333/littlelemon/internal/service/svcerr"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// OrderDal represents order data access layer model.
type OrderDal struct {
	Id              int64           `db:"id"`
	UserId          int64           `db:"user_id"`
	DeliveryAgentId *int64          `db:"delivery_agent_id"`
	Status          int16           `db:"status"`
	Total           decimal.Decimal `db:"total"`
	Date            time.Time       `db:"date"`
}

// ToModel converts OrderDal to service layer Order model. Lines are populated separately.
func (o *OrderDal) ToModel() order.Order {
	return order.Order{
		ID:              o.Id,
		UserID:          o.UserId,
		DeliveryAgentID: o.DeliveryAgentId,
		Status:          order.Status(o.Status),
		Total:           o.Total,
		Date:            o.Date,
	}
}

func (o *OrderDal) scan(row pgx.Row) error {
	return row.Scan(&o.Id, &o.UserId, &o.DeliveryAgentId, &o.Status, &o.Total, &o.Date)
}

var orderColumns = []string{"id", "user_id", "delivery_agent_id", "status", "total", "date"}

var orderSortColumns = map[string]string{
	"id":            "id",
	"user":          "user_id",
	"deliveryAgent": "delivery_agent_id",
	"status":        "status",
	"total":         "total",
	"date":          "date",
}

// PostgresOrderRepository stores orders.
type PostgresOrderRepository struct {
	conn postgres.GenericConn
	sb   sq.StatementBuilderType
}

// NewPostgresOrderRepository creates a new Postgres order repository.
func NewPostgresOrderRepository(conn postgres.GenericConn) *PostgresOrderRepository {
	return &PostgresOrderRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Insert stores a new order and returns it with its id.
func (r *PostgresOrderRepository) Insert(ctx context.Context, o order.Order) (order.Order, error) {
	sql, args, err := r.sb.
		Insert("orders").
		Columns("user_id", "delivery_agent_id", "status", "total", "date").
		Values(o.UserID, o.DeliveryAgentID, int16(o.Status), o.Total, o.Date).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return order.Order{}, fmt.Errorf("failed to build insert query: %w", err)
	}

	if err := r.conn.QueryRow(ctx, sql, args...).Scan(&o.ID); err != nil {
		return order.Order{}, postgres.WrapError(err, "failed to insert order")
	}

	return o, nil
}

// Query retrieves orders based on filter criteria.
func (r *PostgresOrderRepository) Query(ctx context.Context, filter *order.QueryOrdersModel) ([]order.Order, error) {
	query := r.sb.
		Select(orderColumns...).
		From("orders")

	if len(filter.Ids) > 0 {
		query = query.Where(sq.Eq{"id": filter.Ids})
	}

	if len(filter.UserIds) > 0 {
		query = query.Where(sq.Eq{"user_id": filter.UserIds})
	}

	if len(filter.DeliveryAgentIds) > 0 {
		query = query.Where(sq.Eq{"delivery_agent_id": filter.DeliveryAgentIds})
	}

	query = query.OrderBy(postgres.OrderBy(filter.Sort, orderSortColumns, "id")...)

	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}

	if filter.Offset > 0 {
		query = query.Offset(uint64(filter.Offset))
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, postgres.WrapError(err, "failed to query orders")
	}
	defer rows.Close()

	var result []order.Order
	for rows.Next() {
		var dal OrderDal
		if err := dal.scan(rows); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		result = append(result, dal.ToModel())
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

// GetByID returns a single order. With forUpdate the row stays locked until the transaction ends.
func (r *PostgresOrderRepository) GetByID(ctx context.Context, id int64, forUpdate bool) (order.Order, error) {
	query := r.sb.
		Select(orderColumns...).
		From("orders").
		Where(sq.Eq{"id": id})

	if forUpdate {
		query = query.Suffix("FOR UPDATE")
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return order.Order{}, fmt.Errorf("failed to build query: %w", err)
	}

	var dal OrderDal
	err = dal.scan(r.conn.QueryRow(ctx, sql, args...))
	if postgres.IsNoRows(err) {
		return order.Order{}, svcerr.NotFound("order %d not found", id)
	}
	if err != nil {
		return order.Order{}, postgres.WrapError(err, "failed to get order")
	}

	return dal.ToModel(), nil
}

// UpdateFields writes the mutable fields of o.
func (r *PostgresOrderRepository) UpdateFields(ctx context.Context, o order.Order) error {
	sql, args, err := r.sb.
		Update("orders").
		Set("delivery_agent_id", o.DeliveryAgentID).
		Set("status", int16(o.Status)).
		Where(sq.Eq{"id": o.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	tag, err := r.conn.Exec(ctx, sql, args...)
	if err != nil {
		return postgres.WrapError(err, "failed to update order")
	}
	if tag.RowsAffected() == 0 {
		return svcerr.NotFound("order %d not found", o.ID)
	}

	return nil
}
