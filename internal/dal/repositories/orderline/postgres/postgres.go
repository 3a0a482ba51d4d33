package postgresrepo

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/corray333/littlelemon/internal/dal/postgres"
	"github.com/corray333/littlelemon/internal/service/models/orderline"
)

// PostgresOrderLineRepository stores order lines.
type PostgresOrderLineRepository struct {
	conn postgres.GenericConn
	sb   sq.StatementBuilderType
}

// NewPostgresOrderLineRepository creates a new Postgres order line repository.
func NewPostgresOrderLineRepository(conn postgres.GenericConn) *PostgresOrderLineRepository {
	return &PostgresOrderLineRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// BulkInsert inserts the lines in one statement using unnest and returns them with ids.
func (r *PostgresOrderLineRepository) BulkInsert(
	ctx context.Context,
	lines []orderline.OrderLine,
) ([]orderline.OrderLine, error) {
	if len(lines) == 0 {
		return []orderline.OrderLine{}, nil
	}

	orderIds := make([]int64, len(lines))
	menuItemIds := make([]int64, len(lines))
	quantities := make([]int32, len(lines))
	unitPrices := make([]string, len(lines))
	prices := make([]string, len(lines))
	for i, l := range lines {
		orderIds[i] = l.OrderID
		menuItemIds[i] = l.MenuItemID
		quantities[i] = int32(l.Quantity)
		unitPrices[i] = l.UnitPrice.String()
		prices[i] = l.Price.String()
	}

	sql := `
		INSERT INTO order_lines (order_id, menu_item_id, quantity, unit_price, price)
		SELECT * FROM unnest($1::bigint[], $2::bigint[], $3::int[], $4::numeric[], $5::numeric[])
		RETURNING id, order_id, menu_item_id, quantity, unit_price, price
	`

	rows, err := r.conn.Query(ctx, sql, orderIds, menuItemIds, quantities, unitPrices, prices)
	if err != nil {
		return nil, postgres.WrapError(err, "failed to bulk insert order lines")
	}
	defer rows.Close()

	return scanLines(rows)
}

// Query retrieves order lines based on filter criteria.
func (r *PostgresOrderLineRepository) Query(
	ctx context.Context,
	filter *orderline.QueryOrderLinesModel,
) ([]orderline.OrderLine, error) {
	query := r.sb.
		Select("id", "order_id", "menu_item_id", "quantity", "unit_price", "price").
		From("order_lines").
		OrderBy("id ASC")

	if len(filter.Ids) > 0 {
		query = query.Where(sq.Eq{"id": filter.Ids})
	}

	if len(filter.OrderIds) > 0 {
		query = query.Where(sq.Eq{"order_id": filter.OrderIds})
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, postgres.WrapError(err, "failed to query order lines")
	}
	defer rows.Close()

	return scanLines(rows)
}

type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanLines(rows rowScanner) ([]orderline.OrderLine, error) {
	var result []orderline.OrderLine
	for rows.Next() {
		var l orderline.OrderLine
		if err := rows.Scan(&l.ID, &l.OrderID, &l.MenuItemID, &l.Quantity, &l.UnitPrice, &l.Price); err != nil {
			return nil, fmt.Errorf("failed to scan order line: %w", err)
		}
		result = append(result, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}
