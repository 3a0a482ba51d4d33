package postgresrepo

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/corray333/littlelemon/internal/dal/postgres"
	"github.com/corray333/littlelemon/internal/service/models/cartline"
)

var cartLineColumns = []string{"id", "user_id", "menu_item_id", "quantity", "unit_price", "price"}

// PostgresCartRepository stores cart lines.
type PostgresCartRepository struct {
	conn postgres.GenericConn
	sb   sq.StatementBuilderType
}

// NewPostgresCartRepository creates a new Postgres cart repository.
func NewPostgresCartRepository(conn postgres.GenericConn) *PostgresCartRepository {
	return &PostgresCartRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// ListByUser returns the user's cart lines in insertion order.
func (r *PostgresCartRepository) ListByUser(
	ctx context.Context,
	userID int64,
	forUpdate bool,
) ([]cartline.CartLine, error) {
	query := r.sb.
		Select(cartLineColumns...).
		From("cart_lines").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("id ASC")

	if forUpdate {
		query = query.Suffix("FOR UPDATE")
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, postgres.WrapError(err, "failed to query cart lines")
	}
	defer rows.Close()

	var result []cartline.CartLine
	for rows.Next() {
		var l cartline.CartLine
		if err := rows.Scan(&l.ID, &l.UserID, &l.MenuItemID, &l.Quantity, &l.UnitPrice, &l.Price); err != nil {
			return nil, fmt.Errorf("failed to scan cart line: %w", err)
		}
		result = append(result, l)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

// Upsert writes the line, replacing quantity and prices of an existing line for the same item.
func (r *PostgresCartRepository) Upsert(ctx context.Context, line cartline.CartLine) (cartline.CartLine, error) {
	sql, args, err := r.sb.
		Insert("cart_lines").
		Columns("user_id", "menu_item_id", "quantity", "unit_price", "price").
		Values(line.UserID, line.MenuItemID, line.Quantity, line.UnitPrice, line.Price).
		Suffix(`ON CONFLICT (user_id, menu_item_id) DO UPDATE SET
			quantity = EXCLUDED.quantity,
			unit_price = EXCLUDED.unit_price,
			price = EXCLUDED.price
			RETURNING id`).
		ToSql()
	if err != nil {
		return cartline.CartLine{}, fmt.Errorf("failed to build upsert query: %w", err)
	}

	if err := r.conn.QueryRow(ctx, sql, args...).Scan(&line.ID); err != nil {
		return cartline.CartLine{}, postgres.WrapError(err, "failed to upsert cart line")
	}

	return line, nil
}

// Delete removes the line for the given item, if any.
func (r *PostgresCartRepository) Delete(ctx context.Context, userID, menuItemID int64) error {
	sql, args, err := r.sb.
		Delete("cart_lines").
		Where(sq.Eq{"user_id": userID, "menu_item_id": menuItemID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete query: %w", err)
	}

	if _, err := r.conn.Exec(ctx, sql, args...); err != nil {
		return postgres.WrapError(err, "failed to delete cart line")
	}

	return nil
}

// DeleteLines removes the user's lines with the given ids.
func (r *PostgresCartRepository) DeleteLines(ctx context.Context, userID int64, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	sql, args, err := r.sb.
		Delete("cart_lines").
		Where(sq.Eq{"user_id": userID, "id": ids}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete query: %w", err)
	}

	if _, err := r.conn.Exec(ctx, sql, args...); err != nil {
		return postgres.WrapError(err, "failed to delete cart lines")
	}

	return nil
}

// DeleteByUser empties the user's cart.
func (r *PostgresCartRepository) DeleteByUser(ctx context.Context, userID int64) (int64, error) {
	sql, args, err := r.sb.
		Delete("cart_lines").
		Where(sq.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build delete query: %w", err)
	}

	tag, err := r.conn.Exec(ctx, sql, args...)
	if err != nil {
		return 0, postgres.WrapError(err, "failed to clear cart")
	}

	return tag.RowsAffected(), nil
}
