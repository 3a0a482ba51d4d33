package postgresrepo

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/corray333/littlelemon/internal/dal/postgres"
	"github.com/corray333/littlelemon/internal/service/models/user"
	"github.com/corray333/littlelemon/internal/service/svcerr"
)

// PostgresUserRepository reads users and maintains their group memberships.
type PostgresUserRepository struct {
	conn postgres.GenericConn
	sb   sq.StatementBuilderType
}

// NewPostgresUserRepository creates a new Postgres user repository.
func NewPostgresUserRepository(conn postgres.GenericConn) *PostgresUserRepository {
	return &PostgresUserRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *PostgresUserRepository) selectUsers() sq.SelectBuilder {
	return r.sb.
		Select(
			"users.id",
			"users.username",
			"users.email",
			"COALESCE(array_agg(user_groups.group_name ORDER BY user_groups.group_name) "+
				"FILTER (WHERE user_groups.group_name IS NOT NULL), '{}')",
		).
		From("users").
		LeftJoin("user_groups ON user_groups.user_id = users.id").
		GroupBy("users.id").
		OrderBy("users.id ASC")
}

func (r *PostgresUserRepository) queryUsers(ctx context.Context, query sq.SelectBuilder) ([]user.User, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, postgres.WrapError(err, "failed to query users")
	}
	defer rows.Close()

	var result []user.User
	for rows.Next() {
		var u user.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.Groups); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		result = append(result, u)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

// GetByID returns the user with its groups.
func (r *PostgresUserRepository) GetByID(ctx context.Context, id int64) (user.User, error) {
	users, err := r.queryUsers(ctx, r.selectUsers().Where(sq.Eq{"users.id": id}))
	if err != nil {
		return user.User{}, err
	}
	if len(users) == 0 {
		return user.User{}, svcerr.NotFound("user %d not found", id)
	}

	return users[0], nil
}

// GetByUsername returns the user with its groups.
func (r *PostgresUserRepository) GetByUsername(ctx context.Context, username string) (user.User, error) {
	users, err := r.queryUsers(ctx, r.selectUsers().Where(sq.Eq{"users.username": username}))
	if err != nil {
		return user.User{}, err
	}
	if len(users) == 0 {
		return user.User{}, svcerr.NotFound("user %q not found", username)
	}

	return users[0], nil
}

// ListByGroup returns every member of group.
func (r *PostgresUserRepository) ListByGroup(ctx context.Context, group string) ([]user.User, error) {
	return r.queryUsers(ctx, r.selectUsers().Where(sq.Expr(
		"EXISTS (SELECT 1 FROM user_groups m WHERE m.user_id = users.id AND m.group_name = ?)", group,
	)))
}

// AddToGroup makes the user a member of group. Adding an existing member is a no-op.
func (r *PostgresUserRepository) AddToGroup(ctx context.Context, userID int64, group string) error {
	sql, args, err := r.sb.
		Insert("user_groups").
		Columns("user_id", "group_name").
		Values(userID, group).
		Suffix("ON CONFLICT DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert query: %w", err)
	}

	if _, err := r.conn.Exec(ctx, sql, args...); err != nil {
		return postgres.WrapError(err, "failed to add user to group")
	}

	return nil
}

// RemoveFromGroup drops the membership and reports whether there was one.
func (r *PostgresUserRepository) RemoveFromGroup(ctx context.Context, userID int64, group string) (bool, error) {
	sql, args, err := r.sb.
		Delete("user_groups").
		Where(sq.Eq{"user_id": userID, "group_name": group}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build delete query: %w", err)
	}

	tag, err := r.conn.Exec(ctx, sql, args...)
	if err != nil {
		return false, postgres.WrapError(err, "failed to remove user from group")
	}

	return tag.RowsAffected() > 0, nil
}
