package postgresrepo

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/corray333/littlelemon/internal/dal/postgres"
	"github.com/corray333/littlelemon/internal/service/models/category"
	"github.com/corray333/littlelemon/internal/service/models/menuitem"
	"github.com/corray333/littlelemon/internal/service/svcerr"
	"github.com/shopspring/decimal"
)

// MenuItemDal represents menu item data access layer model.
type MenuItemDal struct {
	Id         int64           `db:"id"`
	Title      string          `db:"title"`
	Price      decimal.Decimal `db:"price"`
	CategoryId int64           `db:"category_id"`
	Featured   bool            `db:"featured"`
}

// ToModel converts MenuItemDal to service layer MenuItem model.
func (m *MenuItemDal) ToModel() menuitem.MenuItem {
	return menuitem.MenuItem{
		ID:         m.Id,
		Title:      m.Title,
		Price:      m.Price,
		CategoryID: m.CategoryId,
		Featured:   m.Featured,
	}
}

var menuItemColumns = []string{
	"menu_items.id",
	"menu_items.title",
	"menu_items.price",
	"menu_items.category_id",
	"menu_items.featured",
}

var menuItemSortColumns = map[string]string{
	"id":       "menu_items.id",
	"title":    "menu_items.title",
	"price":    "menu_items.price",
	"featured": "menu_items.featured",
	"category": "menu_items.category_id",
}

// PostgresMenuRepository reads the catalog.
type PostgresMenuRepository struct {
	conn postgres.GenericConn
	sb   sq.StatementBuilderType
}

// NewPostgresMenuRepository creates a new Postgres menu repository.
func NewPostgresMenuRepository(conn postgres.GenericConn) *PostgresMenuRepository {
	return &PostgresMenuRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Query retrieves menu items based on filter criteria.
func (r *PostgresMenuRepository) Query(
	ctx context.Context,
	filter *menuitem.QueryMenuItemsModel,
) ([]menuitem.MenuItem, error) {
	query := r.sb.
		Select(menuItemColumns...).
		From("menu_items")

	if len(filter.Ids) > 0 {
		query = query.Where(sq.Eq{"menu_items.id": filter.Ids})
	}

	if filter.CategorySlug != "" {
		query = query.
			Join("categories ON categories.id = menu_items.category_id").
			Where(sq.Eq{"categories.slug": filter.CategorySlug})
	}

	if filter.Featured != nil {
		query = query.Where(sq.Eq{"menu_items.featured": *filter.Featured})
	}

	query = query.OrderBy(postgres.OrderBy(filter.Sort, menuItemSortColumns, "menu_items.id")...)

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
		return nil, postgres.WrapError(err, "failed to query menu items")
	}
	defer rows.Close()

	var result []menuitem.MenuItem
	for rows.Next() {
		var dal MenuItemDal
		if err := rows.Scan(&dal.Id, &dal.Title, &dal.Price, &dal.CategoryId, &dal.Featured); err != nil {
			return nil, fmt.Errorf("failed to scan menu item: %w", err)
		}
		result = append(result, dal.ToModel())
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

// GetByID returns a single menu item.
func (r *PostgresMenuRepository) GetByID(ctx context.Context, id int64) (menuitem.MenuItem, error) {
	sql, args, err := r.sb.
		Select(menuItemColumns...).
		From("menu_items").
		Where(sq.Eq{"menu_items.id": id}).
		ToSql()
	if err != nil {
		return menuitem.MenuItem{}, fmt.Errorf("failed to build query: %w", err)
	}

	var dal MenuItemDal
	err = r.conn.QueryRow(ctx, sql, args...).
		Scan(&dal.Id, &dal.Title, &dal.Price, &dal.CategoryId, &dal.Featured)
	if postgres.IsNoRows(err) {
		return menuitem.MenuItem{}, svcerr.NotFound("menu item %d not found", id)
	}
	if err != nil {
		return menuitem.MenuItem{}, postgres.WrapError(err, "failed to get menu item")
	}

	return dal.ToModel(), nil
}

// ListCategories returns every category ordered by id.
func (r *PostgresMenuRepository) ListCategories(ctx context.Context) ([]category.Category, error) {
	sql, args, err := r.sb.
		Select("id", "slug", "title").
		From("categories").
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, postgres.WrapError(err, "failed to query categories")
	}
	defer rows.Close()

	var result []category.Category
	for rows.Next() {
		var c category.Category
		if err := rows.Scan(&c.ID, &c.Slug, &c.Title); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		result = append(result, c)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}
