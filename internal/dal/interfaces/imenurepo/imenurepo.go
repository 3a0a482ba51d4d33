package imenurepo

import (
	"context"

	"github.com/corray333/littlelemon/internal/service/models/category"
	"github.com/corray333/littlelemon/internal/service/models/menuitem"
)

// IMenuRepository is an interface for the read-only catalog.
type IMenuRepository interface {
	Query(ctx context.Context, filter *menuitem.QueryMenuItemsModel) ([]menuitem.MenuItem, error)
	GetByID(ctx context.Context, id int64) (menuitem.MenuItem, error)
	ListCategories(ctx context.Context) ([]category.Category, error)
}
