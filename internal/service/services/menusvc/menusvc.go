package menusvc

import (
	"context"
	"errors"
	"fmt"

	"github.com/corray333/littlelemon/internal/dal/interfaces/iuow"
	"github.com/corray333/littlelemon/internal/service/models/category"
	"github.com/corray333/littlelemon/internal/service/models/menuitem"
	"github.com/corray333/littlelemon/internal/service/models/sortspec"
	"github.com/corray333/littlelemon/internal/service/svcerr"
	"go.opentelemetry.io/otel"
)

// MenuService is a service for browsing the catalog.
type MenuService struct {
	newUOW iuow.Factory
}

// option is a function that configures the MenuService.
type option func(*MenuService)

// MustNewMenuService creates a new MenuService.
func MustNewMenuService(opts ...option) *MenuService {
	s := &MenuService{}
	for _, opt := range opts {
		opt(s)
	}

	if s.newUOW == nil {
		panic("menusvc: unit of work factory is not set")
	}

	return s
}

// WithUnitOfWork sets the unit of work factory for the MenuService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithUnitOfWork(factory iuow.Factory) option {
	return func(s *MenuService) {
		s.newUOW = factory
	}
}

// ListMenuItemsModel is what a caller asks for when browsing the menu.
type ListMenuItemsModel struct {
	CategorySlug string
	Featured     *bool
	Sort         []sortspec.Key
	Page         int
	PageSize     int
}

// ListMenuItems returns one page of menu items.
func (s *MenuService) ListMenuItems(ctx context.Context, model ListMenuItemsModel) ([]menuitem.MenuItem, error) {
	ctx, span := otel.Tracer("service").Start(ctx, "MenuService.ListMenuItems")
	defer span.End()

	pageSize := model.PageSize
	if pageSize <= 0 {
		pageSize = menuitem.DefaultPageSize
	}
	page := max(model.Page, 1)

	items, err := s.newUOW().MenuRepository().Query(ctx, &menuitem.QueryMenuItemsModel{
		CategorySlug: model.CategorySlug,
		Featured:     model.Featured,
		Sort:         model.Sort,
		Limit:        pageSize,
		Offset:       (page - 1) * pageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query menu items: %w", err)
	}

	if items == nil {
		return []menuitem.MenuItem{}, nil
	}

	return items, nil
}

// GetMenuItem returns a single menu item.
func (s *MenuService) GetMenuItem(ctx context.Context, id int64) (menuitem.MenuItem, error) {
	ctx, span := otel.Tracer("service").Start(ctx, "MenuService.GetMenuItem")
	defer span.End()

	item, err := s.newUOW().MenuRepository().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, svcerr.ErrNotFound) {
			return menuitem.MenuItem{}, err
		}

		return menuitem.MenuItem{}, fmt.Errorf("failed to get menu item: %w", err)
	}

	return item, nil
}

// ListCategories returns every category.
func (s *MenuService) ListCategories(ctx context.Context) ([]category.Category, error) {
	ctx, span := otel.Tracer("service").Start(ctx, "MenuService.ListCategories")
	defer span.End()

	categories, err := s.newUOW().MenuRepository().ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	if categories == nil {
		return []category.Category{}, nil
	}

	return categories, nil
}
