package menu

import (
	"context"
	"net/http"

	"github.com/corray333/littlelemon/internal/service/models/category"
	"github.com/corray333/littlelemon/internal/service/models/menuitem"
	"github.com/corray333/littlelemon/internal/service/models/sortspec"
	"github.com/corray333/littlelemon/internal/service/services/menusvc"
	"github.com/corray333/littlelemon/internal/transport/http/respond"
	"github.com/corray333/littlelemon/internal/transport/http/validate"
)

// service is an interface for the service layer.
type service interface {
	ListMenuItems(ctx context.Context, model menusvc.ListMenuItemsModel) ([]menuitem.MenuItem, error)
	GetMenuItem(ctx context.Context, id int64) (menuitem.MenuItem, error)
	ListCategories(ctx context.Context) ([]category.Category, error)
}

type listMenuItemsRequest struct {
	Category string `schema:"category"`
	Featured *bool  `schema:"featured"`
	Sort     string `schema:"sort"`
	Page     int    `schema:"page"     validate:"gte=0"`
	PageSize int    `schema:"pageSize" validate:"gte=0,lte=100"`
}

func (q *listMenuItemsRequest) toModel() (menusvc.ListMenuItemsModel, error) {
	keys, err := sortspec.Parse(q.Sort, menuitem.SortFields)
	if err != nil {
		return menusvc.ListMenuItemsModel{}, err
	}

	return menusvc.ListMenuItemsModel{
		CategorySlug: q.Category,
		Featured:     q.Featured,
		Sort:         keys,
		Page:         q.Page,
		PageSize:     q.PageSize,
	}, nil
}

// ListMenuItems handles GET /menu-items.
func ListMenuItems(w http.ResponseWriter, r *http.Request, service service) {
	query := &listMenuItemsRequest{}
	if err := validate.NewDecoder().Decode(query, r.URL.Query()); err != nil {
		respond.BadRequest(w, r, err)

		return
	}

	if err := validate.Struct(query); err != nil {
		respond.BadRequest(w, r, err)

		return
	}

	model, err := query.toModel()
	if err != nil {
		respond.Error(w, r, err)

		return
	}

	items, err := service.ListMenuItems(r.Context(), model)
	if err != nil {
		respond.Error(w, r, err)

		return
	}

	respond.JSON(w, r, http.StatusOK, items)
}

// GetMenuItem handles GET /menu-items/{id}.
func GetMenuItem(w http.ResponseWriter, r *http.Request, service service) {
	id, err := validate.PathID(r, "id")
	if err != nil {
		respond.Error(w, r, err)

		return
	}

	item, err := service.GetMenuItem(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)

		return
	}

	respond.JSON(w, r, http.StatusOK, item)
}

// ListCategories handles GET /categories.
func ListCategories(w http.ResponseWriter, r *http.Request, service service) {
	categories, err := service.ListCategories(r.Context())
	if err != nil {
		respond.Error(w, r, err)

		return
	}

	respond.JSON(w, r, http.StatusOK, categories)
}
