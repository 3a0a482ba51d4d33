package orders

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/corray333/littlelemon/internal/service/models/order"
	"github.com/corray333/littlelemon/internal/service/models/principal"
	"github.com/corray333/littlelemon/internal/service/models/sortspec"
	"github.com/corray333/littlelemon/internal/transport/http/authn"
	"github.com/corray333/littlelemon/internal/transport/http/respond"
	"github.com/corray333/littlelemon/internal/transport/http/validate"
)

// service is an interface for the service layer.
type service interface {
	PlaceOrder(ctx context.Context, p principal.Principal) (order.Order, error)
	ListOrders(ctx context.Context, p principal.Principal, model order.ListOrdersModel) ([]order.Order, error)
	GetOrder(ctx context.Context, p principal.Principal, id int64) (order.Order, error)
	UpdateOrder(ctx context.Context, p principal.Principal, id int64, u order.Update) (order.Order, error)
	ReplaceOrder(ctx context.Context, p principal.Principal, id int64) error
}

type listOrdersRequest struct {
	Sort     string `schema:"sort"`
	Page     int    `schema:"page"     validate:"gte=0"`
	PageSize int    `schema:"pageSize" validate:"gte=0,lte=100"`
}

func (q *listOrdersRequest) toModel() (order.ListOrdersModel, error) {
	keys, err := sortspec.Parse(q.Sort, order.SortFields)
	if err != nil {
		return order.ListOrdersModel{}, err
	}

	return order.ListOrdersModel{
		Sort:     keys,
		Page:     q.Page,
		PageSize: q.PageSize,
	}, nil
}

// List handles GET /orders.
func List(w http.ResponseWriter, r *http.Request, service service) {
	p, err := authn.Principal(r)
	if err != nil {
		respond.Error(w, r, err)

		return
	}

	query := &listOrdersRequest{}
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

	orders, err := service.ListOrders(r.Context(), p, model)
	if err != nil {
		respond.Error(w, r, err)

		return
	}

	respond.JSON(w, r, http.StatusOK, orders)
}

// Create handles POST /orders by checking out the caller's cart.
func Create(w http.ResponseWriter, r *http.Request, service service) {
	p, err := authn.Principal(r)
	if err != nil {
		respond.Error(w, r, err)

		return
	}

	placed, err := service.PlaceOrder(r.Context(), p)
	if err != nil {
		respond.Error(w, r, err)

		return
	}

	respond.JSON(w, r, http.StatusCreated, placed)
}

// Get handles GET /orders/{id}.
func Get(w http.ResponseWriter, r *http.Request, service service) {
	p, err := authn.Principal(r)
	if err != nil {
		respond.Error(w, r, err)

		return
	}

	id, err := validate.PathID(r, "id")
	if err != nil {
		respond.Error(w, r, err)

		return
	}

	o, err := service.GetOrder(r.Context(), p, id)
	if err != nil {
		respond.Error(w, r, err)

		return
	}

	respond.JSON(w, r, http.StatusOK, o)
}

// Update handles PATCH /orders/{id}.
func Update(w http.ResponseWriter, r *http.Request, service service) {
	p, err := authn.Principal(r)
	if err != nil {
		respond.Error(w, r, err)

		return
	}

	id, err := validate.PathID(r, "id")
	if err != nil {
		respond.Error(w, r, err)

		return
	}

	var body map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respond.BadRequest(w, r, err)

		return
	}

	u, err := order.ParseUpdate(body)
	if err != nil {
		respond.Error(w, r, err)

		return
	}

	updated, err := service.UpdateOrder(r.Context(), p, id, u)
	if err != nil {
		respond.Error(w, r, err)

		return
	}

	respond.JSON(w, r, http.StatusOK, updated)
}

// Replace handles PUT /orders/{id}, which orders never accept.
func Replace(w http.ResponseWriter, r *http.Request, service service) {
	p, err := authn.Principal(r)
	if err != nil {
		respond.Error(w, r, err)

		return
	}

	// Replacement is refused for every id, including ones that name no order.
	id, _ := validate.PathID(r, "id")

	respond.Error(w, r, service.ReplaceOrder(r.Context(), p, id))
}
