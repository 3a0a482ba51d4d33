package ordersvc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/corray333/littlelemon/internal/dal/interfaces/iuow"
	"github.com/corray333/littlelemon/internal/service/models/cartline"
	"github.com/corray333/littlelemon/internal/service/models/order"
	"github.com/corray333/littlelemon/internal/service/models/orderevent"
	"github.com/corray333/littlelemon/internal/service/models/orderline"
	"github.com/corray333/littlelemon/internal/service/models/principal"
	"github.com/corray333/littlelemon/internal/service/models/user"
	"github.com/corray333/littlelemon/internal/service/policy"
	"github.com/corray333/littlelemon/internal/service/svcerr"
	"github.com/corray333/littlelemon/pkg/keymutex"
	"go.opentelemetry.io/otel"
)

// OrderService is a service for placing and managing orders.
type OrderService struct {
	newUOW  iuow.Factory
	locks   *keymutex.Map[int64]
	routing orderevent.Routing
	now     func() time.Time
}

// option is a function that configures the OrderService.
type option func(*OrderService)

// MustNewOrderService creates a new OrderService.
func MustNewOrderService(opts ...option) *OrderService {
	s := &OrderService{
		locks: keymutex.New[int64](),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.newUOW == nil {
		panic("ordersvc: unit of work factory is not set")
	}

	return s
}

// WithUnitOfWork sets the unit of work factory for the OrderService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithUnitOfWork(factory iuow.Factory) option {
	return func(s *OrderService) {
		s.newUOW = factory
	}
}

// WithUserLocks shares per-user locks with the cart service, so cart writes
// never interleave with a checkout of the same user.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithUserLocks(locks *keymutex.Map[int64]) option {
	return func(s *OrderService) {
		s.locks = locks
	}
}

// WithEventRouting sets where order events are published.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithEventRouting(routing orderevent.Routing) option {
	return func(s *OrderService) {
		s.routing = routing
	}
}

// WithClock overrides the time source.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithClock(now func() time.Time) option {
	return func(s *OrderService) {
		s.now = now
	}
}

// PlaceOrder converts the caller's whole cart into a new order.
// The cart read, order and line inserts, cart cleanup and event are committed together.
func (s *OrderService) PlaceOrder(ctx context.Context, p principal.Principal) (order.Order, error) {
	ctx, span := otel.Tracer("service").Start(ctx, "OrderService.PlaceOrder")
	defer span.End()

	unlock := s.locks.Lock(p.UserID)
	defer unlock()

	work := s.newUOW()
	if err := work.Begin(ctx); err != nil {
		return order.Order{}, fmt.Errorf("failed to begin checkout: %w", err)
	}
	defer rollback(ctx, work)

	lines, err := work.CartRepository().ListByUser(ctx, p.UserID, true)
	if err != nil {
		return order.Order{}, fmt.Errorf("failed to read cart: %w", err)
	}
	if len(lines) == 0 {
		return order.Order{}, svcerr.NotFound("cart is empty")
	}

	total := cartline.Total(lines)
	if total.GreaterThan(cartline.MaxAmount) {
		return order.Order{}, svcerr.Validation("order total is too large").
			WithFields(map[string]string{"total": "must not exceed " + cartline.MaxAmount.String()})
	}

	now := s.now()
	placed, err := work.OrderRepository().Insert(ctx, order.Order{
		UserID: p.UserID,
		Status: order.StatusPending,
		Total:  total,
		Date:   dateOf(now),
	})
	if err != nil {
		return order.Order{}, fmt.Errorf("failed to insert order: %w", err)
	}

	orderLines := make([]orderline.OrderLine, len(lines))
	consumed := make([]int64, len(lines))
	for i, l := range lines {
		orderLines[i] = orderline.OrderLine{
			OrderID:    placed.ID,
			MenuItemID: l.MenuItemID,
			Quantity:   l.Quantity,
			UnitPrice:  l.UnitPrice,
			Price:      l.Price,
		}
		consumed[i] = l.ID
	}

	placed.Lines, err = work.OrderLineRepository().BulkInsert(ctx, orderLines)
	if err != nil {
		return order.Order{}, fmt.Errorf("failed to insert order lines: %w", err)
	}

	if err := work.CartRepository().DeleteLines(ctx, p.UserID, consumed); err != nil {
		return order.Order{}, fmt.Errorf("failed to clear cart: %w", err)
	}

	if err := s.appendEvent(ctx, work, orderevent.TypePlaced, placed, now); err != nil {
		return order.Order{}, err
	}

	if err := commit(ctx, work); err != nil {
		return order.Order{}, err
	}

	slog.Info("Order placed",
		"order_id", placed.ID,
		"user_id", p.UserID,
		"lines", len(placed.Lines),
		"total", placed.Total.String())

	return placed, nil
}

// ListOrders returns the orders visible to the caller.
func (s *OrderService) ListOrders(
	ctx context.Context,
	p principal.Principal,
	model order.ListOrdersModel,
) ([]order.Order, error) {
	ctx, span := otel.Tracer("service").Start(ctx, "OrderService.ListOrders")
	defer span.End()

	if model.PageSize < 0 || model.PageSize > order.MaxPageSize {
		return nil, svcerr.Validation("invalid page size").
			WithFields(map[string]string{"pageSize": fmt.Sprintf("must be between 0 and %d", order.MaxPageSize)})
	}
	if model.Page < 0 {
		return nil, svcerr.Validation("invalid page").
			WithFields(map[string]string{"page": "must not be negative"})
	}

	query := policy.Scope(p, order.QueryOrdersModel{Sort: model.Sort})
	if model.PageSize > 0 {
		page := max(model.Page, 1)
		query.Limit = model.PageSize
		query.Offset = (page - 1) * model.PageSize
	}

	work := s.newUOW()

	orders, err := work.OrderRepository().Query(ctx, &query)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}

	if len(orders) == 0 {
		return []order.Order{}, nil
	}

	if err := hydrate(ctx, work, orders); err != nil {
		return nil, err
	}

	return orders, nil
}

// GetOrder returns one order if it is visible to the caller.
func (s *OrderService) GetOrder(ctx context.Context, p principal.Principal, id int64) (order.Order, error) {
	ctx, span := otel.Tracer("service").Start(ctx, "OrderService.GetOrder")
	defer span.End()

	work := s.newUOW()

	o, err := visibleOrder(ctx, work, p, id, false)
	if err != nil {
		return order.Order{}, err
	}

	orders := []order.Order{o}
	if err := hydrate(ctx, work, orders); err != nil {
		return order.Order{}, err
	}

	return orders[0], nil
}

// UpdateOrder applies a partial update. The whole update is rejected when any
// field is outside the caller's role.
func (s *OrderService) UpdateOrder(
	ctx context.Context,
	p principal.Principal,
	id int64,
	u order.Update,
) (order.Order, error) {
	ctx, span := otel.Tracer("service").Start(ctx, "OrderService.UpdateOrder")
	defer span.End()

	if err := policy.CheckUpdate(p, u); err != nil {
		return order.Order{}, err
	}

	work := s.newUOW()
	if err := work.Begin(ctx); err != nil {
		return order.Order{}, fmt.Errorf("failed to begin order update: %w", err)
	}
	defer rollback(ctx, work)

	current, err := visibleOrder(ctx, work, p, id, true)
	if err != nil {
		return order.Order{}, err
	}

	if len(u.Fields) == 0 {
		orders := []order.Order{current}
		if err := hydrate(ctx, work, orders); err != nil {
			return order.Order{}, err
		}

		return orders[0], nil
	}

	if u.Has(order.FieldStatus) && !u.Status.Valid() {
		return order.Order{}, svcerr.Validation("unknown order status").
			WithFields(map[string]string{string(order.FieldStatus): fmt.Sprintf("%d is not a known status", u.Status)})
	}

	if u.Has(order.FieldStatus) && u.Status < current.Status {
		return order.Order{}, svcerr.Validation("order status cannot move backwards").
			WithFields(map[string]string{
				string(order.FieldStatus): fmt.Sprintf("current status is %s", current.Status),
			})
	}

	if u.Has(order.FieldDeliveryAgent) && u.DeliveryAgentID != nil {
		if err := checkDeliveryAgent(ctx, work, *u.DeliveryAgentID); err != nil {
			return order.Order{}, err
		}
	}

	updated := current
	u.Apply(&updated)

	if err := work.OrderRepository().UpdateFields(ctx, updated); err != nil {
		return order.Order{}, fmt.Errorf("failed to update order: %w", err)
	}

	orders := []order.Order{updated}
	if err := hydrate(ctx, work, orders); err != nil {
		return order.Order{}, err
	}
	updated = orders[0]

	if err := s.appendEvent(ctx, work, orderevent.TypeUpdated, updated, s.now()); err != nil {
		return order.Order{}, err
	}

	if err := commit(ctx, work); err != nil {
		return order.Order{}, err
	}

	slog.Info("Order updated",
		"order_id", updated.ID,
		"user_id", p.UserID,
		"role", policy.RoleOf(p).String(),
		"status", updated.Status.String())

	return updated, nil
}

// ReplaceOrder is the full-replacement entry point. Orders never accept it.
func (s *OrderService) ReplaceOrder(_ context.Context, p principal.Principal, _ int64) error {
	return policy.CheckReplace(p)
}

func (s *OrderService) appendEvent(
	ctx context.Context,
	work iuow.UnitOfWork,
	eventType string,
	o order.Order,
	now time.Time,
) error {
	msg, err := orderevent.New(eventType, o, now).ToOutbox(s.routing)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", eventType, err)
	}

	if err := work.OutboxRepository().Append(ctx, msg); err != nil {
		return fmt.Errorf("failed to store %s event: %w", eventType, err)
	}

	return nil
}

func visibleOrder(
	ctx context.Context,
	work iuow.UnitOfWork,
	p principal.Principal,
	id int64,
	forUpdate bool,
) (order.Order, error) {
	o, err := work.OrderRepository().GetByID(ctx, id, forUpdate)
	if err != nil {
		if errors.Is(err, svcerr.ErrNotFound) {
			return order.Order{}, orderNotFound(id)
		}

		return order.Order{}, fmt.Errorf("failed to get order: %w", err)
	}

	if !policy.CanView(p, o) {
		return order.Order{}, orderNotFound(id)
	}

	return o, nil
}

func checkDeliveryAgent(ctx context.Context, work iuow.UnitOfWork, userID int64) error {
	field := string(order.FieldDeliveryAgent)

	agent, err := work.UserRepository().GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, svcerr.ErrNotFound) {
			return svcerr.Validation("delivery agent does not exist").
				WithFields(map[string]string{field: fmt.Sprintf("user %d does not exist", userID)})
		}

		return fmt.Errorf("failed to get delivery agent: %w", err)
	}

	if !agent.InGroup(user.GroupDeliveryCrew) {
		return svcerr.Validation("user is not in the delivery crew").
			WithFields(map[string]string{field: fmt.Sprintf("user %d is not in the delivery crew", userID)})
	}

	return nil
}

// hydrate loads the lines of every order in place.
func hydrate(ctx context.Context, work iuow.UnitOfWork, orders []order.Order) error {
	query := &orderline.QueryOrderLinesModel{}
	for _, o := range orders {
		query.OrderIds = append(query.OrderIds, o.ID)
	}

	lines, err := work.OrderLineRepository().Query(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to query order lines: %w", err)
	}

	byOrder := make(map[int64][]orderline.OrderLine, len(orders))
	for _, l := range lines {
		byOrder[l.OrderID] = append(byOrder[l.OrderID], l)
	}

	for i := range orders {
		orders[i].Lines = byOrder[orders[i].ID]
		if orders[i].Lines == nil {
			orders[i].Lines = []orderline.OrderLine{}
		}
	}

	return nil
}

func commit(ctx context.Context, work iuow.UnitOfWork) error {
	err := work.Commit(ctx)
	if err == nil {
		return nil
	}

	if svcerr.KindOf(err) != svcerr.KindInternal {
		return err
	}

	return svcerr.Conflict("transaction could not be committed, retry").WithCause(err)
}

func rollback(ctx context.Context, work iuow.UnitOfWork) {
	if err := work.Rollback(context.WithoutCancel(ctx)); err != nil {
		slog.Error("Failed to roll back transaction", "error", err)
	}
}

func orderNotFound(id int64) error {
	return svcerr.NotFound("order %d not found", id)
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
