package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/corray333/littlelemon/internal/dal/interfaces/icartrepo"
	"github.com/corray333/littlelemon/internal/dal/interfaces/imenurepo"
	"github.com/corray333/littlelemon/internal/dal/interfaces/iorderlinerepo"
	"github.com/corray333/littlelemon/internal/dal/interfaces/iorderrepo"
	"github.com/corray333/littlelemon/internal/dal/interfaces/ioutboxrepo"
	"github.com/corray333/littlelemon/internal/dal/interfaces/iuow"
	"github.com/corray333/littlelemon/internal/dal/interfaces/iuserrepo"
	"github.com/corray333/littlelemon/internal/service/models/cartline"
	"github.com/corray333/littlelemon/internal/service/models/category"
	"github.com/corray333/littlelemon/internal/service/models/menuitem"
	"github.com/corray333/littlelemon/internal/service/models/order"
	"github.com/corray333/littlelemon/internal/service/models/orderline"
	"github.com/corray333/littlelemon/internal/service/models/outbox"
	"github.com/corray333/littlelemon/internal/service/models/user"
)

// state is everything the driver keeps. It is only touched under Store.mu.
type state struct {
	categories []category.Category
	menuItems  []menuitem.MenuItem
	users      []user.User
	cart       []cartline.CartLine
	orders     []order.Order
	orderLines []orderline.OrderLine
	outbox     []outbox.Message
	seq        map[string]int64
}

func newState() *state {
	return &state{seq: map[string]int64{}}
}

func (s *state) next(name string) int64 {
	s.seq[name]++

	return s.seq[name]
}

// clone deep-copies the state so a transaction can be rolled back.
func (s *state) clone() *state {
	cp := &state{
		categories: slices.Clone(s.categories),
		menuItems:  slices.Clone(s.menuItems),
		users:      make([]user.User, len(s.users)),
		cart:       slices.Clone(s.cart),
		orders:     make([]order.Order, len(s.orders)),
		orderLines: slices.Clone(s.orderLines),
		outbox:     make([]outbox.Message, len(s.outbox)),
		seq:        make(map[string]int64, len(s.seq)),
	}
	for i, u := range s.users {
		cp.users[i] = cloneUser(u)
	}
	for i, o := range s.orders {
		cp.orders[i] = cloneOrder(o)
	}
	for i, m := range s.outbox {
		m.Payload = slices.Clone(m.Payload)
		cp.outbox[i] = m
	}
	for k, v := range s.seq {
		cp.seq[k] = v
	}

	return cp
}

func cloneUser(u user.User) user.User {
	u.Groups = slices.Clone(u.Groups)

	return u
}

func cloneOrder(o order.Order) order.Order {
	if o.DeliveryAgentID != nil {
		id := *o.DeliveryAgentID
		o.DeliveryAgentID = &id
	}
	o.Lines = nil

	return o
}

// Store is an in-memory storage driver. A begun unit of work holds the store
// lock until it commits or rolls back, so transactions are fully serialized.
type Store struct {
	mu    sync.Mutex
	state *state
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{state: newState()}
}

// Factory returns a unit of work factory bound to the store.
func (s *Store) Factory() iuow.Factory {
	return s.NewUnitOfWork
}

// NewUnitOfWork creates a unit of work over the store.
func (s *Store) NewUnitOfWork() iuow.UnitOfWork {
	return &unitOfWork{store: s}
}

// OutboxRepository returns an outbox repository running outside any transaction.
func (s *Store) OutboxRepository() ioutboxrepo.IOutboxRepository {
	return &outboxRepository{u: &unitOfWork{store: s}}
}

// view runs fn under the store lock and hands back its result.
func (s *Store) view(fn func(st *state)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.state)
}

// AddCategory stores c and returns it with its id.
func (s *Store) AddCategory(c category.Category) category.Category {
	s.view(func(st *state) {
		c.ID = st.next("categories")
		st.categories = append(st.categories, c)
	})

	return c
}

// AddMenuItem stores m and returns it with its id.
func (s *Store) AddMenuItem(m menuitem.MenuItem) menuitem.MenuItem {
	s.view(func(st *state) {
		m.ID = st.next("menu_items")
		st.menuItems = append(st.menuItems, m)
	})

	return m
}

// SetMenuItem replaces a stored menu item, e.g. to change its price.
func (s *Store) SetMenuItem(m menuitem.MenuItem) {
	s.view(func(st *state) {
		for i := range st.menuItems {
			if st.menuItems[i].ID == m.ID {
				st.menuItems[i] = m
			}
		}
	})
}

// AddUser stores u and returns it with its id.
func (s *Store) AddUser(u user.User) user.User {
	u = cloneUser(u)
	s.view(func(st *state) {
		u.ID = st.next("users")
		st.users = append(st.users, cloneUser(u))
	})

	return u
}

// AddOrder stores o and its lines as if it had been placed.
func (s *Store) AddOrder(o order.Order) order.Order {
	s.view(func(st *state) {
		o.ID = st.next("orders")
		for i := range o.Lines {
			o.Lines[i].ID = st.next("order_lines")
			o.Lines[i].OrderID = o.ID
			st.orderLines = append(st.orderLines, o.Lines[i])
		}
		st.orders = append(st.orders, cloneOrder(o))
	})

	return o
}

// CartLines returns every stored cart line.
func (s *Store) CartLines() []cartline.CartLine {
	var out []cartline.CartLine
	s.view(func(st *state) { out = slices.Clone(st.cart) })

	return out
}

// Orders returns every stored order without lines.
func (s *Store) Orders() []order.Order {
	var out []order.Order
	s.view(func(st *state) {
		for _, o := range st.orders {
			out = append(out, cloneOrder(o))
		}
	})

	return out
}

// OrderLines returns every stored order line.
func (s *Store) OrderLines() []orderline.OrderLine {
	var out []orderline.OrderLine
	s.view(func(st *state) { out = slices.Clone(st.orderLines) })

	return out
}

// OutboxMessages returns every pending outbox message.
func (s *Store) OutboxMessages() []outbox.Message {
	var out []outbox.Message
	s.view(func(st *state) { out = slices.Clone(st.outbox) })

	return out
}

type unitOfWork struct {
	store    *Store
	snapshot *state
	active   bool
}

// run executes fn against the state, taking the store lock unless a
// transaction already holds it.
func (u *unitOfWork) run(fn func(st *state) error) error {
	if u.active {
		return fn(u.store.state)
	}

	u.store.mu.Lock()
	defer u.store.mu.Unlock()

	return fn(u.store.state)
}

func (u *unitOfWork) Begin(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	u.store.mu.Lock()
	u.snapshot = u.store.state.clone()
	u.active = true

	return nil
}

func (u *unitOfWork) Commit(context.Context) error {
	if !u.active {
		return nil
	}

	u.active = false
	u.snapshot = nil
	u.store.mu.Unlock()

	return nil
}

func (u *unitOfWork) Rollback(context.Context) error {
	if !u.active {
		return nil
	}

	u.store.state = u.snapshot
	u.active = false
	u.snapshot = nil
	u.store.mu.Unlock()

	return nil
}

func (u *unitOfWork) MenuRepository() imenurepo.IMenuRepository {
	return &menuRepository{u: u}
}

func (u *unitOfWork) CartRepository() icartrepo.ICartRepository {
	return &cartRepository{u: u}
}

func (u *unitOfWork) OrderRepository() iorderrepo.IOrderRepository {
	return &orderRepository{u: u}
}

func (u *unitOfWork) OrderLineRepository() iorderlinerepo.IOrderLineRepository {
	return &orderLineRepository{u: u}
}

func (u *unitOfWork) UserRepository() iuserrepo.IUserRepository {
	return &userRepository{u: u}
}

func (u *unitOfWork) OutboxRepository() ioutboxrepo.IOutboxRepository {
	return &outboxRepository{u: u}
}

// page applies offset and limit to items.
func page[T any](items []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return items[:0]
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}

	return items
}
