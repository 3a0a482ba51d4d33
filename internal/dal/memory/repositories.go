package memory

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/corray333/littlelemon/internal/service/models/cartline"
	"github.com/corray333/littlelemon/internal/service/models/category"
	"github.com/corray333/littlelemon/internal/service/models/menuitem"
	"github.com/corray333/littlelemon/internal/service/models/order"
	"github.com/corray333/littlelemon/internal/service/models/orderline"
	"github.com/corray333/littlelemon/internal/service/models/outbox"
	"github.com/corray333/littlelemon/internal/service/models/sortspec"
	"github.com/corray333/littlelemon/internal/service/models/user"
	"github.com/corray333/littlelemon/internal/service/svcerr"
)

type menuRepository struct {
	u *unitOfWork
}

var menuComparators = sortspec.Comparators[menuitem.MenuItem]{
	"id":       func(a, b menuitem.MenuItem) int { return cmp.Compare(a.ID, b.ID) },
	"title":    func(a, b menuitem.MenuItem) int { return cmp.Compare(a.Title, b.Title) },
	"price":    func(a, b menuitem.MenuItem) int { return a.Price.Cmp(b.Price) },
	"category": func(a, b menuitem.MenuItem) int { return cmp.Compare(a.CategoryID, b.CategoryID) },
	"featured": func(a, b menuitem.MenuItem) int { return compareBool(a.Featured, b.Featured) },
}

func (r *menuRepository) Query(
	_ context.Context,
	filter *menuitem.QueryMenuItemsModel,
) ([]menuitem.MenuItem, error) {
	var result []menuitem.MenuItem
	err := r.u.run(func(st *state) error {
		categoryID := int64(-1)
		if filter.CategorySlug != "" {
			for _, c := range st.categories {
				if c.Slug == filter.CategorySlug {
					categoryID = c.ID
				}
			}
		}

		for _, m := range st.menuItems {
			if len(filter.Ids) > 0 && !slices.Contains(filter.Ids, m.ID) {
				continue
			}
			if filter.CategorySlug != "" && m.CategoryID != categoryID {
				continue
			}
			if filter.Featured != nil && m.Featured != *filter.Featured {
				continue
			}
			result = append(result, m)
		}

		return nil
	})

	sortspec.SortStable(result, filter.Sort, menuComparators)

	return page(result, filter.Limit, filter.Offset), err
}

func (r *menuRepository) GetByID(_ context.Context, id int64) (menuitem.MenuItem, error) {
	var result menuitem.MenuItem
	err := r.u.run(func(st *state) error {
		for _, m := range st.menuItems {
			if m.ID == id {
				result = m

				return nil
			}
		}

		return svcerr.NotFound("menu item %d not found", id)
	})

	return result, err
}

func (r *menuRepository) ListCategories(context.Context) ([]category.Category, error) {
	var result []category.Category
	err := r.u.run(func(st *state) error {
		result = slices.Clone(st.categories)

		return nil
	})

	return result, err
}

type cartRepository struct {
	u *unitOfWork
}

func (r *cartRepository) ListByUser(_ context.Context, userID int64, _ bool) ([]cartline.CartLine, error) {
	var result []cartline.CartLine
	err := r.u.run(func(st *state) error {
		for _, l := range st.cart {
			if l.UserID == userID {
				result = append(result, l)
			}
		}

		return nil
	})

	return result, err
}

func (r *cartRepository) Upsert(_ context.Context, line cartline.CartLine) (cartline.CartLine, error) {
	err := r.u.run(func(st *state) error {
		for i, l := range st.cart {
			if l.UserID == line.UserID && l.MenuItemID == line.MenuItemID {
				line.ID = l.ID
				st.cart[i] = line

				return nil
			}
		}

		line.ID = st.next("cart")
		st.cart = append(st.cart, line)

		return nil
	})

	return line, err
}

func (r *cartRepository) Delete(_ context.Context, userID, menuItemID int64) error {
	return r.u.run(func(st *state) error {
		st.cart = slices.DeleteFunc(st.cart, func(l cartline.CartLine) bool {
			return l.UserID == userID && l.MenuItemID == menuItemID
		})

		return nil
	})
}

func (r *cartRepository) DeleteLines(_ context.Context, userID int64, ids []int64) error {
	return r.u.run(func(st *state) error {
		st.cart = slices.DeleteFunc(st.cart, func(l cartline.CartLine) bool {
			return l.UserID == userID && slices.Contains(ids, l.ID)
		})

		return nil
	})
}

func (r *cartRepository) DeleteByUser(_ context.Context, userID int64) (int64, error) {
	var removed int64
	err := r.u.run(func(st *state) error {
		before := len(st.cart)
		st.cart = slices.DeleteFunc(st.cart, func(l cartline.CartLine) bool {
			return l.UserID == userID
		})
		removed = int64(before - len(st.cart))

		return nil
	})

	return removed, err
}

type orderRepository struct {
	u *unitOfWork
}

var orderComparators = sortspec.Comparators[order.Order]{
	"id":            func(a, b order.Order) int { return cmp.Compare(a.ID, b.ID) },
	"user":          func(a, b order.Order) int { return cmp.Compare(a.UserID, b.UserID) },
	"deliveryAgent": func(a, b order.Order) int { return compareNullable(a.DeliveryAgentID, b.DeliveryAgentID) },
	"status":        func(a, b order.Order) int { return cmp.Compare(a.Status, b.Status) },
	"total":         func(a, b order.Order) int { return a.Total.Cmp(b.Total) },
	"date":          func(a, b order.Order) int { return a.Date.Compare(b.Date) },
}

func (r *orderRepository) Insert(_ context.Context, o order.Order) (order.Order, error) {
	err := r.u.run(func(st *state) error {
		o.ID = st.next("orders")
		st.orders = append(st.orders, cloneOrder(o))

		return nil
	})

	return o, err
}

func (r *orderRepository) Query(_ context.Context, filter *order.QueryOrdersModel) ([]order.Order, error) {
	var result []order.Order
	err := r.u.run(func(st *state) error {
		for _, o := range st.orders {
			if len(filter.Ids) > 0 && !slices.Contains(filter.Ids, o.ID) {
				continue
			}
			if len(filter.UserIds) > 0 && !slices.Contains(filter.UserIds, o.UserID) {
				continue
			}
			if len(filter.DeliveryAgentIds) > 0 &&
				(o.DeliveryAgentID == nil || !slices.Contains(filter.DeliveryAgentIds, *o.DeliveryAgentID)) {
				continue
			}
			result = append(result, cloneOrder(o))
		}

		return nil
	})

	sortspec.SortStable(result, filter.Sort, orderComparators)

	return page(result, filter.Limit, filter.Offset), err
}

func (r *orderRepository) GetByID(_ context.Context, id int64, _ bool) (order.Order, error) {
	var result order.Order
	err := r.u.run(func(st *state) error {
		for _, o := range st.orders {
			if o.ID == id {
				result = cloneOrder(o)

				return nil
			}
		}

		return svcerr.NotFound("order %d not found", id)
	})

	return result, err
}

func (r *orderRepository) UpdateFields(_ context.Context, o order.Order) error {
	return r.u.run(func(st *state) error {
		for i := range st.orders {
			if st.orders[i].ID == o.ID {
				updated := cloneOrder(o)
				st.orders[i].DeliveryAgentID = updated.DeliveryAgentID
				st.orders[i].Status = updated.Status

				return nil
			}
		}

		return svcerr.NotFound("order %d not found", o.ID)
	})
}

type orderLineRepository struct {
	u *unitOfWork
}

func (r *orderLineRepository) BulkInsert(
	_ context.Context,
	lines []orderline.OrderLine,
) ([]orderline.OrderLine, error) {
	result := slices.Clone(lines)
	err := r.u.run(func(st *state) error {
		for i := range result {
			result[i].ID = st.next("order_lines")
			st.orderLines = append(st.orderLines, result[i])
		}

		return nil
	})

	return result, err
}

func (r *orderLineRepository) Query(
	_ context.Context,
	filter *orderline.QueryOrderLinesModel,
) ([]orderline.OrderLine, error) {
	var result []orderline.OrderLine
	err := r.u.run(func(st *state) error {
		for _, l := range st.orderLines {
			if len(filter.Ids) > 0 && !slices.Contains(filter.Ids, l.ID) {
				continue
			}
			if len(filter.OrderIds) > 0 && !slices.Contains(filter.OrderIds, l.OrderID) {
				continue
			}
			result = append(result, l)
		}

		return nil
	})

	return result, err
}

type userRepository struct {
	u *unitOfWork
}

func (r *userRepository) GetByID(_ context.Context, id int64) (user.User, error) {
	var result user.User
	err := r.u.run(func(st *state) error {
		for _, u := range st.users {
			if u.ID == id {
				result = cloneUser(u)

				return nil
			}
		}

		return svcerr.NotFound("user %d not found", id)
	})

	return result, err
}

func (r *userRepository) GetByUsername(_ context.Context, username string) (user.User, error) {
	var result user.User
	err := r.u.run(func(st *state) error {
		for _, u := range st.users {
			if u.Username == username {
				result = cloneUser(u)

				return nil
			}
		}

		return svcerr.NotFound("user %q not found", username)
	})

	return result, err
}

func (r *userRepository) ListByGroup(_ context.Context, group string) ([]user.User, error) {
	var result []user.User
	err := r.u.run(func(st *state) error {
		for _, u := range st.users {
			if u.InGroup(group) {
				result = append(result, cloneUser(u))
			}
		}

		return nil
	})

	return result, err
}

func (r *userRepository) AddToGroup(_ context.Context, userID int64, group string) error {
	return r.u.run(func(st *state) error {
		for i := range st.users {
			if st.users[i].ID == userID {
				if !st.users[i].InGroup(group) {
					st.users[i].Groups = append(slices.Clone(st.users[i].Groups), group)
				}

				return nil
			}
		}

		return svcerr.NotFound("user %d not found", userID)
	})
}

func (r *userRepository) RemoveFromGroup(_ context.Context, userID int64, group string) (bool, error) {
	var removed bool
	err := r.u.run(func(st *state) error {
		for i := range st.users {
			if st.users[i].ID == userID && st.users[i].InGroup(group) {
				st.users[i].Groups = slices.DeleteFunc(slices.Clone(st.users[i].Groups), func(g string) bool {
					return g == group
				})
				removed = true
			}
		}

		return nil
	})

	return removed, err
}

type outboxRepository struct {
	u *unitOfWork
}

func (r *outboxRepository) Append(_ context.Context, msg outbox.Message) error {
	return r.u.run(func(st *state) error {
		msg.ID = st.next("outbox")
		msg.Payload = slices.Clone(msg.Payload)
		st.outbox = append(st.outbox, msg)

		return nil
	})
}

func (r *outboxRepository) Pending(_ context.Context, limit int) ([]outbox.Message, error) {
	var due []outbox.Message
	err := r.u.run(func(st *state) error {
		now := time.Now()
		for _, m := range st.outbox {
			if m.Due(now) {
				due = append(due, m)
			}
		}

		return nil
	})

	slices.SortStableFunc(due, func(a, b outbox.Message) int {
		return a.NextAttemptAt.Compare(b.NextAttemptAt)
	})

	return page(due, limit, 0), err
}

func (r *outboxRepository) Remove(_ context.Context, id int64) error {
	return r.u.run(func(st *state) error {
		st.outbox = slices.DeleteFunc(st.outbox, func(m outbox.Message) bool {
			return m.ID == id
		})

		return nil
	})
}

func (r *outboxRepository) ScheduleRetry(_ context.Context, id int64, retry outbox.Retry) error {
	return r.u.run(func(st *state) error {
		i := slices.IndexFunc(st.outbox, func(m outbox.Message) bool { return m.ID == id })
		if i < 0 {
			return svcerr.NotFound("outbox message %d not found", id)
		}

		st.outbox[i].Attempts = retry.Attempts
		st.outbox[i].LastError = retry.LastError
		st.outbox[i].NextAttemptAt = retry.NextAttemptAt
		st.outbox[i].UpdatedAt = time.Now()

		return nil
	})
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}

// compareNullable orders nil after every value, as PostgreSQL does for NULL.
func compareNullable(a, b *int64) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	default:
		return cmp.Compare(*a, *b)
	}
}
