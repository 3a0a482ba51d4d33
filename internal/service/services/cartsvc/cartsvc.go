package cartsvc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/corray333/littlelemon/internal/dal/interfaces/iuow"
	"github.com/corray333/littlelemon/internal/service/models/cartline"
	"github.com/corray333/littlelemon/internal/service/svcerr"
	"github.com/corray333/littlelemon/pkg/keymutex"
	"go.opentelemetry.io/otel"
)

// CartService is a service for managing the caller's cart.
type CartService struct {
	newUOW iuow.Factory
	locks  *keymutex.Map[int64]
}

// option is a function that configures the CartService.
type option func(*CartService)

// MustNewCartService creates a new CartService.
func MustNewCartService(opts ...option) *CartService {
	s := &CartService{
		locks: keymutex.New[int64](),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.newUOW == nil {
		panic("cartsvc: unit of work factory is not set")
	}

	return s
}

// WithUnitOfWork sets the unit of work factory for the CartService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithUnitOfWork(factory iuow.Factory) option {
	return func(s *CartService) {
		s.newUOW = factory
	}
}

// WithUserLocks sets the per-user locks shared with checkout.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithUserLocks(locks *keymutex.Map[int64]) option {
	return func(s *CartService) {
		s.locks = locks
	}
}

// Upsert sets the quantity of a menu item in the user's cart. The quantity is
// absolute; zero removes the line.
func (s *CartService) Upsert(
	ctx context.Context,
	userID, menuItemID int64,
	quantity int,
) (cartline.UpsertResult, error) {
	ctx, span := otel.Tracer("service").Start(ctx, "CartService.Upsert")
	defer span.End()

	if quantity < 0 {
		return cartline.UpsertResult{}, svcerr.Validation("quantity must not be negative").
			WithFields(map[string]string{"quantity": "must be zero or greater"})
	}
	if quantity > cartline.MaxQuantity {
		return cartline.UpsertResult{}, svcerr.Validation("quantity is too large").
			WithFields(map[string]string{"quantity": fmt.Sprintf("must be at most %d", cartline.MaxQuantity)})
	}

	work := s.newUOW()

	item, err := work.MenuRepository().GetByID(ctx, menuItemID)
	if err != nil {
		if errors.Is(err, svcerr.ErrNotFound) {
			return cartline.UpsertResult{}, svcerr.Validation("menu item does not exist").
				WithFields(map[string]string{"menuItem": fmt.Sprintf("menu item %d does not exist", menuItemID)})
		}

		return cartline.UpsertResult{}, fmt.Errorf("failed to get menu item: %w", err)
	}

	unlock := s.locks.Lock(userID)
	defer unlock()

	if quantity == 0 {
		if err := work.CartRepository().Delete(ctx, userID, menuItemID); err != nil {
			return cartline.UpsertResult{}, fmt.Errorf("failed to delete cart line: %w", err)
		}

		slog.Debug("Cart line removed", "user_id", userID, "menu_item_id", menuItemID)

		return cartline.UpsertResult{Outcome: cartline.Removed}, nil
	}

	line := cartline.NewLine(userID, item.ID, quantity, item.Price)
	if line.Price.GreaterThan(cartline.MaxAmount) {
		return cartline.UpsertResult{}, svcerr.Validation("line total is too large").
			WithFields(map[string]string{"quantity": "line total must not exceed " + cartline.MaxAmount.String()})
	}

	line, err = work.CartRepository().Upsert(ctx, line)
	if err != nil {
		return cartline.UpsertResult{}, fmt.Errorf("failed to upsert cart line: %w", err)
	}

	slog.Debug("Cart line upserted",
		"user_id", userID,
		"menu_item_id", menuItemID,
		"quantity", quantity)

	return cartline.UpsertResult{Outcome: cartline.Upserted, Line: &line}, nil
}

// List returns the user's cart lines.
func (s *CartService) List(ctx context.Context, userID int64) ([]cartline.CartLine, error) {
	ctx, span := otel.Tracer("service").Start(ctx, "CartService.List")
	defer span.End()

	lines, err := s.newUOW().CartRepository().ListByUser(ctx, userID, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart: %w", err)
	}

	if lines == nil {
		return []cartline.CartLine{}, nil
	}

	return lines, nil
}

// Clear empties the user's cart. Clearing an empty cart succeeds.
func (s *CartService) Clear(ctx context.Context, userID int64) error {
	ctx, span := otel.Tracer("service").Start(ctx, "CartService.Clear")
	defer span.End()

	unlock := s.locks.Lock(userID)
	defer unlock()

	removed, err := s.newUOW().CartRepository().DeleteByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}

	slog.Debug("Cart cleared", "user_id", userID, "removed", removed)

	return nil
}
