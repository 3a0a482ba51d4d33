package icartrepo

import (
	"context"

	"github.com/corray333/littlelemon/internal/service/models/cartline"
)

// ICartRepository is an interface for cart line storage.
type ICartRepository interface {
	// ListByUser returns the user's lines. With forUpdate the rows stay locked
	// until the surrounding transaction ends.
	ListByUser(ctx context.Context, userID int64, forUpdate bool) ([]cartline.CartLine, error)

	// Upsert writes the line for (UserID, MenuItemID), replacing any existing one.
	Upsert(ctx context.Context, line cartline.CartLine) (cartline.CartLine, error)

	// Delete removes the line for (userID, menuItemID). A missing line is not an error.
	Delete(ctx context.Context, userID, menuItemID int64) error

	// DeleteLines removes the user's lines with the given ids.
	DeleteLines(ctx context.Context, userID int64, ids []int64) error

	// DeleteByUser removes every line owned by the user and reports how many went.
	DeleteByUser(ctx context.Context, userID int64) (int64, error)
}
