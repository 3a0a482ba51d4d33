package cartline

import (
	"github.com/shopspring/decimal"
)

// CartLine is one user's pending selection of a menu item.
// At most one line exists per (UserID, MenuItemID).
type CartLine struct {
	ID         int64           `json:"id"`
	UserID     int64           `json:"userId"`
	MenuItemID int64           `json:"menuItem"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
	Price      decimal.Decimal `json:"price"`
}

// Bounds of a cart line. Line totals and order totals are stored as
// NUMERIC(10, 2), quantities as SMALLINT.
const MaxQuantity = 1000

// MaxAmount is the largest line total or order total that can be stored.
var MaxAmount = decimal.RequireFromString("99999999.99")

// Outcome tells what an upsert did to the cart.
type Outcome int

const (
	Upserted Outcome = iota + 1
	Removed
)

func (o Outcome) String() string {
	switch o {
	case Upserted:
		return "upserted"
	case Removed:
		return "removed"
	default:
		return "unknown"
	}
}

// UpsertResult is returned by a cart upsert. Line is set only when Outcome is Upserted.
type UpsertResult struct {
	Outcome Outcome
	Line    *CartLine
}

// NewLine prices a cart line from the menu item's current price.
func NewLine(userID, menuItemID int64, quantity int, unitPrice decimal.Decimal) CartLine {
	return CartLine{
		UserID:     userID,
		MenuItemID: menuItemID,
		Quantity:   quantity,
		UnitPrice:  unitPrice,
		Price:      unitPrice.Mul(decimal.NewFromInt(int64(quantity))),
	}
}

// Total sums the line totals.
func Total(lines []CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Price)
	}

	return total
}
