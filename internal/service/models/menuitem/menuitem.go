package menuitem

import (
	"github.com/shopspring/decimal"
)

// MenuItem is a priced dish on the menu.
type MenuItem struct {
	ID         int64           `json:"id"`
	Title      string          `json:"title"`
	Price      decimal.Decimal `json:"price"`
	CategoryID int64           `json:"category"`
	Featured   bool            `json:"featured"`
}
