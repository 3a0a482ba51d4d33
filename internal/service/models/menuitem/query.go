package menuitem

import "github.com/corray333/littlelemon/internal/service/models/sortspec"

// DefaultPageSize is used when the caller does not pick a page size.
const DefaultPageSize = 10

// SortFields lists the fields menu items may be ordered by.
var SortFields = []string{"id", "title", "price", "featured", "category"}

// QueryMenuItemsModel represents filter parameters for querying menu items.
type QueryMenuItemsModel struct {
	Ids          []int64        `json:"ids,omitempty"`
	CategorySlug string         `json:"categorySlug,omitempty"`
	Featured     *bool          `json:"featured,omitempty"`
	Sort         []sortspec.Key `json:"sort,omitempty"`
	Limit        int            `json:"limit,omitempty"`
	Offset       int            `json:"offset,omitempty"`
}
