package order

import "github.com/corray333/littlelemon/internal/service/models/sortspec"

// SortFields lists the fields orders may be ordered by.
var SortFields = []string{"id", "user", "deliveryAgent", "status", "total", "date"}

// MaxPageSize bounds a single page of orders.
const MaxPageSize = 100

// QueryOrdersModel represents filter parameters for querying orders.
type QueryOrdersModel struct {
	Ids              []int64        `json:"ids,omitempty"`
	UserIds          []int64        `json:"userIds,omitempty"`
	DeliveryAgentIds []int64        `json:"deliveryAgentIds,omitempty"`
	Sort             []sortspec.Key `json:"sort,omitempty"`
	Limit            int            `json:"limit,omitempty"`
	Offset           int            `json:"offset,omitempty"`
}

// ListOrdersModel is what a caller asks for when listing orders.
type ListOrdersModel struct {
	Sort     []sortspec.Key
	Page     int
	PageSize int
}
