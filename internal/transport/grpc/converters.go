package grpctransport

import (
	"encoding/json"
	"fmt"

	"github.com/corray333/littlelemon/internal/service/models/order"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

type listOrdersRequest struct {
	Sort     string `json:"sort"`
	Page     int    `json:"page"`
	PageSize int    `json:"pageSize"`
}

type getOrderRequest struct {
	ID int64 `json:"id"`
}

type updateOrderRequest struct {
	ID     int64                      `json:"id"`
	Fields map[string]json.RawMessage `json:"fields"`
}

type listOrdersResponse struct {
	Orders []order.Order `json:"orders"`
}

type orderResponse struct {
	Order order.Order `json:"order"`
}

// fromStruct decodes a Struct document into v using the JSON field names.
func fromStruct(s *structpb.Struct, v any) error {
	if s == nil {
		return nil
	}

	data, err := protojson.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode request: %w", err)
	}

	return nil
}

// toStruct encodes v into a Struct document using its JSON form.
func toStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode response: %w", err)
	}

	s := &structpb.Struct{}
	if err := protojson.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return s, nil
}
