// internal/services/order_service.go
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/javajoker/storefront-backend/internal/models"
)

// ErrOrderRejected is returned when the order endpoint refused the order.
var ErrOrderRejected = errors.New("order rejected")

// OrderSubmitter hands a cart payload to the order endpoint and returns its
// confirmation.
type OrderSubmitter interface {
	SubmitOrder(ctx context.Context, items []models.OrderItem) (string, error)
}

const placeOrderMutation = `mutation Place($items: [OrderItemInput!]!) {
  createOrder(items: $items)
}`

// OrderService submits orders through the createOrder mutation.
type OrderService struct {
	client *GraphQLClient
}

func NewOrderService(client *GraphQLClient) *OrderService {
	return &OrderService{client: client}
}

func (s *OrderService) SubmitOrder(ctx context.Context, items []models.OrderItem) (string, error) {
	if len(items) == 0 {
		return "", ErrEmptyCart
	}

	var data struct {
		CreateOrder json.RawMessage `json:"createOrder"`
	}
	err := s.client.Do(ctx, placeOrderMutation, map[string]interface{}{"items": items}, &data)
	if err != nil {
		if errors.Is(err, ErrGraphQL) {
			return "", fmt.Errorf("%w: %v", ErrOrderRejected, err)
		}
		return "", fmt.Errorf("failed to submit order: %w", err)
	}

	raw := strings.TrimSpace(string(data.CreateOrder))
	if raw == "" || raw == "null" {
		return "", fmt.Errorf("%w: empty createOrder result", ErrOrderRejected)
	}

	var confirmation string
	if err := json.Unmarshal(data.CreateOrder, &confirmation); err == nil {
		return confirmation, nil
	}
	return raw, nil
}
