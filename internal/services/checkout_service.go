// internal/services/checkout_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/javajoker/storefront-backend/internal/cart"
	"github.com/javajoker/storefront-backend/internal/models"
	"github.com/javajoker/storefront-backend/internal/utils"
)

var ErrEmptyCart = errors.New("cart is empty")

type CheckoutRequest struct {
	Name    string `json:"name" validate:"required,notblank,max=255"`
	Address string `json:"address" validate:"required,notblank,max=1000"`
}

type CheckoutResult struct {
	Confirmation string             `json:"confirmation"`
	Items        []models.OrderItem `json:"items"`
	Totals       cart.Totals        `json:"totals"`
}

// CheckoutService places the cart as an order. The cart is cleared and the
// overlay hidden only after the order endpoint accepted the order.
type CheckoutService struct {
	store   *cart.Store
	overlay *cart.Overlay
	orders  OrderSubmitter
	timeout time.Duration
}

func NewCheckoutService(store *cart.Store, overlay *cart.Overlay, orders OrderSubmitter, timeout time.Duration) *CheckoutService {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &CheckoutService{
		store:   store,
		overlay: overlay,
		orders:  orders,
		timeout: timeout,
	}
}

func (s *CheckoutService) Checkout(ctx context.Context, req *CheckoutRequest) (*CheckoutResult, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	items := s.store.OrderPayload()
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}
	totals := s.store.Totals()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	confirmation, err := s.orders.SubmitOrder(ctx, items)
	if err != nil {
		logrus.WithError(err).WithField("lines", len(items)).Error("Order submission failed")
		return nil, err
	}

	s.store.Clear()
	s.overlay.SetVisible(false)

	logrus.WithFields(logrus.Fields{
		"lines":    len(items),
		"quantity": totals.Quantity,
		"amount":   totals.Amount,
	}).Info("Order placed")

	return &CheckoutResult{
		Confirmation: confirmation,
		Items:        items,
		Totals:       totals,
	}, nil
}
