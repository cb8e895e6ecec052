// internal/services/cart_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/javajoker/storefront-backend/internal/cart"
	"github.com/javajoker/storefront-backend/internal/models"
)

var ErrLineNotFound = errors.New("cart line not found")

// MissingAttributesError lists required attributes the shopper left unset.
type MissingAttributesError struct {
	Missing []string
}

func (e *MissingAttributesError) Error() string {
	return "missing required attributes: " + strings.Join(e.Missing, ", ")
}

type AddItemRequest struct {
	ProductID          string                    `json:"product_id" validate:"required_without=Product"`
	Product            *models.Product           `json:"product,omitempty"`
	SelectedAttributes models.SelectedAttributes `json:"selected_attributes,omitempty"`
}

type UpdateAttributeRequest struct {
	Name  string         `json:"name" validate:"required,notblank"`
	Value *models.Option `json:"value"`
}

// CartService exposes the cart store and overlay to the HTTP layer.
type CartService struct {
	store             *cart.Store
	overlay           *cart.Overlay
	products          *ProductService
	requireAttributes bool
}

func NewCartService(store *cart.Store, overlay *cart.Overlay, products *ProductService, requireAttributes bool) *CartService {
	return &CartService{
		store:             store,
		overlay:           overlay,
		products:          products,
		requireAttributes: requireAttributes,
	}
}

func (s *CartService) State() cart.State {
	return cart.Snapshot(s.store, s.overlay)
}

// AddItem resolves the product, inline or from the catalog, enforces the
// required-attribute gate and adds one unit.
func (s *CartService) AddItem(ctx context.Context, req *AddItemRequest) (models.LineItem, error) {
	product := req.Product
	if product == nil || strings.TrimSpace(product.ID) == "" {
		if s.products == nil {
			return models.LineItem{}, ErrCatalogUnavailable
		}
		found, err := s.products.GetProduct(ctx, req.ProductID)
		if err != nil {
			return models.LineItem{}, err
		}
		product = found
	}

	if s.requireAttributes {
		if missing := MissingAttributes(product, req.SelectedAttributes); len(missing) > 0 {
			return models.LineItem{}, &MissingAttributesError{Missing: missing}
		}
	}

	item := s.store.Add(product, req.SelectedAttributes)
	if item.ItemKey == "" {
		return models.LineItem{}, ErrProductNotFound
	}
	logrus.WithFields(logrus.Fields{
		"product_id": item.ProductID,
		"item_key":   item.ItemKey,
		"quantity":   item.Quantity,
	}).Debug("Added item to cart")
	return item, nil
}

// MissingAttributes returns the required attributes of product that have no
// usable value in selected.
func MissingAttributes(product *models.Product, selected models.SelectedAttributes) []string {
	var missing []string
	for _, name := range product.RequiredAttributes() {
		stored, ok := selected.Lookup(name)
		if !ok || cart.ValueKey(selected[stored]) == "" {
			missing = append(missing, name)
		}
	}
	return missing
}

func (s *CartService) Increment(ref string) (models.LineItem, error) {
	item, ok := s.store.IncrementLine(ref)
	if !ok {
		return models.LineItem{}, ErrLineNotFound
	}
	return item, nil
}

// Decrement returns removed=true when the line dropped out of the cart.
func (s *CartService) Decrement(ref string) (item models.LineItem, removed bool, err error) {
	item, removed, ok := s.store.DecrementLine(ref)
	if !ok {
		return models.LineItem{}, false, ErrLineNotFound
	}
	return item, removed, nil
}

func (s *CartService) UpdateAttribute(ref string, req *UpdateAttributeRequest) error {
	if !s.store.UpdateAttribute(ref, req.Name, req.Value) {
		return fmt.Errorf("%w: %s", ErrLineNotFound, ref)
	}
	return nil
}

func (s *CartService) Clear() {
	s.store.Clear()
}

func (s *CartService) OrderPayload() []models.OrderItem {
	return s.store.OrderPayload()
}

func (s *CartService) OverlayVisible() bool {
	return s.overlay.Visible()
}

func (s *CartService) SetOverlayVisible(visible bool) {
	s.overlay.SetVisible(visible)
}

func (s *CartService) ToggleOverlay() bool {
	return s.overlay.Toggle()
}
