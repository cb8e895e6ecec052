// internal/cart/store.go
package cart

import (
	"math"
	"slices"
	"strings"
	"sync"

	"github.com/javajoker/storefront-backend/internal/models"
	"github.com/javajoker/storefront-backend/internal/storage"
)

// Store owns the cart line items. Every mutation is written to the slot
// after it is applied; write failures are logged and otherwise ignored.
//
// Store is safe for concurrent use, mutations are serialized.
type Store struct {
	mu    sync.Mutex
	items []models.LineItem
	p     persister
}

// Totals is the cart-wide quantity and amount.
type Totals struct {
	Quantity int     `json:"quantity"`
	Amount   float64 `json:"amount"`
}

// NewStore restores the cart from slot. An absent or unreadable document
// yields an empty cart. Records from older layouts are migrated and the
// migrated cart is written back once.
func NewStore(slot storage.Slot, opts ...Option) *Store {
	s := &Store{
		items: []models.LineItem{},
		p:     newPersister(slot, DefaultCartKey, "cart_store", opts),
	}

	data := s.p.load()
	if data == nil {
		return s
	}

	items, migrated, err := decodeItems(data, s.p.log)
	if err != nil {
		s.p.log.WithError(err).Warn("Stored cart is corrupt, starting empty")
		return s
	}
	s.items = items
	if migrated {
		s.p.log.WithField("items", len(items)).Info("Migrated stored cart")
		s.persistLocked()
	}
	return s
}

// Add puts one unit of product into the cart. The selection is completed
// with nil for every dimension the product exposes; when a line with the
// same item key exists its quantity grows by one, otherwise a new line is
// appended with a snapshot of the product's name, first price and first
// image. A nil product, or one without an id, is ignored.
func (s *Store) Add(product *models.Product, selected models.SelectedAttributes) models.LineItem {
	if product == nil || strings.TrimSpace(product.ID) == "" {
		return models.LineItem{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sel := CompleteSelection(product, selected)
	key := MakeItemKey(product.ID, sel)

	if idx := s.indexByKey(key); idx >= 0 {
		s.items[idx].Quantity++
		s.persistLocked()
		return s.items[idx].Clone()
	}

	item := models.LineItem{
		ItemKey:            key,
		ProductID:          strings.TrimSpace(product.ID),
		Quantity:           1,
		SelectedAttributes: sel,
		Name:               product.Name,
		Price:              product.FirstPrice(),
		Image:              product.FirstImage(),
		Attributes:         models.CloneAttributeSets(product.Attributes),
	}
	s.items = append(s.items, item)
	s.persistLocked()
	return item.Clone()
}

// Increment adds one unit to the line matching ref, an item key or, for
// callers that only know it, a product id. Unknown refs are a no-op.
func (s *Store) Increment(ref string) bool {
	_, ok := s.IncrementLine(ref)
	return ok
}

// IncrementLine is Increment returning the updated line.
func (s *Store) IncrementLine(ref string) (models.LineItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(ref)
	if idx < 0 {
		return models.LineItem{}, false
	}
	s.items[idx].Quantity++
	s.persistLocked()
	return s.items[idx].Clone(), true
}

// Decrement removes one unit from the line matching ref and drops the line
// once its quantity reaches zero.
func (s *Store) Decrement(ref string) bool {
	_, _, ok := s.DecrementLine(ref)
	return ok
}

// DecrementLine is Decrement returning the line as it was left. A removed
// line is returned with quantity zero.
func (s *Store) DecrementLine(ref string) (item models.LineItem, removed, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(ref)
	if idx < 0 {
		return models.LineItem{}, false, false
	}
	s.items[idx].Quantity--
	item = s.items[idx].Clone()
	if item.Quantity <= 0 {
		item.Quantity = 0
		removed = true
		s.items = slices.Delete(s.items, idx, idx+1)
	}
	s.persistLocked()
	return item, removed, true
}

// UpdateAttribute replaces one selected attribute and rekeys the line. ref
// targets a single line by item key, or every line of a product by product
// id. A line whose new key collides with another line is merged into the
// earlier of the two, quantities summed.
func (s *Store) UpdateAttribute(ref, name string, value *models.Option) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	targets := s.targets(ref)
	if len(targets) == 0 {
		return false
	}

	for _, idx := range targets {
		item := &s.items[idx]
		sel := item.SelectedAttributes.Clone()

		attr := name
		if stored, ok := sel.Lookup(name); ok {
			attr = stored
		}
		if value == nil {
			sel[attr] = nil
		} else {
			cp := *value
			sel[attr] = &cp
		}

		item.SelectedAttributes = sel
		item.ItemKey = MakeItemKey(item.ProductID, sel)
	}

	s.items = mergeDuplicates(s.items)
	s.persistLocked()
	return true
}

// Clear empties the cart and persists the empty cart right away.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = []models.LineItem{}
	s.persistLocked()
}

// Items returns a copy of the line items in insertion order.
func (s *Store) Items() []models.LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.LineItem, len(s.items))
	for i, item := range s.items {
		out[i] = item.Clone()
	}
	return out
}

// Get returns a copy of the line matching ref, resolved like Increment.
func (s *Store) Get(ref string) (models.LineItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(ref)
	if idx < 0 {
		return models.LineItem{}, false
	}
	return s.items[idx].Clone(), true
}

// Len returns the number of lines.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Totals sums quantities and price times quantity, rounded to cents.
func (s *Store) Totals() Totals {
	s.mu.Lock()
	defer s.mu.Unlock()

	var t Totals
	for _, item := range s.items {
		t.Quantity += item.Quantity
		t.Amount += item.Subtotal()
	}
	t.Amount = math.Round(t.Amount*100) / 100
	return t
}

// OrderPayload projects the cart onto the order request shape.
func (s *Store) OrderPayload() []models.OrderItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.OrderItem, 0, len(s.items))
	for _, item := range s.items {
		out = append(out, models.OrderItem{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return out
}

func (s *Store) indexByKey(key string) int {
	for i := range s.items {
		if s.items[i].ItemKey == key {
			return i
		}
	}
	return -1
}

func (s *Store) indexOf(ref string) int {
	if idx := s.indexByKey(ref); idx >= 0 {
		return idx
	}
	for i := range s.items {
		if s.items[i].ProductID == ref {
			return i
		}
	}
	return -1
}

func (s *Store) targets(ref string) []int {
	if idx := s.indexByKey(ref); idx >= 0 {
		return []int{idx}
	}
	var out []int
	for i := range s.items {
		if s.items[i].ProductID == ref {
			out = append(out, i)
		}
	}
	return out
}

func (s *Store) persistLocked() {
	s.p.save(toStored(s.items))
}
