// internal/models/line_item.go
package models

import "strings"

// SelectedAttributes maps an attribute name to the chosen option. A nil
// option is an explicit "not chosen" and is kept in the map.
type SelectedAttributes map[string]*Option

// Clone copies the map and every option it points to.
func (s SelectedAttributes) Clone() SelectedAttributes {
	if s == nil {
		return SelectedAttributes{}
	}
	out := make(SelectedAttributes, len(s))
	for name, opt := range s {
		if opt == nil {
			out[name] = nil
			continue
		}
		cp := *opt
		out[name] = &cp
	}
	return out
}

// Lookup returns the stored attribute name matching name case-insensitively.
func (s SelectedAttributes) Lookup(name string) (string, bool) {
	name = strings.TrimSpace(name)
	if _, ok := s[name]; ok {
		return name, true
	}
	for stored := range s {
		if strings.EqualFold(strings.TrimSpace(stored), name) {
			return stored, true
		}
	}
	return "", false
}

// LineItem is one cart row: a product with a fully resolved attribute
// selection. Name, Price and Image are copied from the product when the line
// is created and are not refreshed afterwards.
type LineItem struct {
	ItemKey            string             `json:"itemKey"`
	ProductID          string             `json:"productId"`
	Quantity           int                `json:"quantity"`
	SelectedAttributes SelectedAttributes `json:"selectedAttributes"`
	Name               string             `json:"name"`
	Price              float64            `json:"price"`
	Image              string             `json:"image,omitempty"`
	Attributes         []AttributeSet     `json:"attributes,omitempty"`
}

// Clone returns a deep copy of the line.
func (li LineItem) Clone() LineItem {
	cp := li
	cp.SelectedAttributes = li.SelectedAttributes.Clone()
	cp.Attributes = CloneAttributeSets(li.Attributes)
	return cp
}

// CloneAttributeSets deep-copies sets, including their option slices.
func CloneAttributeSets(sets []AttributeSet) []AttributeSet {
	if sets == nil {
		return nil
	}
	out := make([]AttributeSet, len(sets))
	for i, set := range sets {
		set.Items = append([]Option(nil), set.Items...)
		out[i] = set
	}
	return out
}

// Subtotal is unit price times quantity
func (li LineItem) Subtotal() float64 {
	return li.Price * float64(li.Quantity)
}

// OrderItem is the per-line payload sent to the order endpoint. Attribute
// selections are not part of it.
type OrderItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}
