// internal/models/product.go
package models

import (
	"bytes"
	"encoding/json"
	"regexp"
	"sort"
	"strings"
)

// Product is a catalog record as the cart sees it. Decoding accepts both the
// current GraphQL shape and the legacy flat catalog shape.
type Product struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Category    string         `json:"category,omitempty"`
	Description string         `json:"description,omitempty"`
	Brand       string         `json:"brand,omitempty"`
	InStock     bool           `json:"inStock"`
	Prices      []Price        `json:"prices"`
	Gallery     []string       `json:"gallery"`
	Attributes  []AttributeSet `json:"attributes"`
}

type Price struct {
	Amount   float64   `json:"amount"`
	Currency *Currency `json:"currency,omitempty"`
}

type Currency struct {
	Label  string `json:"label"`
	Symbol string `json:"symbol"`
}

// AttributeSet is one selectable dimension of a product, e.g. Size or Color.
type AttributeSet struct {
	ID    string   `json:"id,omitempty"`
	Name  string   `json:"name"`
	Type  string   `json:"type,omitempty"`
	Items []Option `json:"items"`
}

// Option is a single attribute value. Catalog feeds send either a bare
// string or an object with id/value/displayValue.
type Option struct {
	ID           string `json:"id,omitempty"`
	Value        string `json:"value,omitempty"`
	DisplayValue string `json:"displayValue,omitempty"`
}

type optionObject struct {
	ID           FlexString `json:"id"`
	Value        FlexString `json:"value"`
	DisplayValue FlexString `json:"displayValue"`
}

func (o *Option) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*o = Option{}
		return nil
	}

	if trimmed[0] == '{' {
		var obj optionObject
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return err
		}
		*o = Option{ID: string(obj.ID), Value: string(obj.Value), DisplayValue: string(obj.DisplayValue)}
		return nil
	}

	var v FlexString
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return err
	}
	*o = Option{Value: string(v)}
	return nil
}

func (o Option) MarshalJSON() ([]byte, error) {
	if o.ID == "" && o.DisplayValue == "" {
		return json.Marshal(o.Value)
	}
	type plain Option
	return json.Marshal(plain(o))
}

type productJSON struct {
	ID          FlexString      `json:"id"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Brand       string          `json:"brand"`
	InStock     *bool           `json:"inStock"`
	Prices      json.RawMessage `json:"prices"`
	Price       *float64        `json:"price"`
	Gallery     json.RawMessage `json:"gallery"`
	Image       string          `json:"image"`
	Attributes  json.RawMessage `json:"attributes"`
}

// UnmarshalJSON normalizes the catalog shapes. Missing or malformed prices,
// galleries and attributes degrade to empty values instead of failing.
func (p *Product) UnmarshalJSON(data []byte) error {
	var raw productJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*p = Product{
		ID:          raw.ID.String(),
		Name:        raw.Name,
		Category:    raw.Category,
		Description: raw.Description,
		Brand:       raw.Brand,
		InStock:     raw.InStock == nil || *raw.InStock,
		Prices:      DecodePrices(raw.Prices),
		Gallery:     DecodeGallery(raw.Gallery),
		Attributes:  DecodeAttributes(raw.Attributes),
	}

	if len(p.Prices) == 0 && raw.Price != nil {
		p.Prices = []Price{{Amount: *raw.Price}}
	}
	if len(p.Gallery) == 0 && strings.TrimSpace(raw.Image) != "" {
		p.Gallery = []string{strings.TrimSpace(raw.Image)}
	}
	return nil
}

// FirstPrice returns the amount of the first listed price, 0 when none
func (p *Product) FirstPrice() float64 {
	if p == nil || len(p.Prices) == 0 {
		return 0
	}
	return p.Prices[0].Amount
}

// FirstImage returns the first gallery image, "" when none
func (p *Product) FirstImage() string {
	if p == nil || len(p.Gallery) == 0 {
		return ""
	}
	return p.Gallery[0]
}

// Attribute finds an attribute set by name, ignoring case and surrounding space.
func (p *Product) Attribute(name string) *AttributeSet {
	if p == nil {
		return nil
	}
	name = strings.TrimSpace(name)
	for i := range p.Attributes {
		if strings.EqualFold(strings.TrimSpace(p.Attributes[i].Name), name) {
			return &p.Attributes[i]
		}
	}
	return nil
}

// RequiredAttributes lists the attribute names a shopper must pick before the
// product can be added: Capacity and Color for tech products, Size otherwise.
// Dimensions the product does not expose are never required.
func (p *Product) RequiredAttributes() []string {
	if p == nil {
		return nil
	}

	wanted := []string{"Size"}
	if strings.EqualFold(strings.TrimSpace(p.Category), "tech") {
		wanted = []string{"Capacity", "Color"}
	}

	var required []string
	for _, name := range wanted {
		if set := p.Attribute(name); set != nil {
			required = append(required, set.Name)
		}
	}
	return required
}

// DecodePrices accepts a prices array and ignores anything else.
func DecodePrices(raw json.RawMessage) []Price {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return nil
	}
	var prices []Price
	if err := json.Unmarshal(raw, &prices); err != nil {
		return nil
	}
	return prices
}

// DecodeAttributes maps both attribute shapes onto []AttributeSet:
// an array of named sets, or a legacy object of name -> raw values.
func DecodeAttributes(raw json.RawMessage) []AttributeSet {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil
	}

	switch raw[0] {
	case '[':
		var sets []AttributeSet
		if err := json.Unmarshal(raw, &sets); err != nil || len(sets) == 0 {
			return nil
		}
		return sets
	case '{':
		var legacy map[string][]Option
		if err := json.Unmarshal(raw, &legacy); err != nil || len(legacy) == 0 {
			return nil
		}
		names := make([]string, 0, len(legacy))
		for name := range legacy {
			names = append(names, name)
		}
		sort.Strings(names)

		sets := make([]AttributeSet, 0, len(names))
		for _, name := range names {
			sets = append(sets, AttributeSet{ID: name, Name: name, Items: legacy[name]})
		}
		return sets
	}
	return nil
}

var (
	gallerySeparator = regexp.MustCompile(`[\s,]+`)
	galleryURL       = regexp.MustCompile(`(?i)^https?://`)
)

// DecodeGallery accepts an array of URLs, a JSON encoded array inside a
// string, or a whitespace/comma separated list of http(s) URLs.
func DecodeGallery(raw json.RawMessage) []string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil
	}

	switch raw[0] {
	case '[':
		var urls []string
		if err := json.Unmarshal(raw, &urls); err != nil {
			return nil
		}
		return compactStrings(urls)
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil
		}
		return splitGallery(s)
	}
	return nil
}

func splitGallery(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	var nested []string
	if err := json.Unmarshal([]byte(s), &nested); err == nil {
		return compactStrings(nested)
	}

	var urls []string
	for _, part := range gallerySeparator.Split(s, -1) {
		if galleryURL.MatchString(part) {
			urls = append(urls, part)
		}
	}
	return urls
}

func compactStrings(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
