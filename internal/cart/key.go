// internal/cart/key.go
package cart

import (
	"sort"
	"strings"

	"github.com/javajoker/storefront-backend/internal/models"
)

// KeySeparator joins the product id and the canonical selection in an item key.
const KeySeparator = "::"

// MakeItemKey derives the identity of a line item. Equal product ids with
// canonically equal selections always produce the same key.
func MakeItemKey(productID string, selected models.SelectedAttributes) string {
	return strings.TrimSpace(productID) + KeySeparator + CanonicalizeAttributeMap(selected)
}

// CompleteSelection returns a copy of selected holding an entry for every
// attribute dimension the product exposes, nil where nothing was picked.
// Names are matched to the product's dimensions case-insensitively; names the
// product does not know are kept as given.
func CompleteSelection(product *models.Product, selected models.SelectedAttributes) models.SelectedAttributes {
	out := models.SelectedAttributes{}
	if product != nil {
		for _, set := range product.Attributes {
			if name := strings.TrimSpace(set.Name); name != "" {
				out[name] = nil
			}
		}
	}

	names := make([]string, 0, len(selected))
	for name := range selected {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		target := strings.TrimSpace(name)
		if target == "" {
			continue
		}
		if stored, ok := out.Lookup(target); ok {
			target = stored
		}

		opt := selected[name]
		if opt == nil {
			if _, exists := out[target]; !exists {
				out[target] = nil
			}
			continue
		}
		cp := *opt
		out[target] = &cp
	}
	return out
}
