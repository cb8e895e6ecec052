// internal/cart/canon.go
package cart

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/javajoker/storefront-backend/internal/models"
)

// Canon trims and lowercases s.
func Canon(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ValueKey is the comparable identity of an option: the first non-empty of
// id, value and displayValue, canonicalized. A nil option is "".
func ValueKey(o *models.Option) string {
	if o == nil {
		return ""
	}
	switch {
	case o.ID != "":
		return Canon(o.ID)
	case o.Value != "":
		return Canon(o.Value)
	default:
		return Canon(o.DisplayValue)
	}
}

// IsSameSelection reports whether a and b pick the same option.
func IsSameSelection(a, b *models.Option) bool {
	return ValueKey(a) == ValueKey(b)
}

// CanonicalizeAttributeMap encodes a selection as a JSON array of
// [name, valueKey] pairs sorted by name. Only used to derive item keys.
func CanonicalizeAttributeMap(selected models.SelectedAttributes) string {
	pairs := make([][2]string, 0, len(selected))
	for name, opt := range selected {
		pairs = append(pairs, [2]string{Canon(name), ValueKey(opt)})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i][0] != pairs[j][0] {
			return pairs[i][0] < pairs[j][0]
		}
		return pairs[i][1] < pairs[j][1]
	})

	// Marshalling [][2]string cannot fail
	data, _ := json.Marshal(pairs)
	return string(data)
}
