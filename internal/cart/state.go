// internal/cart/state.go
package cart

import "github.com/javajoker/storefront-backend/internal/models"

// State is the read model handed to the display: cart contents and overlay
// visibility, composed from the two independently owned slices.
type State struct {
	Items          []models.LineItem `json:"items"`
	OverlayVisible bool              `json:"overlayVisible"`
	Totals         Totals            `json:"totals"`
}

// Snapshot reads the cart and overlay into one State. A nil overlay reads as hidden.
func Snapshot(store *Store, overlay *Overlay) State {
	st := State{Items: []models.LineItem{}}
	if store != nil {
		st.Items = store.Items()
		st.Totals = store.Totals()
	}
	if overlay != nil {
		st.OverlayVisible = overlay.Visible()
	}
	return st
}
