// internal/cart/overlay.go
package cart

import (
	"encoding/json"
	"sync"

	"github.com/javajoker/storefront-backend/internal/storage"
)

// Overlay holds the mini-cart visibility flag. It is persisted under its own
// key and never touched by cart mutations.
type Overlay struct {
	mu      sync.Mutex
	visible bool
	p       persister
}

type overlayState struct {
	Visible bool `json:"visible"`
}

// NewOverlay restores visibility from slot. Missing or unreadable state means hidden.
func NewOverlay(slot storage.Slot, opts ...Option) *Overlay {
	o := &Overlay{p: newPersister(slot, DefaultOverlayKey, "cart_overlay", opts)}

	if data := o.p.load(); data != nil {
		var st overlayState
		if err := json.Unmarshal(data, &st); err != nil {
			o.p.log.WithError(err).Warn("Stored overlay state is corrupt, starting hidden")
		} else {
			o.visible = st.Visible
		}
	}
	return o
}

// Visible reports whether the cart overlay is shown.
func (o *Overlay) Visible() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.visible
}

// SetVisible stores visible, persisting only when it changes.
func (o *Overlay) SetVisible(visible bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.visible == visible {
		return
	}
	o.visible = visible
	o.p.save(overlayState{Visible: visible})
}

// Toggle flips visibility and returns the new value.
func (o *Overlay) Toggle() bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.visible = !o.visible
	o.p.save(overlayState{Visible: o.visible})
	return o.visible
}
