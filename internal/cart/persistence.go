// internal/cart/persistence.go
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/javajoker/storefront-backend/internal/models"
	"github.com/javajoker/storefront-backend/internal/storage"
)

const (
	DefaultCartKey    = "cartItems"
	DefaultOverlayKey = "cartOverlay"
	defaultTimeout    = 5 * time.Second
)

// Option configures how a Store or Overlay talks to its slot.
type Option func(*persister)

// WithKey overrides the slot key.
func WithKey(key string) Option {
	return func(p *persister) {
		if key != "" {
			p.key = key
		}
	}
}

// WithTimeout bounds each slot read and write.
func WithTimeout(d time.Duration) Option {
	return func(p *persister) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithLogger replaces the base log entry; the slot key is always added.
func WithLogger(log *logrus.Entry) Option {
	return func(p *persister) {
		if log != nil {
			p.log = log
		}
	}
}

// persister wraps slot access so that no storage failure, including a
// panicking backend, ever reaches the caller. A nil slot means memory only.
type persister struct {
	slot    storage.Slot
	key     string
	timeout time.Duration
	log     *logrus.Entry
}

func newPersister(slot storage.Slot, key, component string, opts []Option) persister {
	p := persister{
		slot:    slot,
		key:     key,
		timeout: defaultTimeout,
		log:     logrus.WithField("component", component),
	}
	for _, opt := range opts {
		opt(&p)
	}
	p.log = p.log.WithField("key", p.key)
	return p
}

// load returns the stored document, or nil when absent or unreadable.
func (p *persister) load() (data []byte) {
	if p.slot == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			p.log.WithField("panic", r).Error("Storage read panicked")
			data = nil
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	data, err := p.slot.Load(ctx, p.key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			p.log.WithError(err).Warn("Failed to load stored state, starting empty")
		}
		return nil
	}
	return data
}

func (p *persister) save(v interface{}) {
	if p.slot == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			p.log.WithField("panic", r).Error("Storage write panicked")
		}
	}()

	data, err := json.Marshal(v)
	if err != nil {
		p.log.WithError(err).Error("Failed to encode state")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	if err := p.slot.Save(ctx, p.key, data); err != nil {
		p.log.WithError(err).Warn("Failed to persist state")
	}
}

// storedItem is the persisted line-item layout. id duplicates productId for
// readers of the older layout.
type storedItem struct {
	ID                 string                    `json:"id"`
	ProductID          string                    `json:"productId"`
	ItemKey            string                    `json:"itemKey"`
	Quantity           int                       `json:"quantity"`
	SelectedAttributes models.SelectedAttributes `json:"selectedAttributes"`
	Name               string                    `json:"name"`
	Price              float64                   `json:"price"`
	Image              string                    `json:"image"`
	Attributes         []models.AttributeSet     `json:"attributes"`
}

func toStored(items []models.LineItem) []storedItem {
	out := make([]storedItem, 0, len(items))
	for _, item := range items {
		sel := item.SelectedAttributes
		if sel == nil {
			sel = models.SelectedAttributes{}
		}
		attrs := item.Attributes
		if attrs == nil {
			attrs = []models.AttributeSet{}
		}
		out = append(out, storedItem{
			ID:                 item.ProductID,
			ProductID:          item.ProductID,
			ItemKey:            item.ItemKey,
			Quantity:           item.Quantity,
			SelectedAttributes: sel,
			Name:               item.Name,
			Price:              item.Price,
			Image:              item.Image,
			Attributes:         attrs,
		})
	}
	return out
}

// record accepts every persisted layout seen so far: the current one and
// the older one where the whole product was spread into the line item.
type record struct {
	ID                 models.FlexString         `json:"id"`
	ProductID          models.FlexString         `json:"productId"`
	ItemKey            string                    `json:"itemKey"`
	Quantity           int                       `json:"quantity"`
	SelectedAttributes models.SelectedAttributes `json:"selectedAttributes"`
	Name               string                    `json:"name"`
	Price              *float64                  `json:"price"`
	Prices             json.RawMessage           `json:"prices"`
	Image              string                    `json:"image"`
	Gallery            json.RawMessage           `json:"gallery"`
	Attributes         json.RawMessage           `json:"attributes"`
}

// lineItem converts a record, reporting whether migration changed anything.
// ok is false for records that cannot be addressed or hold no quantity.
func (r record) lineItem() (item models.LineItem, changed bool, ok bool) {
	productID := r.ProductID.String()
	if productID == "" {
		productID = r.ID.String()
		changed = true
	}
	if productID == "" || r.Quantity < 1 {
		return models.LineItem{}, true, false
	}

	item = models.LineItem{
		ProductID:          productID,
		Quantity:           r.Quantity,
		SelectedAttributes: r.SelectedAttributes.Clone(),
		Name:               r.Name,
		Image:              r.Image,
		Attributes:         models.DecodeAttributes(r.Attributes),
	}

	if r.Price != nil {
		item.Price = *r.Price
	} else {
		if prices := models.DecodePrices(r.Prices); len(prices) > 0 {
			item.Price = prices[0].Amount
		}
		changed = true
	}

	if item.Image == "" {
		if gallery := models.DecodeGallery(r.Gallery); len(gallery) > 0 {
			item.Image = gallery[0]
			changed = true
		}
	}

	item.ItemKey = MakeItemKey(productID, item.SelectedAttributes)
	if item.ItemKey != r.ItemKey {
		changed = true
	}
	return item, changed, true
}

// decodeItems restores line items from a stored document. Unusable records
// are skipped on their own; only a document that is not a JSON array fails.
func decodeItems(data []byte, log *logrus.Entry) (items []models.LineItem, migrated bool, err error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, false, err
	}

	items = make([]models.LineItem, 0, len(raws))
	for i, raw := range raws {
		var rec record
		if err := json.Unmarshal(raw, &rec); err != nil {
			log.WithError(err).WithField("index", i).Warn("Skipping malformed cart record")
			migrated = true
			continue
		}

		item, changed, ok := rec.lineItem()
		if !ok {
			log.WithField("index", i).Warn("Skipping unusable cart record")
			migrated = true
			continue
		}
		if changed {
			migrated = true
		}
		items = append(items, item)
	}

	merged := mergeDuplicates(items)
	if len(merged) != len(items) {
		migrated = true
	}
	return merged, migrated, nil
}

// mergeDuplicates folds lines sharing an item key into the first of them,
// summing quantities. Order of first occurrence is kept.
func mergeDuplicates(items []models.LineItem) []models.LineItem {
	out := make([]models.LineItem, 0, len(items))
	seen := make(map[string]int, len(items))
	for _, item := range items {
		if idx, ok := seen[item.ItemKey]; ok {
			out[idx].Quantity += item.Quantity
			continue
		}
		seen[item.ItemKey] = len(out)
		out = append(out, item)
	}
	return out
}
