// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Common
	KeyInternalError = "internal_error"
	KeyRateLimited   = "rate_limited"

	// Validation
	KeyValidationInvalid = "validation.invalid"

	// Products
	KeyProductNotFound    = "product.not_found"
	KeyCatalogUnavailable = "catalog.unavailable"

	// Cart
	KeyCartItemAdded         = "cart.item_added"
	KeyCartItemNotFound      = "cart.item_not_found"
	KeyCartUpdated           = "cart.updated"
	KeyCartCleared           = "cart.cleared"
	KeyCartEmpty             = "cart.empty"
	KeyCartMissingAttributes = "cart.missing_attributes"

	// Orders
	KeyOrderPlaced = "order.placed"
	KeyOrderFailed = "order.failed"
)
