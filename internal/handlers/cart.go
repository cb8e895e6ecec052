// internal/handlers/cart.go
package handlers

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/storefront-backend/internal/i18n"
	"github.com/javajoker/storefront-backend/internal/services"
	"github.com/javajoker/storefront-backend/internal/utils"
)

type CartHandler struct {
	cartService *services.CartService
}

func NewCartHandler(cartService *services.CartService) *CartHandler {
	return &CartHandler{cartService: cartService}
}

// GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	utils.SuccessResponse(c, h.cartService.State())
}

// POST /cart/items
func (h *CartHandler) AddItem(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ValidationErrorResponse(c, utils.GetValidationErrors(err))
		return
	}

	item, err := h.cartService.AddItem(c.Request.Context(), &req)
	if err != nil {
		var missing *services.MissingAttributesError
		switch {
		case errors.As(err, &missing):
			utils.UnprocessableResponse(c, "MISSING_ATTRIBUTES",
				i18n.T(lang, i18n.KeyCartMissingAttributes, strings.Join(missing.Missing, ", ")),
				gin.H{"missing": missing.Missing})
		case errors.Is(err, services.ErrProductNotFound):
			utils.NotFoundResponse(c, i18n.KeyProductNotFound)
		case errors.Is(err, services.ErrCatalogUnavailable):
			utils.BadGatewayResponse(c, i18n.T(lang, i18n.KeyCatalogUnavailable))
		default:
			utils.InternalErrorResponse(c, "")
		}
		return
	}

	utils.CreatedResponse(c, gin.H{
		"item":    item,
		"message": i18n.T(lang, i18n.KeyCartItemAdded),
	})
}

// POST /cart/items/:key/increment
func (h *CartHandler) IncrementItem(c *gin.Context) {
	item, err := h.cartService.Increment(c.Param("key"))
	if err != nil {
		utils.NotFoundResponse(c, i18n.KeyCartItemNotFound)
		return
	}

	utils.SuccessResponse(c, gin.H{"item": item})
}

// POST /cart/items/:key/decrement
func (h *CartHandler) DecrementItem(c *gin.Context) {
	item, removed, err := h.cartService.Decrement(c.Param("key"))
	if err != nil {
		utils.NotFoundResponse(c, i18n.KeyCartItemNotFound)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"item":    item,
		"removed": removed,
	})
}

// PUT /cart/items/:key/attributes
func (h *CartHandler) UpdateAttribute(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.UpdateAttributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ValidationErrorResponse(c, utils.GetValidationErrors(err))
		return
	}

	if err := h.cartService.UpdateAttribute(c.Param("key"), &req); err != nil {
		utils.NotFoundResponse(c, i18n.KeyCartItemNotFound)
		return
	}

	utils.SuccessResponseWithMeta(c, h.cartService.State(), gin.H{
		"message": i18n.T(lang, i18n.KeyCartUpdated),
	})
}

// DELETE /cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	h.cartService.Clear()
	utils.SuccessResponseWithMeta(c, h.cartService.State(), gin.H{
		"message": i18n.T(utils.GetLangFromContext(c), i18n.KeyCartCleared),
	})
}

// GET /cart/order-payload
func (h *CartHandler) GetOrderPayload(c *gin.Context) {
	utils.SuccessResponse(c, gin.H{"items": h.cartService.OrderPayload()})
}

// GET /cart/overlay
func (h *CartHandler) GetOverlay(c *gin.Context) {
	utils.SuccessResponse(c, gin.H{"visible": h.cartService.OverlayVisible()})
}

type setOverlayRequest struct {
	Visible *bool `json:"visible" validate:"required"`
}

// PUT /cart/overlay
func (h *CartHandler) SetOverlay(c *gin.Context) {
	var req setOverlayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ValidationErrorResponse(c, utils.GetValidationErrors(err))
		return
	}

	h.cartService.SetOverlayVisible(*req.Visible)
	utils.SuccessResponse(c, gin.H{"visible": *req.Visible})
}

// POST /cart/overlay/toggle
func (h *CartHandler) ToggleOverlay(c *gin.Context) {
	utils.SuccessResponse(c, gin.H{"visible": h.cartService.ToggleOverlay()})
}
