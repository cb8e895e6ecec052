// internal/handlers/checkout.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/storefront-backend/internal/i18n"
	"github.com/javajoker/storefront-backend/internal/services"
	"github.com/javajoker/storefront-backend/internal/utils"
)

type CheckoutHandler struct {
	checkoutService *services.CheckoutService
}

func NewCheckoutHandler(checkoutService *services.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkoutService: checkoutService}
}

// POST /checkout
func (h *CheckoutHandler) PlaceOrder(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	result, err := h.checkoutService.Checkout(c.Request.Context(), &req)
	if err != nil {
		switch {
		case len(utils.GetValidationErrors(err)) > 0:
			utils.ValidationErrorResponse(c, utils.GetValidationErrors(err))
		case errors.Is(err, services.ErrEmptyCart):
			utils.ErrorResponse(c, http.StatusBadRequest, "EMPTY_CART", i18n.T(lang, i18n.KeyCartEmpty), nil)
		default:
			utils.BadGatewayResponse(c, i18n.T(lang, i18n.KeyOrderFailed))
		}
		return
	}

	utils.CreatedResponseWithMeta(c, result, gin.H{
		"message": i18n.T(lang, i18n.KeyOrderPlaced),
	})
}
