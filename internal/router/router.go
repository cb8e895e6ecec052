// internal/router/router.go
package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/javajoker/storefront-backend/internal/config"
	"github.com/javajoker/storefront-backend/internal/handlers"
	"github.com/javajoker/storefront-backend/internal/i18n"
	"github.com/javajoker/storefront-backend/internal/middleware"
	"github.com/javajoker/storefront-backend/internal/services"
)

type Services struct {
	Cart     *services.CartService
	Checkout *services.CheckoutService
	Products *services.ProductService
}

// Initialize builds the engine. The returned stop func releases the rate
// limiters and is safe to call when none were created.
func Initialize(svc Services, cfg *config.Config) (*gin.Engine, func()) {
	// Initialize handlers
	cartHandler := handlers.NewCartHandler(svc.Cart)
	checkoutHandler := handlers.NewCheckoutHandler(svc.Checkout)
	productHandler := handlers.NewProductHandler(svc.Products)

	// Initialize Gin router
	r := gin.New()
	// item keys may carry an escaped "/" inside attribute values
	r.UseRawPath = true
	r.UnescapePathValues = true

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))
	r.Use(middleware.I18nMiddleware(cfg.I18n.DefaultLocale))

	checkoutLimit := []gin.HandlerFunc{}
	var limiters []*middleware.RateLimiter
	if cfg.RateLimit.Enabled {
		general := middleware.NewRateLimiter(rate.Limit(cfg.RateLimit.RequestsPerSecond), cfg.RateLimit.Burst)
		r.Use(general.Middleware())

		perMinute := cfg.RateLimit.CheckoutPerMinute
		if perMinute <= 0 {
			perMinute = 1
		}
		checkout := middleware.NewRateLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute)
		checkoutLimit = append(checkoutLimit, checkout.Middleware())
		limiters = append(limiters, general, checkout)
	}
	stop := func() {
		for _, l := range limiters {
			l.Stop()
		}
	}

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"version":   "1.0.0",
			"languages": i18n.GetSupportedLanguages(),
		})
	})

	// API v1 routes
	v1 := r.Group("/v1")
	{
		cart := v1.Group("/cart")
		{
			cart.GET("", cartHandler.GetCart)
			cart.DELETE("", cartHandler.ClearCart)
			cart.GET("/order-payload", cartHandler.GetOrderPayload)

			items := cart.Group("/items")
			{
				items.POST("", cartHandler.AddItem)
				items.POST("/:key/increment", cartHandler.IncrementItem)
				items.POST("/:key/decrement", cartHandler.DecrementItem)
				items.PUT("/:key/attributes", cartHandler.UpdateAttribute)
			}

			overlay := cart.Group("/overlay")
			{
				overlay.GET("", cartHandler.GetOverlay)
				overlay.PUT("", cartHandler.SetOverlay)
				overlay.POST("/toggle", cartHandler.ToggleOverlay)
			}
		}

		v1.POST("/checkout", append(checkoutLimit, checkoutHandler.PlaceOrder)...)

		products := v1.Group("/products")
		{
			products.GET("/:id", productHandler.GetProduct)
		}
	}

	return r, stop
}
