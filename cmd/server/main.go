// cmd/server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/storefront-backend/internal/cart"
	"github.com/javajoker/storefront-backend/internal/config"
	"github.com/javajoker/storefront-backend/internal/database"
	"github.com/javajoker/storefront-backend/internal/i18n"
	"github.com/javajoker/storefront-backend/internal/router"
	"github.com/javajoker/storefront-backend/internal/services"
	"github.com/javajoker/storefront-backend/internal/storage"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	setupLogging(cfg)

	// Initialize database only when it backs the cart slot
	var db *gorm.DB
	if cfg.Storage.Driver == config.StorageDatabase {
		db, err = database.Initialize(cfg.Database)
		if err != nil {
			logrus.WithError(err).Fatal("Failed to initialize database")
		}
		defer database.Close(db)

		if err := database.RunMigrations(db); err != nil {
			logrus.WithError(err).Fatal("Failed to run migrations")
		}
	}

	slot, err := storage.New(cfg, db)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize cart storage")
	}
	if closer, ok := slot.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	// Initialize i18n
	if err := i18n.Initialize(cfg.I18n.DefaultLocale); err != nil {
		logrus.WithError(err).Fatal("Failed to initialize i18n")
	}

	catalog, err := services.NewCatalog(cfg.Catalog)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize catalog")
	}

	timeout := cfg.Storage.WriteTimeout()
	slotLog := logrus.WithField("storage", cfg.Storage.Driver)
	store := cart.NewStore(slot, cart.WithKey(cfg.Storage.CartKey), cart.WithTimeout(timeout), cart.WithLogger(slotLog.WithField("component", "cart_store")))
	overlay := cart.NewOverlay(slot, cart.WithKey(cfg.Storage.OverlayKey), cart.WithTimeout(timeout), cart.WithLogger(slotLog.WithField("component", "cart_overlay")))

	orderTimeout := time.Duration(cfg.Order.Timeout) * time.Second
	orders := services.NewOrderService(services.NewGraphQLClient(cfg.Order.GraphQLURL, orderTimeout))
	products := services.NewProductService(catalog)

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize router
	r, stopRouter := router.Initialize(router.Services{
		Cart:     services.NewCartService(store, overlay, products, cfg.Cart.RequireAttributes),
		Checkout: services.NewCheckoutService(store, overlay, orders, orderTimeout),
		Products: products,
	}, cfg)
	defer stopRouter()

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logrus.WithFields(logrus.Fields{
			"port":    cfg.Server.Port,
			"storage": cfg.Storage.Driver,
			"items":   store.Len(),
		}).Info("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down server...")

	// Create a deadline for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logrus.WithError(err).Error("Server forced to shutdown")
	}

	logrus.Info("Server exited")
}

func setupLogging(cfg *config.Config) {
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	format := cfg.Log.Format
	if format == "" && cfg.Environment == "production" {
		format = "json"
	}
	if format == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}
