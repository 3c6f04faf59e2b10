package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fashionstore/storefront/internal/api/handlers"
	"github.com/fashionstore/storefront/internal/api/middleware"
	"github.com/fashionstore/storefront/internal/config"
	"github.com/fashionstore/storefront/internal/repository"
)

// NewRouter creates and configures the Gin router
func NewRouter(cfg *config.Config, repos *repository.Repositories, logger *zap.Logger) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(loggingMiddleware(logger))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1 routes
	v1 := router.Group("/v1")
	{
		// Catalog is public
		v1.GET("/products", handlers.HandleListProducts(repos, logger))
		v1.GET("/products/:id", handlers.HandleGetProduct(repos, logger))
		v1.GET("/products/:id/variant", handlers.HandleFindVariant(repos, logger))

		// Customer routes (require authentication)
		userRoutes := v1.Group("")
		userRoutes.Use(middleware.AuthMiddleware(repos, logger))
		{
			userRoutes.GET("/cart", handlers.HandleGetCart(cfg, repos, logger))
			userRoutes.DELETE("/cart", handlers.HandleClearCart(cfg, repos, logger))
			userRoutes.POST("/cart/items", handlers.HandleAddItem(cfg, repos, logger))
			userRoutes.PUT("/cart/items/:id", handlers.HandleUpdateItem(cfg, repos, logger))
			userRoutes.POST("/cart/items/:id/decrease", handlers.HandleDecreaseItem(cfg, repos, logger))
			userRoutes.DELETE("/cart/items/:id", handlers.HandleRemoveItem(cfg, repos, logger))
			userRoutes.POST("/cart/coupon", handlers.HandleApplyCoupon(cfg, repos, logger))

			userRoutes.GET("/addresses", handlers.HandleListAddresses(repos, logger))
			userRoutes.POST("/addresses", handlers.HandleCreateAddress(repos, logger))
			userRoutes.POST("/addresses/:id/default", handlers.HandleSetDefaultAddress(repos, logger))
			userRoutes.DELETE("/addresses/:id", handlers.HandleDeleteAddress(repos, logger))

			userRoutes.POST("/checkout", handlers.HandleCheckout(cfg, repos, logger))
			userRoutes.GET("/orders", handlers.HandleListOrders(repos, logger))
			userRoutes.GET("/orders/:id", handlers.HandleGetOrder(repos, logger))
			userRoutes.POST("/orders/:id/cancel", handlers.HandleCancelOrder(cfg, repos, logger))
		}

		// Admin routes (internal - for now using same auth, can be separated later)
		adminRoutes := v1.Group("/admin")
		adminRoutes.Use(middleware.AuthMiddleware(repos, logger))
		{
			adminRoutes.POST("/coupons", handlers.HandleCreateCoupon(repos, logger))
			adminRoutes.GET("/coupons", handlers.HandleListCoupons(repos, logger))
			adminRoutes.POST("/coupons/:id/deactivate", handlers.HandleDeactivateCoupon(repos, logger))
			adminRoutes.POST("/orders/:id/status", handlers.HandleAdvanceOrder(repos, logger))
			adminRoutes.POST("/orders/:id/refund", handlers.HandleRefundOrder(repos, logger))
			adminRoutes.POST("/orders/:id/mark-paid", handlers.HandleMarkPaid(repos, logger))
		}
	}

	return router
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		status := c.Writer.Status()
		logger.Info("HTTP request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
		)
	}
}
