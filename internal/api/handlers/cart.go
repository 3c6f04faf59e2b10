package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fashionstore/storefront/internal/api/middleware"
	"github.com/fashionstore/storefront/internal/config"
	"github.com/fashionstore/storefront/internal/repository"
	"github.com/fashionstore/storefront/internal/service"
)

// AddItemRequest adds a variant to the cart, either directly by variant id
// or resolved from product + size + color
type AddItemRequest struct {
	VariantID *uuid.UUID `json:"variant_id,omitempty"`
	ProductID *uuid.UUID `json:"product_id,omitempty"`
	Size      string     `json:"size,omitempty"`
	Color     string     `json:"color,omitempty"`
	Quantity  int        `json:"qty" binding:"required,min=1"`
}

// UpdateItemRequest overwrites a line's quantity
type UpdateItemRequest struct {
	Quantity int `json:"qty" binding:"required,min=1"`
}

// DecreaseItemRequest decrements a line's quantity
type DecreaseItemRequest struct {
	Amount int `json:"amount" binding:"required,min=1"`
}

// ApplyCouponRequest stores a coupon code on the cart
type ApplyCouponRequest struct {
	Code string `json:"code" binding:"required"`
}

// CartItemResponse is one cart line
type CartItemResponse struct {
	ID       string `json:"id"`
	Variant  string `json:"variant_id"`
	SKU      string `json:"sku"`
	Size     string `json:"size"`
	Color    string `json:"color"`
	Price    string `json:"price"`
	Quantity int    `json:"qty"`
	Subtotal string `json:"subtotal"`
}

// CartResponse is the full cart view
type CartResponse struct {
	ID         string             `json:"id"`
	User       string             `json:"user"`
	CouponCode string             `json:"coupon_code,omitempty"`
	Items      []CartItemResponse `json:"items"`
	Subtotal   string             `json:"subtotal"`
	Discount   string             `json:"discount"`
	Total      string             `json:"total"`
}

func cartResponse(view *service.CartView) CartResponse {
	items := make([]CartItemResponse, len(view.Lines))
	for i, line := range view.Lines {
		items[i] = CartItemResponse{
			ID:       line.Item.ID.String(),
			Variant:  line.Variant.ID.String(),
			SKU:      line.Variant.SKU,
			Size:     line.Variant.Size,
			Color:    line.Variant.Color,
			Price:    line.Variant.Price.StringFixed(2),
			Quantity: line.Item.Quantity,
			Subtotal: line.Subtotal.StringFixed(2),
		}
	}

	return CartResponse{
		ID:         view.Cart.ID.String(),
		User:       view.Cart.UserID.String(),
		CouponCode: view.Cart.CouponCode,
		Items:      items,
		Subtotal:   view.Totals.Subtotal.StringFixed(2),
		Discount:   view.Totals.Discount.StringFixed(2),
		Total:      view.Totals.Total.StringFixed(2),
	}
}

// HandleGetCart handles GET /v1/cart
func HandleGetCart(cfg *config.Config, repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.GetUserFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		cartService := service.NewCartService(repos, logger, cfg.Cart.MaxItems)
		view, err := cartService.GetCart(c.Request.Context(), user.ID)
		if err != nil {
			respondError(c, logger, err)
			return
		}

		c.JSON(http.StatusOK, cartResponse(view))
	}
}

// HandleAddItem handles POST /v1/cart/items
func HandleAddItem(cfg *config.Config, repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.GetUserFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var req AddItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "validation failed",
				"details": err.Error(),
			})
			return
		}

		variantID := uuid.Nil
		if req.VariantID != nil {
			variantID = *req.VariantID
		} else if req.ProductID != nil {
			variant, err := repos.Variant.GetByOptions(c.Request.Context(), *req.ProductID, req.Size, req.Color)
			if err != nil {
				respondError(c, logger, err)
				return
			}
			variantID = variant.ID
		} else {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "variant_id or product_id with size and color is required"})
			return
		}

		cartService := service.NewCartService(repos, logger, cfg.Cart.MaxItems)
		if _, err := cartService.AddItem(c.Request.Context(), user.ID, variantID, req.Quantity); err != nil {
			respondError(c, logger, err)
			return
		}

		view, err := cartService.GetCart(c.Request.Context(), user.ID)
		if err != nil {
			respondError(c, logger, err)
			return
		}

		c.JSON(http.StatusOK, cartResponse(view))
	}
}

// HandleUpdateItem handles PUT /v1/cart/items/:id
func HandleUpdateItem(cfg *config.Config, repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.GetUserFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		itemID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item ID"})
			return
		}

		var req UpdateItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "validation failed",
				"details": err.Error(),
			})
			return
		}

		cartService := service.NewCartService(repos, logger, cfg.Cart.MaxItems)
		if err := cartService.UpdateItem(c.Request.Context(), user.ID, itemID, req.Quantity); err != nil {
			respondError(c, logger, err)
			return
		}

		c.Status(http.StatusNoContent)
	}
}

// HandleDecreaseItem handles POST /v1/cart/items/:id/decrease
func HandleDecreaseItem(cfg *config.Config, repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.GetUserFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		itemID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item ID"})
			return
		}

		var req DecreaseItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "validation failed",
				"details": err.Error(),
			})
			return
		}

		cartService := service.NewCartService(repos, logger, cfg.Cart.MaxItems)
		if err := cartService.DecreaseQuantity(c.Request.Context(), user.ID, itemID, req.Amount); err != nil {
			respondError(c, logger, err)
			return
		}

		c.Status(http.StatusNoContent)
	}
}

// HandleRemoveItem handles DELETE /v1/cart/items/:id
func HandleRemoveItem(cfg *config.Config, repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.GetUserFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		itemID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item ID"})
			return
		}

		cartService := service.NewCartService(repos, logger, cfg.Cart.MaxItems)
		if err := cartService.RemoveItem(c.Request.Context(), user.ID, itemID); err != nil {
			respondError(c, logger, err)
			return
		}

		c.Status(http.StatusNoContent)
	}
}

// HandleClearCart handles DELETE /v1/cart
func HandleClearCart(cfg *config.Config, repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.GetUserFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		cartService := service.NewCartService(repos, logger, cfg.Cart.MaxItems)
		if err := cartService.Clear(c.Request.Context(), user.ID); err != nil {
			respondError(c, logger, err)
			return
		}

		c.Status(http.StatusNoContent)
	}
}

// HandleApplyCoupon handles POST /v1/cart/coupon
func HandleApplyCoupon(cfg *config.Config, repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.GetUserFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var req ApplyCouponRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "validation failed",
				"details": err.Error(),
			})
			return
		}

		cartService := service.NewCartService(repos, logger, cfg.Cart.MaxItems)
		if err := cartService.ApplyCoupon(c.Request.Context(), user.ID, req.Code); err != nil {
			respondError(c, logger, err)
			return
		}

		view, err := cartService.GetCart(c.Request.Context(), user.ID)
		if err != nil {
			respondError(c, logger, err)
			return
		}

		c.JSON(http.StatusOK, cartResponse(view))
	}
}
