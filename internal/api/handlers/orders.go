package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fashionstore/storefront/internal/api/middleware"
	"github.com/fashionstore/storefront/internal/config"
	"github.com/fashionstore/storefront/internal/domain"
	"github.com/fashionstore/storefront/internal/repository"
	"github.com/fashionstore/storefront/internal/service"
)

// CheckoutRequest places an order from the current cart. AddressID is
// optional; when omitted the user's default address is used.
type CheckoutRequest struct {
	AddressID *uuid.UUID `json:"address_id,omitempty"`
}

// OrderItemResponse is one order line at its snapshotted price
type OrderItemResponse struct {
	VariantID string `json:"variant_id"`
	Quantity  int    `json:"qty"`
	Price     string `json:"price"`
	Subtotal  string `json:"subtotal"`
}

// OrderResponse represents the order resource
type OrderResponse struct {
	ID             string               `json:"id"`
	OrderNumber    string               `json:"order_number"`
	User           string               `json:"user"`
	Status         domain.OrderStatus   `json:"status"`
	PaymentStatus  domain.PaymentStatus `json:"payment_status"`
	TrackingNumber string               `json:"tracking_number,omitempty"`
	Subtotal       string               `json:"subtotal"`
	Discount       string               `json:"discount_amount"`
	ShippingCost   string               `json:"shipping_cost"`
	TotalAmount    string               `json:"total_amount"`
	Address        string               `json:"address"`
	Phone          string               `json:"phone,omitempty"`
	CouponID       *string              `json:"coupon_id,omitempty"`
	Items          []OrderItemResponse  `json:"items"`
	CreatedAt      string               `json:"created_at"`
}

func orderResponse(order *domain.Order, items []*domain.OrderItem) OrderResponse {
	itemResponses := make([]OrderItemResponse, len(items))
	for i, item := range items {
		itemResponses[i] = OrderItemResponse{
			VariantID: item.VariantID.String(),
			Quantity:  item.Quantity,
			Price:     item.Price.StringFixed(2),
			Subtotal:  item.Subtotal().StringFixed(2),
		}
	}

	resp := OrderResponse{
		ID:             order.ID.String(),
		OrderNumber:    order.OrderNumber,
		User:           order.UserID.String(),
		Status:         order.Status,
		PaymentStatus:  order.PaymentStatus,
		TrackingNumber: order.TrackingNumber,
		Subtotal:       order.Subtotal.StringFixed(2),
		Discount:       order.DiscountAmount.StringFixed(2),
		ShippingCost:   order.ShippingCost.StringFixed(2),
		TotalAmount:    order.TotalAmount.StringFixed(2),
		Address:        order.Address,
		Phone:          order.Phone,
		Items:          itemResponses,
		CreatedAt:      order.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}

	if order.CouponID != nil {
		s := order.CouponID.String()
		resp.CouponID = &s
	}

	return resp
}

// HandleCheckout handles POST /v1/checkout
func HandleCheckout(cfg *config.Config, repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.GetUserFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var req CheckoutRequest
		if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "validation failed",
				"details": err.Error(),
			})
			return
		}

		addressID := uuid.Nil
		if req.AddressID != nil {
			addressID = *req.AddressID
		}

		checkoutService := service.NewCheckoutService(repos, logger, cfg.Shipping.FlatRate)
		order, err := checkoutService.CreateOrderFromCart(c.Request.Context(), user.ID, addressID)
		if err != nil {
			respondError(c, logger, err)
			return
		}

		items, err := repos.Order.GetItems(c.Request.Context(), order.ID)
		if err != nil {
			respondError(c, logger, err)
			return
		}

		c.JSON(http.StatusCreated, orderResponse(order, items))
	}
}

// HandleListOrders handles GET /v1/orders
func HandleListOrders(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.GetUserFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		orderService := service.NewOrderService(repos, logger)
		orders, err := orderService.ListOrders(c.Request.Context(), user.ID)
		if err != nil {
			respondError(c, logger, err)
			return
		}

		responses := make([]OrderResponse, 0, len(orders))
		for _, order := range orders {
			items, err := repos.Order.GetItems(c.Request.Context(), order.ID)
			if err != nil {
				respondError(c, logger, err)
				return
			}
			responses = append(responses, orderResponse(order, items))
		}

		c.JSON(http.StatusOK, gin.H{"orders": responses})
	}
}

// HandleGetOrder handles GET /v1/orders/:id
func HandleGetOrder(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.GetUserFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		orderID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order ID"})
			return
		}

		orderService := service.NewOrderService(repos, logger)
		order, items, err := orderService.GetOrder(c.Request.Context(), user.ID, orderID)
		if err != nil {
			respondError(c, logger, err)
			return
		}

		c.JSON(http.StatusOK, orderResponse(order, items))
	}
}

// HandleCancelOrder handles POST /v1/orders/:id/cancel
func HandleCancelOrder(cfg *config.Config, repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.GetUserFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		orderID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order ID"})
			return
		}

		checkoutService := service.NewCheckoutService(repos, logger, cfg.Shipping.FlatRate)
		order, err := checkoutService.CancelOrder(c.Request.Context(), user.ID, orderID)
		if err != nil {
			respondError(c, logger, err)
			return
		}

		items, err := repos.Order.GetItems(c.Request.Context(), order.ID)
		if err != nil {
			respondError(c, logger, err)
			return
		}

		c.JSON(http.StatusOK, orderResponse(order, items))
	}
}
