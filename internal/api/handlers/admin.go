package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fashionstore/storefront/internal/domain"
	"github.com/fashionstore/storefront/internal/repository"
	"github.com/fashionstore/storefront/internal/service"
	"github.com/fashionstore/storefront/pkg/errors"
)

// CreateCouponRequest creates a discount code. Kind picks the discount
// shape up front: "percent" uses Percent, "fixed" uses Amount.
type CreateCouponRequest struct {
	Code           string     `json:"code" binding:"required"`
	Name           string     `json:"name" binding:"required"`
	Kind           string     `json:"kind" binding:"required,oneof=percent fixed"`
	Percent        int64      `json:"percent"`
	Amount         string     `json:"amount"`
	MinOrderAmount string     `json:"min_order_amount"`
	MaxUses        *int       `json:"max_uses,omitempty"`
	ValidFrom      *time.Time `json:"valid_from,omitempty"`
	ValidUntil     *time.Time `json:"valid_until,omitempty"`
}

// CouponResponse represents a coupon resource
type CouponResponse struct {
	ID             string `json:"id"`
	Code           string `json:"code"`
	Name           string `json:"name"`
	Kind           string `json:"kind"`
	Percent        int64  `json:"percent,omitempty"`
	Amount         string `json:"amount,omitempty"`
	MinOrderAmount string `json:"min_order_amount"`
	MaxUses        *int   `json:"max_uses,omitempty"`
	UsedCount      int    `json:"used_count"`
	IsActive       bool   `json:"is_active"`
}

func couponResponse(c *domain.Coupon) CouponResponse {
	resp := CouponResponse{
		ID:             c.ID.String(),
		Code:           c.Code,
		Name:           c.Name,
		Kind:           string(c.Kind),
		MinOrderAmount: c.MinOrderAmount.StringFixed(2),
		MaxUses:        c.MaxUses,
		UsedCount:      c.UsedCount,
		IsActive:       c.IsActive,
	}
	switch c.Kind {
	case domain.DiscountPercent:
		resp.Percent = c.Percent
	case domain.DiscountFixed:
		resp.Amount = c.Amount.StringFixed(2)
	}
	return resp
}

// HandleCreateCoupon handles POST /v1/admin/coupons
func HandleCreateCoupon(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateCouponRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "validation failed",
				"details": err.Error(),
			})
			return
		}

		coupon := &domain.Coupon{
			Code:           req.Code,
			Name:           req.Name,
			Kind:           domain.DiscountKind(req.Kind),
			MaxUses:        req.MaxUses,
			IsActive:       true,
			ValidFrom:      req.ValidFrom,
			ValidUntil:     req.ValidUntil,
			Amount:         decimal.Zero,
			MinOrderAmount: decimal.Zero,
		}

		switch coupon.Kind {
		case domain.DiscountPercent:
			if req.Percent <= 0 || req.Percent > 100 {
				c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "percent must be between 1 and 100"})
				return
			}
			coupon.Percent = req.Percent
		case domain.DiscountFixed:
			amount, err := decimal.NewFromString(req.Amount)
			if err != nil || !amount.IsPositive() {
				c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "amount must be a positive decimal"})
				return
			}
			coupon.Amount = amount
		}

		if req.MinOrderAmount != "" {
			minAmount, err := decimal.NewFromString(req.MinOrderAmount)
			if err != nil || minAmount.IsNegative() {
				c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "min_order_amount must be a non-negative decimal"})
				return
			}
			coupon.MinOrderAmount = minAmount
		}

		if err := repos.Coupon.Create(c.Request.Context(), coupon); err != nil {
			respondError(c, logger, err)
			return
		}

		c.JSON(http.StatusCreated, couponResponse(coupon))
	}
}

// HandleListCoupons handles GET /v1/admin/coupons
func HandleListCoupons(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		coupons, err := repos.Coupon.List(c.Request.Context())
		if err != nil {
			respondError(c, logger, err)
			return
		}

		responses := make([]CouponResponse, len(coupons))
		for i, coupon := range coupons {
			responses[i] = couponResponse(coupon)
		}

		c.JSON(http.StatusOK, gin.H{"coupons": responses})
	}
}

// HandleDeactivateCoupon handles POST /v1/admin/coupons/:id/deactivate
func HandleDeactivateCoupon(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		couponID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid coupon ID"})
			return
		}

		if err := repos.Coupon.Deactivate(c.Request.Context(), couponID); err != nil {
			respondError(c, logger, err)
			return
		}

		c.Status(http.StatusNoContent)
	}
}

// AdvanceOrderRequest moves an order to a new status
type AdvanceOrderRequest struct {
	Status string `json:"status" binding:"required"`
}

// HandleAdvanceOrder handles POST /v1/admin/orders/:id/status
func HandleAdvanceOrder(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order ID"})
			return
		}

		var req AdvanceOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "validation failed",
				"details": err.Error(),
			})
			return
		}

		orderService := service.NewOrderService(repos, logger)
		if err := orderService.AdvanceOrder(c.Request.Context(), orderID, domain.OrderStatus(req.Status)); err != nil {
			respondError(c, logger, err)
			return
		}

		order, err := repos.Order.GetByID(c.Request.Context(), orderID)
		if err != nil {
			respondError(c, logger, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"id":     order.ID.String(),
			"status": order.Status,
		})
	}
}

// HandleRefundOrder handles POST /v1/admin/orders/:id/refund
func HandleRefundOrder(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order ID"})
			return
		}

		orderService := service.NewOrderService(repos, logger)
		if err := orderService.RefundOrder(c.Request.Context(), orderID); err != nil {
			if _, ok := err.(*errors.ErrNotFound); ok {
				c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
				return
			}
			respondError(c, logger, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"id":     orderID.String(),
			"status": domain.OrderStatusRefunded,
		})
	}
}

// HandleMarkPaid handles POST /v1/admin/orders/:id/mark-paid
func HandleMarkPaid(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order ID"})
			return
		}

		orderService := service.NewOrderService(repos, logger)
		if err := orderService.MarkPaid(c.Request.Context(), orderID); err != nil {
			respondError(c, logger, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"id":             orderID.String(),
			"payment_status": domain.PaymentStatusPaid,
		})
	}
}
