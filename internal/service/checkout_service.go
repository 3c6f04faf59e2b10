package service

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fashionstore/storefront/internal/domain"
	"github.com/fashionstore/storefront/internal/repository"
	"github.com/fashionstore/storefront/pkg/errors"
)

type checkoutService struct {
	repos        *repository.Repositories
	logger       *zap.Logger
	shippingRate decimal.Decimal
}

// NewCheckoutService creates a new checkout service
func NewCheckoutService(repos *repository.Repositories, logger *zap.Logger, shippingRate decimal.Decimal) *checkoutService {
	return &checkoutService{
		repos:        repos,
		logger:       logger,
		shippingRate: shippingRate,
	}
}

// CreateOrderFromCart converts the user's cart into a placed order. Prices
// are snapshotted onto order items, stock is decremented, the coupon is
// claimed and the cart is cleared, all in one repository transaction. If
// addressID is uuid.Nil the user's default address is used; a user without
// any saved address gets a validation error telling them to add one first.
func (s *checkoutService) CreateOrderFromCart(ctx context.Context, userID, addressID uuid.UUID) (*domain.Order, error) {
	cart, err := s.repos.Cart.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	items, err := s.repos.Cart.GetItems(ctx, cart.ID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, &errors.ErrValidation{Message: "cart is empty"}
	}

	address, err := s.resolveAddress(ctx, userID, addressID)
	if err != nil {
		return nil, err
	}

	subtotal := decimal.Zero
	checkoutItems := make([]repository.CheckoutItem, 0, len(items))
	for _, item := range items {
		variant, err := s.repos.Variant.GetByID(ctx, item.VariantID)
		if err != nil {
			return nil, err
		}

		// Snapshot the live price; later catalog changes must not move
		// the order's totals.
		checkoutItems = append(checkoutItems, repository.CheckoutItem{
			VariantID: variant.ID,
			Quantity:  item.Quantity,
			Price:     variant.Price,
		})
		subtotal = subtotal.Add(variant.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	discount := decimal.Zero
	var couponID *uuid.UUID
	if cart.CouponCode != "" {
		coupon, err := s.repos.Coupon.GetByCode(ctx, cart.CouponCode)
		if err != nil {
			if _, ok := err.(*errors.ErrNotFound); !ok {
				return nil, err
			}
			// Unknown code: no discount, order proceeds.
		} else if coupon.CanUse() {
			discount = coupon.Discount(subtotal, time.Now())
			if discount.IsPositive() {
				couponID = &coupon.ID
			}
		}
	}

	total := subtotal.Sub(discount).Add(s.shippingRate)
	if total.IsNegative() {
		total = decimal.Zero
	}

	order := &domain.Order{
		OrderNumber:    generateOrderNumber(),
		UserID:         userID,
		Status:         domain.OrderStatusPlaced,
		PaymentStatus:  domain.PaymentStatusPending,
		TrackingNumber: generateTrackingNumber(),
		CouponID:       couponID,
		Subtotal:       subtotal,
		DiscountAmount: discount,
		ShippingCost:   s.shippingRate,
		TotalAmount:    total,
		Address:        address.FullText(),
		Phone:          address.Phone,
	}

	if err := s.repos.Order.CreateFromCart(ctx, order, checkoutItems, cart.ID); err != nil {
		return nil, err
	}

	s.logger.Info("Order placed",
		zap.String("order_number", order.OrderNumber),
		zap.String("user_id", userID.String()),
		zap.String("total", order.TotalAmount.String()),
	)

	return order, nil
}

// CancelOrder cancels the user's order if it is still cancellable
func (s *checkoutService) CancelOrder(ctx context.Context, userID, orderID uuid.UUID) (*domain.Order, error) {
	order, err := s.repos.Order.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, &errors.ErrNotFound{Resource: "order", ID: orderID.String()}
	}

	if !order.Status.CanCancel() {
		return nil, &errors.ErrInvalidStateTransition{
			From: order.Status,
			To:   domain.OrderStatusCancelled,
		}
	}

	if err := s.repos.Order.UpdateStatus(ctx, orderID, domain.OrderStatusCancelled); err != nil {
		return nil, err
	}

	order.Status = domain.OrderStatusCancelled
	return order, nil
}

func (s *checkoutService) resolveAddress(ctx context.Context, userID, addressID uuid.UUID) (*domain.Address, error) {
	if addressID != uuid.Nil {
		return s.repos.Address.GetByID(ctx, addressID, userID)
	}

	addresses, err := s.repos.Address.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(addresses) == 0 {
		return nil, &errors.ErrValidation{Message: "no saved address: add a shipping address before checkout"}
	}

	// ListByUser sorts default-first.
	return addresses[0], nil
}

const orderNumberAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func generateOrderNumber() string {
	suffix := make([]byte, 6)
	for i := range suffix {
		suffix[i] = orderNumberAlphabet[rand.Intn(len(orderNumberAlphabet))]
	}
	return fmt.Sprintf("ORD-%s-%s", time.Now().Format("20060102150405"), suffix)
}

func generateTrackingNumber() string {
	return fmt.Sprintf("TRK%06d", rand.Intn(900000)+100000)
}
