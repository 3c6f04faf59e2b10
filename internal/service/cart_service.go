package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fashionstore/storefront/internal/domain"
	"github.com/fashionstore/storefront/internal/repository"
	"github.com/fashionstore/storefront/pkg/errors"
)

type cartService struct {
	repos    *repository.Repositories
	logger   *zap.Logger
	maxItems int
}

// NewCartService creates a new cart service. maxItems is the ceiling on the
// summed quantity across all line items in one cart.
func NewCartService(repos *repository.Repositories, logger *zap.Logger, maxItems int) *cartService {
	return &cartService{
		repos:    repos,
		logger:   logger,
		maxItems: maxItems,
	}
}

// GetCart returns the user's cart with resolved lines and computed totals
func (s *cartService) GetCart(ctx context.Context, userID uuid.UUID) (*CartView, error) {
	cart, err := s.repos.Cart.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	items, err := s.repos.Cart.GetItems(ctx, cart.ID)
	if err != nil {
		return nil, err
	}

	lines := make([]CartLine, 0, len(items))
	for _, item := range items {
		variant, err := s.repos.Variant.GetByID(ctx, item.VariantID)
		if err != nil {
			return nil, err
		}
		lines = append(lines, CartLine{
			Item:     item,
			Variant:  variant,
			Subtotal: variant.Price.Mul(decimal.NewFromInt(int64(item.Quantity))),
		})
	}

	totals, err := s.computeTotals(ctx, cart, lines)
	if err != nil {
		return nil, err
	}

	return &CartView{Cart: cart, Lines: lines, Totals: totals}, nil
}

// computeTotals sums line subtotals at live variant prices, applies the
// cart's coupon and floors the total at zero. An unknown or inactive coupon
// code degrades to zero discount rather than failing.
func (s *cartService) computeTotals(ctx context.Context, cart *domain.Cart, lines []CartLine) (Totals, error) {
	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.Subtotal)
	}

	discount := decimal.Zero
	if cart.CouponCode != "" {
		coupon, err := s.repos.Coupon.GetByCode(ctx, cart.CouponCode)
		if err != nil {
			if _, ok := err.(*errors.ErrNotFound); !ok {
				return Totals{}, err
			}
		} else {
			discount = coupon.Discount(subtotal, time.Now())
		}
	}

	total := subtotal.Sub(discount)
	if total.IsNegative() {
		total = decimal.Zero
	}

	return Totals{Subtotal: subtotal, Discount: discount, Total: total}, nil
}

// AddItem accumulates qty onto the user's cart line for the variant,
// creating the line if needed. The per-cart item ceiling is enforced
// atomically by the repository; exceeding it changes nothing.
func (s *cartService) AddItem(ctx context.Context, userID, variantID uuid.UUID, qty int) (*domain.CartItem, error) {
	if qty < 1 {
		return nil, &errors.ErrValidation{Message: "quantity must be at least 1"}
	}

	variant, err := s.repos.Variant.GetByID(ctx, variantID)
	if err != nil {
		return nil, err
	}
	if !variant.IsActive {
		return nil, &errors.ErrValidation{Message: "variant is not available"}
	}

	cart, err := s.repos.Cart.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	return s.repos.Cart.AddItem(ctx, cart.ID, variantID, qty, s.maxItems)
}

// UpdateItem overwrites the line's quantity. Unlike AddItem this never
// accumulates; qty must be positive.
func (s *cartService) UpdateItem(ctx context.Context, userID, itemID uuid.UUID, qty int) error {
	if qty <= 0 {
		return &errors.ErrValidation{Message: "quantity must be a positive integer"}
	}

	if _, err := s.ownedItem(ctx, userID, itemID); err != nil {
		return err
	}

	return s.repos.Cart.SetItemQuantity(ctx, itemID, qty)
}

// RemoveItem deletes the line unconditionally
func (s *cartService) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) error {
	if _, err := s.ownedItem(ctx, userID, itemID); err != nil {
		return err
	}

	return s.repos.Cart.RemoveItem(ctx, itemID)
}

// DecreaseQuantity decrements the line by amount. An amount below the
// current quantity decrements, an exact match deletes the line, and an
// amount above it leaves the line untouched.
func (s *cartService) DecreaseQuantity(ctx context.Context, userID, itemID uuid.UUID, amount int) error {
	if amount < 1 {
		return &errors.ErrValidation{Message: "amount must be at least 1"}
	}

	item, err := s.ownedItem(ctx, userID, itemID)
	if err != nil {
		return err
	}

	switch {
	case amount < item.Quantity:
		return s.repos.Cart.SetItemQuantity(ctx, itemID, item.Quantity-amount)
	case amount == item.Quantity:
		return s.repos.Cart.RemoveItem(ctx, itemID)
	default:
		return nil
	}
}

// Clear removes every line item and resets the coupon code
func (s *cartService) Clear(ctx context.Context, userID uuid.UUID) error {
	cart, err := s.repos.Cart.GetOrCreate(ctx, userID)
	if err != nil {
		return err
	}

	return s.repos.Cart.Clear(ctx, cart.ID)
}

// ApplyCoupon stores the code on the cart. Validity is evaluated when
// totals are computed, so a bad code simply yields no discount.
func (s *cartService) ApplyCoupon(ctx context.Context, userID uuid.UUID, code string) error {
	cart, err := s.repos.Cart.GetOrCreate(ctx, userID)
	if err != nil {
		return err
	}

	return s.repos.Cart.SetCouponCode(ctx, cart.ID, strings.TrimSpace(code))
}

func (s *cartService) ownedItem(ctx context.Context, userID, itemID uuid.UUID) (*domain.CartItem, error) {
	item, err := s.repos.Cart.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	cart, err := s.repos.Cart.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	if item.CartID != cart.ID {
		return nil, &errors.ErrNotFound{Resource: "cart item", ID: itemID.String()}
	}

	return item, nil
}
