package service

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/fashionstore/storefront/internal/domain"
	"github.com/fashionstore/storefront/internal/repository"
	"github.com/fashionstore/storefront/pkg/errors"
)

func seedAddress(store *fakeStore, userID uuid.UUID) *domain.Address {
	address := &domain.Address{
		ID:         uuid.New(),
		UserID:     userID,
		Line:       "12 Milliner Row",
		City:       "Leeds",
		State:      "West Yorkshire",
		PostalCode: "LS1 4AP",
		Country:    "GB",
		Phone:      "+44 113 496 0000",
		IsDefault:  true,
	}
	store.addresses[address.ID] = address
	return address
}

func newCheckoutEnv(t *testing.T, shippingRate string) (*fakeStore, *repository.Repositories, *cartService, *checkoutService) {
	store := newFakeStore()
	repos := newFakeRepositories(store)
	logger := zaptest.NewLogger(t)
	carts := NewCartService(repos, logger, 100)
	checkout := NewCheckoutService(repos, logger, mustDecimal(t, shippingRate))
	return store, repos, carts, checkout
}

func TestCheckoutEmptyCartRejected(t *testing.T) {
	ctx := context.Background()
	store, _, _, checkout := newCheckoutEnv(t, "0")
	userID := uuid.New()
	seedAddress(store, userID)

	_, err := checkout.CreateOrderFromCart(ctx, userID, uuid.Nil)
	var valErr *errors.ErrValidation
	require.ErrorAs(t, err, &valErr)

	assert.Empty(t, store.orders, "an empty cart never creates an order")
}

func TestCheckoutRequiresSavedAddress(t *testing.T) {
	ctx := context.Background()
	store, _, carts, checkout := newCheckoutEnv(t, "0")
	userID := uuid.New()

	variant := seedVariant(store, "10.00", 5)
	_, err := carts.AddItem(ctx, userID, variant.ID, 1)
	require.NoError(t, err)

	_, err = checkout.CreateOrderFromCart(ctx, userID, uuid.Nil)
	var valErr *errors.ErrValidation
	require.ErrorAs(t, err, &valErr)
	assert.Contains(t, valErr.Message, "address")
	assert.Empty(t, store.orders)
}

func TestCheckoutSnapshotsPricesAndDecrementsStock(t *testing.T) {
	ctx := context.Background()
	store, repos, carts, checkout := newCheckoutEnv(t, "0")
	userID := uuid.New()
	seedAddress(store, userID)

	variant := seedVariant(store, "100.00", 5)
	_, err := carts.AddItem(ctx, userID, variant.ID, 2)
	require.NoError(t, err)

	order, err := checkout.CreateOrderFromCart(ctx, userID, uuid.Nil)
	require.NoError(t, err)

	assert.Equal(t, domain.OrderStatusPlaced, order.Status)
	assert.Equal(t, domain.PaymentStatusPending, order.PaymentStatus)
	assert.True(t, strings.HasPrefix(order.OrderNumber, "ORD-"))
	assert.True(t, strings.HasPrefix(order.TrackingNumber, "TRK"))
	assert.True(t, mustDecimal(t, "200").Equal(order.Subtotal))
	assert.True(t, mustDecimal(t, "200").Equal(order.TotalAmount))

	assert.Equal(t, 3, store.variants[variant.ID].Stock, "stock decremented by the purchased quantity")

	// A later price change must not move the order's line prices.
	store.variants[variant.ID].Price = mustDecimal(t, "250.00")

	items, err := repos.Order.GetItems(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.True(t, mustDecimal(t, "100").Equal(items[0].Price), "price at order time, got %s", items[0].Price)
	assert.Equal(t, 2, items[0].Quantity)

	// The cart is emptied by a successful checkout.
	view, err := carts.GetCart(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, view.Lines)
	assert.Empty(t, view.Cart.CouponCode)
}

func TestCheckoutAppliesCouponAndClaimsUsage(t *testing.T) {
	ctx := context.Background()
	store, _, carts, checkout := newCheckoutEnv(t, "0")
	userID := uuid.New()
	seedAddress(store, userID)

	variant := seedVariant(store, "100.00", 5)
	one := 1
	coupon := seedCoupon(store, &domain.Coupon{
		Code:           "SAVE10",
		Kind:           domain.DiscountPercent,
		Percent:        10,
		MinOrderAmount: mustDecimal(t, "50"),
		MaxUses:        &one,
		IsActive:       true,
	})

	_, err := carts.AddItem(ctx, userID, variant.ID, 3)
	require.NoError(t, err)
	require.NoError(t, carts.ApplyCoupon(ctx, userID, "SAVE10"))

	order, err := checkout.CreateOrderFromCart(ctx, userID, uuid.Nil)
	require.NoError(t, err)

	assert.True(t, mustDecimal(t, "300").Equal(order.Subtotal))
	assert.True(t, mustDecimal(t, "30").Equal(order.DiscountAmount))
	assert.True(t, mustDecimal(t, "270").Equal(order.TotalAmount))
	require.NotNil(t, order.CouponID)
	assert.Equal(t, coupon.ID, *order.CouponID)
	assert.Equal(t, 1, store.coupons[coupon.ID].UsedCount, "usage claimed exactly once per checkout")
}

func TestCheckoutCouponBelowMinimumNotClaimed(t *testing.T) {
	ctx := context.Background()
	store, _, carts, checkout := newCheckoutEnv(t, "0")
	userID := uuid.New()
	seedAddress(store, userID)

	variant := seedVariant(store, "40.00", 5)
	coupon := seedCoupon(store, &domain.Coupon{
		Code:           "SAVE10",
		Kind:           domain.DiscountPercent,
		Percent:        10,
		MinOrderAmount: mustDecimal(t, "50"),
		IsActive:       true,
	})

	_, err := carts.AddItem(ctx, userID, variant.ID, 1)
	require.NoError(t, err)
	require.NoError(t, carts.ApplyCoupon(ctx, userID, "SAVE10"))

	order, err := checkout.CreateOrderFromCart(ctx, userID, uuid.Nil)
	require.NoError(t, err)

	assert.True(t, order.DiscountAmount.IsZero())
	assert.Nil(t, order.CouponID)
	assert.Equal(t, 0, store.coupons[coupon.ID].UsedCount, "a coupon that grants nothing is not consumed")
}

func TestCheckoutIncludesShippingCost(t *testing.T) {
	ctx := context.Background()
	store, _, carts, checkout := newCheckoutEnv(t, "7.50")
	userID := uuid.New()
	seedAddress(store, userID)

	variant := seedVariant(store, "50.00", 5)
	_, err := carts.AddItem(ctx, userID, variant.ID, 1)
	require.NoError(t, err)

	order, err := checkout.CreateOrderFromCart(ctx, userID, uuid.Nil)
	require.NoError(t, err)

	assert.True(t, mustDecimal(t, "7.50").Equal(order.ShippingCost))
	assert.True(t, mustDecimal(t, "57.50").Equal(order.TotalAmount))
}

func TestCheckoutInsufficientStockRollsBack(t *testing.T) {
	ctx := context.Background()
	store, _, carts, checkout := newCheckoutEnv(t, "0")
	userID := uuid.New()
	seedAddress(store, userID)

	variant := seedVariant(store, "100.00", 1)
	coupon := seedCoupon(store, &domain.Coupon{
		Code:     "SAVE10",
		Kind:     domain.DiscountPercent,
		Percent:  10,
		IsActive: true,
	})

	_, err := carts.AddItem(ctx, userID, variant.ID, 2)
	require.NoError(t, err)
	require.NoError(t, carts.ApplyCoupon(ctx, userID, "SAVE10"))

	_, err = checkout.CreateOrderFromCart(ctx, userID, uuid.Nil)
	var conflict *errors.ErrConflict
	require.ErrorAs(t, err, &conflict)

	// Nothing committed: no order, stock intact, coupon unclaimed, cart kept.
	assert.Empty(t, store.orders)
	assert.Equal(t, 1, store.variants[variant.ID].Stock)
	assert.Equal(t, 0, store.coupons[coupon.ID].UsedCount)
	view, err := carts.GetCart(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, view.Lines, 1)
}

func TestConcurrentCheckoutExactlyOneWins(t *testing.T) {
	ctx := context.Background()
	store, _, carts, checkout := newCheckoutEnv(t, "0")

	variant := seedVariant(store, "100.00", 1)

	users := []uuid.UUID{uuid.New(), uuid.New()}
	for _, userID := range users {
		seedAddress(store, userID)
		_, err := carts.AddItem(ctx, userID, variant.ID, 1)
		require.NoError(t, err)
	}

	var wg sync.WaitGroup
	results := make([]error, len(users))
	for i, userID := range users {
		wg.Add(1)
		go func(i int, userID uuid.UUID) {
			defer wg.Done()
			_, results[i] = checkout.CreateOrderFromCart(ctx, userID, uuid.Nil)
		}(i, userID)
	}
	wg.Wait()

	var successes, conflicts int
	for _, err := range results {
		switch {
		case err == nil:
			successes++
		default:
			var conflict *errors.ErrConflict
			require.ErrorAs(t, err, &conflict)
			conflicts++
		}
	}

	assert.Equal(t, 1, successes, "exactly one checkout wins the last unit")
	assert.Equal(t, 1, conflicts)
	assert.Equal(t, 0, store.variants[variant.ID].Stock, "stock never goes negative")
	assert.Len(t, store.orders, 1)
}

func TestCancelOrder(t *testing.T) {
	ctx := context.Background()
	store, _, carts, checkout := newCheckoutEnv(t, "0")
	userID := uuid.New()
	seedAddress(store, userID)

	variant := seedVariant(store, "100.00", 5)
	_, err := carts.AddItem(ctx, userID, variant.ID, 1)
	require.NoError(t, err)

	order, err := checkout.CreateOrderFromCart(ctx, userID, uuid.Nil)
	require.NoError(t, err)

	cancelled, err := checkout.CancelOrder(ctx, userID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCancelled, cancelled.Status)

	// Money fields stay frozen through the transition.
	stored := store.orders[order.ID]
	assert.True(t, order.TotalAmount.Equal(stored.TotalAmount))
}

func TestCancelOrderRejectedAfterDelivery(t *testing.T) {
	ctx := context.Background()
	store, repos, carts, checkout := newCheckoutEnv(t, "0")
	userID := uuid.New()
	seedAddress(store, userID)

	variant := seedVariant(store, "100.00", 5)
	_, err := carts.AddItem(ctx, userID, variant.ID, 1)
	require.NoError(t, err)

	order, err := checkout.CreateOrderFromCart(ctx, userID, uuid.Nil)
	require.NoError(t, err)
	require.NoError(t, repos.Order.UpdateStatus(ctx, order.ID, domain.OrderStatusDelivered))

	_, err = checkout.CancelOrder(ctx, userID, order.ID)
	var transErr *errors.ErrInvalidStateTransition
	require.ErrorAs(t, err, &transErr)
}

func TestCancelOrderScopedToOwner(t *testing.T) {
	ctx := context.Background()
	store, _, carts, checkout := newCheckoutEnv(t, "0")
	userID := uuid.New()
	seedAddress(store, userID)

	variant := seedVariant(store, "100.00", 5)
	_, err := carts.AddItem(ctx, userID, variant.ID, 1)
	require.NoError(t, err)

	order, err := checkout.CreateOrderFromCart(ctx, userID, uuid.Nil)
	require.NoError(t, err)

	_, err = checkout.CancelOrder(ctx, uuid.New(), order.ID)
	var notFound *errors.ErrNotFound
	require.ErrorAs(t, err, &notFound)
}
