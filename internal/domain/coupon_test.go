package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func percentCoupon(code string, percent int64, minOrder string) *Coupon {
	min, _ := decimal.NewFromString(minOrder)
	return &Coupon{
		Code:           code,
		Kind:           DiscountPercent,
		Percent:        percent,
		MinOrderAmount: min,
		IsActive:       true,
	}
}

func fixedCoupon(code, amount, minOrder string) *Coupon {
	a, _ := decimal.NewFromString(amount)
	min, _ := decimal.NewFromString(minOrder)
	return &Coupon{
		Code:           code,
		Kind:           DiscountFixed,
		Amount:         a,
		MinOrderAmount: min,
		IsActive:       true,
	}
}

func TestCouponDiscountPercent(t *testing.T) {
	now := time.Now()
	coupon := percentCoupon("SAVE10", 10, "50")

	discount := coupon.Discount(decimal.NewFromInt(300), now)
	assert.True(t, decimal.NewFromInt(30).Equal(discount), "got %s", discount)
}

func TestCouponDiscountBelowMinimum(t *testing.T) {
	now := time.Now()
	coupon := percentCoupon("SAVE10", 10, "50")

	discount := coupon.Discount(decimal.NewFromInt(40), now)
	assert.True(t, discount.IsZero(), "got %s", discount)
}

func TestCouponDiscountFixedCappedAtAmount(t *testing.T) {
	now := time.Now()
	coupon := fixedCoupon("FLAT50", "50", "0")

	discount := coupon.Discount(decimal.NewFromInt(30), now)
	assert.True(t, decimal.NewFromInt(30).Equal(discount), "fixed discount must not exceed the order amount, got %s", discount)

	discount = coupon.Discount(decimal.NewFromInt(200), now)
	assert.True(t, decimal.NewFromInt(50).Equal(discount), "got %s", discount)
}

func TestCouponDiscountInactive(t *testing.T) {
	now := time.Now()
	coupon := percentCoupon("SAVE10", 10, "0")
	coupon.IsActive = false

	assert.True(t, coupon.Discount(decimal.NewFromInt(100), now).IsZero())
}

func TestCouponDiscountValidityWindow(t *testing.T) {
	now := time.Now()
	past := now.Add(-48 * time.Hour)
	future := now.Add(48 * time.Hour)

	coupon := percentCoupon("SOON", 10, "0")
	coupon.ValidFrom = &future
	assert.True(t, coupon.Discount(decimal.NewFromInt(100), now).IsZero(), "not yet valid")

	coupon = percentCoupon("GONE", 10, "0")
	coupon.ValidUntil = &past
	assert.True(t, coupon.Discount(decimal.NewFromInt(100), now).IsZero(), "expired")

	coupon = percentCoupon("OPEN", 10, "0")
	coupon.ValidFrom = &past
	coupon.ValidUntil = &future
	assert.False(t, coupon.Discount(decimal.NewFromInt(100), now).IsZero(), "inside window")
}

func TestCouponDiscountNoneKind(t *testing.T) {
	now := time.Now()
	coupon := &Coupon{Code: "NOOP", Kind: DiscountNone, IsActive: true}

	assert.True(t, coupon.Discount(decimal.NewFromInt(100), now).IsZero())
}

func TestCouponDiscountIgnoresUsageCap(t *testing.T) {
	// The cap gates whether the coupon can be applied, never the value
	// of the computed discount.
	now := time.Now()
	one := 1
	coupon := percentCoupon("ONCE", 10, "0")
	coupon.MaxUses = &one
	coupon.UsedCount = 1

	require.False(t, coupon.CanUse())
	discount := coupon.Discount(decimal.NewFromInt(100), now)
	assert.True(t, decimal.NewFromInt(10).Equal(discount), "got %s", discount)
}

func TestCouponCanUse(t *testing.T) {
	coupon := percentCoupon("CAP", 10, "0")
	assert.True(t, coupon.CanUse(), "no cap means unlimited")

	three := 3
	coupon.MaxUses = &three
	coupon.UsedCount = 2
	assert.True(t, coupon.CanUse())

	coupon.UsedCount = 3
	assert.False(t, coupon.CanUse())

	coupon.UsedCount = 0
	coupon.IsActive = false
	assert.False(t, coupon.CanUse())
}

func TestNilCouponDiscount(t *testing.T) {
	var coupon *Coupon
	assert.True(t, coupon.Discount(decimal.NewFromInt(100), time.Now()).IsZero())
}
