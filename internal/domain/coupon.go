package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DiscountKind tags how a coupon discounts an order. The kind is chosen when
// the coupon is created, never re-derived from field values.
type DiscountKind string

const (
	DiscountNone    DiscountKind = "none"
	DiscountPercent DiscountKind = "percent"
	DiscountFixed   DiscountKind = "fixed"
)

// IsValid checks if the discount kind is valid
func (k DiscountKind) IsValid() bool {
	switch k {
	case DiscountNone, DiscountPercent, DiscountFixed:
		return true
	default:
		return false
	}
}

// Coupon represents a discount code. Codes are matched case-insensitively.
type Coupon struct {
	ID             uuid.UUID
	Code           string
	Name           string
	Kind           DiscountKind
	Percent        int64           // 0-100, meaningful when Kind == DiscountPercent
	Amount         decimal.Decimal // meaningful when Kind == DiscountFixed
	MinOrderAmount decimal.Decimal
	MaxUses        *int // nil means unlimited
	UsedCount      int
	IsActive       bool
	ValidFrom      *time.Time
	ValidUntil     *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ValidAt reports whether now falls inside the coupon's validity window
func (c *Coupon) ValidAt(now time.Time) bool {
	if c.ValidFrom != nil && now.Before(*c.ValidFrom) {
		return false
	}
	if c.ValidUntil != nil && now.After(*c.ValidUntil) {
		return false
	}
	return true
}

// Discount computes the discount the coupon grants against an order amount.
// A coupon that is inactive, outside its validity window, or whose minimum
// order amount is not met grants zero. The result never exceeds amount and
// never goes negative. The usage cap does not influence the computed value;
// it only gates whether the coupon can be applied at all (see CanUse).
func (c *Coupon) Discount(amount decimal.Decimal, now time.Time) decimal.Decimal {
	if c == nil || !c.IsActive || !c.ValidAt(now) {
		return decimal.Zero
	}
	if amount.LessThan(c.MinOrderAmount) {
		return decimal.Zero
	}

	switch c.Kind {
	case DiscountPercent:
		if c.Percent <= 0 {
			return decimal.Zero
		}
		return amount.Mul(decimal.NewFromInt(c.Percent)).Div(decimal.NewFromInt(100))
	case DiscountFixed:
		if c.Amount.LessThanOrEqual(decimal.Zero) {
			return decimal.Zero
		}
		return decimal.Min(c.Amount, amount)
	default:
		return decimal.Zero
	}
}

// CanUse reports whether the coupon may still be applied to a new order
func (c *Coupon) CanUse() bool {
	if !c.IsActive {
		return false
	}
	if c.MaxUses != nil && c.UsedCount >= *c.MaxUses {
		return false
	}
	return true
}
