package service

import (
	"github.com/shopspring/decimal"

	"github.com/fashionstore/storefront/internal/domain"
)

// Totals is the computed money summary for a cart
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Discount decimal.Decimal `json:"discount"`
	Total    decimal.Decimal `json:"total"`
}

// CartLine pairs a cart item with its variant at the live catalog price
type CartLine struct {
	Item     *domain.CartItem
	Variant  *domain.ProductVariant
	Subtotal decimal.Decimal
}

// CartView is a cart with its resolved lines and totals
type CartView struct {
	Cart   *domain.Cart
	Lines  []CartLine
	Totals Totals
}
