package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// User represents a storefront customer account
type User struct {
	ID        uuid.UUID
	Email     string
	TokenHash string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Product represents a catalog product
type Product struct {
	ID        uuid.UUID
	Name      string
	Slug      string
	BasePrice decimal.Decimal
	SalePrice *decimal.Decimal
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CurrentPrice returns the sale price when one is set
func (p *Product) CurrentPrice() decimal.Decimal {
	if p.SalePrice != nil {
		return *p.SalePrice
	}
	return p.BasePrice
}

// ProductVariant represents a purchasable unit of a product (size + color)
type ProductVariant struct {
	ID        uuid.UUID
	ProductID uuid.UUID
	SKU       string
	Size      string
	Color     string
	Price     decimal.Decimal
	Stock     int
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// InStock reports whether any units remain
func (v *ProductVariant) InStock() bool {
	return v.Stock > 0
}

// Cart is the per-user shopping cart. Exactly one cart exists per user.
type Cart struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	CouponCode string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// CartItem is a line in a cart; unique per (cart, variant)
type CartItem struct {
	ID        uuid.UUID
	CartID    uuid.UUID
	VariantID uuid.UUID
	Quantity  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Address is a saved shipping address
type Address struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Line        string
	City        string
	State       string
	PostalCode  string
	Country     string
	Phone       string
	IsDefault   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// FullText returns the denormalized form stored on orders
func (a *Address) FullText() string {
	return a.Line + ", " + a.City + ", " + a.State + ", " + a.PostalCode + ", " + a.Country
}

// Order is an immutable snapshot created at checkout. Its money fields never
// change after creation; only status and payment status move.
type Order struct {
	ID             uuid.UUID
	OrderNumber    string
	UserID         uuid.UUID
	Status         OrderStatus
	PaymentStatus  PaymentStatus
	TrackingNumber string
	CouponID       *uuid.UUID
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	ShippingCost   decimal.Decimal
	TotalAmount    decimal.Decimal
	Address        string
	Phone          string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// OrderItem captures a variant at the price it had when the order was placed
type OrderItem struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	VariantID uuid.UUID
	Quantity  int
	Price     decimal.Decimal
	CreatedAt time.Time
}

// Subtotal returns price * quantity for the line
func (i *OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
