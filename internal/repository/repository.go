package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fashionstore/storefront/internal/domain"
)

// UserRepository resolves storefront accounts
type UserRepository interface {
	GetByToken(ctx context.Context, token string) (*domain.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
}

// ProductRepository reads the catalog
type ProductRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Product, error)
	List(ctx context.Context, activeOnly bool) ([]*domain.Product, error)
}

// VariantRepository reads purchasable units. Stock mutation happens only
// inside the checkout transaction owned by OrderRepository.
type VariantRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ProductVariant, error)
	GetBySKU(ctx context.Context, sku string) (*domain.ProductVariant, error)
	GetByOptions(ctx context.Context, productID uuid.UUID, size, color string) (*domain.ProductVariant, error)
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]*domain.ProductVariant, error)
}

// CartRepository manages the single cart each user owns
type CartRepository interface {
	// GetOrCreate upserts the user's cart against the unique user_id
	// constraint and returns it.
	GetOrCreate(ctx context.Context, userID uuid.UUID) (*domain.Cart, error)
	GetItems(ctx context.Context, cartID uuid.UUID) ([]*domain.CartItem, error)
	GetItem(ctx context.Context, itemID uuid.UUID) (*domain.CartItem, error)
	// AddItem accumulates quantity onto an existing line or creates one,
	// enforcing the summed item ceiling atomically with the mutation.
	AddItem(ctx context.Context, cartID, variantID uuid.UUID, qty, maxItems int) (*domain.CartItem, error)
	SetItemQuantity(ctx context.Context, itemID uuid.UUID, qty int) error
	RemoveItem(ctx context.Context, itemID uuid.UUID) error
	SetCouponCode(ctx context.Context, cartID uuid.UUID, code string) error
	// Clear removes all line items and resets the coupon code.
	Clear(ctx context.Context, cartID uuid.UUID) error
}

// CouponRepository manages discount codes
type CouponRepository interface {
	Create(ctx context.Context, coupon *domain.Coupon) error
	// GetByCode matches case-insensitively against active coupons.
	GetByCode(ctx context.Context, code string) (*domain.Coupon, error)
	List(ctx context.Context) ([]*domain.Coupon, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}

// CheckoutItem is a line captured for order creation: the variant, the
// quantity to decrement from stock, and the unit price snapshotted at
// checkout time.
type CheckoutItem struct {
	VariantID uuid.UUID
	Quantity  int
	Price     decimal.Decimal
}

// OrderRepository persists orders. CreateFromCart runs the whole checkout
// write path in one transaction: claim the coupon (if any), insert the order
// and its items, conditionally decrement stock, and clear the cart. Either
// everything commits or nothing does; a lost stock or coupon race surfaces
// as *errors.ErrConflict.
type OrderRepository interface {
	CreateFromCart(ctx context.Context, order *domain.Order, items []CheckoutItem, cartID uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error)
	GetItems(ctx context.Context, orderID uuid.UUID) ([]*domain.OrderItem, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) error
	UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status domain.PaymentStatus) error
}

// AddressRepository manages saved shipping addresses
type AddressRepository interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Address, error)
	GetByID(ctx context.Context, id, userID uuid.UUID) (*domain.Address, error)
	Create(ctx context.Context, address *domain.Address) error
	SetDefault(ctx context.Context, id, userID uuid.UUID) error
	Delete(ctx context.Context, id, userID uuid.UUID) error
}

// Repositories bundles all repository implementations
type Repositories struct {
	User    UserRepository
	Product ProductRepository
	Variant VariantRepository
	Cart    CartRepository
	Coupon  CouponRepository
	Order   OrderRepository
	Address AddressRepository
}
