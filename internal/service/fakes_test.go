package service

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/fashionstore/storefront/internal/domain"
	"github.com/fashionstore/storefront/internal/repository"
	"github.com/fashionstore/storefront/pkg/errors"
)

// fakeStore is a mutex-guarded in-memory backend shared by the fake
// repositories. CreateFromCart holds the lock for its whole body, which
// gives it the same all-or-nothing, serialized semantics as the real
// Postgres transaction.
type fakeStore struct {
	mu         sync.Mutex
	users      map[uuid.UUID]*domain.User
	products   map[uuid.UUID]*domain.Product
	variants   map[uuid.UUID]*domain.ProductVariant
	carts      map[uuid.UUID]*domain.Cart // keyed by user ID
	cartItems  map[uuid.UUID]*domain.CartItem
	coupons    map[uuid.UUID]*domain.Coupon
	orders     map[uuid.UUID]*domain.Order
	orderItems map[uuid.UUID][]*domain.OrderItem
	addresses  map[uuid.UUID]*domain.Address
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:      make(map[uuid.UUID]*domain.User),
		products:   make(map[uuid.UUID]*domain.Product),
		variants:   make(map[uuid.UUID]*domain.ProductVariant),
		carts:      make(map[uuid.UUID]*domain.Cart),
		cartItems:  make(map[uuid.UUID]*domain.CartItem),
		coupons:    make(map[uuid.UUID]*domain.Coupon),
		orders:     make(map[uuid.UUID]*domain.Order),
		orderItems: make(map[uuid.UUID][]*domain.OrderItem),
		addresses:  make(map[uuid.UUID]*domain.Address),
	}
}

func newFakeRepositories(store *fakeStore) *repository.Repositories {
	return &repository.Repositories{
		User:    &fakeUserRepo{store},
		Product: &fakeProductRepo{store},
		Variant: &fakeVariantRepo{store},
		Cart:    &fakeCartRepo{store},
		Coupon:  &fakeCouponRepo{store},
		Order:   &fakeOrderRepo{store},
		Address: &fakeAddressRepo{store},
	}
}

type fakeUserRepo struct{ s *fakeStore }

func (r *fakeUserRepo) GetByToken(ctx context.Context, token string) (*domain.User, error) {
	return nil, &errors.ErrUnauthorized{Message: "not supported in fake"}
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	user, ok := r.s.users[id]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "user", ID: id.String()}
	}
	u := *user
	return &u, nil
}

func (r *fakeUserRepo) Create(ctx context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	u := *user
	r.s.users[user.ID] = &u
	return nil
}

type fakeProductRepo struct{ s *fakeStore }

func (r *fakeProductRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	product, ok := r.s.products[id]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "product", ID: id.String()}
	}
	p := *product
	return &p, nil
}

func (r *fakeProductRepo) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, product := range r.s.products {
		if product.Slug == slug {
			p := *product
			return &p, nil
		}
	}
	return nil, &errors.ErrNotFound{Resource: "product", ID: slug}
}

func (r *fakeProductRepo) List(ctx context.Context, activeOnly bool) ([]*domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*domain.Product
	for _, product := range r.s.products {
		if activeOnly && !product.IsActive {
			continue
		}
		p := *product
		out = append(out, &p)
	}
	return out, nil
}

type fakeVariantRepo struct{ s *fakeStore }

func (r *fakeVariantRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.ProductVariant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	variant, ok := r.s.variants[id]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "variant", ID: id.String()}
	}
	v := *variant
	return &v, nil
}

func (r *fakeVariantRepo) GetBySKU(ctx context.Context, sku string) (*domain.ProductVariant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, variant := range r.s.variants {
		if variant.SKU == sku {
			v := *variant
			return &v, nil
		}
	}
	return nil, &errors.ErrNotFound{Resource: "variant", ID: sku}
}

func (r *fakeVariantRepo) GetByOptions(ctx context.Context, productID uuid.UUID, size, color string) (*domain.ProductVariant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, variant := range r.s.variants {
		if variant.ProductID == productID && variant.Size == size && variant.Color == color {
			v := *variant
			return &v, nil
		}
	}
	return nil, &errors.ErrNotFound{Resource: "variant", ID: productID.String()}
}

func (r *fakeVariantRepo) ListByProduct(ctx context.Context, productID uuid.UUID) ([]*domain.ProductVariant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*domain.ProductVariant
	for _, variant := range r.s.variants {
		if variant.ProductID == productID {
			v := *variant
			out = append(out, &v)
		}
	}
	return out, nil
}

type fakeCartRepo struct{ s *fakeStore }

func (r *fakeCartRepo) GetOrCreate(ctx context.Context, userID uuid.UUID) (*domain.Cart, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if cart, ok := r.s.carts[userID]; ok {
		c := *cart
		return &c, nil
	}
	cart := &domain.Cart{ID: uuid.New(), UserID: userID}
	r.s.carts[userID] = cart
	c := *cart
	return &c, nil
}

func (r *fakeCartRepo) GetItems(ctx context.Context, cartID uuid.UUID) ([]*domain.CartItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*domain.CartItem
	for _, item := range r.s.cartItems {
		if item.CartID == cartID {
			i := *item
			out = append(out, &i)
		}
	}
	return out, nil
}

func (r *fakeCartRepo) GetItem(ctx context.Context, itemID uuid.UUID) (*domain.CartItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	item, ok := r.s.cartItems[itemID]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "cart item", ID: itemID.String()}
	}
	i := *item
	return &i, nil
}

func (r *fakeCartRepo) AddItem(ctx context.Context, cartID, variantID uuid.UUID, qty, maxItems int) (*domain.CartItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	total := 0
	var existing *domain.CartItem
	for _, item := range r.s.cartItems {
		if item.CartID == cartID {
			total += item.Quantity
			if item.VariantID == variantID {
				existing = item
			}
		}
	}

	if total+qty > maxItems {
		return nil, &errors.ErrCapacity{Limit: maxItems}
	}

	if existing != nil {
		existing.Quantity += qty
		i := *existing
		return &i, nil
	}

	item := &domain.CartItem{ID: uuid.New(), CartID: cartID, VariantID: variantID, Quantity: qty}
	r.s.cartItems[item.ID] = item
	i := *item
	return &i, nil
}

func (r *fakeCartRepo) SetItemQuantity(ctx context.Context, itemID uuid.UUID, qty int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	item, ok := r.s.cartItems[itemID]
	if !ok {
		return &errors.ErrNotFound{Resource: "cart item", ID: itemID.String()}
	}
	item.Quantity = qty
	return nil
}

func (r *fakeCartRepo) RemoveItem(ctx context.Context, itemID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.cartItems[itemID]; !ok {
		return &errors.ErrNotFound{Resource: "cart item", ID: itemID.String()}
	}
	delete(r.s.cartItems, itemID)
	return nil
}

func (r *fakeCartRepo) SetCouponCode(ctx context.Context, cartID uuid.UUID, code string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, cart := range r.s.carts {
		if cart.ID == cartID {
			cart.CouponCode = code
			return nil
		}
	}
	return &errors.ErrNotFound{Resource: "cart", ID: cartID.String()}
}

func (r *fakeCartRepo) Clear(ctx context.Context, cartID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	clearCartLocked(r.s, cartID)
	return nil
}

func clearCartLocked(s *fakeStore, cartID uuid.UUID) {
	for id, item := range s.cartItems {
		if item.CartID == cartID {
			delete(s.cartItems, id)
		}
	}
	for _, cart := range s.carts {
		if cart.ID == cartID {
			cart.CouponCode = ""
		}
	}
}

type fakeCouponRepo struct{ s *fakeStore }

func (r *fakeCouponRepo) Create(ctx context.Context, coupon *domain.Coupon) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if coupon.ID == uuid.Nil {
		coupon.ID = uuid.New()
	}
	c := *coupon
	r.s.coupons[coupon.ID] = &c
	return nil
}

func (r *fakeCouponRepo) GetByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, coupon := range r.s.coupons {
		if strings.EqualFold(coupon.Code, code) && coupon.IsActive {
			c := *coupon
			return &c, nil
		}
	}
	return nil, &errors.ErrNotFound{Resource: "coupon", ID: code}
}

func (r *fakeCouponRepo) List(ctx context.Context) ([]*domain.Coupon, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*domain.Coupon
	for _, coupon := range r.s.coupons {
		c := *coupon
		out = append(out, &c)
	}
	return out, nil
}

func (r *fakeCouponRepo) Deactivate(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	coupon, ok := r.s.coupons[id]
	if !ok {
		return &errors.ErrNotFound{Resource: "coupon", ID: id.String()}
	}
	coupon.IsActive = false
	return nil
}

type fakeOrderRepo struct{ s *fakeStore }

func (r *fakeOrderRepo) CreateFromCart(ctx context.Context, order *domain.Order, items []repository.CheckoutItem, cartID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	// Validate every conditional update before touching anything, so a
	// failure leaves no partial state, like the real transaction.
	if order.CouponID != nil {
		coupon, ok := r.s.coupons[*order.CouponID]
		if !ok || !coupon.IsActive || (coupon.MaxUses != nil && coupon.UsedCount >= *coupon.MaxUses) {
			return &errors.ErrConflict{Resource: "coupon", Reason: "coupon is no longer available"}
		}
	}
	for _, item := range items {
		variant, ok := r.s.variants[item.VariantID]
		if !ok || variant.Stock < item.Quantity {
			return &errors.ErrConflict{Resource: "stock", Reason: "insufficient stock for variant " + item.VariantID.String()}
		}
	}

	if order.CouponID != nil {
		r.s.coupons[*order.CouponID].UsedCount++
	}
	for _, item := range items {
		r.s.variants[item.VariantID].Stock -= item.Quantity
	}

	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	o := *order
	r.s.orders[order.ID] = &o

	for _, item := range items {
		r.s.orderItems[order.ID] = append(r.s.orderItems[order.ID], &domain.OrderItem{
			ID:        uuid.New(),
			OrderID:   order.ID,
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}

	clearCartLocked(r.s, cartID)
	return nil
}

func (r *fakeOrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	order, ok := r.s.orders[id]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "order", ID: id.String()}
	}
	o := *order
	return &o, nil
}

func (r *fakeOrderRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*domain.Order
	for _, order := range r.s.orders {
		if order.UserID == userID {
			o := *order
			out = append(out, &o)
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) GetItems(ctx context.Context, orderID uuid.UUID) ([]*domain.OrderItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*domain.OrderItem
	for _, item := range r.s.orderItems[orderID] {
		i := *item
		out = append(out, &i)
	}
	return out, nil
}

func (r *fakeOrderRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	order, ok := r.s.orders[id]
	if !ok {
		return &errors.ErrNotFound{Resource: "order", ID: id.String()}
	}
	order.Status = status
	return nil
}

func (r *fakeOrderRepo) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status domain.PaymentStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	order, ok := r.s.orders[id]
	if !ok {
		return &errors.ErrNotFound{Resource: "order", ID: id.String()}
	}
	order.PaymentStatus = status
	return nil
}

type fakeAddressRepo struct{ s *fakeStore }

func (r *fakeAddressRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Address, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*domain.Address
	for _, address := range r.s.addresses {
		if address.UserID == userID {
			a := *address
			if a.IsDefault {
				out = append([]*domain.Address{&a}, out...)
			} else {
				out = append(out, &a)
			}
		}
	}
	return out, nil
}

func (r *fakeAddressRepo) GetByID(ctx context.Context, id, userID uuid.UUID) (*domain.Address, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	address, ok := r.s.addresses[id]
	if !ok || address.UserID != userID {
		return nil, &errors.ErrNotFound{Resource: "address", ID: id.String()}
	}
	a := *address
	return &a, nil
}

func (r *fakeAddressRepo) Create(ctx context.Context, address *domain.Address) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if address.ID == uuid.Nil {
		address.ID = uuid.New()
	}
	a := *address
	r.s.addresses[address.ID] = &a
	return nil
}

func (r *fakeAddressRepo) SetDefault(ctx context.Context, id, userID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	address, ok := r.s.addresses[id]
	if !ok || address.UserID != userID {
		return &errors.ErrNotFound{Resource: "address", ID: id.String()}
	}
	for _, other := range r.s.addresses {
		if other.UserID == userID {
			other.IsDefault = other.ID == id
		}
	}
	return nil
}

func (r *fakeAddressRepo) Delete(ctx context.Context, id, userID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	address, ok := r.s.addresses[id]
	if !ok || address.UserID != userID {
		return &errors.ErrNotFound{Resource: "address", ID: id.String()}
	}
	delete(r.s.addresses, id)
	return nil
}
