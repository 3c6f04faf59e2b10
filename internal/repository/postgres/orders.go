package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fashionstore/storefront/internal/domain"
	"github.com/fashionstore/storefront/internal/repository"
	"github.com/fashionstore/storefront/pkg/errors"
)

type orderRepository struct {
	db      *sql.DB
	logger  *zap.Logger
	timeout time.Duration
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *sql.DB, logger *zap.Logger, timeout time.Duration) *orderRepository {
	return &orderRepository{
		db:      db,
		logger:  logger,
		timeout: timeout,
	}
}

// CreateFromCart runs the checkout write path in a single transaction:
// coupon claim, order insert, item inserts, conditional stock decrements,
// cart clear. If any conditional update loses its race the whole
// transaction rolls back and the caller gets *errors.ErrConflict.
func (r *orderRepository) CreateFromCart(ctx context.Context, order *domain.Order, items []repository.CheckoutItem, cartID uuid.UUID) error {
	ctx, cancel := boundedCtx(ctx, r.timeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		r.logger.Error("Failed to begin checkout transaction", zap.Error(err))
		return err
	}
	defer tx.Rollback()

	now := time.Now()
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	order.CreatedAt = now
	order.UpdatedAt = now

	if order.CouponID != nil {
		// Claim the coupon only while it is still active and under its
		// usage cap. Zero rows means a concurrent checkout won the race.
		res, err := tx.ExecContext(ctx, `
			UPDATE coupons
			SET used_count = used_count + 1, updated_at = $2
			WHERE id = $1
			  AND is_active = true
			  AND (max_uses IS NULL OR used_count < max_uses)
		`, *order.CouponID, now)
		if err != nil {
			r.logger.Error("Failed to claim coupon", zap.Error(err))
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return &errors.ErrConflict{Resource: "coupon", Reason: "coupon is no longer available"}
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (id, order_number, user_id, status, payment_status, tracking_number, coupon_id, subtotal, discount_amount, shipping_cost, total_amount, address, phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`,
		order.ID,
		order.OrderNumber,
		order.UserID,
		order.Status,
		order.PaymentStatus,
		order.TrackingNumber,
		order.CouponID,
		order.Subtotal,
		order.DiscountAmount,
		order.ShippingCost,
		order.TotalAmount,
		order.Address,
		order.Phone,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to insert order", zap.Error(err))
		return err
	}

	for _, item := range items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (id, order_id, variant_id, quantity, price, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, uuid.New(), order.ID, item.VariantID, item.Quantity, item.Price, now)
		if err != nil {
			r.logger.Error("Failed to insert order item", zap.Error(err))
			return err
		}

		// Check-and-decrement in one statement so concurrent checkouts
		// cannot both take the last unit. Zero rows means insufficient
		// stock; the order is rejected rather than oversold.
		res, err := tx.ExecContext(ctx, `
			UPDATE product_variants
			SET stock = stock - $2, updated_at = $3
			WHERE id = $1 AND stock >= $2
		`, item.VariantID, item.Quantity, now)
		if err != nil {
			r.logger.Error("Failed to decrement stock", zap.Error(err))
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return &errors.ErrConflict{Resource: "stock", Reason: "insufficient stock for variant " + item.VariantID.String()}
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		r.logger.Error("Failed to clear cart items", zap.Error(err))
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE carts SET coupon_code = '', updated_at = $2 WHERE id = $1`,
		cartID, now,
	); err != nil {
		r.logger.Error("Failed to reset cart coupon", zap.Error(err))
		return err
	}

	if err := tx.Commit(); err != nil {
		r.logger.Error("Failed to commit checkout transaction", zap.Error(err))
		return err
	}

	return nil
}

const orderColumns = `id, order_number, user_id, status, payment_status, tracking_number, coupon_id, subtotal, discount_amount, shipping_cost, total_amount, address, phone, created_at, updated_at`

func scanOrder(row interface{ Scan(...interface{}) error }) (*domain.Order, error) {
	var o domain.Order
	var couponID uuid.NullUUID

	err := row.Scan(
		&o.ID,
		&o.OrderNumber,
		&o.UserID,
		&o.Status,
		&o.PaymentStatus,
		&o.TrackingNumber,
		&couponID,
		&o.Subtotal,
		&o.DiscountAmount,
		&o.ShippingCost,
		&o.TotalAmount,
		&o.Address,
		&o.Phone,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if couponID.Valid {
		o.CouponID = &couponID.UUID
	}

	return &o, nil
}

func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	ctx, cancel := boundedCtx(ctx, r.timeout)
	defer cancel()

	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "order", ID: id.String()}
	}
	if err != nil {
		r.logger.Error("Failed to get order by ID", zap.Error(err))
		return nil, err
	}

	return order, nil
}

func (r *orderRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	ctx, cancel := boundedCtx(ctx, r.timeout)
	defer cancel()

	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		r.logger.Error("Failed to list orders", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			r.logger.Error("Failed to scan order", zap.Error(err))
			return nil, err
		}
		orders = append(orders, order)
	}

	return orders, rows.Err()
}

func (r *orderRepository) GetItems(ctx context.Context, orderID uuid.UUID) ([]*domain.OrderItem, error) {
	ctx, cancel := boundedCtx(ctx, r.timeout)
	defer cancel()

	query := `SELECT id, order_id, variant_id, quantity, price, created_at FROM order_items WHERE order_id = $1 ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		r.logger.Error("Failed to list order items", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var items []*domain.OrderItem
	for rows.Next() {
		var item domain.OrderItem
		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.VariantID,
			&item.Quantity,
			&item.Price,
			&item.CreatedAt,
		)
		if err != nil {
			r.logger.Error("Failed to scan order item", zap.Error(err))
			return nil, err
		}
		items = append(items, &item)
	}

	return items, rows.Err()
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) error {
	ctx, cancel := boundedCtx(ctx, r.timeout)
	defer cancel()

	query := `UPDATE orders SET status = $2, updated_at = $3 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id, status, time.Now())
	if err != nil {
		r.logger.Error("Failed to update order status", zap.Error(err))
		return err
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return &errors.ErrNotFound{Resource: "order", ID: id.String()}
	}

	return nil
}

func (r *orderRepository) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status domain.PaymentStatus) error {
	ctx, cancel := boundedCtx(ctx, r.timeout)
	defer cancel()

	query := `UPDATE orders SET payment_status = $2, updated_at = $3 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id, status, time.Now())
	if err != nil {
		r.logger.Error("Failed to update payment status", zap.Error(err))
		return err
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return &errors.ErrNotFound{Resource: "order", ID: id.String()}
	}

	return nil
}
