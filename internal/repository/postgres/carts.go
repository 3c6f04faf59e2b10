package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fashionstore/storefront/internal/domain"
	"github.com/fashionstore/storefront/pkg/errors"
)

type cartRepository struct {
	db      *sql.DB
	logger  *zap.Logger
	timeout time.Duration
}

// NewCartRepository creates a new cart repository
func NewCartRepository(db *sql.DB, logger *zap.Logger, timeout time.Duration) *cartRepository {
	return &cartRepository{
		db:      db,
		logger:  logger,
		timeout: timeout,
	}
}

func (r *cartRepository) GetOrCreate(ctx context.Context, userID uuid.UUID) (*domain.Cart, error) {
	ctx, cancel := boundedCtx(ctx, r.timeout)
	defer cancel()

	// Upsert against the unique user_id constraint. The no-op DO UPDATE
	// lets RETURNING yield the existing row on conflict.
	query := `
		INSERT INTO carts (id, user_id, coupon_code, created_at, updated_at)
		VALUES ($1, $2, '', $3, $3)
		ON CONFLICT (user_id) DO UPDATE SET updated_at = carts.updated_at
		RETURNING id, user_id, coupon_code, created_at, updated_at
	`

	var cart domain.Cart
	err := r.db.QueryRowContext(ctx, query, uuid.New(), userID, time.Now()).Scan(
		&cart.ID,
		&cart.UserID,
		&cart.CouponCode,
		&cart.CreatedAt,
		&cart.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to get or create cart", zap.Error(err))
		return nil, err
	}

	return &cart, nil
}

const cartItemColumns = `id, cart_id, variant_id, quantity, created_at, updated_at`

func scanCartItem(row interface{ Scan(...interface{}) error }) (*domain.CartItem, error) {
	var item domain.CartItem

	err := row.Scan(
		&item.ID,
		&item.CartID,
		&item.VariantID,
		&item.Quantity,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &item, nil
}

func (r *cartRepository) GetItems(ctx context.Context, cartID uuid.UUID) ([]*domain.CartItem, error) {
	ctx, cancel := boundedCtx(ctx, r.timeout)
	defer cancel()

	query := `SELECT ` + cartItemColumns + ` FROM cart_items WHERE cart_id = $1 ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query, cartID)
	if err != nil {
		r.logger.Error("Failed to list cart items", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var items []*domain.CartItem
	for rows.Next() {
		item, err := scanCartItem(rows)
		if err != nil {
			r.logger.Error("Failed to scan cart item", zap.Error(err))
			return nil, err
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

func (r *cartRepository) GetItem(ctx context.Context, itemID uuid.UUID) (*domain.CartItem, error) {
	ctx, cancel := boundedCtx(ctx, r.timeout)
	defer cancel()

	query := `SELECT ` + cartItemColumns + ` FROM cart_items WHERE id = $1`

	item, err := scanCartItem(r.db.QueryRowContext(ctx, query, itemID))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "cart item", ID: itemID.String()}
	}
	if err != nil {
		r.logger.Error("Failed to get cart item", zap.Error(err))
		return nil, err
	}

	return item, nil
}

func (r *cartRepository) AddItem(ctx context.Context, cartID, variantID uuid.UUID, qty, maxItems int) (*domain.CartItem, error) {
	ctx, cancel := boundedCtx(ctx, r.timeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		r.logger.Error("Failed to begin add transaction", zap.Error(err))
		return nil, err
	}
	defer tx.Rollback()

	// Serialize the capacity check against concurrent adds (double-submit)
	// by locking the cart row for the duration of the transaction.
	var lockedID uuid.UUID
	err = tx.QueryRowContext(ctx, `SELECT id FROM carts WHERE id = $1 FOR UPDATE`, cartID).Scan(&lockedID)
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "cart", ID: cartID.String()}
	}
	if err != nil {
		r.logger.Error("Failed to lock cart", zap.Error(err))
		return nil, err
	}

	var currentTotal int
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(quantity), 0) FROM cart_items WHERE cart_id = $1`,
		cartID,
	).Scan(&currentTotal)
	if err != nil {
		r.logger.Error("Failed to sum cart quantities", zap.Error(err))
		return nil, err
	}

	if currentTotal+qty > maxItems {
		return nil, &errors.ErrCapacity{Limit: maxItems}
	}

	query := `
		INSERT INTO cart_items (id, cart_id, variant_id, quantity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (cart_id, variant_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity, updated_at = EXCLUDED.updated_at
		RETURNING ` + cartItemColumns

	item, err := scanCartItem(tx.QueryRowContext(ctx, query, uuid.New(), cartID, variantID, qty, time.Now()))
	if err != nil {
		r.logger.Error("Failed to upsert cart item", zap.Error(err))
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		r.logger.Error("Failed to commit add transaction", zap.Error(err))
		return nil, err
	}

	return item, nil
}

func (r *cartRepository) SetItemQuantity(ctx context.Context, itemID uuid.UUID, qty int) error {
	ctx, cancel := boundedCtx(ctx, r.timeout)
	defer cancel()

	query := `UPDATE cart_items SET quantity = $2, updated_at = $3 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, itemID, qty, time.Now())
	if err != nil {
		r.logger.Error("Failed to update cart item quantity", zap.Error(err))
		return err
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return &errors.ErrNotFound{Resource: "cart item", ID: itemID.String()}
	}

	return nil
}

func (r *cartRepository) RemoveItem(ctx context.Context, itemID uuid.UUID) error {
	ctx, cancel := boundedCtx(ctx, r.timeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE id = $1`, itemID)
	if err != nil {
		r.logger.Error("Failed to remove cart item", zap.Error(err))
		return err
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return &errors.ErrNotFound{Resource: "cart item", ID: itemID.String()}
	}

	return nil
}

func (r *cartRepository) SetCouponCode(ctx context.Context, cartID uuid.UUID, code string) error {
	ctx, cancel := boundedCtx(ctx, r.timeout)
	defer cancel()

	query := `UPDATE carts SET coupon_code = $2, updated_at = $3 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, cartID, code, time.Now())
	if err != nil {
		r.logger.Error("Failed to set coupon code", zap.Error(err))
		return err
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return &errors.ErrNotFound{Resource: "cart", ID: cartID.String()}
	}

	return nil
}

func (r *cartRepository) Clear(ctx context.Context, cartID uuid.UUID) error {
	ctx, cancel := boundedCtx(ctx, r.timeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		r.logger.Error("Failed to begin clear transaction", zap.Error(err))
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		r.logger.Error("Failed to delete cart items", zap.Error(err))
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE carts SET coupon_code = '', updated_at = $2 WHERE id = $1`,
		cartID, time.Now(),
	); err != nil {
		r.logger.Error("Failed to reset coupon code", zap.Error(err))
		return err
	}

	return tx.Commit()
}
