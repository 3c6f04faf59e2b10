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

type couponRepository struct {
	db      *sql.DB
	logger  *zap.Logger
	timeout time.Duration
}

// NewCouponRepository creates a new coupon repository
func NewCouponRepository(db *sql.DB, logger *zap.Logger, timeout time.Duration) *couponRepository {
	return &couponRepository{
		db:      db,
		logger:  logger,
		timeout: timeout,
	}
}

const couponColumns = `id, code, name, kind, percent, amount, min_order_amount, max_uses, used_count, is_active, valid_from, valid_until, created_at, updated_at`

func scanCoupon(row interface{ Scan(...interface{}) error }) (*domain.Coupon, error) {
	var c domain.Coupon
	var maxUses sql.NullInt64
	var validFrom, validUntil sql.NullTime

	err := row.Scan(
		&c.ID,
		&c.Code,
		&c.Name,
		&c.Kind,
		&c.Percent,
		&c.Amount,
		&c.MinOrderAmount,
		&maxUses,
		&c.UsedCount,
		&c.IsActive,
		&validFrom,
		&validUntil,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if maxUses.Valid {
		n := int(maxUses.Int64)
		c.MaxUses = &n
	}
	if validFrom.Valid {
		c.ValidFrom = &validFrom.Time
	}
	if validUntil.Valid {
		c.ValidUntil = &validUntil.Time
	}

	return &c, nil
}

func (r *couponRepository) Create(ctx context.Context, coupon *domain.Coupon) error {
	ctx, cancel := boundedCtx(ctx, r.timeout)
	defer cancel()

	query := `
		INSERT INTO coupons (id, code, name, kind, percent, amount, min_order_amount, max_uses, used_count, is_active, valid_from, valid_until, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	now := time.Now()
	if coupon.ID == uuid.Nil {
		coupon.ID = uuid.New()
	}
	if coupon.CreatedAt.IsZero() {
		coupon.CreatedAt = now
	}
	if coupon.UpdatedAt.IsZero() {
		coupon.UpdatedAt = now
	}

	var maxUses interface{}
	if coupon.MaxUses != nil {
		maxUses = *coupon.MaxUses
	}

	_, err := r.db.ExecContext(ctx, query,
		coupon.ID,
		coupon.Code,
		coupon.Name,
		coupon.Kind,
		coupon.Percent,
		coupon.Amount,
		coupon.MinOrderAmount,
		maxUses,
		coupon.UsedCount,
		coupon.IsActive,
		coupon.ValidFrom,
		coupon.ValidUntil,
		coupon.CreatedAt,
		coupon.UpdatedAt,
	)

	if err != nil {
		r.logger.Error("Failed to create coupon", zap.Error(err))
		return err
	}

	return nil
}

func (r *couponRepository) GetByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	ctx, cancel := boundedCtx(ctx, r.timeout)
	defer cancel()

	query := `SELECT ` + couponColumns + ` FROM coupons WHERE lower(code) = lower($1) AND is_active = true`

	coupon, err := scanCoupon(r.db.QueryRowContext(ctx, query, code))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "coupon", ID: code}
	}
	if err != nil {
		r.logger.Error("Failed to get coupon by code", zap.Error(err))
		return nil, err
	}

	return coupon, nil
}

func (r *couponRepository) List(ctx context.Context) ([]*domain.Coupon, error) {
	ctx, cancel := boundedCtx(ctx, r.timeout)
	defer cancel()

	query := `SELECT ` + couponColumns + ` FROM coupons ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list coupons", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var coupons []*domain.Coupon
	for rows.Next() {
		coupon, err := scanCoupon(rows)
		if err != nil {
			r.logger.Error("Failed to scan coupon", zap.Error(err))
			return nil, err
		}
		coupons = append(coupons, coupon)
	}

	return coupons, rows.Err()
}

func (r *couponRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := boundedCtx(ctx, r.timeout)
	defer cancel()

	query := `UPDATE coupons SET is_active = false, updated_at = $2 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id, time.Now())
	if err != nil {
		r.logger.Error("Failed to deactivate coupon", zap.Error(err))
		return err
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return &errors.ErrNotFound{Resource: "coupon", ID: id.String()}
	}

	return nil
}
