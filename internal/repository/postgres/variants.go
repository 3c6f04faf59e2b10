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

type variantRepository struct {
	db      *sql.DB
	logger  *zap.Logger
	timeout time.Duration
}

// NewVariantRepository creates a new product variant repository
func NewVariantRepository(db *sql.DB, logger *zap.Logger, timeout time.Duration) *variantRepository {
	return &variantRepository{
		db:      db,
		logger:  logger,
		timeout: timeout,
	}
}

const variantColumns = `id, product_id, sku, size, color, price, stock, is_active, created_at, updated_at`

func scanVariant(row interface{ Scan(...interface{}) error }) (*domain.ProductVariant, error) {
	var v domain.ProductVariant

	err := row.Scan(
		&v.ID,
		&v.ProductID,
		&v.SKU,
		&v.Size,
		&v.Color,
		&v.Price,
		&v.Stock,
		&v.IsActive,
		&v.CreatedAt,
		&v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &v, nil
}

func (r *variantRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.ProductVariant, error) {
	ctx, cancel := boundedCtx(ctx, r.timeout)
	defer cancel()

	query := `SELECT ` + variantColumns + ` FROM product_variants WHERE id = $1`

	variant, err := scanVariant(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "variant", ID: id.String()}
	}
	if err != nil {
		r.logger.Error("Failed to get variant by ID", zap.Error(err))
		return nil, err
	}

	return variant, nil
}

func (r *variantRepository) GetBySKU(ctx context.Context, sku string) (*domain.ProductVariant, error) {
	ctx, cancel := boundedCtx(ctx, r.timeout)
	defer cancel()

	query := `SELECT ` + variantColumns + ` FROM product_variants WHERE sku = $1`

	variant, err := scanVariant(r.db.QueryRowContext(ctx, query, sku))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "variant", ID: sku}
	}
	if err != nil {
		r.logger.Error("Failed to get variant by SKU", zap.Error(err))
		return nil, err
	}

	return variant, nil
}

func (r *variantRepository) GetByOptions(ctx context.Context, productID uuid.UUID, size, color string) (*domain.ProductVariant, error) {
	ctx, cancel := boundedCtx(ctx, r.timeout)
	defer cancel()

	query := `SELECT ` + variantColumns + ` FROM product_variants WHERE product_id = $1 AND size = $2 AND color = $3`

	variant, err := scanVariant(r.db.QueryRowContext(ctx, query, productID, size, color))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "variant", ID: productID.String() + "/" + size + "/" + color}
	}
	if err != nil {
		r.logger.Error("Failed to get variant by options", zap.Error(err))
		return nil, err
	}

	return variant, nil
}

func (r *variantRepository) ListByProduct(ctx context.Context, productID uuid.UUID) ([]*domain.ProductVariant, error) {
	ctx, cancel := boundedCtx(ctx, r.timeout)
	defer cancel()

	query := `SELECT ` + variantColumns + ` FROM product_variants WHERE product_id = $1 ORDER BY size, color`

	rows, err := r.db.QueryContext(ctx, query, productID)
	if err != nil {
		r.logger.Error("Failed to list variants", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var variants []*domain.ProductVariant
	for rows.Next() {
		variant, err := scanVariant(rows)
		if err != nil {
			r.logger.Error("Failed to scan variant", zap.Error(err))
			return nil, err
		}
		variants = append(variants, variant)
	}

	return variants, rows.Err()
}
