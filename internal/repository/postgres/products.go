package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fashionstore/storefront/internal/domain"
	"github.com/fashionstore/storefront/pkg/errors"
)

type productRepository struct {
	db      *sql.DB
	logger  *zap.Logger
	timeout time.Duration
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *sql.DB, logger *zap.Logger, timeout time.Duration) *productRepository {
	return &productRepository{
		db:      db,
		logger:  logger,
		timeout: timeout,
	}
}

const productColumns = `id, name, slug, base_price, sale_price, is_active, created_at, updated_at`

func scanProduct(row interface{ Scan(...interface{}) error }) (*domain.Product, error) {
	var p domain.Product
	var salePrice sql.NullString

	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Slug,
		&p.BasePrice,
		&salePrice,
		&p.IsActive,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if salePrice.Valid {
		d, err := decimal.NewFromString(salePrice.String)
		if err != nil {
			return nil, err
		}
		p.SalePrice = &d
	}

	return &p, nil
}

func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	ctx, cancel := boundedCtx(ctx, r.timeout)
	defer cancel()

	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "product", ID: id.String()}
	}
	if err != nil {
		r.logger.Error("Failed to get product by ID", zap.Error(err))
		return nil, err
	}

	return product, nil
}

func (r *productRepository) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	ctx, cancel := boundedCtx(ctx, r.timeout)
	defer cancel()

	query := `SELECT ` + productColumns + ` FROM products WHERE slug = $1`

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, slug))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "product", ID: slug}
	}
	if err != nil {
		r.logger.Error("Failed to get product by slug", zap.Error(err))
		return nil, err
	}

	return product, nil
}

func (r *productRepository) List(ctx context.Context, activeOnly bool) ([]*domain.Product, error) {
	ctx, cancel := boundedCtx(ctx, r.timeout)
	defer cancel()

	query := `SELECT ` + productColumns + ` FROM products`
	if activeOnly {
		query += ` WHERE is_active = true`
	}
	query += ` ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list products", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var products []*domain.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			r.logger.Error("Failed to scan product", zap.Error(err))
			return nil, err
		}
		products = append(products, product)
	}

	return products, rows.Err()
}
