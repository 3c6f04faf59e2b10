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

type addressRepository struct {
	db      *sql.DB
	logger  *zap.Logger
	timeout time.Duration
}

// NewAddressRepository creates a new address repository
func NewAddressRepository(db *sql.DB, logger *zap.Logger, timeout time.Duration) *addressRepository {
	return &addressRepository{
		db:      db,
		logger:  logger,
		timeout: timeout,
	}
}

const addressColumns = `id, user_id, line, city, state, postal_code, country, phone, is_default, created_at, updated_at`

func scanAddress(row interface{ Scan(...interface{}) error }) (*domain.Address, error) {
	var a domain.Address

	err := row.Scan(
		&a.ID,
		&a.UserID,
		&a.Line,
		&a.City,
		&a.State,
		&a.PostalCode,
		&a.Country,
		&a.Phone,
		&a.IsDefault,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &a, nil
}

func (r *addressRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Address, error) {
	ctx, cancel := boundedCtx(ctx, r.timeout)
	defer cancel()

	query := `SELECT ` + addressColumns + ` FROM addresses WHERE user_id = $1 ORDER BY is_default DESC, created_at`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		r.logger.Error("Failed to list addresses", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var addresses []*domain.Address
	for rows.Next() {
		address, err := scanAddress(rows)
		if err != nil {
			r.logger.Error("Failed to scan address", zap.Error(err))
			return nil, err
		}
		addresses = append(addresses, address)
	}

	return addresses, rows.Err()
}

func (r *addressRepository) GetByID(ctx context.Context, id, userID uuid.UUID) (*domain.Address, error) {
	ctx, cancel := boundedCtx(ctx, r.timeout)
	defer cancel()

	query := `SELECT ` + addressColumns + ` FROM addresses WHERE id = $1 AND user_id = $2`

	address, err := scanAddress(r.db.QueryRowContext(ctx, query, id, userID))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "address", ID: id.String()}
	}
	if err != nil {
		r.logger.Error("Failed to get address", zap.Error(err))
		return nil, err
	}

	return address, nil
}

func (r *addressRepository) Create(ctx context.Context, address *domain.Address) error {
	ctx, cancel := boundedCtx(ctx, r.timeout)
	defer cancel()

	query := `
		INSERT INTO addresses (id, user_id, line, city, state, postal_code, country, phone, is_default, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	now := time.Now()
	if address.ID == uuid.Nil {
		address.ID = uuid.New()
	}
	if address.CreatedAt.IsZero() {
		address.CreatedAt = now
	}
	if address.UpdatedAt.IsZero() {
		address.UpdatedAt = now
	}

	_, err := r.db.ExecContext(ctx, query,
		address.ID,
		address.UserID,
		address.Line,
		address.City,
		address.State,
		address.PostalCode,
		address.Country,
		address.Phone,
		address.IsDefault,
		address.CreatedAt,
		address.UpdatedAt,
	)

	if err != nil {
		r.logger.Error("Failed to create address", zap.Error(err))
		return err
	}

	return nil
}

func (r *addressRepository) SetDefault(ctx context.Context, id, userID uuid.UUID) error {
	ctx, cancel := boundedCtx(ctx, r.timeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		r.logger.Error("Failed to begin transaction", zap.Error(err))
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE addresses SET is_default = true, updated_at = $3
		WHERE id = $1 AND user_id = $2
	`, id, userID, time.Now())
	if err != nil {
		r.logger.Error("Failed to set default address", zap.Error(err))
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &errors.ErrNotFound{Resource: "address", ID: id.String()}
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE addresses SET is_default = false
		WHERE user_id = $1 AND id <> $2 AND is_default = true
	`, userID, id)
	if err != nil {
		r.logger.Error("Failed to clear previous default address", zap.Error(err))
		return err
	}

	return tx.Commit()
}

func (r *addressRepository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	ctx, cancel := boundedCtx(ctx, r.timeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM addresses WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		r.logger.Error("Failed to delete address", zap.Error(err))
		return err
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return &errors.ErrNotFound{Resource: "address", ID: id.String()}
	}

	return nil
}
