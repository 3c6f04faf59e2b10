package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/fashionstore/storefront/internal/domain"
	"github.com/fashionstore/storefront/pkg/errors"
)

type userRepository struct {
	db      *sql.DB
	logger  *zap.Logger
	timeout time.Duration
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sql.DB, logger *zap.Logger, timeout time.Duration) *userRepository {
	return &userRepository{
		db:      db,
		logger:  logger,
		timeout: timeout,
	}
}

func (r *userRepository) GetByToken(ctx context.Context, token string) (*domain.User, error) {
	// Bcrypt hashes are salted, so there is no direct lookup; iterate over
	// active accounts and verify the token against each hash. For larger
	// user counts add a SHA256 lookup_hash column.
	ctx, cancel := boundedCtx(ctx, r.timeout)
	defer cancel()

	query := `
		SELECT id, email, token_hash, is_active, created_at, updated_at
		FROM users
		WHERE is_active = true
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to query users", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var user domain.User

		err := rows.Scan(
			&user.ID,
			&user.Email,
			&user.TokenHash,
			&user.IsActive,
			&user.CreatedAt,
			&user.UpdatedAt,
		)
		if err != nil {
			continue
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.TokenHash), []byte(token)); err == nil {
			return &user, nil
		}
	}

	return nil, &errors.ErrUnauthorized{Message: "invalid API token"}
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	ctx, cancel := boundedCtx(ctx, r.timeout)
	defer cancel()

	query := `
		SELECT id, email, token_hash, is_active, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	var user domain.User

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.Email,
		&user.TokenHash,
		&user.IsActive,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "user", ID: id.String()}
	}
	if err != nil {
		r.logger.Error("Failed to get user by ID", zap.Error(err))
		return nil, err
	}

	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	ctx, cancel := boundedCtx(ctx, r.timeout)
	defer cancel()

	query := `
		INSERT INTO users (id, email, token_hash, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	now := time.Now()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = now
	}

	_, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.TokenHash,
		user.IsActive,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		r.logger.Error("Failed to create user", zap.Error(err))
		return err
	}

	return nil
}
