package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/fashionstore/storefront/internal/config"
	"github.com/fashionstore/storefront/internal/repository"
)

// NewConnection opens a Postgres connection pool
func NewConnection(cfg config.DatabaseConfig) (*sql.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// NewRepositories creates all Postgres-backed repositories. queryTimeout
// bounds every statement so a stuck database fails the request visibly
// instead of hanging it.
func NewRepositories(db *sql.DB, logger *zap.Logger, queryTimeout time.Duration) *repository.Repositories {
	return &repository.Repositories{
		User:    NewUserRepository(db, logger, queryTimeout),
		Product: NewProductRepository(db, logger, queryTimeout),
		Variant: NewVariantRepository(db, logger, queryTimeout),
		Cart:    NewCartRepository(db, logger, queryTimeout),
		Coupon:  NewCouponRepository(db, logger, queryTimeout),
		Order:   NewOrderRepository(db, logger, queryTimeout),
		Address: NewAddressRepository(db, logger, queryTimeout),
	}
}

func boundedCtx(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}
