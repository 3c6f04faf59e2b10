package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/fashionstore/storefront/internal/config"
	"github.com/fashionstore/storefront/internal/domain"
	"github.com/fashionstore/storefront/internal/repository/postgres"
	"github.com/google/uuid"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage:")
		fmt.Println("  go run cmd/find-variant/main.go <sku>")
		fmt.Println("  go run cmd/find-variant/main.go <product-id> <size> <color>")
		os.Exit(1)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	// Connect to database
	db, err := postgres.NewConnection(cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	repos := postgres.NewRepositories(db, logger, cfg.Database.QueryTimeout)
	ctx := context.Background()

	var variant *domain.ProductVariant
	if len(os.Args) >= 4 {
		productID, err := uuid.Parse(os.Args[1])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid product ID: %v\n", err)
			os.Exit(1)
		}
		variant, err = repos.Variant.GetByOptions(ctx, productID, os.Args[2], os.Args[3])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Lookup failed: %v\n", err)
			os.Exit(1)
		}
	} else {
		variant, err = repos.Variant.GetBySKU(ctx, os.Args[1])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Lookup failed: %v\n", err)
			os.Exit(1)
		}
	}

	fmt.Printf("Variant ID: %s\n", variant.ID.String())
	fmt.Printf("Product ID: %s\n", variant.ProductID.String())
	fmt.Printf("SKU: %s\n", variant.SKU)
	fmt.Printf("Size/Color: %s / %s\n", variant.Size, variant.Color)
	fmt.Printf("Price: %s\n", variant.Price.StringFixed(2))
	fmt.Printf("Stock: %d\n", variant.Stock)
	fmt.Printf("Active: %v\n", variant.IsActive)
}
