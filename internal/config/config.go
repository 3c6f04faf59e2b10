package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type Config struct {
	Port        string
	Environment string
	Database    DatabaseConfig
	Cart        CartConfig
	Shipping    ShippingConfig
	LogLevel    string
}

type DatabaseConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	DBName       string
	SSLMode      string
	QueryTimeout time.Duration
}

type CartConfig struct {
	// MaxItems is the ceiling on the summed quantity across all line
	// items in a single cart.
	MaxItems int
}

type ShippingConfig struct {
	FlatRate decimal.Decimal
}

func Load() (*Config, error) {
	viper.SetConfigType("env")
	viper.SetConfigName(".env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("DB_QUERY_TIMEOUT", "5s")
	viper.SetDefault("CART_MAX_ITEMS", "2")
	viper.SetDefault("SHIPPING_FLAT_RATE", "0")
	viper.SetDefault("LOG_LEVEL", "info")

	// Read from environment variables
	viper.AutomaticEnv()

	// Try to read .env file (optional)
	if err := viper.ReadInConfig(); err != nil {
		// It's okay if .env doesn't exist, we'll use env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	queryTimeout, err := time.ParseDuration(getEnvOrViper("DB_QUERY_TIMEOUT", "5s"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_QUERY_TIMEOUT: %w", err)
	}

	maxItems, err := strconv.Atoi(getEnvOrViper("CART_MAX_ITEMS", "2"))
	if err != nil || maxItems < 1 {
		return nil, fmt.Errorf("CART_MAX_ITEMS must be a positive integer")
	}

	flatRate, err := decimal.NewFromString(getEnvOrViper("SHIPPING_FLAT_RATE", "0"))
	if err != nil || flatRate.IsNegative() {
		return nil, fmt.Errorf("SHIPPING_FLAT_RATE must be a non-negative decimal")
	}

	cfg := &Config{
		Port:        getEnvOrViper("PORT", "8080"),
		Environment: getEnvOrViper("ENVIRONMENT", "development"),
		Database: DatabaseConfig{
			Host:         getEnvOrViper("DB_HOST", "localhost"),
			Port:         getEnvOrViper("DB_PORT", "5432"),
			User:         getEnvOrViper("DB_USER", "postgres"),
			Password:     getEnvOrViper("DB_PASSWORD", "postgres"),
			DBName:       getEnvOrViper("DB_NAME", "storefront"),
			SSLMode:      getEnvOrViper("DB_SSLMODE", "disable"),
			QueryTimeout: queryTimeout,
		},
		Cart: CartConfig{
			MaxItems: maxItems,
		},
		Shipping: ShippingConfig{
			FlatRate: flatRate,
		},
		LogLevel: getEnvOrViper("LOG_LEVEL", "info"),
	}

	return cfg, nil
}

func getEnvOrViper(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	return defaultValue
}
