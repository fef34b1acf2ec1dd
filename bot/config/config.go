// Package config holds the application configuration layered on top of the
// reusable core configuration.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	coreconfig "github.com/binarybrigade/printbot/core/config"
	coredatabase "github.com/binarybrigade/printbot/core/database"
)

// PricingConfig controls how the recommended order cost is derived.
type PricingConfig struct {
	// UnitRate is the price charged per gram of material.
	UnitRate decimal.Decimal `yaml:"unit_rate" envconfig:"PRICING_UNIT_RATE"`
}

// OrdersConfig tunes the unpaid order sweeper.
type OrdersConfig struct {
	SweepMaxAgeDays    int `yaml:"sweep_max_age_days" envconfig:"ORDERS_SWEEP_MAX_AGE_DAYS"`
	SweepIntervalHours int `yaml:"sweep_interval_hours" envconfig:"ORDERS_SWEEP_INTERVAL_HOURS"`
}

// PaymentConfig holds provider credentials for generating payment links.
// Leaving ShopID empty disables the payment commands.
type PaymentConfig struct {
	ShopID    string `yaml:"shop_id" envconfig:"PAYMENT_SHOP_ID"`
	SecretKey string `yaml:"secret_key" envconfig:"PAYMENT_SECRET_KEY"`
	APIURL    string `yaml:"api_url" envconfig:"PAYMENT_API_URL"`
	ReturnURL string `yaml:"return_url" envconfig:"PAYMENT_RETURN_URL"`
	Currency  string `yaml:"currency" envconfig:"PAYMENT_CURRENCY"`
}

// ReportsConfig controls where spreadsheet exports are written.
type ReportsConfig struct {
	Dir string `yaml:"dir" envconfig:"REPORTS_DIR"`
}

// Config is the full application configuration.
type Config struct {
	Core     coreconfig.Config   `yaml:",inline"`
	Database coredatabase.Config `yaml:"database"`
	Pricing  PricingConfig       `yaml:"pricing"`
	Orders   OrdersConfig        `yaml:"orders"`
	Payment  PaymentConfig       `yaml:"payment"`
	Reports  ReportsConfig       `yaml:"reports"`
}

// CoreConfig exposes the embedded core configuration for the shared runner.
func (c *Config) CoreConfig() *coreconfig.Config {
	return &c.Core
}

// Load reads configuration from a YAML file and environment variables.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize validates app-level fields and fills defaults, then delegates to
// the core normalizer.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}

	if err := coreconfig.Normalize(&cfg.Core); err != nil {
		return err
	}

	driver := strings.ToLower(strings.TrimSpace(cfg.Database.Driver))
	switch driver {
	case "", coredatabase.DriverSQLite:
		if strings.TrimSpace(cfg.Database.Path) == "" {
			cfg.Database.Path = "printbot.db"
		}
	case coredatabase.DriverPostgres:
		if cfg.Database.Host == "" || cfg.Database.Name == "" {
			return fmt.Errorf("database.host and database.name are required for the postgres driver")
		}
	default:
		return fmt.Errorf("invalid database.driver %q; allowed: sqlite, postgres", cfg.Database.Driver)
	}

	if cfg.Pricing.UnitRate.IsZero() {
		cfg.Pricing.UnitRate = decimal.NewFromInt(7)
	}
	if cfg.Pricing.UnitRate.IsNegative() {
		return fmt.Errorf("pricing.unit_rate must be positive")
	}

	if cfg.Orders.SweepMaxAgeDays == 0 {
		cfg.Orders.SweepMaxAgeDays = 10
	}
	if cfg.Orders.SweepMaxAgeDays < 0 {
		return fmt.Errorf("orders.sweep_max_age_days must be >= 0")
	}
	if cfg.Orders.SweepIntervalHours == 0 {
		cfg.Orders.SweepIntervalHours = 24
	}
	if cfg.Orders.SweepIntervalHours < 0 {
		return fmt.Errorf("orders.sweep_interval_hours must be >= 0")
	}

	if cfg.Payment.ShopID != "" {
		if cfg.Payment.SecretKey == "" {
			return fmt.Errorf("payment.secret_key is required when payment.shop_id is set")
		}
		if cfg.Payment.APIURL == "" {
			cfg.Payment.APIURL = "https://api.yookassa.ru/v3/payments"
		}
		if cfg.Payment.Currency == "" {
			cfg.Payment.Currency = "RUB"
		}
	}

	if cfg.Reports.Dir == "" {
		cfg.Reports.Dir = "reports"
	}
	return nil
}
