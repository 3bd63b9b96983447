package config

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all configuration for our application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Business  BusinessConfig  `mapstructure:"business"`
	Health    HealthConfig    `mapstructure:"health"`
}

type ServerConfig struct {
	Port string `mapstructure:"SERVER_PORT"`
	Host string `mapstructure:"SERVER_HOST"`
	Env  string `mapstructure:"ENV"`
}

type DatabaseConfig struct {
	URL             string `mapstructure:"DATABASE_URL"`
	MaxOpenConns    int    `mapstructure:"DATABASE_MAX_OPEN_CONNS"`
	MaxIdleConns    int    `mapstructure:"DATABASE_MAX_IDLE_CONNS"`
	ConnMaxLifetime string `mapstructure:"DATABASE_CONN_MAX_LIFETIME"`
}

type RedisConfig struct {
	Host     string `mapstructure:"REDIS_HOST"`
	Port     string `mapstructure:"REDIS_PORT"`
	Password string `mapstructure:"REDIS_PASSWORD"`
	DB       int    `mapstructure:"REDIS_DB"`
}

type SchedulerConfig struct {
	OverdueSpec string `mapstructure:"SCHEDULER_OVERDUE_SPEC"`
	Timezone    string `mapstructure:"SCHEDULER_TIMEZONE"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"LOG_LEVEL"`
	Format string `mapstructure:"LOG_FORMAT"`
}

type BusinessConfig struct {
	InstallmentInterestRate string `mapstructure:"INSTALLMENT_INTEREST_RATE"`
	MinInstallments         int    `mapstructure:"MIN_INSTALLMENTS"`
	MaxInstallments         int    `mapstructure:"MAX_INSTALLMENTS"`
	MaxDepositPerOperation  string `mapstructure:"MAX_DEPOSIT_PER_OPERATION"`
	MaxTransferPerOperation string `mapstructure:"MAX_TRANSFER_PER_OPERATION"`
	LoanLeverageMultiple    string `mapstructure:"LOAN_LEVERAGE_MULTIPLE"`
	PaymentCapacityRatio    string `mapstructure:"PAYMENT_CAPACITY_RATIO"`
	InstallmentPeriodMonths int    `mapstructure:"INSTALLMENT_PERIOD_MONTHS"`
	LoanCacheTTL            string `mapstructure:"LOAN_CACHE_TTL"`
}

type HealthConfig struct {
	Timeout string `mapstructure:"HEALTH_CHECK_TIMEOUT"`
}

// Load reads configuration from environment variables and files
func Load() (*Config, error) {
	// Set defaults
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "json")
	viper.SetDefault("DATABASE_MAX_OPEN_CONNS", 25)
	viper.SetDefault("DATABASE_MAX_IDLE_CONNS", 5)
	viper.SetDefault("DATABASE_CONN_MAX_LIFETIME", "30m")
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("INSTALLMENT_INTEREST_RATE", "0.015")
	viper.SetDefault("MIN_INSTALLMENTS", 1)
	viper.SetDefault("MAX_INSTALLMENTS", 6)
	viper.SetDefault("MAX_DEPOSIT_PER_OPERATION", "50000")
	viper.SetDefault("MAX_TRANSFER_PER_OPERATION", "20000")
	viper.SetDefault("LOAN_LEVERAGE_MULTIPLE", "5")
	viper.SetDefault("PAYMENT_CAPACITY_RATIO", "0.7")
	viper.SetDefault("INSTALLMENT_PERIOD_MONTHS", 1)
	viper.SetDefault("LOAN_CACHE_TTL", "24h")
	viper.SetDefault("SCHEDULER_OVERDUE_SPEC", "0 0 0 * * *")
	viper.SetDefault("SCHEDULER_TIMEZONE", "America/Lima")
	viper.SetDefault("HEALTH_CHECK_TIMEOUT", "5s")

	viper.SetDefault("DATABASE_URL", "")
	viper.SetDefault("REDIS_PASSWORD", "")

	// Read from environment variables
	viper.AutomaticEnv()

	// Try to read from .env file (optional)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./deployments")

	// Don't fail if .env file doesn't exist
	_ = viper.ReadInConfig()

	config := Config{
		Server: ServerConfig{
			Port: viper.GetString("SERVER_PORT"),
			Host: viper.GetString("SERVER_HOST"),
			Env:  viper.GetString("ENV"),
		},
		Database: DatabaseConfig{
			URL:             viper.GetString("DATABASE_URL"),
			MaxOpenConns:    viper.GetInt("DATABASE_MAX_OPEN_CONNS"),
			MaxIdleConns:    viper.GetInt("DATABASE_MAX_IDLE_CONNS"),
			ConnMaxLifetime: viper.GetString("DATABASE_CONN_MAX_LIFETIME"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Scheduler: SchedulerConfig{
			OverdueSpec: viper.GetString("SCHEDULER_OVERDUE_SPEC"),
			Timezone:    viper.GetString("SCHEDULER_TIMEZONE"),
		},
		Logging: LoggingConfig{
			Level:  viper.GetString("LOG_LEVEL"),
			Format: viper.GetString("LOG_FORMAT"),
		},
		Business: BusinessConfig{
			InstallmentInterestRate: viper.GetString("INSTALLMENT_INTEREST_RATE"),
			MinInstallments:         viper.GetInt("MIN_INSTALLMENTS"),
			MaxInstallments:         viper.GetInt("MAX_INSTALLMENTS"),
			MaxDepositPerOperation:  viper.GetString("MAX_DEPOSIT_PER_OPERATION"),
			MaxTransferPerOperation: viper.GetString("MAX_TRANSFER_PER_OPERATION"),
			LoanLeverageMultiple:    viper.GetString("LOAN_LEVERAGE_MULTIPLE"),
			PaymentCapacityRatio:    viper.GetString("PAYMENT_CAPACITY_RATIO"),
			InstallmentPeriodMonths: viper.GetInt("INSTALLMENT_PERIOD_MONTHS"),
			LoanCacheTTL:            viper.GetString("LOAN_CACHE_TTL"),
		},
		Health: HealthConfig{
			Timeout: viper.GetString("HEALTH_CHECK_TIMEOUT"),
		},
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("SERVER_PORT is required")
	}

	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Business.MinInstallments < 1 {
		return fmt.Errorf("MIN_INSTALLMENTS must be at least 1")
	}

	if c.Business.MaxInstallments < c.Business.MinInstallments {
		return fmt.Errorf("MAX_INSTALLMENTS must be >= MIN_INSTALLMENTS")
	}

	if c.Business.InstallmentPeriodMonths < 1 {
		return fmt.Errorf("INSTALLMENT_PERIOD_MONTHS must be at least 1")
	}

	for key, value := range map[string]string{
		"INSTALLMENT_INTEREST_RATE":  c.Business.InstallmentInterestRate,
		"MAX_DEPOSIT_PER_OPERATION":  c.Business.MaxDepositPerOperation,
		"MAX_TRANSFER_PER_OPERATION": c.Business.MaxTransferPerOperation,
		"LOAN_LEVERAGE_MULTIPLE":     c.Business.LoanLeverageMultiple,
		"PAYMENT_CAPACITY_RATIO":     c.Business.PaymentCapacityRatio,
	} {
		d, err := decimal.NewFromString(value)
		if err != nil {
			return fmt.Errorf("%s must be a valid decimal: %w", key, err)
		}
		if d.IsNegative() {
			return fmt.Errorf("%s must not be negative", key)
		}
	}

	if _, err := time.ParseDuration(c.Database.ConnMaxLifetime); err != nil {
		return fmt.Errorf("DATABASE_CONN_MAX_LIFETIME must be a valid duration: %w", err)
	}

	if _, err := time.ParseDuration(c.Business.LoanCacheTTL); err != nil {
		return fmt.Errorf("LOAN_CACHE_TTL must be a valid duration: %w", err)
	}

	if _, err := time.ParseDuration(c.Health.Timeout); err != nil {
		return fmt.Errorf("HEALTH_CHECK_TIMEOUT must be a valid duration: %w", err)
	}

	if _, err := time.LoadLocation(c.Scheduler.Timezone); err != nil {
		return fmt.Errorf("SCHEDULER_TIMEZONE must be a valid location: %w", err)
	}

	return nil
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development" || c.Server.Env == "dev"
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production" || c.Server.Env == "prod"
}

// InstallmentInterestRate returns the per-installment interest rate as decimal
func (c *Config) InstallmentInterestRate() decimal.Decimal {
	rate, _ := decimal.NewFromString(c.Business.InstallmentInterestRate)
	return rate
}

// MaxDepositPerOperation returns the deposit cap as decimal
func (c *Config) MaxDepositPerOperation() decimal.Decimal {
	limit, _ := decimal.NewFromString(c.Business.MaxDepositPerOperation)
	return limit
}

// MaxTransferPerOperation returns the transfer cap as decimal
func (c *Config) MaxTransferPerOperation() decimal.Decimal {
	limit, _ := decimal.NewFromString(c.Business.MaxTransferPerOperation)
	return limit
}

// LoanLeverageMultiple returns the maximum principal-to-balance multiple
func (c *Config) LoanLeverageMultiple() decimal.Decimal {
	m, _ := decimal.NewFromString(c.Business.LoanLeverageMultiple)
	return m
}

// PaymentCapacityRatio returns the maximum installment-to-balance ratio
func (c *Config) PaymentCapacityRatio() decimal.Decimal {
	r, _ := decimal.NewFromString(c.Business.PaymentCapacityRatio)
	return r
}

// ConnMaxLifetime returns the database connection lifetime as duration
func (c *Config) ConnMaxLifetime() time.Duration {
	d, _ := time.ParseDuration(c.Database.ConnMaxLifetime)
	return d
}

// LoanCacheTTL returns the loan cache expiration as duration
func (c *Config) LoanCacheTTL() time.Duration {
	d, _ := time.ParseDuration(c.Business.LoanCacheTTL)
	return d
}

// HealthTimeout returns the health check timeout as duration
func (c *Config) HealthTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Health.Timeout)
	return d
}
