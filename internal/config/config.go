package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// ExpirationLayout is the date layout accepted by CARD_EXPIRATION.
const ExpirationLayout = "2006-01-02"

// MaxActivityPageSize bounds both ACTIVITY_PAGE_SIZE and the limit query parameter.
const MaxActivityPageSize = 100

type Config struct {
	Server        ServerConfig
	Logger        LoggerConfig
	Card          CardConfig
	Activity      ActivityConfig
	Idempotency   IdempotencyConfig
	Observability ObservabilityConfig
}

type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

type LoggerConfig struct {
	Level  string // debug, info, warn, error
	Format string // json or console
}

// CardConfig describes the single account served by the process.
type CardConfig struct {
	Number      string
	Holder      string
	Expiration  time.Time
	Pin         string
	CreditLimit decimal.Decimal
	Balance     decimal.Decimal
}

type ActivityConfig struct {
	PageSize int
}

type IdempotencyConfig struct {
	TTL time.Duration
}

// ObservabilityConfig controls OTLP export. An empty CollectorAddr disables it.
type ObservabilityConfig struct {
	CollectorAddr string
	ServiceName   string
}

func Load() (*Config, error) {
	card, err := loadCard()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			ReadTimeout:     getDurationEnv("READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getDurationEnv("WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:     getDurationEnv("IDLE_TIMEOUT", 120*time.Second),
			ShutdownTimeout: getDurationEnv("SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Card: card,
		Activity: ActivityConfig{
			PageSize: getIntEnv("ACTIVITY_PAGE_SIZE", 20),
		},
		Idempotency: IdempotencyConfig{
			TTL: getDurationEnv("IDEMPOTENCY_TTL", 24*time.Hour),
		},
		Observability: ObservabilityConfig{
			CollectorAddr: getEnv("OTEL_COLLECTOR_ADDR", ""),
			ServiceName:   getEnv("OTEL_SERVICE_NAME", "credit-card-account"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port cannot be empty")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logger.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}
	if c.Logger.Format != "json" && c.Logger.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", c.Logger.Format)
	}

	if c.Card.Number == "" {
		return fmt.Errorf("card number cannot be empty")
	}

	if c.Activity.PageSize < 1 || c.Activity.PageSize > MaxActivityPageSize {
		return fmt.Errorf("activity page size must be between 1 and %d, got %d", MaxActivityPageSize, c.Activity.PageSize)
	}

	if c.Idempotency.TTL <= 0 {
		return fmt.Errorf("idempotency ttl must be positive")
	}

	return nil
}

func loadCard() (CardConfig, error) {
	expiration, err := time.Parse(ExpirationLayout, getEnv("CARD_EXPIRATION", "2025-12-31"))
	if err != nil {
		return CardConfig{}, fmt.Errorf("invalid CARD_EXPIRATION: %w", err)
	}

	creditLimit, err := getDecimalEnv("CARD_CREDIT_LIMIT", "5000")
	if err != nil {
		return CardConfig{}, err
	}

	balance, err := getDecimalEnv("CARD_BALANCE", "800")
	if err != nil {
		return CardConfig{}, err
	}

	return CardConfig{
		Number:      getEnv("CARD_NUMBER", "1234 5678 9012 3456"),
		Holder:      getEnv("CARD_HOLDER", "John Doe"),
		Expiration:  expiration,
		Pin:         getEnv("CARD_PIN", "1234"),
		CreditLimit: creditLimit,
		Balance:     balance,
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getDecimalEnv reports a malformed value instead of falling back to the default.
func getDecimalEnv(key, defaultValue string) (decimal.Decimal, error) {
	value, err := decimal.NewFromString(getEnv(key, defaultValue))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s: %w", key, err)
	}
	return value, nil
}
