package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, 120*time.Second, cfg.Server.IdleTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)

	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "json", cfg.Logger.Format)

	assert.Equal(t, "1234 5678 9012 3456", cfg.Card.Number)
	assert.Equal(t, "John Doe", cfg.Card.Holder)
	assert.Equal(t, time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC), cfg.Card.Expiration)
	assert.Equal(t, "1234", cfg.Card.Pin)
	assert.True(t, decimal.NewFromInt(5000).Equal(cfg.Card.CreditLimit))
	assert.True(t, decimal.NewFromInt(800).Equal(cfg.Card.Balance))

	assert.Equal(t, 20, cfg.Activity.PageSize)
	assert.Equal(t, 24*time.Hour, cfg.Idempotency.TTL)
	assert.Empty(t, cfg.Observability.CollectorAddr)
	assert.Equal(t, "credit-card-account", cfg.Observability.ServiceName)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("READ_TIMEOUT", "5s")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "console")
	t.Setenv("CARD_NUMBER", "4000 0000 0000 0002")
	t.Setenv("CARD_HOLDER", "Jane Roe")
	t.Setenv("CARD_EXPIRATION", "2030-01-31")
	t.Setenv("CARD_CREDIT_LIMIT", "1500.50")
	t.Setenv("CARD_BALANCE", "-20")
	t.Setenv("ACTIVITY_PAGE_SIZE", "50")
	t.Setenv("IDEMPOTENCY_TTL", "1h")
	t.Setenv("OTEL_COLLECTOR_ADDR", "localhost:4317")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, "console", cfg.Logger.Format)
	assert.Equal(t, "4000 0000 0000 0002", cfg.Card.Number)
	assert.Equal(t, "Jane Roe", cfg.Card.Holder)
	assert.Equal(t, 2030, cfg.Card.Expiration.Year())
	assert.Equal(t, "1500.5", cfg.Card.CreditLimit.String())
	assert.Equal(t, "-20", cfg.Card.Balance.String())
	assert.Equal(t, 50, cfg.Activity.PageSize)
	assert.Equal(t, time.Hour, cfg.Idempotency.TTL)
	assert.Equal(t, "localhost:4317", cfg.Observability.CollectorAddr)
}

func TestLoad_MalformedNumbersFallBack(t *testing.T) {
	t.Setenv("READ_TIMEOUT", "soon")
	t.Setenv("ACTIVITY_PAGE_SIZE", "many")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 20, cfg.Activity.PageSize)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr string
	}{
		{name: "bad credit limit", key: "CARD_CREDIT_LIMIT", value: "lots", wantErr: "invalid CARD_CREDIT_LIMIT"},
		{name: "bad balance", key: "CARD_BALANCE", value: "1,000", wantErr: "invalid CARD_BALANCE"},
		{name: "bad expiration", key: "CARD_EXPIRATION", value: "12/25", wantErr: "invalid CARD_EXPIRATION"},
		{name: "unknown log level", key: "LOG_LEVEL", value: "trace", wantErr: "invalid log level"},
		{name: "unknown log format", key: "LOG_FORMAT", value: "xml", wantErr: "invalid log format"},
		{name: "page size too large", key: "ACTIVITY_PAGE_SIZE", value: "101", wantErr: "activity page size"},
		{name: "page size zero", key: "ACTIVITY_PAGE_SIZE", value: "0", wantErr: "activity page size"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			cfg, err := Load()

			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:      ServerConfig{Port: "8080"},
			Logger:      LoggerConfig{Level: "info", Format: "json"},
			Card:        CardConfig{Number: "1234"},
			Activity:    ActivityConfig{PageSize: 20},
			Idempotency: IdempotencyConfig{TTL: time.Hour},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "empty port", mutate: func(c *Config) { c.Server.Port = "" }, wantErr: "server port"},
		{name: "empty card number", mutate: func(c *Config) { c.Card.Number = "" }, wantErr: "card number"},
		{name: "console format", mutate: func(c *Config) { c.Logger.Format = "console" }},
		{name: "zero idempotency ttl", mutate: func(c *Config) { c.Idempotency.TTL = 0 }, wantErr: "idempotency ttl"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
